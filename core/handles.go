// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "github.com/titan3d/titan/registry"

// Handle aliases for the object categories this package manages. All
// cross-object references are registry keys; nothing hands out raw
// pointers across the API surface.
type (
	InstanceHandle       = registry.Handle[*Instance]
	PhysicalDeviceHandle = registry.Handle[*PhysicalDeviceInfo]
	DeviceHandle         = registry.Handle[*Device]
	SemaphoreHandle      = registry.Handle[*Semaphore]
)

// One process-wide registry per object category. Unrelated categories
// never contend on a lock.
var (
	instances       = registry.New[*Instance]()
	physicalDevices = registry.New[*PhysicalDeviceInfo]()
	devices         = registry.New[*Device]()
	semaphores      = registry.New[*Semaphore]()
)

// GetInstance resolves an instance handle.
func GetInstance(h InstanceHandle) (*Instance, bool) {
	return instances.Get(h)
}

// GetPhysicalDevice resolves a physical device snapshot handle.
func GetPhysicalDevice(h PhysicalDeviceHandle) (*PhysicalDeviceInfo, bool) {
	return physicalDevices.Get(h)
}

// GetDevice resolves a logical device handle.
func GetDevice(h DeviceHandle) (*Device, bool) {
	return devices.Get(h)
}

// GetSemaphore resolves a semaphore handle.
func GetSemaphore(h SemaphoreHandle) (*Semaphore, bool) {
	return semaphores.Get(h)
}
