// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	vk "github.com/devblok/vulkan"
)

// Semaphore is a device-scoped GPU ordering primitive.
type Semaphore struct {
	parent    DeviceHandle
	semaphore vk.Semaphore
}

// NewSemaphore creates a semaphore against a device.
func NewSemaphore(device DeviceHandle) (SemaphoreHandle, error) {
	d, ok := devices.Get(device)
	if !ok {
		return SemaphoreHandle{}, newError("device not found", nil)
	}

	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var semaphore vk.Semaphore
	if err := Check("vk.CreateSemaphore()", vk.CreateSemaphore(d.device, &sci, nil, &semaphore)); err != nil {
		return SemaphoreHandle{}, err
	}

	return semaphores.Insert(&Semaphore{
		parent:    device,
		semaphore: semaphore,
	}), nil
}

// Native exposes the raw semaphore handle for queue submission.
func (s *Semaphore) Native() vk.Semaphore {
	return s.semaphore
}

// ParentDevice returns the owning device's handle.
func (s *Semaphore) ParentDevice() DeviceHandle {
	return s.parent
}

// DestroySemaphore releases the semaphore. When the parent device no
// longer resolves the native handle died with it, so only the registry
// entry is removed; teardown order across independent registries is
// not globally guaranteed and this tolerates it silently.
func DestroySemaphore(h SemaphoreHandle) {
	sem, ok := semaphores.Remove(h)
	if !ok {
		return
	}
	d, ok := devices.Get(sem.parent)
	if !ok {
		return
	}
	vk.DestroySemaphore(d.device, sem.semaphore, nil)
}
