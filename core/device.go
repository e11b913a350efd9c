// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	vk "github.com/devblok/vulkan"
)

// Device is an opened logical connection against one accelerator. It
// must outlive every device-scoped child (semaphores, draw systems).
type Device struct {
	physical PhysicalDeviceHandle
	parent   InstanceHandle
	device   vk.Device
}

// OpenDevice opens a logical device against a physical device snapshot,
// with one queue per requested family. Requested extensions are
// validated against the snapshot before the driver sees them.
func OpenDevice(pd PhysicalDeviceHandle, queueFamilies []uint32, extensions []string) (DeviceHandle, error) {
	info, ok := physicalDevices.Get(pd)
	if !ok {
		return DeviceHandle{}, newError("physical device not found", nil)
	}
	inst, ok := instances.Get(info.parent)
	if !ok {
		return DeviceHandle{}, newError("parent instance not found", nil)
	}

	if !info.SupportsExtensions(extensions) {
		return DeviceHandle{}, newError("requested device extension not supported by "+info.Name, nil)
	}
	for _, family := range queueFamilies {
		if int(family) >= len(info.QueueFamilies) {
			return DeviceHandle{}, newError("requested queue family out of range", nil)
		}
	}

	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(queueFamilies))
	for _, family := range queueFamilies {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}

	device, err := inst.loader.OpenDevice(info.handle, &dci)
	if err != nil {
		return DeviceHandle{}, err
	}

	return devices.Insert(&Device{
		physical: pd,
		parent:   info.parent,
		device:   device,
	}), nil
}

// PhysicalDevice returns the handle of the snapshot this device was
// opened against.
func (d *Device) PhysicalDevice() PhysicalDeviceHandle {
	return d.physical
}

// Queue returns the device queue at the given family and index.
func (d *Device) Queue(family, index uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(d.device, family, index, &queue)
	return queue
}

// Native exposes the raw logical connection. It is consumed by sibling
// renderer components only and must not leak past them.
func (d *Device) Native() vk.Device {
	return d.device
}

// WaitIdle blocks until all work submitted to the device completes.
func (d *Device) WaitIdle() error {
	return Check("vk.DeviceWaitIdle()", vk.DeviceWaitIdle(d.device))
}

// DestroyDevice waits for all submitted work scoped to the device and
// releases the connection. The wait has no timeout: a hung driver
// blocks teardown indefinitely. Reports false when the handle no
// longer resolves.
func DestroyDevice(h DeviceHandle) bool {
	d, ok := devices.Remove(h)
	if !ok {
		return false
	}
	vk.DeviceWaitIdle(d.device)
	vk.DestroyDevice(d.device, nil)
	return true
}
