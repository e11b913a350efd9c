// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/Masterminds/semver/v3"
	vk "github.com/devblok/vulkan"
)

// PhysicalDeviceInfo is an immutable capability snapshot of one
// accelerator, taken at enumeration time. It is never written after
// construction, so concurrent reads need no locking.
type PhysicalDeviceInfo struct {
	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	APIVersion    *semver.Version

	// Invalid marks a snapshot whose enumeration partially failed.
	Invalid bool

	Extensions []string
	Layers     []string

	// QueueFamilies in driver order; indices into this slice are the
	// queue family indices used everywhere else.
	QueueFamilies []vk.QueueFamilyProperties

	// Memory is the total size across all heaps, Heaps the per-heap
	// sizes in driver order.
	Memory vk.DeviceSize
	Heaps  []vk.DeviceSize

	Features vk.PhysicalDeviceFeatures

	parent InstanceHandle
	handle vk.PhysicalDevice
}

// SupportsExtensions reports whether every named device extension is in
// the snapshot.
func (p *PhysicalDeviceInfo) SupportsExtensions(names []string) bool {
	for _, name := range names {
		if !contains(p.Extensions, name) {
			return false
		}
	}
	return true
}

// HasGraphicsQueue reports whether any queue family supports graphics
// work, and the index of the first one that does.
func (p *PhysicalDeviceInfo) HasGraphicsQueue() (uint32, bool) {
	for idx, family := range p.QueueFamilies {
		if family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			return uint32(idx), true
		}
	}
	return 0, false
}

// Native exposes the underlying driver handle for packages that create
// device resources against this accelerator.
func (p *PhysicalDeviceInfo) Native() vk.PhysicalDevice {
	return p.handle
}

func snapshotPhysicalDevice(parent InstanceHandle, device vk.PhysicalDevice) *PhysicalDeviceInfo {
	info := &PhysicalDeviceInfo{
		parent: parent,
		handle: device,
	}

	var numExtensions uint32
	if vk.EnumerateDeviceExtensionProperties(device, "", &numExtensions, nil) != vk.Success {
		info.Invalid = true
	}
	deviceExt := make([]vk.ExtensionProperties, numExtensions)
	if vk.EnumerateDeviceExtensionProperties(device, "", &numExtensions, deviceExt) != vk.Success {
		info.Invalid = true
	}
	for _, ext := range deviceExt {
		ext.Deref()
		info.Extensions = append(info.Extensions, vk.ToString(ext.ExtensionName[:]))
	}

	var numLayers uint32
	if vk.EnumerateDeviceLayerProperties(device, &numLayers, nil) != vk.Success {
		info.Invalid = true
	}
	deviceLayers := make([]vk.LayerProperties, numLayers)
	if vk.EnumerateDeviceLayerProperties(device, &numLayers, deviceLayers) != vk.Success {
		info.Invalid = true
	}
	for _, layer := range deviceLayers {
		layer.Deref()
		info.Layers = append(info.Layers, vk.ToString(layer.LayerName[:]))
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	info.QueueFamilies = make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, info.QueueFamilies)
	for idx := range info.QueueFamilies {
		info.QueueFamilies[idx].Deref()
	}

	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(device, &memoryProperties)
	memoryProperties.Deref()
	for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		info.Heaps = append(info.Heaps, memoryProperties.MemoryHeaps[iMem].Size)
		info.Memory += memoryProperties.MemoryHeaps[iMem].Size
	}

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(device, &features)
	features.Deref()
	info.Features = features

	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()
	info.ID = int(properties.DeviceID)
	info.VendorID = int(properties.VendorID)
	info.Name = vk.ToString(properties.DeviceName[:])
	info.DriverVersion = int(properties.DriverVersion)
	info.APIVersion = versionFromVk(properties.ApiVersion)

	return info
}
