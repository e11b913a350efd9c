// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"iter"
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// Surface is a presentation target bound to a window. Unlike the other
// driver objects it is caller-owned rather than registry-managed, and
// must be destroyed before its parent instance. All queries are
// read-only and safe to run concurrently.
type Surface struct {
	surface vk.Surface
	parent  InstanceHandle
}

// NewSurface wraps a platform surface created by the windowing
// collaborator (e.g. SDL's VulkanCreateSurface pointer).
func NewSurface(instance InstanceHandle, pSurface unsafe.Pointer) (*Surface, error) {
	inst, ok := instances.Get(instance)
	if !ok {
		return nil, newError("instance not found", nil)
	}

	inst.surfaces.Add(1)
	return &Surface{
		surface: vk.SurfaceFromPointer(uintptr(pSurface)),
		parent:  instance,
	}, nil
}

// Native exposes the raw surface handle for sibling components.
func (s *Surface) Native() vk.Surface {
	return s.surface
}

// Capabilities queries the surface capabilities against a physical
// device.
func (s *Surface) Capabilities(pd PhysicalDeviceHandle) (vk.SurfaceCapabilities, error) {
	info, ok := physicalDevices.Get(pd)
	if !ok {
		return vk.SurfaceCapabilities{}, newError("physical device not found", nil)
	}

	var capabilities vk.SurfaceCapabilities
	if err := Check("vk.GetPhysicalDeviceSurfaceCapabilities()", vk.GetPhysicalDeviceSurfaceCapabilities(info.handle, s.surface, &capabilities)); err != nil {
		return vk.SurfaceCapabilities{}, err
	}
	capabilities.Deref()
	return capabilities, nil
}

// Formats returns the surface formats the device can present.
func (s *Surface) Formats(pd PhysicalDeviceHandle) ([]vk.SurfaceFormat, error) {
	info, ok := physicalDevices.Get(pd)
	if !ok {
		return nil, newError("physical device not found", nil)
	}

	var count uint32
	if err := Check("vk.GetPhysicalDeviceSurfaceFormats()", vk.GetPhysicalDeviceSurfaceFormats(info.handle, s.surface, &count, nil)); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := Check("vk.GetPhysicalDeviceSurfaceFormats()", vk.GetPhysicalDeviceSurfaceFormats(info.handle, s.surface, &count, formats)); err != nil {
		return nil, err
	}
	for idx := range formats {
		formats[idx].Deref()
	}
	return formats, nil
}

// PresentModes returns the present modes the device supports for this
// surface.
func (s *Surface) PresentModes(pd PhysicalDeviceHandle) ([]vk.PresentMode, error) {
	info, ok := physicalDevices.Get(pd)
	if !ok {
		return nil, newError("physical device not found", nil)
	}

	var count uint32
	if err := Check("vk.GetPhysicalDeviceSurfacePresentModes()", vk.GetPhysicalDeviceSurfacePresentModes(info.handle, s.surface, &count, nil)); err != nil {
		return nil, err
	}
	modes := make([]vk.PresentMode, count)
	if err := Check("vk.GetPhysicalDeviceSurfacePresentModes()", vk.GetPhysicalDeviceSurfacePresentModes(info.handle, s.surface, &count, modes)); err != nil {
		return nil, err
	}
	return modes, nil
}

// QueueFamilySupport yields (familyIndex, supported) for every queue
// family of the device, lazily: families are only queried as the
// sequence is consumed.
func (s *Surface) QueueFamilySupport(pd PhysicalDeviceHandle) iter.Seq2[int, bool] {
	return func(yield func(int, bool) bool) {
		info, ok := physicalDevices.Get(pd)
		if !ok {
			return
		}
		for idx := range info.QueueFamilies {
			var supported vk.Bool32
			if vk.GetPhysicalDeviceSurfaceSupport(info.handle, uint32(idx), s.surface, &supported) != vk.Success {
				supported = vk.False
			}
			if !yield(idx, supported.B()) {
				return
			}
		}
	}
}

// IsSuitable reports whether the device can present to this surface:
// at least one supported format and at least one present mode. Query
// failures count as unsuitable.
func (s *Surface) IsSuitable(pd PhysicalDeviceHandle) bool {
	formats, err := s.Formats(pd)
	if err != nil {
		return false
	}
	modes, err := s.PresentModes(pd)
	if err != nil {
		return false
	}
	return surfaceSuitable(formats, modes)
}

func surfaceSuitable(formats []vk.SurfaceFormat, modes []vk.PresentMode) bool {
	return len(formats) > 0 && len(modes) > 0
}

// Destroy releases the platform surface. Must happen before the parent
// instance is destroyed.
func (s *Surface) Destroy() {
	inst, ok := instances.Get(s.parent)
	if !ok {
		return
	}
	inst.loader.ReleaseSurface(s.surface)
	inst.surfaces.Add(-1)
}
