// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"errors"
	"testing"

	vk "github.com/devblok/vulkan"
)

func TestSurfaceSuitable(t *testing.T) {
	format := vk.SurfaceFormat{}
	mode := vk.PresentModeFifo

	cases := []struct {
		name    string
		formats []vk.SurfaceFormat
		modes   []vk.PresentMode
		want    bool
	}{
		{"no formats", nil, []vk.PresentMode{mode}, false},
		{"no present modes", []vk.SurfaceFormat{format}, nil, false},
		{"neither", nil, nil, false},
		{"both", []vk.SurfaceFormat{format}, []vk.PresentMode{mode}, true},
	}
	for _, tc := range cases {
		if got := surfaceSuitable(tc.formats, tc.modes); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDestroySemaphoreWithoutParentDevice(t *testing.T) {
	// A semaphore whose device registry entry is already gone tears
	// down silently: the native handle died with the device.
	orphan := semaphores.Insert(&Semaphore{})

	DestroySemaphore(orphan)

	if _, ok := semaphores.Get(orphan); ok {
		t.Error("orphan semaphore entry survived destruction")
	}
	// Destroying again is a no-op too.
	DestroySemaphore(orphan)
}

func TestDestroyDeviceStaleHandle(t *testing.T) {
	var stale DeviceHandle
	if DestroyDevice(stale) {
		t.Error("stale device handle reported destruction")
	}
}

func TestVersionFromVk(t *testing.T) {
	v := versionFromVk(uint32(vk.MakeVersion(1, 2, 131)))
	if v.Major() != 1 || v.Minor() != 2 || v.Patch() != 131 {
		t.Errorf("got %s, want 1.2.131", v)
	}
}

func TestSupportsExtensions(t *testing.T) {
	info := &PhysicalDeviceInfo{Extensions: []string{"VK_KHR_swapchain", "VK_KHR_maintenance1"}}
	if !info.SupportsExtensions([]string{"VK_KHR_swapchain"}) {
		t.Error("present extension reported unsupported")
	}
	if info.SupportsExtensions([]string{"VK_KHR_swapchain", "VK_NV_glsl_shader"}) {
		t.Error("absent extension reported supported")
	}
	if !info.SupportsExtensions(nil) {
		t.Error("empty request must always be supported")
	}
}

func TestHasGraphicsQueue(t *testing.T) {
	info := &PhysicalDeviceInfo{QueueFamilies: []vk.QueueFamilyProperties{
		{QueueFlags: vk.QueueFlags(vk.QueueTransferBit)},
		{QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit)},
	}}
	family, ok := info.HasGraphicsQueue()
	if !ok || family != 1 {
		t.Errorf("got family %d, %v; want 1, true", family, ok)
	}

	none := &PhysicalDeviceInfo{}
	if _, ok := none.HasGraphicsQueue(); ok {
		t.Error("snapshot without families reported a graphics queue")
	}
}

func TestSafeString(t *testing.T) {
	if got := safeString("VK_KHR_surface"); got != "VK_KHR_surface\x00" {
		t.Errorf("missing terminator: %q", got)
	}
}

func TestCheckPreservesResult(t *testing.T) {
	if err := Check("vk.CreateFence()", vk.Success); err != nil {
		t.Fatalf("success mapped to error: %v", err)
	}

	err := Check("vk.CreateFence()", vk.ErrorOutOfDeviceMemory)
	var gerr *GraphicsError
	if !errors.As(err, &gerr) {
		t.Fatalf("want *GraphicsError, got %T", err)
	}
	if gerr.Result != vk.ErrorOutOfDeviceMemory {
		t.Errorf("got result %d, want %d", gerr.Result, vk.ErrorOutOfDeviceMemory)
	}
	if gerr.Op != "vk.CreateFence()" {
		t.Errorf("got op %q", gerr.Op)
	}
}
