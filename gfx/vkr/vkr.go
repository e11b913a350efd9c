// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkr is the Vulkan renderer backend: GPU memory, buffers,
// images and the immediate-mode UI draw system.
package vkr

import (
	"unsafe"

	vk "github.com/devblok/vulkan"

	"github.com/titan3d/titan/core"
	"github.com/titan3d/titan/gfx"
)

// NewBuffer creates, configures, allocates and binds a new
// host-visible buffer.
func NewBuffer(dev vk.Device, size uint, usage vk.BufferUsageFlagBits, ma *MemoryAllocator) (Buffer, error) {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if err := core.Check("vk.CreateBuffer()", vk.CreateBuffer(dev, &createInfo, nil, &buffer)); err != nil {
		return Buffer{}, err
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev, buffer, &req)
	req.Deref()

	memory, err := ma.MallocHostVisible(req)
	if err != nil {
		return Buffer{}, err
	}

	vk.BindBufferMemory(dev, buffer, memory.Get(), vk.DeviceSize(memory.Offset()))

	return Buffer{
		device: dev,
		buffer: buffer,
		memory: memory,
	}, nil
}

// Buffer implements a generic vulkan buffer.
type Buffer struct {
	device vk.Device
	buffer vk.Buffer

	memory Memory
}

// Mem returns the Memory that the buffer is based on.
func (b *Buffer) Mem() *Memory {
	return &b.memory
}

// Get returns the vulkan Buffer handle.
func (b *Buffer) Get() vk.Buffer {
	return b.buffer
}

// Write copies data into the buffer at the given byte offset through a
// transient mapping.
func (b *Buffer) Write(offset uint, data []byte) {
	mapped := b.memory.Map()
	dst := *(*[]byte)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(mapped) + uintptr(offset),
		Len:  len(data),
		Cap:  len(data),
	}))
	copy(dst, data)
	b.memory.Unmap()
}

// Release destroys the buffer and memory asociated with it.
func (b *Buffer) Release() {
	vk.DestroyBuffer(b.device, b.buffer, nil)
	b.memory.Release()
}

// NewSampledImage creates a GPU-resident image suitable for sampling
// in a shader, with its memory bound and a 2D view created.
func NewSampledImage(dev vk.Device, extent gfx.Extent2D, format vk.Format, ma *MemoryAllocator) (Image, error) {
	createInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        vk.ImageTilingOptimal,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit),
		SharingMode:   vk.SharingModeExclusive,
		Samples:       vk.SampleCount1Bit,
	}

	var image vk.Image
	if err := core.Check("vk.CreateImage()", vk.CreateImage(dev, &createInfo, nil, &image)); err != nil {
		return Image{}, err
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(dev, image, &req)
	req.Deref()

	memory, err := ma.MallocDeviceLocal(req)
	if err != nil {
		vk.DestroyImage(dev, image, nil)
		return Image{}, err
	}
	vk.BindImageMemory(dev, image, memory.Get(), vk.DeviceSize(memory.Offset()))

	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var view vk.ImageView
	if err := core.Check("vk.CreateImageView()", vk.CreateImageView(dev, &ivci, nil, &view)); err != nil {
		vk.DestroyImage(dev, image, nil)
		memory.Release()
		return Image{}, err
	}

	return Image{
		device: dev,
		image:  image,
		view:   view,
		memory: memory,
		extent: extent,
	}, nil
}

// Image implements and abstracts the vulkan image primitive together
// with its view and backing memory.
type Image struct {
	device vk.Device
	image  vk.Image
	view   vk.ImageView
	memory Memory
	extent gfx.Extent2D
}

// Get returns the vulkan Image handle.
func (i *Image) Get() vk.Image {
	return i.image
}

// View returns the image's 2D view.
func (i *Image) View() vk.ImageView {
	return i.view
}

// Mem returns the underlying memory of the Image.
func (i *Image) Mem() *Memory {
	return &i.memory
}

// Release destroys the view, image and memory.
func (i *Image) Release() {
	if i.image == nil {
		return
	}
	vk.DestroyImageView(i.device, i.view, nil)
	vk.DestroyImage(i.device, i.image, nil)
	i.memory.Release()
	i.image = nil
}

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}

// sliceUint32 reslices bytes into uint32 words, the form shader
// binaries are submitted in.
func sliceUint32(data []byte) []uint32 {
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&data)).Data))[:len(data)/4]
}
