// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// poolAlign keeps every returned offset usable as a vertex buffer
// binding or a uint32 index buffer binding.
const poolAlign = 16

// ringAlloc is the bump allocator behind a BufferPool. Offsets advance
// monotonically within a frame and reset wholesale when the frame's
// submission has completed.
type ringAlloc struct {
	head     uint
	capacity uint
}

func (r *ringAlloc) alloc(size uint) (uint, bool) {
	offset := (r.head + poolAlign - 1) &^ (poolAlign - 1)
	if offset+size > r.capacity {
		return 0, false
	}
	r.head = offset + size
	return offset, true
}

func (r *ringAlloc) reset() {
	r.head = 0
}

// BufferPool hands out transient ranges of one host-visible buffer.
// Ranges are valid for the current frame only; Reset reclaims them all
// once the frame's submission has completed. When a frame outgrows the
// buffer the pool reallocates: the full buffer is retired, kept alive
// until Reset since recorded commands may still reference it, and a
// larger one takes over. A pool serves one usage kind (vertex or
// index) and one DrawSystem, so it needs no locking.
type BufferPool struct {
	device vk.Device
	usage  vk.BufferUsageFlagBits
	ma     *MemoryAllocator

	buffer  Buffer
	ring    ringAlloc
	mapped  []byte
	retired []Buffer
}

// NewBufferPool creates a pool of the given initial byte capacity.
func NewBufferPool(dev vk.Device, capacity uint, usage vk.BufferUsageFlagBits, ma *MemoryAllocator) (*BufferPool, error) {
	pool := &BufferPool{
		device: dev,
		usage:  usage,
		ma:     ma,
	}
	if err := pool.replaceBuffer(capacity); err != nil {
		return nil, err
	}
	return pool, nil
}

func (p *BufferPool) replaceBuffer(capacity uint) error {
	buffer, err := NewBuffer(p.device, capacity, p.usage, p.ma)
	if err != nil {
		return err
	}

	p.buffer.Mem().Unmap()
	if p.buffer.Get() != vk.NullBuffer {
		p.retired = append(p.retired, p.buffer)
	}

	mapped := buffer.Mem().Map()
	p.buffer = buffer
	p.ring = ringAlloc{capacity: capacity}
	p.mapped = *(*[]byte)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(mapped),
		Len:  int(capacity),
		Cap:  int(capacity),
	}))
	return nil
}

// Push copies data into the pool and returns the byte offset of the
// copy within the buffer Buffer currently returns. Growing retires the
// previous buffer, so callers must take the buffer handle after every
// Push, not once per frame.
func (p *BufferPool) Push(data []byte) (vk.DeviceSize, error) {
	offset, ok := p.ring.alloc(uint(len(data)))
	if !ok {
		grown := p.ring.capacity * 2
		for grown < uint(len(data)) {
			grown *= 2
		}
		if err := p.replaceBuffer(grown); err != nil {
			return 0, err
		}
		offset, _ = p.ring.alloc(uint(len(data)))
	}
	copy(p.mapped[offset:], data)
	return vk.DeviceSize(offset), nil
}

// Buffer returns the pooled vulkan buffer for binding.
func (p *BufferPool) Buffer() vk.Buffer {
	return p.buffer.Get()
}

// Reset reclaims every range handed out this frame and releases
// buffers retired by growth. Only call after the frame's submission
// has completed on the GPU.
func (p *BufferPool) Reset() {
	for idx := range p.retired {
		p.retired[idx].Release()
	}
	p.retired = p.retired[:0]
	p.ring.reset()
}

// Release unmaps and destroys every buffer the pool still holds.
func (p *BufferPool) Release() {
	for idx := range p.retired {
		p.retired[idx].Release()
	}
	p.retired = nil
	p.mapped = nil
	p.buffer.Mem().Unmap()
	p.buffer.Release()
}
