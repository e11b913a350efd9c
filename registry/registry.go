// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package registry implements generational handle arenas. Objects of one
// category live in one Registry; everything else refers to them through
// opaque handles instead of pointers. A removed slot is reused by later
// insertions with a bumped generation, so handles left over from before
// the removal turn into lookup misses instead of aliasing the newcomer.
package registry

import "sync"

// Handle is an opaque generational reference into a Registry.
// The zero Handle never resolves.
type Handle[T any] struct {
	slot uint32
	gen  uint32
}

// Nil reports whether the handle is the zero handle.
func (h Handle[T]) Nil() bool {
	return h.gen == 0
}

// Key packs the handle into a single integer for crossing API boundaries
// that cannot carry a typed handle. Use FromKey to recover the handle.
func (h Handle[T]) Key() uint64 {
	return uint64(h.gen)<<32 | uint64(h.slot)
}

// FromKey recovers a handle previously packed with Handle.Key.
func FromKey[T any](key uint64) Handle[T] {
	return Handle[T]{
		slot: uint32(key),
		gen:  uint32(key >> 32),
	}
}

type slot[T any] struct {
	gen   uint32
	live  bool
	value T
}

// Registry maps handles to live values of one object category.
// Lookups take a shared lock, insertions and removals an exclusive one.
// The zero Registry is ready to use.
type Registry[T any] struct {
	mu    sync.RWMutex
	slots []slot[T]
	free  []uint32
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Insert stores a value and returns its handle. The lowest free slot is
// reused first; its generation is bumped so stale handles keep missing.
func (r *Registry[T]) Insert(value T) Handle[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.free) > 0 {
		lowest := 0
		for idx := 1; idx < len(r.free); idx++ {
			if r.free[idx] < r.free[lowest] {
				lowest = idx
			}
		}
		reused := r.free[lowest]
		r.free[lowest] = r.free[len(r.free)-1]
		r.free = r.free[:len(r.free)-1]

		s := &r.slots[reused]
		s.gen++
		s.live = true
		s.value = value
		return Handle[T]{slot: reused, gen: s.gen}
	}

	r.slots = append(r.slots, slot[T]{gen: 1, live: true, value: value})
	return Handle[T]{slot: uint32(len(r.slots) - 1), gen: 1}
}

// Get resolves a handle. It reports false when the slot is empty or the
// handle's generation no longer matches.
func (r *Registry[T]) Get(h Handle[T]) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if int(h.slot) >= len(r.slots) {
		var zero T
		return zero, false
	}
	s := &r.slots[h.slot]
	if !s.live || s.gen != h.gen {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Remove frees the handle's slot and returns its value. A stale or
// unknown handle is a no-op reporting false.
func (r *Registry[T]) Remove(h Handle[T]) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if int(h.slot) >= len(r.slots) {
		return zero, false
	}
	s := &r.slots[h.slot]
	if !s.live || s.gen != h.gen {
		return zero, false
	}
	value := s.value
	s.live = false
	s.value = zero
	r.free = append(r.free, h.slot)
	return value, true
}

// Len returns the number of live entries.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots) - len(r.free)
}

// Range calls fn for every live entry until fn returns false.
// The registry lock is held for the duration of the walk.
func (r *Registry[T]) Range(fn func(Handle[T], T) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for idx := range r.slots {
		s := &r.slots[idx]
		if !s.live {
			continue
		}
		if !fn(Handle[T]{slot: uint32(idx), gen: s.gen}, s.value) {
			return
		}
	}
}
