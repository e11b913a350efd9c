// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package registry_test

import (
	"sync"
	"testing"

	"github.com/titan3d/titan/registry"
)

func TestInsertGetRemove(t *testing.T) {
	reg := registry.New[string]()

	h := reg.Insert("first")
	if v, ok := reg.Get(h); !ok || v != "first" {
		t.Fatalf("expected to resolve inserted value, got %q, %v", v, ok)
	}

	if v, ok := reg.Remove(h); !ok || v != "first" {
		t.Fatalf("expected removal to yield value, got %q, %v", v, ok)
	}

	if _, ok := reg.Get(h); ok {
		t.Error("handle resolved after removal")
	}
	if _, ok := reg.Remove(h); ok {
		t.Error("second removal succeeded")
	}
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	reg := registry.New[int]()

	stale := reg.Insert(1)
	reg.Remove(stale)

	fresh := reg.Insert(2)
	if _, ok := reg.Get(stale); ok {
		t.Error("stale handle resolved after its slot was reused")
	}
	if v, ok := reg.Get(fresh); !ok || v != 2 {
		t.Errorf("fresh handle did not resolve, got %d, %v", v, ok)
	}
}

func TestLowestFreeSlotReused(t *testing.T) {
	reg := registry.New[int]()

	var handles []registry.Handle[int]
	for idx := 0; idx < 4; idx++ {
		handles = append(handles, reg.Insert(idx))
	}
	reg.Remove(handles[2])
	reg.Remove(handles[0])

	reused := reg.Insert(100)
	if reused.Key()&0xffffffff != 0 {
		t.Errorf("expected slot 0 to be reused first, got key %#x", reused.Key())
	}
}

func TestZeroHandleNeverResolves(t *testing.T) {
	reg := registry.New[int]()
	reg.Insert(1)

	var zero registry.Handle[int]
	if !zero.Nil() {
		t.Error("zero handle is not nil")
	}
	if _, ok := reg.Get(zero); ok {
		t.Error("zero handle resolved")
	}
}

func TestKeyRoundTrip(t *testing.T) {
	reg := registry.New[int]()
	reg.Insert(0)
	h := reg.Insert(42)

	back := registry.FromKey[int](h.Key())
	if v, ok := reg.Get(back); !ok || v != 42 {
		t.Errorf("key round trip lost the handle, got %d, %v", v, ok)
	}
}

func TestUnrelatedEntrySurvivesChurn(t *testing.T) {
	reg := registry.New[string]()

	keep := reg.Insert("keep")
	for idx := 0; idx < 10; idx++ {
		h := reg.Insert("churn")
		reg.Remove(h)
	}

	if v, ok := reg.Get(keep); !ok || v != "keep" {
		t.Errorf("unrelated entry lost during churn, got %q, %v", v, ok)
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 live entry, got %d", reg.Len())
	}
}

func TestRange(t *testing.T) {
	reg := registry.New[int]()
	a := reg.Insert(1)
	reg.Insert(2)
	reg.Remove(a)

	var seen []int
	reg.Range(func(_ registry.Handle[int], v int) bool {
		seen = append(seen, v)
		return true
	})
	if len(seen) != 1 || seen[0] != 2 {
		t.Errorf("expected to walk only live entries, saw %v", seen)
	}
}

func TestConcurrentAccess(t *testing.T) {
	reg := registry.New[int]()

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := 0; idx < 100; idx++ {
				h := reg.Insert(idx)
				if _, ok := reg.Get(h); !ok {
					t.Error("own handle did not resolve")
				}
				reg.Remove(h)
			}
		}()
	}
	wg.Wait()

	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", reg.Len())
	}
}

func BenchmarkInsertRemove(b *testing.B) {
	reg := registry.New[int]()
	for idx := 0; idx < b.N; idx++ {
		reg.Remove(reg.Insert(idx))
	}
}

func BenchmarkGet(b *testing.B) {
	reg := registry.New[int]()
	h := reg.Insert(1)
	b.ResetTimer()
	for idx := 0; idx < b.N; idx++ {
		reg.Get(h)
	}
}
