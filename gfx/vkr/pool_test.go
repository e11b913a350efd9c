// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import "testing"

func TestRingAllocAligns(t *testing.T) {
	ring := ringAlloc{capacity: 256}

	offset, ok := ring.alloc(10)
	if !ok || offset != 0 {
		t.Fatalf("first alloc: got %d, %v", offset, ok)
	}
	offset, ok = ring.alloc(10)
	if !ok || offset != 16 {
		t.Fatalf("second alloc not aligned: got %d, %v", offset, ok)
	}
	offset, ok = ring.alloc(32)
	if !ok || offset != 32 {
		t.Fatalf("third alloc: got %d, %v", offset, ok)
	}
}

func TestRingAllocExhaustion(t *testing.T) {
	ring := ringAlloc{capacity: 64}

	if _, ok := ring.alloc(48); !ok {
		t.Fatal("48 of 64 should fit")
	}
	if _, ok := ring.alloc(32); ok {
		t.Error("allocation past capacity should fail")
	}
	// Exactly filling the remainder is fine.
	if offset, ok := ring.alloc(16); !ok || offset != 48 {
		t.Errorf("remainder alloc: got %d, %v", offset, ok)
	}
	if _, ok := ring.alloc(1); ok {
		t.Error("full ring should reject everything")
	}
}

func TestRingAllocReset(t *testing.T) {
	ring := ringAlloc{capacity: 64}

	ring.alloc(64)
	ring.reset()

	offset, ok := ring.alloc(64)
	if !ok || offset != 0 {
		t.Errorf("reset ring should start over: got %d, %v", offset, ok)
	}
}

func TestRingAllocZeroSize(t *testing.T) {
	ring := ringAlloc{capacity: 16}

	if _, ok := ring.alloc(0); !ok {
		t.Error("zero-size alloc should succeed")
	}
	if offset, ok := ring.alloc(16); !ok || offset != 0 {
		t.Errorf("zero-size alloc should not consume: got %d, %v", offset, ok)
	}
}
