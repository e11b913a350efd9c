// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"errors"
	"testing"

	vk "github.com/devblok/vulkan"

	"github.com/titan3d/titan/core"
)

func TestMallocNoSuitableMemoryType(t *testing.T) {
	ma := &MemoryAllocator{}

	_, err := ma.Malloc(vk.MemoryRequirements{Size: 64}, vk.MemoryPropertyHostVisibleBit)
	if err == nil {
		t.Fatal("allocation succeeded without any memory types")
	}
	var cerr *core.Error
	if !errors.As(err, &cerr) {
		t.Fatalf("want *core.Error, got %T: %v", err, err)
	}
}
