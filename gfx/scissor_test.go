// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx_test

import (
	"testing"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/titan3d/titan/gfx"
)

func rect(minX, minY, maxX, maxY float32) gfx.Rect {
	return gfx.Rect{Min: glm.Vec2{minX, minY}, Max: glm.Vec2{maxX, maxY}}
}

func TestScissorScalesAndRounds(t *testing.T) {
	got := gfx.Scissor(rect(10, 10, 50, 50), 2.0, 800, 600)
	want := gfx.ScissorRect{X: 20, Y: 20, Width: 80, Height: 80}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestScissorClampsToViewport(t *testing.T) {
	got := gfx.Scissor(rect(-20, -20, 1000, 1000), 1.0, 800, 600)
	want := gfx.ScissorRect{X: 0, Y: 0, Width: 800, Height: 600}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestScissorFullyClippedIsEmptyNotNegative(t *testing.T) {
	got := gfx.Scissor(rect(900, 700, 950, 750), 1.0, 800, 600)
	if got.Width != 0 || got.Height != 0 {
		t.Errorf("expected zero-sized rectangle, got %+v", got)
	}
	if got.X != 800 || got.Y != 600 {
		t.Errorf("expected origin clamped to viewport edge, got %+v", got)
	}
}

func TestScissorMaxNeverBelowMin(t *testing.T) {
	// Inverted rectangle collapses instead of going negative.
	got := gfx.Scissor(rect(50, 50, 10, 10), 1.0, 800, 600)
	if got.Width != 0 || got.Height != 0 {
		t.Errorf("expected collapsed rectangle, got %+v", got)
	}
}

func TestMeshEmpty(t *testing.T) {
	var m gfx.Mesh
	if !m.Empty() {
		t.Error("mesh with no data reported non-empty")
	}
	m.Vertices = []gfx.Vertex{{}}
	if !m.Empty() {
		t.Error("mesh with no indices reported non-empty")
	}
	m.Indices = []uint32{0}
	if m.Empty() {
		t.Error("mesh with data reported empty")
	}
}

func TestAtlasRGBA(t *testing.T) {
	atlas := gfx.Atlas{Width: 2, Height: 1, Pixels: []uint8{0x00, 0xff}}
	got := atlas.RGBA()
	want := []uint8{0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff}
	if len(got) != len(want) {
		t.Fatalf("got %d bytes, want %d", len(got), len(want))
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("byte %d: got %#x, want %#x", idx, got[idx], want[idx])
		}
	}
}

func TestTextureIDTagging(t *testing.T) {
	if gfx.AtlasTexture().IsUser() {
		t.Error("atlas id tagged as user")
	}
	user := gfx.UserTexture(42)
	if !user.IsUser() || user.Key() != 42 {
		t.Errorf("user id lost its tag or key: %+v", user)
	}
}
