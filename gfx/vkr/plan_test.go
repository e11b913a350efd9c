// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"testing"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/titan3d/titan/gfx"
)

func testMesh(clip gfx.Rect, indices int) gfx.Mesh {
	mesh := gfx.Mesh{
		Clip:     clip,
		Vertices: make([]gfx.Vertex, 3),
		Indices:  make([]uint32, indices),
		Texture:  gfx.AtlasTexture(),
	}
	return mesh
}

func TestPlanSkipsEmptyMeshes(t *testing.T) {
	clip := gfx.Rect{Max: glm.Vec2{100, 100}}
	meshes := []gfx.Mesh{
		testMesh(clip, 6),
		{Clip: clip, Texture: gfx.AtlasTexture()},
		testMesh(clip, 3),
	}

	plan := planFrame(gfx.Extent2D{Width: 800, Height: 600}, 1, meshes, 1, 1)
	if len(plan.steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan.steps))
	}
	if plan.steps[0].mesh != 0 || plan.steps[1].mesh != 2 {
		t.Errorf("wrong meshes selected: %d, %d", plan.steps[0].mesh, plan.steps[1].mesh)
	}
	if plan.steps[0].indexCount != 6 || plan.steps[1].indexCount != 3 {
		t.Errorf("wrong index counts: %d, %d", plan.steps[0].indexCount, plan.steps[1].indexCount)
	}
}

func TestPlanRebuildsAtlasOnVersionChange(t *testing.T) {
	viewport := gfx.Extent2D{Width: 800, Height: 600}

	plan := planFrame(viewport, 1, nil, 2, 1)
	if !plan.rebuildAtlas {
		t.Error("version moved, expected rebuild")
	}

	plan = planFrame(viewport, 1, nil, 2, 2)
	if plan.rebuildAtlas {
		t.Error("version unchanged, expected no rebuild")
	}
}

func TestPlanScreenSizeInPoints(t *testing.T) {
	plan := planFrame(gfx.Extent2D{Width: 1600, Height: 1200}, 2, nil, 1, 1)
	if plan.screenSize != [2]float32{800, 600} {
		t.Errorf("expected screen size {800 600}, got %v", plan.screenSize)
	}
}

func TestPlanScissorsInPixels(t *testing.T) {
	clip := gfx.Rect{Min: glm.Vec2{10, 10}, Max: glm.Vec2{50, 50}}
	meshes := []gfx.Mesh{testMesh(clip, 3)}

	plan := planFrame(gfx.Extent2D{Width: 800, Height: 600}, 2, meshes, 1, 1)
	if len(plan.steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(plan.steps))
	}
	want := gfx.ScissorRect{X: 20, Y: 20, Width: 80, Height: 80}
	if plan.steps[0].scissor != want {
		t.Errorf("expected scissor %+v, got %+v", want, plan.steps[0].scissor)
	}
}
