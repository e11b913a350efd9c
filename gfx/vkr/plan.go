// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/titan3d/titan/gfx"
)

// drawStep is one mesh of the batch after clipping and skip decisions,
// ready to be recorded.
type drawStep struct {
	mesh       int
	scissor    gfx.ScissorRect
	indexCount uint32
}

// framePlan is the driver-free part of a frame: everything Draw will
// record, decided up front.
type framePlan struct {
	rebuildAtlas bool
	screenSize   [2]float32
	steps        []drawStep
}

// planFrame decides a frame's work. Meshes with no vertices or no
// indices are skipped silently; the atlas is rebuilt only when its
// version counter moved.
func planFrame(viewport gfx.Extent2D, scaleFactor float32, meshes []gfx.Mesh, atlasVersion, seenVersion uint64) framePlan {
	width := float32(viewport.Width)
	height := float32(viewport.Height)

	plan := framePlan{
		rebuildAtlas: atlasVersion != seenVersion,
		screenSize:   [2]float32{width / scaleFactor, height / scaleFactor},
	}

	for idx := range meshes {
		mesh := &meshes[idx]
		if mesh.Empty() {
			continue
		}
		plan.steps = append(plan.steps, drawStep{
			mesh:       idx,
			scissor:    gfx.Scissor(mesh.Clip, scaleFactor, width, height),
			indexCount: uint32(len(mesh.Indices)),
		})
	}
	return plan
}
