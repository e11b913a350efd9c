// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines the data exchanged between the UI layout engine
// and the renderer: tessellated meshes, the font/texture atlas and
// texture identities. It carries no driver types on purpose, renderer
// backends translate these at their own boundary.
package gfx

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

// Vertex is a single UI vertex. Positions and texture coordinates are in
// logical units, the color is straight sRGBA bytes.
type Vertex struct {
	Pos   glm.Vec2
	UV    glm.Vec2
	Color [4]uint8
}

// Rect is an axis-aligned rectangle in logical units.
type Rect struct {
	Min glm.Vec2
	Max glm.Vec2
}

// Mesh is one pre-tessellated UI mesh with its clip rectangle and the
// texture it samples from.
type Mesh struct {
	Clip     Rect
	Vertices []Vertex
	Indices  []uint32
	Texture  TextureID
}

// Empty reports whether the mesh has nothing to draw.
func (m *Mesh) Empty() bool {
	return len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Atlas is the single-channel font/texture atlas supplied by the UI
// layout engine. Version is a monotonic counter: the renderer re-uploads
// the atlas only when it observes a new version.
type Atlas struct {
	Width   int
	Height  int
	Version uint64
	Pixels  []uint8
}

// RGBA expands the single-channel atlas pixels to four channels for
// upload. Every channel carries the coverage value.
func (a *Atlas) RGBA() []uint8 {
	out := make([]uint8, 0, len(a.Pixels)*4)
	for _, r := range a.Pixels {
		out = append(out, r, r, r, r)
	}
	return out
}

// Extent2D is a pixel-space size.
type Extent2D struct {
	Width  uint32
	Height uint32
}
