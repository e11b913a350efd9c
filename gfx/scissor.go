// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import "math"

// ScissorRect is a pixel-space clip rectangle ready for the driver.
type ScissorRect struct {
	X      int32
	Y      int32
	Width  uint32
	Height uint32
}

// Scissor converts a clip rectangle in logical units into pixel bounds:
// scaled by the display scale factor, clamped to the viewport and
// rounded to whole pixels. Max is clamped no lower than min, so a fully
// clipped mesh yields a zero-sized rectangle rather than a negative one.
func Scissor(clip Rect, scaleFactor, viewportWidth, viewportHeight float32) ScissorRect {
	minX := clamp(clip.Min.X()*scaleFactor, 0, viewportWidth)
	minY := clamp(clip.Min.Y()*scaleFactor, 0, viewportHeight)
	maxX := clamp(clip.Max.X()*scaleFactor, minX, viewportWidth)
	maxY := clamp(clip.Max.Y()*scaleFactor, minY, viewportHeight)

	return ScissorRect{
		X:      int32(round(minX)),
		Y:      int32(round(minY)),
		Width:  uint32(round(maxX) - round(minX)),
		Height: uint32(round(maxY) - round(minY)),
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float32) float32 {
	return float32(math.Round(float64(v)))
}
