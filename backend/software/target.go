// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/peel/internal/blend"
)

// Target is the CPU default framebuffer: an *image.RGBA color buffer and
// a float32 depth buffer of the same size.
//
// Colors are written without premultiplication, as a GL window surface
// stores them.
type Target struct {
	img   *image.RGBA
	depth []float32
}

// NewTarget creates a target of the given size with depth cleared to 1.
func NewTarget(width, height int) *Target {
	return NewTargetFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewTargetFromImage wraps an existing image. The image is used directly
// without copying.
func NewTargetFromImage(img *image.RGBA) *Target {
	t := &Target{img: img}
	t.resetDepth()
	return t
}

func (t *Target) resetDepth() {
	n := t.Width() * t.Height()
	if cap(t.depth) >= n {
		t.depth = t.depth[:n]
	} else {
		t.depth = make([]float32, n)
	}
	for i := range t.depth {
		t.depth[i] = 1
	}
}

// Width returns the target width in pixels.
func (t *Target) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *Target) Height() int {
	return t.img.Bounds().Dy()
}

// Image returns the underlying image. It shares memory with the target.
func (t *Target) Image() *image.RGBA {
	return t.img
}

// Resize reallocates the target. Contents are not preserved.
func (t *Target) Resize(width, height int) {
	t.img = image.NewRGBA(image.Rect(0, 0, width, height))
	t.resetDepth()
}

// Depth returns the stored depth at (x, y), or 1 outside the target.
func (t *Target) Depth(x, y int) float32 {
	if x < 0 || y < 0 || x >= t.Width() || y >= t.Height() {
		return 1
	}
	return t.depth[y*t.Width()+x]
}

// Pixel returns the color at (x, y).
func (t *Target) Pixel(x, y int) color.RGBA {
	b := t.img.Bounds()
	return t.img.RGBAAt(b.Min.X+x, b.Min.Y+y)
}

// The methods below implement attachment.

func (t *Target) loadDepth(x, y int) float32 { return t.depth[y*t.Width()+x] }

func (t *Target) storeDepth(x, y int, d float32) { t.depth[y*t.Width()+x] = d }

func (t *Target) storeColor(x, y int, c mgl32.Vec4) {
	b := t.img.Bounds()
	t.img.SetRGBA(b.Min.X+x, b.Min.Y+y, blend.ToRGBA8(c))
}

func (t *Target) fill(mask clearMask, c mgl32.Vec4, d float32) {
	if mask.color {
		for y := range t.Height() {
			for x := range t.Width() {
				t.storeColor(x, y, c)
			}
		}
	}
	if mask.depth {
		for i := range t.depth {
			t.depth[i] = d
		}
	}
}
