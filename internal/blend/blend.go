// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package blend provides the float compositing operators used by the
// peeling kernels and layer capture.
//
// Colors are mgl32.Vec4 with straight (non-premultiplied) RGB and alpha.
// Peeled layers are composited front to back, so the accumulated color is
// always in front of the incoming layer.
package blend

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Mode represents a compositing operator.
type Mode int

const (
	// ModeUnder composites dst behind src: the front-to-back peeling
	// operator. src is the accumulated front, dst the new back layer.
	ModeUnder Mode = iota
	// ModeSourceOver is classic back-to-front alpha blending.
	ModeSourceOver
	// ModeSourceCopy replaces the destination with the source.
	ModeSourceCopy
)

// Blend composites src and dst with the given mode.
func Blend(src, dst mgl32.Vec4, mode Mode) mgl32.Vec4 {
	switch mode {
	case ModeUnder:
		return Under(src, dst)
	case ModeSourceCopy:
		return src
	default:
		return sourceOver(src, dst)
	}
}

// Under adds back behind front:
//
//	rgb = front.rgb + (1-front.a)*back.a*back.rgb
//	a   = front.a + (1-front.a)*back.a
func Under(front, back mgl32.Vec4) mgl32.Vec4 {
	t := (1 - front[3]) * back[3]
	return mgl32.Vec4{
		front[0] + t*back[0],
		front[1] + t*back[1],
		front[2] + t*back[2],
		front[3] + t,
	}
}

// OverBackground composites an accumulated color over an opaque background.
// The result is opaque.
func OverBackground(acc mgl32.Vec4, bg mgl32.Vec3) mgl32.Vec4 {
	t := 1 - acc[3]
	return mgl32.Vec4{
		acc[0] + t*bg[0],
		acc[1] + t*bg[1],
		acc[2] + t*bg[2],
		1,
	}
}

// sourceOver blends src over dst using alpha compositing.
func sourceOver(src, dst mgl32.Vec4) mgl32.Vec4 {
	inv := 1 - src[3]
	outA := src[3] + dst[3]*inv
	if outA == 0 {
		return mgl32.Vec4{}
	}
	return mgl32.Vec4{
		(src[0]*src[3] + dst[0]*dst[3]*inv) / outA,
		(src[1]*src[3] + dst[1]*dst[3]*inv) / outA,
		(src[2]*src[3] + dst[2]*dst[3]*inv) / outA,
		outA,
	}
}

// ToRGBA8 converts a float color to 8 bits per channel with rounding.
// Channels are clamped to [0, 1].
func ToRGBA8(c mgl32.Vec4) color.RGBA {
	return color.RGBA{
		R: unorm8(c[0]),
		G: unorm8(c[1]),
		B: unorm8(c[2]),
		A: unorm8(c[3]),
	}
}

// FromRGB8 converts 8-bit RGB to a float color.
func FromRGB8(r, g, b uint8) mgl32.Vec3 {
	return mgl32.Vec3{float32(r) / 255, float32(g) / 255, float32(b) / 255}
}

func unorm8(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
