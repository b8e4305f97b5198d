// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "github.com/go-gl/mathgl/mgl32"

// Vertex is one decoded vertex as a vertex kernel sees it.
// Color is normalized to [0, 1].
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec4
	Normal   mgl32.Vec3
}

// Varyings are the values a vertex kernel hands to the fragment kernel.
type Varyings struct {
	Color        mgl32.Vec4
	Normal       mgl32.Vec3
	ViewPosition mgl32.Vec3
}

// Fragment is one rasterized sample.
//
// X and Y are pixel coordinates with the origin at the top-left corner.
// FragCoord is the pixel center (X+0.5, Y+0.5). Depth is the window-space
// depth in [0, 1].
type Fragment struct {
	X, Y      int
	FragCoord mgl32.Vec2
	Depth     float32
	Varyings
}

// FragmentResult is the output of a fragment kernel. Depth is the depth
// written and tested; kernels that leave depth alone return frag.Depth.
type FragmentResult struct {
	Color   mgl32.Vec4
	Depth   float32
	Discard bool
}

// Uniforms gives kernels read access to program uniforms. Missing
// uniforms read as zero, as unset GLSL uniforms do.
type Uniforms interface {
	Float(name string) float32
	Int(name string) int32
	Vec3(name string) mgl32.Vec3
	Vec4(name string) mgl32.Vec4
	Mat3(name string) mgl32.Mat3
	Mat4(name string) mgl32.Mat4
}

// Env is the environment of a fragment kernel: uniforms plus texture
// sampling through sampler uniforms.
type Env interface {
	Uniforms

	// Sample reads the texture bound at the unit stored in the named
	// sampler uniform. Depth textures return (d, d, d, 1). An unbound
	// unit samples as zero.
	Sample(sampler string, uv mgl32.Vec2) mgl32.Vec4
}

// VertexKernel transforms a vertex into clip space.
type VertexKernel func(u Uniforms, in Vertex) (clip mgl32.Vec4, out Varyings)

// FragmentKernel shades one fragment.
type FragmentKernel func(env Env, frag *Fragment) FragmentResult
