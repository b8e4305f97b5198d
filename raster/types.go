// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "fmt"

// Resource IDs
//
// These opaque IDs represent backend resources. Each backend maintains a
// mapping between IDs and its actual resources. IDs are uint64 to
// accommodate various backend handle sizes.

// BufferID is an opaque handle to a vertex buffer.
type BufferID uint64

// TextureID is an opaque handle to a texture.
type TextureID uint64

// FramebufferID is an opaque handle to an offscreen framebuffer.
type FramebufferID uint64

// ProgramID is an opaque handle to a linked shader program.
type ProgramID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// DefaultFramebuffer is the externally bound target owned by the host
// (window surface or host pixmap). It is never created or destroyed
// through a Context.
const DefaultFramebuffer FramebufferID = 0

// MaxTextureUnits is the number of texture units a Context tracks.
const MaxTextureUnits = 16

// TextureFormat specifies the storage format of a texture.
type TextureFormat uint8

// Texture formats.
const (
	// TextureFormatRGBA32Float is a four channel 32-bit float color format.
	TextureFormatRGBA32Float TextureFormat = iota + 1

	// TextureFormatDepth32Float is a single channel 32-bit float depth format.
	TextureFormatDepth32Float
)

// String returns a human-readable name for the format.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA32Float:
		return "RGBA32Float"
	case TextureFormatDepth32Float:
		return "Depth32Float"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// IsDepth reports whether the format stores depth values.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth32Float
}

// Channels returns the number of float channels stored per texel.
func (f TextureFormat) Channels() int {
	if f.IsDepth() {
		return 1
	}
	return 4
}

// FilterMode selects texel filtering.
type FilterMode uint8

// Filter modes.
const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// WrapMode selects how out-of-range texture coordinates are resolved.
type WrapMode uint8

// Wrap modes.
const (
	WrapRepeat WrapMode = iota
	WrapClampToEdge
)

// TextureDesc describes a 2D texture.
type TextureDesc struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the texture dimensions in pixels.
	Width, Height int

	// Format is the storage format.
	Format TextureFormat

	// MinFilter and MagFilter select filtering for sampling.
	MinFilter, MagFilter FilterMode

	// WrapS and WrapT select coordinate wrapping.
	WrapS, WrapT WrapMode
}

// DepthFunc is the comparison used by the depth test. A fragment passes
// when Test(fragment, stored) is true.
type DepthFunc uint8

// Depth functions.
const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthEqual
	DepthGreater
	DepthGreaterEqual
	DepthNotEqual
	DepthAlways
	DepthNever
)

// Test compares a fragment depth against the stored depth.
func (f DepthFunc) Test(fragment, stored float32) bool {
	switch f {
	case DepthLess:
		return fragment < stored
	case DepthLessEqual:
		return fragment <= stored
	case DepthEqual:
		return fragment == stored
	case DepthGreater:
		return fragment > stored
	case DepthGreaterEqual:
		return fragment >= stored
	case DepthNotEqual:
		return fragment != stored
	case DepthAlways:
		return true
	default:
		return false
	}
}

// String returns the name of the depth function.
func (f DepthFunc) String() string {
	switch f {
	case DepthLess:
		return "Less"
	case DepthLessEqual:
		return "LessEqual"
	case DepthEqual:
		return "Equal"
	case DepthGreater:
		return "Greater"
	case DepthGreaterEqual:
		return "GreaterEqual"
	case DepthNotEqual:
		return "NotEqual"
	case DepthAlways:
		return "Always"
	case DepthNever:
		return "Never"
	default:
		return fmt.Sprintf("DepthFunc(%d)", f)
	}
}

// ClearMask selects which attachments Clear resets.
type ClearMask uint8

// Clear mask bits.
const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

// Primitive selects what a draw call rasterizes.
type Primitive uint8

const (
	// PrimitivePoints draws one pixel-sized point per vertex.
	PrimitivePoints Primitive = iota

	// PrimitiveQuad draws a single quad covering the whole framebuffer.
	// No vertex buffer is read.
	PrimitiveQuad
)

// VertexLayout records where each attribute block starts inside a packed
// vertex buffer. Blocks are tightly packed: positions are 3 float32,
// colors 4 unorm8, normals 3 float32.
type VertexLayout struct {
	CoordOffset  int
	ColorOffset  int
	NormalOffset int
	HasNormals   bool
}

// UniformType is the type of a value in a program's uniform block.
type UniformType uint8

// Uniform types.
const (
	UniformFloat UniformType = iota + 1
	UniformInt
	UniformVec3
	UniformVec4
	UniformMat3
	UniformMat4
)

// UniformDecl declares one member of a program's uniform block.
// Declaration order defines the block layout for GPU backends.
type UniformDecl struct {
	Name string
	Type UniformType
}

// SamplerDecl declares one texture input of a program. The texture unit
// the input reads from is assigned at runtime by setting an int uniform
// with the same name, the way GLSL sampler uniforms work.
type SamplerDecl struct {
	// Name is the uniform name holding the texture unit.
	Name string

	// Binding is the shader binding slot of the texture.
	Binding uint32

	// Depth marks inputs that read depth textures.
	Depth bool
}

// ProgramDesc describes a shader program. GPU backends compile Source;
// the software backend runs the Vertex and Fragment kernels.
type ProgramDesc struct {
	// Label is an optional debug label.
	Label string

	// Source is WGSL with vs_main and fs_main entry points, already
	// specialised for Defines.
	Source string

	// Defines lists the compile-time switches baked into Source and the
	// kernels.
	Defines []string

	// Uniforms declares the uniform block layout.
	Uniforms []UniformDecl

	// Samplers declares the texture inputs.
	Samplers []SamplerDecl

	// Vertex and Fragment are the CPU equivalents of Source. Vertex may
	// be nil for programs that only draw quads.
	Vertex   VertexKernel
	Fragment FragmentKernel
}

// DrawCall is a fully resolved draw: the Context snapshots its bindings
// into a DrawCall so backends never observe ambient state.
type DrawCall struct {
	Framebuffer  FramebufferID
	Program      ProgramID
	Textures     [MaxTextureUnits]TextureID
	DepthTest    bool
	DepthFunc    DepthFunc
	Primitive    Primitive
	VertexBuffer BufferID
	Layout       VertexLayout
	First        int
	Count        int
}
