// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// Backend errors.
var (
	// ErrUnknownResource is returned when an ID does not name a live resource.
	ErrUnknownResource = errors.New("raster: unknown resource")

	// ErrNoProgram is returned when drawing without a bound program.
	ErrNoProgram = errors.New("raster: no program bound")

	// ErrNoVertexBuffer is returned when drawing points without a vertex buffer.
	ErrNoVertexBuffer = errors.New("raster: no vertex buffer bound")

	// ErrNoTarget is returned when the default framebuffer has no host target.
	ErrNoTarget = errors.New("raster: no default target bound")

	// ErrInvalidSize is returned for non-positive or oversized textures.
	ErrInvalidSize = errors.New("raster: invalid texture size")

	// ErrUniformType is returned when a uniform value has an unsupported type.
	ErrUniformType = errors.New("raster: unsupported uniform type")
)

// Backend executes resource and draw commands. Implementations receive
// fully resolved commands from a Context and keep no binding state of
// their own.
//
// Thread Safety: Backends are NOT thread-safe. A backend is driven by the
// single goroutine that owns its Context.
type Backend interface {
	// Name returns a short backend name for logs.
	Name() string

	// CreateBuffer uploads data into a new immutable vertex buffer.
	CreateBuffer(label string, data []byte) (BufferID, error)
	DestroyBuffer(id BufferID)

	// CreateTexture allocates an uninitialized texture.
	CreateTexture(desc TextureDesc) (TextureID, error)
	DestroyTexture(id TextureID)

	// TextureSize returns the texture dimensions, or zeros for unknown IDs.
	TextureSize(id TextureID) (width, height int)

	// CreateFramebuffer creates a framebuffer with the given attachments.
	CreateFramebuffer(label string, color, depth TextureID) (FramebufferID, error)

	// AttachTextures replaces the attachments of an existing framebuffer.
	AttachTextures(fb FramebufferID, color, depth TextureID) error
	DestroyFramebuffer(id FramebufferID)

	// CreateProgram compiles and links a program.
	CreateProgram(desc *ProgramDesc) (ProgramID, error)
	DestroyProgram(id ProgramID)

	// SetUniform stores a uniform value. Supported value types are
	// float32, int32, int, mgl32.Vec3, mgl32.Vec4, mgl32.Mat3 and
	// mgl32.Mat4.
	SetUniform(p ProgramID, name string, value any) error

	// Clear resets the selected attachments of fb.
	Clear(fb FramebufferID, mask ClearMask, color mgl32.Vec4, depth float32) error

	// Draw executes a draw call.
	Draw(call *DrawCall) error

	// ReadTexture returns a copy of the texel data, row-major from the
	// top-left corner, Format.Channels() floats per texel.
	ReadTexture(id TextureID) ([]float32, error)

	// Flush completes all recorded work.
	Flush() error
}

// ValidUniform reports whether v is a supported uniform value type.
func ValidUniform(v any) bool {
	switch v.(type) {
	case float32, int32, int, mgl32.Vec3, mgl32.Vec4, mgl32.Mat3, mgl32.Mat4:
		return true
	default:
		return false
	}
}
