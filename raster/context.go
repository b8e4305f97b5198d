// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ResourceKind classifies resources for live accounting.
type ResourceKind uint8

// Resource kinds.
const (
	KindBuffer ResourceKind = iota
	KindTexture
	KindFramebuffer
	KindProgram
	numKinds
)

// String returns the resource kind name.
func (k ResourceKind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindTexture:
		return "texture"
	case KindFramebuffer:
		return "framebuffer"
	case KindProgram:
		return "program"
	default:
		return fmt.Sprintf("ResourceKind(%d)", k)
	}
}

// Bindings is a snapshot of the binding state of a Context.
type Bindings struct {
	Framebuffer  FramebufferID
	Program      ProgramID
	VertexBuffer BufferID
	Layout       VertexLayout
	Textures     [MaxTextureUnits]TextureID
	DepthTest    bool
	DepthFunc    DepthFunc
	ClearColor   mgl32.Vec4
	ClearDepth   float32
}

// Counters records the commands issued through a Context.
type Counters struct {
	Clears int
	Draws  int
}

// Context is the explicit raster binding context. It holds what a GL
// context keeps as global state (bound draw target, active program,
// texture units, depth test and function) and turns every draw into a
// self-contained DrawCall for the Backend.
//
// Bindings are acquired through binders whose Release restores the
// previous binding, so every pass can defer its cleanup:
//
//	fb := ctx.BindFramebuffer(id)
//	defer fb.Release()
//
// Thread Safety: Context is NOT thread-safe.
type Context struct {
	backend Backend
	state   Bindings

	twoSided bool

	live     [numKinds]int
	counters Counters
}

// NewContext creates a context driving the given backend. The initial
// state matches a fresh GL context: default framebuffer, no program,
// depth test disabled, depth function Less, clear depth 1.
func NewContext(b Backend) *Context {
	return &Context{
		backend: b,
		state: Bindings{
			DepthFunc:  DepthLess,
			ClearDepth: 1,
		},
	}
}

// Backend returns the backend driven by this context.
func (c *Context) Backend() Backend {
	return c.backend
}

// Bindings returns a snapshot of the current binding state.
func (c *Context) Bindings() Bindings {
	return c.state
}

// Counters returns the number of clears and draws issued so far.
func (c *Context) Counters() Counters {
	return c.counters
}

// ResetCounters zeroes the command counters.
func (c *Context) ResetCounters() {
	c.counters = Counters{}
}

// Live returns the number of live resources of the given kind created
// through this context.
func (c *Context) Live(kind ResourceKind) int {
	if kind >= numKinds {
		return 0
	}
	return c.live[kind]
}

// SetTwoSidedLighting sets the two-sided lighting model flag. Programs
// built afterwards may query it.
func (c *Context) SetTwoSidedLighting(enabled bool) {
	c.twoSided = enabled
}

// TwoSidedLighting reports the two-sided lighting model flag.
func (c *Context) TwoSidedLighting() bool {
	return c.twoSided
}

// ---- Resources ----

// CreateBuffer uploads data into a new vertex buffer.
func (c *Context) CreateBuffer(label string, data []byte) (BufferID, error) {
	id, err := c.backend.CreateBuffer(label, data)
	if err != nil {
		return InvalidID, err
	}
	c.live[KindBuffer]++
	return id, nil
}

// DestroyBuffer releases a buffer. InvalidID is ignored.
func (c *Context) DestroyBuffer(id BufferID) {
	if id == InvalidID {
		return
	}
	if c.state.VertexBuffer == id {
		c.state.VertexBuffer = InvalidID
	}
	c.backend.DestroyBuffer(id)
	c.live[KindBuffer]--
}

// CreateTexture allocates a texture.
func (c *Context) CreateTexture(desc TextureDesc) (TextureID, error) {
	id, err := c.backend.CreateTexture(desc)
	if err != nil {
		return InvalidID, err
	}
	c.live[KindTexture]++
	return id, nil
}

// DestroyTexture releases a texture and unbinds it from every unit.
// InvalidID is ignored.
func (c *Context) DestroyTexture(id TextureID) {
	if id == InvalidID {
		return
	}
	for unit, t := range c.state.Textures {
		if t == id {
			c.state.Textures[unit] = InvalidID
		}
	}
	c.backend.DestroyTexture(id)
	c.live[KindTexture]--
}

// TextureSize returns the dimensions of a texture.
func (c *Context) TextureSize(id TextureID) (width, height int) {
	return c.backend.TextureSize(id)
}

// CreateFramebuffer creates a framebuffer with color and depth attachments.
func (c *Context) CreateFramebuffer(label string, color, depth TextureID) (FramebufferID, error) {
	id, err := c.backend.CreateFramebuffer(label, color, depth)
	if err != nil {
		return InvalidID, err
	}
	c.live[KindFramebuffer]++
	return id, nil
}

// AttachTextures replaces the attachments of a framebuffer.
func (c *Context) AttachTextures(fb FramebufferID, color, depth TextureID) error {
	return c.backend.AttachTextures(fb, color, depth)
}

// DestroyFramebuffer releases a framebuffer. InvalidID is ignored.
func (c *Context) DestroyFramebuffer(id FramebufferID) {
	if id == InvalidID {
		return
	}
	if c.state.Framebuffer == id {
		c.state.Framebuffer = DefaultFramebuffer
	}
	c.backend.DestroyFramebuffer(id)
	c.live[KindFramebuffer]--
}

// CreateProgram compiles and links a program.
func (c *Context) CreateProgram(desc *ProgramDesc) (ProgramID, error) {
	id, err := c.backend.CreateProgram(desc)
	if err != nil {
		return InvalidID, err
	}
	c.live[KindProgram]++
	return id, nil
}

// DestroyProgram releases a program. InvalidID is ignored.
func (c *Context) DestroyProgram(id ProgramID) {
	if id == InvalidID {
		return
	}
	if c.state.Program == id {
		c.state.Program = InvalidID
	}
	c.backend.DestroyProgram(id)
	c.live[KindProgram]--
}

// SetUniform stores a uniform value on a program.
func (c *Context) SetUniform(p ProgramID, name string, value any) error {
	if !ValidUniform(value) {
		return fmt.Errorf("%w: %s is %T", ErrUniformType, name, value)
	}
	return c.backend.SetUniform(p, name, value)
}

// ---- Fixed-function state ----

// SetClearColor sets the color used by Clear.
func (c *Context) SetClearColor(color mgl32.Vec4) {
	c.state.ClearColor = color
}

// SetClearDepth sets the depth used by Clear.
func (c *Context) SetClearDepth(depth float32) {
	c.state.ClearDepth = depth
}

// EnableDepthTest turns the depth test on.
func (c *Context) EnableDepthTest() {
	c.state.DepthTest = true
}

// DisableDepthTest turns the depth test off.
func (c *Context) DisableDepthTest() {
	c.state.DepthTest = false
}

// SetDepthFunc sets the depth comparison function.
func (c *Context) SetDepthFunc(f DepthFunc) {
	c.state.DepthFunc = f
}

// ---- Commands ----

// Clear resets the selected attachments of the bound framebuffer to the
// current clear values.
func (c *Context) Clear(mask ClearMask) error {
	c.counters.Clears++
	return c.backend.Clear(c.state.Framebuffer, mask, c.state.ClearColor, c.state.ClearDepth)
}

// DrawArrays draws count vertices starting at first from the bound vertex
// buffer with the bound program.
func (c *Context) DrawArrays(prim Primitive, first, count int) error {
	if c.state.Program == InvalidID {
		return ErrNoProgram
	}
	if prim == PrimitivePoints && c.state.VertexBuffer == InvalidID && count > 0 {
		return ErrNoVertexBuffer
	}
	call := c.drawCall(prim)
	call.First = first
	call.Count = count
	c.counters.Draws++
	return c.backend.Draw(&call)
}

// DrawQuad draws one quad covering the bound framebuffer with the bound
// program.
func (c *Context) DrawQuad() error {
	if c.state.Program == InvalidID {
		return ErrNoProgram
	}
	call := c.drawCall(PrimitiveQuad)
	c.counters.Draws++
	return c.backend.Draw(&call)
}

func (c *Context) drawCall(prim Primitive) DrawCall {
	return DrawCall{
		Framebuffer:  c.state.Framebuffer,
		Program:      c.state.Program,
		Textures:     c.state.Textures,
		DepthTest:    c.state.DepthTest,
		DepthFunc:    c.state.DepthFunc,
		Primitive:    prim,
		VertexBuffer: c.state.VertexBuffer,
		Layout:       c.state.Layout,
	}
}

// ReadTexture flushes recorded work and reads back a texture.
func (c *Context) ReadTexture(id TextureID) ([]float32, error) {
	if err := c.backend.Flush(); err != nil {
		return nil, err
	}
	return c.backend.ReadTexture(id)
}

// Flush completes all recorded work.
func (c *Context) Flush() error {
	return c.backend.Flush()
}
