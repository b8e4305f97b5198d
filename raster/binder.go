// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

// Binders acquire one binding and restore the previous one on Release.
// Release is idempotent, so a binder can be released early and still
// deferred.

// FramebufferBinder holds a draw framebuffer binding.
type FramebufferBinder struct {
	ctx  *Context
	prev FramebufferID
	done bool
}

// BindFramebuffer makes fb the draw target until the binder is released.
func (c *Context) BindFramebuffer(fb FramebufferID) FramebufferBinder {
	b := FramebufferBinder{ctx: c, prev: c.state.Framebuffer}
	c.state.Framebuffer = fb
	return b
}

// Release restores the previous draw framebuffer.
func (b *FramebufferBinder) Release() {
	if b.done || b.ctx == nil {
		return
	}
	b.ctx.state.Framebuffer = b.prev
	b.done = true
}

// ProgramBinder holds an active program binding.
type ProgramBinder struct {
	ctx  *Context
	prev ProgramID
	done bool
}

// UseProgram makes p the active program until the binder is released.
func (c *Context) UseProgram(p ProgramID) ProgramBinder {
	b := ProgramBinder{ctx: c, prev: c.state.Program}
	c.state.Program = p
	return b
}

// Release restores the previous program.
func (b *ProgramBinder) Release() {
	if b.done || b.ctx == nil {
		return
	}
	b.ctx.state.Program = b.prev
	b.done = true
}

// TextureBinder holds a texture unit binding.
type TextureBinder struct {
	ctx  *Context
	unit int
	prev TextureID
	done bool
}

// BindTexture binds tex to a texture unit until the binder is released.
// Units outside [0, MaxTextureUnits) are ignored.
func (c *Context) BindTexture(tex TextureID, unit int) TextureBinder {
	if unit < 0 || unit >= MaxTextureUnits {
		return TextureBinder{done: true}
	}
	b := TextureBinder{ctx: c, unit: unit, prev: c.state.Textures[unit]}
	c.state.Textures[unit] = tex
	return b
}

// Release restores the previous texture on the unit.
func (b *TextureBinder) Release() {
	if b.done || b.ctx == nil {
		return
	}
	b.ctx.state.Textures[b.unit] = b.prev
	b.done = true
}

// BufferBinder holds a vertex buffer binding.
type BufferBinder struct {
	ctx        *Context
	prev       BufferID
	prevLayout VertexLayout
	done       bool
}

// BindVertexBuffer binds a packed vertex buffer and its attribute layout
// until the binder is released.
func (c *Context) BindVertexBuffer(buf BufferID, layout VertexLayout) BufferBinder {
	b := BufferBinder{ctx: c, prev: c.state.VertexBuffer, prevLayout: c.state.Layout}
	c.state.VertexBuffer = buf
	c.state.Layout = layout
	return b
}

// Release restores the previous vertex buffer.
func (b *BufferBinder) Release() {
	if b.done || b.ctx == nil {
		return
	}
	b.ctx.state.VertexBuffer = b.prev
	b.ctx.state.Layout = b.prevLayout
	b.done = true
}

// DepthFuncBinder holds a temporary depth function.
type DepthFuncBinder struct {
	ctx  *Context
	prev DepthFunc
	done bool
}

// WithDepthFunc switches the depth function until the binder is released.
func (c *Context) WithDepthFunc(f DepthFunc) DepthFuncBinder {
	b := DepthFuncBinder{ctx: c, prev: c.state.DepthFunc}
	c.state.DepthFunc = f
	return b
}

// Release restores the previous depth function.
func (b *DepthFuncBinder) Release() {
	if b.done || b.ctx == nil {
		return
	}
	b.ctx.state.DepthFunc = b.prev
	b.done = true
}

// StateBinder holds a full snapshot of the binding state.
type StateBinder struct {
	ctx   *Context
	saved Bindings
	done  bool
}

// PushState snapshots every binding. Release puts the whole snapshot back,
// undoing any binding or fixed-function change made in between.
func (c *Context) PushState() StateBinder {
	return StateBinder{ctx: c, saved: c.state}
}

// Release restores the snapshot.
func (b *StateBinder) Release() {
	if b.done || b.ctx == nil {
		return
	}
	b.ctx.state = b.saved
	b.done = true
}
