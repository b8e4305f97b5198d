// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/peel/backend"
	"github.com/gogpu/peel/internal/blend"
	"github.com/gogpu/peel/internal/parallel"
	"github.com/gogpu/peel/raster"
)

// Name is the registry name of the software backend.
const Name = "software"

func init() {
	backend.Register(Name, func(cfg backend.Config) (raster.Backend, error) {
		var t *Target
		if cfg.Width > 0 && cfg.Height > 0 {
			t = NewTarget(cfg.Width, cfg.Height)
		}
		return New(WithTarget(t)), nil
	})
}

// texture is a float texture. Color textures hold 4 floats per texel,
// depth textures one.
type texture struct {
	desc raster.TextureDesc
	data []float32
}

func (t *texture) size() (int, int) { return t.desc.Width, t.desc.Height }

func (t *texture) texel(x, y int) []float32 {
	ch := t.desc.Format.Channels()
	i := (y*t.desc.Width + x) * ch
	return t.data[i : i+ch]
}

type framebuffer struct {
	label string
	color raster.TextureID
	depth raster.TextureID
}

type program struct {
	desc     raster.ProgramDesc
	uniforms map[string]any
}

// Backend is the CPU implementation of raster.Backend.
//
// Thread Safety: Backend is NOT thread-safe.
type Backend struct {
	opts options
	pool *parallel.WorkerPool

	next         uint64
	buffers      map[raster.BufferID][]byte
	textures     map[raster.TextureID]*texture
	framebuffers map[raster.FramebufferID]*framebuffer
	programs     map[raster.ProgramID]*program
}

// New creates a software backend.
func New(opts ...Option) *Backend {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Backend{
		opts:         o,
		pool:         parallel.NewWorkerPool(o.workers),
		buffers:      make(map[raster.BufferID][]byte),
		textures:     make(map[raster.TextureID]*texture),
		framebuffers: make(map[raster.FramebufferID]*framebuffer),
		programs:     make(map[raster.ProgramID]*program),
	}
}

// Name returns "software".
func (b *Backend) Name() string {
	return Name
}

// Target returns the default framebuffer, or nil.
func (b *Backend) Target() *Target {
	return b.opts.target
}

// SetTarget replaces the default framebuffer.
func (b *Backend) SetTarget(t *Target) {
	b.opts.target = t
}

// Close stops the shading workers. The backend must not be used afterwards.
func (b *Backend) Close() {
	b.pool.Close()
}

func (b *Backend) id() uint64 {
	b.next++
	return b.next
}

// CreateBuffer copies data into a new buffer.
func (b *Backend) CreateBuffer(label string, data []byte) (raster.BufferID, error) {
	id := raster.BufferID(b.id())
	b.buffers[id] = append([]byte(nil), data...)
	slogger().Debug("software: buffer created", "label", label, "bytes", len(data))
	return id, nil
}

// DestroyBuffer releases a buffer.
func (b *Backend) DestroyBuffer(id raster.BufferID) {
	delete(b.buffers, id)
}

// CreateTexture allocates a zeroed texture.
func (b *Backend) CreateTexture(desc raster.TextureDesc) (raster.TextureID, error) {
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > b.opts.maxTextureSize || desc.Height > b.opts.maxTextureSize {
		return raster.InvalidID, fmt.Errorf("%w: %q is %dx%d (max %d)",
			raster.ErrInvalidSize, desc.Label, desc.Width, desc.Height, b.opts.maxTextureSize)
	}
	switch desc.Format {
	case raster.TextureFormatRGBA32Float, raster.TextureFormatDepth32Float:
	default:
		return raster.InvalidID, fmt.Errorf("software: unsupported texture format %v", desc.Format)
	}
	id := raster.TextureID(b.id())
	b.textures[id] = &texture{
		desc: desc,
		data: make([]float32, desc.Width*desc.Height*desc.Format.Channels()),
	}
	return id, nil
}

// DestroyTexture releases a texture.
func (b *Backend) DestroyTexture(id raster.TextureID) {
	delete(b.textures, id)
}

// TextureSize returns the texture dimensions.
func (b *Backend) TextureSize(id raster.TextureID) (int, int) {
	t, ok := b.textures[id]
	if !ok {
		return 0, 0
	}
	return t.size()
}

// CreateFramebuffer creates a framebuffer.
func (b *Backend) CreateFramebuffer(label string, color, depth raster.TextureID) (raster.FramebufferID, error) {
	fb := &framebuffer{label: label}
	if err := b.attach(fb, color, depth); err != nil {
		return raster.InvalidID, err
	}
	id := raster.FramebufferID(b.id())
	b.framebuffers[id] = fb
	return id, nil
}

// AttachTextures replaces the attachments of a framebuffer.
func (b *Backend) AttachTextures(id raster.FramebufferID, color, depth raster.TextureID) error {
	fb, ok := b.framebuffers[id]
	if !ok {
		return fmt.Errorf("%w: framebuffer %d", raster.ErrUnknownResource, id)
	}
	return b.attach(fb, color, depth)
}

func (b *Backend) attach(fb *framebuffer, color, depth raster.TextureID) error {
	if color != raster.InvalidID {
		t, ok := b.textures[color]
		if !ok {
			return fmt.Errorf("%w: color texture %d", raster.ErrUnknownResource, color)
		}
		if t.desc.Format.IsDepth() {
			return fmt.Errorf("software: %q: color attachment has depth format", fb.label)
		}
	}
	if depth != raster.InvalidID {
		t, ok := b.textures[depth]
		if !ok {
			return fmt.Errorf("%w: depth texture %d", raster.ErrUnknownResource, depth)
		}
		if !t.desc.Format.IsDepth() {
			return fmt.Errorf("software: %q: depth attachment has color format", fb.label)
		}
	}
	fb.color = color
	fb.depth = depth
	return nil
}

// DestroyFramebuffer releases a framebuffer. Attached textures survive.
func (b *Backend) DestroyFramebuffer(id raster.FramebufferID) {
	delete(b.framebuffers, id)
}

// CreateProgram stores the kernels of a program. The WGSL source is not
// used.
func (b *Backend) CreateProgram(desc *raster.ProgramDesc) (raster.ProgramID, error) {
	if desc == nil || desc.Fragment == nil {
		return raster.InvalidID, fmt.Errorf("software: program %q has no fragment kernel", labelOf(desc))
	}
	id := raster.ProgramID(b.id())
	b.programs[id] = &program{desc: *desc, uniforms: make(map[string]any)}
	slogger().Debug("software: program linked", "label", desc.Label, "defines", desc.Defines)
	return id, nil
}

func labelOf(desc *raster.ProgramDesc) string {
	if desc == nil {
		return ""
	}
	return desc.Label
}

// DestroyProgram releases a program.
func (b *Backend) DestroyProgram(id raster.ProgramID) {
	delete(b.programs, id)
}

// SetUniform stores a uniform value on a program.
func (b *Backend) SetUniform(id raster.ProgramID, name string, value any) error {
	p, ok := b.programs[id]
	if !ok {
		return fmt.Errorf("%w: program %d", raster.ErrUnknownResource, id)
	}
	if !raster.ValidUniform(value) {
		return fmt.Errorf("%w: %s is %T", raster.ErrUniformType, name, value)
	}
	p.uniforms[name] = value
	return nil
}

// ReadTexture returns a copy of the texel data.
func (b *Backend) ReadTexture(id raster.TextureID) ([]float32, error) {
	t, ok := b.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: texture %d", raster.ErrUnknownResource, id)
	}
	return append([]float32(nil), t.data...), nil
}

// Flush is a no-op: software commands complete immediately.
func (b *Backend) Flush() error {
	return nil
}

// ReadPixel returns the color of a color texture texel as 8-bit RGBA.
// It is a test and debugging helper.
func (b *Backend) ReadPixel(id raster.TextureID, x, y int) (color.RGBA, bool) {
	t, ok := b.textures[id]
	if !ok || t.desc.Format.IsDepth() || x < 0 || y < 0 || x >= t.desc.Width || y >= t.desc.Height {
		return color.RGBA{}, false
	}
	px := t.texel(x, y)
	return blend.ToRGBA8(mgl32.Vec4{px[0], px[1], px[2], px[3]}), true
}

var _ raster.Backend = (*Backend)(nil)
