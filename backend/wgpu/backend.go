// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/peel/backend"
	"github.com/gogpu/peel/raster"
)

// Name is the registry name of the wgpu backend.
const Name = "wgpu"

// ErrNotHalProvider is returned when a device provider does not expose
// HAL handles.
var ErrNotHalProvider = errors.New("wgpu: provider does not expose hal.Device and hal.Queue")

func init() {
	backend.Register(Name, func(cfg backend.Config) (raster.Backend, error) {
		if cfg.Provider == nil {
			return nil, backend.ErrNoDevice
		}
		return NewFromProvider(cfg.Provider, WithTargetSize(cfg.Width, cfg.Height))
	})
}

type buffer struct {
	buf  hal.Buffer
	size int
}

type texture struct {
	desc raster.TextureDesc
	tex  hal.Texture
	view hal.TextureView

	// state is the usage the texture was last transitioned to.
	state gputypes.TextureUsage
}

type framebuffer struct {
	label string
	color raster.TextureID
	depth raster.TextureID
}

type program struct {
	desc   raster.ProgramDesc
	block  uniformBlock
	values map[string]any

	module     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
}

// Backend is the GPU implementation of raster.Backend.
//
// Thread Safety: Backend is NOT thread-safe.
type Backend struct {
	device hal.Device
	queue  hal.Queue
	opts   options

	next         uint64
	buffers      map[raster.BufferID]*buffer
	textures     map[raster.TextureID]*texture
	framebuffers map[raster.FramebufferID]*framebuffer
	programs     map[raster.ProgramID]*program
	pipelines    map[pipelineKey]hal.RenderPipeline

	// target is the default framebuffer.
	target struct {
		color, depth *texture
	}

	encoder   hal.CommandEncoder
	transient []func()
}

// New creates a backend on an existing device and queue. The backend does
// not take ownership of either.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, backend.ErrNoDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	b := &Backend{
		device:       device,
		queue:        queue,
		opts:         o,
		buffers:      make(map[raster.BufferID]*buffer),
		textures:     make(map[raster.TextureID]*texture),
		framebuffers: make(map[raster.FramebufferID]*framebuffer),
		programs:     make(map[raster.ProgramID]*program),
		pipelines:    make(map[pipelineKey]hal.RenderPipeline),
	}
	if o.width > 0 && o.height > 0 {
		if err := b.SetTargetSize(o.width, o.height); err != nil {
			return nil, err
		}
	}
	slogger().Debug("wgpu: backend created", "width", o.width, "height", o.height)
	return b, nil
}

// NewFromProvider creates a backend sharing the device of a gpucontext
// provider. The provider must implement HalDevice() any and HalQueue() any.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHalProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNotHalProvider, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNotHalProvider, hp.HalQueue())
	}
	return New(device, queue, opts...)
}

// Name implements raster.Backend.
func (b *Backend) Name() string { return Name }

func (b *Backend) id() uint64 {
	b.next++
	return b.next
}

// SetTargetSize (re)allocates the default framebuffer.
func (b *Backend) SetTargetSize(width, height int) error {
	b.destroyTarget()
	color, err := b.newTexture(raster.TextureDesc{Label: "target.color", Width: width, Height: height},
		gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return err
	}
	depth, err := b.newTexture(raster.TextureDesc{
		Label: "target.depth", Width: width, Height: height, Format: raster.TextureFormatDepth32Float,
	}, gputypes.TextureFormatDepth32Float)
	if err != nil {
		b.destroyTexture(color)
		return err
	}
	b.target.color, b.target.depth = color, depth
	return nil
}

func (b *Backend) destroyTarget() {
	if b.target.color != nil {
		b.destroyTexture(b.target.color)
	}
	if b.target.depth != nil {
		b.destroyTexture(b.target.depth)
	}
	b.target.color, b.target.depth = nil, nil
}

// Close flushes pending work and destroys every resource. The device and
// queue are left alive.
func (b *Backend) Close() {
	if err := b.Flush(); err != nil {
		slogger().Warn("wgpu: flush on close failed", "err", err)
	}
	for key, p := range b.pipelines {
		b.device.DestroyRenderPipeline(p)
		delete(b.pipelines, key)
	}
	for id := range b.programs {
		b.DestroyProgram(id)
	}
	for id := range b.framebuffers {
		b.DestroyFramebuffer(id)
	}
	for id := range b.textures {
		b.DestroyTexture(id)
	}
	for id := range b.buffers {
		b.DestroyBuffer(id)
	}
	b.destroyTarget()
}

// ---- Buffers ----

// CreateBuffer implements raster.Backend.
func (b *Backend) CreateBuffer(label string, data []byte) (raster.BufferID, error) {
	// Zero-sized buffers are invalid; keep a minimal allocation.
	size := max(roundUp(len(data), 4), 4)
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(size), //nolint:gosec // size is positive
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return raster.InvalidID, fmt.Errorf("wgpu: create buffer %q: %w", label, err)
	}
	if len(data) > 0 {
		padded := data
		if len(data) != size {
			padded = make([]byte, size)
			copy(padded, data)
		}
		b.queue.WriteBuffer(buf, 0, padded)
	}
	id := raster.BufferID(b.id())
	b.buffers[id] = &buffer{buf: buf, size: len(data)}
	return id, nil
}

// DestroyBuffer implements raster.Backend.
func (b *Backend) DestroyBuffer(id raster.BufferID) {
	buf, ok := b.buffers[id]
	if !ok {
		return
	}
	b.retire(func() { b.device.DestroyBuffer(buf.buf) })
	delete(b.buffers, id)
}

// ---- Textures ----

func halFormat(f raster.TextureFormat) gputypes.TextureFormat {
	if f == raster.TextureFormatDepth32Float {
		return gputypes.TextureFormatDepth32Float
	}
	return gputypes.TextureFormatRGBA32Float
}

func (b *Backend) newTexture(desc raster.TextureDesc, format gputypes.TextureFormat) (*texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > b.opts.maxTextureSize || desc.Height > b.opts.maxTextureSize {
		return nil, fmt.Errorf("%w: %dx%d (max %d)", raster.ErrInvalidSize,
			desc.Width, desc.Height, b.opts.maxTextureSize)
	}
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),  //nolint:gosec // checked above
			Height:             uint32(desc.Height), //nolint:gosec // checked above
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: desc.Label + "_view",
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create view %q: %w", desc.Label, err)
	}
	return &texture{desc: desc, tex: tex, view: view}, nil
}

func (b *Backend) destroyTexture(t *texture) {
	b.retire(func() {
		b.device.DestroyTextureView(t.view)
		b.device.DestroyTexture(t.tex)
	})
}

// CreateTexture implements raster.Backend. Sampling parameters are
// ignored: programs read texels with textureLoad.
func (b *Backend) CreateTexture(desc raster.TextureDesc) (raster.TextureID, error) {
	t, err := b.newTexture(desc, halFormat(desc.Format))
	if err != nil {
		return raster.InvalidID, err
	}
	id := raster.TextureID(b.id())
	b.textures[id] = t
	return id, nil
}

// DestroyTexture implements raster.Backend.
func (b *Backend) DestroyTexture(id raster.TextureID) {
	t, ok := b.textures[id]
	if !ok {
		return
	}
	b.destroyTexture(t)
	delete(b.textures, id)
}

// TextureSize implements raster.Backend.
func (b *Backend) TextureSize(id raster.TextureID) (int, int) {
	t, ok := b.textures[id]
	if !ok {
		return 0, 0
	}
	return t.desc.Width, t.desc.Height
}

// ---- Framebuffers ----

func (b *Backend) attach(label string, color, depth raster.TextureID) error {
	if color != raster.InvalidID {
		t, ok := b.textures[color]
		if !ok {
			return fmt.Errorf("%w: color attachment %d of %q", raster.ErrUnknownResource, color, label)
		}
		if t.desc.Format.IsDepth() {
			return fmt.Errorf("wgpu: %q: color attachment %d is a depth texture", label, color)
		}
	}
	if depth != raster.InvalidID {
		t, ok := b.textures[depth]
		if !ok {
			return fmt.Errorf("%w: depth attachment %d of %q", raster.ErrUnknownResource, depth, label)
		}
		if !t.desc.Format.IsDepth() {
			return fmt.Errorf("wgpu: %q: depth attachment %d is not a depth texture", label, depth)
		}
	}
	return nil
}

// CreateFramebuffer implements raster.Backend.
func (b *Backend) CreateFramebuffer(label string, color, depth raster.TextureID) (raster.FramebufferID, error) {
	if err := b.attach(label, color, depth); err != nil {
		return raster.InvalidID, err
	}
	id := raster.FramebufferID(b.id())
	b.framebuffers[id] = &framebuffer{label: label, color: color, depth: depth}
	return id, nil
}

// AttachTextures implements raster.Backend.
func (b *Backend) AttachTextures(id raster.FramebufferID, color, depth raster.TextureID) error {
	fb, ok := b.framebuffers[id]
	if !ok {
		return fmt.Errorf("%w: framebuffer %d", raster.ErrUnknownResource, id)
	}
	if err := b.attach(fb.label, color, depth); err != nil {
		return err
	}
	fb.color, fb.depth = color, depth
	return nil
}

// DestroyFramebuffer implements raster.Backend.
func (b *Backend) DestroyFramebuffer(id raster.FramebufferID) {
	delete(b.framebuffers, id)
}

// resolve returns the attachments of fb. Either may be nil.
func (b *Backend) resolve(id raster.FramebufferID) (color, depth *texture, err error) {
	if id == raster.DefaultFramebuffer {
		if b.target.color == nil {
			return nil, nil, raster.ErrNoTarget
		}
		return b.target.color, b.target.depth, nil
	}
	fb, ok := b.framebuffers[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: framebuffer %d", raster.ErrUnknownResource, id)
	}
	return b.textures[fb.color], b.textures[fb.depth], nil
}

// ---- Programs ----

// CreateProgram implements raster.Backend. The WGSL source is compiled
// with naga; pipelines are built lazily per draw state.
func (b *Backend) CreateProgram(desc *raster.ProgramDesc) (raster.ProgramID, error) {
	words, err := compileWGSL(desc.Source)
	if err != nil {
		return raster.InvalidID, fmt.Errorf("wgpu: program %q: %w", desc.Label, err)
	}
	module, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return raster.InvalidID, fmt.Errorf("wgpu: program %q: create shader module: %w", desc.Label, err)
	}

	p := &program{
		desc:   *desc,
		block:  layoutUniforms(desc.Uniforms),
		values: make(map[string]any),
		module: module,
	}
	if err := b.createLayouts(p); err != nil {
		b.device.DestroyShaderModule(module)
		return raster.InvalidID, err
	}

	id := raster.ProgramID(b.id())
	b.programs[id] = p
	slogger().Debug("wgpu: program created", "label", desc.Label, "uniform_bytes", p.block.size)
	return id, nil
}

// DestroyProgram implements raster.Backend.
func (b *Backend) DestroyProgram(id raster.ProgramID) {
	p, ok := b.programs[id]
	if !ok {
		return
	}
	for key, pipe := range b.pipelines {
		if key.program == id {
			b.retire(func() { b.device.DestroyRenderPipeline(pipe) })
			delete(b.pipelines, key)
		}
	}
	b.retire(func() {
		b.device.DestroyPipelineLayout(p.pipeLayout)
		b.device.DestroyBindGroupLayout(p.bindLayout)
		b.device.DestroyShaderModule(p.module)
	})
	delete(b.programs, id)
}

// SetUniform implements raster.Backend.
func (b *Backend) SetUniform(id raster.ProgramID, name string, value any) error {
	p, ok := b.programs[id]
	if !ok {
		return fmt.Errorf("%w: program %d", raster.ErrUnknownResource, id)
	}
	if !raster.ValidUniform(value) {
		return fmt.Errorf("%w: %s is %T", raster.ErrUniformType, name, value)
	}
	p.values[name] = value
	return nil
}

// retire schedules a release for the next Flush, after recorded work that
// may still reference the resource has completed.
func (b *Backend) retire(release func()) {
	if b.encoder == nil {
		release()
		return
	}
	b.transient = append(b.transient, release)
}

var _ raster.Backend = (*Backend)(nil)
