// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/peel/raster"
)

// copyPitchAlignment is the row alignment of texture-to-buffer copies.
const copyPitchAlignment = 256

// recording returns the open command encoder, starting one if needed.
func (b *Backend) recording() (hal.CommandEncoder, error) {
	if b.encoder != nil {
		return b.encoder, nil
	}
	enc, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "peel_frame"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("peel_frame"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	b.encoder = enc
	return enc, nil
}

// transition moves textures to a new usage, skipping ones already there.
func transition(enc hal.CommandEncoder, usage gputypes.TextureUsage, textures ...*texture) {
	var barriers []hal.TextureBarrier
	for _, t := range textures {
		if t == nil || t.state == usage {
			continue
		}
		barriers = append(barriers, hal.TextureBarrier{
			Texture: t.tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: t.state,
				NewUsage: usage,
			},
		})
		t.state = usage
	}
	if len(barriers) > 0 {
		enc.TransitionTextures(barriers)
	}
}

func loadOp(clear bool) gputypes.LoadOp {
	if clear {
		return gputypes.LoadOpClear
	}
	return gputypes.LoadOpLoad
}

// passDescriptor describes a render pass on the attachments of a
// framebuffer. Attachments not being cleared are loaded.
func passDescriptor(label string, color, depth *texture, clearColor, clearDepth bool, cv mgl32.Vec4, dv float32) *hal.RenderPassDescriptor {
	desc := &hal.RenderPassDescriptor{Label: label}
	if color != nil {
		desc.ColorAttachments = []hal.RenderPassColorAttachment{{
			View:    color.view,
			LoadOp:  loadOp(clearColor),
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(cv[0]), G: float64(cv[1]), B: float64(cv[2]), A: float64(cv[3]),
			},
		}}
	}
	if depth != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            depth.view,
			DepthLoadOp:     loadOp(clearDepth),
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: dv,
			StencilLoadOp:   gputypes.LoadOpLoad,
			StencilStoreOp:  gputypes.StoreOpStore,
		}
	}
	return desc
}

// Clear implements raster.Backend with an empty render pass whose load
// operations do the clearing.
func (b *Backend) Clear(fb raster.FramebufferID, mask raster.ClearMask, c mgl32.Vec4, d float32) error {
	color, depth, err := b.resolve(fb)
	if err != nil {
		return err
	}
	enc, err := b.recording()
	if err != nil {
		return err
	}
	transition(enc, gputypes.TextureUsageRenderAttachment, color, depth)
	rp := enc.BeginRenderPass(passDescriptor("clear", color, depth,
		mask&raster.ClearColor != 0, mask&raster.ClearDepth != 0, c, d))
	rp.End()
	return nil
}

// unit reads the texture unit stored in a sampler uniform.
func (p *program) unit(name string) int {
	switch v := p.values[name].(type) {
	case int:
		return v
	case int32:
		return int(v)
	default:
		return 0
	}
}

// Draw implements raster.Backend. Each draw records one render pass with
// its own uniform buffer and bind group.
func (b *Backend) Draw(call *raster.DrawCall) error {
	p, ok := b.programs[call.Program]
	if !ok {
		return fmt.Errorf("%w: program %d", raster.ErrUnknownResource, call.Program)
	}
	points := call.Primitive == raster.PrimitivePoints
	if points && call.Count <= 0 {
		return nil
	}
	var vbo *buffer
	if points {
		if vbo, ok = b.buffers[call.VertexBuffer]; !ok {
			return fmt.Errorf("%w: buffer %d", raster.ErrUnknownResource, call.VertexBuffer)
		}
	}
	color, depth, err := b.resolve(call.Framebuffer)
	if err != nil {
		return err
	}
	if color == nil {
		return fmt.Errorf("wgpu: framebuffer %d has no color attachment", call.Framebuffer)
	}

	key := pipelineKey{
		program:   call.Program,
		primitive: call.Primitive,
		depthTest: call.DepthTest,
		depthFunc: call.DepthFunc,
		color:     halFormat(color.desc.Format),
		hasDepth:  depth != nil,
	}
	if color == b.target.color {
		key.color = gputypes.TextureFormatRGBA8Unorm
	}
	if depth != nil {
		key.depth = gputypes.TextureFormatDepth32Float
	}
	pipe, err := b.pipeline(key, p)
	if err != nil {
		return err
	}

	sampled := make([]*texture, 0, len(p.desc.Samplers))
	for _, s := range p.desc.Samplers {
		unit := p.unit(s.Name)
		if unit < 0 || unit >= raster.MaxTextureUnits {
			return fmt.Errorf("wgpu: program %q: sampler %s uses unit %d", p.desc.Label, s.Name, unit)
		}
		t, ok := b.textures[call.Textures[unit]]
		if !ok {
			return fmt.Errorf("%w: no texture on unit %d for %s", raster.ErrUnknownResource, unit, s.Name)
		}
		sampled = append(sampled, t)
	}

	bg, err := b.bindGroup(p, sampled)
	if err != nil {
		return err
	}

	enc, err := b.recording()
	if err != nil {
		return err
	}
	transition(enc, gputypes.TextureUsageTextureBinding, sampled...)
	transition(enc, gputypes.TextureUsageRenderAttachment, color, depth)

	rp := enc.BeginRenderPass(passDescriptor(p.desc.Label, color, depth, false, false, mgl32.Vec4{}, 1))
	rp.SetPipeline(pipe)
	rp.SetBindGroup(0, bg, nil)
	if points {
		l := call.Layout
		rp.SetVertexBuffer(0, vbo.buf, uint64(l.CoordOffset)) //nolint:gosec // offsets are non-negative
		rp.SetVertexBuffer(1, vbo.buf, uint64(l.ColorOffset)) //nolint:gosec // offsets are non-negative
		rp.Draw(uint32(call.Count), 1, uint32(call.First), 0) //nolint:gosec // count checked above
	} else {
		rp.Draw(quadVertices, 1, 0, 0)
	}
	rp.End()
	return nil
}

// bindGroup packs the program uniforms into a fresh buffer and binds it
// with the sampled textures. Both are released on Flush.
func (b *Backend) bindGroup(p *program, sampled []*texture) (hal.BindGroup, error) {
	data, err := p.block.pack(p.values)
	if err != nil {
		return nil, err
	}
	ubo, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: p.desc.Label + "_uniforms",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	b.queue.WriteBuffer(ubo, 0, data)

	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{
			Buffer: ubo.NativeHandle(), Offset: 0, Size: uint64(len(data)),
		}},
	}
	for i, s := range p.desc.Samplers {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  s.Binding,
			Resource: gputypes.TextureViewBinding{TextureView: sampled[i].view.NativeHandle()},
		})
	}
	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   p.desc.Label + "_bind",
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		b.device.DestroyBuffer(ubo)
		return nil, fmt.Errorf("wgpu: create bind group: %w", err)
	}
	b.transient = append(b.transient, func() {
		b.device.DestroyBindGroup(bg)
		b.device.DestroyBuffer(ubo)
	})
	return bg, nil
}

// submit ends enc, submits it and waits for completion.
func (b *Backend) submit(enc hal.CommandEncoder) error {
	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, b.opts.fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wgpu: wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

// Flush implements raster.Backend. It submits recorded passes, waits for
// them and frees the per-draw resources.
func (b *Backend) Flush() error {
	if b.encoder == nil {
		return nil
	}
	enc := b.encoder
	b.encoder = nil
	err := b.submit(enc)

	for _, release := range b.transient {
		release()
	}
	b.transient = b.transient[:0]
	return err
}

// readback copies a texture into host memory, one tightly packed row per
// texture row.
func (b *Backend) readback(t *texture, texelSize int) ([]byte, error) {
	if err := b.Flush(); err != nil {
		return nil, err
	}
	w, h := uint32(t.desc.Width), uint32(t.desc.Height) //nolint:gosec // validated at creation
	bytesPerRow := w * uint32(texelSize)                 //nolint:gosec // texel sizes are small
	aligned := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(aligned) * uint64(h)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: t.desc.Label + "_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	enc, err := b.recording()
	if err != nil {
		return nil, err
	}
	b.encoder = nil
	transition(enc, gputypes.TextureUsageCopySrc, t)
	enc.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: aligned, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	if err := b.submit(enc); err != nil {
		return nil, err
	}

	raw := make([]byte, size)
	if err := b.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}
	if aligned == bytesPerRow {
		return raw, nil
	}
	tight := make([]byte, int(bytesPerRow)*int(h))
	for row := range int(h) {
		copy(tight[row*int(bytesPerRow):(row+1)*int(bytesPerRow)], raw[row*int(aligned):])
	}
	return tight, nil
}

// ReadTexture implements raster.Backend.
func (b *Backend) ReadTexture(id raster.TextureID) ([]float32, error) {
	t, ok := b.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: texture %d", raster.ErrUnknownResource, id)
	}
	ch := t.desc.Format.Channels()
	raw, err := b.readback(t, 4*ch)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out, nil
}

// ReadTarget copies the default framebuffer into an image.
func (b *Backend) ReadTarget() (*image.RGBA, error) {
	t := b.target.color
	if t == nil {
		return nil, raster.ErrNoTarget
	}
	raw, err := b.readback(t, 4)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, t.desc.Width, t.desc.Height))
	copy(img.Pix, raw)
	return img, nil
}
