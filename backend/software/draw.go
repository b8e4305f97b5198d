// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/peel/raster"
)

// quadDepth is the window depth of full-screen quad fragments (z = 0).
const quadDepth = 0.5

// minBandRows is the smallest row band handed to one worker.
const minBandRows = 16

type clearMask struct {
	color, depth bool
}

type colorWriter interface {
	storeColor(x, y int, c mgl32.Vec4)
}

type depthBuffer interface {
	loadDepth(x, y int) float32
	storeDepth(x, y int, d float32)
}

// drawTarget is a resolved framebuffer.
type drawTarget struct {
	width, height int
	color         colorWriter
	depth         depthBuffer
}

type colorTexture struct{ t *texture }

func (c colorTexture) storeColor(x, y int, v mgl32.Vec4) {
	copy(c.t.texel(x, y), v[:])
}

type depthTexture struct{ t *texture }

func (d depthTexture) loadDepth(x, y int) float32 { return d.t.texel(x, y)[0] }

func (d depthTexture) storeDepth(x, y int, v float32) { d.t.texel(x, y)[0] = v }

func (b *Backend) resolve(id raster.FramebufferID) (drawTarget, error) {
	if id == raster.DefaultFramebuffer {
		t := b.opts.target
		if t == nil {
			return drawTarget{}, raster.ErrNoTarget
		}
		return drawTarget{width: t.Width(), height: t.Height(), color: t, depth: t}, nil
	}

	fb, ok := b.framebuffers[id]
	if !ok {
		return drawTarget{}, fmt.Errorf("%w: framebuffer %d", raster.ErrUnknownResource, id)
	}
	var dt drawTarget
	if ct, ok := b.textures[fb.color]; ok {
		dt.color = colorTexture{ct}
		dt.width, dt.height = ct.size()
	}
	if zt, ok := b.textures[fb.depth]; ok {
		dt.depth = depthTexture{zt}
		w, h := zt.size()
		if dt.color == nil {
			dt.width, dt.height = w, h
		} else {
			dt.width, dt.height = min(dt.width, w), min(dt.height, h)
		}
	}
	if dt.color == nil && dt.depth == nil {
		return drawTarget{}, fmt.Errorf("software: framebuffer %q has no attachments", fb.label)
	}
	return dt, nil
}

// Clear resets attachments of fb.
func (b *Backend) Clear(id raster.FramebufferID, mask raster.ClearMask, c mgl32.Vec4, depth float32) error {
	m := clearMask{color: mask&raster.ClearColor != 0, depth: mask&raster.ClearDepth != 0}
	if id == raster.DefaultFramebuffer {
		if b.opts.target == nil {
			return raster.ErrNoTarget
		}
		b.opts.target.fill(m, c, depth)
		return nil
	}

	fb, ok := b.framebuffers[id]
	if !ok {
		return fmt.Errorf("%w: framebuffer %d", raster.ErrUnknownResource, id)
	}
	if t, ok := b.textures[fb.color]; ok && m.color {
		fillFloats(t.data, c[:])
	}
	if t, ok := b.textures[fb.depth]; ok && m.depth {
		fillFloats(t.data, []float32{depth})
	}
	return nil
}

func fillFloats(dst, v []float32) {
	for i := 0; i+len(v) <= len(dst); i += len(v) {
		copy(dst[i:], v)
	}
}

// Draw executes a draw call.
func (b *Backend) Draw(call *raster.DrawCall) error {
	p, ok := b.programs[call.Program]
	if !ok {
		return fmt.Errorf("%w: program %d", raster.ErrUnknownResource, call.Program)
	}
	dt, err := b.resolve(call.Framebuffer)
	if err != nil {
		return err
	}
	e := &env{b: b, p: p, units: call.Textures}

	switch call.Primitive {
	case raster.PrimitivePoints:
		return b.drawPoints(call, p, e, dt)
	case raster.PrimitiveQuad:
		b.drawQuad(call, p, e, dt)
		return nil
	default:
		return fmt.Errorf("software: unknown primitive %d", call.Primitive)
	}
}

func (b *Backend) drawPoints(call *raster.DrawCall, p *program, e *env, dt drawTarget) error {
	if call.Count <= 0 {
		return nil
	}
	if p.desc.Vertex == nil {
		return fmt.Errorf("software: program %q has no vertex kernel", p.desc.Label)
	}
	data, ok := b.buffers[call.VertexBuffer]
	if !ok {
		return fmt.Errorf("%w: buffer %d", raster.ErrUnknownResource, call.VertexBuffer)
	}

	w, h := float32(dt.width), float32(dt.height)
	for i := call.First; i < call.First+call.Count; i++ {
		v, ok := decodeVertex(data, call.Layout, i)
		if !ok {
			return fmt.Errorf("software: vertex %d outside buffer of %d bytes", i, len(data))
		}
		clip, vary := p.desc.Vertex(e, v)
		if clip[3] <= 0 {
			continue
		}
		ndc := clip.Vec3().Mul(1 / clip[3])
		if ndc[2] < -1 || ndc[2] > 1 {
			continue
		}
		x := int(math.Floor(float64((ndc[0] + 1) * 0.5 * w)))
		y := int(math.Floor(float64((1 - ndc[1]) * 0.5 * h)))
		if x < 0 || y < 0 || x >= dt.width || y >= dt.height {
			continue
		}
		frag := raster.Fragment{
			X:         x,
			Y:         y,
			FragCoord: mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5},
			Depth:     (ndc[2] + 1) * 0.5,
			Varyings:  vary,
		}
		shade(call, p, e, dt, &frag)
	}
	return nil
}

// drawQuad shades every pixel of the target. Rows are split into bands
// and shaded on the worker pool.
func (b *Backend) drawQuad(call *raster.DrawCall, p *program, e *env, dt drawTarget) {
	workers := b.pool.Workers()
	rows := max((dt.height+workers-1)/workers, minBandRows)

	work := make([]func(), 0, workers)
	for y0 := 0; y0 < dt.height; y0 += rows {
		y1 := min(y0+rows, dt.height)
		work = append(work, func() {
			for y := y0; y < y1; y++ {
				for x := range dt.width {
					frag := raster.Fragment{
						X:         x,
						Y:         y,
						FragCoord: mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5},
						Depth:     quadDepth,
					}
					shade(call, p, e, dt, &frag)
				}
			}
		})
	}
	b.pool.ExecuteAll(work)
}

// shade runs the fragment kernel and the per-fragment operations. A
// disabled depth test also disables depth writes.
func shade(call *raster.DrawCall, p *program, e *env, dt drawTarget, frag *raster.Fragment) {
	res := p.desc.Fragment(e, frag)
	if res.Discard {
		return
	}
	if call.DepthTest && dt.depth != nil {
		d := mgl32.Clamp(res.Depth, 0, 1)
		if !call.DepthFunc.Test(d, dt.depth.loadDepth(frag.X, frag.Y)) {
			return
		}
		dt.depth.storeDepth(frag.X, frag.Y, d)
	}
	if dt.color != nil {
		dt.color.storeColor(frag.X, frag.Y, res.Color)
	}
}

// decodeVertex reads vertex i from a packed buffer.
func decodeVertex(data []byte, l raster.VertexLayout, i int) (raster.Vertex, bool) {
	var v raster.Vertex
	if i < 0 {
		return v, false
	}
	pos, ok := readVec3(data, l.CoordOffset+i*12)
	if !ok {
		return v, false
	}
	c := l.ColorOffset + i*4
	if c+4 > len(data) {
		return v, false
	}
	v.Position = pos
	v.Color = mgl32.Vec4{
		float32(data[c]) / 255,
		float32(data[c+1]) / 255,
		float32(data[c+2]) / 255,
		float32(data[c+3]) / 255,
	}
	if l.HasNormals {
		n, ok := readVec3(data, l.NormalOffset+i*12)
		if !ok {
			return v, false
		}
		v.Normal = n
	}
	return v, true
}

func readVec3(data []byte, off int) (mgl32.Vec3, bool) {
	if off < 0 || off+12 > len(data) {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{
		math.Float32frombits(binary.LittleEndian.Uint32(data[off:])),
		math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(data[off+8:])),
	}, true
}
