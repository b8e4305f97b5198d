// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/peel/raster"
)

// env is the kernel environment of one draw call. It only reads backend
// state, so quad bands may share it.
type env struct {
	b     *Backend
	p     *program
	units [raster.MaxTextureUnits]raster.TextureID
}

func (e *env) Float(name string) float32 {
	switch v := e.p.uniforms[name].(type) {
	case float32:
		return v
	case int32:
		return float32(v)
	case int:
		return float32(v)
	}
	return 0
}

func (e *env) Int(name string) int32 {
	switch v := e.p.uniforms[name].(type) {
	case int32:
		return v
	case int:
		return int32(v) //nolint:gosec // uniform ints are texture units and flags
	case float32:
		return int32(v)
	}
	return 0
}

func (e *env) Vec3(name string) mgl32.Vec3 {
	v, _ := e.p.uniforms[name].(mgl32.Vec3)
	return v
}

func (e *env) Vec4(name string) mgl32.Vec4 {
	v, _ := e.p.uniforms[name].(mgl32.Vec4)
	return v
}

func (e *env) Mat3(name string) mgl32.Mat3 {
	v, _ := e.p.uniforms[name].(mgl32.Mat3)
	return v
}

func (e *env) Mat4(name string) mgl32.Mat4 {
	v, _ := e.p.uniforms[name].(mgl32.Mat4)
	return v
}

func (e *env) Sample(sampler string, uv mgl32.Vec2) mgl32.Vec4 {
	unit := int(e.Int(sampler))
	if unit < 0 || unit >= raster.MaxTextureUnits {
		return mgl32.Vec4{}
	}
	t, ok := e.b.textures[e.units[unit]]
	if !ok {
		return mgl32.Vec4{}
	}
	return sampleTexture(t, uv)
}

// sampleTexture samples t at normalized coordinates with the texture's
// magnification filter and wrap modes.
func sampleTexture(t *texture, uv mgl32.Vec2) mgl32.Vec4 {
	w, h := t.size()
	fx := uv[0]*float32(w) - 0.5
	fy := uv[1]*float32(h) - 0.5

	if t.desc.MagFilter == raster.FilterNearest {
		x := wrap(int(math.Floor(float64(fx+0.5))), w, t.desc.WrapS)
		y := wrap(int(math.Floor(float64(fy+0.5))), h, t.desc.WrapT)
		return fetch(t, x, y)
	}

	x0f, y0f := math.Floor(float64(fx)), math.Floor(float64(fy))
	ax, ay := fx-float32(x0f), fy-float32(y0f)
	x0, y0 := int(x0f), int(y0f)
	xa, xb := wrap(x0, w, t.desc.WrapS), wrap(x0+1, w, t.desc.WrapS)
	ya, yb := wrap(y0, h, t.desc.WrapT), wrap(y0+1, h, t.desc.WrapT)

	top := lerp(fetch(t, xa, ya), fetch(t, xb, ya), ax)
	bottom := lerp(fetch(t, xa, yb), fetch(t, xb, yb), ax)
	return lerp(top, bottom, ay)
}

func fetch(t *texture, x, y int) mgl32.Vec4 {
	px := t.texel(x, y)
	if t.desc.Format.IsDepth() {
		return mgl32.Vec4{px[0], px[0], px[0], 1}
	}
	return mgl32.Vec4{px[0], px[1], px[2], px[3]}
}

func wrap(i, n int, mode raster.WrapMode) int {
	if mode == raster.WrapClampToEdge {
		return max(0, min(i, n-1))
	}
	return ((i % n) + n) % n
}

func lerp(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}
