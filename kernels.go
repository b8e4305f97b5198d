package peel

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/peel/internal/blend"
	"github.com/gogpu/peel/raster"
)

// CPU kernels mirroring shaders/*.wgsl for the software backend.

// selectors is the decoded define list of a peeling program.
type selectors struct {
	lambert, phong, blinnPhong, twoSide bool
}

func newSelectors(defines []string) selectors {
	var s selectors
	for _, d := range defines {
		switch d {
		case DefineLambert:
			s.lambert = true
		case DefinePhong:
			s.phong = true
		case DefineBlinnPhong:
			s.blinnPhong = true
		case DefineTwoSideLighting:
			s.twoSide = true
		}
	}
	return s
}

func (s selectors) lit() bool {
	return s.lambert || s.phong || s.blinnPhong
}

func peelVertex(u raster.Uniforms, in raster.Vertex) (mgl32.Vec4, raster.Varyings) {
	pos := in.Position.Vec4(1)
	clip := u.Mat4("ModelViewProjectionMatrix").Mul4x1(pos)
	return clip, raster.Varyings{
		Color:        in.Color,
		Normal:       u.Mat3("NormalMatrix").Mul3x1(in.Normal),
		ViewPosition: u.Mat4("ModelViewMatrix").Mul4x1(pos).Vec3(),
	}
}

func (s selectors) peelFragment(env raster.Env, f *raster.Fragment) raster.FragmentResult {
	uv := mgl32.Vec2{f.FragCoord[0] / env.Float("width"), f.FragCoord[1] / env.Float("height")}
	front := env.Sample("depth_front", uv)[0]
	if f.Depth <= front {
		return raster.FragmentResult{Discard: true}
	}
	rgb := s.shade(env, f.Color.Vec3(), f.Normal, f.ViewPosition)
	return raster.FragmentResult{Color: rgb.Vec4(1), Depth: f.Depth}
}

// shade applies the selected lighting model. A zero normal leaves only
// the ambient term.
func (s selectors) shade(u raster.Uniforms, color, normal, position mgl32.Vec3) mgl32.Vec3 {
	if !s.lit() {
		return color
	}
	ka := u.Float("shading.Ka")
	if normal.Dot(normal) == 0 {
		return color.Mul(ka)
	}

	n := normal.Normalize()
	l := u.Vec3("LightPosition").Sub(position).Normalize()
	v := position.Mul(-1).Normalize()

	nl := n.Dot(l)
	if s.twoSide {
		nl = math32.Abs(nl)
	}
	dd := math32.Max(nl, 0)

	var ds float32
	switch {
	case s.phong:
		r := n.Mul(2 * n.Dot(l)).Sub(l)
		ds = math32.Pow(math32.Max(r.Dot(v), 0), u.Float("shading.S"))
	case s.blinnPhong:
		h := l.Add(v).Normalize()
		nh := n.Dot(h)
		if s.twoSide {
			nh = math32.Abs(nh)
		}
		ds = math32.Pow(math32.Max(nh, 0), u.Float("shading.S"))
	}

	specular := u.Float("shading.Ks") * ds
	diffuse := ka + u.Float("shading.Kd")*dd
	return color.Mul(diffuse).Add(mgl32.Vec3{specular, specular, specular})
}

func blendFragment(env raster.Env, f *raster.Fragment) raster.FragmentResult {
	uv := mgl32.Vec2{f.FragCoord[0] / env.Float("width"), f.FragCoord[1] / env.Float("height")}
	front := env.Sample("color_front", uv)
	back := env.Sample("color_back", uv)
	return raster.FragmentResult{
		Color: blend.Under(front, back),
		Depth: env.Sample("depth_back", uv)[0],
	}
}

func finalizeFragment(env raster.Env, f *raster.Fragment) raster.FragmentResult {
	uv := mgl32.Vec2{f.FragCoord[0] / env.Float("width"), f.FragCoord[1] / env.Float("height")}
	acc := env.Sample("color_buffer", uv)
	return raster.FragmentResult{
		Color: blend.OverBackground(acc, env.Vec3("background_color")),
		Depth: f.Depth,
	}
}
