package peel

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gogpu/peel/raster"
)

// Compile-time selectors of the peeling program.
const (
	DefineLambert         = "ENABLE_LAMBERT_SHADING"
	DefinePhong           = "ENABLE_PHONG_SHADING"
	DefineBlinnPhong      = "ENABLE_BLINN_PHONG_SHADING"
	DefineTwoSideLighting = "ENABLE_TWO_SIDE_LIGHTING"
)

var selectorNames = []string{DefineLambert, DefinePhong, DefineBlinnPhong, DefineTwoSideLighting}

// Texture units of the sampler uniforms.
const (
	unitColorBuffer = 0
	unitDepthFront  = 10
	unitColorFront  = 11
	unitDepthBack   = 12
	unitColorBack   = 13
)

//go:embed shaders/peeling.wgsl
var peelingShaderSource string

//go:embed shaders/blending.wgsl
var blendingShaderSource string

//go:embed shaders/finalizing.wgsl
var finalizingShaderSource string

// PeelingShaderSource returns the unspecialised WGSL peeling program.
func PeelingShaderSource() string { return peelingShaderSource }

// BlendingShaderSource returns the WGSL blending program.
func BlendingShaderSource() string { return blendingShaderSource }

// FinalizingShaderSource returns the WGSL finalizing program.
func FinalizingShaderSource() string { return finalizingShaderSource }

// Specialize prepends one bool constant per selector, true for each name
// in defines. WGSL has no preprocessor; branches on the constants fold at
// pipeline creation.
func Specialize(source string, defines []string) string {
	var b strings.Builder
	for _, name := range selectorNames {
		on := false
		for _, d := range defines {
			if d == name {
				on = true
				break
			}
		}
		fmt.Fprintf(&b, "const %s: bool = %t;\n", name, on)
	}
	b.WriteString(source)
	return b.String()
}

// peelingDefines returns the selectors for a shading configuration.
// Two-sided lighting only applies when shading is on.
func peelingDefines(s Shading, enabled, twoSided bool) []string {
	if !enabled {
		return nil
	}
	var defines []string
	if d := s.Model.Define(); d != "" {
		defines = append(defines, d)
	}
	if twoSided {
		defines = append(defines, DefineTwoSideLighting)
	}
	return defines
}

func peelingProgram(defines []string) *raster.ProgramDesc {
	sel := newSelectors(defines)
	return &raster.ProgramDesc{
		Label:   "peeling",
		Source:  Specialize(peelingShaderSource, defines),
		Defines: defines,
		Uniforms: []raster.UniformDecl{
			{Name: "shading.Ka", Type: raster.UniformFloat},
			{Name: "shading.Kd", Type: raster.UniformFloat},
			{Name: "shading.Ks", Type: raster.UniformFloat},
			{Name: "shading.S", Type: raster.UniformFloat},
			{Name: "width", Type: raster.UniformFloat},
			{Name: "height", Type: raster.UniformFloat},
			{Name: "ModelViewMatrix", Type: raster.UniformMat4},
			{Name: "ModelViewProjectionMatrix", Type: raster.UniformMat4},
			{Name: "NormalMatrix", Type: raster.UniformMat3},
			{Name: "LightPosition", Type: raster.UniformVec3},
		},
		Samplers: []raster.SamplerDecl{
			{Name: "depth_front", Binding: 1, Depth: true},
		},
		Vertex:   peelVertex,
		Fragment: sel.peelFragment,
	}
}

func blendingProgram() *raster.ProgramDesc {
	return &raster.ProgramDesc{
		Label:  "blending",
		Source: blendingShaderSource,
		Uniforms: []raster.UniformDecl{
			{Name: "width", Type: raster.UniformFloat},
			{Name: "height", Type: raster.UniformFloat},
		},
		Samplers: []raster.SamplerDecl{
			{Name: "color_front", Binding: 1},
			{Name: "depth_back", Binding: 2, Depth: true},
			{Name: "color_back", Binding: 3},
		},
		Fragment: blendFragment,
	}
}

func finalizingProgram() *raster.ProgramDesc {
	return &raster.ProgramDesc{
		Label:  "finalizing",
		Source: finalizingShaderSource,
		Uniforms: []raster.UniformDecl{
			{Name: "background_color", Type: raster.UniformVec3},
			{Name: "width", Type: raster.UniformFloat},
			{Name: "height", Type: raster.UniformFloat},
		},
		Samplers: []raster.SamplerDecl{
			{Name: "color_buffer", Binding: 1},
		},
		Fragment: finalizeFragment,
	}
}

// shaderSet holds the three linked programs.
type shaderSet struct {
	peeling, blending, finalizing raster.ProgramID
}

func (s *shaderSet) programs() []raster.ProgramID {
	return []raster.ProgramID{s.peeling, s.blending, s.finalizing}
}

func (s *shaderSet) built() bool {
	return s.peeling != raster.InvalidID
}

// build compiles the three programs and pushes the uniforms that only
// change on rebuild: material, sampler units and background.
func (s *shaderSet) build(ctx *raster.Context, o *options) error {
	defines := peelingDefines(o.shading, o.shadingEnabled, ctx.TwoSidedLighting())

	var err error
	if s.peeling, err = ctx.CreateProgram(peelingProgram(defines)); err != nil {
		return setupError("build peeling program", err)
	}
	if s.blending, err = ctx.CreateProgram(blendingProgram()); err != nil {
		return setupError("build blending program", err)
	}
	if s.finalizing, err = ctx.CreateProgram(finalizingProgram()); err != nil {
		return setupError("build finalizing program", err)
	}

	uniforms := []struct {
		p     raster.ProgramID
		name  string
		value any
	}{
		{s.peeling, "shading.Ka", o.shading.Ka},
		{s.peeling, "shading.Kd", o.shading.Kd},
		{s.peeling, "shading.Ks", o.shading.Ks},
		{s.peeling, "shading.S", o.shading.S},
		{s.peeling, "depth_front", unitDepthFront},
		{s.blending, "color_front", unitColorFront},
		{s.blending, "depth_back", unitDepthBack},
		{s.blending, "color_back", unitColorBack},
		{s.finalizing, "color_buffer", unitColorBuffer},
		{s.finalizing, "background_color", o.background},
	}
	for _, u := range uniforms {
		if err := ctx.SetUniform(u.p, u.name, u.value); err != nil {
			return setupError("set uniform "+u.name, err)
		}
	}
	return nil
}

// setSize pushes the viewport size to every program.
func (s *shaderSet) setSize(ctx *raster.Context, width, height int) error {
	for _, p := range s.programs() {
		if err := ctx.SetUniform(p, "width", float32(width)); err != nil {
			return err
		}
		if err := ctx.SetUniform(p, "height", float32(height)); err != nil {
			return err
		}
	}
	return nil
}

// release destroys the programs. Unbuilt programs are skipped.
func (s *shaderSet) release(ctx *raster.Context) {
	ctx.DestroyProgram(s.peeling)
	ctx.DestroyProgram(s.blending)
	ctx.DestroyProgram(s.finalizing)
	*s = shaderSet{}
}
