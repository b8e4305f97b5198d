package peel

import "github.com/go-gl/mathgl/mgl32"

// Light is a point light. Position is in view (eye) coordinates, the
// space lit fragments are shaded in.
type Light struct {
	Position mgl32.Vec3
}

// DefaultLight returns a light at the default camera position.
func DefaultLight() *Light {
	return &Light{Position: mgl32.Vec3{0, 0, 12}}
}

// ShadingModel selects the lighting equation of the peeling program.
type ShadingModel uint8

// Shading models.
const (
	ShadingNone ShadingModel = iota
	ShadingLambert
	ShadingPhong
	ShadingBlinnPhong
)

// String returns the model name.
func (m ShadingModel) String() string {
	switch m {
	case ShadingLambert:
		return "lambert"
	case ShadingPhong:
		return "phong"
	case ShadingBlinnPhong:
		return "blinn-phong"
	default:
		return "none"
	}
}

// Define returns the compile-time selector for the model, or "" for
// ShadingNone.
func (m ShadingModel) Define() string {
	switch m {
	case ShadingLambert:
		return DefineLambert
	case ShadingPhong:
		return DefinePhong
	case ShadingBlinnPhong:
		return DefineBlinnPhong
	default:
		return ""
	}
}

// Shading holds the material coefficients pushed to the peeling program.
type Shading struct {
	Model ShadingModel

	// Ka, Kd and Ks are the ambient, diffuse and specular coefficients.
	Ka, Kd, Ks float32

	// S is the specular exponent.
	S float32
}

// LambertShading returns the default diffuse material.
func LambertShading() Shading {
	return Shading{Model: ShadingLambert, Ka: 0.4, Kd: 0.6}
}

// PhongShading returns a Phong material.
func PhongShading() Shading {
	return Shading{Model: ShadingPhong, Ka: 0.3, Kd: 0.5, Ks: 0.8, S: 100}
}

// BlinnPhongShading returns a Blinn-Phong material.
func BlinnPhongShading() Shading {
	return Shading{Model: ShadingBlinnPhong, Ka: 0.3, Kd: 0.5, Ks: 0.8, S: 100}
}
