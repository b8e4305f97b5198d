package peel

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera supplies the viewport size and matrices of a frame.
type Camera interface {
	// WindowSize returns the viewport size in pixels.
	WindowSize() (width, height int)

	// ModelViewMatrix returns the object-to-eye transform.
	ModelViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the eye-to-clip transform, GL conventions
	// (clip depth in [-w, w]).
	ProjectionMatrix() mgl32.Mat4
}

// Projection selects a LookAtCamera projection.
type Projection uint8

// Projections.
const (
	Perspective Projection = iota
	Orthographic
)

// LookAtCamera is a Camera defined by eye, center and up vectors.
type LookAtCamera struct {
	Width, Height int

	Eye, Center, Up mgl32.Vec3

	// Model is applied before the view transform. The zero matrix is
	// treated as identity.
	Model mgl32.Mat4

	Projection Projection

	// FovY is the vertical field of view in degrees (perspective only).
	FovY float32

	Near, Far float32
}

// NewLookAtCamera returns a perspective camera at (0, 0, 12) looking at the
// origin.
func NewLookAtCamera(width, height int) *LookAtCamera {
	return &LookAtCamera{
		Width:  width,
		Height: height,
		Eye:    mgl32.Vec3{0, 0, 12},
		Up:     mgl32.Vec3{0, 1, 0},
		Model:  mgl32.Ident4(),
		FovY:   45,
		Near:   1,
		Far:    2000,
	}
}

// WindowSize returns the viewport size.
func (c *LookAtCamera) WindowSize() (int, int) {
	return c.Width, c.Height
}

// SetWindowSize changes the viewport size.
func (c *LookAtCamera) SetWindowSize(width, height int) {
	c.Width, c.Height = width, height
}

// ModelViewMatrix returns View * Model.
func (c *LookAtCamera) ModelViewMatrix() mgl32.Mat4 {
	view := mgl32.LookAtV(c.Eye, c.Center, c.Up)
	if c.Model == (mgl32.Mat4{}) {
		return view
	}
	return view.Mul4(c.Model)
}

// ProjectionMatrix returns the perspective or orthographic projection.
// Orthographic extents match the perspective frustum at the center
// distance.
func (c *LookAtCamera) ProjectionMatrix() mgl32.Mat4 {
	aspect := float32(1)
	if c.Height > 0 {
		aspect = float32(c.Width) / float32(c.Height)
	}
	if c.Projection == Orthographic {
		dist := c.Eye.Sub(c.Center).Len()
		top := dist * float32(math.Tan(float64(mgl32.DegToRad(c.FovY)/2)))
		right := top * aspect
		return mgl32.Ortho(-right, right, -top, top, c.Near, c.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// Frame moves the camera back along its view direction so that the
// bounding sphere of pc fills the view. Empty clouds are ignored.
func (c *LookAtCamera) Frame(pc *PointCloud) {
	n := pc.NumVertices()
	if n == 0 {
		return
	}
	lo := mgl32.Vec3{pc.Coords[0], pc.Coords[1], pc.Coords[2]}
	hi := lo
	for i := 1; i < n; i++ {
		for k := range 3 {
			v := pc.Coords[3*i+k]
			lo[k] = min(lo[k], v)
			hi[k] = max(hi[k], v)
		}
	}
	center := lo.Add(hi).Mul(0.5)
	radius := max(hi.Sub(lo).Len()/2, 1e-3)

	dir := c.Eye.Sub(c.Center)
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, 0, 1}
	}
	dist := radius / float32(math.Sin(float64(mgl32.DegToRad(c.FovY)/2)))

	c.Center = center
	c.Eye = center.Add(dir.Normalize().Mul(dist))
	c.Near = max(dist-radius*1.5, dist*1e-3)
	c.Far = dist + radius*1.5
}

var _ Camera = (*LookAtCamera)(nil)
