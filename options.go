package peel

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Output selects the color buffer the finalizing pass composites.
type Output uint8

const (
	// OutputAccumulated composites every peeled layer, nearest in front.
	OutputAccumulated Output = iota

	// OutputLastLayer shows only the deepest peeled layer: what remains in
	// the working surface after the last peel step.
	OutputLastLayer
)

// String returns the output name.
func (o Output) String() string {
	if o == OutputLastLayer {
		return "last-layer"
	}
	return "accumulated"
}

// LayerHook receives the image of each peeled layer composited over the
// background. layer counts from 0. img is owned by the hook.
type LayerHook func(layer int, img *image.RGBA)

// Option configures a Renderer during creation.
//
// Example:
//
//	r := peel.NewRenderer(ctx,
//		peel.WithLayerCount(4),
//		peel.WithBackgroundColor(1, 1, 1),
//	)
type Option func(*options)

type options struct {
	layerCount     int
	background     mgl32.Vec3
	shading        Shading
	shadingEnabled bool
	output         Output
	layerHook      LayerHook
}

func defaultOptions() options {
	return options{
		layerCount: 1,
		shading:    LambertShading(),
	}
}

// WithLayerCount sets how many layers are peeled per frame. Values below
// 1 are raised to 1.
func WithLayerCount(n int) Option {
	return func(o *options) {
		o.layerCount = max(n, 1)
	}
}

// WithBackgroundColor sets the background the layers are composited over.
// Channels are in [0, 1]. The default is black.
func WithBackgroundColor(r, g, b float32) Option {
	return func(o *options) {
		o.background = mgl32.Vec3{r, g, b}
	}
}

// WithShading sets the material of the peeling program.
func WithShading(s Shading) Option {
	return func(o *options) {
		o.shading = s
	}
}

// WithShadingEnabled turns lighting on or off. It is off by default, and
// point clouds without normals only receive the ambient term when it is on.
func WithShadingEnabled(enabled bool) Option {
	return func(o *options) {
		o.shadingEnabled = enabled
	}
}

// WithOutput selects what the finalizing pass shows.
func WithOutput(out Output) Option {
	return func(o *options) {
		o.output = out
	}
}

// WithLayerHook reads back every peeled layer and hands it to hook. Each
// readback stalls the pipeline, so this is meant for tooling.
func WithLayerHook(hook LayerHook) Option {
	return func(o *options) {
		o.layerHook = hook
	}
}
