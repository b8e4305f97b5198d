package peel

import (
	"time"

	"github.com/gogpu/peel/raster"
)

// Stats reports renderer activity.
type Stats struct {
	// Frames is the number of frames rendered.
	Frames int

	// SkippedFrames counts Render calls that drew nothing because the
	// object was not a point cloud or the viewport was empty.
	SkippedFrames int

	// ShaderBuilds counts shader set builds (first use and dataset changes).
	ShaderBuilds int

	// VertexUploads counts vertex buffer uploads.
	VertexUploads int

	// SurfaceBuilds counts surface allocations (first use and resizes).
	SurfaceBuilds int

	// LastFrame is the duration of the last rendered frame.
	LastFrame time.Duration

	// Passes is the number of passes of the last rendered frame.
	Passes int
}

// Renderer draws point clouds with order-independent transparency by
// depth peeling.
//
// Each frame clears an accumulator, then for every layer peels the next
// nearest surface of the cloud into the working surface and composites it
// behind the accumulated layers. The finalizing pass composites the result
// over the background into the framebuffer bound on the context.
//
// GPU resources are created on first use and follow the viewport size
// and dataset identity across frames.
//
// Thread Safety: Renderer is NOT thread-safe.
type Renderer struct {
	ctx  *raster.Context
	opts options

	shaders  shaderSet
	surfaces surfaceSet
	vertices raster.BufferID
	layout   raster.VertexLayout
	count    int
	dataset  Object

	broken bool
	stats  Stats
}

// NewRenderer creates a renderer drawing through ctx. No resources are
// created until the first Render.
func NewRenderer(ctx *raster.Context, opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{ctx: ctx, opts: o}
	propagateLogger(ctx.Backend(), Logger())
	Logger().Info("peel: renderer created",
		"backend", ctx.Backend().Name(),
		"layers", o.layerCount,
		"output", o.output.String())

	if o.shadingEnabled && o.shading.Model != ShadingNone {
		Logger().Warn("peel: point clouds carry no normals; lit shading reduces to the ambient term",
			"model", o.shading.Model.String())
	}
	return r
}

// LayerCount returns the number of layers peeled per frame.
func (r *Renderer) LayerCount() int {
	return r.opts.layerCount
}

// SetLayerCount changes the number of layers peeled per frame. It takes
// effect on the next frame and needs no rebuild.
func (r *Renderer) SetLayerCount(n int) error {
	if n < 1 {
		return ErrInvalidLayerCount
	}
	r.opts.layerCount = n
	return nil
}

// Stats returns the renderer statistics.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Render draws one frame of obj into the framebuffer bound on the context.
//
// Objects that are not point clouds are skipped and Render returns nil.
// Resource creation failures return a *SetupError, after which every call
// returns ErrRendererBroken until Release. The context bindings are the
// same on return as on entry.
func (r *Renderer) Render(obj Object, cam Camera, light *Light) error {
	if r.broken {
		return ErrRendererBroken
	}

	po, ok := obj.(PointObject)
	if !ok || po.PointCloud() == nil {
		r.stats.SkippedFrames++
		Logger().Debug("peel: object is not a point cloud, frame skipped", "object", obj)
		return nil
	}
	width, height := cam.WindowSize()
	if width <= 0 || height <= 0 {
		r.stats.SkippedFrames++
		Logger().Debug("peel: empty viewport, frame skipped", "width", width, "height", height)
		return nil
	}
	if light == nil {
		light = DefaultLight()
	}

	start := time.Now()
	state := r.ctx.PushState()
	defer state.Release()

	if err := r.prepare(obj, po.PointCloud(), width, height); err != nil {
		r.broken = true
		return err
	}

	passes, err := r.peel(cam, light)
	r.stats.Passes = passes
	if err != nil {
		return err
	}

	r.stats.Frames++
	r.stats.LastFrame = time.Since(start)
	Logger().Debug("peel: frame rendered",
		"passes", passes,
		"points", r.count,
		"elapsed", r.stats.LastFrame)
	return nil
}

// Release destroys every resource. The next Render starts from scratch,
// which also clears a broken renderer. Release is safe to call multiple
// times.
func (r *Renderer) Release() {
	r.ctx.DestroyBuffer(r.vertices)
	r.vertices = raster.InvalidID
	r.shaders.release(r.ctx)
	r.surfaces.release(r.ctx)
	r.dataset = nil
	r.count = 0
	r.broken = false
}
