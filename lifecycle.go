package peel

import (
	"github.com/gogpu/peel/raster"
)

// prepare brings resources up to date for a frame. The checks run in a
// fixed order: first use, viewport resize, dataset change. Each kind of
// resource is released before its replacement is created.
func (r *Renderer) prepare(obj Object, pc *PointCloud, width, height int) error {
	if !r.surfaces.created() {
		Logger().Debug("peel: creating resources", "width", width, "height", height)
		r.dataset = obj
		if err := r.buildShaders(); err != nil {
			return err
		}
		if err := r.uploadVertices(pc); err != nil {
			return err
		}
		if err := r.surfaces.create(r.ctx, width, height); err != nil {
			return err
		}
		r.stats.SurfaceBuilds++
		return r.pushSize()
	}

	if r.surfaces.width != width || r.surfaces.height != height {
		Logger().Debug("peel: viewport resized",
			"from", [2]int{r.surfaces.width, r.surfaces.height},
			"to", [2]int{width, height})
		if err := r.surfaces.resize(r.ctx, width, height); err != nil {
			return err
		}
		r.stats.SurfaceBuilds++
		if err := r.pushSize(); err != nil {
			return err
		}
	}

	if r.dataset != obj {
		Logger().Debug("peel: dataset changed, rebuilding", "points", pc.NumVertices())
		r.dataset = obj
		r.ctx.DestroyBuffer(r.vertices)
		r.vertices = raster.InvalidID
		r.shaders.release(r.ctx)

		if err := r.buildShaders(); err != nil {
			return err
		}
		if err := r.uploadVertices(pc); err != nil {
			return err
		}
		return r.pushSize()
	}
	return nil
}

func (r *Renderer) buildShaders() error {
	if err := r.shaders.build(r.ctx, &r.opts); err != nil {
		return err
	}
	r.stats.ShaderBuilds++
	return nil
}

// uploadVertices packs and uploads pc. Empty clouds upload nothing and
// draw zero points.
func (r *Renderer) uploadVertices(pc *PointCloud) error {
	packed, err := PackVertices(pc)
	if err != nil {
		return setupError("pack vertices", err)
	}
	r.layout = packed.Layout()
	r.count = packed.Count
	r.stats.VertexUploads++
	if packed.Count == 0 {
		return nil
	}
	if r.vertices, err = r.ctx.CreateBuffer("points", packed.Data); err != nil {
		return setupError("upload vertices", err)
	}
	return nil
}

func (r *Renderer) pushSize() error {
	if err := r.shaders.setSize(r.ctx, r.surfaces.width, r.surfaces.height); err != nil {
		return setupError("set viewport size", err)
	}
	return nil
}
