package peel

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/peel/internal/blend"
	"github.com/gogpu/peel/raster"
)

// peel runs the passes of one frame and returns how many ran: one
// initialize pass, a peel and a blend pass per layer, one finalize pass.
func (r *Renderer) peel(cam Camera, light *Light) (int, error) {
	ctx := r.ctx
	ctx.SetDepthFunc(raster.DepthLess)

	passes := 0
	if err := r.initializePass(); err != nil {
		return passes, fmt.Errorf("peel: initialize pass: %w", err)
	}
	passes++

	parity := 0
	for layer := range r.opts.layerCount {
		if err := r.peelStep(parity, cam, light); err != nil {
			return passes, fmt.Errorf("peel: layer %d peel step: %w", layer, err)
		}
		passes++

		target := 1 - parity
		if err := r.blendStep(parity); err != nil {
			return passes, fmt.Errorf("peel: layer %d blend step: %w", layer, err)
		}
		passes++
		parity = target

		if r.opts.layerHook != nil {
			if err := r.captureLayer(layer); err != nil {
				return passes, fmt.Errorf("peel: layer %d capture: %w", layer, err)
			}
		}
	}

	if err := r.finalizePass(parity); err != nil {
		return passes, fmt.Errorf("peel: finalize pass: %w", err)
	}
	passes++
	return passes, nil
}

// initializePass clears the first accumulator with depth at the near
// plane, so the first peel step keeps every fragment.
func (r *Renderer) initializePass() error {
	ctx := r.ctx
	fb := ctx.BindFramebuffer(r.surfaces.accumulators[0].Framebuffer)
	defer fb.Release()

	ctx.SetClearColor(mgl32.Vec4{})
	ctx.SetClearDepth(0)
	return ctx.Clear(raster.ClearColor | raster.ClearDepth)
}

// peelStep draws the points into the working surface, keeping only
// fragments behind the front accumulator's depth.
func (r *Renderer) peelStep(parity int, cam Camera, light *Light) error {
	ctx := r.ctx
	front := r.surfaces.front(parity)

	fb := ctx.BindFramebuffer(r.surfaces.working.Framebuffer)
	defer fb.Release()

	ctx.SetClearColor(mgl32.Vec4{})
	ctx.SetClearDepth(1)
	if err := ctx.Clear(raster.ClearColor | raster.ClearDepth); err != nil {
		return err
	}

	tex := ctx.BindTexture(front.Depth, unitDepthFront)
	defer tex.Release()
	vb := ctx.BindVertexBuffer(r.vertices, r.layout)
	defer vb.Release()
	prog := ctx.UseProgram(r.shaders.peeling)
	defer prog.Release()

	mv := cam.ModelViewMatrix()
	uniforms := []struct {
		name  string
		value any
	}{
		{"ModelViewMatrix", mv},
		{"ModelViewProjectionMatrix", cam.ProjectionMatrix().Mul4(mv)},
		{"NormalMatrix", mv.Mat3()},
		{"LightPosition", light.Position},
	}
	for _, u := range uniforms {
		if err := ctx.SetUniform(r.shaders.peeling, u.name, u.value); err != nil {
			return err
		}
	}

	ctx.EnableDepthTest()
	return ctx.DrawArrays(raster.PrimitivePoints, 0, r.count)
}

// blendStep composites the working surface behind the front accumulator
// into the target accumulator. The quad runs with depth function Always so
// the peeled depth is copied; the previous function is restored on return.
func (r *Renderer) blendStep(parity int) error {
	ctx := r.ctx
	front := r.surfaces.front(parity)
	back := &r.surfaces.working

	fb := ctx.BindFramebuffer(r.surfaces.target(parity).Framebuffer)
	defer fb.Release()

	ctx.SetClearColor(mgl32.Vec4{})
	ctx.SetClearDepth(1)
	if err := ctx.Clear(raster.ClearColor | raster.ClearDepth); err != nil {
		return err
	}

	t11 := ctx.BindTexture(front.Color, unitColorFront)
	defer t11.Release()
	t12 := ctx.BindTexture(back.Depth, unitDepthBack)
	defer t12.Release()
	t13 := ctx.BindTexture(back.Color, unitColorBack)
	defer t13.Release()
	prog := ctx.UseProgram(r.shaders.blending)
	defer prog.Release()

	ctx.EnableDepthTest()
	df := ctx.WithDepthFunc(raster.DepthAlways)
	defer df.Release()
	return ctx.DrawQuad()
}

// finalizePass composites the selected color buffer over the background
// into the framebuffer that was bound when the frame started.
func (r *Renderer) finalizePass(parity int) error {
	ctx := r.ctx
	src := r.surfaces.accumulators[parity].Color
	if r.opts.output == OutputLastLayer {
		src = r.surfaces.working.Color
	}

	tex := ctx.BindTexture(src, unitColorBuffer)
	defer tex.Release()
	prog := ctx.UseProgram(r.shaders.finalizing)
	defer prog.Release()

	ctx.DisableDepthTest()
	return ctx.DrawQuad()
}

// captureLayer reads back the working surface and hands it to the layer
// hook composited over the background.
func (r *Renderer) captureLayer(layer int) error {
	data, err := r.ctx.ReadTexture(r.surfaces.working.Color)
	if err != nil {
		return err
	}
	w, h := r.surfaces.width, r.surfaces.height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			i := (y*w + x) * 4
			c := mgl32.Vec4{data[i], data[i+1], data[i+2], data[i+3]}
			img.SetRGBA(x, y, blend.ToRGBA8(blend.OverBackground(c, r.opts.background)))
		}
	}
	r.opts.layerHook(layer, img)
	return nil
}
