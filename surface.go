package peel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/peel/raster"
)

// Surface is an offscreen render target: a float color texture and a
// depth texture attached to one framebuffer.
type Surface struct {
	Color       raster.TextureID
	Depth       raster.TextureID
	Framebuffer raster.FramebufferID
}

// surfaceSet holds the three surfaces of the peeling loop.
//
// The accumulators alternate between holding the layers composited so far
// (front) and receiving the next composite (target), selected by the
// cycle parity. The working surface receives each freshly peeled layer.
type surfaceSet struct {
	accumulators  [2]Surface
	working       Surface
	width, height int
}

func (s *surfaceSet) created() bool {
	return s.working.Framebuffer != raster.InvalidID
}

// front returns the accumulator read in the cycle with the given parity.
func (s *surfaceSet) front(parity int) *Surface {
	return &s.accumulators[parity]
}

// target returns the accumulator written in the cycle with the given parity.
func (s *surfaceSet) target(parity int) *Surface {
	return &s.accumulators[1-parity]
}

func (s *surfaceSet) all() []*Surface {
	return []*Surface{&s.accumulators[0], &s.accumulators[1], &s.working}
}

var surfaceNames = [3]string{"accumulator0", "accumulator1", "working"}

// create allocates all three surfaces.
func (s *surfaceSet) create(ctx *raster.Context, width, height int) error {
	for i, sf := range s.all() {
		if err := sf.allocate(ctx, surfaceNames[i], width, height); err != nil {
			return err
		}
		fb, err := ctx.CreateFramebuffer(surfaceNames[i], sf.Color, sf.Depth)
		if err != nil {
			return setupError("create framebuffer "+surfaceNames[i], err)
		}
		sf.Framebuffer = fb
	}
	s.width, s.height = width, height
	return s.clear(ctx)
}

// resize replaces the attachments of every surface. Framebuffers are kept.
func (s *surfaceSet) resize(ctx *raster.Context, width, height int) error {
	for i, sf := range s.all() {
		ctx.DestroyTexture(sf.Color)
		ctx.DestroyTexture(sf.Depth)
		sf.Color, sf.Depth = raster.InvalidID, raster.InvalidID

		if err := sf.allocate(ctx, surfaceNames[i], width, height); err != nil {
			return err
		}
		if err := ctx.AttachTextures(sf.Framebuffer, sf.Color, sf.Depth); err != nil {
			return setupError("attach "+surfaceNames[i], err)
		}
	}
	s.width, s.height = width, height
	return s.clear(ctx)
}

func (sf *Surface) allocate(ctx *raster.Context, name string, width, height int) error {
	desc := raster.TextureDesc{
		Label:     name + ".color",
		Width:     width,
		Height:    height,
		Format:    raster.TextureFormatRGBA32Float,
		MinFilter: raster.FilterNearest,
		MagFilter: raster.FilterNearest,
		WrapS:     raster.WrapRepeat,
		WrapT:     raster.WrapRepeat,
	}
	var err error
	if sf.Color, err = ctx.CreateTexture(desc); err != nil {
		return setupError(fmt.Sprintf("create %s color %dx%d", name, width, height), err)
	}
	desc.Label = name + ".depth"
	desc.Format = raster.TextureFormatDepth32Float
	if sf.Depth, err = ctx.CreateTexture(desc); err != nil {
		return setupError(fmt.Sprintf("create %s depth %dx%d", name, width, height), err)
	}
	return nil
}

// clear resets every surface to transparent black at the far plane.
func (s *surfaceSet) clear(ctx *raster.Context) error {
	ctx.SetClearColor(mgl32.Vec4{})
	ctx.SetClearDepth(1)
	for _, sf := range s.all() {
		fb := ctx.BindFramebuffer(sf.Framebuffer)
		err := ctx.Clear(raster.ClearColor | raster.ClearDepth)
		fb.Release()
		if err != nil {
			return setupError("clear surface", err)
		}
	}
	return nil
}

// release destroys every surface.
func (s *surfaceSet) release(ctx *raster.Context) {
	for _, sf := range s.all() {
		ctx.DestroyFramebuffer(sf.Framebuffer)
		ctx.DestroyTexture(sf.Color)
		ctx.DestroyTexture(sf.Depth)
		*sf = Surface{}
	}
	s.width, s.height = 0, 0
}
