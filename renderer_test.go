package peel

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/peel/backend/software"
	"github.com/gogpu/peel/raster"
)

// ndcCamera passes positions through as normalized device coordinates.
type ndcCamera struct{ w, h int }

func (c ndcCamera) WindowSize() (int, int)         { return c.w, c.h }
func (c ndcCamera) ModelViewMatrix() mgl32.Mat4  { return mgl32.Ident4() }
func (c ndcCamera) ProjectionMatrix() mgl32.Mat4 { return mgl32.Ident4() }

// at returns NDC coordinates of the center of pixel (px, py) at depth z.
func at(px, py, w, h int, z float32) []float32 {
	return []float32{
		(float32(px)+0.5)/float32(w)*2 - 1,
		1 - (float32(py)+0.5)/float32(h)*2,
		z,
	}
}

type testRig struct {
	target  *software.Target
	backend *recordingBackend
	ctx     *raster.Context
	r       *Renderer
}

func newRig(t *testing.T, w, h int, opts ...Option) *testRig {
	t.Helper()
	target := software.NewTarget(w, h)
	sw := software.New(software.WithTarget(target), software.WithWorkers(2))
	t.Cleanup(sw.Close)

	rec := &recordingBackend{Backend: sw}
	ctx := raster.NewContext(rec)
	return &testRig{target: target, backend: rec, ctx: ctx, r: NewRenderer(ctx, opts...)}
}

func (rig *testRig) pixel(x, y int) color.RGBA {
	return rig.target.Pixel(x, y)
}

// recordingBackend wraps a backend, logs resource events and injects
// failures.
type recordingBackend struct {
	raster.Backend

	events      []string
	failProgram error
	failTexture error
	failQuad    error
}

func (b *recordingBackend) CreateProgram(d *raster.ProgramDesc) (raster.ProgramID, error) {
	if b.failProgram != nil {
		return raster.InvalidID, b.failProgram
	}
	b.events = append(b.events, "create program")
	return b.Backend.CreateProgram(d)
}

func (b *recordingBackend) DestroyProgram(id raster.ProgramID) {
	b.events = append(b.events, "destroy program")
	b.Backend.DestroyProgram(id)
}

func (b *recordingBackend) CreateBuffer(label string, data []byte) (raster.BufferID, error) {
	b.events = append(b.events, "create buffer")
	return b.Backend.CreateBuffer(label, data)
}

func (b *recordingBackend) DestroyBuffer(id raster.BufferID) {
	b.events = append(b.events, "destroy buffer")
	b.Backend.DestroyBuffer(id)
}

func (b *recordingBackend) CreateTexture(desc raster.TextureDesc) (raster.TextureID, error) {
	if b.failTexture != nil {
		return raster.InvalidID, b.failTexture
	}
	b.events = append(b.events, "create texture")
	return b.Backend.CreateTexture(desc)
}

func (b *recordingBackend) Draw(call *raster.DrawCall) error {
	if call.Primitive == raster.PrimitiveQuad && b.failQuad != nil {
		return b.failQuad
	}
	return b.Backend.Draw(call)
}

// twoLayerScene puts a near red point at A=(0,0) and B=(1,0) and a far
// green point at A and C=(2,0).
func twoLayerScene(w, h int) *PointCloud {
	var coords []float32
	coords = append(coords, at(0, 0, w, h, -0.5)...)
	coords = append(coords, at(1, 0, w, h, -0.5)...)
	coords = append(coords, at(0, 0, w, h, 0.5)...)
	coords = append(coords, at(2, 0, w, h, 0.5)...)
	colors := []uint8{
		255, 0, 0,
		255, 0, 0,
		0, 255, 0,
		0, 255, 0,
	}
	return NewPointCloud(coords, colors)
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	black = color.RGBA{A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func TestSingleLayerCompositesOverBackground(t *testing.T) {
	rig := newRig(t, 4, 4, WithBackgroundColor(0, 0, 1))
	cloud := NewPointCloud(at(1, 2, 4, 4, 0), []uint8{255, 0, 0})

	if err := rig.r.Render(cloud, ndcCamera{4, 4}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	for y := range 4 {
		for x := range 4 {
			want := blue
			if x == 1 && y == 2 {
				want = red
			}
			if got := rig.pixel(x, y); got != want {
				t.Errorf("pixel(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestTwoLayerScene(t *testing.T) {
	tests := []struct {
		name    string
		layers  int
		output  Output
		a, b, c color.RGBA
	}{
		{"one layer", 1, OutputAccumulated, red, red, green},
		{"two layers", 2, OutputAccumulated, red, red, green},
		{"two layers last layer", 2, OutputLastLayer, green, black, black},
		{"one layer last layer", 1, OutputLastLayer, red, red, green},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newRig(t, 4, 2, WithLayerCount(tt.layers), WithOutput(tt.output))
			if err := rig.r.Render(twoLayerScene(4, 2), ndcCamera{4, 2}, nil); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got := rig.pixel(0, 0); got != tt.a {
				t.Errorf("A = %v, want %v", got, tt.a)
			}
			if got := rig.pixel(1, 0); got != tt.b {
				t.Errorf("B = %v, want %v", got, tt.b)
			}
			if got := rig.pixel(2, 0); got != tt.c {
				t.Errorf("C = %v, want %v", got, tt.c)
			}
			if got := rig.pixel(3, 1); got != black {
				t.Errorf("empty pixel = %v, want background", got)
			}
		})
	}
}

func TestExtraLayersAreIdempotent(t *testing.T) {
	render := func(layers int) *image.RGBA {
		rig := newRig(t, 4, 2, WithLayerCount(layers), WithBackgroundColor(0.2, 0.2, 0.2))
		if err := rig.r.Render(twoLayerScene(4, 2), ndcCamera{4, 2}, nil); err != nil {
			t.Fatalf("Render(L=%d): %v", layers, err)
		}
		return rig.target.Image()
	}

	base := render(2)
	for _, l := range []int{3, 5, 8} {
		img := render(l)
		for i := range base.Pix {
			if base.Pix[i] != img.Pix[i] {
				t.Fatalf("L=%d differs from L=2 at byte %d", l, i)
			}
		}
	}
}

func TestPassCount(t *testing.T) {
	for _, layers := range []int{1, 2, 5} {
		rig := newRig(t, 3, 3, WithLayerCount(layers))
		cloud := twoLayerScene(3, 3)
		cam := ndcCamera{3, 3}

		if err := rig.r.Render(cloud, cam, nil); err != nil {
			t.Fatalf("Render: %v", err)
		}
		rig.ctx.ResetCounters()
		if err := rig.r.Render(cloud, cam, nil); err != nil {
			t.Fatalf("Render: %v", err)
		}

		if got := rig.r.Stats().Passes; got != 2*layers+2 {
			t.Errorf("L=%d: Passes = %d, want %d", layers, got, 2*layers+2)
		}
		c := rig.ctx.Counters()
		if c.Clears != 1+2*layers {
			t.Errorf("L=%d: Clears = %d, want %d", layers, c.Clears, 1+2*layers)
		}
		if c.Draws != 2*layers+1 {
			t.Errorf("L=%d: Draws = %d, want %d", layers, c.Draws, 2*layers+1)
		}
	}
}

func TestZeroVerticesDrawsBackground(t *testing.T) {
	rig := newRig(t, 2, 2, WithBackgroundColor(0, 0, 1), WithLayerCount(3))
	if err := rig.r.Render(&PointCloud{}, ndcCamera{2, 2}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	for y := range 2 {
		for x := range 2 {
			if got := rig.pixel(x, y); got != blue {
				t.Errorf("pixel(%d,%d) = %v, want background", x, y, got)
			}
		}
	}
	if got := rig.r.Stats().Passes; got != 8 {
		t.Errorf("Passes = %d, want 8", got)
	}
}

type lineObject struct{}

func (*lineObject) Kind() ObjectKind { return ObjectLine }

func TestNonPointObjectIsSkipped(t *testing.T) {
	rig := newRig(t, 2, 2)

	if err := rig.r.Render(&lineObject{}, ndcCamera{2, 2}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := rig.r.Render(nil, ndcCamera{2, 2}, nil); err != nil {
		t.Fatalf("Render(nil): %v", err)
	}

	s := rig.r.Stats()
	if s.SkippedFrames != 2 || s.Frames != 0 {
		t.Errorf("Stats = %+v, want 2 skipped frames", s)
	}
	if c := rig.ctx.Counters(); c.Draws != 0 || c.Clears != 0 {
		t.Errorf("skipped frame issued commands: %+v", c)
	}
	if len(rig.backend.events) != 0 {
		t.Errorf("skipped frame created resources: %v", rig.backend.events)
	}
}

func TestEmptyViewportIsSkipped(t *testing.T) {
	rig := newRig(t, 2, 2)
	if err := rig.r.Render(twoLayerScene(2, 2), ndcCamera{0, 2}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rig.r.Stats().SkippedFrames != 1 {
		t.Errorf("SkippedFrames = %d, want 1", rig.r.Stats().SkippedFrames)
	}
}

func TestBindingsRestored(t *testing.T) {
	rig := newRig(t, 3, 3, WithLayerCount(2))
	rig.ctx.SetDepthFunc(raster.DepthGreaterEqual)
	rig.ctx.SetClearColor(mgl32.Vec4{0.1, 0.2, 0.3, 0.4})
	before := rig.ctx.Bindings()

	if err := rig.r.Render(twoLayerScene(3, 3), ndcCamera{3, 3}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if after := rig.ctx.Bindings(); after != before {
		t.Errorf("bindings changed:\n got %+v\nwant %+v", after, before)
	}
}

func TestDepthFuncRestoredWhenBlendFails(t *testing.T) {
	rig := newRig(t, 3, 3)
	cloud := twoLayerScene(3, 3)
	if err := rig.r.Render(cloud, ndcCamera{3, 3}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}

	boom := errors.New("quad failed")
	rig.backend.failQuad = boom
	before := rig.ctx.Bindings()

	err := rig.r.Render(cloud, ndcCamera{3, 3}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Render error = %v, want %v", err, boom)
	}
	if after := rig.ctx.Bindings(); after.DepthFunc != raster.DepthLess || after != before {
		t.Errorf("bindings after failed blend = %+v, want %+v", after, before)
	}
	if got := rig.r.Stats().Passes; got != 2 {
		t.Errorf("Passes = %d, want 2 (initialize + peel)", got)
	}

	// Draw failures are not setup failures.
	rig.backend.failQuad = nil
	if err := rig.r.Render(cloud, ndcCamera{3, 3}, nil); err != nil {
		t.Errorf("Render after transient failure: %v", err)
	}
}

func TestResizeRecreatesSurfaces(t *testing.T) {
	rig := newRig(t, 4, 4, WithLayerCount(2))
	cloud := twoLayerScene(4, 4)
	if err := rig.r.Render(cloud, ndcCamera{4, 4}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	fbs := [3]raster.FramebufferID{}
	for i, sf := range rig.r.surfaces.all() {
		fbs[i] = sf.Framebuffer
	}
	vbo := rig.r.vertices

	rig.target.Resize(6, 3)
	if err := rig.r.prepare(cloud, cloud, 6, 3); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	for i, sf := range rig.r.surfaces.all() {
		for _, tex := range []raster.TextureID{sf.Color, sf.Depth} {
			if w, h := rig.ctx.TextureSize(tex); w != 6 || h != 3 {
				t.Errorf("surface %d texture %d is %dx%d, want 6x3", i, tex, w, h)
			}
		}
		if sf.Framebuffer != fbs[i] {
			t.Errorf("surface %d framebuffer replaced", i)
		}

		rgba, err := rig.ctx.ReadTexture(sf.Color)
		if err != nil {
			t.Fatalf("ReadTexture: %v", err)
		}
		for _, v := range rgba {
			if v != 0 {
				t.Fatalf("surface %d color not cleared", i)
			}
		}
		depth, _ := rig.ctx.ReadTexture(sf.Depth)
		for _, v := range depth {
			if v != 1 {
				t.Fatalf("surface %d depth not cleared", i)
			}
		}
	}

	if rig.r.vertices != vbo {
		t.Error("resize replaced the vertex buffer")
	}
	s := rig.r.Stats()
	if s.SurfaceBuilds != 2 || s.ShaderBuilds != 1 || s.VertexUploads != 1 {
		t.Errorf("Stats = %+v", s)
	}
	if n := rig.ctx.Live(raster.KindTexture); n != 6 {
		t.Errorf("live textures = %d, want 6", n)
	}

	if err := rig.r.Render(cloud, ndcCamera{6, 3}, nil); err != nil {
		t.Fatalf("Render after resize: %v", err)
	}
}

func TestDatasetChangeReleasesBeforeRebuild(t *testing.T) {
	rig := newRig(t, 3, 3)
	cam := ndcCamera{3, 3}
	first := twoLayerScene(3, 3)

	for range 2 {
		if err := rig.r.Render(first, cam, nil); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if s := rig.r.Stats(); s.ShaderBuilds != 1 || s.VertexUploads != 1 {
		t.Fatalf("same dataset rebuilt: %+v", s)
	}

	rig.backend.events = nil
	// Equal contents, different identity.
	second := twoLayerScene(3, 3)
	if err := rig.r.Render(second, cam, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []string{
		"destroy buffer",
		"destroy program", "destroy program", "destroy program",
		"create program", "create program", "create program",
		"create buffer",
	}
	if len(rig.backend.events) != len(want) {
		t.Fatalf("events = %v, want %v", rig.backend.events, want)
	}
	for i := range want {
		if rig.backend.events[i] != want[i] {
			t.Fatalf("events = %v, want %v", rig.backend.events, want)
		}
	}

	if n := rig.ctx.Live(raster.KindProgram); n != 3 {
		t.Errorf("live programs = %d, want 3", n)
	}
	if n := rig.ctx.Live(raster.KindBuffer); n != 1 {
		t.Errorf("live buffers = %d, want 1", n)
	}
	if s := rig.r.Stats(); s.ShaderBuilds != 2 || s.VertexUploads != 2 || s.SurfaceBuilds != 1 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestSetupFailureBreaksRenderer(t *testing.T) {
	rig := newRig(t, 2, 2)
	boom := errors.New("compile failed")
	rig.backend.failProgram = boom

	err := rig.r.Render(twoLayerScene(2, 2), ndcCamera{2, 2}, nil)
	var se *SetupError
	if !errors.As(err, &se) {
		t.Fatalf("Render error = %v, want *SetupError", err)
	}
	if !errors.Is(err, boom) || se.Op != "build peeling program" {
		t.Errorf("SetupError = %v (op %q)", se, se.Op)
	}

	rig.backend.failProgram = nil
	if err := rig.r.Render(twoLayerScene(2, 2), ndcCamera{2, 2}, nil); !errors.Is(err, ErrRendererBroken) {
		t.Errorf("second Render error = %v, want ErrRendererBroken", err)
	}

	rig.r.Release()
	if err := rig.r.Render(twoLayerScene(2, 2), ndcCamera{2, 2}, nil); err != nil {
		t.Errorf("Render after Release: %v", err)
	}
}

func TestSurfaceAllocationFailure(t *testing.T) {
	rig := newRig(t, 2, 2)
	rig.backend.failTexture = errors.New("out of memory")

	err := rig.r.Render(twoLayerScene(2, 2), ndcCamera{2, 2}, nil)
	var se *SetupError
	if !errors.As(err, &se) {
		t.Fatalf("Render error = %v, want *SetupError", err)
	}
}

func TestInvalidPointCloud(t *testing.T) {
	rig := newRig(t, 2, 2)
	bad := &PointCloud{Coords: []float32{1, 2}, Colors: []uint8{1, 2, 3}}

	err := rig.r.Render(bad, ndcCamera{2, 2}, nil)
	var se *SetupError
	if !errors.As(err, &se) || !errors.Is(err, ErrInvalidPointCloud) {
		t.Errorf("Render error = %v, want SetupError wrapping ErrInvalidPointCloud", err)
	}
}

func TestReleaseDestroysEverything(t *testing.T) {
	rig := newRig(t, 3, 3)
	if err := rig.r.Render(twoLayerScene(3, 3), ndcCamera{3, 3}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	rig.r.Release()
	rig.r.Release()

	for _, k := range []raster.ResourceKind{raster.KindBuffer, raster.KindTexture, raster.KindFramebuffer, raster.KindProgram} {
		if n := rig.ctx.Live(k); n != 0 {
			t.Errorf("Live(%v) = %d after Release", k, n)
		}
	}
}

func TestLayerHook(t *testing.T) {
	var layers []int
	var images []*image.RGBA
	hook := func(layer int, img *image.RGBA) {
		layers = append(layers, layer)
		images = append(images, img)
	}
	rig := newRig(t, 4, 2, WithLayerCount(2), WithLayerHook(hook))

	if err := rig.r.Render(twoLayerScene(4, 2), ndcCamera{4, 2}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(layers) != 2 || layers[0] != 0 || layers[1] != 1 {
		t.Fatalf("hook layers = %v, want [0 1]", layers)
	}
	if got := images[0].RGBAAt(0, 0); got != red {
		t.Errorf("layer 0 at A = %v, want red", got)
	}
	if got := images[1].RGBAAt(0, 0); got != green {
		t.Errorf("layer 1 at A = %v, want green", got)
	}
	if got := images[1].RGBAAt(2, 0); got != black {
		t.Errorf("layer 1 at C = %v, want background", got)
	}
}

func TestLitShadingWithoutNormalsIsAmbient(t *testing.T) {
	rig := newRig(t, 2, 2, WithShadingEnabled(true), WithShading(LambertShading()))
	cloud := NewPointCloud(at(0, 0, 2, 2, 0), []uint8{255, 255, 255})

	if err := rig.r.Render(cloud, ndcCamera{2, 2}, DefaultLight()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	// Ka = 0.4
	want := color.RGBA{R: 102, G: 102, B: 102, A: 255}
	if got := rig.pixel(0, 0); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestSetLayerCount(t *testing.T) {
	rig := newRig(t, 2, 2)
	if err := rig.r.SetLayerCount(0); !errors.Is(err, ErrInvalidLayerCount) {
		t.Errorf("SetLayerCount(0) = %v, want ErrInvalidLayerCount", err)
	}
	if err := rig.r.SetLayerCount(4); err != nil {
		t.Fatalf("SetLayerCount(4): %v", err)
	}
	if rig.r.LayerCount() != 4 {
		t.Errorf("LayerCount() = %d, want 4", rig.r.LayerCount())
	}
	if r := NewRenderer(rig.ctx, WithLayerCount(-3)); r.LayerCount() != 1 {
		t.Errorf("WithLayerCount(-3) gave %d layers, want 1", r.LayerCount())
	}
}

func TestLookAtCameraFrame(t *testing.T) {
	cam := NewLookAtCamera(64, 64)
	cloud := NewPointCloud([]float32{-1, -1, -1, 1, 1, 1}, []uint8{255, 255, 255})
	cam.Frame(cloud)

	mvp := cam.ProjectionMatrix().Mul4(cam.ModelViewMatrix())
	for i := range 2 {
		p := mgl32.Vec3{cloud.Coords[3*i], cloud.Coords[3*i+1], cloud.Coords[3*i+2]}
		clip := mvp.Mul4x1(p.Vec4(1))
		ndc := clip.Vec3().Mul(1 / clip[3])
		for k := range 3 {
			if ndc[k] < -1 || ndc[k] > 1 {
				t.Errorf("point %d outside the view volume: ndc = %v", i, ndc)
			}
		}
	}

	cam.Projection = Orthographic
	if m := cam.ProjectionMatrix(); m[15] != 1 {
		t.Errorf("orthographic matrix w row = %v", m.Row(3))
	}
}
