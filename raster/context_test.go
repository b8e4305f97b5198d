// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// recordingBackend records commands without executing them.
type recordingBackend struct {
	next     uint64
	draws    []DrawCall
	clears   []ClearMask
	uniforms map[string]any
	flushes  int
	failNext error
}

func (b *recordingBackend) Name() string { return "recording" }

func (b *recordingBackend) id() uint64 {
	b.next++
	return b.next
}

func (b *recordingBackend) CreateBuffer(string, []byte) (BufferID, error) {
	if err := b.failNext; err != nil {
		b.failNext = nil
		return InvalidID, err
	}
	return BufferID(b.id()), nil
}

func (b *recordingBackend) DestroyBuffer(BufferID) {}

func (b *recordingBackend) CreateTexture(TextureDesc) (TextureID, error) {
	return TextureID(b.id()), nil
}

func (b *recordingBackend) DestroyTexture(TextureID) {}

func (b *recordingBackend) TextureSize(TextureID) (int, int) { return 0, 0 }

func (b *recordingBackend) CreateFramebuffer(string, TextureID, TextureID) (FramebufferID, error) {
	return FramebufferID(b.id()), nil
}

func (b *recordingBackend) AttachTextures(FramebufferID, TextureID, TextureID) error { return nil }

func (b *recordingBackend) DestroyFramebuffer(FramebufferID) {}

func (b *recordingBackend) CreateProgram(*ProgramDesc) (ProgramID, error) {
	return ProgramID(b.id()), nil
}

func (b *recordingBackend) DestroyProgram(ProgramID) {}

func (b *recordingBackend) SetUniform(_ ProgramID, name string, value any) error {
	if b.uniforms == nil {
		b.uniforms = make(map[string]any)
	}
	b.uniforms[name] = value
	return nil
}

func (b *recordingBackend) Clear(_ FramebufferID, mask ClearMask, _ mgl32.Vec4, _ float32) error {
	b.clears = append(b.clears, mask)
	return nil
}

func (b *recordingBackend) Draw(call *DrawCall) error {
	b.draws = append(b.draws, *call)
	return nil
}

func (b *recordingBackend) ReadTexture(TextureID) ([]float32, error) { return nil, nil }

func (b *recordingBackend) Flush() error {
	b.flushes++
	return nil
}

func TestNewContextDefaults(t *testing.T) {
	ctx := NewContext(&recordingBackend{})
	s := ctx.Bindings()

	if s.Framebuffer != DefaultFramebuffer {
		t.Errorf("Framebuffer = %d, want default", s.Framebuffer)
	}
	if s.DepthTest {
		t.Error("depth test should start disabled")
	}
	if s.DepthFunc != DepthLess {
		t.Errorf("DepthFunc = %v, want Less", s.DepthFunc)
	}
	if s.ClearDepth != 1 {
		t.Errorf("ClearDepth = %v, want 1", s.ClearDepth)
	}
}

func TestBinderRestoresPrevious(t *testing.T) {
	ctx := NewContext(&recordingBackend{})

	outer := ctx.BindFramebuffer(5)
	inner := ctx.BindFramebuffer(7)
	if got := ctx.Bindings().Framebuffer; got != 7 {
		t.Fatalf("Framebuffer = %d, want 7", got)
	}

	inner.Release()
	if got := ctx.Bindings().Framebuffer; got != 5 {
		t.Errorf("after inner release Framebuffer = %d, want 5", got)
	}

	// Second release is a no-op.
	inner.Release()
	if got := ctx.Bindings().Framebuffer; got != 5 {
		t.Errorf("double release changed Framebuffer to %d", got)
	}

	outer.Release()
	if got := ctx.Bindings().Framebuffer; got != DefaultFramebuffer {
		t.Errorf("after outer release Framebuffer = %d, want default", got)
	}
}

func TestTextureBinderUnits(t *testing.T) {
	ctx := NewContext(&recordingBackend{})

	a := ctx.BindTexture(3, 10)
	b := ctx.BindTexture(4, 12)
	s := ctx.Bindings()
	if s.Textures[10] != 3 || s.Textures[12] != 4 {
		t.Fatalf("units = %d/%d, want 3/4", s.Textures[10], s.Textures[12])
	}

	b.Release()
	a.Release()
	s = ctx.Bindings()
	if s.Textures[10] != InvalidID || s.Textures[12] != InvalidID {
		t.Errorf("units not restored: %d/%d", s.Textures[10], s.Textures[12])
	}

	bad := ctx.BindTexture(9, MaxTextureUnits)
	bad.Release()
}

func TestWithDepthFunc(t *testing.T) {
	ctx := NewContext(&recordingBackend{})

	df := ctx.WithDepthFunc(DepthAlways)
	if got := ctx.Bindings().DepthFunc; got != DepthAlways {
		t.Fatalf("DepthFunc = %v, want Always", got)
	}
	df.Release()
	if got := ctx.Bindings().DepthFunc; got != DepthLess {
		t.Errorf("DepthFunc = %v, want Less", got)
	}
}

func TestPushStateRestoresEverything(t *testing.T) {
	ctx := NewContext(&recordingBackend{})

	st := ctx.PushState()
	ctx.EnableDepthTest()
	ctx.SetDepthFunc(DepthGreater)
	ctx.SetClearDepth(0)
	ctx.BindFramebuffer(3)
	ctx.UseProgram(2)
	ctx.BindVertexBuffer(1, VertexLayout{ColorOffset: 12})
	st.Release()

	want := NewContext(&recordingBackend{}).Bindings()
	if got := ctx.Bindings(); got != want {
		t.Errorf("Bindings = %+v, want %+v", got, want)
	}
}

func TestDrawSnapshotsState(t *testing.T) {
	rec := &recordingBackend{}
	ctx := NewContext(rec)

	prog, _ := ctx.CreateProgram(&ProgramDesc{Label: "p"})
	buf, _ := ctx.CreateBuffer("v", make([]byte, 16))

	fb := ctx.BindFramebuffer(9)
	p := ctx.UseProgram(prog)
	tex := ctx.BindTexture(4, 10)
	vb := ctx.BindVertexBuffer(buf, VertexLayout{ColorOffset: 12})
	ctx.EnableDepthTest()

	if err := ctx.DrawArrays(PrimitivePoints, 0, 1); err != nil {
		t.Fatalf("DrawArrays: %v", err)
	}
	vb.Release()
	tex.Release()
	p.Release()
	fb.Release()

	if len(rec.draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(rec.draws))
	}
	call := rec.draws[0]
	if call.Framebuffer != 9 || call.Program != prog || call.VertexBuffer != buf {
		t.Errorf("call = %+v", call)
	}
	if call.Textures[10] != 4 {
		t.Errorf("unit 10 = %d, want 4", call.Textures[10])
	}
	if !call.DepthTest || call.DepthFunc != DepthLess {
		t.Errorf("depth state = %v/%v", call.DepthTest, call.DepthFunc)
	}
	if ctx.Counters().Draws != 1 {
		t.Errorf("Draws = %d, want 1", ctx.Counters().Draws)
	}
}

func TestDrawRequiresProgram(t *testing.T) {
	ctx := NewContext(&recordingBackend{})

	if err := ctx.DrawQuad(); !errors.Is(err, ErrNoProgram) {
		t.Errorf("DrawQuad error = %v, want ErrNoProgram", err)
	}

	p := ctx.UseProgram(1)
	defer p.Release()
	if err := ctx.DrawArrays(PrimitivePoints, 0, 3); !errors.Is(err, ErrNoVertexBuffer) {
		t.Errorf("DrawArrays error = %v, want ErrNoVertexBuffer", err)
	}
}

func TestLiveAccounting(t *testing.T) {
	rec := &recordingBackend{}
	ctx := NewContext(rec)

	tex, _ := ctx.CreateTexture(TextureDesc{Width: 1, Height: 1, Format: TextureFormatRGBA32Float})
	fb, _ := ctx.CreateFramebuffer("fb", tex, InvalidID)
	buf, _ := ctx.CreateBuffer("v", nil)

	rec.failNext = errors.New("boom")
	if _, err := ctx.CreateBuffer("v2", nil); err == nil {
		t.Fatal("expected CreateBuffer error")
	}

	if ctx.Live(KindTexture) != 1 || ctx.Live(KindFramebuffer) != 1 || ctx.Live(KindBuffer) != 1 {
		t.Fatalf("live = %d/%d/%d", ctx.Live(KindTexture), ctx.Live(KindFramebuffer), ctx.Live(KindBuffer))
	}

	ctx.BindTexture(tex, 0)
	ctx.BindFramebuffer(fb)
	ctx.DestroyTexture(tex)
	ctx.DestroyFramebuffer(fb)
	ctx.DestroyBuffer(buf)
	ctx.DestroyBuffer(InvalidID)

	for k := KindBuffer; k < numKinds; k++ {
		if n := ctx.Live(k); n != 0 {
			t.Errorf("Live(%v) = %d, want 0", k, n)
		}
	}
	s := ctx.Bindings()
	if s.Textures[0] != InvalidID || s.Framebuffer != DefaultFramebuffer {
		t.Errorf("destroyed resources still bound: %+v", s)
	}
}

func TestSetUniformRejectsUnknownTypes(t *testing.T) {
	rec := &recordingBackend{}
	ctx := NewContext(rec)

	if err := ctx.SetUniform(1, "x", "nope"); !errors.Is(err, ErrUniformType) {
		t.Errorf("SetUniform error = %v, want ErrUniformType", err)
	}
	if err := ctx.SetUniform(1, "width", float32(4)); err != nil {
		t.Fatalf("SetUniform: %v", err)
	}
	if rec.uniforms["width"] != float32(4) {
		t.Errorf("uniform not forwarded: %v", rec.uniforms)
	}
}

func TestDepthFuncTest(t *testing.T) {
	tests := []struct {
		f    DepthFunc
		a, b float32
		want bool
	}{
		{DepthLess, 0.2, 0.5, true},
		{DepthLess, 0.5, 0.5, false},
		{DepthLessEqual, 0.5, 0.5, true},
		{DepthGreater, 0.6, 0.5, true},
		{DepthAlways, 1, 0, true},
		{DepthNever, 0, 1, false},
		{DepthNotEqual, 0.1, 0.1, false},
	}
	for _, tt := range tests {
		if got := tt.f.Test(tt.a, tt.b); got != tt.want {
			t.Errorf("%v.Test(%v, %v) = %v, want %v", tt.f, tt.a, tt.b, got, tt.want)
		}
	}
}
