// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestUnder(t *testing.T) {
	tests := []struct {
		name        string
		front, back mgl32.Vec4
		want        mgl32.Vec4
	}{
		{"empty front", mgl32.Vec4{}, mgl32.Vec4{0.2, 0.4, 0.6, 1}, mgl32.Vec4{0.2, 0.4, 0.6, 1}},
		{"opaque front", mgl32.Vec4{1, 0, 0, 1}, mgl32.Vec4{0, 1, 0, 1}, mgl32.Vec4{1, 0, 0, 1}},
		{"empty back", mgl32.Vec4{0.5, 0.5, 0.5, 0.5}, mgl32.Vec4{1, 1, 1, 0}, mgl32.Vec4{0.5, 0.5, 0.5, 0.5}},
		{"half front", mgl32.Vec4{0.5, 0, 0, 0.5}, mgl32.Vec4{0, 1, 0, 1}, mgl32.Vec4{0.5, 0.5, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Under(tt.front, tt.back)
			if !got.ApproxEqual(tt.want) {
				t.Errorf("Under() = %v, want %v", got, tt.want)
			}
			if got2 := Blend(tt.front, tt.back, ModeUnder); got2 != got {
				t.Errorf("Blend(ModeUnder) = %v, want %v", got2, got)
			}
		})
	}
}

func TestOverBackground(t *testing.T) {
	bg := mgl32.Vec3{0, 0, 1}
	if got := OverBackground(mgl32.Vec4{}, bg); got != (mgl32.Vec4{0, 0, 1, 1}) {
		t.Errorf("empty acc = %v, want background", got)
	}
	if got := OverBackground(mgl32.Vec4{1, 0, 0, 1}, bg); got != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Errorf("opaque acc = %v, want red", got)
	}
}

func TestSourceOver(t *testing.T) {
	got := Blend(mgl32.Vec4{1, 0, 0, 0.5}, mgl32.Vec4{0, 0, 1, 1}, ModeSourceOver)
	if !got.ApproxEqual(mgl32.Vec4{0.5, 0, 0.5, 1}) {
		t.Errorf("SourceOver = %v", got)
	}
	if got := Blend(mgl32.Vec4{}, mgl32.Vec4{}, ModeSourceOver); got != (mgl32.Vec4{}) {
		t.Errorf("transparent over transparent = %v", got)
	}
}

func TestToRGBA8(t *testing.T) {
	got := ToRGBA8(mgl32.Vec4{0.5, -1, 2, 1})
	want := color.RGBA{R: 128, G: 0, B: 255, A: 255}
	if got != want {
		t.Errorf("ToRGBA8() = %v, want %v", got, want)
	}
	if c := FromRGB8(255, 0, 51); !c.ApproxEqual(mgl32.Vec3{1, 0, 0.2}) {
		t.Errorf("FromRGB8() = %v", c)
	}
}
