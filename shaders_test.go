package peel

import (
	"strings"
	"testing"
)

func TestShaderSourcesContainExpectedContent(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		required []string
	}{
		{
			name:   "peeling",
			source: PeelingShaderSource(),
			required: []string{
				"vs_main", "fs_main", "depth_front", "discard",
				"ModelViewProjectionMatrix", "NormalMatrix", "LightPosition",
				"ENABLE_LAMBERT_SHADING", "ENABLE_TWO_SIDE_LIGHTING", "frag_depth",
			},
		},
		{
			name:     "blending",
			source:   BlendingShaderSource(),
			required: []string{"vs_main", "fs_main", "color_front", "depth_back", "color_back", "frag_depth"},
		},
		{
			name:     "finalizing",
			source:   FinalizingShaderSource(),
			required: []string{"vs_main", "fs_main", "color_buffer", "background_color"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, req := range tt.required {
				if !strings.Contains(tt.source, req) {
					t.Errorf("%s shader missing %q", tt.name, req)
				}
			}
		})
	}
}

func TestSpecialize(t *testing.T) {
	src := Specialize("fn main() {}", []string{DefinePhong, DefineTwoSideLighting})

	for _, want := range []string{
		"const ENABLE_LAMBERT_SHADING: bool = false;",
		"const ENABLE_PHONG_SHADING: bool = true;",
		"const ENABLE_BLINN_PHONG_SHADING: bool = false;",
		"const ENABLE_TWO_SIDE_LIGHTING: bool = true;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("specialized source missing %q", want)
		}
	}
	if !strings.HasSuffix(src, "fn main() {}") {
		t.Error("body not kept after the selector header")
	}
}
