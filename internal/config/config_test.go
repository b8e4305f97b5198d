// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/peel"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "demo.toml", `
width = 320
height = 200
layers = 6
background = "#ff8000"
shading = "phong"
layers_dir = "out/layers"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 200 || cfg.Layers != 6 {
		t.Errorf("size/layers = %dx%d/%d", cfg.Width, cfg.Height, cfg.Layers)
	}
	if cfg.LayersDir != "out/layers" {
		t.Errorf("LayersDir = %q", cfg.LayersDir)
	}
	if cfg.Image != Default().Image {
		t.Errorf("Image = %q, want default %q", cfg.Image, Default().Image)
	}
	bg, _ := cfg.BackgroundColor()
	if want := (color.RGBA{255, 128, 0, 255}); bg != want {
		t.Errorf("BackgroundColor = %v, want %v", bg, want)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "demo.yml", `
width: 64
height: 48
output: last-layer
background: "1, 1, 1"
input: cloud.xyz
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Width != 64 || cfg.Input != "cloud.xyz" {
		t.Errorf("cfg = %+v", cfg)
	}
	out, _ := cfg.OutputMode()
	if out != peel.OutputLastLayer {
		t.Errorf("OutputMode = %v, want last-layer", out)
	}
	bg, _ := cfg.BackgroundColor()
	if want := (color.RGBA{255, 255, 255, 255}); bg != want {
		t.Errorf("BackgroundColor = %v, want %v", bg, want)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"unknown extension", "demo.ini", "width=1", ErrUnknownFormat},
		{"bad layers", "demo.toml", "layers = 0", ErrInvalid},
		{"bad shading", "demo.yaml", "shading: toon", ErrInvalid},
		{"bad background", "demo.toml", `background = "#12"`, ErrInvalid},
		{"bad output", "demo.yaml", "output: middle", ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	for _, tc := range []struct{ file, content string }{
		{"demo.toml", "colour = 1"},
		{"demo.yaml", "colour: 1"},
	} {
		if _, err := Load(writeFile(t, tc.file, tc.content)); err == nil {
			t.Errorf("Load(%s) accepted an unknown key", tc.file)
		}
	}
}

func TestShadingModel(t *testing.T) {
	tests := []struct {
		in   string
		want peel.ShadingModel
	}{
		{"", peel.ShadingNone},
		{"none", peel.ShadingNone},
		{"Lambert", peel.ShadingLambert},
		{"phong", peel.ShadingPhong},
		{"blinn-phong", peel.ShadingBlinnPhong},
	}
	for _, tt := range tests {
		cfg := Config{Shading: tt.in}
		got, err := cfg.ShadingModel()
		if err != nil || got != tt.want {
			t.Errorf("ShadingModel(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestRendererOptions(t *testing.T) {
	cfg := Default()
	cfg.Layers = 3
	if n := len(cfg.RendererOptions()); n != 4 {
		t.Errorf("len(RendererOptions) = %d, want 4", n)
	}
}
