// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the demo configuration from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/peel"
)

// Errors returned by Load and Validate.
var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalid       = errors.New("config: invalid value")
)

// Config is the demo configuration. Zero fields keep their defaults when
// a file is merged over Default.
type Config struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`

	// Layers is the number of peeled layers.
	Layers int `toml:"layers" yaml:"layers"`

	// Background is "#rrggbb" or "r,g,b" with channels in [0, 1].
	Background string `toml:"background" yaml:"background"`

	// Output is "accumulated" or "last-layer".
	Output string `toml:"output" yaml:"output"`

	// Shading is "none", "lambert", "phong" or "blinn-phong".
	Shading string `toml:"shading" yaml:"shading"`

	// Input is a point file. Empty generates Points synthetic points.
	Input  string `toml:"input" yaml:"input"`
	Points int    `toml:"points" yaml:"points"`
	Seed   uint64 `toml:"seed" yaml:"seed"`

	// Image is the PNG written after each frame.
	Image string `toml:"image" yaml:"image"`

	// LayersDir receives LayerImage<N>.bmp dumps when set.
	LayersDir string `toml:"layers_dir" yaml:"layers_dir"`

	// Backend is a registered backend name, or empty for the default.
	Backend string `toml:"backend" yaml:"backend"`

	Orthographic bool `toml:"orthographic" yaml:"orthographic"`
	Caption      bool `toml:"caption" yaml:"caption"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Width:      800,
		Height:     600,
		Layers:     4,
		Background: "#000000",
		Output:     "accumulated",
		Shading:    "none",
		Points:     20000,
		Seed:       1,
		Image:      "peel.png",
	}
}

// Load reads path over Default. The format follows the extension:
// .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&cfg); errors.Is(err, io.EOF) {
			err = nil // empty document
		}
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.Layers < 1 {
		return fmt.Errorf("%w: layers %d", ErrInvalid, c.Layers)
	}
	if c.Points < 0 {
		return fmt.Errorf("%w: points %d", ErrInvalid, c.Points)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	if _, err := c.OutputMode(); err != nil {
		return err
	}
	if _, err := c.ShadingModel(); err != nil {
		return err
	}
	return nil
}

// BackgroundColor parses Background.
func (c *Config) BackgroundColor() (color.RGBA, error) {
	s := strings.TrimSpace(c.Background)
	if s == "" {
		return color.RGBA{A: 255}, nil
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || len(hex) != 6 {
			return color.RGBA{}, fmt.Errorf("%w: background %q", ErrInvalid, c.Background)
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return color.RGBA{}, fmt.Errorf("%w: background %q", ErrInvalid, c.Background)
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil || v < 0 || v > 1 {
			return color.RGBA{}, fmt.Errorf("%w: background %q", ErrInvalid, c.Background)
		}
		ch[i] = uint8(v*255 + 0.5)
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, nil
}

// OutputMode parses Output.
func (c *Config) OutputMode() (peel.Output, error) {
	switch strings.ToLower(c.Output) {
	case "", "accumulated":
		return peel.OutputAccumulated, nil
	case "last-layer", "last":
		return peel.OutputLastLayer, nil
	}
	return 0, fmt.Errorf("%w: output %q", ErrInvalid, c.Output)
}

// ShadingModel parses Shading.
func (c *Config) ShadingModel() (peel.ShadingModel, error) {
	switch strings.ToLower(c.Shading) {
	case "", "none":
		return peel.ShadingNone, nil
	case "lambert":
		return peel.ShadingLambert, nil
	case "phong":
		return peel.ShadingPhong, nil
	case "blinn-phong", "blinnphong":
		return peel.ShadingBlinnPhong, nil
	}
	return 0, fmt.Errorf("%w: shading %q", ErrInvalid, c.Shading)
}

// RendererOptions translates the configuration into renderer options.
// The config must be valid.
func (c *Config) RendererOptions() []peel.Option {
	bg, _ := c.BackgroundColor()
	out, _ := c.OutputMode()
	model, _ := c.ShadingModel()

	opts := []peel.Option{
		peel.WithLayerCount(c.Layers),
		peel.WithBackgroundColor(float32(bg.R)/255, float32(bg.G)/255, float32(bg.B)/255),
		peel.WithOutput(out),
	}
	switch model {
	case peel.ShadingNone:
		opts = append(opts, peel.WithShadingEnabled(false))
	case peel.ShadingPhong:
		opts = append(opts, peel.WithShading(peel.PhongShading()), peel.WithShadingEnabled(true))
	case peel.ShadingBlinnPhong:
		opts = append(opts, peel.WithShading(peel.BlinnPhongShading()), peel.WithShadingEnabled(true))
	default:
		opts = append(opts, peel.WithShading(peel.LambertShading()), peel.WithShadingEnabled(true))
	}
	return opts
}
