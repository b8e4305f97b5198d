// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

// DefaultMaxTextureSize is the largest texture edge accepted by default.
const DefaultMaxTextureSize = 8192

// Option configures a Backend.
type Option func(*options)

type options struct {
	target         *Target
	maxTextureSize int
	workers        int
}

func defaultOptions() options {
	return options{maxTextureSize: DefaultMaxTextureSize}
}

// WithTarget sets the default framebuffer. Without a target, draws to the
// default framebuffer fail with raster.ErrNoTarget.
func WithTarget(t *Target) Option {
	return func(o *options) {
		o.target = t
	}
}

// WithMaxTextureSize limits texture width and height. Non-positive values
// keep the default.
func WithMaxTextureSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxTextureSize = n
		}
	}
}

// WithWorkers sets the number of goroutines shading full-screen quads.
// Zero or negative selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
