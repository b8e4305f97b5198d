// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import "time"

// DefaultMaxTextureSize matches the WebGPU default limit for 2D textures.
const DefaultMaxTextureSize = 8192

// DefaultFenceTimeout bounds every wait for submitted work.
const DefaultFenceTimeout = 5 * time.Second

// Option configures a Backend.
type Option func(*options)

type options struct {
	width, height  int
	maxTextureSize int
	fenceTimeout   time.Duration
}

func defaultOptions() options {
	return options{
		maxTextureSize: DefaultMaxTextureSize,
		fenceTimeout:   DefaultFenceTimeout,
	}
}

// WithTargetSize allocates the default framebuffer at creation.
func WithTargetSize(width, height int) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithMaxTextureSize limits texture dimensions.
func WithMaxTextureSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxTextureSize = n
		}
	}
}

// WithFenceTimeout sets how long Flush and readbacks wait for the GPU.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fenceTimeout = d
		}
	}
}
