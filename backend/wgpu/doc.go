// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements raster.Backend on a gogpu/wgpu HAL device.
//
// Programs are compiled from their WGSL source with naga and turned into
// render pipelines on first draw. One pipeline exists per combination of
// program, primitive, depth state and attachment formats, so the depth
// function switches of the peeling loop map to cached pipelines instead
// of dynamic state.
//
// Every Clear and Draw records its own render pass. Work is submitted on
// Flush, which also frees the per-draw uniform buffers and bind groups.
//
// The default framebuffer is an offscreen RGBA8 target owned by the
// backend; ReadTarget copies it back to an image.RGBA.
//
// # Device sharing
//
// The backend never creates a device. Pass one in with New, or use
// NewFromProvider with a gpucontext.DeviceProvider whose HalDevice and
// HalQueue methods return hal.Device and hal.Queue. The registry entry
// "wgpu" requires backend.Config.Provider and returns backend.ErrNoDevice
// without it.
package wgpu
