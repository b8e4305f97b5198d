// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software implements raster.Backend on the CPU.
//
// Programs run their Go vertex and fragment kernels. Points cover exactly
// one pixel. Full-screen quads are shaded in parallel row bands, since
// every pixel of a quad is independent; point draws stay sequential so
// the depth test sees fragments in submission order.
//
// The default framebuffer is a Target: an 8-bit RGBA image plus a float
// depth buffer, with the origin at the top-left corner.
//
// Usage:
//
//	target := software.NewTarget(640, 480)
//	b := software.New(software.WithTarget(target))
//	ctx := raster.NewContext(b)
//	// ... draw ...
//	img := target.Image()
package software
