// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package layeravg averages the layer images produced by depth peeling
// into one noise-reduced image.
//
// Stochastic point rendering leaves per-layer noise. For every pixel the
// averager compares each layer with a reference (the per-channel median
// of the first layers), treats layers farther than the mean distance as
// noise and averages the rest.
//
// Layer images are read and written as BMP files named LayerImage1.bmp,
// LayerImage2.bmp and so on, numbered from 1.
package layeravg
