// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend is the registry of raster backends.
//
// Backend packages register a factory from init, so importing them for
// side effects makes them selectable by name:
//
//	import (
//		"github.com/gogpu/peel/backend"
//		_ "github.com/gogpu/peel/backend/software"
//		_ "github.com/gogpu/peel/backend/wgpu"
//	)
//
//	b, err := backend.Get("software", backend.Config{Width: 640, Height: 480})
//
// Default picks the best backend that starts: wgpu when a device provider
// is configured, software otherwise.
package backend
