// Package peel renders point clouds with order-independent transparency
// by depth peeling.
//
// # Overview
//
// A frame peels the point cloud one depth layer at a time. Each peel step
// draws the points again, discarding everything at or in front of the
// previously peeled depth, so the nearest remaining surface lands in an
// offscreen working surface. A blend step composites that layer behind the
// layers accumulated so far. After the configured number of layers, a
// finalizing pass composites the accumulation over the background into
// the framebuffer bound on the raster context.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/peel"
//		"github.com/gogpu/peel/backend/software"
//		"github.com/gogpu/peel/raster"
//	)
//
//	target := software.NewTarget(640, 480)
//	ctx := raster.NewContext(software.New(software.WithTarget(target)))
//
//	r := peel.NewRenderer(ctx, peel.WithLayerCount(4))
//	defer r.Release()
//
//	cloud := peel.NewPointCloud(coords, []uint8{255, 128, 0})
//	cam := peel.NewLookAtCamera(640, 480)
//	cam.Frame(cloud)
//	if err := r.Render(cloud, cam, nil); err != nil {
//		log.Fatal(err)
//	}
//	// target.Image() holds the frame.
//
// # Resources
//
// The renderer owns three programs, one vertex buffer and three surfaces.
// They are created on the first frame. A change of viewport size
// reallocates the surface textures; a different dataset (by identity, not
// content) rebuilds the programs and the vertex buffer.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Renderer, PointCloud, Camera, Light, Shading
//   - raster: explicit binding context and the Backend interface
//   - backend/software: CPU backend
//   - backend/wgpu: GPU backend over gogpu/wgpu
//   - layeravg: averaging of captured layer images
//
// # Coordinate System
//
// Cameras follow GL conventions (right-handed eye space, clip depth in
// [-w, w]). Window coordinates have the origin at the top-left; window
// depth is in [0, 1] with 0 at the near plane.
package peel

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
