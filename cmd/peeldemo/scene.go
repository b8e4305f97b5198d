package main

import (
	"math/rand/v2"

	"github.com/chewxy/math32"

	"github.com/gogpu/peel"
)

// shell is one sphere of the synthetic scene.
type shell struct {
	radius float32
	color  [3]uint8
}

var shells = []shell{
	{radius: 1.0, color: [3]uint8{230, 60, 50}},
	{radius: 2.0, color: [3]uint8{60, 200, 90}},
	{radius: 3.0, color: [3]uint8{70, 110, 240}},
}

// generateShells scatters n points over nested spheres so that every
// pixel near the center sees several layers.
func generateShells(n int, seed uint64) *peel.PointCloud {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	coords := make([]float32, 0, 3*n)
	colors := make([]uint8, 0, 3*n)

	for i := range n {
		s := shells[i%len(shells)]
		x, y, z := float32(rng.NormFloat64()), float32(rng.NormFloat64()), float32(rng.NormFloat64())
		l := math32.Sqrt(x*x + y*y + z*z)
		if l == 0 {
			x, l = 1, 1
		}
		// Slight radial jitter keeps the shells from being perfectly thin.
		r := s.radius * (1 + 0.02*float32(rng.NormFloat64()))
		coords = append(coords, x/l*r, y/l*r, z/l*r)

		shade := 0.8 + 0.2*rng.Float32()
		for _, c := range s.color {
			colors = append(colors, uint8(math32.Min(255, float32(c)*shade)))
		}
	}
	return peel.NewPointCloud(coords, colors)
}
