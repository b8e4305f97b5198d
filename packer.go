package peel

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/peel/raster"
)

// PackedVertices is the single buffer uploaded per dataset: all positions,
// then all colors, then all normals.
//
// Positions are little-endian float32 triples. Colors are 4 bytes per
// vertex with alpha 255. The normal block is always empty.
type PackedVertices struct {
	Data []byte

	CoordOffset, CoordSize   int
	ColorOffset, ColorSize   int
	NormalOffset, NormalSize int

	Count int
}

// Layout returns the attribute layout of the buffer.
func (p *PackedVertices) Layout() raster.VertexLayout {
	return raster.VertexLayout{
		CoordOffset:  p.CoordOffset,
		ColorOffset:  p.ColorOffset,
		NormalOffset: p.NormalOffset,
		HasNormals:   p.NormalSize > 0,
	}
}

// PackVertices packs a point cloud into one buffer. A single shared color
// is broadcast to every vertex.
func PackVertices(pc *PointCloud) (*PackedVertices, error) {
	if err := pc.Validate(); err != nil {
		return nil, err
	}

	n := pc.NumVertices()
	p := &PackedVertices{
		CoordSize: n * 12,
		ColorSize: n * 4,
		Count:     n,
	}
	p.ColorOffset = p.CoordSize
	p.NormalOffset = p.CoordSize + p.ColorSize
	p.Data = make([]byte, p.CoordSize+p.ColorSize+p.NormalSize)

	for i, c := range pc.Coords {
		binary.LittleEndian.PutUint32(p.Data[i*4:], math.Float32bits(c))
	}

	colors := p.Data[p.ColorOffset:p.NormalOffset]
	single := pc.IsSingleColor()
	for i := range n {
		src := pc.Colors
		if !single {
			src = pc.Colors[3*i : 3*i+3]
		}
		colors[4*i+0] = src[0]
		colors[4*i+1] = src[1]
		colors[4*i+2] = src[2]
		colors[4*i+3] = 255
	}
	return p, nil
}
