package peel

import (
	"fmt"
)

// ObjectKind tags the kind of a scene object.
type ObjectKind uint8

// Object kinds.
const (
	ObjectUnknown ObjectKind = iota
	ObjectPoint
	ObjectLine
	ObjectPolygon
	ObjectVolume
)

// String returns the kind name.
func (k ObjectKind) String() string {
	switch k {
	case ObjectPoint:
		return "point"
	case ObjectLine:
		return "line"
	case ObjectPolygon:
		return "polygon"
	case ObjectVolume:
		return "volume"
	default:
		return "unknown"
	}
}

// Object is a scene object handed to Render. The renderer only draws
// objects that also implement PointObject; any other object is skipped.
//
// Dataset identity is the Object value itself: handing the same pointer
// again reuses the uploaded vertices, a different pointer rebuilds them,
// even when the contents are equal. Implementations must be comparable,
// which pointer types are.
type Object interface {
	Kind() ObjectKind
}

// PointObject is an Object that provides a point cloud.
type PointObject interface {
	Object
	PointCloud() *PointCloud
}

// PointCloud is a set of colored points.
//
// Coords holds 3 float32 per vertex. Colors holds either a single RGB
// triple shared by every vertex, or one RGB triple per vertex. Points have
// no opacity and no normals.
type PointCloud struct {
	Coords []float32
	Colors []uint8
}

// NewPointCloud creates a point cloud from coordinates and colors.
// The slices are used directly without copying.
func NewPointCloud(coords []float32, colors []uint8) *PointCloud {
	return &PointCloud{Coords: coords, Colors: colors}
}

// Kind returns ObjectPoint.
func (pc *PointCloud) Kind() ObjectKind {
	return ObjectPoint
}

// PointCloud returns pc.
func (pc *PointCloud) PointCloud() *PointCloud {
	return pc
}

// NumVertices returns the number of points.
func (pc *PointCloud) NumVertices() int {
	return len(pc.Coords) / 3
}

// IsSingleColor reports whether one color is shared by all points.
func (pc *PointCloud) IsSingleColor() bool {
	return len(pc.Colors) == 3
}

// Validate checks the coordinate and color array lengths.
func (pc *PointCloud) Validate() error {
	if len(pc.Coords)%3 != 0 {
		return fmt.Errorf("%w: %d coordinates is not a multiple of 3", ErrInvalidPointCloud, len(pc.Coords))
	}
	n := pc.NumVertices()
	if n == 0 {
		return nil
	}
	if len(pc.Colors) != 3 && len(pc.Colors) != 3*n {
		return fmt.Errorf("%w: %d color bytes for %d vertices", ErrInvalidPointCloud, len(pc.Colors), n)
	}
	return nil
}

var _ PointObject = (*PointCloud)(nil)
