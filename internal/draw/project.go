package draw

import (
	"math"

	"github.com/tomz197/tempest/internal/physics"
)

// Camera is a pinhole camera on the tunnel axis looking toward -z.
type Camera struct {
	Position physics.Vec3
	Near     float64 // Points closer than this are not projected
	focal    float64 // Logical units per unit of x/z at depth 1
	center   Point
}

// NewCamera creates a camera for a viewport of the given logical size.
// fov is the vertical field of view in radians.
func NewCamera(pos physics.Vec3, fov, width, height float64) *Camera {
	return &Camera{
		Position: pos,
		Near:     0.1,
		focal:    (height / 2) / math.Tan(fov/2),
		center:   Point{X: width / 2, Y: height / 2},
	}
}

// Project maps a world point to logical canvas space. scale is the size of one
// world unit at that depth. ok is false for points behind the near plane.
func (cam *Camera) Project(v physics.Vec3) (p Point, scale float64, ok bool) {
	rel := v.Sub(cam.Position)
	depth := -rel.Z
	if depth < cam.Near {
		return Point{}, 0, false
	}
	scale = cam.focal / depth
	return Point{
		X: cam.center.X + rel.X*scale,
		Y: cam.center.Y - rel.Y*scale,
	}, scale, true
}
