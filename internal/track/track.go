// Package track models the polygonal tunnel the game is played on.
package track

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/physics"
)

// Shape selects the tunnel cross-section.
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapePentagon Shape = "pentagon"
	ShapeHexagon  Shape = "hexagon"
	ShapeOctagon  Shape = "octagon"
	ShapeRandom   Shape = "random"
	ShapeCustom   Shape = "custom"
)

// MinLanes is the smallest lane count a track can have.
const MinLanes = 3

// Canonical headings along the tunnel axis.
var (
	Forward  = physics.Vec3{Z: 1}  // Toward the player
	Backward = physics.Vec3{Z: -1} // Away from the player
)

// ParseShape converts a settings string into a Shape.
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case ShapeCircle, ShapePentagon, ShapeHexagon, ShapeOctagon, ShapeRandom, ShapeCustom:
		return Shape(s), nil
	}
	return "", fmt.Errorf("unknown web type %q", s)
}

// Track is the lane layout plus the tunnel tilt.
// Rotation survives every rebuild.
type Track struct {
	Shape     Shape
	LaneCount int
	RotationX float64
	RotationY float64
	Radius    float64
	Depth     float64

	rng *rand.Rand
}

// New creates a circle track. rng drives the random shape.
func New(rng *rand.Rand) *Track {
	t := &Track{
		Radius: config.WebRadius,
		Depth:  config.WebDepth,
		rng:    rng,
	}
	t.SetShape(ShapeCircle, 0)
	return t
}

// SetShape rebuilds the lane layout and returns the new lane count.
// sides is only used by ShapeCustom.
func (t *Track) SetShape(shape Shape, sides int) int {
	switch shape {
	case ShapePentagon:
		t.LaneCount = 5
	case ShapeHexagon:
		t.LaneCount = 6
	case ShapeOctagon:
		t.LaneCount = 8
	case ShapeRandom:
		t.LaneCount = 5 + t.intn(4)
	case ShapeCustom:
		t.LaneCount = sides
	default:
		shape = ShapeCircle
		t.LaneCount = 10
	}
	if t.LaneCount < MinLanes {
		t.LaneCount = MinLanes
	}
	t.Shape = shape
	return t.LaneCount
}

// LaneAngleStep is the angle between neighbouring lanes.
func (t *Track) LaneAngleStep() float64 {
	return 2 * math.Pi / float64(t.LaneCount)
}

// LaneAngle returns the canonical angle of a lane.
func (t *Track) LaneAngle(lane int) float64 {
	return float64(lane) * t.LaneAngleStep()
}

// PositionForLane returns the rotated position of a lane at depth z.
func (t *Track) PositionForLane(lane int, z float64) physics.Vec3 {
	angle := t.LaneAngle(lane)
	p := physics.Vec3{
		X: t.Radius * math.Cos(angle),
		Y: t.Radius * math.Sin(angle),
		Z: z,
	}
	return physics.RotateXY(p, t.RotationX, t.RotationY)
}

// DirectionFor rotates a canonical heading by the current tunnel rotation.
func (t *Track) DirectionFor(heading physics.Vec3) physics.Vec3 {
	return physics.RotateXY(heading, t.RotationX, t.RotationY).Normalize()
}

// SetRotation replaces the tunnel tilt.
func (t *Track) SetRotation(x, y float64) {
	t.RotationX = x
	t.RotationY = y
}

// Nudge adds to the tunnel tilt.
func (t *Track) Nudge(dx, dy float64) {
	t.RotationX += dx
	t.RotationY += dy
}

// CenterLane is the lane the player starts in.
func (t *Track) CenterLane() int {
	return t.LaneCount / 2
}

// WrapLane maps any lane index into [0, LaneCount).
func (t *Track) WrapLane(lane int) int {
	n := t.LaneCount
	return ((lane % n) + n) % n
}

// RandomLane picks a uniformly random lane.
func (t *Track) RandomLane() int {
	return t.intn(t.LaneCount)
}

func (t *Track) intn(n int) int {
	if t.rng == nil {
		return rand.Intn(n)
	}
	return t.rng.Intn(n)
}
