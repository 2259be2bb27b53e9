// Package physics provides vector math and the collision predicates used by the tunnel.
package physics

import "math"

// CollisionZTolerance is the maximum z-distance at which a projectile hits an enemy.
const CollisionZTolerance = 1.0

// Vec3 is a point or direction in tunnel space.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// RotateXY applies an Euler rotation (x, y, 0) in XYZ order to v.
// The combined matrix is Rx * Ry, so Y is applied to the vector first.
func RotateXY(v Vec3, rx, ry float64) Vec3 {
	sy, cy := math.Sincos(ry)
	// Rotate about Y
	x := v.X*cy + v.Z*sy
	z := -v.X*sy + v.Z*cy
	y := v.Y

	sx, cx := math.Sincos(rx)
	// Rotate about X
	return Vec3{
		X: x,
		Y: y*cx - z*sx,
		Z: y*sx + z*cx,
	}
}

// LaneHit reports whether two lane-locked entities collide.
// Lanes must match exactly; only the z-distance is compared.
func LaneHit(laneA int, zA float64, laneB int, zB float64) bool {
	return laneA == laneB && math.Abs(zA-zB) < CollisionZTolerance
}

// InPickupWindow reports whether item is close enough to the player to be collected.
func InPickupWindow(item, player Vec3, playerZ float64) bool {
	return item.Z > playerZ-1 &&
		math.Abs(item.X-player.X) < 2 &&
		math.Abs(item.Y-player.Y) < 2
}
