package physics

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLaneHit(t *testing.T) {
	tests := []struct {
		name  string
		laneA int
		zA    float64
		laneB int
		zB    float64
		want  bool
	}{
		{"same lane same z", 2, 10, 2, 10, true},
		{"different lane same z", 2, 10, 3, 10, false},
		{"same lane just inside tolerance", 4, 0, 4, 0.99, true},
		{"same lane at tolerance", 4, 0, 4, 1.0, false},
		{"same lane negative delta", 1, 5, 1, 4.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LaneHit(tt.laneA, tt.zA, tt.laneB, tt.zB); got != tt.want {
				t.Errorf("LaneHit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRotateXYIdentity(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 3}
	got := RotateXY(v, 0, 0)
	if got != v {
		t.Fatalf("RotateXY with zero angles = %+v, want %+v", got, v)
	}
}

func TestRotateXYQuarterTurns(t *testing.T) {
	forward := Vec3{Z: 1}

	got := RotateXY(forward, 0, math.Pi/2)
	if !approx(got.X, 1) || !approx(got.Y, 0) || !approx(got.Z, 0) {
		t.Errorf("Y quarter turn of +Z = %+v, want (1,0,0)", got)
	}

	got = RotateXY(forward, math.Pi/2, 0)
	if !approx(got.X, 0) || !approx(got.Y, -1) || !approx(got.Z, 0) {
		t.Errorf("X quarter turn of +Z = %+v, want (0,-1,0)", got)
	}
}

func TestRotateXYPreservesLength(t *testing.T) {
	v := Vec3{X: 3, Y: -4, Z: 12}
	got := RotateXY(v, 0.7, -1.3)
	if !approx(got.Length(), v.Length()) {
		t.Errorf("length changed: %v -> %v", v.Length(), got.Length())
	}
}

func TestNormalize(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero vector normalized to %+v", got)
	}
	if got := (Vec3{X: 0, Y: 0, Z: -5}).Normalize(); got != (Vec3{Z: -1}) {
		t.Errorf("Normalize() = %+v, want (0,0,-1)", got)
	}
}

func TestInPickupWindow(t *testing.T) {
	player := Vec3{X: 9, Y: 0, Z: 80}
	if !InPickupWindow(Vec3{X: 8, Y: 1, Z: 79.5}, player, 80) {
		t.Error("expected item near player to be collected")
	}
	if InPickupWindow(Vec3{X: 8, Y: 1, Z: 78}, player, 80) {
		t.Error("item behind pickup depth should not be collected")
	}
	if InPickupWindow(Vec3{X: 6.5, Y: 0, Z: 80}, player, 80) {
		t.Error("item too far on x should not be collected")
	}
}
