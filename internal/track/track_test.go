package track

import (
	"math"
	"math/rand"
	"testing"
)

func TestSetShapeLaneCounts(t *testing.T) {
	tr := New(rand.New(rand.NewSource(1)))
	tests := []struct {
		shape Shape
		sides int
		want  int
	}{
		{ShapeCircle, 0, 10},
		{ShapePentagon, 0, 5},
		{ShapeHexagon, 0, 6},
		{ShapeOctagon, 0, 8},
		{ShapeCustom, 7, 7},
		{ShapeCustom, 1, MinLanes},
		{Shape("bogus"), 0, 10},
	}
	for _, tt := range tests {
		if got := tr.SetShape(tt.shape, tt.sides); got != tt.want {
			t.Errorf("SetShape(%q, %d) = %d, want %d", tt.shape, tt.sides, got, tt.want)
		}
	}
}

func TestRandomShapeRange(t *testing.T) {
	tr := New(rand.New(rand.NewSource(42)))
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		n := tr.SetShape(ShapeRandom, 0)
		if n < 5 || n > 8 {
			t.Fatalf("random shape produced %d lanes", n)
		}
		seen[n] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected all of 5..8 to appear, saw %v", seen)
	}
}

func TestRotationSurvivesRebuild(t *testing.T) {
	tr := New(nil)
	tr.SetRotation(0.3, -0.2)
	tr.SetShape(ShapeHexagon, 0)
	if tr.RotationX != 0.3 || tr.RotationY != -0.2 {
		t.Errorf("rotation reset by rebuild: (%v, %v)", tr.RotationX, tr.RotationY)
	}
}

func TestPositionForLaneUnrotated(t *testing.T) {
	tr := New(nil)
	tr.SetShape(ShapeCustom, 4)
	p := tr.PositionForLane(1, 12)
	if math.Abs(p.X) > 1e-9 || math.Abs(p.Y-tr.Radius) > 1e-9 || p.Z != 12 {
		t.Errorf("PositionForLane(1) = %+v, want (0, %v, 12)", p, tr.Radius)
	}
}

func TestDirectionForIsUnit(t *testing.T) {
	tr := New(nil)
	tr.SetRotation(0.4, 1.1)
	d := tr.DirectionFor(Forward)
	if math.Abs(d.Length()-1) > 1e-9 {
		t.Errorf("direction length = %v, want 1", d.Length())
	}
}

func TestWrapLane(t *testing.T) {
	tr := New(nil)
	tr.SetShape(ShapePentagon, 0)
	if got := tr.WrapLane(-1); got != 4 {
		t.Errorf("WrapLane(-1) = %d, want 4", got)
	}
	if got := tr.WrapLane(5); got != 0 {
		t.Errorf("WrapLane(5) = %d, want 0", got)
	}
	if got := tr.CenterLane(); got != 2 {
		t.Errorf("CenterLane() = %d, want 2", got)
	}
}

func TestParseShape(t *testing.T) {
	if _, err := ParseShape("hexagon"); err != nil {
		t.Errorf("ParseShape(hexagon) error: %v", err)
	}
	if _, err := ParseShape("triangle"); err == nil {
		t.Error("ParseShape(triangle) expected error")
	}
}
