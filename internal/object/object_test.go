package object

import (
	"math/rand"
	"testing"
	"time"

	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/physics"
)

func TestEnemyKindAttributes(t *testing.T) {
	tests := []struct {
		kind   EnemyKind
		points int
		mult   float64
		name   string
	}{
		{EnemyRegular, 100, 1.0, "regular"},
		{EnemySpecial, 200, 1.5, "special"},
		{EnemySlow, 150, 0.3, "slow"},
		{EnemyBomber, 300, 0.8, "bomber"},
	}
	for _, tt := range tests {
		if got := tt.kind.Points(); got != tt.points {
			t.Errorf("%s points = %d, want %d", tt.name, got, tt.points)
		}
		if got := tt.kind.SpeedMultiplier(); got != tt.mult {
			t.Errorf("%s multiplier = %v, want %v", tt.name, got, tt.mult)
		}
		if got := tt.kind.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
}

func TestEnemyAdvanceBreach(t *testing.T) {
	e := NewEnemy(physics.Vec3{Z: config.EnemyEndZ - 0.1}, physics.Vec3{Z: 1}, 0, EnemyRegular)
	if breached := e.Advance(0.05); breached {
		t.Fatal("enemy breached too early")
	}
	if breached := e.Advance(0.1); !breached {
		t.Fatalf("enemy at z=%v should have breached", e.Position.Z)
	}
}

func TestEnemyAdvanceUsesMultiplier(t *testing.T) {
	e := NewEnemy(physics.Vec3{}, physics.Vec3{Z: 1}, 0, EnemySlow)
	e.Advance(1)
	if e.Position.Z != 0.3 {
		t.Errorf("slow enemy moved %v, want 0.3", e.Position.Z)
	}
}

func TestProjectileLeavesTunnel(t *testing.T) {
	p := NewProjectile(physics.Vec3{Z: config.EnemyStartZ - 4.5}, physics.Vec3{Z: -1}, 0, false)
	if gone := p.Advance(); !gone {
		t.Errorf("projectile at z=%v should be gone", p.Position.Z)
	}
}

func TestStoreCompact(t *testing.T) {
	s := NewStore()
	a := NewEnemy(physics.Vec3{}, physics.Vec3{Z: 1}, 0, EnemyRegular)
	b := NewEnemy(physics.Vec3{}, physics.Vec3{Z: 1}, 1, EnemyRegular)
	c := NewEnemy(physics.Vec3{}, physics.Vec3{Z: 1}, 2, EnemyRegular)
	s.Enemies = append(s.Enemies, a, b, c)
	b.MarkDestroyed()

	if got := s.LiveEnemies(); got != 2 {
		t.Errorf("LiveEnemies() = %d, want 2", got)
	}
	s.Compact()
	if len(s.Enemies) != 2 || s.Enemies[0] != a || s.Enemies[1] != c {
		t.Errorf("Compact() left %v", s.Enemies)
	}
}

func TestExplosionFades(t *testing.T) {
	e := NewExplosion(physics.Vec3{}, ColorRegular, rand.New(rand.NewSource(3)))
	if len(e.Particles) != config.ExplosionParticles {
		t.Fatalf("got %d particles", len(e.Particles))
	}
	if done := e.Update(100 * time.Millisecond); done {
		t.Fatal("explosion finished too early")
	}
	if done := e.Update(400 * time.Millisecond); !done {
		t.Fatal("explosion should be done after its lifetime")
	}
	if op := e.Particles[0].Opacity(); op != 0 {
		t.Errorf("faded particle opacity = %v", op)
	}
}

func TestPowerUpTimed(t *testing.T) {
	if !PowerRapidFire.Timed() || !PowerSuperProjectile.Timed() {
		t.Error("rapid fire and super projectile must be timed")
	}
	if PowerShield.Timed() || PowerExtraLife.Timed() {
		t.Error("shield and extra life are not timed")
	}
}
