package loop

import (
	"testing"
	"time"

	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/object"
	"github.com/tomz197/tempest/internal/physics"
	"github.com/tomz197/tempest/internal/track"
)

func TestMilestoneRewards(t *testing.T) {
	tests := []struct {
		name        string
		start, add  int
		wantBombs   int
		wantShields int
	}{
		{"below first", 0, 2999, 0, 0},
		{"first only", 2900, 200, 1, 0},
		{"two at once from zero", 0, 6000, 2, 1},
		{"two at once from first", 3000, 6000, 2, 1},
		{"four at once", 0, 12000, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t)
			startPlaying(t, s, DefaultSettings())
			s.Player.Score = tt.start
			s.Player.LastBombMilestone = tt.start / config.MilestonePoints

			s.AddScore(tt.add)
			if s.Player.Bombs != tt.wantBombs || s.Player.Shields != tt.wantShields {
				t.Errorf("bombs=%d shields=%d, want %d and %d",
					s.Player.Bombs, s.Player.Shields, tt.wantBombs, tt.wantShields)
			}
		})
	}
}

func TestMilestoneCaps(t *testing.T) {
	s, _ := newTestSession(t)
	startPlaying(t, s, DefaultSettings())
	for i := 0; i < 100; i++ {
		s.AddScore(config.MilestonePoints)
		if s.Player.Bombs > config.MaxBombs || s.Player.Shields > config.MaxShields {
			t.Fatalf("after %d milestones bombs=%d shields=%d", i+1, s.Player.Bombs, s.Player.Shields)
		}
	}
	if s.Player.Bombs != config.MaxBombs || s.Player.Shields != config.MaxShields {
		t.Errorf("bombs=%d shields=%d, want caps", s.Player.Bombs, s.Player.Shields)
	}
}

func TestApplyPowerUp(t *testing.T) {
	s, _ := newTestSession(t)
	now := startPlaying(t, s, DefaultSettings())

	s.applyPowerUp(object.PowerExtraLife, now)
	if s.Player.Lives != 4 {
		t.Errorf("lives = %d, want 4", s.Player.Lives)
	}
	for i := 0; i < 8; i++ {
		s.applyPowerUp(object.PowerShield, now)
	}
	if s.Player.Shields != config.MaxShields {
		t.Errorf("shields = %d, want %d", s.Player.Shields, config.MaxShields)
	}
}

func TestTimedPowerUpExpiry(t *testing.T) {
	s, _ := newTestSession(t)
	now := startPlaying(t, s, DefaultSettings())
	s.applyPowerUp(object.PowerSuperProjectile, now)

	s.Tick(now.Add(config.PowerUpDuration-time.Millisecond), TickInput{})
	if !s.Player.SuperProjectile {
		t.Fatal("super projectile expired early")
	}
	s.Tick(now.Add(config.PowerUpDuration), TickInput{})
	if s.Player.SuperProjectile {
		t.Error("super projectile did not expire")
	}
}

func TestRepickupReplacesDeadline(t *testing.T) {
	s, _ := newTestSession(t)
	now := startPlaying(t, s, DefaultSettings())
	s.applyPowerUp(object.PowerRapidFire, now)
	s.applyPowerUp(object.PowerRapidFire, now.Add(5*time.Second))

	s.Tick(now.Add(config.PowerUpDuration+time.Second), TickInput{})
	if !s.Player.RapidFire {
		t.Error("second pickup should extend rapid fire")
	}
	if got := s.PowerUpRemaining(object.PowerRapidFire, now.Add(config.PowerUpDuration+time.Second)); got != 4*time.Second {
		t.Errorf("remaining = %v, want 4s", got)
	}
}

func TestPauseShiftsDeadlines(t *testing.T) {
	s, _ := newTestSession(t)
	now := startPlaying(t, s, DefaultSettings())
	s.applyPowerUp(object.PowerRapidFire, now)

	s.TogglePause(now.Add(time.Second))
	if got := s.PowerUpRemaining(object.PowerRapidFire, now.Add(5*time.Second)); got != 9*time.Second {
		t.Errorf("remaining while paused = %v, want 9s", got)
	}
	s.TogglePause(now.Add(4 * time.Second))

	s.Tick(now.Add(12*time.Second), TickInput{})
	if !s.Player.RapidFire {
		t.Fatal("paused time counted against rapid fire")
	}
	s.Tick(now.Add(13*time.Second), TickInput{})
	if s.Player.RapidFire {
		t.Error("rapid fire should expire after 10s of play")
	}
}

func TestRapidFireAutoShoots(t *testing.T) {
	s, _ := newTestSession(t)
	now := startPlaying(t, s, DefaultSettings())
	s.applyPowerUp(object.PowerRapidFire, now)

	for i := 0; i < config.RapidFireInterval*3; i++ {
		now = now.Add(config.ClientTargetFrameTime)
		s.Tick(now, TickInput{})
	}
	if got := len(s.Objects.Projectiles); got != 3 {
		t.Errorf("auto shots = %d, want 3", got)
	}
}

func TestLevelCompleteClearsTimedPowerUps(t *testing.T) {
	s, _ := newTestSession(t)
	now := startPlaying(t, s, DefaultSettings())
	s.applyPowerUp(object.PowerRapidFire, now)
	s.applyPowerUp(object.PowerSuperProjectile, now)
	s.completeLevel(now)
	if s.Player.TimedPowerUpActive() {
		t.Error("timed power-ups survived level completion")
	}
}

func TestPowerUpPickup(t *testing.T) {
	s, _ := newTestSession(t)
	now := startPlaying(t, s, DefaultSettings())

	pos := s.PlayerPosition()
	pos.Z = config.PlayerZ - 1.1
	s.Objects.PowerUps = append(s.Objects.PowerUps, object.NewPowerUp(pos, track.Forward, object.PowerShield))

	missed := object.NewPowerUp(physics.Vec3{X: 9, Z: config.PlayerZ + 4.9}, track.Forward, object.PowerExtraLife)
	s.Objects.PowerUps = append(s.Objects.PowerUps, missed)

	s.Tick(now.Add(time.Millisecond), TickInput{})
	if s.Player.Shields != 1 {
		t.Errorf("shields = %d, want 1", s.Player.Shields)
	}
	if s.Player.Lives != 3 {
		t.Error("power-up outside the window was collected")
	}
	if len(s.Objects.PowerUps) != 0 {
		t.Errorf("%d power-ups left, want 0", len(s.Objects.PowerUps))
	}
}
