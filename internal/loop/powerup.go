package loop

import (
	"time"

	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/object"
	"github.com/tomz197/tempest/internal/physics"
	"github.com/tomz197/tempest/internal/track"
)

// spawnPowerUp drops a random power-up at pos drifting toward the player.
func (s *Session) spawnPowerUp(pos physics.Vec3) {
	kind := object.PowerUpKinds[s.rng.Intn(len(object.PowerUpKinds))]
	dir := s.Track.DirectionFor(track.Forward)
	s.Objects.PowerUps = append(s.Objects.PowerUps, object.NewPowerUp(pos, dir, kind))
}

// applyPowerUp grants a collected power-up.
// Timed kinds get a fresh deadline, replacing any running one.
func (s *Session) applyPowerUp(kind object.PowerUpKind, now time.Time) {
	p := &s.Player
	switch kind {
	case object.PowerShield:
		p.Shields = min(p.Shields+1, config.MaxShields)
	case object.PowerExtraLife:
		p.Lives++
	case object.PowerRapidFire:
		p.RapidFire = true
		p.rapidFireUntil = now.Add(config.PowerUpDuration)
	case object.PowerSuperProjectile:
		p.SuperProjectile = true
		p.superUntil = now.Add(config.PowerUpDuration)
	}
	s.emit(Event{Type: EventPowerUp, Message: kind.String()})
}

// expirePowerUps turns off timed power-ups whose deadline has passed.
func (s *Session) expirePowerUps(now time.Time) {
	p := &s.Player
	if p.RapidFire && !now.Before(p.rapidFireUntil) {
		p.RapidFire = false
		p.rapidFireUntil = time.Time{}
	}
	if p.SuperProjectile && !now.Before(p.superUntil) {
		p.SuperProjectile = false
		p.superUntil = time.Time{}
	}
}

func (s *Session) clearTimedPowerUps() {
	p := &s.Player
	p.RapidFire = false
	p.SuperProjectile = false
	p.rapidFireUntil = time.Time{}
	p.superUntil = time.Time{}
}

// PowerUpRemaining returns how long a timed power-up has left at now.
func (s *Session) PowerUpRemaining(kind object.PowerUpKind, now time.Time) time.Duration {
	var until time.Time
	switch kind {
	case object.PowerRapidFire:
		if !s.Player.RapidFire {
			return 0
		}
		until = s.Player.rapidFireUntil
	case object.PowerSuperProjectile:
		if !s.Player.SuperProjectile {
			return 0
		}
		until = s.Player.superUntil
	default:
		return 0
	}
	if s.State == StatePaused {
		now = s.pausedAt
	}
	return max(until.Sub(now), 0)
}
