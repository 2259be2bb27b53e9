package loop

import (
	"time"

	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/object"
	"github.com/tomz197/tempest/internal/physics"
	"github.com/tomz197/tempest/internal/track"
)

// updatePlaying runs one simulation step.
func (s *Session) updatePlaying(now time.Time, dt time.Duration, in TickInput) {
	s.expirePowerUps(now)

	if in.Accelerate {
		s.enemySpeed = s.baseEnemySpeed * config.AccelerateBoost
	} else {
		s.enemySpeed = s.baseEnemySpeed
	}

	s.tick++
	s.updateLane(in.Move)

	if s.Player.RapidFire && s.tick%config.RapidFireInterval == 0 {
		s.Fire()
	}

	s.updateProjectiles()

	remaining := s.Player.EnemiesRequired - s.Player.EnemiesKilled
	if e := s.spawner.Update(s.Track, s.Objects.LiveEnemies(), remaining); e != nil {
		s.Objects.Enemies = append(s.Objects.Enemies, e)
	}

	s.updateEnemies()
	if s.State != StatePlaying {
		s.Objects.Compact()
		return
	}

	s.updatePowerUps(now)
	s.updateExplosions(dt)
	s.checkCollisions(now)
	s.Objects.Compact()
}

func (s *Session) updateLane(move int) {
	if move == 0 || s.tick < s.lastLaneChange+s.laneChangeRate {
		return
	}
	if move > 0 {
		move = 1
	} else {
		move = -1
	}
	s.Player.Lane = s.Track.WrapLane(s.Player.Lane + move)
	s.lastLaneChange = s.tick
}

func (s *Session) updateProjectiles() {
	for _, p := range s.Objects.Projectiles {
		if p.IsDestroyed() {
			continue
		}
		if gone := p.Advance(); gone {
			p.MarkDestroyed()
		}
	}
}

// updateEnemies moves every enemy and resolves breaches. The pass stops as soon
// as the game leaves the playing state.
func (s *Session) updateEnemies() {
	enemies := s.Objects.Enemies
	for i := len(enemies) - 1; i >= 0; i-- {
		e := enemies[i]
		if e.IsDestroyed() {
			continue
		}
		if breached := e.Advance(s.enemySpeed); !breached {
			continue
		}
		e.MarkDestroyed()

		if s.Player.Shields > 0 {
			s.Player.Shields--
			s.Objects.Explosions = append(s.Objects.Explosions,
				object.NewExplosion(e.Position, object.ColorShield, s.rng))
			s.emit(Event{Type: EventDeflect})
		} else {
			s.loseLife()
		}
		if s.State != StatePlaying {
			return
		}
	}
}

func (s *Session) updatePowerUps(now time.Time) {
	player := s.PlayerPosition()
	for i := len(s.Objects.PowerUps) - 1; i >= 0; i-- {
		pu := s.Objects.PowerUps[i]
		if pu.IsDestroyed() {
			continue
		}
		pu.Advance(s.enemySpeed)
		switch {
		case physics.InPickupWindow(pu.Position, player, config.PlayerZ):
			s.applyPowerUp(pu.Kind, now)
			pu.MarkDestroyed()
		case pu.Missed():
			pu.MarkDestroyed()
		}
	}
}

func (s *Session) updateExplosions(dt time.Duration) {
	kept := s.Objects.Explosions[:0]
	for _, e := range s.Objects.Explosions {
		if done := e.Update(dt); done {
			e.Release()
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(s.Objects.Explosions); i++ {
		s.Objects.Explosions[i] = nil
	}
	s.Objects.Explosions = kept
}

// Fire shoots a projectile down the player's lane.
// The shot is dropped when the projectile cap is reached and no power-up lifts it.
func (s *Session) Fire() {
	if s.State != StatePlaying {
		return
	}
	p := &s.Player
	if !p.TimedPowerUpActive() && len(s.Objects.Projectiles) > config.MaxShots {
		return
	}

	pos := s.PlayerPosition()
	pos.Z += config.ProjectileSpawnDZ
	dir := s.Track.DirectionFor(track.Backward)
	s.Objects.Projectiles = append(s.Objects.Projectiles,
		object.NewProjectile(pos, dir, p.Lane, p.SuperProjectile))
	s.emit(Event{Type: EventFire})
}

// Bomb destroys every enemy on screen. It is a no-op without bombs.
func (s *Session) Bomb(now time.Time) {
	if s.State != StatePlaying || s.Player.Bombs <= 0 {
		return
	}
	s.Player.Bombs--
	s.emit(Event{Type: EventBomb})

	center := object.NewExplosion(physics.Vec3{}, object.ColorBomber, s.rng)
	center.Scale = 3
	s.Objects.Explosions = append(s.Objects.Explosions, center)

	total := 0
	for _, e := range s.Objects.Enemies {
		if e.IsDestroyed() {
			continue
		}
		total += e.Points
		s.Player.EnemiesKilled++
		s.Objects.Explosions = append(s.Objects.Explosions,
			object.NewExplosion(e.Position, object.KindColor(e.Kind), s.rng))
		e.MarkDestroyed()
	}
	s.Objects.Compact()

	if total > 0 {
		s.AddScore(total)
	}
	if s.Player.EnemiesKilled >= s.Player.EnemiesRequired {
		s.completeLevel(now)
	}
}
