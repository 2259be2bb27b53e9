package loop

import (
	"time"

	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/object"
	"github.com/tomz197/tempest/internal/physics"
)

// checkCollisions runs the projectile × enemy scan.
// Both collections are walked in reverse. A non-super projectile stops at its
// first hit, a super projectile keeps going. Completing the level ends the scan.
func (s *Session) checkCollisions(now time.Time) {
	projectiles := s.Objects.Projectiles
	enemies := s.Objects.Enemies

	for i := len(projectiles) - 1; i >= 0; i-- {
		p := projectiles[i]
		if p.IsDestroyed() {
			continue
		}
		for j := len(enemies) - 1; j >= 0; j-- {
			e := enemies[j]
			if e.IsDestroyed() {
				continue
			}
			if !physics.LaneHit(p.Lane, p.Position.Z, e.Lane, e.Position.Z) {
				continue
			}

			s.destroyEnemy(e)
			if !p.Super {
				p.MarkDestroyed()
			}
			if s.Player.EnemiesKilled >= s.Player.EnemiesRequired {
				s.completeLevel(now)
				return
			}
			if p.IsDestroyed() {
				break
			}
		}
	}
}

// destroyEnemy awards the kill and its drop.
func (s *Session) destroyEnemy(e *object.Enemy) {
	e.MarkDestroyed()
	s.AddScore(e.Points)
	s.Player.EnemiesKilled++
	s.Objects.Explosions = append(s.Objects.Explosions,
		object.NewExplosion(e.Position, object.KindColor(e.Kind), s.rng))
	s.emit(Event{Type: EventExplode})

	if e.Kind == object.EnemyBomber {
		s.Player.Bombs = min(s.Player.Bombs+1, config.MaxBombs)
		s.emit(Event{Type: EventPowerUp})
		s.emit(Event{Type: EventMessage, Message: "BOMB ACQUIRED!"})
		return
	}
	// Always draw so the random sequence does not depend on the enemy kind.
	roll := s.rng.Float64()
	if e.Kind == object.EnemySpecial || roll < config.PowerUpChance {
		s.spawnPowerUp(e.Position)
	}
}
