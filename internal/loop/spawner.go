package loop

import (
	"math/rand"

	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/object"
	"github.com/tomz197/tempest/internal/track"
)

// Spawner emits enemies at the far end of the tunnel on a tick interval.
type Spawner struct {
	Timer    int
	Interval int

	rng *rand.Rand
}

// NewSpawner creates a spawner with the given interval in ticks.
func NewSpawner(interval int, rng *rand.Rand) *Spawner {
	return &Spawner{Interval: interval, rng: rng}
}

// Update advances the spawn timer and returns a new enemy when one is due.
// remaining is the number of kills still needed this level; no enemy spawns
// once the live count covers it.
func (sp *Spawner) Update(t *track.Track, live, remaining int) *object.Enemy {
	sp.Timer++
	if sp.Timer < sp.Interval || live >= remaining {
		return nil
	}
	sp.Timer = 0

	kind := PickKind(sp.rng.Float64())
	lane := t.RandomLane()
	pos := t.PositionForLane(lane, config.EnemyStartZ)
	dir := t.DirectionFor(track.Forward)
	return object.NewEnemy(pos, dir, lane, kind)
}

// PickKind maps a uniform draw in [0, 1) to an enemy kind.
func PickKind(r float64) object.EnemyKind {
	switch {
	case r < config.SlowChance:
		return object.EnemySlow
	case r < config.BomberChance:
		return object.EnemyBomber
	case r < config.SpecialChance:
		return object.EnemySpecial
	default:
		return object.EnemyRegular
	}
}
