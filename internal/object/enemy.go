package object

import (
	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/physics"
)

// EnemyKind represents the enemy variant.
type EnemyKind int

const (
	EnemyRegular EnemyKind = iota
	EnemySpecial           // Fast, always drops a power-up
	EnemySlow
	EnemyBomber // Grants a bomb when destroyed
)

var enemyKindNames = [...]string{"regular", "special", "slow", "bomber"}

func (k EnemyKind) String() string {
	if k < 0 || int(k) >= len(enemyKindNames) {
		return "unknown"
	}
	return enemyKindNames[k]
}

// Points returns the score for destroying an enemy of this kind.
func (k EnemyKind) Points() int {
	switch k {
	case EnemySpecial:
		return config.ScoreSpecial
	case EnemySlow:
		return config.ScoreSlow
	case EnemyBomber:
		return config.ScoreBomber
	default:
		return config.ScoreRegular
	}
}

// SpeedMultiplier scales the base enemy speed.
func (k EnemyKind) SpeedMultiplier() float64 {
	switch k {
	case EnemySpecial:
		return 1.5
	case EnemySlow:
		return 0.3
	case EnemyBomber:
		return 0.8
	default:
		return 1.0
	}
}

// Enemy crawls up its lane toward the player.
type Enemy struct {
	Position  physics.Vec3
	Direction physics.Vec3 // Unit heading, fixed at spawn
	Lane      int
	Kind      EnemyKind
	Points    int
	destroyed bool
}

// NewEnemy creates an enemy of the given kind.
func NewEnemy(pos, dir physics.Vec3, lane int, kind EnemyKind) *Enemy {
	return &Enemy{
		Position:  pos,
		Direction: dir,
		Lane:      lane,
		Kind:      kind,
		Points:    kind.Points(),
	}
}

// MarkDestroyed marks the enemy for removal.
func (e *Enemy) MarkDestroyed() {
	e.destroyed = true
}

// IsDestroyed returns true if the enemy is marked for removal.
func (e *Enemy) IsDestroyed() bool {
	return e.destroyed
}

// Advance moves the enemy one tick at baseSpeed and reports whether it breached
// the player's end of the tunnel.
func (e *Enemy) Advance(baseSpeed float64) (breached bool) {
	speed := baseSpeed * e.Kind.SpeedMultiplier()
	e.Position = e.Position.Add(e.Direction.Scale(speed))
	return e.Position.Z > config.EnemyEndZ
}
