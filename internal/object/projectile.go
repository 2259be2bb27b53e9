package object

import (
	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/physics"
)

// Projectile is a shot fired by the player down its lane.
type Projectile struct {
	Position  physics.Vec3
	Direction physics.Vec3 // Unit heading, fixed at spawn
	Lane      int
	Super     bool // Passes through enemies
	destroyed bool
}

// NewProjectile creates a projectile at pos travelling along dir in lane.
func NewProjectile(pos, dir physics.Vec3, lane int, super bool) *Projectile {
	return &Projectile{
		Position:  pos,
		Direction: dir,
		Lane:      lane,
		Super:     super,
	}
}

// MarkDestroyed marks the projectile for removal.
func (p *Projectile) MarkDestroyed() {
	p.destroyed = true
}

// IsDestroyed returns true if the projectile is marked for removal.
func (p *Projectile) IsDestroyed() bool {
	return p.destroyed
}

// Advance moves the projectile one tick and reports whether it left the tunnel.
func (p *Projectile) Advance() (gone bool) {
	p.Position = p.Position.Add(p.Direction.Scale(config.ProjectileSpeed))
	return p.Position.Z < config.EnemyStartZ-5
}
