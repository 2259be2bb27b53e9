package object

import (
	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/physics"
)

// PowerUpKind represents the power-up variant.
type PowerUpKind int

const (
	PowerRapidFire PowerUpKind = iota
	PowerExtraLife
	PowerShield
	PowerSuperProjectile
)

// PowerUpKinds lists every kind in drop order.
var PowerUpKinds = [...]PowerUpKind{PowerRapidFire, PowerExtraLife, PowerShield, PowerSuperProjectile}

var powerUpNames = [...]string{"rapidFire", "extraLife", "shield", "superProjectile"}

func (k PowerUpKind) String() string {
	if k < 0 || int(k) >= len(powerUpNames) {
		return "unknown"
	}
	return powerUpNames[k]
}

// Timed reports whether the power-up has an expiry.
func (k PowerUpKind) Timed() bool {
	return k == PowerRapidFire || k == PowerSuperProjectile
}

// PowerUp drifts toward the player until collected or missed.
type PowerUp struct {
	Position  physics.Vec3
	Direction physics.Vec3
	Kind      PowerUpKind
	destroyed bool
}

// NewPowerUp creates a power-up at pos.
func NewPowerUp(pos, dir physics.Vec3, kind PowerUpKind) *PowerUp {
	return &PowerUp{Position: pos, Direction: dir, Kind: kind}
}

// MarkDestroyed marks the power-up for removal.
func (p *PowerUp) MarkDestroyed() {
	p.destroyed = true
}

// IsDestroyed returns true if the power-up is marked for removal.
func (p *PowerUp) IsDestroyed() bool {
	return p.destroyed
}

// Advance moves the power-up one tick relative to the base enemy speed.
func (p *PowerUp) Advance(baseSpeed float64) {
	p.Position = p.Position.Add(p.Direction.Scale(baseSpeed * config.PowerUpSpeedMul))
}

// Missed reports whether the power-up passed the player.
func (p *PowerUp) Missed() bool {
	return p.Position.Z > config.PlayerZ+5
}
