package object

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/physics"
)

// explosionPool reuses Explosion objects and their particle slices.
var explosionPool = sync.Pool{
	New: func() any {
		return &Explosion{Particles: make([]Particle, 0, config.ExplosionParticles)}
	},
}

// Particle is one fragment of an explosion, relative to the explosion center.
type Particle struct {
	Local    physics.Vec3
	Velocity physics.Vec3 // Per tick
	Life     time.Duration
}

// Explosion is a cosmetic burst. It has no gameplay effect.
type Explosion struct {
	Position  physics.Vec3
	Color     uint32
	Scale     float64
	Particles []Particle
}

// Explosion colors.
const (
	ColorRegular uint32 = 0x00ff00
	ColorSpecial uint32 = 0xff0000
	ColorSlow    uint32 = 0x0000ff
	ColorBomber  uint32 = 0xff8800
	ColorShield  uint32 = 0x0088ff
	ColorPlayer  uint32 = 0xff0000
)

// KindColor returns the explosion color for an enemy kind.
func KindColor(k EnemyKind) uint32 {
	switch k {
	case EnemySpecial:
		return ColorSpecial
	case EnemySlow:
		return ColorSlow
	case EnemyBomber:
		return ColorBomber
	default:
		return ColorRegular
	}
}

// NewExplosion creates a burst of particles at pos using rng for the spread.
func NewExplosion(pos physics.Vec3, color uint32, rng *rand.Rand) *Explosion {
	e := explosionPool.Get().(*Explosion)
	e.Position = pos
	e.Color = color
	e.Scale = 1
	e.Particles = e.Particles[:0]

	for i := 0; i < config.ExplosionParticles; i++ {
		theta := rng.Float64() * 2 * math.Pi
		phi := rng.Float64() * math.Pi
		radius := rng.Float64() * 0.5

		e.Particles = append(e.Particles, Particle{
			Local: physics.Vec3{
				X: radius * math.Sin(phi) * math.Cos(theta),
				Y: radius * math.Sin(phi) * math.Sin(theta),
				Z: radius * math.Cos(phi),
			},
			Velocity: physics.Vec3{
				X: (rng.Float64() - 0.5) * 0.2,
				Y: (rng.Float64() - 0.5) * 0.2,
				Z: (rng.Float64() - 0.5) * 0.2,
			},
			Life: config.ExplosionLifetime,
		})
	}
	return e
}

// Update advances all particles and reports whether every particle has faded.
func (e *Explosion) Update(dt time.Duration) (done bool) {
	done = true
	for i := range e.Particles {
		p := &e.Particles[i]
		p.Local = p.Local.Add(p.Velocity)
		p.Life -= dt
		if p.Life > 0 {
			done = false
		}
	}
	return done
}

// Opacity returns the remaining life of a particle as a fraction in [0, 1].
func (p Particle) Opacity() float64 {
	if p.Life <= 0 {
		return 0
	}
	return float64(p.Life) / float64(config.ExplosionLifetime)
}

// Release returns the explosion to the pool.
// Must not be used after release.
func (e *Explosion) Release() {
	explosionPool.Put(e)
}
