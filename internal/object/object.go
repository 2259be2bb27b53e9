// Package object holds the simulation entities that live inside the tunnel.
//
// Entities are plain data. Movement and collision rules live in the loop package;
// presentation layers read these stores and never mutate them.
package object

// Destructible is implemented by entities that can be marked for removal.
type Destructible interface {
	// MarkDestroyed marks the entity for removal at the next compaction.
	MarkDestroyed()
	// IsDestroyed returns true if the entity is marked for removal.
	IsDestroyed() bool
}

// Compile-time checks.
var (
	_ Destructible = (*Projectile)(nil)
	_ Destructible = (*Enemy)(nil)
	_ Destructible = (*PowerUp)(nil)
)

// Store holds one typed collection per entity kind.
type Store struct {
	Projectiles []*Projectile
	Enemies     []*Enemy
	PowerUps    []*PowerUp
	Explosions  []*Explosion
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Clear removes every entity.
func (s *Store) Clear() {
	for _, e := range s.Explosions {
		e.Release()
	}
	s.Projectiles = s.Projectiles[:0]
	s.Enemies = s.Enemies[:0]
	s.PowerUps = s.PowerUps[:0]
	s.Explosions = s.Explosions[:0]
}

// LiveEnemies counts enemies that are not marked for removal.
func (s *Store) LiveEnemies() int {
	n := 0
	for _, e := range s.Enemies {
		if !e.IsDestroyed() {
			n++
		}
	}
	return n
}

// Compact drops every entity marked for removal, reusing the backing arrays.
func (s *Store) Compact() {
	s.Projectiles = compact(s.Projectiles)
	s.Enemies = compact(s.Enemies)
	s.PowerUps = compact(s.PowerUps)
}

func compact[T Destructible](items []T) []T {
	kept := items[:0]
	for _, it := range items {
		if !it.IsDestroyed() {
			kept = append(kept, it)
		}
	}
	// Drop references held past the new length
	var zero T
	for i := len(kept); i < len(items); i++ {
		items[i] = zero
	}
	return kept
}
