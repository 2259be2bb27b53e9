// Package loop implements the tunnel simulation: the game state machine,
// the spawner, movement and collision, power-ups and scoring.
//
// A Session is owned by a single goroutine. Every method that depends on time
// takes the current wall-clock time explicitly, so timers are deadlines checked
// on each tick rather than callbacks.
package loop

import (
	"time"

	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/track"
)

// GameState represents the current game phase.
type GameState int

const (
	StateMenu          GameState = iota // Title screen and settings
	StateCountdown                      // 3, 2, 1, GO!
	StatePlaying                        // Active gameplay
	StatePaused                         // Simulation suspended
	StateLevelComplete                  // Waiting to advance to the next level
	StateGameOver                       // Final score shown, leaderboard entry
)

var stateNames = [...]string{"menu", "countdown", "playing", "paused", "levelcomplete", "gameover"}

func (s GameState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Settings are chosen in the menu and applied at game start or on resume.
type Settings struct {
	Difficulty config.Difficulty
	Speed      config.PlayerSpeed
	Shape      track.Shape
	Lives      int
}

// DefaultSettings returns the menu defaults.
func DefaultSettings() Settings {
	return Settings{
		Difficulty: config.DifficultyMedium,
		Speed:      config.SpeedNormal,
		Shape:      track.ShapeCircle,
		Lives:      config.InitialLives,
	}
}

// ParseSettings builds Settings from their string forms, as read from the
// environment. Empty or unknown values keep the default.
func ParseSettings(difficulty, speed, web string, lives int) Settings {
	st := DefaultSettings()
	switch d := config.Difficulty(difficulty); d {
	case config.DifficultyEasy, config.DifficultyMedium, config.DifficultyHard:
		st.Difficulty = d
	}
	switch sp := config.PlayerSpeed(speed); sp {
	case config.SpeedSlow, config.SpeedNormal, config.SpeedFast:
		st.Speed = sp
	}
	if shape, err := track.ParseShape(web); err == nil && shape != track.ShapeCustom {
		st.Shape = shape
	}
	if lives >= config.MinLives && lives <= config.MaxLives {
		st.Lives = lives
	}
	return st
}

// startingLives validates the lives setting, falling back to the default.
func (st Settings) startingLives() int {
	if st.Lives < config.MinLives || st.Lives > config.MaxLives {
		return config.InitialLives
	}
	return st.Lives
}

// TickInput is the held-input state sampled once per frame.
type TickInput struct {
	Move       int  // -1, 0 or +1 lanes
	Accelerate bool // Enemies move ten times faster while held
}

// Player holds per-session player state.
type Player struct {
	Lane            int
	Lives           int
	Bombs           int
	Shields         int
	Score           int
	HighScore       int
	Level           int
	EnemiesKilled   int
	EnemiesRequired int

	RapidFire       bool
	SuperProjectile bool
	rapidFireUntil  time.Time
	superUntil      time.Time

	LastBombMilestone int
}

// TimedPowerUpActive reports whether any timed power-up is running.
func (p *Player) TimedPowerUpActive() bool {
	return p.RapidFire || p.SuperProjectile
}

// EventType identifies a presentation-facing event raised by the simulation.
type EventType int

const (
	EventFire EventType = iota
	EventExplode
	EventPowerUp
	EventBomb
	EventDeflect
	EventLifeLost
	EventCountdown
	EventMessage
	EventLevelComplete
	EventGameOver
)

// Event is raised during a tick and drained by the presentation layer.
type Event struct {
	Type    EventType
	Message string // For message events
	Value   int    // Countdown number, level, etc.
}

// Persistence receives values the session wants stored.
type Persistence interface {
	SaveHighScore(score int)
	SaveRotation(x, y float64, enabled bool)
	SaveRotationDebounced(x, y float64, enabled bool)
}

// Ranker decides whether a final score earns a leaderboard entry.
type Ranker interface {
	Qualifies(score int) bool
}
