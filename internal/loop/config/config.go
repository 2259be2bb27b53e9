// Package config centralizes all tunable game parameters.
package config

import (
	"math"
	"time"
)

// Tunnel geometry.
const (
	WebDepth  = 160.0
	WebRadius = 9.0

	PlayerZ     = WebDepth / 2
	EnemyStartZ = -WebDepth/2 + 1
	EnemyEndZ   = WebDepth/2 - 2
)

// Projectiles
const (
	ProjectileSpeed   = 0.6
	ProjectileSpawnDZ = -1.5 // Offset from the player along z
	MaxShots          = 10
	RapidFireInterval = 12 // Ticks between automatic shots
)

// Enemies
const (
	SlowChance      = 0.05 // Cumulative spawn probabilities
	BomberChance    = 0.10
	SpecialChance   = 0.20
	AccelerateBoost = 10.0
	PowerUpSpeedMul = 1.5
)

// Scoring
const (
	ScoreRegular = 100
	ScoreSpecial = 200
	ScoreSlow    = 150
	ScoreBomber  = 300

	MilestonePoints = 3000
	LevelBonus      = 500 // Multiplied by the completed level
)

// Resources
const (
	MaxBombs   = 30
	MaxShields = 5
)

// Power-ups
const (
	PowerUpChance   = 0.15
	PowerUpDuration = 10 * time.Second
)

// Player
const (
	InitialLives = 3
	MinLives     = 3
	MaxLives     = 1000
)

// Game flow
const (
	CountdownDuration     = 3 * time.Second
	LevelCompleteDelay    = 2 * time.Second
	RotationSaveDebounce  = 500 * time.Millisecond
	MaxEnemiesRequired    = 100
	MinSpawnInterval      = 20
	SpawnIntervalStep     = 5
	LevelSpeedIncrement   = 0.001
	LanesPerLevelOffset   = 4
	MessageDisplaySeconds = 1.5
)

// Explosions
const (
	ExplosionParticles = 15
	ExplosionLifetime  = 500 * time.Millisecond
)

// Rotation input
const (
	RotationNudge = 0.05 // Radians per nudge key press
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS

	CameraY     = 0.6
	CameraZ     = 95.0
	CameraFOV   = math.Pi / 2 // Vertical field of view
	TunnelRings = 8           // Depth rings drawn between the far end and the rim

	ViewWidth     = 120 // Logical viewport width
	ViewHeight    = 80  // Logical viewport height (in sub-pixels, so 40 terminal rows)
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Inactivity and shutdown
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
	ShutdownDisplaySeconds   = 5.0
	AnnouncementSeconds      = 4.0
)

// Leaderboard
const (
	LeaderboardSize     = 10
	MaxInitials         = 3
	MaxReasonableScore  = 100000
	RateLimitMax        = 5
	RateLimitWindow     = 60 * time.Second
	LeaderboardTimeout  = 5 * time.Second
	ShutdownGracePeriod = 15 * time.Second
)

// Difficulty names a preset chosen at game start.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyPreset holds the per-session values derived from a Difficulty.
type DifficultyPreset struct {
	EnemySpeed      float64
	SpawnInterval   int // Ticks
	EnemiesPerLevel int
	Multiplier      float64 // Scales the kill quota on level-up
}

// Preset returns the preset for d. Unknown values get the legacy defaults.
func (d Difficulty) Preset() DifficultyPreset {
	switch d {
	case DifficultyEasy:
		return DifficultyPreset{EnemySpeed: 0.1, SpawnInterval: 80, EnemiesPerLevel: 15, Multiplier: 1.0}
	case DifficultyMedium:
		return DifficultyPreset{EnemySpeed: 0.2, SpawnInterval: 50, EnemiesPerLevel: 20, Multiplier: 1.5}
	case DifficultyHard:
		return DifficultyPreset{EnemySpeed: 0.3, SpawnInterval: 30, EnemiesPerLevel: 25, Multiplier: 2.0}
	default:
		return DifficultyPreset{EnemySpeed: 0.08, SpawnInterval: 50, EnemiesPerLevel: 20, Multiplier: 1.5}
	}
}

// PlayerSpeed names the lane-change rate setting.
type PlayerSpeed string

const (
	SpeedSlow   PlayerSpeed = "slow"
	SpeedNormal PlayerSpeed = "normal"
	SpeedFast   PlayerSpeed = "fast"
)

// LaneChangeRate returns the ticks required between lane changes.
func (s PlayerSpeed) LaneChangeRate() int {
	switch s {
	case SpeedSlow:
		return 10
	case SpeedFast:
		return 3
	default:
		return 6
	}
}
