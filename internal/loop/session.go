package loop

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/object"
	"github.com/tomz197/tempest/internal/physics"
	"github.com/tomz197/tempest/internal/track"
)

// SessionOptions configures a new Session.
type SessionOptions struct {
	Rand      *rand.Rand  // Defaults to a time-seeded source
	Store     Persistence // Optional
	Ranker    Ranker      // Optional
	HighScore int         // Restored high score
	RotationX float64     // Restored tunnel rotation
	RotationY float64
	Rotation  bool // Restored rotation-enabled flag
}

// Session is the single mutable game state. All mutation happens through its
// methods on one goroutine.
type Session struct {
	State    GameState
	Settings Settings
	Player   Player
	Track    *track.Track
	Objects  *object.Store

	// InstructionsOpen blocks pause toggling while the overlay is shown.
	InstructionsOpen bool
	// RotationEnabled allows rotation nudges during play.
	RotationEnabled bool
	// Eligible is set at game over when the final score earns a leaderboard entry.
	Eligible bool
	// Countdown is the value currently shown during the countdown.
	Countdown int

	pending *Settings

	tick           int
	lastLaneChange int
	laneChangeRate int

	spawner         *Spawner
	baseEnemySpeed  float64
	enemySpeed      float64
	enemiesPerLevel int
	multiplier      float64

	countdownStart  time.Time
	levelCompleteAt time.Time
	pausedAt        time.Time
	lastTick        time.Time

	events []Event
	rng    *rand.Rand
	store  Persistence
	ranker Ranker
}

// NewSession creates a session in the menu state.
func NewSession(opts SessionOptions) *Session {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Session{
		State:           StateMenu,
		Settings:        DefaultSettings(),
		Track:           track.New(rng),
		Objects:         object.NewStore(),
		RotationEnabled: opts.Rotation,
		rng:             rng,
		store:           opts.Store,
		ranker:          opts.Ranker,
	}
	s.Track.SetRotation(opts.RotationX, opts.RotationY)
	s.Player.HighScore = opts.HighScore
	s.spawner = NewSpawner(0, rng)
	return s
}

// Start begins a new game with settings. While paused it resumes instead.
func (s *Session) Start(settings Settings, now time.Time) {
	switch s.State {
	case StatePaused:
		s.TogglePause(now)
		return
	case StateMenu, StateGameOver:
	default:
		return
	}

	s.reset(settings)
	s.State = StateCountdown
	s.countdownStart = now
	s.Countdown = int(config.CountdownDuration / time.Second)
	s.emit(Event{Type: EventCountdown, Value: s.Countdown})
}

// Replay starts a new game from the game over screen with the same settings.
func (s *Session) Replay(now time.Time) {
	if s.State != StateGameOver {
		return
	}
	s.Start(s.Settings, now)
}

// Restart discards the finished game and returns to the menu.
func (s *Session) Restart() {
	if s.State != StateGameOver {
		return
	}
	s.reset(s.Settings)
	s.State = StateMenu
}

// reset clears every player value, entity and deadline.
func (s *Session) reset(settings Settings) {
	s.Settings = settings
	s.pending = nil
	s.Eligible = false
	s.Objects.Clear()

	high := s.Player.HighScore
	s.Player = Player{
		Lives:     settings.startingLives(),
		HighScore: high,
		Level:     1,
	}

	preset := settings.Difficulty.Preset()
	s.baseEnemySpeed = preset.EnemySpeed
	s.enemySpeed = preset.EnemySpeed
	s.enemiesPerLevel = preset.EnemiesPerLevel
	s.multiplier = preset.Multiplier
	s.spawner.Interval = preset.SpawnInterval
	s.spawner.Timer = 0
	s.Player.EnemiesRequired = preset.EnemiesPerLevel

	s.laneChangeRate = settings.Speed.LaneChangeRate()
	s.tick = 0
	s.lastLaneChange = -s.laneChangeRate

	s.Track.SetShape(settings.Shape, 0)
	s.Player.Lane = s.Track.CenterLane()

	s.levelCompleteAt = time.Time{}
	s.pausedAt = time.Time{}
	s.lastTick = time.Time{}
}

// SetPendingSettings records settings chosen while paused. They are applied on resume.
func (s *Session) SetPendingSettings(settings Settings) {
	if s.State != StatePaused {
		return
	}
	s.pending = &settings
}

// TogglePause switches between playing and paused.
func (s *Session) TogglePause(now time.Time) {
	if s.InstructionsOpen {
		return
	}
	switch s.State {
	case StatePlaying:
		s.State = StatePaused
		s.pausedAt = now
	case StatePaused:
		paused := now.Sub(s.pausedAt)
		if !s.Player.rapidFireUntil.IsZero() {
			s.Player.rapidFireUntil = s.Player.rapidFireUntil.Add(paused)
		}
		if !s.Player.superUntil.IsZero() {
			s.Player.superUntil = s.Player.superUntil.Add(paused)
		}
		if s.pending != nil {
			s.applySettings(*s.pending)
			s.pending = nil
		}
		s.State = StatePlaying
		s.lastTick = now
	}
}

// applySettings re-applies menu settings mid-game.
// Difficulty only resets the preset values when it actually changed so level
// progression is not lost by resuming.
func (s *Session) applySettings(settings Settings) {
	if settings.Difficulty != s.Settings.Difficulty {
		preset := settings.Difficulty.Preset()
		s.baseEnemySpeed = preset.EnemySpeed
		s.enemySpeed = preset.EnemySpeed
		s.spawner.Interval = preset.SpawnInterval
		s.enemiesPerLevel = preset.EnemiesPerLevel
		s.multiplier = preset.Multiplier
	}
	s.laneChangeRate = settings.Speed.LaneChangeRate()
	if settings.Shape != s.Settings.Shape {
		s.Track.SetShape(settings.Shape, 0)
		s.Player.Lane = s.Track.CenterLane()
		s.Objects.Clear()
	}
	settings.Lives = s.Settings.Lives
	s.Settings = settings
}

// Tick advances the session to now.
func (s *Session) Tick(now time.Time, in TickInput) {
	var dt time.Duration
	if !s.lastTick.IsZero() {
		dt = now.Sub(s.lastTick)
	}
	s.lastTick = now

	switch s.State {
	case StateCountdown:
		s.updateCountdown(now)
	case StatePlaying:
		s.updatePlaying(now, dt, in)
	case StateLevelComplete:
		if !now.Before(s.levelCompleteAt) {
			s.nextLevel()
		}
	}
}

// updateCountdown uses wall-clock time so the countdown is frame-rate independent.
func (s *Session) updateCountdown(now time.Time) {
	elapsed := now.Sub(s.countdownStart)
	remaining := int(math.Ceil((config.CountdownDuration - elapsed).Seconds()))
	if remaining <= 0 {
		s.Countdown = 0
		s.State = StatePlaying
		s.emit(Event{Type: EventMessage, Message: "GO!"})
		return
	}
	if remaining != s.Countdown {
		s.Countdown = remaining
		s.emit(Event{Type: EventCountdown, Value: remaining})
	}
}

// completeLevel moves to the level complete screen. The next level starts
// automatically after a fixed delay.
func (s *Session) completeLevel(now time.Time) {
	if s.State != StatePlaying {
		return
	}
	s.persistRotation()
	s.State = StateLevelComplete
	s.AddScore(s.Player.Level * config.LevelBonus)
	s.clearTimedPowerUps()
	s.levelCompleteAt = now.Add(config.LevelCompleteDelay)
	s.emit(Event{Type: EventLevelComplete, Value: s.Player.Level})
	s.emit(Event{Type: EventMessage, Message: fmt.Sprintf("LEVEL %d COMPLETE!", s.Player.Level)})
}

func (s *Session) nextLevel() {
	p := &s.Player
	p.Level++
	p.Lives++
	s.baseEnemySpeed += config.LevelSpeedIncrement
	s.enemySpeed = s.baseEnemySpeed
	s.spawner.Interval = max(s.spawner.Interval-config.SpawnIntervalStep, config.MinSpawnInterval)
	p.EnemiesRequired = RequiredKills(s.enemiesPerLevel, p.Level, s.multiplier)
	p.EnemiesKilled = 0
	s.spawner.Timer = 0

	s.persistRotation()
	s.Track.SetShape(track.ShapeCustom, p.Level+config.LanesPerLevelOffset)
	p.Lane = s.Track.CenterLane()
	s.Objects.Clear()
	s.lastLaneChange = s.tick - s.laneChangeRate
	s.levelCompleteAt = time.Time{}
	s.State = StatePlaying
}

// RequiredKills returns the kill quota for level.
func RequiredKills(perLevel, level int, multiplier float64) int {
	n := int(math.Floor(float64(perLevel) + float64(level)*5*multiplier))
	return min(n, config.MaxEnemiesRequired)
}

// loseLife removes a life and ends the game when none are left.
func (s *Session) loseLife() {
	if s.State != StatePlaying {
		return
	}
	s.Player.Lives--
	s.Objects.Explosions = append(s.Objects.Explosions,
		object.NewExplosion(s.PlayerPosition(), object.ColorPlayer, s.rng))
	s.emit(Event{Type: EventLifeLost, Value: s.Player.Lives})
	if s.Player.Lives <= 0 {
		s.endGame()
	}
}

func (s *Session) endGame() {
	s.persistRotation()
	s.State = StateGameOver
	s.Eligible = s.ranker != nil && s.ranker.Qualifies(s.Player.Score)
	s.clearTimedPowerUps()
	s.Objects.Clear()
	s.emit(Event{Type: EventGameOver, Value: s.Player.Score})
}

// PlayerPosition returns the player's world position.
func (s *Session) PlayerPosition() physics.Vec3 {
	return s.Track.PositionForLane(s.Player.Lane, config.PlayerZ)
}

// ToggleRotation flips whether rotation nudges are accepted.
func (s *Session) ToggleRotation() {
	s.RotationEnabled = !s.RotationEnabled
	s.persistRotation()
}

// NudgeRotation tilts the tunnel when rotation is enabled.
func (s *Session) NudgeRotation(dx, dy float64) {
	if !s.RotationEnabled || (dx == 0 && dy == 0) {
		return
	}
	s.Track.Nudge(dx, dy)
	if s.store != nil {
		s.store.SaveRotationDebounced(s.Track.RotationX, s.Track.RotationY, s.RotationEnabled)
	}
}

func (s *Session) persistRotation() {
	if s.store != nil {
		s.store.SaveRotation(s.Track.RotationX, s.Track.RotationY, s.RotationEnabled)
	}
}

func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}

// DrainEvents returns the events raised since the last call.
func (s *Session) DrainEvents() []Event {
	ev := s.events
	s.events = nil
	return ev
}

// EnemySpeed returns the current base enemy speed including acceleration.
func (s *Session) EnemySpeed() float64 {
	return s.enemySpeed
}

// SpawnInterval returns the ticks between spawns for the current level.
func (s *Session) SpawnInterval() int {
	return s.spawner.Interval
}
