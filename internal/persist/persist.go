// Package persist keeps the player's local state (tunnel rotation, high score,
// sound flag and the last known leaderboard) in a kv.Store.
package persist

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/tempest/internal/kv"
	"github.com/tomz197/tempest/internal/leaderboard"
	"github.com/tomz197/tempest/internal/loop"
	"github.com/tomz197/tempest/internal/loop/config"
)

// Storage keys.
const (
	KeyRotationX       = "tempest3d_rotationX"
	KeyRotationY       = "tempest3d_rotationY"
	KeyRotationEnabled = "tempest3d_rotationEnabled"
	KeyHighScore       = "tempest3d_highScore"
	KeySoundEnabled    = "tempest3d_soundEnabled"
	KeyLeaderboard     = "tempest3d_leaderboard"
)

// opTimeout bounds a single store operation.
const opTimeout = 2 * time.Second

// State is everything loaded at startup.
type State struct {
	RotationX       float64
	RotationY       float64
	RotationEnabled bool
	HighScore       int
	SoundEnabled    bool
	Leaderboard     []leaderboard.Entry
}

// Defaults is the state used for absent or unreadable keys.
func Defaults() State {
	return State{SoundEnabled: true}
}

var (
	_ loop.Persistence  = (*Store)(nil)
	_ leaderboard.Cache = (*Store)(nil)
)

// Store writes local state through to a kv.Store. Failures are logged and
// otherwise ignored, the game keeps running with in-memory values.
type Store struct {
	kv     kv.Store
	logger *log.Logger

	// Debounce is the delay before a debounced rotation write lands.
	Debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *rotation
}

type rotation struct {
	x, y    float64
	enabled bool
}

// New creates a Store on top of store.
func New(store kv.Store, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{kv: store, logger: logger, Debounce: config.RotationSaveDebounce}
}

// Load reads every key, falling back to the default per key.
func (s *Store) Load(ctx context.Context) State {
	st := Defaults()
	if v, ok := s.get(ctx, KeyRotationX); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			st.RotationX = f
		}
	}
	if v, ok := s.get(ctx, KeyRotationY); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			st.RotationY = f
		}
	}
	if v, ok := s.get(ctx, KeyRotationEnabled); ok {
		st.RotationEnabled = v == "true"
	}
	if v, ok := s.get(ctx, KeyHighScore); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			st.HighScore = n
		}
	}
	if v, ok := s.get(ctx, KeySoundEnabled); ok {
		st.SoundEnabled = v != "false"
	}
	if entries, ok := s.CachedLeaderboard(); ok {
		st.Leaderboard = entries
	}
	return st
}

// SaveHighScore stores the high score.
func (s *Store) SaveHighScore(score int) {
	s.put(KeyHighScore, strconv.Itoa(score))
}

// SaveSoundEnabled stores the sound flag.
func (s *Store) SaveSoundEnabled(enabled bool) {
	s.put(KeySoundEnabled, strconv.FormatBool(enabled))
}

// SaveRotation stores the rotation immediately, dropping any pending
// debounced write.
func (s *Store) SaveRotation(x, y float64, enabled bool) {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
	s.writeRotation(rotation{x: x, y: y, enabled: enabled})
}

// SaveRotationDebounced schedules a rotation write. Calls within the debounce
// window replace each other; only the last one is written.
func (s *Store) SaveRotationDebounced(x, y float64, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &rotation{x: x, y: y, enabled: enabled}
	if s.timer != nil {
		s.timer.Reset(s.Debounce)
		return
	}
	s.timer = time.AfterFunc(s.Debounce, s.flushPending)
}

// Flush writes a pending debounced rotation now.
func (s *Store) Flush() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
}

// stopLocked cancels the timer and writes whatever is pending.
func (s *Store) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.pending != nil {
		r := *s.pending
		s.pending = nil
		s.writeRotation(r)
	}
}

func (s *Store) flushPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = nil
	if s.pending != nil {
		r := *s.pending
		s.pending = nil
		s.writeRotation(r)
	}
}

func (s *Store) writeRotation(r rotation) {
	s.put(KeyRotationX, strconv.FormatFloat(r.x, 'g', -1, 64))
	s.put(KeyRotationY, strconv.FormatFloat(r.y, 'g', -1, 64))
	s.put(KeyRotationEnabled, strconv.FormatBool(r.enabled))
}

// CachedLeaderboard returns the last cached leaderboard.
func (s *Store) CachedLeaderboard() ([]leaderboard.Entry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	v, ok := s.get(ctx, KeyLeaderboard)
	if !ok {
		return nil, false
	}
	var entries []leaderboard.Entry
	if err := json.Unmarshal([]byte(v), &entries); err != nil {
		s.logger.Warn("discarding cached leaderboard", "err", err)
		return nil, false
	}
	return entries, true
}

// CacheLeaderboard stores entries as JSON.
func (s *Store) CacheLeaderboard(entries []leaderboard.Entry) {
	data, err := json.Marshal(entries)
	if err != nil {
		s.logger.Error("encode leaderboard", "err", err)
		return
	}
	s.put(KeyLeaderboard, string(data))
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("read local state", "key", key, "err", err)
		return "", false
	}
	return v, ok
}

func (s *Store) put(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.kv.Put(ctx, key, value, 0); err != nil {
		s.logger.Warn("write local state", "key", key, "err", err)
	}
}
