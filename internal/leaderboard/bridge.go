package leaderboard

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tomz197/tempest/internal/loop/config"
)

// Cache keeps the last known list between runs.
type Cache interface {
	CachedLeaderboard() ([]Entry, bool)
	CacheLeaderboard([]Entry)
}

// Bridge is the game's view of the leaderboard. It prefers the service and
// falls back to a locally maintained list when the service is unavailable.
// Safe for concurrent use.
type Bridge struct {
	client *Client // nil means offline
	cache  Cache   // optional
	logger *log.Logger

	mu      sync.Mutex
	entries []Entry
}

// NewBridge creates a bridge. client and cache may be nil.
func NewBridge(client *Client, cache Cache, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Default()
	}
	b := &Bridge{client: client, cache: cache, logger: logger}
	if cache != nil {
		if cached, ok := cache.CachedLeaderboard(); ok {
			b.entries = cached
		}
	}
	return b
}

// Load refreshes the list from the service, falling back to the cache and then
// to the default entries.
func (b *Bridge) Load(ctx context.Context) []Entry {
	if b.client != nil {
		entries, err := b.client.List(ctx)
		if err == nil {
			b.set(entries)
			return slices.Clone(entries)
		}
		b.logger.Warn("leaderboard load failed, using local copy", "err", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == 0 {
		if cached, ok := b.cached(); ok && len(cached) > 0 {
			b.entries = cached
		} else {
			b.entries = Defaults()
			b.store(b.entries)
		}
	}
	return slices.Clone(b.entries)
}

// Submit records a score. When the service is unavailable the score is
// inserted into the local list instead. When the service rejects it, the
// result has Success false and the score is left unsubmitted so the player
// can retry.
func (b *Bridge) Submit(ctx context.Context, initials string, score int) Result {
	initials = NormalizeInitials(initials)

	if b.client != nil {
		res, err := b.client.Submit(ctx, initials, score)
		if err == nil {
			b.set(res.Leaderboard)
			res.Leaderboard = slices.Clone(res.Leaderboard)
			return res
		}
		var rejected *RejectionError
		if errors.As(err, &rejected) {
			b.logger.Warn("leaderboard submit rejected", "reason", rejected.Message, "status", rejected.Status, "initials", initials, "score", score)
			return Result{Message: rejected.Message, Leaderboard: b.Entries()}
		}
		b.logger.Warn("leaderboard submit failed, ranking locally", "err", err, "initials", initials, "score", score)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	list, rank := Insert(b.entries, Entry{Initials: initials, Score: score}, config.LeaderboardSize)
	b.entries = list
	b.store(list)
	return Result{Success: true, Rank: rank, Leaderboard: slices.Clone(list), Local: true}
}

// Entries returns a copy of the current list.
func (b *Bridge) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.entries)
}

// Qualifies reports whether score earns a place on the current list.
func (b *Bridge) Qualifies(score int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return score > 0 && Qualifies(b.entries, score, config.LeaderboardSize)
}

// MinimumQualifyingScore is the score to beat on the current list.
func (b *Bridge) MinimumQualifyingScore() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return MinimumQualifyingScore(b.entries, config.LeaderboardSize)
}

func (b *Bridge) set(entries []Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = slices.Clone(entries)
	b.store(b.entries)
}

func (b *Bridge) store(entries []Entry) {
	if b.cache != nil {
		b.cache.CacheLeaderboard(slices.Clone(entries))
	}
}

func (b *Bridge) cached() ([]Entry, bool) {
	if b.cache == nil {
		return nil, false
	}
	return b.cache.CachedLeaderboard()
}
