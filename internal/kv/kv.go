// Package kv is a small string key-value store with optional per-key expiry.
//
// It backs both the leaderboard service (list + rate-limit counters) and the
// client's persisted local state.
package kv

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv: store closed")

// Store is the key-value contract.
// A missing or expired key is reported with ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put stores value under key. A ttl <= 0 never expires.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Compile-time checks.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)

type entry struct {
	Value   string `msgpack:"v"`
	Expires int64  `msgpack:"e,omitempty"` // Unix nanoseconds, 0 for never
}

func (e entry) expired(now time.Time) bool {
	return e.Expires != 0 && now.UnixNano() >= e.Expires
}

// MemoryStore keeps everything in a map guarded by a mutex.
type MemoryStore struct {
	// Now returns the current time. Tests replace it to drive expiry.
	Now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get returns the value for key.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if e.expired(m.Now()) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.Value, true, nil
}

// Put stores value under key.
func (m *MemoryStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.putLocked(key, value, ttl)
	return nil
}

func (m *MemoryStore) putLocked(key, value string, ttl time.Duration) {
	e := entry{Value: value}
	if ttl > 0 {
		e.Expires = m.Now().Add(ttl).UnixNano()
	}
	m.entries[key] = e
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.entries, key)
	return nil
}

// Close makes every further operation fail with ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Len returns the number of live keys.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	n := 0
	for _, e := range m.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Prefixed scopes a Store to keys starting with prefix. SSH sessions use it
// to keep each user's local state apart in one shared file.
type Prefixed struct {
	Store  Store
	Prefix string
}

var _ Store = Prefixed{}

func (p Prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.Store.Get(ctx, p.Prefix+key)
}

func (p Prefixed) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return p.Store.Put(ctx, p.Prefix+key, value, ttl)
}

func (p Prefixed) Delete(ctx context.Context, key string) error {
	return p.Store.Delete(ctx, p.Prefix+key)
}
