package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryStoreGetPut(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if _, ok, err := m.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}
	if err := m.Put(ctx, "k", "v", 0); err != nil {
		t.Fatal(err)
	}
	v, ok, err := m.Get(ctx, "k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("Get(k) = %q %v %v", v, ok, err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("key survived Delete")
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore()
	m.Now = func() time.Time { return now }

	if err := m.Put(ctx, "ratelimit:1.2.3.4", "1", time.Minute); err != nil {
		t.Fatal(err)
	}
	now = now.Add(59 * time.Second)
	if _, ok, _ := m.Get(ctx, "ratelimit:1.2.3.4"); !ok {
		t.Fatal("key expired early")
	}
	now = now.Add(time.Second)
	if _, ok, _ := m.Get(ctx, "ratelimit:1.2.3.4"); ok {
		t.Error("key did not expire")
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d after expiry", m.Len())
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	m.Close()
	if _, _, err := m.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close: %v", err)
	}
	if err := m.Put(ctx, "k", "v", 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Put after Close: %v", err)
	}
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemoryStore().Put(ctx, "k", "v", 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Put with canceled context: %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Path() != path {
		t.Errorf("Path = %q, want %q", f.Path(), path)
	}
	if err := f.Put(ctx, "leaderboard", `[{"initials":"AAA","score":10}]`, 0); err != nil {
		t.Fatal(err)
	}
	if err := f.Put(ctx, "short", "x", time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	if err := f.Put(ctx, "gone", "x", 0); err != nil {
		t.Fatal(err)
	}
	if err := f.Delete(ctx, "gone"); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	v, ok, err := reopened.Get(ctx, "leaderboard")
	if err != nil || !ok || v != `[{"initials":"AAA","score":10}]` {
		t.Errorf("reopened Get = %q %v %v", v, ok, err)
	}
	if _, ok, _ := reopened.Get(ctx, "gone"); ok {
		t.Error("deleted key was persisted")
	}
	if _, ok, _ := reopened.Get(ctx, "short"); ok {
		t.Error("expired key was restored")
	}
}

func TestOpenFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.db")
	if err := os.WriteFile(path, []byte{0xc1}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Error("expected an error for a corrupt snapshot")
	}
}

func TestPrefixedIsolatesKeys(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	alice := Prefixed{Store: m, Prefix: "alice:"}
	bob := Prefixed{Store: m, Prefix: "bob:"}

	if err := alice.Put(ctx, "score", "10", 0); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := bob.Get(ctx, "score"); ok {
		t.Error("bob sees alice's key")
	}
	if v, ok, _ := m.Get(ctx, "alice:score"); !ok || v != "10" {
		t.Errorf("underlying key = %q, %v", v, ok)
	}
	if err := alice.Delete(ctx, "score"); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d after delete", m.Len())
	}
}
