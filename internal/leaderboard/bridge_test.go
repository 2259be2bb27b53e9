package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type memCache struct {
	entries []Entry
	ok      bool
	writes  int
}

func (c *memCache) CachedLeaderboard() ([]Entry, bool) { return c.entries, c.ok }

func (c *memCache) CacheLeaderboard(e []Entry) {
	c.entries, c.ok = e, true
	c.writes++
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func TestClientSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "slow down"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Submit(context.Background(), "AAA", 10)
	if !errors.Is(err, ErrRejected) {
		t.Errorf("err = %v, want ErrRejected", err)
	}
	var rejected *RejectionError
	if !errors.As(err, &rejected) || rejected.Message != "slow down" || rejected.Status != http.StatusTooManyRequests {
		t.Errorf("rejection = %+v", rejected)
	}
}

func TestClientForPlayerSetsForwardedFor(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("X-Forwarded-For"))
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	base := NewClient(srv.URL, time.Second)
	player := base.ForPlayer("203.0.113.7")
	ctx := context.Background()
	if _, err := player.List(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := base.List(ctx); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "203.0.113.7" || got[1] != "" {
		t.Errorf("X-Forwarded-For = %q", got)
	}
	if player.HTTP != base.HTTP {
		t.Error("ForPlayer should share the http.Client")
	}
	if (*Client)(nil).ForPlayer("x") != nil {
		t.Error("nil client must stay nil")
	}
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).List(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestClientSubmitSendsEntry(t *testing.T) {
	var got Entry
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("request %s %q", r.Method, r.Header.Get("Content-Type"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		rank := 0
		json.NewEncoder(w).Encode(Result{Success: true, Rank: &rank, Leaderboard: []Entry{got}})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second).Submit(context.Background(), "XYZ", 1234)
	if err != nil {
		t.Fatal(err)
	}
	if got != (Entry{Initials: "XYZ", Score: 1234}) {
		t.Errorf("server saw %+v", got)
	}
	if res.Rank == nil || *res.Rank != 0 || res.Local {
		t.Errorf("result = %+v", res)
	}
}

func TestBridgeFallsBackLocally(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name   string
		client *Client
	}{
		{"server error", NewClient(failing.URL, time.Second)},
		{"unreachable", NewClient(closedURL, time.Second)},
		{"offline", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &memCache{}
			b := NewBridge(tt.client, cache, quietLogger())
			ctx := context.Background()

			if entries := b.Load(ctx); len(entries) != 5 {
				t.Fatalf("Load = %v, want defaults", entries)
			}
			res := b.Submit(ctx, "new", 3500)
			if !res.Success || !res.Local {
				t.Fatalf("result = %+v", res)
			}
			if res.Rank == nil || *res.Rank != 2 {
				t.Errorf("rank = %v, want 2", res.Rank)
			}
			if res.Leaderboard[2] != (Entry{Initials: "NEW", Score: 3500}) {
				t.Errorf("entry = %+v", res.Leaderboard[2])
			}
			if !sort.SliceIsSorted(res.Leaderboard, func(i, j int) bool {
				return res.Leaderboard[i].Score > res.Leaderboard[j].Score
			}) {
				t.Errorf("list not sorted: %v", res.Leaderboard)
			}
			if len(cache.entries) != 6 {
				t.Errorf("cache holds %d entries, want 6", len(cache.entries))
			}
		})
	}
}

func TestBridgeRejectionLeavesScoreUnsubmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "slow down"})
	}))
	defer srv.Close()

	cache := &memCache{entries: Defaults(), ok: true}
	b := NewBridge(NewClient(srv.URL, time.Second), cache, quietLogger())
	res := b.Submit(context.Background(), "new", 3500)
	if res.Success || res.Local || res.Rank != nil {
		t.Fatalf("result = %+v", res)
	}
	if res.Message != "slow down" {
		t.Errorf("message = %q", res.Message)
	}
	if len(b.Entries()) != 5 || cache.writes != 0 {
		t.Errorf("list changed: %v (cache writes %d)", b.Entries(), cache.writes)
	}
}

func TestBridgeLocalListStaysTopTen(t *testing.T) {
	b := NewBridge(nil, nil, quietLogger())
	b.Load(context.Background())
	for i := 1; i <= 20; i++ {
		res := b.Submit(context.Background(), "AAA", i*1000)
		if len(res.Leaderboard) > 10 {
			t.Fatalf("list grew to %d", len(res.Leaderboard))
		}
	}
	entries := b.Entries()
	if len(entries) != 10 || entries[0].Score != 20000 || entries[9].Score != 11000 {
		t.Errorf("entries = %v", entries)
	}
	if b.Qualifies(11000) || !b.Qualifies(11001) {
		t.Error("qualification threshold wrong")
	}
	if b.MinimumQualifyingScore() != 11000 {
		t.Errorf("minimum = %d", b.MinimumQualifyingScore())
	}
}

func TestBridgeLoadPrefersService(t *testing.T) {
	remote := []Entry{{Initials: "TOP", Score: 9999}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(remote)
	}))
	defer srv.Close()

	cache := &memCache{entries: []Entry{{Initials: "OLD", Score: 1}}, ok: true}
	b := NewBridge(NewClient(srv.URL, time.Second), cache, quietLogger())
	if got := b.Entries(); len(got) != 1 || got[0].Initials != "OLD" {
		t.Errorf("bridge not seeded from cache: %v", got)
	}

	got := b.Load(context.Background())
	if len(got) != 1 || got[0] != remote[0] {
		t.Errorf("Load = %v", got)
	}
	if cache.entries[0] != remote[0] {
		t.Error("service list not cached")
	}
}

func TestBridgeLoadUsesCache(t *testing.T) {
	cache := &memCache{entries: []Entry{{Initials: "OLD", Score: 42}}, ok: true}
	b := NewBridge(nil, cache, quietLogger())
	got := b.Load(context.Background())
	if len(got) != 1 || got[0].Score != 42 {
		t.Errorf("Load = %v", got)
	}
	if cache.writes != 0 {
		t.Errorf("cache rewritten %d times", cache.writes)
	}
}

func TestBridgeQualifiesRequiresPositiveScore(t *testing.T) {
	b := NewBridge(nil, nil, quietLogger())
	if b.Qualifies(0) {
		t.Error("zero score qualified")
	}
	if !b.Qualifies(1) {
		t.Error("empty list should accept any positive score")
	}
}
