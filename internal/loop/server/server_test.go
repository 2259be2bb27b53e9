package server

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func newTestHub() *Hub {
	return NewHub(log.New(io.Discard))
}

func TestRegisterUnregister(t *testing.T) {
	h := newTestHub()
	a := h.Register("alice")
	b := h.Register("bob")
	if a.ID == b.ID {
		t.Fatal("duplicate client id")
	}
	if h.Players() != 2 {
		t.Errorf("players = %d", h.Players())
	}

	h.Unregister(a.ID)
	if _, ok := <-a.EventsCh; ok {
		t.Error("event channel not closed")
	}
	h.Unregister(a.ID) // Unknown ids are ignored
	if h.Players() != 1 {
		t.Errorf("players = %d", h.Players())
	}
}

func TestAnnounceSkipsSender(t *testing.T) {
	h := newTestHub()
	a := h.Register("alice")
	b := h.Register("bob")

	h.Announce(a.ID, "ALI scored 4000")

	select {
	case ev := <-b.EventsCh:
		if ev.Type != EventAnnouncement || ev.Message != "ALI scored 4000" {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Fatal("bob got nothing")
	}
	select {
	case ev := <-a.EventsCh:
		t.Errorf("sender received %+v", ev)
	default:
	}
}

func TestAnnounceDropsWhenFull(t *testing.T) {
	h := newTestHub()
	h.Register("slow")
	for i := 0; i < eventBuffer*2; i++ {
		h.Announce(0, "spam") // Must not block
	}
}

func TestTopScores(t *testing.T) {
	h := newTestHub()
	a := h.Register("a")
	b := h.Register("b")
	c := h.Register("c")
	h.Register("idle")

	h.ReportScore(a.ID, 500)
	h.ReportScore(b.ID, 900)
	h.ReportScore(c.ID, 500)
	h.ReportScore(99, 10000) // Unknown

	top := h.TopScores(5)
	want := []string{"b", "a", "c"}
	if len(top) != len(want) {
		t.Fatalf("top = %+v", top)
	}
	for i, name := range want {
		if top[i].Username != name {
			t.Errorf("top[%d] = %s, want %s", i, top[i].Username, name)
		}
	}
	if got := h.TopScores(1); len(got) != 1 || got[0].Score != 900 {
		t.Errorf("TopScores(1) = %+v", got)
	}
}

func TestTopScoresOwnedByCaller(t *testing.T) {
	h := newTestHub()
	a := h.Register("alice")
	b := h.Register("bob")
	h.ReportScore(a.ID, 500)

	first := h.TopScores(3)
	h.ReportScore(b.ID, 900)
	h.TopScores(3)
	if len(first) != 1 || first[0].Username != "alice" || first[0].Score != 500 {
		t.Errorf("earlier result changed to %+v", first)
	}
}

func TestTopScoresConcurrent(t *testing.T) {
	h := newTestHub()
	handles := []*ClientHandle{h.Register("a"), h.Register("b"), h.Register("c")}

	var wg sync.WaitGroup
	for i, handle := range handles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 1; n <= 200; n++ {
				h.ReportScore(handle.ID, n*(i+1))
				for _, e := range h.TopScores(3) {
					if e.Score <= 0 {
						t.Errorf("non-positive score %+v", e)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestShutdownNotifiesAndWaits(t *testing.T) {
	h := newTestHub()
	c := h.Register("player")

	go func() {
		for ev := range c.EventsCh {
			if ev.Type == EventServerShutdown {
				h.Unregister(c.ID)
			}
		}
	}()

	start := time.Now()
	h.Shutdown(5 * time.Second)
	if time.Since(start) > 2*time.Second {
		t.Error("shutdown did not return after the client left")
	}
	if h.Players() != 0 {
		t.Error("client still registered")
	}
}

func TestShutdownTimeout(t *testing.T) {
	h := newTestHub()
	h.Register("stuck")
	start := time.Now()
	h.Shutdown(50 * time.Millisecond)
	if time.Since(start) > time.Second {
		t.Error("shutdown ignored its timeout")
	}
}
