package server

import (
	"context"
	"encoding/json"

	"github.com/tomz197/tempest/internal/loop/config"
)

const rateLimitPrefix = "ratelimit:"

// rateWindow is the stored counter for one client.
type rateWindow struct {
	Count     int   `json:"count"`
	Timestamp int64 `json:"timestamp"` // Window start, Unix milliseconds
}

// allow applies a fixed-window limit of RateLimitMax submissions per
// RateLimitWindow for id. Store failures are logged and the request allowed.
func (h *Handler) allow(ctx context.Context, id string) bool {
	key := rateLimitPrefix + id
	now := h.Now().UnixMilli()
	window := config.RateLimitWindow.Milliseconds()

	next := rateWindow{Count: 1, Timestamp: now}

	data, ok, err := h.store.Get(ctx, key)
	if err != nil {
		h.logger.Error("rate limit read", "client", id, "err", err)
		return true
	}
	if ok {
		var cur rateWindow
		if err := json.Unmarshal([]byte(data), &cur); err != nil {
			h.logger.Error("rate limit decode", "client", id, "err", err)
			return true
		}
		inWindow := now-cur.Timestamp < window
		if inWindow && cur.Count >= config.RateLimitMax {
			h.logger.Warn("rate limited", "client", id, "count", cur.Count)
			return false
		}
		if inWindow {
			next = rateWindow{Count: cur.Count + 1, Timestamp: cur.Timestamp}
		}
	}

	encoded, _ := json.Marshal(next)
	if err := h.store.Put(ctx, key, string(encoded), config.RateLimitWindow); err != nil {
		h.logger.Error("rate limit write", "client", id, "err", err)
	}
	return true
}
