// Package server tracks the game sessions hosted by one process. Sessions run
// independently; the hub only relays announcements between them, keeps the
// live scores and coordinates a graceful shutdown.
package server

import (
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// eventBuffer is the per-client event channel capacity.
const eventBuffer = 16

// Lobby is the interface clients use to talk to the hub.
// Decouples the Client from the concrete Hub.
type Lobby interface {
	Register(username string) *ClientHandle
	Unregister(clientID int)
	Announce(fromID int, message string)
	ReportScore(clientID, score int)
	TopScores(n int) []TopScoreEntry
	Players() int
}

// Compile-time check that Hub implements Lobby.
var _ Lobby = (*Hub)(nil)

// Hub keeps the set of connected clients. Safe for concurrent use.
type Hub struct {
	mu           sync.RWMutex
	clients      map[int]*ClientHandle
	nextClientID int
	logger       *log.Logger

	// Reusable buffer for TopScores
	scoreBuf []TopScoreEntry
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		logger:       logger,
	}
}

// Register adds a client and returns its handle.
func (h *Hub) Register(username string) *ClientHandle {
	h.mu.Lock()
	defer h.mu.Unlock()

	handle := &ClientHandle{
		ID:        h.nextClientID,
		Username:  username,
		EventsCh:  make(chan ClientEvent, eventBuffer),
		Connected: time.Now(),
	}
	h.nextClientID++
	h.clients[handle.ID] = handle
	h.logger.Debug("client registered", "id", handle.ID, "user", username, "players", len(h.clients))
	return handle
}

// Unregister removes a client and closes its event channel.
func (h *Hub) Unregister(clientID int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	handle, ok := h.clients[clientID]
	if !ok {
		return
	}
	close(handle.EventsCh)
	delete(h.clients, clientID)
	h.logger.Debug("client unregistered", "id", clientID, "session", time.Since(handle.Connected).Round(time.Second))
}

// Announce sends message to every client except fromID.
// Clients with a full event channel miss the announcement.
func (h *Hub) Announce(fromID int, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, handle := range h.clients {
		if id == fromID {
			continue
		}
		select {
		case handle.EventsCh <- ClientEvent{Type: EventAnnouncement, Message: message}:
		default:
		}
	}
}

// ReportScore records the current score of a client.
func (h *Hub) ReportScore(clientID, score int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if handle, ok := h.clients[clientID]; ok {
		handle.score = score
	}
}

// TopScores returns the n best live scores, highest first. Ties go to the
// client that connected first. The returned slice belongs to the caller.
func (h *Hub) TopScores(n int) []TopScoreEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := h.scoreBuf[:0]
	for _, handle := range h.clients {
		if handle.score <= 0 {
			continue
		}
		entries = append(entries, TopScoreEntry{Username: handle.Username, Score: handle.score, clientID: handle.ID})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].clientID < entries[j].clientID
	})
	h.scoreBuf = entries
	return slices.Clone(entries[:max(min(n, len(entries)), 0)])
}

// Players returns the number of connected clients.
func (h *Hub) Players() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown notifies all connected clients about the shutdown and waits for
// them to disconnect, up to the given timeout.
func (h *Hub) Shutdown(timeout time.Duration) {
	h.mu.RLock()
	for _, handle := range h.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	h.mu.RUnlock()

	// Wait for all clients to disconnect, or timeout
	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			h.logger.Warn("shutdown timeout, clients still connected", "players", h.Players())
			return
		case <-ticker.C:
			if h.Players() == 0 {
				return
			}
		}
	}
}
