package server

import "time"

// ClientHandle represents one connected game session.
type ClientHandle struct {
	ID        int
	Username  string           // Display name for this client
	EventsCh  chan ClientEvent // Events sent to the client
	Connected time.Time

	score int // Current score reported by the client
}

// ClientEvent represents an event sent from the hub to a client.
type ClientEvent struct {
	Type    ClientEventType
	Message string // For announcements
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventAnnouncement ClientEventType = iota
	EventServerShutdown
)

// TopScoreEntry is one row of the live scores of connected players.
type TopScoreEntry struct {
	Username string
	Score    int
	clientID int // Used for deterministic tie-break when scores are equal
}
