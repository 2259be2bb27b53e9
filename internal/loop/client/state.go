package client

import (
	"time"

	"github.com/tomz197/tempest/internal/input"
	"github.com/tomz197/tempest/internal/leaderboard"
	"github.com/tomz197/tempest/internal/loop"
)

// ClientState holds per-connection presentation state (menu, initials entry,
// messages). The simulation itself lives in the loop.Session.
type ClientState struct {
	Input   input.Controls
	Running bool // Client loop running

	menu menuState

	// Leaderboard
	entries    []leaderboard.Entry
	initials   []rune
	submitting bool
	submitted  bool // Submitted or skipped
	result     *leaderboard.Result

	message       string
	messageUntil  time.Time
	announcement  string
	announceUntil time.Time

	soundEnabled  bool
	delta         time.Duration // Frame delta time
	shuttingDown  bool
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown
	isInactive    bool    // Whether the client is in inactive warning state

	// Previous frame, for full clears on screen transitions
	prevGameState loop.GameState
	prevOverlay   bool
	wasInactive   bool
	wasShutdown   bool
}

// NewClientState creates a new initialized client state.
func NewClientState(settings loop.Settings, soundEnabled bool) *ClientState {
	return &ClientState{
		Running:       true,
		menu:          newMenuState(settings),
		soundEnabled:  soundEnabled,
		prevGameState: -1,
	}
}

// showMessage displays msg for d.
func (st *ClientState) showMessage(msg string, now time.Time, d time.Duration) {
	st.message = msg
	st.messageUntil = now.Add(d)
}

// resetEntry prepares initials entry for a finished game.
func (st *ClientState) resetEntry() {
	st.initials = st.initials[:0]
	st.submitting = false
	st.submitted = false
	st.result = nil
}
