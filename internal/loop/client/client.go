package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/tempest/internal/draw"
	"github.com/tomz197/tempest/internal/input"
	"github.com/tomz197/tempest/internal/leaderboard"
	"github.com/tomz197/tempest/internal/loop"
	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/loop/server"
	"github.com/tomz197/tempest/internal/persist"
	"github.com/tomz197/tempest/internal/physics"
)

// Prefs stores the values a client persists between runs.
type Prefs interface {
	loop.Persistence
	SaveSoundEnabled(enabled bool)
	Flush()
}

// bridgeResult carries the outcome of a leaderboard call back to the loop.
type bridgeResult struct {
	entries []leaderboard.Entry
	result  *leaderboard.Result // nil for loads
	score   int
}

// Client handles rendering and input for a single connection and drives its
// own Session.
type Client struct {
	lobby        server.Lobby
	handle       *server.ClientHandle
	session      *loop.Session
	bridge       *leaderboard.Bridge
	prefs        Prefs
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	camera       *draw.Camera
	stars        []draw.Point
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger

	ctx     context.Context
	results chan bridgeResult
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Lobby        server.Lobby        // Defaults to a private hub
	Bridge       *leaderboard.Bridge // Defaults to an offline bridge
	Prefs        Prefs               // Optional
	Saved        persist.State       // Restored local state
	Settings     loop.Settings       // Menu defaults
	Rand         *rand.Rand
	Logger       *log.Logger
}

// NewClient creates a new client reading input from r and rendering to w.
func NewClient(r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	lobby := opts.Lobby
	if lobby == nil {
		lobby = server.NewHub(logger)
	}
	bridge := opts.Bridge
	if bridge == nil {
		bridge = leaderboard.NewBridge(nil, nil, logger)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Settings == (loop.Settings{}) {
		opts.Settings = loop.DefaultSettings()
	}

	sessOpts := loop.SessionOptions{
		Rand:      rng,
		Ranker:    bridge,
		HighScore: opts.Saved.HighScore,
		RotationX: opts.Saved.RotationX,
		RotationY: opts.Saved.RotationY,
		Rotation:  opts.Saved.RotationEnabled,
	}
	if opts.Prefs != nil {
		sessOpts.Store = opts.Prefs
	}

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	c := &Client{
		lobby:        lobby,
		handle:       lobby.Register(opts.Username),
		session:      loop.NewSession(sessOpts),
		bridge:       bridge,
		prefs:        opts.Prefs,
		state:        NewClientState(opts.Settings, opts.Saved.SoundEnabled),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		camera:       draw.NewCamera(physics.Vec3{Y: config.CameraY, Z: config.CameraZ}, config.CameraFOV, config.ViewWidth, config.ViewHeight),
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
		logger:       logger,
		ctx:          context.Background(),
		results:      make(chan bridgeResult, 4),
	}
	c.stars = make([]draw.Point, 48)
	for i := range c.stars {
		c.stars[i] = draw.Point{X: rng.Float64() * config.ViewWidth, Y: rng.Float64() * config.ViewHeight}
	}
	c.state.entries = bridge.Entries()
	return c
}

// Run starts the client loop. Blocks until the client quits, the context is
// cancelled or the hub closes the client's event channel.
func (c *Client) Run(ctx context.Context) error {
	c.ctx = ctx
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	defer c.lobby.Unregister(c.handle.ID)
	if c.prefs != nil {
		defer c.prefs.Flush()
	}

	c.loadLeaderboard()

	lastTime := time.Now()
	for c.state.Running && ctx.Err() == nil {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.processInput(frameStart)
		c.processServerEvents(frameStart)
		c.processResults(frameStart)
		c.updateScreen()

		c.session.Tick(frameStart, loop.TickInput{
			Move:       c.state.Input.Move,
			Accelerate: c.state.Input.Accelerate,
		})
		c.handleEvents(frameStart, c.session.DrainEvents())
		c.lobby.ReportScore(c.handle.ID, c.session.Player.Score)
		c.updateShutdownState()

		if err := c.drawFrame(frameStart); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.chunkWriter.WriteString("\033[0m")
	c.chunkWriter.Flush()
	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads input and tracks inactivity.
func (c *Client) processInput(now time.Time) {
	in := c.inputStream.Read(now)
	c.state.Input = in

	if in.Pressed {
		c.lastInput = now
		c.state.isInactive = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if now.Sub(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	c.handleInput(in, now)
}

// handleInput applies one frame of controls to the session.
func (c *Client) handleInput(in input.Controls, now time.Time) {
	s := c.session
	if in.Interrupt {
		c.state.Running = false
		return
	}
	if c.state.shuttingDown {
		if in.Quit {
			c.state.Running = false
		}
		return
	}
	if c.typingInitials() {
		c.updateInitials(in)
		return
	}
	if in.Quit {
		c.state.Running = false
		return
	}
	if in.ToggleSound {
		c.state.soundEnabled = !c.state.soundEnabled
		if c.prefs != nil {
			c.prefs.SaveSoundEnabled(c.state.soundEnabled)
		}
	}
	if in.ToggleRotation {
		s.ToggleRotation()
	}
	s.NudgeRotation(in.RotateX, in.RotateY)

	if in.Help && (s.State == loop.StateMenu || s.State == loop.StatePaused) {
		s.InstructionsOpen = !s.InstructionsOpen
		return
	}
	if s.InstructionsOpen {
		if in.Escape || in.Enter {
			s.InstructionsOpen = false
		}
		return
	}

	switch s.State {
	case loop.StateMenu:
		c.state.menu.update(in, fieldCount)
		if in.Enter || in.Fire {
			s.Start(c.state.menu.settings(), now)
		}
	case loop.StatePlaying:
		if in.Pause || in.Escape {
			s.TogglePause(now)
			return
		}
		if in.Fire {
			s.Fire()
		}
		if in.Bomb {
			s.Bomb(now)
		}
	case loop.StatePaused:
		if in.Pause || in.Escape || in.Enter {
			s.TogglePause(now)
			return
		}
		if c.state.menu.update(in, pausedFields) {
			s.SetPendingSettings(c.state.menu.settings())
		}
	case loop.StateGameOver:
		switch {
		case in.Enter || in.Fire:
			s.Replay(now)
		case in.Escape:
			s.Restart()
		}
	}
}

// typingInitials reports whether the game over screen is collecting initials.
func (c *Client) typingInitials() bool {
	return c.session.State == loop.StateGameOver && c.session.Eligible &&
		!c.state.submitted && !c.state.submitting
}

// updateInitials edits the initials buffer and submits on enter.
func (c *Client) updateInitials(in input.Controls) {
	st := c.state
	for _, r := range in.Runes {
		if len(st.initials) < config.MaxInitials {
			st.initials = append(st.initials, r)
		}
	}
	if in.Backspace && len(st.initials) > 0 {
		st.initials = st.initials[:len(st.initials)-1]
	}
	switch {
	case in.Escape:
		st.submitted = true
	case in.Enter && len(st.initials) > 0:
		c.submitScore(string(st.initials), c.session.Player.Score)
	}
}

// loadLeaderboard refreshes the list in the background.
func (c *Client) loadLeaderboard() {
	ctx := c.ctx
	go func() {
		entries := c.bridge.Load(ctx)
		select {
		case c.results <- bridgeResult{entries: entries}:
		case <-ctx.Done():
		}
	}()
}

// submitScore posts a score in the background.
func (c *Client) submitScore(initials string, score int) {
	c.state.submitting = true
	ctx := c.ctx
	go func() {
		res := c.bridge.Submit(ctx, initials, score)
		select {
		case c.results <- bridgeResult{entries: res.Leaderboard, result: &res, score: score}:
		case <-ctx.Done():
		}
	}()
}

// processResults applies finished leaderboard calls without blocking.
func (c *Client) processResults(now time.Time) {
	for {
		select {
		case r := <-c.results:
			if len(r.entries) > 0 {
				c.state.entries = r.entries
			}
			if r.result == nil {
				continue
			}
			c.state.submitting = false
			if !r.result.Success {
				// Rejected: keep the initials so the player can retry or skip
				msg := r.result.Message
				if msg == "" {
					msg = "Score rejected"
				}
				c.state.showMessage(msg, now, config.LevelCompleteDelay)
				continue
			}
			c.state.submitted = true
			c.state.result = r.result
			if rank := r.result.Rank; rank != nil {
				c.state.showMessage(fmt.Sprintf("YOU PLACED #%d!", *rank+1), now, config.LevelCompleteDelay)
				if !r.result.Local {
					c.lobby.Announce(c.handle.ID, fmt.Sprintf("%s just took #%d on the leaderboard with %d",
						string(c.state.initials), *rank+1, r.score))
				}
			}
		default:
			return
		}
	}
}

// processServerEvents handles events from the hub.
func (c *Client) processServerEvents(now time.Time) {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Hub closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventAnnouncement:
				c.state.announcement = event.Message
				c.state.announceUntil = now.Add(time.Duration(config.AnnouncementSeconds * float64(time.Second)))
			case server.EventServerShutdown:
				if c.session.State == loop.StatePlaying {
					c.session.TogglePause(now)
				}
				c.state.shuttingDown = true
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// handleEvents turns simulation events into messages and terminal bells.
func (c *Client) handleEvents(now time.Time, events []loop.Event) {
	messageFor := time.Duration(config.MessageDisplaySeconds * float64(time.Second))
	for _, ev := range events {
		switch ev.Type {
		case loop.EventMessage:
			c.state.showMessage(ev.Message, now, messageFor)
		case loop.EventPowerUp:
			if msg, ok := powerUpMessages[ev.Message]; ok {
				c.state.showMessage(msg, now, messageFor)
			}
		case loop.EventDeflect:
			c.state.showMessage("SHIELD DEFLECTED!", now, messageFor)
		case loop.EventLifeLost:
			c.bell()
		case loop.EventGameOver:
			c.bell()
			c.state.resetEntry()
			c.state.entries = c.bridge.Entries()
			c.logger.Info("game over", "user", c.username, "score", ev.Value, "level", c.session.Player.Level)
		}
	}
}

var powerUpMessages = map[string]string{
	"rapidFire":       "RAPID FIRE!",
	"extraLife":       "EXTRA LIFE!",
	"shield":          "SHIELD UP!",
	"superProjectile": "SUPER SHOTS!",
}

// bell rings the terminal bell when sound is on.
func (c *Client) bell() {
	if c.state.soundEnabled {
		c.chunkWriter.WriteString("\a")
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = max(min(termWidth, config.MaxTermWidth), 1)
	renderHeight = max(min(termHeight, config.MaxTermHeight), 1)
	offsetCol = max((termWidth-renderWidth)/2, 0)
	offsetRow = max((termHeight-renderHeight)/2, 0)
	return
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	if !c.state.shuttingDown {
		return
	}
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
