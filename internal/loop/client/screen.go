package client

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/tempest/internal/draw"
	"github.com/tomz197/tempest/internal/leaderboard"
	"github.com/tomz197/tempest/internal/loop"
	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/object"
	"github.com/tomz197/tempest/internal/physics"
	"github.com/tomz197/tempest/internal/track"
)

// drawFrame draws the current frame.
func (c *Client) drawFrame(now time.Time) error {
	st := c.state
	s := c.session

	// On screen transitions, do a full terminal clear so UI elements from the
	// previous screen don't persist.
	if s.State != st.prevGameState || s.InstructionsOpen != st.prevOverlay ||
		st.isInactive != st.wasInactive || st.shuttingDown != st.wasShutdown {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		st.prevGameState = s.State
		st.prevOverlay = s.InstructionsOpen
		st.wasInactive = st.isInactive
		st.wasShutdown = st.shuttingDown
	}

	c.canvas.Clear()
	c.drawStars()
	if s.State != loop.StateMenu && s.State != loop.StateGameOver {
		c.drawTunnel()
		c.drawEntities(now)
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawUI(now)

	return c.chunkWriter.Flush()
}

func (c *Client) drawStars() {
	for _, p := range c.stars {
		c.canvas.SetFloat(p.X, p.Y, draw.ColorStar)
	}
}

// rimPoint returns the rotated tunnel wall point at angle a and depth z.
func rimPoint(t *track.Track, a, radius, z float64) physics.Vec3 {
	p := physics.Vec3{X: radius * math.Cos(a), Y: radius * math.Sin(a), Z: z}
	return physics.RotateXY(p, t.RotationX, t.RotationY)
}

// line3 projects and draws a world-space segment.
func (c *Client) line3(a, b physics.Vec3, color uint32) {
	pa, _, okA := c.camera.Project(a)
	pb, _, okB := c.camera.Project(b)
	if okA && okB {
		c.canvas.DrawLine(pa, pb, color)
	}
}

// drawTunnel draws the lane edges and depth rings. Lane k is centered on
// angle k*step, so its edges sit half a step to either side and the
// polygon is widened to keep lane centers at the track radius.
func (c *Client) drawTunnel() {
	t := c.session.Track
	n := t.LaneCount
	step := t.LaneAngleStep()
	radius := t.Radius / math.Cos(step/2)
	near, far := float64(config.PlayerZ), float64(config.EnemyStartZ)
	lane := c.session.Player.Lane

	for i := 0; i <= config.TunnelRings; i++ {
		f := float64(i) / config.TunnelRings
		z := far + (near-far)*f
		color := draw.Dim(draw.ColorTunnel, 0.25+0.75*f)
		if i == config.TunnelRings {
			color = draw.ColorTunnelRim
		}
		for k := 0; k < n; k++ {
			a0 := (float64(k) - 0.5) * step
			a1 := (float64(k) + 0.5) * step
			c.line3(rimPoint(t, a0, radius, z), rimPoint(t, a1, radius, z), color)
		}
	}

	for k := 0; k < n; k++ {
		color := draw.ColorTunnel
		if k == lane || k == t.WrapLane(lane+1) {
			color = draw.ColorLaneActive
		}
		a := (float64(k) - 0.5) * step
		c.line3(rimPoint(t, a, radius, far), rimPoint(t, a, radius, near), color)
	}

	// Active lane rim
	a0 := (float64(lane) - 0.5) * step
	a1 := (float64(lane) + 0.5) * step
	c.line3(rimPoint(t, a0, radius, near), rimPoint(t, a1, radius, near), draw.ColorLaneActive)
}

// drawEntities draws every live entity and the player.
func (c *Client) drawEntities(now time.Time) {
	objs := c.session.Objects

	for _, e := range objs.Explosions {
		for _, p := range e.Particles {
			if p.Life <= 0 {
				continue
			}
			world := e.Position.Add(p.Local.Scale(e.Scale))
			if pt, _, ok := c.camera.Project(world); ok {
				c.canvas.SetFloat(pt.X, pt.Y, draw.Dim(e.Color, p.Opacity()))
			}
		}
	}

	for _, e := range objs.Enemies {
		if e.IsDestroyed() {
			continue
		}
		pt, scale, ok := c.camera.Project(e.Position)
		if !ok {
			continue
		}
		r := max(scale*0.7, 0.8)
		color := object.KindColor(e.Kind)
		c.canvas.DrawDiamond(pt, r, color)
		if e.Kind == object.EnemyBomber {
			c.canvas.DrawLine(draw.Point{X: pt.X - r*1.5, Y: pt.Y}, draw.Point{X: pt.X + r*1.5, Y: pt.Y}, color)
		}
	}

	blink := now.UnixMilli()/150%2 == 0
	for _, p := range objs.PowerUps {
		if p.IsDestroyed() {
			continue
		}
		if pt, scale, ok := c.camera.Project(p.Position); ok {
			color := draw.ColorPowerUp
			if blink {
				color = draw.Dim(color, 0.5)
			}
			c.canvas.DrawDiamond(pt, max(scale*0.6, 0.8), color)
		}
	}

	for _, p := range objs.Projectiles {
		if p.IsDestroyed() {
			continue
		}
		color := draw.ColorProjectile
		if p.Super {
			color = draw.ColorSuperShot
		}
		c.line3(p.Position, p.Position.Add(p.Direction.Scale(1.5)), color)
	}

	if c.session.State == loop.StateCountdown || c.session.Player.Lives > 0 {
		pos := c.session.PlayerPosition()
		if pt, scale, ok := c.camera.Project(pos); ok {
			r := max(scale*0.9, 1.2)
			if c.session.Player.Shields > 0 {
				c.canvas.DrawPolygon(diamond(c.canvas, pt, r*1.6), false, object.ColorShield)
			}
			c.canvas.DrawDiamond(pt, r, draw.ColorPlayer)
		}
	}
}

func diamond(cv *draw.Canvas, p draw.Point, r float64) []draw.Point {
	pts := cv.BorrowPoints(4)
	pts[0] = draw.Point{X: p.X, Y: p.Y - r}
	pts[1] = draw.Point{X: p.X + r, Y: p.Y}
	pts[2] = draw.Point{X: p.X, Y: p.Y + r}
	pts[3] = draw.Point{X: p.X - r, Y: p.Y}
	return pts
}

// text writes s at a 1-based position and marks the covered cells so the
// canvas erases them once the text is gone.
func (c *Client) text(col, row int, s string) {
	c.chunkWriter.WriteAt(col, row, s)
	for i, line := range strings.Split(s, "\n") {
		c.canvas.MarkTextDirty(col, row+i, draw.Width(line))
	}
}

// centered writes s horizontally centered on row.
func (c *Client) centered(row int, s string) {
	widest := 0
	for _, l := range strings.Split(s, "\n") {
		widest = max(widest, draw.Width(l))
	}
	c.text(max((c.canvas.TerminalWidth()-widest)/2+1, 1), row, s)
}

// drawUI draws the text overlay for the current screen.
func (c *Client) drawUI(now time.Time) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerY := termHeight / 2

	if c.state.shuttingDown {
		c.drawShutdownScreen(centerY)
		return
	}
	if c.state.isInactive {
		c.drawInactivityScreen(now, centerY)
		return
	}
	if c.session.InstructionsOpen {
		c.drawInstructions(centerY)
		return
	}

	switch c.session.State {
	case loop.StateMenu:
		c.drawStartScreen(now, centerY)
	case loop.StateCountdown:
		c.drawHUD(now, termWidth, termHeight)
		if c.session.Countdown > 0 {
			c.centered(centerY, draw.PanelStyle.Render(draw.AccentStyle.Render(fmt.Sprintf("  %d  ", c.session.Countdown))))
		}
	case loop.StatePlaying, loop.StateLevelComplete:
		c.drawHUD(now, termWidth, termHeight)
	case loop.StatePaused:
		c.drawHUD(now, termWidth, termHeight)
		c.drawPauseScreen(centerY)
	case loop.StateGameOver:
		c.drawGameOverScreen(now, centerY)
	}

	if now.Before(c.state.messageUntil) {
		c.centered(4, draw.AccentStyle.Render(fmt.Sprintf("%-24s", c.state.message)))
	}
	if now.Before(c.state.announceUntil) && termHeight > 3 {
		c.centered(termHeight-2, draw.DimStyle.Render(c.state.announcement))
	}
}

// drawHUD draws the in-game heads-up display.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawHUD(now time.Time, termWidth, termHeight int) {
	p := c.session.Player

	left := fmt.Sprintf("SCORE %-8d HIGH %-8d LEVEL %-3d KILLS %d/%-4d",
		p.Score, p.HighScore, p.Level, p.EnemiesKilled, p.EnemiesRequired)
	c.text(2, 1, draw.HUDStyle.Render(left))

	right := fmt.Sprintf("LIVES %-4d BOMBS %-3d SHIELDS %d", p.Lives, p.Bombs, p.Shields)
	c.text(max(termWidth-draw.Width(right), 1), 1, draw.HUDStyle.Render(right))

	var status []string
	if p.RapidFire {
		status = append(status, fmt.Sprintf("RAPID %4.1fs", c.session.PowerUpRemaining(object.PowerRapidFire, now).Seconds()))
	}
	if p.SuperProjectile {
		status = append(status, fmt.Sprintf("SUPER %4.1fs", c.session.PowerUpRemaining(object.PowerSuperProjectile, now).Seconds()))
	}
	c.text(2, termHeight, draw.AccentStyle.Render(fmt.Sprintf("%-26s", strings.Join(status, "  "))))

	flags := "ROT off"
	if c.session.RotationEnabled {
		flags = "ROT on "
	}
	if c.state.soundEnabled {
		flags += "  SND on "
	} else {
		flags += "  SND off"
	}
	if players := c.lobby.Players(); players > 1 {
		flags = fmt.Sprintf("ONLINE %-4d %s", players, flags)
	}
	c.text(max(termWidth-draw.Width(flags), 1), termHeight, draw.DimStyle.Render(flags))

	c.drawLiveScores(termWidth)
}

// drawLiveScores lists the best scores of connected players below the HUD.
func (c *Client) drawLiveScores(termWidth int) {
	if c.lobby.Players() < 2 {
		return
	}
	for i, e := range c.lobby.TopScores(3) {
		line := fmt.Sprintf("%d. %-12.12s %7d", i+1, e.Username, e.Score)
		c.text(max(termWidth-len(line), 1), 3+i, draw.DimStyle.Render(line))
	}
}

var titleArt = []string{
	` _____ ___ __  __ ___ ___ ___ _____ `,
	`|_   _| __|  \/  | _ \ __/ __|_   _|`,
	`  | | | _|| |\/| |  _/ _|\__ \ | |  `,
	`  |_| |___|_|  |_|_| |___|___/ |_|  `,
}

var gameOverArt = []string{
	`   ___   _   __  __ ___    _____   _____ ___  `,
	`  / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \ `,
	` | (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   / `,
	`  \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\ `,
}

// drawStartScreen draws the title screen with settings and the leaderboard.
func (c *Client) drawStartScreen(now time.Time, centerY int) {
	row := max(centerY-12, 1)
	c.centered(row, draw.TitleStyle.Render(strings.Join(titleArt, "\n")))
	row += len(titleArt) + 1
	c.centered(row, draw.DimStyle.Render("~ Tunnel shooter over SSH ~"))
	row += 2

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		c.state.menu.render(fieldCount),
		"  ",
		leaderboardPanel(c.state.entries, nil),
	)
	c.centered(row, panels)
	row += lipgloss.Height(panels) + 1

	c.centered(row, fmt.Sprintf("High score: %d", c.session.Player.HighScore))
	row += 2
	c.centered(row, draw.DimStyle.Render("UP/DOWN select  LEFT/RIGHT change  H help  Q quit"))
	row += 2

	// Blinking start prompt
	if now.UnixMilli()/600%2 == 0 {
		c.centered(row, ">>  Press SPACE to Start  <<")
	} else {
		c.centered(row, strings.Repeat(" ", 28))
	}
}

// leaderboardPanel renders the top list, highlighting rank when set.
func leaderboardPanel(entries []leaderboard.Entry, rank *int) string {
	var b strings.Builder
	b.WriteString(draw.TitleStyle.Render("TOP SCORES"))
	for i := 0; i < config.LeaderboardSize; i++ {
		line := fmt.Sprintf("%2d. ---  %7s", i+1, "-")
		if i < len(entries) {
			line = fmt.Sprintf("%2d. %-3s  %7d", i+1, entries[i].Initials, entries[i].Score)
		}
		b.WriteByte('\n')
		if rank != nil && *rank == i {
			b.WriteString(draw.AccentStyle.Render(line))
		} else {
			b.WriteString(line)
		}
	}
	return draw.PanelStyle.Render(b.String())
}

// drawPauseScreen draws the pause panel with the settings that apply on resume.
func (c *Client) drawPauseScreen(centerY int) {
	panel := lipgloss.JoinVertical(lipgloss.Center,
		draw.TitleStyle.Render("PAUSED"),
		"",
		c.state.menu.render(pausedFields),
		"",
		draw.DimStyle.Render("P resume  H help  R rotation  Q quit"),
	)
	c.centered(max(centerY-lipgloss.Height(panel)/2, 2), panel)
}

// drawInstructions draws the help overlay.
func (c *Client) drawInstructions(centerY int) {
	lines := []string{
		draw.TitleStyle.Render("HOW TO PLAY"),
		"",
		"LEFT / RIGHT  move between lanes",
		"UP (hold)     pull enemies in faster",
		"SPACE         fire down your lane",
		"B             bomb every enemy",
		"P             pause",
		"R             toggle tunnel rotation",
		"I J K L       tilt the tunnel",
		"M             sound on/off",
		"",
		"Destroy the kill quota to clear a level.",
		"Enemies reaching the rim cost a life",
		"unless a shield deflects them.",
		"",
		draw.DimStyle.Render("ESC or ENTER to close"),
	}
	panel := draw.PanelStyle.Render(strings.Join(lines, "\n"))
	c.centered(max(centerY-lipgloss.Height(panel)/2, 1), panel)
}

// drawGameOverScreen draws the final score, initials entry and the leaderboard.
func (c *Client) drawGameOverScreen(now time.Time, centerY int) {
	st := c.state
	row := max(centerY-14, 1)
	c.centered(row, draw.WarnStyle.Render(strings.Join(gameOverArt, "\n")))
	row += len(gameOverArt) + 1

	p := c.session.Player
	c.centered(row, fmt.Sprintf("Score: %d   Level: %d", p.Score, p.Level))
	row += 2

	var rank *int
	switch {
	case c.typingInitials():
		entry := string(st.initials) + strings.Repeat("_", config.MaxInitials-len(st.initials))
		c.centered(row, draw.AccentStyle.Render("NEW HIGH SCORE! Enter your initials: "+entry))
		c.centered(row+1, draw.DimStyle.Render("ENTER submit  ESC skip"))
	case st.submitting:
		c.centered(row, "Submitting score...")
	case st.result != nil:
		rank = st.result.Rank
		msg := "Your score did not make the list"
		if rank != nil {
			msg = fmt.Sprintf("You placed #%d", *rank+1)
		}
		if st.result.Local {
			msg += " (offline, saved locally)"
		}
		c.centered(row, msg)
	case c.session.Eligible:
		c.centered(row, draw.DimStyle.Render("Score not submitted"))
	default:
		c.centered(row, fmt.Sprintf("Beat %d to enter the leaderboard", c.bridge.MinimumQualifyingScore()))
	}
	row += 3

	board := leaderboardPanel(st.entries, rank)
	c.centered(row, board)
	row += lipgloss.Height(board) + 1

	if !c.typingInitials() && !st.submitting && now.UnixMilli()/600%2 == 0 {
		c.centered(row, ">>  SPACE play again  ESC menu  Q quit  <<")
	} else {
		c.centered(row, strings.Repeat(" ", 42))
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(now time.Time, centerY int) {
	c.centered(centerY-2, draw.WarnStyle.Render("INACTIVITY WARNING"))
	c.centered(centerY, fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-now.Sub(c.lastInput).Seconds()),
	))
	c.centered(centerY+2, "Press any key to continue")
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerY int) {
	c.centered(centerY-3, draw.WarnStyle.Render("SERVER SHUTTING DOWN"))
	c.centered(centerY-1, "The server is restarting for maintenance.")
	c.centered(centerY, "Please reconnect in a moment.")
	remaining := int(c.state.shutdownTimer) + 1
	c.centered(centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.centered(centerY+4, "Press Q to disconnect now")
}
