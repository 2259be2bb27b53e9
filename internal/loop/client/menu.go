package client

import (
	"fmt"
	"strings"

	"github.com/tomz197/tempest/internal/draw"
	"github.com/tomz197/tempest/internal/input"
	"github.com/tomz197/tempest/internal/loop"
	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/track"
)

// menuField is a row of the settings menu.
type menuField int

const (
	fieldDifficulty menuField = iota
	fieldSpeed
	fieldShape
	fieldLives
	fieldCount
)

// Fields editable while paused. Lives only apply to a new game.
const pausedFields = fieldLives

var (
	difficulties = []config.Difficulty{config.DifficultyEasy, config.DifficultyMedium, config.DifficultyHard}
	speeds       = []config.PlayerSpeed{config.SpeedSlow, config.SpeedNormal, config.SpeedFast}
	shapes       = []track.Shape{track.ShapeCircle, track.ShapePentagon, track.ShapeHexagon, track.ShapeOctagon, track.ShapeRandom}
)

// menuState is the settings cursor plus the selected values.
type menuState struct {
	cursor     menuField
	difficulty int
	speed      int
	shape      int
	lives      int
	typing     bool // Digits replace the lives value instead of appending
}

func newMenuState(s loop.Settings) menuState {
	m := menuState{
		difficulty: max(indexOf(difficulties, s.Difficulty), 0),
		speed:      max(indexOf(speeds, s.Speed), 0),
		shape:      max(indexOf(shapes, s.Shape), 0),
		lives:      s.Lives,
	}
	if m.lives < config.MinLives || m.lives > config.MaxLives {
		m.lives = config.InitialLives
	}
	return m
}

func indexOf[T comparable](items []T, v T) int {
	for i, it := range items {
		if it == v {
			return i
		}
	}
	return -1
}

// settings returns the selected values.
func (m menuState) settings() loop.Settings {
	return loop.Settings{
		Difficulty: difficulties[m.difficulty],
		Speed:      speeds[m.speed],
		Shape:      shapes[m.shape],
		Lives:      clampLives(m.lives),
	}
}

// update applies navigation presses to the first fields rows and reports
// whether a value changed.
func (m *menuState) update(in input.Controls, fields menuField) bool {
	if m.cursor >= fields {
		m.cursor = 0
	}
	before := *m
	if in.Up || in.Down {
		m.typing = false
		m.lives = clampLives(m.lives)
	}
	if in.Up {
		m.cursor = (m.cursor + fields - 1) % fields
	}
	if in.Down {
		m.cursor = (m.cursor + 1) % fields
	}

	delta := 0
	if in.Right {
		delta++
	}
	if in.Left {
		delta--
	}

	switch m.cursor {
	case fieldDifficulty:
		m.difficulty = cycle(m.difficulty, delta, len(difficulties))
	case fieldSpeed:
		m.speed = cycle(m.speed, delta, len(speeds))
	case fieldShape:
		m.shape = cycle(m.shape, delta, len(shapes))
	case fieldLives:
		if delta != 0 {
			m.typing = false
			m.lives = clampLives(m.lives + delta)
		}
		if in.Number >= 0 {
			if !m.typing {
				m.lives, m.typing = 0, true
			}
			if next := m.lives*10 + in.Number; next <= config.MaxLives {
				m.lives = next
			}
		}
		if in.Backspace {
			m.lives, m.typing = m.lives/10, true
		}
	}
	return m.difficulty != before.difficulty || m.speed != before.speed ||
		m.shape != before.shape || m.lives != before.lives
}

func clampLives(n int) int {
	return min(max(n, config.MinLives), config.MaxLives)
}

func cycle(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}

// render returns the settings rows with the cursor highlighted.
func (m menuState) render(fields menuField) string {
	rows := []struct {
		label string
		value string
	}{
		{"Difficulty", string(difficulties[m.difficulty])},
		{"Speed", string(speeds[m.speed])},
		{"Web", string(shapes[m.shape])},
		{"Lives", fmt.Sprint(m.lives)},
	}

	var b strings.Builder
	b.WriteString(draw.TitleStyle.Render("SETTINGS"))
	for i, r := range rows[:fields] {
		line := fmt.Sprintf("%-10s < %-8s >", r.label, r.value)
		b.WriteByte('\n')
		if menuField(i) == m.cursor {
			b.WriteString(draw.AccentStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
	}
	return draw.PanelStyle.Render(b.String())
}
