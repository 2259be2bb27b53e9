package client

import (
	"testing"

	"github.com/tomz197/tempest/internal/input"
	"github.com/tomz197/tempest/internal/loop"
	"github.com/tomz197/tempest/internal/loop/config"
	"github.com/tomz197/tempest/internal/track"
)

func TestMenuCycles(t *testing.T) {
	m := newMenuState(loop.DefaultSettings())

	m.update(press(input.Controls{Left: true}), fieldCount)
	if m.settings().Difficulty != config.DifficultyEasy {
		t.Errorf("difficulty = %v", m.settings().Difficulty)
	}
	m.update(press(input.Controls{Left: true}), fieldCount)
	if m.settings().Difficulty != config.DifficultyHard {
		t.Errorf("difficulty did not wrap: %v", m.settings().Difficulty)
	}

	m.update(press(input.Controls{Up: true}), fieldCount)
	if m.cursor != fieldLives {
		t.Errorf("cursor = %d, want lives", m.cursor)
	}
	m.update(press(input.Controls{Up: true}), fieldCount)
	m.update(press(input.Controls{Right: true}), fieldCount)
	if m.settings().Shape != track.ShapePentagon {
		t.Errorf("shape = %v", m.settings().Shape)
	}
}

func TestMenuLivesTyping(t *testing.T) {
	m := newMenuState(loop.DefaultSettings())
	m.cursor = fieldLives

	for _, n := range []int{1, 2, 5} {
		m.update(input.Controls{Number: n}, fieldCount)
	}
	if m.lives != 125 {
		t.Fatalf("lives = %d, want 125", m.lives)
	}
	m.update(input.Controls{Number: 9}, fieldCount) // 1259 overflows
	if m.lives != 125 {
		t.Errorf("lives = %d after overflow digit", m.lives)
	}
	m.update(press(input.Controls{Backspace: true}), fieldCount)
	m.update(press(input.Controls{Backspace: true}), fieldCount)
	if m.lives != 1 || m.settings().Lives != config.MinLives {
		t.Errorf("lives = %d settings = %d", m.lives, m.settings().Lives)
	}

	m.update(press(input.Controls{Down: true}), fieldCount)
	if m.lives != config.MinLives {
		t.Errorf("leaving the field kept %d", m.lives)
	}

	m.cursor = fieldLives
	m.lives = config.MaxLives
	m.update(press(input.Controls{Right: true}), fieldCount)
	if m.lives != config.MaxLives {
		t.Errorf("lives = %d, want clamp at %d", m.lives, config.MaxLives)
	}
}

func TestMenuPausedFieldsSkipLives(t *testing.T) {
	m := newMenuState(loop.DefaultSettings())
	m.update(press(input.Controls{Up: true}), pausedFields)
	if m.cursor != fieldShape {
		t.Errorf("cursor = %d, want shape", m.cursor)
	}
	if changed := m.update(press(input.Controls{Down: true}), pausedFields); changed {
		t.Error("cursor movement reported a change")
	}
	if m.cursor != fieldDifficulty {
		t.Errorf("cursor = %d, want wrap to difficulty", m.cursor)
	}
}

func TestNewMenuStateFallsBack(t *testing.T) {
	m := newMenuState(loop.Settings{Difficulty: "insane", Lives: 0})
	s := m.settings()
	if s.Difficulty != config.DifficultyEasy || s.Lives != config.InitialLives {
		t.Errorf("settings = %+v", s)
	}
}
