// Package input turns a raw terminal byte stream into game controls.
package input

import (
	"bufio"
	"slices"
	"time"
	"unicode"

	"github.com/tomz197/tempest/internal/loop/config"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report key repeats, so held keys are reconstructed from them.
const keyHoldDuration = 60 * time.Millisecond

// Controls represents the current frame's input state.
//
// Move and Accelerate are held inputs. Every other field only reports
// presses seen since the previous read.
type Controls struct {
	Pressed bool // Any byte arrived since the previous read

	Move       int // +1 for arrow left, -1 for arrow right
	Accelerate bool

	Fire           bool
	Bomb           bool
	Pause          bool
	Quit           bool
	Interrupt      bool // Ctrl+C or end of stream
	Enter          bool
	Backspace      bool
	Escape         bool
	ToggleRotation bool
	ToggleSound    bool
	Help           bool

	RotateX float64 // Tunnel tilt nudges
	RotateY float64

	Up, Down    bool // Menu navigation presses
	Left, Right bool

	Number int    // Last digit pressed, -1 if none
	Runes  []rune // Letters typed, uppercased
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	left  time.Time
	right time.Time
	up    time.Time
}

// Stream delivers input bytes via a channel and tracks held keys.
type Stream struct {
	ch      chan byte
	state   keyState
	closed  bool
	pending []byte // Incomplete escape sequence held for the next read
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Read drains all available bytes from the stream without blocking.
//
// An ESC or ESC [ at the end of a read may be the start of an arrow key whose
// remaining bytes have not arrived yet, so it is held back. It decodes as a
// bare Escape only when the following read brings no new bytes.
func (s *Stream) Read(now time.Time) Controls {
	buf := s.pending
	s.pending = nil
	fresh := 0
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
			fresh++
		default:
			break drain
		}
	}

	if fresh > 0 && !s.closed {
		buf, s.pending = splitIncomplete(buf)
	}
	c := parse(buf, now, &s.state)
	c.Pressed = c.Pressed || fresh > 0
	if s.closed {
		c.Interrupt = true
	}
	return c
}

// splitIncomplete separates a trailing ESC or ESC [ from buf.
func splitIncomplete(buf []byte) (complete, tail []byte) {
	n := len(buf)
	switch {
	case n >= 2 && buf[n-2] == '\x1b' && buf[n-1] == '[':
		return buf[:n-2], slices.Clone(buf[n-2:])
	case n >= 1 && buf[n-1] == '\x1b':
		return buf[:n-1], slices.Clone(buf[n-1:])
	}
	return buf, nil
}

// parse decodes buf and merges it with the held key state.
func parse(buf []byte, now time.Time, state *keyState) Controls {
	c := Controls{Number: -1, Pressed: len(buf) > 0}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				state.up = now
				c.Up = true
				i += 2
				continue
			case 'B':
				c.Down = true
				i += 2
				continue
			case 'C':
				state.right = now
				c.Right = true
				i += 2
				continue
			case 'D':
				state.left = now
				c.Left = true
				i += 2
				continue
			}
		}
		applyByte(&c, state, b, now)
	}

	left := now.Sub(state.left) < keyHoldDuration
	right := now.Sub(state.right) < keyHoldDuration
	switch {
	case left && !right:
		c.Move = 1
	case right && !left:
		c.Move = -1
	}
	c.Accelerate = now.Sub(state.up) < keyHoldDuration
	return c
}

// applyByte handles a single-byte key press.
func applyByte(c *Controls, state *keyState, b byte, now time.Time) {
	switch b {
	case 0x03:
		c.Interrupt = true
		return
	case ' ':
		c.Fire = true
		return
	case '\n', '\r':
		c.Enter = true
		return
	case '\b', '\x7f':
		c.Backspace = true
		return
	case '\x1b':
		c.Escape = true
		return
	}

	if b >= '0' && b <= '9' {
		c.Number = int(b - '0')
		return
	}

	r := unicode.ToUpper(rune(b))
	if r < 'A' || r > 'Z' {
		return
	}
	c.Runes = append(c.Runes, r)

	switch r {
	case 'Q':
		c.Quit = true
	case 'A':
		state.left = now
		c.Left = true
	case 'D':
		state.right = now
		c.Right = true
	case 'W':
		state.up = now
	case 'B':
		c.Bomb = true
	case 'P':
		c.Pause = true
	case 'R':
		c.ToggleRotation = true
	case 'M':
		c.ToggleSound = true
	case 'H':
		c.Help = true
	case 'I':
		c.RotateX -= config.RotationNudge
	case 'K':
		c.RotateX += config.RotationNudge
	case 'J':
		c.RotateY -= config.RotationNudge
	case 'L':
		c.RotateY += config.RotationNudge
	}
}
