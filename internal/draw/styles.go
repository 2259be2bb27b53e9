package draw

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Text styles for overlays printed on top of the canvas.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3377ff"))

	HUDStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff"))

	AccentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffff00"))

	WarnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff3333"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3377ff")).
			Padding(0, 2)
)

// Width returns the printable width of s, ignoring ANSI sequences.
func Width(s string) int {
	return lipgloss.Width(s)
}

// ForceTrueColor makes styles emit 24-bit color regardless of the process stdout.
// SSH sessions render to a remote terminal the local profile detection cannot see.
func ForceTrueColor() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}
