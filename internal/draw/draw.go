// Package draw renders the tunnel to a terminal: a colored half-block canvas,
// a perspective camera, chunked ANSI output and lipgloss text styles.
package draw

import (
	"strconv"
)

// Point represents a 2D coordinate in logical canvas space.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Palette used by the presenter. Colors are 0xRRGGBB; zero means empty.
const (
	ColorTunnel     uint32 = 0x0044ff
	ColorTunnelRim  uint32 = 0x3377ff
	ColorLaneActive uint32 = 0xffff00
	ColorPlayer     uint32 = 0xffff00
	ColorProjectile uint32 = 0xffffff
	ColorSuperShot  uint32 = 0xff00ff
	ColorPowerUp    uint32 = 0x00ffff
	ColorStar       uint32 = 0x666666
)

// Dim scales a color toward black by f in [0, 1].
func Dim(c uint32, f float64) uint32 {
	if f >= 1 {
		return c
	}
	if f <= 0 {
		return 0
	}
	r := uint32(float64(c>>16&0xff) * f)
	g := uint32(float64(c>>8&0xff) * f)
	b := uint32(float64(c&0xff) * f)
	if r|g|b == 0 {
		// Keep the pixel visible
		return 0x010101
	}
	return r<<16 | g<<8 | b
}

// appendColor appends the ANSI truecolor sequence for c as foreground (38) or background (48).
func appendColor(buf []byte, layer int, c uint32) []byte {
	buf = append(buf, "\033["...)
	buf = strconv.AppendInt(buf, int64(layer), 10)
	buf = append(buf, ";2;"...)
	buf = strconv.AppendUint(buf, uint64(c>>16&0xff), 10)
	buf = append(buf, ';')
	buf = strconv.AppendUint(buf, uint64(c>>8&0xff), 10)
	buf = append(buf, ';')
	buf = strconv.AppendUint(buf, uint64(c&0xff), 10)
	return append(buf, 'm')
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
