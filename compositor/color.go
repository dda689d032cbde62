package compositor

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type Color struct {
	R float64
	G float64
	B float64
}

const hexDigits = "0123456789abcdefABCDEF"

var (
	Black = Color{}
	White = Color{R: 1, G: 1, B: 1}
)

// ParseColor reads a six digit hex colour with or without the leading '#'.
// Anything else yields black.
func ParseColor(hex string) Color {
	clr, ok := parseHex(hex)
	if !ok {
		return Black
	}
	return clr
}

func parseHex(hex string) (Color, bool) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}

	if len(hex) != 7 || strings.Trim(hex[1:], hexDigits) != "" {
		return Black, false
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return Black, false
	}

	return Color{R: c.R, G: c.G, B: c.B}, true
}

func (c Color) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Hex()
}
