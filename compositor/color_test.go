package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#000000", Black},
		{"#ffffff", White},
		{"FFFFFF", White},
		{"#ff0000", Color{R: 1}},
		{"#00ff00", Color{G: 1}},
		{"", Black},
		{"white", Black},
		{"#fff", Black},
		{"#12345g", Black},
		{"#1234567", Black},
		{"rgb(1,2,3)", Black},
	}

	for _, tt := range tests {
		got := ParseColor(tt.in)
		assert.InDelta(t, tt.want.R, got.R, 1e-9, tt.in)
		assert.InDelta(t, tt.want.G, got.G, 1e-9, tt.in)
		assert.InDelta(t, tt.want.B, got.B, 1e-9, tt.in)
	}
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#336699", ParseColor("#336699").Hex())
	assert.Equal(t, "#000000", Black.Hex())
}
