package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapperRect(t *testing.T) {
	m := NewMapper(DefaultBaselineFactor)

	tests := []struct {
		name       string
		pageHeight float64
		x, y, h    float64
		wantY      float64
	}{
		{"letter page whiteout", 792, 0, 100, 50, 642},
		{"top edge", 792, 15, 0, 0, 792},
		{"full page", 842, 0, 0, 842, 0},
		{"zero height", 792, 30, 10, 0, 782},
		{"negative height", 792, 0, 10, -20, 802},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := m.Rect(tt.pageHeight, tt.x, tt.y, tt.h)
			assert.Equal(t, tt.x, p.X)
			assert.InDelta(t, tt.wantY, p.Y, 1e-9)
			assert.InDelta(t, tt.pageHeight, p.Y+tt.h+tt.y, 1e-9)
		})
	}
}

func TestMapperText(t *testing.T) {
	m := NewMapper(0.78)

	p := m.Text(792, 30, 100, 16)
	assert.Equal(t, 30.0, p.X)
	assert.InDelta(t, 679.52, p.Y, 1e-9)

	// docY shifts by -fontSize*K as the font grows
	for _, size := range []float64{0, 8, 12, 24, 72} {
		p := m.Text(792, 0, 100, size)
		assert.InDelta(t, 792-100-size*0.78, p.Y, 1e-9)
	}

	assert.InDelta(t, 692.0, NewMapper(0.8).Text(792, 0, 90, 12.5).Y, 1e-9)
}

func TestRectBounds(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	b := r.Bounds()

	assert.Equal(t, 10.0, b.X.Lo)
	assert.Equal(t, 40.0, b.X.Hi)
	assert.Equal(t, 20.0, b.Y.Lo)
	assert.Equal(t, 60.0, b.Y.Hi)

	page := PageGeometry{Width: 612, Height: 792}
	assert.True(t, page.Bounds().Intersects(b))
	assert.False(t, page.Bounds().Intersects(Rect{X: 700, Y: 900, Width: 5, Height: 5}.Bounds()))
}
