package pdfutils

import (
	"testing"

	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/stretchr/testify/assert"
)

func testPage(llx, lly, urx, ury float64, rotate int64) *model.PdfPage {
	page := model.NewPdfPage()
	page.MediaBox = &model.PdfRectangle{Llx: llx, Lly: lly, Urx: urx, Ury: ury}
	if rotate != 0 {
		page.Rotate = &rotate
	}
	return page
}

func apply(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

func TestPageGeometryRotation(t *testing.T) {
	for _, tt := range []struct {
		rotate        int64
		width, height float64
	}{
		{0, 612, 792},
		{90, 792, 612},
		{180, 612, 792},
		{270, 792, 612},
		{-90, 792, 612},
		{450, 792, 612},
	} {
		g := PageGeometry(testPage(0, 0, 612, 792, tt.rotate))
		assert.Equal(t, tt.width, g.Width, "rotate %d", tt.rotate)
		assert.Equal(t, tt.height, g.Height, "rotate %d", tt.rotate)
	}
}

func TestDisplayMatrixCorners(t *testing.T) {
	const w, h = 612.0, 792.0

	// the displayed top-left corner must land on the MediaBox corner that a
	// viewer shows at the top-left for each rotation
	tests := []struct {
		rotate       int64
		wantX, wantY float64
	}{
		{0, 0, h},
		{90, 0, 0},
		{180, w, 0},
		{270, w, h},
	}

	for _, tt := range tests {
		page := testPage(0, 0, w, h, tt.rotate)
		g := PageGeometry(page)

		x, y := apply(displayMatrix(page), 0, g.Height)
		assert.InDelta(t, tt.wantX, x, 1e-9, "rotate %d", tt.rotate)
		assert.InDelta(t, tt.wantY, y, 1e-9, "rotate %d", tt.rotate)

		// the opposite corner maps to the opposite MediaBox corner
		x, y = apply(displayMatrix(page), g.Width, 0)
		assert.InDelta(t, w-tt.wantX, x, 1e-9, "rotate %d", tt.rotate)
		assert.InDelta(t, h-tt.wantY, y, 1e-9, "rotate %d", tt.rotate)
	}
}

func TestDisplayMatrixOffsetBox(t *testing.T) {
	page := testPage(20, 30, 632, 822, 0)

	x, y := apply(displayMatrix(page), 0, 0)
	assert.Equal(t, 20.0, x)
	assert.Equal(t, 30.0, y)
	assert.Equal(t, 612.0, PageGeometry(page).Width)
}
