package pdfutils

import (
	"github.com/mgmeyers/unipdf/v3/model"

	"github.com/mgmeyers/pdfstamp/compositor"
)

func pageRotation(page *model.PdfPage) int64 {
	if page.Rotate == nil {
		return 0
	}

	angle := *page.Rotate % 360
	if angle < 0 {
		angle += 360
	}

	return angle
}

func mediaBox(page *model.PdfPage) model.PdfRectangle {
	if box, err := page.GetMediaBox(); err == nil && box != nil {
		return *box
	}

	if page.MediaBox != nil {
		return *page.MediaBox
	}

	// US Letter, what viewers assume for a page without a box
	return model.PdfRectangle{Urx: 612, Ury: 792}
}

// PageGeometry returns the size of a page as a viewer displays it, that is
// with width and height swapped for pages rotated by 90 or 270 degrees.
func PageGeometry(page *model.PdfPage) compositor.PageGeometry {
	box := mediaBox(page)
	width := box.Width()
	height := box.Height()

	if angle := pageRotation(page); angle == 90 || angle == 270 {
		width, height = height, width
	}

	return compositor.PageGeometry{Width: width, Height: height}
}

// displayMatrix is the cm operand that maps displayed-page coordinates back
// onto the MediaBox, so commands drawn in display space land upright.
func displayMatrix(page *model.PdfPage) [6]float64 {
	box := mediaBox(page)
	width := box.Width()
	height := box.Height()

	var m [6]float64

	switch pageRotation(page) {
	case 90:
		m = [6]float64{0, 1, -1, 0, width, 0}
	case 180:
		m = [6]float64{-1, 0, 0, -1, width, height}
	case 270:
		m = [6]float64{0, -1, 1, 0, 0, height}
	default:
		m = [6]float64{1, 0, 0, 1, 0, 0}
	}

	m[4] += box.Llx
	m[5] += box.Lly

	return m
}
