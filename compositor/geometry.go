// Package compositor turns editor annotations, placed in screen space, into
// draw commands in PDF document space.
//
// Screen space has its origin at the top-left corner of a page with Y
// growing downward. Document space has its origin at the bottom-left corner
// with Y growing upward. Both use unscaled page units: the editor divides by
// its zoom factor before it sends anything here.
package compositor

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

type PageGeometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (p PageGeometry) Bounds() r2.Rect {
	return r2.Rect{
		X: r1.Interval{Lo: 0, Hi: p.Width},
		Y: r1.Interval{Lo: 0, Hi: p.Height},
	}
}

// Rect is a document-space rectangle anchored at its bottom-left corner.
// Width and Height are kept as given, so a zero or negative size reaches the
// drawing backend unchanged.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r Rect) Bounds() r2.Rect {
	return r2.RectFromPoints(
		r2.Point{X: r.X, Y: r.Y},
		r2.Point{X: r.X + r.Width, Y: r.Y + r.Height},
	)
}

// Mapper converts screen-space positions into document-space draw origins.
type Mapper struct {
	// BaselineFactor is the fraction of the font size between the top of a
	// text box and the text baseline. It is an empirical value, not one
	// derived from font metrics.
	BaselineFactor float64
}

const DefaultBaselineFactor = 0.78

func NewMapper(baselineFactor float64) Mapper {
	return Mapper{BaselineFactor: baselineFactor}
}

// Rect maps the top edge of a rectangle-like element (whiteout, image) to the
// document-space position of its bottom-left corner.
func (m Mapper) Rect(pageHeight, x, y, height float64) r2.Point {
	return r2.Point{X: x, Y: pageHeight - y - height}
}

// Text maps the top of a text box to the baseline origin of its first line.
func (m Mapper) Text(pageHeight, x, y, fontSize float64) r2.Point {
	return r2.Point{X: x, Y: pageHeight - y - fontSize*m.BaselineFactor}
}
