package compositor

import "strings"

// FontIdentity is one of the twelve standard fonts text can be drawn with.
type FontIdentity int

const (
	Helvetica FontIdentity = iota
	HelveticaBold
	HelveticaItalic
	HelveticaBoldItalic
	Times
	TimesBold
	TimesItalic
	TimesBoldItalic
	Courier
	CourierBold
	CourierItalic
	CourierBoldItalic
)

var fontKeys = [...]string{
	Helvetica:           "Helvetica",
	HelveticaBold:       "HelveticaBold",
	HelveticaItalic:     "HelveticaItalic",
	HelveticaBoldItalic: "HelveticaBoldItalic",
	Times:               "Times",
	TimesBold:           "TimesBold",
	TimesItalic:         "TimesItalic",
	TimesBoldItalic:     "TimesBoldItalic",
	Courier:             "Courier",
	CourierBold:         "CourierBold",
	CourierItalic:       "CourierItalic",
	CourierBoldItalic:   "CourierBoldItalic",
}

var postScriptNames = [...]string{
	Helvetica:           "Helvetica",
	HelveticaBold:       "Helvetica-Bold",
	HelveticaItalic:     "Helvetica-Oblique",
	HelveticaBoldItalic: "Helvetica-BoldOblique",
	Times:               "Times-Roman",
	TimesBold:           "Times-Bold",
	TimesItalic:         "Times-Italic",
	TimesBoldItalic:     "Times-BoldItalic",
	Courier:             "Courier",
	CourierBold:         "Courier-Bold",
	CourierItalic:       "Courier-Oblique",
	CourierBoldItalic:   "Courier-BoldOblique",
}

var fontsByKey = func() map[string]FontIdentity {
	m := make(map[string]FontIdentity, len(fontKeys))
	for id, key := range fontKeys {
		m[key] = FontIdentity(id)
	}
	return m
}()

// AllFonts lists every identity in declaration order.
func AllFonts() []FontIdentity {
	fonts := make([]FontIdentity, len(fontKeys))
	for i := range fonts {
		fonts[i] = FontIdentity(i)
	}
	return fonts
}

func (f FontIdentity) Valid() bool {
	return f >= Helvetica && int(f) < len(fontKeys)
}

// String returns the lookup key, e.g. "TimesBoldItalic".
func (f FontIdentity) String() string {
	if !f.Valid() {
		return fontKeys[Helvetica]
	}
	return fontKeys[f]
}

// PostScriptName returns the standard 14 base font name, e.g. "Times-Bold".
func (f FontIdentity) PostScriptName() string {
	if !f.Valid() {
		return postScriptNames[Helvetica]
	}
	return postScriptNames[f]
}

// LookupFont maps a key such as "CourierItalic" to its identity. Unknown keys
// resolve to Helvetica.
func LookupFont(key string) FontIdentity {
	if f, ok := fontsByKey[key]; ok {
		return f
	}
	return Helvetica
}

// ResolveFont picks the font for a requested family and style. Families
// other than Times and Courier fall back to Helvetica.
func ResolveFont(family string, bold, italic bool) FontIdentity {
	prefix := "Helvetica"
	if strings.Contains(family, "Times") {
		prefix = "Times"
	} else if strings.Contains(family, "Courier") {
		prefix = "Courier"
	}

	suffix := ""
	switch {
	case bold && italic:
		suffix = "BoldItalic"
	case bold:
		suffix = "Bold"
	case italic:
		suffix = "Italic"
	}

	return LookupFont(prefix + suffix)
}

// Measurer reports the advance width of a string drawn in a font, in
// document units.
type Measurer interface {
	TextWidth(font FontIdentity, text string, size float64) float64
}

// StrikeRect places a strikethrough bar over a line of text whose baseline
// starts at (x, baselineY).
func StrikeRect(x, baselineY, width, size float64) Rect {
	return Rect{
		X:      x,
		Y:      baselineY + size/3.5,
		Width:  width,
		Height: size / 15,
	}
}
