package pdfutils

import (
	"sync"

	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"

	"github.com/mgmeyers/pdfstamp/compositor"
)

// FontKit hands out the standard 14 fonts used for text actions. Each font is
// loaded at most once per kit; a kit lives for one save.
type FontKit struct {
	mu    sync.Mutex
	fonts map[compositor.FontIdentity]*model.PdfFont
}

func NewFontKit() *FontKit {
	return &FontKit{fonts: map[compositor.FontIdentity]*model.PdfFont{}}
}

func (k *FontKit) Font(id compositor.FontIdentity) (*model.PdfFont, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if font, ok := k.fonts[id]; ok {
		return font, nil
	}

	font, err := model.NewStandard14Font(model.StdFontName(id.PostScriptName()))
	if err != nil {
		return nil, errors.Wrapf(err, "loading font %s", id.PostScriptName())
	}

	k.fonts[id] = font
	return font, nil
}

// TextWidth implements compositor.Measurer using the fonts' AFM advance
// widths. Runes without metrics count as zero width.
func (k *FontKit) TextWidth(id compositor.FontIdentity, text string, size float64) float64 {
	font, err := k.Font(id)
	if err != nil {
		return 0
	}

	total := 0.0
	for _, r := range text {
		metrics, ok := font.GetRuneMetrics(r)
		if !ok {
			continue
		}
		total += metrics.Wx
	}

	return total * size / 1000
}

// Encode converts text into the byte codes the font's encoding expects.
func (k *FontKit) Encode(id compositor.FontIdentity, text string) ([]byte, error) {
	font, err := k.Font(id)
	if err != nil {
		return nil, err
	}

	return font.Encoder().Encode(RemoveNul(text)), nil
}
