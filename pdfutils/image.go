package pdfutils

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/gen2brain/go-fitz"
	"github.com/pkg/errors"
)

const (
	FormatPNG = "png"
	FormatJPG = "jpg"
)

// RenderPage rasterises one zero-based page of a PDF at the given DPI.
func RenderPage(data []byte, pageIndex int, dpi float64) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, errors.Wrap(err, "opening document for rendering")
	}

	defer doc.Close()

	if pageIndex < 0 || pageIndex >= doc.NumPage() {
		return nil, errors.Errorf("page %d out of range (%d pages)", pageIndex+1, doc.NumPage())
	}

	img, err := doc.ImageDPI(pageIndex, dpi)
	if err != nil {
		return nil, errors.Wrapf(err, "rendering page %d", pageIndex+1)
	}

	return img, nil
}

func WriteImage(w io.Writer, img image.Image, format string, quality int) error {
	if format == FormatJPG {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	}

	return png.Encode(w, img)
}
