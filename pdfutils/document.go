package pdfutils

import (
	"bytes"
	"io"
	"os"
	"sort"

	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfstamp/compositor"
)

// Document is a loaded PDF that draw commands can be applied to.
type Document struct {
	reader *model.PdfReader
	pages  []*model.PdfPage
	fonts  *FontKit
	Logger logrus.FieldLogger
}

// OpenDocument loads the PDF at path. A missing file is reported as
// compositor.ErrSourceMissing.
func OpenDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(compositor.ErrSourceMissing, path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading document")
	}

	return LoadDocument(bytes.NewReader(data))
}

func LoadDocument(rs io.ReadSeeker) (*Document, error) {
	pdfReader, err := model.NewPdfReader(rs)
	if err != nil {
		return nil, errors.Wrap(err, "parsing document")
	}

	encrypted, err := pdfReader.IsEncrypted()
	if err != nil {
		return nil, errors.Wrap(err, "checking encryption")
	}

	if encrypted {
		ok, err := pdfReader.Decrypt([]byte(""))
		if err != nil {
			return nil, errors.Wrap(err, "decrypting document")
		}
		if !ok {
			return nil, errors.New("document is password protected")
		}
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, errors.Wrap(err, "counting pages")
	}

	pages := make([]*model.PdfPage, 0, numPages)

	for i := 0; i < numPages; i++ {
		page, err := pdfReader.GetPage(i + 1)
		if err != nil {
			return nil, errors.Wrapf(err, "loading page %d", i+1)
		}
		pages = append(pages, page)
	}

	return &Document{
		reader: pdfReader,
		pages:  pages,
		fonts:  NewFontKit(),
		Logger: logrus.StandardLogger(),
	}, nil
}

func (d *Document) NumPages() int {
	return len(d.pages)
}

// Geometry lists the displayed size of every page, in page order.
func (d *Document) Geometry() []compositor.PageGeometry {
	geometry := make([]compositor.PageGeometry, 0, len(d.pages))
	for _, page := range d.pages {
		geometry = append(geometry, PageGeometry(page))
	}
	return geometry
}

// Fonts is the measurer to hand to the compositor, so that wrapping and
// drawing agree on glyph widths.
func (d *Document) Fonts() *FontKit {
	return d.fonts
}

// Apply draws the commands onto their pages in the order given.
func (d *Document) Apply(cmds []compositor.Command) error {
	byPage := compositor.ByPage(cmds)

	indexes := make([]int, 0, len(byPage))
	for index := range byPage {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	for _, index := range indexes {
		if index < 0 || index >= len(d.pages) {
			return errors.Errorf("draw command for page %d of %d", index, len(d.pages))
		}

		c := newCanvas(d.pages[index], d.fonts, d.Logger)

		for _, cmd := range byPage[index] {
			if err := c.draw(cmd); err != nil {
				return errors.Wrapf(err, "drawing on page %d", index+1)
			}
		}

		if err := c.commit(); err != nil {
			return errors.Wrapf(err, "page %d", index+1)
		}
	}

	return nil
}

// Write saves the document with its pages, outline and interactive form.
func (d *Document) Write(w io.Writer) error {
	pdfWriter := model.NewPdfWriter()

	for i, page := range d.pages {
		if err := pdfWriter.AddPage(page); err != nil {
			return errors.Wrapf(err, "adding page %d", i+1)
		}
	}

	if d.reader != nil {
		if outlines := d.reader.GetOutlineTree(); outlines != nil {
			pdfWriter.AddOutlineTree(outlines)
		}

		if d.reader.AcroForm != nil {
			if err := pdfWriter.SetForms(d.reader.AcroForm); err != nil {
				return errors.Wrap(err, "copying form")
			}
		}
	}

	return errors.Wrap(pdfWriter.Write(w), "writing document")
}
