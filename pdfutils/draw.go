package pdfutils

import (
	"bytes"
	"fmt"

	"github.com/mgmeyers/unipdf/v3/contentstream"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfstamp/compositor"
)

// canvas collects the overlay content stream for one page together with the
// resources it references.
type canvas struct {
	page   *model.PdfPage
	fonts  *FontKit
	logger logrus.FieldLogger
	cc     *contentstream.ContentCreator

	fontNames map[compositor.FontIdentity]core.PdfObjectName
	images    int
}

func newCanvas(page *model.PdfPage, fonts *FontKit, logger logrus.FieldLogger) *canvas {
	cc := contentstream.NewContentCreator()

	m := displayMatrix(page)
	cc.Add_q().Add_cm(m[0], m[1], m[2], m[3], m[4], m[5])

	return &canvas{
		page:      page,
		fonts:     fonts,
		logger:    logger,
		cc:        cc,
		fontNames: map[compositor.FontIdentity]core.PdfObjectName{},
	}
}

func (c *canvas) draw(cmd compositor.Command) error {
	switch cmd := cmd.(type) {
	case compositor.TextCommand:
		return c.drawText(cmd)
	case compositor.RectCommand:
		c.fillRect(cmd.Rect, cmd.Color)
		return nil
	case compositor.ImageCommand:
		return c.drawImage(cmd)
	}

	return errors.Errorf("unknown draw command %T", cmd)
}

func (c *canvas) fillRect(r compositor.Rect, clr compositor.Color) {
	c.cc.Add_q().
		Add_rg(clr.R, clr.G, clr.B).
		Add_re(r.X, r.Y, r.Width, r.Height).
		Add_f().
		Add_Q()
}

func (c *canvas) drawText(cmd compositor.TextCommand) error {
	name, err := c.fontName(cmd.Font)
	if err != nil {
		return err
	}

	for _, line := range cmd.Lines {
		if line.Text != "" {
			encoded, err := c.fonts.Encode(cmd.Font, line.Text)
			if err != nil {
				return err
			}

			c.cc.Add_q().
				Add_rg(cmd.Color.R, cmd.Color.G, cmd.Color.B).
				Add_BT().
				Add_Tf(name, cmd.Size).
				Add_Td(line.X, line.Y).
				Add_Tj(*core.MakeStringFromBytes(encoded)).
				Add_ET().
				Add_Q()
		}

		if line.Strike != nil {
			c.fillRect(*line.Strike, cmd.Color)
		}
	}

	return nil
}

func (c *canvas) fontName(id compositor.FontIdentity) (core.PdfObjectName, error) {
	if name, ok := c.fontNames[id]; ok {
		return name, nil
	}

	font, err := c.fonts.Font(id)
	if err != nil {
		return "", err
	}

	name := core.PdfObjectName("PS" + id.String())
	for i := 1; c.page.HasFontByName(name); i++ {
		name = core.PdfObjectName(fmt.Sprintf("PS%s%d", id.String(), i))
	}

	if err := c.page.AddFont(name, font.ToPdfObject()); err != nil {
		return "", errors.Wrapf(err, "adding font %s", id)
	}

	c.fontNames[id] = name
	return name, nil
}

func (c *canvas) drawImage(cmd compositor.ImageCommand) error {
	img, err := model.ImageHandling.Read(bytes.NewReader(cmd.Data))
	if err != nil {
		// a payload the pipeline accepted but that will not decode is dropped
		// like any other bad image
		c.logger.WithFields(logrus.Fields{
			"page":   cmd.Page,
			"format": cmd.Format.String(),
			"error":  err,
		}).Warn("skipping undecodable image")
		return nil
	}

	ximg, err := model.NewXObjectImageFromImage(img, nil, core.NewFlateEncoder())
	if err != nil {
		return errors.Wrap(err, "creating image xobject")
	}

	c.images++
	name := core.PdfObjectName(fmt.Sprintf("PSImg%d", c.images))
	for c.page.HasXObjectByName(name) {
		c.images++
		name = core.PdfObjectName(fmt.Sprintf("PSImg%d", c.images))
	}

	if err := c.page.AddImageResource(name, ximg); err != nil {
		return errors.Wrap(err, "adding image resource")
	}

	r := cmd.Rect
	c.cc.Add_q().
		Add_cm(r.Width, 0, 0, r.Height, r.X, r.Y).
		Add_Do(name).
		Add_Q()

	return nil
}

// commit appends the overlay to the page. The existing content is wrapped in
// q/Q so a graphics state it leaves behind cannot leak into the overlay.
func (c *canvas) commit() error {
	c.cc.Add_Q()

	existing, err := c.page.GetAllContentStreams()
	if err != nil {
		return errors.Wrap(err, "reading page content")
	}

	streams := []string{"q\n" + existing + "\nQ\n", c.cc.String()}
	if err := c.page.SetContentStreams(streams, core.NewFlateEncoder()); err != nil {
		return errors.Wrap(err, "writing page content")
	}

	return nil
}
