package pdfutils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/creator"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgmeyers/pdfstamp/compositor"
)

// blankPDF builds a document of letter pages, rotating page i by rotations[i].
func blankPDF(t *testing.T, rotations ...int64) []byte {
	t.Helper()

	c := creator.New()
	c.SetPageSize(creator.PageSizeLetter)

	for _, rotation := range rotations {
		page := c.NewPage()
		if rotation != 0 {
			r := rotation
			page.Rotate = &r
		}
	}

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf))
	return buf.Bytes()
}

func pngData(t *testing.T) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.NRGBA{G: 180, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDocumentGeometry(t *testing.T) {
	doc, err := LoadDocument(bytes.NewReader(blankPDF(t, 0, 90, 180)))
	require.NoError(t, err)

	assert.Equal(t, 3, doc.NumPages())
	assert.Equal(t, []compositor.PageGeometry{
		{Width: 612, Height: 792},
		{Width: 792, Height: 612},
		{Width: 612, Height: 792},
	}, doc.Geometry())
}

func TestOpenDocumentMissing(t *testing.T) {
	_, err := OpenDocument(filepath.Join(t.TempDir(), "gone.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, compositor.ErrSourceMissing))
}

func TestLoadDocumentRejectsGarbage(t *testing.T) {
	_, err := LoadDocument(bytes.NewReader([]byte("this is not a pdf")))
	assert.Error(t, err)
}

func TestApplyAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.pdf")
	require.NoError(t, os.WriteFile(path, blankPDF(t, 0, 0), 0o644))

	doc, err := OpenDocument(path)
	require.NoError(t, err)

	c := compositor.New(doc.Fonts())
	cmds, report := c.Compose(doc.Geometry(), []compositor.Action{
		compositor.WhiteoutAction{PageIndex: 0, X: 10, Y: 10, Width: 100, Height: 20},
		compositor.TextAction{PageIndex: 0, X: 20, Y: 40, FontSize: 12, FontFamily: "Times", IsBold: true, Text: "Hello", IsStrikethrough: true},
		compositor.ImageAction{PageIndex: 1, X: 50, Y: 50, Width: 30, Height: 30, Source: "data:image/png;base64," + encode64(pngData(t))},
		compositor.WhiteoutAction{PageIndex: 5, Width: 1, Height: 1},
	})
	require.Equal(t, 3, report.Applied)
	require.Len(t, report.Skipped, 1)

	require.NoError(t, doc.Apply(cmds))

	var out bytes.Buffer
	require.NoError(t, doc.Write(&out))

	reloaded, err := LoadDocument(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.NumPages())

	first := reloaded.pages[0]
	content, err := first.GetAllContentStreams()
	require.NoError(t, err)

	assert.Contains(t, content, "Hello")
	assert.Contains(t, content, "Tj")
	assert.Contains(t, content, " re")
	assert.True(t, first.HasFontByName(core.PdfObjectName("PSTimesBold")))

	second := reloaded.pages[1]
	content, err = second.GetAllContentStreams()
	require.NoError(t, err)

	assert.Contains(t, content, "Do")
	assert.True(t, second.HasXObjectByName(core.PdfObjectName("PSImg1")))
}

func TestApplyRejectsUnknownPage(t *testing.T) {
	doc, err := LoadDocument(bytes.NewReader(blankPDF(t, 0)))
	require.NoError(t, err)

	err = doc.Apply([]compositor.Command{compositor.RectCommand{Page: 3}})
	assert.Error(t, err)
}

func TestApplySkipsUndecodableImage(t *testing.T) {
	doc, err := LoadDocument(bytes.NewReader(blankPDF(t, 0)))
	require.NoError(t, err)

	// right signature, broken body
	broken := append([]byte("\x89PNG\r\n\x1a\n"), 1, 2, 3)

	err = doc.Apply([]compositor.Command{
		compositor.ImageCommand{Page: 0, Data: broken, Format: compositor.PNG, Rect: compositor.Rect{Width: 1, Height: 1}},
	})
	assert.NoError(t, err)
}

func TestWriteKeepsOutlineAndForm(t *testing.T) {
	c := creator.New()
	c.SetPageSize(creator.PageSizeLetter)
	c.NewPage()
	c.NewPage()

	outline := model.NewOutline()
	outline.Add(model.NewOutlineItem("Chapter", model.NewOutlineDest(1, 0, 792)))
	c.SetOutlineTree(outline.ToOutlineTree())

	form := model.NewPdfAcroForm()
	form.NeedAppearances = core.MakeBool(true)
	require.NoError(t, c.SetForms(form))

	var in bytes.Buffer
	require.NoError(t, c.Write(&in))

	doc, err := LoadDocument(bytes.NewReader(in.Bytes()))
	require.NoError(t, err)

	_, err = doc.Stamp([]compositor.Action{
		compositor.WhiteoutAction{PageIndex: 1, X: 10, Y: 10, Width: 20, Height: 20},
	}, StampOptions{})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, doc.Write(&out))

	reloaded, err := LoadDocument(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)

	outlines, err := reloaded.reader.GetOutlines()
	require.NoError(t, err)
	require.Len(t, outlines.Entries, 1)
	assert.Equal(t, "Chapter", outlines.Entries[0].Title)

	assert.NotNil(t, reloaded.reader.AcroForm)
}

func TestWriteWithoutOutline(t *testing.T) {
	doc, err := LoadDocument(bytes.NewReader(blankPDF(t, 0)))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, doc.Write(&out))

	reloaded, err := LoadDocument(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Nil(t, reloaded.reader.AcroForm)
}
