package compositor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrSourceMissing is returned when the document a save refers to does not
// exist. It is the only error that aborts a whole save.
var ErrSourceMissing = errors.New("source document is missing")

const DefaultLineHeightFactor = 1.15

type Compositor struct {
	Mapper Mapper
	// LineHeightFactor times the font size is the distance between the
	// baselines of consecutive lines of one text action.
	LineHeightFactor float64
	// Measurer is used for wrapping and strikethrough widths. Without one,
	// text only breaks at newlines and strikethrough bars have zero width.
	Measurer Measurer
	// Images resolves image sources that are not data URLs.
	Images  ImageResolver
	Workers int
	Logger  logrus.FieldLogger
}

func New(measurer Measurer) *Compositor {
	return &Compositor{
		Mapper:           NewMapper(DefaultBaselineFactor),
		LineHeightFactor: DefaultLineHeightFactor,
		Measurer:         measurer,
	}
}

type Skip struct {
	Index  int        `json:"index"`
	Page   int        `json:"page"`
	Kind   ActionKind `json:"type"`
	Reason string     `json:"reason"`
}

type Report struct {
	Applied int    `json:"applied"`
	Skipped []Skip `json:"skipped"`
}

type resolved struct {
	cmd    Command
	reason string
}

// Compose resolves every action against the page list and returns the draw
// commands in action order. Actions that cannot be drawn are left out and
// listed in the report; they never fail the batch.
func (c *Compositor) Compose(pages []PageGeometry, actions []Action) ([]Command, Report) {
	results := make([]resolved, len(actions))

	var g errgroup.Group
	g.SetLimit(c.workers())

	for i, action := range actions {
		i, action := i, action
		g.Go(func() error {
			results[i] = c.resolve(pages, action)
			return nil
		})
	}

	_ = g.Wait()

	cmds := make([]Command, 0, len(actions))
	report := Report{Skipped: []Skip{}}

	for i, res := range results {
		if res.cmd == nil {
			skip := Skip{
				Index:  i,
				Page:   actions[i].Page(),
				Kind:   actions[i].Kind(),
				Reason: res.reason,
			}
			report.Skipped = append(report.Skipped, skip)

			c.logger().WithFields(logrus.Fields{
				"index":  skip.Index,
				"page":   skip.Page,
				"type":   skip.Kind,
				"reason": skip.Reason,
			}).Debug("skipping action")
			continue
		}

		cmds = append(cmds, res.cmd)
	}

	report.Applied = len(cmds)

	return cmds, report
}

func (c *Compositor) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (c *Compositor) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

func (c *Compositor) lineHeightFactor() float64 {
	if c.LineHeightFactor > 0 {
		return c.LineHeightFactor
	}
	return DefaultLineHeightFactor
}

func (c *Compositor) resolve(pages []PageGeometry, action Action) resolved {
	index := action.Page()
	if index < 0 || index >= len(pages) {
		return resolved{reason: fmt.Sprintf("page index %d out of range (%d pages)", index, len(pages))}
	}

	page := pages[index]

	switch a := action.(type) {
	case TextAction:
		return resolved{cmd: c.text(page, a)}
	case WhiteoutAction:
		origin := c.Mapper.Rect(page.Height, a.X, a.Y, a.Height)
		rect := Rect{X: origin.X, Y: origin.Y, Width: a.Width, Height: a.Height}
		c.checkBounds(page, index, rect)

		return resolved{cmd: RectCommand{Page: index, Rect: rect, Color: White}}
	case ImageAction:
		data, format, err := c.loadImage(a.Source)
		if err != nil {
			return resolved{reason: err.Error()}
		}

		origin := c.Mapper.Rect(page.Height, a.X, a.Y, a.Height)
		rect := Rect{X: origin.X, Y: origin.Y, Width: a.Width, Height: a.Height}
		c.checkBounds(page, index, rect)

		return resolved{cmd: ImageCommand{Page: index, Rect: rect, Data: data, Format: format}}
	}

	return resolved{reason: fmt.Sprintf("unsupported action type %q", action.Kind())}
}

func (c *Compositor) text(page PageGeometry, a TextAction) TextCommand {
	font := ResolveFont(a.FontFamily, a.IsBold, a.IsItalic)
	origin := c.Mapper.Text(page.Height, a.X, a.Y, a.FontSize)

	var measure func(string) float64
	if c.Measurer != nil {
		measure = func(s string) float64 {
			return c.Measurer.TextWidth(font, s, a.FontSize)
		}
	}

	pitch := a.FontSize * c.lineHeightFactor()
	wrapped := wrapText(a.Text, a.Width, measure)
	lines := make([]TextLine, 0, len(wrapped))

	for i, text := range wrapped {
		line := TextLine{
			Text: text,
			X:    origin.X,
			Y:    origin.Y - float64(i)*pitch,
		}

		if a.IsStrikethrough && text != "" {
			width := 0.0
			if measure != nil {
				width = measure(text)
			}
			strike := StrikeRect(line.X, line.Y, width, a.FontSize)
			line.Strike = &strike
		}

		lines = append(lines, line)
	}

	return TextCommand{
		Page:  a.PageIndex,
		Font:  font,
		Size:  a.FontSize,
		Color: ParseColor(a.Fill),
		Lines: lines,
	}
}

func (c *Compositor) loadImage(source string) ([]byte, ImageFormat, error) {
	if source == "" {
		return nil, UnknownImage, errors.New("image has no data")
	}

	var data []byte
	var err error

	switch {
	case IsDataURL(source):
		data, _, err = DecodeDataURL(source)
	case c.Images != nil:
		data, err = c.Images.ResolveImage(source)
	default:
		err = errors.Errorf("cannot resolve image reference %q", source)
	}

	if err != nil {
		return nil, UnknownImage, err
	}

	// the bytes win over whatever the data URL claimed
	format := SniffImageFormat(data)
	if format == UnknownImage {
		return nil, UnknownImage, errors.Wrap(ErrUnsupportedImage, "payload is neither PNG nor JPEG")
	}

	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return nil, UnknownImage, errors.Wrapf(err, "decoding %s image", format)
	}

	return data, format, nil
}

func (c *Compositor) checkBounds(page PageGeometry, index int, rect Rect) {
	if page.Bounds().Intersects(rect.Bounds()) {
		return
	}

	c.logger().WithFields(logrus.Fields{
		"page":   index,
		"x":      rect.X,
		"y":      rect.Y,
		"width":  rect.Width,
		"height": rect.Height,
	}).Debug("element lies outside the page")
}
