package compositor

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type ActionKind string

const (
	KindText     ActionKind = "text"
	KindWhiteout ActionKind = "whiteout"
	KindImage    ActionKind = "image"
)

// Action is one placement made in the editor. The concrete types are
// TextAction, WhiteoutAction, ImageAction and UnknownAction.
type Action interface {
	Kind() ActionKind
	Page() int
}

type TextAction struct {
	PageIndex       int
	X               float64
	Y               float64
	Width           float64
	FontSize        float64
	FontFamily      string
	IsBold          bool
	IsItalic        bool
	IsStrikethrough bool
	Fill            string
	Text            string
}

type WhiteoutAction struct {
	PageIndex int
	X         float64
	Y         float64
	Width     float64
	Height    float64
}

// ImageAction places an image. Source is either a data URL or a reference
// the pipeline's ImageResolver understands.
type ImageAction struct {
	PageIndex int
	X         float64
	Y         float64
	Width     float64
	Height    float64
	Source    string
}

// UnknownAction keeps the position of an entry whose type the pipeline does
// not handle, so it can be reported as skipped.
type UnknownAction struct {
	PageIndex int
	Type      string
}

func (a TextAction) Kind() ActionKind     { return KindText }
func (a WhiteoutAction) Kind() ActionKind { return KindWhiteout }
func (a ImageAction) Kind() ActionKind    { return KindImage }
func (a UnknownAction) Kind() ActionKind  { return ActionKind(a.Type) }

func (a TextAction) Page() int     { return a.PageIndex }
func (a WhiteoutAction) Page() int { return a.PageIndex }
func (a ImageAction) Page() int    { return a.PageIndex }
func (a UnknownAction) Page() int  { return a.PageIndex }

// wireAction is the shape the editor posts: one flat object per canvas
// element, with fields that do not apply to its type left null.
type wireAction struct {
	Type            string   `json:"type"`
	PageIndex       *int     `json:"pageIndex"`
	X               float64  `json:"x"`
	Y               float64  `json:"y"`
	Width           float64  `json:"width"`
	Height          float64  `json:"height"`
	Text            *string  `json:"text"`
	FontSize        *float64 `json:"fontSize"`
	FontFamily      *string  `json:"fontFamily"`
	Fill            *string  `json:"fill"`
	IsBold          bool     `json:"isBold"`
	IsItalic        bool     `json:"isItalic"`
	IsStrikethrough bool     `json:"isStrikethrough"`
	DataURL         *string  `json:"dataUrl"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (w wireAction) action() Action {
	page := deref(w.PageIndex)

	switch ActionKind(w.Type) {
	case KindText:
		return TextAction{
			PageIndex:       page,
			X:               w.X,
			Y:               w.Y,
			Width:           w.Width,
			FontSize:        deref(w.FontSize),
			FontFamily:      deref(w.FontFamily),
			IsBold:          w.IsBold,
			IsItalic:        w.IsItalic,
			IsStrikethrough: w.IsStrikethrough,
			Fill:            deref(w.Fill),
			Text:            deref(w.Text),
		}
	case KindWhiteout:
		return WhiteoutAction{
			PageIndex: page,
			X:         w.X,
			Y:         w.Y,
			Width:     w.Width,
			Height:    w.Height,
		}
	case KindImage:
		return ImageAction{
			PageIndex: page,
			X:         w.X,
			Y:         w.Y,
			Width:     w.Width,
			Height:    w.Height,
			Source:    deref(w.DataURL),
		}
	}

	return UnknownAction{PageIndex: page, Type: w.Type}
}

// Actions decodes the editor's JSON action array.
type Actions []Action

func (a *Actions) UnmarshalJSON(data []byte) error {
	var wire []wireAction
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(err, "decoding actions")
	}

	out := make(Actions, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.action())
	}

	*a = out
	return nil
}

func DecodeActions(data []byte) ([]Action, error) {
	var actions Actions
	if err := json.Unmarshal(data, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}
