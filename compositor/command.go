package compositor

// Command is a draw instruction fully resolved into document space.
// The concrete types are TextCommand, RectCommand and ImageCommand.
type Command interface {
	PageIndex() int
}

type TextLine struct {
	Text string
	X    float64
	Y    float64
	// Strike is the strikethrough bar for this line, nil when none was asked
	// for.
	Strike *Rect
}

type TextCommand struct {
	Page  int
	Font  FontIdentity
	Size  float64
	Color Color
	Lines []TextLine
}

type RectCommand struct {
	Page  int
	Rect  Rect
	Color Color
}

type ImageCommand struct {
	Page   int
	Rect   Rect
	Data   []byte
	Format ImageFormat
}

func (c TextCommand) PageIndex() int  { return c.Page }
func (c RectCommand) PageIndex() int  { return c.Page }
func (c ImageCommand) PageIndex() int { return c.Page }

// ByPage groups commands per page, keeping their relative order.
func ByPage(cmds []Command) map[int][]Command {
	pages := map[int][]Command{}
	for _, cmd := range cmds {
		pages[cmd.PageIndex()] = append(pages[cmd.PageIndex()], cmd)
	}
	return pages
}
