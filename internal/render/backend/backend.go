// Package backend abstracts the display surface the grid painter draws on.
package backend

// Attr is a set of text attributes.
type Attr uint8

const (
	AttrNone Attr = 0
	AttrBold Attr = 1 << iota
	AttrDim
	AttrUnderline
	AttrReverse
)

// Has reports whether a contains attr.
func (a Attr) Has(attr Attr) bool {
	return a&attr != 0
}

// Color is a palette index. ColorDefault uses the terminal default.
type Color int16

// ColorDefault is the terminal's default color.
const ColorDefault Color = -1

// Style describes how a cell is drawn.
type Style struct {
	Foreground Color
	Background Color
	Attr       Attr
}

// DefaultStyle returns the terminal default style.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// With returns a copy of s with attr added.
func (s Style) With(attr Attr) Style {
	s.Attr |= attr
	return s
}

// Cell is one screen position.
type Cell struct {
	Rune  rune
	Style Style
}

// EmptyCell returns a blank cell in the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Style: DefaultStyle()}
}

// EventType identifies the kind of event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize

	// EventInterrupt wakes the event loop with a value posted from
	// another goroutine.
	EventInterrupt
)

// Key is a keyboard key.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyCtrlC
)

// Event is an input event.
type Event struct {
	Type EventType
	Key  Key
	Rune rune

	Width, Height int

	// Data is the payload of an interrupt.
	Data any
}

// Backend is a display surface.
type Backend interface {
	// Init prepares the surface. It must be called first.
	Init() error

	// Shutdown restores the display.
	Shutdown()

	// Size returns the surface size in cells.
	Size() (width, height int)

	// SetCell sets one position. Positions outside the surface are ignored.
	SetCell(x, y int, cell Cell)

	// Cell returns the cell at a position, or an empty cell outside.
	Cell(x, y int) Cell

	// Clear blanks the surface.
	Clear()

	// Show flushes pending changes to the display.
	Show()

	// PollEvent blocks until the next event.
	PollEvent() Event

	// PostEvent queues a synthetic event.
	PostEvent(ev Event)
}
