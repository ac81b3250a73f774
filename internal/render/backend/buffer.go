package backend

import "strings"

// Buffer is an in-memory Backend used by tests and headless hosts.
type Buffer struct {
	width, height int
	cells         [][]Cell
	shows         int
	events        chan Event
}

// NewBuffer creates a buffer of the given size.
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{events: make(chan Event, 64)}
	b.Resize(width, height)
	return b
}

func (b *Buffer) Init() error { return nil }

func (b *Buffer) Shutdown() {}

func (b *Buffer) Size() (int, int) { return b.width, b.height }

func (b *Buffer) SetCell(x, y int, cell Cell) {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		b.cells[y][x] = cell
	}
}

func (b *Buffer) Cell(x, y int) Cell {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		return b.cells[y][x]
	}
	return EmptyCell()
}

func (b *Buffer) Clear() {
	for y := range b.cells {
		for x := range b.cells[y] {
			b.cells[y][x] = EmptyCell()
		}
	}
}

func (b *Buffer) Show() { b.shows++ }

// Shows returns how many times Show was called.
func (b *Buffer) Shows() int { return b.shows }

func (b *Buffer) PollEvent() Event { return <-b.events }

func (b *Buffer) PostEvent(ev Event) {
	select {
	case b.events <- ev:
	default:
	}
}

// Resize changes the size and clears the content, then queues a resize
// event.
func (b *Buffer) Resize(width, height int) {
	b.width, b.height = max(width, 0), max(height, 0)
	b.cells = make([][]Cell, b.height)
	for y := range b.cells {
		b.cells[y] = make([]Cell, b.width)
	}
	b.Clear()
	b.PostEvent(Event{Type: EventResize, Width: b.width, Height: b.height})
}

// Line returns row y as text. The trailing cell of a wide rune holds rune
// 0 and is skipped.
func (b *Buffer) Line(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	var sb strings.Builder
	for _, c := range b.cells[y] {
		if c.Rune != 0 {
			sb.WriteRune(c.Rune)
		}
	}
	return sb.String()
}

// String returns the whole content, one line per row.
func (b *Buffer) String() string {
	lines := make([]string, b.height)
	for y := range lines {
		lines[y] = b.Line(y)
	}
	return strings.Join(lines, "\n")
}
