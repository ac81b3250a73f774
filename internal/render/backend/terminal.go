package backend

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Terminal is a Backend on a tcell screen.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewTerminal creates a terminal backend for the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalScreen wraps an existing screen, such as a simulation screen.
func NewTerminalScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	t.screen.HideCursor()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, cell Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetContent(x, y, cell.Rune, nil, toTcellStyle(cell.Style))
}

func (t *Terminal) Cell(x, y int) Cell {
	t.mu.Lock()
	defer t.mu.Unlock()

	mainc, _, style, _ := t.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	return Cell{Rune: mainc, Style: fromTcellStyle(style)}
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) PollEvent() Event {
	return fromTcellEvent(t.screen.PollEvent())
}

func (t *Terminal) PostEvent(ev Event) {
	switch ev.Type {
	case EventKey:
		_ = t.screen.PostEvent(tcell.NewEventKey(toTcellKey(ev.Key), ev.Rune, tcell.ModNone)) // queue may be full
	case EventInterrupt:
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(ev.Data))
	}
}

func toTcellStyle(s Style) tcell.Style {
	style := tcell.StyleDefault
	if s.Foreground != ColorDefault {
		style = style.Foreground(tcell.PaletteColor(int(s.Foreground)))
	}
	if s.Background != ColorDefault {
		style = style.Background(tcell.PaletteColor(int(s.Background)))
	}
	return style.
		Bold(s.Attr.Has(AttrBold)).
		Dim(s.Attr.Has(AttrDim)).
		Underline(s.Attr.Has(AttrUnderline)).
		Reverse(s.Attr.Has(AttrReverse))
}

func fromTcellStyle(ts tcell.Style) Style {
	fg, bg, attrs := ts.Decompose()
	s := Style{Foreground: fromTcellColor(fg), Background: fromTcellColor(bg)}
	if attrs&tcell.AttrBold != 0 {
		s.Attr |= AttrBold
	}
	if attrs&tcell.AttrDim != 0 {
		s.Attr |= AttrDim
	}
	if attrs&tcell.AttrUnderline != 0 {
		s.Attr |= AttrUnderline
	}
	if attrs&tcell.AttrReverse != 0 {
		s.Attr |= AttrReverse
	}
	return s
}

func fromTcellColor(c tcell.Color) Color {
	if c == tcell.ColorDefault || c < tcell.ColorValid || c >= tcell.ColorIsRGB {
		return ColorDefault
	}
	return Color(c - tcell.ColorValid)
}

var keys = map[tcell.Key]Key{
	tcell.KeyRune:       KeyRune,
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyTab:        KeyTab,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyCtrlC:      KeyCtrlC,
}

func fromTcellEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{Type: EventKey, Key: keys[e.Key()], Rune: e.Rune()}
	case *tcell.EventInterrupt:
		return Event{Type: EventInterrupt, Data: e.Data()}
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}
	default:
		return Event{Type: EventNone}
	}
}

func toTcellKey(k Key) tcell.Key {
	for tk, key := range keys {
		if key == k && tk != tcell.KeyBackspace {
			return tk
		}
	}
	return tcell.KeyRune
}
