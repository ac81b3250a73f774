package render

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/gridflow/internal/logging"
	"github.com/dshills/gridflow/internal/render/backend"
	"github.com/dshills/gridflow/internal/sheet"
	"github.com/dshills/gridflow/internal/view"
)

// Theme holds the painter styles.
type Theme struct {
	Normal      backend.Style
	Header      backend.Style
	FixedRow    backend.Style
	FixedColumn backend.Style
}

// DefaultTheme returns the default styles.
func DefaultTheme() Theme {
	def := backend.DefaultStyle()
	return Theme{
		Normal:      def,
		Header:      def.With(backend.AttrReverse),
		FixedRow:    def.With(backend.AttrBold),
		FixedColumn: def.With(backend.AttrDim),
	}
}

// Options configures a Painter.
type Options struct {
	// Header draws a line of column names above the grid.
	Header bool

	// Ellipsis marks truncated text.
	Ellipsis string

	Theme  Theme
	Logger *logging.Logger
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		Header:   true,
		Ellipsis: "…",
		Theme:    DefaultTheme(),
	}
}

// Painter draws sheets.
type Painter struct {
	backend backend.Backend
	opts    Options
	log     *logging.Logger
}

// New creates a painter on b.
func New(b backend.Backend, opts Options) *Painter {
	return &Painter{
		backend: b,
		opts:    opts,
		log:     logging.OrNull(opts.Logger).WithComponent("render"),
	}
}

// GridArea returns the size available to the grid, below the header.
func (p *Painter) GridArea() (width, height int) {
	w, h := p.backend.Size()
	if p.opts.Header {
		h--
	}
	return w, max(h, 0)
}

// Paint draws the live window of s and flushes the backend.
func (p *Painter) Paint(s *sheet.Sheet) {
	p.backend.Clear()
	top := 0
	if p.opts.Header {
		p.paintHeader(s)
		top = 1
	}

	width, height := p.backend.Size()
	theme := p.opts.Theme
	cells := 0
	for _, r := range s.Visible() {
		style := theme.Normal
		if r.Fixed() {
			style = theme.FixedRow
			// Fixed rows hide whatever scrolled underneath.
			p.fill(0, top+int(math.Floor(r.DisplayY())), width, int(r.Height()), top, height, style)
		}
		for _, cv := range r.Children() {
			st := style
			if cv.FixedColumn() {
				st.Attr |= theme.FixedColumn.Attr
			}
			if cv.Editing() {
				st = st.With(backend.AttrUnderline)
			}
			p.paintCell(cv.Bounds(), cv.Text(), st, top, width, height)
			cells++
		}
	}
	p.log.Debug("painted %d rows, %d cells", len(s.Visible()), cells)
	p.backend.Show()
}

func (p *Painter) paintHeader(s *sheet.Sheet) {
	width, _ := p.backend.Size()
	style := p.opts.Theme.Header
	p.fill(0, 0, width, 1, 0, 1, style)

	hscroll := s.HorizontalScroll()
	cols := s.Grid().ColumnCount()
	for c := 0; c < cols; c++ {
		if s.Fixed().IsFixedColumn(c) {
			continue
		}
		x := s.ColumnX(c) - hscroll
		p.paintCell(view.Rect{X: x, Y: 0, Width: s.ColumnWidth(c), Height: 1}, ColumnName(c), style, 0, width, 1)
	}
	fixedStyle := style
	fixedStyle.Attr |= p.opts.Theme.FixedColumn.Attr
	for _, slot := range s.Fixed().LayoutColumns(hscroll, s) {
		rect := view.Rect{X: slot.X - hscroll, Y: 0, Width: slot.Width, Height: 1}
		p.paintCell(rect, ColumnName(slot.Column), fixedStyle, 0, width, 1)
	}
}

// paintCell fills the cell rectangle and writes the text on its first
// visible line, clipped to [0, width) x [top, height).
func (p *Painter) paintCell(b view.Rect, text string, style backend.Style, top, width, height int) {
	x0 := int(math.Floor(b.X))
	y0 := top + int(math.Floor(b.Y))
	w, h := int(b.Width), int(b.Height)
	p.fill(x0, y0, w, h, top, height, style)

	y := max(y0, top)
	if y >= height || y >= y0+h || w <= 1 {
		return
	}
	text = runewidth.Truncate(strings.ReplaceAll(text, "\n", " "), w-1, p.opts.Ellipsis)
	x := x0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x >= 0 && x+rw <= width {
			p.backend.SetCell(x, y, backend.Cell{Rune: r, Style: style})
			if rw == 2 {
				p.backend.SetCell(x+1, y, backend.Cell{Rune: 0, Style: style})
			}
		}
		x += rw
	}
}

func (p *Painter) fill(x0, y0, w, h, top, height int, style backend.Style) {
	width, _ := p.backend.Size()
	blank := backend.Cell{Rune: ' ', Style: style}
	for y := max(y0, top); y < y0+h && y < height; y++ {
		for x := max(x0, 0); x < x0+w && x < width; x++ {
			p.backend.SetCell(x, y, blank)
		}
	}
}

// ColumnName returns the spreadsheet name of column c: A..Z, AA, AB...
func ColumnName(c int) string {
	if c < 0 {
		return ""
	}
	var b []byte
	for c >= 0 {
		b = append([]byte{byte('A' + c%26)}, b...)
		c = c/26 - 1
	}
	return string(b)
}
