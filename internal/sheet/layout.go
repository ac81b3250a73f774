package sheet

import (
	"github.com/dshills/gridflow/internal/fixed"
	"github.com/dshills/gridflow/internal/grid"
	"github.com/dshills/gridflow/internal/view"
)

// LayoutTotal brings the live window and the cell views of every row in
// it up to date. Nothing happens when the first visible row, the
// horizontal scroll offset and the visible width are unchanged and no row
// was rebound since the last call. It reports whether any work was done.
func (s *Sheet) LayoutTotal() bool {
	s.flow.Layout()

	first := s.flow.FirstVisibleIndex()
	if s.last.valid && !s.dirty && first == s.last.first &&
		s.hscroll == s.last.hscroll && s.width == s.last.width {
		s.shortCircuits++
		return false
	}
	s.commitEdit()

	var host *view.Row
	if cells := s.flow.Cells(); len(cells) > 0 {
		host = cells[0]
	}
	cols := s.visibleColumns()
	slots := s.fixed.LayoutColumns(s.hscroll, s)

	visible := s.flow.Visible()
	next := make(map[*view.Row]popKey, len(visible))
	for _, r := range visible {
		key := popKey{
			index:  r.Index(),
			host:   r == host,
			pinned: r.Role() == view.RolePinned,
			fixed:  r.Fixed(),
			gen:    s.gen,
		}
		if prev, ok := s.populated[r]; !ok || prev != key {
			s.populate(r, key, cols, slots)
			s.populates++
		}
		next[r] = key
	}
	s.populated = next

	s.dirty = false
	s.last.first = first
	s.last.hscroll = s.hscroll
	s.last.width = s.width
	s.last.valid = true
	return true
}

// visibleColumns returns the non-fixed columns intersecting the viewport.
func (s *Sheet) visibleColumns() []int {
	var cols []int
	right := s.hscroll + s.width
	for c := 0; c < len(s.colX)-1; c++ {
		if s.colX[c] >= right {
			break
		}
		if s.colX[c+1] > s.hscroll && !s.fixed.IsFixedColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// populate rebuilds the cell views of r, reusing the existing view of an
// anchor where there is one.
//
// A row shows the cells anchored in it. The host row, the first row of
// the window, also shows spans whose anchor row scrolled above the window,
// offset upward so the visible part lines up. Fixed rows, pinned copies
// included, show their own slice of every span covering them.
func (s *Sheet) populate(r *view.Row, key popKey, cols []int, slots []fixed.Slot) {
	reuse := make(map[grid.Coord]*view.CellView, len(r.Children()))
	for _, cv := range r.Children() {
		reuse[grid.Coord{Row: cv.Row(), Col: cv.Column()}] = cv
	}
	r.Clear()

	index := r.Index()
	seen := make(map[grid.Coord]bool)
	shows := func(cell *grid.Cell) bool {
		a := cell.Anchor()
		if seen[a] {
			return false
		}
		switch {
		case a.Row == index:
			return true
		case a.Row > index:
			return false
		}
		return key.pinned || key.fixed || key.host
	}
	emit := func(cell *grid.Cell, x, width float64, fixedColumn bool) {
		a := cell.Anchor()
		seen[a] = true
		cv := reuse[a]
		if cv == nil {
			cv = view.NewCellView(a.Row, a.Col)
		}
		var y float64
		if a.Row < index {
			y = -s.rowsLength(a.Row, index)
		}
		height := s.rowsLength(a.Row, a.Row+cell.RowSpan())
		if key.pinned || (key.fixed && a.Row < index) {
			y, height = 0, r.Height()
		}
		cv.SetGeometry(x, y, width, height)
		cv.SetTranslation(0, 0)
		cv.SetText(cell.Text())
		cv.SetFixedColumn(fixedColumn)
		r.Add(cv)
	}

	for _, c := range cols {
		cell := s.grid.CellAt(index, c)
		if cell == nil || s.fixed.IsFixedColumn(cell.Column()) || !shows(cell) {
			continue
		}
		a := cell.Anchor()
		emit(cell, s.colX[a.Col]-s.hscroll, s.columnsLength(a.Col, a.Col+cell.ColumnSpan()), false)
	}
	// Fixed columns paint over the scrolled ones.
	for _, slot := range slots {
		cell := s.grid.CellAt(index, slot.Column)
		if cell == nil || cell.Column() != slot.Column || !shows(cell) {
			continue
		}
		emit(cell, slot.X-s.hscroll, slot.Width, true)
	}
}

// rowsLength returns the total height of rows [from, to).
func (s *Sheet) rowsLength(from, to int) float64 {
	var total float64
	for i := from; i < to; i++ {
		total += s.RowHeight(i)
	}
	return total
}

// columnsLength returns the total width of columns [from, to).
func (s *Sheet) columnsLength(from, to int) float64 {
	n := len(s.colX) - 1
	from, to = min(max(from, 0), n), min(max(to, 0), n)
	return s.colX[to] - s.colX[from]
}
