// Package sheet binds a grid to the virtualization engine.
//
// A Sheet owns the live window for one grid: the flow that virtualizes its
// rows, the coordinator for fixed rows and columns, and the coordinator for
// editing spanning cells. Every row view in the window is populated with
// cell views for the anchors it shows, positioned for the current
// horizontal scroll offset.
package sheet

import (
	"github.com/google/uuid"

	"github.com/dshills/gridflow/internal/fixed"
	"github.com/dshills/gridflow/internal/flow"
	"github.com/dshills/gridflow/internal/grid"
	"github.com/dshills/gridflow/internal/logging"
	"github.com/dshills/gridflow/internal/notify"
	"github.com/dshills/gridflow/internal/spanedit"
	"github.com/dshills/gridflow/internal/view"
)

// Stats reports sheet activity.
type Stats struct {
	Flow          flow.Stats
	Pool          flow.PoolStats
	Populates     int
	ShortCircuits int
}

// popKey identifies what a row's cell views were built for.
type popKey struct {
	index  int
	host   bool
	pinned bool
	fixed  bool
	gen    int
}

// Sheet is a virtualized view of a grid.
type Sheet struct {
	id   uuid.UUID
	grid *grid.Grid
	opts Options
	log  *logging.Logger

	pool  *flow.Pool
	flow  *flow.Flow
	fixed *fixed.Coordinator
	edit  *spanedit.Coordinator

	gridSub *notify.Subscription[grid.Change]

	width   float64
	hscroll float64
	// colX[c] is the content x of column c; colX[cols] is the total width.
	colX []float64

	populated map[*view.Row]popKey
	// gen changes whenever horizontal geometry does.
	gen   int
	dirty bool
	last  struct {
		first   int
		hscroll float64
		width   float64
		valid   bool
	}

	populates     int
	shortCircuits int
}

// New creates a sheet over g. The viewport is empty until Resize.
func New(g *grid.Grid, opts Options) *Sheet {
	def := DefaultOptions()
	if opts.RowHeight <= 0 {
		opts.RowHeight = def.RowHeight
	}
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = def.ColumnWidth
	}

	s := &Sheet{
		id:        uuid.New(),
		grid:      g,
		opts:      opts,
		populated: make(map[*view.Row]popKey),
		dirty:     true,
	}
	s.log = logging.OrNull(opts.Logger).WithField("sheet", s.id.String()[:8])

	factory := view.NewRow
	if !opts.Cacheable {
		factory = func() *view.Row {
			r := view.NewRow()
			r.SetCacheable(false)
			return r
		}
	}
	s.pool = flow.NewPool(opts.Pool, factory, s.bound)

	s.fixed = fixed.New(s.pool, s.log)
	s.fixed.SetBounds(g.RowCount(), g.ColumnCount())
	s.fixed.SetRows(opts.FixedRows)
	s.fixed.SetColumns(opts.FixedColumns)

	s.flow = flow.New(rowSource{s}, s.pool, flow.WithOverlay(s.fixed), flow.WithLogger(s.log))
	s.edit = spanedit.New(spanedit.LocatorFunc(s.container), s.store, s.log)

	s.recomputeColumns()
	s.gridSub = g.Subscribe(s.onGridChange)
	return s
}

// rowSource adapts the sheet to the flow.
type rowSource struct{ s *Sheet }

func (r rowSource) Count() int                   { return r.s.grid.RowCount() }
func (r rowSource) CellLength(index int) float64 { return r.s.RowHeight(index) }
func (r rowSource) IsFixed(index int) bool       { return r.s.fixed.IsFixedRow(index) }

// ID returns the sheet's instance id.
func (s *Sheet) ID() uuid.UUID { return s.id }

// Grid returns the underlying grid.
func (s *Sheet) Grid() *grid.Grid { return s.grid }

// Flow returns the virtualization engine.
func (s *Sheet) Flow() *flow.Flow { return s.flow }

// Fixed returns the fixed row and column coordinator.
func (s *Sheet) Fixed() *fixed.Coordinator { return s.fixed }

// RowHeight returns the height of row r.
func (s *Sheet) RowHeight(r int) float64 {
	if h := s.grid.RowHeight(r); h > 0 {
		return h
	}
	return s.opts.RowHeight
}

// ColumnWidth returns the width of column c.
func (s *Sheet) ColumnWidth(c int) float64 {
	if w := s.grid.ColumnWidth(c); w > 0 {
		return w
	}
	return s.opts.ColumnWidth
}

// ColumnX returns the content x of column c.
func (s *Sheet) ColumnX(c int) float64 {
	return s.colX[min(max(c, 0), len(s.colX)-1)]
}

// ContentWidth returns the total width of all columns.
func (s *Sheet) ContentWidth() float64 { return s.colX[len(s.colX)-1] }

func (s *Sheet) recomputeColumns() {
	n := s.grid.ColumnCount()
	s.colX = make([]float64, n+1)
	for c := 0; c < n; c++ {
		s.colX[c+1] = s.colX[c] + s.ColumnWidth(c)
	}
}

// Size returns the viewport size.
func (s *Sheet) Size() (width, height float64) {
	return s.width, s.flow.ViewportLength()
}

// Resize sets the viewport size.
func (s *Sheet) Resize(width, height float64) {
	s.commitEdit()
	if width = max(width, 0); width != s.width {
		s.width = width
		s.gen++
		s.hscroll = s.clampScroll(s.hscroll)
	}
	s.flow.SetViewportLength(height)
	s.LayoutTotal()
}

// HorizontalScroll returns the horizontal scroll offset.
func (s *Sheet) HorizontalScroll() float64 { return s.hscroll }

// SetHorizontalScroll scrolls horizontally, clamped to the content.
func (s *Sheet) SetHorizontalScroll(x float64) {
	x = s.clampScroll(x)
	if x == s.hscroll {
		return
	}
	s.commitEdit()
	s.hscroll = x
	s.gen++
	s.LayoutTotal()
}

func (s *Sheet) clampScroll(x float64) float64 {
	return min(max(x, 0), max(s.ContentWidth()-s.width, 0))
}

// Show scrolls so row index starts right below the fixed rows that
// precede it. Out of range indices are clamped.
func (s *Sheet) Show(index int) {
	if s.grid.RowCount() == 0 {
		return
	}
	s.commitEdit()
	index = min(max(index, 0), s.grid.RowCount()-1)
	s.flow.ShowAt(index, s.fixed.Reserved(index, s.RowHeight))
	s.LayoutTotal()
}

// ScrollTo makes row index visible without forcing it to the top.
func (s *Sheet) ScrollTo(index int) {
	if s.grid.RowCount() == 0 {
		return
	}
	s.commitEdit()
	index = min(max(index, 0), s.grid.RowCount()-1)
	s.flow.ScrollTo(index, s.fixed.Reserved(index, s.RowHeight))
	s.LayoutTotal()
}

// ScrollPixels scrolls vertically by delta.
func (s *Sheet) ScrollPixels(delta float64) {
	s.commitEdit()
	s.flow.ScrollPixels(delta)
	s.LayoutTotal()
}

// Position returns the normalized vertical scroll position.
func (s *Sheet) Position() float64 { return s.flow.Position() }

// SetPosition scrolls to a normalized vertical position.
func (s *Sheet) SetPosition(p float64) {
	s.commitEdit()
	s.flow.SetPosition(p)
	s.LayoutTotal()
}

// SubscribeLayout registers an observer for layout passes.
func (s *Sheet) SubscribeLayout(observer notify.Observer[flow.Event]) *notify.Subscription[flow.Event] {
	return s.flow.Subscribe(observer)
}

// SubscribeFixed registers an observer for fixed row and column changes.
func (s *Sheet) SubscribeFixed(observer notify.Observer[fixed.Change]) *notify.Subscription[fixed.Change] {
	return s.fixed.Subscribe(observer)
}

// Visible returns the rows to paint, in paint order.
func (s *Sheet) Visible() []*view.Row { return s.flow.Visible() }

// Stats returns a snapshot of sheet activity.
func (s *Sheet) Stats() Stats {
	return Stats{
		Flow:          s.flow.Stats(),
		Pool:          s.pool.Stats(),
		Populates:     s.populates,
		ShortCircuits: s.shortCircuits,
	}
}

// Close detaches the sheet from its grid and drops pooled rows.
func (s *Sheet) Close() {
	if s.edit.State() == spanedit.Editing {
		_ = s.edit.Cancel()
	}
	s.gridSub.Unsubscribe()
	s.pool.Clear()
}

// bound runs whenever the pool binds a row.
func (s *Sheet) bound(r *view.Row, _ int) {
	delete(s.populated, r)
	s.dirty = true
}

func (s *Sheet) invalidate() {
	clear(s.populated)
	s.dirty = true
}

func (s *Sheet) onGridChange(c grid.Change) {
	if s.edit.State() == spanedit.Editing {
		if c.Structural() {
			s.log.Debug("%s of %s %d cancels the active edit", c.Type, c.Axis, c.Index)
			_ = s.edit.Cancel()
		} else {
			s.commitEdit()
		}
	}

	rows, cols := s.grid.RowCount(), s.grid.ColumnCount()
	switch c.Type {
	case grid.ChangeInsert, grid.ChangeRemove:
		s.fixed.SetBounds(rows, cols)
		switch {
		case c.Axis == grid.AxisColumn:
			s.columnsChanged()
			s.flow.ItemsReplaced()
		case c.Type == grid.ChangeInsert:
			s.flow.ItemsInserted(c.Index, c.Count)
		default:
			s.flow.ItemsRemoved(c.Index, c.Count)
		}
	case grid.ChangeReplace:
		s.fixed.SetBounds(rows, cols)
		s.columnsChanged()
		s.flow.ItemsReplaced()
	case grid.ChangeSpan, grid.ChangeValue:
		s.flow.ItemsChanged(c.Index, c.Count)
	case grid.ChangeGeometry:
		if c.Axis == grid.AxisColumn {
			s.columnsChanged()
		} else {
			s.flow.ItemsChanged(c.Index, c.Count)
		}
	}

	// Spans, heights and structure move hosted cells across rows.
	if c.Type != grid.ChangeValue {
		s.invalidate()
	}
	s.LayoutTotal()
}

func (s *Sheet) columnsChanged() {
	s.recomputeColumns()
	s.hscroll = s.clampScroll(s.hscroll)
	s.gen++
}

// SetSpan sets a span on the grid; see grid.Grid.SetSpan.
func (s *Sheet) SetSpan(row, col, rowSpan, colSpan int) *grid.Cell {
	s.commitEdit()
	return s.grid.SetSpan(row, col, rowSpan, colSpan)
}
