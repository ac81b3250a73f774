package grid

import (
	"github.com/dshills/gridflow/internal/notify"
)

// row is one grid row: a reference per column plus an optional height.
type row struct {
	refs   []cellID
	height float64
}

// Grid owns rows of cell references and the cells they resolve to.
// A Grid is not safe for concurrent use; it is driven from the UI loop.
type Grid struct {
	rows    []*row
	cols    int
	widths  []float64
	cells   map[cellID]*Cell
	nextID  cellID
	changes *notify.Notifier[Change]
}

// New creates a grid of the given size with one blank cell per position.
// Negative sizes are treated as zero.
func New(rows, cols int) *Grid {
	g := &Grid{
		cells:   make(map[cellID]*Cell),
		changes: notify.New[Change](),
	}
	g.reset(max(rows, 0), max(cols, 0))
	return g
}

func (g *Grid) reset(rows, cols int) {
	g.cells = make(map[cellID]*Cell, rows*cols)
	g.cols = cols
	g.widths = make([]float64, cols)
	g.rows = make([]*row, rows)
	for r := 0; r < rows; r++ {
		g.rows[r] = g.newRow(r)
	}
}

func (g *Grid) newRow(r int) *row {
	rw := &row{refs: make([]cellID, g.cols)}
	for c := 0; c < g.cols; c++ {
		rw.refs[c] = g.newCell(r, c).id
	}
	return rw
}

func (g *Grid) newCell(r, c int) *Cell {
	g.nextID++
	cell := &Cell{id: g.nextID, row: r, col: c, rowSpan: 1, colSpan: 1}
	g.cells[cell.id] = cell
	return cell
}

// Subscribe registers an observer for grid changes.
func (g *Grid) Subscribe(observer notify.Observer[Change]) *notify.Subscription[Change] {
	return g.changes.Subscribe(observer)
}

// RowCount returns the number of rows.
func (g *Grid) RowCount() int { return len(g.rows) }

// ColumnCount returns the number of columns.
func (g *Grid) ColumnCount() int { return g.cols }

// InBounds reports whether (r, c) is a valid position.
func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && r < len(g.rows) && c >= 0 && c < g.cols
}

// CellAt returns the cell referenced by (r, c), or nil when the position
// is out of range.
func (g *Grid) CellAt(r, c int) *Cell {
	if !g.InBounds(r, c) {
		return nil
	}
	return g.cells[g.rows[r].refs[c]]
}

// IsAnchor reports whether (r, c) is the anchor of the cell it references.
func (g *Grid) IsAnchor(r, c int) bool {
	cell := g.CellAt(r, c)
	return cell != nil && cell.row == r && cell.col == c
}

// CellCount returns the number of distinct cells in the grid.
func (g *Grid) CellCount() int { return len(g.cells) }

// SetValue sets the value of the cell referenced by (r, c). Because
// covered positions share their anchor's Cell, the change is visible from
// every position of the span.
func (g *Grid) SetValue(r, c int, value any) {
	cell := g.CellAt(r, c)
	if cell == nil {
		return
	}
	cell.value = value
	cell.text = formatValue(value)
	g.changes.Notify(Change{
		Type:  ChangeValue,
		Axis:  AxisRow,
		Index: cell.row,
		Count: cell.rowSpan,
		Cell:  cell.Anchor(),
	})
}

// RowHeight returns the row's explicit height, or 0 if it uses the default.
func (g *Grid) RowHeight(r int) float64 {
	if r < 0 || r >= len(g.rows) {
		return 0
	}
	return g.rows[r].height
}

// SetRowHeight sets an explicit row height. Zero restores the default.
func (g *Grid) SetRowHeight(r int, height float64) {
	if r < 0 || r >= len(g.rows) {
		return
	}
	g.rows[r].height = max(height, 0)
	g.changes.Notify(Change{Type: ChangeGeometry, Axis: AxisRow, Index: r, Count: 1})
}

// ColumnWidth returns the column's explicit width, or 0 if it uses the default.
func (g *Grid) ColumnWidth(c int) float64 {
	if c < 0 || c >= g.cols {
		return 0
	}
	return g.widths[c]
}

// SetColumnWidth sets an explicit column width. Zero restores the default.
func (g *Grid) SetColumnWidth(c int, width float64) {
	if c < 0 || c >= g.cols {
		return
	}
	g.widths[c] = max(width, 0)
	g.changes.Notify(Change{Type: ChangeGeometry, Axis: AxisColumn, Index: c, Count: 1})
}

// Replace discards all content and resizes the grid to rows x cols blank
// cells.
func (g *Grid) Replace(rows, cols int) {
	g.reset(max(rows, 0), max(cols, 0))
	g.changes.Notify(Change{Type: ChangeReplace, Axis: AxisRow, Index: 0, Count: len(g.rows)})
}

// Load replaces the grid content with the given values. Rows shorter than
// the widest row are padded with blank cells.
func (g *Grid) Load(values [][]any) {
	cols := 0
	for _, r := range values {
		cols = max(cols, len(r))
	}
	g.reset(len(values), cols)
	for r, vals := range values {
		for c, v := range vals {
			cell := g.cells[g.rows[r].refs[c]]
			cell.value = v
			cell.text = formatValue(v)
		}
	}
	g.changes.Notify(Change{Type: ChangeReplace, Axis: AxisRow, Index: 0, Count: len(g.rows)})
}

// sweep drops cells no longer referenced by any position.
func (g *Grid) sweep() {
	live := make(map[cellID]struct{}, len(g.cells))
	for _, rw := range g.rows {
		for _, id := range rw.refs {
			live[id] = struct{}{}
		}
	}
	for id := range g.cells {
		if _, ok := live[id]; !ok {
			delete(g.cells, id)
		}
	}
}
