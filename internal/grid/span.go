package grid

// SetSpan makes the cell anchored at (r, c) cover rowSpan x colSpan
// positions and returns it.
//
// The anchor is clamped into the grid and the span is clamped so it never
// extends past the last row or column. If (r, c) is currently covered by a
// different anchor, a new blank cell is anchored there first. Positions in
// the new rectangle are overwritten with the anchor even when they belong
// to another span; positions the anchor covered before but no longer does
// receive fresh blank cells. SetSpan returns nil on an empty grid.
func (g *Grid) SetSpan(r, c, rowSpan, colSpan int) *Cell {
	if len(g.rows) == 0 || g.cols == 0 {
		return nil
	}
	r = clamp(r, 0, len(g.rows)-1)
	c = clamp(c, 0, g.cols-1)
	rowSpan = clamp(rowSpan, 1, len(g.rows)-r)
	colSpan = clamp(colSpan, 1, g.cols-c)

	displaced := make(map[cellID]bool)
	anchor := g.CellAt(r, c)
	if anchor.row != r || anchor.col != c {
		displaced[anchor.id] = true
		anchor = g.newCell(r, c)
		g.rows[r].refs[c] = anchor.id
	}

	oldRowSpan := anchor.rowSpan
	oldColSpan := anchor.colSpan

	// Release positions that fall outside the new rectangle.
	for i := r; i < r+oldRowSpan && i < len(g.rows); i++ {
		for j := c; j < c+oldColSpan && j < g.cols; j++ {
			if i < r+rowSpan && j < c+colSpan {
				continue
			}
			if g.rows[i].refs[j] == anchor.id {
				g.rows[i].refs[j] = g.newCell(i, j).id
			}
		}
	}

	for i := r; i < r+rowSpan; i++ {
		for j := c; j < c+colSpan; j++ {
			if id := g.rows[i].refs[j]; id != anchor.id {
				displaced[id] = true
			}
			g.rows[i].refs[j] = anchor.id
		}
	}
	anchor.rowSpan = rowSpan
	anchor.colSpan = colSpan

	g.release(displaced)
	g.changes.Notify(Change{
		Type:  ChangeSpan,
		Axis:  AxisRow,
		Index: r,
		Count: max(oldRowSpan, rowSpan),
		Cell:  anchor.Anchor(),
	})
	return anchor
}

// Spans returns every cell covering more than one position, ordered by
// anchor row then column.
func (g *Grid) Spans() []*Cell {
	var spans []*Cell
	seen := make(map[cellID]bool)
	for r, rw := range g.rows {
		for c, id := range rw.refs {
			cell := g.cells[id]
			if seen[id] || !cell.IsSpanning() || cell.row != r || cell.col != c {
				continue
			}
			seen[id] = true
			spans = append(spans, cell)
		}
	}
	return spans
}

// release drops the displaced cells that no position references any more.
// A cell is only ever referenced inside its own rectangle.
func (g *Grid) release(ids map[cellID]bool) {
	for id := range ids {
		if cell := g.cells[id]; cell != nil && !g.referenced(cell) {
			delete(g.cells, id)
		}
	}
}

func (g *Grid) referenced(cell *Cell) bool {
	for i := cell.row; i < cell.row+cell.rowSpan && i < len(g.rows); i++ {
		for j := cell.col; j < cell.col+cell.colSpan && j < g.cols; j++ {
			if g.rows[i].refs[j] == cell.id {
				return true
			}
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
