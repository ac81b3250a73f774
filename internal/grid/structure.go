package grid

// InsertRows inserts count blank rows before index. The index is clamped
// to [0, RowCount]. A row span that crosses the insertion point grows to
// cover the new rows.
func (g *Grid) InsertRows(index, count int) {
	if count <= 0 {
		return
	}
	index = clamp(index, 0, len(g.rows))

	// Spans crossing the boundary between index-1 and index.
	crossing := make([]cellID, g.cols)
	grown := make(map[cellID]bool)
	if index > 0 && index < len(g.rows) {
		for c := 0; c < g.cols; c++ {
			above, below := g.rows[index-1].refs[c], g.rows[index].refs[c]
			if above == below {
				crossing[c] = above
				if !grown[above] {
					grown[above] = true
					g.cells[above].rowSpan += count
				}
			}
		}
	}

	for _, cell := range g.cells {
		if cell.row >= index && !grown[cell.id] {
			cell.row += count
		}
	}

	added := make([]*row, count)
	for i := range added {
		rw := &row{refs: make([]cellID, g.cols)}
		for c := 0; c < g.cols; c++ {
			if crossing[c] != 0 {
				rw.refs[c] = crossing[c]
			} else {
				rw.refs[c] = g.newCell(index+i, c).id
			}
		}
		added[i] = rw
	}

	rows := make([]*row, 0, len(g.rows)+count)
	rows = append(rows, g.rows[:index]...)
	rows = append(rows, added...)
	rows = append(rows, g.rows[index:]...)
	g.rows = rows

	g.changes.Notify(Change{Type: ChangeInsert, Axis: AxisRow, Index: index, Count: count})
}

// RemoveRows removes count rows starting at index. The range is clamped
// to the grid. Spans lose the removed rows; a span whose anchor row is
// removed is re-anchored at the first surviving row it covered.
func (g *Grid) RemoveRows(index, count int) {
	if count <= 0 || index >= len(g.rows) {
		return
	}
	index = max(index, 0)
	count = min(count, len(g.rows)-index)
	end := index + count

	for _, cell := range g.cells {
		lo := max(cell.row, index)
		hi := min(cell.row+cell.rowSpan, end)
		if hi > lo {
			cell.rowSpan = max(cell.rowSpan-(hi-lo), 1)
		}
		switch {
		case cell.row >= end:
			cell.row -= count
		case cell.row >= index:
			cell.row = index
		}
	}

	g.rows = append(g.rows[:index:index], g.rows[end:]...)
	g.sweep()

	g.changes.Notify(Change{Type: ChangeRemove, Axis: AxisRow, Index: index, Count: count})
}

// InsertColumns inserts count blank columns before index. The index is
// clamped to [0, ColumnCount]. A column span crossing the insertion point
// grows to cover the new columns.
func (g *Grid) InsertColumns(index, count int) {
	if count <= 0 {
		return
	}
	index = clamp(index, 0, g.cols)

	crossing := make([]cellID, len(g.rows))
	grown := make(map[cellID]bool)
	if index > 0 && index < g.cols {
		for r, rw := range g.rows {
			left, right := rw.refs[index-1], rw.refs[index]
			if left == right {
				crossing[r] = left
				if !grown[left] {
					grown[left] = true
					g.cells[left].colSpan += count
				}
			}
		}
	}

	for _, cell := range g.cells {
		if cell.col >= index && !grown[cell.id] {
			cell.col += count
		}
	}

	for r, rw := range g.rows {
		refs := make([]cellID, 0, g.cols+count)
		refs = append(refs, rw.refs[:index]...)
		for i := 0; i < count; i++ {
			if crossing[r] != 0 {
				refs = append(refs, crossing[r])
			} else {
				refs = append(refs, g.newCell(r, index+i).id)
			}
		}
		refs = append(refs, rw.refs[index:]...)
		rw.refs = refs
	}

	widths := make([]float64, 0, g.cols+count)
	widths = append(widths, g.widths[:index]...)
	widths = append(widths, make([]float64, count)...)
	widths = append(widths, g.widths[index:]...)
	g.widths = widths
	g.cols += count

	g.changes.Notify(Change{Type: ChangeInsert, Axis: AxisColumn, Index: index, Count: count})
}

// RemoveColumns removes count columns starting at index, adjusting spans
// the same way RemoveRows does.
func (g *Grid) RemoveColumns(index, count int) {
	if count <= 0 || index >= g.cols {
		return
	}
	index = max(index, 0)
	count = min(count, g.cols-index)
	end := index + count

	for _, cell := range g.cells {
		lo := max(cell.col, index)
		hi := min(cell.col+cell.colSpan, end)
		if hi > lo {
			cell.colSpan = max(cell.colSpan-(hi-lo), 1)
		}
		switch {
		case cell.col >= end:
			cell.col -= count
		case cell.col >= index:
			cell.col = index
		}
	}

	for _, rw := range g.rows {
		rw.refs = append(rw.refs[:index:index], rw.refs[end:]...)
	}
	g.widths = append(g.widths[:index:index], g.widths[end:]...)
	g.cols -= count
	g.sweep()

	g.changes.Notify(Change{Type: ChangeRemove, Axis: AxisColumn, Index: index, Count: count})
}
