package fixed

// ColumnMetrics provides horizontal geometry.
type ColumnMetrics interface {
	// ColumnX returns the natural content x of a column.
	ColumnX(col int) float64

	// ColumnWidth returns the width of a column.
	ColumnWidth(col int) float64
}

// Slot is the placement of one fixed column.
type Slot struct {
	Column int
	X      float64
	Width  float64
}

// LayoutColumns positions the fixed columns for a horizontal scroll
// offset. Each fixed column sits at its natural x, or at a running offset
// from the scroll position once it would scroll past it. No objects are
// created; this is geometry only.
func (c *Coordinator) LayoutColumns(hscroll float64, m ColumnMetrics) []Slot {
	slots := make([]Slot, 0, len(c.cols))
	running := hscroll
	for _, col := range c.cols {
		if col >= c.colLimit {
			continue
		}
		width := m.ColumnWidth(col)
		slots = append(slots, Slot{
			Column: col,
			X:      max(m.ColumnX(col), running),
			Width:  width,
		})
		running += width
	}
	return slots
}

// Width returns the total width of the fixed columns.
func (c *Coordinator) Width(m ColumnMetrics) float64 {
	var total float64
	for _, col := range c.cols {
		if col < c.colLimit {
			total += m.ColumnWidth(col)
		}
	}
	return total
}
