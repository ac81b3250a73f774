package grid

import "fmt"

// cellID identifies a Cell in a Grid's id table.
type cellID uint64

// Coord is a (row, column) grid position.
type Coord struct {
	Row int
	Col int
}

// Cell is the data owned by one anchor position. Every position covered
// by the cell's span references the same Cell.
type Cell struct {
	id      cellID
	row     int
	col     int
	rowSpan int
	colSpan int
	value   any
	text    string
}

// Row returns the anchor row.
func (c *Cell) Row() int { return c.row }

// Column returns the anchor column.
func (c *Cell) Column() int { return c.col }

// Anchor returns the anchor position.
func (c *Cell) Anchor() Coord { return Coord{Row: c.row, Col: c.col} }

// RowSpan returns the number of rows the cell covers.
func (c *Cell) RowSpan() int { return c.rowSpan }

// ColumnSpan returns the number of columns the cell covers.
func (c *Cell) ColumnSpan() int { return c.colSpan }

// IsSpanning reports whether the cell covers more than one position.
func (c *Cell) IsSpanning() bool { return c.rowSpan > 1 || c.colSpan > 1 }

// LastRow returns the last row covered by the span.
func (c *Cell) LastRow() int { return c.row + c.rowSpan - 1 }

// LastColumn returns the last column covered by the span.
func (c *Cell) LastColumn() int { return c.col + c.colSpan - 1 }

// Contains reports whether (row, col) lies inside the span rectangle.
func (c *Cell) Contains(row, col int) bool {
	return row >= c.row && row < c.row+c.rowSpan &&
		col >= c.col && col < c.col+c.colSpan
}

// Value returns the cell value.
func (c *Cell) Value() any { return c.value }

// Text returns the display string.
func (c *Cell) Text() string { return c.text }

// String returns a debug representation.
func (c *Cell) String() string {
	return fmt.Sprintf("Cell(%d,%d %dx%d %q)", c.row, c.col, c.rowSpan, c.colSpan, c.text)
}

// formatValue produces the display string for a value.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
