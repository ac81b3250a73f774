package view

import "fmt"

// Rect is a rectangle in viewport coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// CellView displays one grid cell inside a Row.
type CellView struct {
	row, col int
	parent   *Row

	// Geometry relative to the parent row, plus a translation applied on
	// top of it.
	x, y, width, height float64
	tx, ty              float64

	text        string
	fixedColumn bool
	editing     bool
}

// NewCellView creates a view for the cell anchored at (row, col).
func NewCellView(row, col int) *CellView {
	return &CellView{row: row, col: col}
}

// Row returns the anchor row of the displayed cell.
func (c *CellView) Row() int { return c.row }

// Column returns the anchor column of the displayed cell.
func (c *CellView) Column() int { return c.col }

// Parent returns the containing row, or nil.
func (c *CellView) Parent() *Row { return c.parent }

// SetGeometry sets the position relative to the parent and the size.
func (c *CellView) SetGeometry(x, y, width, height float64) {
	c.x, c.y, c.width, c.height = x, y, width, height
}

// Geometry returns the position relative to the parent and the size.
func (c *CellView) Geometry() (x, y, width, height float64) {
	return c.x, c.y, c.width, c.height
}

// Translation returns the translation offset.
func (c *CellView) Translation() (tx, ty float64) { return c.tx, c.ty }

// SetTranslation sets the translation offset.
func (c *CellView) SetTranslation(tx, ty float64) { c.tx, c.ty = tx, ty }

// Bounds returns the on-screen rectangle, including the parent's display
// position and the translation.
func (c *CellView) Bounds() Rect {
	var py float64
	if c.parent != nil {
		py = c.parent.displayY
	}
	return Rect{X: c.x + c.tx, Y: py + c.y + c.ty, Width: c.width, Height: c.height}
}

// Text returns the display string.
func (c *CellView) Text() string { return c.text }

// SetText sets the display string.
func (c *CellView) SetText(s string) { c.text = s }

// FixedColumn reports whether the cell belongs to a fixed column.
func (c *CellView) FixedColumn() bool { return c.fixedColumn }

// SetFixedColumn marks the cell as belonging to a fixed column.
func (c *CellView) SetFixedColumn(f bool) { c.fixedColumn = f }

// Editing reports whether the cell is being edited.
func (c *CellView) Editing() bool { return c.editing }

// SetEditing sets the editing flag.
func (c *CellView) SetEditing(e bool) { c.editing = e }

// String returns a debug representation.
func (c *CellView) String() string {
	return fmt.Sprintf("CellView(%d,%d %q)", c.row, c.col, c.text)
}
