package source

import (
	"fmt"
	"maps"
	"slices"

	"github.com/dshills/gridflow/internal/grid"
)

// Definition describes a sheet: its values, spans, fixed rows and columns,
// and geometry overrides.
type Definition struct {
	Name string `yaml:"name,omitempty"`

	// Rows holds cell values row by row. Short rows are padded.
	Rows [][]any `yaml:"rows"`

	// RowCount and ColumnCount grow the sheet past the given values.
	RowCount    int `yaml:"row_count,omitempty"`
	ColumnCount int `yaml:"column_count,omitempty"`

	Spans []Span `yaml:"spans,omitempty"`
	Fixed Fixed  `yaml:"fixed,omitempty"`

	RowHeights   map[int]float64 `yaml:"row_heights,omitempty"`
	ColumnWidths map[int]float64 `yaml:"column_widths,omitempty"`
}

// Span is a spanning cell anchored at (Row, Col).
type Span struct {
	Row  int `yaml:"row"`
	Col  int `yaml:"col"`
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// Fixed lists the rows and columns to pin.
type Fixed struct {
	Rows    []int `yaml:"rows,omitempty"`
	Columns []int `yaml:"columns,omitempty"`
}

// Size returns the number of rows and columns the definition produces.
func (d *Definition) Size() (rows, cols int) {
	rows = max(len(d.Rows), d.RowCount)
	cols = d.ColumnCount
	for _, r := range d.Rows {
		cols = max(cols, len(r))
	}
	return rows, cols
}

// Validate checks that every index lies inside the sheet and every span
// and geometry value is positive.
func (d *Definition) Validate() error {
	rows, cols := d.Size()
	if d.RowCount < 0 || d.ColumnCount < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidDefinition, d.RowCount, d.ColumnCount)
	}
	for _, sp := range d.Spans {
		if sp.Row < 0 || sp.Row >= rows || sp.Col < 0 || sp.Col >= cols {
			return fmt.Errorf("%w: span anchor %d,%d outside %dx%d", ErrInvalidDefinition, sp.Row, sp.Col, rows, cols)
		}
		if sp.Rows < 1 || sp.Cols < 1 {
			return fmt.Errorf("%w: span at %d,%d has size %dx%d", ErrInvalidDefinition, sp.Row, sp.Col, sp.Rows, sp.Cols)
		}
	}
	for _, r := range d.Fixed.Rows {
		if r < 0 || r >= rows {
			return fmt.Errorf("%w: fixed row %d outside %d rows", ErrInvalidDefinition, r, rows)
		}
	}
	for _, c := range d.Fixed.Columns {
		if c < 0 || c >= cols {
			return fmt.Errorf("%w: fixed column %d outside %d columns", ErrInvalidDefinition, c, cols)
		}
	}
	for r, h := range d.RowHeights {
		if r < 0 || r >= rows || h <= 0 {
			return fmt.Errorf("%w: row height %v for row %d", ErrInvalidDefinition, h, r)
		}
	}
	for c, w := range d.ColumnWidths {
		if c < 0 || c >= cols || w <= 0 {
			return fmt.Errorf("%w: column width %v for column %d", ErrInvalidDefinition, w, c)
		}
	}
	return nil
}

// Apply validates the definition and replaces the content of g with it.
// Fixed rows and columns are not part of the grid; callers hand
// d.Fixed to the sheet.
func (d *Definition) Apply(g *grid.Grid) error {
	if err := d.Validate(); err != nil {
		return err
	}
	rows, cols := d.Size()
	values := make([][]any, rows)
	for r := range values {
		values[r] = make([]any, cols)
		if r < len(d.Rows) {
			copy(values[r], d.Rows[r])
		}
	}
	g.Load(values)

	for _, sp := range d.Spans {
		g.SetSpan(sp.Row, sp.Col, sp.Rows, sp.Cols)
	}
	for _, r := range slices.Sorted(maps.Keys(d.RowHeights)) {
		g.SetRowHeight(r, d.RowHeights[r])
	}
	for _, c := range slices.Sorted(maps.Keys(d.ColumnWidths)) {
		g.SetColumnWidth(c, d.ColumnWidths[c])
	}
	return nil
}

// Capture builds a definition from the current content of g.
func Capture(g *grid.Grid, fixedRows, fixedColumns []int) *Definition {
	rows, cols := g.RowCount(), g.ColumnCount()
	d := &Definition{
		Rows:  make([][]any, rows),
		Fixed: Fixed{Rows: slices.Clone(fixedRows), Columns: slices.Clone(fixedColumns)},
	}
	for r := range rows {
		d.Rows[r] = make([]any, cols)
		for c := range cols {
			if g.IsAnchor(r, c) {
				d.Rows[r][c] = g.CellAt(r, c).Value()
			}
		}
	}
	for _, cell := range g.Spans() {
		d.Spans = append(d.Spans, Span{
			Row:  cell.Row(),
			Col:  cell.Column(),
			Rows: cell.RowSpan(),
			Cols: cell.ColumnSpan(),
		})
	}
	for r := range rows {
		if h := g.RowHeight(r); h > 0 {
			if d.RowHeights == nil {
				d.RowHeights = make(map[int]float64)
			}
			d.RowHeights[r] = h
		}
	}
	for c := range cols {
		if w := g.ColumnWidth(c); w > 0 {
			if d.ColumnWidths == nil {
				d.ColumnWidths = make(map[int]float64)
			}
			d.ColumnWidths[c] = w
		}
	}
	return d
}
