package grid

// ChangeType identifies the kind of grid mutation.
type ChangeType int

const (
	// ChangeInsert indicates rows or columns were inserted.
	ChangeInsert ChangeType = iota

	// ChangeRemove indicates rows or columns were removed.
	ChangeRemove

	// ChangeReplace indicates the whole grid content was replaced.
	ChangeReplace

	// ChangeSpan indicates a span was set.
	ChangeSpan

	// ChangeValue indicates a cell value changed.
	ChangeValue

	// ChangeGeometry indicates a row height or column width changed.
	ChangeGeometry
)

// String returns the change type name.
func (t ChangeType) String() string {
	switch t {
	case ChangeInsert:
		return "insert"
	case ChangeRemove:
		return "remove"
	case ChangeReplace:
		return "replace"
	case ChangeSpan:
		return "span"
	case ChangeValue:
		return "value"
	case ChangeGeometry:
		return "geometry"
	default:
		return "unknown"
	}
}

// Axis identifies rows or columns.
type Axis int

const (
	AxisRow Axis = iota
	AxisColumn
)

// String returns the axis name.
func (a Axis) String() string {
	if a == AxisColumn {
		return "column"
	}
	return "row"
}

// Change describes one grid mutation.
//
// Index and Count give the affected range along Axis. For span and value
// changes the range covers every row the cell touches (before and after
// the change) and Cell holds the anchor position.
type Change struct {
	Type  ChangeType
	Axis  Axis
	Index int
	Count int
	Cell  Coord
}

// Structural reports whether the change renumbers positions.
func (c Change) Structural() bool {
	return c.Type == ChangeInsert || c.Type == ChangeRemove || c.Type == ChangeReplace
}
