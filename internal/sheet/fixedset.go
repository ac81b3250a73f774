package sheet

// AddFixedRow pins row index. Out of range indices are ignored.
func (s *Sheet) AddFixedRow(index int) {
	if s.fixed.AddRow(index) {
		s.fixedRowsChanged()
	}
}

// RemoveFixedRow unpins row index.
func (s *Sheet) RemoveFixedRow(index int) {
	if s.fixed.RemoveRow(index) {
		s.fixedRowsChanged()
	}
}

// SetFixedRows replaces the fixed rows.
func (s *Sheet) SetFixedRows(indices []int) {
	s.fixed.SetRows(indices)
	s.fixedRowsChanged()
}

// FixedRows returns the fixed rows in ascending order.
func (s *Sheet) FixedRows() []int { return s.fixed.Rows() }

// AddFixedColumn pins column index.
func (s *Sheet) AddFixedColumn(index int) {
	if s.fixed.AddColumn(index) {
		s.fixedColumnsChanged()
	}
}

// RemoveFixedColumn unpins column index.
func (s *Sheet) RemoveFixedColumn(index int) {
	if s.fixed.RemoveColumn(index) {
		s.fixedColumnsChanged()
	}
}

// SetFixedColumns replaces the fixed columns.
func (s *Sheet) SetFixedColumns(indices []int) {
	s.fixed.SetColumns(indices)
	s.fixedColumnsChanged()
}

// FixedColumns returns the fixed columns in ascending order.
func (s *Sheet) FixedColumns() []int { return s.fixed.Columns() }

func (s *Sheet) fixedRowsChanged() {
	s.commitEdit()
	s.dirty = true
	s.flow.RequestLayout()
	s.LayoutTotal()
}

func (s *Sheet) fixedColumnsChanged() {
	s.commitEdit()
	s.gen++
	s.dirty = true
	s.LayoutTotal()
}
