package sheet

import (
	"github.com/dshills/gridflow/internal/spanedit"
	"github.com/dshills/gridflow/internal/view"
)

// StartEdit starts editing the cell at (row, col), which may be any
// position the cell covers. An edit in progress is committed first.
func (s *Sheet) StartEdit(row, col int) (*spanedit.Session, error) {
	cell := s.grid.CellAt(row, col)
	if cell == nil {
		return nil, ErrNoCell
	}
	a := cell.Anchor()
	if s.edit.IsEditing(a.Row, a.Col) {
		return s.edit.Session(), nil
	}
	s.commitEdit()

	cv := s.cellView(a.Row, a.Col)
	if cv == nil {
		return nil, ErrNoCell
	}
	return s.edit.Begin(cell, cv)
}

// SetEditValue updates the value of the active edit.
func (s *Sheet) SetEditValue(v any) error {
	return s.edit.SetValue(v)
}

// CommitEdit ends the active edit and stores its value.
func (s *Sheet) CommitEdit() error {
	return s.edit.Commit()
}

// CancelEdit ends the active edit without storing its value.
func (s *Sheet) CancelEdit() error {
	return s.edit.Cancel()
}

// Editing returns the active edit, or nil.
func (s *Sheet) Editing() *spanedit.Session {
	return s.edit.Session()
}

// commitEdit ends an active edit before the window changes under it.
func (s *Sheet) commitEdit() {
	if s.edit == nil || s.edit.State() != spanedit.Editing {
		return
	}
	id := s.edit.Session().ID
	if err := s.edit.Commit(); err != nil {
		s.log.Warn("commit of edit %s failed: %v", id, err)
	}
}

func (s *Sheet) store(sess *spanedit.Session) error {
	s.grid.SetValue(sess.Cell.Row, sess.Cell.Col, sess.Value)
	return nil
}

// cellView finds the view displaying the cell anchored at (row, col).
func (s *Sheet) cellView(row, col int) *view.CellView {
	for _, r := range s.flow.Visible() {
		if cv := r.Child(row, col); cv != nil {
			return cv
		}
	}
	return nil
}

// container returns the live row view for index, preferring the
// scrolling row over a pinned copy.
func (s *Sheet) container(index int) *view.Row {
	if r := s.flow.Cell(index); r != nil {
		return r
	}
	for _, r := range s.fixed.Pinned() {
		if r.Index() == index {
			return r
		}
	}
	return nil
}
