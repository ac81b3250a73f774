// Package spanedit coordinates in-place editing of spanning cells.
//
// A spanning cell is painted by the row container of its anchor, so rows
// painted later can clip the part of the cell that extends over them.
// While such a cell is edited the coordinator moves its view into the
// container of the last row it covers and compensates with a translation,
// so it stays in place on screen but is painted above its whole span.
// Ending the edit puts the view back exactly where it was.
package spanedit

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/gridflow/internal/grid"
	"github.com/dshills/gridflow/internal/logging"
	"github.com/dshills/gridflow/internal/view"
)

// State is the coordinator state.
type State int

const (
	// Idle means no cell is being edited.
	Idle State = iota
	// Editing means exactly one cell is being edited.
	Editing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Locator finds the live container for a row index.
type Locator interface {
	// Container returns the row view bound to index, or nil.
	Container(index int) *view.Row
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(index int) *view.Row

// Container calls f.
func (f LocatorFunc) Container(index int) *view.Row { return f(index) }

// CommitFunc stores the value of a finished edit.
type CommitFunc func(s *Session) error

// Session is one edit.
type Session struct {
	ID    uuid.UUID
	Cell  grid.Coord
	View  *view.CellView
	Value any

	rowSpan, colSpan int
	dirty            bool
	relocated        bool

	// Where the view lived before the edit.
	parent   *view.Row
	position int
	tx, ty   float64
}

// Dirty reports whether the value was changed during the edit.
func (s *Session) Dirty() bool { return s.dirty }

// Relocated reports whether the view was moved for the edit.
func (s *Session) Relocated() bool { return s.relocated }

// Coordinator allows at most one edit at a time.
type Coordinator struct {
	locator Locator
	commit  CommitFunc
	session *Session
	log     *logging.Logger
}

// New creates a coordinator. A nil commit function discards values.
func New(locator Locator, commit CommitFunc, log *logging.Logger) *Coordinator {
	if commit == nil {
		commit = func(*Session) error { return nil }
	}
	return &Coordinator{
		locator: locator,
		commit:  commit,
		log:     logging.OrNull(log).WithComponent("spanedit"),
	}
}

// State returns the current state.
func (c *Coordinator) State() State {
	if c.session != nil {
		return Editing
	}
	return Idle
}

// Session returns the active edit, or nil.
func (c *Coordinator) Session() *Session { return c.session }

// IsEditing reports whether the cell anchored at (row, col) is edited.
func (c *Coordinator) IsEditing(row, col int) bool {
	return c.session != nil && c.session.Cell == grid.Coord{Row: row, Col: col}
}

// Begin starts editing cell, displayed by cv. An edit already in progress
// is committed first; if that commit fails it is cancelled instead.
func (c *Coordinator) Begin(cell *grid.Cell, cv *view.CellView) (*Session, error) {
	if cv == nil || cv.Parent() == nil {
		return nil, ErrDetached
	}
	if c.session != nil {
		prev := c.session
		if err := c.Commit(); err != nil {
			c.log.Warn("commit of edit %s failed, value dropped: %v", prev.ID, err)
		}
	}

	parent := cv.Parent()
	tx, ty := cv.Translation()
	s := &Session{
		ID:       uuid.New(),
		Cell:     cell.Anchor(),
		View:     cv,
		Value:    cell.Value(),
		rowSpan:  cell.RowSpan(),
		colSpan:  cell.ColumnSpan(),
		parent:   parent,
		position: parent.IndexOf(cv),
		tx:       tx,
		ty:       ty,
	}
	c.relocate(s, cell)
	cv.SetEditing(true)
	c.session = s
	c.log.Debug("edit %s started at %d,%d (relocated=%t)", s.ID, s.Cell.Row, s.Cell.Col, s.relocated)
	return s, nil
}

// relocate moves the view to the last row the cell spans. A view whose
// row is not live is left alone. Column-only spans stay in their row and
// move to the end of its paint order.
func (c *Coordinator) relocate(s *Session, cell *grid.Cell) {
	cv := s.View
	switch {
	case cell.RowSpan() > 1 && s.parent.Index() != cell.LastRow():
		target := c.locator.Container(cell.LastRow())
		if target == nil || target == s.parent {
			return
		}
		target.Add(cv)
		cv.SetTranslation(s.tx, s.ty+s.parent.DisplayY()-target.DisplayY())
		s.relocated = true
	case cell.ColumnSpan() > 1 && s.position != len(s.parent.Children())-1:
		s.parent.Add(cv)
		s.relocated = true
	}
}

// SetValue updates the edited value.
func (c *Coordinator) SetValue(v any) error {
	if c.session == nil {
		return ErrNotEditing
	}
	c.session.Value = v
	c.session.dirty = true
	return nil
}

// Commit ends the edit, restores the view, and stores a changed value.
func (c *Coordinator) Commit() error {
	s, err := c.end()
	if err != nil {
		return err
	}
	if !s.dirty {
		return nil
	}
	if err := c.commit(s); err != nil {
		return fmt.Errorf("commit edit %s: %w", s.ID, err)
	}
	return nil
}

// Cancel ends the edit and restores the view without storing the value.
func (c *Coordinator) Cancel() error {
	s, err := c.end()
	if err != nil {
		return err
	}
	c.log.Debug("edit %s cancelled", s.ID)
	return nil
}

func (c *Coordinator) end() (*Session, error) {
	s := c.session
	if s == nil {
		return nil, ErrNotEditing
	}
	c.session = nil
	c.restore(s)
	s.View.SetEditing(false)
	return s, nil
}

func (c *Coordinator) restore(s *Session) {
	if !s.relocated {
		return
	}
	s.View.SetTranslation(s.tx, s.ty)
	s.parent.Insert(s.position, s.View)
}
