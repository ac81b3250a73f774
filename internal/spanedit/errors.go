package spanedit

import "errors"

var (
	// ErrNotEditing is returned when an edit operation runs while idle.
	ErrNotEditing = errors.New("spanedit: no edit in progress")

	// ErrDetached is returned when the cell view has no container.
	ErrDetached = errors.New("spanedit: cell view is not attached to a row")
)
