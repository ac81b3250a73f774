package sheet

import "errors"

// ErrNoCell is returned when the cell to edit has no view in the live
// window.
var ErrNoCell = errors.New("sheet: cell is not in the live window")
