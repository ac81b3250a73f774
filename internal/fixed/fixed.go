// Package fixed coordinates pinned rows and columns.
//
// The Coordinator owns a sorted set of fixed row indices and fixed column
// indices for one view. It plugs into a flow.Flow as an overlay: after
// every layout pass it pins a pooled row for each fixed index the flow did
// not place itself, and lets an organically placed row represent its
// index instead of a pinned copy. Fixed columns are pure geometry.
package fixed

import (
	"slices"

	"github.com/dshills/gridflow/internal/flow"
	"github.com/dshills/gridflow/internal/grid"
	"github.com/dshills/gridflow/internal/logging"
	"github.com/dshills/gridflow/internal/notify"
	"github.com/dshills/gridflow/internal/view"
)

// Change reports a fixed row or column entering or leaving the set.
type Change struct {
	Axis   grid.Axis
	Index  int
	Pinned bool
}

// Coordinator tracks fixed rows and columns.
type Coordinator struct {
	rows []int
	cols []int

	// Bounds used to drop entries past the grid.
	rowLimit int
	colLimit int

	pool   *flow.Pool
	pinned map[int]*view.Row

	changes *notify.Notifier[Change]
	log     *logging.Logger
}

// New creates a coordinator drawing pinned rows from pool.
func New(pool *flow.Pool, log *logging.Logger) *Coordinator {
	return &Coordinator{
		pool:    pool,
		pinned:  make(map[int]*view.Row),
		changes: notify.New[Change](),
		log:     logging.OrNull(log).WithComponent("fixed"),
	}
}

// Subscribe registers an observer for fixed set changes.
func (c *Coordinator) Subscribe(observer notify.Observer[Change]) *notify.Subscription[Change] {
	return c.changes.Subscribe(observer)
}

// Rows returns the fixed row indices in ascending order.
func (c *Coordinator) Rows() []int { return slices.Clone(c.rows) }

// Columns returns the fixed column indices in ascending order.
func (c *Coordinator) Columns() []int { return slices.Clone(c.cols) }

// IsFixedRow reports whether row index is fixed.
func (c *Coordinator) IsFixedRow(index int) bool {
	_, ok := slices.BinarySearch(c.rows, index)
	return ok
}

// IsFixedColumn reports whether column index is fixed.
func (c *Coordinator) IsFixedColumn(index int) bool {
	_, ok := slices.BinarySearch(c.cols, index)
	return ok
}

// AddRow pins a row. It reports whether the set changed; indices outside
// the grid are ignored.
func (c *Coordinator) AddRow(index int) bool {
	if index < 0 || index >= c.rowLimit {
		return false
	}
	var ok bool
	if c.rows, ok = insertSorted(c.rows, index); ok {
		c.changes.Notify(Change{Axis: grid.AxisRow, Index: index, Pinned: true})
	}
	return ok
}

// RemoveRow unpins a row. Its pinned copy, if any, goes back to the pool
// on the next reconcile.
func (c *Coordinator) RemoveRow(index int) bool {
	var ok bool
	if c.rows, ok = removeSorted(c.rows, index); ok {
		c.changes.Notify(Change{Axis: grid.AxisRow, Index: index, Pinned: false})
	}
	return ok
}

// SetRows replaces the fixed row set.
func (c *Coordinator) SetRows(indices []int) {
	c.rows = c.replace(grid.AxisRow, c.rows, indices, c.rowLimit)
}

// AddColumn pins a column.
func (c *Coordinator) AddColumn(index int) bool {
	if index < 0 || index >= c.colLimit {
		return false
	}
	var ok bool
	if c.cols, ok = insertSorted(c.cols, index); ok {
		c.changes.Notify(Change{Axis: grid.AxisColumn, Index: index, Pinned: true})
	}
	return ok
}

// RemoveColumn unpins a column.
func (c *Coordinator) RemoveColumn(index int) bool {
	var ok bool
	if c.cols, ok = removeSorted(c.cols, index); ok {
		c.changes.Notify(Change{Axis: grid.AxisColumn, Index: index, Pinned: false})
	}
	return ok
}

// SetColumns replaces the fixed column set.
func (c *Coordinator) SetColumns(indices []int) {
	c.cols = c.replace(grid.AxisColumn, c.cols, indices, c.colLimit)
}

// SetBounds records the grid size and drops fixed entries that no longer
// fit.
func (c *Coordinator) SetBounds(rows, cols int) {
	c.rowLimit = max(rows, 0)
	c.colLimit = max(cols, 0)
	c.rows = c.drop(grid.AxisRow, c.rows, c.rowLimit)
	c.cols = c.drop(grid.AxisColumn, c.cols, c.colLimit)
}

func (c *Coordinator) drop(axis grid.Axis, set []int, limit int) []int {
	i, _ := slices.BinarySearch(set, limit)
	if i == len(set) {
		return set
	}
	batch := c.changes.NewBatch()
	for _, idx := range set[i:] {
		c.log.Info("dropping fixed %s %d past grid bound %d", axis, idx, limit)
		batch.Add(Change{Axis: axis, Index: idx, Pinned: false})
	}
	set = set[:i]
	batch.Commit()
	return set
}

func (c *Coordinator) replace(axis grid.Axis, old, indices []int, limit int) []int {
	next := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < limit {
			next = append(next, idx)
		}
	}
	slices.Sort(next)
	next = slices.Compact(next)

	batch := c.changes.NewBatch()
	for _, idx := range old {
		if _, ok := slices.BinarySearch(next, idx); !ok {
			batch.Add(Change{Axis: axis, Index: idx, Pinned: false})
		}
	}
	for _, idx := range next {
		if _, ok := slices.BinarySearch(old, idx); !ok {
			batch.Add(Change{Axis: axis, Index: idx, Pinned: true})
		}
	}
	batch.Commit()
	return next
}

func insertSorted(set []int, v int) ([]int, bool) {
	i, found := slices.BinarySearch(set, v)
	if found {
		return set, false
	}
	return slices.Insert(set, i, v), true
}

func removeSorted(set []int, v int) ([]int, bool) {
	i, found := slices.BinarySearch(set, v)
	if !found {
		return set, false
	}
	return slices.Delete(set, i, i+1), true
}
