// Package view provides the recyclable view objects of a spreadsheet view.
//
// A Row is a container bound to one row index at a time. The binding
// changes many times over its lifetime; a Row's identity never implies
// which data it shows. A CellView is a child of a Row and displays one
// grid cell (possibly spanning) at a geometry relative to its parent.
package view

import (
	"fmt"
	"sync/atomic"
)

// Role is the part a Row plays in the live window.
type Role int

const (
	// RoleScrolling rows are placed by virtualization.
	RoleScrolling Role = iota

	// RolePinned rows are placed by the fixed row coordinator.
	RolePinned
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleScrolling:
		return "scrolling"
	case RolePinned:
		return "pinned"
	default:
		return "unknown"
	}
}

var nextRowID atomic.Uint64

// Row is a recyclable row container.
type Row struct {
	id    uint64
	index int
	role  Role

	// Natural position in the viewport and on-screen position.
	y        float64
	displayY float64
	height   float64

	visible   bool
	managed   bool
	fixed     bool
	stale     bool
	cacheable bool

	binds    int
	children []*CellView
}

// NewRow creates an unbound row.
func NewRow() *Row {
	return &Row{
		id:        nextRowID.Add(1),
		index:     -1,
		cacheable: true,
	}
}

// ID returns the row's identity, stable across bindings.
func (r *Row) ID() uint64 { return r.id }

// Index returns the bound index, or -1 when unbound.
func (r *Row) Index() int { return r.index }

// Bind binds the row to index and clears the stale mark.
func (r *Row) Bind(index int) {
	r.index = index
	r.stale = false
	r.binds++
}

// Unbind clears the binding.
func (r *Row) Unbind() {
	r.index = -1
	r.stale = false
}

// Binds returns how many times the row has been bound.
func (r *Row) Binds() int { return r.binds }

// Stale reports whether the bound data changed since the last Bind.
func (r *Row) Stale() bool { return r.stale }

// MarkStale flags the row for rebinding on the next layout.
func (r *Row) MarkStale() { r.stale = true }

// Role returns the row's current role.
func (r *Row) Role() Role { return r.role }

// SetRole sets the row's role.
func (r *Row) SetRole(role Role) { r.role = role }

// Y returns the natural layout position.
func (r *Row) Y() float64 { return r.y }

// DisplayY returns the on-screen position.
func (r *Row) DisplayY() float64 { return r.displayY }

// Height returns the row height.
func (r *Row) Height() float64 { return r.height }

// Place sets the natural position and height; the display position
// follows the natural one until SetDisplayY overrides it.
func (r *Row) Place(y, height float64) {
	r.y = y
	r.displayY = y
	r.height = height
}

// SetDisplayY overrides the on-screen position.
func (r *Row) SetDisplayY(y float64) { r.displayY = y }

// Visible reports whether the row is painted.
func (r *Row) Visible() bool { return r.visible }

// SetVisible shows or hides the row.
func (r *Row) SetVisible(v bool) { r.visible = v }

// Managed reports whether the row currently belongs to the live window.
func (r *Row) Managed() bool { return r.managed }

// SetManaged sets whether the row belongs to the live window.
func (r *Row) SetManaged(m bool) { r.managed = m }

// Fixed reports whether the row represents a fixed row.
func (r *Row) Fixed() bool { return r.fixed }

// SetFixed marks the row as representing a fixed row.
func (r *Row) SetFixed(f bool) { r.fixed = f }

// Cacheable reports whether the row may be stored in the cell cache.
func (r *Row) Cacheable() bool { return r.cacheable }

// SetCacheable sets whether the row may be cached.
func (r *Row) SetCacheable(c bool) { r.cacheable = c }

// Children returns the row's cell views in paint order.
func (r *Row) Children() []*CellView { return r.children }

// Add appends a child, detaching it from any previous parent.
func (r *Row) Add(cv *CellView) {
	if cv.parent != nil {
		cv.parent.Remove(cv)
	}
	cv.parent = r
	r.children = append(r.children, cv)
}

// Insert places a child at position i, clamped to the child range.
func (r *Row) Insert(i int, cv *CellView) {
	if cv.parent != nil {
		cv.parent.Remove(cv)
	}
	i = max(0, min(i, len(r.children)))
	cv.parent = r
	r.children = append(r.children, nil)
	copy(r.children[i+1:], r.children[i:])
	r.children[i] = cv
}

// Remove detaches a child. It reports whether the child was found.
func (r *Row) Remove(cv *CellView) bool {
	i := r.IndexOf(cv)
	if i < 0 {
		return false
	}
	r.children = append(r.children[:i], r.children[i+1:]...)
	cv.parent = nil
	return true
}

// IndexOf returns the child's position, or -1.
func (r *Row) IndexOf(cv *CellView) int {
	for i, c := range r.children {
		if c == cv {
			return i
		}
	}
	return -1
}

// Clear detaches all children.
func (r *Row) Clear() {
	for _, c := range r.children {
		c.parent = nil
	}
	r.children = r.children[:0]
}

// Child returns the child displaying the cell anchored at (row, col).
func (r *Row) Child(row, col int) *CellView {
	for _, c := range r.children {
		if c.row == row && c.col == col {
			return c
		}
	}
	return nil
}

// String returns a debug representation.
func (r *Row) String() string {
	return fmt.Sprintf("Row#%d(index=%d %s y=%.1f)", r.id, r.index, r.role, r.displayY)
}
