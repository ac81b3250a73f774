package fixed

import (
	"cmp"
	"slices"

	"github.com/dshills/gridflow/internal/flow"
	"github.com/dshills/gridflow/internal/view"
)

// Active reports whether any row is fixed.
func (c *Coordinator) Active() bool { return len(c.rows) > 0 }

// Reconcile pins the fixed rows after a layout pass.
//
// Fixed rows stack from the viewport top in index order. A fixed row the
// flow already placed represents itself: it is drawn at its natural
// position or at its stack slot, whichever is lower, and any pinned copy
// is released. Every other fixed row gets a pinned copy at its slot.
func (c *Coordinator) Reconcile(f *flow.Flow) {
	count := f.Count()
	keep := make(map[int]bool, len(c.rows))
	stack := 0.0

	for _, idx := range c.rows {
		if idx >= count {
			continue
		}
		length := f.CellLength(idx)

		if r := organic(f.Cells(), idx); r != nil {
			r.SetFixed(true)
			r.SetDisplayY(max(r.Y(), stack))
		} else {
			p := c.pinned[idx]
			switch {
			case p == nil || p.Index() != idx:
				if p != nil {
					c.pool.Release(p)
				}
				p = c.pool.Acquire(idx)
				c.pinned[idx] = p
			case p.Stale():
				c.pool.Bind(p, idx)
			}
			p.SetRole(view.RolePinned)
			p.SetFixed(true)
			p.SetVisible(true)
			p.Place(stack, length)
			keep[idx] = true
		}
		stack += length
	}

	for idx, p := range c.pinned {
		if !keep[idx] {
			c.pool.Release(p)
			delete(c.pinned, idx)
		}
	}
}

// organic finds the scrolling row bound to index by linear scan; the
// window holds tens of rows.
func organic(cells []*view.Row, index int) *view.Row {
	for _, r := range cells {
		if r.Index() == index {
			return r
		}
	}
	return nil
}

// Pinned returns the pinned copies ordered by index.
func (c *Coordinator) Pinned() []*view.Row {
	rows := make([]*view.Row, 0, len(c.pinned))
	for _, r := range c.pinned {
		rows = append(rows, r)
	}
	slices.SortFunc(rows, func(a, b *view.Row) int { return cmp.Compare(a.Index(), b.Index()) })
	return rows
}

// Reserved returns the height the fixed rows before index occupy at the
// viewport top.
func (c *Coordinator) Reserved(index int, length func(int) float64) float64 {
	var total float64
	for _, idx := range c.rows {
		if idx >= index {
			break
		}
		total += length(idx)
	}
	return total
}

// Height returns the height of the whole fixed row stack.
func (c *Coordinator) Height(length func(int) float64) float64 {
	var total float64
	for _, idx := range c.rows {
		total += length(idx)
	}
	return total
}
