package fixed

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/gridflow/internal/flow"
	"github.com/dshills/gridflow/internal/grid"
	"github.com/dshills/gridflow/internal/view"
)

type rowSource struct {
	count int
	fixed *Coordinator
}

func (s *rowSource) Count() int             { return s.count }
func (s *rowSource) CellLength(int) float64 { return 10 }
func (s *rowSource) IsFixed(index int) bool { return s.fixed.IsFixedRow(index) }

func newTestView(count int, viewport float64, rows ...int) (*flow.Flow, *Coordinator) {
	pool := flow.NewPool(flow.DefaultPoolConfig(), nil, nil)
	c := New(pool, nil)
	c.SetBounds(count, 10)
	c.SetRows(rows)
	f := flow.New(&rowSource{count: count, fixed: c}, pool, flow.WithOverlay(c))
	f.SetViewportLength(viewport)
	return f, c
}

func rowIndices(rows []*view.Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Index()
	}
	return out
}

func assertNoDuplicateRole(t *testing.T, rows []*view.Row) {
	t.Helper()
	seen := make(map[view.Role]map[int]bool)
	for _, r := range rows {
		if seen[r.Role()] == nil {
			seen[r.Role()] = make(map[int]bool)
		}
		if seen[r.Role()][r.Index()] {
			t.Errorf("index %d represented twice as %s", r.Index(), r.Role())
		}
		seen[r.Role()][r.Index()] = true
	}
}

func TestReconcileAtTopUsesPlacedRows(t *testing.T) {
	f, c := newTestView(1000, 200, 5, 6)

	if len(c.Pinned()) != 0 {
		t.Errorf("expected no pinned copies, got %v", rowIndices(c.Pinned()))
	}
	for _, idx := range []int{5, 6} {
		r := f.Cell(idx)
		if r == nil {
			t.Fatalf("expected row %d in the window", idx)
		}
		if !r.Fixed() {
			t.Errorf("expected row %d to be marked fixed", idx)
		}
		if r.DisplayY() != r.Y() {
			t.Errorf("expected row %d drawn at its natural position %v, got %v", idx, r.Y(), r.DisplayY())
		}
	}
	vis := f.Visible()
	if diff := cmp.Diff([]int{5, 6}, rowIndices(vis[len(vis)-2:])); diff != "" {
		t.Errorf("fixed rows not painted last (-want +got):\n%s", diff)
	}
	assertNoDuplicateRole(t, vis)
}

func TestReconcilePinsRowsScrolledAway(t *testing.T) {
	f, c := newTestView(1000, 200, 5, 6)

	f.ScrollTo(500, c.Height(f.CellLength))

	pinned := c.Pinned()
	if diff := cmp.Diff([]int{5, 6}, rowIndices(pinned)); diff != "" {
		t.Fatalf("pinned mismatch (-want +got):\n%s", diff)
	}
	for i, r := range pinned {
		if r.Role() != view.RolePinned {
			t.Errorf("expected pinned role for row %d, got %s", r.Index(), r.Role())
		}
		if want := float64(i * 10); r.DisplayY() != want {
			t.Errorf("expected row %d at %v, got %v", r.Index(), want, r.DisplayY())
		}
	}

	cells := f.Cells()
	if len(cells) < 20 || len(cells) > 22 {
		t.Errorf("expected about 20 scrolling rows, got %d", len(cells))
	}
	for i := 1; i < len(cells); i++ {
		if cells[i].Index() != cells[i-1].Index()+1 {
			t.Fatalf("scrolling rows not contiguous: %v", rowIndices(cells))
		}
	}
	if f.Cell(500) == nil {
		t.Error("expected row 500 in the window")
	}
	if r := f.Cell(500); r != nil && r.Y() < 20 {
		t.Errorf("expected row 500 below the fixed rows, got y %v", r.Y())
	}
	assertNoDuplicateRole(t, f.Visible())

	f.Show(0)

	if len(c.Pinned()) != 0 {
		t.Errorf("expected pinned copies to yield at the top, got %v", rowIndices(c.Pinned()))
	}
	for _, r := range pinned {
		if r.Managed() {
			t.Errorf("expected released copy of row %d to be unmanaged", r.Index())
		}
	}
	assertNoDuplicateRole(t, f.Visible())
}

func TestReconcileStickyPlacedRow(t *testing.T) {
	f, c := newTestView(1000, 200, 5)

	f.ScrollPixels(55)

	r := f.Cell(5)
	if r == nil {
		t.Fatal("expected row 5 in the window")
	}
	if r.Y() != -5 {
		t.Errorf("expected row 5 at -5, got %v", r.Y())
	}
	if r.DisplayY() != 0 {
		t.Errorf("expected row 5 held at the top, got %v", r.DisplayY())
	}
	if len(c.Pinned()) != 0 {
		t.Errorf("expected no pinned copies, got %v", rowIndices(c.Pinned()))
	}
}

func TestReconcileReleasesUnpinnedCopy(t *testing.T) {
	f, c := newTestView(1000, 200, 5, 6)
	f.ScrollTo(500, c.Height(f.CellLength))
	copy6 := c.Pinned()[1]

	c.RemoveRow(6)
	f.RequestLayout()

	if diff := cmp.Diff([]int{5}, rowIndices(c.Pinned())); diff != "" {
		t.Errorf("pinned mismatch (-want +got):\n%s", diff)
	}
	if copy6.Managed() || copy6.Visible() || copy6.Fixed() {
		t.Error("expected unpinned copy to be back in the pool")
	}
}

func TestReconcileRebindsStaleCopy(t *testing.T) {
	var bound []int
	pool := flow.NewPool(flow.DefaultPoolConfig(), nil, func(_ *view.Row, index int) {
		bound = append(bound, index)
	})
	c := New(pool, nil)
	c.SetBounds(1000, 10)
	c.SetRows([]int{5})
	f := flow.New(&rowSource{count: 1000, fixed: c}, pool, flow.WithOverlay(c))
	f.SetViewportLength(200)
	f.Show(500)
	bound = nil

	f.ItemsChanged(5, 1)

	if diff := cmp.Diff([]int{5}, bound); diff != "" {
		t.Errorf("rebound mismatch (-want +got):\n%s", diff)
	}
}

func TestRowSet(t *testing.T) {
	_, c := newTestView(100, 0)
	var changes []Change
	c.Subscribe(func(ch Change) { changes = append(changes, ch) })

	if !c.AddRow(7) || !c.AddRow(3) {
		t.Error("expected new rows to be added")
	}
	if c.AddRow(3) {
		t.Error("expected duplicate add to be ignored")
	}
	if c.AddRow(-1) || c.AddRow(100) {
		t.Error("expected out of range rows to be ignored")
	}
	if diff := cmp.Diff([]int{3, 7}, c.Rows()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if !c.IsFixedRow(7) || c.IsFixedRow(4) {
		t.Error("unexpected IsFixedRow result")
	}
	if !c.RemoveRow(7) || c.RemoveRow(7) {
		t.Error("expected single removal to succeed")
	}

	want := []Change{
		{Axis: grid.AxisRow, Index: 7, Pinned: true},
		{Axis: grid.AxisRow, Index: 3, Pinned: true},
		{Axis: grid.AxisRow, Index: 7, Pinned: false},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestSetRowsReportsDifference(t *testing.T) {
	_, c := newTestView(100, 0, 1, 2)
	var changes []Change
	c.Subscribe(func(ch Change) { changes = append(changes, ch) })

	c.SetRows([]int{9, 2, 2, 500})

	if diff := cmp.Diff([]int{2, 9}, c.Rows()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	want := []Change{
		{Axis: grid.AxisRow, Index: 1, Pinned: false},
		{Axis: grid.AxisRow, Index: 9, Pinned: true},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestSetBoundsDropsEntries(t *testing.T) {
	_, c := newTestView(100, 0, 5, 50, 99)
	c.SetColumns([]int{0, 8})
	var changes []Change
	c.Subscribe(func(ch Change) { changes = append(changes, ch) })

	c.SetBounds(60, 5)

	if diff := cmp.Diff([]int{5, 50}, c.Rows()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, c.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	want := []Change{
		{Axis: grid.AxisRow, Index: 99, Pinned: false},
		{Axis: grid.AxisColumn, Index: 8, Pinned: false},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestReservedHeight(t *testing.T) {
	_, c := newTestView(100, 0, 5, 6)
	length := func(int) float64 { return 10 }

	tests := []struct {
		index int
		want  float64
	}{
		{0, 0},
		{5, 0},
		{6, 10},
		{500, 20},
	}
	for _, tt := range tests {
		if got := c.Reserved(tt.index, length); got != tt.want {
			t.Errorf("Reserved(%d): expected %v, got %v", tt.index, tt.want, got)
		}
	}
	if got := c.Height(length); got != 20 {
		t.Errorf("expected height 20, got %v", got)
	}
}

type uniformColumns float64

func (w uniformColumns) ColumnX(col int) float64 { return float64(col) * float64(w) }
func (w uniformColumns) ColumnWidth(int) float64 { return float64(w) }

func TestLayoutColumns(t *testing.T) {
	_, c := newTestView(10, 0)
	c.SetColumns([]int{0, 2})

	tests := []struct {
		name    string
		hscroll float64
		want    []Slot
	}{
		{"unscrolled", 0, []Slot{{Column: 0, X: 0, Width: 10}, {Column: 2, X: 20, Width: 10}}},
		{"first sticks", 15, []Slot{{Column: 0, X: 15, Width: 10}, {Column: 2, X: 25, Width: 10}}},
		{"both stick", 35, []Slot{{Column: 0, X: 35, Width: 10}, {Column: 2, X: 45, Width: 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.LayoutColumns(tt.hscroll, uniformColumns(10))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("slots mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if got := c.Width(uniformColumns(10)); got != 20 {
		t.Errorf("expected width 20, got %v", got)
	}
}
