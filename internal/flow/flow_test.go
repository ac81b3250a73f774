package flow

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/gridflow/internal/view"
)

type testSource struct {
	count   int
	length  float64
	lengths map[int]float64
	fixed   map[int]bool
}

func (s *testSource) Count() int { return s.count }

func (s *testSource) CellLength(i int) float64 {
	if l, ok := s.lengths[i]; ok {
		return l
	}
	return s.length
}

func (s *testSource) IsFixed(i int) bool { return s.fixed[i] }

type testOverlay struct {
	active     bool
	reconciles int
}

func (o *testOverlay) Active() bool        { return o.active }
func (o *testOverlay) Reconcile(*Flow)     { o.reconciles++ }
func (o *testOverlay) Pinned() []*view.Row { return nil }

func newTestFlow(count int, viewport float64, opts ...Option) (*Flow, *testSource) {
	src := &testSource{count: count, length: 10}
	f := New(src, NewPool(DefaultPoolConfig(), nil, nil), opts...)
	f.SetViewportLength(viewport)
	return f, src
}

func indices(rows []*view.Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Index()
	}
	return out
}

func positions(rows []*view.Row) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Y()
	}
	return out
}

func TestFlowWindowCoversViewport(t *testing.T) {
	f, _ := newTestFlow(100, 55)

	if diff := cmp.Diff([]int{0, 1, 2, 3, 4, 5}, indices(f.Cells())); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 10, 20, 30, 40, 50}, positions(f.Cells())); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if f.FirstVisibleIndex() != 0 || f.LastVisibleIndex() != 5 {
		t.Errorf("expected visible range 0..5, got %d..%d", f.FirstVisibleIndex(), f.LastVisibleIndex())
	}
}

func TestFlowWindowIsMinimal(t *testing.T) {
	src := &testSource{count: 100, length: 10, lengths: map[int]float64{0: 30, 4: 25}}
	f := New(src, NewPool(DefaultPoolConfig(), nil, nil))
	f.SetViewportLength(55)
	f.ScrollPixels(25)

	for _, r := range f.Cells() {
		if r.Y()+r.Height() <= 0 || r.Y() >= f.ViewportLength() {
			t.Errorf("row %d at %v+%v does not intersect the viewport", r.Index(), r.Y(), r.Height())
		}
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, indices(f.Cells())); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
	if f.TopIndex() != 0 || f.TopOffset() != 25 {
		t.Errorf("expected top (0, 25), got (%d, %v)", f.TopIndex(), f.TopOffset())
	}
}

func TestFlowLayoutIsIdempotent(t *testing.T) {
	f, _ := newTestFlow(100, 55)
	binds := f.Pool().Stats().Binds
	before := indices(f.Cells())

	f.Layout()
	f.RequestLayout()

	if got := f.Pool().Stats().Binds; got != binds {
		t.Errorf("expected %d binds after repeated layout, got %d", binds, got)
	}
	if diff := cmp.Diff(before, indices(f.Cells())); diff != "" {
		t.Errorf("window changed (-want +got):\n%s", diff)
	}
}

func TestFlowScrollBindsOnlyNewRows(t *testing.T) {
	f, _ := newTestFlow(100, 55)
	binds := f.Pool().Stats().Binds

	f.ScrollPixels(10)

	if got := f.Pool().Stats().Binds - binds; got != 1 {
		t.Errorf("expected 1 new bind, got %d", got)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6}, indices(f.Cells())); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
}

func TestFlowRealignsAtEnd(t *testing.T) {
	f, _ := newTestFlow(10, 55)

	f.ScrollPixels(1000)

	if diff := cmp.Diff([]int{4, 5, 6, 7, 8, 9}, indices(f.Cells())); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
	last := f.Cells()[len(f.Cells())-1]
	if end := last.Y() + last.Height(); end != 55 {
		t.Errorf("expected last row to end at 55, got %v", end)
	}
	if f.TopIndex() != 4 || f.TopOffset() != 5 {
		t.Errorf("expected top (4, 5), got (%d, %v)", f.TopIndex(), f.TopOffset())
	}
	if f.Stats().Realigns != 1 {
		t.Errorf("expected 1 realign, got %d", f.Stats().Realigns)
	}
	if f.Position() != 1 {
		t.Errorf("expected position 1, got %v", f.Position())
	}
}

func TestFlowRebuildsFromBottomWithOverlay(t *testing.T) {
	overlay := &testOverlay{active: true}
	f, _ := newTestFlow(10, 55, WithOverlay(overlay))

	var rebuilt bool
	f.Subscribe(func(e Event) { rebuilt = rebuilt || e.Rebuilt })
	f.ScrollPixels(1000)

	if !rebuilt {
		t.Error("expected a rebuilt event")
	}
	if f.Stats().Rebuilds == 0 {
		t.Error("expected a rebuild")
	}
	if f.Stats().Realigns != 0 {
		t.Errorf("expected no realign with an active overlay, got %d", f.Stats().Realigns)
	}
	if diff := cmp.Diff([]int{4, 5, 6, 7, 8, 9}, indices(f.Cells())); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
	if overlay.reconciles == 0 {
		t.Error("expected overlay to be reconciled")
	}
}

func TestFlowShortContent(t *testing.T) {
	f, _ := newTestFlow(3, 55)
	f.ScrollPixels(15)

	if diff := cmp.Diff([]float64{0, 10, 20}, positions(f.Cells())); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if f.TopIndex() != 0 || f.TopOffset() != 0 {
		t.Errorf("expected top (0, 0), got (%d, %v)", f.TopIndex(), f.TopOffset())
	}
}

func TestFlowEmptySource(t *testing.T) {
	f, src := newTestFlow(0, 55)

	if len(f.Cells()) != 0 {
		t.Errorf("expected empty window, got %v", indices(f.Cells()))
	}
	if f.FirstVisibleIndex() != -1 {
		t.Errorf("expected -1, got %d", f.FirstVisibleIndex())
	}
	f.Show(10)
	if f.TopIndex() != 0 {
		t.Errorf("expected top 0, got %d", f.TopIndex())
	}

	src.count = 5
	f.ItemsInserted(0, 5)
	if got := len(f.Cells()); got != 5 {
		t.Errorf("expected 5 rows after insert, got %d", got)
	}
}

func TestFlowShowAt(t *testing.T) {
	f, _ := newTestFlow(100, 55)

	f.ShowAt(20, 15)

	if f.TopIndex() != 18 || f.TopOffset() != 5 {
		t.Errorf("expected top (18, 5), got (%d, %v)", f.TopIndex(), f.TopOffset())
	}
	r := f.Cell(20)
	if r == nil {
		t.Fatal("expected row 20 in window")
	}
	if r.Y() != 15 {
		t.Errorf("expected row 20 at 15, got %v", r.Y())
	}
}

func TestFlowShowClamps(t *testing.T) {
	f, _ := newTestFlow(100, 55)

	f.Show(-4)
	if f.TopIndex() != 0 {
		t.Errorf("expected top 0, got %d", f.TopIndex())
	}
	f.Show(500)
	if last := f.Cells()[len(f.Cells())-1]; last.Index() != 99 {
		t.Errorf("expected last row 99, got %d", last.Index())
	}
}

func TestFlowScrollTo(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		reserved float64
		wantTop  int
		wantY    float64
	}{
		{"already visible", 3, 0, 0, 30},
		{"below reserved area", 2, 20, 0, 20},
		{"centered", 50, 0, 47, 22.5},
		{"centered below reserved", 50, 20, 46, 32.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFlow(100, 55)
			f.ScrollTo(tt.index, tt.reserved)

			if f.TopIndex() != tt.wantTop {
				t.Errorf("expected top %d, got %d", tt.wantTop, f.TopIndex())
			}
			r := f.Cell(tt.index)
			if r == nil {
				t.Fatalf("expected row %d in window", tt.index)
			}
			if r.Y() != tt.wantY {
				t.Errorf("expected row at %v, got %v", tt.wantY, r.Y())
			}
		})
	}
}

func TestFlowPosition(t *testing.T) {
	f, _ := newTestFlow(100, 55)

	if f.Position() != 0 {
		t.Errorf("expected position 0, got %v", f.Position())
	}

	f.SetPosition(0.5)
	if f.TopIndex() != 50 {
		t.Errorf("expected top 50, got %d", f.TopIndex())
	}
	if f.Position() != 0.5 {
		t.Errorf("expected position 0.5, got %v", f.Position())
	}

	f.SetPosition(0.125)
	if f.TopIndex() != 12 || f.TopOffset() != 5 {
		t.Errorf("expected top (12, 5), got (%d, %v)", f.TopIndex(), f.TopOffset())
	}

	f.SetPosition(2)
	if f.Position() != 1 {
		t.Errorf("expected position 1, got %v", f.Position())
	}
	if f.TopIndex() != 94 || f.TopOffset() != 5 {
		t.Errorf("expected top (94, 5), got (%d, %v)", f.TopIndex(), f.TopOffset())
	}
}

func TestFlowItemsInsertedAndRemoved(t *testing.T) {
	f, src := newTestFlow(100, 55)
	f.Show(50)

	src.count = 105
	f.ItemsInserted(10, 5)
	if f.TopIndex() != 55 {
		t.Errorf("expected top 55 after insert above, got %d", f.TopIndex())
	}

	src.count = 110
	f.ItemsInserted(80, 5)
	if f.TopIndex() != 55 {
		t.Errorf("expected top 55 after insert below, got %d", f.TopIndex())
	}

	src.count = 105
	f.ItemsRemoved(10, 5)
	if f.TopIndex() != 50 {
		t.Errorf("expected top 50 after remove above, got %d", f.TopIndex())
	}

	f.ScrollPixels(5)
	src.count = 100
	f.ItemsRemoved(48, 5)
	if f.TopIndex() != 48 || f.TopOffset() != 0 {
		t.Errorf("expected top (48, 0) after removing the top row, got (%d, %v)", f.TopIndex(), f.TopOffset())
	}
}

func TestFlowItemsChangedRebindsRange(t *testing.T) {
	var bound []int
	src := &testSource{count: 100, length: 10}
	pool := NewPool(DefaultPoolConfig(), nil, func(_ *view.Row, index int) {
		bound = append(bound, index)
	})
	f := New(src, pool)
	f.SetViewportLength(55)
	bound = nil

	f.ItemsChanged(2, 2)

	if diff := cmp.Diff([]int{2, 3}, bound); diff != "" {
		t.Errorf("rebound rows mismatch (-want +got):\n%s", diff)
	}
}

func TestFlowReentrantRequestIsCoalesced(t *testing.T) {
	f, _ := newTestFlow(100, 0)
	scrolled := false
	f.Subscribe(func(Event) {
		if !scrolled {
			scrolled = true
			f.ScrollPixels(10)
		}
	})

	f.SetViewportLength(55)

	st := f.Stats()
	if st.Coalesced != 1 {
		t.Errorf("expected 1 coalesced request, got %d", st.Coalesced)
	}
	if st.Deferred != 0 {
		t.Errorf("expected no deferred pass, got %d", st.Deferred)
	}
	if f.TopIndex() != 1 {
		t.Errorf("expected the follow-up pass to apply the scroll, got top %d", f.TopIndex())
	}
	if f.NeedsLayout() {
		t.Error("expected no outstanding layout")
	}
}

func TestFlowRunawayListenerIsDeferred(t *testing.T) {
	f, _ := newTestFlow(100, 0)
	events := 0
	f.Subscribe(func(Event) {
		events++
		f.ScrollPixels(10)
	})

	f.SetViewportLength(55)

	if events != 1+maxFollowUps {
		t.Errorf("expected %d events, got %d", 1+maxFollowUps, events)
	}
	if f.Stats().Deferred != 1 {
		t.Errorf("expected 1 deferred pass, got %d", f.Stats().Deferred)
	}
	if !f.NeedsLayout() {
		t.Error("expected layout to remain outstanding")
	}
}

func TestFlowZOrder(t *testing.T) {
	src := &testSource{count: 100, length: 10, fixed: map[int]bool{1: true, 3: true}}
	f := New(src, NewPool(DefaultPoolConfig(), nil, nil))
	f.SetViewportLength(55)

	if diff := cmp.Diff([]int{0, 2, 4, 5, 1, 3}, indices(f.Visible())); diff != "" {
		t.Errorf("paint order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4, 5}, indices(f.Cells())); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
}

func TestFlowRebuildReleasesWindow(t *testing.T) {
	f, _ := newTestFlow(100, 55)
	created := f.Pool().Stats().Created

	f.Rebuild()

	if f.Stats().Rebuilds != 1 {
		t.Errorf("expected 1 rebuild, got %d", f.Stats().Rebuilds)
	}
	if got := f.Pool().Stats().Created; got != created {
		t.Errorf("expected rebuild to reuse pooled rows, created %d more", got-created)
	}
}
