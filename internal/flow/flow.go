package flow

import (
	"cmp"
	"slices"

	"github.com/dshills/gridflow/internal/logging"
	"github.com/dshills/gridflow/internal/notify"
	"github.com/dshills/gridflow/internal/view"
)

// Source describes the virtualized rows.
type Source interface {
	// Count returns the number of rows.
	Count() int

	// CellLength returns the pixel length of the row at index.
	CellLength(index int) float64

	// IsFixed reports whether the row at index is pinned.
	IsFixed(index int) bool
}

// Overlay adds rows on top of the virtualized window.
type Overlay interface {
	// Active reports whether the overlay currently pins anything.
	Active() bool

	// Reconcile runs after every layout pass, once the window is placed.
	Reconcile(f *Flow)

	// Pinned returns the overlay's own rows in paint order.
	Pinned() []*view.Row
}

// Event is published after every layout pass.
type Event struct {
	First    int
	Last     int
	Position float64
	Rebuilt  bool
}

// Stats reports layout activity.
type Stats struct {
	Passes    int
	Rebuilds  int
	Realigns  int
	Coalesced int
	Deferred  int
}

// maxFollowUps bounds the passes run for re-entrant requests.
const maxFollowUps = 1

// minLength keeps zero-length rows from producing unbounded windows.
const minLength = 1.0

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(f *Flow) {
		f.log = logging.OrNull(l).WithComponent("flow")
	}
}

// WithOverlay sets the overlay.
func WithOverlay(o Overlay) Option {
	return func(f *Flow) {
		f.overlay = o
	}
}

// Flow is the virtualization engine.
type Flow struct {
	src     Source
	pool    *Pool
	overlay Overlay
	log     *logging.Logger

	// Scrolling rows, ascending by index and contiguous.
	cells []*view.Row
	// Paint order of the last pass.
	visible []*view.Row
	// Rows from the previous pass not yet reused by the current one.
	retained map[int]*view.Row

	viewportLength float64

	// The scroll position: the row at topIndex starts topOffset pixels
	// above the viewport top.
	topIndex  int
	topOffset float64

	needsLayout  bool
	needsRebuild bool
	inLayout     bool
	pending      bool

	events *notify.Notifier[Event]
	stats  Stats
}

// New creates a flow over src using pool for rows.
func New(src Source, pool *Pool, opts ...Option) *Flow {
	f := &Flow{
		src:         src,
		pool:        pool,
		log:         logging.Null,
		events:      notify.New[Event](),
		needsLayout: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetOverlay replaces the overlay.
func (f *Flow) SetOverlay(o Overlay) {
	f.overlay = o
	f.requestLayout()
}

// Subscribe registers a layout listener.
func (f *Flow) Subscribe(observer notify.Observer[Event]) *notify.Subscription[Event] {
	return f.events.Subscribe(observer)
}

// Pool returns the row pool.
func (f *Flow) Pool() *Pool { return f.pool }

// Count returns the number of rows in the source.
func (f *Flow) Count() int { return f.src.Count() }

// CellLength returns the length of the row at index.
func (f *Flow) CellLength(index int) float64 { return f.length(index) }

func (f *Flow) length(index int) float64 {
	return max(f.src.CellLength(index), minLength)
}

// ViewportLength returns the viewport length.
func (f *Flow) ViewportLength() float64 { return f.viewportLength }

// SetViewportLength resizes the viewport.
func (f *Flow) SetViewportLength(length float64) {
	length = max(length, 0)
	if length == f.viewportLength {
		return
	}
	f.viewportLength = length
	f.requestLayout()
}

// Cells returns the scrolling window, ascending by index.
func (f *Flow) Cells() []*view.Row { return f.cells }

// Visible returns every row to paint, in paint order: scrolling rows by
// index, then rows representing fixed rows by index.
func (f *Flow) Visible() []*view.Row { return f.visible }

// Cell returns the scrolling row bound to index, or nil.
func (f *Flow) Cell(index int) *view.Row {
	i, ok := slices.BinarySearchFunc(f.cells, index, func(r *view.Row, idx int) int {
		return cmp.Compare(r.Index(), idx)
	})
	if !ok {
		return nil
	}
	return f.cells[i]
}

// TopIndex returns the index of the row at the viewport top.
func (f *Flow) TopIndex() int { return f.topIndex }

// TopOffset returns how many pixels of the top row are scrolled away.
func (f *Flow) TopOffset() float64 { return f.topOffset }

// FirstVisibleIndex returns the first scrolling index on screen, or -1.
func (f *Flow) FirstVisibleIndex() int {
	for _, r := range f.cells {
		if r.Y()+r.Height() > 0 {
			return r.Index()
		}
	}
	return -1
}

// LastVisibleIndex returns the last scrolling index on screen, or -1.
func (f *Flow) LastVisibleIndex() int {
	for i := len(f.cells) - 1; i >= 0; i-- {
		if r := f.cells[i]; r.Y() < f.viewportLength {
			return r.Index()
		}
	}
	return -1
}

// Stats returns a snapshot of layout activity.
func (f *Flow) Stats() Stats { return f.stats }

// NeedsLayout reports whether a layout pass is outstanding.
func (f *Flow) NeedsLayout() bool { return f.needsLayout }

// ScrollPixels moves the viewport by delta pixels. Positive values move
// toward higher indices. The result is clamped to the content.
func (f *Flow) ScrollPixels(delta float64) {
	if delta == 0 {
		return
	}
	f.topOffset += delta
	f.requestLayout()
}

// Show scrolls so the row at index starts at the viewport top.
func (f *Flow) Show(index int) {
	f.ShowAt(index, 0)
}

// ShowAt scrolls so the row at index starts y pixels below the viewport
// top. The index is clamped to the rows; near the end of the content the
// window is realigned so the last row ends at the viewport bottom.
func (f *Flow) ShowAt(index int, y float64) {
	count := f.src.Count()
	if count == 0 {
		return
	}
	index = clampIndex(index, count)

	i, offset := index, y
	for offset > 0 && i > 0 {
		i--
		offset -= f.length(i)
	}
	f.setTop(i, max(0, -offset))
}

// ScrollTo makes the row at index visible below the first reserved
// pixels. A row already fully visible does not move; otherwise it is
// centered in the unreserved part of the viewport.
func (f *Flow) ScrollTo(index int, reserved float64) {
	count := f.src.Count()
	if count == 0 {
		return
	}
	index = clampIndex(index, count)
	f.Layout()

	if r := f.Cell(index); r != nil && r.Y() >= reserved && r.Y()+r.Height() <= f.viewportLength {
		return
	}
	length := f.length(index)
	y := reserved + (f.viewportLength-reserved-length)/2
	f.ShowAt(index, max(y, reserved))
}

// Position returns the normalized scroll position in [0, 1].
func (f *Flow) Position() float64 {
	count := f.src.Count()
	if count == 0 || (f.topIndex == 0 && f.topOffset == 0) {
		return 0
	}
	if n := len(f.cells); n > 0 {
		last := f.cells[n-1]
		if last.Index() == count-1 && last.Y()+last.Height() <= f.viewportLength {
			return 1
		}
	}
	return (float64(f.topIndex) + f.topOffset/f.length(f.topIndex)) / float64(count)
}

// SetPosition scrolls to a normalized position in [0, 1]. Fractional
// positions land inside a row, which allows smooth scrolling.
func (f *Flow) SetPosition(p float64) {
	count := f.src.Count()
	if count == 0 {
		return
	}
	p = min(max(p, 0), 1)
	if p == 1 {
		last := count - 1
		f.ShowAt(last, f.viewportLength-f.length(last))
		return
	}
	pos := p * float64(count)
	index := min(int(pos), count-1)
	f.setTop(index, (pos-float64(index))*f.length(index))
}

func (f *Flow) setTop(index int, offset float64) {
	if index == f.topIndex && offset == f.topOffset && !f.needsLayout {
		return
	}
	f.topIndex = index
	f.topOffset = offset
	f.requestLayout()
}

// ItemsInserted adjusts the window for count rows inserted at index.
// Rows before the insertion point keep their bindings.
func (f *Flow) ItemsInserted(index, count int) {
	if count <= 0 {
		return
	}
	if index < f.topIndex {
		f.topIndex += count
	}
	f.markStale(index, -1)
	f.pool.Invalidate()
	f.requestLayout()
}

// ItemsRemoved adjusts the window for count rows removed at index.
func (f *Flow) ItemsRemoved(index, count int) {
	if count <= 0 {
		return
	}
	switch end := index + count; {
	case f.topIndex >= end:
		f.topIndex -= count
	case f.topIndex >= index:
		f.topIndex = index
		f.topOffset = 0
	}
	f.markStale(index, -1)
	f.pool.Invalidate()
	f.requestLayout()
}

// ItemsReplaced rebinds every row after a bulk replacement.
func (f *Flow) ItemsReplaced() {
	f.markStale(0, -1)
	f.pool.Invalidate()
	f.requestLayout()
}

// ItemsChanged rebinds rows in [index, index+count) whose content or
// length changed.
func (f *Flow) ItemsChanged(index, count int) {
	if count <= 0 {
		return
	}
	f.markStale(index, index+count)
	f.requestLayout()
}

// Rebuild discards the window and recomputes it on the next pass.
func (f *Flow) Rebuild() {
	f.needsRebuild = true
	f.requestLayout()
}

// RequestLayout schedules a layout pass and runs it.
func (f *Flow) RequestLayout() {
	f.requestLayout()
}

// markStale flags rows in [from, to) for rebinding; to < 0 means no end.
func (f *Flow) markStale(from, to int) {
	mark := func(r *view.Row) {
		if i := r.Index(); i >= from && (to < 0 || i < to) {
			r.MarkStale()
		}
	}
	for _, r := range f.cells {
		mark(r)
	}
	if f.overlay != nil {
		for _, r := range f.overlay.Pinned() {
			mark(r)
		}
	}
}

func (f *Flow) requestLayout() {
	f.needsLayout = true
	f.Layout()
}

// Layout runs a layout pass if one is needed. A call made while a pass
// is running is coalesced into a single follow-up pass.
func (f *Flow) Layout() {
	if f.inLayout {
		if f.needsLayout && !f.pending {
			f.pending = true
			f.stats.Coalesced++
		}
		return
	}
	if !f.needsLayout {
		return
	}

	f.inLayout = true
	defer func() { f.inLayout = false }()

	for pass := 0; ; pass++ {
		f.pending = false
		f.needsLayout = false
		rebuilt := f.layoutPass()
		f.events.Notify(Event{
			First:    f.FirstVisibleIndex(),
			Last:     f.LastVisibleIndex(),
			Position: f.Position(),
			Rebuilt:  rebuilt,
		})
		if !f.pending {
			return
		}
		if pass >= maxFollowUps {
			f.needsLayout = true
			f.stats.Deferred++
			f.log.Warn("layout requested again after %d follow-up pass(es); deferring", maxFollowUps)
			return
		}
	}
}

func (f *Flow) layoutPass() bool {
	f.stats.Passes++
	count := f.src.Count()
	f.pool.Resize(count)

	if count == 0 || f.viewportLength <= 0 {
		f.releaseAll()
		f.topIndex, f.topOffset = 0, 0
		f.finish()
		return false
	}
	f.normalizeTop(count)

	rebuilt := f.needsRebuild
	f.needsRebuild = false
	if rebuilt {
		f.stats.Rebuilds++
		f.releaseAll()
	}

	f.retained = make(map[int]*view.Row, len(f.cells))
	for _, r := range f.cells {
		f.retained[r.Index()] = r
	}
	f.cells = f.cells[:0:0]

	f.addLeadingCells(f.topIndex, -f.topOffset)
	if f.addTrailingCells(true) {
		rebuilt = true
	}

	for _, r := range f.retained {
		f.pool.Release(r)
	}
	f.retained = nil

	f.syncTop()
	f.finish()
	return rebuilt
}

// addLeadingCells places the row at index so it starts at startOffset,
// then walks backward until the region above the viewport top is covered
// or index 0 is reached. The first pass counts the rows; the second binds
// and places them.
//
// Every index is bound to its own data here, fixed or not; bind only
// flags fixed rows. Fixed rows outside the window get their pinned copies
// from the overlay's Reconcile once the pass is complete.
func (f *Flow) addLeadingCells(index int, startOffset float64) {
	n := 1
	for i, offset := index, startOffset; offset > 0 && i > 0; n++ {
		i--
		offset -= f.length(i)
	}

	leading := make([]*view.Row, n)
	offset := startOffset
	for k := 0; k < n; k++ {
		i := index - k
		length := f.length(i)
		if k > 0 {
			offset -= length
		}
		r := f.cellFor(i)
		f.place(r, i, offset, length)
		leading[n-1-k] = r
	}
	f.cells = append(leading, f.cells...)
}

// addTrailingCells appends rows after the last one until the viewport is
// covered or the rows run out. With fillEmptyCells set, leftover space at
// the bottom pulls earlier rows in so the content ends at the viewport
// bottom. It reports whether the window had to be rebuilt.
func (f *Flow) addTrailingCells(fillEmptyCells bool) bool {
	if len(f.cells) == 0 {
		return false
	}
	count := f.src.Count()
	last := f.cells[len(f.cells)-1]
	offset := last.Y() + last.Height()
	for i := last.Index() + 1; offset < f.viewportLength && i < count; i++ {
		length := f.length(i)
		r := f.cellFor(i)
		f.place(r, i, offset, length)
		f.cells = append(f.cells, r)
		offset += length
	}

	shortfall := f.viewportLength - offset
	first := f.cells[0]
	if !fillEmptyCells || shortfall <= 0 || (first.Index() == 0 && first.Y() >= 0) {
		return false
	}

	if f.overlay != nil && f.overlay.Active() {
		f.rebuildFromBottom()
		return true
	}
	f.realign(shortfall)
	return false
}

// realign shifts the window down by shortfall and prepends rows one at a
// time until index 0 sits at offset 0 or the gap above is closed.
func (f *Flow) realign(shortfall float64) {
	f.stats.Realigns++
	for _, r := range f.cells {
		r.Place(r.Y()+shortfall, r.Height())
	}
	for {
		first := f.cells[0]
		if first.Y() <= 0 || first.Index() == 0 {
			break
		}
		i := first.Index() - 1
		length := f.length(i)
		r := f.cellFor(i)
		f.place(r, i, first.Y()-length, length)
		f.cells = append([]*view.Row{r}, f.cells...)
	}
	if first := f.cells[0]; first.Y() > 0 {
		shift := first.Y()
		for _, r := range f.cells {
			r.Place(r.Y()-shift, r.Height())
		}
	}
}

// rebuildFromBottom discards the window and rebuilds it with the last
// row ending at the viewport bottom. Patching the window in place is
// avoided while pinned rows are active.
func (f *Flow) rebuildFromBottom() {
	f.stats.Rebuilds++
	f.log.Debug("viewport shortfall with fixed rows; rebuilding from the last row")

	for _, r := range f.cells {
		f.pool.Release(r)
	}
	for i, r := range f.retained {
		f.pool.Release(r)
		delete(f.retained, i)
	}
	f.cells = f.cells[:0:0]

	last := f.src.Count() - 1
	f.addLeadingCells(last, f.viewportLength-f.length(last))
	if first := f.cells[0]; first.Y() > 0 {
		shift := first.Y()
		for _, r := range f.cells {
			r.Place(r.Y()-shift, r.Height())
		}
	}
}

func (f *Flow) cellFor(index int) *view.Row {
	if r, ok := f.retained[index]; ok {
		delete(f.retained, index)
		if r.Stale() {
			f.pool.Bind(r, index)
		}
		return r
	}
	return f.pool.Acquire(index)
}

func (f *Flow) place(r *view.Row, index int, y, length float64) {
	r.Place(y, length)
	r.SetRole(view.RoleScrolling)
	r.SetVisible(true)
	r.SetFixed(f.src.IsFixed(index))
}

func (f *Flow) releaseAll() {
	for _, r := range f.cells {
		f.pool.Release(r)
	}
	f.cells = f.cells[:0:0]
}

// normalizeTop moves whole rows between topIndex and topOffset until the
// offset lies inside the top row.
func (f *Flow) normalizeTop(count int) {
	if f.topIndex >= count {
		f.topIndex, f.topOffset = count-1, 0
	}
	if f.topIndex < 0 {
		f.topIndex, f.topOffset = 0, 0
	}
	for f.topOffset < 0 && f.topIndex > 0 {
		f.topIndex--
		f.topOffset += f.length(f.topIndex)
	}
	f.topOffset = max(f.topOffset, 0)
	for f.topIndex < count-1 && f.topOffset >= f.length(f.topIndex) {
		f.topOffset -= f.length(f.topIndex)
		f.topIndex++
	}
}

// syncTop derives the scroll position from the placed window.
func (f *Flow) syncTop() {
	for _, r := range f.cells {
		if r.Y()+r.Height() > 0 {
			f.topIndex = r.Index()
			f.topOffset = max(0, -r.Y())
			return
		}
	}
}

// finish runs the overlay and computes paint order.
func (f *Flow) finish() {
	if f.overlay != nil {
		f.overlay.Reconcile(f)
	}
	f.sortForZOrder()
}

// sortForZOrder orders rows by index so paint order is deterministic, and
// moves rows representing fixed rows to the front.
func (f *Flow) sortForZOrder() {
	byIndex := func(a, b *view.Row) int { return cmp.Compare(a.Index(), b.Index()) }
	slices.SortFunc(f.cells, byIndex)

	visible := make([]*view.Row, 0, len(f.cells))
	var fixed []*view.Row
	for _, r := range f.cells {
		if r.Fixed() {
			fixed = append(fixed, r)
		} else {
			visible = append(visible, r)
		}
	}
	if f.overlay != nil {
		fixed = append(fixed, f.overlay.Pinned()...)
	}
	slices.SortStableFunc(fixed, byIndex)
	f.visible = append(visible, fixed...)
}

func clampIndex(index, count int) int {
	return min(max(index, 0), count-1)
}
