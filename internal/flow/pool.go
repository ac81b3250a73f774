package flow

import (
	"github.com/dshills/gridflow/internal/cellcache"
	"github.com/dshills/gridflow/internal/view"
)

// Factory creates a new, unbound row.
type Factory func() *view.Row

// Binder fills a row with the data at index after it is bound.
type Binder func(row *view.Row, index int)

// PoolConfig configures a Pool.
type PoolConfig struct {
	// PileLimit is the maximum number of released rows kept for reuse.
	// Rows released beyond the limit are only weakly cached.
	PileLimit int

	// Cache configures the index-addressed row cache.
	Cache cellcache.Config
}

// DefaultPoolConfig returns the default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		PileLimit: 32,
		Cache:     cellcache.DefaultConfig(),
	}
}

// PoolStats reports pool activity.
type PoolStats struct {
	Created   int
	Binds     int
	CacheHits int
	PileSize  int
	Cache     cellcache.Stats
}

// Pool hands out rows bound to an index. A request is served, in order,
// by a cached row still bound to that index, by a released row from the
// pile, or by the factory. A miss anywhere is never an error.
type Pool struct {
	config  PoolConfig
	cache   *cellcache.Cache[view.Row]
	pile    []*view.Row
	factory Factory
	binder  Binder

	created   int
	binds     int
	cacheHits int
}

// NewPool creates a pool. A nil binder leaves bound rows empty.
func NewPool(config PoolConfig, factory Factory, binder Binder) *Pool {
	if config.PileLimit < 0 {
		config.PileLimit = 0
	}
	if factory == nil {
		factory = view.NewRow
	}
	if binder == nil {
		binder = func(*view.Row, int) {}
	}
	return &Pool{
		config:  config,
		cache:   cellcache.New[view.Row](config.Cache),
		factory: factory,
		binder:  binder,
	}
}

// Acquire returns a managed row bound to index.
func (p *Pool) Acquire(index int) *view.Row {
	if r, ok := p.cache.Get(index); ok && !r.Managed() && r.Index() == index {
		p.removeFromPile(r)
		p.cacheHits++
		if r.Stale() {
			p.Bind(r, index)
		}
		r.SetManaged(true)
		return r
	}

	var r *view.Row
	if n := len(p.pile); n > 0 {
		r = p.pile[n-1]
		p.pile[n-1] = nil
		p.pile = p.pile[:n-1]
	} else {
		r = p.factory()
		p.created++
	}
	p.Bind(r, index)
	r.SetManaged(true)
	return r
}

// Bind (re)binds a row to index and records it in the cache.
func (p *Pool) Bind(r *view.Row, index int) {
	r.Bind(index)
	p.binder(r, index)
	p.binds++
	p.cache.Put(index, r)
}

// Release returns a row to the pool. The row keeps its binding so a later
// request for the same index can take it back without rebinding.
func (p *Pool) Release(r *view.Row) {
	if r == nil || !r.Managed() {
		return
	}
	r.SetManaged(false)
	r.SetVisible(false)
	r.SetFixed(false)
	r.SetRole(view.RoleScrolling)
	if len(p.pile) < p.config.PileLimit {
		p.pile = append(p.pile, r)
	}
}

// Invalidate drops cached rows and marks piled rows stale. The cache keeps
// its index range so positions are not renumbered.
func (p *Pool) Invalidate() {
	p.cache.InvalidateAll()
	for _, r := range p.pile {
		r.MarkStale()
	}
}

// Resize sets the cache index range, usually to the row count.
func (p *Pool) Resize(count int) {
	p.cache.Resize(count)
}

// Clear empties the pile and the cache.
func (p *Pool) Clear() {
	clear(p.pile)
	p.pile = p.pile[:0]
	p.cache.InvalidateAll()
}

// Stats returns a snapshot of pool activity.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Created:   p.created,
		Binds:     p.binds,
		CacheHits: p.cacheHits,
		PileSize:  len(p.pile),
		Cache:     p.cache.Stats(),
	}
}

func (p *Pool) removeFromPile(r *view.Row) {
	for i, c := range p.pile {
		if c == r {
			p.pile = append(p.pile[:i], p.pile[i+1:]...)
			return
		}
	}
}
