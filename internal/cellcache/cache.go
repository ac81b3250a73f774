// Package cellcache provides an index-addressed cache of recyclable view
// objects.
//
// Entries are held through weak pointers, so the cache never keeps an
// object alive on its own: a miss after a Put is a normal outcome and
// callers fall back to building a fresh object. An optional strong floor
// keeps the most recently stored objects reachable so that short
// back-and-forth scrolling does not depend on collector timing.
package cellcache

import (
	"sync/atomic"
	"weak"
)

// Cacheable is implemented by values that can opt out of caching.
type Cacheable interface {
	Cacheable() bool
}

// Config configures the cache behavior.
type Config struct {
	// Size is the initial index range (usually the row count).
	Size int

	// StrongFloor is the number of most recently stored values kept
	// strongly reachable. Zero disables the floor.
	StrongFloor int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		StrongFloor: 64,
	}
}

// Stats reports cache activity.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Puts      uint64
	Rejected  uint64
	Reclaimed uint64
}

// Cache is a sparse table of weak references keyed by index.
// It is meant for single-goroutine use; stats are atomic so they can be
// read from elsewhere.
type Cache[T any] struct {
	entries []weak.Pointer[T]

	// Ring of strong references to the latest Puts.
	floor []*T
	next  int

	hits      atomic.Uint64
	misses    atomic.Uint64
	puts      atomic.Uint64
	rejected  atomic.Uint64
	reclaimed atomic.Uint64
}

// New creates a cache.
func New[T any](config Config) *Cache[T] {
	c := &Cache[T]{
		entries: make([]weak.Pointer[T], max(config.Size, 0)),
	}
	if config.StrongFloor > 0 {
		c.floor = make([]*T, config.StrongFloor)
	}
	return c
}

// Size returns the index range of the table.
func (c *Cache[T]) Size() int {
	return len(c.entries)
}

// Resize changes the index range. Entries beyond the new size are dropped.
func (c *Cache[T]) Resize(size int) {
	size = max(size, 0)
	if size <= len(c.entries) {
		clear(c.entries[size:])
		c.entries = c.entries[:size]
		return
	}
	grown := make([]weak.Pointer[T], size)
	copy(grown, c.entries)
	c.entries = grown
}

// Get returns the value stored at index if it is still reachable.
func (c *Cache[T]) Get(index int) (*T, bool) {
	if index < 0 || index >= len(c.entries) {
		c.misses.Add(1)
		return nil, false
	}
	wp := c.entries[index]
	if wp == (weak.Pointer[T]{}) {
		c.misses.Add(1)
		return nil, false
	}
	v := wp.Value()
	if v == nil {
		// Collected since the Put.
		c.entries[index] = weak.Pointer[T]{}
		c.reclaimed.Add(1)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return v, true
}

// Put stores v at index, growing the table if needed. Values that report
// themselves as not cacheable are ignored, as are negative indices.
func (c *Cache[T]) Put(index int, v *T) {
	if v == nil || index < 0 {
		return
	}
	if cv, ok := any(v).(Cacheable); ok && !cv.Cacheable() {
		c.rejected.Add(1)
		return
	}
	if index >= len(c.entries) {
		c.Resize(index + 1)
	}
	c.entries[index] = weak.Make(v)
	c.puts.Add(1)

	if len(c.floor) > 0 {
		c.floor[c.next] = v
		c.next = (c.next + 1) % len(c.floor)
	}
}

// Delete removes the entry at index.
func (c *Cache[T]) Delete(index int) {
	if index >= 0 && index < len(c.entries) {
		c.entries[index] = weak.Pointer[T]{}
	}
}

// InvalidateAll clears every entry while keeping the index range, so
// positions are not renumbered mid-scroll.
func (c *Cache[T]) InvalidateAll() {
	clear(c.entries)
	clear(c.floor)
	c.next = 0
}

// Stats returns a snapshot of cache activity.
func (c *Cache[T]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Puts:      c.puts.Load(),
		Rejected:  c.rejected.Load(),
		Reclaimed: c.reclaimed.Load(),
	}
}
