// Package notify provides synchronous change notification.
//
// A Notifier delivers typed change values to subscribed observers in
// subscription order. Delivery happens on the caller's goroutine, so an
// observer sees the state that produced the change. Observers may publish
// further changes or unsubscribe from inside a callback.
package notify

import (
	"sync"
)

// Observer is called when a change is published.
type Observer[C any] func(change C)

// Subscription represents an active observer subscription.
type Subscription[C any] struct {
	id       uint64
	notifier *Notifier[C]
}

// Unsubscribe removes this subscription. It is safe to call more than once.
func (s *Subscription[C]) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
		s.notifier = nil
	}
}

type entry[C any] struct {
	id       uint64
	match    func(C) bool
	observer Observer[C]
}

// Notifier manages change subscriptions.
type Notifier[C any] struct {
	mu sync.RWMutex

	entries []entry[C]
	nextID  uint64

	// Suspended notifications are queued until Resume.
	suspended int
	queued    []C

	closed bool
}

// New creates a new Notifier.
func New[C any]() *Notifier[C] {
	return &Notifier[C]{}
}

// Subscribe registers an observer for all changes.
func (n *Notifier[C]) Subscribe(observer Observer[C]) *Subscription[C] {
	return n.SubscribeWhere(nil, observer)
}

// SubscribeWhere registers an observer that only receives changes for
// which match returns true. A nil match receives everything.
func (n *Notifier[C]) SubscribeWhere(match func(C) bool, observer Observer[C]) *Subscription[C] {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.entries = append(n.entries, entry[C]{id: id, match: match, observer: observer})

	return &Subscription[C]{id: id, notifier: n}
}

// Len returns the number of active subscriptions.
func (n *Notifier[C]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.entries)
}

// Notify sends a change to all matching observers.
func (n *Notifier[C]) Notify(change C) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	if n.suspended > 0 {
		n.queued = append(n.queued, change)
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()

	n.deliver(change)
}

// Suspend queues notifications until the matching Resume call.
// Calls nest.
func (n *Notifier[C]) Suspend() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.suspended++
}

// Resume ends one Suspend. When the outermost suspension ends, queued
// changes are delivered in publication order.
func (n *Notifier[C]) Resume() {
	n.mu.Lock()
	if n.suspended == 0 {
		n.mu.Unlock()
		return
	}
	n.suspended--
	if n.suspended > 0 {
		n.mu.Unlock()
		return
	}
	queued := n.queued
	n.queued = nil
	n.mu.Unlock()

	for _, change := range queued {
		n.deliver(change)
	}
}

// Close drops all subscriptions. Further notifications are ignored.
func (n *Notifier[C]) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.entries = nil
	n.queued = nil
}

func (n *Notifier[C]) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, e := range n.entries {
		if e.id == id {
			n.entries = append(n.entries[:i:i], n.entries[i+1:]...)
			return
		}
	}
}

// deliver calls observers outside the lock.
func (n *Notifier[C]) deliver(change C) {
	n.mu.RLock()
	observers := make([]Observer[C], 0, len(n.entries))
	for _, e := range n.entries {
		if e.match == nil || e.match(change) {
			observers = append(observers, e.observer)
		}
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

// Batch collects multiple changes and delivers them as a group.
type Batch[C any] struct {
	notifier *Notifier[C]
	changes  []C
}

// NewBatch creates a new batch for collecting changes.
func (n *Notifier[C]) NewBatch() *Batch[C] {
	return &Batch[C]{notifier: n}
}

// Add adds a change to the batch.
func (b *Batch[C]) Add(change C) {
	b.changes = append(b.changes, change)
}

// Commit sends all batched changes to observers.
func (b *Batch[C]) Commit() {
	changes := b.changes
	b.changes = nil
	for _, change := range changes {
		b.notifier.Notify(change)
	}
}

// Discard clears the batch without sending notifications.
func (b *Batch[C]) Discard() {
	b.changes = nil
}

// Len returns the number of pending changes.
func (b *Batch[C]) Len() int {
	return len(b.changes)
}
