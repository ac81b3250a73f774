// Package watcher reports changes to a configuration file.
//
// The watcher observes the file's directory, so editors that save by
// writing a temporary file and renaming it are seen too. Bursts of events
// are debounced into a single callback.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/gridflow/internal/logging"
)

// Operation is the kind of change seen on the file.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates the file was created, or renamed into place.
	OpCreate

	// OpRemove indicates the file was deleted or renamed away.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event describes a settled change.
type Event struct {
	Path string
	Op   Operation
	Time time.Time
}

// Handler is called on the watcher goroutine after a change settles.
type Handler func(event Event)

// DefaultDebounce is how long the file must stay quiet before the handler
// runs.
const DefaultDebounce = 100 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.log = logging.OrNull(l).WithComponent("config.watcher")
	}
}

// Watcher monitors a single file.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	handler  Handler
	debounce time.Duration
	log      *logging.Logger

	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New starts watching the file at path. The file need not exist yet, but
// its directory must.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		path:     abs,
		handler:  handler,
		debounce: DefaultDebounce,
		log:      logging.Null.WithComponent("config.watcher"),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Close stops the watcher and waits for a running handler to return.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		w.wg.Wait()
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending Event
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			op, ok := convertOp(ev.Op)
			if !ok {
				continue
			}
			pending = coalesce(pending, Event{Path: w.path, Op: op, Time: time.Now()}, timerC != nil)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.emit(pending)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watching %s: %v", w.path, err)
		}
	}
}

// coalesce merges a new event into a pending one. Removal wins; a create
// followed by writes stays a create.
func coalesce(pending, next Event, hasPending bool) Event {
	if !hasPending {
		return next
	}
	if pending.Op == OpCreate && next.Op != OpRemove {
		next.Op = OpCreate
	}
	return next
}

func convertOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return OpRemove, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

// emit calls the handler, recovering from a panic so the watcher keeps
// running.
func (w *Watcher) emit(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("config change handler panicked: %v", r)
		}
	}()
	w.log.Debug("%s %s", ev.Op, ev.Path)
	w.handler(ev)
}
