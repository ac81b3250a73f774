package config

import (
	"slices"
	"sync"
	"time"

	"github.com/dshills/gridflow/internal/config/loader"
	"github.com/dshills/gridflow/internal/config/watcher"
	"github.com/dshills/gridflow/internal/logging"
	"github.com/dshills/gridflow/internal/notify"
)

// Change is published after a successful reload.
type Change struct {
	Old Config
	New Config
}

// FixedChanged reports whether the fixed rows or columns differ.
func (c Change) FixedChanged() bool {
	return !slices.Equal(c.Old.Fixed.Rows, c.New.Fixed.Rows) ||
		!slices.Equal(c.Old.Fixed.Columns, c.New.Fixed.Columns)
}

// Manager holds the current settings and reloads them on demand or when
// the file changes. It is safe for concurrent use; subscribers are called
// on the goroutine that triggered the reload.
type Manager struct {
	mu      sync.RWMutex
	path    string
	loaders []loader.Loader
	current Config
	changes *notify.Notifier[Change]
	watcher *watcher.Watcher
	log     *logging.Logger
}

// NewManager loads the settings from the file at path and the
// environment.
func NewManager(path string, log *logging.Logger) (*Manager, error) {
	return newManager(path, log, loader.NewTOMLLoader(path), loader.NewEnvLoader(EnvPrefix))
}

func newManager(path string, log *logging.Logger, loaders ...loader.Loader) (*Manager, error) {
	cfg, err := LoadFrom(loaders...)
	if err != nil {
		return nil, err
	}
	return &Manager{
		path:    path,
		loaders: loaders,
		current: cfg,
		changes: notify.New[Change](),
		log:     logging.OrNull(log).WithComponent("config"),
	}, nil
}

// Config returns a copy of the current settings.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// Path returns the settings file, which may be empty.
func (m *Manager) Path() string { return m.path }

// Subscribe registers an observer for reloads.
func (m *Manager) Subscribe(observer notify.Observer[Change]) *notify.Subscription[Change] {
	return m.changes.Subscribe(observer)
}

// Reload reads the sources again. On failure the current settings are
// kept and the error returned.
func (m *Manager) Reload() error {
	cfg, err := LoadFrom(m.loaders...)
	if err != nil {
		m.log.Warn("reload failed, keeping current settings: %v", err)
		return err
	}

	m.mu.Lock()
	old := m.current
	m.current = cfg
	m.mu.Unlock()

	m.log.Info("settings reloaded from %s", m.path)
	m.changes.Notify(Change{Old: old.Clone(), New: cfg.Clone()})
	return nil
}

// Watch reloads the settings whenever the file changes. A zero debounce
// uses watcher.DefaultDebounce.
func (m *Manager) Watch(debounce time.Duration) error {
	if m.path == "" {
		return ErrNoPath
	}
	if debounce <= 0 {
		debounce = watcher.DefaultDebounce
	}
	w, err := watcher.New(m.path, func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove {
			m.log.Debug("%s removed, keeping current settings", ev.Path)
			return
		}
		_ = m.Reload()
	}, watcher.WithDebounce(debounce), watcher.WithLogger(m.log))
	if err != nil {
		return err
	}

	m.mu.Lock()
	prev := m.watcher
	m.watcher = w
	m.mu.Unlock()
	if prev != nil {
		return prev.Close()
	}
	return nil
}

// Close stops watching.
func (m *Manager) Close() error {
	m.mu.Lock()
	w := m.watcher
	m.watcher = nil
	m.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}
