// Package app wires a sheet, its settings and a display backend into the
// gridview host.
package app

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/gridflow/internal/config"
	"github.com/dshills/gridflow/internal/flow"
	"github.com/dshills/gridflow/internal/grid"
	"github.com/dshills/gridflow/internal/logging"
	"github.com/dshills/gridflow/internal/notify"
	"github.com/dshills/gridflow/internal/render"
	"github.com/dshills/gridflow/internal/render/backend"
	"github.com/dshills/gridflow/internal/sheet"
	"github.com/dshills/gridflow/internal/source"
)

// Default size of the blank sheet opened without a file.
const (
	DefaultRows    = 1000
	DefaultColumns = 26
)

// Options configures the application.
type Options struct {
	// ConfigPath is the settings file. Empty means defaults and the
	// environment only.
	ConfigPath string

	// SheetPath is a YAML, JSON or Lua sheet file. Empty opens a blank sheet of
	// Rows x Columns.
	SheetPath string
	Rows      int
	Columns   int

	// Watch reloads the settings file when it changes.
	Watch         bool
	WatchDebounce time.Duration

	// LogLevel overrides the configured level when set.
	LogLevel string

	// LogOutput receives log lines. Nil discards them, since the terminal
	// owns the screen.
	LogOutput io.Writer
}

// Application owns the sheet and runs the event loop.
type Application struct {
	mu sync.RWMutex

	opts     Options
	log      *logging.Logger
	settings *config.Manager
	cfgSub   *notify.Subscription[config.Change]

	def     *source.Definition
	grid    *grid.Grid
	sheet   *sheet.Sheet
	backend backend.Backend
	painter *render.Painter

	running  atomic.Bool
	shutdown sync.Once
	done     chan struct{}
}

// New loads the settings and the sheet.
func New(ctx context.Context, opts Options) (*Application, error) {
	out := opts.LogOutput
	if out == nil {
		out = io.Discard
	}
	logCfg := logging.DefaultConfig()
	logCfg.Output = out
	app := &Application{
		opts: opts,
		log:  logging.New(logCfg),
		done: make(chan struct{}),
	}
	if err := app.bootstrap(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes the components in dependency order.
func (app *Application) bootstrap(ctx context.Context) error {
	settings, err := config.NewManager(app.opts.ConfigPath, app.log)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.settings = settings
	cfg := settings.Config()
	app.applyLogLevel(cfg)

	if app.opts.SheetPath != "" {
		app.def, err = source.Load(ctx, app.opts.SheetPath)
		if err != nil {
			return &InitError{Component: "sheet", Err: err}
		}
	} else {
		app.def = &source.Definition{
			Name:        "untitled",
			RowCount:    orDefault(app.opts.Rows, DefaultRows),
			ColumnCount: orDefault(app.opts.Columns, DefaultColumns),
		}
	}
	app.grid = grid.New(0, 0)
	if err := app.def.Apply(app.grid); err != nil {
		return &InitError{Component: "sheet", Err: err}
	}

	fixedRows, fixedCols := app.def.Fixed.Rows, app.def.Fixed.Columns
	if len(fixedRows) == 0 {
		fixedRows = cfg.Fixed.Rows
	}
	if len(fixedCols) == 0 {
		fixedCols = cfg.Fixed.Columns
	}
	app.sheet = sheet.New(app.grid, app.sheetOptions(cfg, fixedRows, fixedCols))
	app.log.Info("opened %s: %d rows, %d columns", app.def.Name, app.grid.RowCount(), app.grid.ColumnCount())

	app.cfgSub = settings.Subscribe(app.onConfigChange)
	if app.opts.Watch && app.opts.ConfigPath != "" {
		if err := settings.Watch(app.opts.WatchDebounce); err != nil {
			app.log.Warn("not watching %s: %v", app.opts.ConfigPath, err)
		}
	}
	return nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func (app *Application) sheetOptions(cfg config.Config, fixedRows, fixedCols []int) sheet.Options {
	pool := flow.DefaultPoolConfig()
	pool.PileLimit = cfg.Grid.PileLimit
	pool.Cache.StrongFloor = cfg.Grid.StrongFloor
	return sheet.Options{
		RowHeight:    cfg.Grid.RowHeight,
		ColumnWidth:  cfg.Grid.ColumnWidth,
		Cacheable:    cfg.Grid.Cacheable,
		Pool:         pool,
		FixedRows:    fixedRows,
		FixedColumns: fixedCols,
		Logger:       app.log,
	}
}

func (app *Application) applyLogLevel(cfg config.Config) {
	level := cfg.LogLevel()
	if app.opts.LogLevel != "" {
		level = logging.ParseLevel(app.opts.LogLevel)
	}
	app.log.SetLevel(level)
}

// SetBackend sets the display. Must be called before Run.
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.backend = b
	return nil
}

// Run initializes the backend and processes events until a quit key or
// Shutdown. A quit key returns ErrQuit.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.mu.RLock()
	b := app.backend
	app.mu.RUnlock()
	if b == nil {
		return ErrNoBackend
	}
	if err := b.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer b.Shutdown()

	popts := render.DefaultOptions()
	popts.Logger = app.log
	app.painter = render.New(b, popts)
	app.resize()

	return app.eventLoop(b)
}

// Shutdown stops the event loop and releases the sheet and the watcher.
// It is safe to call more than once.
func (app *Application) Shutdown() {
	app.shutdown.Do(func() {
		close(app.done)
		app.mu.RLock()
		b := app.backend
		app.mu.RUnlock()
		if b != nil && app.running.Load() {
			b.PostEvent(backend.Event{Type: backend.EventInterrupt})
		}
		app.cfgSub.Unsubscribe()
		if err := app.settings.Close(); err != nil {
			app.log.Warn("closing config watcher: %v", err)
		}
	})
}

// IsRunning returns true while the event loop runs.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Sheet returns the sheet being shown.
func (app *Application) Sheet() *sheet.Sheet { return app.sheet }

// Definition returns the loaded sheet definition.
func (app *Application) Definition() *source.Definition { return app.def }

// Settings returns the settings manager.
func (app *Application) Settings() *config.Manager { return app.settings }
