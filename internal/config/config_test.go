package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/gridflow/internal/config/loader"
	"github.com/dshills/gridflow/internal/logging"
)

// mapLoader serves a fixed settings map.
type mapLoader map[string]any

func (m mapLoader) Load() (map[string]any, error) { return m, nil }

type failLoader struct{ err error }

func (f failLoader) Load() (map[string]any, error) { return nil, f.err }

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("expected valid defaults, got %v", err)
	}
}

func TestLoadFromMergesInOrder(t *testing.T) {
	file := mapLoader{
		"grid":    map[string]any{"row_height": int64(2), "pile_limit": int64(8)},
		"fixed":   map[string]any{"rows": []any{int64(0)}},
		"logging": map[string]any{"level": "warn"},
	}
	env := mapLoader{
		"grid": map[string]any{"pile_limit": int64(16)},
	}

	cfg, err := LoadFrom(file, env)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	want := Default()
	want.Grid.RowHeight = 2
	want.Grid.PileLimit = 16
	want.Fixed.Rows = []int{0}
	want.Logging.Level = "warn"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.LogLevel() != logging.LevelWarn {
		t.Errorf("expected warn level, got %s", cfg.LogLevel())
	}
}

func TestLoadFromRejectsUnknownSettings(t *testing.T) {
	_, err := LoadFrom(mapLoader{"grid": map[string]any{"row_hieght": int64(2)}})
	if err == nil || !strings.Contains(err.Error(), "row_hieght") {
		t.Errorf("expected an unknown setting error naming row_hieght, got %v", err)
	}
}

func TestLoadFromLoaderError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := LoadFrom(failLoader{boom}); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		path   string
	}{
		{"row height", func(c *Config) { c.Grid.RowHeight = 0 }, "grid.row_height"},
		{"column width", func(c *Config) { c.Grid.ColumnWidth = -1 }, "grid.column_width"},
		{"pile limit", func(c *Config) { c.Grid.PileLimit = -1 }, "grid.pile_limit"},
		{"strong floor", func(c *Config) { c.Grid.StrongFloor = -2 }, "grid.strong_floor"},
		{"fixed rows", func(c *Config) { c.Fixed.Rows = []int{1, -1} }, "fixed.rows"},
		{"fixed columns", func(c *Config) { c.Fixed.Columns = []int{-3} }, "fixed.columns"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("expected ErrValidationFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.path) {
				t.Errorf("expected the error to name %s, got %v", tt.path, err)
			}
		})
	}
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridflow.toml")
	content := "[grid]\ncolumn_width = 20\n\n[fixed]\ncolumns = [0]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GRIDFLOW_LOG_LEVEL", "debug")
	t.Setenv("GRIDFLOW_FIXED_ROWS", "0,1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Grid.ColumnWidth != 20 {
		t.Errorf("expected column width 20, got %v", cfg.Grid.ColumnWidth)
	}
	if diff := cmp.Diff([]int{0, 1}, cfg.Fixed.Rows); diff != "" {
		t.Errorf("fixed rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, cfg.Fixed.Columns); diff != "" {
		t.Errorf("fixed columns mismatch (-want +got):\n%s", diff)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug, got %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridflow.toml")
	if err := os.WriteFile(path, []byte("[grid\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var perr *loader.ParseError
	if _, err := Load(path); !errors.As(err, &perr) {
		t.Errorf("expected a ParseError, got %v", err)
	}
}

func TestManagerReload(t *testing.T) {
	settings := mapLoader{"grid": map[string]any{"row_height": int64(1)}}
	m, err := newManager("", nil, settings)
	if err != nil {
		t.Fatalf("newManager failed: %v", err)
	}

	var changes []Change
	sub := m.Subscribe(func(c Change) { changes = append(changes, c) })
	defer sub.Unsubscribe()

	settings["fixed"] = map[string]any{"rows": []any{int64(2)}}
	if err := m.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if !changes[0].FixedChanged() {
		t.Error("expected the fixed rows to differ")
	}
	if diff := cmp.Diff([]int{2}, m.Config().Fixed.Rows); diff != "" {
		t.Errorf("fixed rows mismatch (-want +got):\n%s", diff)
	}

	// A failed reload keeps the current settings and publishes nothing.
	settings["grid"] = map[string]any{"row_height": int64(-1)}
	if err := m.Reload(); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
	if len(changes) != 1 {
		t.Errorf("expected no new change, got %d", len(changes))
	}
	if m.Config().Grid.RowHeight != 1 {
		t.Errorf("expected row height 1 kept, got %v", m.Config().Grid.RowHeight)
	}
}

func TestManagerConfigIsCopy(t *testing.T) {
	m, err := newManager("", nil, mapLoader{"fixed": map[string]any{"rows": []any{int64(0)}}})
	if err != nil {
		t.Fatalf("newManager failed: %v", err)
	}
	cfg := m.Config()
	cfg.Fixed.Rows[0] = 9
	if m.Config().Fixed.Rows[0] != 0 {
		t.Error("expected Config to return a copy")
	}
}

func TestManagerWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridflow.toml")
	if err := os.WriteFile(path, []byte("[grid]\nrow_height = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := newManager(path, nil, loader.NewTOMLLoader(path))
	if err != nil {
		t.Fatalf("newManager failed: %v", err)
	}
	defer m.Close()

	reloaded := make(chan Change, 4)
	m.Subscribe(func(c Change) { reloaded <- c })
	if err := m.Watch(10 * time.Millisecond); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("[grid]\nrow_height = 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-reloaded:
		if c.New.Grid.RowHeight != 3 {
			t.Errorf("expected row height 3, got %v", c.New.Grid.RowHeight)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the reload")
	}
}

func TestManagerWatchWithoutPath(t *testing.T) {
	m, err := newManager("", nil)
	if err != nil {
		t.Fatalf("newManager failed: %v", err)
	}
	if err := m.Watch(0); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
