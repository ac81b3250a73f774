package config

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/gridflow/internal/config/loader"
	"github.com/dshills/gridflow/internal/logging"
)

// EnvPrefix starts every environment variable the loader reads.
const EnvPrefix = "GRIDFLOW_"

// Config is the complete set of settings.
type Config struct {
	Grid    GridConfig    `toml:"grid"`
	Fixed   FixedConfig   `toml:"fixed"`
	Logging LoggingConfig `toml:"logging"`
}

// GridConfig holds the sheet geometry and recycling settings.
type GridConfig struct {
	// RowHeight and ColumnWidth apply to rows and columns without an
	// explicit size.
	RowHeight   float64 `toml:"row_height"`
	ColumnWidth float64 `toml:"column_width"`

	// Cacheable lets released rows be found again by index.
	Cacheable bool `toml:"cacheable"`

	PileLimit   int `toml:"pile_limit"`
	StrongFloor int `toml:"strong_floor"`
}

// FixedConfig lists the rows and columns pinned at startup.
type FixedConfig struct {
	Rows    []int `toml:"rows"`
	Columns []int `toml:"columns"`
}

// LoggingConfig holds the logger settings.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Grid: GridConfig{
			RowHeight:   1,
			ColumnWidth: 12,
			Cacheable:   true,
			PileLimit:   32,
			StrongFloor: 64,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	c.Fixed.Rows = slices.Clone(c.Fixed.Rows)
	c.Fixed.Columns = slices.Clone(c.Fixed.Columns)
	return c
}

// LogLevel returns the configured logging level.
func (c Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// Validate reports every setting that holds an unusable value.
func (c Config) Validate() error {
	var errs []error
	invalid := func(path string, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s %s", ErrValidationFailed, path, fmt.Sprintf(format, args...)))
	}
	if c.Grid.RowHeight <= 0 {
		invalid("grid.row_height", "must be positive, got %v", c.Grid.RowHeight)
	}
	if c.Grid.ColumnWidth <= 0 {
		invalid("grid.column_width", "must be positive, got %v", c.Grid.ColumnWidth)
	}
	if c.Grid.PileLimit < 0 {
		invalid("grid.pile_limit", "must not be negative, got %d", c.Grid.PileLimit)
	}
	if c.Grid.StrongFloor < 0 {
		invalid("grid.strong_floor", "must not be negative, got %d", c.Grid.StrongFloor)
	}
	for _, r := range c.Fixed.Rows {
		if r < 0 {
			invalid("fixed.rows", "has negative index %d", r)
		}
	}
	for _, col := range c.Fixed.Columns {
		if col < 0 {
			invalid("fixed.columns", "has negative index %d", col)
		}
	}
	if !logging.ValidLevel(c.Logging.Level) {
		invalid("logging.level", "is not a level: %q", c.Logging.Level)
	}
	return errors.Join(errs...)
}

// Load reads the TOML file at path, which may be empty or missing, and
// applies environment overrides.
func Load(path string) (Config, error) {
	return LoadFrom(loader.NewTOMLLoader(path), loader.NewEnvLoader(EnvPrefix))
}

// LoadFrom merges the sources over the defaults, in order, and validates
// the result.
func LoadFrom(loaders ...loader.Loader) (Config, error) {
	var merged map[string]any
	for _, l := range loaders {
		m, err := l.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg := Default()
	if err := decode(merged, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode applies a settings map to cfg. Settings missing from the map
// keep their current values.
func decode(m map[string]any, cfg *Config) error {
	if len(m) == 0 {
		return nil
	}
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown settings:\n%s", strict.String())
		}
		return fmt.Errorf("decoding settings: %w", err)
	}
	return nil
}
