package loader

import (
	"encoding/json"
	"math"
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
//
// Mapped variables go to their configured path. Any other variable with
// the prefix maps its first word to the section and the rest to the
// setting: GRIDFLOW_GRID_PILE_LIMIT becomes grid.pile_limit.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates a loader for variables starting with prefix, which
// includes the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// defaultEnvMapping holds the short names for common settings.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":     "logging.level",
		prefix + "ROW_HEIGHT":    "grid.row_height",
		prefix + "COLUMN_WIDTH":  "grid.column_width",
		prefix + "FIXED_ROWS":    "fixed.rows",
		prefix + "FIXED_COLUMNS": "fixed.columns",
	}
}

// AddMapping maps an environment variable to a configuration path.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	l.mapping[envVar] = configPath
}

// Load reads the environment. Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, parseValue(value))
	}
	return config, nil
}

// envToPath converts PREFIX_SECTION_SETTING_NAME to section.setting_name.
func (l *EnvLoader) envToPath(env string) string {
	section, setting, ok := strings.Cut(strings.TrimPrefix(env, l.prefix), "_")
	if !ok || section == "" || setting == "" {
		return ""
	}
	return strings.ToLower(section) + "." + strings.ToLower(setting)
}

// parseValue converts a variable to the closest TOML type: bool, integer,
// float, a JSON array or object, or else a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return integral(v)
		}
	}
	// Comma lists of integers, as in FIXED_ROWS=0,1.
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		list := make([]any, 0, len(parts))
		for _, p := range parts {
			i, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
			if err != nil {
				return s
			}
			list = append(list, i)
		}
		return list
	}
	return s
}

// integral turns whole JSON numbers into int64 so they decode into
// integer settings.
func integral(v any) any {
	switch v := v.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v)
		}
		return v
	case []any:
		for i := range v {
			v[i] = integral(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = integral(v[k])
		}
		return v
	default:
		return v
	}
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
