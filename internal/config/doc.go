// Package config holds the gridflow settings.
//
// Settings come from three places, later ones winning: built-in defaults,
// a TOML file, and GRIDFLOW_* environment variables. A file looks like:
//
//	[grid]
//	row_height = 1
//	column_width = 12
//	cacheable = true
//	pile_limit = 32
//	strong_floor = 64
//
//	[fixed]
//	rows = [0]
//	columns = [0]
//
//	[logging]
//	level = "info"
//
// Environment variables name a section and a setting, as in
// GRIDFLOW_GRID_PILE_LIMIT=64. The short forms GRIDFLOW_LOG_LEVEL,
// GRIDFLOW_ROW_HEIGHT, GRIDFLOW_COLUMN_WIDTH, GRIDFLOW_FIXED_ROWS and
// GRIDFLOW_FIXED_COLUMNS are also accepted. Unknown settings are errors.
//
// A Manager keeps the current settings, reloads them when the file
// changes, and notifies subscribers of each successful reload.
package config
