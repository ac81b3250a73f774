// Package source loads grid content from sheet files.
//
// Three formats are supported. YAML files describe a sheet declaratively:
//
//	name: budget
//	rows:
//	  - [Item, Q1, Q2]
//	  - [Rent, 1200, 1200]
//	spans:
//	  - {row: 0, col: 1, rows: 1, cols: 2}
//	fixed:
//	  rows: [0]
//	  columns: [0]
//	column_widths: {0: 20}
//
// Lua scripts generate a sheet through the global "sheet" table. Indices
// are zero-based, like the grid itself:
//
//	sheet.size(1000, 4)
//	for r = 0, 999 do
//	  sheet.set(r, 0, "row " .. r)
//	end
//	sheet.span(0, 1, 2, 3)
//	sheet.fix_row(0)
//
// JSON files hold either the YAML layout as a document or a bare array of
// records. Object records are laid out under a fixed header row built from
// their keys:
//
//	[{"item": "Rent", "q1": 1200}, {"item": "Food", "q2": 310}]
//
// All three produce a Definition, which is applied to a grid.Grid.
package source
