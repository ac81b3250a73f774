package source

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/gridflow/internal/grid"
)

const budgetYAML = `
name: budget
rows:
  - [Item, Q1, Q2]
  - [Rent, 1200, 1250.5]
  - [Food]
spans:
  - {row: 0, col: 1, rows: 1, cols: 2}
fixed:
  rows: [0]
  columns: [0]
row_heights: {0: 2}
column_widths: {0: 20}
`

func TestParseYAML(t *testing.T) {
	d, err := ParseYAML(strings.NewReader(budgetYAML))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}

	want := &Definition{
		Name: "budget",
		Rows: [][]any{
			{"Item", "Q1", "Q2"},
			{"Rent", 1200, 1250.5},
			{"Food"},
		},
		Spans:        []Span{{Row: 0, Col: 1, Rows: 1, Cols: 2}},
		Fixed:        Fixed{Rows: []int{0}, Columns: []int{0}},
		RowHeights:   map[int]float64{0: 2},
		ColumnWidths: map[int]float64{0: 20},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("definition mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAMLRejectsUnknownKeys(t *testing.T) {
	if _, err := ParseYAML(strings.NewReader("colums: 3\n")); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestParseYAMLEmpty(t *testing.T) {
	d, err := ParseYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	if rows, cols := d.Size(); rows != 0 || cols != 0 {
		t.Errorf("expected an empty sheet, got %dx%d", rows, cols)
	}
}

func TestApply(t *testing.T) {
	d, err := ParseYAML(strings.NewReader(budgetYAML))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	d.RowCount = 5

	g := grid.New(0, 0)
	if err := d.Apply(g); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if g.RowCount() != 5 || g.ColumnCount() != 3 {
		t.Fatalf("expected 5x3, got %dx%d", g.RowCount(), g.ColumnCount())
	}
	if got := g.CellAt(1, 1).Text(); got != "1200" {
		t.Errorf("expected 1200, got %q", got)
	}
	if got := g.CellAt(2, 1).Value(); got != nil {
		t.Errorf("expected a padded blank cell, got %v", got)
	}
	if g.CellAt(0, 2) != g.CellAt(0, 1) {
		t.Error("expected (0,2) covered by the span at (0,1)")
	}
	if g.RowHeight(0) != 2 || g.ColumnWidth(0) != 20 {
		t.Errorf("unexpected geometry: row 0 %v, column 0 %v", g.RowHeight(0), g.ColumnWidth(0))
	}
}

func TestValidate(t *testing.T) {
	base := func() *Definition {
		return &Definition{Rows: [][]any{{1, 2}, {3, 4}}}
	}
	tests := []struct {
		name   string
		modify func(d *Definition)
	}{
		{"span anchor outside", func(d *Definition) { d.Spans = []Span{{Row: 2, Col: 0, Rows: 1, Cols: 1}} }},
		{"empty span", func(d *Definition) { d.Spans = []Span{{Row: 0, Col: 0, Rows: 0, Cols: 1}} }},
		{"fixed row outside", func(d *Definition) { d.Fixed.Rows = []int{2} }},
		{"fixed column outside", func(d *Definition) { d.Fixed.Columns = []int{-1} }},
		{"zero row height", func(d *Definition) { d.RowHeights = map[int]float64{0: 0} }},
		{"column width outside", func(d *Definition) { d.ColumnWidths = map[int]float64{5: 3} }},
		{"negative size", func(d *Definition) { d.RowCount = -1 }},
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("expected a valid base definition, got %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.modify(d)
			if err := d.Validate(); !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("expected ErrInvalidDefinition, got %v", err)
			}
			if err := d.Apply(grid.New(0, 0)); err == nil {
				t.Error("expected Apply to refuse an invalid definition")
			}
		})
	}
}

func TestCaptureAndWrite(t *testing.T) {
	g := grid.New(0, 0)
	g.Load([][]any{{"a", "b", "c"}, {1, 2, 3}})
	g.SetSpan(0, 0, 1, 2)
	g.SetColumnWidth(2, 7)

	d := Capture(g, []int{0}, nil)

	var buf bytes.Buffer
	if err := d.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	back, err := ParseYAML(&buf)
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}

	g2 := grid.New(0, 0)
	if err := back.Apply(g2); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if g2.CellAt(0, 1) != g2.CellAt(0, 0) {
		t.Error("expected the span to survive")
	}
	if got := g2.CellAt(1, 2).Value(); got != 3 {
		t.Errorf("expected 3, got %v (%T)", got, got)
	}
	if g2.ColumnWidth(2) != 7 {
		t.Errorf("expected width 7, got %v", g2.ColumnWidth(2))
	}
	if diff := cmp.Diff([]int{0}, back.Fixed.Rows); diff != "" {
		t.Errorf("fixed rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRunLua(t *testing.T) {
	script := `
sheet.name("generated")
sheet.size(100, 3)
for r = 0, 9 do
  sheet.set(r, 0, "row " .. r)
  sheet.set(r, 1, r * 1.5)
  sheet.set(r, 2, sheet.get(r, 1) * 2)
end
sheet.span(0, 1, 2, 2)
sheet.fix_row(0)
sheet.fix_column(0)
sheet.row_height(0, 2)
sheet.column_width(0, 14)
`
	d, err := RunLua(context.Background(), script)
	if err != nil {
		t.Fatalf("RunLua failed: %v", err)
	}

	if d.Name != "generated" {
		t.Errorf("expected name generated, got %q", d.Name)
	}
	if rows, cols := d.Size(); rows != 100 || cols != 3 {
		t.Errorf("expected 100x3, got %dx%d", rows, cols)
	}
	if diff := cmp.Diff([]any{"row 3", 4.5, 9}, d.Rows[3]); diff != "" {
		t.Errorf("row 3 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Span{{Row: 0, Col: 1, Rows: 2, Cols: 2}}, d.Spans); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Fixed{Rows: []int{0}, Columns: []int{0}}, d.Fixed); diff != "" {
		t.Errorf("fixed mismatch (-want +got):\n%s", diff)
	}

	g := grid.New(0, 0)
	if err := d.Apply(g); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if g.RowCount() != 100 {
		t.Errorf("expected 100 rows, got %d", g.RowCount())
	}
	if got := g.CellAt(9, 0).Text(); got != "row 9" {
		t.Errorf("expected row 9, got %q", got)
	}
}

func TestRunLuaErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"syntax", "sheet.set(0, 0"},
		{"negative index", "sheet.set(-1, 0, 1)"},
		{"empty span", "sheet.span(0, 0, 0, 1)"},
		{"no file access", `dofile("/etc/passwd")`},
		{"no io", `io.open("/etc/passwd")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RunLua(context.Background(), tt.script); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRunLuaHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := RunLua(ctx, "while true do end")
	if err == nil {
		t.Fatal("expected the runaway script to be stopped")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "budget.yaml")
	luaPath := filepath.Join(dir, "numbers.lua")
	if err := os.WriteFile(yamlPath, []byte("rows: [[1, 2]]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(luaPath, []byte("sheet.set(1, 1, 'x')\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(context.Background(), yamlPath)
	if err != nil {
		t.Fatalf("Load yaml failed: %v", err)
	}
	if d.Name != "budget" {
		t.Errorf("expected name from file, got %q", d.Name)
	}

	d, err = Load(context.Background(), luaPath)
	if err != nil {
		t.Fatalf("Load lua failed: %v", err)
	}
	if rows, cols := d.Size(); rows != 2 || cols != 2 {
		t.Errorf("expected 2x2, got %dx%d", rows, cols)
	}

	if _, err := Load(context.Background(), filepath.Join(dir, "sheet.csv")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := Load(context.Background(), filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}
