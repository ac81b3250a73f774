package source

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ParseJSON builds a definition from a JSON document. The records are
// taken from the value at query, or the whole document when query is
// empty; an object with a "rows" member is read from that member.
//
// Records may be arrays, taken as rows, or objects. For objects the keys
// of the first record become a fixed header row and later records are
// matched to it by key; unknown keys add columns.
func ParseJSON(data []byte, query string) (*Definition, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidDefinition)
	}
	root := gjson.ParseBytes(data)
	if query != "" {
		root = root.Get(query)
	}

	d := &Definition{}
	if root.IsObject() {
		if err := readJSONLayout(d, root); err != nil {
			return nil, err
		}
		if rows := root.Get("rows"); rows.Exists() {
			root = rows
		}
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of records", ErrInvalidDefinition)
	}

	var header []string
	columns := make(map[string]int)
	root.ForEach(func(_, rec gjson.Result) bool {
		switch {
		case rec.IsArray():
			var row []any
			rec.ForEach(func(_, v gjson.Result) bool {
				row = append(row, jsonValue(v))
				return true
			})
			d.Rows = append(d.Rows, row)
		case rec.IsObject():
			row := make([]any, len(header))
			rec.ForEach(func(k, v gjson.Result) bool {
				c, ok := columns[k.String()]
				if !ok {
					c = len(header)
					columns[k.String()] = c
					header = append(header, k.String())
					row = append(row, nil)
				}
				row[c] = jsonValue(v)
				return true
			})
			d.Rows = append(d.Rows, row)
		default:
			d.Rows = append(d.Rows, []any{jsonValue(rec)})
		}
		return true
	})

	if len(header) > 0 {
		if len(d.Fixed.Rows) > 0 || len(d.Spans) > 0 {
			return nil, fmt.Errorf("%w: object records cannot carry spans or fixed rows", ErrInvalidDefinition)
		}
		head := make([]any, len(header))
		for i, h := range header {
			head[i] = h
		}
		d.Rows = append([][]any{head}, d.Rows...)
		d.Fixed.Rows = []int{0}
	}
	return d, nil
}

// readJSONLayout reads the name and layout members of a document object.
func readJSONLayout(d *Definition, obj gjson.Result) error {
	d.Name = obj.Get("name").String()
	d.RowCount = int(obj.Get("row_count").Int())
	d.ColumnCount = int(obj.Get("column_count").Int())
	obj.Get("spans").ForEach(func(_, sp gjson.Result) bool {
		d.Spans = append(d.Spans, Span{
			Row:  int(sp.Get("row").Int()),
			Col:  int(sp.Get("col").Int()),
			Rows: int(sp.Get("rows").Int()),
			Cols: int(sp.Get("cols").Int()),
		})
		return true
	})
	d.Fixed.Rows = jsonInts(obj.Get("fixed.rows"))
	d.Fixed.Columns = jsonInts(obj.Get("fixed.columns"))

	var err error
	if d.RowHeights, err = jsonSizes(obj.Get("row_heights")); err != nil {
		return err
	}
	d.ColumnWidths, err = jsonSizes(obj.Get("column_widths"))
	return err
}

func jsonInts(v gjson.Result) []int {
	var out []int
	for _, x := range v.Array() {
		out = append(out, int(x.Int()))
	}
	return out
}

func jsonSizes(v gjson.Result) (map[int]float64, error) {
	if !v.IsObject() {
		return nil, nil
	}
	out := make(map[int]float64)
	var err error
	v.ForEach(func(k, size gjson.Result) bool {
		i, perr := strconv.Atoi(k.String())
		if perr != nil {
			err = fmt.Errorf("%w: bad index %q", ErrInvalidDefinition, k.String())
			return false
		}
		out[i] = size.Float()
		return true
	})
	return out, err
}

// jsonValue converts a JSON scalar to a cell value. Nested arrays and
// objects are kept as their JSON text.
func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1<<53 {
			return int(v.Num)
		}
		return v.Num
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}

// WriteJSON encodes the definition as an indented JSON document with the
// same field names as the YAML form.
func (d *Definition) WriteJSON(w io.Writer) error {
	doc := []byte(`{}`)
	set := func(path string, v any) error {
		var err error
		doc, err = sjson.SetBytes(doc, path, v)
		if err != nil {
			return fmt.Errorf("encoding json %s: %w", path, err)
		}
		return nil
	}

	if d.Name != "" {
		if err := set("name", d.Name); err != nil {
			return err
		}
	}
	if d.RowCount > 0 {
		if err := set("row_count", d.RowCount); err != nil {
			return err
		}
	}
	if d.ColumnCount > 0 {
		if err := set("column_count", d.ColumnCount); err != nil {
			return err
		}
	}
	if err := set("rows", [][]any{}); err != nil {
		return err
	}
	for _, row := range d.Rows {
		if row == nil {
			row = []any{}
		}
		if err := set("rows.-1", row); err != nil {
			return err
		}
	}
	for i, sp := range d.Spans {
		span := map[string]int{"row": sp.Row, "col": sp.Col, "rows": sp.Rows, "cols": sp.Cols}
		if err := set("spans."+strconv.Itoa(i), span); err != nil {
			return err
		}
	}
	if len(d.Fixed.Rows) > 0 {
		if err := set("fixed.rows", d.Fixed.Rows); err != nil {
			return err
		}
	}
	if len(d.Fixed.Columns) > 0 {
		if err := set("fixed.columns", d.Fixed.Columns); err != nil {
			return err
		}
	}

	if len(d.RowHeights) > 0 {
		if err := set("row_heights", sizeKeys(d.RowHeights)); err != nil {
			return err
		}
	}
	if len(d.ColumnWidths) > 0 {
		if err := set("column_widths", sizeKeys(d.ColumnWidths)); err != nil {
			return err
		}
	}

	_, err := w.Write(pretty.Pretty(doc))
	return err
}

func sizeKeys(m map[int]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for i, v := range m {
		out[strconv.Itoa(i)] = v
	}
	return out
}
