package source

import (
	"context"
	"fmt"
	"math"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultScriptTimeout bounds a generator script run without a deadline.
const DefaultScriptTimeout = 5 * time.Second

// RunLua executes a generator script and returns the sheet it built.
func RunLua(ctx context.Context, code string) (*Definition, error) {
	return runLua(ctx, func(L *lua.LState) error { return L.DoString(code) })
}

// RunLuaFile executes the generator script at path.
func RunLuaFile(ctx context.Context, path string) (*Definition, error) {
	return runLua(ctx, func(L *lua.LState) error { return L.DoFile(path) })
}

func runLua(ctx context.Context, run func(*lua.LState) error) (def *Definition, err error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultScriptTimeout)
		defer cancel()
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibraries(L)
	L.SetContext(ctx)

	b := &builder{def: &Definition{}}
	L.SetGlobal("sheet", b.module(L))

	defer func() {
		if r := recover(); r != nil {
			def, err = nil, fmt.Errorf("lua panic: %v", r)
		}
	}()
	if err := run(L); err != nil {
		return nil, fmt.Errorf("running script: %w", err)
	}
	return b.def, nil
}

// openSafeLibraries opens the base, table, string and math libraries and
// removes the loaders that reach the file system.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// builder accumulates the calls a script makes on the sheet table.
type builder struct {
	def *Definition
}

func (b *builder) module(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"name":         b.name,
		"size":         b.size,
		"set":          b.set,
		"get":          b.get,
		"span":         b.span,
		"fix_row":      b.fixRow,
		"fix_column":   b.fixColumn,
		"row_height":   b.rowHeight,
		"column_width": b.columnWidth,
	})
}

func checkIndex(L *lua.LState, n int) int {
	i := L.CheckInt(n)
	if i < 0 {
		L.ArgError(n, "index must not be negative")
	}
	return i
}

func (b *builder) name(L *lua.LState) int {
	b.def.Name = L.CheckString(1)
	return 0
}

func (b *builder) size(L *lua.LState) int {
	b.def.RowCount = checkIndex(L, 1)
	b.def.ColumnCount = checkIndex(L, 2)
	return 0
}

func (b *builder) set(L *lua.LState) int {
	r, c := checkIndex(L, 1), checkIndex(L, 2)
	for len(b.def.Rows) <= r {
		b.def.Rows = append(b.def.Rows, nil)
	}
	row := b.def.Rows[r]
	for len(row) <= c {
		row = append(row, nil)
	}
	row[c] = fromLua(L.Get(3))
	b.def.Rows[r] = row
	return 0
}

func (b *builder) get(L *lua.LState) int {
	r, c := checkIndex(L, 1), checkIndex(L, 2)
	if r < len(b.def.Rows) && c < len(b.def.Rows[r]) {
		L.Push(toLua(b.def.Rows[r][c]))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func (b *builder) span(L *lua.LState) int {
	sp := Span{Row: checkIndex(L, 1), Col: checkIndex(L, 2), Rows: L.CheckInt(3), Cols: L.CheckInt(4)}
	if sp.Rows < 1 || sp.Cols < 1 {
		L.RaiseError("span at %d,%d has size %dx%d", sp.Row, sp.Col, sp.Rows, sp.Cols)
	}
	b.def.Spans = append(b.def.Spans, sp)
	return 0
}

func (b *builder) fixRow(L *lua.LState) int {
	b.def.Fixed.Rows = append(b.def.Fixed.Rows, checkIndex(L, 1))
	return 0
}

func (b *builder) fixColumn(L *lua.LState) int {
	b.def.Fixed.Columns = append(b.def.Fixed.Columns, checkIndex(L, 1))
	return 0
}

func (b *builder) rowHeight(L *lua.LState) int {
	r := checkIndex(L, 1)
	if b.def.RowHeights == nil {
		b.def.RowHeights = make(map[int]float64)
	}
	b.def.RowHeights[r] = float64(L.CheckNumber(2))
	return 0
}

func (b *builder) columnWidth(L *lua.LState) int {
	c := checkIndex(L, 1)
	if b.def.ColumnWidths == nil {
		b.def.ColumnWidths = make(map[int]float64)
	}
	b.def.ColumnWidths[c] = float64(L.CheckNumber(2))
	return 0
}

// fromLua converts a script value to a cell value. Integral numbers
// become int so that scripts and YAML files agree.
func fromLua(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f)
		}
		return f
	case lua.LString:
		return string(v)
	}
	if v == lua.LNil {
		return nil
	}
	return v.String()
}

func toLua(v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case int:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	default:
		return lua.LString(fmt.Sprint(v))
	}
}
