// Package render paints the live window of a sheet onto a backend.
//
// The painter is a thin consumer of the engine's output: it walks the
// rows of the window in paint order and draws every cell view at its
// on-screen bounds, so later rows (fixed rows last) paint over earlier
// ones.
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	p := render.New(term, render.DefaultOptions())
//	p.Paint(s)
package render
