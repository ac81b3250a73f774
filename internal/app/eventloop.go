package app

import (
	"github.com/dshills/gridflow/internal/config"
	"github.com/dshills/gridflow/internal/render/backend"
	"github.com/dshills/gridflow/internal/sheet"
)

// eventLoop blocks on the backend until a quit key or Shutdown.
func (app *Application) eventLoop(b backend.Backend) error {
	for {
		ev := b.PollEvent()
		select {
		case <-app.done:
			return nil
		default:
		}
		if err := app.handleEvent(ev); err != nil {
			return err
		}
	}
}

// handleEvent applies one event and repaints. It returns ErrQuit for the
// quit keys.
func (app *Application) handleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		app.resize()
		return nil
	case backend.EventKey:
		if err := app.handleKey(ev); err != nil {
			return err
		}
	case backend.EventInterrupt:
		change, ok := ev.Data.(config.Change)
		if !ok {
			return nil
		}
		app.applyConfig(change)
	default:
		return nil
	}
	app.paint()
	return nil
}

func (app *Application) resize() {
	if app.painter == nil {
		return
	}
	w, h := app.painter.GridArea()
	app.sheet.Resize(float64(w), float64(h))
	app.paint()
}

func (app *Application) paint() {
	if app.painter != nil {
		app.painter.Paint(app.sheet)
	}
}

func (app *Application) handleKey(ev backend.Event) error {
	s := app.sheet
	step := s.RowHeight(-1) // default row height
	switch {
	case ev.Key == backend.KeyCtrlC, ev.Key == backend.KeyEscape, isRune(ev, 'q'):
		return ErrQuit
	case ev.Key == backend.KeyUp, isRune(ev, 'k'):
		s.ScrollPixels(-step)
	case ev.Key == backend.KeyDown, isRune(ev, 'j'):
		s.ScrollPixels(step)
	case ev.Key == backend.KeyPageUp:
		s.ScrollPixels(-app.page())
	case ev.Key == backend.KeyPageDown, isRune(ev, ' '):
		s.ScrollPixels(app.page())
	case ev.Key == backend.KeyHome, isRune(ev, 'g'):
		s.SetPosition(0)
	case ev.Key == backend.KeyEnd, isRune(ev, 'G'):
		s.SetPosition(1)
	case ev.Key == backend.KeyLeft, isRune(ev, 'h'):
		s.SetHorizontalScroll(s.HorizontalScroll() - s.ColumnWidth(-1))
	case ev.Key == backend.KeyRight, isRune(ev, 'l'):
		s.SetHorizontalScroll(s.HorizontalScroll() + s.ColumnWidth(-1))
	case isRune(ev, 'f'):
		toggleFixedRow(s)
	case isRune(ev, 'F'):
		toggleFixedColumn(s)
	}
	return nil
}

func isRune(ev backend.Event, r rune) bool {
	return ev.Key == backend.KeyRune && ev.Rune == r
}

// page is the scrolling height below the fixed rows, at least one row.
func (app *Application) page() float64 {
	s := app.sheet
	_, h := s.Size()
	return max(h-s.Fixed().Height(s.RowHeight), s.RowHeight(-1))
}

// toggleFixedRow pins the first row showing below the fixed rows, or
// unpins the last fixed row when nothing scrolls.
func toggleFixedRow(s *sheet.Sheet) {
	reserved := s.Fixed().Height(s.RowHeight)
	for _, r := range s.Flow().Cells() {
		if r.Fixed() || r.Y()+r.Height() <= reserved {
			continue
		}
		s.AddFixedRow(r.Index())
		return
	}
	if rows := s.FixedRows(); len(rows) > 0 {
		s.RemoveFixedRow(rows[len(rows)-1])
	}
}

// toggleFixedColumn pins the first column scrolled into view, or unpins
// the last fixed column when it is already pinned.
func toggleFixedColumn(s *sheet.Sheet) {
	hscroll := s.HorizontalScroll()
	for c := 0; c < s.Grid().ColumnCount(); c++ {
		if s.Fixed().IsFixedColumn(c) || s.ColumnX(c)+s.ColumnWidth(c) <= hscroll {
			continue
		}
		s.AddFixedColumn(c)
		return
	}
	if cols := s.FixedColumns(); len(cols) > 0 {
		s.RemoveFixedColumn(cols[len(cols)-1])
	}
}

// onConfigChange runs on the watcher goroutine and hands the change to
// the event loop.
func (app *Application) onConfigChange(c config.Change) {
	app.mu.RLock()
	b := app.backend
	app.mu.RUnlock()
	if b != nil && app.running.Load() {
		b.PostEvent(backend.Event{Type: backend.EventInterrupt, Data: c})
	}
}

// applyConfig updates the sheet to reloaded settings. Geometry and
// recycling changes rebuild the sheet over the same grid at the same row.
func (app *Application) applyConfig(c config.Change) {
	app.applyLogLevel(c.New)

	s := app.sheet
	fixedRows, fixedCols := s.FixedRows(), s.FixedColumns()
	if c.FixedChanged() {
		fixedRows, fixedCols = c.New.Fixed.Rows, c.New.Fixed.Columns
	}

	if c.Old.Grid != c.New.Grid {
		top := s.Flow().TopIndex()
		width, height := s.Size()
		hscroll := s.HorizontalScroll()
		s.Close()

		app.sheet = sheet.New(app.grid, app.sheetOptions(c.New, fixedRows, fixedCols))
		app.sheet.Resize(width, height)
		app.sheet.Show(top)
		app.sheet.SetHorizontalScroll(hscroll)
		app.log.Info("sheet rebuilt for new grid settings")
		return
	}
	if c.FixedChanged() {
		s.SetFixedRows(fixedRows)
		s.SetFixedColumns(fixedCols)
		app.log.Info("fixed rows %v, columns %v", fixedRows, fixedCols)
	}
}
