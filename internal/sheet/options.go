package sheet

import (
	"github.com/dshills/gridflow/internal/flow"
	"github.com/dshills/gridflow/internal/logging"
)

// Options configures a Sheet.
type Options struct {
	// RowHeight is used for rows without an explicit height.
	RowHeight float64

	// ColumnWidth is used for columns without an explicit width.
	ColumnWidth float64

	// Cacheable controls whether row views may be kept in the cell cache.
	Cacheable bool

	// Pool configures row recycling.
	Pool flow.PoolConfig

	// FixedRows and FixedColumns are pinned when the sheet is created.
	FixedRows    []int
	FixedColumns []int

	Logger *logging.Logger
}

// DefaultOptions returns options suited to a terminal host, where one
// row is one line.
func DefaultOptions() Options {
	return Options{
		RowHeight:   1,
		ColumnWidth: 12,
		Cacheable:   true,
		Pool:        flow.DefaultPoolConfig(),
	}
}
