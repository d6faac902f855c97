// Package sink provides tabular sinks for flattened rows.
package sink

import (
	"encoding/csv"
	"io"

	"github.com/trailpack-labs/healthcsv/internal/flatten"
)

// CSV writes the flattened table as RFC 4180 CSV: one header line in
// schema order, then one line per row with null cells rendered as empty
// fields.
type CSV struct {
	w *csv.Writer
}

// NewCSV returns a CSV sink writing to w.
func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

// WriteHeader implements flatten.Sink.
func (c *CSV) WriteHeader(columns []string) error {
	return c.w.Write(columns)
}

// WriteRow implements flatten.Sink.
func (c *CSV) WriteRow(row []flatten.Cell) error {
	fields := make([]string, len(row))
	for i, cell := range row {
		fields[i] = cell.String()
	}
	return c.w.Write(fields)
}

// Flush implements flatten.Sink.
func (c *CSV) Flush() error {
	c.w.Flush()
	return c.w.Error()
}
