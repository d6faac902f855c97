package sink

import (
	"fmt"
	"os"

	"github.com/trailpack-labs/healthcsv/internal/flatten"
)

// FileCSV is a CSV sink that creates its output file on the first
// header write, so a run that fails before emitting anything leaves no
// file behind.
type FileCSV struct {
	path string
	f    *os.File
	csv  *CSV
}

// NewFileCSV returns a sink that will write to path.
func NewFileCSV(path string) *FileCSV {
	return &FileCSV{path: path}
}

// WriteHeader implements flatten.Sink, creating the file.
func (s *FileCSV) WriteHeader(columns []string) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", s.path, err)
	}
	s.f = f
	s.csv = NewCSV(f)
	return s.csv.WriteHeader(columns)
}

// WriteRow implements flatten.Sink.
func (s *FileCSV) WriteRow(row []flatten.Cell) error {
	return s.csv.WriteRow(row)
}

// Flush implements flatten.Sink.
func (s *FileCSV) Flush() error {
	if s.csv == nil {
		return nil
	}
	return s.csv.Flush()
}

// Close flushes and closes the output file.
func (s *FileCSV) Close() error {
	if s.f == nil {
		return nil
	}
	if err := s.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
