// Package state persists extraction run history in a local SQLite
// database so past runs can be inspected with `healthcsv runs`.
package state

import "time"

// RunStatus is the lifecycle state of an extraction run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded extraction.
type Run struct {
	ID             string
	Command        string // routes | records
	Source         string // glob pattern or record type
	Output         string
	Status         RunStatus
	UnitsOK        int
	UnitsSkipped   int
	RecordsOK      int
	RecordsSkipped int
	Columns        int
	Error          string
	StartedAt      time.Time
	CompletedAt    *time.Time
}

// Store records and lists extraction runs.
type Store interface {
	CreateRun(command, source, output string) (*Run, error)
	CompleteRun(run *Run, status RunStatus, errMsg string) error
	ListRuns(limit int) ([]*Run, error)
	Close() error
}
