package state

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	// sqlite driver for the run-history database.
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates an unopened store.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the database at path ( ":memory:" for in-memory ) and runs
// any pending migrations.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	// One connection keeps in-memory databases coherent and avoids
	// writer lock contention on file databases.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping state database: %w", err)
	}

	s.db = db
	s.path = path

	if err := s.Migrate(); err != nil {
		db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateRun inserts a new run in the running state.
func (s *SQLiteStore) CreateRun(command, source, output string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        uuid.New().String(),
		Command:   command,
		Source:    source,
		Output:    output,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	s.logger.Debug("creating run", "id", run.ID, "command", command, "source", source)

	_, err := s.db.Exec(`
		INSERT INTO runs (id, command, source, output, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Command, run.Source, run.Output, string(run.Status), run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun records the run's final status and counters.
func (s *SQLiteStore) CompleteRun(run *Run, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	run.Status = status
	run.Error = errMsg
	run.CompletedAt = &now

	_, err := s.db.Exec(`
		UPDATE runs SET status = ?, units_ok = ?, units_skipped = ?,
			records_ok = ?, records_skipped = ?, columns = ?, error = ?,
			completed_at = ?
		WHERE id = ?`,
		string(status), run.UnitsOK, run.UnitsSkipped,
		run.RecordsOK, run.RecordsSkipped, run.Columns, nullable(errMsg),
		now, run.ID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, command, source, output, status, units_ok, units_skipped,
			records_ok, records_skipped, columns, error, started_at, completed_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			run    Run
			status string
			errMsg sql.NullString
			done   sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.Command, &run.Source, &run.Output,
			&status, &run.UnitsOK, &run.UnitsSkipped,
			&run.RecordsOK, &run.RecordsSkipped, &run.Columns,
			&errMsg, &run.StartedAt, &done); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Status = RunStatus(status)
		if errMsg.Valid {
			run.Error = errMsg.String
		}
		if done.Valid {
			t := done.Time
			run.CompletedAt = &t
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
