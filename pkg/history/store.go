// Package history persists finished compliance reports in a local SQLite
// database, so past verdicts can be listed and compared across runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"mercator-hq/callisto/pkg/aggregate"
)

// ErrNotFound is returned when a run ID is not in the store.
var ErrNotFound = errors.New("run not found")

// Config contains configuration for the history store.
type Config struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultConfig returns the default history configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:         "callisto-history.db",
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	started_at   TIMESTAMP NOT NULL,
	finished_at  TIMESTAMP NOT NULL,
	mode         TEXT NOT NULL,
	target       TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT '',
	packages     INTEGER NOT NULL,
	conflicts    INTEGER NOT NULL,
	undetermined INTEGER NOT NULL,
	malformed    INTEGER NOT NULL,
	report       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Store is a SQLite-backed archive of compliance reports.
type Store struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
}

// Open opens (creating if needed) the history database.
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %q: %w", config.Path, err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &Store{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "history"),
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	s.logger.Debug("history store opened", "path", config.Path, "wal_mode", config.WALMode)
	return s, nil
}

func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Entry is one archived run's summary row.
type Entry struct {
	RunID        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Mode         string    `json:"mode"`
	Target       string    `json:"target"`
	Status       string    `json:"status"`
	Packages     int       `json:"packages"`
	Conflicts    int       `json:"conflicts"`
	Undetermined int       `json:"undetermined"`
	Malformed    int       `json:"malformed"`
}

// Record archives a finished report.
func (s *Store) Record(ctx context.Context, report *aggregate.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	target, status := "", ""
	conflicts, undetermined := 0, 0
	if report.Verdict != nil {
		target = report.Verdict.TargetName
		status = string(report.Verdict.Status)
		conflicts = len(report.Verdict.Conflicts)
		undetermined = len(report.Verdict.Undetermined)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, finished_at, mode, target, status,
			packages, conflicts, undetermined, malformed, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.StartedAt, report.FinishedAt, string(report.Mode),
		target, status, report.Packages, conflicts, undetermined,
		len(report.Malformed), string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", report.RunID, err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, finished_at, mode, target, status,
			packages, conflicts, undetermined, malformed
		FROM runs ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.StartedAt, &e.FinishedAt, &e.Mode, &e.Target,
			&e.Status, &e.Packages, &e.Conflicts, &e.Undetermined, &e.Malformed); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the full archived report for a run ID.
func (s *Store) Get(ctx context.Context, runID string) (*aggregate.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	var report aggregate.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to decode archived report %s: %w", runID, err)
	}
	return &report, nil
}

// Prune deletes runs that started before the cutoff and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("pruned archived runs", "deleted", deleted, "older_than", olderThan)
	}
	return deleted, nil
}
