// Package history persists publish attempts in a local SQLite database under
// the repository's state directory. The store is an observability aid: write
// failures are reported to the caller but publishes never depend on it.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/blogpub/internal/publish"
)

// ErrNotFound is returned when no record matches the requested ID.
var ErrNotFound = errors.New("publish record not found")

// Entry is one persisted publish attempt.
type Entry struct {
	ID            string
	Trigger       string
	Outcome       string
	Branch        string
	CommitHash    string
	Message       string
	Error         string
	StartedAt     time.Time
	Duration      time.Duration
	StepDurations map[string]time.Duration
}

// Store implements publish history persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (and if needed creates) the history database. Use ":memory:"
// for an in-memory database, or a file path for persistent storage.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS publishes (
		id TEXT PRIMARY KEY,
		trigger_type TEXT NOT NULL,
		outcome TEXT NOT NULL,
		branch TEXT NOT NULL,
		commit_hash TEXT,
		message TEXT,
		error TEXT,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		step_durations TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_publishes_started_at ON publishes(started_at);
	CREATE INDEX IF NOT EXISTS idx_publishes_outcome ON publishes(outcome);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record persists one completed publish attempt. Implements publish.HistorySink.
func (s *Store) Record(ctx context.Context, report *publish.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps := make(map[string]int64, len(report.StepDurations))
	for name, d := range report.StepDurations {
		steps[string(name)] = d.Milliseconds()
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("marshal step durations: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO publishes (id, trigger_type, outcome, branch, commit_hash, message, error, started_at, duration_ms, step_durations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, string(report.Trigger), string(report.Outcome), report.Branch,
		report.CommitHash, report.Message, report.ErrorText(),
		report.Start.UnixMilli(), report.Duration().Milliseconds(), stepsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert publish record: %w", err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trigger_type, outcome, branch, commit_hash, message, error, started_at, duration_ms, step_durations
		 FROM publishes ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query publish records: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ByID returns a single attempt, or ErrNotFound.
func (s *Store) ByID(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trigger_type, outcome, branch, commit_hash, message, error, started_at, duration_ms, step_durations
		 FROM publishes WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query publish record: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return &entries[0], nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedMilli, durationMilli int64
		var stepsJSON []byte

		err := rows.Scan(&e.ID, &e.Trigger, &e.Outcome, &e.Branch, &e.CommitHash,
			&e.Message, &e.Error, &startedMilli, &durationMilli, &stepsJSON)
		if err != nil {
			return nil, fmt.Errorf("scan publish record: %w", err)
		}

		e.StartedAt = time.UnixMilli(startedMilli)
		e.Duration = time.Duration(durationMilli) * time.Millisecond

		if len(stepsJSON) > 0 {
			var steps map[string]int64
			if err := json.Unmarshal(stepsJSON, &steps); err != nil {
				return nil, fmt.Errorf("unmarshal step durations: %w", err)
			}
			e.StepDurations = make(map[string]time.Duration, len(steps))
			for name, ms := range steps {
				e.StepDurations[name] = time.Duration(ms) * time.Millisecond
			}
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
