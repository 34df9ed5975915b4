// Package store provides SQLite persistence for run history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"

	"scape-bot/internal/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// Store handles database operations.
type Store struct {
	db *sql.DB
}

var _ session.RunStore = (*Store)(nil)

// Open opens the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist.
func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			bot TEXT NOT NULL,
			options TEXT NOT NULL DEFAULT '{}',
			started_at TEXT NOT NULL,
			finished_at TEXT,
			outcome TEXT,
			progress REAL NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started
		ON runs(started_at);
	`)
	return err
}

// StartRun inserts a new run.
func (s *Store) StartRun(ctx context.Context, r session.Run) error {
	opts, err := json.Marshal(r.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	query := `
		INSERT INTO runs (id, bot, options, started_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, r.ID, r.Bot, string(opts), formatTime(r.Started)); err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// FinishRun records how a run ended.
func (s *Store) FinishRun(ctx context.Context, id string, outcome session.Outcome, finished time.Time, progress float64, note string) error {
	query := `
		UPDATE runs
		SET finished_at = ?, outcome = ?, progress = ?, note = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query, formatTime(finished), string(outcome), progress, note, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetRun retrieves a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*session.Run, error) {
	query := `
		SELECT id, bot, options, started_at, finished_at, outcome, progress, note
		FROM runs
		WHERE id = ?
	`
	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. A bot name filters
// the list when not empty.
func (s *Store) ListRuns(ctx context.Context, bot string, limit int) ([]session.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, bot, options, started_at, finished_at, outcome, progress, note
		FROM runs
		WHERE (? = '' OR bot = ?)
		ORDER BY started_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, bot, bot, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []session.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*session.Run, error) {
	var (
		run      session.Run
		opts     string
		started  string
		finished sql.NullString
		outcome  sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Bot, &opts, &started, &finished, &outcome, &run.Progress, &run.Note); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(opts), &run.Options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	var err error
	if run.Started, err = parseTime(started); err != nil {
		return nil, err
	}
	if finished.Valid {
		if run.Finished, err = parseTime(finished.String); err != nil {
			return nil, err
		}
	}
	run.Outcome = session.Outcome(outcome.String)
	return &run, nil
}

// timeLayout has a fixed width so stored times sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
