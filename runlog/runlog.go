// Package runlog journals pipeline runs and their per-jurisdiction
// events in a local SQLite database.
//
// The journal is operational history only: pipeline data (definitions,
// chunks, reports) lives in the JSON artifacts and is recomputed from
// source PDFs each run. Losing the journal loses nothing but the audit
// trail.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	attempted   INTEGER NOT NULL DEFAULT 0,
	succeeded   INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS run_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	at           TEXT NOT NULL,
	jurisdiction TEXT NOT NULL DEFAULT '',
	stage        TEXT NOT NULL,
	level        TEXT NOT NULL DEFAULT 'info',
	detail       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id);
`

// Journal records runs and events.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at path with WAL and the
// other production pragmas applied.
func Open(path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("runlog: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("runlog: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error { return j.db.Close() }

// StartRun records the beginning of a run.
func (j *Journal) StartRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at) VALUES (?, ?)`,
		runID, startedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("runlog: start run: %w", err)
	}
	return nil
}

// FinishRun records the outcome counts of a completed run.
func (j *Journal) FinishRun(ctx context.Context, runID string, finishedAt time.Time, attempted, succeeded, failed int) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, attempted = ?, succeeded = ?, failed = ? WHERE run_id = ?`,
		finishedAt.UTC().Format(time.RFC3339), attempted, succeeded, failed, runID)
	if err != nil {
		return fmt.Errorf("runlog: finish run: %w", err)
	}
	return nil
}

// Event appends one event to a run's journal.
func (j *Journal) Event(ctx context.Context, runID, jurisdiction, stage, level, detail string) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO run_events (run_id, at, jurisdiction, stage, level, detail) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), jurisdiction, stage, level, detail)
	if err != nil {
		return fmt.Errorf("runlog: event: %w", err)
	}
	return nil
}

// RunSummary is one row from the runs table.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Attempted  int       `json:"attempted"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}

// RecentRuns lists the most recent runs, newest first.
func (j *Journal) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, started_at, COALESCE(finished_at, ''), attempted, succeeded, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: recent runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var started, finished string
		if err := rows.Scan(&r.RunID, &started, &finished, &r.Attempted, &r.Succeeded, &r.Failed); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune deletes runs (and their events, by cascade) older than keep.
func (j *Journal) Prune(ctx context.Context, keep time.Duration) (int64, error) {
	cutoff := time.Now().Add(-keep).UTC().Format(time.RFC3339)
	res, err := j.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("runlog: prune: %w", err)
	}
	return res.RowsAffected()
}
