// Package runlog records stage runs in a local sqlite database so
// operators can see what ran, when, and with what counts.
package runlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Entry is one recorded stage run.
type Entry struct {
	ID          string
	Stage       string
	Status      string
	StartedAt   time.Time
	CompletedAt *time.Time
	Processed   int64
	Skipped     int64
	Failed      int64
	Error       string
}

// Counts holds the outcome of a stage run, passed to Complete.
type Counts struct {
	Processed int64
	Skipped   int64
	Failed    int64
}

// Log provides read/write access to the stage_runs table.
type Log struct {
	db *sql.DB
}

const migration = `
CREATE TABLE IF NOT EXISTS stage_runs (
	id           TEXT PRIMARY KEY,
	stage        TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME,
	processed    INTEGER NOT NULL DEFAULT 0,
	skipped      INTEGER NOT NULL DEFAULT 0,
	failed       INTEGER NOT NULL DEFAULT 0,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_stage_runs_stage ON stage_runs(stage);
CREATE INDEX IF NOT EXISTS idx_stage_runs_started_at ON stage_runs(started_at);
`

// Open opens (creating if needed) the run log database at path.
func Open(ctx context.Context, path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "runlog: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "runlog: migrate")
	}
	return &Log{db: db}, nil
}

func (l *Log) Close() error {
	return l.db.Close()
}

// Start records the beginning of a stage run and returns its ID.
func (l *Log) Start(ctx context.Context, stage string) (string, error) {
	id := uuid.NewString()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO stage_runs (id, stage, status, started_at)
		 VALUES (?, ?, 'running', ?)`,
		id, stage, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "runlog: start %s", stage)
	}
	return id, nil
}

// Complete marks a run as successfully completed with its counts.
func (l *Log) Complete(ctx context.Context, id string, counts Counts) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE stage_runs
		 SET status = 'complete', completed_at = ?, processed = ?, skipped = ?, failed = ?
		 WHERE id = ?`,
		time.Now().UTC(), counts.Processed, counts.Skipped, counts.Failed, id,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete %s", id)
	}
	return nil
}

// Fail marks a run as failed with an error message.
func (l *Log) Fail(ctx context.Context, id, errMsg string) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE stage_runs
		 SET status = 'failed', completed_at = ?, error = ?
		 WHERE id = ?`,
		time.Now().UTC(), errMsg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail %s", id)
	}
	return nil
}

// List returns recorded runs, most recent first.
func (l *Log) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, stage, status, started_at, completed_at, processed, skipped, failed, error
		 FROM stage_runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list")
	}
	defer rows.Close() //nolint:errcheck

	var entries []Entry
	for rows.Next() {
		var e Entry
		var completedAt sql.NullTime
		var errStr sql.NullString
		if err := rows.Scan(&e.ID, &e.Stage, &e.Status, &e.StartedAt, &completedAt,
			&e.Processed, &e.Skipped, &e.Failed, &errStr); err != nil {
			return nil, eris.Wrap(err, "runlog: scan entry")
		}
		if completedAt.Valid {
			t := completedAt.Time
			e.CompletedAt = &t
		}
		e.Error = errStr.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
