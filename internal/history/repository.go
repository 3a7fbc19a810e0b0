package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// schema holds the run-history tables. Small enough to ensure inline
// rather than carrying a migration framework for two tables.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    device      TEXT NOT NULL,
    state       TEXT NOT NULL DEFAULT 'running',
    total       INTEGER NOT NULL,
    sent        INTEGER NOT NULL DEFAULT 0,
    failed      INTEGER NOT NULL DEFAULT 0,
    started_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
    finished_at TEXT
);

CREATE TABLE IF NOT EXISTS run_commands (
    run_id     TEXT NOT NULL REFERENCES runs(id),
    seq        INTEGER NOT NULL,
    path       TEXT NOT NULL,
    ok         INTEGER NOT NULL,
    error      TEXT,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_run_commands_run ON run_commands(run_id);
`

// Run is one persisted batch run.
type Run struct {
	ID         string
	Device     string
	State      string
	Total      int
	Sent       int
	Failed     int
	StartedAt  string
	FinishedAt sql.NullString
}

// CommandRecord is one persisted command outcome.
type CommandRecord struct {
	RunID string
	Seq   int
	Path  string
	OK    bool
	Error string
}

// Repository persists batch run outcomes in SQLite.
//
// It satisfies runner.Recorder. All methods are best-effort from the
// runner's point of view: the caller logs failures and continues.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a run-history repository and ensures its schema.
//
// Parameters:
//   - ctx: Context for the schema statement
//   - db: Open SQLite connection
//
// Returns:
//   - *Repository: Repository ready for use
//   - error: If schema creation fails
func NewRepository(ctx context.Context, db *sql.DB) (*Repository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// StartRun inserts a new run row in the running state.
func (r *Repository) StartRun(ctx context.Context, runID, device string, total int) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO runs (id, device, total) VALUES (?, ?, ?)",
		runID, device, total,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// RecordCommand inserts one command outcome for a run.
func (r *Repository) RecordCommand(ctx context.Context, runID string, seq int, path string, sendErr error) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	ok := 1
	errText := sql.NullString{}
	if sendErr != nil {
		ok = 0
		errText = sql.NullString{String: sendErr.Error(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO run_commands (run_id, seq, path, ok, error) VALUES (?, ?, ?, ?, ?)",
		runID, seq, path, ok, errText,
	)
	if err != nil {
		return fmt.Errorf("inserting command outcome: %w", err)
	}
	return nil
}

// FinishRun updates the run row with its final state and counters.
func (r *Repository) FinishRun(ctx context.Context, runID, state string, sent, failed int) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	finishedAt := time.Now().UTC().Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"UPDATE runs SET state = ?, sent = ?, failed = ?, finished_at = ? WHERE id = ?",
		state, sent, failed, finishedAt, runID,
	)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum rows to return (default 20, max 100)
func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device, state, total, sent, failed, started_at, finished_at
		 FROM runs
		 ORDER BY started_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Device, &run.State, &run.Total,
			&run.Sent, &run.Failed, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}

// RunCommands returns all command outcomes for a run, in replay order.
func (r *Repository) RunCommands(ctx context.Context, runID string) ([]CommandRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, seq, path, ok, COALESCE(error, '')
		 FROM run_commands
		 WHERE run_id = ?
		 ORDER BY seq ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying command outcomes: %w", err)
	}
	defer rows.Close()

	var records []CommandRecord
	for rows.Next() {
		var rec CommandRecord
		var ok int
		if err := rows.Scan(&rec.RunID, &rec.Seq, &rec.Path, &ok, &rec.Error); err != nil {
			return nil, fmt.Errorf("scanning command outcome: %w", err)
		}
		rec.OK = ok == 1
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating command outcomes: %w", err)
	}

	return records, nil
}
