// Package ledger keeps a sqlite journal of batch runs and the outcome of
// every external tool call in them.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yumyai/strainpipe/pkg/batch"

	_ "modernc.org/sqlite"
)

// FileName is the ledger's default name inside an output directory.
const FileName = "strainpipe.db"

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id      TEXT PRIMARY KEY,
		batch       TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT,
		status      TEXT NOT NULL,
		total       INTEGER NOT NULL DEFAULT 0,
		completed   INTEGER NOT NULL DEFAULT 0,
		failed      INTEGER NOT NULL DEFAULT 0,
		skipped     INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS invocations (
		job_id     TEXT PRIMARY KEY,
		run_id     TEXT NOT NULL REFERENCES runs(run_id),
		item_id    TEXT NOT NULL,
		program    TEXT NOT NULL,
		args       TEXT NOT NULL,
		status     TEXT NOT NULL,
		exit_code  INTEGER NOT NULL,
		error      TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS invocations_run ON invocations(run_id);
`

const (
	RunRunning  = "running"
	RunFinished = "finished"
	RunFailed   = "failed"
)

type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the ledger database at path.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	// one writer; sqlite serialises anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger schema in %s: %w", path, err)
	}
	return &Ledger{db: db, now: time.Now}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) stamp() string {
	return l.now().UTC().Format(time.RFC3339Nano)
}

// BeginRun registers a new run for the plan and returns its id.
func (l *Ledger) BeginRun(ctx context.Context, plan *batch.Plan) (string, error) {
	runID := uuid.NewString()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, batch, started_at, status, total) VALUES (?, ?, ?, ?, ?)`,
		runID, plan.Name, l.stamp(), RunRunning, len(plan.Invocations))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// RecordJob upserts the latest state of a job.
func (l *Ledger) RecordJob(ctx context.Context, runID string, job batch.Job) error {
	args, err := json.Marshal(job.Invocation.Args)
	if err != nil {
		return err
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO invocations
			(job_id, run_id, item_id, program, args, status, exit_code, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			status = excluded.status,
			exit_code = excluded.exit_code,
			error = excluded.error,
			updated_at = excluded.updated_at`,
		job.ID, runID, job.ItemID, job.Invocation.Program, string(args),
		string(job.Status), job.ExitCode, job.Error,
		job.CreatedAt.UTC().Format(time.RFC3339Nano), job.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record job %s: %w", job.ItemID, err)
	}
	return nil
}

// FinishRun closes a run with its summary counts.
func (l *Ledger) FinishRun(ctx context.Context, runID string, s *batch.Summary) error {
	status := RunFinished
	if s.Failed > 0 {
		status = RunFailed
	}

	_, err := l.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, status = ?, total = ?, completed = ?, failed = ?, skipped = ?
		WHERE run_id = ?`,
		l.stamp(), status, s.Total, s.Completed, s.Failed, s.Skipped, runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

// Run is one row of the runs table.
type Run struct {
	ID         string
	Batch      string
	StartedAt  string
	FinishedAt string
	Status     string
	Total      int
	Completed  int
	Failed     int
	Skipped    int
}

// GetRun fetches a run by id.
func (l *Ledger) GetRun(ctx context.Context, runID string) (*Run, error) {
	var r Run
	var finished sql.NullString
	err := l.db.QueryRowContext(ctx, `
		SELECT run_id, batch, started_at, finished_at, status, total, completed, failed, skipped
		FROM runs WHERE run_id = ?`, runID).
		Scan(&r.ID, &r.Batch, &r.StartedAt, &finished, &r.Status, &r.Total, &r.Completed, &r.Failed, &r.Skipped)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	r.FinishedAt = finished.String
	return &r, nil
}

// Failure is a failed invocation as stored in the ledger.
type Failure struct {
	ItemID   string
	Program  string
	Args     []string
	ExitCode int
	Error    string
}

// Failures lists the failed invocations of a run in the order they ran.
func (l *Ledger) Failures(ctx context.Context, runID string) ([]Failure, error) {
	stm, err := l.db.PrepareContext(ctx, `
		SELECT item_id, program, args, exit_code, error
		FROM invocations
		WHERE run_id = ? AND status = ?
		ORDER BY created_at, item_id`)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx, runID, string(batch.JobFailed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var f Failure
		var args string
		if err := rows.Scan(&f.ItemID, &f.Program, &args, &f.ExitCode, &f.Error); err != nil {
			return nil, fmt.Errorf("scan failure row: %w", err)
		}
		if err := json.Unmarshal([]byte(args), &f.Args); err != nil {
			return nil, fmt.Errorf("decode args of %s: %w", f.ItemID, err)
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}
