package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/garnizeh/interviewdesk/internal/db"
)

// Repository persists jobs. Times are stored as unix milliseconds.
type Repository struct {
	db  *db.DB
	now func() time.Time
}

func NewRepository(d *db.DB) *Repository { return &Repository{db: d, now: time.Now} }

type jobRow struct {
	ID          int64          `db:"id"`
	Type        string         `db:"type"`
	Payload     sql.NullString `db:"payload"`
	Status      string         `db:"status"`
	Attempts    int            `db:"attempts"`
	MaxAttempts int            `db:"max_attempts"`
	Priority    int            `db:"priority"`
	ScheduledAt int64          `db:"scheduled_at"`
	NextTryAt   sql.NullInt64  `db:"next_try_at"`
	LastError   sql.NullString `db:"last_error"`
	Created     int64          `db:"created"`
	Updated     int64          `db:"updated"`
}

func (r jobRow) job() *Job {
	j := &Job{
		ID:          r.ID,
		Type:        r.Type,
		Status:      r.Status,
		Attempts:    r.Attempts,
		MaxAttempts: r.MaxAttempts,
		Priority:    r.Priority,
		ScheduledAt: time.UnixMilli(r.ScheduledAt),
		Created:     time.UnixMilli(r.Created),
		Updated:     time.UnixMilli(r.Updated),
		LastError:   r.LastError.String,
	}
	if r.Payload.Valid {
		j.Payload = json.RawMessage(r.Payload.String)
	}
	if r.NextTryAt.Valid {
		t := time.UnixMilli(r.NextTryAt.Int64)
		j.NextTryAt = &t
	}
	return j
}

const jobColumns = `id, type, payload, status, attempts, max_attempts, priority, scheduled_at, next_try_at, last_error, created, updated`

// Enqueue inserts a job into the jobs table and returns the new ID
func (r *Repository) Enqueue(ctx context.Context, j *Job) (int64, error) {
	if j.MaxAttempts <= 0 {
		j.MaxAttempts = DefaultMaxAttempts
	}
	now := r.now().UTC()
	if j.ScheduledAt.IsZero() {
		j.ScheduledAt = now
	}
	q := `INSERT INTO jobs(type, payload, status, attempts, max_attempts, priority, scheduled_at, created, updated)
		VALUES(?,?,?,?,?,?,?,?,?) RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, q, j.Type, string(j.Payload), StatusQueued, j.Attempts, j.MaxAttempts, j.Priority,
		j.ScheduledAt.UTC().UnixMilli(), now.UnixMilli(), now.UnixMilli()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("enqueue failed: %w", err)
	}
	j.ID = id
	j.Status = StatusQueued
	return id, nil
}

// FetchNext claims the next due job, lowest priority value first. It returns
// nil when nothing is due or another worker claimed the candidate first.
func (r *Repository) FetchNext(ctx context.Context) (*Job, error) {
	now := r.now().UTC().UnixMilli()
	q := `SELECT ` + jobColumns + ` FROM jobs
		WHERE (status = ? OR status = ?) AND (next_try_at IS NULL OR next_try_at <= ?) AND scheduled_at <= ?
		ORDER BY priority ASC, scheduled_at ASC, id ASC LIMIT 1`
	var row jobRow
	if err := r.db.Get(ctx, &row, q, StatusQueued, StatusRetry, now, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch next job: %w", err)
	}

	res, err := r.db.Exec(ctx, `UPDATE jobs SET status = ?, updated = ? WHERE id = ? AND status = ?`,
		StatusRunning, now, row.ID, row.Status)
	if err != nil {
		return nil, fmt.Errorf("claim job %d: %w", row.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	row.Status = StatusRunning
	return row.job(), nil
}

// Get returns the job with id, or nil.
func (r *Repository) Get(ctx context.Context, id int64) (*Job, error) {
	var row jobRow
	if err := r.db.Get(ctx, &row, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	return row.job(), nil
}

// UpdateJob updates attempts, status, next_try_at, last_error
func (r *Repository) UpdateJob(ctx context.Context, j *Job) error {
	var nextTry any
	if j.NextTryAt != nil {
		nextTry = j.NextTryAt.UTC().UnixMilli()
	}
	q := `UPDATE jobs SET status = ?, attempts = ?, next_try_at = ?, last_error = ?, updated = ? WHERE id = ?`
	if _, err := r.db.Exec(ctx, q, j.Status, j.Attempts, nextTry, j.LastError, r.now().UTC().UnixMilli(), j.ID); err != nil {
		return fmt.Errorf("update job %d: %w", j.ID, err)
	}
	return nil
}

// MoveToDeadLetter moves a job to dead_letter_jobs and deletes the original
func (r *Repository) MoveToDeadLetter(ctx context.Context, j *Job) error {
	return r.db.Tx(ctx, func(tx *sqlx.Tx) error {
		insert := tx.Rebind(`INSERT INTO dead_letter_jobs(job_id, type, payload, attempts, last_error, failed_at) VALUES(?,?,?,?,?,?)`)
		if _, err := tx.ExecContext(ctx, insert, j.ID, j.Type, string(j.Payload), j.Attempts, j.LastError, r.now().UTC().UnixMilli()); err != nil {
			return fmt.Errorf("insert dead letter for job %d: %w", j.ID, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM jobs WHERE id = ?`), j.ID); err != nil {
			return fmt.Errorf("delete job %d: %w", j.ID, err)
		}
		return nil
	})
}

// DeadLetters lists dead-lettered jobs, oldest first.
func (r *Repository) DeadLetters(ctx context.Context) ([]DeadLetter, error) {
	var rows []struct {
		ID        int64          `db:"id"`
		JobID     int64          `db:"job_id"`
		Type      string         `db:"type"`
		Payload   sql.NullString `db:"payload"`
		Attempts  int            `db:"attempts"`
		LastError sql.NullString `db:"last_error"`
		FailedAt  int64          `db:"failed_at"`
	}
	if err := r.db.Select(ctx, &rows, `SELECT id, job_id, type, payload, attempts, last_error, failed_at FROM dead_letter_jobs ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	out := make([]DeadLetter, 0, len(rows))
	for _, row := range rows {
		out = append(out, DeadLetter{
			ID:        row.ID,
			JobID:     row.JobID,
			Type:      row.Type,
			Payload:   json.RawMessage(row.Payload.String),
			Attempts:  row.Attempts,
			LastError: row.LastError.String,
			FailedAt:  time.UnixMilli(row.FailedAt),
		})
	}
	return out, nil
}
