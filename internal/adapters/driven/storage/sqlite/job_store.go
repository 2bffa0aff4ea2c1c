package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
)

// jobStore implements driven.JobStore.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

const jobColumns = `id, kind, payload, status, attempts, max_attempts,
	backoff_seconds, run_at, last_error, created_at`

// Insert stores a new pending job.
func (s *jobStore) Insert(ctx context.Context, job *domain.Job) error {
	payload, err := marshalPayload(job.Payload)
	if err != nil {
		return err
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO jobs (id, kind, payload, status, attempts, max_attempts,
			backoff_seconds, run_at, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, string(job.Kind), payload, string(job.Status), job.Attempts,
		job.MaxAttempts, int64(job.Backoff.Seconds()), job.RunAt.UTC(),
		nullString(job.LastError), job.CreatedAt.UTC())

	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}
	return nil
}

// ClaimNext claims the oldest due pending job for execution.
//
// The claim is a single guarded UPDATE, so two workers can never run
// the same job: only the one whose UPDATE matched proceeds.
func (s *jobStore) ClaimNext(ctx context.Context, now time.Time) (*domain.Job, error) {
	for {
		row := s.store.db.QueryRowContext(ctx, `
			SELECT `+jobColumns+` FROM jobs
			WHERE status = ? AND run_at <= ?
			ORDER BY run_at
			LIMIT 1
		`, string(domain.JobPending), now.UTC())

		job, err := scanJob(row.Scan)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil // Nothing due
			}
			return nil, fmt.Errorf("scanning job: %w", err)
		}

		res, err := s.store.db.ExecContext(ctx, `
			UPDATE jobs SET status = ?, attempts = attempts + 1
			WHERE id = ? AND status = ?
		`, string(domain.JobRunning), job.ID, string(domain.JobPending))
		if err != nil {
			return nil, fmt.Errorf("claiming job: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claiming job: %w", err)
		}
		if n == 0 {
			// Another worker claimed it first; try the next one.
			continue
		}

		job.Status = domain.JobRunning
		job.Attempts++
		return job, nil
	}
}

// MarkCompleted finishes a job successfully.
func (s *jobStore) MarkCompleted(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, last_error = NULL WHERE id = ?
	`, string(domain.JobCompleted), id)
	if err != nil {
		return fmt.Errorf("completing job: %w", err)
	}
	return nil
}

// MarkFailed records a failed attempt, rescheduling with exponential
// backoff while attempts remain, or marking the job dead.
func (s *jobStore) MarkFailed(ctx context.Context, id string, jobErr string, now time.Time) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if job.Attempts >= job.MaxAttempts {
		_, err = s.store.db.ExecContext(ctx, `
			UPDATE jobs SET status = ?, last_error = ? WHERE id = ?
		`, string(domain.JobDead), jobErr, id)
		if err != nil {
			return fmt.Errorf("marking job dead: %w", err)
		}
		return nil
	}

	// Backoff doubles with each completed attempt.
	delay := job.Backoff
	for i := 1; i < job.Attempts; i++ {
		delay *= 2
	}

	_, err = s.store.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, last_error = ?, run_at = ? WHERE id = ?
	`, string(domain.JobPending), jobErr, now.Add(delay).UTC(), id)
	if err != nil {
		return fmt.Errorf("rescheduling job: %w", err)
	}
	return nil
}

// Get retrieves a job by ID.
func (s *jobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)

	job, err := scanJob(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	return job, nil
}

// scanJob scans one job row via the given Scan function.
func scanJob(scan func(dest ...any) error) (*domain.Job, error) {
	var job domain.Job
	var kind, status, payload string
	var backoffSeconds int64
	var lastError sql.NullString

	if err := scan(&job.ID, &kind, &payload, &status, &job.Attempts,
		&job.MaxAttempts, &backoffSeconds, &job.RunAt, &lastError, &job.CreatedAt); err != nil {
		return nil, err
	}

	job.Kind = domain.JobKind(kind)
	job.Status = domain.JobStatus(status)
	job.Backoff = time.Duration(backoffSeconds) * time.Second
	job.LastError = lastError.String

	if err := unmarshalPayload(payload, &job.Payload); err != nil {
		return nil, err
	}

	return &job, nil
}
