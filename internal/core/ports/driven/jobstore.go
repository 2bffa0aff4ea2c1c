package driven

import (
	"context"
	"time"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
)

// JobStore is the durable persistence behind the job queue.
type JobStore interface {
	// Insert stores a new pending job.
	Insert(ctx context.Context, job *domain.Job) error

	// ClaimNext atomically claims the oldest due pending job and marks
	// it running, incrementing its attempt count. Returns nil with no
	// error when nothing is due.
	ClaimNext(ctx context.Context, now time.Time) (*domain.Job, error)

	// MarkCompleted finishes a job successfully.
	MarkCompleted(ctx context.Context, id string) error

	// MarkFailed records a failed attempt. The job is rescheduled with
	// backoff while attempts remain, otherwise marked dead. Dead jobs
	// stay stored for manual inspection.
	MarkFailed(ctx context.Context, id string, jobErr string, now time.Time) error

	// Get retrieves a job by ID.
	Get(ctx context.Context, id string) (*domain.Job, error)
}
