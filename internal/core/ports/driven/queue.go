package driven

import (
	"context"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
)

// JobHandler executes one delivered job. Returning an error signals the
// queue's retry machinery; after MaxAttempts the job goes dead.
type JobHandler func(ctx context.Context, job *domain.Job) error

// JobQueue is a durable queue with at-least-once delivery.
//
// Enqueueing returns immediately; callers observe progress only by
// polling document status fields. Retry metadata (attempt count,
// last error) is visible to handlers on the delivered job.
type JobQueue interface {
	// Enqueue adds a job of the given kind.
	Enqueue(ctx context.Context, kind domain.JobKind, payload domain.JobPayload, opts domain.EnqueueOptions) (string, error)

	// Register binds a handler to a job kind.
	// Must be called before Run.
	Register(kind domain.JobKind, handler JobHandler)

	// Run starts the worker pool and blocks until ctx is cancelled.
	Run(ctx context.Context) error
}
