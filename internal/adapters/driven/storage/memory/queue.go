package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
)

// Ensure Queue implements the interface.
var _ driven.JobQueue = (*Queue)(nil)

// Queue is an in-memory implementation of driven.JobQueue. Enqueued
// jobs are recorded, not executed; Drain runs them synchronously,
// which lets tests step the pipeline one stage at a time.
type Queue struct {
	mu       sync.Mutex
	jobs     []domain.Job
	handlers map[domain.JobKind]driven.JobHandler
}

// NewQueue creates a new in-memory job queue.
func NewQueue() *Queue {
	return &Queue{
		handlers: make(map[domain.JobKind]driven.JobHandler),
	}
}

// Enqueue records a job.
func (q *Queue) Enqueue(_ context.Context, kind domain.JobKind, payload domain.JobPayload, opts domain.EnqueueOptions) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job := domain.Job{
		ID:          uuid.NewString(),
		Kind:        kind,
		Payload:     payload,
		Status:      domain.JobPending,
		MaxAttempts: opts.MaxAttempts,
		Backoff:     opts.Backoff,
	}
	q.jobs = append(q.jobs, job)
	return job.ID, nil
}

// Register binds a handler to a job kind.
func (q *Queue) Register(kind domain.JobKind, handler driven.JobHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[kind] = handler
}

// Run blocks until the context is cancelled. Tests drive execution
// through Drain instead.
func (q *Queue) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// Enqueued returns the jobs recorded so far.
func (q *Queue) Enqueued() []domain.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.Job(nil), q.jobs...)
}

// Drain runs all currently pending jobs synchronously. Jobs enqueued
// by handlers during the drain stay pending for the next call.
func (q *Queue) Drain(ctx context.Context) []error {
	q.mu.Lock()
	pending := q.jobs
	q.jobs = nil
	handlers := q.handlers
	q.mu.Unlock()

	var errs []error
	for i := range pending {
		job := pending[i]
		handler, ok := handlers[job.Kind]
		if !ok {
			continue
		}
		job.Status = domain.JobRunning
		job.Attempts = 1
		if err := handler(ctx, &job); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
