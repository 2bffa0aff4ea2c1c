// Package queue provides a durable job queue with a polling worker pool,
// persisted through the JobStore port.
//
// Delivery is at-least-once: a job is claimed with a guarded UPDATE so
// only one worker runs it, retried with exponential backoff on failure,
// and marked dead after exhausting its attempts. Dead jobs stay stored
// for manual inspection; nothing is silently requeued.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
	"github.com/uancamilo/asistentelegal-sub001/internal/logger"
)

// Ensure Worker implements the interface.
var _ driven.JobQueue = (*Worker)(nil)

// Default configuration values.
const (
	// DefaultConcurrency bounds load on the embedding provider and the
	// source-fetch network path.
	DefaultConcurrency = 2

	// DefaultPollInterval is how often an idle worker checks for due jobs.
	DefaultPollInterval = time.Second
)

// Config holds worker pool configuration.
type Config struct {
	// Concurrency is the number of parallel workers (default: 2).
	Concurrency int

	// PollInterval is the idle polling period (default: 1s).
	PollInterval time.Duration
}

// Worker is a pool of independent workers pulling jobs from the
// durable store. Workers are stateless between jobs.
type Worker struct {
	store        driven.JobStore
	concurrency  int
	pollInterval time.Duration

	mu       sync.RWMutex
	handlers map[domain.JobKind]driven.JobHandler
}

// NewWorker creates a worker pool over the given job store.
func NewWorker(store driven.JobStore, cfg Config) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	return &Worker{
		store:        store,
		concurrency:  cfg.Concurrency,
		pollInterval: cfg.PollInterval,
		handlers:     make(map[domain.JobKind]driven.JobHandler),
	}
}

// Enqueue adds a job of the given kind. It returns immediately; callers
// observe progress only by polling document status fields.
func (w *Worker) Enqueue(ctx context.Context, kind domain.JobKind, payload domain.JobPayload, opts domain.EnqueueOptions) (string, error) {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = domain.DefaultEnqueueOptions().MaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = domain.DefaultEnqueueOptions().Backoff
	}

	now := time.Now()
	job := &domain.Job{
		ID:          uuid.New().String(),
		Kind:        kind,
		Payload:     payload,
		Status:      domain.JobPending,
		MaxAttempts: opts.MaxAttempts,
		Backoff:     opts.Backoff,
		RunAt:       now,
		CreatedAt:   now,
	}

	if err := w.store.Insert(ctx, job); err != nil {
		return "", err
	}

	logger.Debug("Enqueued %s job %s for document %s", kind, job.ID, payload.DocumentID)
	return job.ID, nil
}

// Register binds a handler to a job kind. Must be called before Run.
func (w *Worker) Register(kind domain.JobKind, handler driven.JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[kind] = handler
}

// Run starts the worker pool and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	logger.Info("Starting %d workers", w.concurrency)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.runWorker(ctx, id)
		}(i)
	}

	wg.Wait()
	return ctx.Err()
}

// runWorker is one worker's poll loop.
func (w *Worker) runWorker(ctx context.Context, id int) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Drain everything due before going back to sleep.
			for {
				claimed, err := w.runNext(ctx, id)
				if err != nil || !claimed {
					break
				}
			}
		}
	}
}

// runNext claims and executes at most one due job.
// Returns whether a job was claimed.
func (w *Worker) runNext(ctx context.Context, workerID int) (bool, error) {
	job, err := w.store.ClaimNext(ctx, time.Now())
	if err != nil {
		logger.Warn("Worker %d: claim failed: %v", workerID, err)
		return false, err
	}
	if job == nil {
		return false, nil
	}

	w.mu.RLock()
	handler, ok := w.handlers[job.Kind]
	w.mu.RUnlock()

	if !ok {
		logger.Warn("Worker %d: no handler for job kind %q", workerID, job.Kind)
		if err := w.store.MarkFailed(ctx, job.ID, "no handler registered", time.Now()); err != nil {
			logger.Warn("Worker %d: mark failed: %v", workerID, err)
		}
		return true, nil
	}

	logger.Debug("Worker %d: running %s job %s (attempt %d/%d)",
		workerID, job.Kind, job.ID, job.Attempts, job.MaxAttempts)

	// Once a stage begins it runs to completion or failure; there is
	// no mid-stage cancellation.
	if err := handler(context.WithoutCancel(ctx), job); err != nil {
		logger.Warn("Worker %d: job %s failed: %v", workerID, job.ID, err)
		if markErr := w.store.MarkFailed(ctx, job.ID, err.Error(), time.Now()); markErr != nil {
			logger.Warn("Worker %d: mark failed: %v", workerID, markErr)
		}
		return true, nil
	}

	if err := w.store.MarkCompleted(ctx, job.ID); err != nil {
		logger.Warn("Worker %d: mark completed: %v", workerID, err)
	}
	return true, nil
}
