package services

import (
	"context"
	"sync"
	"time"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
	"github.com/uancamilo/asistentelegal-sub001/internal/logger"
)

const (
	// DefaultSweepInterval is how often the reconciliation sweep runs.
	DefaultSweepInterval = 5 * time.Minute

	// DefaultStuckTimeout is how long a document may sit in a
	// "processing" state before the sweep recovers it.
	DefaultStuckTimeout = 30 * time.Minute
)

// Sweeper recovers documents stranded mid stage by a crashed worker.
// A document stuck in a "processing" state past the timeout gets its
// statuses reset and its stage re-enqueued.
type Sweeper struct {
	docStore driven.DocumentStore
	queue    driven.JobQueue
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewSweeper creates a sweeper. Non-positive durations take defaults.
func NewSweeper(docStore driven.DocumentStore, queue driven.JobQueue, interval, timeout time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if timeout <= 0 {
		timeout = DefaultStuckTimeout
	}
	return &Sweeper{
		docStore: docStore,
		queue:    queue,
		interval: interval,
		timeout:  timeout,
	}
}

// Start begins the sweep loop. Blocks until ctx is cancelled or Stop
// is called.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Recover immediately on startup, then on the interval.
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop shuts down the sweep loop.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}

// sweep finds stuck documents and re-enqueues their stage.
func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.timeout)
	docs, err := s.docStore.ListStuck(ctx, cutoff)
	if err != nil {
		logger.Warn("Sweep failed to list stuck documents: %v", err)
		return
	}
	if len(docs) == 0 {
		return
	}
	logger.Info("Sweep recovering %d stuck document(s)", len(docs))

	for i := range docs {
		if err := s.recover(ctx, &docs[i]); err != nil {
			logger.Warn("Sweep failed to recover document %s: %v", docs[i].ID, err)
		}
	}
}

// recover resets a stuck document and re-enqueues the stage it was in.
// A document with extracted text resumes at embedding; one without
// restarts at extraction.
func (s *Sweeper) recover(ctx context.Context, doc *domain.Document) error {
	kind := domain.JobKindExtraction
	patch := domain.DocumentPatch{
		ProcessingStatus: statusPtr(domain.ProcessingPending),
		EmbeddingStatus:  embStatusPtr(domain.EmbeddingPending),
	}
	if doc.FullText != nil {
		kind = domain.JobKindEmbedding
		patch.ProcessingStatus = nil
	}

	if err := s.docStore.Update(ctx, doc.ID, patch); err != nil {
		return err
	}

	payload := domain.JobPayload{DocumentID: doc.ID, SourceURL: doc.SourceURL}
	_, err := s.queue.Enqueue(ctx, kind, payload, domain.DefaultEnqueueOptions())
	if err != nil {
		return err
	}

	logger.Debug("Re-enqueued %s for stuck document %s", kind, doc.ID)
	return nil
}
