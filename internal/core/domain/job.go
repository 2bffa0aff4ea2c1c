package domain

import "time"

// JobKind identifies a pipeline stage.
type JobKind string

// Job kinds, one per pipeline stage.
const (
	// JobKindExtraction downloads a document's source and extracts text.
	JobKindExtraction JobKind = "pdf-extraction"

	// JobKindEmbedding chunks the extracted text and generates vectors.
	JobKindEmbedding JobKind = "embedding-generation"
)

// JobStatus is the queue-side lifecycle of a job.
type JobStatus string

// Job statuses.
const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"

	// JobDead means the job exhausted its attempts and was abandoned.
	// Dead jobs remain stored for manual inspection.
	JobDead JobStatus = "dead"
)

// JobPayload carries the arguments of a pipeline job.
type JobPayload struct {
	DocumentID string `json:"documentId"`
	SourceURL  string `json:"sourceUrl,omitempty"`
}

// Job is a unit of pipeline work owned by the durable queue.
// It is transient orchestration state, not domain data the
// application queries directly.
type Job struct {
	// ID is the unique identifier for the job.
	ID string

	// Kind selects the handler that executes the job.
	Kind JobKind

	// Payload holds the job arguments.
	Payload JobPayload

	// Status is the queue-side lifecycle state.
	Status JobStatus

	// Attempts is how many times the job has been started.
	Attempts int

	// MaxAttempts caps retries before the job goes dead.
	MaxAttempts int

	// Backoff is the base retry delay; attempt n waits Backoff * 2^(n-1).
	Backoff time.Duration

	// RunAt is the earliest time the job may be picked up.
	// Pushed forward by exponential backoff after a failure.
	RunAt time.Time

	// LastError is the message from the most recent failed attempt.
	LastError string

	// CreatedAt is when the job was enqueued.
	CreatedAt time.Time
}

// EnqueueOptions tunes retry behaviour for an enqueued job.
type EnqueueOptions struct {
	// MaxAttempts caps how many times the job is started.
	MaxAttempts int

	// Backoff is the base delay; attempt n waits Backoff * 2^(n-1).
	Backoff time.Duration
}

// DefaultEnqueueOptions returns the retry policy used by the pipeline.
func DefaultEnqueueOptions() EnqueueOptions {
	return EnqueueOptions{
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
	}
}
