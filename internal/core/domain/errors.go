package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrQueryTooShort indicates a search query below the minimum length.
	// Rejected synchronously at the boundary, never enqueued.
	ErrQueryTooShort = errors.New("query too short")

	// ErrEmbeddingFailed indicates the embedding provider rejected or
	// failed a request. A batch aborts on the first provider failure;
	// there is no partial silent success.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrEmptyText indicates an attempt to embed empty or
	// whitespace-only text.
	ErrEmptyText = errors.New("text is empty")

	// ErrEmptyExtraction indicates the source fetched successfully but
	// no text could be extracted from it.
	ErrEmptyExtraction = errors.New("extraction produced no text")

	// ErrContentTooLarge indicates a source payload above the fetch limit.
	ErrContentTooLarge = errors.New("source content too large")

	// ErrUnsupportedContent indicates a source content type the
	// extractor cannot handle.
	ErrUnsupportedContent = errors.New("unsupported content type")
)
