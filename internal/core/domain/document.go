package domain

import "time"

// ProcessingStatus tracks the text-extraction stage of a document.
type ProcessingStatus string

// Processing statuses.
const (
	ProcessingPending    ProcessingStatus = "pending"
	ProcessingInProgress ProcessingStatus = "processing"
	ProcessingCompleted  ProcessingStatus = "completed"
	ProcessingFailed     ProcessingStatus = "failed"
)

// EmbeddingStatus tracks the chunking/vectorisation stage of a document.
type EmbeddingStatus string

// Embedding statuses.
const (
	EmbeddingPending    EmbeddingStatus = "pending"
	EmbeddingInProgress EmbeddingStatus = "processing"
	EmbeddingCompleted  EmbeddingStatus = "completed"
	EmbeddingFailed     EmbeddingStatus = "failed"

	// EmbeddingSkipped means no chunking was attempted because
	// extraction never produced text.
	EmbeddingSkipped EmbeddingStatus = "skipped"
)

// PublicationStatus is the editorial state of a document. It is owned by an
// external workflow; the pipeline never changes it, but only published
// documents are eligible for query-time search.
type PublicationStatus string

// Publication statuses.
const (
	PublicationDraft     PublicationStatus = "draft"
	PublicationPublished PublicationStatus = "published"
	PublicationArchived  PublicationStatus = "archived"
)

// Document represents a legal text unit under processing.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// Summary is a short description, used as embedding context.
	Summary string

	// SourceURL is where the original content can be fetched from.
	// Empty when the document was submitted as raw text.
	SourceURL string

	// FullText is the extracted text content.
	// Nil until the extraction stage succeeds.
	FullText *string

	// Status is the publication state, owned by an external workflow.
	Status PublicationStatus

	// ProcessingStatus tracks the extraction stage.
	ProcessingStatus ProcessingStatus

	// EmbeddingStatus tracks the embedding stage.
	EmbeddingStatus EmbeddingStatus

	// EmbeddingError holds the last embedding/extraction failure
	// message, truncated. Nil when the last run succeeded.
	EmbeddingError *string

	// Embedding is the coarse document-level vector built from
	// title, summary and a bounded prefix of the full text.
	Embedding []float32

	// CreatedAt is when the document was submitted.
	CreatedAt time.Time

	// UpdatedAt is when the document was last mutated.
	UpdatedAt time.Time
}

// DocumentPatch is a partial update applied to a stored document.
// Nil fields are left untouched.
type DocumentPatch struct {
	FullText         *string
	ProcessingStatus *ProcessingStatus
	EmbeddingStatus  *EmbeddingStatus
	EmbeddingError   *string

	// ClearEmbeddingError resets EmbeddingError to null. Needed because a
	// nil EmbeddingError in a patch means "leave as is".
	ClearEmbeddingError bool

	Embedding []float32
	Status    *PublicationStatus
	SourceURL *string
}

// Chunk represents one retrievable passage of a Document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// ChunkIndex is the 0-based position within the document.
	// Indices are dense and contiguous per document.
	ChunkIndex int

	// Content is the passage text.
	Content string

	// ArticleRef is an optional structural citation tag
	// (e.g. "Artículo 12, Parágrafo 1"), inherited from the nearest
	// preceding chunk that declared one.
	ArticleRef string

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// DocumentStatus is the polling read model exposed to callers.
type DocumentStatus struct {
	ProcessingStatus ProcessingStatus
	EmbeddingStatus  EmbeddingStatus
	EmbeddingError   *string
	ChunksCount      int
}
