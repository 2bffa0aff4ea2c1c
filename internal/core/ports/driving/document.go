package driving

import (
	"context"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
)

// SubmitRequest describes a document handed to the pipeline.
// Exactly one of SourceURL or RawText must be set.
type SubmitRequest struct {
	// Title is the human-readable title.
	Title string

	// Summary is a short description, used as embedding context.
	Summary string

	// SourceURL points to the source content to download and extract.
	SourceURL string

	// RawText is pre-extracted text, skipping the extraction stage.
	RawText string
}

// DocumentService submits documents to the pipeline and exposes the
// status-polling read model.
type DocumentService interface {
	// Submit stores a new document and enqueues its first pipeline
	// stage. It returns the document ID immediately; processing is
	// asynchronous.
	Submit(ctx context.Context, req SubmitRequest) (string, error)

	// Status returns the processing read model for a document.
	Status(ctx context.Context, documentID string) (*domain.DocumentStatus, error)

	// Reprocess re-enqueues the embedding stage for a document whose
	// extraction already succeeded. Serialized re-processing is the
	// only way a document's chunk set is regenerated.
	Reprocess(ctx context.Context, documentID string) error
}
