package driven

import (
	"context"
	"time"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
)

// DocumentStore persists documents.
// Documents are created by an external workflow; the pipeline only
// reads them and patches status fields.
type DocumentStore interface {
	// Save stores or updates a document.
	Save(ctx context.Context, doc *domain.Document) error

	// FindByID retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	FindByID(ctx context.Context, id string) (*domain.Document, error)

	// Update applies a partial field patch to a document.
	Update(ctx context.Context, id string, patch domain.DocumentPatch) error

	// ListStuck returns documents whose given processing or embedding
	// status has been "processing" since before the cutoff. Used by the
	// reconciliation sweep.
	ListStuck(ctx context.Context, cutoff time.Time) ([]domain.Document, error)
}
