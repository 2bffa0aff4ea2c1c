package driven

import (
	"context"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
)

// ChunkStore persists chunks and serves vector similarity queries.
type ChunkStore interface {
	// ReplaceForDocument atomically swaps the full chunk set of a
	// document: existing chunks are removed and the new ones inserted
	// within a single transaction, so search never observes a partial
	// chunk set.
	ReplaceForDocument(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// DeleteForDocument removes all chunks of a document.
	DeleteForDocument(ctx context.Context, documentID string) error

	// CountForDocument returns how many chunks a document has.
	CountForDocument(ctx context.Context, documentID string) (int, error)

	// SearchSimilar returns the k chunks most similar to the query
	// vector by cosine similarity, restricted to published documents,
	// discarding hits below minScore. Results are ordered by
	// similarity descending.
	SearchSimilar(ctx context.Context, query []float32, k int, minScore float64) ([]domain.ScoredChunk, error)
}
