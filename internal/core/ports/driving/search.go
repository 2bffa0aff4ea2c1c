package driving

import (
	"context"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
)

// SearchService answers free-text queries against published documents.
type SearchService interface {
	// Search embeds the query, ranks chunks by cosine similarity,
	// aggregates per document and returns results with snippets.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
