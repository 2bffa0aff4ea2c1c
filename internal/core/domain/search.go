package domain

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results. Defaults to 10.
	Limit int

	// MinScore discards chunks whose cosine similarity falls below it.
	MinScore float64
}

// SearchResult represents a single ranked query hit.
// Each document appears at most once, represented by its best chunk.
type SearchResult struct {
	// DocumentID is the matched document.
	DocumentID string

	// Title is the document title.
	Title string

	// Score is the cosine similarity of the best chunk,
	// rounded to 3 decimal places.
	Score float64

	// Snippet is a query-focused excerpt of the best chunk.
	Snippet string

	// ChunkIndex is the position of the best chunk within the document.
	ChunkIndex int

	// ArticleRef is the structural citation of the best chunk, if any.
	ArticleRef string
}

// ScoredChunk is a similarity-search hit before per-document aggregation.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// DocumentTitle is the owning document's title.
	DocumentTitle string

	// Similarity is the cosine similarity to the query vector (0-1).
	Similarity float64
}
