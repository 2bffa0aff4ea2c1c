package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The provider exposes no control over internal batching; the adapter
// behind this interface supplies sub-batching, rate pacing and
// partial-empty-input tolerance.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Empty or whitespace-only text is rejected with domain.ErrEmptyText.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// The result is order-preserving and has exactly one entry per
	// input; positions whose input was empty hold a nil sentinel.
	// A provider failure aborts the remaining sub-batches and is
	// returned wrapped in domain.ErrEmbeddingFailed.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size fixed by the model.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}
