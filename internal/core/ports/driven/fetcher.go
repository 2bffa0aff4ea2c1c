package driven

import "context"

// SourceContent is the payload downloaded from a document's source URL.
type SourceContent struct {
	// Data is the raw payload, bounded by the fetcher's size limit.
	Data []byte

	// MediaType is the normalised Content-Type (e.g. "application/pdf").
	MediaType string
}

// SourceFetcher downloads source content with a hard timeout, a maximum
// payload size and a content-type check.
type SourceFetcher interface {
	// Fetch downloads the content at the given URL.
	Fetch(ctx context.Context, url string) (*SourceContent, error)
}

// TextExtractor turns fetched bytes into plain text.
type TextExtractor interface {
	// Extract returns the text content of the payload.
	// Returns domain.ErrUnsupportedContent for media types it cannot
	// handle and domain.ErrEmptyExtraction when no text results.
	Extract(ctx context.Context, content *SourceContent) (string, error)
}
