// Package fetch downloads document sources over HTTP and extracts
// their text content.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	// DefaultTimeout is the hard limit on one source download.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBytes caps the source payload size (20 MiB).
	DefaultMaxBytes = 20 << 20
)

// Accepted source content types.
var acceptedMediaTypes = map[string]bool{
	"application/pdf":          true,
	"text/plain":               true,
	"text/html":                false, // Rejected: HTML sources need a converter upstream
	"application/octet-stream": true,  // Some hosts mislabel PDFs; sniffed later
}

// Config holds fetcher configuration.
type Config struct {
	// Timeout is the per-request limit (default: 30s).
	Timeout time.Duration

	// MaxBytes caps the payload size (default: 20 MiB).
	MaxBytes int64
}

// Fetcher downloads source content with a hard timeout, a maximum
// payload size and a content-type check.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a new source fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxBytes: cfg.MaxBytes,
	}
}

// Fetch downloads the content at the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*driven.SourceContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch source: status %d", resp.StatusCode)
	}

	mediaType := normaliseMediaType(resp.Header.Get("Content-Type"))
	if ok, known := acceptedMediaTypes[mediaType]; known && !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedContent, mediaType)
	}

	// Read one byte past the cap to tell "exactly at the limit"
	// apart from "over it".
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", domain.ErrContentTooLarge, f.maxBytes)
	}

	return &driven.SourceContent{
		Data:      data,
		MediaType: mediaType,
	}, nil
}

// normaliseMediaType strips parameters and lowercases a Content-Type.
func normaliseMediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
