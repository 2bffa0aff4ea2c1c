package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// pdfMagic is the header every PDF file starts with.
var pdfMagic = []byte("%PDF-")

// Extractor turns fetched bytes into plain text. PDF payloads go
// through the pdf reader; anything else valid as UTF-8 is taken as
// plain text.
type Extractor struct{}

// NewExtractor creates a new text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the text content of the payload.
func (e *Extractor) Extract(_ context.Context, content *driven.SourceContent) (string, error) {
	if content == nil || len(content.Data) == 0 {
		return "", domain.ErrEmptyExtraction
	}

	var text string
	var err error

	switch {
	case content.MediaType == "application/pdf" || bytes.HasPrefix(content.Data, pdfMagic):
		text, err = extractPDF(content.Data)
		if err != nil {
			return "", err
		}
	case utf8.Valid(content.Data):
		text = string(content.Data)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedContent, content.MediaType)
	}

	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyExtraction
	}
	return text, nil
}

// extractPDF reads the plain text of all pages.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf buffer: %w", err)
	}
	return buf.String(), nil
}
