package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/uancamilo/asistentelegal-sub001/internal/chunker"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
	"github.com/uancamilo/asistentelegal-sub001/internal/logger"
)

const (
	// maxErrorLen truncates stored failure messages.
	maxErrorLen = 500

	// docContextPrefixLen bounds how much full text feeds the
	// document-level vector.
	docContextPrefixLen = 2000
)

// Processor executes the two chained pipeline stages per document:
// extraction turns a source URL into full text, embedding turns full
// text into searchable chunks. Each stage is the handler of one queued
// job kind; stage B is only ever enqueued by a successful stage A or a
// deliberate re-process, so two jobs never run for the same document
// concurrently.
type Processor struct {
	docStore   driven.DocumentStore
	chunkStore driven.ChunkStore
	embedder   driven.EmbeddingService
	fetcher    driven.SourceFetcher
	extractor  driven.TextExtractor
	queue      driven.JobQueue
	chunkOpts  chunker.Options
}

// NewProcessor creates the pipeline processor.
func NewProcessor(
	docStore driven.DocumentStore,
	chunkStore driven.ChunkStore,
	embedder driven.EmbeddingService,
	fetcher driven.SourceFetcher,
	extractor driven.TextExtractor,
	queue driven.JobQueue,
	chunkOpts chunker.Options,
) *Processor {
	return &Processor{
		docStore:   docStore,
		chunkStore: chunkStore,
		embedder:   embedder,
		fetcher:    fetcher,
		extractor:  extractor,
		queue:      queue,
		chunkOpts:  chunkOpts,
	}
}

// Register binds the stage handlers to their job kinds.
func (p *Processor) Register() {
	p.queue.Register(domain.JobKindExtraction, p.HandleExtraction)
	p.queue.Register(domain.JobKindEmbedding, p.HandleEmbedding)
}

// HandleExtraction runs stage A: download the source, extract its text
// and chain the embedding stage.
//
// On failure the document is marked processingStatus=failed and
// embeddingStatus=skipped (no chunking without text), the error is
// stored truncated, and the next stage is not enqueued. The error is
// still returned so the queue's retry machinery sees the failure.
func (p *Processor) HandleExtraction(ctx context.Context, job *domain.Job) error {
	docID := job.Payload.DocumentID
	logger.Section("Extraction: " + docID)

	if err := p.patch(ctx, docID, domain.DocumentPatch{
		ProcessingStatus: statusPtr(domain.ProcessingInProgress),
	}); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	content, err := p.fetcher.Fetch(ctx, job.Payload.SourceURL)
	if err != nil {
		return p.failExtraction(ctx, docID, fmt.Errorf("fetch: %w", err))
	}

	text, err := p.extractor.Extract(ctx, content)
	if err != nil {
		return p.failExtraction(ctx, docID, fmt.Errorf("extract: %w", err))
	}

	if err := p.patch(ctx, docID, domain.DocumentPatch{
		FullText:         &text,
		ProcessingStatus: statusPtr(domain.ProcessingCompleted),
		EmbeddingStatus:  embStatusPtr(domain.EmbeddingPending),
	}); err != nil {
		return fmt.Errorf("persist extracted text: %w", err)
	}

	if _, err := p.queue.Enqueue(ctx, domain.JobKindEmbedding,
		domain.JobPayload{DocumentID: docID}, domain.DefaultEnqueueOptions()); err != nil {
		return fmt.Errorf("enqueue embedding stage: %w", err)
	}

	logger.Info("Extraction complete for %s: %d characters", docID, len(text))
	return nil
}

// HandleEmbedding runs stage B: chunk the extracted text, embed the
// chunks and the document context, and swap the chunk set.
//
// Re-running this stage for the same document is safe: the chunk set is
// fully replaced rather than appended. A failure leaves the previously
// extracted full text untouched, so the stage can be retried without
// re-fetching the source.
func (p *Processor) HandleEmbedding(ctx context.Context, job *domain.Job) error {
	docID := job.Payload.DocumentID
	logger.Section("Embedding: " + docID)

	doc, err := p.docStore.FindByID(ctx, docID)
	if err != nil {
		// No document to update; let the job fail on its own.
		return fmt.Errorf("load document: %w", err)
	}

	if err := p.patch(ctx, docID, domain.DocumentPatch{
		EmbeddingStatus: embStatusPtr(domain.EmbeddingInProgress),
	}); err != nil {
		return fmt.Errorf("mark embedding: %w", err)
	}

	if doc.FullText == nil || strings.TrimSpace(*doc.FullText) == "" {
		return p.failEmbedding(ctx, docID, domain.ErrEmptyExtraction)
	}

	// Coarse document-level vector from title, summary and a bounded
	// prefix of the text; computed before per-chunk embedding.
	docVector, err := p.embedder.Embed(ctx, documentContext(doc))
	if err != nil {
		return p.failEmbedding(ctx, docID, fmt.Errorf("embed document context: %w", err))
	}

	pieces := chunker.Split(*doc.FullText, p.chunkOpts)
	if len(pieces) == 0 {
		return p.failEmbedding(ctx, docID, domain.ErrEmptyExtraction)
	}
	logger.Debug("Split %s into %d chunks", docID, len(pieces))

	// Chunk contents are prefixed with title and summary so each
	// vector carries document-level retrieval context.
	prefix := retrievalPrefix(doc)
	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = prefix + piece.Content
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return p.failEmbedding(ctx, docID, err)
	}

	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		if vectors[i] == nil {
			return p.failEmbedding(ctx, docID,
				fmt.Errorf("%w: no vector for chunk %d", domain.ErrEmbeddingFailed, piece.Index))
		}
		chunks[i] = domain.Chunk{
			DocumentID: docID,
			ChunkIndex: piece.Index,
			Content:    piece.Content,
			ArticleRef: piece.ArticleRef,
			Embedding:  vectors[i],
		}
	}

	// The swap is transactional: search never observes a partial
	// chunk set.
	if err := p.chunkStore.ReplaceForDocument(ctx, docID, chunks); err != nil {
		return p.failEmbedding(ctx, docID, fmt.Errorf("replace chunks: %w", err))
	}

	if err := p.patch(ctx, docID, domain.DocumentPatch{
		EmbeddingStatus:     embStatusPtr(domain.EmbeddingCompleted),
		Embedding:           docVector,
		ClearEmbeddingError: true,
	}); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	logger.Info("Embedding complete for %s: %d chunks", docID, len(chunks))
	return nil
}

// failExtraction records a stage A failure on the document and returns
// the original error for the queue's retry machinery.
func (p *Processor) failExtraction(ctx context.Context, docID string, stageErr error) error {
	msg := truncateError(stageErr)
	patchErr := p.patch(ctx, docID, domain.DocumentPatch{
		ProcessingStatus: statusPtr(domain.ProcessingFailed),
		EmbeddingStatus:  embStatusPtr(domain.EmbeddingSkipped),
		EmbeddingError:   &msg,
	})
	if patchErr != nil {
		// Never mask the stage failure with the bookkeeping failure.
		logger.Warn("Failed to record extraction error for %s: %v", docID, patchErr)
	}
	return stageErr
}

// failEmbedding records a stage B failure, leaving FullText untouched.
func (p *Processor) failEmbedding(ctx context.Context, docID string, stageErr error) error {
	msg := truncateError(stageErr)
	patchErr := p.patch(ctx, docID, domain.DocumentPatch{
		EmbeddingStatus: embStatusPtr(domain.EmbeddingFailed),
		EmbeddingError:  &msg,
	})
	if patchErr != nil {
		logger.Warn("Failed to record embedding error for %s: %v", docID, patchErr)
	}
	return stageErr
}

func (p *Processor) patch(ctx context.Context, docID string, patch domain.DocumentPatch) error {
	return p.docStore.Update(ctx, docID, patch)
}

// documentContext builds the text behind the document-level vector.
func documentContext(doc *domain.Document) string {
	var b strings.Builder
	b.WriteString(doc.Title)
	if doc.Summary != "" {
		b.WriteString("\n")
		b.WriteString(doc.Summary)
	}
	if doc.FullText != nil {
		text := *doc.FullText
		runes := []rune(text)
		if len(runes) > docContextPrefixLen {
			text = string(runes[:docContextPrefixLen])
		}
		b.WriteString("\n")
		b.WriteString(text)
	}
	return b.String()
}

// retrievalPrefix is prepended to each chunk before embedding.
func retrievalPrefix(doc *domain.Document) string {
	prefix := doc.Title
	if doc.Summary != "" {
		prefix += " - " + doc.Summary
	}
	if prefix == "" {
		return ""
	}
	return prefix + "\n\n"
}

// truncateError renders an error message bounded for column storage.
func truncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	return msg
}

func statusPtr(s domain.ProcessingStatus) *domain.ProcessingStatus {
	return &s
}

func embStatusPtr(s domain.EmbeddingStatus) *domain.EmbeddingStatus {
	return &s
}
