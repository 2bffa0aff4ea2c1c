package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driving"
	"github.com/uancamilo/asistentelegal-sub001/internal/logger"
)

// DocumentService submits documents to the pipeline and serves the
// status-polling read model.
type DocumentService struct {
	docStore   driven.DocumentStore
	chunkStore driven.ChunkStore
	queue      driven.JobQueue
}

var _ driving.DocumentService = (*DocumentService)(nil)

// NewDocumentService creates the document service.
func NewDocumentService(docStore driven.DocumentStore, chunkStore driven.ChunkStore, queue driven.JobQueue) *DocumentService {
	return &DocumentService{
		docStore:   docStore,
		chunkStore: chunkStore,
		queue:      queue,
	}
}

// Submit stores a new document and enqueues its first pipeline stage.
// Documents submitted with a source URL enter at extraction; documents
// submitted as raw text skip straight to embedding.
func (s *DocumentService) Submit(ctx context.Context, req driving.SubmitRequest) (string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	sourceURL := strings.TrimSpace(req.SourceURL)
	rawText := strings.TrimSpace(req.RawText)
	if (sourceURL == "") == (rawText == "") {
		return "", fmt.Errorf("%w: exactly one of source URL or raw text must be set", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:               uuid.NewString(),
		Title:            title,
		Summary:          strings.TrimSpace(req.Summary),
		SourceURL:        sourceURL,
		Status:           domain.PublicationDraft,
		ProcessingStatus: domain.ProcessingPending,
		EmbeddingStatus:  domain.EmbeddingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	kind := domain.JobKindExtraction
	if rawText != "" {
		// Raw text needs no extraction; record it as already done.
		doc.FullText = &rawText
		doc.ProcessingStatus = domain.ProcessingCompleted
		kind = domain.JobKindEmbedding
	}

	if err := s.docStore.Save(ctx, doc); err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}

	payload := domain.JobPayload{DocumentID: doc.ID, SourceURL: sourceURL}
	if _, err := s.queue.Enqueue(ctx, kind, payload, domain.DefaultEnqueueOptions()); err != nil {
		return "", fmt.Errorf("enqueue %s: %w", kind, err)
	}

	logger.Info("Submitted document %s (%s)", doc.ID, kind)
	return doc.ID, nil
}

// Status returns the processing read model for a document.
func (s *DocumentService) Status(ctx context.Context, documentID string) (*domain.DocumentStatus, error) {
	doc, err := s.docStore.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	count, err := s.chunkStore.CountForDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	return &domain.DocumentStatus{
		ProcessingStatus: doc.ProcessingStatus,
		EmbeddingStatus:  doc.EmbeddingStatus,
		EmbeddingError:   doc.EmbeddingError,
		ChunksCount:      count,
	}, nil
}

// Reprocess re-enqueues the embedding stage for a document whose text
// was already extracted. The existing chunk set stays searchable until
// the new run swaps it.
func (s *DocumentService) Reprocess(ctx context.Context, documentID string) error {
	doc, err := s.docStore.FindByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	if doc.FullText == nil || strings.TrimSpace(*doc.FullText) == "" {
		return fmt.Errorf("%w: document has no extracted text", domain.ErrInvalidInput)
	}

	if err := s.docStore.Update(ctx, documentID, domain.DocumentPatch{
		EmbeddingStatus: embStatusPtr(domain.EmbeddingPending),
	}); err != nil {
		return fmt.Errorf("reset embedding status: %w", err)
	}

	payload := domain.JobPayload{DocumentID: documentID}
	if _, err := s.queue.Enqueue(ctx, domain.JobKindEmbedding, payload, domain.DefaultEnqueueOptions()); err != nil {
		return fmt.Errorf("enqueue embedding stage: %w", err)
	}

	logger.Info("Re-enqueued embedding for document %s", documentID)
	return nil
}
