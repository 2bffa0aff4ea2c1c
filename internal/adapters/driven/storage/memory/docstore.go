// Package memory provides in-memory implementations of the storage
// ports, used by tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
	}
}

// Save stores or updates a document.
func (s *DocumentStore) Save(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// FindByID retrieves a document by ID.
func (s *DocumentStore) FindByID(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Update applies a partial field patch to a document.
func (s *DocumentStore) Update(_ context.Context, id string, patch domain.DocumentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}

	if patch.FullText != nil {
		doc.FullText = patch.FullText
	}
	if patch.ProcessingStatus != nil {
		doc.ProcessingStatus = *patch.ProcessingStatus
	}
	if patch.EmbeddingStatus != nil {
		doc.EmbeddingStatus = *patch.EmbeddingStatus
	}
	if patch.EmbeddingError != nil {
		doc.EmbeddingError = patch.EmbeddingError
	}
	if patch.ClearEmbeddingError {
		doc.EmbeddingError = nil
	}
	if patch.Embedding != nil {
		doc.Embedding = patch.Embedding
	}
	if patch.Status != nil {
		doc.Status = *patch.Status
	}
	if patch.SourceURL != nil {
		doc.SourceURL = *patch.SourceURL
	}
	doc.UpdatedAt = time.Now().UTC()
	s.documents[id] = doc
	return nil
}

// ListStuck returns documents sitting in a processing state since
// before the cutoff.
func (s *DocumentStore) ListStuck(_ context.Context, cutoff time.Time) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stuck []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		inProgress := doc.ProcessingStatus == domain.ProcessingInProgress ||
			doc.EmbeddingStatus == domain.EmbeddingInProgress
		if inProgress && doc.UpdatedAt.Before(cutoff) {
			stuck = append(stuck, doc)
		}
	}
	return stuck, nil
}
