package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Similarity search requires a companion DocumentStore for the
// publication filter.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk
	docs   *DocumentStore
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore(docs *DocumentStore) *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string][]domain.Chunk),
		docs:   docs,
	}
}

// ReplaceForDocument swaps the full chunk set of a document.
func (s *ChunkStore) ReplaceForDocument(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		stored[i] = c
	}
	s.chunks[documentID] = stored
	return nil
}

// DeleteForDocument removes all chunks of a document.
func (s *ChunkStore) DeleteForDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentID)
	return nil
}

// CountForDocument returns how many chunks a document has.
func (s *ChunkStore) CountForDocument(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[documentID]), nil
}

// SearchSimilar ranks chunks of published documents by cosine
// similarity to the query vector.
func (s *ChunkStore) SearchSimilar(ctx context.Context, query []float32, k int, minScore float64) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []domain.ScoredChunk
	for docID, chunks := range s.chunks {
		doc, err := s.docs.FindByID(ctx, docID)
		if err != nil || doc.Status != domain.PublicationPublished {
			continue
		}
		for _, chunk := range chunks {
			if chunk.Embedding == nil {
				continue
			}
			sim := cosine(query, chunk.Embedding)
			if sim < minScore {
				continue
			}
			hits = append(hits, domain.ScoredChunk{
				Chunk:         chunk,
				DocumentTitle: doc.Title,
				Similarity:    sim,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
