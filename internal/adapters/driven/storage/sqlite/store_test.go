package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestNewStore_CreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "legal.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestDocumentStore_SaveAndFind(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	text := "ARTÍCULO 1. Texto completo."
	doc := &domain.Document{
		ID:        "doc-1",
		Title:     "Ley 100 de 1993",
		Summary:   "Seguridad social",
		SourceURL: "https://example.com/ley100.pdf",
		FullText:  &text,
		Status:    domain.PublicationPublished,
		Embedding: []float32{0.1, 0.2, 0.3},
	}
	require.NoError(t, docs.Save(ctx, doc))

	got, err := docs.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Ley 100 de 1993", got.Title)
	assert.Equal(t, "https://example.com/ley100.pdf", got.SourceURL)
	require.NotNil(t, got.FullText)
	assert.Equal(t, text, *got.FullText)
	assert.Equal(t, domain.PublicationPublished, got.Status)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got.Embedding)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestDocumentStore_FindMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.DocumentStore().FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_SaveUpserts(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.Save(ctx, &domain.Document{ID: "doc-1", Title: "Original"}))
	require.NoError(t, docs.Save(ctx, &domain.Document{ID: "doc-1", Title: "Actualizado"}))

	got, err := docs.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Actualizado", got.Title)
}

func TestDocumentStore_UpdatePatchesFields(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.Save(ctx, &domain.Document{ID: "doc-1", Title: "Ley 100"}))

	text := "texto extraído"
	errMsg := "fallo anterior"
	require.NoError(t, docs.Update(ctx, "doc-1", domain.DocumentPatch{
		FullText:         &text,
		ProcessingStatus: processingPtr(domain.ProcessingCompleted),
		EmbeddingError:   &errMsg,
	}))

	got, err := docs.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, got.FullText)
	assert.Equal(t, text, *got.FullText)
	assert.Equal(t, domain.ProcessingCompleted, got.ProcessingStatus)
	require.NotNil(t, got.EmbeddingError)
	assert.Equal(t, errMsg, *got.EmbeddingError)

	// Untouched fields survive the patch.
	assert.Equal(t, "Ley 100", got.Title)
	assert.Equal(t, domain.EmbeddingPending, got.EmbeddingStatus)
}

func TestDocumentStore_UpdateClearsError(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	errMsg := "fallo"
	require.NoError(t, docs.Save(ctx, &domain.Document{ID: "doc-1", EmbeddingError: &errMsg}))

	require.NoError(t, docs.Update(ctx, "doc-1", domain.DocumentPatch{
		EmbeddingStatus:     embeddingPtr(domain.EmbeddingCompleted),
		ClearEmbeddingError: true,
	}))

	got, err := docs.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Nil(t, got.EmbeddingError)
	assert.Equal(t, domain.EmbeddingCompleted, got.EmbeddingStatus)
}

func TestDocumentStore_UpdateMissing(t *testing.T) {
	store := setupTestStore(t)

	err := store.DocumentStore().Update(context.Background(), "ghost", domain.DocumentPatch{
		ProcessingStatus: processingPtr(domain.ProcessingFailed),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListStuck(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.Save(ctx, &domain.Document{
		ID:               "doc-stuck",
		ProcessingStatus: domain.ProcessingInProgress,
	}))
	require.NoError(t, docs.Save(ctx, &domain.Document{
		ID:               "doc-ok",
		ProcessingStatus: domain.ProcessingCompleted,
		EmbeddingStatus:  domain.EmbeddingCompleted,
	}))

	// A cutoff in the future makes the in-progress document count as
	// stuck regardless of how recently it was updated.
	stuck, err := docs.ListStuck(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, stuck, 1)
	assert.Equal(t, "doc-stuck", stuck[0].ID)

	// A cutoff in the past catches nothing.
	stuck, err = docs.ListStuck(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, stuck)
}

func TestChunkStore_ReplaceIsAtomicSwap(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.DocumentStore().Save(ctx, &domain.Document{ID: "doc-1"}))
	chunks := store.ChunkStore()

	first := []domain.Chunk{
		{DocumentID: "doc-1", ChunkIndex: 0, Content: "uno", Embedding: []float32{1, 0}},
		{DocumentID: "doc-1", ChunkIndex: 1, Content: "dos", Embedding: []float32{0, 1}},
		{DocumentID: "doc-1", ChunkIndex: 2, Content: "tres", Embedding: []float32{1, 1}},
	}
	require.NoError(t, chunks.ReplaceForDocument(ctx, "doc-1", first))

	count, err := chunks.CountForDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// The second run replaces the set; counts never accumulate.
	second := []domain.Chunk{
		{DocumentID: "doc-1", ChunkIndex: 0, Content: "nuevo", Embedding: []float32{0.5, 0.5}},
	}
	require.NoError(t, chunks.ReplaceForDocument(ctx, "doc-1", second))

	count, err = chunks.CountForDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestChunkStore_DeleteForDocument(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.DocumentStore().Save(ctx, &domain.Document{ID: "doc-1"}))
	chunks := store.ChunkStore()

	require.NoError(t, chunks.ReplaceForDocument(ctx, "doc-1", []domain.Chunk{
		{DocumentID: "doc-1", ChunkIndex: 0, Content: "uno"},
	}))
	require.NoError(t, chunks.DeleteForDocument(ctx, "doc-1"))

	count, err := chunks.CountForDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestChunkStore_SearchSimilarGatesOnPublication(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	docs := store.DocumentStore()
	chunks := store.ChunkStore()

	require.NoError(t, docs.Save(ctx, &domain.Document{
		ID: "doc-pub", Title: "Publicado", Status: domain.PublicationPublished,
	}))
	require.NoError(t, docs.Save(ctx, &domain.Document{
		ID: "doc-draft", Title: "Borrador", Status: domain.PublicationDraft,
	}))

	require.NoError(t, chunks.ReplaceForDocument(ctx, "doc-pub", []domain.Chunk{
		{DocumentID: "doc-pub", ChunkIndex: 0, Content: "texto público", ArticleRef: "Artículo 1", Embedding: []float32{1, 0, 0}},
	}))
	require.NoError(t, chunks.ReplaceForDocument(ctx, "doc-draft", []domain.Chunk{
		{DocumentID: "doc-draft", ChunkIndex: 0, Content: "texto borrador", Embedding: []float32{1, 0, 0}},
	}))

	hits, err := chunks.SearchSimilar(ctx, []float32{1, 0, 0}, 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-pub", hits[0].Chunk.DocumentID)
	assert.Equal(t, "Publicado", hits[0].DocumentTitle)
	assert.Equal(t, "Artículo 1", hits[0].Chunk.ArticleRef)
	assert.InDelta(t, 1.0, hits[0].Similarity, 0.001)
}

func TestChunkStore_SearchSimilarOrderingAndMinScore(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	docs := store.DocumentStore()
	chunks := store.ChunkStore()

	require.NoError(t, docs.Save(ctx, &domain.Document{
		ID: "doc-1", Status: domain.PublicationPublished,
	}))
	require.NoError(t, chunks.ReplaceForDocument(ctx, "doc-1", []domain.Chunk{
		{DocumentID: "doc-1", ChunkIndex: 0, Content: "cercano", Embedding: []float32{1, 0}},
		{DocumentID: "doc-1", ChunkIndex: 1, Content: "medio", Embedding: []float32{1, 1}},
		{DocumentID: "doc-1", ChunkIndex: 2, Content: "lejano", Embedding: []float32{0, 1}},
	}))

	hits, err := chunks.SearchSimilar(ctx, []float32{1, 0}, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Chunk.ChunkIndex)
	assert.Equal(t, 1, hits[1].Chunk.ChunkIndex)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestJobStore_InsertAndClaim(t *testing.T) {
	store := setupTestStore(t)
	jobs := store.JobStore()
	ctx := context.Background()
	now := time.Now().UTC()

	job := &domain.Job{
		ID:          "job-1",
		Kind:        domain.JobKindExtraction,
		Payload:     domain.JobPayload{DocumentID: "doc-1", SourceURL: "https://example.com/x.pdf"},
		Status:      domain.JobPending,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		RunAt:       now.Add(-time.Minute),
		CreatedAt:   now,
	}
	require.NoError(t, jobs.Insert(ctx, job))

	claimed, err := jobs.ClaimNext(ctx, now)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, "job-1", claimed.ID)
	assert.Equal(t, domain.JobRunning, claimed.Status)
	assert.Equal(t, 1, claimed.Attempts)
	assert.Equal(t, "doc-1", claimed.Payload.DocumentID)
	assert.Equal(t, "https://example.com/x.pdf", claimed.Payload.SourceURL)

	// A running job cannot be claimed again.
	again, err := jobs.ClaimNext(ctx, now)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestJobStore_ClaimRespectsRunAt(t *testing.T) {
	store := setupTestStore(t)
	jobs := store.JobStore()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, jobs.Insert(ctx, &domain.Job{
		ID:          "job-future",
		Kind:        domain.JobKindEmbedding,
		Status:      domain.JobPending,
		MaxAttempts: 3,
		RunAt:       now.Add(time.Hour),
		CreatedAt:   now,
	}))

	claimed, err := jobs.ClaimNext(ctx, now)
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

func TestJobStore_MarkFailedReschedulesWithBackoff(t *testing.T) {
	store := setupTestStore(t)
	jobs := store.JobStore()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, jobs.Insert(ctx, &domain.Job{
		ID:          "job-1",
		Kind:        domain.JobKindExtraction,
		Status:      domain.JobPending,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		RunAt:       now.Add(-time.Minute),
		CreatedAt:   now,
	}))

	claimed, err := jobs.ClaimNext(ctx, now)
	require.NoError(t, err)
	require.NotNil(t, claimed)

	require.NoError(t, jobs.MarkFailed(ctx, "job-1", "fetch: timeout", now))

	got, err := jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, got.Status)
	assert.Equal(t, "fetch: timeout", got.LastError)
	// First retry waits the base backoff.
	assert.WithinDuration(t, now.Add(30*time.Second), got.RunAt, time.Second)

	// The job is not due until the backoff elapses.
	claimed, err = jobs.ClaimNext(ctx, now)
	require.NoError(t, err)
	assert.Nil(t, claimed)

	claimed, err = jobs.ClaimNext(ctx, now.Add(31*time.Second))
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, 2, claimed.Attempts)
}

func TestJobStore_ExhaustedJobGoesDead(t *testing.T) {
	store := setupTestStore(t)
	jobs := store.JobStore()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, jobs.Insert(ctx, &domain.Job{
		ID:          "job-1",
		Kind:        domain.JobKindExtraction,
		Status:      domain.JobPending,
		MaxAttempts: 2,
		Backoff:     time.Second,
		RunAt:       now.Add(-time.Minute),
		CreatedAt:   now,
	}))

	// Two failed attempts exhaust the budget.
	for i := 0; i < 2; i++ {
		claimed, err := jobs.ClaimNext(ctx, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NotNil(t, claimed, "attempt %d", i+1)
		require.NoError(t, jobs.MarkFailed(ctx, "job-1", "persistent failure", now.Add(time.Duration(i)*time.Minute)))
	}

	got, err := jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobDead, got.Status)
	assert.Equal(t, "persistent failure", got.LastError)

	// Dead jobs stay stored but are never claimed.
	claimed, err := jobs.ClaimNext(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

func TestJobStore_MarkCompleted(t *testing.T) {
	store := setupTestStore(t)
	jobs := store.JobStore()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, jobs.Insert(ctx, &domain.Job{
		ID:          "job-1",
		Kind:        domain.JobKindEmbedding,
		Status:      domain.JobPending,
		MaxAttempts: 3,
		RunAt:       now.Add(-time.Minute),
		CreatedAt:   now,
	}))

	claimed, err := jobs.ClaimNext(ctx, now)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	require.NoError(t, jobs.MarkCompleted(ctx, "job-1"))

	got, err := jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, got.Status)
	assert.Empty(t, got.LastError)
}

func processingPtr(s domain.ProcessingStatus) *domain.ProcessingStatus { return &s }
func embeddingPtr(s domain.EmbeddingStatus) *domain.EmbeddingStatus   { return &s }
