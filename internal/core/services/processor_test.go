package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uancamilo/asistentelegal-sub001/internal/adapters/driven/storage/memory"
	"github.com/uancamilo/asistentelegal-sub001/internal/chunker"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
)

// stubEmbedder returns deterministic vectors without a provider.
type stubEmbedder struct {
	embedErr error
	batchErr error
	calls    int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}
	return []float32{float32(len(text) % 7), 1, 0.5}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		vec, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int   { return 3 }
func (s *stubEmbedder) ModelName() string { return "stub-model" }

type stubFetcher struct {
	content *driven.SourceContent
	err     error
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) (*driven.SourceContent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.content, nil
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(_ context.Context, _ *driven.SourceContent) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type pipelineFixture struct {
	docStore   *memory.DocumentStore
	chunkStore *memory.ChunkStore
	queue      *memory.Queue
	embedder   *stubEmbedder
	fetcher    *stubFetcher
	extractor  *stubExtractor
	processor  *Processor
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	docStore := memory.NewDocumentStore()
	chunkStore := memory.NewChunkStore(docStore)
	queue := memory.NewQueue()
	embedder := &stubEmbedder{}
	fetcher := &stubFetcher{}
	extractor := &stubExtractor{}

	proc := NewProcessor(docStore, chunkStore, embedder, fetcher, extractor, queue, chunker.Options{
		TargetSize: 200, MinSize: 50, MaxSize: 300, Overlap: 20,
	})
	proc.Register()

	return &pipelineFixture{
		docStore:   docStore,
		chunkStore: chunkStore,
		queue:      queue,
		embedder:   embedder,
		fetcher:    fetcher,
		extractor:  extractor,
		processor:  proc,
	}
}

func (f *pipelineFixture) saveDoc(t *testing.T, doc domain.Document) {
	t.Helper()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
		doc.UpdatedAt = doc.CreatedAt
	}
	require.NoError(t, f.docStore.Save(context.Background(), &doc))
}

func TestProcessor_ExtractionSuccessChainsEmbedding(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.saveDoc(t, domain.Document{
		ID:               "doc-1",
		Title:            "Ley 100",
		SourceURL:        "https://example.com/ley100.pdf",
		ProcessingStatus: domain.ProcessingPending,
		EmbeddingStatus:  domain.EmbeddingPending,
	})
	f.fetcher.content = &driven.SourceContent{Data: []byte("%PDF-"), MediaType: "application/pdf"}
	f.extractor.text = "ARTÍCULO 1. El sistema de seguridad social integral tiene por objeto garantizar los derechos."

	job := domain.Job{Payload: domain.JobPayload{DocumentID: "doc-1", SourceURL: "https://example.com/ley100.pdf"}}
	require.NoError(t, f.processor.HandleExtraction(ctx, &job))

	doc, err := f.docStore.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProcessingCompleted, doc.ProcessingStatus)
	assert.Equal(t, domain.EmbeddingPending, doc.EmbeddingStatus)
	require.NotNil(t, doc.FullText)
	assert.Contains(t, *doc.FullText, "ARTÍCULO 1")

	enqueued := f.queue.Enqueued()
	require.Len(t, enqueued, 1)
	assert.Equal(t, domain.JobKindEmbedding, enqueued[0].Kind)
	assert.Equal(t, "doc-1", enqueued[0].Payload.DocumentID)
}

func TestProcessor_ExtractionFetchFailure(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.saveDoc(t, domain.Document{ID: "doc-1", Title: "Ley 100", SourceURL: "https://example.com/x.pdf"})
	f.fetcher.err = errors.New("context deadline exceeded")

	job := domain.Job{Payload: domain.JobPayload{DocumentID: "doc-1", SourceURL: "https://example.com/x.pdf"}}
	err := f.processor.HandleExtraction(ctx, &job)
	require.Error(t, err)

	doc, ferr := f.docStore.FindByID(ctx, "doc-1")
	require.NoError(t, ferr)
	assert.Equal(t, domain.ProcessingFailed, doc.ProcessingStatus)
	assert.Equal(t, domain.EmbeddingSkipped, doc.EmbeddingStatus)
	require.NotNil(t, doc.EmbeddingError)
	assert.Contains(t, *doc.EmbeddingError, "deadline exceeded")
	assert.Nil(t, doc.FullText)

	// Stage B must not run after a failed extraction.
	assert.Empty(t, f.queue.Enqueued())
}

func TestProcessor_ExtractionErrorTruncated(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.saveDoc(t, domain.Document{ID: "doc-1", Title: "Ley 100"})
	f.fetcher.err = errors.New(strings.Repeat("x", 2000))

	job := domain.Job{Payload: domain.JobPayload{DocumentID: "doc-1"}}
	require.Error(t, f.processor.HandleExtraction(ctx, &job))

	doc, err := f.docStore.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, doc.EmbeddingError)
	assert.LessOrEqual(t, len(*doc.EmbeddingError), maxErrorLen)
}

func TestProcessor_EmbeddingSuccess(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	text := strings.Repeat("La norma regula el procedimiento administrativo general aplicable. ", 20)
	f.saveDoc(t, domain.Document{
		ID:               "doc-1",
		Title:            "Decreto 1",
		Summary:          "Procedimiento administrativo",
		FullText:         &text,
		Status:           domain.PublicationPublished,
		ProcessingStatus: domain.ProcessingCompleted,
		EmbeddingStatus:  domain.EmbeddingPending,
	})

	job := domain.Job{Payload: domain.JobPayload{DocumentID: "doc-1"}}
	require.NoError(t, f.processor.HandleEmbedding(ctx, &job))

	doc, err := f.docStore.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingCompleted, doc.EmbeddingStatus)
	assert.Nil(t, doc.EmbeddingError)
	assert.NotEmpty(t, doc.Embedding)

	count, err := f.chunkStore.CountForDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Greater(t, count, 1)
}

func TestProcessor_EmbeddingReplaceIsIdempotent(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	text := strings.Repeat("Disposiciones sobre la contratación estatal y sus requisitos. ", 15)
	f.saveDoc(t, domain.Document{
		ID:       "doc-1",
		Title:    "Ley 80",
		FullText: &text,
	})

	job := domain.Job{Payload: domain.JobPayload{DocumentID: "doc-1"}}
	require.NoError(t, f.processor.HandleEmbedding(ctx, &job))
	first, err := f.chunkStore.CountForDocument(ctx, "doc-1")
	require.NoError(t, err)

	// A second run replaces, never appends.
	require.NoError(t, f.processor.HandleEmbedding(ctx, &job))
	second, err := f.chunkStore.CountForDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProcessor_EmbeddingProviderFailure(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	text := strings.Repeat("Texto legal suficientemente largo para generar fragmentos. ", 15)
	f.saveDoc(t, domain.Document{ID: "doc-1", Title: "Ley 80", FullText: &text})
	f.embedder.batchErr = domain.ErrEmbeddingFailed

	job := domain.Job{Payload: domain.JobPayload{DocumentID: "doc-1"}}
	err := f.processor.HandleEmbedding(ctx, &job)
	require.ErrorIs(t, err, domain.ErrEmbeddingFailed)

	doc, ferr := f.docStore.FindByID(ctx, "doc-1")
	require.NoError(t, ferr)
	assert.Equal(t, domain.EmbeddingFailed, doc.EmbeddingStatus)
	require.NotNil(t, doc.EmbeddingError)

	// The extracted text survives a failed embedding run.
	require.NotNil(t, doc.FullText)
	assert.Equal(t, text, *doc.FullText)
}

func TestProcessor_EmbeddingWithoutText(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.saveDoc(t, domain.Document{ID: "doc-1", Title: "Ley 80"})

	job := domain.Job{Payload: domain.JobPayload{DocumentID: "doc-1"}}
	err := f.processor.HandleEmbedding(ctx, &job)
	require.ErrorIs(t, err, domain.ErrEmptyExtraction)

	doc, ferr := f.docStore.FindByID(ctx, "doc-1")
	require.NoError(t, ferr)
	assert.Equal(t, domain.EmbeddingFailed, doc.EmbeddingStatus)
}

func TestProcessor_EmbeddingMissingDocument(t *testing.T) {
	f := newPipelineFixture(t)

	job := domain.Job{Payload: domain.JobPayload{DocumentID: "ghost"}}
	err := f.processor.HandleEmbedding(context.Background(), &job)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
