package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uancamilo/asistentelegal-sub001/internal/adapters/driven/embedding"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, title, summary, source_url, full_text, status,
	processing_status, embedding_status, embedding_error, embedding, created_at, updated_at`

// Save stores or updates a document.
func (s *documentStore) Save(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if doc.Status == "" {
		doc.Status = domain.PublicationDraft
	}
	if doc.ProcessingStatus == "" {
		doc.ProcessingStatus = domain.ProcessingPending
	}
	if doc.EmbeddingStatus == "" {
		doc.EmbeddingStatus = domain.EmbeddingPending
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, summary, source_url, full_text, status,
			processing_status, embedding_status, embedding_error, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			source_url = excluded.source_url,
			full_text = excluded.full_text,
			status = excluded.status,
			processing_status = excluded.processing_status,
			embedding_status = excluded.embedding_status,
			embedding_error = excluded.embedding_error,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, doc.Summary, nullString(doc.SourceURL), doc.FullText,
		string(doc.Status), string(doc.ProcessingStatus), string(doc.EmbeddingStatus),
		doc.EmbeddingError, embedding.ToBytes(doc.Embedding), doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// FindByID retrieves a document by ID.
func (s *documentStore) FindByID(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// Update applies a partial field patch to a document.
// Nil patch fields leave the stored value untouched.
func (s *documentStore) Update(ctx context.Context, id string, patch domain.DocumentPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if patch.FullText != nil {
		sets = append(sets, "full_text = ?")
		args = append(args, *patch.FullText)
	}
	if patch.ProcessingStatus != nil {
		sets = append(sets, "processing_status = ?")
		args = append(args, string(*patch.ProcessingStatus))
	}
	if patch.EmbeddingStatus != nil {
		sets = append(sets, "embedding_status = ?")
		args = append(args, string(*patch.EmbeddingStatus))
	}
	if patch.EmbeddingError != nil {
		sets = append(sets, "embedding_error = ?")
		args = append(args, *patch.EmbeddingError)
	} else if patch.ClearEmbeddingError {
		sets = append(sets, "embedding_error = NULL")
	}
	if patch.Embedding != nil {
		sets = append(sets, "embedding = ?")
		args = append(args, embedding.ToBytes(patch.Embedding))
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.SourceURL != nil {
		sets = append(sets, "source_url = ?")
		args = append(args, nullString(*patch.SourceURL))
	}

	args = append(args, id)
	query := "UPDATE documents SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	res, err := s.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListStuck returns documents left in a "processing" stage since before
// the cutoff, for the reconciliation sweep.
func (s *documentStore) ListStuck(ctx context.Context, cutoff time.Time) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE (processing_status = ? OR embedding_status = ?) AND updated_at < ?
	`, string(domain.ProcessingInProgress), string(domain.EmbeddingInProgress), cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying stuck documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// scanDocument scans one document row via the given Scan function.
func scanDocument(scan func(dest ...any) error) (*domain.Document, error) {
	var doc domain.Document
	var sourceURL, fullText, embeddingError sql.NullString
	var status, processingStatus, embeddingStatus string
	var embeddingBlob []byte

	if err := scan(&doc.ID, &doc.Title, &doc.Summary, &sourceURL, &fullText, &status,
		&processingStatus, &embeddingStatus, &embeddingError, &embeddingBlob,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}

	doc.SourceURL = sourceURL.String
	if fullText.Valid {
		doc.FullText = &fullText.String
	}
	if embeddingError.Valid {
		doc.EmbeddingError = &embeddingError.String
	}
	doc.Status = domain.PublicationStatus(status)
	doc.ProcessingStatus = domain.ProcessingStatus(processingStatus)
	doc.EmbeddingStatus = domain.EmbeddingStatus(embeddingStatus)
	doc.Embedding = embedding.FromBytes(embeddingBlob)

	return &doc, nil
}
