package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/domain"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driving"
	"github.com/uancamilo/asistentelegal-sub001/internal/logger"
)

const (
	// minQueryLen is the minimum query length in runes.
	minQueryLen = 3

	// defaultLimit applies when the caller gives no result limit.
	defaultLimit = 10

	// candidateFactor oversamples the chunk search so per-document
	// aggregation still fills the requested limit.
	candidateFactor = 5

	// snippetLen is the target snippet length in runes.
	snippetLen = 200
)

// SearchService answers semantic queries against published documents.
type SearchService struct {
	chunkStore driven.ChunkStore
	embedder   driven.EmbeddingService
}

var _ driving.SearchService = (*SearchService)(nil)

// NewSearchService creates the search service.
func NewSearchService(chunkStore driven.ChunkStore, embedder driven.EmbeddingService) *SearchService {
	return &SearchService{
		chunkStore: chunkStore,
		embedder:   embedder,
	}
}

// Search embeds the query, retrieves similar chunks and aggregates them
// to one result per document, keeping each document's best chunk.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLen {
		return nil, domain.ErrQueryTooShort
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Oversample so that documents with many strong chunks do not
	// crowd out the rest before aggregation.
	hits, err := s.chunkStore.SearchSimilar(ctx, vector, limit*candidateFactor, opts.MinScore)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	logger.Debug("Similarity search returned %d candidate chunks", len(hits))

	best := make(map[string]domain.ScoredChunk)
	for _, hit := range hits {
		cur, ok := best[hit.Chunk.DocumentID]
		if !ok || hit.Similarity > cur.Similarity {
			best[hit.Chunk.DocumentID] = hit
		}
	}

	terms := queryTerms(query)
	results := make([]domain.SearchResult, 0, len(best))
	for _, hit := range best {
		results = append(results, domain.SearchResult{
			DocumentID: hit.Chunk.DocumentID,
			Title:      hit.DocumentTitle,
			Score:      roundScore(hit.Similarity),
			Snippet:    buildSnippet(hit.Chunk.Content, terms),
			ChunkIndex: hit.Chunk.ChunkIndex,
			ArticleRef: hit.Chunk.ArticleRef,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// queryTerms extracts the lowercase terms used to focus snippets.
// Terms of one or two characters carry no signal and are dropped.
func queryTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

// buildSnippet picks the window of the chunk densest in query terms,
// snapped to word boundaries, with ellipses marking truncation.
func buildSnippet(content string, terms []string) string {
	runes := []rune(content)
	if len(runes) <= snippetLen {
		return content
	}

	lower := strings.ToLower(content)
	lowerRunes := []rune(lower)

	// Slide the window in half-snippet steps and score each position
	// by how many query terms it contains.
	bestStart, bestScore := 0, -1
	step := snippetLen / 2
	for start := 0; start < len(runes); start += step {
		end := start + snippetLen
		if end > len(lowerRunes) {
			end = len(lowerRunes)
		}
		window := string(lowerRunes[start:end])
		score := 0
		for _, term := range terms {
			if strings.Contains(window, term) {
				score++
			}
		}
		if score > bestScore {
			bestStart, bestScore = start, score
		}
		if end == len(lowerRunes) {
			break
		}
	}

	start := snapToWordStart(runes, bestStart)
	end := start + snippetLen
	if end >= len(runes) {
		end = len(runes)
	} else {
		end = snapToWordEnd(runes, end)
	}

	snippet := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

// snapToWordStart moves the index forward to the next word start,
// unless it already sits on one.
func snapToWordStart(runes []rune, i int) int {
	if i <= 0 {
		return 0
	}
	if unicode.IsSpace(runes[i-1]) {
		return i
	}
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}

// snapToWordEnd moves the index backward to the end of the last
// complete word before it.
func snapToWordEnd(runes []rune, i int) int {
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	if i == 0 {
		return len(runes)
	}
	return i
}

// roundScore rounds a similarity to 3 decimal places for presentation.
func roundScore(s float64) float64 {
	return math.Round(s*1000) / 1000
}
