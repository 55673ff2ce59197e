// Package similarity orchestrates the embedder and the vector index: embed a
// query, search the index, return ranked matches.
package similarity

import (
	"context"
	"fmt"

	"github.com/campushq/naitei/internal/embedding"
	"github.com/campushq/naitei/internal/vector"
)

// Service composes an Embedder and a FlatIndex.
type Service struct {
	embedder embedding.Embedder
	index    *vector.FlatIndex
}

// BatchResult is the outcome of one lookup in FindSimilarMany. Err is set when
// that text failed; other texts still produce matches.
type BatchResult struct {
	Text    string
	Matches []vector.Match
	Err     error
}

// NewService creates a similarity service. The embedder and index must agree
// on dimension; both derive it from the same config in practice, but every
// call still checks defensively.
func NewService(embedder embedding.Embedder, index *vector.FlatIndex) *Service {
	return &Service{embedder: embedder, index: index}
}

// FindSimilar embeds text and returns the top-k index matches. Errors from
// either step propagate unchanged so callers can branch on the error kind.
func (s *Service) FindSimilar(ctx context.Context, text string, k int) ([]vector.Match, error) {
	emb, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(emb) != s.index.Dimensions() {
		return nil, fmt.Errorf("%w: embedder produced %d dimensions, index expects %d",
			vector.ErrDimensionMismatch, len(emb), s.index.Dimensions())
	}
	return s.index.Search(emb, k)
}

// FindSimilarMany runs an independent lookup per text. Failures are per-item:
// one bad text does not abort the rest, because downstream ranking still needs
// the partial results.
func (s *Service) FindSimilarMany(ctx context.Context, texts []string, k int) []BatchResult {
	results := make([]BatchResult, len(texts))
	for i, text := range texts {
		matches, err := s.FindSimilar(ctx, text, k)
		results[i] = BatchResult{Text: text, Matches: matches, Err: err}
	}
	return results
}

// Store embeds texts and inserts the vectors, returning assigned slots in
// input order. Both steps are all-or-nothing.
func (s *Service) Store(ctx context.Context, texts []string) ([]int, error) {
	embs, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	return s.index.Insert(embs)
}

// Embed exposes the underlying embedder for callers that need raw vectors.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return s.embedder.EmbedBatch(ctx, texts)
}

// Dimensions returns the embedding dimension.
func (s *Service) Dimensions() int {
	return s.embedder.Dimensions()
}

// IndexSize returns the number of stored vectors.
func (s *Service) IndexSize() int {
	return s.index.Size()
}
