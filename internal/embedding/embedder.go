// Package embedding provides text embedding via ONNX with a deterministic
// fallback, plus an LRU embedding cache.
package embedding

import (
	"context"
	"errors"
)

// ErrModelUnavailable is returned when the embedding model could not be loaded
// or a batch could not be encoded. Callers should treat it as retryable; it is
// never silently replaced with zero vectors.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// ErrEmptyText is returned when an input text is empty. Batches fail as a
// whole; no partial vectors are returned.
var ErrEmptyText = errors.New("text must not be empty")

// Embedder produces fixed-dimension vector embeddings for text. EmbedBatch
// returns one vector per input, in input order, or no vectors at all.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// validateBatch rejects empty batches and empty texts up front so a batch
// never partially encodes.
func validateBatch(texts []string) error {
	if len(texts) == 0 {
		return ErrEmptyText
	}
	for _, t := range texts {
		if t == "" {
			return ErrEmptyText
		}
	}
	return nil
}
