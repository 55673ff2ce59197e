package embedding

import (
	"context"
	"errors"
	"fmt"
)

// UnavailableEmbedder stands in for an embedding model that failed to load.
// Every call reports ErrModelUnavailable carrying the load failure, so the
// condition surfaces to callers as retryable instead of being papered over
// with substitute vectors.
type UnavailableEmbedder struct {
	dimensions int
	loadErr    error
}

// NewUnavailableEmbedder records the load failure behind loadErr.
func NewUnavailableEmbedder(dimensions int, loadErr error) *UnavailableEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &UnavailableEmbedder{dimensions: dimensions, loadErr: loadErr}
}

// Embed always reports the model as unavailable.
func (e *UnavailableEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, e.unavailable()
}

// EmbedBatch always reports the model as unavailable.
func (e *UnavailableEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, e.unavailable()
}

// Dimensions returns the configured dimensions so the index can still be
// sized consistently.
func (e *UnavailableEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op.
func (e *UnavailableEmbedder) Close() error { return nil }

func (e *UnavailableEmbedder) unavailable() error {
	switch {
	case e.loadErr == nil:
		return ErrModelUnavailable
	case errors.Is(e.loadErr, ErrModelUnavailable):
		return e.loadErr
	default:
		return fmt.Errorf("%w: %v", ErrModelUnavailable, e.loadErr)
	}
}
