//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"fmt"
)

// ONNXEmbedder stub type when built without CGO (see onnx.go for the real
// implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder reports the model as unavailable when built without CGO.
func NewONNXEmbedder(_ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, fmt.Errorf("%w: ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime", ErrModelUnavailable)
}

// Embed always reports the model as unavailable.
func (e *ONNXEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, ErrModelUnavailable
}

// EmbedBatch always reports the model as unavailable.
func (e *ONNXEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, ErrModelUnavailable
}

// Dimensions returns 0 for the stub.
func (e *ONNXEmbedder) Dimensions() int { return 0 }

// Close is a no-op for the stub.
func (e *ONNXEmbedder) Close() error { return nil }
