// Package chat answers student questions using retrieved knowledge context,
// an optional LLM provider, and stored conversation history.
package chat

import (
	"context"

	"github.com/campushq/naitei/internal/models"
)

// Prompt is the assembled input for one response generation.
type Prompt struct {
	Message string
	Profile *models.StudentProfile
	Sources []*models.Source
}

// Generator produces a response text for a prompt. Implementations are the
// OpenAI-backed generator and the offline template generator.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
	Name() string
}
