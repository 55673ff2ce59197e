package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/naitei/internal/models"
	"github.com/campushq/naitei/internal/storage"
)

// Retriever supplies knowledge context for a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]*models.Source, error)
}

// Response is one answered chat turn.
type Response struct {
	Response    string           `json:"response"`
	Sources     []*models.Source `json:"sources"`
	Suggestions []string         `json:"suggestions"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Service answers questions and records the conversation.
type Service struct {
	retriever Retriever
	generator Generator
	fallback  Generator
	store     storage.Storage
	logger    *zap.Logger
}

// NewService creates a chat service. When the primary generator fails, the
// offline template generator answers instead so chat stays available.
func NewService(retriever Retriever, generator Generator, store storage.Storage, logger *zap.Logger) *Service {
	return &Service{
		retriever: retriever,
		generator: generator,
		fallback:  NewTemplateGenerator(),
		store:     store,
		logger:    logger,
	}
}

// Respond answers one message. Retrieval failures degrade to an answer
// without sources rather than an error.
func (s *Service) Respond(ctx context.Context, userID, message string, profile *models.StudentProfile) (*Response, error) {
	if message == "" {
		return nil, fmt.Errorf("message is empty")
	}

	sources, err := s.retriever.Retrieve(ctx, message, 3)
	if err != nil {
		s.logger.Warn("knowledge retrieval failed", zap.Error(err))
		sources = nil
	}

	prompt := Prompt{Message: message, Profile: profile, Sources: sources}
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("generator failed, using template fallback",
			zap.String("provider", s.generator.Name()), zap.Error(err))
		text, err = s.fallback.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generating response: %w", err)
		}
	}

	now := time.Now().UTC()
	if userID != "" {
		msg := &models.ChatMessage{
			ID:        uuid.New().String(),
			UserID:    userID,
			Message:   message,
			Response:  text,
			CreatedAt: now,
		}
		if err := s.store.AppendChatMessage(ctx, msg); err != nil {
			s.logger.Warn("storing chat message failed", zap.Error(err))
		}
	}

	if sources == nil {
		sources = []*models.Source{}
	}
	return &Response{
		Response:    text,
		Sources:     sources,
		Suggestions: Suggestions(message),
		Timestamp:   now,
	}, nil
}

// History returns the user's most recent exchanges, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.ListChatHistory(ctx, userID, limit)
}

// Provider names the active generator.
func (s *Service) Provider() string {
	return s.generator.Name()
}
