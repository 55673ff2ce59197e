package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/campushq/naitei/internal/embedding"
	"github.com/campushq/naitei/internal/resume"
	"github.com/campushq/naitei/internal/storage"
	"github.com/campushq/naitei/internal/vector"
)

// errorEnvelope is the error body shape shared by all endpoints.
type errorEnvelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorEnvelope{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// statusFromError maps the service error kinds to HTTP statuses.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, embedding.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, embedding.ErrEmptyText),
		errors.Is(err, vector.ErrDimensionMismatch),
		errors.Is(err, resume.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	s.respondError(w, statusFromError(err), err.Error())
}
