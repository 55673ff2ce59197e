// Package server provides the HTTP API for the naitei service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/campushq/naitei/internal/certificate"
	"github.com/campushq/naitei/internal/chat"
	"github.com/campushq/naitei/internal/config"
	"github.com/campushq/naitei/internal/jobs"
	"github.com/campushq/naitei/internal/similarity"
	"github.com/campushq/naitei/internal/storage"
)

const version = "1.0.0"

// Server is the HTTP server for the naitei API.
type Server struct {
	sim     *similarity.Service
	catalog *jobs.Catalog
	chat    *chat.Service
	certs   *certificate.Generator
	storage storage.Storage
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	sim *similarity.Service,
	catalog *jobs.Catalog,
	chatSvc *chat.Service,
	certs *certificate.Generator,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		sim:     sim,
		catalog: catalog,
		chat:    chatSvc,
		certs:   certs,
		storage: store,
		config:  cfg,
		logger:  logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api/ai", func(r chi.Router) {
		r.Post("/embeddings", s.handleEmbedding)
		r.Post("/embeddings/batch", s.handleBatchEmbedding)
		r.Post("/embeddings/store", s.handleStoreEmbeddings)

		r.Post("/chat", s.handleChat)
		r.Post("/chat/history", s.handleChatHistory)

		r.Get("/recommendations/{studentID}", s.handleGetRecommendations)
		r.Post("/recommendations", s.handleRecommendations)
		r.Post("/similar-jobs", s.handleSimilarJobs)

		r.Post("/resume-parse", s.handleResumeParse)
		r.Post("/resume-parse/upload", s.handleResumeUpload)

		r.Post("/generate-certificate", s.handleGenerateCertificate)
	})
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)

	// Generated certificates and QR images.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(s.config.Storage.UploadPath))))

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
