package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campushq/naitei/internal/embedding"
	"github.com/campushq/naitei/internal/models"
	"github.com/campushq/naitei/internal/ranking"
	"github.com/campushq/naitei/internal/resume"
	"github.com/campushq/naitei/internal/storage"
)

// maxUploadBytes caps resume uploads.
const maxUploadBytes = 10 << 20

type embeddingRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type batchEmbeddingRequest struct {
	Texts []string `json:"texts"`
	Type  string   `json:"type"`
}

type storeEmbeddingsRequest struct {
	Texts  []string `json:"texts"`
	Kind   string   `json:"kind,omitempty"`
	RefIDs []string `json:"refIds,omitempty"`
}

func (s *Server) handleEmbedding(w http.ResponseWriter, r *http.Request) {
	var req embeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	embs, err := s.sim.Embed(r.Context(), []string{req.Text})
	if err != nil {
		s.logger.Error("embedding failed", zap.Error(err))
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"embeddings": embs[0],
		"dimension":  len(embs[0]),
		"type":       req.Type,
	})
}

func (s *Server) handleBatchEmbedding(w http.ResponseWriter, r *http.Request) {
	var req batchEmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	embs, err := s.sim.Embed(r.Context(), req.Texts)
	if err != nil {
		s.logger.Error("batch embedding failed", zap.Error(err))
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"embeddings": embs,
		"dimension":  s.sim.Dimensions(),
		"count":      len(embs),
	})
}

func (s *Server) handleStoreEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req storeEmbeddingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind != "" && len(req.RefIDs) != len(req.Texts) {
		s.respondError(w, http.StatusBadRequest, "refIds must match texts when kind is set")
		return
	}

	slots, err := s.sim.Store(r.Context(), req.Texts)
	if err != nil {
		s.logger.Error("storing embeddings failed", zap.Error(err))
		s.respondServiceError(w, err)
		return
	}

	if req.Kind != "" {
		refs := make([]storage.SlotRef, len(slots))
		for i, slot := range slots {
			refs[i] = storage.SlotRef{Slot: slot, Kind: req.Kind, RefID: req.RefIDs[i]}
		}
		if err := s.storage.RecordSlots(r.Context(), refs); err != nil {
			s.logger.Error("recording slots failed", zap.Error(err))
			s.respondServiceError(w, err)
			return
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Stored %d embeddings", len(slots)),
		"count":   len(slots),
		"slots":   slots,
	})
}

type chatRequest struct {
	Message     string                 `json:"message"`
	UserID      string                 `json:"userId,omitempty"`
	UserProfile *models.StudentProfile `json:"userProfile,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.respondError(w, http.StatusBadRequest, "message is required")
		return
	}
	resp, err := s.chat.Respond(r.Context(), req.UserID, req.Message, req.UserProfile)
	if err != nil {
		s.logger.Error("chat failed", zap.Error(err))
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type chatHistoryRequest struct {
	UserID string `json:"userId"`
	Limit  int    `json:"limit"`
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	var req chatHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "userId is required")
		return
	}
	messages, err := s.chat.History(r.Context(), req.UserID, s.clampLimit(req.Limit))
	if err != nil {
		s.logger.Error("chat history failed", zap.Error(err))
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

type recommendationRequest struct {
	StudentID   string                 `json:"studentId"`
	UserProfile *models.StudentProfile `json:"userProfile,omitempty"`
	Limit       int                    `json:"limit"`
	Filters     ranking.Filters        `json:"filters"`
}

func (s *Server) handleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	profile := &models.StudentProfile{ID: chi.URLParam(r, "studentID")}
	if skills := r.URL.Query().Get("skills"); skills != "" {
		for _, sk := range strings.Split(skills, ",") {
			if sk = strings.TrimSpace(sk); sk != "" {
				profile.Skills = append(profile.Skills, sk)
			}
		}
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	s.recommend(w, r, profile, limit, ranking.Filters{})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile := req.UserProfile
	if profile == nil {
		profile = &models.StudentProfile{ID: req.StudentID}
	} else if profile.ID == "" {
		profile.ID = req.StudentID
	}
	s.recommend(w, r, profile, req.Limit, req.Filters)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request, profile *models.StudentProfile, limit int, filters ranking.Filters) {
	recs, err := s.catalog.Recommend(r.Context(), profile, s.clampLimit(limit), filters)
	if err != nil {
		s.logger.Error("recommendations failed", zap.Error(err))
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
		"studentProfile":  profile,
		"totalCount":      len(recs),
	})
}

type similarJobsRequest struct {
	JobID string `json:"jobId"`
	Limit int    `json:"limit"`
}

func (s *Server) handleSimilarJobs(w http.ResponseWriter, r *http.Request) {
	var req similarJobsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.JobID == "" {
		s.respondError(w, http.StatusBadRequest, "jobId is required")
		return
	}
	reference, err := s.storage.GetJob(r.Context(), req.JobID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	similar, err := s.catalog.SimilarJobs(r.Context(), req.JobID, s.clampLimit(req.Limit))
	if err != nil {
		s.logger.Error("similar jobs failed", zap.Error(err))
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"referenceJob": reference,
		"similarJobs":  similar,
		"totalCount":   len(similar),
	})
}

type resumeParseRequest struct {
	ResumeURL string `json:"resumeUrl,omitempty"`
	Text      string `json:"text,omitempty"`
}

func (s *Server) handleResumeParse(w http.ResponseWriter, r *http.Request) {
	var req resumeParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := req.Text
	if text == "" {
		if req.ResumeURL == "" {
			s.respondError(w, http.StatusBadRequest, "text or resumeUrl is required")
			return
		}
		fetched, err := s.fetchResume(r, req.ResumeURL)
		if err != nil {
			s.logger.Error("fetching resume failed", zap.String("url", req.ResumeURL), zap.Error(err))
			s.respondServiceError(w, err)
			return
		}
		text = fetched
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    resume.Parse(text),
		"message": "Resume parsed successfully",
	})
}

func (s *Server) fetchResume(r *http.Request, url string) (string, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching resume: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching resume: status %d", resp.StatusCode)
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadBytes))
	if err != nil {
		return "", fmt.Errorf("reading resume: %w", err)
	}
	return resume.ExtractText(content, url)
}

func (s *Server) handleResumeUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "reading upload failed")
		return
	}
	text, err := resume.ExtractText(content, header.Filename)
	if err != nil {
		if errors.Is(err, resume.ErrUnsupportedType) {
			s.respondError(w, http.StatusBadRequest, "only PDF, DOC, DOCX, and TXT files are supported")
			return
		}
		s.logger.Error("extracting resume text failed", zap.String("filename", header.Filename), zap.Error(err))
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    resume.Parse(text),
		"message": "Resume parsed successfully",
	})
}

type certificateRequest struct {
	CertificateID      string                    `json:"certificateId"`
	StudentName        string                    `json:"studentName"`
	JobTitle           string                    `json:"jobTitle"`
	Company            string                    `json:"company"`
	SupervisorFeedback models.SupervisorFeedback `json:"supervisorFeedback"`
	IssuedAt           string                    `json:"issuedAt"`
	ValidUntil         string                    `json:"validUntil"`
	VerificationCode   string                    `json:"verificationCode"`
}

func (s *Server) handleGenerateCertificate(w http.ResponseWriter, r *http.Request) {
	var req certificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cert := &models.Certificate{
		ID:               req.CertificateID,
		StudentName:      req.StudentName,
		JobTitle:         req.JobTitle,
		Company:          req.Company,
		Feedback:         req.SupervisorFeedback,
		IssuedAt:         req.IssuedAt,
		ValidUntil:       req.ValidUntil,
		VerificationCode: req.VerificationCode,
	}
	if err := s.certs.Generate(r.Context(), cert); err != nil {
		if cert.StudentName == "" {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("certificate generation failed", zap.Error(err))
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"pdfUrl":        fmt.Sprintf("/uploads/certificate_%s.pdf", cert.ID),
		"qrCodeUrl":     fmt.Sprintf("/uploads/qr_%s.png", cert.ID),
		"certificateId": cert.ID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	embeddingStatus := "loaded"
	status := http.StatusOK
	if _, err := s.sim.Embed(r.Context(), []string{"health check"}); err != nil {
		if errors.Is(err, embedding.ErrModelUnavailable) {
			embeddingStatus = "not_loaded"
			status = http.StatusServiceUnavailable
		} else {
			s.logger.Error("health probe failed", zap.Error(err))
			embeddingStatus = "error"
			status = http.StatusServiceUnavailable
		}
	}

	jobCount, err := s.storage.CountJobs(r.Context())
	if err != nil {
		s.logger.Error("health: counting jobs failed", zap.Error(err))
	}

	body := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"models": map[string]string{
			"embedding": embeddingStatus,
			"chat":      s.chat.Provider(),
		},
		"index": map[string]interface{}{
			"vectors":    s.sim.IndexSize(),
			"dimensions": s.sim.Dimensions(),
			"jobs":       jobCount,
		},
	}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}
	s.respondJSON(w, status, body)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Campus Placement AI Service",
		"version":   version,
		"status":    "running",
		"timestamp": time.Now().UTC(),
	})
}

// clampLimit applies the configured default and maximum to a requested limit.
func (s *Server) clampLimit(limit int) int {
	if limit <= 0 {
		return s.config.Search.DefaultLimit
	}
	if max := s.config.Search.MaxLimit; max > 0 && limit > max {
		return max
	}
	return limit
}
