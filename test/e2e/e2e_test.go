package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/campushq/naitei/internal/certificate"
	"github.com/campushq/naitei/internal/chat"
	"github.com/campushq/naitei/internal/config"
	"github.com/campushq/naitei/internal/embedding"
	"github.com/campushq/naitei/internal/jobs"
	"github.com/campushq/naitei/internal/knowledge"
	"github.com/campushq/naitei/internal/server"
	"github.com/campushq/naitei/internal/similarity"
	"github.com/campushq/naitei/internal/storage"
	"github.com/campushq/naitei/internal/vector"
)

const e2eDimensions = 32

const jobsYAML = `jobs:
  - id: job_1
    title: Software Developer Intern
    company: Tech Corp
    description: Full-stack development internship with React and Node.js
    required_skills: [javascript, react, node.js]
    location: Bangalore
    job_type: internship
  - id: job_2
    title: Frontend Developer
    company: Web Solutions
    description: Frontend development role focusing on React
    required_skills: [javascript, react, css, html]
    location: Delhi
    job_type: full-time
  - id: job_3
    title: Backend Developer
    company: API Corp
    description: Backend API development using Python and Django
    required_skills: [python, django, postgresql, aws]
    location: Hyderabad
    job_type: full-time
`

const knowledgeYAML = `knowledge:
  - id: resume_tips_1
    title: Resume Length and Formatting
    content: A good resume should be 1-2 pages long and highlight relevant skills.
    type: resume_tips
  - id: interview_prep_1
    title: Interview Preparation
    content: Prepare for interviews by researching the company and practicing questions.
    type: interview_prep
`

// buildService wires the full component graph the way the server binary does,
// seeds the datasets, and returns the HTTP handler.
func buildService(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()

	cfg := &config.Config{}
	cfg.Storage.DatabasePath = filepath.Join(dir, "naitei.db")
	cfg.Storage.VectorIndexPath = filepath.Join(dir, "vectors.bin")
	cfg.Storage.KeywordIndexPath = filepath.Join(dir, "keyword.bleve")
	cfg.Storage.UploadPath = filepath.Join(dir, "uploads")
	cfg.Search.DefaultLimit = 5
	cfg.Search.MaxLimit = 50
	cfg.Search.TopK = 20
	cfg.Certificate.VerificationBaseURL = "http://localhost:3000/verify-certificate"
	cfg.Certificate.QRSize = 200

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	index, err := vector.NewFlatIndex(e2eDimensions, cfg.Storage.VectorIndexPath)
	if err != nil {
		t.Fatal(err)
	}
	keywordIndex, err := knowledge.NewKeywordIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { keywordIndex.Close() })

	sim := similarity.NewService(embedding.NewHashEmbedder(e2eDimensions), index)
	catalog := jobs.NewCatalog(store, sim, cfg.Search.TopK, logger)
	retriever := knowledge.NewRetriever(store, sim, keywordIndex, cfg.Search.TopK, logger)
	chatSvc := chat.NewService(retriever, chat.NewTemplateGenerator(), store, logger)
	certs := certificate.NewGenerator(store, cfg.Storage.UploadPath,
		cfg.Certificate.VerificationBaseURL, cfg.Certificate.QRSize, logger)

	ctx := context.Background()
	jobsPath := filepath.Join(dir, "jobs.yaml")
	if err := os.WriteFile(jobsPath, []byte(jobsYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := jobs.LoadJobsFile(jobsPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := catalog.Seed(ctx, loaded); err != nil {
		t.Fatal(err)
	}

	knowledgePath := filepath.Join(dir, "knowledge.yaml")
	if err := os.WriteFile(knowledgePath, []byte(knowledgeYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err := knowledge.LoadKnowledgeFile(knowledgePath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := retriever.Seed(ctx, entries); err != nil {
		t.Fatal(err)
	}

	return server.NewServer(sim, catalog, chatSvc, certs, store, cfg, logger).Router()
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestE2E_PlacementFlow(t *testing.T) {
	h := buildService(t)

	// Health reports the seeded state.
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	var health struct {
		Status string `json:"status"`
		Index  struct {
			Vectors int   `json:"vectors"`
			Jobs    int64 `json:"jobs"`
		} `json:"index"`
	}
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "healthy" || health.Index.Jobs != 3 || health.Index.Vectors < 5 {
		t.Fatalf("health = %+v", health)
	}

	// Recommendations for a javascript/react student put the frontend roles
	// on top.
	w = post(t, h, "/api/ai/recommendations", map[string]interface{}{
		"studentId":   "student_1",
		"userProfile": map[string]interface{}{"skills": []string{"javascript", "react"}},
		"limit":       10,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("recommendations status = %d: %s", w.Code, w.Body.String())
	}
	var recs struct {
		Recommendations []struct {
			JobID    string  `json:"jobId"`
			FitScore float64 `json:"fitScore"`
		} `json:"recommendations"`
		TotalCount int `json:"totalCount"`
	}
	if err := json.NewDecoder(w.Body).Decode(&recs); err != nil {
		t.Fatal(err)
	}
	if recs.TotalCount != 3 {
		t.Fatalf("totalCount = %d", recs.TotalCount)
	}
	if top := recs.Recommendations[0]; top.JobID == "job_3" || top.FitScore < 50 {
		t.Errorf("top recommendation = %+v", top)
	}

	// Similar jobs for the internship exclude it and rank the other React
	// role above the Python role.
	w = post(t, h, "/api/ai/similar-jobs", map[string]interface{}{"jobId": "job_1", "limit": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("similar-jobs status = %d: %s", w.Code, w.Body.String())
	}
	var similar struct {
		SimilarJobs []struct {
			JobID string `json:"jobId"`
		} `json:"similarJobs"`
	}
	if err := json.NewDecoder(w.Body).Decode(&similar); err != nil {
		t.Fatal(err)
	}
	if len(similar.SimilarJobs) == 0 {
		t.Fatal("no similar jobs")
	}
	for _, sj := range similar.SimilarJobs {
		if sj.JobID == "job_1" {
			t.Error("reference job returned as similar")
		}
	}

	// Chat answers with knowledge context and records history.
	w = post(t, h, "/api/ai/chat", map[string]interface{}{
		"message": "how long should my resume be?",
		"userId":  "student_1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d: %s", w.Code, w.Body.String())
	}
	var chatResp struct {
		Response string `json:"response"`
		Sources  []struct {
			ID string `json:"id"`
		} `json:"sources"`
	}
	if err := json.NewDecoder(w.Body).Decode(&chatResp); err != nil {
		t.Fatal(err)
	}
	if chatResp.Response == "" || len(chatResp.Sources) == 0 {
		t.Fatalf("chat response = %+v", chatResp)
	}

	w = post(t, h, "/api/ai/chat/history", map[string]interface{}{"userId": "student_1"})
	var hist struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&hist); err != nil {
		t.Fatal(err)
	}
	if hist.Count != 1 {
		t.Errorf("history count = %d", hist.Count)
	}

	// Certificate generation produces a served PDF.
	w = post(t, h, "/api/ai/generate-certificate", map[string]interface{}{
		"studentName": "Asha Kumar",
		"jobTitle":    "Software Developer Intern",
		"company":     "Tech Corp",
		"supervisorFeedback": map[string]interface{}{
			"rating": 5, "feedback": "Outstanding intern",
		},
		"issuedAt":   "2026-06-01",
		"validUntil": "2028-06-01",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("certificate status = %d: %s", w.Code, w.Body.String())
	}
	var cert struct {
		PDFURL string `json:"pdfUrl"`
	}
	if err := json.NewDecoder(w.Body).Decode(&cert); err != nil {
		t.Fatal(err)
	}
	r = httptest.NewRequest(http.MethodGet, cert.PDFURL, nil)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r)
	if w2.Code != http.StatusOK || w2.Body.Len() == 0 {
		t.Errorf("fetching %s: status = %d, len = %d", cert.PDFURL, w2.Code, w2.Body.Len())
	}
}

func TestE2E_ResumeUpload(t *testing.T) {
	h := buildService(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "resume.txt")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("Summary: Frontend developer.\nProject: dashboard in React\njane@uni.edu"))
	_ = mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/api/ai/resume-parse/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Success bool `json:"success"`
		Data    struct {
			Skills  []string          `json:"skills"`
			Summary string            `json:"summary"`
			Contact map[string]string `json:"contact"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.Success || out.Data.Summary == "" {
		t.Fatalf("out = %+v", out)
	}
	if out.Data.Contact["email"] != "jane@uni.edu" {
		t.Errorf("contact = %v", out.Data.Contact)
	}
}
