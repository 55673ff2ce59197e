package certificate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/campushq/naitei/internal/models"
	"github.com/campushq/naitei/internal/storage"
)

func newTestGenerator(t *testing.T) (*Generator, storage.Storage, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	uploads := filepath.Join(dir, "uploads")
	g := NewGenerator(store, uploads, "http://localhost:3000/verify-certificate", 200, zap.NewNop())
	return g, store, uploads
}

func TestGenerator_Generate(t *testing.T) {
	g, store, uploads := newTestGenerator(t)

	cert := &models.Certificate{
		ID:          "cert-1",
		StudentName: "Asha Kumar",
		JobTitle:    "Software Intern",
		Company:     "Acme",
		Feedback: models.SupervisorFeedback{
			Rating:             4.5,
			Feedback:           "Strong contributor.",
			SkillsDemonstrated: []string{"go", "sql"},
		},
		IssuedAt:         "2026-06-01",
		ValidUntil:       "2028-06-01",
		VerificationCode: "verify-123",
	}
	if err := g.Generate(context.Background(), cert); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if cert.PDFPath != filepath.Join(uploads, "certificate_cert-1.pdf") {
		t.Errorf("pdf path = %q", cert.PDFPath)
	}
	for _, path := range []string{cert.PDFPath, cert.QRPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", path)
		}
	}

	stored, err := store.GetCertificate(context.Background(), "cert-1")
	if err != nil {
		t.Fatalf("GetCertificate: %v", err)
	}
	if stored.StudentName != "Asha Kumar" || stored.VerificationCode != "verify-123" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestGenerator_FillsIDs(t *testing.T) {
	g, _, _ := newTestGenerator(t)
	cert := &models.Certificate{StudentName: "Ravi", JobTitle: "Intern", Company: "Globex"}
	if err := g.Generate(context.Background(), cert); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if cert.ID == "" || cert.VerificationCode == "" {
		t.Errorf("ids not filled: %+v", cert)
	}
}

func TestGenerator_RequiresStudentName(t *testing.T) {
	g, _, _ := newTestGenerator(t)
	if err := g.Generate(context.Background(), &models.Certificate{}); err == nil {
		t.Fatal("expected error for missing student name")
	}
}
