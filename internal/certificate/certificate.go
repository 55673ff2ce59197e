// Package certificate renders internship completion certificates as PDF with
// an embedded verification QR code.
package certificate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/campushq/naitei/internal/models"
	"github.com/campushq/naitei/internal/storage"
)

// Generator writes certificate PDFs and QR images under the upload directory
// and records each issued certificate.
type Generator struct {
	store           storage.Storage
	uploadPath      string
	verificationURL string
	qrSize          int
	logger          *zap.Logger
}

// NewGenerator creates a certificate generator. verificationURL is the base
// the QR code points at; the verification code is appended as a path segment.
func NewGenerator(store storage.Storage, uploadPath, verificationURL string, qrSize int, logger *zap.Logger) *Generator {
	if qrSize <= 0 {
		qrSize = 200
	}
	return &Generator{
		store:           store,
		uploadPath:      uploadPath,
		verificationURL: strings.TrimSuffix(verificationURL, "/"),
		qrSize:          qrSize,
		logger:          logger,
	}
}

// Generate renders the certificate, writes both files, and stores the record.
// Missing ids and verification codes are filled in.
func (g *Generator) Generate(ctx context.Context, cert *models.Certificate) error {
	if cert.StudentName == "" {
		return fmt.Errorf("student name is required")
	}
	if cert.ID == "" {
		cert.ID = uuid.New().String()
	}
	if cert.VerificationCode == "" {
		cert.VerificationCode = uuid.New().String()
	}

	if err := os.MkdirAll(g.uploadPath, 0o755); err != nil {
		return fmt.Errorf("creating upload dir: %w", err)
	}

	qrPath := filepath.Join(g.uploadPath, fmt.Sprintf("qr_%s.png", cert.ID))
	verifyURL := fmt.Sprintf("%s/%s", g.verificationURL, cert.VerificationCode)
	if err := qrcode.WriteFile(verifyURL, qrcode.Low, g.qrSize, qrPath); err != nil {
		return fmt.Errorf("writing qr code: %w", err)
	}

	pdfPath := filepath.Join(g.uploadPath, fmt.Sprintf("certificate_%s.pdf", cert.ID))
	if err := g.writePDF(cert, qrPath, pdfPath); err != nil {
		return fmt.Errorf("writing certificate pdf: %w", err)
	}

	cert.PDFPath = pdfPath
	cert.QRPath = qrPath
	if err := g.store.CreateCertificate(ctx, cert); err != nil {
		return fmt.Errorf("storing certificate: %w", err)
	}
	g.logger.Info("generated certificate",
		zap.String("certificateId", cert.ID), zap.String("student", cert.StudentName))
	return nil
}

func (g *Generator) writePDF(cert *models.Certificate, qrPath, pdfPath string) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 20, "CERTIFICATE OF COMPLETION", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 14)
	line := func(text string) {
		pdf.CellFormat(0, 8, text, "", 1, "C", false, 0, "")
	}
	line("This is to certify that")
	pdf.SetFont("Helvetica", "B", 14)
	line(cert.StudentName)
	pdf.SetFont("Helvetica", "", 14)
	line("has successfully completed the internship as")
	pdf.SetFont("Helvetica", "B", 14)
	line(fmt.Sprintf("%s at %s", cert.JobTitle, cert.Company))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	left := func(text string) {
		pdf.CellFormat(0, 6, text, "", 1, "L", false, 0, "")
	}
	left("Supervisor Feedback:")
	left(fmt.Sprintf("Rating: %.1f/5", cert.Feedback.Rating))
	if cert.Feedback.Feedback != "" {
		pdf.MultiCell(0, 6, "Feedback: "+cert.Feedback.Feedback, "", "L", false)
	}
	if len(cert.Feedback.SkillsDemonstrated) > 0 {
		left("Skills Demonstrated: " + strings.Join(cert.Feedback.SkillsDemonstrated, ", "))
	}
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 14)
	line("Issued on: " + cert.IssuedAt)
	line("Valid until: " + cert.ValidUntil)
	pdf.Ln(6)
	line("Certificate ID: " + cert.ID)
	line("Verification Code: " + cert.VerificationCode)

	// QR in the bottom-right corner.
	pageW, pageH := pdf.GetPageSize()
	pdf.ImageOptions(qrPath, pageW-45, pageH-45, 30, 30, false,
		fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	return pdf.OutputFileAndClose(pdfPath)
}
