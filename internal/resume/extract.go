// Package resume extracts text from uploaded resume files and parses it into
// structured fields.
package resume

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is wrapped into errors for file types the extractor
// cannot handle.
var ErrUnsupportedType = fmt.Errorf("unsupported file type")

// wtTag matches <w:t>text</w:t> including attribute-carrying variants like
// <w:t xml:space="preserve">.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// ExtractText extracts plain text from resume bytes based on the filename
// extension. PDF and DOCX are supported; .txt passes through.
func ExtractText(content []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(content)
	case ".docx", ".doc":
		return extractDOCX(content)
	case ".txt":
		return string(content), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filename))
	}
}

func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 0; i < numPages; i++ {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i+1, err)
		}
		buf.WriteString(text)
		if i < numPages-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}

// extractDOCX reads word/document.xml out of the OOXML zip and joins all
// <w:t> text nodes. Run and paragraph attributes are ignored so real-world
// documents extract cleanly.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("extract DOCX: open %s: %w", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return "", fmt.Errorf("extract DOCX: read %s: %w", f.Name, err)
		}
		_ = rc.Close()
		docXML = buf.Bytes()
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("extract DOCX: word/document.xml not found")
	}

	// One output line per <w:p> paragraph so the section parser sees the
	// same line structure the document had.
	var b strings.Builder
	for _, para := range strings.Split(string(docXML), "</w:p>") {
		parts := wtTag.FindAllStringSubmatch(para, -1)
		if len(parts) == 0 {
			continue
		}
		for _, p := range parts {
			b.WriteString(p[1])
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}
