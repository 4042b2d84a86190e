package extract

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Document is the page-indexed text of one source file. Pages are
// 1-indexed; a page that failed extraction is present with empty text.
type Document struct {
	Filename string
	Pages    []Page
}

// Page holds one page's extracted text.
type Page struct {
	Number int
	Text   string
}

// Text concatenates all page text.
func (d *Document) Text() string {
	var buf strings.Builder
	for _, p := range d.Pages {
		if p.Text == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(p.Text)
	}
	return buf.String()
}

// Empty reports whether extraction produced no text at all.
func (d *Document) Empty() bool {
	for _, p := range d.Pages {
		if strings.TrimSpace(p.Text) != "" {
			return false
		}
	}
	return true
}

// Extractor turns local document files into page-indexed text.
type Extractor struct {
	log               *slog.Logger
	fallbackPdftotext bool
}

func New(log *slog.Logger, fallbackPdftotext bool) *Extractor {
	return &Extractor{log: log, fallbackPdftotext: fallbackPdftotext}
}

// File extracts text from a local document, dispatching on extension.
// Total extraction failure returns a document with zero pages and a nil
// error: failures never propagate past the per-document boundary.
func (e *Extractor) File(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return e.pdf(path), nil
	case ".docx":
		return e.docx(path), nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}
