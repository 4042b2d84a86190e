package extract

import (
	"os/exec"
	"path/filepath"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// pdf extracts page-by-page with ledongthuc/pdf. A single corrupt page
// logs a warning and yields an empty page; only when the whole primary
// pass produces no text is pdftotext attempted.
func (e *Extractor) pdf(path string) *Document {
	doc := &Document{Filename: filepath.Base(path)}

	f, reader, err := pdflib.Open(path)
	if err != nil {
		e.log.Warn("pdf open failed", "file", doc.Filename, "error", err)
	} else {
		defer f.Close()
		numPages := reader.NumPage()
		for i := 1; i <= numPages; i++ {
			page := Page{Number: i}
			p := reader.Page(i)
			if !p.V.IsNull() {
				text, err := p.GetPlainText(nil)
				if err != nil {
					e.log.Warn("page extraction failed", "file", doc.Filename, "page", i, "error", err)
				} else {
					page.Text = text
				}
			}
			doc.Pages = append(doc.Pages, page)
		}
	}

	if doc.Empty() && e.fallbackPdftotext {
		if pages, ok := e.pdftotext(path); ok {
			doc.Pages = pages
		}
	}
	return doc
}

// pdftotext shells out to poppler's pdftotext and splits the output on
// form feeds, one page per segment.
func (e *Extractor) pdftotext(path string) ([]Page, bool) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		e.log.Warn("pdftotext fallback failed", "file", filepath.Base(path), "error", err)
		return nil, false
	}
	return SplitFormFeeds(string(out)), true
}

// SplitFormFeeds converts form-feed separated text into 1-indexed pages.
func SplitFormFeeds(text string) []Page {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var pages []Page
	for i, seg := range strings.Split(text, "\f") {
		pages = append(pages, Page{Number: i + 1, Text: strings.TrimSpace(seg)})
	}
	return pages
}
