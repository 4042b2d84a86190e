package extract

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fumiama/go-docx"
)

// docx extracts paragraph text from a Word document. DOCX carries no
// page boundaries, so all text lands on page 1.
func (e *Extractor) docx(path string) *Document {
	doc := &Document{Filename: filepath.Base(path)}

	f, err := os.Open(path)
	if err != nil {
		e.log.Warn("docx open failed", "file", doc.Filename, "error", err)
		return doc
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		e.log.Warn("docx stat failed", "file", doc.Filename, "error", err)
		return doc
	}

	parsed, err := docx.Parse(f, info.Size())
	if err != nil {
		e.log.Warn("docx parse failed", "file", doc.Filename, "error", err)
		return doc
	}

	var buf strings.Builder
	for _, item := range parsed.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(text)
	}

	if buf.Len() > 0 {
		doc.Pages = []Page{{Number: 1, Text: buf.String()}}
	}
	return doc
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
