// Package preview extracts bounded plain-text previews from document formats.
// The classifier fallback needs just enough text to label a file; nothing here
// reads a whole document when the cap is hit first.
package preview

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxPDFPages bounds how many pages are read from a PDF before giving up on
// finding more text. Cover pages are often image-only, so one page is not
// enough.
const maxPDFPages = 3

// Extract returns at most limit characters of plain text from a document
// file. Supported: .txt, .md, .html/.htm, .pdf.
func Extract(path string, limit int) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return extractText(path, limit)
	case ".md":
		return extractMarkdown(path, limit)
	case ".html", ".htm":
		return extractHTML(path, limit)
	case ".pdf":
		return extractPDF(path, limit)
	default:
		return "", fmt.Errorf("no preview extractor for %s", filepath.Ext(path))
	}
}

func extractText(path string, limit int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return truncate(collapseSpace(string(data)), limit), nil
}

func extractHTML(path string, limit int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}
	return truncate(collapseSpace(text), limit), nil
}

// collapseSpace folds runs of whitespace into single spaces so previews stay
// dense inside the character limit.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
