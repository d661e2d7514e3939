package preview

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads plain text from the first few pages of a PDF. The reader
// panics on malformed xref tables, so the call is fenced with a recover and
// surfaced as a per-file error.
func extractPDF(path string, limit int) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panicked on %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	pages := reader.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // image-only or damaged page, try the next
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		if sb.Len() >= limit {
			break
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("no extractable text in first %d pages of %s", pages, path)
	}
	return truncate(collapseSpace(sb.String()), limit), nil
}
