package convert

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDFText pulls the embedded text layer out of each page. Pages
// without extractable text come back as empty strings; scanned PDFs yield a
// slice of empties.
func extractPDFText(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single damaged page should not sink the whole document.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// pdfHasTextLayer reports whether any page carries meaningful embedded text.
func pdfHasTextLayer(path string) (bool, error) {
	pages, err := extractPDFText(path)
	if err != nil {
		return false, err
	}
	for _, p := range pages {
		if len(strings.TrimSpace(p)) > 0 {
			return true, nil
		}
	}
	return false, nil
}
