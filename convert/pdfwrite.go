package convert

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfFontSize   = 11.0
	pdfLineHeight = 6.0
	pdfMarginMM   = 20.0
)

// docFont is the font a generated PDF will use: a registered UTF-8 system
// font when the probe found one, otherwise the built-in Helvetica with text
// reduced to its Latin-1 subset.
type docFont struct {
	Family  string
	Unicode bool
}

// setupFont registers the probed CJK-capable font on doc, or falls back to
// the built-in core font.
func (e *Engine) setupFont(doc *gofpdf.Fpdf) docFont {
	if path, ok := e.caps.Path(CapUnicodeFont); ok {
		doc.AddUTF8Font("unicode", "", path)
		if !doc.Err() {
			return docFont{Family: "unicode", Unicode: true}
		}
		doc.ClearError()
		e.logger.Warn("failed to register unicode font, using core font", "path", path)
	}
	return docFont{Family: "Helvetica"}
}

// renderText prepares a string for the chosen font. Core fonts only cover
// Latin-1, so anything outside it becomes '?' rather than corrupting the
// content stream.
func (f docFont) renderText(s string) string {
	if f.Unicode {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x100 {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// writeTextPDF lays body out as wrapped paragraphs on A4 pages at path.
// Returns warnings for anything lossy (missing CJK font).
func (e *Engine) writeTextPDF(path, body string) ([]string, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pdfMarginMM, pdfMarginMM, pdfMarginMM)
	doc.SetAutoPageBreak(true, pdfMarginMM)

	font := e.setupFont(doc)
	var warnings []string
	if !font.Unicode && containsNonLatin1(body) {
		warnings = append(warnings, "no CJK-capable font found; non-Latin characters were replaced")
	}

	doc.SetFont(font.Family, "", pdfFontSize)
	doc.AddPage()

	pageW, _ := doc.GetPageSize()
	textW := pageW - 2*pdfMarginMM
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			doc.Ln(pdfLineHeight)
			continue
		}
		doc.MultiCell(textW, pdfLineHeight, font.renderText(line), "", "L", false)
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return warnings, nil
}

func containsNonLatin1(s string) bool {
	for _, r := range s {
		if r >= 0x100 {
			return true
		}
	}
	return false
}

// imagesToPDF composes the given image files into one PDF, one page per
// image, each page sized to the image at the given DPI so nothing is
// scaled or cropped.
func imagesToPDF(path string, images []string, dpi int) error {
	if len(images) == 0 {
		return fmt.Errorf("no images to compose")
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	for _, img := range images {
		w, h, err := imageDimensions(img)
		if err != nil {
			return err
		}
		wMM := float64(w) * 25.4 / float64(dpi)
		hMM := float64(h) * 25.4 / float64(dpi)

		orient := "P"
		if wMM > hMM {
			orient = "L"
		}
		doc.AddPageFormat(orient, gofpdf.SizeType{Wd: wMM, Ht: hMM})
		doc.ImageOptions(img, 0, 0, wMM, hMM, false,
			gofpdf.ImageOptions{ReadDpi: false}, 0, "")
	}
	if err := doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("compose pdf: %w", err)
	}
	return nil
}

func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("inspect %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
