package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/microcosm-cc/bluemonday"
)

// htmlPolicy is the sanitizer applied to every HTML fragment before it is
// handed to the browser. Fragments are built from user uploads, so anything
// beyond the document markup we generate ourselves gets stripped.
var htmlPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td", "hr")
	return p
}()

const documentCSS = `
body {
    font-family: 'Noto Sans CJK SC', 'Microsoft YaHei', 'SimSun', Arial, sans-serif;
    font-size: 12pt;
    line-height: 1.6;
    max-width: 800px;
    margin: 0 auto;
    padding: 20px;
}
h1, h2, h3, h4, h5, h6 { color: #333; margin-top: 20px; }
p { margin-bottom: 16px; }
code { background-color: #f5f5f5; border-radius: 3px; padding: 2px 5px; }
pre { background-color: #f5f5f5; border-radius: 3px; padding: 16px; overflow: auto; }
blockquote { border-left: 5px solid #ddd; padding-left: 15px; color: #555; }
table { border-collapse: collapse; width: 100%; }
table, th, td { border: 1px solid #ddd; }
th, td { padding: 8px; text-align: left; }
tr:nth-child(even) { background-color: #f2f2f2; }
@page { size: A4; margin: 2cm; }
`

// buildStyledHTML wraps a sanitized body fragment in a printable document
// with the CJK-aware stylesheet.
func buildStyledHTML(fragment string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>")
	b.WriteString(documentCSS)
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(htmlPolicy.Sanitize(fragment))
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// printHTMLToPDF renders an HTML document to a PDF at outputPath using a
// throwaway headless browser. The browser is launched per call; conversion
// volume does not justify keeping one warm.
func (e *Engine) printHTMLToPDF(ctx context.Context, htmlDoc, workDir, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ExternalTimeout)
	defer cancel()

	htmlPath := filepath.Join(workDir, "print.html")
	if err := os.WriteFile(htmlPath, []byte(htmlDoc), 0o644); err != nil {
		return err
	}
	defer os.Remove(htmlPath)

	bin, ok := e.caps.Path(CapBrowser)
	if !ok {
		return fmt.Errorf("no browser available")
	}

	l := launcher.New().Bin(bin).Headless(true)
	wsURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("browser launch: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(wsURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("browser connect: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + htmlPath})
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page load: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		return fmt.Errorf("print to pdf: %w", err)
	}
	pdfBytes, err := io.ReadAll(stream)
	if err != nil {
		return fmt.Errorf("read pdf stream: %w", err)
	}
	if len(pdfBytes) == 0 {
		return fmt.Errorf("browser produced an empty pdf")
	}
	return os.WriteFile(outputPath, pdfBytes, 0o644)
}
