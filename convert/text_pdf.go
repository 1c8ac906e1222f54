package convert

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"
)

// textToPDFStrategy typesets a plain-text file. The browser pipeline gets
// full CJK font fallback through its stylesheet; the gofpdf path works with
// nothing installed at the cost of character coverage when no Unicode font
// was probed.
func (e *Engine) textToPDFStrategy() *Strategy {
	return &Strategy{
		Name: "txt->pdf",
		Techniques: []Technique{
			{
				Name:  "browser-print",
				Needs: []Capability{CapBrowser},
				Run:   e.runTextBrowserPrint,
			},
			{Name: "direct-typeset", Run: e.runTextTypeset},
		},
	}
}

// markdownToPDFStrategy renders Markdown structure (headings, code, tables,
// lists) through the browser; the fallback strips the syntax and typesets
// the remaining text.
func (e *Engine) markdownToPDFStrategy() *Strategy {
	return &Strategy{
		Name: "md->pdf",
		Techniques: []Technique{
			{
				Name:  "browser-print",
				Needs: []Capability{CapBrowser},
				Run:   e.runMarkdownBrowserPrint,
			},
			{Name: "plain-typeset", Run: e.runMarkdownTypeset},
		},
	}
}

func (e *Engine) readTextInput(job *Job) (string, []string, error) {
	raw, err := os.ReadFile(job.InputPath)
	if err != nil {
		return "", nil, err
	}
	text, encName, err := decodeText(raw)
	if err != nil {
		return "", nil, err
	}
	var warnings []string
	if encName == "latin-1" {
		warnings = append(warnings, "input encoding could not be identified; decoded as Latin-1")
	}
	return text, warnings, nil
}

func (e *Engine) runTextBrowserPrint(ctx context.Context, job *Job) (any, error) {
	text, warnings, err := e.readTextInput(job)
	if err != nil {
		return nil, err
	}

	var frag strings.Builder
	for _, para := range strings.Split(text, "\n") {
		frag.WriteString("<p>")
		frag.WriteString(html.EscapeString(para))
		frag.WriteString("</p>\n")
	}
	doc := buildStyledHTML(frag.String())
	if err := e.printHTMLToPDF(ctx, doc, job.WorkDir, job.OutputPath); err != nil {
		return nil, err
	}
	return &Outcome{Path: job.OutputPath, Warnings: warnings}, nil
}

func (e *Engine) runTextTypeset(ctx context.Context, job *Job) (any, error) {
	text, warnings, err := e.readTextInput(job)
	if err != nil {
		return nil, err
	}
	w, err := e.writeTextPDF(job.OutputPath, text)
	if err != nil {
		return nil, err
	}
	return &Outcome{Path: job.OutputPath, Warnings: append(warnings, w...)}, nil
}

func (e *Engine) runMarkdownBrowserPrint(ctx context.Context, job *Job) (any, error) {
	text, warnings, err := e.readTextInput(job)
	if err != nil {
		return nil, err
	}
	doc := buildStyledHTML(renderMarkdownHTML(text))
	if err := e.printHTMLToPDF(ctx, doc, job.WorkDir, job.OutputPath); err != nil {
		return nil, err
	}
	return &Outcome{Path: job.OutputPath, Warnings: warnings}, nil
}

func (e *Engine) runMarkdownTypeset(ctx context.Context, job *Job) (any, error) {
	text, warnings, err := e.readTextInput(job)
	if err != nil {
		return nil, err
	}
	plain := markdownToPlainText(text)
	if strings.TrimSpace(plain) == "" {
		return nil, fmt.Errorf("document is empty after stripping markup")
	}
	w, err := e.writeTextPDF(job.OutputPath, plain)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Path:     job.OutputPath,
		Warnings: append(append(warnings, w...), "browser renderer unavailable; markdown formatting was flattened"),
	}, nil
}

// markdownToPlainText strips block and inline syntax, keeping the readable
// text and code content.
func markdownToPlainText(src string) string {
	var b strings.Builder
	inCode := false
	for _, line := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			b.WriteString(line)
			b.WriteByte('\n')
			continue
		}
		switch {
		case isHeading(trimmed):
			b.WriteString(strings.TrimLeft(trimmed, "# "))
		case isRule(trimmed):
			// drop
		case strings.HasPrefix(trimmed, ">"):
			b.WriteString(strings.TrimSpace(strings.TrimPrefix(trimmed, ">")))
		case bulletItem(trimmed) != "":
			b.WriteString("- " + stripInline(bulletItem(trimmed)))
		case orderedItem(trimmed) != "":
			b.WriteString(stripInline(orderedItem(trimmed)))
		default:
			b.WriteString(stripInline(trimmed))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func stripInline(s string) string {
	s = inlineImageRe.ReplaceAllString(s, "$1")
	s = inlineLinkRe.ReplaceAllString(s, "$1")
	s = strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
	return s
}
