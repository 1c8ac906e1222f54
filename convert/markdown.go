package convert

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// renderMarkdownHTML converts a Markdown document to an HTML fragment.
// Covers the constructs the service promises for .md inputs: ATX headings,
// fenced code blocks, unordered/ordered lists, blockquotes, pipe tables,
// horizontal rules and the inline span syntax. Raw HTML in the source is
// escaped, not passed through.
func renderMarkdownHTML(src string) string {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")

	var b strings.Builder
	var para []string
	inCode := false
	listDepth := "" // "", "ul" or "ol"
	inQuote := false

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		b.WriteString("<p>")
		b.WriteString(renderInline(strings.Join(para, " ")))
		b.WriteString("</p>\n")
		para = para[:0]
	}
	closeList := func() {
		if listDepth != "" {
			fmt.Fprintf(&b, "</%s>\n", listDepth)
			listDepth = ""
		}
	}
	closeQuote := func() {
		if inQuote {
			b.WriteString("</blockquote>\n")
			inQuote = false
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if inCode {
			if strings.HasPrefix(trimmed, "```") {
				b.WriteString("</code></pre>\n")
				inCode = false
				continue
			}
			b.WriteString(html.EscapeString(line))
			b.WriteByte('\n')
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "```"):
			flushPara()
			closeList()
			closeQuote()
			lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			if lang != "" {
				fmt.Fprintf(&b, "<pre><code class=%q>", "language-"+html.EscapeString(lang))
			} else {
				b.WriteString("<pre><code>")
			}
			inCode = true

		case trimmed == "":
			flushPara()
			closeList()
			closeQuote()

		case isHeading(trimmed):
			flushPara()
			closeList()
			closeQuote()
			level := 0
			for level < len(trimmed) && trimmed[level] == '#' {
				level++
			}
			text := strings.TrimSpace(trimmed[level:])
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", level, renderInline(text), level)

		case isRule(trimmed):
			flushPara()
			closeList()
			closeQuote()
			b.WriteString("<hr>\n")

		case strings.HasPrefix(trimmed, ">"):
			flushPara()
			closeList()
			if !inQuote {
				b.WriteString("<blockquote>\n")
				inQuote = true
			}
			text := strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))
			if text != "" {
				fmt.Fprintf(&b, "<p>%s</p>\n", renderInline(text))
			}

		case isTableRow(trimmed) && i+1 < len(lines) && isTableDivider(strings.TrimSpace(lines[i+1])):
			flushPara()
			closeList()
			closeQuote()
			i = renderTable(&b, lines, i)

		case bulletItem(trimmed) != "":
			flushPara()
			closeQuote()
			if listDepth != "ul" {
				closeList()
				b.WriteString("<ul>\n")
				listDepth = "ul"
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", renderInline(bulletItem(trimmed)))

		case orderedItem(trimmed) != "":
			flushPara()
			closeQuote()
			if listDepth != "ol" {
				closeList()
				b.WriteString("<ol>\n")
				listDepth = "ol"
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", renderInline(orderedItem(trimmed)))

		default:
			closeList()
			closeQuote()
			para = append(para, trimmed)
		}
	}

	if inCode {
		b.WriteString("</code></pre>\n")
	}
	flushPara()
	closeList()
	closeQuote()
	return b.String()
}

func isHeading(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	return n <= 6 && n < len(s) && s[n] == ' '
}

func isRule(s string) bool {
	if len(s) < 3 {
		return false
	}
	c := s[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != c && s[i] != ' ' {
			return false
		}
	}
	return strings.Count(s, string(c)) >= 3
}

func bulletItem(s string) string {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(s, marker) {
			return strings.TrimSpace(s[len(marker):])
		}
	}
	return ""
}

var orderedRe = regexp.MustCompile(`^(\d+)[.)]\s+(.*)$`)

func orderedItem(s string) string {
	m := orderedRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[2]
}

func isTableRow(s string) bool {
	return strings.HasPrefix(s, "|") && strings.Count(s, "|") >= 2
}

func isTableDivider(s string) bool {
	if !isTableRow(s) {
		return false
	}
	for _, cell := range splitTableRow(s) {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			return false
		}
		for _, r := range cell {
			if r != '-' && r != ':' {
				return false
			}
		}
	}
	return true
}

func splitTableRow(s string) []string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "|")
	s = strings.TrimSuffix(s, "|")
	return strings.Split(s, "|")
}

// renderTable emits a pipe table starting at lines[start] (the header row)
// and returns the index of the last consumed line.
func renderTable(b *strings.Builder, lines []string, start int) int {
	b.WriteString("<table>\n<thead>\n<tr>")
	for _, cell := range splitTableRow(lines[start]) {
		fmt.Fprintf(b, "<th>%s</th>", renderInline(strings.TrimSpace(cell)))
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")

	i := start + 2 // skip the divider
	for ; i < len(lines); i++ {
		row := strings.TrimSpace(lines[i])
		if !isTableRow(row) {
			break
		}
		b.WriteString("<tr>")
		for _, cell := range splitTableRow(row) {
			fmt.Fprintf(b, "<td>%s</td>", renderInline(strings.TrimSpace(cell)))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	return i - 1
}

var (
	inlineCodeRe   = regexp.MustCompile("`([^`]+)`")
	inlineBoldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	inlineItalicRe = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	inlineLinkRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	inlineImageRe  = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)`)
)

// renderInline escapes a span of text and applies code, image, link, bold
// and italic syntax. Code spans are handled first so markup inside them
// stays literal.
func renderInline(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range inlineCodeRe.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(renderEmphasis(s[last:m[0]]))
		fmt.Fprintf(&b, "<code>%s</code>", html.EscapeString(s[m[2]:m[3]]))
		last = m[1]
	}
	b.WriteString(renderEmphasis(s[last:]))
	return b.String()
}

func renderEmphasis(s string) string {
	s = html.EscapeString(s)
	s = inlineImageRe.ReplaceAllString(s, `<img src="$2" alt="$1">`)
	s = inlineLinkRe.ReplaceAllString(s, `<a href="$2">$1</a>`)
	s = inlineBoldRe.ReplaceAllStringFunc(s, func(m string) string {
		inner := strings.Trim(m, "*_")
		return "<strong>" + inner + "</strong>"
	})
	s = inlineItalicRe.ReplaceAllStringFunc(s, func(m string) string {
		inner := strings.Trim(m, "*_")
		return "<em>" + inner + "</em>"
	})
	return s
}
