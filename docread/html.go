package docread

import (
	"html"
	"strings"
)

// HTMLFragment renders extracted content as a printable HTML body fragment.
// Spreadsheet rows (tab-separated) become table rows; everything else
// becomes paragraphs.
func HTMLFragment(doc *Document) string {
	var b strings.Builder
	if doc.Format == FormatXlsx {
		b.WriteString("<table>\n")
		for _, line := range doc.Lines {
			b.WriteString("<tr>")
			for _, cell := range strings.Split(line, "\t") {
				b.WriteString("<td>")
				b.WriteString(html.EscapeString(cell))
				b.WriteString("</td>")
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</table>\n")
		return b.String()
	}

	for _, line := range doc.Lines {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>\n")
	}
	return b.String()
}
