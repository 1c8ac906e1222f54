package convert

import (
	"strings"
	"testing"
)

func TestRenderMarkdownHTML_Blocks(t *testing.T) {
	md := `# Title

Intro paragraph with **bold** and *italic* and ` + "`code`" + `.

## Section

- first
- second

1. one
2. two

> quoted text

---

` + "```go" + `
x := <1>
` + "```" + `
`
	got := renderMarkdownHTML(md)

	wants := []string{
		"<h1>Title</h1>",
		"<h2>Section</h2>",
		"<strong>bold</strong>",
		"<em>italic</em>",
		"<code>code</code>",
		"<ul>",
		"<li>first</li>",
		"<ol>",
		"<li>one</li>",
		"<blockquote>",
		"<p>quoted text</p>",
		"<hr>",
		"<pre><code class=\"language-go\">",
		"x := &lt;1&gt;",
	}
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q:\n%s", w, got)
		}
	}
}

func TestRenderMarkdownHTML_Table(t *testing.T) {
	md := `| Name | Qty |
| ---- | --- |
| apples | 3 |
| pears | 5 |
`
	got := renderMarkdownHTML(md)
	for _, w := range []string{"<table>", "<th>Name</th>", "<th>Qty</th>", "<td>apples</td>", "<td>5</td>", "</table>"} {
		if !strings.Contains(got, w) {
			t.Errorf("table output missing %q:\n%s", w, got)
		}
	}
}

func TestRenderMarkdownHTML_LinksAndImages(t *testing.T) {
	got := renderMarkdownHTML("See [docs](https://example.com/a) and ![logo](img.png).")
	if !strings.Contains(got, `<a href="https://example.com/a">docs</a>`) {
		t.Errorf("link not rendered:\n%s", got)
	}
	if !strings.Contains(got, `<img src="img.png" alt="logo">`) {
		t.Errorf("image not rendered:\n%s", got)
	}
}

func TestRenderMarkdownHTML_EscapesRawHTML(t *testing.T) {
	got := renderMarkdownHTML("before <script>alert(1)</script> after")
	if strings.Contains(got, "<script>") {
		t.Fatalf("raw html passed through:\n%s", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Fatalf("raw html not escaped:\n%s", got)
	}
}

func TestRenderMarkdownHTML_CodeSpanStaysLiteral(t *testing.T) {
	got := renderMarkdownHTML("use `**not bold**` here")
	if strings.Contains(got, "<strong>") {
		t.Fatalf("markup inside code span was rendered:\n%s", got)
	}
}

func TestMarkdownToPlainText(t *testing.T) {
	md := "# Head\n\nText with **bold** and [link](http://x) and `code`.\n\n- item\n"
	got := markdownToPlainText(md)

	for _, banned := range []string{"#", "**", "](", "`"} {
		if strings.Contains(got, banned) {
			t.Errorf("plain text still contains %q:\n%s", banned, got)
		}
	}
	for _, want := range []string{"Head", "bold", "link", "code", "- item"} {
		if !strings.Contains(got, want) {
			t.Errorf("plain text missing %q:\n%s", want, got)
		}
	}
}

func TestBuildStyledHTML_Sanitizes(t *testing.T) {
	doc := buildStyledHTML(`<p>ok</p><script>alert(1)</script><table><tr><td>x</td></tr></table>`)
	if strings.Contains(doc, "<script>") {
		t.Fatal("script element survived sanitization")
	}
	if !strings.Contains(doc, "<p>ok</p>") {
		t.Fatal("benign markup was stripped")
	}
	if !strings.Contains(doc, "<td>x</td>") {
		t.Fatal("table markup was stripped")
	}
}
