package docread

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// writeZipFixture builds a minimal OOXML-shaped zip from part name → XML.
func writeZipFixture(t *testing.T, name string, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for partName, content := range parts {
		w, err := zw.Create(partName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract_Docx(t *testing.T) {
	path := writeZipFixture(t, "doc.docx", map[string]string{
		"word/document.xml": `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
    <w:p><w:r><w:t>left</w:t></w:r><w:r><w:tab/><w:t>right</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">  </w:t></w:r></w:p>
    <w:p><w:r><w:t>line one</w:t></w:r><w:r><w:br/><w:t>line two</w:t></w:r></w:p>
  </w:body>
</w:document>`,
	})

	doc, err := Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatDocx {
		t.Fatalf("Format = %q", doc.Format)
	}
	want := []string{"First paragraph", "left\tright", "line one line two"}
	if !reflect.DeepEqual(doc.Lines, want) {
		t.Fatalf("Lines = %q, want %q", doc.Lines, want)
	}
}

func TestExtract_Docx_MissingDocumentPart(t *testing.T) {
	path := writeZipFixture(t, "broken.docx", map[string]string{
		"[Content_Types].xml": `<Types/>`,
	})

	if _, err := Extract(path); err == nil {
		t.Fatal("expected error for archive without word/document.xml")
	}
}

func TestExtract_Xlsx_SharedStringsAndSheetOrder(t *testing.T) {
	path := writeZipFixture(t, "book.xlsx", map[string]string{
		"xl/sharedStrings.xml": `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="2" uniqueCount="2">
  <si><t>Name</t></si>
  <si><t>Total</t></si>
</sst>`,
		// Deliberately out of lexical order: sheet10 must come after sheet2.
		"xl/worksheets/sheet10.xml": `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData><row r="1"><c r="A1" t="s"><v>1</v></c><c r="B1"><v>99</v></c></row></sheetData>
</worksheet>`,
		"xl/worksheets/sheet2.xml": `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData><row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="inlineStr"><is><t>widget</t></is></c></row></sheetData>
</worksheet>`,
	})

	doc, err := Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Name\twidget", "Total\t99"}
	if !reflect.DeepEqual(doc.Lines, want) {
		t.Fatalf("Lines = %q, want %q", doc.Lines, want)
	}
}

func TestExtract_Xlsx_NoSharedStrings(t *testing.T) {
	path := writeZipFixture(t, "plain.xlsx", map[string]string{
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData><row r="1"><c r="A1"><v>3.14</v></c></row></sheetData>
</worksheet>`,
	})

	doc, err := Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Lines) != 1 || doc.Lines[0] != "3.14" {
		t.Fatalf("Lines = %q", doc.Lines)
	}
}

func TestExtract_Pptx_SlideOrder(t *testing.T) {
	path := writeZipFixture(t, "deck.pptx", map[string]string{
		"ppt/slides/slide2.xml": `<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>second slide</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`,
		"ppt/slides/slide1.xml": `<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>first </a:t></a:r><a:r><a:t>slide</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`,
	})

	doc, err := Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first slide", "second slide"}
	if !reflect.DeepEqual(doc.Lines, want) {
		t.Fatalf("Lines = %q, want %q", doc.Lines, want)
	}
}

func TestExtract_LegacyAndUnknownFormats(t *testing.T) {
	dir := t.TempDir()

	for _, ext := range []string{"doc", "xls", "ppt"} {
		path := filepath.Join(dir, "old."+ext)
		if err := os.WriteFile(path, []byte{0xD0, 0xCF, 0x11, 0xE0}, 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Extract(path)
		var legacy *LegacyFormatError
		if !errors.As(err, &legacy) {
			t.Fatalf("Extract(.%s) error = %v, want LegacyFormatError", ext, err)
		}
		if legacy.Ext != ext {
			t.Fatalf("LegacyFormatError.Ext = %q, want %q", legacy.Ext, ext)
		}
	}

	_, err := Extract(filepath.Join(dir, "notes.odt"))
	var unknown *UnknownFormatError
	if !errors.As(err, &unknown) {
		t.Fatalf("Extract(.odt) error = %v, want UnknownFormatError", err)
	}
}

func TestHTMLFragment(t *testing.T) {
	paragraphs := HTMLFragment(&Document{
		Format: FormatDocx,
		Lines:  []string{"plain", "a < b"},
	})
	if paragraphs != "<p>plain</p>\n<p>a &lt; b</p>\n" {
		t.Fatalf("paragraph fragment = %q", paragraphs)
	}

	table := HTMLFragment(&Document{
		Format: FormatXlsx,
		Lines:  []string{"Name\tTotal", "widget\t99"},
	})
	for _, want := range []string{"<table>", "<td>Name</td><td>Total</td>", "<td>widget</td><td>99</td>"} {
		if !strings.Contains(table, want) {
			t.Fatalf("table fragment missing %q:\n%s", want, table)
		}
	}
}
