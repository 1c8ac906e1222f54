package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func TestRoute_SupportedPairs(t *testing.T) {
	e := testEngine(t, nil)

	tests := []struct {
		from, to string
	}{
		{"pdf", "docx"}, {"pdf", "xlsx"}, {"pdf", "pptx"},
		{"pdf", "jpg"}, {"pdf", "png"},
		{"pdf", "scannable_pdf"}, {"pdf", "scanned_pdf"}, {"pdf", "searchable_pdf"},
		{"pdf", "dwg"}, {"pdf", "dxf"}, {"pdf", "cad"},
		{"jpg", "pdf"}, {"jpeg", "pdf"}, {"png", "pdf"},
		{"docx", "pdf"}, {"doc", "pdf"},
		{"xlsx", "pdf"}, {"xls", "pdf"},
		{"pptx", "pdf"}, {"ppt", "pdf"},
		{"txt", "pdf"}, {"md", "pdf"},
		{"PDF", "DOCX"},       // case-insensitive
		{"markdown", "pdf"},   // alias
		{".txt", "pdf"},       // dotted token
	}
	for _, tt := range tests {
		if _, err := e.Route(tt.from, tt.to); err != nil {
			t.Errorf("Route(%q, %q): %v", tt.from, tt.to, err)
		}
	}
}

func TestRoute_UnsupportedPairs(t *testing.T) {
	e := testEngine(t, nil)

	tests := []struct{ from, to string }{
		{"pdf", "pdf"},
		{"docx", "xlsx"},
		{"txt", "docx"},
		{"dwg", "pdf"},
		{"xyz", "pdf"},
		{"pdf", ""},
	}
	for _, tt := range tests {
		_, err := e.Route(tt.from, tt.to)
		var notSupported *NotSupportedError
		if !errors.As(err, &notSupported) {
			t.Errorf("Route(%q, %q): expected NotSupportedError, got %v", tt.from, tt.to, err)
		}
	}
}

func TestUnderlyingExtension(t *testing.T) {
	tests := []struct{ in, want string }{
		{"docx", "docx"},
		{"jpg", "jpg"},
		{"jpeg", "jpg"},
		{"scannable_pdf", "pdf"},
		{"scanned_pdf", "pdf"},
		{"searchable_pdf", "pdf"},
		{"dwg", "zip"},
		{"dxf", "zip"},
		{"cad", "zip"},
	}
	for _, tt := range tests {
		if got := UnderlyingExtension(tt.in); got != tt.want {
			t.Errorf("UnderlyingExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvert_InvalidQuality(t *testing.T) {
	e := testEngine(t, nil)
	job := &Job{InputFormat: "txt", OutputFormat: "pdf", Quality: 9}
	if _, err := e.Convert(context.Background(), job); err == nil {
		t.Fatal("expected error for invalid quality")
	}
}

func TestConvert_TextToPDF(t *testing.T) {
	e := testEngine(t, nil) // no capabilities: the gofpdf path must carry it
	dir := t.TempDir()

	input := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(input, []byte("First line.\n\nSecond paragraph with more words.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	job := &Job{
		ID:               "txt-job",
		InputPath:        input,
		InputFormat:      "txt",
		OutputFormat:     "pdf",
		OutputPath:       filepath.Join(dir, "notes.pdf"),
		Quality:          QualityMedium,
		OriginalFilename: "notes.txt",
	}
	res, err := e.Convert(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if res.TechniqueUsed != "direct-typeset" {
		t.Fatalf("TechniqueUsed = %q, want direct-typeset", res.TechniqueUsed)
	}
	if res.OutputFormat != "pdf" {
		t.Fatalf("OutputFormat = %q", res.OutputFormat)
	}
	if err := api.ValidateFile(res.OutputPath, nil); err != nil {
		t.Fatalf("produced pdf does not validate: %v", err)
	}
}

func TestConvert_ChineseTextWithoutUnicodeFontWarns(t *testing.T) {
	e := testEngine(t, nil)
	dir := t.TempDir()

	input := filepath.Join(dir, "mixed.txt")
	if err := os.WriteFile(input, []byte("Report 报告\n统计数据 statistics\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	job := &Job{
		ID:           "cjk-job",
		InputPath:    input,
		InputFormat:  "txt",
		OutputFormat: "pdf",
		OutputPath:   filepath.Join(dir, "mixed.pdf"),
		Quality:      QualityLow,
	}
	res, err := e.Convert(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "CJK") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a CJK warning, got %v", res.Warnings)
	}
	if err := api.ValidateFile(res.OutputPath, nil); err != nil {
		t.Fatalf("produced pdf does not validate: %v", err)
	}
}

func TestConvert_MarkdownFallbackTypeset(t *testing.T) {
	e := testEngine(t, nil)
	dir := t.TempDir()

	input := filepath.Join(dir, "doc.md")
	md := "# Title\n\nSome *emphasis* and `code`.\n\n- one\n- two\n"
	if err := os.WriteFile(input, []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}

	job := &Job{
		ID:           "md-job",
		InputPath:    input,
		InputFormat:  "md",
		OutputFormat: "pdf",
		OutputPath:   filepath.Join(dir, "doc.pdf"),
		Quality:      QualityMedium,
	}
	res, err := e.Convert(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if res.TechniqueUsed != "plain-typeset" {
		t.Fatalf("TechniqueUsed = %q, want plain-typeset", res.TechniqueUsed)
	}
	if err := api.ValidateFile(res.OutputPath, nil); err != nil {
		t.Fatalf("produced pdf does not validate: %v", err)
	}
}

func TestSupportedConversions(t *testing.T) {
	e := testEngine(t, nil)
	conv := e.SupportedConversions()

	pdfTargets := conv["pdf"]
	if len(pdfTargets) != 11 {
		t.Fatalf("expected 11 pdf targets, got %d: %v", len(pdfTargets), pdfTargets)
	}
	for i := 1; i < len(pdfTargets); i++ {
		if pdfTargets[i-1] >= pdfTargets[i] {
			t.Fatalf("targets not sorted: %v", pdfTargets)
		}
	}
	if got := conv["txt"]; len(got) != 1 || got[0] != "pdf" {
		t.Fatalf("txt targets = %v", got)
	}
}

func TestFormats(t *testing.T) {
	e := testEngine(t, nil)
	formats := e.Formats()

	want := map[string]bool{
		"pdf": true, "jpg": true, "png": true,
		"docx": true, "doc": true, "xlsx": true, "xls": true,
		"pptx": true, "ppt": true, "txt": true, "md": true,
	}
	if len(formats) != len(want) {
		t.Fatalf("Formats() = %v", formats)
	}
	for _, f := range formats {
		if !want[f] {
			t.Fatalf("unexpected source format %q", f)
		}
	}
}
