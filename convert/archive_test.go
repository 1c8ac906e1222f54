package convert

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestBundleZip_StoresBaseNames(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "nested", "page-1.png")
	if err := os.MkdirAll(filepath.Dir(a), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(a, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}
	b := filepath.Join(dir, "page-2.png")
	if err := os.WriteFile(b, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}

	zipPath := filepath.Join(dir, "pages.zip")
	if err := bundleZip(zipPath, []string{a, b}); err != nil {
		t.Fatal(err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if len(r.File) != 2 {
		t.Fatalf("bundle has %d entries, want 2", len(r.File))
	}
	wantContent := map[string]string{"page-1.png": "first", "page-2.png": "second"}
	for _, f := range r.File {
		want, ok := wantContent[f.Name]
		if !ok {
			t.Fatalf("unexpected entry %q (directories must be stripped)", f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Fatalf("entry %q = %q, want %q", f.Name, got, want)
		}
	}
}

func TestBundleZip_MissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	err := bundleZip(filepath.Join(dir, "out.zip"), []string{filepath.Join(dir, "absent.png")})
	if err == nil {
		t.Fatal("expected error for missing bundle entry")
	}
}

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		path, ext, want string
	}{
		{"/tmp/out.png", "zip", "/tmp/out.zip"},
		{"/tmp/doc.scan.png", "pdf", "/tmp/doc.scan.pdf"},
		{"/tmp/noext", "zip", "/tmp/noext.zip"},
	}
	for _, tt := range tests {
		if got := replaceExt(tt.path, tt.ext); got != tt.want {
			t.Fatalf("replaceExt(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestCopyFile_CreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "deep", "nested", "dst.txt")
	if err := copyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Fatalf("copied content = %q", got)
	}
}

func TestDpiFor_ScalesWithQuality(t *testing.T) {
	e := testEngine(t, nil)

	prev := 0
	for q := QualityLow; q <= QualityHigh; q++ {
		dpi := e.dpiFor(e.cfg.BaseDPI, q)
		if dpi <= prev {
			t.Fatalf("dpi at quality %d = %d, not above %d", q, dpi, prev)
		}
		prev = dpi
	}
	if got := e.dpiFor(e.cfg.ScanDPI, QualityMedium); got != 300 {
		t.Fatalf("scan dpi at medium = %d, want 300", got)
	}
}

func TestCollectPages_NumericOrder(t *testing.T) {
	dir := t.TempDir()
	// Lexical order would put page-10 before page-2.
	for _, name := range []string{"page-10.png", "page-2.png", "page-1.png", "other.png", "page-3.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	pages, err := collectPages(dir, "page-", "png")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"page-1.png", "page-2.png", "page-10.png"}
	if len(pages) != len(want) {
		t.Fatalf("collected %d pages, want %d: %v", len(pages), len(want), pages)
	}
	for i, p := range pages {
		if filepath.Base(p) != want[i] {
			t.Fatalf("page %d = %s, want %s", i, filepath.Base(p), want[i])
		}
	}
}

func TestCollectPages_EmptyDirErrors(t *testing.T) {
	if _, err := collectPages(t.TempDir(), "page-", "png"); err == nil {
		t.Fatal("expected error when no pages were produced")
	}
}
