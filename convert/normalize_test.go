package convert

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNormalizeResult_Shapes(t *testing.T) {
	path := writeTempFile(t, "out.pdf", "%PDF-1.4\ncontent")

	tests := []struct {
		name string
		raw  any
	}{
		{"bare path", path},
		{"outcome pointer", &Outcome{Path: path}},
		{"outcome value", Outcome{Path: path}},
		{"record", map[string]any{"output_path": path}},
		{"nested record", map[string]any{"output_path": map[string]any{"output_path": path}}},
		{"record wrapping outcome", map[string]any{"output_path": &Outcome{Path: path}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeResult(tt.raw)
			if err != nil {
				t.Fatalf("NormalizeResult: %v", err)
			}
			if got != path {
				t.Fatalf("NormalizeResult = %q, want %q", got, path)
			}
		})
	}
}

func TestNormalizeResult_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"empty string", ""},
		{"int", 42},
		{"nil outcome", (*Outcome)(nil)},
		{"record without path", map[string]any{"path": "x"}},
		{"unresolvable nesting", map[string]any{"output_path": 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeResult(tt.raw)
			var malformed *MalformedResultError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedResultError, got %v", err)
			}
		})
	}
}

func TestNormalizeResult_DeepNestingCapped(t *testing.T) {
	raw := any("never-reached")
	for i := 0; i < maxUnwrapDepth+2; i++ {
		raw = map[string]any{"output_path": raw}
	}
	_, err := NormalizeResult(raw)
	var malformed *MalformedResultError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResultError for deep nesting, got %v", err)
	}
}

func TestNormalizeResult_ArtifactValidation(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.pdf")
	_, err := NormalizeResult(missing)
	var am *ArtifactMissingError
	if !errors.As(err, &am) || am.Empty {
		t.Fatalf("expected missing-artifact error, got %v", err)
	}

	empty := filepath.Join(dir, "empty.pdf")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = NormalizeResult(empty)
	if !errors.As(err, &am) || !am.Empty {
		t.Fatalf("expected empty-artifact error, got %v", err)
	}
}

func TestResultWarnings(t *testing.T) {
	if w := resultWarnings("path"); w != nil {
		t.Fatalf("bare path should carry no warnings, got %v", w)
	}
	out := &Outcome{Path: "p", Warnings: []string{"a", "b"}}
	if w := resultWarnings(out); len(w) != 2 {
		t.Fatalf("expected 2 warnings, got %v", w)
	}
}
