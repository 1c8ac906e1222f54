package retention

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "metadata.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEntry(id string, created time.Time) *Entry {
	return &Entry{
		JobID:            id,
		OriginalFilename: "report.docx",
		OutputFilename:   "report.pdf",
		OutputPath:       "/data/results/" + id + "/report.pdf",
		InputFormat:      "docx",
		OutputFormat:     "pdf",
		SizeBytes:        1234,
		CreatedAt:        created,
	}
}

func TestOpenStore_AppliesPragmas(t *testing.T) {
	s := testStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatal(err)
	}
	if journalMode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", journalMode)
	}

	var busyTimeout int
	if err := s.db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Fatal(err)
	}
	if busyTimeout != 5000 {
		t.Fatalf("busy_timeout = %d, want 5000", busyTimeout)
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	created := time.Date(2026, 8, 26, 10, 30, 0, 123456000, time.UTC)
	want := testEntry("job-1", created)
	if err := s.Save(ctx, want); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.OriginalFilename != want.OriginalFilename ||
		got.OutputFilename != want.OutputFilename ||
		got.OutputPath != want.OutputPath ||
		got.InputFormat != want.InputFormat ||
		got.OutputFormat != want.OutputFormat ||
		got.SizeBytes != want.SizeBytes {
		t.Fatalf("loaded entry = %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestStore_SaveUpserts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now()

	first := testEntry("job-1", now)
	first.SizeBytes = 0
	if err := s.Save(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := testEntry("job-1", now)
	second.SizeBytes = 9999
	if err := s.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.SizeBytes != 9999 {
		t.Fatalf("SizeBytes = %d after re-save, want 9999", got.SizeBytes)
	}
}

func TestStore_LoadUnknownID(t *testing.T) {
	s := testStore(t)

	_, err := s.Load(context.Background(), "no-such-job")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteOlderThan(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := s.Save(ctx, testEntry("old-1", now.Add(-48*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, testEntry("old-2", now.Add(-25*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, testEntry("fresh", now.Add(-time.Hour))); err != nil {
		t.Fatal(err)
	}

	n, err := s.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("deleted %d rows, want 2", n)
	}

	if _, err := s.Load(ctx, "old-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old-1 still loadable: %v", err)
	}
	if _, err := s.Load(ctx, "fresh"); err != nil {
		t.Fatalf("fresh entry should survive: %v", err)
	}
}

func TestSweeper_SweepOnce(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now()

	uploads := t.TempDir()
	results := t.TempDir()

	mkJobDir := func(root, id string, age time.Duration) string {
		dir := filepath.Join(root, id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "file.pdf"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		stamp := now.Add(-age)
		if err := os.Chtimes(dir, stamp, stamp); err != nil {
			t.Fatal(err)
		}
		return dir
	}

	expiredUpload := mkJobDir(uploads, "expired", 30*time.Hour)
	expiredResult := mkJobDir(results, "expired", 30*time.Hour)
	freshUpload := mkJobDir(uploads, "fresh", time.Hour)

	if err := s.Save(ctx, testEntry("expired", now.Add(-30*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, testEntry("fresh", now.Add(-time.Hour))); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sw := NewSweeper(s, []string{uploads, results, filepath.Join(t.TempDir(), "missing")},
		24*time.Hour, time.Hour, logger)

	removed := sw.SweepOnce(ctx)
	if removed != 2 {
		t.Fatalf("removed %d directories, want 2", removed)
	}

	for _, gone := range []string{expiredUpload, expiredResult} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Fatalf("%s should have been removed", gone)
		}
	}
	if _, err := os.Stat(freshUpload); err != nil {
		t.Fatalf("fresh directory should survive: %v", err)
	}

	if _, err := s.Load(ctx, "expired"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired metadata should be gone, got %v", err)
	}
	if _, err := s.Load(ctx, "fresh"); err != nil {
		t.Fatalf("fresh metadata should survive: %v", err)
	}
}

func TestNewSweeper_Defaults(t *testing.T) {
	sw := NewSweeper(testStore(t), nil, 0, 0, nil)
	if sw.maxAge != 24*time.Hour {
		t.Fatalf("maxAge = %v", sw.maxAge)
	}
	if sw.interval != time.Hour {
		t.Fatalf("interval = %v", sw.interval)
	}
	if sw.logger == nil {
		t.Fatal("logger not defaulted")
	}
}
