// Package retention persists per-job metadata and enforces the service's
// short retention window: uploads, results and metadata older than the
// window are swept from disk and from the store.
package retention

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is the metadata row for one conversion job, keyed by the opaque file
// ID handed to the download endpoint.
type Entry struct {
	JobID            string    `json:"file_id"`
	OriginalFilename string    `json:"original_filename"`
	OutputFilename   string    `json:"output_filename"`
	OutputPath       string    `json:"output_path"`
	InputFormat      string    `json:"from_format"`
	OutputFormat     string    `json:"to_format"`
	SizeBytes        int64     `json:"file_size"`
	CreatedAt        time.Time `json:"created_at"`
}

// ErrNotFound is returned by Load for unknown or already-swept job IDs.
var ErrNotFound = errors.New("retention: entry not found")

// Store wraps the SQLite metadata database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the database at path and runs migrations.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Pragmas go through Exec: the modernc driver does not honor DSN-style
	// pragma parameters.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS jobs (
    job_id            TEXT PRIMARY KEY,
    original_filename TEXT NOT NULL,
    output_filename   TEXT NOT NULL,
    output_path       TEXT NOT NULL,
    input_format      TEXT NOT NULL,
    output_format     TEXT NOT NULL,
    size_bytes        INTEGER NOT NULL DEFAULT 0,
    created_at        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
`
	_, err := s.db.Exec(ddl)
	return err
}

// Save upserts the entry. Re-saving after conversion completes overwrites
// the upload-time row with the final artifact details.
func (s *Store) Save(ctx context.Context, e *Entry) error {
	_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO jobs
  (job_id, original_filename, output_filename, output_path, input_format, output_format, size_bytes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.JobID, e.OriginalFilename, e.OutputFilename, e.OutputPath,
		e.InputFormat, e.OutputFormat, e.SizeBytes,
		e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

// Load fetches the entry for jobID, or ErrNotFound.
func (s *Store) Load(ctx context.Context, jobID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT job_id, original_filename, output_filename, output_path, input_format, output_format, size_bytes, created_at
FROM jobs WHERE job_id = ?`, jobID)

	var e Entry
	var created string
	err := row.Scan(&e.JobID, &e.OriginalFilename, &e.OutputFilename, &e.OutputPath,
		&e.InputFormat, &e.OutputFormat, &e.SizeBytes, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}
	e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &e, nil
}

// DeleteOlderThan removes rows created before cutoff and reports how many
// went away.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("delete old entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
