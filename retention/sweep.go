package retention

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Sweeper periodically deletes expired job directories and their metadata
// rows. Job files live under <dir>/<job_id>/, so expiry removes whole
// subdirectories by modification time.
type Sweeper struct {
	store    *Store
	dirs     []string
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper over the given directories.
func NewSweeper(store *Store, dirs []string, maxAge, interval time.Duration, logger *slog.Logger) *Sweeper {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, dirs: dirs, maxAge: maxAge, interval: interval, logger: logger}
}

// Run launches the periodic sweep. Blocks until ctx.Done(). One sweep runs
// immediately so a restart does not postpone cleanup by a full interval.
func (sw *Sweeper) Run(ctx context.Context) {
	sw.SweepOnce(ctx)

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sw.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs a single expiry pass and returns how many directories
// were removed.
func (sw *Sweeper) SweepOnce(ctx context.Context) int {
	cutoff := time.Now().Add(-sw.maxAge)

	removed := 0
	for _, dir := range sw.dirs {
		removed += sw.sweepDir(dir, cutoff)
	}

	rows, err := sw.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		sw.logger.Error("retention: metadata sweep failed", "error", err)
	}

	if removed > 0 || rows > 0 {
		sw.logger.Info("retention: sweep complete",
			"dirs_removed", removed, "rows_removed", rows, "cutoff", cutoff)
	}
	return removed
}

func (sw *Sweeper) sweepDir(dir string, cutoff time.Time) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			sw.logger.Warn("retention: cannot list directory", "dir", dir, "error", err)
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			sw.logger.Warn("retention: removal failed", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed
}
