package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// dpiFor scales the base resolution by quality level. OCR rasterization
// ignores quality and always uses Config.OCRDPI.
func (e *Engine) dpiFor(base int, q Quality) int {
	return base * int(q)
}

// pageCount reads the page count without rasterizing anything.
func pageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return n, nil
}

// rasterize renders every page of pdfPath into dir as page-N images in the
// requested format ("png" or "jpg"), preferring pdftoppm and falling back to
// mutool. Returns the produced files sorted by page number.
func (e *Engine) rasterize(ctx context.Context, pdfPath, dir, format string, dpi int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ExternalTimeout)
	defer cancel()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	if bin, ok := e.caps.Path(CapPdftoppm); ok {
		files, err := e.runPdftoppm(ctx, bin, pdfPath, dir, format, dpi)
		if err == nil {
			return files, nil
		}
		e.logger.Warn("pdftoppm rasterization failed, trying mutool", "error", err)
	}
	if bin, ok := e.caps.Path(CapMutool); ok {
		return e.runMutool(ctx, bin, pdfPath, dir, format, dpi)
	}
	return nil, fmt.Errorf("no rasterizer available")
}

func (e *Engine) runPdftoppm(ctx context.Context, bin, pdfPath, dir, format string, dpi int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	flag := "-png"
	if format == "jpg" {
		flag = "-jpeg"
	}
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, bin,
		flag,
		"-r", strconv.Itoa(dpi),
		pdfPath,
		prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return collectPages(dir, "page-", format)
}

func (e *Engine) runMutool(ctx context.Context, bin, pdfPath, dir, format string, dpi int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// mutool names pages by the %d placeholder without a separator digit
	// count, so a distinct prefix keeps collection unambiguous.
	pattern := filepath.Join(dir, "mu-%d."+format)
	cmd := exec.CommandContext(ctx, bin,
		"draw",
		"-o", pattern,
		"-r", strconv.Itoa(dpi),
		pdfPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("mutool draw: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return collectPages(dir, "mu-", format)
}

// collectPages gathers prefix<N>.<format> files from dir sorted by page
// number. pdftoppm zero-pads page numbers so a lexical sort of the numeric
// part is not enough; parse and compare as integers.
func collectPages(dir, prefix, format string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type page struct {
		n    int
		path string
	}
	var pages []page
	suffix := "." + format
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		numPart := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
		n, err := strconv.Atoi(numPart)
		if err != nil {
			continue
		}
		pages = append(pages, page{n: n, path: filepath.Join(dir, name)})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("rasterizer produced no pages in %s", dir)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}
