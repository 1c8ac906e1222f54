package convert

import (
	"context"
	"fmt"
	"path/filepath"
)

// pdfToImageStrategy renders every page to the requested image format.
// Single-page documents produce the image directly; multi-page documents are
// bundled into a zip so the caller still gets exactly one artifact.
func (e *Engine) pdfToImageStrategy(format string) *Strategy {
	return &Strategy{
		Name: "pdf->" + format,
		Techniques: []Technique{
			{
				Name:  "pdftoppm-pages",
				Needs: []Capability{CapPdftoppm},
				Run: func(ctx context.Context, job *Job) (any, error) {
					return e.pagesToImages(ctx, job, format, func(ctx context.Context, dir string, dpi int) ([]string, error) {
						bin, _ := e.caps.Path(CapPdftoppm)
						return e.runPdftoppm(ctx, bin, job.InputPath, dir, format, dpi)
					})
				},
			},
			{
				Name:  "mutool-pages",
				Needs: []Capability{CapMutool},
				Run: func(ctx context.Context, job *Job) (any, error) {
					return e.pagesToImages(ctx, job, format, func(ctx context.Context, dir string, dpi int) ([]string, error) {
						bin, _ := e.caps.Path(CapMutool)
						return e.runMutool(ctx, bin, job.InputPath, dir, format, dpi)
					})
				},
			},
		},
	}
}

type pageRenderFunc func(ctx context.Context, dir string, dpi int) ([]string, error)

func (e *Engine) pagesToImages(ctx context.Context, job *Job, format string, render pageRenderFunc) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ExternalTimeout)
	defer cancel()

	dir := filepath.Join(job.WorkDir, "pages")
	pages, err := render(ctx, dir, e.dpiFor(e.cfg.BaseDPI, job.Quality))
	if err != nil {
		return nil, err
	}

	if len(pages) == 1 {
		if err := copyFile(pages[0], job.OutputPath); err != nil {
			return nil, err
		}
		return job.OutputPath, nil
	}

	zipPath := replaceExt(job.OutputPath, "zip")
	if err := bundleZip(zipPath, pages); err != nil {
		return nil, err
	}
	return &Outcome{
		Path: zipPath,
		Warnings: []string{
			fmt.Sprintf("document has %d pages; images delivered as a zip archive", len(pages)),
		},
	}, nil
}
