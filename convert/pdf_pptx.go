package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// linesPerSlide caps how much extracted text lands on one fallback slide.
const linesPerSlide = 18

// pdfToPptxStrategy turns each page into a slide: a full-bleed page render
// when a rasterizer exists, otherwise text-only slides from the text layer.
func (e *Engine) pdfToPptxStrategy() *Strategy {
	return &Strategy{
		Name: "pdf->pptx",
		Techniques: []Technique{
			{
				Name:  "page-image-slides",
				Needs: []Capability{CapRasterizer},
				Run:   e.runImageSlides,
			},
			{Name: "text-slides", Run: e.runTextSlides},
		},
	}
}

func (e *Engine) runImageSlides(ctx context.Context, job *Job) (any, error) {
	pages, err := e.rasterize(ctx, job.InputPath, filepath.Join(job.WorkDir, "slides"), "png",
		e.dpiFor(e.cfg.BaseDPI, job.Quality))
	if err != nil {
		return nil, err
	}

	slides := make([]pptxSlide, len(pages))
	for i, page := range pages {
		slides[i] = pptxSlide{ImagePath: page}
	}
	if err := writePptx(job.OutputPath, slides); err != nil {
		return nil, err
	}
	return job.OutputPath, nil
}

func (e *Engine) runTextSlides(ctx context.Context, job *Job) (any, error) {
	pages, err := extractPDFText(job.InputPath)
	if err != nil {
		return nil, err
	}

	var slides []pptxSlide
	for _, page := range pages {
		var lines []string
		for _, line := range strings.Split(page, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				lines = append(lines, s)
			}
		}
		for len(lines) > linesPerSlide {
			slides = append(slides, pptxSlide{Lines: lines[:linesPerSlide]})
			lines = lines[linesPerSlide:]
		}
		if len(lines) > 0 {
			slides = append(slides, pptxSlide{Lines: lines})
		}
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("no extractable text in document")
	}

	if err := writePptx(job.OutputPath, slides); err != nil {
		return nil, err
	}
	return &Outcome{
		Path:     job.OutputPath,
		Warnings: []string{"no rasterizer available; slides carry extracted text only"},
	}, nil
}
