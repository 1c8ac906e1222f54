package convert

import (
	"context"
	"math/rand"
	"path/filepath"
)

// pdfToScannableStrategy re-renders the document through a simulated
// scanner: each page is rasterized, degraded (grayscale, blur, noise) and
// recomposed into a new image-only PDF. At the highest quality level the
// pages stay clean color renders.
func (e *Engine) pdfToScannableStrategy() *Strategy {
	return &Strategy{
		Name: "pdf->scannable_pdf",
		Techniques: []Technique{
			{
				Name:  "raster-degrade",
				Needs: []Capability{CapRasterizer},
				Run:   e.runScanSimulation,
			},
		},
	}
}

func (e *Engine) runScanSimulation(ctx context.Context, job *Job) (any, error) {
	dpi := e.dpiFor(e.cfg.ScanDPI, job.Quality)
	pages, err := e.rasterize(ctx, job.InputPath, filepath.Join(job.WorkDir, "scan"), "png", dpi)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(int64(len(pages))*7919 + int64(dpi)))
	processed := make([]string, 0, len(pages))
	for _, page := range pages {
		img, err := loadImage(page)
		if err != nil {
			return nil, err
		}
		out := replaceExt(page, "scan.png")
		if err := saveImage(out, simulateScan(img, job.Quality, rng)); err != nil {
			return nil, err
		}
		processed = append(processed, out)
	}

	if err := imagesToPDF(job.OutputPath, processed, dpi); err != nil {
		return nil, err
	}
	return job.OutputPath, nil
}
