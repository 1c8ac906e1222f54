package convert

import (
	"context"
	"path/filepath"
)

// imageToPDFStrategy wraps a single raster image in a PDF page sized to the
// image. gofpdf handles jpg and png natively and needs no external tooling;
// LibreOffice is kept as a second opinion for files gofpdf rejects.
func (e *Engine) imageToPDFStrategy() *Strategy {
	return &Strategy{
		Name: "image->pdf",
		Techniques: []Technique{
			{Name: "page-compose", Run: e.runImageCompose},
			{
				Name:  "soffice-convert",
				Needs: []Capability{CapSoffice},
				Run: func(ctx context.Context, job *Job) (any, error) {
					produced, err := e.runSofficeConvert(ctx, "pdf", job.InputPath, job.WorkDir)
					if err != nil {
						return nil, err
					}
					if err := copyFile(produced, job.OutputPath); err != nil {
						return nil, err
					}
					return job.OutputPath, nil
				},
			},
		},
	}
}

// runImageCompose resamples the image by 0.8×quality below the top level and
// sizes the page at BaseDPI×quality, so lower quality yields fewer pixels on
// a larger apparent page.
func (e *Engine) runImageCompose(ctx context.Context, job *Job) (any, error) {
	embedPath := job.InputPath
	if job.Quality < QualityHigh {
		img, err := loadImage(job.InputPath)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		factor := 0.8 * float64(job.Quality)
		scaled := scaleImage(img, int(float64(b.Dx())*factor), int(float64(b.Dy())*factor))

		embedPath = filepath.Join(job.WorkDir, "resampled.png")
		if err := saveImage(embedPath, scaled); err != nil {
			return nil, err
		}
	}

	dpi := e.dpiFor(e.cfg.BaseDPI, job.Quality)
	if err := imagesToPDF(job.OutputPath, []string{embedPath}, dpi); err != nil {
		return nil, err
	}
	return job.OutputPath, nil
}
