package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// pdfToCADStrategy is a deliberate stub. Vector CAD reconstruction needs
// dedicated commercial tooling, so the strategy packages the source PDF with
// a conversion-guidance note instead of pretending to produce DWG/DXF
// geometry.
func (e *Engine) pdfToCADStrategy(target string) *Strategy {
	return &Strategy{
		Name: "pdf->" + target,
		Techniques: []Technique{
			{
				Name: "guidance-bundle",
				Run: func(ctx context.Context, job *Job) (any, error) {
					return e.runCADBundle(ctx, job, target)
				},
			},
		},
	}
}

func (e *Engine) runCADBundle(ctx context.Context, job *Job, target string) (any, error) {
	upper := strings.ToUpper(target)
	notice := fmt.Sprintf(`PDF to %s conversion requires dedicated CAD software.

Suggested options:
1. Open the PDF directly in AutoCAD (PDFIMPORT).
2. Use a purpose-built converter such as pdf2cad.
3. Engage a CAD conversion service for complex drawings.

Source file: %s
Requested:   %s
`, upper, job.OriginalFilename, time.Now().Format("2006-01-02 15:04:05"))

	noticePath := filepath.Join(job.WorkDir, "conversion-notes.txt")
	if err := os.WriteFile(noticePath, []byte(notice), 0o644); err != nil {
		return nil, err
	}

	pdfCopy := filepath.Join(job.WorkDir, filepath.Base(job.InputPath))
	if pdfCopy == job.InputPath {
		pdfCopy = filepath.Join(job.WorkDir, "source-"+filepath.Base(job.InputPath))
	}
	if err := copyFile(job.InputPath, pdfCopy); err != nil {
		return nil, err
	}

	if err := bundleZip(job.OutputPath, []string{noticePath, pdfCopy}); err != nil {
		return nil, err
	}
	return &Outcome{
		Path: job.OutputPath,
		Warnings: []string{
			fmt.Sprintf("%s output requires dedicated CAD tooling; bundle contains the source PDF and guidance", upper),
		},
	}, nil
}
