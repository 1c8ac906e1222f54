package convert

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfToSearchableStrategy guarantees the output PDF has a text layer.
// Ordering: a document that is already searchable is copied through; scanned
// documents are OCRed page by page; when no OCR stack exists, an explanatory
// cover page is prepended so the caller still gets a usable artifact with the
// limitation spelled out.
func (e *Engine) pdfToSearchableStrategy() *Strategy {
	return &Strategy{
		Name: "pdf->searchable_pdf",
		Techniques: []Technique{
			{Name: "text-layer-copy", Run: e.runTextLayerCopy},
			{
				Name:  "ocr-overlay",
				Needs: []Capability{CapRasterizer, CapTesseract},
				Run:   e.runOCROverlay,
			},
			{Name: "notice-merge", Run: e.runSearchableNotice},
		},
	}
}

func (e *Engine) runTextLayerCopy(ctx context.Context, job *Job) (any, error) {
	hasText, err := pdfHasTextLayer(job.InputPath)
	if err != nil {
		return nil, err
	}
	if !hasText {
		return nil, fmt.Errorf("document has no embedded text layer")
	}
	if err := copyFile(job.InputPath, job.OutputPath); err != nil {
		return nil, err
	}
	return &Outcome{
		Path:     job.OutputPath,
		Warnings: []string{"document already contains a text layer; copied unchanged"},
	}, nil
}

func (e *Engine) runOCROverlay(ctx context.Context, job *Job) (any, error) {
	pages, err := e.rasterize(ctx, job.InputPath, filepath.Join(job.WorkDir, "ocr"), "png", e.cfg.OCRDPI)
	if err != nil {
		return nil, err
	}

	pagePDFs := make([]string, 0, len(pages))
	for i, page := range pages {
		outBase := filepath.Join(job.WorkDir, fmt.Sprintf("ocr-page-%d", i+1))
		produced, err := e.runTesseractPDF(ctx, page, outBase)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pagePDFs = append(pagePDFs, produced)
	}

	if len(pagePDFs) == 1 {
		if err := copyFile(pagePDFs[0], job.OutputPath); err != nil {
			return nil, err
		}
		return job.OutputPath, nil
	}
	if err := api.MergeCreateFile(pagePDFs, job.OutputPath, false, nil); err != nil {
		return nil, fmt.Errorf("merge ocr pages: %w", err)
	}
	return job.OutputPath, nil
}

// runSearchableNotice is the terminal fallback: it cannot add a text layer,
// so it prepends a cover page stating why and returns the original content
// behind it.
func (e *Engine) runSearchableNotice(ctx context.Context, job *Job) (any, error) {
	notice := filepath.Join(job.WorkDir, "notice.pdf")
	body := "Searchable PDF conversion notice\n\n" +
		"The document could not be made searchable on this server:\n" +
		"no OCR engine (tesseract) or PDF rasterizer was found.\n\n" +
		"The pages that follow are the original document, unchanged.\n\n" +
		"Source file: " + job.OriginalFilename
	if _, err := e.writeTextPDF(notice, body); err != nil {
		return nil, err
	}
	if err := api.MergeCreateFile([]string{notice, job.InputPath}, job.OutputPath, false, nil); err != nil {
		return nil, fmt.Errorf("merge notice: %w", err)
	}
	return &Outcome{
		Path:     job.OutputPath,
		Warnings: []string{"OCR unavailable; returned original pages behind an explanatory cover page"},
	}, nil
}
