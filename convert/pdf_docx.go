package convert

import (
	"context"
	"fmt"
	"strings"
)

// pdfToDocxStrategy converts via LibreOffice when present, otherwise
// rebuilds a plain document from the extracted text layer. The rebuild loses
// layout but preserves content, which matches what callers of this pair
// mostly want: editable text.
func (e *Engine) pdfToDocxStrategy() *Strategy {
	return &Strategy{
		Name: "pdf->docx",
		Techniques: []Technique{
			{
				Name:  "soffice-convert",
				Needs: []Capability{CapSoffice},
				Run: func(ctx context.Context, job *Job) (any, error) {
					produced, err := e.runSofficeConvert(ctx, "docx", job.InputPath, job.WorkDir)
					if err != nil {
						return nil, err
					}
					if err := copyFile(produced, job.OutputPath); err != nil {
						return nil, err
					}
					return job.OutputPath, nil
				},
			},
			{Name: "text-rebuild", Run: e.runDocxTextRebuild},
		},
	}
}

func (e *Engine) runDocxTextRebuild(ctx context.Context, job *Job) (any, error) {
	pages, err := extractPDFText(job.InputPath)
	if err != nil {
		return nil, err
	}

	var paragraphs []string
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				paragraphs = append(paragraphs, s)
			}
		}
	}
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("no extractable text in document")
	}

	if err := writeDocx(job.OutputPath, paragraphs); err != nil {
		return nil, err
	}
	return &Outcome{
		Path:     job.OutputPath,
		Warnings: []string{"rebuilt from the text layer; original layout and images were not preserved"},
	}, nil
}
