package convert

import (
	"context"
	"fmt"

	"github.com/hazyhaar/convd/docread"
)

// officeToPDFStrategy exports Word/Excel/PowerPoint documents to PDF.
// Native Office automation gives the highest fidelity but only exists on
// Windows hosts; LibreOffice headless is the portable path; the last resort
// re-renders extracted text through the browser print pipeline, which keeps
// content but not layout (and cannot read the legacy binary formats).
func (e *Engine) officeToPDFStrategy(format string) *Strategy {
	app := officeAppFor(format)
	return &Strategy{
		Name: format + "->pdf",
		Techniques: []Technique{
			{
				Name:  "office-automation",
				Needs: []Capability{CapOfficeAutomation},
				Run: func(ctx context.Context, job *Job) (any, error) {
					if err := e.runOfficeAutomation(ctx, app, job.InputPath, job.OutputPath); err != nil {
						return nil, err
					}
					return job.OutputPath, nil
				},
			},
			{
				Name:  "soffice-headless",
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
			{
				Name:  "text-rerender",
				Needs: []Capability{CapBrowser},
				Run:   e.runOfficeTextRerender,
			},
		},
	}
}

func (e *Engine) runOfficeTextRerender(ctx context.Context, job *Job) (any, error) {
	doc, err := docread.Extract(job.InputPath)
	if err != nil {
		return nil, err
	}
	if len(doc.Lines) == 0 {
		return nil, fmt.Errorf("document has no extractable text")
	}

	html := buildStyledHTML(docread.HTMLFragment(doc))
	if err := e.printHTMLToPDF(ctx, html, job.WorkDir, job.OutputPath); err != nil {
		return nil, err
	}
	return &Outcome{
		Path:     job.OutputPath,
		Warnings: []string{"re-rendered from extracted text; original layout, images and styling were not preserved"},
	}, nil
}
