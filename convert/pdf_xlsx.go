package convert

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// pdfToXlsxStrategy extracts tabular data into a workbook. Tabula detects
// real table structure when installed; the text-grid fallback splits the
// text layer on column gaps and is only approximate.
func (e *Engine) pdfToXlsxStrategy() *Strategy {
	return &Strategy{
		Name: "pdf->xlsx",
		Techniques: []Technique{
			{
				Name:  "tabula-extract",
				Needs: []Capability{CapTabula},
				Run:   e.runTabulaExtract,
			},
			{Name: "text-grid", Run: e.runTextGrid},
		},
	}
}

func (e *Engine) runTabulaExtract(ctx context.Context, job *Job) (any, error) {
	csvPath := filepath.Join(job.WorkDir, "tables.csv")
	// Ruled-line detection needs enough resolution to matter; stream mode is
	// the safer default at low quality.
	lattice := job.Quality >= QualityMedium
	if err := e.runTabulaCSV(ctx, job.InputPath, csvPath, lattice); err != nil {
		return nil, err
	}

	rows, err := readCSVRows(csvPath)
	if err != nil {
		return nil, err
	}

	var warnings []string
	if len(rows) == 0 {
		warnings = append(warnings, "no tables detected; produced an empty workbook")
	}
	if err := writeXlsx(job.OutputPath, rows); err != nil {
		return nil, err
	}
	return &Outcome{Path: job.OutputPath, Warnings: warnings}, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse extracted tables: %w", err)
	}
	return rows, nil
}

var columnGapRe = regexp.MustCompile(`\t|\s{2,}`)

func (e *Engine) runTextGrid(ctx context.Context, job *Job) (any, error) {
	pages, err := extractPDFText(job.InputPath)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			cells := columnGapRe.Split(strings.TrimSpace(line), -1)
			rows = append(rows, cells)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no extractable text in document")
	}

	if err := writeXlsx(job.OutputPath, rows); err != nil {
		return nil, err
	}
	return &Outcome{
		Path:     job.OutputPath,
		Warnings: []string{"table extraction tooling unavailable; columns were inferred from whitespace"},
	}, nil
}
