package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// runSofficeConvert converts inputPath with LibreOffice headless into outDir
// and returns the produced file. soffice names the output after the input's
// base name; the caller renames if it wants a different one.
func (e *Engine) runSofficeConvert(ctx context.Context, targetFmt, inputPath, outDir string) (string, error) {
	bin, ok := e.caps.Path(CapSoffice)
	if !ok {
		return "", fmt.Errorf("libreoffice not available")
	}
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ExternalTimeout)
	defer cancel()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	cmd := exec.CommandContext(ctx, bin,
		"--headless",
		"--convert-to", targetFmt,
		"--outdir", outDir,
		inputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("soffice: %w: %s", err, strings.TrimSpace(string(out)))
	}

	base := filepath.Base(inputPath)
	produced := filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+"."+targetFmt)
	if info, err := os.Stat(produced); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("soffice reported success but %s is missing or empty", produced)
	}
	return produced, nil
}

// runTesseractPDF OCRs a page image into a text-under-image PDF at
// outBase.pdf and returns that path.
func (e *Engine) runTesseractPDF(ctx context.Context, imagePath, outBase string) (string, error) {
	bin, ok := e.caps.Path(CapTesseract)
	if !ok {
		return "", fmt.Errorf("tesseract not available")
	}
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ExternalTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin,
		imagePath,
		outBase,
		"-l", e.cfg.OCRLanguages,
		"pdf")
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(string(out)))
	}
	produced := outBase + ".pdf"
	if info, err := os.Stat(produced); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("tesseract produced no pdf at %s", produced)
	}
	return produced, nil
}

// runTabulaCSV extracts every table from pdfPath into one CSV file. lattice
// selects ruled-table detection; stream mode is used otherwise.
func (e *Engine) runTabulaCSV(ctx context.Context, pdfPath, csvPath string, lattice bool) error {
	bin, ok := e.caps.Path(CapTabula)
	if !ok {
		return fmt.Errorf("tabula not available")
	}
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ExternalTimeout)
	defer cancel()

	args := []string{"--pages", "all", "--format", "CSV", "--outfile", csvPath}
	if lattice {
		args = append(args, "--lattice")
	} else {
		args = append(args, "--stream")
	}
	args = append(args, pdfPath)

	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tabula: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// officeApp selects which COM automation script to run on Windows hosts.
type officeApp int

const (
	officeWord officeApp = iota
	officeExcel
	officePowerPoint
)

func officeAppFor(format string) officeApp {
	switch format {
	case "xlsx", "xls":
		return officeExcel
	case "pptx", "ppt":
		return officePowerPoint
	default:
		return officeWord
	}
}

// runOfficeAutomation exports a document to PDF through the locally
// installed Office suite via PowerShell COM scripting. Only probed as
// available on Windows.
func (e *Engine) runOfficeAutomation(ctx context.Context, app officeApp, inputPath, outputPath string) error {
	bin, ok := e.caps.Path(CapOfficeAutomation)
	if !ok {
		return fmt.Errorf("office automation not available")
	}
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ExternalTimeout)
	defer cancel()

	absIn, err := filepath.Abs(inputPath)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(outputPath)
	if err != nil {
		return err
	}

	var script string
	switch app {
	case officeExcel:
		script = fmt.Sprintf(`$app = New-Object -ComObject Excel.Application
$app.Visible = $false
$wb = $app.Workbooks.Open(%q)
$wb.ExportAsFixedFormat(0, %q)
$wb.Close($false)
$app.Quit()`, absIn, absOut)
	case officePowerPoint:
		script = fmt.Sprintf(`$app = New-Object -ComObject PowerPoint.Application
$pres = $app.Presentations.Open(%q, $true, $false, $false)
$pres.SaveAs(%q, 32)
$pres.Close()
$app.Quit()`, absIn, absOut)
	default:
		script = fmt.Sprintf(`$app = New-Object -ComObject Word.Application
$app.Visible = $false
$doc = $app.Documents.Open(%q)
$doc.SaveAs2(%q, 17)
$doc.Close($false)
$app.Quit()`, absIn, absOut)
	}

	cmd := exec.CommandContext(ctx, bin, "-NoProfile", "-NonInteractive", "-Command", script)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("office automation: %w: %s", err, strings.TrimSpace(string(out)))
	}
	if info, err := os.Stat(outputPath); err != nil || info.Size() == 0 {
		return fmt.Errorf("office automation produced no file at %s", outputPath)
	}
	return nil
}
