package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pairKey identifies one directed conversion: normalized source format to
// normalized target format.
type pairKey struct {
	From string
	To   string
}

// Engine routes conversion jobs to per-pair strategies and runs their
// fallback chains. One Engine is shared by all requests; it holds no
// per-job state.
type Engine struct {
	cfg        Config
	caps       *Capabilities
	logger     *slog.Logger
	strategies map[pairKey]*Strategy
}

// New probes the host for external tooling and builds an engine with every
// format pair registered. Strategies whose tooling is absent stay registered;
// their techniques fail fast at run time with an "unavailable" attempt record.
func New(cfg Config) *Engine {
	cfg.defaults()
	return NewWithCapabilities(cfg, Probe(cfg))
}

// NewWithCapabilities builds an engine against a fixed capability set.
// Exists for tests and for callers that probe once and share the result.
func NewWithCapabilities(cfg Config, caps *Capabilities) *Engine {
	cfg.defaults()
	e := &Engine{
		cfg:        cfg,
		caps:       caps,
		logger:     cfg.Logger,
		strategies: make(map[pairKey]*Strategy),
	}
	e.registerStrategies()
	return e
}

func (e *Engine) registerStrategies() {
	reg := func(from, to string, s *Strategy) {
		e.strategies[pairKey{From: from, To: to}] = s
	}

	reg("pdf", "docx", e.pdfToDocxStrategy())
	reg("pdf", "xlsx", e.pdfToXlsxStrategy())
	reg("pdf", "pptx", e.pdfToPptxStrategy())
	reg("pdf", "jpg", e.pdfToImageStrategy("jpg"))
	reg("pdf", "png", e.pdfToImageStrategy("png"))
	reg("pdf", "scannable_pdf", e.pdfToScannableStrategy())
	reg("pdf", "scanned_pdf", e.pdfToScannableStrategy())
	reg("pdf", "searchable_pdf", e.pdfToSearchableStrategy())
	for _, cad := range []string{"dwg", "dxf", "cad"} {
		reg("pdf", cad, e.pdfToCADStrategy(cad))
	}

	for _, img := range []string{"jpg", "png"} {
		reg(img, "pdf", e.imageToPDFStrategy())
	}
	for _, office := range []string{"docx", "doc", "xlsx", "xls", "pptx", "ppt"} {
		reg(office, "pdf", e.officeToPDFStrategy(office))
	}
	reg("txt", "pdf", e.textToPDFStrategy())
	reg("md", "pdf", e.markdownToPDFStrategy())
}

// normalizeFormat lower-cases a format token and resolves input aliases.
// Output-side aliases (scannable_pdf and friends) are distinct routes, not
// aliases, and pass through unchanged.
func normalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	f = strings.TrimPrefix(f, ".")
	switch f {
	case "jpeg":
		return "jpg"
	case "markdown":
		return "md"
	case "text":
		return "txt"
	}
	return f
}

// Route resolves a format pair to its registered strategy. Unsupported pairs
// fail with *NotSupportedError and are never retried.
func (e *Engine) Route(inputFormat, outputFormat string) (*Strategy, error) {
	from := normalizeFormat(inputFormat)
	to := normalizeFormat(outputFormat)
	s, ok := e.strategies[pairKey{From: from, To: to}]
	if !ok {
		return nil, &NotSupportedError{From: from, To: to}
	}
	return s, nil
}

// UnderlyingExtension maps an output format token to the extension of the
// artifact actually produced. The scannable/scanned/searchable variants are
// all PDFs; CAD targets produce a zip bundle.
func UnderlyingExtension(outputFormat string) string {
	switch normalizeFormat(outputFormat) {
	case "scannable_pdf", "scanned_pdf", "searchable_pdf":
		return "pdf"
	case "dwg", "dxf", "cad":
		return "zip"
	default:
		return normalizeFormat(outputFormat)
	}
}

// Convert routes the job and runs the selected strategy's fallback chain.
// The returned Result carries the artifact path (which may differ from
// job.OutputPath when a strategy bundles multiple files), the winning
// technique and any warnings.
func (e *Engine) Convert(ctx context.Context, job *Job) (*Result, error) {
	if !job.Quality.Valid() {
		return nil, fmt.Errorf("quality out of range: %d", job.Quality)
	}
	strat, err := e.Route(job.InputFormat, job.OutputFormat)
	if err != nil {
		return nil, err
	}

	if job.WorkDir == "" {
		job.WorkDir = filepath.Join(e.cfg.WorkRoot, "work", job.ID)
	}
	if err := os.MkdirAll(job.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("work dir: %w", err)
	}

	e.logger.Info("conversion started",
		"job_id", job.ID,
		"from", job.InputFormat, "to", job.OutputFormat,
		"strategy", strat.Name, "quality", int(job.Quality))

	res, err := e.runChain(ctx, strat, job)
	if err != nil {
		return nil, err
	}
	res.OutputFormat = normalizeFormat(job.OutputFormat)
	e.logger.Info("conversion finished",
		"job_id", job.ID, "technique", res.TechniqueUsed, "output", res.OutputPath)
	return res, nil
}

// SupportedConversions reports every registered pair as a map from source
// format to the sorted list of target formats, suitable for the formats
// endpoint.
func (e *Engine) SupportedConversions() map[string][]string {
	out := make(map[string][]string)
	for key := range e.strategies {
		out[key.From] = append(out[key.From], key.To)
	}
	for from := range out {
		sort.Strings(out[from])
	}
	return out
}

// Formats returns the sorted set of all source formats the engine accepts.
func (e *Engine) Formats() []string {
	seen := make(map[string]struct{})
	for key := range e.strategies {
		seen[key.From] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Capabilities exposes the probe result for the system-check endpoint.
func (e *Engine) Capabilities() *Capabilities { return e.caps }
