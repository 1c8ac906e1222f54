package convert

import "context"

// Quality selects the fidelity/speed trade-off of a conversion.
type Quality int

const (
	QualityLow    Quality = 1
	QualityMedium Quality = 2
	QualityHigh   Quality = 3
)

// Valid reports whether q is one of the three defined levels.
func (q Quality) Valid() bool { return q >= QualityLow && q <= QualityHigh }

// Job is one caller-initiated conversion request. It is owned by the caller
// for its lifetime; the engine receives it by reference and mutates nothing
// except WorkDir, which it assigns when the caller left it empty.
type Job struct {
	ID               string
	InputPath        string
	InputFormat      string // normalized token; derived from InputPath when empty
	OutputFormat     string // requested token, e.g. "docx", "scannable_pdf"
	OutputPath       string // caller-chosen target; extension matches UnderlyingExtension
	Quality          Quality
	OriginalFilename string

	// WorkDir is a job-scoped scratch directory. Assigned by the engine when
	// empty; concurrent jobs never share one.
	WorkDir string
}

// Result is the engine's output for a successful conversion. OutputPath is
// exactly one artifact: a single file or a single archive bundling multiple
// pages/sheets. It is guaranteed to exist and be non-empty when returned.
type Result struct {
	OutputPath    string   `json:"output_path"`
	OutputFormat  string   `json:"output_format"`
	TechniqueUsed string   `json:"technique_used"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Outcome is the uniform success value a Technique returns: the artifact path
// plus any user-facing notices accumulated along the way.
type Outcome struct {
	Path     string
	Warnings []string
}

// Technique is one concrete attempt mechanism within a Strategy, tried in
// priority order (slice order). Stateless: all per-job state is call-scoped.
//
// Run returns any raw value; the chain runner feeds it through NormalizeResult
// before trusting it, so techniques adapted from foreign code that still
// return bare strings or record maps keep working.
type Technique struct {
	Name  string
	Needs []Capability
	Run   func(ctx context.Context, job *Job) (any, error)
}

// Strategy is the full set of techniques registered for one
// (source-format, target-format) pair.
type Strategy struct {
	Name       string
	Techniques []Technique
}
