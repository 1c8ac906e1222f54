package convert

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
)

// Capability names an optional, environment-specific facility a technique
// depends on. Techniques declare what they need; the probe decides once per
// process what is actually present.
type Capability string

const (
	CapSoffice          Capability = "soffice"
	CapPdftoppm         Capability = "pdftoppm"
	CapMutool           Capability = "mutool"
	CapRasterizer       Capability = "rasterizer" // pdftoppm or mutool
	CapTesseract        Capability = "tesseract"
	CapTabula           Capability = "tabula"
	CapBrowser          Capability = "browser"
	CapOfficeAutomation Capability = "office-automation"
	CapUnicodeFont      Capability = "unicode-font"
)

// Capabilities is the static eligibility table produced by Probe. Immutable
// after construction; safe for concurrent reads.
type Capabilities struct {
	paths map[Capability]string
}

// NewCapabilities builds a table from explicit capability→path entries.
// Intended for tests that fake the environment; production code uses Probe.
func NewCapabilities(paths map[Capability]string) *Capabilities {
	cp := make(map[Capability]string, len(paths))
	for k, v := range paths {
		cp[k] = v
	}
	return &Capabilities{paths: cp}
}

// Probe evaluates candidate paths once and returns the resulting table.
func Probe(cfg Config) *Capabilities {
	paths := make(map[Capability]string)

	if p := firstExecutable(cfg.SofficePaths); p != "" {
		paths[CapSoffice] = p
	}
	if p := firstExecutable(cfg.PdftoppmPaths); p != "" {
		paths[CapPdftoppm] = p
	}
	if p := firstExecutable(cfg.MutoolPaths); p != "" {
		paths[CapMutool] = p
	}
	if p := firstExecutable(cfg.TesseractPaths); p != "" {
		paths[CapTesseract] = p
	}
	if p := firstExecutable(cfg.TabulaPaths); p != "" {
		paths[CapTabula] = p
	}
	if _, ok := paths[CapPdftoppm]; ok {
		paths[CapRasterizer] = paths[CapPdftoppm]
	} else if _, ok := paths[CapMutool]; ok {
		paths[CapRasterizer] = paths[CapMutool]
	}

	if cfg.BrowserBin != "" {
		if _, err := os.Stat(cfg.BrowserBin); err == nil {
			paths[CapBrowser] = cfg.BrowserBin
		}
	} else if bin, ok := launcher.LookPath(); ok {
		paths[CapBrowser] = bin
	}

	// Native office automation only exists where the host applications do.
	if runtime.GOOS == "windows" {
		if p, err := exec.LookPath("powershell"); err == nil {
			paths[CapOfficeAutomation] = p
		}
	}

	for _, p := range cfg.UnicodeFontPaths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			paths[CapUnicodeFont] = p
			break
		}
	}

	return &Capabilities{paths: paths}
}

// Has reports whether the capability was found at probe time.
func (c *Capabilities) Has(cap Capability) bool {
	_, ok := c.paths[cap]
	return ok
}

// Path returns the resolved location for a capability.
func (c *Capabilities) Path(cap Capability) (string, bool) {
	p, ok := c.paths[cap]
	return p, ok
}

// Report returns the availability table for diagnostics (system-check).
func (c *Capabilities) Report() map[string]bool {
	all := []Capability{
		CapSoffice, CapPdftoppm, CapMutool, CapRasterizer,
		CapTesseract, CapTabula, CapBrowser, CapOfficeAutomation, CapUnicodeFont,
	}
	out := make(map[string]bool, len(all))
	for _, cap := range all {
		out[string(cap)] = c.Has(cap)
	}
	return out
}

// firstExecutable returns the first candidate that resolves to an existing
// file (for explicit paths) or a PATH hit (for bare names).
func firstExecutable(candidates []string) string {
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		if strings.ContainsAny(cand, `/\`) {
			if info, err := os.Stat(cand); err == nil && !info.IsDir() {
				return cand
			}
			continue
		}
		if p, err := exec.LookPath(cand); err == nil {
			return p
		}
	}
	return ""
}
