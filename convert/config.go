package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config configures the conversion engine. It is constructed once at startup
// and treated as immutable afterwards: strategies read candidate paths from it
// instead of ambient global state, so tests can inject a fake configuration.
type Config struct {
	// WorkRoot is the scratch root for job-scoped temp directories
	// (default: <os temp>/convd).
	WorkRoot string `yaml:"work_root"`

	// ExternalTimeout bounds each external-process invocation (default: 60s).
	ExternalTimeout time.Duration `yaml:"external_timeout"`

	// ChainTimeout is the overall deadline for one fallback chain run
	// (default: 5m), so pathological technique stacking cannot hang a caller.
	ChainTimeout time.Duration `yaml:"chain_timeout"`

	// BaseDPI scales PDF rasterization as BaseDPI*quality (default: 100).
	BaseDPI int `yaml:"base_dpi"`

	// ScanDPI scales scan-simulation rasterization as ScanDPI*quality
	// (default: 150).
	ScanDPI int `yaml:"scan_dpi"`

	// OCRDPI is the fixed rasterization resolution for OCR (default: 300).
	OCRDPI int `yaml:"ocr_dpi"`

	// Candidate executable locations, tried in order. The first usable one
	// wins at probe time; empty entries and missing files are skipped.
	SofficePaths   []string `yaml:"soffice_paths"`
	PdftoppmPaths  []string `yaml:"pdftoppm_paths"`
	MutoolPaths    []string `yaml:"mutool_paths"`
	TesseractPaths []string `yaml:"tesseract_paths"`
	TabulaPaths    []string `yaml:"tabula_paths"`

	// BrowserBin pins the Chrome/Chromium binary for print-to-PDF. Empty
	// means locate one via the rod launcher.
	BrowserBin string `yaml:"browser_bin"`

	// UnicodeFontPaths are candidate CJK-capable TTF files for the direct PDF
	// writer. Without one, non-cp1252 text is filtered with a warning.
	UnicodeFontPaths []string `yaml:"unicode_font_paths"`

	// OCRLanguages is passed to tesseract -l (default: "chi_sim+eng").
	OCRLanguages string `yaml:"ocr_languages"`

	// Logger for attempt/exhaustion messages.
	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.WorkRoot == "" {
		c.WorkRoot = filepath.Join(os.TempDir(), "convd")
	}
	if c.ExternalTimeout <= 0 {
		c.ExternalTimeout = 60 * time.Second
	}
	if c.ChainTimeout <= 0 {
		c.ChainTimeout = 5 * time.Minute
	}
	if c.BaseDPI <= 0 {
		c.BaseDPI = 100
	}
	if c.ScanDPI <= 0 {
		c.ScanDPI = 150
	}
	if c.OCRDPI <= 0 {
		c.OCRDPI = 300
	}
	if len(c.SofficePaths) == 0 {
		c.SofficePaths = []string{
			"soffice",
			"libreoffice",
			"/usr/bin/soffice",
			"/usr/bin/libreoffice",
			"/Applications/LibreOffice.app/Contents/MacOS/soffice",
			`C:\Program Files\LibreOffice\program\soffice.exe`,
			`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		}
	}
	if len(c.PdftoppmPaths) == 0 {
		c.PdftoppmPaths = []string{"pdftoppm", "/usr/bin/pdftoppm"}
	}
	if len(c.MutoolPaths) == 0 {
		c.MutoolPaths = []string{"mutool", "/usr/bin/mutool"}
	}
	if len(c.TesseractPaths) == 0 {
		c.TesseractPaths = []string{"tesseract", "/usr/bin/tesseract"}
	}
	if len(c.TabulaPaths) == 0 {
		c.TabulaPaths = []string{"tabula"}
	}
	if len(c.UnicodeFontPaths) == 0 {
		c.UnicodeFontPaths = []string{
			"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
			"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
			"/System/Library/Fonts/PingFang.ttc",
			`C:\Windows\Fonts\simhei.ttf`,
			`C:\Windows\Fonts\msyh.ttc`,
		}
	}
	if c.OCRLanguages == "" {
		c.OCRLanguages = "chi_sim+eng"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfig reads a YAML config file. Fields left empty keep their defaults
// when the Config is handed to New.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
