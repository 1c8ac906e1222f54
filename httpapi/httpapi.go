// Package httpapi is the HTTP surface of the conversion service: upload,
// convert, download by opaque ID, plus the formats and system-check
// endpoints the front end polls.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/convd/convert"
	"github.com/hazyhaar/convd/idgen"
	"github.com/hazyhaar/convd/retention"
)

// allowedExtensions is the upload whitelist. Anything else is rejected
// before touching disk.
var allowedExtensions = map[string]bool{
	"pdf": true, "docx": true, "doc": true, "xlsx": true, "xls": true,
	"pptx": true, "ppt": true, "jpg": true, "jpeg": true, "png": true,
	"txt": true, "md": true, "dwg": true,
}

// Config configures the HTTP service.
type Config struct {
	UploadDir string
	ResultDir string

	// MaxUploadBytes bounds request bodies (default: 100 MiB).
	MaxUploadBytes int64

	Logger *slog.Logger
	IDGen  idgen.Generator
}

// Service wires the engine and the retention store behind the REST routes.
type Service struct {
	engine *convert.Engine
	store  *retention.Store
	cfg    Config
	logger *slog.Logger
	newID  idgen.Generator
}

// NewService creates the HTTP service.
func NewService(engine *convert.Engine, store *retention.Store, cfg Config) *Service {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 100 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.IDGen == nil {
		cfg.IDGen = idgen.Default
	}
	return &Service{
		engine: engine,
		store:  store,
		cfg:    cfg,
		logger: cfg.Logger,
		newID:  cfg.IDGen,
	}
}

// Router builds the chi router with the standard middleware stack.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(middleware.RequestSize(s.cfg.MaxUploadBytes))

	r.Post("/api/convert", s.handleConvert)
	r.Get("/api/download/{file_id}", s.handleDownload)
	r.Get("/api/formats", s.handleFormats)
	r.Get("/api/system-check", s.handleSystemCheck)
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// convertResponse is the success payload of POST /api/convert.
type convertResponse struct {
	Success        bool     `json:"success"`
	FileID         string   `json:"file_id"`
	OriginalName   string   `json:"original_name"`
	FromFormat     string   `json:"from_format"`
	ToFormat       string   `json:"to_format"`
	OutputFilename string   `json:"output_filename"`
	FileSize       int64    `json:"file_size"`
	TechniqueUsed  string   `json:"technique_used"`
	Warnings       []string `json:"warnings,omitempty"`
	DownloadURL    string   `json:"download_url"`
}

func (s *Service) handleConvert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	originalName := header.Filename
	if v := r.FormValue("original_filename"); v != "" {
		originalName = v
		// Keep the uploaded file's extension authoritative when the caller's
		// name disagrees; the extension drives format detection.
		if upExt := fileExt(header.Filename); upExt != "" && fileExt(originalName) != upExt {
			originalName = stripExt(originalName) + "." + upExt
		}
	}
	ext := fileExt(originalName)
	if !allowedExtensions[ext] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file type .%s is not supported", ext))
		return
	}

	fromFormat := strings.ToLower(r.FormValue("from_format"))
	if fromFormat == "" {
		fromFormat = ext
	}
	toFormat := strings.ToLower(r.FormValue("to_format"))
	if toFormat == "" {
		writeError(w, http.StatusBadRequest, "to_format is required")
		return
	}
	quality := convert.QualityMedium
	if v := r.FormValue("quality"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !convert.Quality(n).Valid() {
			writeError(w, http.StatusBadRequest, "quality must be 1, 2 or 3")
			return
		}
		quality = convert.Quality(n)
	}

	jobID := s.newID()
	uploadPath, err := s.saveUpload(jobID, originalName, file)
	if err != nil {
		s.logger.Error("upload save failed", "job_id", jobID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	stem := stripExt(originalName)
	outputFilename := stem + "." + convert.UnderlyingExtension(toFormat)
	outputPath := filepath.Join(s.cfg.ResultDir, jobID, outputFilename)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "could not prepare result directory")
		return
	}

	job := &convert.Job{
		ID:               jobID,
		InputPath:        uploadPath,
		InputFormat:      fromFormat,
		OutputFormat:     toFormat,
		OutputPath:       outputPath,
		Quality:          quality,
		OriginalFilename: originalName,
	}
	res, err := s.engine.Convert(r.Context(), job)
	if err != nil {
		s.respondConvertError(w, jobID, err)
		return
	}

	// A strategy may legitimately hand back a different file than the target
	// path (a zip bundle of pages, for instance).
	actualName := filepath.Base(res.OutputPath)
	info, err := os.Stat(res.OutputPath)
	if err != nil {
		s.logger.Error("result artifact vanished", "job_id", jobID, "path", res.OutputPath)
		writeError(w, http.StatusInternalServerError, "conversion result is missing")
		return
	}

	entry := &retention.Entry{
		JobID:            jobID,
		OriginalFilename: originalName,
		OutputFilename:   actualName,
		OutputPath:       res.OutputPath,
		InputFormat:      fromFormat,
		OutputFormat:     res.OutputFormat,
		SizeBytes:        info.Size(),
		CreatedAt:        time.Now(),
	}
	if err := s.store.Save(r.Context(), entry); err != nil {
		s.logger.Error("metadata save failed", "job_id", jobID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not record conversion")
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		Success:        true,
		FileID:         jobID,
		OriginalName:   originalName,
		FromFormat:     fromFormat,
		ToFormat:       res.OutputFormat,
		OutputFilename: actualName,
		FileSize:       info.Size(),
		TechniqueUsed:  res.TechniqueUsed,
		Warnings:       res.Warnings,
		DownloadURL:    "/api/download/" + jobID,
	})
}

// respondConvertError maps engine errors to HTTP statuses: unsupported pairs
// are the caller's mistake, chain exhaustion surfaces the full attempt list
// so environment gaps are diagnosable from the response alone.
func (s *Service) respondConvertError(w http.ResponseWriter, jobID string, err error) {
	var notSupported *convert.NotSupportedError
	if errors.As(err, &notSupported) {
		writeError(w, http.StatusUnprocessableEntity, notSupported.Error())
		return
	}
	var exhausted *convert.AllTechniquesFailedError
	if errors.As(err, &exhausted) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    "conversion failed: every technique was exhausted",
			"strategy": exhausted.Strategy,
			"attempts": exhausted.Attempts,
		})
		return
	}
	s.logger.Error("conversion failed", "job_id", jobID, "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Service) saveUpload(jobID, name string, src multipart.File) (string, error) {
	dir := filepath.Join(s.cfg.UploadDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	// The client controls the filename; keep only its base so it cannot
	// escape the job directory.
	path := filepath.Join(dir, filepath.Base(name))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return path, dst.Close()
}

func (s *Service) handleDownload(w http.ResponseWriter, r *http.Request) {
	fileID, err := idgen.Parse(chi.URLParam(r, "file_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	entry, err := s.store.Load(r.Context(), fileID)
	if errors.Is(err, retention.ErrNotFound) {
		writeError(w, http.StatusNotFound, "file not found or expired")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if _, err := os.Stat(entry.OutputPath); err != nil {
		writeError(w, http.StatusNotFound, "file not found or expired")
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", entry.OutputFilename))
	http.ServeFile(w, r, entry.OutputPath)
}

func (s *Service) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"conversions": s.engine.SupportedConversions(),
	})
}

func (s *Service) handleSystemCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"capabilities": s.engine.Capabilities().Report(),
		"formats":      s.engine.Formats(),
	})
}

func fileExt(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
