package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers the conversion tools on an MCP server, so agent
// callers can drive the engine over stdio alongside the HTTP API.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	e.registerConvertTool(srv)
	e.registerFormatsTool(srv)
	e.registerCapabilitiesTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(errors.New(err.Error()))
	return &res
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Errorf("marshal: %w", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

type convertReq struct {
	InputPath  string `json:"input_path"`
	FromFormat string `json:"from_format,omitempty"`
	ToFormat   string `json:"to_format"`
	OutputDir  string `json:"output_dir,omitempty"`
	Quality    int    `json:"quality,omitempty"`
}

func (e *Engine) registerConvertTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "convd_convert",
		Description: "Convert a document file to another format. Returns the output path, the technique that produced it and any warnings.",
		InputSchema: inputSchema(map[string]any{
			"input_path":  map[string]any{"type": "string", "description": "Path of the file to convert"},
			"from_format": map[string]any{"type": "string", "description": "Source format token; derived from the file extension when omitted"},
			"to_format":   map[string]any{"type": "string", "description": "Target format token, e.g. docx, jpg, searchable_pdf"},
			"output_dir":  map[string]any{"type": "string", "description": "Directory for the artifact; defaults to the input's directory"},
			"quality":     map[string]any{"type": "integer", "description": "Quality level 1-3 (default 2)"},
		}, []string{"input_path", "to_format"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r convertReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
		}

		job, err := e.jobFromRequest(r)
		if err != nil {
			return toolError(err), nil
		}
		res, err := e.Convert(ctx, job)
		if err != nil {
			return toolError(err), nil
		}
		return toolJSON(res)
	})
}

func (e *Engine) jobFromRequest(r convertReq) (*Job, error) {
	if r.InputPath == "" || r.ToFormat == "" {
		return nil, fmt.Errorf("input_path and to_format are required")
	}
	from := r.FromFormat
	if from == "" {
		from = strings.TrimPrefix(filepath.Ext(r.InputPath), ".")
		if from == "" {
			return nil, fmt.Errorf("from_format is required when the input path has no extension")
		}
	}
	q := Quality(r.Quality)
	if r.Quality == 0 {
		q = QualityMedium
	}
	if !q.Valid() {
		return nil, fmt.Errorf("quality out of range: %d", r.Quality)
	}

	outDir := r.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(r.InputPath)
	}
	base := filepath.Base(r.InputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	return &Job{
		ID:               uuid.Must(uuid.NewV7()).String(),
		InputPath:        r.InputPath,
		InputFormat:      from,
		OutputFormat:     r.ToFormat,
		OutputPath:       filepath.Join(outDir, stem+"."+UnderlyingExtension(r.ToFormat)),
		Quality:          q,
		OriginalFilename: base,
	}, nil
}

func (e *Engine) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "convd_formats",
		Description: "List supported conversions as a map from source format to target formats.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolJSON(map[string]any{"conversions": e.SupportedConversions()})
	})
}

func (e *Engine) registerCapabilitiesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "convd_capabilities",
		Description: "Report which external conversion tools were found on this host.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolJSON(map[string]any{"capabilities": e.caps.Report()})
	})
}
