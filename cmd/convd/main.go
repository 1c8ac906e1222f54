// Command convd runs the document conversion service: the HTTP API, the
// retention sweeper and, optionally, an MCP stdio endpoint exposing the same
// engine to agent tooling.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/convd/convert"
	"github.com/hazyhaar/convd/httpapi"
	"github.com/hazyhaar/convd/retention"
)

func main() {
	port := env("PORT", "8086")
	dataDir := env("DATA_DIR", "data")
	configPath := env("CONVD_CONFIG", "")
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg convert.Config
	if configPath != "" {
		loaded, err := convert.LoadConfig(configPath)
		if err != nil {
			slog.Error("config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.Logger = logger

	uploadDir := filepath.Join(dataDir, "uploads")
	resultDir := filepath.Join(dataDir, "results")
	for _, dir := range []string{uploadDir, resultDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("data dir", "dir", dir, "error", err)
			os.Exit(1)
		}
	}
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = dataDir
	}

	engine := convert.New(cfg)
	slog.Info("capability probe complete", "capabilities", engine.Capabilities().Report())

	store, err := retention.OpenStore(filepath.Join(dataDir, "metadata.db"))
	if err != nil {
		slog.Error("metadata store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	maxAge := envDuration("RETENTION_MAX_AGE", 24*time.Hour)
	sweepInterval := envDuration("RETENTION_SWEEP_INTERVAL", time.Hour)
	sweeper := retention.NewSweeper(store,
		[]string{uploadDir, resultDir, filepath.Join(cfg.WorkRoot, "work")},
		maxAge, sweepInterval, logger)

	svc := httpapi.NewService(engine, store, httpapi.Config{
		UploadDir:      uploadDir,
		ResultDir:      resultDir,
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 100<<20),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sweeper.Run(gctx)
		return nil
	})

	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "convd",
			Version: "1.0.0",
		}, nil)
		engine.RegisterMCP(mcpSrv)
		g.Go(func() error {
			slog.Info("MCP stdio starting")
			if err := mcpSrv.Run(gctx, &mcp.StdioTransport{}); err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("invalid integer, using default", "key", key, "value", v, "default", def)
	}
	return def
}
