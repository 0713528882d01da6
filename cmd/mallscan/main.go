package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/mallscan/api"
	"github.com/use-agent/mallscan/cache"
	"github.com/use-agent/mallscan/config"
	"github.com/use-agent/mallscan/extractor"
	"github.com/use-agent/mallscan/fetcher"
	"github.com/use-agent/mallscan/notify"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("mallscan starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browser", cfg.Fetcher.EnableBrowser,
	)

	// ── 3. Compile the extractor ────────────────────────────────────
	ex, err := extractor.New(cfg.Extractor)
	if err != nil {
		slog.Error("invalid extractor configuration", "error", err)
		os.Exit(1)
	}

	// ── 4. Initialise fetcher, cache, webhook ───────────────────────
	f := fetcher.New(cfg.Fetcher)
	defer f.Close()

	cc := cache.New(cfg.Cache.MaxEntries)
	nt := notify.New(cfg.Webhook.URL, cfg.Webhook.Secret)
	if nt.Enabled() {
		slog.Info("webhook delivery enabled", "url", cfg.Webhook.URL)
	}

	// ── 5. Setup router and HTTP server ─────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(f, ex, cc, nt, cfg, startTime)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 6. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// f.Close() runs via defer — kills the fallback browser if it launched.
	slog.Info("mallscan stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
