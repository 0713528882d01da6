// Package api wires the gin router for the mallscan service.
package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/mallscan/api/handler"
	"github.com/use-agent/mallscan/api/middleware"
	"github.com/use-agent/mallscan/cache"
	"github.com/use-agent/mallscan/config"
	"github.com/use-agent/mallscan/extractor"
	"github.com/use-agent/mallscan/fetcher"
	"github.com/use-agent/mallscan/notify"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(f *fetcher.Fetcher, ex *extractor.Extractor, cc *cache.Cache, nt *notify.Notifier, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health, no auth required.
	v1.GET("/health", handler.Health(f, startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		if len(cfg.Auth.APIKeys) == 0 {
			slog.Warn("auth is enabled but no API keys are configured; protected endpoints accept all requests")
		}
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/extract", handler.Extract(f, ex, cc, nt))
	protected.POST("/export", handler.Export(f, ex))

	return r
}
