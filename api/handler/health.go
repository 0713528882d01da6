package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/mallscan/models"
)

// BrowserReporter exposes the fallback browser's state for health checks.
type BrowserReporter interface {
	BrowserState() string
}

// Health returns a handler for GET /api/v1/health.
func Health(br BrowserReporter, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		browser := "disabled"
		if br != nil {
			browser = br.BrowserState()
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Browser: browser,
			Version: "0.1.0",
		})
	}
}
