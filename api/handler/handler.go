// Package handler contains the gin handlers for the mallscan API.
package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/mallscan/extractor"
	"github.com/use-agent/mallscan/fetcher"
	"github.com/use-agent/mallscan/models"
)

// PageFetcher is the fetch collaborator the handlers depend on. Tests
// substitute a stub so extraction runs against fixed markup.
type PageFetcher interface {
	Fetch(ctx context.Context, req *fetcher.Request) (*fetcher.Result, error)
}

// validateTarget parses the request URL and checks it against the host allow
// list. Returns the parsed URL or a ScanError suitable for a 400.
func validateTarget(ex *extractor.Extractor, rawURL string) (*url.URL, *models.ScanError) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, models.NewScanError(models.ErrCodeInvalidInput,
			"url must be absolute http(s)", err)
	}
	if !ex.HostAllowed(u.Hostname()) {
		return nil, models.NewScanError(models.ErrCodeInvalidInput,
			"url host is not in the allowed host list", nil)
	}
	return u, nil
}

// respondError maps a ScanError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	scanErr, ok := err.(*models.ScanError)
	if !ok {
		scanErr = models.NewScanError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scanErr), models.ExtractResponse{
		Success: false,
		Error:   scanErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScanError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeFetch, models.ErrCodeBrowser:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
