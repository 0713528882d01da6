package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/mallscan/cache"
	"github.com/use-agent/mallscan/extractor"
	"github.com/use-agent/mallscan/fetcher"
	"github.com/use-agent/mallscan/models"
	"github.com/use-agent/mallscan/notify"
)

// Extract returns a handler for POST /api/v1/extract.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults, check the host allow list.
//  2. Cache lookup (only when the request sets max_age).
//  3. Fetch the page                      (records fetch_ms)
//  4. Run both extraction strategies      (records extract_ms)
//  5. Fire the extract.completed webhook, store in cache, respond 200.
//
// A fetched page with zero product references is a success with total 0.
func Extract(pf PageFetcher, ex *extractor.Extractor, cc *cache.Cache, nt *notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		if _, scanErr := validateTarget(ex, req.URL); scanErr != nil {
			respondError(c, scanErr, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}

		cacheKey := cache.Key(req.URL, req.Page, req.FetchMode)
		if cc != nil {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				cached.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		resp, err := performExtract(c, pf, ex, &req, totalStart)
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}

		if nt != nil {
			nt.DeliverAsync(&notify.Event{
				Type:      notify.EventExtractCompleted,
				Timestamp: time.Now().Unix(),
				URL:       req.URL,
				Total:     resp.Total,
				Engine:    resp.EngineUsed,
			})
		}

		// CacheStatus is set before Set: the stored entry must not be
		// written again once concurrent hits can be reading it.
		if cc != nil && req.MaxAge > 0 {
			resp.CacheStatus = "miss"
			cc.Set(cacheKey, resp)
		}

		c.JSON(http.StatusOK, resp)
	}
}

// performExtract runs the fetch + extract pipeline shared by the extract and
// export endpoints.
func performExtract(c *gin.Context, pf PageFetcher, ex *extractor.Extractor, req *models.ExtractRequest, totalStart time.Time) (*models.ExtractResponse, error) {
	fetchStart := time.Now()
	result, err := pf.Fetch(c.Request.Context(), fetcher.WithTimeoutSeconds(req.TargetURL(), req.Timeout, req.FetchMode))
	fetchMs := time.Since(fetchStart).Milliseconds()
	if err != nil {
		return nil, err
	}

	extractStart := time.Now()
	products := ex.Extract(result.HTML, result.FinalURL)
	extractMs := time.Since(extractStart).Milliseconds()

	return &models.ExtractResponse{
		Success:    true,
		StatusCode: result.StatusCode,
		FinalURL:   result.FinalURL,
		Title:      result.Title,
		Total:      len(products),
		Products:   products,
		EngineUsed: result.EngineUsed,
		Timing: models.TimingInfo{
			TotalMs:   time.Since(totalStart).Milliseconds(),
			FetchMs:   fetchMs,
			ExtractMs: extractMs,
		},
	}, nil
}
