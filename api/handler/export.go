package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/mallscan/export"
	"github.com/use-agent/mallscan/extractor"
	"github.com/use-agent/mallscan/models"
)

// Export returns a handler for POST /api/v1/export.
//
// Runs the same fetch + extract pipeline as Extract, then streams the records
// as a downloadable file (csv, tsv, or codes-only text) instead of JSON.
func Export(pf PageFetcher, ex *extractor.Extractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ExportRequest
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

		resp, err := performExtract(c, pf, ex, &req.ExtractRequest, totalStart)
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, resp.Products, req.Format); err != nil {
			respondError(c, models.NewScanError(models.ErrCodeInternal, "export serialization failed", err), resp.Timing)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(req.Format)))
		c.Data(http.StatusOK, export.ContentType(req.Format), buf.Bytes())
	}
}
