package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/mallscan/models"
)

func exportRouter(t *testing.T, pf PageFetcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/export", Export(pf, newTestExtractor(t)))
	return r
}

func TestExportHandler_DefaultCSV(t *testing.T) {
	r := exportRouter(t, &stubFetcher{result: listingResult()})

	w := postJSON(t, r, "/export", gin.H{"url": listingURL})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="products.csv"`, w.Header().Get("Content-Disposition"))

	want := "code,name,thumbnail_url,product_url\n" +
		"S1,Coat,https://img/s1.jpg,https://www.kolonmall.com/Product/S1\n" +
		"H2,,,https://www.kolonmall.com/Product/H2\n"
	assert.Equal(t, want, w.Body.String())
}

func TestExportHandler_Codes(t *testing.T) {
	r := exportRouter(t, &stubFetcher{result: listingResult()})

	w := postJSON(t, r, "/export", gin.H{"url": listingURL, "format": "codes"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="product_codes.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "S1\nH2\n", w.Body.String())
}

func TestExportHandler_BadFormat(t *testing.T) {
	r := exportRouter(t, &stubFetcher{result: listingResult()})

	w := postJSON(t, r, "/export", gin.H{"url": listingURL, "format": "xml"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, models.ErrCodeInvalidInput, resp.Error.Code)
}

func TestExportHandler_FetchErrorStaysJSON(t *testing.T) {
	r := exportRouter(t, &stubFetcher{err: models.NewScanError(models.ErrCodeFetch, "HTTP 500", nil)})

	w := postJSON(t, r, "/export", gin.H{"url": listingURL})

	require.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, models.ErrCodeFetch, resp.Error.Code)
}
