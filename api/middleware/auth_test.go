package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/mallscan/models"
)

func authRouter(apiKeys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(apiKeys))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func doGet(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_OpenAccessWhenNoKeys(t *testing.T) {
	w := doGet(authRouter(nil), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_ValidKeys(t *testing.T) {
	r := authRouter([]string{"key-one", "key-two"})

	w := doGet(r, map[string]string{"X-API-Key": "key-one"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(r, map[string]string{"Authorization": "Bearer key-two"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_Rejections(t *testing.T) {
	r := authRouter([]string{"key-one"})

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"missing key", nil},
		{"wrong key", map[string]string{"X-API-Key": "nope"}},
		{"prefix of a valid key", map[string]string{"X-API-Key": "key-on"}},
		{"valid key plus suffix", map[string]string{"X-API-Key": "key-one2"}},
		{"wrong bearer", map[string]string{"Authorization": "Bearer nope"}},
		{"malformed authorization", map[string]string{"Authorization": "Basic key-one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.headers)
			require.Equal(t, http.StatusUnauthorized, w.Code)

			var resp models.ExtractResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, models.ErrCodeUnauthorized, resp.Error.Code)
		})
	}
}
