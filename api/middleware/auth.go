package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/mallscan/models"
)

// Auth returns API-key authentication middleware.
//
// Clients present a key either as `X-API-Key: <key>` or as
// `Authorization: Bearer <key>`. The presented key is compared in constant
// time against SHA-256 digests of the configured set, so the comparison
// leaks neither key bytes nor key length. An empty key list disables the
// check entirely.
func Auth(apiKeys []string) gin.HandlerFunc {
	if len(apiKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	digests := make([][sha256.Size]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			digests = append(digests, sha256.Sum256([]byte(k)))
		}
	}

	return func(c *gin.Context) {
		key := presentedKey(c)
		if key == "" {
			abortUnauthorized(c, "missing API key: provide X-API-Key header or Authorization: Bearer <key>")
			return
		}
		if !keyMatches(digests, key) {
			abortUnauthorized(c, "invalid API key")
			return
		}

		c.Set("api_key", key)
		c.Next()
	}
}

// keyMatches hashes the candidate and checks it against every configured
// digest without short-circuiting on the first match.
func keyMatches(digests [][sha256.Size]byte, key string) bool {
	sum := sha256.Sum256([]byte(key))
	match := false
	for i := range digests {
		if subtle.ConstantTimeCompare(digests[i][:], sum[:]) == 1 {
			match = true
		}
	}
	return match
}

// presentedKey reads the key from X-API-Key, falling back to a Bearer token.
func presentedKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ExtractResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: msg,
		},
	})
}
