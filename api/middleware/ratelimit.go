package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/use-agent/mallscan/config"
	"github.com/use-agent/mallscan/models"
)

// clientLimiter pairs a token bucket with its last use, so idle identities
// can be swept out of the map.
type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimit returns token-bucket rate limiting keyed by client identity:
// the authenticated API key when the auth middleware set one, the client IP
// otherwise. Backed by golang.org/x/time/rate.
//
// A background sweep runs every 5 minutes and drops identities idle for
// over an hour, bounding the map.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*clientLimiter)
	)

	take := func(identity string) bool {
		mu.Lock()
		defer mu.Unlock()
		cl, ok := clients[identity]
		if !ok {
			cl = &clientLimiter{
				bucket: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
			}
			clients[identity] = cl
		}
		cl.lastSeen = time.Now()
		return cl.bucket.Allow()
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour)
			mu.Lock()
			for id, cl := range clients {
				if cl.lastSeen.Before(cutoff) {
					delete(clients, id)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		identity := c.ClientIP()
		if key, ok := c.Get("api_key"); ok {
			identity = key.(string)
		}

		if !take(identity) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ExtractResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded, please slow down",
				},
			})
			return
		}

		c.Next()
	}
}
