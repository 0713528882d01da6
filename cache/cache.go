// Package cache holds recently extracted responses so repeated submissions
// of the same listing URL don't refetch the page.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/use-agent/mallscan/models"
)

// entry holds a cached response with its creation timestamp.
type entry struct {
	response  *models.ExtractResponse
	createdAt time.Time
}

// Cache is a simple in-memory cache for extraction responses.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a Cache with the given maximum number of entries. A background
// goroutine evicts entries older than 1 hour every 5 minutes.
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}
	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the target URL, page, and fetch mode.
func Key(url string, page int, fetchMode string) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.Itoa(page)))
	h.Write([]byte("|"))
	h.Write([]byte(fetchMode))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached response younger than maxAgeMs milliseconds.
// maxAgeMs <= 0 skips the lookup entirely.
//
// The returned response is a copy of the stored one: hits set per-request
// fields (cache status, timing) and must not write to the shared entry while
// other hits serialize it.
func (c *Cache) Get(key string, maxAgeMs int) (*models.ExtractResponse, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(e.createdAt) > time.Duration(maxAgeMs)*time.Millisecond {
		return nil, false
	}
	resp := *e.response
	return &resp, true
}

// Set stores a copy of the response. At capacity a random entry is evicted
// to make room (map iteration order is random in Go).
func (c *Cache) Set(key string, resp *models.ExtractResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	stored := *resp
	c.store[key] = &entry{
		response:  &stored,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts entries older than 1 hour every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
