package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetcher   FetcherConfig
	Extractor ExtractorConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetcherConfig controls page retrieval.
type FetcherConfig struct {
	// DefaultTimeout is the per-request fetch deadline.
	DefaultTimeout time.Duration // default: 15s

	// MaxTimeout caps the timeout a client may request.
	MaxTimeout time.Duration // default: 120s

	// EnableBrowser allows escalation to a headless browser when the
	// HTTP-fetched page looks like a JS-rendered shell.
	EnableBrowser bool // default: false

	// Headless controls whether the fallback browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// MaxPages is the browser page pool capacity.
	MaxPages int // default: 2
}

// ExtractorConfig controls product-reference extraction.
//
// The state markers and link patterns are configuration rather than code
// because they track the host site's rendering framework, which can change
// without notice.
type ExtractorConfig struct {
	// StateMarkers are the boundary strings that precede the embedded
	// hydration-state JSON object. The first marker found in the page wins.
	StateMarkers []string

	// ProductKeyPrefix identifies product entities in the state object's
	// top-level keys (normalized-cache "Type:id" convention).
	ProductKeyPrefix string // default: "Product:"

	// LinkPatterns are regular expressions matched against resolved anchor
	// URLs; each must have exactly one capture group yielding the product code.
	LinkPatterns []string

	// ProductURLTemplate synthesizes a canonical product URL from a code.
	// Must contain a single %s verb.
	ProductURLTemplate string // default: "https://www.kolonmall.com/Product/%s"

	// AllowedHosts restricts which hosts may be fetched. Empty disables the check.
	AllowedHosts []string

	// Scope is an optional CSS selector; when set, the anchor scan only sees
	// the matched elements' subtrees.
	Scope string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or client IP.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per identity.
	Burst int // default: 10
}

// CacheConfig controls the extraction response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500
}

// WebhookConfig controls extraction-completed event delivery.
type WebhookConfig struct {
	// URL receives extract.completed events. Empty disables delivery.
	URL string

	// Secret signs event payloads with HMAC-SHA256 when non-empty.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("MALLSCAN_HOST", "0.0.0.0"),
			Port: envIntOr("MALLSCAN_PORT", 8080),
			Mode: envOr("MALLSCAN_MODE", "release"),
		},
		Fetcher: FetcherConfig{
			DefaultTimeout: envDurationOr("MALLSCAN_DEFAULT_TIMEOUT", 15*time.Second),
			MaxTimeout:     envDurationOr("MALLSCAN_MAX_TIMEOUT", 120*time.Second),
			EnableBrowser:  envBoolOr("MALLSCAN_ENABLE_BROWSER", false),
			Headless:       envBoolOr("MALLSCAN_HEADLESS", true),
			NoSandbox:      envBoolOr("MALLSCAN_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("MALLSCAN_BROWSER_BIN"),
			MaxPages:       envIntOr("MALLSCAN_MAX_PAGES", 2),
		},
		Extractor: ExtractorConfig{
			StateMarkers: envSliceOr("MALLSCAN_STATE_MARKERS", []string{
				"window.__APOLLO_STATE__=",
				"window.__APOLLO_STATE__ =",
				"__APOLLO_STATE__=",
			}),
			ProductKeyPrefix: envOr("MALLSCAN_PRODUCT_KEY_PREFIX", "Product:"),
			LinkPatterns: envSliceOr("MALLSCAN_LINK_PATTERNS", []string{
				`/Product/([A-Za-z0-9]+)`,
				`/(?:Search|Curation)/[^?#]*\?(?:[^#]*&)?code=([A-Za-z0-9]+)`,
			}),
			ProductURLTemplate: envOr("MALLSCAN_PRODUCT_URL_TEMPLATE", "https://www.kolonmall.com/Product/%s"),
			AllowedHosts: envSliceOr("MALLSCAN_ALLOWED_HOSTS", []string{
				"www.kolonmall.com",
				"kolonmall.com",
			}),
			Scope: os.Getenv("MALLSCAN_EXTRACT_SCOPE"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("MALLSCAN_AUTH_ENABLED", false),
			APIKeys: envSliceOr("MALLSCAN_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("MALLSCAN_RATE_RPS", 5.0),
			Burst:             envIntOr("MALLSCAN_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("MALLSCAN_CACHE_MAX_ENTRIES", 500),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("MALLSCAN_WEBHOOK_URL"),
			Secret: os.Getenv("MALLSCAN_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("MALLSCAN_LOG_LEVEL", "info"),
			Format: envOr("MALLSCAN_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
