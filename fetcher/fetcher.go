// Package fetcher retrieves raw listing-page markup. The HTTP engine with a
// Chrome TLS fingerprint is the default path; an optional headless-browser
// engine handles pages that only render client side.
package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/mallscan/config"
	"github.com/use-agent/mallscan/models"
)

// Fetcher selects an engine per request and applies the configured timeout
// bounds. One fetch per call; no retries.
type Fetcher struct {
	cfg        config.FetcherConfig
	httpEngine *HTTPEngine
	rodEngine  *RodEngine // nil when the browser is disabled
}

// New creates a Fetcher. The browser engine is constructed (but not launched)
// only when cfg.EnableBrowser is set.
func New(cfg config.FetcherConfig) *Fetcher {
	f := &Fetcher{
		cfg:        cfg,
		httpEngine: NewHTTPEngine(),
	}
	if cfg.EnableBrowser {
		f.rodEngine = NewRodEngine(cfg)
	}
	return f
}

// BrowserState reports the fallback browser's state for health checks:
// "disabled", "idle", or "running".
func (f *Fetcher) BrowserState() string {
	if f.rodEngine == nil {
		return "disabled"
	}
	if f.rodEngine.Running() {
		return "running"
	}
	return "idle"
}

// Fetch retrieves the page for req.
//
// Mode "http" and "browser" pin the respective engine. Mode "auto" tries
// HTTP first and escalates to the browser when the fetch fails or the result
// looks like an unrendered SPA shell; the same page fetched through Chrome
// carries both the rendered anchors and the hydration state.
func (f *Fetcher) Fetch(ctx context.Context, req *Request) (*Result, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = f.cfg.DefaultTimeout
	}
	if timeout > f.cfg.MaxTimeout {
		timeout = f.cfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch req.Mode {
	case ModeBrowser:
		if f.rodEngine == nil {
			return nil, models.NewScanError(models.ErrCodeBrowser,
				"browser fetch requested but the browser engine is disabled", nil)
		}
		return f.rodEngine.Fetch(ctx, req)

	case ModeHTTP:
		return f.httpEngine.Fetch(ctx, req)

	default: // ModeAuto
		result, err := f.httpEngine.Fetch(ctx, req)
		if err == nil && !NeedsBrowser(result.HTML) {
			return result, nil
		}
		if f.rodEngine == nil {
			// No fallback available: surface whatever HTTP produced.
			return result, err
		}
		if err != nil {
			slog.Info("HTTP fetch failed, escalating to browser", "url", req.URL, "error", err)
		} else {
			slog.Info("page looks like a JS shell, escalating to browser", "url", req.URL)
		}
		browserResult, browserErr := f.rodEngine.Fetch(ctx, req)
		if browserErr != nil {
			if err != nil {
				return nil, err // the HTTP error is the more informative one
			}
			return result, nil // shell markup still beats no markup
		}
		if result != nil && browserResult.StatusCode == 0 {
			browserResult.StatusCode = result.StatusCode
		}
		return browserResult, nil
	}
}

// Close releases engine resources.
func (f *Fetcher) Close() {
	if f.rodEngine != nil {
		f.rodEngine.Close()
	}
}

// WithTimeoutSeconds builds an engine Request from user-facing values.
func WithTimeoutSeconds(url string, seconds int, mode string) *Request {
	return &Request{
		URL:     url,
		Timeout: time.Duration(seconds) * time.Second,
		Mode:    mode,
	}
}
