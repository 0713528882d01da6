package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"github.com/use-agent/mallscan/config"
	"github.com/use-agent/mallscan/models"
)

// RodEngine fetches pages with a headless Chrome. It is the escalation path
// for listing pages that arrive as JS shells over plain HTTP.
//
// The browser is launched lazily on first use so that deployments which never
// need it (or lack a Chromium binary) don't pay for one at startup.
type RodEngine struct {
	cfg config.FetcherConfig

	mu       sync.Mutex
	browser  *rod.Browser
	pagePool rod.Pool[rod.Page]
	launched bool
}

// NewRodEngine creates the engine without launching a browser.
func NewRodEngine(cfg config.FetcherConfig) *RodEngine {
	return &RodEngine{cfg: cfg}
}

func (e *RodEngine) Name() string { return "browser" }

// Running reports whether the browser has been launched.
func (e *RodEngine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.launched
}

// ensureBrowser launches and connects the browser once.
func (e *RodEngine) ensureBrowser() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.launched {
		return nil
	}

	l := launcher.New().
		Headless(e.cfg.Headless).
		NoSandbox(e.cfg.NoSandbox)
	if e.cfg.BrowserBin != "" {
		l = l.Bin(e.cfg.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return models.NewScanError(models.ErrCodeBrowser, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return models.NewScanError(models.ErrCodeBrowser, "failed to connect to browser", err)
	}

	e.browser = browser
	e.pagePool = rod.NewPagePool(e.cfg.MaxPages)
	e.launched = true
	slog.Info("browser launched", "controlURL", controlURL, "maxPages", e.cfg.MaxPages)
	return nil
}

// Fetch navigates a pooled stealth page to the URL and returns the rendered
// markup once the load event has fired and the DOM has settled.
func (e *RodEngine) Fetch(ctx context.Context, req *Request) (*Result, error) {
	if err := e.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := e.pagePool.Get(func() (*rod.Page, error) {
		return stealth.Page(e.browser)
	})
	if err != nil {
		return nil, models.NewScanError(models.ErrCodeBrowser, "failed to acquire page", err)
	}

	// Reset to about:blank with the ORIGINAL page reference so cleanup
	// succeeds even after the request context has expired.
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to reset page", "error", navErr)
		}
		e.pagePool.Put(page)
	}()

	p := page.Context(ctx)

	if err := p.Navigate(req.URL); err != nil {
		return nil, wrapNavError(err, "navigation failed")
	}
	if err := p.WaitLoad(); err != nil {
		return nil, wrapNavError(err, "page load wait failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0); err != nil {
		slog.Debug("DOM stability wait ended early", "url", req.URL, "error", err)
	}

	markup, err := p.HTML()
	if err != nil {
		return nil, wrapNavError(err, "failed to read page HTML")
	}

	info, err := p.Info()
	finalURL := req.URL
	title := ""
	if err == nil {
		finalURL = info.URL
		title = info.Title
	}
	if title == "" {
		title = ExtractTitle(markup)
	}

	return &Result{
		HTML:       markup,
		Title:      title,
		FinalURL:   finalURL,
		EngineUsed: e.Name(),
	}, nil
}

// Close kills the browser process if it was ever launched.
func (e *RodEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.launched {
		return
	}
	e.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	e.browser.MustClose()
	e.launched = false
	slog.Info("browser closed")
}

func wrapNavError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewScanError(models.ErrCodeTimeout, msg, err)
	}
	return models.NewScanError(models.ErrCodeFetch, msg, err)
}
