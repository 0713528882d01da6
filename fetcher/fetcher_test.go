package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/mallscan/config"
	"github.com/use-agent/mallscan/models"
)

func testFetcherConfig() config.FetcherConfig {
	return config.FetcherConfig{
		DefaultTimeout: 5 * time.Second,
		MaxTimeout:     10 * time.Second,
		EnableBrowser:  false,
	}
}

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_ModeHTTP(t *testing.T) {
	richText := strings.Repeat("rendered product card text ", 20)
	srv := serveHTML(t, `<html><head><title>Page</title></head><body>`+richText+`</body></html>`)

	f := New(testFetcherConfig())
	defer f.Close()

	result, err := f.Fetch(context.Background(), &Request{URL: srv.URL, Mode: ModeHTTP})
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if result.EngineUsed != "http" {
		t.Errorf("EngineUsed = %q, want http", result.EngineUsed)
	}
}

func TestFetcher_ModeBrowserDisabled(t *testing.T) {
	f := New(testFetcherConfig())
	defer f.Close()

	_, err := f.Fetch(context.Background(), &Request{URL: "https://www.kolonmall.com", Mode: ModeBrowser})
	if err == nil {
		t.Fatal("expected error when the browser engine is disabled")
	}
	var se *models.ScanError
	if !errors.As(err, &se) || se.Code != models.ErrCodeBrowser {
		t.Errorf("error = %v, want ScanError with code %s", err, models.ErrCodeBrowser)
	}
}

func TestFetcher_AutoKeepsHTTPResultForRenderedPage(t *testing.T) {
	richText := strings.Repeat("rendered product card text ", 20)
	srv := serveHTML(t, `<html><body>`+richText+`</body></html>`)

	f := New(testFetcherConfig())
	defer f.Close()

	result, err := f.Fetch(context.Background(), &Request{URL: srv.URL, Mode: ModeAuto})
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if result.EngineUsed != "http" {
		t.Errorf("EngineUsed = %q, want http", result.EngineUsed)
	}
}

func TestFetcher_AutoWithoutFallbackReturnsShellMarkup(t *testing.T) {
	// SPA shell with no browser engine configured: the fetcher surfaces the
	// shell markup rather than failing.
	srv := serveHTML(t, `<html><body><div id="root"></div></body></html>`)

	f := New(testFetcherConfig())
	defer f.Close()

	result, err := f.Fetch(context.Background(), &Request{URL: srv.URL, Mode: ModeAuto})
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if !strings.Contains(result.HTML, `<div id="root">`) {
		t.Errorf("expected the shell markup back, got %q", result.HTML)
	}
}

func TestFetcher_BrowserState(t *testing.T) {
	f := New(testFetcherConfig())
	defer f.Close()
	if got := f.BrowserState(); got != "disabled" {
		t.Errorf("BrowserState() = %q, want disabled", got)
	}

	cfg := testFetcherConfig()
	cfg.EnableBrowser = true
	fb := New(cfg)
	defer fb.Close()
	if got := fb.BrowserState(); got != "idle" {
		t.Errorf("BrowserState() = %q, want idle before any browser fetch", got)
	}
}

func TestWithTimeoutSeconds(t *testing.T) {
	req := WithTimeoutSeconds("https://www.kolonmall.com/Search/Outer", 30, ModeAuto)
	if req.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", req.Timeout)
	}
	if req.Mode != ModeAuto {
		t.Errorf("Mode = %q, want auto", req.Mode)
	}
}
