package fetcher

import (
	"context"
	"time"
)

// Fetch modes accepted by the fetcher.
const (
	ModeAuto    = "auto"
	ModeHTTP    = "http"
	ModeBrowser = "browser"
)

// Engine is the interface both fetch engines implement.
type Engine interface {
	// Name returns the engine identifier ("http" or "browser").
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *Request) (*Result, error)
}

// Request contains everything an engine needs to fetch a page.
type Request struct {
	URL     string
	Timeout time.Duration
	Mode    string // "auto", "http", or "browser"
}

// Result is the output of a successful fetch.
type Result struct {
	// HTML is the raw page markup.
	HTML string

	// Title is the page title.
	Title string

	// StatusCode is the page's HTTP status code (0 for browser fetches that
	// don't observe one).
	StatusCode int

	// FinalURL is the resolved URL after redirects; relative links on the
	// page normalize against it.
	FinalURL string

	// EngineUsed records which engine produced the result.
	EngineUsed string
}
