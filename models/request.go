package models

import (
	"net/url"
	"strconv"
)

// ExtractRequest is the payload for POST /api/v1/extract.
type ExtractRequest struct {
	// URL is the listing page to scan. Required, absolute.
	URL string `json:"url" binding:"required,url"`

	// Page, when set, rewrites the "page" query parameter on the target URL
	// before fetching. Still a single fetch; no crawling.
	Page int `json:"page,omitempty" binding:"omitempty,min=1"`

	// Timeout is the maximum duration in seconds for the fetch.
	// Default: 15. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// FetchMode controls the fetching strategy.
	// "auto" (default): HTTP first, browser fallback if the page is a JS shell.
	// "http": force plain HTTP.
	// "browser": force the headless browser.
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=auto browser http"`

	// MaxAge enables the response cache: a cached result younger than MaxAge
	// milliseconds is returned without refetching. 0 disables the cache.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ExtractRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 15
	}
	if r.FetchMode == "" {
		r.FetchMode = "auto"
	}
}

// TargetURL returns the URL to fetch, with the page parameter applied.
// An unparseable URL is returned unchanged; binding validation has already
// rejected anything that isn't URL-shaped.
func (r *ExtractRequest) TargetURL() string {
	if r.Page == 0 {
		return r.URL
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(r.Page))
	u.RawQuery = q.Encode()
	return u.String()
}

// ExportRequest is the payload for POST /api/v1/export.
type ExportRequest struct {
	ExtractRequest

	// Format selects the export serialization.
	// "csv" (default): header + one record per row.
	// "tsv": tab-separated, same columns.
	// "codes": product codes only, one per line.
	Format string `json:"format,omitempty" binding:"omitempty,oneof=csv tsv codes"`
}

// Defaults applies default values to unset fields.
func (r *ExportRequest) Defaults() {
	r.ExtractRequest.Defaults()
	if r.Format == "" {
		r.Format = "csv"
	}
}
