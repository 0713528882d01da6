package models

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	// Success indicates whether the fetch and extraction completed.
	// An empty product list on a fetched page is still a success.
	Success bool `json:"success"`

	// StatusCode is the HTTP status code from the fetched page.
	StatusCode int `json:"status_code,omitempty"`

	// FinalURL is the URL after following all redirects.
	FinalURL string `json:"final_url,omitempty"`

	// Title is the fetched page's title.
	Title string `json:"title,omitempty"`

	// Total is len(Products).
	Total int `json:"total"`

	// Products is the merged, deduplicated record list: state-derived records
	// in discovery order, then HTML-only records in document order.
	Products []ProductRecord `json:"products"`

	// EngineUsed indicates which fetch engine produced the page
	// ("http" or "browser").
	EngineUsed string `json:"engine_used,omitempty"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs is the time spent retrieving the page.
	FetchMs int64 `json:"fetch_ms"`

	// ExtractMs is the time spent scanning anchors and the embedded state.
	ExtractMs int64 `json:"extract_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "healthy"
	Uptime  string `json:"uptime"`
	Browser string `json:"browser"` // "disabled", "idle", or "running"
	Version string `json:"version"`
}
