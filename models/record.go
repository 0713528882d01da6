package models

// Record sources.
const (
	SourceState = "state" // embedded hydration-state entity
	SourceHTML  = "html"  // server-rendered anchor tag
)

// ProductRecord is one extracted product reference.
//
// Code is the deduplication key: within a single extraction run no two
// records share a Code. Name and ThumbnailURL may be empty for records that
// were only seen as anchors. ProductURL is always populated, synthesized
// from the configured template when not directly observed on the page.
type ProductRecord struct {
	Code         string `json:"code"`
	Name         string `json:"name,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ProductURL   string `json:"product_url"`

	// Source records which extractor produced the record: "state" or "html".
	Source string `json:"source"`
}
