// Package extractor turns raw listing-page markup into an ordered,
// deduplicated list of product records.
//
// Two strategies see structurally different encodings of the same entity:
// the anchor scan reads server-rendered product links, the state scan reads
// the embedded hydration cache the site's front end ships for client-side
// rendering. Merge order is state first (richer fields), then HTML-only
// finds, deduplicated by product code.
package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/use-agent/mallscan/config"
	"github.com/use-agent/mallscan/models"
)

// Extractor holds the compiled site-specific patterns. Safe for concurrent
// use; extraction is a pure function of the input markup.
type Extractor struct {
	cfg          config.ExtractorConfig
	linkPatterns []*regexp.Regexp
	scope        cascadia.Sel // nil when no scope is configured
}

// New compiles the configured patterns. Patterns without exactly one capture
// group and invalid scope selectors are configuration errors.
func New(cfg config.ExtractorConfig) (*Extractor, error) {
	e := &Extractor{cfg: cfg}

	if !strings.Contains(cfg.ProductURLTemplate, "%s") {
		return nil, fmt.Errorf("extractor: product URL template %q has no %%s verb", cfg.ProductURLTemplate)
	}

	for _, p := range cfg.LinkPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("extractor: compile link pattern %q: %w", p, err)
		}
		if re.NumSubexp() != 1 {
			return nil, fmt.Errorf("extractor: link pattern %q must have exactly one capture group", p)
		}
		e.linkPatterns = append(e.linkPatterns, re)
	}

	if cfg.Scope != "" {
		sel, err := cascadia.Parse(cfg.Scope)
		if err != nil {
			return nil, fmt.Errorf("extractor: parse scope selector %q: %w", cfg.Scope, err)
		}
		e.scope = sel
	}

	return e, nil
}

// Extract runs both strategies over the markup and merges their output.
// baseURL (the fetch's final URL) anchors relative-link normalization.
//
// The result is deterministic for identical input: state-derived records in
// the cache's insertion order, then HTML-only records in document order, one
// record per code.
func (e *Extractor) Extract(markup, baseURL string) []models.ProductRecord {
	stateRecords := e.extractState(markup)
	linkRecords := e.extractLinks(markup, baseURL)

	merged := make([]models.ProductRecord, 0, len(stateRecords)+len(linkRecords))
	seen := make(map[string]struct{}, len(stateRecords)+len(linkRecords))

	for _, rec := range stateRecords {
		if _, dup := seen[rec.Code]; dup {
			continue
		}
		seen[rec.Code] = struct{}{}
		merged = append(merged, e.withProductURL(rec))
	}
	// HTML-derived duplicates are skipped, never merged field-wise: the
	// state record already carries the richer data.
	for _, rec := range linkRecords {
		if _, dup := seen[rec.Code]; dup {
			continue
		}
		seen[rec.Code] = struct{}{}
		merged = append(merged, e.withProductURL(rec))
	}

	return merged
}

// HostAllowed reports whether a page host passes the configured allow list.
// An empty list allows everything.
func (e *Extractor) HostAllowed(host string) bool {
	if len(e.cfg.AllowedHosts) == 0 {
		return true
	}
	for _, h := range e.cfg.AllowedHosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

// withProductURL fills in a synthesized canonical URL when the record has none.
func (e *Extractor) withProductURL(rec models.ProductRecord) models.ProductRecord {
	if rec.ProductURL == "" && rec.Code != "" {
		rec.ProductURL = fmt.Sprintf(e.cfg.ProductURLTemplate, rec.Code)
	}
	return rec
}
