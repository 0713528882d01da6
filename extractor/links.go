package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/mallscan/models"
)

// extractLinks scans anchor tags for product-link shapes.
//
// Each href is resolved against the page base URL before matching, so
// relative links on server-rendered cards are accepted and anything that
// fails to normalize is dropped. Output is in document order with the first
// occurrence kept per code.
func (e *Extractor) extractLinks(markup, baseURL string) []models.ProductRecord {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	if e.scope != nil {
		markup = applyScope(markup, e.scope)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var records []models.ProductRecord
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}

		absURL := resolved.String()
		code := e.matchCode(absURL)
		if code == "" {
			return
		}
		if _, dup := seen[code]; dup {
			return
		}
		seen[code] = struct{}{}

		records = append(records, models.ProductRecord{
			Code:       code,
			ProductURL: absURL,
			Source:     models.SourceHTML,
		})
	})

	return records
}

// matchCode returns the product code captured by the first matching link
// pattern, or "" when the URL is not a product link.
func (e *Extractor) matchCode(absURL string) string {
	for _, re := range e.linkPatterns {
		if m := re.FindStringSubmatch(absURL); m != nil {
			return m[1]
		}
	}
	return ""
}
