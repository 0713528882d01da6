package extractor

import (
	"reflect"
	"testing"

	"github.com/use-agent/mallscan/models"
)

func TestExtractLinks_ProductPaths(t *testing.T) {
	markup := `<html><body>
<a href="/Product/LM1234567">relative</a>
<a href="https://www.kolonmall.com/Product/AB999">absolute</a>
<a href="/Search/Outer?sort=new&code=QQ111">query code</a>
</body></html>`

	got := newTestExtractor(t).extractLinks(markup, testBaseURL)

	want := []models.ProductRecord{
		{Code: "LM1234567", ProductURL: "https://www.kolonmall.com/Product/LM1234567", Source: models.SourceHTML},
		{Code: "AB999", ProductURL: "https://www.kolonmall.com/Product/AB999", Source: models.SourceHTML},
		{Code: "QQ111", ProductURL: "https://www.kolonmall.com/Search/Outer?sort=new&code=QQ111", Source: models.SourceHTML},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractLinks() = %+v, want %+v", got, want)
	}
}

func TestExtractLinks_FirstOccurrenceWinsPerCode(t *testing.T) {
	markup := `<html><body>
<a href="/Product/X1">card</a>
<a href="/Product/X1?ref=banner">banner dup</a>
<a href="/Product/X2">other</a>
</body></html>`

	got := newTestExtractor(t).extractLinks(markup, testBaseURL)

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(got), got)
	}
	if got[0].ProductURL != "https://www.kolonmall.com/Product/X1" {
		t.Errorf("first occurrence not kept: %+v", got[0])
	}
	if got[1].Code != "X2" {
		t.Errorf("document order lost: %+v", got)
	}
}

func TestExtractLinks_SkipsNonProductAndBadHrefs(t *testing.T) {
	markup := `<html><body>
<a href="/Event/Summer">event</a>
<a href="/Search/Outer?sort=new">no code param</a>
<a href="javascript:void(0)">script link</a>
<a href="mailto:cs@kolonmall.com">mail</a>
<a href="://broken">unparseable</a>
<a href="">empty</a>
<a>no href</a>
</body></html>`

	got := newTestExtractor(t).extractLinks(markup, testBaseURL)

	if len(got) != 0 {
		t.Errorf("expected no records, got %+v", got)
	}
}

func TestExtractLinks_QueryParamBoundaries(t *testing.T) {
	ex := newTestExtractor(t)

	// "barcode" must not satisfy the code parameter pattern.
	markup := `<html><body><a href="/Search/Outer?barcode=ZZ9">lookalike</a></body></html>`
	if got := ex.extractLinks(markup, testBaseURL); len(got) != 0 {
		t.Errorf("barcode param matched as code: %+v", got)
	}

	markup = `<html><body><a href="/Curation/Picks?tab=2&code=CU55">curation</a></body></html>`
	got := ex.extractLinks(markup, testBaseURL)
	if len(got) != 1 || got[0].Code != "CU55" {
		t.Errorf("curation code link not matched: %+v", got)
	}
}

func TestExtractLinks_ScopeRestrictsScan(t *testing.T) {
	cfg := testConfig()
	cfg.Scope = "div.product-grid"
	ex, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	markup := `<html><body>
<nav><a href="/Product/NAV1">nav promo</a></nav>
<div class="product-grid"><a href="/Product/GRID1">card</a></div>
</body></html>`

	got := ex.extractLinks(markup, testBaseURL)

	if len(got) != 1 || got[0].Code != "GRID1" {
		t.Errorf("scope not applied, got %+v", got)
	}

	// A scope that matches nothing falls back to the full document.
	noMatch := `<html><body><a href="/Product/FULL1">card</a></body></html>`
	got = ex.extractLinks(noMatch, testBaseURL)
	if len(got) != 1 || got[0].Code != "FULL1" {
		t.Errorf("scope fallback failed, got %+v", got)
	}
}

func TestExtractLinks_BadBaseURL(t *testing.T) {
	markup := `<html><body><a href="/Product/X1">card</a></body></html>`
	if got := newTestExtractor(t).extractLinks(markup, "://not-a-url"); got != nil {
		t.Errorf("expected nil for an unparseable base URL, got %+v", got)
	}
}
