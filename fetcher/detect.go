package fetcher

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var reNoscriptWarning = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)

var emptyRootMarkers = []string{
	`<div id="root"></div>`,
	`<div id="app"></div>`,
	`<div id="__next"></div>`,
}

// NeedsBrowser decides heuristically whether HTTP-fetched markup is a
// JS-rendered shell that needs a real browser to produce content.
func NeedsBrowser(markup string) bool {
	bodyText := visibleBodyText(markup)

	// Almost no visible text means an SPA shell.
	if len(bodyText) < 200 {
		return true
	}

	lower := strings.ToLower(markup)

	for _, marker := range emptyRootMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	if reNoscriptWarning.MatchString(lower) {
		return true
	}

	// Script-heavy page with little body text.
	if strings.Count(lower, "<script") > 10 && len(bodyText) < 500 {
		return true
	}

	return false
}

// ExtractTitle returns the first <title> element's text, or "".
func ExtractTitle(markup string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}

// visibleBodyText strips tags and script/style/noscript content from within
// <body>. Used for the shell heuristic only, so whitespace handling is rough.
func visibleBodyText(markup string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "body":
				inBody = true
			case "script", "style", "noscript":
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
