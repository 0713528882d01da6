package extractor

import (
	"bytes"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// applyScope restricts markup to the outer HTML of the elements matched by
// the scope selector. When nothing matches, the original markup is returned
// so the anchor scan still has the full document to work with.
func applyScope(markup string, sel cascadia.Sel) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	matches := cascadia.QueryAll(doc, sel)
	if len(matches) == 0 {
		return markup
	}

	var buf bytes.Buffer
	for _, node := range matches {
		if err := html.Render(&buf, node); err != nil {
			return markup
		}
	}
	return buf.String()
}
