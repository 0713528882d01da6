package extractor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/ysmood/gson"

	"github.com/use-agent/mallscan/models"
)

// Field-name candidates for product entities in the hydration cache. Checked
// in order; the first non-empty string wins.
var (
	codeFields  = []string{"code", "productCode", "goodsCode", "id"}
	nameFields  = []string{"name", "productName", "goodsName"}
	thumbFields = []string{"thumbnailUrl", "thumbnailImageUrl", "imageUrl"}
)

// refField marks a normalized-cache reference to another top-level entry.
const refField = "__ref"

// stateEntry is one top-level entry of the hydration cache, in source order.
type stateEntry struct {
	key string
	raw json.RawMessage
}

// extractState scans the embedded hydration state for product entities.
//
// A missing or malformed state object yields zero records; the anchor scan
// still runs. Entries are processed in the JSON object's insertion order,
// which is the cache's discovery order. Product entities are extracted
// directly; other entries (curated lists, trend sections) may reference
// products by key, and those references are resolved against the same
// top-level mapping. One level of indirection; unresolved keys are dropped.
func (e *Extractor) extractState(markup string) []models.ProductRecord {
	blob, ok := locateState(markup, e.cfg.StateMarkers)
	if !ok {
		return nil
	}

	entries, err := parseStateEntries(blob)
	if err != nil {
		slog.Debug("embedded state present but unparseable", "error", err)
		return nil
	}

	index := make(map[string]json.RawMessage, len(entries))
	for _, ent := range entries {
		index[ent.key] = ent.raw
	}

	var records []models.ProductRecord
	seen := make(map[string]struct{})
	add := func(rec models.ProductRecord) {
		if _, dup := seen[rec.Code]; dup {
			return
		}
		seen[rec.Code] = struct{}{}
		records = append(records, rec)
	}

	prefix := e.cfg.ProductKeyPrefix
	for _, ent := range entries {
		if strings.HasPrefix(ent.key, prefix) {
			if rec, ok := e.productFromEntity(ent.key, ent.raw); ok {
				add(rec)
			}
			continue
		}
		for _, refKey := range collectRefs(ent.raw, prefix) {
			target, ok := index[refKey]
			if !ok {
				continue // dangling reference
			}
			if rec, ok := e.productFromEntity(refKey, target); ok {
				add(rec)
			}
		}
	}

	return records
}

// locateState finds the first configured boundary marker and slices the
// balanced JSON object that follows it.
func locateState(markup string, markers []string) (string, bool) {
	for _, marker := range markers {
		idx := strings.Index(markup, marker)
		if idx < 0 {
			continue
		}
		if blob, ok := balancedObject(markup[idx+len(marker):]); ok {
			return blob, true
		}
	}
	return "", false
}

// balancedObject returns the leading {...} object of s, tracking brace depth
// while skipping string literals and their escapes. Script content after the
// object (";", "</script>") is ignored.
func balancedObject(s string) (string, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	if i >= len(s) || s[i] != '{' {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for j := i; j < len(s); j++ {
		c := s[j]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[i : j+1], true
			}
		}
	}
	return "", false // truncated object
}

// parseStateEntries decodes the top-level object into ordered key/value
// pairs. encoding/json's map decoding would lose the source insertion order
// the output contract depends on, so the object is walked token by token.
func parseStateEntries(blob string) ([]stateEntry, error) {
	dec := json.NewDecoder(strings.NewReader(blob))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("state blob is not a JSON object")
	}

	var entries []stateEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		entries = append(entries, stateEntry{key: key, raw: raw})
	}
	return entries, nil
}

// productFromEntity extracts a record from one cache entity. Field names are
// looked up tolerantly; a missing name or thumbnail still yields a record.
// The code falls back to the key's id segment when no field carries it.
func (e *Extractor) productFromEntity(key string, raw json.RawMessage) (models.ProductRecord, bool) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return models.ProductRecord{}, false
	}
	entity := gson.New(v)

	code := firstString(entity, codeFields)
	if code == "" {
		code = strings.TrimPrefix(key, e.cfg.ProductKeyPrefix)
	}
	if code == "" {
		return models.ProductRecord{}, false
	}

	return models.ProductRecord{
		Code:         code,
		Name:         firstString(entity, nameFields),
		ThumbnailURL: firstString(entity, thumbFields),
		Source:       models.SourceState,
	}, true
}

// firstString returns the first candidate field holding a non-empty string.
func firstString(entity gson.JSON, fields []string) string {
	for _, f := range fields {
		if s, ok := entity.Get(f).Val().(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// collectRefs walks a decoded cache value and returns the product keys it
// references via "__ref" markers. Arrays keep their order; object members
// are visited in sorted key order so output stays deterministic. The cache
// is shallow, so the recursion is too.
func collectRefs(raw json.RawMessage, prefix string) []string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	var refs []string
	walkRefs(v, prefix, &refs)
	return refs
}

func walkRefs(v interface{}, prefix string, refs *[]string) {
	switch t := v.(type) {
	case map[string]interface{}:
		if ref, ok := t[refField].(string); ok {
			if strings.HasPrefix(ref, prefix) {
				*refs = append(*refs, ref)
			}
			return
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkRefs(t[k], prefix, refs)
		}
	case []interface{}:
		for _, item := range t {
			walkRefs(item, prefix, refs)
		}
	}
}
