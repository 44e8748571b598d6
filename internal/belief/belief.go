// Package belief parses the two simpler sibling stores that accompany a
// knowledge base: the belief ledger and the hash index. Neither carries
// any classification logic.
package belief

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pbaille/taxon/internal/domain"
)

const (
	unknownID     = "Unknown"
	noDescription = "No Description"
)

// Parse reads a belief ledger. A JSON array yields one entry per object; a
// JSON object yields one entry per key, the value supplying the
// description. Anything unparseable yields an empty list; there is no text
// fallback for beliefs.
func Parse(raw string) []domain.BeliefEntry {
	out := []domain.BeliefEntry{}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return out
	}

	switch t := v.(type) {
	case []any:
		for _, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, entryFromObject(obj))
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			e := domain.BeliefEntry{ID: k, Description: noDescription}
			switch val := t[k].(type) {
			case string:
				if strings.TrimSpace(val) != "" {
					e.Description = val
				}
			case map[string]any:
				if s := firstString(val, "description", "name"); s != "" {
					e.Description = s
				}
				e.CertaintyLabel = firstString(val, "certainty")
			}
			out = append(out, e)
		}
	}

	return out
}

func entryFromObject(obj map[string]any) domain.BeliefEntry {
	e := domain.BeliefEntry{ID: unknownID, Description: noDescription}
	if s := firstString(obj, "id", "ubp_id", "name"); s != "" {
		e.ID = s
	}
	if s := firstString(obj, "description", "name"); s != "" {
		e.Description = s
	}
	e.CertaintyLabel = firstString(obj, "certainty")
	return e
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// CountHashIndex reports how many top-level entries a hash index holds:
// array length or object key count for JSON input. When the input is not
// usable JSON it falls back to counting non-empty, non-comment lines longer
// than 5 characters, a rough proxy for hand-written index files.
func CountHashIndex(raw string) int {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		switch t := v.(type) {
		case []any:
			return len(t)
		case map[string]any:
			return len(t)
		}
	}

	n := 0
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 5 && !strings.HasPrefix(trimmed, "#") {
			n++
		}
	}
	return n
}
