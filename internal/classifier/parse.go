package classifier

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/pbaille/taxon/internal/domain"
)

const (
	defaultID   = "UNKNOWN"
	defaultName = "Untitled"
)

// bulletRe matches the markdown dialect: `- [<marker>] **<id>**: <rest>`.
var bulletRe = regexp.MustCompile(`^\s*-\s*\[([^\]]*)\]\s*\*\*(.+?)\*\*:\s*(.*)$`)

// tagsClauseRe captures a trailing `Tags: a, b, c` clause on a bullet line.
var tagsClauseRe = regexp.MustCompile(`Tags:\s*(.+?)\s*$`)

// ParseEntries extracts raw entries from a knowledge-base blob. The whole
// input is tried as JSON first; only when that parse fails is the
// line-oriented scan used. Knowledge bases here are hand-edited files that
// drift between a strict JSON array and a looser bullet list, so the caller
// never picks a mode up front.
func ParseEntries(raw string) []domain.KnowledgeEntry {
	if entries, ok := parseStructured(raw); ok {
		return entries
	}
	return parseLines(raw)
}

// parseStructured handles whole-input JSON: an array of objects, or an
// object whose values are treated as an array. Object keys are visited in
// sorted order so repeated parses agree on entry order.
func parseStructured(raw string) ([]domain.KnowledgeEntry, bool) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}

	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			items = append(items, t[k])
		}
	default:
		// Valid JSON but neither accepted shape; let the line scan
		// have a go (it will find nothing in a bare scalar).
		return nil, false
	}

	entries := []domain.KnowledgeEntry{}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entries = append(entries, entryFromObject(obj, domain.SourceStructured))
	}
	return entries, true
}

// parseLines recognizes two interleaved forms, collected in line order:
// bullet entries, and standalone single-line JSON objects (a trailing comma
// is stripped first; lines that still fail to parse are dropped).
func parseLines(raw string) []domain.KnowledgeEntry {
	entries := []domain.KnowledgeEntry{}
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "{") {
			candidate := strings.TrimSuffix(trimmed, ",")
			var obj map[string]any
			if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
				entries = append(entries, entryFromObject(obj, domain.SourceLine))
			}
			continue
		}

		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		e := domain.KnowledgeEntry{
			ID:           strings.TrimSpace(m[2]),
			Name:         defaultName,
			SourceFormat: domain.SourceLine,
		}
		if e.ID == "" {
			e.ID = defaultID
		}

		rest := strings.TrimSpace(m[3])
		if tm := tagsClauseRe.FindStringSubmatchIndex(rest); tm != nil {
			for _, t := range strings.Split(rest[tm[2]:tm[3]], ",") {
				if t = strings.TrimSpace(t); t != "" {
					e.Tags = append(e.Tags, t)
				}
			}
			rest = strings.TrimSpace(rest[:tm[0]])
		}
		if rest != "" {
			e.Name = rest
		}

		entries = append(entries, e)
	}
	return entries
}

// entryFromObject reads the conventional field names, applying defaults for
// anything absent or of the wrong type.
func entryFromObject(obj map[string]any, src domain.SourceFormat) domain.KnowledgeEntry {
	e := domain.KnowledgeEntry{
		ID:           defaultID,
		Name:         defaultName,
		SourceFormat: src,
	}

	if s := stringField(obj, "identifier", "ubp_id"); s != "" {
		e.ID = s
	}
	if s := stringField(obj, "name"); s != "" {
		e.Name = s
	}
	if rawTags, ok := obj["tags"].([]any); ok {
		for _, t := range rawTags {
			if s, ok := t.(string); ok {
				e.Tags = append(e.Tags, s)
			}
		}
	}
	e.Fingerprint = stringField(obj, "fingerprint")
	if n, ok := obj["score"].(float64); ok {
		score := n
		e.Score = &score
	}

	return e
}

func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
