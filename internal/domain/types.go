package domain

import "time"

// Category is one of the eight semantic domains, plus the fallback bucket
// for entries no rule could place.
type Category string

const (
	Substance     Category = "SUBSTANCE"
	Organism      Category = "ORGANISM"
	Algorithm     Category = "ALGORITHM"
	Quantity      Category = "QUANTITY"
	Mechanism     Category = "MECHANISM"
	Imperative    Category = "IMPERATIVE"
	Entropy       Category = "ENTROPY"
	Meaning       Category = "MEANING"
	Uncategorized Category = "UNCATEGORIZED"
)

// Categories lists every category, domains first, fallback last.
var Categories = []Category{
	Substance, Organism, Algorithm, Quantity,
	Mechanism, Imperative, Entropy, Meaning,
	Uncategorized,
}

var descriptions = map[Category]string{
	Substance:     "Matter, elements, and chemical composition",
	Organism:      "Living systems, biology, and health",
	Algorithm:     "Computation, code, and information processing",
	Quantity:      "Numbers, units, and measurement",
	Mechanism:     "Physical forces, energy, and motion",
	Imperative:    "Laws, rules, and governing principles",
	Entropy:       "Disorder, noise, and the unknown",
	Meaning:       "Language, symbols, and semantics",
	Uncategorized: "Entries no rule could place",
}

// Description returns the fixed human-readable description for a category.
func (c Category) Description() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return descriptions[Uncategorized]
}

// SourceFormat records which parse path produced an entry.
type SourceFormat string

const (
	SourceStructured SourceFormat = "structured"
	SourceLine       SourceFormat = "line"
)

// KnowledgeEntry is one parsed record from a knowledge base. Fingerprint
// and Score are carried through for display only, never recomputed.
type KnowledgeEntry struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Tags         []string     `json:"tags,omitempty"`
	Fingerprint  string       `json:"fingerprint,omitempty"`
	Score        *float64     `json:"score,omitempty"`
	SourceFormat SourceFormat `json:"source_format"`
	Label        Category     `json:"label"`
}

// CategoryStatistic is the aggregate view of one category over a
// classified knowledge base. Recomputed on every classification.
type CategoryStatistic struct {
	Label       Category `json:"label"`
	Count       int      `json:"count"`
	Percentage  float64  `json:"percentage"`
	Description string   `json:"description"`
}

// BeliefEntry is one record from the belief ledger, a simpler sibling of
// the knowledge base with no classification logic.
type BeliefEntry struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	CertaintyLabel string `json:"certainty_label,omitempty"`
}

// KnowledgeBase is a stored raw blob together with its import metadata.
type KnowledgeBase struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Raw       string    `json:"raw,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
