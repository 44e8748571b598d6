package classifier

import (
	"strings"

	"github.com/pbaille/taxon/internal/domain"
)

// idOverridePrefix forces IMPERATIVE regardless of any tag, explicit
// category tags included.
const idOverridePrefix = "LAW_"

// canonical maps an exact (upper-cased) tag or name to its category.
var canonical = map[string]domain.Category{
	"SUBSTANCE":     domain.Substance,
	"ORGANISM":      domain.Organism,
	"ALGORITHM":     domain.Algorithm,
	"QUANTITY":      domain.Quantity,
	"MECHANISM":     domain.Mechanism,
	"IMPERATIVE":    domain.Imperative,
	"ENTROPY":       domain.Entropy,
	"MEANING":       domain.Meaning,
	"UNCATEGORIZED": domain.Uncategorized,
}

// subjects maps whole-word school-subject tags to a domain. Anything
// starting with VOCAB also lands in MEANING (see Categorize).
var subjects = map[string]domain.Category{
	"ENGLISH":          domain.Meaning,
	"VOCABULARY":       domain.Meaning,
	"PHYSICS":          domain.Mechanism,
	"EARTH":            domain.Mechanism,
	"EARTH_SCIENCE":    domain.Mechanism,
	"MATH":             domain.Quantity,
	"MATHEMATICS":      domain.Quantity,
	"CHEMISTRY":        domain.Substance,
	"PSYCHOLOGY":       domain.Organism,
	"BIOLOGY":          domain.Organism,
	"PYTHON":           domain.Algorithm,
	"CS":               domain.Algorithm,
	"COMPUTER SCIENCE": domain.Algorithm,
}

// keywordOrder fixes which domain wins when keywords from several domains
// appear on the same entry. The scan stops at the first domain with a hit.
var keywordOrder = []domain.Category{
	domain.Imperative,
	domain.Substance,
	domain.Organism,
	domain.Algorithm,
	domain.Quantity,
	domain.Mechanism,
	domain.Entropy,
	domain.Meaning,
}

// keywords are matched as substrings against every upper-cased tag and the
// name, not as whole words.
var keywords = map[domain.Category][]string{
	domain.Imperative: {"LAW", "RULE", "AXIOM", "STANDARD", "PRINCIPLE", "REQ", "PROTOCOL", "COMMAND"},
	domain.Substance:  {"ELEMENT", "PERIODIC", "METAL", "GAS", "LIQUID", "MATTER", "ATOM", "MOLECULE", "CHEMICAL", "MINERAL", "PLASTIC", "GRAPHENE", "MAT_", "ELEM_"},
	domain.Organism:   {"BIO", "LIFE", "CELL", "DNA", "ORGANIC", "ANIMAL", "PLANT", "FUNGUS", "HEALTH", "NEURO", "BODY", "CANCER"},
	domain.Algorithm:  {"ALGO", "CODE", "LOGIC", "COMPUTE", "DATA", "PROCESS", "FUNCTION", "NETWORK", "SYSTEM", "INFO", "FRACTAL"},
	domain.Quantity:   {"NUM", "CONST", "UNIT", "MEASURE", "VALUE", "RATIO", "METRIC", "COORDINATE", "DIMENSION", "GEOMETRY", "SHAPE", "BIN_"},
	domain.Mechanism:  {"MECH", "PHYS", "ENERGY", "FORCE", "MOTION", "WAVE", "PARTICLE", "REACT", "KINETIC"},
	domain.Entropy:    {"CHAOS", "VOID", "NULL", "ERROR", "DECAY", "NOISE", "UNKNOWN", "RANDOM"},
	domain.Meaning:    {"WORD", "TERM", "SEMANTIC", "CONCEPT", "IDEA", "SYMBOL", "DEFINITION", "LANG"},
}

// Categorize assigns exactly one category to an entry. It is an ordered
// cascade evaluated top to bottom; the first matching rule wins:
//
//  1. id prefix LAW_ forces IMPERATIVE
//  2. explicit category tag (or name)
//  3. whole-word subject mapping
//  4. substring keyword scan in keywordOrder
//  5. UNCATEGORIZED
//
// Pure function of (id, name, tags); tag order never matters.
func Categorize(id, name string, tags []string) domain.Category {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(id)), idOverridePrefix) {
		return domain.Imperative
	}

	fields := make([]string, 0, len(tags)+1)
	for _, t := range tags {
		fields = append(fields, strings.ToUpper(strings.TrimSpace(t)))
	}
	fields = append(fields, strings.ToUpper(strings.TrimSpace(name)))

	for _, f := range fields {
		if cat, ok := canonical[f]; ok {
			return cat
		}
	}

	for _, f := range fields {
		if cat, ok := subjects[f]; ok {
			return cat
		}
		if strings.HasPrefix(f, "VOCAB") {
			return domain.Meaning
		}
	}

	for _, cat := range keywordOrder {
		for _, kw := range keywords[cat] {
			for _, f := range fields {
				if strings.Contains(f, kw) {
					return cat
				}
			}
		}
	}

	return domain.Uncategorized
}
