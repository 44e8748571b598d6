package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pbaille/taxon/internal/domain"
)

func TestCategorize_IDOverride(t *testing.T) {
	tests := []struct {
		name string
		id   string
		tags []string
	}{
		{"plain law id", "LAW_01", nil},
		{"lowercase id", "law_17", nil},
		{"beats explicit category tag", "LAW_02", []string{"SUBSTANCE"}},
		{"beats subject tag", "LAW_03", []string{"CHEMISTRY"}},
		{"beats keyword tags", "LAW_04", []string{"atom", "dna", "geometry"}},
		{"surrounding whitespace", "  LAW_05  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, domain.Imperative, Categorize(tt.id, "Anything", tt.tags))
		})
	}
}

func TestCategorize_ExplicitCategoryTag(t *testing.T) {
	tests := []struct {
		name string
		id   string
		n    string
		tags []string
		want domain.Category
	}{
		{"exact upper tag", "E1", "Something", []string{"SUBSTANCE"}, domain.Substance},
		{"lowercase tag", "E2", "Something", []string{"organism"}, domain.Organism},
		{"mixed case tag", "E3", "Something", []string{"Entropy"}, domain.Entropy},
		{"name is a category", "E4", "meaning", nil, domain.Meaning},
		{"later tag still counts", "E5", "Something", []string{"misc", "QUANTITY"}, domain.Quantity},
		{"explicit beats keyword in other tag", "E6", "Something", []string{"atom", "ALGORITHM"}, domain.Algorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.id, tt.n, tt.tags))
		})
	}
}

func TestCategorize_SubjectMapping(t *testing.T) {
	tests := []struct {
		tag  string
		want domain.Category
	}{
		{"ENGLISH", domain.Meaning},
		{"vocabulary", domain.Meaning},
		{"VOCAB", domain.Meaning},
		{"vocab_list", domain.Meaning},
		{"physics", domain.Mechanism},
		{"EARTH", domain.Mechanism},
		{"earth_science", domain.Mechanism},
		{"math", domain.Quantity},
		{"Mathematics", domain.Quantity},
		{"chemistry", domain.Substance},
		{"psychology", domain.Organism},
		{"biology", domain.Organism},
		{"python", domain.Algorithm},
		{"CS", domain.Algorithm},
		{"computer science", domain.Algorithm},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize("X1", "Untitled", []string{tt.tag}))
		})
	}
}

func TestCategorize_KeywordInference(t *testing.T) {
	tests := []struct {
		name string
		n    string
		tags []string
		want domain.Category
	}{
		{"substance keyword in tag", "Something", []string{"periodic table"}, domain.Substance},
		{"keyword in name only", "Atom basics", nil, domain.Substance},
		{"organism", "Something", []string{"cell division"}, domain.Organism},
		{"algorithm", "Something", []string{"sorting code"}, domain.Algorithm},
		{"quantity prefix", "BIN_0042", nil, domain.Quantity},
		{"mechanism", "Something", []string{"kinetic theory"}, domain.Mechanism},
		{"entropy", "Random noise floor", nil, domain.Entropy},
		{"meaning", "Something", []string{"terminology"}, domain.Meaning},
		{"imperative substring", "Something", []string{"protocols"}, domain.Imperative},
		// Domain order decides when several domains hit: IMPERATIVE
		// outranks SUBSTANCE outranks MECHANISM.
		{"imperative wins over substance", "Something", []string{"atom", "standard"}, domain.Imperative},
		{"substance wins over mechanism", "Something", []string{"energy", "molecule"}, domain.Substance},
		{"organism wins over meaning", "Something", []string{"wordy", "biopsy"}, domain.Organism},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize("X1", tt.n, tt.tags))
		})
	}
}

func TestCategorize_Fallback(t *testing.T) {
	assert.Equal(t, domain.Uncategorized, Categorize("X1", "Untitled", nil))
	assert.Equal(t, domain.Uncategorized, Categorize("X1", "Misc stuff", []string{"odds", "ends"}))
}

func TestCategorize_TagOrderIrrelevant(t *testing.T) {
	a := Categorize("X1", "Something", []string{"atom", "cellular"})
	b := Categorize("X1", "Something", []string{"cellular", "atom"})
	assert.Equal(t, a, b, "keyword scan runs per domain, not per tag")
	assert.Equal(t, domain.Substance, a)
}
