package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/taxon/internal/domain"
)

func TestClassify_Empty(t *testing.T) {
	for _, raw := range []string{"", "not json and no bullets"} {
		result := Classify(raw)
		assert.Empty(t, result.Entries)
		assert.Empty(t, result.Stats)
	}
}

func TestClassify_StructuredEntry(t *testing.T) {
	result := Classify(`[{"ubp_id":"UBP-1","name":"Test","tags":["CHEMISTRY"]}]`)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, domain.Substance, result.Entries[0].Label)

	require.Len(t, result.Stats, 1)
	assert.Equal(t, domain.Substance, result.Stats[0].Label)
	assert.Equal(t, 1, result.Stats[0].Count)
	assert.Equal(t, 100.0, result.Stats[0].Percentage)
}

func TestClassify_OverrideBeatsExplicitTag(t *testing.T) {
	result := Classify(`[{"ubp_id":"LAW_01","name":"Test","tags":["SUBSTANCE"]}]`)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, domain.Imperative, result.Entries[0].Label)
}

func TestClassify_MarkdownBullet(t *testing.T) {
	result := Classify("- [x] **ID1**: Some description. Tags: chemistry, lab\n")
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "ID1", result.Entries[0].ID)
	assert.Equal(t, []string{"chemistry", "lab"}, result.Entries[0].Tags)
	assert.Equal(t, domain.Substance, result.Entries[0].Label)
}

func TestClassify_Idempotent(t *testing.T) {
	raw := `[
		{"ubp_id":"LAW_01","name":"Conservation"},
		{"ubp_id":"K1","tags":["biology"]},
		{"ubp_id":"K2","name":"Atom"}
	]`
	first := Classify(raw)
	second := Classify(raw)
	assert.Equal(t, first, second)
}

func TestAggregate_Percentages(t *testing.T) {
	entries := []domain.KnowledgeEntry{
		{ID: "1", Label: domain.Substance},
		{ID: "2", Label: domain.Substance},
		{ID: "3", Label: domain.Organism},
	}

	stats := Aggregate(entries)
	require.Len(t, stats, 2)

	// Sorted count descending.
	assert.Equal(t, domain.Substance, stats[0].Label)
	assert.Equal(t, 2, stats[0].Count)
	assert.InDelta(t, 66.7, stats[0].Percentage, 1e-9)
	assert.Equal(t, domain.Organism, stats[1].Label)
	assert.InDelta(t, 33.3, stats[1].Percentage, 1e-9)

	var sum float64
	for _, st := range stats {
		sum += st.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.2)

	assert.Equal(t, domain.Substance.Description(), stats[0].Description)
}

func TestAggregate_TieBreakLexical(t *testing.T) {
	entries := []domain.KnowledgeEntry{
		{ID: "1", Label: domain.Quantity},
		{ID: "2", Label: domain.Entropy},
		{ID: "3", Label: domain.Meaning},
	}

	stats := Aggregate(entries)
	require.Len(t, stats, 3)
	assert.Equal(t, domain.Entropy, stats[0].Label)
	assert.Equal(t, domain.Meaning, stats[1].Label)
	assert.Equal(t, domain.Quantity, stats[2].Label)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}
