package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/taxon/internal/domain"
)

func TestParseEntries_StructuredArray(t *testing.T) {
	raw := `[
		{"ubp_id": "UBP-1", "name": "Hydrogen", "tags": ["CHEMISTRY"], "fingerprint": "abc123", "score": 0.92},
		{"identifier": "UBP-2", "name": "Mitosis"},
		{"name": "No id at all"}
	]`

	entries := ParseEntries(raw)
	require.Len(t, entries, 3)

	assert.Equal(t, "UBP-1", entries[0].ID)
	assert.Equal(t, "Hydrogen", entries[0].Name)
	assert.Equal(t, []string{"CHEMISTRY"}, entries[0].Tags)
	assert.Equal(t, "abc123", entries[0].Fingerprint)
	require.NotNil(t, entries[0].Score)
	assert.InDelta(t, 0.92, *entries[0].Score, 1e-9)
	assert.Equal(t, domain.SourceStructured, entries[0].SourceFormat)

	assert.Equal(t, "UBP-2", entries[1].ID)
	assert.Empty(t, entries[1].Tags)

	assert.Equal(t, "UNKNOWN", entries[2].ID)
	assert.Equal(t, "No id at all", entries[2].Name)
}

func TestParseEntries_StructuredObject(t *testing.T) {
	// Object values are treated as an array, keys visited in sorted order.
	raw := `{
		"z_last": {"identifier": "Z1", "name": "Zeta"},
		"a_first": {"identifier": "A1", "name": "Alpha"}
	}`

	entries := ParseEntries(raw)
	require.Len(t, entries, 2)
	assert.Equal(t, "A1", entries[0].ID)
	assert.Equal(t, "Z1", entries[1].ID)
}

func TestParseEntries_StructuredDefaults(t *testing.T) {
	entries := ParseEntries(`[{}]`)
	require.Len(t, entries, 1)
	assert.Equal(t, "UNKNOWN", entries[0].ID)
	assert.Equal(t, "Untitled", entries[0].Name)
	assert.Empty(t, entries[0].Tags)
	assert.Empty(t, entries[0].Fingerprint)
	assert.Nil(t, entries[0].Score)
}

func TestParseEntries_StructuredSkipsNonObjects(t *testing.T) {
	entries := ParseEntries(`[{"identifier": "K1"}, "just a string", 42]`)
	require.Len(t, entries, 1)
	assert.Equal(t, "K1", entries[0].ID)
}

func TestParseEntries_BulletLines(t *testing.T) {
	raw := "- [x] **ID1**: Some description. Tags: chemistry, lab\n" +
		"- [ ] **ID2**: Plain entry with no tags clause\n"

	entries := ParseEntries(raw)
	require.Len(t, entries, 2)

	assert.Equal(t, "ID1", entries[0].ID)
	assert.Equal(t, "Some description.", entries[0].Name)
	assert.Equal(t, []string{"chemistry", "lab"}, entries[0].Tags)
	assert.Equal(t, domain.SourceLine, entries[0].SourceFormat)

	assert.Equal(t, "ID2", entries[1].ID)
	assert.Equal(t, "Plain entry with no tags clause", entries[1].Name)
	assert.Empty(t, entries[1].Tags)
}

func TestParseEntries_BraceLines(t *testing.T) {
	raw := "Header line, ignored\n" +
		`{"identifier": "J1", "name": "Inline object", "tags": ["math"]},` + "\n" +
		"{this is broken json}\n" +
		`{"identifier": "J2", "name": "Another"}` + "\n"

	entries := ParseEntries(raw)
	require.Len(t, entries, 2)
	assert.Equal(t, "J1", entries[0].ID)
	assert.Equal(t, []string{"math"}, entries[0].Tags)
	assert.Equal(t, "J2", entries[1].ID)
}

func TestParseEntries_InterleavedForms(t *testing.T) {
	raw := "- [x] **B1**: Bullet first\n" +
		`{"identifier": "J1", "name": "Brace second"},` + "\n" +
		"- [x] **B2**: Bullet third\n"

	entries := ParseEntries(raw)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"B1", "J1", "B2"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestParseEntries_JSONFirstPrecedence(t *testing.T) {
	// A valid JSON document containing bullet-looking text must not be
	// line scanned.
	raw := `[{"identifier": "R1", "name": "- [x] **FAKE**: not an entry"}]`

	entries := ParseEntries(raw)
	require.Len(t, entries, 1)
	assert.Equal(t, "R1", entries[0].ID)
}

func TestParseEntries_Garbage(t *testing.T) {
	assert.Empty(t, ParseEntries(""))
	assert.Empty(t, ParseEntries("not json and no bullets"))
	assert.Empty(t, ParseEntries("12345"))
}
