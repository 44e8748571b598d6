package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescription(t *testing.T) {
	for _, c := range Categories {
		assert.NotEmpty(t, c.Description())
	}
	// Unknown categories fall back to the uncategorized description.
	assert.Equal(t, Uncategorized.Description(), Category("BOGUS").Description())
}
