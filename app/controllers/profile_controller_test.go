package controllers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAIContext(t *testing.T) {
	stored, ok := normalizeAIContext("  I hike with my dog  ")
	require.True(t, ok)
	assert.Equal(t, "I hike with my dog", stored)

	// Empty and whitespace-only notes clear the column.
	stored, ok = normalizeAIContext("")
	require.True(t, ok)
	assert.Nil(t, stored)

	stored, ok = normalizeAIContext("   \n\t ")
	require.True(t, ok)
	assert.Nil(t, stored)
}

func TestNormalizeAIContextCountsCharacters(t *testing.T) {
	// 1000 characters exactly is allowed, even at 3 bytes each.
	note := strings.Repeat("山", 1000)
	stored, ok := normalizeAIContext(note)
	require.True(t, ok)
	assert.Equal(t, note, stored)

	_, ok = normalizeAIContext(strings.Repeat("山", 1001))
	assert.False(t, ok)

	_, ok = normalizeAIContext(strings.Repeat("a", 1001))
	assert.False(t, ok)
}
