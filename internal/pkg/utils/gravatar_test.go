package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGravatarURL(t *testing.T) {
	// Hash of "hiker@example.com"; trim and case must not change it.
	want := GravatarURL("hiker@example.com", 200)

	assert.Equal(t, want, GravatarURL("  hiker@example.com ", 200))
	assert.Equal(t, want, GravatarURL("HIKER@Example.COM", 200))
	assert.Contains(t, want, "s=200")
	assert.Contains(t, want, "d=mp")

	assert.Contains(t, GravatarURL("hiker@example.com", 0), "s=200")
	assert.Contains(t, GravatarURL("hiker@example.com", 80), "s=80")
}
