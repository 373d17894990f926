package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	Version, Commit, Date = "1.0.0", "unknown", "unknown"
	assert.True(t, strings.HasPrefix(String(), "colortune version 1.0.0 ("))

	Commit, Date = "0123456789abcdef", "2026-01-01T00:00:00Z"
	assert.Contains(t, String(), "commit: 01234567,")
	assert.Contains(t, String(), "built: 2026-01-01T00:00:00Z")

	Commit = "abc"
	assert.Contains(t, String(), "commit: abc,")
}

func TestUserAgent(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "2.1.0"
	assert.Equal(t, "colortune/2.1.0", UserAgent())
	assert.Equal(t, "2.1.0", GetInfo().Version)
}
