package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnifiedDiff(t *testing.T) {
	got := UnifiedDiff("default", ".env", "A=1\nB=2\n", "A=1\nB=3\nC=4\n")

	want := "--- a/default\n" +
		"+++ b/.env\n" +
		"@@ -1,2 +1,3 @@\n" +
		" A=1\n" +
		"-B=2\n" +
		"+B=3\n" +
		"+C=4\n"
	assert.Equal(t, want, got)
}

func TestUnifiedDiff_Equal(t *testing.T) {
	assert.Empty(t, UnifiedDiff("default", ".env", "A=1\n", "A=1\n"))
}

func TestUnifiedDiff_FromEmpty(t *testing.T) {
	got := UnifiedDiff("default", ".env", "", "A=1\n")
	assert.Equal(t, "--- a/default\n+++ b/.env\n@@ -0,0 +1,1 @@\n+A=1\n", got)
}
