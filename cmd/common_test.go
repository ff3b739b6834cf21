package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/illarion/envlock/internal/config"
)

func TestUseColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.True(t, UseColor(config.ColorAlways))
	assert.False(t, UseColor(config.ColorNever))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, UseColor(config.ColorAuto))
	assert.True(t, UseColor(config.ColorAlways))
}

func TestPluralKeys(t *testing.T) {
	assert.Equal(t, "0 keys", pluralKeys(0))
	assert.Equal(t, "1 key", pluralKeys(1))
	assert.Equal(t, "1,200 keys", pluralKeys(1200))
}
