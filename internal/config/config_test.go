package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/envlock/internal/diffview"
	"github.com/illarion/envlock/internal/format"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
env_file: .env.local
snapshot: staging
format: yaml
diff_format: side-by-side
local_only: [DEBUG, LOCAL_PORT]
color: never
`))
	require.NoError(t, err)

	assert.Equal(t, Config{
		EnvFile:    ".env.local",
		Snapshot:   "staging",
		Format:     format.YAML,
		DiffFormat: diffview.SideBySide,
		LocalOnly:  []string{"DEBUG", "LOCAL_PORT"},
		Color:      ColorNever,
	}, cfg)
}

func TestParse_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Parse([]byte("snapshot: prod\n"))
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Snapshot)
	assert.Equal(t, ".env", cfg.EnvFile)
	assert.Equal(t, format.Env, cfg.Format)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown field", "enviroment: prod\n"},
		{"bad format", "format: toml\n"},
		{"bad diff format", "diff_format: split\n"},
		{"bad color", "color: sometimes\n"},
		{"malformed", "local_only: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParse_UnknownFormatIsTyped(t *testing.T) {
	_, err := Parse([]byte("format: toml\n"))
	assert.ErrorIs(t, err, format.ErrUnknownFormat)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(PathEnv, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(FileName, []byte("snapshot: local\n"), 0o644))
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Snapshot)

	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("snapshot: other\n"), 0o644))
	t.Setenv(PathEnv, other)
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.Snapshot)

	t.Setenv(PathEnv, filepath.Join(dir, "missing.yaml"))
	_, err = Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseColorMode(t *testing.T) {
	m, err := ParseColorMode("always")
	require.NoError(t, err)
	assert.Equal(t, ColorAlways, m)

	_, err = ParseColorMode("")
	assert.Error(t, err)
}
