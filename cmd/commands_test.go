package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/illarion/envlock/internal/config"
	"github.com/illarion/envlock/internal/core"
	"github.com/illarion/envlock/internal/crypto"
	"github.com/illarion/envlock/internal/diffview"
	"github.com/illarion/envlock/internal/format"
)

const snapshotEnv = "A=1\nB=2\n"

func fastKDF() (*crypto.KDF, error) {
	salt, err := crypto.GenerateRandom(crypto.SaltSize)
	if err != nil {
		return nil, err
	}
	return &crypto.KDF{Salt: salt, Time: 1, Memory: 1024, Threads: 1}, nil
}

type testApp struct {
	*App
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

// newTestApp initializes a vault in a temp dir and pushes snapshotEnv as
// the default snapshot
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	t.Setenv(core.PasswordEnv, "test123")

	ta := &testApp{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	ta.App = &App{
		Dir:          t.TempDir(),
		Config:       config.Default(),
		Logger:       zaptest.NewLogger(t),
		Out:          ta.out,
		Err:          ta.errOut,
		VaultOptions: []core.Option{core.WithKDF(fastKDF)},
	}
	require.NoError(t, Init(ta.App))

	src := ta.path("pushed.env")
	writeEnv(t, src, snapshotEnv)
	require.NoError(t, Push(context.Background(), ta.App, PushOptions{EnvFile: src, Snapshot: "default"}))
	ta.out.Reset()
	ta.errOut.Reset()
	return ta
}

func (ta *testApp) path(name string) string {
	return filepath.Join(ta.Dir, name)
}

func writeEnv(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readEnv(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPull(t *testing.T) {
	tests := []struct {
		name     string
		existing string // empty means no file
		force    bool
		wantErr  error
		errText  string
		wantFile string
		wantOut  string
	}{
		{name: "missing file is written", wantFile: snapshotEnv, wantOut: "pulled 2 keys"},
		{name: "identical file is kept", existing: snapshotEnv, wantFile: snapshotEnv, wantOut: "up to date"},
		{
			name:     "differing file is refused",
			existing: "A=1\nB=3\n",
			wantErr:  ErrWouldOverwrite,
			errText:  "Modified: 1",
			wantFile: "A=1\nB=3\n",
		},
		{
			name:     "reordered file is refused",
			existing: "B=2\nA=1\n",
			wantErr:  ErrWouldOverwrite,
			errText:  "key order differs",
			wantFile: "B=2\nA=1\n",
		},
		{name: "force overwrites a differing file", existing: "A=1\nB=3\n", force: true, wantFile: snapshotEnv},
		{
			name:     "unparseable file is refused",
			existing: "not a pair\n",
			wantErr:  ErrWouldOverwrite,
			errText:  "cannot be parsed",
			wantFile: "not a pair\n",
		},
		{name: "force overwrites an unparseable file", existing: "not a pair\n", force: true, wantFile: snapshotEnv},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			envFile := ta.path(".env")
			if tt.existing != "" {
				writeEnv(t, envFile, tt.existing)
			}

			err := Pull(context.Background(), ta.App, PullOptions{EnvFile: envFile, Snapshot: "default", Force: tt.force})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.errText)
			} else {
				require.NoError(t, err)
				assert.Contains(t, ta.out.String(), tt.wantOut)
			}
			assert.Equal(t, tt.wantFile, readEnv(t, envFile))
		})
	}
}

func TestPull_SnapshotNotFound(t *testing.T) {
	ta := newTestApp(t)
	err := Pull(context.Background(), ta.App, PullOptions{EnvFile: ta.path(".env"), Snapshot: "missing"})
	assert.ErrorIs(t, err, core.ErrSnapshotNotFound)
}

func TestDiff_ExitCode(t *testing.T) {
	tests := []struct {
		name      string
		local     string
		configLO  []string
		flagLO    []string
		raw       bool
		exitCode  bool
		wantErr   error
		wantInOut string
	}{
		{name: "equal", local: snapshotEnv, exitCode: true},
		{name: "unflagged local key", local: snapshotEnv + "DEBUG=1\n", exitCode: true, wantErr: ErrChangesFound, wantInOut: "DEBUG"},
		{name: "local-only from config", local: snapshotEnv + "DEBUG=1\n", configLO: []string{"DEBUG"}, exitCode: true, wantInOut: "DEBUG"},
		{name: "local-only from flag", local: snapshotEnv + "DEBUG=1\n", flagLO: []string{"DEBUG"}, exitCode: true},
		{
			name:     "config and flag are merged",
			local:    snapshotEnv + "DEBUG=1\nPORT=8080\n",
			configLO: []string{"DEBUG"},
			flagLO:   []string{"PORT"},
			exitCode: true,
		},
		{
			name:     "flag does not replace config",
			local:    snapshotEnv + "DEBUG=1\nPORT=8080\n",
			configLO: []string{"DEBUG"},
			exitCode: true,
			wantErr:  ErrChangesFound,
		},
		{name: "modified value", local: "A=1\nB=3\n", exitCode: true, wantErr: ErrChangesFound},
		{name: "changes without exit code", local: "A=1\nB=3\n"},
		{name: "raw with changes", local: "A=1\nB=3\n", raw: true, exitCode: true, wantErr: ErrChangesFound, wantInOut: "+B=3"},
		{name: "raw equal", local: snapshotEnv, raw: true, exitCode: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			ta.Config.LocalOnly = tt.configLO
			envFile := ta.path(".env")
			writeEnv(t, envFile, tt.local)

			err := Diff(context.Background(), ta.App, DiffOptions{
				EnvFile:   envFile,
				Snapshot:  "default",
				Format:    diffview.Inline,
				LocalOnly: tt.flagLO,
				Color:     config.ColorNever,
				Raw:       tt.raw,
				ExitCode:  tt.exitCode,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, ta.out.String(), tt.wantInOut)
		})
	}
}

func TestDiff_MissingEnvFile(t *testing.T) {
	ta := newTestApp(t)
	err := Diff(context.Background(), ta.App, DiffOptions{
		EnvFile:  ta.path("absent.env"),
		Snapshot: "default",
		Format:   diffview.Inline,
		Color:    config.ColorNever,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestExport_Output(t *testing.T) {
	tests := []struct {
		name     string
		existing bool
	}{
		{name: "new file"},
		{name: "existing world-readable file", existing: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			output := ta.path("exported.env")
			if tt.existing {
				require.NoError(t, os.WriteFile(output, []byte("OLD=1\n"), 0o644))
				require.NoError(t, os.Chmod(output, 0o644))
			}

			err := Export(context.Background(), ta.App, ExportOptions{Snapshot: "default", Format: format.Env, Output: output})
			require.NoError(t, err)

			info, err := os.Stat(output)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
			assert.Equal(t, snapshotEnv, readEnv(t, output))
			assert.Empty(t, ta.out.String())
			assert.Contains(t, ta.errOut.String(), "exported 2 keys")
		})
	}
}

func TestExport_Stdout(t *testing.T) {
	ta := newTestApp(t)
	err := Export(context.Background(), ta.App, ExportOptions{Snapshot: "default", Format: format.JSON})
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":"1","B":"2"}`, ta.out.String())
}

func TestPush_MissingEnvFile(t *testing.T) {
	ta := newTestApp(t)
	err := Push(context.Background(), ta.App, PushOptions{EnvFile: ta.path("absent.env"), Snapshot: "default"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestStatusAndListNames(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t)
	envFile := ta.path(".env")
	writeEnv(t, envFile, snapshotEnv)

	require.NoError(t, Status(ctx, ta.App, envFile))
	assert.Contains(t, ta.out.String(), "[in sync]")

	ta.out.Reset()
	require.NoError(t, ListNames(ctx, ta.App))
	assert.Equal(t, "default\n", ta.out.String())
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t)

	assert.Error(t, Remove(ctx, ta.App, nil))
	assert.ErrorIs(t, Remove(ctx, ta.App, []string{"missing"}), core.ErrSnapshotNotFound)

	require.NoError(t, Remove(ctx, ta.App, []string{"default"}))
	assert.Contains(t, ta.out.String(), "removed: default")

	ta.out.Reset()
	require.NoError(t, ListNames(ctx, ta.App))
	assert.Empty(t, ta.out.String())
}

func TestWrongPasswordIsReturned(t *testing.T) {
	ta := newTestApp(t)
	t.Setenv(core.PasswordEnv, "wrong")

	err := Pull(context.Background(), ta.App, PullOptions{EnvFile: ta.path(".env"), Snapshot: "default", Force: true})
	assert.ErrorIs(t, err, core.ErrWrongPassword)
	_, statErr := os.Stat(ta.path(".env"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompletion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Completion(&out, "bash"))
	assert.Contains(t, out.String(), "complete -F _envlock envlock")

	assert.Error(t, Completion(&out, "powershell"))
}
