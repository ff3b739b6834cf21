package core

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
	"go.uber.org/zap/zaptest"

	"github.com/illarion/envlock/internal/crypto"
	"github.com/illarion/envlock/internal/format"
	"github.com/illarion/envlock/internal/secrets"
	"github.com/illarion/envlock/internal/storage"
)

var testPassword = []byte("test123")

func fastKDF() (*crypto.KDF, error) {
	salt, err := crypto.GenerateRandom(crypto.SaltSize)
	if err != nil {
		return nil, err
	}
	return &crypto.KDF{Salt: salt, Time: 1, Memory: 1024, Threads: 1}, nil
}

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	return New(t.TempDir(), zaptest.NewLogger(t), WithKDF(fastKDF))
}

func initTestVault(t *testing.T) *Vault {
	t.Helper()
	v := newTestVault(t)
	require.NoError(t, v.Init(testPassword))
	return v
}

func TestInit(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.Init(testPassword))
	assert.ErrorIs(t, v.Init(testPassword), ErrAlreadyExists)

	_, err := os.Stat(v.Path())
	assert.NoError(t, err)

	id, err := v.GetVaultID()
	require.NoError(t, err)
	assert.Len(t, id, 32)
}

func TestInit_EmptyPassword(t *testing.T) {
	v := newTestVault(t)

	assert.ErrorIs(t, v.Init(nil), ErrPasswordRequired)
	_, err := os.Stat(v.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestNotInitialized(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	_, err := v.List(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = v.Push(ctx, testPassword, "default", secrets.New())
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = v.Snapshot(ctx, testPassword, "default")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = v.Status(ctx, ".env")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, v.VerifyPassword(testPassword), ErrNotInitialized)
	assert.ErrorIs(t, v.Compact(), ErrNotInitialized)
}

func TestPushAndSnapshot(t *testing.T) {
	ctx := context.Background()
	v := initTestVault(t)

	m := secrets.FromPairs("ZETA", "last", "ALPHA", "hello world", "MULTI", "a\nb")
	entry, err := v.Push(ctx, testPassword, "default", m)
	require.NoError(t, err)
	assert.Equal(t, "default", entry.Name)
	assert.Equal(t, 3, entry.Keys)
	assert.Positive(t, entry.Size)

	assert.Equal(t, vaultFingerprint(t, v, m), entry.Hash)

	got, err := v.Snapshot(ctx, testPassword, "default")
	require.NoError(t, err)
	assert.Equal(t, m.Keys(), got.Keys())
	assert.True(t, m.Equal(got))

	// Push replaces the snapshot
	_, err = v.Push(ctx, testPassword, "default", secrets.FromPairs("ONLY", "1"))
	require.NoError(t, err)
	got, err = v.Snapshot(ctx, testPassword, "default")
	require.NoError(t, err)
	assert.Equal(t, []string{"ONLY"}, got.Keys())
}

func TestWrongPassword(t *testing.T) {
	ctx := context.Background()
	v := initTestVault(t)
	_, err := v.Push(ctx, testPassword, "default", secrets.FromPairs("A", "1"))
	require.NoError(t, err)

	_, err = v.Snapshot(ctx, []byte("nope"), "default")
	assert.ErrorIs(t, err, ErrWrongPassword)
	_, err = v.Push(ctx, []byte("nope"), "default", secrets.New())
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.ErrorIs(t, v.Remove(ctx, []byte("nope"), "default"), ErrWrongPassword)
	assert.ErrorIs(t, v.VerifyPassword([]byte("nope")), ErrWrongPassword)
	assert.ErrorIs(t, v.VerifyPassword(nil), ErrPasswordRequired)
	assert.NoError(t, v.VerifyPassword(testPassword))
}

func TestSnapshotNotFound(t *testing.T) {
	ctx := context.Background()
	v := initTestVault(t)

	_, err := v.Snapshot(ctx, testPassword, "missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.ErrorIs(t, v.Remove(ctx, testPassword, "missing"), ErrSnapshotNotFound)
}

func TestSnapshotBoundToName(t *testing.T) {
	ctx := context.Background()
	v := initTestVault(t)
	_, err := v.Push(ctx, testPassword, "a", secrets.FromPairs("A", "1"))
	require.NoError(t, err)

	db, err := storage.Open(v.Path())
	require.NoError(t, err)
	sealed, err := db.GetSnapshot("a")
	require.NoError(t, err)
	require.NoError(t, db.PutSnapshot(storage.IndexEntry{Name: "b"}, sealed))
	require.NoError(t, db.Close())

	_, err = v.Snapshot(ctx, testPassword, "b")
	assert.ErrorIs(t, err, crypto.ErrAuthFailed)
}

func TestRemoveAndList(t *testing.T) {
	ctx := context.Background()
	v := initTestVault(t)

	for _, name := range []string{"staging", "default", "production"} {
		_, err := v.Push(ctx, testPassword, name, secrets.FromPairs("K", name))
		require.NoError(t, err)
	}

	entries, err := v.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"default", "production", "staging"}, names)

	require.NoError(t, v.Remove(ctx, testPassword, "production"))
	entries, err = v.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	v := initTestVault(t)
	m := secrets.FromPairs("A", "1", "B", "2")
	_, err := v.Push(ctx, testPassword, "default", m)
	require.NoError(t, err)
	_, err = v.Push(ctx, testPassword, "prod", m)
	require.NoError(t, err)

	assert.ErrorIs(t, v.ChangePassword([]byte("nope"), []byte("new")), ErrWrongPassword)

	newPassword := []byte("new-password")
	require.NoError(t, v.ChangePassword(testPassword, newPassword))

	_, err = v.Snapshot(ctx, testPassword, "default")
	assert.ErrorIs(t, err, ErrWrongPassword)

	for _, name := range []string{"default", "prod"} {
		got, err := v.Snapshot(ctx, newPassword, name)
		require.NoError(t, err)
		assert.True(t, m.Equal(got))
	}
}

func TestCompact(t *testing.T) {
	ctx := context.Background()
	v := initTestVault(t)
	_, err := v.Push(ctx, testPassword, "default", secrets.FromPairs("A", "1"))
	require.NoError(t, err)

	require.NoError(t, v.Compact())

	got, err := v.Snapshot(ctx, testPassword, "default")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	v := initTestVault(t)
	envPath := filepath.Join(v.dir, ".env")

	m := secrets.FromPairs("A", "1", "B", "two words")
	_, err := v.Push(ctx, testPassword, "default", m)
	require.NoError(t, err)
	_, err = v.Push(ctx, testPassword, "other", secrets.FromPairs("A", "2"))
	require.NoError(t, err)

	status, err := v.Status(ctx, ".env")
	require.NoError(t, err)
	assert.False(t, status.EnvPresent)
	assert.Positive(t, status.Size)
	assert.Equal(t, storage.FormatVersion, status.Version)
	require.Len(t, status.Snapshots, 2)
	assert.False(t, status.Snapshots[0].InSync)
	assert.Empty(t, status.KDF.Salt)

	require.NoError(t, os.WriteFile(envPath, []byte("# local\nA=1\nB=\"two words\"\n"), 0o600))
	status, err = v.Status(ctx, ".env")
	require.NoError(t, err)
	assert.True(t, status.EnvPresent)
	assert.Equal(t, 2, status.EnvKeys)
	assert.True(t, status.Snapshots[0].InSync)
	assert.False(t, status.Snapshots[1].InSync)

	require.NoError(t, os.WriteFile(envPath, []byte("not a pair\n"), 0o600))
	status, err = v.Status(ctx, ".env")
	require.NoError(t, err)
	assert.Error(t, status.EnvErr)
	assert.False(t, status.Snapshots[0].InSync)
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"default", false},
		{"prod-eu.1", false},
		{"", true},
		{"a/b", true},
		{"with space", true},
		{"tab\there", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func vaultFingerprint(t *testing.T, v *Vault, m *secrets.Map) string {
	t.Helper()
	db, err := storage.Open(v.Path())
	require.NoError(t, err)
	defer db.Close()

	p, err := db.FingerprintParams()
	require.NoError(t, err)
	hash, err := Fingerprint(p, m)
	require.NoError(t, err)
	return hash
}

func testFingerprintParams(t *testing.T) storage.FingerprintParams {
	t.Helper()
	p, err := newFingerprintParams(storage.KDFParams{Time: 1, Memory: 1024, Threads: 1})
	require.NoError(t, err)
	return p
}

func TestFingerprint(t *testing.T) {
	p := testFingerprintParams(t)

	a, err := Fingerprint(p, secrets.FromPairs("A", "1", "B", "2"))
	require.NoError(t, err)
	b, err := Fingerprint(p, secrets.FromPairs("B", "2", "A", "1"))
	require.NoError(t, err)
	c, err := Fingerprint(p, secrets.FromPairs("A", "1", "B", "2"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)
	assert.Len(t, a, 64)
}

func TestFingerprint_Keyed(t *testing.T) {
	m := secrets.FromPairs("PASSWORD", "hunter2")
	text, err := format.Render(m, format.Env)
	require.NoError(t, err)
	plain := blake3.Sum256([]byte(text))

	a, err := Fingerprint(testFingerprintParams(t), m)
	require.NoError(t, err)
	b, err := Fingerprint(testFingerprintParams(t), m)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, hex.EncodeToString(plain[:]), a)

	_, err = Fingerprint(storage.FingerprintParams{Key: []byte("short")}, m)
	assert.Error(t, err)
}

func TestFingerprint_DiffersAcrossVaults(t *testing.T) {
	ctx := context.Background()
	m := secrets.FromPairs("A", "1")

	first, err := initTestVault(t).Push(ctx, testPassword, "default", m)
	require.NoError(t, err)
	second, err := initTestVault(t).Push(ctx, testPassword, "default", m)
	require.NoError(t, err)

	assert.NotEqual(t, first.Hash, second.Hash)
}

func TestFingerprint_SurvivesPasswordChange(t *testing.T) {
	ctx := context.Background()
	v := initTestVault(t)
	require.NoError(t, os.WriteFile(filepath.Join(v.dir, ".env"), []byte("A=1\n"), 0o600))
	_, err := v.Push(ctx, testPassword, "default", secrets.FromPairs("A", "1"))
	require.NoError(t, err)

	require.NoError(t, v.ChangePassword(testPassword, []byte("new-password")))

	status, err := v.Status(ctx, ".env")
	require.NoError(t, err)
	require.Len(t, status.Snapshots, 1)
	assert.True(t, status.Snapshots[0].InSync)
}

func TestFingerprint_CreatedForOlderVaults(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	kdf, err := fastKDF()
	require.NoError(t, err)
	sealer, err := crypto.NewSealer(kdf.DeriveKey(testPassword))
	require.NoError(t, err)
	check, err := sealer.Seal(checkLabel, []byte(checkPlaintext))
	require.NoError(t, err)
	sealer.Destroy()

	db, err := storage.Open(v.Path())
	require.NoError(t, err)
	require.NoError(t, db.Initialize(paramsFromKDF(kdf), check))
	require.NoError(t, db.Close())

	require.NoError(t, os.WriteFile(filepath.Join(v.dir, ".env"), []byte("A=1\n"), 0o600))
	status, err := v.Status(ctx, ".env")
	require.NoError(t, err)
	assert.Empty(t, status.Snapshots)

	entry, err := v.Push(ctx, testPassword, "default", secrets.FromPairs("A", "1"))
	require.NoError(t, err)
	assert.Equal(t, vaultFingerprint(t, v, secrets.FromPairs("A", "1")), entry.Hash)

	status, err = v.Status(ctx, ".env")
	require.NoError(t, err)
	require.Len(t, status.Snapshots, 1)
	assert.True(t, status.Snapshots[0].InSync)
}
