package core

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/illarion/envlock/internal/crypto"
	"github.com/illarion/envlock/internal/format"
	"github.com/illarion/envlock/internal/secrets"
	"github.com/illarion/envlock/internal/storage"
)

const (
	VaultFile = ".envlock"

	checkLabel     = "envlock:check"
	checkPlaintext = "envlock-password-check"
)

var (
	ErrNotInitialized   = errors.New("envlock not initialized")
	ErrAlreadyExists    = errors.New("envlock already exists")
	ErrWrongPassword    = errors.New("wrong password")
	ErrPasswordRequired = errors.New("password required")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrInvalidName      = errors.New("invalid snapshot name")
)

// Vault manages the encrypted snapshots stored in a .envlock file
type Vault struct {
	dir    string
	path   string
	logger *zap.Logger
	newKDF func() (*crypto.KDF, error)
}

// Option configures a Vault
type Option func(*Vault)

// WithKDF replaces the source of fresh KDF parameters used by Init and
// ChangePassword
func WithKDF(fn func() (*crypto.KDF, error)) Option {
	return func(v *Vault) {
		v.newKDF = fn
	}
}

// New creates a Vault for the .envlock file in dir. A nil logger discards
// diagnostics.
func New(dir string, logger *zap.Logger, opts ...Option) *Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Vault{
		dir:    dir,
		path:   filepath.Join(dir, VaultFile),
		logger: logger,
		newKDF: crypto.NewKDF,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Path returns the vault file location
func (v *Vault) Path() string {
	return v.path
}

// ValidateName checks that a snapshot name is usable
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.ContainsFunc(name, func(r rune) bool {
		return r == '/' || r == '\\' || r <= ' ' || r == 0x7f
	}) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Fingerprint hashes the env rendering of m under the vault's fingerprint
// key and stretches the digest with Argon2id, so stored fingerprints cannot
// be checked cheaply against guessed values. Equal maps, including key
// order, have equal fingerprints within one vault.
func Fingerprint(p storage.FingerprintParams, m *secrets.Map) (string, error) {
	text, err := format.Render(m, format.Env)
	if err != nil {
		return "", err
	}
	h, err := blake3.NewKeyed(p.Key)
	if err != nil {
		return "", fmt.Errorf("invalid fingerprint key: %w", err)
	}
	h.Write([]byte(text))
	digest := h.Sum(nil)
	defer crypto.ClearBytes(digest)

	kdf := crypto.KDF{Salt: p.Key, Time: p.Time, Memory: p.Memory, Threads: p.Threads}
	return hex.EncodeToString(kdf.DeriveKey(digest)), nil
}

// newFingerprintParams creates a random fingerprint key with the cost of kdf
func newFingerprintParams(kdf storage.KDFParams) (storage.FingerprintParams, error) {
	key, err := crypto.GenerateRandom(crypto.KeySize)
	if err != nil {
		return storage.FingerprintParams{}, fmt.Errorf("failed to generate fingerprint key: %w", err)
	}
	return storage.FingerprintParams{Key: key, Time: kdf.Time, Memory: kdf.Memory, Threads: kdf.Threads}, nil
}

// fingerprintParams loads the vault's fingerprint settings, creating them
// for vaults written before they existed
func fingerprintParams(db *storage.Storage) (storage.FingerprintParams, error) {
	p, err := db.FingerprintParams()
	if !errors.Is(err, storage.ErrNotFound) {
		return p, err
	}
	kdf, err := db.KDFParams()
	if err != nil {
		return p, fmt.Errorf("failed to read KDF params: %w", err)
	}
	if p, err = newFingerprintParams(kdf); err != nil {
		return p, err
	}
	return p, db.SetFingerprintParams(p)
}

func (v *Vault) open() (*storage.Storage, error) {
	if _, err := os.Stat(v.path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}

	db, err := storage.Open(v.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}

	initialized, err := db.IsInitialized()
	if err != nil || !initialized {
		db.Close()
		return nil, ErrNotInitialized
	}
	return db, nil
}

func kdfFromParams(p storage.KDFParams) *crypto.KDF {
	return &crypto.KDF{Salt: p.Salt, Time: p.Time, Memory: p.Memory, Threads: p.Threads}
}

func paramsFromKDF(k *crypto.KDF) storage.KDFParams {
	return storage.KDFParams{Salt: k.Salt, Time: k.Time, Memory: k.Memory, Threads: k.Threads}
}

// unlock derives the vault key and checks it against the stored check blob
func (v *Vault) unlock(db *storage.Storage, password []byte) (*crypto.Sealer, error) {
	if len(password) == 0 {
		return nil, ErrPasswordRequired
	}

	params, err := db.KDFParams()
	if err != nil {
		return nil, fmt.Errorf("failed to read KDF params: %w", err)
	}
	check, err := db.PasswordCheck()
	if err != nil {
		return nil, fmt.Errorf("failed to read password check: %w", err)
	}

	sealer, err := crypto.NewSealer(kdfFromParams(params).DeriveKey(password))
	if err != nil {
		return nil, err
	}

	plain, err := sealer.Open(checkLabel, check)
	if err != nil || !crypto.ConstantTimeCompare(plain, []byte(checkPlaintext)) {
		sealer.Destroy()
		return nil, ErrWrongPassword
	}
	return sealer, nil
}

// newSealer creates fresh KDF params, a sealer for password and its check blob
func (v *Vault) newSealer(password []byte) (storage.KDFParams, *crypto.Sealer, []byte, error) {
	if len(password) == 0 {
		return storage.KDFParams{}, nil, nil, ErrPasswordRequired
	}

	kdf, err := v.newKDF()
	if err != nil {
		return storage.KDFParams{}, nil, nil, fmt.Errorf("failed to create KDF: %w", err)
	}

	sealer, err := crypto.NewSealer(kdf.DeriveKey(password))
	if err != nil {
		return storage.KDFParams{}, nil, nil, err
	}

	check, err := sealer.Seal(checkLabel, []byte(checkPlaintext))
	if err != nil {
		sealer.Destroy()
		return storage.KDFParams{}, nil, nil, fmt.Errorf("failed to seal password check: %w", err)
	}
	return paramsFromKDF(kdf), sealer, check, nil
}

// Init creates a new .envlock vault protected by password
func (v *Vault) Init(password []byte) error {
	if _, err := os.Stat(v.path); err == nil {
		return ErrAlreadyExists
	}

	params, sealer, check, err := v.newSealer(password)
	if err != nil {
		return err
	}
	defer sealer.Destroy()

	db, err := storage.Open(v.path)
	if err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}

	err = db.Initialize(params, check)
	if err == nil {
		_, err = db.GetOrCreateVaultID()
	}
	if err == nil {
		_, err = fingerprintParams(db)
	}
	db.Close()
	if err != nil {
		os.Remove(v.path)
		return fmt.Errorf("failed to initialize vault: %w", err)
	}

	v.logger.Debug("vault initialized", zap.String("path", v.path))
	return nil
}

// VerifyPassword checks if the password is correct for this vault
func (v *Vault) VerifyPassword(password []byte) error {
	db, err := v.open()
	if err != nil {
		return err
	}
	defer db.Close()

	sealer, err := v.unlock(db, password)
	if err != nil {
		return err
	}
	sealer.Destroy()
	return nil
}

// Push seals m and stores it as snapshot name, replacing any previous
// snapshot of that name.
func (v *Vault) Push(ctx context.Context, password []byte, name string, m *secrets.Map) (*storage.IndexEntry, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := v.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	sealer, err := v.unlock(db, password)
	if err != nil {
		return nil, err
	}
	defer sealer.Destroy()

	plain, err := storage.EncodeSnapshot(db.Codec(), m)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(plain)

	sealed, err := sealer.Seal(name, plain)
	if err != nil {
		return nil, fmt.Errorf("failed to seal snapshot %s: %w", name, err)
	}

	fp, err := fingerprintParams(db)
	if err != nil {
		return nil, err
	}
	hash, err := Fingerprint(fp, m)
	if err != nil {
		return nil, err
	}

	entry := storage.IndexEntry{
		Name:    name,
		Keys:    m.Len(),
		Size:    len(sealed),
		Updated: time.Now().UTC(),
		Hash:    hash,
	}
	if err := db.PutSnapshot(entry, sealed); err != nil {
		return nil, fmt.Errorf("failed to store snapshot %s: %w", name, err)
	}

	v.logger.Debug("snapshot pushed", zap.String("snapshot", name), zap.Int("keys", entry.Keys))
	return &entry, nil
}

// Snapshot decrypts and returns snapshot name
func (v *Vault) Snapshot(ctx context.Context, password []byte, name string) (*secrets.Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := v.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	sealer, err := v.unlock(db, password)
	if err != nil {
		return nil, err
	}
	defer sealer.Destroy()

	sealed, err := db.GetSnapshot(name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	plain, err := sealer.Open(name, sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt snapshot %s: %w", name, err)
	}
	defer crypto.ClearBytes(plain)

	m, err := storage.DecodeSnapshot(db.Codec(), plain)
	if err != nil {
		return nil, err
	}

	v.logger.Debug("snapshot read", zap.String("snapshot", name), zap.Int("keys", m.Len()))
	return m, nil
}

// Remove deletes snapshot name after verifying the password
func (v *Vault) Remove(ctx context.Context, password []byte, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db, err := v.open()
	if err != nil {
		return err
	}
	defer db.Close()

	sealer, err := v.unlock(db, password)
	if err != nil {
		return err
	}
	sealer.Destroy()

	if err := db.DeleteSnapshot(name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return err
	}

	v.logger.Debug("snapshot removed", zap.String("snapshot", name))
	return nil
}

// List returns the snapshot index ordered by name (no password required)
func (v *Vault) List(ctx context.Context) ([]storage.IndexEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := v.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.Index()
}

// ChangePassword re-seals every snapshot under a key derived from
// newPassword. Nothing is written unless every snapshot re-seals.
func (v *Vault) ChangePassword(currentPassword, newPassword []byte) error {
	db, err := v.open()
	if err != nil {
		return err
	}
	defer db.Close()

	current, err := v.unlock(db, currentPassword)
	if err != nil {
		return err
	}
	defer current.Destroy()

	params, next, check, err := v.newSealer(newPassword)
	if err != nil {
		return err
	}
	defer next.Destroy()

	count := 0
	err = db.Reseal(params, check, func(name string, sealed []byte) ([]byte, error) {
		plain, err := current.Open(name, sealed)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt snapshot %s: %w", name, err)
		}
		defer crypto.ClearBytes(plain)
		count++
		return next.Seal(name, plain)
	})
	if err != nil {
		return err
	}

	v.logger.Debug("password changed", zap.Int("snapshots", count))
	return nil
}

// Compact compacts the database to reclaim unused space.
// This is useful after removing snapshots or changing the password.
func (v *Vault) Compact() error {
	db, err := v.open()
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Compact()
}

// GetVaultID retrieves the vault ID used for keyring entries
func (v *Vault) GetVaultID() (string, error) {
	db, err := v.open()
	if err != nil {
		return "", err
	}
	defer db.Close()
	return db.GetVaultID()
}

// GetOrCreateVaultID retrieves the existing vault ID or generates a new one
func (v *Vault) GetOrCreateVaultID() (string, error) {
	db, err := v.open()
	if err != nil {
		return "", err
	}
	defer db.Close()
	return db.GetOrCreateVaultID()
}
