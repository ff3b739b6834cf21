package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/illarion/envlock/internal/dotenv"
	"github.com/illarion/envlock/internal/git"
	"github.com/illarion/envlock/internal/storage"
)

// SnapshotStatus is an index entry compared against the local env file
type SnapshotStatus struct {
	storage.IndexEntry
	// InSync is true when the local env file renders identically
	InSync bool
}

// StatusInfo contains status information
type StatusInfo struct {
	Path      string
	Size      int64
	Version   string
	Created   time.Time
	Modified  time.Time
	Algorithm string
	KDF       storage.KDFParams

	Snapshots []SnapshotStatus

	EnvFile    string
	EnvPresent bool
	EnvKeys    int
	EnvErr     error // set when the env file exists but cannot be parsed

	GitStatus *git.Status
}

// Status reports vault and snapshot state against envFile (no password
// required). envFile is resolved relative to the vault directory.
func (v *Vault) Status(ctx context.Context, envFile string) (*StatusInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := v.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	info, err := db.Info()
	if err != nil {
		return nil, err
	}
	params, err := db.KDFParams()
	if err != nil {
		return nil, err
	}
	entries, err := db.Index()
	if err != nil {
		return nil, err
	}
	// Older vaults have no fingerprint params until the next push
	fp, err := db.FingerprintParams()
	hasPrint := err == nil
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	status := &StatusInfo{
		Path:      v.path,
		Version:   info.Version,
		Created:   info.Created,
		Modified:  info.Modified,
		Algorithm: "AES-256-GCM / Argon2id",
		KDF:       storage.KDFParams{Time: params.Time, Memory: params.Memory, Threads: params.Threads},
		EnvFile:   envFile,
		Snapshots: make([]SnapshotStatus, 0, len(entries)),
	}
	if fi, err := os.Stat(v.path); err == nil {
		status.Size = fi.Size()
	}

	envPath := envFile
	if !filepath.IsAbs(envPath) {
		envPath = filepath.Join(v.dir, envFile)
	}

	var localHash string
	local, err := dotenv.ReadFile(envPath)
	switch {
	case err == nil:
		status.EnvPresent = true
		status.EnvKeys = local.Len()
		if hasPrint && len(entries) > 0 {
			localHash, err = Fingerprint(fp, local)
			if err != nil {
				return nil, err
			}
		}
	case os.IsNotExist(err):
	default:
		status.EnvPresent = true
		status.EnvErr = err
		v.logger.Warn("cannot read env file", zap.String("file", envPath), zap.Error(err))
	}

	for _, entry := range entries {
		status.Snapshots = append(status.Snapshots, SnapshotStatus{
			IndexEntry: entry,
			InSync:     localHash != "" && entry.Hash == localHash,
		})
	}

	gitEnv := envFile
	if rel, err := filepath.Rel(v.dir, envPath); err == nil {
		gitEnv = filepath.ToSlash(rel)
	}
	status.GitStatus = git.Check(ctx, v.dir, VaultFile, gitEnv)

	return status, nil
}
