package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/illarion/envlock/internal/crypto"
)

// Bucket names
var (
	ConfigBucket    = []byte("config")    // KDF params, password check, timestamps - unencrypted
	IndexBucket     = []byte("index")     // Snapshot names, key counts, fingerprints - unencrypted
	SnapshotsBucket = []byte("snapshots") // Sealed snapshot payloads
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigKDF      = []byte("kdf")
	ConfigCheck    = []byte("check")
	ConfigVaultID  = []byte("vault_id")
	ConfigPrint    = []byte("fingerprint")
)

const (
	FormatVersion = "1"
	FilePerm      = 0600
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNotInitialized = errors.New("vault not initialized")
)

// Storage provides BBolt-based storage for an envlock vault
type Storage struct {
	db    *bolt.DB
	codec Codec
}

// Open opens or creates a vault database
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, FilePerm, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db, codec: DefaultCodec}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Codec returns the codec used for stored values
func (s *Storage) Codec() Codec {
	return s.codec
}

// Initialize creates the bucket structure and vault header
func (s *Storage) Initialize(kdf KDFParams, check []byte) error {
	params, err := s.codec.Marshal(kdf)
	if err != nil {
		return fmt.Errorf("failed to encode kdf params: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, IndexBucket, SnapshotsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		now, _ := time.Now().MarshalBinary()
		for k, v := range map[string][]byte{
			string(ConfigVersion):  []byte(FormatVersion),
			string(ConfigCreated):  now,
			string(ConfigModified): now,
			string(ConfigKDF):      params,
			string(ConfigCheck):    check,
		} {
			if err := config.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// IsInitialized checks if the database has a vault header
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		initialized = config != nil && config.Get(ConfigVersion) != nil
		return nil
	})
	return initialized, err
}

// configValue copies a config value out of a read transaction
func (s *Storage) configValue(key []byte) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		v := config.Get(key)
		if v == nil {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		// The slice is only valid during the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

// KDFParams returns the stored key derivation parameters
func (s *Storage) KDFParams() (KDFParams, error) {
	var p KDFParams
	data, err := s.configValue(ConfigKDF)
	if err != nil {
		return p, err
	}
	if err := s.codec.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to decode kdf params: %w", err)
	}
	return p, nil
}

// FingerprintParams returns the stored fingerprint settings, or ErrNotFound
// for vaults that never stored one
func (s *Storage) FingerprintParams() (FingerprintParams, error) {
	var p FingerprintParams
	data, err := s.configValue(ConfigPrint)
	if err != nil {
		return p, err
	}
	if err := s.codec.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to decode fingerprint params: %w", err)
	}
	return p, nil
}

// SetFingerprintParams stores the fingerprint settings
func (s *Storage) SetFingerprintParams(p FingerprintParams) error {
	data, err := s.codec.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode fingerprint params: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		config, err := bucket(tx, ConfigBucket)
		if err != nil {
			return err
		}
		return config.Put(ConfigPrint, data)
	})
}

// PasswordCheck returns the sealed password check value
func (s *Storage) PasswordCheck() ([]byte, error) {
	return s.configValue(ConfigCheck)
}

// Info returns the unencrypted vault header
func (s *Storage) Info() (*VaultInfo, error) {
	info := &VaultInfo{}
	version, err := s.configValue(ConfigVersion)
	if err != nil {
		return nil, err
	}
	info.Version = string(version)

	for key, dst := range map[string]*time.Time{
		string(ConfigCreated):  &info.Created,
		string(ConfigModified): &info.Modified,
	} {
		data, err := s.configValue([]byte(key))
		if err != nil {
			return nil, err
		}
		if err := dst.UnmarshalBinary(data); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", key, err)
		}
	}
	return info, nil
}

func bucket(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, ErrNotInitialized
	}
	return b, nil
}

func touch(tx *bolt.Tx) error {
	now, _ := time.Now().MarshalBinary()
	return tx.Bucket(ConfigBucket).Put(ConfigModified, now)
}

// GetVaultID retrieves the vault ID used to key OS keyring entries
func (s *Storage) GetVaultID() (string, error) {
	data, err := s.configValue(ConfigVaultID)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetOrCreateVaultID retrieves the existing vault ID or generates a new one
func (s *Storage) GetOrCreateVaultID() (string, error) {
	vaultID, err := s.GetVaultID()
	if err == nil {
		return vaultID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	b, err := crypto.GenerateRandom(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate vault ID: %w", err)
	}
	vaultID = hex.EncodeToString(b)

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ConfigBucket).Put(ConfigVaultID, []byte(vaultID))
	})
	if err != nil {
		return "", err
	}
	return vaultID, nil
}

// PutSnapshot stores a sealed snapshot and its index entry in one transaction
func (s *Storage) PutSnapshot(entry IndexEntry, sealed []byte) error {
	meta, err := s.codec.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode index entry: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		snapshots, err := bucket(tx, SnapshotsBucket)
		if err != nil {
			return err
		}
		if err := snapshots.Put([]byte(entry.Name), sealed); err != nil {
			return err
		}
		if err := tx.Bucket(IndexBucket).Put([]byte(entry.Name), meta); err != nil {
			return err
		}
		return touch(tx)
	})
}

// GetSnapshot returns a sealed snapshot payload
func (s *Storage) GetSnapshot(name string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		snapshots, err := bucket(tx, SnapshotsBucket)
		if err != nil {
			return err
		}
		v := snapshots.Get([]byte(name))
		if v == nil {
			return ErrNotFound
		}
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

// DeleteSnapshot removes a snapshot and its index entry
func (s *Storage) DeleteSnapshot(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		index, err := bucket(tx, IndexBucket)
		if err != nil {
			return err
		}
		if index.Get([]byte(name)) == nil {
			return ErrNotFound
		}
		if err := tx.Bucket(SnapshotsBucket).Delete([]byte(name)); err != nil {
			return err
		}
		if err := index.Delete([]byte(name)); err != nil {
			return err
		}
		return touch(tx)
	})
}

// Index returns every snapshot's index entry, ordered by name
func (s *Storage) Index() ([]IndexEntry, error) {
	var entries []IndexEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		index, err := bucket(tx, IndexBucket)
		if err != nil {
			return err
		}
		return index.ForEach(func(k, v []byte) error {
			var entry IndexEntry
			if err := s.codec.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to decode index entry %s: %w", k, err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	return entries, err
}

// GetIndexEntry returns the index entry for one snapshot
func (s *Storage) GetIndexEntry(name string) (*IndexEntry, error) {
	var entry *IndexEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		index, err := bucket(tx, IndexBucket)
		if err != nil {
			return err
		}
		v := index.Get([]byte(name))
		if v == nil {
			return ErrNotFound
		}
		entry = &IndexEntry{}
		return s.codec.Unmarshal(v, entry)
	})
	return entry, err
}

// Reseal rewrites every snapshot and the password check in one
// transaction. reseal receives each snapshot name and sealed payload and
// returns the replacement payload.
func (s *Storage) Reseal(kdf KDFParams, check []byte, reseal func(name string, sealed []byte) ([]byte, error)) error {
	params, err := s.codec.Marshal(kdf)
	if err != nil {
		return fmt.Errorf("failed to encode kdf params: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		snapshots, err := bucket(tx, SnapshotsBucket)
		if err != nil {
			return err
		}

		// Collect first: a bucket must not be modified during ForEach
		replaced := make(map[string][]byte)
		err = snapshots.ForEach(func(k, v []byte) error {
			out, err := reseal(string(k), append([]byte(nil), v...))
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", k, err)
			}
			replaced[string(k)] = out
			return nil
		})
		if err != nil {
			return err
		}
		for name, data := range replaced {
			if err := snapshots.Put([]byte(name), data); err != nil {
				return err
			}
		}

		config := tx.Bucket(ConfigBucket)
		if err := config.Put(ConfigKDF, params); err != nil {
			return err
		}
		if err := config.Put(ConfigCheck, check); err != nil {
			return err
		}
		return touch(tx)
	})
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after deleting snapshots to reclaim disk space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, FilePerm, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	if err := bolt.Compact(dst, s.db, 0); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	s.db, err = bolt.Open(srcPath, FilePerm, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}
	return nil
}
