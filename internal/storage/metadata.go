package storage

import (
	"time"
)

// KDFParams are the key derivation settings, stored unencrypted
type KDFParams struct {
	Salt    []byte `msgpack:"salt"`
	Time    uint32 `msgpack:"time"`
	Memory  uint32 `msgpack:"memory"`
	Threads uint8  `msgpack:"threads"`
}

// FingerprintParams key and stretch index fingerprints. They are stored
// unencrypted so status can compare without the password, and they survive
// password changes.
type FingerprintParams struct {
	Key     []byte `msgpack:"key"`
	Time    uint32 `msgpack:"time"`
	Memory  uint32 `msgpack:"memory"`
	Threads uint8  `msgpack:"threads"`
}

// IndexEntry describes a snapshot without revealing its values.
// It is readable without the password so status works offline.
type IndexEntry struct {
	Name    string    `msgpack:"name"`
	Keys    int       `msgpack:"keys"`
	Size    int       `msgpack:"size"` // sealed blob size in bytes
	Updated time.Time `msgpack:"updated"`
	Hash    string    `msgpack:"hash"` // keyed, stretched fingerprint of the env rendering
}

// VaultInfo is the unencrypted vault header
type VaultInfo struct {
	Version  string
	Created  time.Time
	Modified time.Time
}
