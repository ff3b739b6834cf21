// Package storage provides the BBolt database behind an envlock vault.
//
// Database structure uses three buckets:
//   - config: format version, timestamps, KDF parameters, sealed password check
//   - index: per-snapshot key count, size, update time and fingerprint
//   - snapshots: sealed MessagePack-encoded snapshot payloads
//
// The unencrypted index lets envlock status run without a password.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
