// Package crypto provides cryptographic operations for envlock.
//
// Snapshots are sealed with AES-256-GCM:
//   - 32-byte key derived from the vault password via Argon2id
//   - 12-byte random nonce per seal
//   - the snapshot name as additional data, so blobs cannot be swapped
//
// Key derivation parameters (salt, time, memory, threads) are stored
// unencrypted in the vault so the key can be re-derived.
//
// Memory safety:
//   - Use ClearBytes() to zero passwords and plaintext after use
//   - Call Sealer.Destroy() when done
package crypto
