// Package core provides the envlock vault operations.
//
// A vault is a single .envlock file holding named snapshots of an env
// file's variables. Each snapshot is sealed with a key derived from the
// vault password; an unencrypted index records key counts and a content
// fingerprint so status can be shown without the password.
//
// Core operations include:
//   - Init: create a vault with a password-derived key
//   - Push/Snapshot: store and retrieve a snapshot
//   - Remove/List: manage snapshots
//   - Status: compare the local env file against the index
//   - ChangePassword: re-seal every snapshot under a new password
package core
