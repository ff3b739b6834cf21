// Package git reports whether a project's envlock files are handled safely
// by git.
//
// Checks performed:
//   - Whether the .envlock vault is tracked by git (should be)
//   - Whether the plaintext env file is tracked by git (should not be)
//   - Whether the env file is matched by .gitignore (should be)
package git
