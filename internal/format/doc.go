// Package format renders a secret snapshot as text.
//
// Supported encodings:
//   - env: KEY=value lines, quoted only when needed
//   - json: a 2-space indented object in insertion order
//   - yaml: KEY: value blocks, multi-line values as block literals
//   - export: export KEY="value" statements for POSIX shells
//
// Every encoding has its own quoting rule; see QuoteEnv, QuoteExport and
// YAMLEntry. Unknown formats are rejected with *UnknownFormatError.
package format
