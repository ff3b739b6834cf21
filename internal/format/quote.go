package format

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// QuoteEnv renders a value for a KEY=value line. The value is double-quoted
// only when it contains a space, a double quote or a newline.
func QuoteEnv(value string) string {
	if !strings.ContainsAny(value, " \"\n") {
		return value
	}
	escaped := strings.ReplaceAll(value, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	return `"` + escaped + `"`
}

// QuoteExport renders a value for an export statement. The value is always
// double-quoted; $, backtick and double quote are backslash-escaped.
func QuoteExport(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for _, r := range value {
		switch r {
		case '$', '`', '"':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// yamlNeedsQuotes reports whether a single-line value must be double-quoted
func yamlNeedsQuotes(value string) bool {
	if strings.ContainsAny(value, ":#") {
		return true
	}
	if value == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(value)
	last, _ := utf8.DecodeLastRuneInString(value)
	return unicode.IsSpace(first) || unicode.IsSpace(last)
}

// YAMLEntry renders one KEY: value block. Multi-line values become a block
// literal with each line indented two spaces.
func YAMLEntry(key, value string) string {
	if strings.Contains(value, "\n") {
		var b strings.Builder
		b.WriteString(key)
		b.WriteString(": |")
		for _, line := range strings.Split(value, "\n") {
			b.WriteString("\n  ")
			b.WriteString(line)
		}
		return b.String()
	}
	if yamlNeedsQuotes(value) {
		escaped := strings.ReplaceAll(value, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		return key + `: "` + escaped + `"`
	}
	return key + ": " + value
}
