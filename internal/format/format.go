package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/illarion/envlock/internal/secrets"
)

// Format names an output encoding for a whole snapshot
type Format string

const (
	Env    Format = "env"    // KEY=value lines
	JSON   Format = "json"   // indented JSON object
	YAML   Format = "yaml"   // KEY: value blocks
	Export Format = "export" // export KEY="value" lines
)

// Formats lists every supported output format in display order
var Formats = []Format{Env, JSON, YAML, Export}

// ErrUnknownFormat is matched by every *UnknownFormatError
var ErrUnknownFormat = errors.New("unknown output format")

// UnknownFormatError reports an output format outside the supported set
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown output format %q (supported: env, json, yaml, export)", e.Format)
}

func (e *UnknownFormatError) Is(target error) bool {
	return target == ErrUnknownFormat
}

// Parse converts user input into a Format
func Parse(s string) (Format, error) {
	f := Format(s)
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", &UnknownFormatError{Format: s}
}

// Render encodes secrets in the given format. Entries always appear in the
// map's insertion order.
func Render(m *secrets.Map, f Format) (string, error) {
	switch f {
	case Env:
		return joinEntries(m, func(k, v string) string { return k + "=" + QuoteEnv(v) }), nil
	case JSON:
		return renderJSON(m)
	case YAML:
		return joinEntries(m, YAMLEntry), nil
	case Export:
		return joinEntries(m, func(k, v string) string { return "export " + k + "=" + QuoteExport(v) }), nil
	default:
		return "", &UnknownFormatError{Format: string(f)}
	}
}

func joinEntries(m *secrets.Map, entry func(key, value string) string) string {
	lines := make([]string, 0, m.Len())
	m.Each(func(k, v string) {
		lines = append(lines, entry(k, v))
	})
	return strings.Join(lines, "\n")
}

func renderJSON(m *secrets.Map) (string, error) {
	if m.Len() == 0 {
		return "{}", nil
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode json: %w", err)
	}
	return string(data), nil
}
