// Package dotenv reads and writes .env files as ordered secret maps.
//
// The accepted syntax is the inverse of the env renderer in package format:
//
//	KEY=value
//	export KEY=value
//	KEY="quoted \"value\" with\nescapes"
//	KEY='literal $value'
//	# comment
//
// Double-quoted values understand \" and \n and may span several lines.
// Any other backslash is kept as is, so a quoted value may end in a bare
// backslash right before the closing quote. Values are never expanded.
//
// The renderer writes a value unquoted unless it holds a space, a double
// quote or a newline, so an unquoted value without spaces is taken byte for
// byte: tabs, carriage returns, '#' and surrounding single quotes included.
// Single quotes only delimit a literal when the value needs them, and only
// values with spaces lose a trailing " # comment".
package dotenv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/illarion/envlock/internal/format"
	"github.com/illarion/envlock/internal/secrets"
)

// FilePerm is the mode used for written env files
const FilePerm = 0600

// ParseError points at the offending line of an env file
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

type parser struct {
	reader *bufio.Reader
	line   string
	lineNo int
	done   bool
	err    error
}

// next reads one line without its '\n'. A '\r' before it is value data.
func (p *parser) next() bool {
	if p.done {
		return false
	}
	line, err := p.reader.ReadString('\n')
	if err != nil {
		p.done = true
		if err != io.EOF {
			p.err = err
			return false
		}
		if line == "" {
			return false
		}
	}
	p.line = strings.TrimSuffix(line, "\n")
	p.lineNo++
	return true
}

func (p *parser) fail(msg string, args ...any) error {
	return &ParseError{Line: p.lineNo, Msg: fmt.Sprintf(msg, args...)}
}

// Parse reads env assignments from r. Keys keep the order of their first
// appearance; a repeated key takes the last value.
func Parse(r io.Reader) (*secrets.Map, error) {
	p := &parser{reader: bufio.NewReader(r)}
	m := secrets.New()

	for p.next() {
		line := strings.TrimLeft(p.line, " \t")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "export"); ok && rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
			line = strings.TrimLeft(rest, " \t")
		}

		key, rest, ok := strings.Cut(line, "=")
		if !ok {
			return nil, p.fail("expected KEY=value")
		}
		key = strings.TrimRight(key, " \t")
		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, p.fail("invalid key %q", key)
		}

		value, err := p.value(rest)
		if err != nil {
			return nil, err
		}
		m.Set(key, value)
	}
	if err := p.err; err != nil {
		return nil, fmt.Errorf("failed to read env data: %w", err)
	}
	return m, nil
}

func (p *parser) value(raw string) (string, error) {
	trimmed := strings.TrimLeft(raw, " \t")
	switch {
	case trimmed == "":
		return "", nil
	case trimmed[0] == '"':
		return p.quoted(trimmed[1:], '"')
	case trimmed[0] == '\'' && strings.ContainsAny(trimmed, " \""):
		return p.quoted(trimmed[1:], '\'')
	}

	raw = strings.TrimLeft(raw, " ")
	if !strings.Contains(raw, " ") {
		return raw, nil
	}
	if i := strings.Index(raw, " #"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimRight(raw, " \t"), nil
}

// quoted consumes a quoted value that may continue on following lines
func (p *parser) quoted(s string, quote byte) (string, error) {
	start := p.lineNo
	var b strings.Builder
	for {
		var seg strings.Builder
		tail, closed := unquote(&seg, s, quote)
		if !closed && quote == '"' {
			// A value ending in a backslash is written as ...\" and the
			// final quote still closes it.
			if body, ok := strings.CutSuffix(strings.TrimRight(s, " \t\r"), `"`); ok {
				seg.Reset()
				unquote(&seg, body, quote)
				tail, closed = "", true
			}
		}
		b.WriteString(seg.String())

		if closed {
			tail = strings.TrimLeft(tail, " \t\r")
			if tail != "" && tail[0] != '#' {
				return "", p.fail("unexpected text after closing quote")
			}
			return b.String(), nil
		}
		if !p.next() {
			if p.err != nil {
				return "", p.err
			}
			return "", &ParseError{Line: start, Msg: "unterminated quoted value"}
		}
		b.WriteByte('\n')
		s = p.line
	}
}

// unquote copies s into b up to the closing quote and returns what follows it
func unquote(b *strings.Builder, s string, quote byte) (string, bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == quote {
			return s[i+1:], true
		}
		if quote == '"' && c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '"':
				b.WriteByte('"')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return "", false
}

// ReadFile parses the env file at path
func ReadFile(path string) (*secrets.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Encode renders m as env file content with a trailing newline
func Encode(m *secrets.Map) []byte {
	if m.Len() == 0 {
		return nil
	}
	out, _ := format.Render(m, format.Env)
	return []byte(out + "\n")
}

// WriteFile writes m to path in env format with owner-only permissions
func WriteFile(path string, m *secrets.Map) error {
	if err := os.WriteFile(path, Encode(m), FilePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
