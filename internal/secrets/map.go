package secrets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned when a key or value cannot be represented in a
// JSON string without replacing bytes
var ErrInvalidUTF8 = errors.New("secrets: invalid UTF-8")

// Map is an insertion-ordered mapping of secret names to values.
// The zero value is an empty map ready to use.
type Map struct {
	keys   []string
	values map[string]string
}

// New creates an empty map
func New() *Map {
	return &Map{values: make(map[string]string)}
}

// FromPairs builds a map from alternating key, value arguments.
// It panics on an odd number of arguments.
func FromPairs(kv ...string) *Map {
	if len(kv)%2 != 0 {
		panic("secrets: FromPairs needs an even number of arguments")
	}
	m := New()
	for i := 0; i < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

// Set stores value under key. Setting an existing key replaces the value
// and keeps the key's original position.
func (m *Map) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it is present
func (m *Map) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of entries
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Each calls fn for every entry in insertion order
func (m *Map) Each(fn func(key, value string)) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Delete removes key and reports whether it was present
func (m *Map) Delete(key string) bool {
	if !m.Has(key) {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clone returns an independent copy
func (m *Map) Clone() *Map {
	c := New()
	m.Each(c.Set)
	return c
}

// Equal reports whether both maps hold the same entries in the same order
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	if m.Len() == 0 {
		return true
	}
	for i, k := range m.keys {
		if other.keys[i] != k || other.values[k] != m.values[k] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the map as a JSON object, keeping insertion order.
// encoding/json would turn invalid UTF-8 into U+FFFD, so such keys and
// values fail with ErrInvalidUTF8 instead.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if !utf8.ValidString(k) || !utf8.ValidString(m.values[k]) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidUTF8, k)
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object of strings, keeping the order
// in which keys appear in the document
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("secrets: expected JSON object")
	}

	*m = Map{values: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("secrets: expected string key")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("secrets: value for %s: %w", key, err)
		}
		m.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
