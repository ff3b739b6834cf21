package storage

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/illarion/envlock/internal/secrets"
)

// Codec encodes values stored in the vault
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// DefaultCodec is MessagePack
var DefaultCodec Codec = msgpackCodec{}

type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(b []byte, v any) error {
	return msgpack.Unmarshal(b, v)
}

// entry is one key/value pair of an encoded snapshot. A list keeps the
// insertion order that a msgpack map would lose.
type entry struct {
	Key   string `msgpack:"k"`
	Value string `msgpack:"v"`
}

// EncodeSnapshot serializes m, preserving key order
func EncodeSnapshot(c Codec, m *secrets.Map) ([]byte, error) {
	entries := make([]entry, 0, m.Len())
	m.Each(func(k, v string) {
		entries = append(entries, entry{Key: k, Value: v})
	})
	return c.Marshal(entries)
}

// DecodeSnapshot is the inverse of EncodeSnapshot
func DecodeSnapshot(c Codec, data []byte) (*secrets.Map, error) {
	var entries []entry
	if err := c.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	m := secrets.New()
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m, nil
}
