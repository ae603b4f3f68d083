package model

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Metadata is a small insertion-ordered key/value map. The zero value is empty
// and ready to use. Set never mutates the receiver's backing array.
type Metadata struct {
	entries []metaEntry
}

type metaEntry struct {
	key   string
	value any
}

// Set returns a copy with key bound to value, replacing an existing binding in place.
func (m Metadata) Set(key string, value any) Metadata {
	out := make([]metaEntry, len(m.entries), len(m.entries)+1)
	copy(out, m.entries)
	for i := range out {
		if out[i].key == key {
			out[i].value = value
			return Metadata{entries: out}
		}
	}
	return Metadata{entries: append(out, metaEntry{key, value})}
}

// Get looks up key.
func (m Metadata) Get(key string) (any, bool) {
	for _, e := range m.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return nil, false
}

// Keys returns the keys in insertion order.
func (m Metadata) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

func (m Metadata) Len() int { return len(m.entries) }

func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m Metadata) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m.entries {
		val := &yaml.Node{}
		if err := val.Encode(e.value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.key},
			val,
		)
	}
	return node, nil
}
