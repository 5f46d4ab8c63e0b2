package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Node is a minimally validated JSON document (or a position inside one).
// Lookups on missing keys or wrong kinds return an absent Node rather than
// failing, so projections can probe several shapes cheaply.
type Node struct {
	v interface{}
}

// Parse decodes a JSON document. Numbers are kept as json.Number so large
// ids survive without float rounding.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return Node{}, fmt.Errorf("decode document: %w", err)
	}
	return Node{v: v}, nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) Node {
	n, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return n
}

// IsAbsent reports whether the node is missing or JSON null.
func (n Node) IsAbsent() bool { return n.v == nil }

// IsObject reports whether the node is a JSON object.
func (n Node) IsObject() bool {
	_, ok := n.v.(map[string]interface{})
	return ok
}

// IsArray reports whether the node is a JSON array.
func (n Node) IsArray() bool {
	_, ok := n.v.([]interface{})
	return ok
}

// Get returns the child under key, or an absent node.
func (n Node) Get(key string) Node {
	m, ok := n.v.(map[string]interface{})
	if !ok {
		return Node{}
	}
	return Node{v: m[key]}
}

// Path walks nested object keys.
func (n Node) Path(keys ...string) Node {
	cur := n
	for _, k := range keys {
		cur = cur.Get(k)
		if cur.IsAbsent() {
			return Node{}
		}
	}
	return cur
}

// Items returns array elements, or nil when the node is not an array.
func (n Node) Items() []Node {
	arr, ok := n.v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]Node, len(arr))
	for i, v := range arr {
		out[i] = Node{v: v}
	}
	return out
}

// Keys returns object keys in sorted order, or nil for non-objects.
func (n Node) Keys() []string {
	m, ok := n.v.(map[string]interface{})
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Int coerces the node to a whole number. Fractional and non-finite values
// are absent.
func (n Node) Int() (int64, bool) {
	f, ok := ExtractValue(n.v)
	if !ok || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

// String returns a non-empty string form of a string or number node.
func (n Node) String() (string, bool) {
	switch v := n.v.(type) {
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), true
	case float64, int, int64:
		return fmt.Sprint(v), true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}
