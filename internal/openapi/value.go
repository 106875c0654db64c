package openapi

// Value is a decoded JSON or YAML value. It is one of: nil, bool,
// string, float64, []Value, or *Map. Object key order is preserved by
// *Map so that documents round-trip deterministically.
type Value any

// Map is an insertion-ordered string-keyed map.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap creates an empty ordered map.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// Set stores value under key, appending the key on first insertion.
func (m *Map) Set(key string, value Value) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = value
}

// Delete removes key, preserving the order of the remaining keys.
func (m *Map) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The slice is shared; do
// not mutate it.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Interface converts the value tree into plain map[string]any /
// []any form, losing ordering. Used for JSON Schema validation.
func Interface(v Value) any {
	switch t := v.(type) {
	case *Map:
		out := make(map[string]any, t.Len())
		for _, k := range t.keys {
			out[k] = Interface(t.vals[k])
		}
		return out
	case []Value:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Interface(e)
		}
		return out
	default:
		return t
	}
}
