// Package routemap provides an insertion-ordered route map.
//
// Mock maps rely on two ordering rules: merging is key-union with
// last-write-wins on collisions, and iteration follows first-insertion
// order, which decides precedence among ambiguous patterns. A plain Go
// map cannot provide the second rule, so the map keeps its own key
// order.
package routemap

// Map is an insertion-ordered map from route key to handler.
// Overwriting an existing key replaces the handler but keeps the key's
// original position. The zero value is ready to use.
type Map[H any] struct {
	keys     []string
	handlers map[string]H
}

// Entry is a single key/handler pair, used to build maps with a fixed
// declaration order.
type Entry[H any] struct {
	Key     string
	Handler H
}

// New returns an empty map.
func New[H any]() *Map[H] {
	return &Map[H]{handlers: make(map[string]H)}
}

// Of builds a map from entries in the given order.
func Of[H any](entries ...Entry[H]) *Map[H] {
	m := New[H]()
	for _, e := range entries {
		m.Set(e.Key, e.Handler)
	}
	return m
}

// Set adds or replaces the handler for key.
func (m *Map[H]) Set(key string, h H) {
	if m.handlers == nil {
		m.handlers = make(map[string]H)
	}
	if _, exists := m.handlers[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.handlers[key] = h
}

// Get returns the handler for an exact key.
func (m *Map[H]) Get(key string) (H, bool) {
	h, ok := m.handlers[key]
	return h, ok
}

// Merge copies every entry of other into m, in other's insertion order.
// Colliding keys are overwritten (last-write-wins) and keep their
// position in m.
func (m *Map[H]) Merge(other *Map[H]) {
	if other == nil {
		return
	}
	for _, key := range other.keys {
		m.Set(key, other.handlers[key])
	}
}

// Find returns the first key, in insertion order, for which pred
// reports true, along with its handler.
func (m *Map[H]) Find(pred func(key string) bool) (string, H, bool) {
	for _, key := range m.keys {
		if pred(key) {
			return key, m.handlers[key], true
		}
	}
	var zero H
	return "", zero, false
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Map[H]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Map[H]) Len() int {
	return len(m.keys)
}
