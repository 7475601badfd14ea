package observe

// Map is a version-capable key/value container. Put always bumps: values
// are not required to be comparable, so an overwrite counts as a change.
type Map[K comparable, V any] struct {
	node
	items map[K]V
}

// NewMap creates a Map backed by the process-wide clock.
func NewMap[K comparable, V any]() *Map[K, V] {
	return NewMapWith[K, V](&defaultClock)
}

// NewMapWith creates a Map backed by an explicit clock.
func NewMapWith[K comparable, V any](c *Clock) *Map[K, V] {
	return &Map[K, V]{node: node{clock: c}, items: make(map[K]V)}
}

// Version is nil-safe: an absent map reads as NoVersion.
func (m *Map[K, V]) Version() int64 {
	if m == nil {
		return NoVersion
	}
	return m.ver
}

func (m *Map[K, V]) Len() int { return len(m.items) }

func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.items[k]
	return v, ok
}

// Put stores v under k, replacing any previous value.
func (m *Map[K, V]) Put(k K, v V) {
	if old, ok := m.items[k]; ok {
		orphan(old)
	}
	adopt(&m.node, v)
	m.items[k] = v
	m.bump()
}

// Delete removes k and reports whether it was present. Deleting an
// absent key does not bump the version.
func (m *Map[K, V]) Delete(k K) bool {
	old, ok := m.items[k]
	if !ok {
		return false
	}
	orphan(old)
	delete(m.items, k)
	m.bump()
	return true
}

// Clear empties the map. An already empty map is untouched.
func (m *Map[K, V]) Clear() {
	if len(m.items) == 0 {
		return
	}
	for _, v := range m.items {
		orphan(v)
	}
	clear(m.items)
	m.bump()
}

// Each calls fn for every pair in unspecified order.
func (m *Map[K, V]) Each(fn func(K, V)) {
	for k, v := range m.items {
		fn(k, v)
	}
}
