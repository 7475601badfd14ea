package observe

// Set is an unordered version-capable container of unique elements.
// Mutating operations bump the version only when membership actually
// changed; see DESIGN.md for the divergence in the reference material.
type Set[T comparable] struct {
	node
	items map[T]struct{}
}

// NewSet creates a Set backed by the process-wide clock.
func NewSet[T comparable]() *Set[T] {
	return NewSetWith[T](&defaultClock)
}

// NewSetWith creates a Set backed by an explicit clock.
func NewSetWith[T comparable](c *Clock) *Set[T] {
	return &Set[T]{node: node{clock: c}, items: make(map[T]struct{})}
}

// Version is nil-safe: an absent set reads as NoVersion.
func (s *Set[T]) Version() int64 {
	if s == nil {
		return NoVersion
	}
	return s.ver
}

func (s *Set[T]) Len() int { return len(s.items) }

func (s *Set[T]) Contains(v T) bool {
	_, ok := s.items[v]
	return ok
}

// Add inserts v and reports whether it was absent. Re-adding an existing
// element does not bump the version.
func (s *Set[T]) Add(v T) bool {
	if _, ok := s.items[v]; ok {
		return false
	}
	s.items[v] = struct{}{}
	adopt(&s.node, v)
	s.bump()
	return true
}

// Remove deletes v and reports whether it was present.
func (s *Set[T]) Remove(v T) bool {
	if _, ok := s.items[v]; !ok {
		return false
	}
	delete(s.items, v)
	orphan(v)
	s.bump()
	return true
}

// RemoveAll removes every element of other and returns how many were
// present. The version bumps once, and only when at least one element
// was actually removed.
func (s *Set[T]) RemoveAll(other *Set[T]) int {
	if other == nil {
		return 0
	}
	removed := 0
	for v := range other.items {
		if _, ok := s.items[v]; !ok {
			continue
		}
		delete(s.items, v)
		orphan(v)
		removed++
	}
	if removed > 0 {
		s.bump()
	}
	return removed
}

// Clear empties the set. An already empty set is untouched.
func (s *Set[T]) Clear() {
	if len(s.items) == 0 {
		return
	}
	for v := range s.items {
		orphan(v)
	}
	clear(s.items)
	s.bump()
}

// Each calls fn for every element in unspecified order.
func (s *Set[T]) Each(fn func(T)) {
	for v := range s.items {
		fn(v)
	}
}
