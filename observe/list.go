package observe

// List is an ordered version-capable container. Every mutation bumps the
// list's version from its clock and propagates up the owner chain.
// Lists are not safe for concurrent use; the clock is.
type List[T any] struct {
	node
	items []T
}

// NewList creates a List backed by the process-wide clock.
func NewList[T any]() *List[T] {
	return NewListWith[T](&defaultClock)
}

// NewListWith creates a List backed by an explicit clock.
func NewListWith[T any](c *Clock) *List[T] {
	return &List[T]{node: node{clock: c}}
}

// Version is nil-safe: an absent list reads as NoVersion.
func (l *List[T]) Version() int64 {
	if l == nil {
		return NoVersion
	}
	return l.ver
}

func (l *List[T]) Len() int { return len(l.items) }

func (l *List[T]) At(i int) T { return l.items[i] }

// Push appends v and takes ownership of it.
func (l *List[T]) Push(v T) {
	adopt(&l.node, v)
	l.items = append(l.items, v)
	l.bump()
}

// Set replaces the element at i.
func (l *List[T]) Set(i int, v T) {
	orphan(l.items[i])
	adopt(&l.node, v)
	l.items[i] = v
	l.bump()
}

// RemoveAt deletes the element at i, preserving order.
func (l *List[T]) RemoveAt(i int) {
	orphan(l.items[i])
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.bump()
}

// Clear empties the list. An already empty list is untouched.
func (l *List[T]) Clear() {
	if len(l.items) == 0 {
		return
	}
	for _, v := range l.items {
		orphan(v)
	}
	l.items = l.items[:0]
	l.bump()
}

// Each calls fn for every element in order.
func (l *List[T]) Each(fn func(T)) {
	for _, v := range l.items {
		fn(v)
	}
}
