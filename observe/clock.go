package observe

import "sync/atomic"

// Clock is a monotonic version counter. Many independently owned
// containers share one clock; consumers compare raw integer snapshots,
// never object identity, so increments must be safe from any goroutine.
type Clock struct {
	n atomic.Int64
}

// Next returns the next version number. Safe for concurrent use.
func (c *Clock) Next() int64 {
	return c.n.Add(1)
}

// Now returns the last issued version without advancing.
func (c *Clock) Now() int64 {
	return c.n.Load()
}

// defaultClock is the process-wide counter containers use unless an
// explicit Clock is injected through the *With constructors.
var defaultClock Clock

// DefaultClock exposes the process-wide clock, mainly for tests that
// need a known baseline.
func DefaultClock() *Clock { return &defaultClock }
