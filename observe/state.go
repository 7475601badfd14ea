package observe

// State is the capability embed: it exposes the slot the generated
// Observe procedure keeps its lifecycle in. Embed it (unqualified) in
// every observed struct:
//
//	type Player struct {
//	    observe.State
//	    ...
//	}
//
// State is not safe for concurrent use; calls to Observe on one instance
// must be serialized by the caller.
type State struct {
	ready bool
	calls int64
	cache any
}

// Ready reports whether the first observation pass has run.
func (s *State) Ready() bool { return s.ready }

// MarkReady records the permanent Uninitialized -> Steady transition.
func (s *State) MarkReady() { s.ready = true }

// Gate advances the throttle counter and reports whether this invocation
// may run its dirty-checks. The counter resets on every pass that runs.
// Generated code only calls Gate after the first pass, so the first
// invocation is never throttled.
func (s *State) Gate(threshold int64) bool {
	s.calls++
	if s.calls < threshold {
		return false
	}
	s.calls = 0
	return true
}

// Cache returns the typed cache struct installed by generated code.
func (s *State) Cache() any { return s.cache }

// SetCache installs the typed cache struct.
func (s *State) SetCache(v any) { s.cache = v }
