package decl

// EventKind tags one observation the body walker makes while replaying a
// callback body in source order.
type EventKind uint8

const (
	// EvLocal introduces a local binding name: a declared local, a range
	// variable, a type-switch binding, or a parameter of a nested func
	// literal. The method's own receiver and parameter names are
	// reported as locals too.
	EvLocal EventKind = iota
	// EvIdent is a bare identifier read in expression position.
	EvIdent
	// EvSelfMember is a receiver-qualified member read (x.Name).
	EvSelfMember
	// EvCall is a call whose target is a bare identifier.
	EvCall
	// EvSelfCall is a call whose target is a receiver-qualified member.
	EvSelfCall
)

// Event is one step of a body replay.
type Event struct {
	Kind EventKind
	Name string
}

// Body is a host-parsed callback body. Walk replays every relevant node
// in source order; the resolver never sees the host's syntax tree
// directly, which keeps the core independent of the host compiler API.
type Body interface {
	Walk(fn func(Event))
}

// Events is a pre-recorded Body, used by tests and by hosts that buffer.
type Events []Event

func (e Events) Walk(fn func(Event)) {
	for _, ev := range e {
		fn(ev)
	}
}
