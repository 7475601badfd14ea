// Package decl holds the declaration model shared by the pipeline phases:
// class contexts, source and binding descriptors, throttle configuration,
// and the host-facing body walker contract used for auto-inference.
package decl

import (
	"go/types"

	"vigil/internal/source"
)

// SourceKind tags how a declared source is read.
type SourceKind uint8

const (
	// SourceField is a plain struct field.
	SourceField SourceKind = iota
	// SourceAccessor is a func-typed field; the Go rendition of a
	// readable property. Readable means the field type is func() T.
	SourceAccessor
	// SourceMethod is a declared method; must be niladic and return a value.
	SourceMethod
)

func (k SourceKind) String() string {
	switch k {
	case SourceField:
		return "field"
	case SourceAccessor:
		return "accessor"
	case SourceMethod:
		return "method"
	}
	return "unknown"
}

// Source describes one observable member of a class. Identity is the
// member's own name and must be unique within the class.
type Source struct {
	Name      string
	Kind      SourceKind
	Type      types.Type // value type; for accessors, the result type of func() T
	HasGetter bool       // accessors: field type is func() T
	HasParams bool       // methods: declares parameters
	Versioned bool       // value type exposes Version() int64
	Span      source.Span
	Index     int // declaration order within the class
}

// Binding describes one callback method reacting to sources.
type Binding struct {
	Method   string
	Static   bool // package-level func, not a method
	Returns  bool // declares results
	Arity    int  // declared parameter count
	Params   []types.Type
	Explicit bool // identities given on the marker
	Auto     bool // identities inferred from the body
	Body     Body // only set while Auto and unresolved

	// Raw is the identity list exactly as written on the marker,
	// duplicates and malformed entries preserved for validation.
	Raw []string
	// Identities is the effective ordered, deduplicated list after the
	// resolve phase.
	Identities []string

	Span     source.Span
	resolved bool
}

// Resolve fills in the inferred identity list exactly once. After the
// call the binding is treated as if its identities had been explicit.
func (b *Binding) Resolve(identities []string) {
	if b.resolved {
		panic("decl: binding resolved twice")
	}
	b.resolved = true
	b.Identities = identities
	b.Body = nil
}

// Resolved reports whether auto-inference has run for this binding.
func (b *Binding) Resolved() bool { return b.resolved }

// Throttle is the class-level sampling divisor.
type Throttle struct {
	Threshold int64
	Raw       string // as written; kept for the A003 message
	Span      source.Span
}

// Class is the per-type analysis context. One Class exists per observed
// type; methods split across files fold into the same context.
type Class struct {
	Name string
	Pkg  *types.Package

	// Shape facts recorded by the collector, judged by the validator.
	IsStruct      bool // marker target is a struct type defined in the package
	HasCapability bool // struct embeds observe.State

	Throttle *Throttle
	Sources  []*Source
	Bindings []*Binding

	Span   source.Span
	frozen bool
}

// Source returns the declared source with the given identity.
func (c *Class) Source(identity string) (*Source, bool) {
	for _, s := range c.Sources {
		if s.Name == identity {
			return s, true
		}
	}
	return nil, false
}

// AddSource appends a source draft. Panics after Freeze.
func (c *Class) AddSource(s *Source) {
	c.mutable()
	s.Index = len(c.Sources)
	c.Sources = append(c.Sources, s)
}

// AddBinding appends a binding draft. Panics after Freeze.
func (c *Class) AddBinding(b *Binding) {
	c.mutable()
	c.Bindings = append(c.Bindings, b)
}

// Freeze seals the context after the resolve phase. Validator and
// generator only read.
func (c *Class) Freeze() { c.frozen = true }

func (c *Class) Frozen() bool { return c.frozen }

func (c *Class) mutable() {
	if c.frozen {
		panic("decl: class mutated after freeze")
	}
}
