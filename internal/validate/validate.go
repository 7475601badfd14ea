// Package validate applies the acceptance rule set to collected and
// resolved class contexts. A class is accepted only when it produced
// zero errors; warnings never block generation. Diagnostics are local:
// one class's rejection does not affect another class.
package validate

import (
	"go/token"
	"go/types"

	"vigil/internal/collect"
	"vigil/internal/decl"
	"vigil/internal/diag"
)

// Package validates one package's collection result and returns the
// accepted classes, in the collector's encounter order.
func Package(res *collect.Result, r diag.Reporter) []*decl.Class {
	Orphans(res.Orphans, r)
	accepted := make([]*decl.Class, 0, len(res.Classes))
	for _, c := range res.Classes {
		if Class(c, r) {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

// Orphans reports C002 for binding markers on package-level functions.
// A binding must be an instance method; there is no receiver to observe.
func Orphans(orphans []*decl.Binding, r diag.Reporter) {
	for _, b := range orphans {
		diag.Errorf(r, diag.BindingIsStatic, b.Span,
			"binding %q must be a method, not a package-level function", b.Method)
	}
}

// Class runs every rule against one frozen class context and reports
// whether the class is accepted.
func Class(c *decl.Class, r diag.Reporter) bool {
	v := &classValidator{c: c, rep: &diag.CountingReporter{Next: r}}
	v.classShape()
	for _, s := range c.Sources {
		v.sourceShape(s)
	}
	for _, b := range c.Bindings {
		v.bindingShape(b)
	}
	v.unreferencedSources()
	return v.rep.Errors == 0
}

type classValidator struct {
	c   *decl.Class
	rep *diag.CountingReporter
}

func (v *classValidator) classShape() {
	c := v.c
	if !c.IsStruct {
		diag.Errorf(v.rep, diag.ClassNotExtensible, c.Span,
			"observed type %q must be a struct declared in this package; generated members cannot be attached otherwise", c.Name)
	}
	if c.IsStruct && !c.HasCapability {
		diag.Errorf(v.rep, diag.ClassMissingCapability, c.Span,
			"observed type %q must embed observe.State to hold the generated observation slot", c.Name)
	}
	if t := c.Throttle; t != nil {
		if t.Threshold < 1 {
			diag.Errorf(v.rep, diag.ClassBadThrottleValue, t.Span,
				"throttle threshold must be an integer >= 1; got %q", t.Raw)
		}
		if !c.HasCapability {
			diag.Errorf(v.rep, diag.ClassThrottleWithoutCapability, t.Span,
				"throttle marker on %q, but the type lacks the observe.State embed", c.Name)
		}
	}
}

func (v *classValidator) sourceShape(s *decl.Source) {
	switch s.Kind {
	case decl.SourceMethod:
		if s.Type == nil {
			diag.Errorf(v.rep, diag.SourceMethodReturnsNothing, s.Span,
				"method source %q must return exactly one value", s.Name)
		}
		if s.HasParams {
			diag.Errorf(v.rep, diag.SourceMethodHasParameters, s.Span,
				"method source %q must not take parameters", s.Name)
		}
	case decl.SourceAccessor:
		if !s.HasGetter {
			diag.Errorf(v.rep, diag.SourceAccessorUnreadable, s.Span,
				"accessor source %q must be readable: the field type must be func() T", s.Name)
		}
	}
	if s.Type == nil {
		return // shape errors above already cover the missing value type
	}
	switch decl.Classify(s.Type) {
	case decl.TypeNoEquality:
		diag.Errorf(v.rep, diag.SourceMissingEquality, s.Span,
			"value type %s of source %q has no usable equality; dirty-checks need != or a Version() int64 method",
			v.typeName(s.Type), s.Name)
	case decl.TypeUnsupported, decl.TypeInvalid:
		diag.Errorf(v.rep, diag.SourceUnsupportedValueType, s.Span,
			"value type %s of source %q is not observable; supported: basics, enums, comparable structs, pointers to them, and version-capable types",
			v.typeName(s.Type), s.Name)
	}
}

func (v *classValidator) bindingShape(b *decl.Binding) {
	if b.Returns {
		diag.Errorf(v.rep, diag.BindingReturnsValue, b.Span,
			"binding %q must not return a value", b.Method)
	}
	if b.Explicit {
		v.identityFormat(b)
		v.duplicateIdentities(b)
	}
	if b.Auto && b.Arity > 0 {
		diag.Errorf(v.rep, diag.BindingAutoInferWithParameters, b.Span,
			"binding %q infers its sources from the body and must declare no parameters", b.Method)
	}

	if len(b.Identities) == 0 {
		if b.Auto {
			diag.Errorf(v.rep, diag.BindingAutoInferFoundNothing, b.Span,
				"binding %q reads no declared source; list them explicitly with watch=", b.Method)
		} else {
			diag.Errorf(v.rep, diag.BindingEmptyIdentityList, b.Span,
				"binding %q has an empty identity list", b.Method)
		}
		return
	}

	sources, allKnown := v.referencedSources(b)
	if !allKnown {
		return // fail closed; arity cannot be judged against unknowns
	}
	v.arity(b, sources)
}

// identityFormat enforces that explicit identities are statically
// checkable member references, not arbitrary literal text.
func (v *classValidator) identityFormat(b *decl.Binding) {
	for _, raw := range b.Raw {
		if !token.IsIdentifier(raw) {
			diag.Errorf(v.rep, diag.BindingIdentityNotStatic, b.Span,
				"identity %q in binding %q is not a plain member identifier", raw, b.Method)
		}
	}
}

func (v *classValidator) duplicateIdentities(b *decl.Binding) {
	seen := make(map[string]bool, len(b.Raw))
	for _, raw := range b.Raw {
		if seen[raw] {
			diag.Errorf(v.rep, diag.BindingDuplicateIdentities, b.Span,
				"identity %q repeats in binding %q", raw, b.Method)
		}
		seen[raw] = true
	}
}

// referencedSources maps the identity list to source descriptors,
// reporting C010 per unknown name.
func (v *classValidator) referencedSources(b *decl.Binding) ([]*decl.Source, bool) {
	sources := make([]*decl.Source, 0, len(b.Identities))
	allKnown := true
	for _, id := range b.Identities {
		src, ok := v.c.Source(id)
		if !ok {
			allKnown = false
			if token.IsIdentifier(id) {
				diag.Errorf(v.rep, diag.BindingUnknownIdentity, b.Span,
					"identity %q in binding %q names no declared source", id, b.Method)
			}
			continue
		}
		sources = append(sources, src)
	}
	return sources, allKnown
}

// arity checks the parameter-count contract and, when the count is
// legal, the per-parameter type contract.
func (v *classValidator) arity(b *decl.Binding, sources []*decl.Source) {
	n := len(sources)
	versioned := false
	for _, s := range sources {
		if s.Versioned {
			versioned = true
		}
	}

	switch {
	case b.Arity == 0:
		return
	case b.Arity == n:
		v.paramTypes(b, sources, 1)
	case b.Arity == 2*n && !versioned:
		v.paramTypes(b, sources, 2)
	default:
		if versioned {
			diag.Errorf(v.rep, diag.BindingInvalidParameterCount, b.Span,
				"binding %q watches %d source(s), one of them version-capable; legal parameter counts are 0 or %d, got %d",
				b.Method, n, n, b.Arity)
		} else {
			diag.Errorf(v.rep, diag.BindingInvalidParameterCount, b.Span,
				"binding %q watches %d source(s); legal parameter counts are 0, %d or %d, got %d",
				b.Method, n, n, 2*n, b.Arity)
		}
	}
}

// paramTypes verifies parameter i (or the (old, new) pair i) against
// source i's value type. stride is 1 for the n shape, 2 for 2n.
func (v *classValidator) paramTypes(b *decl.Binding, sources []*decl.Source, stride int) {
	for i, src := range sources {
		if src.Type == nil {
			continue // the source's own shape error already reported
		}
		for j := 0; j < stride; j++ {
			got := b.Params[i*stride+j]
			if got == nil || types.Identical(got, src.Type) {
				continue
			}
			role := "new value"
			if stride == 2 && j == 0 {
				role = "old value"
			}
			diag.Errorf(v.rep, diag.BindingParameterTypeMismatch, b.Span,
				"binding %q parameter %d (%s of %q) has type %s, want %s",
				b.Method, i*stride+j+1, role, src.Name, v.typeName(got), v.typeName(src.Type))
		}
	}
}

// unreferencedSources emits the W001 warning per source no binding
// mentions. Generation still proceeds.
func (v *classValidator) unreferencedSources() {
	used := make(map[string]bool)
	for _, b := range v.c.Bindings {
		for _, id := range b.Identities {
			used[id] = true
		}
	}
	for _, s := range v.c.Sources {
		if !used[s.Name] {
			diag.Warnf(v.rep, diag.SourceUnreferenced, s.Span,
				"source %q is not referenced by any binding", s.Name)
		}
	}
}

func (v *classValidator) typeName(t types.Type) string {
	return types.TypeString(t, types.RelativeTo(v.c.Pkg))
}
