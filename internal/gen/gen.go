// Package gen emits the observation procedure for every accepted class:
// a per-type cache struct plus an Observe method implementing the
// Uninitialized -> Steady state machine with per-type equality policy,
// throttling and single/multi-source dispatch. Output is deterministic;
// re-running on an unchanged class yields byte-identical text.
package gen

import (
	"fmt"
	"sort"

	"vigil/internal/decl"
)

// Header marks generated files, in the form the Go tooling convention
// expects.
const Header = "// Code generated by vigil. DO NOT EDIT.\n"

// File renders one generated file for a package from its accepted
// classes. Returns the empty string when there is nothing to emit.
func File(pkgName string, classes []*decl.Class) (string, error) {
	if len(classes) == 0 {
		return "", nil
	}

	sorted := make([]*decl.Class, len(classes))
	copy(sorted, classes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	e := newEmitter(pkgName)
	for _, c := range sorted {
		p, err := plan(c)
		if err != nil {
			return "", fmt.Errorf("planning %s: %w", c.Name, err)
		}
		e.class(p)
	}
	return e.render(), nil
}

// dispatchShape is the argument convention of one binding.
type dispatchShape uint8

const (
	shapeNotify dispatchShape = iota // arity 0
	shapeNew                         // arity n
	shapePairs                       // arity 2n
)

// boundCallback pairs a binding with its resolved sources in identity
// order.
type boundCallback struct {
	binding *decl.Binding
	sources []*decl.Source
	shape   dispatchShape
}

// classPlan is everything the emitter needs, precomputed so emission is
// a straight walk.
type classPlan struct {
	class *decl.Class
	// used sources in declaration order; only these are cached and
	// dirty-checked.
	used []*decl.Source
	// slot maps a used source name to its index in used.
	slot map[string]int
	// singles[i] are the one-source bindings watching exactly used[i].
	singles [][]boundCallback
	// multis are bindings watching more than one source, in declaration
	// order.
	multis []boundCallback
	// needsFlag[i]: used[i] feeds at least one multi-source binding.
	needsFlag []bool
	// preOld[i]: a multi-source pair-shaped binding needs used[i]'s
	// previous value after its cache slot was overwritten, so it must
	// be captured before the dirty-checks run.
	preOld []bool
}

func plan(c *decl.Class) (*classPlan, error) {
	p := &classPlan{class: c}

	usedNames := make(map[string]bool)
	for _, b := range c.Bindings {
		for _, id := range b.Identities {
			if _, ok := c.Source(id); !ok {
				return nil, fmt.Errorf("binding %s references unknown source %s", b.Method, id)
			}
			usedNames[id] = true
		}
	}

	for _, s := range c.Sources {
		if usedNames[s.Name] {
			p.used = append(p.used, s)
		}
	}
	p.slot = make(map[string]int, len(p.used))
	for i, s := range p.used {
		p.slot[s.Name] = i
	}
	p.singles = make([][]boundCallback, len(p.used))
	p.needsFlag = make([]bool, len(p.used))
	p.preOld = make([]bool, len(p.used))

	for _, b := range c.Bindings {
		bc := boundCallback{binding: b}
		for _, id := range b.Identities {
			src, _ := c.Source(id)
			bc.sources = append(bc.sources, src)
		}
		switch b.Arity {
		case 0:
			bc.shape = shapeNotify
		case len(b.Identities):
			bc.shape = shapeNew
		case 2 * len(b.Identities):
			bc.shape = shapePairs
		default:
			return nil, fmt.Errorf("binding %s has unvalidated arity %d", b.Method, b.Arity)
		}

		if len(bc.sources) == 1 {
			i := p.slot[bc.sources[0].Name]
			p.singles[i] = append(p.singles[i], bc)
			continue
		}
		p.multis = append(p.multis, bc)
		for _, src := range bc.sources {
			i := p.slot[src.Name]
			p.needsFlag[i] = true
			if bc.shape == shapePairs {
				p.preOld[i] = true
			}
		}
	}
	return p, nil
}
