// Package resolve performs auto-inference: for bindings declared without
// an explicit identity list, it determines which declared sources the
// callback body reads, in first-occurrence order.
package resolve

import (
	"vigil/internal/decl"
)

// Class resolves every auto-inferred binding of one class in place.
// Bindings whose body reads no declared source end up with an empty
// identity list; the validator reports those as C008.
func Class(c *decl.Class) {
	for _, b := range c.Bindings {
		if !b.Auto || b.Resolved() {
			continue
		}
		b.Resolve(infer(c, b.Body))
	}
}

// infer replays the body twice over one buffered recording. The first
// pass gathers every local-binding name introduced anywhere in the body;
// the second matches the remaining references against the class's
// sources. The flat local set is deliberate: a name shadowed anywhere in
// the body is treated as shadowed for all of its occurrences, even ones
// textually before the shadowing declaration.
func infer(c *decl.Class, body decl.Body) []string {
	if body == nil {
		return nil
	}

	var events []decl.Event
	body.Walk(func(ev decl.Event) {
		events = append(events, ev)
	})

	locals := make(map[string]bool)
	for _, ev := range events {
		if ev.Kind == decl.EvLocal {
			locals[ev.Name] = true
		}
	}

	var hits []string
	seen := make(map[string]bool)
	record := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		hits = append(hits, name)
	}

	for _, ev := range events {
		switch ev.Kind {
		case decl.EvIdent, decl.EvSelfMember:
			// A locally shadowed name never resolves to a member, even
			// when receiver-qualified.
			if locals[ev.Name] {
				continue
			}
			if src, ok := c.Source(ev.Name); ok && src.Kind != decl.SourceMethod {
				record(src.Name)
			}
		case decl.EvCall, decl.EvSelfCall:
			if ev.Kind == decl.EvCall && locals[ev.Name] {
				continue
			}
			if src, ok := c.Source(ev.Name); ok && src.Kind == decl.SourceMethod {
				record(src.Name)
			}
		}
	}
	return hits
}
