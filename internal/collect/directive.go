package collect

import (
	"go/ast"
	"go/token"
	"strings"

	"vigil/internal/source"
)

// Marker directives follow the Go toolchain convention: a // comment with
// no space before the tool prefix.
//
//	//vigil:observer
//	//vigil:throttle 3
//	//vigil:source
//	//vigil:binding
//	//vigil:binding watch=Health,Mana
const directivePrefix = "//vigil:"

type markerKind uint8

const (
	markerObserver markerKind = iota
	markerThrottle
	markerSource
	markerBinding
)

type marker struct {
	kind markerKind
	args []string
	span source.Span
}

// parseMarkers extracts vigil directives from a comment group.
// Unknown vigil directives are ignored; they belong to other tools in
// the family (the version-field marker feeds the container subsystem).
func parseMarkers(fset *token.FileSet, doc *ast.CommentGroup) []marker {
	if doc == nil {
		return nil
	}
	var out []marker
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, directivePrefix)
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		m := marker{
			args: fields[1:],
			span: source.FromPos(fset, c.Pos(), c.End()),
		}
		switch fields[0] {
		case "observer":
			m.kind = markerObserver
		case "throttle":
			m.kind = markerThrottle
		case "source":
			m.kind = markerSource
		case "binding":
			m.kind = markerBinding
		default:
			continue
		}
		out = append(out, m)
	}
	return out
}

// watchList extracts the explicit identity list of a binding marker.
// Returns ok=false when no watch argument is present (auto-inference).
// Entries are returned exactly as written; validation decides whether
// each is a statically checkable identifier.
func watchList(m marker) ([]string, bool) {
	for _, a := range m.args {
		rest, ok := strings.CutPrefix(a, "watch=")
		if !ok {
			continue
		}
		parts := strings.Split(rest, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}
