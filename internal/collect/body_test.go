package collect

import (
	"go/ast"
	"reflect"
	"testing"

	"vigil/internal/decl"
)

// walkEvents runs the body walker over the named method of a fixture
// and returns the raw event stream.
func walkEvents(t *testing.T, src, method string) []decl.Event {
	t.Helper()
	fx := typecheck(t, src)
	for _, d := range fx.files[0].Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok || fn.Name.Name != method {
			continue
		}
		var events []decl.Event
		astBody{fn: fn, info: fx.info}.Walk(func(e decl.Event) {
			events = append(events, e)
		})
		return events
	}
	t.Fatalf("method %s not found", method)
	return nil
}

const walkerSrc = `package demo

import "fmt"

type W struct {
	Health int
	Mana   int
	Level  int
}

func (w *W) Score() int { return w.Level }

func (w *W) reads(limit int) (out int) {
	total := w.Health + w.Mana
	fmt.Println(total)
	return total + limit
}

func (w *W) shadows() {
	Health := 1
	_ = Health
	_ = w.Mana
}

func (w *W) calls() {
	_ = w.Score()
	f := func(x int) int { return x }
	_ = f(w.Health)
}

func (w *W) ranges(items []int) {
	for i, v := range items {
		_ = i
		_ = v
	}
}

func (w *W) literals() {
	other := W{Health: 1, Mana: w.Mana}
	m := map[string]int{"Health": other.Level}
	_ = m
}
`

func names(events []decl.Event, kind decl.EventKind) []string {
	var out []string
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e.Name)
		}
	}
	return out
}

func TestWalkReceiverAndParamsAreLocals(t *testing.T) {
	events := walkEvents(t, walkerSrc, "reads")
	locals := names(events, decl.EvLocal)
	want := []string{"w", "limit", "out", "total"}
	if !reflect.DeepEqual(locals, want) {
		t.Fatalf("locals = %v, want %v", locals, want)
	}
}

func TestWalkSelfMemberReads(t *testing.T) {
	events := walkEvents(t, walkerSrc, "reads")
	members := names(events, decl.EvSelfMember)
	want := []string{"Health", "Mana"}
	if !reflect.DeepEqual(members, want) {
		t.Fatalf("self members = %v, want %v", members, want)
	}
	// The package qualifier of fmt.Println is not a value read.
	for _, n := range names(events, decl.EvIdent) {
		if n == "fmt" || n == "Println" {
			t.Fatalf("package-qualified call leaked ident %q", n)
		}
	}
}

func TestWalkShadowDeclarationStillEmitsLocal(t *testing.T) {
	events := walkEvents(t, walkerSrc, "shadows")
	locals := names(events, decl.EvLocal)
	want := []string{"w", "Health"}
	if !reflect.DeepEqual(locals, want) {
		t.Fatalf("locals = %v, want %v", locals, want)
	}
	if got := names(events, decl.EvSelfMember); !reflect.DeepEqual(got, []string{"Mana"}) {
		t.Fatalf("self members = %v, want [Mana]", got)
	}
}

func TestWalkSelfCallsAndFuncLits(t *testing.T) {
	events := walkEvents(t, walkerSrc, "calls")
	if got := names(events, decl.EvSelfCall); !reflect.DeepEqual(got, []string{"Score"}) {
		t.Fatalf("self calls = %v, want [Score]", got)
	}
	// Score must not surface as a member read too.
	if got := names(events, decl.EvSelfMember); !reflect.DeepEqual(got, []string{"Health"}) {
		t.Fatalf("self members = %v, want [Health]", got)
	}
	locals := names(events, decl.EvLocal)
	want := []string{"w", "f", "x"}
	if !reflect.DeepEqual(locals, want) {
		t.Fatalf("locals = %v, want %v", locals, want)
	}
	if got := names(events, decl.EvCall); !reflect.DeepEqual(got, []string{"f"}) {
		t.Fatalf("bare calls = %v, want [f]", got)
	}
}

func TestWalkRangeVariablesAreLocals(t *testing.T) {
	events := walkEvents(t, walkerSrc, "ranges")
	locals := names(events, decl.EvLocal)
	want := []string{"w", "items", "i", "v"}
	if !reflect.DeepEqual(locals, want) {
		t.Fatalf("locals = %v, want %v", locals, want)
	}
}

func TestWalkLiteralKeysAreNotReads(t *testing.T) {
	events := walkEvents(t, walkerSrc, "literals")
	// Struct literal keys Health and Mana must not register as ident
	// reads; the receiver-qualified w.Mana value still must.
	for _, n := range names(events, decl.EvIdent) {
		if n == "Health" || n == "Mana" {
			t.Fatalf("struct literal key leaked as ident read: %q", n)
		}
	}
	if got := names(events, decl.EvSelfMember); !reflect.DeepEqual(got, []string{"Mana"}) {
		t.Fatalf("self members = %v, want [Mana]", got)
	}
}
