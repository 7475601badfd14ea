package resolve

import (
	"reflect"
	"testing"

	"vigil/internal/decl"
)

func testClass() *decl.Class {
	c := &decl.Class{Name: "Player"}
	c.AddSource(&decl.Source{Name: "Health", Kind: decl.SourceField})
	c.AddSource(&decl.Source{Name: "Mana", Kind: decl.SourceField})
	c.AddSource(&decl.Source{Name: "Score", Kind: decl.SourceMethod})
	return c
}

func autoBinding(body decl.Body) *decl.Binding {
	return &decl.Binding{Method: "onAny", Auto: true, Body: body}
}

func ev(kind decl.EventKind, name string) decl.Event {
	return decl.Event{Kind: kind, Name: name}
}

func TestInferFirstOccurrenceOrder(t *testing.T) {
	c := testClass()
	b := autoBinding(decl.Events{
		ev(decl.EvSelfMember, "Mana"),
		ev(decl.EvSelfMember, "Health"),
		ev(decl.EvSelfMember, "Mana"), // duplicate, keeps first position
	})
	c.AddBinding(b)
	Class(c)

	want := []string{"Mana", "Health"}
	if !reflect.DeepEqual(b.Identities, want) {
		t.Fatalf("identities = %v, want %v", b.Identities, want)
	}
}

func TestInferWholeBodyShadowing(t *testing.T) {
	c := testClass()
	// Health is read before it is shadowed; the flat local set still
	// excludes it everywhere.
	b := autoBinding(decl.Events{
		ev(decl.EvIdent, "Health"),
		ev(decl.EvLocal, "Health"),
		ev(decl.EvSelfMember, "Mana"),
	})
	c.AddBinding(b)
	Class(c)

	want := []string{"Mana"}
	if !reflect.DeepEqual(b.Identities, want) {
		t.Fatalf("identities = %v, want %v", b.Identities, want)
	}
}

func TestInferShadowedSelfMember(t *testing.T) {
	c := testClass()
	// Even a receiver-qualified read is excluded once the name is local
	// anywhere in the body.
	b := autoBinding(decl.Events{
		ev(decl.EvLocal, "Health"),
		ev(decl.EvSelfMember, "Health"),
	})
	c.AddBinding(b)
	Class(c)

	if len(b.Identities) != 0 {
		t.Fatalf("identities = %v, want none", b.Identities)
	}
}

func TestInferMethodSourcesOnlyViaCalls(t *testing.T) {
	c := testClass()
	b := autoBinding(decl.Events{
		ev(decl.EvSelfMember, "Score"), // bare read of a method source: no hit
		ev(decl.EvSelfCall, "Health"),  // call of a field source: no hit
		ev(decl.EvSelfCall, "Score"),   // the real hit
	})
	c.AddBinding(b)
	Class(c)

	want := []string{"Score"}
	if !reflect.DeepEqual(b.Identities, want) {
		t.Fatalf("identities = %v, want %v", b.Identities, want)
	}
}

func TestInferShadowedBareCall(t *testing.T) {
	c := testClass()
	b := autoBinding(decl.Events{
		ev(decl.EvLocal, "Score"), // local closure shadows the method
		ev(decl.EvCall, "Score"),
	})
	c.AddBinding(b)
	Class(c)

	if len(b.Identities) != 0 {
		t.Fatalf("identities = %v, want none", b.Identities)
	}
}

func TestInferNonSourceMembersIgnored(t *testing.T) {
	c := testClass()
	b := autoBinding(decl.Events{
		ev(decl.EvSelfMember, "Inventory"), // not a source: silently ignored
		ev(decl.EvIdent, "Mana"),
	})
	c.AddBinding(b)
	Class(c)

	want := []string{"Mana"}
	if !reflect.DeepEqual(b.Identities, want) {
		t.Fatalf("identities = %v, want %v", b.Identities, want)
	}
}

func TestInferEmptyResult(t *testing.T) {
	c := testClass()
	b := autoBinding(decl.Events{
		ev(decl.EvIdent, "unrelated"),
	})
	c.AddBinding(b)
	Class(c)

	if !b.Resolved() {
		t.Fatal("binding must be marked resolved even on empty inference")
	}
	if len(b.Identities) != 0 {
		t.Fatalf("identities = %v, want none", b.Identities)
	}
}

func TestExplicitBindingUntouched(t *testing.T) {
	c := testClass()
	b := &decl.Binding{
		Method:     "onHealth",
		Explicit:   true,
		Raw:        []string{"Health"},
		Identities: []string{"Health"},
	}
	c.AddBinding(b)
	Class(c)

	if b.Resolved() {
		t.Fatal("explicit binding must not be resolved")
	}
}
