package observe

import "testing"

func TestListVersionBumps(t *testing.T) {
	var clock Clock
	l := NewListWith[int](&clock)
	if l.Version() != 0 {
		t.Fatalf("fresh list version = %d", l.Version())
	}

	l.Push(10)
	v1 := l.Version()
	if v1 == 0 {
		t.Fatal("Push did not bump")
	}
	l.Set(0, 11)
	if l.Version() <= v1 {
		t.Fatal("Set did not bump")
	}
	v2 := l.Version()
	l.RemoveAt(0)
	if l.Version() <= v2 {
		t.Fatal("RemoveAt did not bump")
	}

	v3 := l.Version()
	l.Clear() // already empty
	if l.Version() != v3 {
		t.Fatal("Clear on empty list bumped")
	}
}

func TestNilContainerVersion(t *testing.T) {
	var l *List[int]
	var s *Set[string]
	var m *Map[string, int]
	if l.Version() != NoVersion || s.Version() != NoVersion || m.Version() != NoVersion {
		t.Fatal("nil containers must read as NoVersion")
	}
}

func TestSetMembershipBumps(t *testing.T) {
	var clock Clock
	s := NewSetWith[string](&clock)

	if !s.Add("a") {
		t.Fatal("first Add returned false")
	}
	v1 := s.Version()
	if s.Add("a") {
		t.Fatal("duplicate Add returned true")
	}
	if s.Version() != v1 {
		t.Fatal("duplicate Add bumped the version")
	}

	if s.Remove("b") {
		t.Fatal("Remove of absent element returned true")
	}
	if s.Version() != v1 {
		t.Fatal("no-op Remove bumped the version")
	}

	if !s.Remove("a") {
		t.Fatal("Remove of present element returned false")
	}
	if s.Version() <= v1 {
		t.Fatal("Remove did not bump")
	}
}

func TestSetRemoveAll(t *testing.T) {
	var clock Clock
	s := NewSetWith[int](&clock)
	other := NewSetWith[int](&clock)
	s.Add(1)
	s.Add(2)
	s.Add(3)
	other.Add(2)
	other.Add(9)

	v := s.Version()
	if got := s.RemoveAll(other); got != 1 {
		t.Fatalf("RemoveAll removed %d, want 1", got)
	}
	if s.Version() <= v {
		t.Fatal("effective RemoveAll did not bump")
	}

	v = s.Version()
	if got := s.RemoveAll(other); got != 0 {
		t.Fatalf("second RemoveAll removed %d, want 0", got)
	}
	if s.Version() != v {
		t.Fatal("no-op RemoveAll bumped the version")
	}
}

func TestMapBumps(t *testing.T) {
	var clock Clock
	m := NewMapWith[string, int](&clock)

	m.Put("hp", 10)
	v1 := m.Version()
	m.Put("hp", 10) // overwrite always counts as a change
	if m.Version() <= v1 {
		t.Fatal("overwrite Put did not bump")
	}

	v2 := m.Version()
	if m.Delete("mp") {
		t.Fatal("Delete of absent key returned true")
	}
	if m.Version() != v2 {
		t.Fatal("no-op Delete bumped the version")
	}
	if !m.Delete("hp") {
		t.Fatal("Delete of present key returned false")
	}
	if m.Version() <= v2 {
		t.Fatal("Delete did not bump")
	}
}

func TestOwnerChainPropagation(t *testing.T) {
	var clock Clock
	parent := NewListWith[*List[int]](&clock)
	child := NewListWith[int](&clock)
	parent.Push(child)

	pv := parent.Version()
	child.Push(1)
	if parent.Version() <= pv {
		t.Fatal("child mutation did not propagate to the parent")
	}

	// A removed child no longer propagates.
	parent.RemoveAt(0)
	pv = parent.Version()
	child.Push(2)
	if parent.Version() != pv {
		t.Fatal("orphaned child still propagates")
	}
}

func TestSelfReferentialChainTerminates(t *testing.T) {
	var clock Clock
	m1 := NewMapWith[string, any](&clock)
	m2 := NewMapWith[string, any](&clock)

	// m1 owns m2 and m2 owns m1: a self-referential chain the reference
	// material never guards against. The bump walk must terminate.
	m1.Put("child", m2)
	m2.Put("child", m1)

	v1, v2 := m1.Version(), m2.Version()
	m2.Put("x", 1)
	if m2.Version() <= v2 {
		t.Fatal("m2 did not bump")
	}
	if m1.Version() <= v1 {
		t.Fatal("m1 did not receive propagation")
	}
}
