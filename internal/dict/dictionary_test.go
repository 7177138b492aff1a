package dict

import "testing"

func buildDict(t *testing.T, shared, subjOnly, objOnly, pred []string) *Dictionary {
	t.Helper()
	s, err := Build(strs(shared...))
	if err != nil {
		t.Fatalf("shared: %v", err)
	}
	so, err := Build(strs(subjOnly...))
	if err != nil {
		t.Fatalf("subjects: %v", err)
	}
	oo, err := Build(strs(objOnly...))
	if err != nil {
		t.Fatalf("objects: %v", err)
	}
	p, err := Build(strs(pred...))
	if err != nil {
		t.Fatalf("predicates: %v", err)
	}
	return &Dictionary{Shared: s, Subjects: so, Objects: oo, Predicates: p}
}

func TestDictionary_IDLayout(t *testing.T) {
	d := buildDict(t,
		[]string{"alice", "bob"},
		[]string{"carol", "dave"},
		[]string{"eve"},
		[]string{"knows", "likes"},
	)

	if n := d.NumShared(); n != 2 {
		t.Fatalf("NumShared = %d, want 2", n)
	}
	if n := d.NumSubjects(); n != 4 {
		t.Fatalf("NumSubjects = %d, want 4", n)
	}
	if n := d.NumObjects(); n != 3 {
		t.Fatalf("NumObjects = %d, want 3", n)
	}
	if n := d.NumPredicates(); n != 2 {
		t.Fatalf("NumPredicates = %d, want 2", n)
	}

	// Shared terms resolve to the same ID in both roles, <= NumShared.
	for _, term := range []string{"alice", "bob"} {
		sid, err := d.IDOf([]byte(term), RoleSubject)
		if err != nil {
			t.Fatalf("IDOf(%q, subject): %v", term, err)
		}
		oid, err := d.IDOf([]byte(term), RoleObject)
		if err != nil {
			t.Fatalf("IDOf(%q, object): %v", term, err)
		}
		if sid != oid {
			t.Fatalf("%q: subject id %d != object id %d", term, sid, oid)
		}
		if sid > d.NumShared() {
			t.Fatalf("%q: shared id %d exceeds NumShared %d", term, sid, d.NumShared())
		}
	}

	// Subject-only term is offset past the shared range.
	carolID, err := d.IDOf([]byte("carol"), RoleSubject)
	if err != nil {
		t.Fatalf("IDOf(carol): %v", err)
	}
	if carolID <= d.NumShared() {
		t.Fatalf("carol id %d should be beyond shared range %d", carolID, d.NumShared())
	}
	if _, err := d.IDOf([]byte("carol"), RoleObject); err != nil {
		t.Fatalf("IDOf(carol, object): %v", err)
	}
	if id, _ := d.IDOf([]byte("carol"), RoleObject); id != 0 {
		t.Fatalf("carol should not resolve as object, got %d", id)
	}

	// Round-trip term_of for every id.
	for id := 1; id <= d.NumSubjects(); id++ {
		term, err := d.TermOf(id, RoleSubject)
		if err != nil {
			t.Fatalf("TermOf(%d, subject): %v", id, err)
		}
		back, err := d.IDOf(term, RoleSubject)
		if err != nil || back != id {
			t.Fatalf("TermOf/IDOf roundtrip mismatch for subject id %d: term=%q back=%d err=%v", id, term, back, err)
		}
	}
}

func TestDictionary_UnknownTerm(t *testing.T) {
	d := buildDict(t, []string{"a"}, []string{"b"}, []string{"c"}, []string{"p"})
	id, err := d.IDOf([]byte("nowhere"), RoleSubject)
	if err != nil {
		t.Fatalf("IDOf: %v", err)
	}
	if id != 0 {
		t.Fatalf("IDOf(unknown) = %d, want 0", id)
	}
}

func TestDictionary_TermOf_OutOfRange(t *testing.T) {
	d := buildDict(t, []string{"a"}, []string{"b"}, []string{"c"}, []string{"p"})
	if _, err := d.TermOf(0, RoleSubject); err == nil {
		t.Fatal("expected error for id 0")
	}
	if _, err := d.TermOf(1000, RoleSubject); err == nil {
		t.Fatal("expected error for out-of-range id")
	}
}
