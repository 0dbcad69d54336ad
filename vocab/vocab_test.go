package vocab

import (
	"reflect"
	"testing"
)

func TestGrowableAssignsInEncounterOrder(t *testing.T) {
	v := New()
	for i, token := range []string{"b", "a", "c"} {
		if id := v.IDOf(token); id != i {
			t.Fatalf("id of %q = %d, want %d", token, id, i)
		}
	}
	if id := v.IDOf("a"); id != 1 {
		t.Fatalf("existing token got new id %d", id)
	}
	if _, ok := v.Lookup("zzz"); ok {
		t.Fatalf("unknown token should not resolve in growable vocabulary")
	}
	if v.Size() != 3 {
		t.Fatalf("lookup mutated vocabulary, size = %d", v.Size())
	}
	if tok, ok := v.TokenOf(2); !ok || tok != "c" {
		t.Fatalf("TokenOf(2) = %q, %v", tok, ok)
	}
}

func TestStaticRedirectsToOOV(t *testing.T) {
	v := NewStatic([]string{"A", "B", "C"}, true)
	oov, ok := v.OOV()
	if !ok || oov != 3 {
		t.Fatalf("OOV id = %d, %v; want 3", oov, ok)
	}
	if id := v.IDOf("X"); id != oov {
		t.Fatalf("unknown token on static vocabulary got id %d", id)
	}
	if id, ok := v.Lookup("X"); !ok || id != oov {
		t.Fatalf("lookup of unknown token = %d, %v", id, ok)
	}
	if v.Size() != 4 || v.Contains("X") {
		t.Fatalf("static vocabulary grew: size %d", v.Size())
	}
}

func TestStaticWithoutOOVProvisionsSlot(t *testing.T) {
	v := NewStatic([]string{"A"}, false)
	if _, ok := v.Lookup("X"); ok {
		t.Fatalf("lookup without OOV slot should fail")
	}
	if _, ok := v.OOV(); ok {
		t.Fatalf("no OOV slot expected yet")
	}
	id := v.IDOf("X")
	if oov, ok := v.OOV(); !ok || oov != id || id != 1 {
		t.Fatalf("insertion path should provision OOV slot, got id %d (oov %d, %v)", id, oov, ok)
	}
	if tok, _ := v.TokenOf(id); tok != OOV {
		t.Fatalf("provisioned slot holds %q", tok)
	}
}

func TestRanked(t *testing.T) {
	v := Ranked(map[string]int{"the": 5, "cat": 2, "dog": 2, "rare": 1}, 2)
	want := []string{"the", "cat", "dog", OOV}
	for id, token := range want {
		if got, _ := v.TokenOf(id); got != token {
			t.Fatalf("id %d = %q, want %q", id, got, token)
		}
	}
	if id, _ := v.Lookup("rare"); id != 3 {
		t.Fatalf("pruned token should map to OOV, got %d", id)
	}
}

func TestWithPrefix(t *testing.T) {
	v := NewStatic([]string{"then", "a", "this", "the"}, false)
	if got := v.WithPrefix("th"); !reflect.DeepEqual(got, []string{"the", "then", "this"}) {
		t.Fatalf("prefix search = %v", got)
	}
	v2 := New()
	v2.IDOf("x")
	_ = v2.WithPrefix("x")
	v2.IDOf("xy") // added after the prefix index exists
	if got := v2.WithPrefix("x"); !reflect.DeepEqual(got, []string{"x", "xy"}) {
		t.Fatalf("prefix search after growth = %v", got)
	}
	if got := v.WithPrefix("q"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}
