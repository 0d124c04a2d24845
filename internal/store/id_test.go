package store

import "testing"

func TestNewIDIsMonotonicAndValid(t *testing.T) {
	prev := NewID()
	if !ValidID(prev) {
		t.Fatalf("NewID produced invalid id %q", prev)
	}
	for i := 0; i < 1000; i++ {
		id := NewID()
		if id <= prev {
			t.Fatalf("id %q not after %q", id, prev)
		}
		prev = id
	}
	if ValidID("not-an-id") {
		t.Fatal("expected garbage id to be invalid")
	}
}
