package ids

import "testing"

func TestNewProducesValidSortableIDs(t *testing.T) {
	a := New()
	b := New()
	if !IsValid(a) || !IsValid(b) {
		t.Fatalf("generated ids invalid: %q %q", a, b)
	}
	if a == b {
		t.Fatalf("consecutive ids collide: %q", a)
	}
	if b < a {
		t.Fatalf("ids not monotonic: %q then %q", a, b)
	}
}

func TestIsValidRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FA", "01ARZ3NDEKTSV4RRFFQ69G5FAVX"} {
		if IsValid(s) {
			t.Fatalf("IsValid(%q) = true", s)
		}
	}
}
