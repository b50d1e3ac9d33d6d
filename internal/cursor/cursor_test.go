package cursor

import "testing"

func TestPeekAndPrevious(t *testing.T) {
	s := []int{1, 2, 3}
	if v := Peek(s, 1); v == nil || *v != 2 {
		t.Fatalf("got %v", v)
	}
	if v := Peek(s, 3); v != nil {
		t.Fatalf("expected nil, got %v", *v)
	}
	if v := Previous(s, 1); v == nil || *v != 1 {
		t.Fatalf("got %v", v)
	}
}
