package apply

import (
	"testing"

	"github.com/autosv/autosv/pkg/model"
)

func TestApply_EmptyQueueReturnsSourceUnchanged(t *testing.T) {
	src := []byte("module m; endmodule")
	q := NewQueue(len(src))
	out, err := Apply(src, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != string(src) {
		t.Fatalf("got %q", out)
	}
}

func TestApply_SingleReplacement(t *testing.T) {
	src := []byte("abcXXXdef")
	q := NewQueue(len(src))
	q.Add(model.Replacement{Start: 3, End: 6, NewText: "123"})
	out, err := Apply(src, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "abc123def" {
		t.Fatalf("got %q", out)
	}
}

func TestApply_MultipleNonOverlapping(t *testing.T) {
	src := []byte("AAAbbbCCC")
	q := NewQueue(len(src))
	q.Add(model.Replacement{Start: 0, End: 3, NewText: "1"})
	q.Add(model.Replacement{Start: 6, End: 9, NewText: "2"})
	out, err := Apply(src, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "1bbb2" {
		t.Fatalf("got %q", out)
	}
}

func TestValidate_DetectsOverlap(t *testing.T) {
	q := NewQueue(10)
	q.Add(model.Replacement{Start: 0, End: 5, Label: "a"})
	q.Add(model.Replacement{Start: 3, End: 8, Label: "b"})
	if err := q.Validate(); err == nil {
		t.Fatalf("expected overlap to be detected")
	}
}

func TestAdd_PanicsOutOfBounds(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on out-of-bounds replacement")
		}
	}()
	q := NewQueue(5)
	q.Add(model.Replacement{Start: 0, End: 10})
}

func TestApply_AdjacentReplacementsDoNotOverlap(t *testing.T) {
	src := []byte("0123456789")
	q := NewQueue(len(src))
	q.Add(model.Replacement{Start: 0, End: 5, NewText: "A"})
	q.Add(model.Replacement{Start: 5, End: 10, NewText: "B"})
	out, err := Apply(src, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "AB" {
		t.Fatalf("got %q", out)
	}
}
