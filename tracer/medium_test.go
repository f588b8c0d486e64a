package tracer

import "testing"

func TestMediumStackSentinel(t *testing.T) {
	s := NewMediumStack(4)
	if s.Depth() != 1 {
		t.Fatalf("expected depth 1 on a fresh stack; got %d", s.Depth())
	}
	if got := s.Top(); got.Index != 1 {
		t.Fatalf("expected the air sentinel with index 1 on top; got %+v", got)
	}

	// The sentinel can never be popped.
	if _, ok := s.Pop(); ok {
		t.Fatal("expected Pop to fail with only the sentinel present")
	}
	if s.Depth() != 1 {
		t.Fatalf("expected depth 1 after a failed pop; got %d", s.Depth())
	}
}

func TestMediumStackPushPop(t *testing.T) {
	s := NewMediumStack(2)
	glass := Medium{Index: 1.5}
	water := Medium{Index: 1.33}

	if !s.Push(glass) || !s.Push(water) {
		t.Fatal("expected pushes within capacity to succeed")
	}
	if s.Top() != water {
		t.Fatalf("expected water on top; got %+v", s.Top())
	}

	// The stack is full; a further push must leave it unchanged.
	if s.Push(Medium{Index: 2}) {
		t.Fatal("expected Push to fail on a full stack")
	}
	if s.Depth() != 3 || s.Top() != water {
		t.Fatalf("expected an unchanged stack after a failed push; got depth %d top %+v", s.Depth(), s.Top())
	}

	if m, ok := s.Pop(); !ok || m != water {
		t.Fatalf("expected to pop water; got %+v ok=%v", m, ok)
	}
	if m, ok := s.Pop(); !ok || m != glass {
		t.Fatalf("expected to pop glass; got %+v ok=%v", m, ok)
	}
	if _, ok := s.Pop(); ok {
		t.Fatal("expected Pop to fail once only the sentinel remains")
	}
}

func TestMediumStackPopUntil1(t *testing.T) {
	s := NewMediumStack(4)
	s.Push(Medium{Index: 1.5})
	s.Push(Medium{Index: 1.33})
	s.PopUntil1()
	if s.Depth() != 1 || s.Top().Index != 1 {
		t.Fatalf("expected only the air sentinel after PopUntil1; got depth %d top %+v", s.Depth(), s.Top())
	}
}
