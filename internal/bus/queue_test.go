package bus

import "testing"

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Send(Goto{LineNo: 1})
	q.Send(Goto{LineNo: 2})

	if m := q.Receive().(Goto); m.LineNo != 1 {
		t.Fatalf("expected first Goto, got %v", m)
	}
	if m := q.Receive().(Goto); m.LineNo != 2 {
		t.Fatalf("expected second Goto, got %v", m)
	}
}

func TestQueueCoalescesPointerMoved(t *testing.T) {
	q := NewQueue()
	q.Send(PointerMoved{LineNo: 1})
	q.Send(PointerMoved{LineNo: 2})
	q.Send(PointerMoved{LineNo: 3})

	if q.Len() != 1 {
		t.Fatalf("expected coalesced queue length 1, got %d", q.Len())
	}
	m := q.Receive().(PointerMoved)
	if m.LineNo != 3 {
		t.Fatalf("expected latest pointer position 3, got %d", m.LineNo)
	}
}

func TestQueueCoalescesPerFileSizeChanged(t *testing.T) {
	q := NewQueue()
	q.Send(SizeChanged{Path: "a.log", Size: 10})
	q.Send(SizeChanged{Path: "b.log", Size: 20})
	q.Send(SizeChanged{Path: "a.log", Size: 15})

	if q.Len() != 2 {
		t.Fatalf("expected 2 distinct pending messages, got %d", q.Len())
	}
}
