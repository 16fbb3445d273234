package mailbox

import (
	"testing"
	"time"
)

// TestPutTake checks the basic fill-then-consume cycle.
func TestPutTake(t *testing.T) {
	m := New[int]()

	if _, ok, _ := m.TakeWithWaitChan(); ok {
		t.Fatal("a fresh mailbox should be empty")
	}

	m.Put(1)
	if v := m.Take(); v != 1 {
		t.Fatal("expected to take 1, got", v)
	}
	if _, ok, _ := m.TakeWithWaitChan(); ok {
		t.Fatal("the slot should be empty after a take")
	}
}

// TestPutReplaces checks that a write into a full slot replaces the
// contents instead of blocking or failing.
func TestPutReplaces(t *testing.T) {
	m := New[int]()
	m.Put(1)
	m.Put(2)
	m.Put(3)
	if v := m.Take(); v != 3 {
		t.Fatal("expected the most recent value 3, got", v)
	}
	if _, ok, _ := m.TakeWithWaitChan(); ok {
		t.Fatal("only one value should come out of the slot")
	}
}

// TestTakeBlocks checks that Take waits for a Put instead of returning
// early.
func TestTakeBlocks(t *testing.T) {
	m := New[int]()
	got := make(chan int)
	go func() {
		got <- m.Take()
	}()

	select {
	case v := <-got:
		t.Fatal("Take returned", v, "from an empty mailbox")
	case <-time.After(50 * time.Millisecond):
	}

	m.Put(7)
	select {
	case v := <-got:
		if v != 7 {
			t.Fatal("expected to take 7, got", v)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Take did not observe the Put")
	}
}

// TestWaitNewFreshness checks that a wait begun after a Put does not fire
// on that Put, only on the next one.
func TestWaitNewFreshness(t *testing.T) {
	m := New[int]()
	m.Put(1)

	ch := m.WaitNewChan()
	select {
	case <-ch:
		t.Fatal("the wait fired on a write that happened before it began")
	default:
	}

	m.Put(2)
	select {
	case <-ch:
	default:
		t.Fatal("the wait did not fire on a write that happened after it began")
	}

	// The write was a peek target, not consumed: the value is still there.
	if v, ok, _ := m.TakeWithWaitChan(); !ok || v != 2 {
		t.Fatal("the waited-on value should still be in the slot")
	}
}

// TestTakeWithWaitChan checks that the combined operation is atomic: the
// returned channel never fires for the write that supplied the returned
// value, only for a strictly later one.
func TestTakeWithWaitChan(t *testing.T) {
	m := New[int]()
	m.Put(1)

	v, ok, ch := m.TakeWithWaitChan()
	if !ok || v != 1 {
		t.Fatal("expected to take 1")
	}
	select {
	case <-ch:
		t.Fatal("the wait channel fired for the write that supplied the value")
	default:
	}

	m.Put(2)
	select {
	case <-ch:
	default:
		t.Fatal("the wait channel did not fire for a later write")
	}
	if v, ok, _ := m.TakeWithWaitChan(); !ok || v != 2 {
		t.Fatal("the later write should still be in the slot")
	}

	// On an empty slot the channel still signals the next Put.
	_, ok, ch = m.TakeWithWaitChan()
	if ok {
		t.Fatal("the slot should be empty")
	}
	m.Put(3)
	select {
	case <-ch:
	default:
		t.Fatal("the empty-slot wait channel did not fire on the next write")
	}
}
