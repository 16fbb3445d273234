// Package mailbox implements the single-slot transactional cell the
// supervisor uses to hand off job submissions without losing wake-ups.
// It is a condition-variable-guarded slot realized with a per-generation
// broadcast channel instead of a sync.Cond, so that a "wait for new work"
// can be selected against other activity without spawning a watcher
// goroutine for every call.
package mailbox

import "sync"

// Mailbox is a single-slot cell holding at most one pending value of type
// T. Writes are non-blocking and replace any existing contents. Reads
// either consume the current value (Take, TakeWithWaitChan) or wait for a
// value written strictly after the wait began (WaitNewChan), without
// consuming it.
type Mailbox[T any] struct {
	mu     sync.Mutex
	value  T
	full   bool
	notify chan struct{} // closed by the next Put; swapped for a fresh one each time
}

// New returns an empty Mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{notify: make(chan struct{})}
}

// Put replaces the slot's contents unconditionally; the slot is always
// full after Put returns. The replace is a single atomic operation, never
// a racy isEmpty-then-swap sequence that could lose a submission.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	m.value = v
	m.full = true
	old := m.notify
	m.notify = make(chan struct{})
	m.mu.Unlock()
	close(old)
}

// Take blocks until the slot is non-empty, then consumes and returns the
// value, leaving the slot empty.
func (m *Mailbox[T]) Take() T {
	for {
		m.mu.Lock()
		if m.full {
			v := m.value
			m.full = false
			var zero T
			m.value = zero
			m.mu.Unlock()
			return v
		}
		ch := m.notify
		m.mu.Unlock()
		<-ch
	}
}

// TakeWithWaitChan consumes the slot's value, if one is present, and
// returns the channel that the next Put will close. The consume and the
// channel read happen under a single lock acquisition, so the returned
// channel can only be closed by a Put that happens after the value was
// taken: one Put can never both supply the returned value and fire the
// returned channel. When the slot is empty, the channel still signals
// the next Put, letting the caller select arrival against other events
// such as shutdown.
func (m *Mailbox[T]) TakeWithWaitChan() (T, bool, <-chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.notify
	if !m.full {
		var zero T
		return zero, false, ch
	}
	v := m.value
	m.full = false
	var zero T
	m.value = zero
	return v, true, ch
}

// WaitNewChan returns a channel that is closed by the next Put that
// happens after this call. This is a peek, not a take: the value stays in the
// slot for a subsequent Take. Unlike a condition-variable wait, no
// goroutine is spawned: the channel returned here is exactly the one the
// next Put will close, so a caller can select on it alongside other
// asynchronous activity and simply stop selecting on it
// without leaking anything if it loses the race.
func (m *Mailbox[T]) WaitNewChan() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notify
}
