package syncutil

import (
	"errors"
	"sync"
)

// ErrStopped is returned by ThreadGroup methods if Stop has already been
// called.
var ErrStopped = errors.New("thread group already stopped")

// ThreadGroup coordinates the lifetimes of the worker's long-running
// goroutines: the supervisor's mining loop and the search threads a
// worker pool spawns. It pairs a sync.WaitGroup with a stop channel, so
// that goroutines blocked in a select can be interrupted and the owner
// can block until every registered goroutine has returned. A ThreadGroup
// is only intended to be used once; after Stop, Add returns an error.
type ThreadGroup struct {
	chanOnce sync.Once
	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// StopChan provides read-only access to the ThreadGroup's stop channel.
// Goroutines select on it to interrupt long-running waits, such as the
// mining loop's wait for new work.
func (tg *ThreadGroup) StopChan() <-chan struct{} {
	// Initialize tg.stopChan if it is nil; this keeps the zero
	// ThreadGroup valid without a constructor.
	tg.chanOnce.Do(func() { tg.stopChan = make(chan struct{}) })
	return tg.stopChan
}

// isStopped will return true if the stopChan has been closed, indicating
// that Stop() has been called.
func (tg *ThreadGroup) isStopped() bool {
	select {
	case <-tg.StopChan():
		return true
	default:
		return false
	}
}

// Add registers a goroutine with the group. Every successful Add must be
// matched by exactly one Done.
func (tg *ThreadGroup) Add() error {
	tg.mu.Lock()
	defer tg.mu.Unlock()

	if tg.isStopped() {
		return ErrStopped
	}
	tg.wg.Add(1)
	return nil
}

// Done deregisters a goroutine from the group.
func (tg *ThreadGroup) Done() {
	tg.wg.Done()
}

// Stop closes the stop channel and blocks until every registered
// goroutine has called Done.
func (tg *ThreadGroup) Stop() error {
	tg.mu.Lock()
	defer tg.mu.Unlock()

	if tg.isStopped() {
		return ErrStopped
	}
	close(tg.stopChan)
	tg.wg.Wait()
	return nil
}
