// Package workerpool parallelizes a proof-of-work search for one job
// across the configured number of CPU cores, returning the first valid
// result and guaranteeing no worker outlives the call.
package workerpool

import (
	"sync"

	"github.com/kadena-io/chainweb-mining-worker/chainweb"
	"github.com/kadena-io/chainweb-mining-worker/hashkernel"
	"github.com/kadena-io/chainweb-mining-worker/internal/syncutil"
	"gitlab.com/NebulousLabs/errors"
)

// workerStride is the per-worker starting-nonce offset: worker k starts
// at n0 + k*workerStride, so workers explore disjoint
// regions of the nonce space before their independent increments can
// possibly collide.
const workerStride = 1 << 56

// Result is the winning worker's output: the mutated header buffer, the
// nonce that satisfied the target, and how many nonces that worker tried
// before finding it.
type Result struct {
	Buf      []byte
	Nonce    uint64
	Attempts uint64
}

// AlgorithmFactory returns a fresh hashkernel.Algorithm instance. Each
// worker gets its own, since algorithms are not safe to share across
// goroutines.
type AlgorithmFactory func() (hashkernel.Algorithm, error)

// Mine spawns cores independent kernel invocations over clones of
// template, each starting from a disjoint nonce stride, and returns the
// first one that satisfies target. If cores == 1 the kernel runs inline
// with no goroutine spawned at all.
//
// Mine blocks until either a worker succeeds or cancel is closed; in the
// latter case it returns a nil Result and a nil error once every spawned
// worker has observed the cancellation and returned. No worker goroutine
// ever outlives the call.
func Mine(template []byte, target chainweb.HashTarget, n0 uint64, cores int, newAlgorithm AlgorithmFactory, cancel <-chan struct{}, clock hashkernel.Clock) (*Result, error) {
	if cores < 1 {
		return nil, errors.New("workerpool: cores must be >= 1")
	}

	if cores == 1 {
		return mineOne(template, target, n0, newAlgorithm, cancel, clock)
	}

	var tg syncutil.ThreadGroup
	// internalCancel is closed either when the caller cancels, or when
	// one worker succeeds and the rest must stop.
	internalCancel := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(internalCancel) }) }

	results := make(chan Result, cores)
	errs := make(chan error, cores)

	for k := 0; k < cores; k++ {
		if err := tg.Add(); err != nil {
			// ThreadGroup is fresh per Mine call and cannot already be
			// stopped; this branch exists only to satisfy the Add
			// contract.
			stop()
			break
		}
		buf := append([]byte(nil), template...)
		start := n0 + uint64(k)*workerStride
		go func(buf []byte, start uint64) {
			defer tg.Done()

			algo, err := newAlgorithm()
			if err != nil {
				errs <- errors.AddContext(err, "workerpool: could not build hash algorithm")
				stop()
				return
			}

			nonce, ok, err := hashkernel.Mine(buf, target, start, algo, internalCancel, clock)
			if err != nil {
				errs <- errors.AddContext(err, "workerpool: digest algorithm failed")
				stop()
				return
			}
			if !ok {
				return
			}
			stop()
			results <- Result{Buf: buf, Nonce: nonce, Attempts: nonce - start}
		}(buf, start)
	}

	// Race the caller's cancellation against the internal one so a
	// preemption promptly tears down every worker.
	go func() {
		select {
		case <-cancel:
			stop()
		case <-internalCancel:
		}
	}()

	// Stop blocks until every worker goroutine has called tg.Done(),
	// satisfying the "pool never returns until all workers have
	// terminated" invariant; it is otherwise unused here since nothing
	// selects on tg.StopChan().
	_ = tg.Stop()

	select {
	case res := <-results:
		return &res, nil
	default:
	}
	select {
	case err := <-errs:
		return nil, err
	default:
	}
	return nil, nil
}

// mineOne runs the kernel inline with no extra goroutine, for cores == 1.
func mineOne(template []byte, target chainweb.HashTarget, n0 uint64, newAlgorithm AlgorithmFactory, cancel <-chan struct{}, clock hashkernel.Clock) (*Result, error) {
	algo, err := newAlgorithm()
	if err != nil {
		return nil, errors.AddContext(err, "workerpool: could not build hash algorithm")
	}
	buf := append([]byte(nil), template...)
	nonce, ok, err := hashkernel.Mine(buf, target, n0, algo, cancel, clock)
	if err != nil {
		return nil, errors.AddContext(err, "workerpool: digest algorithm failed")
	}
	if !ok {
		return nil, nil
	}
	return &Result{Buf: buf, Nonce: nonce, Attempts: nonce - n0}, nil
}
