// Package supervisor owns the job mailbox and the results map, racing
// each submitted job against preemption by a newer submission, and
// exposing non-blocking submit and poll operations to callers.
package supervisor

import (
	"encoding/binary"
	"os"
	"time"

	"github.com/kadena-io/chainweb-mining-worker/chainweb"
	"github.com/kadena-io/chainweb-mining-worker/hashkernel"
	"github.com/kadena-io/chainweb-mining-worker/internal/syncutil"
	"github.com/kadena-io/chainweb-mining-worker/mailbox"
	"github.com/kadena-io/chainweb-mining-worker/persist"
	"github.com/kadena-io/chainweb-mining-worker/workerpool"
	"gitlab.com/NebulousLabs/errors"
)

// job is the internal unit the mining loop consumes from the mailbox: a
// validated header buffer plus the metadata extracted from it at submit
// time.
type job struct {
	buf  []byte
	info chainweb.HeaderInfo
}

// Supervisor owns the single mining slot: at most one
// job is being searched at any instant, any in-flight run is cancelled
// before a new one starts, and results accumulate in a map that is never
// evicted by the core.
type Supervisor struct {
	cores   int
	version chainweb.ChainwebVersion
	decoder chainweb.Decoder
	log     *persist.Logger

	work *mailbox.Mailbox[job]

	mu      *syncutil.RWMutex
	results map[chainweb.Key]chainweb.BlockHeader

	// Hashrate bookkeeping: an approximate figure derived from the
	// winning worker's attempt count, scaled by the worker count, since
	// the kernel does not report iteration counts for losing workers.
	attempts uint64
	hashRate float64

	tg *syncutil.ThreadGroup

	clock hashkernel.Clock // overridable for tests; nil means wall clock.
}

// Config holds the startup parameters for a Supervisor.
type Config struct {
	Cores   int
	Version chainweb.ChainwebVersion
	Decoder chainweb.Decoder // defaults to chainweb.RawDecoder{} if nil
	Log     *persist.Logger  // defaults to a stdout stream logger if nil
}

// New starts a Supervisor and its background mining loop. Callers must
// call Close to release the mining loop's goroutine.
func New(cfg Config) (*Supervisor, error) {
	if cfg.Cores < 1 {
		return nil, errors.New("supervisor: cores must be >= 1")
	}
	decoder := cfg.Decoder
	if decoder == nil {
		decoder = chainweb.RawDecoder{}
	}
	log := cfg.Log
	if log == nil {
		log = persist.NewStreamLogger(os.Stdout)
	}

	s := &Supervisor{
		cores:   cfg.Cores,
		version: cfg.Version,
		decoder: decoder,
		log:     log,
		work:    mailbox.New[job](),
		mu:      syncutil.NewRWMutex(time.Minute, 1),
		results: make(map[chainweb.Key]chainweb.BlockHeader),
		tg:      &syncutil.ThreadGroup{},
	}

	if err := s.tg.Add(); err != nil {
		return nil, errors.AddContext(err, "supervisor: could not start mining loop")
	}
	go func() {
		defer s.tg.Done()
		s.threadedMine()
	}()

	return s, nil
}

// Submit places header into the work mailbox, replacing any pending job.
// It validates the header's serialized length and target before accepting
// it; a malformed header is rejected synchronously and the mailbox is
// left untouched.
func (s *Supervisor) Submit(header chainweb.BlockHeader) error {
	return s.SubmitBytes(header.Bytes())
}

// SubmitBytes is Submit for callers that already hold the serialized
// header, such as the HTTP layer. The buffer is copied before it is
// placed in the mailbox.
func (s *Supervisor) SubmitBytes(buf []byte) error {
	if len(buf) != s.decoder.HeaderLength() {
		return chainweb.ErrWrongHeaderLength
	}
	_, info, err := s.decoder.Decode(buf)
	if err != nil {
		return errors.AddContext(err, "supervisor: rejected malformed header")
	}
	s.work.Put(job{buf: append([]byte(nil), buf...), info: info})
	return nil
}

// Version returns the chainweb version this supervisor mines for.
func (s *Supervisor) Version() chainweb.ChainwebVersion {
	return s.version
}

// Poll looks up the most recent completed header for key. It never
// blocks.
func (s *Supervisor) Poll(key chainweb.Key) (chainweb.BlockHeader, bool) {
	lockID := s.mu.RLock()
	defer s.mu.RUnlock(lockID)
	h, ok := s.results[key]
	return h, ok
}

// Hashrate returns an approximate measure of recent hashes per second.
func (s *Supervisor) Hashrate() float64 {
	lockID := s.mu.RLock()
	defer s.mu.RUnlock(lockID)
	return s.hashRate
}

// Solved returns how many distinct (chain id, height) keys have a
// published header, and roughly how many nonces winning workers tried
// across all successful runs.
func (s *Supervisor) Solved() (headers int, attempts uint64) {
	lockID := s.mu.RLock()
	defer s.mu.RUnlock(lockID)
	return len(s.results), s.attempts
}

// Close stops the mining loop and waits for it and any in-flight worker
// pool run to terminate. Submit and SubmitBytes still place work in the
// mailbox after Close, but that work is never mined.
func (s *Supervisor) Close() error {
	return s.tg.Stop()
}

// threadedMine is the supervisor's long-running mining loop. It is the
// only goroutine that writes to s.results.
func (s *Supervisor) threadedMine() {
	stopChan := s.tg.StopChan()
	for {
		// The take and the wake-up channel come from one atomic mailbox
		// operation: newWork fires only for a submission that happens
		// after j was consumed, never for the write that supplied j.
		j, ok, newWork := s.work.TakeWithWaitChan()
		if !ok {
			select {
			case <-stopChan:
				return
			case <-newWork:
			}
			continue
		}
		s.runJob(j, newWork, stopChan)
	}
}

// runJob races one worker-pool run against both a newer submission and
// supervisor shutdown. newWork must be the channel returned by the
// TakeWithWaitChan call that produced j, so that it fires exactly for
// submissions newer than j.
func (s *Supervisor) runJob(j job, newWork <-chan struct{}, stopChan <-chan struct{}) {
	cancel := make(chan struct{})

	type outcome struct {
		res *workerpool.Result
		err error
	}
	done := make(chan outcome, 1)

	n0 := binary.LittleEndian.Uint64(j.buf[0:8])
	jobStart := time.Now()
	go func() {
		res, err := workerpool.Mine(j.buf, j.info.Target, n0, s.cores, s.algorithmFactory(), cancel, s.clock)
		done <- outcome{res, err}
	}()

	select {
	case <-stopChan:
		close(cancel)
		<-done
		return
	case <-newWork:
		close(cancel)
		<-done
		// The new submission stays in the mailbox (the wake-up is a
		// peek, not a take) for the next loop iteration to consume.
		return
	case o := <-done:
		close(cancel)
		if o.err != nil {
			s.log.Println("ERROR: mining run aborted by a fatal digest error:", o.err)
			return
		}
		if o.res == nil {
			// Kernel returned without success and without error, which
			// only happens on cancellation; nothing to record.
			return
		}
		s.recordResult(o.res, jobStart)
	}
}

// recordResult re-parses the winning buffer into a BlockHeader and
// publishes it under its key.
func (s *Supervisor) recordResult(res *workerpool.Result, jobStart time.Time) {
	header, info, err := s.decoder.Decode(res.Buf)
	if err != nil {
		// A layout assumption was violated: the buffer that won the race
		// can no longer be parsed. This is a bug, not caller error; no
		// corrupt result is published.
		s.log.Critical("supervisor: could not re-parse a winning header:", err)
		return
	}

	lockID := s.mu.Lock()
	s.results[info.Key] = header
	s.attempts += res.Attempts
	if elapsed := time.Since(jobStart).Seconds(); elapsed > 0 {
		s.hashRate = float64(res.Attempts) * float64(s.cores) / elapsed
	}
	s.mu.Unlock(lockID)
}

// algorithmFactory returns a workerpool.AlgorithmFactory bound to the
// supervisor's configured chainweb version.
func (s *Supervisor) algorithmFactory() workerpool.AlgorithmFactory {
	version := s.version
	return func() (hashkernel.Algorithm, error) {
		return hashkernel.NewForVersion(version)
	}
}
