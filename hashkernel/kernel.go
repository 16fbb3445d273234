package hashkernel

import (
	"encoding/binary"
	"time"

	"github.com/kadena-io/chainweb-mining-worker/build"
	"github.com/kadena-io/chainweb-mining-worker/chainweb"
	"gitlab.com/NebulousLabs/errors"
)

// timeRefreshInterval is the number of inner iterations between
// creation-time refreshes, keeping found headers' timestamps plausible
// during long searches.
const timeRefreshInterval = 100_000

// Clock abstracts wall-clock time so tests can mock the creation-time
// refresh. It returns microseconds since the epoch.
type Clock func() uint64

// defaultClock reads the real wall clock.
func defaultClock() uint64 {
	return uint64(time.Now().UnixNano() / 1000)
}

// Mine repeatedly mutates buf's nonce (bytes [0,8)) and, every
// timeRefreshInterval iterations, its creation time (bytes [8,16)),
// rehashing and comparing against target until either a nonce is found or
// cancel is closed. buf is mutated in place; the caller owns it and must
// not share it with another concurrent Mine call.
//
// On success, Mine returns (finalNonce, true) with buf left in the
// winning state. On cancellation, it returns (0, false) with buf in
// whatever partial state it reached; callers must discard a buffer from
// a cancelled run rather than publish it.
//
// algo is reset before every hash attempt; it must not be shared with
// another concurrent Mine call.
func Mine(buf []byte, target chainweb.HashTarget, n0 uint64, algo Algorithm, cancel <-chan struct{}, clock Clock) (uint64, bool, error) {
	if clock == nil {
		clock = defaultClock
	}

	// Sanity check - the buffer must at least hold the nonce and
	// creation-time fields the loop writes.
	if len(buf) < 16 {
		build.Critical("hashkernel: header buffer is too short to mine:", len(buf))
		return 0, false, errors.New("hashkernel: header buffer is too short to mine")
	}

	n := n0
	i := 0
	for {
		if i == 0 {
			// Cancellation is checked once per batch, not on every
			// iteration, so the hot loop below never touches the
			// scheduler.
			select {
			case <-cancel:
				return 0, false, nil
			default:
			}
		}

		if i == timeRefreshInterval {
			binary.LittleEndian.PutUint64(buf[8:16], clock())
			i = 0
			continue
		}

		binary.LittleEndian.PutUint64(buf[0:8], n)

		algo.Reset()
		if _, err := algo.Write(buf); err != nil {
			return 0, false, err
		}
		pow, err := algo.Sum32()
		if err != nil {
			return 0, false, err
		}

		if target.Meets(pow) {
			return n, true, nil
		}

		i++
		n++ // wraps around modulo 2^64; the periodic time update keeps continued search meaningful
	}
}
