// Package hashkernel implements the proof-of-work hash kernel: the inner
// loop that mutates a serialized header's nonce and creation-time fields,
// rehashes it, and compares the digest to a target.
package hashkernel

import (
	"crypto/sha512"
	"hash"

	"github.com/dchest/blake2b"
	"github.com/kadena-io/chainweb-mining-worker/chainweb"
	"gitlab.com/NebulousLabs/errors"
)

// DigestSize is the fixed output length every Algorithm must produce.
const DigestSize = 32

// Algorithm is the hash capability the kernel mines with: it produces a
// 32-byte digest of arbitrary input. Implementations must be safe to
// call exclusively from a single goroutine; each worker owns its own
// Algorithm instance.
type Algorithm interface {
	// Reset clears any state left over from a previous digest.
	Reset()
	// Write feeds header bytes into the digest. It never returns an error
	// in normal operation; a non-nil error is fatal and aborts the
	// mining run.
	Write(p []byte) (int, error)
	// Sum32 finalizes the digest into a 32-byte array without mutating
	// the algorithm's internal state in a way that would prevent a
	// subsequent Reset+Write+Sum32 cycle.
	Sum32() ([DigestSize]byte, error)
}

// hashAlgorithm adapts a stdlib/ecosystem hash.Hash (which always
// produces DigestSize-byte sums for the algorithms registered here) to
// the Algorithm interface.
type hashAlgorithm struct {
	h hash.Hash
}

func (a *hashAlgorithm) Reset()                  { a.h.Reset() }
func (a *hashAlgorithm) Write(p []byte) (int, error) { return a.h.Write(p) }

func (a *hashAlgorithm) Sum32() ([DigestSize]byte, error) {
	var out [DigestSize]byte
	sum := a.h.Sum(nil)
	if len(sum) != DigestSize {
		return out, errors.New("digest algorithm produced an unexpected output size")
	}
	copy(out[:], sum)
	return out, nil
}

// sha512256Factory returns a fresh truncated SHA-512/256 algorithm
// instance, the default digest for all current chainweb versions.
func sha512256Factory() Algorithm {
	return &hashAlgorithm{h: sha512.New512_256()}
}

// Blake2b256 returns a fresh Blake2b-256 algorithm instance. No current
// chainweb version selects it; it is kept ready as the alternate digest
// a future version could map in the selection table, and is exercised by
// the unit tests.
func Blake2b256() Algorithm {
	return &hashAlgorithm{h: blake2b.New256()}
}

// ErrUnknownVersion is returned by NewForVersion when no algorithm is
// registered for the requested chainweb version. The version enumeration
// and this selection table are kept in sync: every
// chainweb.ChainwebVersion value has exactly one entry below.
var ErrUnknownVersion = errors.New("no hash algorithm registered for this chainweb version")

// selection maps each supported chainweb version to the factory for its
// digest algorithm.
var selection = map[chainweb.ChainwebVersion]func() Algorithm{
	chainweb.Test:       sha512256Factory,
	chainweb.Simulation: sha512256Factory,
	chainweb.Testnet00:  sha512256Factory,
}

// NewForVersion returns a fresh Algorithm instance for the digest
// algorithm configured for v. Callers needing N concurrent workers call
// this N times, once per worker; algorithm instances are not shared.
func NewForVersion(v chainweb.ChainwebVersion) (Algorithm, error) {
	factory, ok := selection[v]
	if !ok {
		return nil, errors.Extend(ErrUnknownVersion, errors.New(v.String()))
	}
	return factory(), nil
}
