package chainweb

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// TargetSize is the serialized length of a HashTarget, four little-endian
// 64-bit words.
const TargetSize = 32

// HashTarget is a 256-bit upper bound on a block's digest, stored as four
// little-endian 64-bit words (word 0 least significant, word 3 most
// significant). A block's digest must be numerically <= the target.
type HashTarget [TargetSize]byte

// MaxTarget is the maximum possible target: every digest satisfies it.
var MaxTarget = HashTarget{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// ZeroTarget is the minimum possible target: only an all-zero digest
// satisfies it.
var ZeroTarget HashTarget

// words returns the four little-endian 64-bit limbs of b, index 0 least
// significant.
func words(b [32]byte) (w [4]uint64) {
	for i := 0; i < 4; i++ {
		w[i] = binary.LittleEndian.Uint64(b[i*8 : i*8+8])
	}
	return w
}

// Meets reports whether digest satisfies the target, i.e. digest <= t when
// both are interpreted as little-endian 256-bit unsigned integers. The
// comparison proceeds from the most significant limb (index 3) down to the
// least significant (index 0); an all-equal digest meets the target (the
// bound is inclusive).
func (t HashTarget) Meets(digest [32]byte) bool {
	tw := words([32]byte(t))
	pw := words(digest)
	for i := 3; i >= 0; i-- {
		if pw[i] < tw[i] {
			return true
		}
		if pw[i] > tw[i] {
			return false
		}
	}
	return true
}

// Int returns t as a big.Int, for operator-facing display and difficulty
// arithmetic performed outside the core.
func (t HashTarget) Int() *big.Int {
	be := make([]byte, TargetSize)
	for i := 0; i < TargetSize; i++ {
		be[i] = t[TargetSize-1-i]
	}
	return new(big.Int).SetBytes(be)
}

// String renders t as a hex string, most significant byte first.
func (t HashTarget) String() string {
	return fmt.Sprintf("%064x", t.Int())
}
