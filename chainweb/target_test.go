package chainweb

import (
	"math/big"
	"strings"
	"testing"

	"github.com/NebulousLabs/fastrand"
)

// TestTargetMeets checks the little-endian 256-bit comparison against
// hand-built digests, including the inclusive boundary.
func TestTargetMeets(t *testing.T) {
	// The maximum target is met by any digest.
	for i := 0; i < 10; i++ {
		var digest [32]byte
		fastrand.Read(digest[:])
		if !MaxTarget.Meets(digest) {
			t.Errorf("max target rejected digest %x", digest)
		}
	}

	// The zero target is met only by the all-zero digest.
	if !ZeroTarget.Meets([32]byte{}) {
		t.Error("zero target should accept the all-zero digest")
	}
	var one [32]byte
	one[0] = 1
	if ZeroTarget.Meets(one) {
		t.Error("zero target should reject a nonzero digest")
	}

	// The bound is inclusive: a digest equal to the target meets it.
	var target HashTarget
	fastrand.Read(target[:])
	if !target.Meets([32]byte(target)) {
		t.Error("a digest equal to the target should meet it")
	}

	// The comparison is decided at the most significant limb first. Byte
	// 31 is the most significant byte of limb 3.
	var low, high [32]byte
	copy(low[:], target[:])
	copy(high[:], target[:])
	low[31] = 0x00
	high[31] = 0xff
	target[31] = 0x7f
	if !target.Meets(low) {
		t.Error("digest below the target in the top limb should meet it")
	}
	if target.Meets(high) {
		t.Error("digest above the target in the top limb should not meet it")
	}

	// When the top limbs are equal, lower limbs decide.
	copy(low[:], target[:])
	copy(high[:], target[:])
	low[16] = 0x00
	high[16] = 0xff
	target[16] = 0x7f
	if !target.Meets(low) {
		t.Error("digest below the target in limb 2 should meet it")
	}
	if target.Meets(high) {
		t.Error("digest above the target in limb 2 should not meet it")
	}
}

// TestTargetInt checks the big.Int conversion used for display.
func TestTargetInt(t *testing.T) {
	maxInt := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	if MaxTarget.Int().Cmp(maxInt) != 0 {
		t.Error("max target should convert to 2^256 - 1, got", MaxTarget.Int())
	}
	if ZeroTarget.Int().Sign() != 0 {
		t.Error("zero target should convert to 0, got", ZeroTarget.Int())
	}

	var t1 HashTarget
	t1[0] = 0x2a
	if t1.Int().Cmp(big.NewInt(0x2a)) != 0 {
		t.Error("byte 0 should be the least significant, got", t1.Int())
	}
}

// TestTargetString checks the hex rendering, most significant byte
// first.
func TestTargetString(t *testing.T) {
	if s := MaxTarget.String(); s != strings.Repeat("f", 64) {
		t.Error("unexpected max target rendering:", s)
	}
	if s := ZeroTarget.String(); s != strings.Repeat("0", 64) {
		t.Error("unexpected zero target rendering:", s)
	}
	var t1 HashTarget
	t1[0] = 0x2a
	if s := t1.String(); s != strings.Repeat("0", 62)+"2a" {
		t.Error("byte 0 should render last:", s)
	}
}
