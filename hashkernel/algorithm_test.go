package hashkernel

import (
	"bytes"
	"crypto/sha512"
	"testing"

	"github.com/NebulousLabs/fastrand"
	"github.com/kadena-io/chainweb-mining-worker/chainweb"
	"gitlab.com/NebulousLabs/errors"
)

// TestNewForVersion checks that every known chainweb version selects a
// working algorithm and that unknown versions are rejected.
func TestNewForVersion(t *testing.T) {
	input := fastrand.Bytes(88)
	want := sha512.Sum512_256(input)

	for _, version := range []chainweb.ChainwebVersion{chainweb.Test, chainweb.Simulation, chainweb.Testnet00} {
		algo, err := NewForVersion(version)
		if err != nil {
			t.Fatalf("%v: %v", version, err)
		}
		algo.Reset()
		if _, err := algo.Write(input); err != nil {
			t.Fatal(err)
		}
		digest, err := algo.Sum32()
		if err != nil {
			t.Fatal(err)
		}
		if digest != want {
			t.Errorf("%v: digest does not match SHA-512/256 reference", version)
		}
	}

	_, err := NewForVersion(chainweb.ChainwebVersion(99))
	if !errors.Contains(err, ErrUnknownVersion) {
		t.Error("expected ErrUnknownVersion for an unassigned version, got", err)
	}
}

// TestAlgorithmReuse checks that a single algorithm instance can digest
// repeatedly after Reset, which the kernel's hot loop depends on.
func TestAlgorithmReuse(t *testing.T) {
	algo, err := NewForVersion(chainweb.Test)
	if err != nil {
		t.Fatal(err)
	}
	input := fastrand.Bytes(88)
	want := sha512.Sum512_256(input)
	for i := 0; i < 3; i++ {
		algo.Reset()
		if _, err := algo.Write(input); err != nil {
			t.Fatal(err)
		}
		digest, err := algo.Sum32()
		if err != nil {
			t.Fatal(err)
		}
		if digest != want {
			t.Fatalf("digest diverged on reuse %v", i)
		}
	}
}

// TestBlake2b256 checks the alternate algorithm produces a full-size
// digest distinct from SHA-512/256.
func TestBlake2b256(t *testing.T) {
	algo := Blake2b256()
	input := fastrand.Bytes(88)
	algo.Reset()
	if _, err := algo.Write(input); err != nil {
		t.Fatal(err)
	}
	digest, err := algo.Sum32()
	if err != nil {
		t.Fatal(err)
	}
	sha := sha512.Sum512_256(input)
	if bytes.Equal(digest[:], sha[:]) {
		t.Error("blake2b digest should not match the SHA-512/256 digest")
	}
}
