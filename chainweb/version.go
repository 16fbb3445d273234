// Package chainweb defines the data types the mining core exchanges with
// the enclosing Chainweb node: chain versions, hash targets, and the
// block header byte-offset contract.
package chainweb

import (
	"encoding/binary"
	"encoding/json"

	"gitlab.com/NebulousLabs/errors"
)

// ChainwebVersion identifies the network a mined header belongs to. Each
// symbolic value carries a stable 32-bit little-endian wire tag and an
// exact, case-sensitive textual form. The enumeration here and the
// hash-selection table in the hashkernel package are kept as a single
// source of truth: every version below has exactly one entry in
// hashkernel's selection table.
type ChainwebVersion uint32

// The supported versions, with their stable wire tags.
const (
	Test ChainwebVersion = iota
	Simulation
	Testnet00
)

var versionText = map[ChainwebVersion]string{
	Test:       "test",
	Simulation: "simulation",
	Testnet00:  "testnet00",
}

var textVersion = map[string]ChainwebVersion{
	"test":       Test,
	"simulation": Simulation,
	"testnet00":  Testnet00,
}

// ErrUnknownVersion is returned when decoding a version tag or text form
// that this binary does not recognize.
var ErrUnknownVersion = errors.New("unrecognized chainweb version")

// String returns the exact, case-sensitive textual form of v.
func (v ChainwebVersion) String() string {
	s, ok := versionText[v]
	if !ok {
		return "unknown"
	}
	return s
}

// MarshalJSON always produces the textual form.
func (v ChainwebVersion) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON recovers a ChainwebVersion from its textual form.
func (v *ChainwebVersion) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.AddContext(err, "could not decode chainweb version")
	}
	return v.LoadString(s)
}

// LoadString loads the textual form of a version into v. An error is
// returned if the string does not exactly match a known version.
func (v *ChainwebVersion) LoadString(s string) error {
	version, ok := textVersion[s]
	if !ok {
		return errors.Extend(ErrUnknownVersion, errors.New(s))
	}
	*v = version
	return nil
}

// Bytes returns the 4-byte little-endian wire encoding of v.
func (v ChainwebVersion) Bytes() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	return b
}

// ParseVersionBytes decodes the 4-byte little-endian wire encoding of a
// ChainwebVersion. Unknown tags fail decoding.
func ParseVersionBytes(b []byte) (ChainwebVersion, error) {
	if len(b) != 4 {
		return 0, errors.New("chainweb version wire tag must be exactly 4 bytes")
	}
	v := ChainwebVersion(binary.LittleEndian.Uint32(b))
	if _, ok := versionText[v]; !ok {
		return 0, errors.Extend(ErrUnknownVersion, errors.New(v.String()))
	}
	return v, nil
}
