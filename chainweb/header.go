package chainweb

import (
	"encoding/binary"
	"strconv"

	"gitlab.com/NebulousLabs/errors"
)

// Key identifies a results-map entry: the chain a header belongs to and the
// height it is mined at. A multi-chain network produces an independent
// block stream per chain id.
type Key struct {
	ChainID uint32
	Height  uint64
}

// BlockHeader is an opaque, immutable logical record of a mined or
// candidate block. The core only ever touches it through Bytes() (to get
// the fixed-length buffer the hash kernel mines over); everything else
// about the header's structure is the decoder's concern.
type BlockHeader interface {
	// Bytes returns the full serialized header, exactly HeaderLength() bytes.
	Bytes() []byte
}

// HeaderInfo is the job metadata a Decoder extracts from a serialized
// header at submit time: the key to publish the result under, and the
// target the mined digest must meet.
type HeaderInfo struct {
	Key    Key
	Target HashTarget
}

// Decoder is the node's header codec: it knows the full header
// layout (everything beyond the nonce/time bytes the kernel mutates) and
// converts between a serialized buffer and a BlockHeader. The core treats
// it as an opaque capability; decoding never runs on the hot path, only at
// job submission and at job completion.
type Decoder interface {
	// HeaderLength is the fixed serialized length L of headers this
	// decoder accepts.
	HeaderLength() int

	// Decode parses a serialized header buffer into a BlockHeader and the
	// metadata needed to schedule it. It must accept any byte string
	// produced by mutating only bytes [0,16) of a previously-accepted
	// buffer (the kernel's nonce/time writes).
	Decode(buf []byte) (BlockHeader, HeaderInfo, error)
}

// Errors surfaced synchronously from Submit on caller misuse.
var (
	ErrWrongHeaderLength = errors.New("submitted header has the wrong serialized length")
	ErrMalformedTarget   = errors.New("submitted header's target field is malformed")
)

// RawHeaderLength is the fixed serialized length of a RawHeader: 8 (nonce)
// + 8 (creation time) + 4 (chain id) + 8 (height) + 32 (target) + 28
// (opaque payload filler, standing in for whatever the rest of a real
// Chainweb header encodes: Merkle roots, adjacent-chain hashes, and so
// on, none of which the core reads).
const RawHeaderLength = 8 + 8 + 4 + 8 + 32 + 28

const (
	rawNonceOffset  = 0
	rawTimeOffset   = 8
	rawChainOffset  = 16
	rawHeightOffset = 20
	rawTargetOffset  = 28
	rawPayloadOffset = 60
)

// RawHeader is a reference BlockHeader implementation satisfying the
// nonce/time/target byte-offset contract. It exists so the module is
// runnable and testable end-to-end even though a real Chainweb header's
// full layout is the enclosing node's concern.
type RawHeader struct {
	buf []byte
}

// Bytes implements BlockHeader.
func (h RawHeader) Bytes() []byte { return h.buf }

// Nonce returns the header's current nonce field.
func (h RawHeader) Nonce() uint64 {
	return binary.LittleEndian.Uint64(h.buf[rawNonceOffset : rawNonceOffset+8])
}

// CreationTime returns the header's current creation-time field, in
// microseconds since the epoch.
func (h RawHeader) CreationTime() uint64 {
	return binary.LittleEndian.Uint64(h.buf[rawTimeOffset : rawTimeOffset+8])
}

// ChainID returns the chain id encoded in the header.
func (h RawHeader) ChainID() uint32 {
	return binary.LittleEndian.Uint32(h.buf[rawChainOffset : rawChainOffset+4])
}

// Height returns the block height encoded in the header.
func (h RawHeader) Height() uint64 {
	return binary.LittleEndian.Uint64(h.buf[rawHeightOffset : rawHeightOffset+8])
}

// Target returns the target encoded in the header.
func (h RawHeader) Target() HashTarget {
	var t HashTarget
	copy(t[:], h.buf[rawTargetOffset:rawTargetOffset+TargetSize])
	return t
}

// Payload returns the header's opaque payload bytes.
func (h RawHeader) Payload() []byte {
	return h.buf[rawPayloadOffset:]
}

// Key returns the (chain id, height) pair this header should be published
// under.
func (h RawHeader) Key() Key {
	return Key{ChainID: h.ChainID(), Height: h.Height()}
}

// WithPayload returns a copy of h whose opaque payload bytes are replaced
// by p, truncated or zero-padded to fit.
func (h RawHeader) WithPayload(p []byte) RawHeader {
	buf := append([]byte(nil), h.buf...)
	tail := buf[rawPayloadOffset:]
	for i := range tail {
		tail[i] = 0
	}
	copy(tail, p)
	return RawHeader{buf: buf}
}

// NewRawHeader builds a RawHeader from its fields, with zero-filled
// payload bytes. It is primarily useful for tests and for callers that
// want the reference codec end to end.
func NewRawHeader(nonce, creationTime uint64, chainID uint32, height uint64, target HashTarget) RawHeader {
	buf := make([]byte, RawHeaderLength)
	binary.LittleEndian.PutUint64(buf[rawNonceOffset:], nonce)
	binary.LittleEndian.PutUint64(buf[rawTimeOffset:], creationTime)
	binary.LittleEndian.PutUint32(buf[rawChainOffset:], chainID)
	binary.LittleEndian.PutUint64(buf[rawHeightOffset:], height)
	copy(buf[rawTargetOffset:], target[:])
	return RawHeader{buf: buf}
}

// RawDecoder is the Decoder for RawHeader-shaped buffers.
type RawDecoder struct{}

// HeaderLength implements Decoder.
func (RawDecoder) HeaderLength() int { return RawHeaderLength }

// Decode implements Decoder.
func (RawDecoder) Decode(buf []byte) (BlockHeader, HeaderInfo, error) {
	if len(buf) != RawHeaderLength {
		return nil, HeaderInfo{}, errors.Extend(ErrWrongHeaderLength, errors.New(
			"want length "+strconv.Itoa(RawHeaderLength)+", got "+strconv.Itoa(len(buf))))
	}
	h := RawHeader{buf: append([]byte(nil), buf...)}
	return h, HeaderInfo{Key: h.Key(), Target: h.Target()}, nil
}
