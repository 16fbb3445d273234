package api

import (
	"strconv"

	"gitlab.com/NebulousLabs/errors"
)

// scanUint32 scans a decimal uint32 from a string.
func scanUint32(s string, out *uint32) error {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return errors.AddContext(err, "could not parse '"+s+"' as a chain id")
	}
	*out = uint32(v)
	return nil
}

// scanUint64 scans a decimal uint64 from a string.
func scanUint64(s string, out *uint64) error {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return errors.AddContext(err, "could not parse '"+s+"' as a block height")
	}
	*out = v
	return nil
}
