// Package address implements conversion of Neo N3 addresses to/from script
// hashes.
package address

import (
	"fmt"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/encoding/base58"
	"github.com/halyard-dev/neokit/pkg/util"
)

// Prefix is the byte used to prepend to addresses when encoding them, it can
// be changed and defaults to 53 (0x35), the standard NEO prefix.
var Prefix = byte(NEO3Prefix)

// NEO3Prefix is the address prefix for Neo N3.
const NEO3Prefix byte = 0x35

// encodedSize is the length of a raw (decoded) address: prefix, script hash
// and 4-byte checksum.
const encodedSize = 1 + util.Uint160Size + 4

// Uint160ToString returns the "NEO address" from the given Uint160.
func Uint160ToString(u util.Uint160) string {
	// Dont forget to prepend the Address version 0x35.
	b := append([]byte{Prefix}, u.BytesBE()...)
	return base58.CheckEncode(b)
}

// StringToUint160 attempts to decode the given NEO address string
// into a Uint160.
func StringToUint160(s string) (u util.Uint160, err error) {
	rawBytes, err := base58.Decode(s)
	if err != nil {
		return u, fmt.Errorf("%w: %v", clienterr.ErrInvalidFormat, err)
	}
	if len(rawBytes) != encodedSize {
		return u, fmt.Errorf("%w: invalid address length %d", clienterr.ErrInvalidFormat, len(rawBytes))
	}
	b, err := base58.CheckDecode(s)
	if err != nil {
		return u, fmt.Errorf("%w: %v", clienterr.ErrInvalidFormat, err)
	}
	if b[0] != Prefix {
		return u, fmt.Errorf("%w: wrong address prefix %#x", clienterr.ErrInvalidFormat, b[0])
	}
	return util.Uint160DecodeBytesBE(b[1:21])
}
