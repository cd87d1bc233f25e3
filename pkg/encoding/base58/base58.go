// Package base58 implements Base58Check encoding on top of the plain Base58
// codec used by Neo for addresses, WIFs and NEP-2 keys.
package base58

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// checksumSize is the number of double-SHA256 bytes appended to the payload.
const checksumSize = 4

// CheckDecode implements a base58-encoded string decoding with hash-based
// checksum check.
func CheckDecode(s string) (b []byte, err error) {
	b, err = base58.Decode(s)
	if err != nil {
		return nil, err
	}

	if len(b) < checksumSize+1 {
		return nil, errors.New("invalid base-58 check string: missing checksum")
	}

	if !bytes.Equal(checksum(b[:len(b)-checksumSize]), b[len(b)-checksumSize:]) {
		return nil, errors.New("invalid base-58 check string: invalid checksum")
	}

	// Strip the 4 byte long hash.
	b = b[:len(b)-checksumSize]

	return b, nil
}

// CheckEncode encodes given byte slice into a base58 string with a 4-byte
// checksum appended.
func CheckEncode(b []byte) string {
	b = append(b, checksum(b)...)
	return base58.Encode(b)
}

// Decode decodes a plain base58 string without any checksum verification.
func Decode(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base-58 string: %w", err)
	}
	return b, nil
}

// Encode encodes a byte slice into plain base58 without any checksum.
func Encode(b []byte) string {
	return base58.Encode(b)
}

// checksum returns the first 4 bytes of double-SHA256 of the data.
func checksum(b []byte) []byte {
	h := sha256.Sum256(b)
	h = sha256.Sum256(h[:])
	return h[:checksumSize]
}
