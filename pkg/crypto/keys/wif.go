package keys

import (
	"fmt"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/encoding/base58"
)

const (
	// WIFVersion is the version used to decode and encode WIF keys.
	WIFVersion = 0x80
)

// WIF represents a wallet import format.
type WIF struct {
	// Version of the wallet import format. Default to 0x80.
	Version byte

	// Compressed indicates whether the contained public key is compressed.
	// Neo always uses compressed keys, so this is true for any WIF the SDK
	// produces.
	Compressed bool

	// PrivateKey is the key held by this WIF.
	PrivateKey *PrivateKey

	// S is the original WIF string.
	S string
}

// WIFEncode encodes the given private key into a WIF string.
func WIFEncode(key []byte, version byte, compressed bool) (s string, err error) {
	if version == 0x00 {
		version = WIFVersion
	}
	if len(key) != 32 {
		return s, fmt.Errorf("%w: invalid private key length: %d", clienterr.ErrInvalidFormat, len(key))
	}

	buf := make([]byte, 0, 1+len(key)+1)
	buf = append(buf, version)
	buf = append(buf, key...)
	if compressed {
		buf = append(buf, 0x01)
	}
	s = base58.CheckEncode(buf)
	return
}

// WIFDecode decodes the given WIF string into a WIF struct.
func WIFDecode(wif string, version byte) (*WIF, error) {
	b, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clienterr.ErrInvalidFormat, err)
	}
	defer func() {
		for i := range b {
			b[i] = 0
		}
	}()

	if version == 0x00 {
		version = WIFVersion
	}
	w := &WIF{
		Version: version,
		S:       wif,
	}

	switch len(b) {
	case 33: // OK, uncompressed public key.
	case 34: // OK, compressed public key.
		if b[33] != 0x01 {
			return nil, fmt.Errorf("%w: invalid compression flag %d expecting %d", clienterr.ErrInvalidFormat, b[33], 0x01)
		}
		w.Compressed = true
	default:
		return nil, fmt.Errorf("%w: invalid WIF length %d, expecting 33 or 34", clienterr.ErrInvalidFormat, len(b))
	}

	if b[0] != w.Version {
		return nil, fmt.Errorf("%w: invalid WIF version got %d, expected %d", clienterr.ErrInvalidFormat, b[0], w.Version)
	}

	w.PrivateKey, err = NewPrivateKeyFromBytes(b[1:33])
	if err != nil {
		return nil, err
	}
	return w, nil
}
