package keys

import (
	"bytes"
	"crypto/aes"
	"fmt"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/crypto/hash"
	"github.com/halyard-dev/neokit/pkg/encoding/base58"
	"golang.org/x/crypto/scrypt"
)

// NEP-2 standard implementation for encrypting and decrypting private keys.

// NEP-2 specified parameters used for cryptography.
const (
	n       = 16384
	r       = 8
	p       = 8
	keyLen  = 64
	nepFlag = 0xe0
)

var nepHeader = []byte{0x01, 0x42}

// ScryptParams is a json-serializable container for scrypt KDF parameters.
type ScryptParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

// NEP2ScryptParams returns scrypt parameters specified in the NEP-2.
func NEP2ScryptParams() ScryptParams {
	return ScryptParams{
		N: n,
		R: r,
		P: p,
	}
}

// NEP2Encrypt encrypts a the PrivateKey using the given passphrase
// under the NEP-2 standard.
func NEP2Encrypt(priv *PrivateKey, passphrase string, params ScryptParams) (s string, err error) {
	address := priv.Address()

	addrHash := hash.Checksum([]byte(address))
	// Normalization should be applied to the password per NEP-2, but the
	// strings we can reasonably expect here are already their own NFC form.
	phraseBytes := []byte(passphrase)

	derivedKey, err := scrypt.Key(phraseBytes, addrHash, params.N, params.R, params.P, keyLen)
	if err != nil {
		return s, fmt.Errorf("%w: scrypt: %v", clienterr.ErrCryptoFailure, err)
	}

	derivedKey1 := derivedKey[:32]
	derivedKey2 := derivedKey[32:]

	xr := xor(priv.Bytes(), derivedKey1)

	encrypted, err := aesEncrypt(xr, derivedKey2)
	if err != nil {
		return s, fmt.Errorf("%w: aes: %v", clienterr.ErrCryptoFailure, err)
	}

	buf := make([]byte, 0, len(nepHeader)+1+len(addrHash)+len(encrypted))
	buf = append(buf, nepHeader...)
	buf = append(buf, nepFlag)
	buf = append(buf, addrHash...)
	buf = append(buf, encrypted...)

	if len(buf) != 39 {
		return s, fmt.Errorf("%w: invalid NEP-2 payload length: expecting 39 bytes got %d", clienterr.ErrCryptoFailure, len(buf))
	}

	return base58.CheckEncode(buf), nil
}

// NEP2Decrypt decrypts an encrypted key using the given passphrase
// under the NEP-2 standard.
func NEP2Decrypt(key, passphrase string, params ScryptParams) (*PrivateKey, error) {
	b, err := base58.CheckDecode(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clienterr.ErrInvalidFormat, err)
	}
	if err := validateNEP2Format(b); err != nil {
		return nil, err
	}

	addrHash := b[3:7]
	// Normalization should be applied here as well, see NEP2Encrypt.
	phraseBytes := []byte(passphrase)

	derivedKey, err := scrypt.Key(phraseBytes, addrHash, params.N, params.R, params.P, keyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: scrypt: %v", clienterr.ErrCryptoFailure, err)
	}

	derivedKey1 := derivedKey[:32]
	derivedKey2 := derivedKey[32:]
	encryptedBytes := b[7:]

	decrypted, err := aesDecrypt(encryptedBytes, derivedKey2)
	if err != nil {
		return nil, fmt.Errorf("%w: aes: %v", clienterr.ErrCryptoFailure, err)
	}

	privBytes := xor(decrypted, derivedKey1)

	// Rebuild the key and check its address against the hash embedded in the
	// NEP-2 string. A mismatch can only mean a wrong passphrase.
	privKey, err := NewPrivateKeyFromBytes(privBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clienterr.ErrInvalidPassphrase, err)
	}
	address := privKey.Address()
	addrChecksum := hash.Checksum([]byte(address))
	if !bytes.Equal(addrHash, addrChecksum) {
		return nil, fmt.Errorf("%w: address hash mismatch", clienterr.ErrInvalidPassphrase)
	}

	return privKey, nil
}

func validateNEP2Format(b []byte) error {
	if len(b) != 39 {
		return fmt.Errorf("%w: invalid length: expecting 39 got %d", clienterr.ErrInvalidFormat, len(b))
	}
	if b[0] != 0x01 {
		return fmt.Errorf("%w: invalid byte sequence: expecting 0x01 got 0x%02x", clienterr.ErrInvalidFormat, b[0])
	}
	if b[1] != 0x42 {
		return fmt.Errorf("%w: invalid byte sequence: expecting 0x42 got 0x%02x", clienterr.ErrInvalidFormat, b[1])
	}
	if b[2] != nepFlag {
		return fmt.Errorf("%w: invalid byte sequence: expecting 0xe0 got 0x%02x", clienterr.ErrInvalidFormat, b[2])
	}
	return nil
}

func xor(a, b []byte) []byte {
	if len(a) != len(b) {
		panic("cannot XOR non equal length arrays")
	}
	dst := make([]byte, len(a))
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
	return dst
}

// aesEncrypt encrypts the given source with the given key in ECB mode, block
// by block. NEP-2 payloads are exactly two AES blocks, no padding is needed.
func aesEncrypt(src, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(src)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("invalid plaintext length %d", len(src))
	}
	out := make([]byte, len(src))
	for i := 0; i < len(src); i += block.BlockSize() {
		block.Encrypt(out[i:], src[i:])
	}
	return out, nil
}

// aesDecrypt decrypts the given ciphertext with the given key in ECB mode.
func aesDecrypt(crypted, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(crypted)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("invalid ciphertext length %d", len(crypted))
	}
	out := make([]byte, len(crypted))
	for i := 0; i < len(crypted); i += block.BlockSize() {
		block.Decrypt(out[i:], crypted[i:])
	}
	return out, nil
}
