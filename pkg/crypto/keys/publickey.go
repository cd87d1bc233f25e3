package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/crypto/hash"
	"github.com/halyard-dev/neokit/pkg/encoding/address"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/halyard-dev/neokit/pkg/vm/emit"
)

// coordLen is the number of bytes in a serialized X or Y coordinate.
const coordLen = 32

// SignatureLen is the length of a standard signature for 256-bit curves.
const SignatureLen = 64

// PublicKeys is a list of public keys.
type PublicKeys []*PublicKey

func (keys PublicKeys) Len() int      { return len(keys) }
func (keys PublicKeys) Swap(i, j int) { keys[i], keys[j] = keys[j], keys[i] }
func (keys PublicKeys) Less(i, j int) bool {
	return keys[i].Cmp(keys[j]) == -1
}

// Bytes encodes PublicKeys to a compressed byte array.
func (keys PublicKeys) Bytes() []byte {
	buf := make([]byte, 0, 33*len(keys))
	for i := range keys {
		buf = append(buf, keys[i].Bytes()...)
	}
	return buf
}

// Contains checks whether the passed param is contained in PublicKeys.
func (keys PublicKeys) Contains(pKey *PublicKey) bool {
	for _, key := range keys {
		if key.Equal(pKey) {
			return true
		}
	}
	return false
}

// Copy returns a shallow copy of the PublicKeys slice. It nil-checks the
// argument and returns nil for nil input.
func (keys PublicKeys) Copy() PublicKeys {
	if keys == nil {
		return nil
	}
	copied := make(PublicKeys, len(keys))
	copy(copied, keys)
	return copied
}

// Unique returns a set of keys.
func (keys PublicKeys) Unique() PublicKeys {
	unique := PublicKeys{}
	for _, publicKey := range keys {
		if !unique.Contains(publicKey) {
			unique = append(unique, publicKey)
		}
	}
	return unique
}

// PublicKey represents a public key and provides a high level
// API around ecdsa.PublicKey.
type PublicKey struct {
	ecdsa.PublicKey
}

// Equal returns true in case public keys are equal.
func (p *PublicKey) Equal(key *PublicKey) bool {
	return p.X.Cmp(key.X) == 0 && p.Y.Cmp(key.Y) == 0
}

// Cmp compares two keys and returns -1, 0 or 1 in a way that can be used for
// sorting. Keys are compared as serialized compressed representations, which
// matches the witness key ordering used by multisignature contracts.
func (p *PublicKey) Cmp(key *PublicKey) int {
	xCmp := p.X.Cmp(key.X)
	if xCmp != 0 {
		return xCmp
	}
	return p.Y.Cmp(key.Y)
}

// NewPublicKeyFromString returns a public key created from the
// given hex string public key representation in compressed form.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clienterr.ErrInvalidFormat, err)
	}

	return NewPublicKeyFromBytes(b, elliptic.P256())
}

// NewPublicKeyFromBytes returns a public key created from b using the given
// curve. It accepts only compressed serialization (0x02/0x03 prefix, 33
// bytes).
func NewPublicKeyFromBytes(b []byte, curve elliptic.Curve) (*PublicKey, error) {
	pubKey := new(PublicKey)
	pubKey.Curve = curve
	if err := pubKey.DecodeBytes(b); err != nil {
		return nil, err
	}
	return pubKey, nil
}

// getBytes serializes the key in the compressed form.
func (p *PublicKey) getBytes() []byte {
	if p.isInfinity() {
		return []byte{0x00}
	}

	var prefix byte = 0x02
	if p.Y.Bit(0) == 1 {
		prefix = 0x03
	}
	b := make([]byte, 1+coordLen)
	b[0] = prefix
	_ = p.X.FillBytes(b[1:])
	return b
}

// Bytes returns byte array representation of the public key in the compressed
// form (33 bytes with 0x02/0x03 prefix, except infinity which is always 0).
func (p *PublicKey) Bytes() []byte {
	return p.getBytes()
}

// UncompressedBytes returns the uncompressed 65-byte (0x04-prefixed)
// serialization of the public key.
func (p *PublicKey) UncompressedBytes() []byte {
	if p.isInfinity() {
		return []byte{0x00}
	}
	b := make([]byte, 1+2*coordLen)
	b[0] = 0x04
	_ = p.X.FillBytes(b[1 : 1+coordLen])
	_ = p.Y.FillBytes(b[1+coordLen:])
	return b
}

// isInfinity checks if the key is a special infinity point.
func (p *PublicKey) isInfinity() bool {
	return p.X == nil && p.Y == nil
}

// String implements the Stringer interface.
func (p *PublicKey) String() string {
	if p.isInfinity() {
		return "00"
	}
	bx := hex.EncodeToString(p.X.Bytes())
	by := hex.EncodeToString(p.Y.Bytes())
	return fmt.Sprintf("%s%s", bx, by)
}

// StringCompressed returns the hex string of the compressed serialization.
func (p *PublicKey) StringCompressed() string {
	return hex.EncodeToString(p.Bytes())
}

// DecodeBytes decodes a PublicKey from the given slice of bytes. The key must
// be in the compressed form and the whole slice must be exactly the key, no
// prefixes or suffixes are allowed.
func (p *PublicKey) DecodeBytes(data []byte) error {
	switch len(data) {
	case 1:
		if data[0] != 0x00 {
			return fmt.Errorf("%w: invalid prefix %d for 1-byte key", clienterr.ErrInvalidFormat, data[0])
		}
		p.X = nil
		p.Y = nil
		return nil
	case 1 + coordLen:
		if data[0] != 0x02 && data[0] != 0x03 {
			return fmt.Errorf("%w: invalid prefix %d for compressed key", clienterr.ErrInvalidFormat, data[0])
		}
		if p.Curve == nil {
			p.Curve = elliptic.P256()
		}
		x, y := elliptic.UnmarshalCompressed(p.Curve, data)
		if x == nil || y == nil {
			return fmt.Errorf("%w: point is not on the curve", clienterr.ErrInvalidFormat)
		}
		p.X = x
		p.Y = y
		return nil
	default:
		return fmt.Errorf("%w: invalid key length %d", clienterr.ErrInvalidFormat, len(data))
	}
}

// DecodeBinary decodes a PublicKey from the given BinReader using information
// about the curve from the given PublicKey.
func (p *PublicKey) DecodeBinary(r *io.BinReader) {
	var prefix = r.ReadB()
	if r.Err != nil {
		return
	}

	switch prefix {
	case 0x00:
		p.X = nil
		p.Y = nil
		return
	case 0x02, 0x03:
	default:
		r.Err = fmt.Errorf("%w: invalid prefix %d", clienterr.ErrInvalidFormat, prefix)
		return
	}
	data := make([]byte, 1+coordLen)
	data[0] = prefix
	r.ReadBytes(data[1:])
	if r.Err != nil {
		return
	}
	if err := p.DecodeBytes(data); err != nil {
		r.Err = err
	}
}

// EncodeBinary encodes a PublicKey to the given BinWriter.
func (p *PublicKey) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(p.Bytes())
}

// MarshalJSON implements the json.Marshaler interface.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(p.Bytes()) + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	l := len(data)
	if l < 2 || data[0] != '"' || data[l-1] != '"' {
		return fmt.Errorf("%w: wrong format", clienterr.ErrInvalidFormat)
	}

	bytes := make([]byte, hex.DecodedLen(l-2))
	_, err := hex.Decode(bytes, data[1:l-1])
	if err != nil {
		return fmt.Errorf("%w: %v", clienterr.ErrInvalidFormat, err)
	}
	if err = p.DecodeBytes(bytes); err != nil {
		return err
	}

	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (p *PublicKey) MarshalYAML() (any, error) {
	return hex.EncodeToString(p.Bytes()), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (p *PublicKey) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	err := unmarshal(&s)
	if err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %v", clienterr.ErrInvalidFormat, err)
	}
	p.Curve = elliptic.P256()
	return p.DecodeBytes(b)
}

// GetVerificationScript returns the NEO VM verification script for the key.
func (p *PublicKey) GetVerificationScript() []byte {
	b := p.Bytes()
	return verificationScriptFromKeys([][]byte{b}, 1, 1)
}

// GetScriptHash returns a Uint160 hash of the verification script.
func (p *PublicKey) GetScriptHash() util.Uint160 {
	return hash.Hash160(p.GetVerificationScript())
}

// Address returns the base58-encoded address for the key's verification
// script hash.
func (p *PublicKey) Address() string {
	return address.Uint160ToString(p.GetScriptHash())
}

// Verify returns true if the signature is valid and corresponds to the hash
// and public key. Signatures with a high S value are rejected.
func (p *PublicKey) Verify(signature []byte, hash []byte) bool {
	if p.X == nil || p.Y == nil || len(signature) != SignatureLen {
		return false
	}
	rBytes := new(big.Int).SetBytes(signature[0:32])
	sBytes := new(big.Int).SetBytes(signature[32:64])
	params := p.Curve.Params()
	if sBytes.Cmp(new(big.Int).Rsh(params.N, 1)) == 1 {
		return false
	}
	return ecdsa.Verify(&p.PublicKey, hash, rBytes, sBytes)
}

// VerifyHashable returns true if the signature is valid and corresponds to
// the hash of the Hashable item for the network specified.
func (p *PublicKey) VerifyHashable(signature []byte, net uint32, hh hash.Hashable) bool {
	var digest = hash.NetSha256(net, hh)
	return p.Verify(signature, digest.BytesBE())
}

// IsInfinity checks if the key is a special infinity point.
func (p *PublicKey) IsInfinity() bool {
	return p.isInfinity()
}

// verificationScriptFromKeys builds a CheckSig or CheckMultisig script over
// the given serialized keys. The keys must already be sorted for the
// multisignature case.
func verificationScriptFromKeys(keys [][]byte, m, n int) []byte {
	w := io.NewBufBinWriter()
	if n == 1 {
		emit.Bytes(w.BinWriter, keys[0])
		emit.Syscall(w.BinWriter, "System.Crypto.CheckSig")
	} else {
		emit.Int(w.BinWriter, int64(m))
		for i := range keys {
			emit.Bytes(w.BinWriter, keys[i])
		}
		emit.Int(w.BinWriter, int64(n))
		emit.Syscall(w.BinWriter, "System.Crypto.CheckMultisig")
	}
	if w.Err != nil {
		panic(w.Err)
	}
	return w.Bytes()
}

// CreateMultiSigRedeemScript creates an "m out of given keys" multisignature
// verification script. Keys are sorted in their serialized compressed form
// first, matching the canonical multisignature account layout.
func CreateMultiSigRedeemScript(m int, publicKeys PublicKeys) ([]byte, error) {
	if m < 1 {
		return nil, fmt.Errorf("%w: param m cannot be smaller than 1, got %d", clienterr.ErrInvalidArgument, m)
	}
	if m > len(publicKeys) {
		return nil, fmt.Errorf("%w: length of the signatures (%d) is higher then the number of public keys", clienterr.ErrInvalidArgument, m)
	}
	if m > 1024 {
		return nil, fmt.Errorf("%w: public key count %d exceeds maximum of 1024", clienterr.ErrInvalidArgument, len(publicKeys))
	}

	sorted := publicKeys.Copy()
	sort.Sort(sorted)
	raw := make([][]byte, len(sorted))
	for i := range sorted {
		raw[i] = sorted[i].Bytes()
	}
	return verificationScriptFromKeys(raw, m, len(sorted)), nil
}

// CreateDefaultMultiSigRedeemScript creates an "m out of n" multisignature
// script, where n is the length of publicKeys and m is the majority needed
// for BFT consensus (n - (n-1)/3).
func CreateDefaultMultiSigRedeemScript(publicKeys PublicKeys) ([]byte, error) {
	n := len(publicKeys)
	m := smartcontractMajority(n)
	return CreateMultiSigRedeemScript(m, publicKeys)
}

func smartcontractMajority(n int) int {
	return n - (n-1)/3
}
