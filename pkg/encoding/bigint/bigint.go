// Package bigint implements the Neo VM-compatible conversion of big.Int to/from
// byte slices: little-endian two's complement with a minimal number of bytes.
package bigint

import (
	"math/big"
)

// MaxBytesLen is the maximum length of a serialized integer suitable for Neo VM.
const MaxBytesLen = 32 // 256-bit signed integer

var bigOne = big.NewInt(1)

// FromBytesUnsigned converts data in little-endian format to an unsigned integer.
func FromBytesUnsigned(data []byte) *big.Int {
	bs := reverse(data)
	return new(big.Int).SetBytes(bs)
}

// FromBytes converts data in little-endian format to an integer.
func FromBytes(data []byte) *big.Int {
	size := len(data)
	if size == 0 {
		if data == nil {
			panic("nil slice provided to `FromBytes`")
		}
		return big.NewInt(0)
	}

	isNeg := data[size-1]&0x80 != 0

	size = getEffectiveSize(data, isNeg)
	if size == 0 {
		if isNeg {
			return big.NewInt(-1)
		}

		return big.NewInt(0)
	}

	n := new(big.Int).SetBytes(reverse(data[:size]))
	if isNeg {
		// Convert from two's complement: x = -(2^bits - raw), with raw
		// occupying exactly `size` bytes here.
		n.Sub(n, new(big.Int).Lsh(bigOne, uint(size*8)))
	}
	return n
}

// getEffectiveSize returns the minimal number of bytes required
// to represent a number (two's complement for negatives).
func getEffectiveSize(buf []byte, isNeg bool) int {
	var b byte
	if isNeg {
		b = 0xFF
	}

	size := len(buf)
	for ; size > 0; size-- {
		if buf[size-1] != b {
			break
		}
	}
	if isNeg && size != 0 && buf[size-1]&0x80 == 0 {
		// The dropped 0xFF bytes carried the sign, one of them is payload.
		size++
	}

	return size
}

// ToBytes converts an integer to a slice in little-endian format.
// Note: NEO3 serialization differs from default C# BigInteger.ToByteArray()
// when n == 0. Zero is represented as an empty slice in NEO3.
func ToBytes(n *big.Int) []byte {
	return ToPreallocatedBytes(n, []byte{})
}

// ToPreallocatedBytes converts an integer to a slice in little-endian format
// using the given byte array for the conversion result.
func ToPreallocatedBytes(n *big.Int, data []byte) []byte {
	sign := n.Sign()
	if sign == 0 {
		return data[:0]
	}

	if sign < 0 {
		// Convert to two's complement of the minimal width: 2^bits + n,
		// where bits is a multiple of 8 big enough to keep the sign bit.
		bits := n.BitLen()
		if bits%8 == 0 && isPowerOfTwoMagnitude(n) {
			// -(2^(8k-1)) fits into k bytes exactly.
			bits--
		}
		size := bits/8 + 1
		compl := new(big.Int).Lsh(bigOne, uint(size*8))
		compl.Add(compl, n)

		data = ensureLen(data, size)
		compl.FillBytes(data)
		reverseInPlace(data)
		return data
	}

	lb := n.BitLen()/8 + 1
	data = ensureLen(data, lb)
	n.FillBytes(data)
	reverseInPlace(data)

	return data
}

// isPowerOfTwoMagnitude reports whether |n| == 2^k for some k.
func isPowerOfTwoMagnitude(n *big.Int) bool {
	abs := new(big.Int).Abs(n)
	abs.Sub(abs, bigOne)
	return abs.BitLen() < n.BitLen()
}

func ensureLen(data []byte, l int) []byte {
	if cap(data) < l {
		return make([]byte, l)
	}
	return data[:l]
}

func reverse(b []byte) []byte {
	dest := make([]byte, len(b))
	for i, j := 0, len(b)-1; j >= 0; i, j = i+1, j-1 {
		dest[i] = b[j]
	}
	return dest
}

func reverseInPlace(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
