package hash

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSha256(t *testing.T) {
	input := []byte("hello")
	data := Sha256(input)

	expected := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	actual := hex.EncodeToString(data.BytesBE())

	assert.Equal(t, expected, actual)
}

func TestHashDoubleSha256(t *testing.T) {
	input := []byte("hello")
	data := DoubleSha256(input)

	firstSha := Sha256(input)
	doubleSha := Sha256(firstSha.BytesBE())
	expected := hex.EncodeToString(doubleSha.BytesBE())

	actual := hex.EncodeToString(data.BytesBE())
	assert.Equal(t, expected, actual)
}

func TestHash160(t *testing.T) {
	// A well-known RIPEMD160(SHA256(b)) pair.
	input := "0250863ad64a87ae8a2fe83c1af1a8403cb53f53e486d8511dad8a04887e5b2352"
	publicKeyBytes, _ := hex.DecodeString(input)
	result := Hash160(publicKeyBytes)
	expected := "f54a5851e9372b87810a8e60cdd2e7cfd80b6e31"

	assert.Equal(t, expected, result.String())
}

func TestChecksum(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	c := Checksum(data)
	dh := DoubleSha256(data)
	require.Equal(t, dh.BytesBE()[:4], c)
	require.Equal(t, 4, len(c))
}
