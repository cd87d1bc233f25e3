package keys

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWIFEncodeDecode(t *testing.T) {
	keyHex := "29bbf53185a973d2e3803cb92908fd8d40e0fd63e6b1f908f6d34aadf99e2a1a"
	key, err := hex.DecodeString(keyHex)
	require.NoError(t, err)

	wif, err := WIFEncode(key, WIFVersion, true)
	require.NoError(t, err)

	w, err := WIFDecode(wif, WIFVersion)
	require.NoError(t, err)
	assert.Equal(t, keyHex, w.PrivateKey.String())
	assert.True(t, w.Compressed)
	assert.Equal(t, wif, w.S)

	// Zero version defaults to WIFVersion on both ends.
	wif2, err := WIFEncode(key, 0, true)
	require.NoError(t, err)
	assert.Equal(t, wif, wif2)
	_, err = WIFDecode(wif2, 0)
	require.NoError(t, err)
}

func TestWIFEncodeErrors(t *testing.T) {
	_, err := WIFEncode([]byte{1, 2, 3}, WIFVersion, true)
	require.Error(t, err)

	_, err = WIFEncode(make([]byte, 33), WIFVersion, false)
	require.Error(t, err)
}

func TestWIFDecodeErrors(t *testing.T) {
	// Garbage.
	_, err := WIFDecode("garbage", WIFVersion)
	require.Error(t, err)

	// Valid checksum, wrong payload length.
	_, err = WIFDecode("3vQB7B6MrGQZaxCuFg4oh", WIFVersion)
	require.Error(t, err)
}
