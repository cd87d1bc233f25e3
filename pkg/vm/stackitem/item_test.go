package stackitem

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	assert.Equal(t, IntegerT, Make(42).Type())
	assert.Equal(t, IntegerT, Make(int64(42)).Type())
	assert.Equal(t, IntegerT, Make(uint32(42)).Type())
	assert.Equal(t, ByteArrayT, Make([]byte{1, 2}).Type())
	assert.Equal(t, ByteArrayT, Make("str").Type())
	assert.Equal(t, BooleanT, Make(true).Type())
	assert.Equal(t, AnyT, Make(nil).Type())
	assert.Equal(t, ArrayT, Make([]Item{Make(1)}).Type())

	assert.Panics(t, func() { Make(struct{}{}) })
}

func TestIntegerConversions(t *testing.T) {
	i := Make(100500)
	b, err := i.TryBytes()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100500).Bytes(), b)

	v, err := i.TryInteger()
	require.NoError(t, err)
	assert.EqualValues(t, 100500, v.Int64())

	ok, err := i.TryBool()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Make(0).TryBool()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestByteArrayConversions(t *testing.T) {
	b := NewByteArray([]byte{0x39, 0x30})
	v, err := b.TryInteger()
	require.NoError(t, err)
	assert.EqualValues(t, 12345, v.Int64())

	s, err := b.TryString()
	require.NoError(t, err)
	assert.Equal(t, "90", s)

	_, err = NewByteArray([]byte{0xff, 0xfe}).TryString()
	require.Error(t, err)

	ok, err := NewByteArray(nil).TryBool()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewByteArray(make([]byte, 33)).TryInteger()
	require.ErrorIs(t, err, ErrTooBig)
}

func TestEquals(t *testing.T) {
	require.True(t, Make(1).Equals(Make(1)))
	require.False(t, Make(1).Equals(Make(2)))
	require.True(t, Make(true).Equals(Bool(true)))
	require.True(t, Make([]byte{1, 2}).Equals(Make([]byte{1, 2})))
	require.False(t, Make([]byte{1, 2}).Equals(Make([]byte{1, 3})))
	require.True(t, Null{}.Equals(Null{}))
	require.False(t, Null{}.Equals(Make(0)))

	// Arrays and maps are reference types.
	arr := NewArray([]Item{Make(1)})
	require.True(t, arr.Equals(arr))
	require.False(t, arr.Equals(NewArray([]Item{Make(1)})))

	// Structs are compared element-wise.
	require.True(t, NewStruct([]Item{Make(1)}).Equals(NewStruct([]Item{Make(1)})))
	require.False(t, NewStruct([]Item{Make(1)}).Equals(NewStruct([]Item{Make(2)})))
}

func TestMap(t *testing.T) {
	m := NewMap()
	require.Equal(t, 0, m.Len())
	require.Equal(t, -1, m.Index(Make(1)))

	m.Add(Make(1), Make("one"))
	m.Add(Make(2), Make("two"))
	require.Equal(t, 2, m.Len())
	require.Equal(t, 0, m.Index(Make(1)))

	// Replacing a value keeps the size.
	m.Add(Make(1), Make("uno"))
	require.Equal(t, 2, m.Len())

	require.Panics(t, func() { m.Add(NewArray(nil), Make(1)) })
	require.True(t, IsValidMapKey(Make(1)))
	require.False(t, IsValidMapKey(NewArray(nil)))
}

func TestBigIntegerLimit(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), MaxBigIntegerSizeBits)
	require.Panics(t, func() { NewBigInteger(tooBig) })
	require.NotPanics(t, func() { NewBigInteger(new(big.Int).Sub(tooBig, big.NewInt(1))) })
}
