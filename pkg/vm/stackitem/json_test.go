package stackitem

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestDecodeEncodeFunc(js string, expected Item) func(t *testing.T) {
	return func(t *testing.T) {
		actual, err := FromJSONWithTypes([]byte(js))
		require.NoError(t, err)
		require.Equal(t, expected, actual)

		encoded, err := ToJSONWithTypes(actual)
		require.NoError(t, err)
		assert.JSONEq(t, js, string(encoded))
	}
}

func TestFromToJSONWithTypes(t *testing.T) {
	t.Run("Null", getTestDecodeEncodeFunc(`{"type":"Any"}`, Null{}))
	t.Run("Boolean", getTestDecodeEncodeFunc(`{"type":"Boolean","value":true}`, NewBool(true)))
	t.Run("Integer", getTestDecodeEncodeFunc(`{"type":"Integer","value":"12345"}`, NewBigInteger(big.NewInt(12345))))
	t.Run("NegativeInteger", getTestDecodeEncodeFunc(`{"type":"Integer","value":"-1"}`, NewBigInteger(big.NewInt(-1))))
	t.Run("ByteString", getTestDecodeEncodeFunc(`{"type":"ByteString","value":"AQI="}`, NewByteArray([]byte{1, 2})))
	t.Run("Buffer", getTestDecodeEncodeFunc(`{"type":"Buffer","value":"AQI="}`, NewBuffer([]byte{1, 2})))
	t.Run("Pointer", getTestDecodeEncodeFunc(`{"type":"Pointer","value":12}`, NewPointer(12)))
	t.Run("Array", getTestDecodeEncodeFunc(
		`{"type":"Array","value":[{"type":"Integer","value":"1"},{"type":"Boolean","value":false}]}`,
		NewArray([]Item{NewBigInteger(big.NewInt(1)), NewBool(false)})))
	t.Run("Struct", getTestDecodeEncodeFunc(
		`{"type":"Struct","value":[{"type":"Integer","value":"1"}]}`,
		NewStruct([]Item{NewBigInteger(big.NewInt(1))})))
}

func TestFromJSONWithTypesMap(t *testing.T) {
	js := `{"type":"Map","value":[{"key":{"type":"Integer","value":"1"},"value":{"type":"ByteString","value":"AQI="}}]}`
	item, err := FromJSONWithTypes([]byte(js))
	require.NoError(t, err)
	m, ok := item.(*Map)
	require.True(t, ok)
	require.Equal(t, 1, m.Len())
	require.Equal(t, 0, m.Index(NewBigInteger(big.NewInt(1))))

	encoded, err := ToJSONWithTypes(m)
	require.NoError(t, err)
	assert.JSONEq(t, js, string(encoded))
}

func TestFromJSONWithTypesInterop(t *testing.T) {
	item, err := FromJSONWithTypes([]byte(`{"type":"InteropInterface"}`))
	require.NoError(t, err)
	require.Equal(t, InteropT, item.Type())
}

func TestFromJSONWithTypesIntegerNumber(t *testing.T) {
	// Plain numbers are accepted as well as strings.
	item, err := FromJSONWithTypes([]byte(`{"type":"Integer","value":42}`))
	require.NoError(t, err)
	v, err := item.TryInteger()
	require.NoError(t, err)
	require.EqualValues(t, 42, v.Int64())
}

func TestFromJSONWithTypesErrors(t *testing.T) {
	errCases := []string{
		`{"type":"Unknown"}`,
		`{"type":"Integer","value":"notanumber"}`,
		`{"type":"Boolean","value":"str"}`,
		`{"type":"ByteString","value":"not base64!"}`,
		`{"type":"Map","value":[{"key":{"type":"Array","value":[]},"value":{"type":"Any"}}]}`,
		`[]`,
	}
	for _, js := range errCases {
		_, err := FromJSONWithTypes([]byte(js))
		require.Error(t, err, js)
	}
}

func TestToJSONWithTypesRecursive(t *testing.T) {
	arr := NewArray(nil)
	arr.Append(arr)
	_, err := ToJSONWithTypes(arr)
	require.Error(t, err)
}
