package smartcontract

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/smartcontract/callflag"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/halyard-dev/neokit/pkg/vm/opcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gasHash, _ = util.Uint160DecodeStringLE("d2a4cff31913016155e38e474a2c06d08be276cf")

func TestBuilderBareCall(t *testing.T) {
	b := NewBuilder()
	b.ContractCall(gasHash, "symbol", callflag.NoneFlag)
	script, err := b.Script()
	require.NoError(t, err)
	assert.Equal(t, "0c0673796d626f6c0c14cf76e28bd0062c4a478ee35561011319f3cfa4d241627d5b52",
		hex.EncodeToString(script))
}

func TestBuilderCallWithParams(t *testing.T) {
	b := NewBuilder()
	from := util.Uint160{1, 2, 3}
	to := util.Uint160{3, 2, 1}
	params, err := NewParametersFromValues(from, to, big.NewInt(100500), nil)
	require.NoError(t, err)

	b.ContractCall(gasHash, "transfer", callflag.All, params...)
	script, err := b.Script()
	require.NoError(t, err)

	// Last argument (null) is pushed first, the call tail is last.
	assert.EqualValues(t, opcode.PUSHNULL, script[0])
	assert.EqualValues(t, opcode.SYSCALL, script[len(script)-5])
}

func TestBuilderChaining(t *testing.T) {
	b := NewBuilder()
	b.PushInteger(big.NewInt(5)).PushBool(true).PushData("abc").PushNull().PackArray(4)
	script, err := b.Script()
	require.NoError(t, err)

	expected := []byte{
		byte(opcode.PUSH5),
		byte(opcode.PUSHT),
		byte(opcode.PUSHDATA1), 3, 'a', 'b', 'c',
		byte(opcode.PUSHNULL),
		byte(opcode.PUSH4),
		byte(opcode.PACK),
	}
	assert.Equal(t, expected, script)
}

func TestBuilderPushParam(t *testing.T) {
	b := NewBuilder()
	b.PushParam(Parameter{Type: ArrayType, Value: []Parameter{
		{Type: IntegerType, Value: int64(1)},
		{Type: StringType, Value: "x"},
	}})
	script, err := b.Script()
	require.NoError(t, err)
	// "x" is pushed first (reverse order), then 1, then count and PACK.
	assert.EqualValues(t, opcode.PUSHDATA1, script[0])
	assert.EqualValues(t, opcode.PACK, script[len(script)-1])

	b.Reset()
	b.PushParam(Parameter{Type: BoolType, Value: "not a bool"})
	_, err = b.Script()
	require.ErrorIs(t, err, clienterr.ErrInvalidArgument)
}

func TestBuilderMapParam(t *testing.T) {
	b := NewBuilder()
	b.PushParam(Parameter{Type: MapType, Value: []ParameterPair{{
		Key:   Parameter{Type: StringType, Value: "k"},
		Value: Parameter{Type: IntegerType, Value: int64(42)},
	}}})
	script, err := b.Script()
	require.NoError(t, err)
	assert.EqualValues(t, opcode.PACKMAP, script[len(script)-1])
}

func TestBuilderScriptTooLarge(t *testing.T) {
	b := NewBuilder()
	for i := 0; i <= MaxScriptLength/0x10000+1; i++ {
		b.PushBytes(make([]byte, 0x10000))
	}
	_, err := b.Script()
	require.ErrorIs(t, err, clienterr.ErrScriptTooLarge)
}

func TestBuilderReset(t *testing.T) {
	b := NewBuilder()
	b.PushBool(true)
	require.Equal(t, 1, b.Len())
	b.Reset()
	require.Equal(t, 0, b.Len())
}
