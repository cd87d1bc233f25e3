package transaction

import (
	"encoding/json"
	"testing"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/crypto/keys"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/stretchr/testify/require"
)

func condRoundTripBin(t *testing.T, cond WitnessCondition) WitnessCondition {
	w := io.NewBufBinWriter()
	cond.EncodeBinary(w.BinWriter)
	require.NoError(t, w.Err)
	r := io.NewBinReaderFromBuf(w.Bytes())
	res := DecodeBinaryCondition(r)
	require.NoError(t, r.Err)
	return res
}

func condRoundTripJSON(t *testing.T, cond WitnessCondition) WitnessCondition {
	data, err := cond.MarshalJSON()
	require.NoError(t, err)
	res, err := UnmarshalConditionJSON(data)
	require.NoError(t, err)
	return res
}

func TestWitnessConditionRoundTrips(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	someBool := ConditionBoolean(true)
	hashCond := ConditionScriptHash(util.Uint160{1, 2, 3})
	calledBy := ConditionCalledByContract(util.Uint160{4, 5, 6})
	group := ConditionGroup(*pub)
	calledByGroup := ConditionCalledByGroup(*pub)
	conds := []WitnessCondition{
		&someBool,
		&ConditionNot{Condition: &someBool},
		&ConditionAnd{&someBool, ConditionCalledByEntry{}},
		&ConditionOr{&someBool, ConditionCalledByEntry{}},
		&hashCond,
		&group,
		ConditionCalledByEntry{},
		&calledBy,
		&calledByGroup,
	}
	for _, cond := range conds {
		t.Run(cond.Type().String(), func(t *testing.T) {
			require.Equal(t, cond, condRoundTripBin(t, cond))
			require.Equal(t, cond, condRoundTripJSON(t, cond))
		})
	}
}

func TestWitnessConditionNesting(t *testing.T) {
	someBool := ConditionBoolean(false)
	tooDeep := &ConditionNot{Condition: &ConditionNot{Condition: &someBool}}

	t.Run("binary", func(t *testing.T) {
		w := io.NewBufBinWriter()
		tooDeep.EncodeBinary(w.BinWriter)
		require.NoError(t, w.Err)
		r := io.NewBinReaderFromBuf(w.Bytes())
		require.Nil(t, DecodeBinaryCondition(r))
		require.ErrorIs(t, r.Err, clienterr.ErrInvalidScope)
	})
	t.Run("json", func(t *testing.T) {
		data, err := tooDeep.MarshalJSON()
		require.NoError(t, err)
		_, err = UnmarshalConditionJSON(data)
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
}

func TestWitnessConditionListLimits(t *testing.T) {
	var conds ConditionAnd
	for i := 0; i < maxConditionSubitems+1; i++ {
		conds = append(conds, ConditionCalledByEntry{})
	}
	w := io.NewBufBinWriter()
	conds.EncodeBinary(w.BinWriter)
	require.NoError(t, w.Err)
	r := io.NewBinReaderFromBuf(w.Bytes())
	require.Nil(t, DecodeBinaryCondition(r))
	require.ErrorIs(t, r.Err, clienterr.ErrInvalidScope)

	t.Run("empty list", func(t *testing.T) {
		r := io.NewBinReaderFromBuf([]byte{byte(WitnessOr), 0})
		require.Nil(t, DecodeBinaryCondition(r))
		require.ErrorIs(t, r.Err, clienterr.ErrInvalidScope)
	})
}

func TestWitnessRuleSerDes(t *testing.T) {
	someBool := ConditionBoolean(true)
	rules := []*WitnessRule{
		{Action: WitnessAllow, Condition: ConditionCalledByEntry{}},
		{Action: WitnessDeny, Condition: &someBool},
	}
	for _, expected := range rules {
		w := io.NewBufBinWriter()
		expected.EncodeBinary(w.BinWriter)
		require.NoError(t, w.Err)
		actual := &WitnessRule{}
		r := io.NewBinReaderFromBuf(w.Bytes())
		actual.DecodeBinary(r)
		require.NoError(t, r.Err)
		require.Equal(t, expected, actual)

		data, err := json.Marshal(expected)
		require.NoError(t, err)
		actual = &WitnessRule{}
		require.NoError(t, json.Unmarshal(data, actual))
		require.Equal(t, expected, actual)
	}
}

func TestWitnessRuleValidate(t *testing.T) {
	someBool := ConditionBoolean(true)

	good := []*WitnessRule{
		{Action: WitnessAllow, Condition: ConditionCalledByEntry{}},
		{Action: WitnessDeny, Condition: &ConditionNot{Condition: &someBool}},
		{Action: WitnessAllow, Condition: &ConditionAnd{&someBool, ConditionCalledByEntry{}}},
	}
	for _, rule := range good {
		require.NoError(t, rule.Validate())
	}

	t.Run("nested too deeply", func(t *testing.T) {
		rule := &WitnessRule{
			Action:    WitnessAllow,
			Condition: &ConditionNot{Condition: &ConditionNot{Condition: &ConditionNot{Condition: &someBool}}},
		}
		require.ErrorIs(t, rule.Validate(), clienterr.ErrInvalidScope)
	})
	t.Run("nil condition", func(t *testing.T) {
		rule := &WitnessRule{Action: WitnessAllow}
		require.ErrorIs(t, rule.Validate(), clienterr.ErrInvalidScope)
	})
	t.Run("bad action", func(t *testing.T) {
		rule := &WitnessRule{Action: WitnessAction(5), Condition: ConditionCalledByEntry{}}
		require.ErrorIs(t, rule.Validate(), clienterr.ErrInvalidScope)
	})
	t.Run("empty And", func(t *testing.T) {
		rule := &WitnessRule{Action: WitnessAllow, Condition: &ConditionAnd{}}
		require.ErrorIs(t, rule.Validate(), clienterr.ErrInvalidScope)
	})
	t.Run("oversized Or", func(t *testing.T) {
		var conds ConditionOr
		for i := 0; i < maxConditionSubitems+1; i++ {
			conds = append(conds, ConditionCalledByEntry{})
		}
		rule := &WitnessRule{Action: WitnessAllow, Condition: &conds}
		require.ErrorIs(t, rule.Validate(), clienterr.ErrInvalidScope)
	})
	t.Run("nil inside Or", func(t *testing.T) {
		rule := &WitnessRule{Action: WitnessAllow, Condition: &ConditionOr{ConditionCalledByEntry{}, nil}}
		require.ErrorIs(t, rule.Validate(), clienterr.ErrInvalidScope)
	})
}

func TestWitnessRuleBadAction(t *testing.T) {
	r := io.NewBinReaderFromBuf([]byte{0x05, byte(WitnessCalledByEntry)})
	rule := &WitnessRule{}
	rule.DecodeBinary(r)
	require.ErrorIs(t, r.Err, clienterr.ErrInvalidScope)

	require.Error(t, json.Unmarshal([]byte(`{"action":"Maybe","condition":{"type":"CalledByEntry"}}`), &WitnessRule{}))
}
