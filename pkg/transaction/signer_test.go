package transaction

import (
	"testing"

	"github.com/halyard-dev/neokit/internal/testserdes"
	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/crypto/keys"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestNewSignerScopeChecks(t *testing.T) {
	acc := util.Uint160{1, 2, 3}
	contract := util.Uint160{4, 5, 6}

	t.Run("good CalledByEntry", func(t *testing.T) {
		s, err := NewSigner(acc, CalledByEntry)
		require.NoError(t, err)
		require.Equal(t, CalledByEntry, s.Scopes)
	})
	t.Run("Global combined with CalledByEntry", func(t *testing.T) {
		_, err := NewSigner(acc, Global|CalledByEntry)
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
	t.Run("CustomContracts without contracts", func(t *testing.T) {
		_, err := NewSigner(acc, CustomContracts)
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
	t.Run("CustomGroups without groups", func(t *testing.T) {
		_, err := NewSigner(acc, CustomGroups)
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
	t.Run("WitnessRules without rules", func(t *testing.T) {
		_, err := NewSigner(acc, Rules)
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
	t.Run("contracts without CustomContracts scope", func(t *testing.T) {
		_, err := NewSigner(acc, CalledByEntry, WithAllowedContracts(contract))
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
	t.Run("unknown scope bits", func(t *testing.T) {
		_, err := NewSigner(acc, WitnessScope(0x04))
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
	t.Run("good CustomContracts", func(t *testing.T) {
		s, err := NewSigner(acc, CalledByEntry|CustomContracts, WithAllowedContracts(contract))
		require.NoError(t, err)
		require.Equal(t, []util.Uint160{contract}, s.AllowedContracts)
	})
	t.Run("duplicate contracts", func(t *testing.T) {
		_, err := NewSigner(acc, CustomContracts, WithAllowedContracts(contract, contract))
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
	t.Run("too many contracts", func(t *testing.T) {
		hashes := make([]util.Uint160, maxSubitems+1)
		for i := range hashes {
			hashes[i][0] = byte(i)
		}
		_, err := NewSigner(acc, CustomContracts, WithAllowedContracts(hashes...))
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
	t.Run("duplicate groups", func(t *testing.T) {
		priv, err := keys.NewPrivateKey()
		require.NoError(t, err)
		pub := priv.PublicKey()
		_, err = NewSigner(acc, CustomGroups, WithAllowedGroups(pub, pub))
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
	t.Run("good rule", func(t *testing.T) {
		s, err := NewSigner(acc, Rules, WithRules(WitnessRule{
			Action:    WitnessAllow,
			Condition: ConditionCalledByEntry{},
		}))
		require.NoError(t, err)
		require.Len(t, s.Rules, 1)
	})
	t.Run("rule nested too deeply", func(t *testing.T) {
		someBool := ConditionBoolean(true)
		_, err := NewSigner(acc, Rules, WithRules(WitnessRule{
			Action:    WitnessAllow,
			Condition: &ConditionNot{Condition: &ConditionNot{Condition: &ConditionNot{Condition: &someBool}}},
		}))
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
	t.Run("rule with empty And", func(t *testing.T) {
		_, err := NewSigner(acc, Rules, WithRules(WitnessRule{
			Action:    WitnessAllow,
			Condition: &ConditionAnd{},
		}))
		require.ErrorIs(t, err, clienterr.ErrInvalidScope)
	})
}

func TestSignerEncodeDecodeBinary(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	expected := &Signer{
		Account: util.Uint160{1, 2, 3, 4, 5},
		Scopes:  CalledByEntry,
	}
	actual := &Signer{}
	testserdes.EncodeDecodeBinary(t, expected, actual)

	expected.Scopes = CalledByEntry | CustomContracts | CustomGroups | Rules
	expected.AllowedContracts = []util.Uint160{{1, 2, 3}, {4, 5, 6}}
	expected.AllowedGroups = []*keys.PublicKey{priv.PublicKey()}
	expected.Rules = []WitnessRule{{
		Action:    WitnessAllow,
		Condition: ConditionCalledByEntry{},
	}}
	actual = &Signer{}
	testserdes.EncodeDecodeBinary(t, expected, actual)
}

func TestSignerDecodeInvalid(t *testing.T) {
	t.Run("unknown scope byte", func(t *testing.T) {
		good := &Signer{Account: util.Uint160{1}, Scopes: CalledByEntry}
		data, err := testserdes.EncodeBinary(good)
		require.NoError(t, err)
		data[util.Uint160Size] = 0x04
		require.ErrorIs(t, testserdes.DecodeBinary(data, &Signer{}), clienterr.ErrInvalidScope)
	})
	t.Run("Global with extra bits", func(t *testing.T) {
		good := &Signer{Account: util.Uint160{1}, Scopes: CalledByEntry}
		data, err := testserdes.EncodeBinary(good)
		require.NoError(t, err)
		data[util.Uint160Size] = byte(Global | CalledByEntry)
		require.ErrorIs(t, testserdes.DecodeBinary(data, &Signer{}), clienterr.ErrInvalidScope)
	})
}

func TestSignerMarshalJSON(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	expected := &Signer{
		Account:          util.Uint160{1, 2, 3, 4, 5},
		Scopes:           CalledByEntry | CustomContracts | CustomGroups,
		AllowedContracts: []util.Uint160{{1, 2, 3}, {4, 5, 6}},
		AllowedGroups:    []*keys.PublicKey{priv.PublicKey()},
	}
	testserdes.MarshalUnmarshalJSON(t, expected, &Signer{})
}

func TestSignerCopy(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	var s *Signer
	require.Nil(t, s.Copy())

	s = &Signer{
		Account:          util.Uint160{1, 2, 3},
		Scopes:           CustomContracts | CustomGroups | Rules,
		AllowedContracts: []util.Uint160{{4, 5, 6}},
		AllowedGroups:    []*keys.PublicKey{priv.PublicKey()},
		Rules:            []WitnessRule{{Action: WitnessDeny, Condition: ConditionCalledByEntry{}}},
	}
	cp := s.Copy()
	require.Equal(t, s, cp)

	cp.AllowedContracts[0][0] = 0xff
	require.NotEqual(t, s.AllowedContracts, cp.AllowedContracts)
}
