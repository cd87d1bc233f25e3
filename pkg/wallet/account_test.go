package wallet

import (
	"encoding/json"
	"testing"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/config/netmode"
	"github.com/halyard-dev/neokit/pkg/crypto/keys"
	"github.com/halyard-dev/neokit/pkg/encoding/address"
	"github.com/halyard-dev/neokit/pkg/transaction"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/stretchr/testify/require"
)

// testScrypt keeps unit tests quick, production code uses
// keys.NEP2ScryptParams.
var testScrypt = keys.ScryptParams{N: 256, R: 1, P: 1}

func TestNewAccount(t *testing.T) {
	acc, err := NewAccount()
	require.NoError(t, err)
	require.NotNil(t, acc.PrivateKey())
	require.NotNil(t, acc.Contract)
	require.Equal(t, acc.PrivateKey().GetScriptHash(), acc.ScriptHash())
	require.Equal(t, address.Uint160ToString(acc.ScriptHash()), acc.Address)
	require.True(t, acc.CanSign())
}

func TestNewAccountFromWIF(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	acc, err := NewAccountFromWIF(priv.WIF())
	require.NoError(t, err)
	require.Equal(t, priv.Bytes(), acc.PrivateKey().Bytes())
	require.Equal(t, priv.Address(), acc.Address)

	_, err = NewAccountFromWIF("garbage")
	require.Error(t, err)
}

func TestWatchOnlyAccount(t *testing.T) {
	h := util.Uint160{1, 2, 3}
	acc := NewWatchOnlyAccount(h)
	require.Equal(t, h, acc.ScriptHash())
	require.Nil(t, acc.PrivateKey())
	require.Nil(t, acc.PublicKey())
	require.Nil(t, acc.GetVerificationScript())
	require.False(t, acc.CanSign())

	tx := transaction.New([]byte{0x51}, 0)
	tx.Signers = []transaction.Signer{{Account: h}}
	require.ErrorIs(t, acc.SignTx(netmode.UnitTestNet, tx), clienterr.ErrInvalidArgument)
}

func TestAccountEncryptDecrypt(t *testing.T) {
	acc, err := NewAccount()
	require.NoError(t, err)
	priv := acc.PrivateKey().Bytes()

	require.NoError(t, acc.Encrypt("pass", testScrypt))
	require.NotEmpty(t, acc.EncryptedWIF)

	acc.Close()
	require.Nil(t, acc.PrivateKey())
	require.False(t, acc.CanSign())

	require.ErrorIs(t, acc.Decrypt("nope", testScrypt), clienterr.ErrInvalidPassphrase)
	require.NoError(t, acc.Decrypt("pass", testScrypt))
	require.Equal(t, priv, acc.PrivateKey().Bytes())
	require.True(t, acc.CanSign())
}

func TestDecryptNoKey(t *testing.T) {
	acc := NewWatchOnlyAccount(util.Uint160{1})
	require.ErrorIs(t, acc.Decrypt("pass", testScrypt), clienterr.ErrInvalidFormat)
	require.ErrorIs(t, acc.Encrypt("pass", testScrypt), clienterr.ErrInvalidFormat)
}

func TestAccountSignTx(t *testing.T) {
	acc, err := NewAccount()
	require.NoError(t, err)

	tx := transaction.New([]byte{0x51}, 1)
	tx.ValidUntilBlock = 100
	tx.Signers = []transaction.Signer{{
		Account: acc.ScriptHash(),
		Scopes:  transaction.CalledByEntry,
	}}

	require.NoError(t, acc.SignTx(netmode.UnitTestNet, tx))
	require.Len(t, tx.Scripts, 1)
	require.Equal(t, acc.Contract.Script, tx.Scripts[0].VerificationScript)
	require.Len(t, tx.Scripts[0].InvocationScript, 2+keys.SignatureLen)

	sig := tx.Scripts[0].InvocationScript[2:]
	require.True(t, acc.PrivateKey().PublicKey().VerifyHashable(sig, uint32(netmode.UnitTestNet), tx))

	t.Run("not a signer", func(t *testing.T) {
		other, err := NewAccount()
		require.NoError(t, err)
		require.ErrorIs(t, other.SignTx(netmode.UnitTestNet, tx), clienterr.ErrInvalidArgument)
	})
	t.Run("locked", func(t *testing.T) {
		acc.Locked = true
		require.ErrorIs(t, acc.SignTx(netmode.UnitTestNet, tx), clienterr.ErrInvalidArgument)
		acc.Locked = false
	})
}

func TestAccountSignMultisigTx(t *testing.T) {
	var (
		accs = make([]*Account, 3)
		pubs keys.PublicKeys
	)
	for i := range accs {
		var err error
		accs[i], err = NewAccount()
		require.NoError(t, err)
		pubs = append(pubs, accs[i].PublicKey())
	}
	const m = 2
	for _, acc := range accs {
		require.NoError(t, acc.ConvertMultisig(m, pubs))
	}
	require.Equal(t, accs[0].ScriptHash(), accs[1].ScriptHash())

	tx := transaction.New([]byte{0x51}, 1)
	tx.ValidUntilBlock = 100
	tx.Signers = []transaction.Signer{{
		Account: accs[0].ScriptHash(),
		Scopes:  transaction.CalledByEntry,
	}}

	sigs := make(map[string][]byte)
	for _, acc := range accs[:m] {
		require.NoError(t, acc.SignTx(netmode.UnitTestNet, tx))
		sig, err := acc.SignHashable(netmode.UnitTestNet, tx)
		require.NoError(t, err)
		sigs[acc.PublicKey().StringCompressed()] = sig
	}
	// SignTx appends, so the raw invocation script holds m signatures.
	require.Len(t, tx.Scripts[0].InvocationScript, m*(2+keys.SignatureLen))

	// A properly ordered invocation script can be rebuilt from the parts.
	invoc, err := CreateMultisigInvocation(m, pubs, sigs)
	require.NoError(t, err)
	require.Len(t, invoc, m*(2+keys.SignatureLen))
	tx.Scripts[0].InvocationScript = invoc

	t.Run("not enough signatures", func(t *testing.T) {
		delete(sigs, accs[0].PublicKey().StringCompressed())
		_, err := CreateMultisigInvocation(m, pubs, sigs)
		require.ErrorIs(t, err, clienterr.ErrInvalidArgument)
	})
}

func TestConvertMultisigErrors(t *testing.T) {
	acc, err := NewAccount()
	require.NoError(t, err)
	stranger, err := keys.NewPrivateKey()
	require.NoError(t, err)

	require.ErrorIs(t, acc.ConvertMultisig(1, keys.PublicKeys{stranger.PublicKey()}), clienterr.ErrInvalidArgument)
	require.ErrorIs(t, acc.ConvertMultisig(2, keys.PublicKeys{acc.PublicKey()}), clienterr.ErrInvalidArgument)
}

func TestContractJSON(t *testing.T) {
	acc, err := NewAccount()
	require.NoError(t, err)

	data, err := json.Marshal(acc.Contract)
	require.NoError(t, err)

	actual := new(Contract)
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, acc.Contract, actual)
	require.Equal(t, acc.ScriptHash(), actual.ScriptHash())
}
