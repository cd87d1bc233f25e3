package actor

import (
	"testing"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/config/netmode"
	"github.com/halyard-dev/neokit/pkg/crypto/keys"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/neorpc/result"
	"github.com/halyard-dev/neokit/pkg/smartcontract"
	"github.com/halyard-dev/neokit/pkg/transaction"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/halyard-dev/neokit/pkg/wallet"
	"github.com/stretchr/testify/require"
)

type fakeRPC struct {
	invRes     *result.Invoke
	invErr     error
	blockCount uint32
	feePerByte int64
	sentTX     *transaction.Transaction
	sentHash   util.Uint256
	sendErr    error
	version    result.Version
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		invRes:     &result.Invoke{State: "HALT", GasConsumed: 42},
		blockCount: 1000,
		feePerByte: 1000,
		version: result.Version{
			Protocol: result.Protocol{
				Network:                     netmode.UnitTestNet,
				MaxValidUntilBlockIncrement: 5760,
				ValidatorsCount:             7,
			},
		},
	}
}

func (f *fakeRPC) InvokeContractVerify(contract util.Uint160, params []smartcontract.Parameter, signers []transaction.Signer, witnesses ...transaction.Witness) (*result.Invoke, error) {
	return f.invRes, f.invErr
}
func (f *fakeRPC) InvokeFunction(contract util.Uint160, operation string, params []smartcontract.Parameter, signers []transaction.Signer) (*result.Invoke, error) {
	return f.invRes, f.invErr
}
func (f *fakeRPC) InvokeScript(script []byte, signers []transaction.Signer) (*result.Invoke, error) {
	return f.invRes, f.invErr
}
func (f *fakeRPC) GetBlockCount() (uint32, error) {
	return f.blockCount, nil
}
func (f *fakeRPC) GetFeePerByte() (int64, error) {
	return f.feePerByte, nil
}
func (f *fakeRPC) GetNetwork() (netmode.Magic, error) {
	return f.version.Protocol.Network, nil
}
func (f *fakeRPC) GetVersion() (*result.Version, error) {
	v := f.version
	return &v, nil
}
func (f *fakeRPC) SendRawTransaction(tx *transaction.Transaction) (util.Uint256, error) {
	f.sentTX = tx
	if f.sendErr != nil {
		return util.Uint256{}, f.sendErr
	}
	if !f.sentHash.Equals(util.Uint256{}) {
		return f.sentHash, nil
	}
	return tx.Hash(), nil
}

func newTestActor(t *testing.T, rpc *fakeRPC) (*Actor, *wallet.Account) {
	acc, err := wallet.NewAccount()
	require.NoError(t, err)
	a, err := NewSimple(rpc, acc)
	require.NoError(t, err)
	return a, acc
}

func TestNewActorChecks(t *testing.T) {
	rpc := newFakeRPC()
	acc, err := wallet.NewAccount()
	require.NoError(t, err)

	_, err = New(rpc, nil)
	require.ErrorIs(t, err, clienterr.ErrInvalidArgument)

	_, err = New(rpc, []SignerAccount{{Signer: transaction.Signer{Account: acc.ScriptHash()}}})
	require.ErrorIs(t, err, clienterr.ErrInvalidArgument)

	_, err = New(rpc, []SignerAccount{{
		Signer:  transaction.Signer{Account: util.Uint160{9}},
		Account: acc,
	}})
	require.ErrorIs(t, err, clienterr.ErrInvalidArgument)

	watch := wallet.NewWatchOnlyAccount(util.Uint160{1})
	_, err = New(rpc, []SignerAccount{{
		Signer:  transaction.Signer{Account: watch.ScriptHash()},
		Account: watch,
	}})
	require.ErrorIs(t, err, clienterr.ErrInvalidArgument)

	badScope := transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.Global | transaction.CalledByEntry}
	_, err = New(rpc, []SignerAccount{{Signer: badScope, Account: acc}})
	require.ErrorIs(t, err, clienterr.ErrInvalidScope)

	a, err := NewSimple(rpc, acc)
	require.NoError(t, err)
	require.Equal(t, acc.ScriptHash(), a.Sender())
	require.Equal(t, netmode.UnitTestNet, a.GetNetwork())
}

func TestCalculateValidUntilBlock(t *testing.T) {
	rpc := newFakeRPC()
	a, _ := newTestActor(t, rpc)

	vub, err := a.CalculateValidUntilBlock()
	require.NoError(t, err)
	require.Equal(t, rpc.blockCount+5760-7, vub)

	rpc.version.Protocol.ValidatorsCount = 0
	a2, _ := newTestActor(t, rpc)
	vub, err = a2.CalculateValidUntilBlock()
	require.NoError(t, err)
	require.Equal(t, rpc.blockCount+5760, vub)
}

func TestMakeRun(t *testing.T) {
	rpc := newFakeRPC()
	a, acc := newTestActor(t, rpc)

	tx, err := a.MakeRun([]byte{0x51})
	require.NoError(t, err)
	require.Equal(t, int64(42), tx.SystemFee)
	require.Equal(t, rpc.blockCount+5753, tx.ValidUntilBlock)
	require.Len(t, tx.Signers, 1)
	require.Equal(t, acc.ScriptHash(), tx.Signers[0].Account)
	require.Len(t, tx.Scripts, 1)

	// Predicted witness size must match the actual one.
	verification := acc.GetVerificationScript()
	_, witnessSize, err := calculateWitnessFee(1, verification)
	require.NoError(t, err)
	actualSize := io.GetVarSize(tx.Scripts[0].InvocationScript) + io.GetVarSize(verification)
	require.Equal(t, witnessSize, actualSize)

	// Network fee covers the full size at feePerByte plus verification.
	expectedVerification := opcodePrice(1, 0x0c, 0x0c) + ECDSAVerifyPrice
	require.Equal(t, int64(tx.Size())*rpc.feePerByte+expectedVerification, tx.NetworkFee)
}

func TestMakeRunFault(t *testing.T) {
	rpc := newFakeRPC()
	rpc.invRes = &result.Invoke{State: "FAULT", FaultException: "boom"}
	a, _ := newTestActor(t, rpc)

	_, err := a.MakeRun([]byte{0x51})
	var failErr *clienterr.ExecutionFailedError
	require.ErrorAs(t, err, &failErr)
	require.Equal(t, "boom", failErr.Exception)
}

func TestCustomCheckerModifier(t *testing.T) {
	rpc := newFakeRPC()
	rpc.invRes = &result.Invoke{State: "FAULT", FaultException: "expected to fail"}
	acc, err := wallet.NewAccount()
	require.NoError(t, err)
	a, err := NewTuned(rpc, []SignerAccount{{
		Signer:  transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CalledByEntry},
		Account: acc,
	}}, Options{
		CheckerModifier: func(r *result.Invoke, t *transaction.Transaction) error {
			t.SystemFee = 100
			return nil
		},
	})
	require.NoError(t, err)

	tx, err := a.MakeRun([]byte{0x51})
	require.NoError(t, err)
	require.Equal(t, int64(100), tx.SystemFee)
}

func TestTransactionModifier(t *testing.T) {
	rpc := newFakeRPC()
	acc, err := wallet.NewAccount()
	require.NoError(t, err)
	a, err := NewTuned(rpc, []SignerAccount{{
		Signer:  transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CalledByEntry},
		Account: acc,
	}}, Options{
		Modifier: func(t *transaction.Transaction) error {
			t.NetworkFee = 500 // extra headroom on top of the estimate
			return nil
		},
	})
	require.NoError(t, err)

	tx, err := a.MakeRun([]byte{0x51})
	require.NoError(t, err)
	require.Greater(t, tx.NetworkFee, int64(500))

	verification := acc.GetVerificationScript()
	fee, _, err := calculateWitnessFee(1, verification)
	require.NoError(t, err)
	require.Equal(t, 500+int64(tx.Size())*rpc.feePerByte+fee, tx.NetworkFee)
}

func TestActorAttributes(t *testing.T) {
	rpc := newFakeRPC()
	acc, err := wallet.NewAccount()
	require.NoError(t, err)
	a, err := NewTuned(rpc, []SignerAccount{{
		Signer:  transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CalledByEntry},
		Account: acc,
	}}, Options{
		Attributes: []transaction.Attribute{{Type: transaction.HighPriority}},
	})
	require.NoError(t, err)

	tx, err := a.MakeUnsignedRun([]byte{0x51}, []transaction.Attribute{{
		Type:  transaction.NotValidBeforeT,
		Value: &transaction.NotValidBefore{Height: 100},
	}})
	require.NoError(t, err)
	require.Len(t, tx.Attributes, 2)
	require.Equal(t, transaction.HighPriority, tx.Attributes[0].Type)
	require.Equal(t, transaction.NotValidBeforeT, tx.Attributes[1].Type)
}

func TestSendAndHashCheck(t *testing.T) {
	rpc := newFakeRPC()
	a, _ := newTestActor(t, rpc)

	h, vub, err := a.SendRun([]byte{0x51})
	require.NoError(t, err)
	require.NotNil(t, rpc.sentTX)
	require.Equal(t, rpc.sentTX.Hash(), h)
	require.Equal(t, rpc.sentTX.ValidUntilBlock, vub)

	t.Run("server hash mismatch", func(t *testing.T) {
		rpc.sentHash = util.Uint256{0xff}
		_, _, err := a.SendRun([]byte{0x51})
		require.ErrorIs(t, err, clienterr.ErrInternal)
	})
}

func TestMakeUnsignedUncheckedRun(t *testing.T) {
	rpc := newFakeRPC()
	a, _ := newTestActor(t, rpc)

	_, err := a.MakeUnsignedUncheckedRun(nil, 1, nil)
	require.ErrorIs(t, err, clienterr.ErrInvalidArgument)
	_, err = a.MakeUnsignedUncheckedRun([]byte{0x51}, -1, nil)
	require.ErrorIs(t, err, clienterr.ErrInvalidArgument)

	tx, err := a.MakeUnsignedUncheckedRun([]byte{0x51}, 123, nil)
	require.NoError(t, err)
	require.Equal(t, int64(123), tx.SystemFee)
	require.Empty(t, tx.Scripts)
}

func TestMakeCall(t *testing.T) {
	rpc := newFakeRPC()
	a, _ := newTestActor(t, rpc)

	tx, err := a.MakeCall(util.Uint160{1, 2, 3}, "transfer", util.Uint160{1}, util.Uint160{2}, 100, nil)
	require.NoError(t, err)
	require.NotEmpty(t, tx.Script)

	_, err = a.MakeCall(util.Uint160{1, 2, 3}, "")
	require.ErrorIs(t, err, clienterr.ErrInvalidArgument)
}

func TestMultisigWitnessFee(t *testing.T) {
	var pubs keys.PublicKeys
	for i := 0; i < 4; i++ {
		priv, err := keys.NewPrivateKey()
		require.NoError(t, err)
		pubs = append(pubs, priv.PublicKey())
	}
	const m = 3
	script, err := keys.CreateMultiSigRedeemScript(m, pubs)
	require.NoError(t, err)

	fee, size, err := calculateWitnessFee(1, script)
	require.NoError(t, err)
	require.Equal(t, io.GetVarSize(66*m)+66*m+io.GetVarSize(script), size)
	// m+n PUSHDATA1 costs, two small pushes and n verifications.
	expected := opcodePrice(1, 0x0c)*int64(m+len(pubs)) + opcodePrice(1, 0x13, 0x14) + ECDSAVerifyPrice*int64(len(pubs))
	require.Equal(t, expected, fee)

	t.Run("non-standard script", func(t *testing.T) {
		_, _, err := calculateWitnessFee(1, []byte{0x51})
		require.ErrorIs(t, err, clienterr.ErrFeeComputation)
	})
}
