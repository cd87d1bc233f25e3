package actor

import (
	"fmt"
	"math/rand"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/neorpc/result"
	"github.com/halyard-dev/neokit/pkg/smartcontract/callflag"
	"github.com/halyard-dev/neokit/pkg/transaction"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/halyard-dev/neokit/pkg/vm/emit"
)

// TransactionCheckerModifier is a callback that receives the test invocation
// result and the transaction being constructed. It errors out on invocations
// it considers failed (aborting the construction) and sets the system fee,
// see DefaultCheckerModifier.
type TransactionCheckerModifier func(r *result.Invoke, t *transaction.Transaction) error

// TransactionModifier is a callback that tunes the transaction before the
// network fee is computed and the transaction is signed. Additional fee
// headroom is the typical use.
type TransactionModifier func(t *transaction.Transaction) error

// DefaultCheckerModifier fails on non-HALT invocation states (wrapping the
// VM exception into clienterr.ExecutionFailedError) and uses the consumed
// gas as the system fee.
func DefaultCheckerModifier(r *result.Invoke, t *transaction.Transaction) error {
	if err := r.ExecutionError(); err != nil {
		return err
	}
	t.SystemFee = r.GasConsumed
	return nil
}

// MakeCall creates a transaction that calls the given method of the given
// contract with the given parameters. The transaction is signed and ready to
// be sent, but not yet sent.
func (a *Actor) MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error) {
	script, err := callScript(contract, method, params...)
	if err != nil {
		return nil, err
	}
	return a.MakeRun(script)
}

// MakeTunedCall is like MakeCall, but with the given attributes and a custom
// invocation result checker.
func (a *Actor) MakeTunedCall(contract util.Uint160, method string, attrs []transaction.Attribute, txHook TransactionCheckerModifier, params ...any) (*transaction.Transaction, error) {
	script, err := callScript(contract, method, params...)
	if err != nil {
		return nil, err
	}
	return a.MakeTunedRun(script, attrs, txHook)
}

// MakeRun creates a signed transaction executing the given script.
func (a *Actor) MakeRun(script []byte) (*transaction.Transaction, error) {
	return a.MakeTunedRun(script, nil, nil)
}

// MakeTunedRun is like MakeRun, but with the given attributes and a custom
// invocation result checker.
func (a *Actor) MakeTunedRun(script []byte, attrs []transaction.Attribute, txHook TransactionCheckerModifier) (*transaction.Transaction, error) {
	tx, err := a.MakeUnsignedTunedRun(script, attrs, txHook)
	if err != nil {
		return nil, err
	}
	if err := a.Sign(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// MakeUnsignedCall creates an unsigned transaction calling the given method
// of the given contract. Witnesses contain the verification scripts of the
// signers, but no invocation scripts.
func (a *Actor) MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error) {
	script, err := callScript(contract, method, params...)
	if err != nil {
		return nil, err
	}
	return a.MakeUnsignedRun(script, attrs)
}

// MakeUnsignedRun creates an unsigned transaction executing the given
// script after test-executing it for the system fee.
func (a *Actor) MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error) {
	return a.MakeUnsignedTunedRun(script, attrs, nil)
}

// MakeUnsignedTunedRun test-executes the script, lets txHook (or
// DefaultCheckerModifier) check the result and set the system fee and then
// finishes the unsigned transaction with MakeUnsignedUncheckedRun.
func (a *Actor) MakeUnsignedTunedRun(script []byte, attrs []transaction.Attribute, txHook TransactionCheckerModifier) (*transaction.Transaction, error) {
	r, err := a.Run(script)
	if err != nil {
		return nil, fmt.Errorf("test invocation failed: %w", err)
	}
	if txHook == nil {
		txHook = a.opts.CheckerModifier
	}
	tx := newUncheckedTx(script, a.Signers(), a.txAttributes(attrs))
	if err := txHook(r, tx); err != nil {
		return nil, err
	}
	return a.finishUnsigned(tx)
}

// MakeUnsignedUncheckedRun creates an unsigned transaction with the given
// script and system fee without any test invocation, the caller is
// responsible for the script being correct.
func (a *Actor) MakeUnsignedUncheckedRun(script []byte, sysfee int64, attrs []transaction.Attribute) (*transaction.Transaction, error) {
	if len(script) == 0 {
		return nil, fmt.Errorf("%w: empty script", clienterr.ErrInvalidArgument)
	}
	if sysfee < 0 {
		return nil, fmt.Errorf("%w: negative system fee", clienterr.ErrInvalidArgument)
	}
	tx := newUncheckedTx(script, a.Signers(), a.txAttributes(attrs))
	tx.SystemFee = sysfee
	return a.finishUnsigned(tx)
}

// txAttributes combines the Actor-wide attributes with per-transaction ones
// into a fresh slice.
func (a *Actor) txAttributes(attrs []transaction.Attribute) []transaction.Attribute {
	if len(a.opts.Attributes) == 0 {
		return attrs
	}
	res := make([]transaction.Attribute, 0, len(a.opts.Attributes)+len(attrs))
	res = append(res, a.opts.Attributes...)
	return append(res, attrs...)
}

func newUncheckedTx(script []byte, signers []transaction.Signer, attrs []transaction.Attribute) *transaction.Transaction {
	tx := transaction.New(script, 0)
	tx.SetNonce(rand.Uint32())
	tx.Signers = make([]transaction.Signer, len(signers))
	for i := range signers {
		tx.Signers[i] = *signers[i].Copy()
	}
	if len(attrs) != 0 {
		tx.Attributes = attrs
	}
	return tx
}

// finishUnsigned sets ValidUntilBlock, runs the Actor's Modifier and
// computes the network fee, returning the transaction ready for signing.
func (a *Actor) finishUnsigned(tx *transaction.Transaction) (*transaction.Transaction, error) {
	vub, err := a.CalculateValidUntilBlock()
	if err != nil {
		return nil, err
	}
	tx.SetValidUntilBlock(vub)
	if a.opts.Modifier != nil {
		if err := a.opts.Modifier(tx); err != nil {
			return nil, fmt.Errorf("transaction modifier: %w", err)
		}
	}
	netFee, err := a.CalculateNetworkFee(tx)
	if err != nil {
		return nil, err
	}
	tx.NetworkFee += netFee
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// SendCall creates, signs and sends a transaction calling the given method
// of the given contract, returning the hash and ValidUntilBlock.
func (a *Actor) SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error) {
	tx, err := a.MakeCall(contract, method, params...)
	if err != nil {
		return util.Uint256{}, 0, err
	}
	return a.Send(tx)
}

// SendRun creates, signs and sends a transaction with the given script.
func (a *Actor) SendRun(script []byte) (util.Uint256, uint32, error) {
	tx, err := a.MakeRun(script)
	if err != nil {
		return util.Uint256{}, 0, err
	}
	return a.Send(tx)
}

func callScript(contract util.Uint160, method string, params ...any) ([]byte, error) {
	if len(method) == 0 {
		return nil, fmt.Errorf("%w: empty method", clienterr.ErrInvalidArgument)
	}
	w := io.NewBufBinWriter()
	emit.AppCall(w.BinWriter, contract, method, callflag.All, params...)
	if w.Err != nil {
		return nil, fmt.Errorf("%w: %w", clienterr.ErrInvalidArgument, w.Err)
	}
	return w.Bytes(), nil
}
