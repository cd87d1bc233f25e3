/*
Package actor provides a way to change chain state via RPC client.

This layer builds transactions: it combines a script with the signers fixed
at construction time, asks the RPC node for the system fee via a test
invocation, computes the network fee locally from the witness shapes and
signs the result with the wallet accounts. Simple cases need an Actor and
one of the Make* or Send* methods, complex ones can tune every field via
modifier callbacks.
*/
package actor

import (
	"fmt"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/config/netmode"
	"github.com/halyard-dev/neokit/pkg/neorpc/result"
	"github.com/halyard-dev/neokit/pkg/rpcclient/invoker"
	"github.com/halyard-dev/neokit/pkg/transaction"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/halyard-dev/neokit/pkg/wallet"
)

// RPCActor is an interface required from the RPC client to successfully
// create and send transactions.
type RPCActor interface {
	invoker.RPCInvoke

	GetBlockCount() (uint32, error)
	GetFeePerByte() (int64, error)
	GetNetwork() (netmode.Magic, error)
	GetVersion() (*result.Version, error)
	SendRawTransaction(tx *transaction.Transaction) (util.Uint256, error)
}

// SignerAccount represents a combination of the transaction.Signer and the
// corresponding wallet.Account. It's used to create and sign transactions.
type SignerAccount struct {
	Signer  transaction.Signer
	Account *wallet.Account
}

// Actor keeps a connection to the RPC endpoint and allows to perform
// state-changing actions on behalf of a set of signers. It also provides
// an Invoker for test invocations with the same signer set.
type Actor struct {
	invoker.Invoker

	client  RPCActor
	opts    Options
	signers []SignerAccount
	magic   netmode.Magic
	version *result.Version
}

// Options are used to create Actor with non-standard transaction checkers or
// additional attributes to be applied for all transactions.
type Options struct {
	// Attributes are set as is into every transaction created by this
	// Actor.
	Attributes []transaction.Attribute
	// CheckerModifier checks the test invocation result and sets up the
	// transaction, DefaultCheckerModifier is used if nil.
	CheckerModifier TransactionCheckerModifier
	// Modifier tunes the unsigned transaction right before signing,
	// nothing is done by default.
	Modifier TransactionModifier
}

// New creates an Actor with the given signer/account pairs. All accounts
// must be able to sign (unlocked, with keys and contracts), the network
// magic and protocol parameters are fetched from the client once.
func New(ra RPCActor, signers []SignerAccount) (*Actor, error) {
	return NewTuned(ra, signers, Options{})
}

// NewSimple makes it easier to create an Actor for the most widespread case
// when the transaction has only one signer with the CalledByEntry scope.
func NewSimple(ra RPCActor, acc *wallet.Account) (*Actor, error) {
	return New(ra, []SignerAccount{{
		Signer: transaction.Signer{
			Account: acc.ScriptHash(),
			Scopes:  transaction.CalledByEntry,
		},
		Account: acc,
	}})
}

// NewTuned creates an Actor with the given signers and Options.
func NewTuned(ra RPCActor, signers []SignerAccount, opts Options) (*Actor, error) {
	if len(signers) == 0 {
		return nil, fmt.Errorf("%w: at least one signer is required", clienterr.ErrInvalidArgument)
	}
	invSigners := make([]transaction.Signer, len(signers))
	for i, s := range signers {
		if s.Account == nil {
			return nil, fmt.Errorf("%w: signer %d has no account", clienterr.ErrInvalidArgument, i)
		}
		if !s.Signer.Account.Equals(s.Account.ScriptHash()) {
			return nil, fmt.Errorf("%w: signer %d account doesn't match its wallet account", clienterr.ErrInvalidArgument, i)
		}
		if !s.Account.CanSign() {
			return nil, fmt.Errorf("%w: signer %d account can't sign (locked or watch-only?)", clienterr.ErrInvalidArgument, i)
		}
		if err := s.Signer.Validate(); err != nil {
			return nil, fmt.Errorf("signer %d: %w", i, err)
		}
		invSigners[i] = s.Signer
	}

	magic, err := ra.GetNetwork()
	if err != nil {
		return nil, fmt.Errorf("failed to get network magic: %w", err)
	}
	version, err := ra.GetVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get protocol parameters: %w", err)
	}
	if opts.CheckerModifier == nil {
		opts.CheckerModifier = DefaultCheckerModifier
	}
	return &Actor{
		Invoker: *invoker.New(ra, invSigners),
		client:  ra,
		opts:    opts,
		signers: signers,
		magic:   magic,
		version: version,
	}, nil
}

// Sender returns the sender address (the first signer) of transactions made
// by this Actor.
func (a *Actor) Sender() util.Uint160 {
	return a.signers[0].Signer.Account
}

// GetNetwork returns the network magic the Actor is operating on.
func (a *Actor) GetNetwork() netmode.Magic {
	return a.magic
}

// GetVersion returns the node version and protocol data cached at Actor
// creation.
func (a *Actor) GetVersion() result.Version {
	return *a.version
}

// CalculateValidUntilBlock returns the proper ValidUntilBlock value for the
// next transaction: the current height plus the protocol's
// MaxValidUntilBlockIncrement, shortened by the number of validators so the
// transaction stays valid even if a few blocks get in while it's signed and
// transferred.
func (a *Actor) CalculateValidUntilBlock() (uint32, error) {
	blockCount, err := a.client.GetBlockCount()
	if err != nil {
		return 0, fmt.Errorf("can't get block count: %w", err)
	}
	incr := a.version.Protocol.MaxValidUntilBlockIncrement
	if vc := uint32(a.version.Protocol.ValidatorsCount); incr > vc {
		incr -= vc
	}
	return blockCount + incr, nil
}

// CalculateNetworkFee computes the network fee the given unsigned
// transaction needs: its projected size (with witnesses counted in) priced
// at the policy fee per byte plus the verification cost of every signer's
// witness.
func (a *Actor) CalculateNetworkFee(tx *transaction.Transaction) (int64, error) {
	feePerByte, err := a.client.GetFeePerByte()
	if err != nil {
		return 0, fmt.Errorf("%w: can't get fee per byte: %w", clienterr.ErrFeeComputation, err)
	}

	unsigned, err := tx.Bytes()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", clienterr.ErrFeeComputation, err)
	}
	size := len(unsigned)
	var netFee int64
	for i, s := range a.signers {
		verification := s.Account.GetVerificationScript()
		fee, witnessSize, err := calculateWitnessFee(1, verification)
		if err != nil {
			return 0, fmt.Errorf("signer %d: %w", i, err)
		}
		netFee += fee
		size += witnessSize
	}
	netFee += int64(size) * feePerByte
	return netFee, nil
}

// Sign adds signatures of all the Actor's accounts to the given transaction,
// which must be fully formed (fees and ValidUntilBlock set). It modifies the
// transaction in place, so the hash changes after this call.
func (a *Actor) Sign(tx *transaction.Transaction) error {
	for i, s := range a.signers {
		if err := s.Account.SignTx(a.magic, tx); err != nil {
			return fmt.Errorf("signer %d: %w", i, err)
		}
	}
	return nil
}

// SignAndSend signs the transaction and sends it to the network, returning
// the hash and the ValidUntilBlock value.
func (a *Actor) SignAndSend(tx *transaction.Transaction) (util.Uint256, uint32, error) {
	if err := a.Sign(tx); err != nil {
		return util.Uint256{}, 0, err
	}
	return a.Send(tx)
}

// Send transmits the given signed transaction and verifies that the hash
// accepted by the server matches the locally computed one.
func (a *Actor) Send(tx *transaction.Transaction) (util.Uint256, uint32, error) {
	expected := tx.Hash()
	h, err := a.client.SendRawTransaction(tx)
	if err != nil {
		return h, tx.ValidUntilBlock, err
	}
	if !h.Equals(expected) {
		return h, tx.ValidUntilBlock, fmt.Errorf("%w: sent transaction has a different hash (%s vs %s)",
			clienterr.ErrInternal, h.StringLE(), expected.StringLE())
	}
	return h, tx.ValidUntilBlock, nil
}
