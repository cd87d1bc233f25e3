/*
Package invoker provides a convenient read-only interface to the RPC node for
test script invocations. It doesn't create or send transactions, use the
actor package for that, but an Invoker is all you need to examine contract
state or prototype invocation scripts.
*/
package invoker

import (
	"fmt"

	"github.com/halyard-dev/neokit/pkg/neorpc/result"
	"github.com/halyard-dev/neokit/pkg/smartcontract"
	"github.com/halyard-dev/neokit/pkg/transaction"
	"github.com/halyard-dev/neokit/pkg/util"
)

// RPCInvoke is a set of RPC methods needed to execute test invocations.
type RPCInvoke interface {
	InvokeContractVerify(contract util.Uint160, params []smartcontract.Parameter, signers []transaction.Signer, witnesses ...transaction.Witness) (*result.Invoke, error)
	InvokeFunction(contract util.Uint160, operation string, params []smartcontract.Parameter, signers []transaction.Signer) (*result.Invoke, error)
	InvokeScript(script []byte, signers []transaction.Signer) (*result.Invoke, error)
}

// Invoker allows invoking contracts with a fixed set of signers.
type Invoker struct {
	client  RPCInvoke
	signers []transaction.Signer
}

// New creates an Invoker using the given client and signers.
func New(client RPCInvoke, signers []transaction.Signer) *Invoker {
	return &Invoker{client, signers}
}

// Signers returns the signer list this Invoker uses, shared with the Invoker.
func (v *Invoker) Signers() []transaction.Signer {
	return v.signers
}

// Call invokes a method of the contract with the given parameters (converted
// the same way smartcontract.NewParameterFromValue does) and the Invoker's
// signers.
func (v *Invoker) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	ps, err := smartcontract.NewParametersFromValues(params...)
	if err != nil {
		return nil, fmt.Errorf("bad parameters: %w", err)
	}
	return v.client.InvokeFunction(contract, operation, ps, v.signers)
}

// Run executes the given bytecode with the Invoker's signers.
func (v *Invoker) Run(script []byte) (*result.Invoke, error) {
	return v.client.InvokeScript(script, v.signers)
}

// Verify invokes the contract's verify method in the verification context
// with the Invoker's signers and the given witnesses and parameters.
func (v *Invoker) Verify(contract util.Uint160, witnesses []transaction.Witness, params ...any) (*result.Invoke, error) {
	ps, err := smartcontract.NewParametersFromValues(params...)
	if err != nil {
		return nil, fmt.Errorf("bad parameters: %w", err)
	}
	return v.client.InvokeContractVerify(contract, ps, v.signers, witnesses...)
}
