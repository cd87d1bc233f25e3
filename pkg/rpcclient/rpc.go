package rpcclient

import (
	"encoding/base64"
	"fmt"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/neorpc"
	"github.com/halyard-dev/neokit/pkg/neorpc/result"
	"github.com/halyard-dev/neokit/pkg/smartcontract"
	"github.com/halyard-dev/neokit/pkg/transaction"
	"github.com/halyard-dev/neokit/pkg/util"
)

// PolicyContractHash is the well-known hash of the native PolicyContract.
var PolicyContractHash, _ = util.Uint160DecodeStringLE("cc5e4edd9f5f8dba8bb65734541df7a1c081c67b")

// GetVersion returns the version and protocol parameters of the RPC node.
func (c *Client) GetVersion() (*result.Version, error) {
	var resp = &result.Version{}
	if err := c.performRequest("getversion", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetBlockCount returns the number of blocks in the node's chain.
func (c *Client) GetBlockCount() (uint32, error) {
	var resp uint32
	err := c.performRequest("getblockcount", nil, &resp)
	return resp, err
}

// GetBlock returns a block by its height in the verbose JSON form.
func (c *Client) GetBlock(index uint32) (*result.Block, error) {
	var resp = &result.Block{}
	if err := c.performRequest("getblock", []any{index, 1}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetBlockByHash returns a block by its hash in the verbose JSON form.
func (c *Client) GetBlockByHash(hash util.Uint256) (*result.Block, error) {
	var resp = &result.Block{}
	if err := c.performRequest("getblock", []any{hash.StringLE(), 1}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetRawTransaction returns a transaction by hash.
func (c *Client) GetRawTransaction(hash util.Uint256) (*transaction.Transaction, error) {
	var resp string
	if err := c.performRequest("getrawtransaction", []any{hash.StringLE()}, &resp); err != nil {
		return nil, err
	}
	txBytes, err := base64.StdEncoding.DecodeString(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", clienterr.ErrInvalidFormat, err)
	}
	return transaction.NewTransactionFromBytes(txBytes)
}

// GetRawTransactionVerbose returns a transaction by hash along with the
// metadata about its inclusion in the chain. This call is mostly useful for
// checking a sent transaction's fate, see also GetApplicationLog.
func (c *Client) GetRawTransactionVerbose(hash util.Uint256) (*result.TransactionOutputRaw, error) {
	var resp = &result.TransactionOutputRaw{}
	if err := c.performRequest("getrawtransaction", []any{hash.StringLE(), 1}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetContractStateByHash returns the state of the contract with the given
// script hash. Results are cached (keyed by hash), use
// InvalidateContractCache to drop the cache after contract updates.
func (c *Client) GetContractStateByHash(hash util.Uint160) (*result.ContractState, error) {
	if cs, ok := c.contracts.Get(hash); ok {
		return cs.(*result.ContractState), nil
	}
	var resp = &result.ContractState{}
	if err := c.performRequest("getcontractstate", []any{hash.StringLE()}, resp); err != nil {
		return nil, err
	}
	c.contracts.Add(hash, resp)
	return resp, nil
}

// GetNEP17Balances returns NEP-17 token balances of the given account.
func (c *Client) GetNEP17Balances(acc util.Uint160) (*result.NEP17Balances, error) {
	var resp = &result.NEP17Balances{}
	if err := c.performRequest("getnep17balances", []any{acc.StringLE()}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetApplicationLog returns the application execution log of a transaction
// or a block by its hash.
func (c *Client) GetApplicationLog(hash util.Uint256) (*result.ApplicationLog, error) {
	var resp = &result.ApplicationLog{}
	if err := c.performRequest("getapplicationlog", []any{hash.StringLE()}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// InvokeScript performs a test invocation of the given script with the given
// signers. No changes are made to the chain.
func (c *Client) InvokeScript(script []byte, signers []transaction.Signer) (*result.Invoke, error) {
	var p = []any{base64.StdEncoding.EncodeToString(script)}
	p, err := appendSigners(p, signers)
	if err != nil {
		return nil, err
	}
	return c.invokeSomething("invokescript", p)
}

// InvokeFunction performs a test invocation of the given method of the given
// contract with the given parameters and signers. No changes are made to the
// chain.
func (c *Client) InvokeFunction(contract util.Uint160, operation string, params []smartcontract.Parameter, signers []transaction.Signer) (*result.Invoke, error) {
	var p = []any{contract.StringLE(), operation, params}
	p, err := appendSigners(p, signers)
	if err != nil {
		return nil, err
	}
	return c.invokeSomething("invokefunction", p)
}

// InvokeContractVerify invokes the verify method of the given contract in the
// verification context with the given parameters and signers (the first
// signer is the verified one, its witness carries the invocation script).
func (c *Client) InvokeContractVerify(contract util.Uint160, params []smartcontract.Parameter, signers []transaction.Signer, witnesses ...transaction.Witness) (*result.Invoke, error) {
	var p = []any{contract.StringLE(), params}
	p, err := appendSignersWithWitnesses(p, signers, witnesses)
	if err != nil {
		return nil, err
	}
	return c.invokeSomething("invokecontractverify", p)
}

func appendSigners(p []any, signers []transaction.Signer) ([]any, error) {
	return appendSignersWithWitnesses(p, signers, nil)
}

func appendSignersWithWitnesses(p []any, signers []transaction.Signer, witnesses []transaction.Witness) ([]any, error) {
	if len(signers) == 0 {
		return p, nil
	}
	if len(witnesses) != 0 && len(witnesses) != len(signers) {
		return nil, fmt.Errorf("%w: number of witnesses (%d) doesn't match signers (%d)",
			clienterr.ErrInvalidArgument, len(witnesses), len(signers))
	}
	var sws = make([]neorpc.SignerWithWitness, len(signers))
	for i := range signers {
		sws[i].Signer = signers[i]
		if len(witnesses) != 0 {
			sws[i].Witness = witnesses[i]
		}
	}
	return append(p, sws), nil
}

func (c *Client) invokeSomething(method string, p []any) (*result.Invoke, error) {
	var resp = &result.Invoke{}
	if err := c.performRequest(method, p, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SendRawTransaction broadcasts the given (signed) transaction to the
// network and returns its hash. The node accepting the transaction into its
// mempool doesn't mean it'll be persisted, track the result with
// GetApplicationLog.
func (c *Client) SendRawTransaction(rawTX *transaction.Transaction) (util.Uint256, error) {
	var resp = struct {
		Hash util.Uint256 `json:"hash"`
	}{}
	txBytes, err := rawTX.Bytes()
	if err != nil {
		return util.Uint256{}, err
	}
	if err := c.performRequest("sendrawtransaction", []any{base64.StdEncoding.EncodeToString(txBytes)}, &resp); err != nil {
		return util.Uint256{}, err
	}
	return resp.Hash, nil
}

// GetFeePerByte queries the native PolicyContract for the current
// network-fee price of a transaction byte.
func (c *Client) GetFeePerByte() (int64, error) {
	res, err := c.InvokeFunction(PolicyContractHash, "getFeePerByte", []smartcontract.Parameter{}, nil)
	if err != nil {
		return 0, err
	}
	if err := res.ExecutionError(); err != nil {
		return 0, err
	}
	if len(res.Stack) == 0 {
		return 0, fmt.Errorf("%w: empty result stack", clienterr.ErrInternal)
	}
	bi, err := res.Stack[len(res.Stack)-1].TryInteger()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", clienterr.ErrInvalidFormat, err)
	}
	if !bi.IsInt64() {
		return 0, fmt.Errorf("%w: fee out of int64 range", clienterr.ErrInvalidFormat)
	}
	return bi.Int64(), nil
}
