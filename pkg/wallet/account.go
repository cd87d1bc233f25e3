package wallet

import (
	"errors"
	"fmt"
	"sort"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/config/netmode"
	"github.com/halyard-dev/neokit/pkg/crypto/hash"
	"github.com/halyard-dev/neokit/pkg/crypto/keys"
	"github.com/halyard-dev/neokit/pkg/encoding/address"
	"github.com/halyard-dev/neokit/pkg/smartcontract"
	"github.com/halyard-dev/neokit/pkg/transaction"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/halyard-dev/neokit/pkg/vm"
	"github.com/halyard-dev/neokit/pkg/vm/opcode"
)

// Account represents a NEO account. It holds the private and public key
// along with some metadata.
type Account struct {
	// NEO private key.
	privateKey *keys.PrivateKey

	// Script hash corresponding to the Address.
	scriptHash util.Uint160

	// NEO public address.
	Address string `json:"address"`

	// Encrypted WIF of the account also known as the key.
	EncryptedWIF string `json:"key"`

	// Label is a label the user had made for this account.
	Label string `json:"label"`

	// Contract is a Contract object which describes the details of the
	// contract. This field can be null (for watch-only address).
	Contract *Contract `json:"contract"`

	// Indicates whether the account is locked by the user. The client
	// shouldn't spend the funds in a locked account.
	Locked bool `json:"lock"`

	// Indicates whether the account is the default change account.
	Default bool `json:"isDefault"`
}

// Contract represents a subset of the smart contract to embed in the
// Account, so it's NEP-6 compliant.
type Contract struct {
	// Script of the contract deployed on the blockchain.
	Script []byte `json:"script"`

	// A list of parameters used deploying this contract.
	Parameters []ContractParam `json:"parameters"`

	// Indicates whether the contract has been deployed to the blockchain.
	Deployed bool `json:"deployed"`
}

// ContractParam is a parameter of the verification contract.
type ContractParam struct {
	Name string                  `json:"name"`
	Type smartcontract.ParamType `json:"type"`
}

// ScriptHash returns the hash of the contract's script.
func (c Contract) ScriptHash() util.Uint160 {
	return hash.Hash160(c.Script)
}

// NewAccount creates a new Account with a random generated PrivateKey.
func NewAccount() (*Account, error) {
	priv, err := keys.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(priv), nil
}

// NewAccountFromWIF creates a new Account from the given WIF.
func NewAccountFromWIF(wif string) (*Account, error) {
	privKey, err := keys.NewPrivateKeyFromWIF(wif)
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(privKey), nil
}

// NewAccountFromEncryptedWIF creates a new Account from the given NEP-2
// encrypted WIF with the given password and scrypt parameters.
func NewAccountFromEncryptedWIF(wif string, pass string, scrypt keys.ScryptParams) (*Account, error) {
	priv, err := keys.NEP2Decrypt(wif, pass, scrypt)
	if err != nil {
		return nil, err
	}
	a := NewAccountFromPrivateKey(priv)
	a.EncryptedWIF = wif
	return a, nil
}

// NewAccountFromPrivateKey creates a wallet from the given PrivateKey.
func NewAccountFromPrivateKey(p *keys.PrivateKey) *Account {
	pubKey := p.PublicKey()

	a := &Account{
		privateKey: p,
		scriptHash: pubKey.GetScriptHash(),
		Address:    pubKey.Address(),
		Contract: &Contract{
			Script:     pubKey.GetVerificationScript(),
			Parameters: getContractParams(1),
		},
	}
	return a
}

// NewWatchOnlyAccount creates a new watch-only Account for the given script
// hash, it has no key and no contract and can't sign anything, but it can be
// used to track balances or as a non-signing transaction party.
func NewWatchOnlyAccount(h util.Uint160) *Account {
	return &Account{
		scriptHash: h,
		Address:    address.Uint160ToString(h),
	}
}

// ScriptHash returns the script hash (account) of the Account.
func (a *Account) ScriptHash() util.Uint160 {
	if a.scriptHash.Equals(util.Uint160{}) && a.Address != "" {
		if h, err := address.StringToUint160(a.Address); err == nil {
			a.scriptHash = h
		}
	}
	return a.scriptHash
}

// PrivateKey returns the private key of the account, nil if it hasn't been
// decrypted yet (or the account is watch-only).
func (a *Account) PrivateKey() *keys.PrivateKey {
	return a.privateKey
}

// PublicKey returns the public key of the account if it has one.
func (a *Account) PublicKey() *keys.PublicKey {
	if a.privateKey == nil {
		return nil
	}
	return a.privateKey.PublicKey()
}

// CanSign returns true when the account has an unlocked key and a contract
// script, so it can be used to sign transactions.
func (a *Account) CanSign() bool {
	return !a.Locked && a.privateKey != nil && a.Contract != nil
}

// GetVerificationScript returns the account's verification script if the
// account has a contract attached.
func (a *Account) GetVerificationScript() []byte {
	if a.Contract == nil {
		return nil
	}
	return a.Contract.Script
}

// Decrypt decrypts the EncryptedWIF with the given passphrase, making the
// private key available. The error is clienterr.ErrInvalidPassphrase for a
// wrong password and clienterr.ErrInvalidFormat for a malformed key blob.
func (a *Account) Decrypt(passphrase string, scrypt keys.ScryptParams) error {
	if a.EncryptedWIF == "" {
		return fmt.Errorf("%w: no encrypted wif in the account", clienterr.ErrInvalidFormat)
	}
	var err error
	a.privateKey, err = keys.NEP2Decrypt(a.EncryptedWIF, passphrase, scrypt)
	if err != nil {
		return err
	}
	a.scriptHash = a.privateKey.GetScriptHash()
	return nil
}

// Encrypt encrypts the wallet's PrivateKey with the given passphrase under
// the NEP-2 standard.
func (a *Account) Encrypt(passphrase string, scrypt keys.ScryptParams) error {
	if a.privateKey == nil {
		return fmt.Errorf("%w: no private key in the account", clienterr.ErrInvalidFormat)
	}
	wif, err := keys.NEP2Encrypt(a.privateKey, passphrase, scrypt)
	if err != nil {
		return err
	}
	a.EncryptedWIF = wif
	return nil
}

// Close destroys the decrypted private key of the account, reversing the
// effect of Decrypt.
func (a *Account) Close() {
	if a.privateKey == nil {
		return
	}
	a.privateKey.Destroy()
	a.privateKey = nil
}

// ConvertMultisig sets the account's contract to an "m out of pubs"
// multisignature contract. The account's key must be present among pubs.
func (a *Account) ConvertMultisig(m int, pubs keys.PublicKeys) error {
	if a.privateKey == nil {
		return fmt.Errorf("%w: no private key in the account", clienterr.ErrInvalidFormat)
	}
	accKey := a.privateKey.PublicKey()
	if !pubs.Contains(accKey) {
		return fmt.Errorf("%w: own public key was not found among multisig keys", clienterr.ErrInvalidArgument)
	}
	script, err := keys.CreateMultiSigRedeemScript(m, pubs)
	if err != nil {
		return err
	}
	a.scriptHash = hash.Hash160(script)
	a.Address = address.Uint160ToString(a.scriptHash)
	a.Contract = &Contract{
		Script:     script,
		Parameters: getContractParams(m),
	}
	return nil
}

// SignTx signs the given transaction for the given network, adding or
// completing the witness that corresponds to the account among the
// transaction's signers. For a multisignature account the produced signature
// is appended to the invocation script, witness completion (signature
// ordering) is left for CreateMultisigInvocation.
func (a *Account) SignTx(net netmode.Magic, t *transaction.Transaction) error {
	if a.Locked {
		return fmt.Errorf("%w: account is locked", clienterr.ErrInvalidArgument)
	}
	if a.Contract == nil {
		return fmt.Errorf("%w: account has no contract", clienterr.ErrInvalidArgument)
	}
	var (
		haveAcc bool
		pos     int
	)
	accHash := a.ScriptHash()
	for i := range t.Signers {
		if t.Signers[i].Account.Equals(accHash) {
			haveAcc = true
			pos = i
			break
		}
	}
	if !haveAcc {
		return fmt.Errorf("%w: transaction is not signed by this account", clienterr.ErrInvalidArgument)
	}
	if len(t.Scripts) < pos {
		return fmt.Errorf("%w: transaction is not yet signed by the previous signer", clienterr.ErrInvalidArgument)
	}
	if len(t.Scripts) == pos {
		t.Scripts = append(t.Scripts, transaction.Witness{
			VerificationScript: a.Contract.Script,
		})
	}
	if len(a.Contract.Parameters) == 0 {
		// Contract-based or deployed verification, nothing to add here.
		return nil
	}
	if a.privateKey == nil {
		return fmt.Errorf("%w: account key is not available (need to decrypt?)", clienterr.ErrInvalidFormat)
	}

	sign := a.privateKey.SignHashable(uint32(net), t)
	invoc := append([]byte{byte(opcode.PUSHDATA1), keys.SignatureLen}, sign...)
	if vm.IsMultiSigContract(a.Contract.Script) {
		t.Scripts[pos].InvocationScript = append(t.Scripts[pos].InvocationScript, invoc...)
	} else {
		t.Scripts[pos].InvocationScript = invoc
	}
	return nil
}

// SignHashable signs the given item for the given network and returns the
// 64-byte signature.
func (a *Account) SignHashable(net netmode.Magic, item hash.Hashable) ([]byte, error) {
	if a.privateKey == nil {
		return nil, fmt.Errorf("%w: account key is not available (need to decrypt?)", clienterr.ErrInvalidFormat)
	}
	return a.privateKey.SignHashable(uint32(net), item), nil
}

// CreateMultisigInvocation builds an invocation script for an "m out of
// pubs" multisignature contract from the given signatures. Signatures are
// emitted in the order of the corresponding (sorted) public keys as the VM
// CheckMultisig requires; at least m valid signatures must be present.
func CreateMultisigInvocation(m int, pubs keys.PublicKeys, sigs map[string][]byte) ([]byte, error) {
	if len(sigs) < m {
		return nil, fmt.Errorf("%w: got %d signatures, need at least %d", clienterr.ErrInvalidArgument, len(sigs), m)
	}
	sorted := pubs.Copy()
	sort.Sort(sorted)

	var invoc []byte
	var n int
	for _, pub := range sorted {
		sig, ok := sigs[pub.StringCompressed()]
		if !ok {
			continue
		}
		if len(sig) != keys.SignatureLen {
			return nil, fmt.Errorf("%w: invalid signature length %d", clienterr.ErrInvalidArgument, len(sig))
		}
		invoc = append(invoc, byte(opcode.PUSHDATA1), keys.SignatureLen)
		invoc = append(invoc, sig...)
		n++
		if n == m {
			break
		}
	}
	if n < m {
		return nil, errors.New("not enough signatures from the contract's keys")
	}
	return invoc, nil
}

func getContractParams(n int) []ContractParam {
	params := make([]ContractParam, n)
	for i := range params {
		params[i].Name = fmt.Sprintf("parameter%d", i)
		params[i].Type = smartcontract.SignatureType
	}
	return params
}
