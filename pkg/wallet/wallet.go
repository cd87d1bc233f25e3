/*
Package wallet implements NEP-6 compatible wallets and accounts.

An Account pairs an address with its (NEP-2 encrypted) key and verification
contract. A Wallet is an ordered set of accounts persisted as a NEP-6 JSON
file; bulk encryption and decryption of wallet keys run scrypt on a bounded
worker pool since a single derivation takes tens of megabytes of memory.
*/
package wallet

import (
	"context"
	"fmt"
	"os"
	"sync"

	json "github.com/nspcc-dev/go-ordered-json"
	"go.uber.org/zap"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/crypto/keys"
	"github.com/halyard-dev/neokit/pkg/util"
)

// Version of the wallet format supported, the wallets produced have it and
// the wallets read are not checked against it (the format is compatible
// across versions).
const Version = "1.0"

// DefaultBulkWorkers is the number of concurrent scrypt derivations
// EncryptAll/DecryptAll run unless told otherwise. Each derivation takes
// about 16 MiB with the standard NEP-2 parameters.
const DefaultBulkWorkers = 4

// Wallet represents a NEP-6 wallet.
type Wallet struct {
	// Version of the wallet, used for later upgrades.
	Version string `json:"version"`

	// Accounts is a list of accounts in the wallet.
	Accounts []*Account `json:"accounts"`

	// Scrypt are the parameters for the NEP-2 keys in this wallet.
	Scrypt keys.ScryptParams `json:"scrypt"`

	// Extra is an implementation-specific metadata section. It is
	// marshaled with an order-preserving codec, so foreign wallets with
	// unknown extra content round-trip through Open/Save unchanged.
	Extra Extra `json:"extra"`

	// path to the wallet on the filesystem, set by Open and NewWallet.
	path string
}

// Extra stores imported token contracts and any unknown metadata found in
// the wallet file.
type Extra struct {
	// Tokens is a list of imported token contracts.
	Tokens []*Token
}

// BulkOptions controls EncryptAll/DecryptAll execution.
type BulkOptions struct {
	// Workers limits concurrent scrypt runs, DefaultBulkWorkers when
	// non-positive.
	Workers int
	// Logger enables per-account progress diagnostics.
	Logger *zap.Logger
}

// NewWallet creates a new NEO wallet at the given location with the standard
// NEP-2 scrypt parameters.
func NewWallet(location string) (*Wallet, error) {
	wall := &Wallet{
		Version:  Version,
		Accounts: []*Account{},
		Scrypt:   keys.NEP2ScryptParams(),
		path:     location,
	}
	return wall, wall.Save()
}

// NewInMemoryWallet creates a new NEO wallet without a file backing it. Save
// fails on such a wallet, use JSON to get the contents.
func NewInMemoryWallet() *Wallet {
	return &Wallet{
		Version:  Version,
		Accounts: []*Account{},
		Scrypt:   keys.NEP2ScryptParams(),
	}
}

// NewWalletFromFile creates a Wallet from the given wallet file path.
func NewWalletFromFile(path string) (*Wallet, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	wall, err := NewWalletFromBytes(file)
	if err != nil {
		return nil, err
	}
	wall.path = path
	return wall, nil
}

// NewWalletFromBytes loads a wallet from the given NEP-6 JSON. The reader is
// tolerant: unknown fields are ignored and missing scrypt parameters fall
// back to the NEP-2 defaults.
func NewWalletFromBytes(data []byte) (*Wallet, error) {
	wall := &Wallet{
		Scrypt: keys.NEP2ScryptParams(),
	}
	if err := json.Unmarshal(data, wall); err != nil {
		return nil, fmt.Errorf("%w: %w", clienterr.ErrInvalidFormat, err)
	}
	if wall.Accounts == nil {
		wall.Accounts = []*Account{}
	}
	if err := wall.validate(); err != nil {
		return nil, err
	}
	return wall, nil
}

// validate checks wallet-level invariants: unique account script hashes and
// at most one default account.
func (w *Wallet) validate() error {
	var (
		seen        = make(map[util.Uint160]bool, len(w.Accounts))
		haveDefault bool
	)
	for _, acc := range w.Accounts {
		h := acc.ScriptHash()
		if seen[h] {
			return fmt.Errorf("%w: duplicate account %s", clienterr.ErrConflict, acc.Address)
		}
		seen[h] = true
		if acc.Default {
			if haveDefault {
				return fmt.Errorf("%w: multiple default accounts", clienterr.ErrConflict)
			}
			haveDefault = true
		}
	}
	return nil
}

// CreateAccount generates a new account for the end user, encrypts it with
// the given passphrase and adds it to the wallet.
func (w *Wallet) CreateAccount(name, passphrase string) error {
	acc, err := NewAccount()
	if err != nil {
		return err
	}
	acc.Label = name
	if err := acc.Encrypt(passphrase, w.Scrypt); err != nil {
		return err
	}
	return w.AddAccount(acc)
}

// AddAccount adds an existing Account to the wallet. Accounts with a script
// hash already present are rejected with clienterr.ErrConflict.
func (w *Wallet) AddAccount(acc *Account) error {
	h := acc.ScriptHash()
	for _, a := range w.Accounts {
		if a.ScriptHash().Equals(h) {
			return fmt.Errorf("%w: account %s is already in the wallet", clienterr.ErrConflict, acc.Address)
		}
	}
	if acc.Default {
		for _, a := range w.Accounts {
			if a.Default {
				return fmt.Errorf("%w: wallet already has a default account", clienterr.ErrConflict)
			}
		}
	}
	w.Accounts = append(w.Accounts, acc)
	return nil
}

// RemoveAccount removes an Account with the specified address from the
// wallet.
func (w *Wallet) RemoveAccount(addr string) error {
	for i, acc := range w.Accounts {
		if acc.Address == addr {
			copy(w.Accounts[i:], w.Accounts[i+1:])
			w.Accounts = w.Accounts[:len(w.Accounts)-1]
			return nil
		}
	}
	return fmt.Errorf("%w: account %s wasn't found in the wallet", clienterr.ErrNotFound, addr)
}

// GetAccount returns an account corresponding to the provided script hash or
// nil if there is no one.
func (w *Wallet) GetAccount(h util.Uint160) *Account {
	for _, acc := range w.Accounts {
		if acc.ScriptHash().Equals(h) {
			return acc
		}
	}
	return nil
}

// SetDefault marks the account with the given script hash as the wallet's
// default change account, clearing the flag from any other.
func (w *Wallet) SetDefault(h util.Uint160) error {
	var found bool
	for _, acc := range w.Accounts {
		if acc.ScriptHash().Equals(h) {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: no account with the given hash", clienterr.ErrNotFound)
	}
	for _, acc := range w.Accounts {
		acc.Default = acc.ScriptHash().Equals(h)
	}
	return nil
}

// GetChangeAddress returns the default address to send transaction's change
// to: the default account's hash if one is set, the first account otherwise.
func (w *Wallet) GetChangeAddress() util.Uint160 {
	var (
		first     util.Uint160
		haveFirst bool
	)
	for _, acc := range w.Accounts {
		if acc.Default {
			return acc.ScriptHash()
		}
		if !haveFirst {
			first = acc.ScriptHash()
			haveFirst = true
		}
	}
	return first
}

// Path returns the location of the wallet on the filesystem.
func (w *Wallet) Path() string {
	return w.path
}

// Save saves the wallet data to the file it was opened from or created at.
func (w *Wallet) Save() error {
	if w.path == "" {
		return fmt.Errorf("%w: in-memory wallet has no path", clienterr.ErrInvalidArgument)
	}
	data, err := w.JSON()
	if err != nil {
		return fmt.Errorf("wallet marshalling error: %w", err)
	}
	return os.WriteFile(w.path, data, 0644)
}

// JSON outputs a pretty JSON representation of the wallet.
func (w *Wallet) JSON() ([]byte, error) {
	return json.MarshalIndent(w, " ", "	")
}

// Close is a no-op kept for API compatibility with storage-backed wallets,
// account keys are closed individually.
func (w *Wallet) Close() {
}

// bulkOp runs op for every account with an encrypted key on a bounded pool
// of workers. The ops must not modify accounts, committing the results is
// the caller's job, which makes the whole run all-or-nothing under errors
// and cancellation.
func (w *Wallet) bulkOp(ctx context.Context, opts BulkOptions, opName string, op func(i int) error) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultBulkWorkers
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var (
		wg       sync.WaitGroup
		indexes  = make(chan int)
		errOnce  sync.Once
		firstErr error
		cancel   = make(chan struct{})
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			close(cancel)
		})
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				if err := op(idx); err != nil {
					fail(fmt.Errorf("account %s: %w", w.Accounts[idx].Address, err))
					return
				}
				log.Debug("wallet bulk operation progress",
					zap.String("op", opName),
					zap.String("account", w.Accounts[idx].Address))
			}
		}()
	}
loop:
	for i := range w.Accounts {
		select {
		case indexes <- i:
		case <-cancel:
			break loop
		case <-ctx.Done():
			fail(ctx.Err())
			break loop
		}
	}
	close(indexes)
	wg.Wait()
	return firstErr
}

// EncryptAll encrypts the keys of all accounts that have one with the given
// password. Either all accounts get their EncryptedWIF updated or, on any
// failure or context cancellation, none of them change.
func (w *Wallet) EncryptAll(ctx context.Context, passphrase string, opts BulkOptions) error {
	encrypted := make([]string, len(w.Accounts))
	err := w.bulkOp(ctx, opts, "encrypt", func(i int) error {
		acc := w.Accounts[i]
		if acc.privateKey == nil {
			return nil
		}
		wif, err := keys.NEP2Encrypt(acc.privateKey, passphrase, w.Scrypt)
		if err != nil {
			return err
		}
		encrypted[i] = wif
		return nil
	})
	if err != nil {
		return err
	}
	for i := range w.Accounts {
		if encrypted[i] != "" {
			w.Accounts[i].EncryptedWIF = encrypted[i]
		}
	}
	return nil
}

// DecryptAll decrypts the keys of all accounts that have an encrypted one
// with the given password. Either all accounts get their keys available or,
// on any failure (a wrong password included) or context cancellation, none
// of them change.
func (w *Wallet) DecryptAll(ctx context.Context, passphrase string, opts BulkOptions) error {
	decrypted := make([]*keys.PrivateKey, len(w.Accounts))
	err := w.bulkOp(ctx, opts, "decrypt", func(i int) error {
		acc := w.Accounts[i]
		if acc.EncryptedWIF == "" {
			return nil
		}
		key, err := keys.NEP2Decrypt(acc.EncryptedWIF, passphrase, w.Scrypt)
		if err != nil {
			return err
		}
		decrypted[i] = key
		return nil
	})
	if err != nil {
		return err
	}
	for i := range w.Accounts {
		if decrypted[i] != nil {
			w.Accounts[i].privateKey = decrypted[i]
			w.Accounts[i].scriptHash = decrypted[i].GetScriptHash()
		}
	}
	return nil
}
