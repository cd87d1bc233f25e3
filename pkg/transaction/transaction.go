package transaction

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/crypto/hash"
	"github.com/halyard-dev/neokit/pkg/encoding/address"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/util"
)

const (
	// MaxTransactionSize is the upper limit for a serialized transaction.
	MaxTransactionSize = 102400
	// MaxAttributes is the maximum number of attributes per transaction.
	MaxAttributes = 16
	// MaxScriptLength is the upper limit for the entry script.
	MaxScriptLength = math.MaxUint16
	// HeaderVersion is the only currently supported transaction version.
	HeaderVersion = 0
)

// Transaction is a Neo N3 transaction. Witnesses are not a part of the
// hashed portion, everything else is.
type Transaction struct {
	// Version of the binary format, must be HeaderVersion.
	Version uint8

	// Nonce is a random number to make the hash unique.
	Nonce uint32

	// SystemFee is the execution fee in GAS fractions.
	SystemFee int64

	// NetworkFee is the validation/size fee in GAS fractions.
	NetworkFee int64

	// ValidUntilBlock is the last block height this transaction is valid at.
	ValidUntilBlock uint32

	// Signers is a non-empty list of accounts with witness scopes, the
	// first one is the sender paying the fees.
	Signers []Signer

	// Attributes of the transaction.
	Attributes []Attribute

	// Script to run.
	Script []byte

	// Scripts are witnesses matching Signers one to one.
	Scripts []Witness

	// size is a transaction's serialized size, cached the same way hash is.
	size int

	// Hash of the transaction, computed on demand.
	hash   util.Uint256
	hashed bool
}

// New returns a new transaction built around the given script with the given
// system fee. Nonce, ValidUntilBlock, signers and fees are to be set by the
// caller (normally the actor).
func New(script []byte, gas int64) *Transaction {
	return &Transaction{
		Version:    HeaderVersion,
		Nonce:      0,
		Script:     script,
		SystemFee:  gas,
		Attributes: []Attribute{},
		Signers:    []Signer{},
		Scripts:    []Witness{},
	}
}

// NewTransactionFromBytes decodes a transaction from the given byte slice.
// The slice must contain exactly one transaction and nothing else.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	tx := &Transaction{}
	r := io.NewBinReaderFromBuf(b)
	tx.DecodeBinary(r)
	if r.Err == nil {
		r.ReadEOF()
	}
	if r.Err != nil {
		return nil, fmt.Errorf("%w: %w", clienterr.ErrInvalidFormat, r.Err)
	}
	tx.size = len(b)
	return tx, nil
}

// Hash returns the hash of the transaction which is a SHA256 of the
// serialized form without witnesses.
func (t *Transaction) Hash() util.Uint256 {
	if !t.hashed {
		if t.createHash() != nil {
			panic("failed to compute hash!")
		}
	}
	return t.hash
}

func (t *Transaction) createHash() error {
	buf := io.NewBufBinWriter()
	t.encodeHashableFields(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	t.hash = hash.Sha256(buf.Bytes())
	t.hashed = true
	return nil
}

// invalidateHash drops cached hash and size on any mutation.
func (t *Transaction) invalidateHash() {
	t.hashed = false
	t.hash = util.Uint256{}
	t.size = 0
}

// SetNonce sets the nonce invalidating the cached hash.
func (t *Transaction) SetNonce(nonce uint32) {
	t.Nonce = nonce
	t.invalidateHash()
}

// SetValidUntilBlock sets the expiration height invalidating the cached hash.
func (t *Transaction) SetValidUntilBlock(height uint32) {
	t.ValidUntilBlock = height
	t.invalidateHash()
}

// Sender returns the sender of the transaction which is the account paying
// the fees, the first signer.
func (t *Transaction) Sender() util.Uint160 {
	if len(t.Signers) == 0 {
		panic("transaction does not have signers")
	}
	return t.Signers[0].Account
}

// encodeHashableFields writes the signed portion of the transaction, that is
// everything except the witnesses.
func (t *Transaction) encodeHashableFields(bw *io.BinWriter) {
	bw.WriteB(t.Version)
	bw.WriteU32LE(t.Nonce)
	bw.WriteU64LE(uint64(t.SystemFee))
	bw.WriteU64LE(uint64(t.NetworkFee))
	bw.WriteU32LE(t.ValidUntilBlock)
	bw.WriteArray(t.Signers)
	bw.WriteArray(t.Attributes)
	bw.WriteVarBytes(t.Script)
}

// EncodeBinary implements the Serializable interface.
func (t *Transaction) EncodeBinary(bw *io.BinWriter) {
	t.encodeHashableFields(bw)
	bw.WriteArray(t.Scripts)
}

func (t *Transaction) decodeHashableFields(br *io.BinReader) {
	t.Version = br.ReadB()
	if br.Err == nil && t.Version != HeaderVersion {
		br.Err = fmt.Errorf("unsupported version %d", t.Version)
		return
	}
	t.Nonce = br.ReadU32LE()
	t.SystemFee = int64(br.ReadU64LE())
	if br.Err == nil && t.SystemFee < 0 {
		br.Err = fmt.Errorf("negative system fee")
		return
	}
	t.NetworkFee = int64(br.ReadU64LE())
	if br.Err == nil && t.NetworkFee < 0 {
		br.Err = fmt.Errorf("negative network fee")
		return
	}
	t.ValidUntilBlock = br.ReadU32LE()
	br.ReadArray(&t.Signers, MaxAttributes)
	if br.Err == nil && len(t.Signers) == 0 {
		br.Err = fmt.Errorf("transaction does not have signers")
		return
	}
	for i := range t.Signers {
		for j := 0; j < i; j++ {
			if t.Signers[i].Account.Equals(t.Signers[j].Account) {
				if br.Err == nil {
					br.Err = fmt.Errorf("transaction signers should be unique")
				}
				return
			}
		}
	}
	br.ReadArray(&t.Attributes, MaxAttributes)
	t.Script = br.ReadVarBytes(MaxScriptLength)
	if br.Err == nil && len(t.Script) == 0 {
		br.Err = fmt.Errorf("no script")
	}
}

// DecodeBinary implements the Serializable interface.
func (t *Transaction) DecodeBinary(br *io.BinReader) {
	t.decodeHashableFields(br)
	if br.Err != nil {
		return
	}
	br.ReadArray(&t.Scripts, len(t.Signers))
	if br.Err == nil && len(t.Scripts) != 0 && len(t.Scripts) != len(t.Signers) {
		br.Err = fmt.Errorf("%d signers, but %d witnesses", len(t.Signers), len(t.Scripts))
	}
}

// Bytes returns a serialized version of the transaction.
func (t *Transaction) Bytes() ([]byte, error) {
	buf := io.NewBufBinWriter()
	t.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return nil, buf.Err
	}
	b := buf.Bytes()
	if len(b) > MaxTransactionSize {
		return nil, fmt.Errorf("%w: %d bytes, %d max", clienterr.ErrTransactionTooLarge, len(b), MaxTransactionSize)
	}
	return b, nil
}

// Size returns the size of the transaction in bytes, this value is cached
// together with the hash.
func (t *Transaction) Size() int {
	if t.size == 0 {
		b, err := t.Bytes()
		if err != nil {
			panic(fmt.Errorf("can't serialize transaction: %w", err))
		}
		t.size = len(b)
	}
	return t.size
}

// FeePerByte returns the network fee divided by the size of the transaction.
func (t *Transaction) FeePerByte() int64 {
	return t.NetworkFee / int64(t.Size())
}

// isValid checks the consistency of the transaction against the protocol
// limits (MaxTransactionSize is checked on serialization).
func (t *Transaction) isValid() error {
	if t.Version != HeaderVersion {
		return fmt.Errorf("%w: unsupported version %d", clienterr.ErrInvalidArgument, t.Version)
	}
	if t.SystemFee < 0 {
		return fmt.Errorf("%w: negative system fee", clienterr.ErrInvalidArgument)
	}
	if t.NetworkFee < 0 {
		return fmt.Errorf("%w: negative network fee", clienterr.ErrInvalidArgument)
	}
	if len(t.Signers) == 0 {
		return fmt.Errorf("%w: no signers", clienterr.ErrInvalidArgument)
	}
	for i := range t.Signers {
		for j := 0; j < i; j++ {
			if t.Signers[i].Account.Equals(t.Signers[j].Account) {
				return fmt.Errorf("%w: duplicate signer %s", clienterr.ErrInvalidArgument, t.Signers[i].Account.StringLE())
			}
		}
		if err := t.Signers[i].Validate(); err != nil {
			return err
		}
	}
	if len(t.Attributes) > MaxAttributes {
		return fmt.Errorf("%w: %d attributes, %d max", clienterr.ErrInvalidArgument, len(t.Attributes), MaxAttributes)
	}
	if len(t.Script) == 0 {
		return fmt.Errorf("%w: no script", clienterr.ErrInvalidArgument)
	}
	return nil
}

// Validate checks the transaction for protocol-level consistency.
func (t *Transaction) Validate() error {
	if err := t.isValid(); err != nil {
		return err
	}
	_, err := t.Bytes()
	return err
}

// transactionJSON is the JSON representation of a transaction as served by
// RPC nodes.
type transactionJSON struct {
	TxID            util.Uint256 `json:"hash"`
	Size            int          `json:"size"`
	Version         uint8        `json:"version"`
	Nonce           uint32       `json:"nonce"`
	Sender          string       `json:"sender"`
	SystemFee       string       `json:"sysfee"`
	NetworkFee      string       `json:"netfee"`
	ValidUntilBlock uint32       `json:"validuntilblock"`
	Attributes      []Attribute  `json:"attributes"`
	Signers         []Signer     `json:"signers"`
	Script          string       `json:"script"`
	Scripts         []Witness    `json:"witnesses"`
}

// MarshalJSON implements the json.Marshaler interface.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	tx := transactionJSON{
		TxID:            t.Hash(),
		Size:            t.Size(),
		Version:         t.Version,
		Nonce:           t.Nonce,
		Sender:          address.Uint160ToString(t.Sender()),
		ValidUntilBlock: t.ValidUntilBlock,
		Attributes:      t.Attributes,
		Signers:         t.Signers,
		Script:          base64.StdEncoding.EncodeToString(t.Script),
		Scripts:         t.Scripts,
		SystemFee:       strconv.FormatInt(t.SystemFee, 10),
		NetworkFee:      strconv.FormatInt(t.NetworkFee, 10),
	}
	return json.Marshal(tx)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	tx := new(transactionJSON)
	if err := json.Unmarshal(data, tx); err != nil {
		return err
	}
	t.Version = tx.Version
	t.Nonce = tx.Nonce
	t.ValidUntilBlock = tx.ValidUntilBlock
	t.Attributes = tx.Attributes
	t.Signers = tx.Signers
	t.Scripts = tx.Scripts
	sysfee, err := strconv.ParseInt(tx.SystemFee, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: sysfee: %w", clienterr.ErrInvalidFormat, err)
	}
	t.SystemFee = sysfee
	netfee, err := strconv.ParseInt(tx.NetworkFee, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: netfee: %w", clienterr.ErrInvalidFormat, err)
	}
	t.NetworkFee = netfee
	t.Script, err = base64.StdEncoding.DecodeString(tx.Script)
	if err != nil {
		return fmt.Errorf("%w: script: %w", clienterr.ErrInvalidFormat, err)
	}
	if err := t.isValid(); err != nil {
		return err
	}
	if t.Hash() != tx.TxID {
		return fmt.Errorf("%w: txid doesn't match transaction hash", clienterr.ErrInvalidFormat)
	}
	return nil
}

// Copy creates a deep copy of the Transaction, including all slice fields.
// Cached values like size and hash are reset to be recalculated when needed.
func (t *Transaction) Copy() *Transaction {
	if t == nil {
		return nil
	}
	cp := *t
	if t.Attributes != nil {
		cp.Attributes = make([]Attribute, len(t.Attributes))
		for i, attr := range t.Attributes {
			cp.Attributes[i] = *attr.Copy()
		}
	}
	if t.Signers != nil {
		cp.Signers = make([]Signer, len(t.Signers))
		for i, signer := range t.Signers {
			cp.Signers[i] = *signer.Copy()
		}
	}
	if t.Scripts != nil {
		cp.Scripts = make([]Witness, len(t.Scripts))
		for i, script := range t.Scripts {
			cp.Scripts[i] = script.Copy()
		}
	}
	cp.Script = bytesCopy(t.Script)
	cp.invalidateHash()
	return &cp
}
