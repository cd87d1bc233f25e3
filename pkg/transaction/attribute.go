package transaction

import (
	"encoding/json"
	"fmt"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/util"
)

// AttrType represents the type of a transaction attribute.
type AttrType uint8

const (
	// HighPriority whitelists the transaction to be accepted into the
	// block irrespective of its fees (committee-signed only).
	HighPriority AttrType = 0x01
	// NotValidBeforeT makes the transaction invalid before the specified
	// block height.
	NotValidBeforeT AttrType = 0x20
	// ConflictsT makes the transaction conflict with another one, only one
	// of them can be accepted into the chain.
	ConflictsT AttrType = 0x21
)

// AttrValue is the interface for attribute payloads.
type AttrValue interface {
	io.Serializable
	Copy() AttrValue
}

// Attribute represents a Transaction attribute.
type Attribute struct {
	Type  AttrType
	Value AttrValue
}

// NotValidBefore payload.
type NotValidBefore struct {
	Height uint32 `json:"height"`
}

// Conflicts payload.
type Conflicts struct {
	Hash util.Uint256 `json:"hash"`
}

// String implements the fmt.Stringer interface.
func (t AttrType) String() string {
	switch t {
	case HighPriority:
		return "HighPriority"
	case NotValidBeforeT:
		return "NotValidBefore"
	case ConflictsT:
		return "Conflicts"
	default:
		return fmt.Sprintf("AttrType(%#x)", uint8(t))
	}
}

// EncodeBinary implements the Serializable interface.
func (f *NotValidBefore) EncodeBinary(bw *io.BinWriter) {
	bw.WriteU32LE(f.Height)
}

// DecodeBinary implements the Serializable interface.
func (f *NotValidBefore) DecodeBinary(br *io.BinReader) {
	f.Height = br.ReadU32LE()
}

// Copy implements the AttrValue interface.
func (f *NotValidBefore) Copy() AttrValue {
	return &NotValidBefore{Height: f.Height}
}

// EncodeBinary implements the Serializable interface.
func (f *Conflicts) EncodeBinary(bw *io.BinWriter) {
	bw.WriteBytes(f.Hash[:])
}

// DecodeBinary implements the Serializable interface.
func (f *Conflicts) DecodeBinary(br *io.BinReader) {
	br.ReadBytes(f.Hash[:])
}

// Copy implements the AttrValue interface.
func (f *Conflicts) Copy() AttrValue {
	return &Conflicts{Hash: f.Hash}
}

// EncodeBinary implements the Serializable interface.
func (attr *Attribute) EncodeBinary(bw *io.BinWriter) {
	bw.WriteB(byte(attr.Type))
	if attr.Value != nil {
		attr.Value.EncodeBinary(bw)
	}
}

// DecodeBinary implements the Serializable interface.
func (attr *Attribute) DecodeBinary(br *io.BinReader) {
	attr.Type = AttrType(br.ReadB())
	switch attr.Type {
	case HighPriority:
		attr.Value = nil
	case NotValidBeforeT:
		attr.Value = new(NotValidBefore)
	case ConflictsT:
		attr.Value = new(Conflicts)
	default:
		if br.Err == nil {
			br.Err = fmt.Errorf("%w: unknown attribute type %#x", clienterr.ErrInvalidFormat, uint8(attr.Type))
		}
		return
	}
	if attr.Value != nil {
		attr.Value.DecodeBinary(br)
	}
}

// attrJSON carries the attribute type name next to payload fields.
type attrJSON struct {
	Type   string          `json:"type"`
	Height *uint32         `json:"height,omitempty"`
	Hash   json.RawMessage `json:"hash,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface.
func (attr *Attribute) MarshalJSON() ([]byte, error) {
	aux := attrJSON{Type: attr.Type.String()}
	switch t := attr.Value.(type) {
	case nil:
	case *NotValidBefore:
		aux.Height = &t.Height
	case *Conflicts:
		h, err := t.Hash.MarshalJSON()
		if err != nil {
			return nil, err
		}
		aux.Hash = h
	default:
		return nil, fmt.Errorf("%w: unsupported attribute value %T", clienterr.ErrInvalidFormat, attr.Value)
	}
	return json.Marshal(&aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (attr *Attribute) UnmarshalJSON(data []byte) error {
	aux := new(attrJSON)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	switch aux.Type {
	case "HighPriority":
		attr.Type = HighPriority
		attr.Value = nil
	case "NotValidBefore":
		if aux.Height == nil {
			return fmt.Errorf("%w: NotValidBefore attribute with no height", clienterr.ErrInvalidFormat)
		}
		attr.Type = NotValidBeforeT
		attr.Value = &NotValidBefore{Height: *aux.Height}
	case "Conflicts":
		var h util.Uint256
		if err := h.UnmarshalJSON(aux.Hash); err != nil {
			return fmt.Errorf("%w: Conflicts attribute: %w", clienterr.ErrInvalidFormat, err)
		}
		attr.Type = ConflictsT
		attr.Value = &Conflicts{Hash: h}
	default:
		return fmt.Errorf("%w: unknown attribute type %q", clienterr.ErrInvalidFormat, aux.Type)
	}
	return nil
}

// Copy creates a deep copy of the Attribute.
func (attr *Attribute) Copy() *Attribute {
	if attr == nil {
		return nil
	}
	cp := &Attribute{Type: attr.Type}
	if attr.Value != nil {
		cp.Value = attr.Value.Copy()
	}
	return cp
}
