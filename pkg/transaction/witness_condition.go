package transaction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/crypto/keys"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/util"
)

// WitnessConditionType encodes a type of witness condition.
type WitnessConditionType byte

const (
	// WitnessBoolean is a generic boolean condition.
	WitnessBoolean WitnessConditionType = 0x00
	// WitnessNot reverses another condition.
	WitnessNot WitnessConditionType = 0x01
	// WitnessAnd means that all conditions must be met.
	WitnessAnd WitnessConditionType = 0x02
	// WitnessOr means that any of the conditions must be met.
	WitnessOr WitnessConditionType = 0x03
	// WitnessScriptHash matches the executing contract hash.
	WitnessScriptHash WitnessConditionType = 0x18
	// WitnessGroup matches the executing contract group key.
	WitnessGroup WitnessConditionType = 0x19
	// WitnessCalledByEntry matches when the current script is an entry
	// script or is called by an entry script.
	WitnessCalledByEntry WitnessConditionType = 0x20
	// WitnessCalledByContract matches the calling contract hash.
	WitnessCalledByContract WitnessConditionType = 0x28
	// WitnessCalledByGroup matches the calling contract group key.
	WitnessCalledByGroup WitnessConditionType = 0x29
)

const (
	// MaxConditionNesting limits the maximum allowed level of condition
	// nesting.
	MaxConditionNesting = 2
	// maxSubitems is the maximum number of subconditions in And/Or.
	maxConditionSubitems = 16
)

// WitnessCondition is a condition of a witness rule.
type WitnessCondition interface {
	// Type returns the condition type.
	Type() WitnessConditionType
	// EncodeBinary writes the condition to the given writer.
	EncodeBinary(*io.BinWriter)
	// DecodeBinarySpecific reads the type-specific part of the condition
	// (the type byte is already consumed).
	DecodeBinarySpecific(*io.BinReader, int)
	// MarshalJSON implements the json.Marshaler interface.
	MarshalJSON() ([]byte, error)
}

type (
	// ConditionBoolean is a boolean condition type.
	ConditionBoolean bool
	// ConditionNot reverses another condition.
	ConditionNot struct {
		Condition WitnessCondition
	}
	// ConditionAnd is a set of conditions required to be true.
	ConditionAnd []WitnessCondition
	// ConditionOr is a set of conditions one of which is required to be true.
	ConditionOr []WitnessCondition
	// ConditionScriptHash is a condition matching executing script hash.
	ConditionScriptHash util.Uint160
	// ConditionGroup is a condition matching executing script group.
	ConditionGroup keys.PublicKey
	// ConditionCalledByEntry is a condition matching entry script or one
	// called by it.
	ConditionCalledByEntry struct{}
	// ConditionCalledByContract is a condition matching calling script hash.
	ConditionCalledByContract util.Uint160
	// ConditionCalledByGroup is a condition matching calling script group.
	ConditionCalledByGroup keys.PublicKey
)

// conditionAux is used for JSON marshaling/unmarshaling.
type conditionAux struct {
	Expression  json.RawMessage   `json:"expression,omitempty"`
	Expressions []json.RawMessage `json:"expressions,omitempty"`
	Group       string            `json:"group,omitempty"`
	Hash        string            `json:"hash,omitempty"`
	Type        string            `json:"type"`
}

var conditionTypeName = map[WitnessConditionType]string{
	WitnessBoolean:          "Boolean",
	WitnessNot:              "Not",
	WitnessAnd:              "And",
	WitnessOr:               "Or",
	WitnessScriptHash:       "ScriptHash",
	WitnessGroup:            "Group",
	WitnessCalledByEntry:    "CalledByEntry",
	WitnessCalledByContract: "CalledByContract",
	WitnessCalledByGroup:    "CalledByGroup",
}

// String implements the fmt.Stringer interface.
func (t WitnessConditionType) String() string {
	if s, ok := conditionTypeName[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Type implements the WitnessCondition interface.
func (c *ConditionBoolean) Type() WitnessConditionType { return WitnessBoolean }

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionBoolean) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessBoolean))
	w.WriteBool(bool(*c))
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionBoolean) DecodeBinarySpecific(r *io.BinReader, _ int) {
	*c = ConditionBoolean(r.ReadBool())
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionBoolean) MarshalJSON() ([]byte, error) {
	boolJSON, _ := json.Marshal(bool(*c))
	return json.Marshal(conditionAux{
		Type:       WitnessBoolean.String(),
		Expression: boolJSON,
	})
}

// Type implements the WitnessCondition interface.
func (c *ConditionNot) Type() WitnessConditionType { return WitnessNot }

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionNot) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessNot))
	c.Condition.EncodeBinary(w)
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionNot) DecodeBinarySpecific(r *io.BinReader, maxDepth int) {
	condition := decodeBinaryCondition(r, maxDepth-1)
	if r.Err == nil {
		c.Condition = condition
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionNot) MarshalJSON() ([]byte, error) {
	condJSON, err := c.Condition.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(conditionAux{
		Type:       WitnessNot.String(),
		Expression: condJSON,
	})
}

// Type implements the WitnessCondition interface.
func (c *ConditionAnd) Type() WitnessConditionType { return WitnessAnd }

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionAnd) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessAnd))
	w.WriteVarUint(uint64(len(*c)))
	for _, cond := range *c {
		cond.EncodeBinary(w)
	}
}

func decodeConditionList(r *io.BinReader, maxDepth int) []WitnessCondition {
	l := r.ReadVarUint()
	if l > maxConditionSubitems {
		r.Err = fmt.Errorf("%w: too many conditions: %d", clienterr.ErrInvalidScope, l)
		return nil
	}
	if l == 0 {
		r.Err = fmt.Errorf("%w: empty condition list", clienterr.ErrInvalidScope)
		return nil
	}
	res := make([]WitnessCondition, l)
	for i := 0; i < int(l); i++ {
		res[i] = decodeBinaryCondition(r, maxDepth-1)
		if r.Err != nil {
			return nil
		}
	}
	return res
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionAnd) DecodeBinarySpecific(r *io.BinReader, maxDepth int) {
	res := decodeConditionList(r, maxDepth)
	if r.Err == nil {
		*c = res
	}
}

func marshalList(t WitnessConditionType, conds []WitnessCondition) ([]byte, error) {
	exprs := make([]json.RawMessage, len(conds))
	for i, cond := range conds {
		b, err := cond.MarshalJSON()
		if err != nil {
			return nil, err
		}
		exprs[i] = b
	}
	return json.Marshal(conditionAux{
		Type:        t.String(),
		Expressions: exprs,
	})
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionAnd) MarshalJSON() ([]byte, error) {
	return marshalList(WitnessAnd, *c)
}

// Type implements the WitnessCondition interface.
func (c *ConditionOr) Type() WitnessConditionType { return WitnessOr }

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionOr) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessOr))
	w.WriteVarUint(uint64(len(*c)))
	for _, cond := range *c {
		cond.EncodeBinary(w)
	}
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionOr) DecodeBinarySpecific(r *io.BinReader, maxDepth int) {
	res := decodeConditionList(r, maxDepth)
	if r.Err == nil {
		*c = res
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionOr) MarshalJSON() ([]byte, error) {
	return marshalList(WitnessOr, *c)
}

// Type implements the WitnessCondition interface.
func (c *ConditionScriptHash) Type() WitnessConditionType { return WitnessScriptHash }

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionScriptHash) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessScriptHash))
	w.WriteBytes(c[:])
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionScriptHash) DecodeBinarySpecific(r *io.BinReader, _ int) {
	r.ReadBytes(c[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionScriptHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionAux{
		Type: WitnessScriptHash.String(),
		Hash: util.Uint160(*c).StringLE(),
	})
}

// Type implements the WitnessCondition interface.
func (c *ConditionGroup) Type() WitnessConditionType { return WitnessGroup }

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionGroup) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessGroup))
	(*keys.PublicKey)(c).EncodeBinary(w)
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionGroup) DecodeBinarySpecific(r *io.BinReader, _ int) {
	(*keys.PublicKey)(c).DecodeBinary(r)
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionAux{
		Type:  WitnessGroup.String(),
		Group: (*keys.PublicKey)(c).StringCompressed(),
	})
}

// Type implements the WitnessCondition interface.
func (c ConditionCalledByEntry) Type() WitnessConditionType { return WitnessCalledByEntry }

// EncodeBinary implements the WitnessCondition interface.
func (c ConditionCalledByEntry) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessCalledByEntry))
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c ConditionCalledByEntry) DecodeBinarySpecific(_ *io.BinReader, _ int) {
}

// MarshalJSON implements the json.Marshaler interface.
func (c ConditionCalledByEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionAux{
		Type: WitnessCalledByEntry.String(),
	})
}

// Type implements the WitnessCondition interface.
func (c *ConditionCalledByContract) Type() WitnessConditionType { return WitnessCalledByContract }

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionCalledByContract) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessCalledByContract))
	w.WriteBytes(c[:])
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionCalledByContract) DecodeBinarySpecific(r *io.BinReader, _ int) {
	r.ReadBytes(c[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionCalledByContract) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionAux{
		Type: WitnessCalledByContract.String(),
		Hash: util.Uint160(*c).StringLE(),
	})
}

// Type implements the WitnessCondition interface.
func (c *ConditionCalledByGroup) Type() WitnessConditionType { return WitnessCalledByGroup }

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionCalledByGroup) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessCalledByGroup))
	(*keys.PublicKey)(c).EncodeBinary(w)
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionCalledByGroup) DecodeBinarySpecific(r *io.BinReader, _ int) {
	(*keys.PublicKey)(c).DecodeBinary(r)
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionCalledByGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionAux{
		Type:  WitnessCalledByGroup.String(),
		Group: (*keys.PublicKey)(c).StringCompressed(),
	})
}

// validateCondition checks a programmatically built condition against the
// same nesting and subitem limits the decoders enforce.
func validateCondition(c WitnessCondition, maxDepth int) error {
	if maxDepth <= 0 {
		return fmt.Errorf("%w: condition nested too deeply", clienterr.ErrInvalidScope)
	}
	switch cond := c.(type) {
	case nil:
		return fmt.Errorf("%w: nil condition", clienterr.ErrInvalidScope)
	case *ConditionNot:
		return validateCondition(cond.Condition, maxDepth-1)
	case *ConditionAnd:
		return validateConditionList(*cond, maxDepth)
	case *ConditionOr:
		return validateConditionList(*cond, maxDepth)
	}
	return nil
}

func validateConditionList(conds []WitnessCondition, maxDepth int) error {
	if len(conds) == 0 || len(conds) > maxConditionSubitems {
		return fmt.Errorf("%w: invalid condition count %d", clienterr.ErrInvalidScope, len(conds))
	}
	for _, cond := range conds {
		if err := validateCondition(cond, maxDepth-1); err != nil {
			return err
		}
	}
	return nil
}

// DecodeBinaryCondition decodes and returns a condition from the given
// binary stream.
func DecodeBinaryCondition(r *io.BinReader) WitnessCondition {
	return decodeBinaryCondition(r, MaxConditionNesting)
}

func decodeBinaryCondition(r *io.BinReader, maxDepth int) WitnessCondition {
	if maxDepth <= 0 {
		r.Err = fmt.Errorf("%w: condition nested too deeply", clienterr.ErrInvalidScope)
		return nil
	}
	t := WitnessConditionType(r.ReadB())
	if r.Err != nil {
		return nil
	}
	var res WitnessCondition
	switch t {
	case WitnessBoolean:
		res = new(ConditionBoolean)
	case WitnessNot:
		res = new(ConditionNot)
	case WitnessAnd:
		res = new(ConditionAnd)
	case WitnessOr:
		res = new(ConditionOr)
	case WitnessScriptHash:
		res = new(ConditionScriptHash)
	case WitnessGroup:
		res = new(ConditionGroup)
	case WitnessCalledByEntry:
		res = ConditionCalledByEntry{}
	case WitnessCalledByContract:
		res = new(ConditionCalledByContract)
	case WitnessCalledByGroup:
		res = new(ConditionCalledByGroup)
	default:
		r.Err = fmt.Errorf("%w: invalid condition type %#x", clienterr.ErrInvalidScope, byte(t))
		return nil
	}
	res.DecodeBinarySpecific(r, maxDepth)
	if r.Err != nil {
		return nil
	}
	return res
}

// UnmarshalConditionJSON unmarshals a WitnessCondition from the given JSON
// data.
func UnmarshalConditionJSON(data []byte) (WitnessCondition, error) {
	return unmarshalConditionJSON(data, MaxConditionNesting)
}

func unmarshalConditionJSON(data []byte, maxDepth int) (WitnessCondition, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w: condition nested too deeply", clienterr.ErrInvalidScope)
	}
	var aux conditionAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, err
	}
	switch aux.Type {
	case WitnessBoolean.String():
		var v bool
		if err := json.Unmarshal(aux.Expression, &v); err != nil {
			return nil, err
		}
		res := ConditionBoolean(v)
		return &res, nil
	case WitnessNot.String():
		cond, err := unmarshalConditionJSON(aux.Expression, maxDepth-1)
		if err != nil {
			return nil, err
		}
		return &ConditionNot{Condition: cond}, nil
	case WitnessAnd.String(), WitnessOr.String():
		if len(aux.Expressions) == 0 || len(aux.Expressions) > maxConditionSubitems {
			return nil, fmt.Errorf("%w: invalid condition count", clienterr.ErrInvalidScope)
		}
		conds := make([]WitnessCondition, len(aux.Expressions))
		for i := range aux.Expressions {
			cond, err := unmarshalConditionJSON(aux.Expressions[i], maxDepth-1)
			if err != nil {
				return nil, err
			}
			conds[i] = cond
		}
		if aux.Type == WitnessAnd.String() {
			res := ConditionAnd(conds)
			return &res, nil
		}
		res := ConditionOr(conds)
		return &res, nil
	case WitnessScriptHash.String(), WitnessCalledByContract.String():
		h, err := util.Uint160DecodeStringLE(strings.TrimPrefix(aux.Hash, "0x"))
		if err != nil {
			return nil, err
		}
		if aux.Type == WitnessScriptHash.String() {
			res := ConditionScriptHash(h)
			return &res, nil
		}
		res := ConditionCalledByContract(h)
		return &res, nil
	case WitnessGroup.String(), WitnessCalledByGroup.String():
		key, err := keys.NewPublicKeyFromString(aux.Group)
		if err != nil {
			return nil, err
		}
		if aux.Type == WitnessGroup.String() {
			res := ConditionGroup(*key)
			return &res, nil
		}
		res := ConditionCalledByGroup(*key)
		return &res, nil
	case WitnessCalledByEntry.String():
		return ConditionCalledByEntry{}, nil
	default:
		return nil, fmt.Errorf("%w: invalid condition type %q", clienterr.ErrInvalidScope, aux.Type)
	}
}
