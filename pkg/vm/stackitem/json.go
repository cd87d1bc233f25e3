package stackitem

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// MaxJSONDepth is the maximum allowed nesting level of an encoded stack
// item.
const MaxJSONDepth = 10

// ErrTooDeep is returned when the JSON encoded stack item has more nesting
// levels than MaxJSONDepth.
var ErrTooDeep = errors.New("too deep")

// itemAux is an auxiliary JSON form of an Item used by the RPC protocol:
// a {"type": ..., "value": ...} pair with the value layout depending on
// the type.
type itemAux struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// ToJSONWithTypes serializes the given item in the RPC protocol format
// keeping explicit type information for every element.
func ToJSONWithTypes(item Item) ([]byte, error) {
	res, err := toJSONWithTypes(item, make(map[Item]bool))
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

func toJSONWithTypes(item Item, seen map[Item]bool) (map[string]any, error) {
	if len(seen) > MaxJSONDepth {
		return nil, ErrTooDeep
	}
	typ := item.Type()
	result := map[string]any{
		"type": typ.String(),
	}
	var value any
	switch it := item.(type) {
	case *Array, *Struct:
		if seen[item] {
			return nil, fmt.Errorf("%w: recursive structures can't be serialized to JSON", ErrInvalidConversion)
		}
		seen[item] = true
		arr := []any{}
		for _, elem := range it.Value().([]Item) {
			s, err := toJSONWithTypes(elem, seen)
			if err != nil {
				return nil, err
			}
			arr = append(arr, s)
		}
		value = arr
		delete(seen, item)
	case Bool:
		value = bool(it)
	case *ByteArray, *Buffer:
		bs, _ := it.TryBytes()
		value = base64.StdEncoding.EncodeToString(bs)
	case *BigInteger:
		value = it.Big().String()
	case *Map:
		if seen[item] {
			return nil, fmt.Errorf("%w: recursive structures can't be serialized to JSON", ErrInvalidConversion)
		}
		seen[item] = true
		arr := []any{}
		for i := range it.value {
			k, err := toJSONWithTypes(it.value[i].Key, seen)
			if err != nil {
				return nil, err
			}
			v, err := toJSONWithTypes(it.value[i].Value, seen)
			if err != nil {
				return nil, err
			}
			arr = append(arr, map[string]any{
				"key":   k,
				"value": v,
			})
		}
		value = arr
		delete(seen, item)
	case *Pointer:
		value = it.pos
	case Null, *Interop:
		// No value.
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidConversion, typ)
	}
	if value != nil {
		result["value"] = value
	}
	return result, nil
}

// FromJSONWithTypes deserializes an item from the RPC protocol format with
// explicit type information.
func FromJSONWithTypes(data []byte) (Item, error) {
	var raw itemAux
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return fromJSONWithTypes(&raw, 0)
}

func fromJSONWithTypes(raw *itemAux, depth int) (Item, error) {
	if depth > MaxJSONDepth {
		return nil, ErrTooDeep
	}
	typ, err := FromString(raw.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConversion, err)
	}
	switch typ {
	case AnyT:
		return Null{}, nil
	case PointerT:
		var pos int
		if err := json.Unmarshal(raw.Value, &pos); err != nil {
			return nil, fmt.Errorf("%w: invalid pointer value", ErrInvalidConversion)
		}
		return NewPointer(pos), nil
	case BooleanT:
		var b bool
		if err := json.Unmarshal(raw.Value, &b); err != nil {
			return nil, fmt.Errorf("%w: invalid boolean value", ErrInvalidConversion)
		}
		return NewBool(b), nil
	case IntegerT:
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			// Plain JSON numbers are allowed as well.
			var num int64
			if err := json.Unmarshal(raw.Value, &num); err != nil {
				return nil, fmt.Errorf("%w: invalid integer value", ErrInvalidConversion)
			}
			return NewBigInteger(big.NewInt(num)), nil
		}
		val, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("%w: invalid integer value %q", ErrInvalidConversion, s)
		}
		return NewBigInteger(val), nil
	case ByteArrayT, BufferT:
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return nil, fmt.Errorf("%w: invalid bytes value", ErrInvalidConversion)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConversion, err)
		}
		if typ == BufferT {
			return NewBuffer(b), nil
		}
		return NewByteArray(b), nil
	case ArrayT, StructT:
		var elems []itemAux
		if err := json.Unmarshal(raw.Value, &elems); err != nil {
			return nil, fmt.Errorf("%w: invalid array value", ErrInvalidConversion)
		}
		items := make([]Item, len(elems))
		for i := range elems {
			items[i], err = fromJSONWithTypes(&elems[i], depth+1)
			if err != nil {
				return nil, err
			}
		}
		if typ == StructT {
			return NewStruct(items), nil
		}
		return NewArray(items), nil
	case MapT:
		var elems []struct {
			Key   itemAux `json:"key"`
			Value itemAux `json:"value"`
		}
		if err := json.Unmarshal(raw.Value, &elems); err != nil {
			return nil, fmt.Errorf("%w: invalid map value", ErrInvalidConversion)
		}
		m := NewMap()
		for i := range elems {
			key, err := fromJSONWithTypes(&elems[i].Key, depth+1)
			if err != nil {
				return nil, err
			}
			if !IsValidMapKey(key) {
				return nil, fmt.Errorf("%w: invalid map key of type %s", ErrInvalidConversion, key.Type())
			}
			value, err := fromJSONWithTypes(&elems[i].Value, depth+1)
			if err != nil {
				return nil, err
			}
			m.Add(key, value)
		}
		return m, nil
	case InteropT:
		return NewInterop(nil), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidConversion, typ)
	}
}
