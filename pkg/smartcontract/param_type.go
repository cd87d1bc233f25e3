package smartcontract

import (
	"encoding/json"
	"fmt"
)

// ParamType represents the Type of the smart contract parameter.
type ParamType int

// A list of supported smart contract parameter types.
const (
	UnknownType          ParamType = -1
	AnyType              ParamType = 0x00
	BoolType             ParamType = 0x10
	IntegerType          ParamType = 0x11
	ByteArrayType        ParamType = 0x12
	StringType           ParamType = 0x13
	Hash160Type          ParamType = 0x14
	Hash256Type          ParamType = 0x15
	PublicKeyType        ParamType = 0x16
	SignatureType        ParamType = 0x17
	ArrayType            ParamType = 0x20
	MapType              ParamType = 0x22
	InteropInterfaceType ParamType = 0x30
	VoidType             ParamType = 0xff
)

// String implements the stringer interface.
func (pt ParamType) String() string {
	switch pt {
	case SignatureType:
		return "Signature"
	case BoolType:
		return "Boolean"
	case IntegerType:
		return "Integer"
	case Hash160Type:
		return "Hash160"
	case Hash256Type:
		return "Hash256"
	case ByteArrayType:
		return "ByteArray"
	case PublicKeyType:
		return "PublicKey"
	case StringType:
		return "String"
	case ArrayType:
		return "Array"
	case MapType:
		return "Map"
	case InteropInterfaceType:
		return "InteropInterface"
	case VoidType:
		return "Void"
	case AnyType:
		return "Any"
	default:
		return ""
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (pt ParamType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + pt.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (pt *ParamType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	p, err := ParseParamType(s)
	if err != nil {
		return err
	}
	*pt = p
	return nil
}

// ParseParamType is a user-friendly relaxed parsing of the parameter type
// name. It also supports a couple of aliases the C# node understands.
func ParseParamType(typ string) (ParamType, error) {
	switch typ {
	case "Signature":
		return SignatureType, nil
	case "Boolean", "Bool":
		return BoolType, nil
	case "Integer", "Int":
		return IntegerType, nil
	case "Hash160":
		return Hash160Type, nil
	case "Hash256":
		return Hash256Type, nil
	case "ByteArray", "ByteString":
		return ByteArrayType, nil
	case "PublicKey", "Key":
		return PublicKeyType, nil
	case "String":
		return StringType, nil
	case "Array", "Struct":
		return ArrayType, nil
	case "Map":
		return MapType, nil
	case "InteropInterface":
		return InteropInterfaceType, nil
	case "Void":
		return VoidType, nil
	case "Any":
		return AnyType, nil
	default:
		return UnknownType, fmt.Errorf("unknown parameter type: %q", typ)
	}
}
