package stackitem

import (
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/halyard-dev/neokit/pkg/encoding/bigint"
)

// MaxSize is the maximum item size allowed in the VM.
const MaxSize = 1024 * 1024

// MaxBigIntegerSizeBits is the maximum size of a BigInt item in bits.
const MaxBigIntegerSizeBits = 32 * 8

var (
	// ErrInvalidConversion is returned upon an attempt to make an incorrect
	// conversion between item types.
	ErrInvalidConversion = errors.New("invalid conversion")
	// ErrTooBig is returned when an item exceeds some size constraint.
	ErrTooBig = errors.New("too big")
)

// Item represents the "real" value that is pushed on the stack.
type Item interface {
	// Value returns the value of the Item implementation.
	Value() any
	// Type returns the type of the Item implementation.
	Type() Type
	// TryBytes converts the Item to a byte slice if can.
	TryBytes() ([]byte, error)
	// TryInteger converts the Item to an integer if can.
	TryInteger() (*big.Int, error)
	// TryBool converts the Item to a boolean if can.
	TryBool() (bool, error)
	// Equals checks if two stack items are equal.
	Equals(s Item) bool
}

// Make tries to make an appropriate stack item from the provided value. It
// will panic if it's not possible.
func Make(v any) Item {
	switch val := v.(type) {
	case int:
		return (*BigInteger)(big.NewInt(int64(val)))
	case int64:
		return (*BigInteger)(big.NewInt(val))
	case uint8:
		return (*BigInteger)(big.NewInt(int64(val)))
	case uint16:
		return (*BigInteger)(big.NewInt(int64(val)))
	case uint32:
		return (*BigInteger)(big.NewInt(int64(val)))
	case uint64:
		return (*BigInteger)(new(big.Int).SetUint64(val))
	case []byte:
		return NewByteArray(val)
	case string:
		return NewByteArray([]byte(val))
	case bool:
		return Bool(val)
	case []Item:
		return NewArray(val)
	case *big.Int:
		return NewBigInteger(val)
	case Item:
		return val
	case nil:
		return Null{}
	default:
		panic(fmt.Sprintf("invalid stack item type: %v (%T)", val, val))
	}
}

// Null represents the Null stack item.
type Null struct{}

// Value implements the Item interface.
func (i Null) Value() any { return nil }

// Type implements the Item interface.
func (i Null) Type() Type { return AnyT }

// TryBytes implements the Item interface.
func (i Null) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Null to ByteString", ErrInvalidConversion)
}

// TryInteger implements the Item interface.
func (i Null) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Null to Integer", ErrInvalidConversion)
}

// TryBool implements the Item interface.
func (i Null) TryBool() (bool, error) { return false, nil }

// Equals implements the Item interface.
func (i Null) Equals(s Item) bool {
	_, ok := s.(Null)
	return ok
}

// BigInteger represents a big integer on the stack.
type BigInteger big.Int

// NewBigInteger returns a new BigInteger object.
func NewBigInteger(value *big.Int) *BigInteger {
	if value.BitLen() > MaxBigIntegerSizeBits {
		panic(fmt.Errorf("%w: integer is too big", ErrTooBig))
	}
	return (*BigInteger)(value)
}

// Big casts i to the big.Int type.
func (i *BigInteger) Big() *big.Int {
	return (*big.Int)(i)
}

// Value implements the Item interface.
func (i *BigInteger) Value() any { return i.Big() }

// Type implements the Item interface.
func (i *BigInteger) Type() Type { return IntegerT }

// TryBytes implements the Item interface.
func (i *BigInteger) TryBytes() ([]byte, error) {
	return i.Big().Bytes(), nil
}

// TryInteger implements the Item interface.
func (i *BigInteger) TryInteger() (*big.Int, error) {
	return i.Big(), nil
}

// TryBool implements the Item interface.
func (i *BigInteger) TryBool() (bool, error) {
	return i.Big().Sign() != 0, nil
}

// Equals implements the Item interface.
func (i *BigInteger) Equals(s Item) bool {
	if i == s {
		return true
	} else if s == nil {
		return false
	}
	val, ok := s.(*BigInteger)
	return ok && i.Big().Cmp(val.Big()) == 0
}

// Bool represents a boolean Item.
type Bool bool

// NewBool returns a new Bool object.
func NewBool(val bool) Bool {
	return Bool(val)
}

// Value implements the Item interface.
func (i Bool) Value() any { return bool(i) }

// Type implements the Item interface.
func (i Bool) Type() Type { return BooleanT }

// TryBytes implements the Item interface.
func (i Bool) TryBytes() ([]byte, error) {
	if i {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

// TryInteger implements the Item interface.
func (i Bool) TryInteger() (*big.Int, error) {
	if i {
		return big.NewInt(1), nil
	}
	return big.NewInt(0), nil
}

// TryBool implements the Item interface.
func (i Bool) TryBool() (bool, error) { return bool(i), nil }

// Equals implements the Item interface.
func (i Bool) Equals(s Item) bool {
	val, ok := s.(Bool)
	return ok && i == val
}

// ByteArray represents an immutable byte string on the stack (Neo's
// ByteString type).
type ByteArray []byte

// NewByteArray returns a new ByteArray object.
func NewByteArray(b []byte) *ByteArray {
	return (*ByteArray)(&b)
}

// Value implements the Item interface.
func (i *ByteArray) Value() any { return []byte(*i) }

// Type implements the Item interface.
func (i *ByteArray) Type() Type { return ByteArrayT }

// TryBytes implements the Item interface.
func (i *ByteArray) TryBytes() ([]byte, error) {
	return *i, nil
}

// TryInteger implements the Item interface.
func (i *ByteArray) TryInteger() (*big.Int, error) {
	if len(*i) > MaxBigIntegerSizeBits/8 {
		return nil, fmt.Errorf("%w: integer is too big", ErrTooBig)
	}
	return bigint.FromBytes(*i), nil
}

// TryBool implements the Item interface.
func (i *ByteArray) TryBool() (bool, error) {
	for _, b := range *i {
		if b != 0 {
			return true, nil
		}
	}
	return false, nil
}

// TryString returns the underlying bytes as a string if they form a valid
// UTF-8 sequence.
func (i *ByteArray) TryString() (string, error) {
	if !utf8.Valid(*i) {
		return "", fmt.Errorf("%w: not a UTF-8 string", ErrInvalidConversion)
	}
	return string(*i), nil
}

// Equals implements the Item interface.
func (i *ByteArray) Equals(s Item) bool {
	if s == nil {
		return false
	}
	val, ok := s.(*ByteArray)
	if !ok {
		return false
	}
	if len(*i) != len(*val) {
		return false
	}
	for j := range *i {
		if (*i)[j] != (*val)[j] {
			return false
		}
	}
	return true
}

// Buffer represents a Buffer stack item. It's mutable in the VM, for the
// SDK it only differs from ByteArray in type.
type Buffer []byte

// NewBuffer returns a new Buffer object.
func NewBuffer(b []byte) *Buffer {
	return (*Buffer)(&b)
}

// Value implements the Item interface.
func (i *Buffer) Value() any { return []byte(*i) }

// Type implements the Item interface.
func (i *Buffer) Type() Type { return BufferT }

// TryBytes implements the Item interface.
func (i *Buffer) TryBytes() ([]byte, error) {
	return *i, nil
}

// TryInteger implements the Item interface.
func (i *Buffer) TryInteger() (*big.Int, error) {
	if len(*i) > MaxBigIntegerSizeBits/8 {
		return nil, fmt.Errorf("%w: integer is too big", ErrTooBig)
	}
	return bigint.FromBytes(*i), nil
}

// TryBool implements the Item interface.
func (i *Buffer) TryBool() (bool, error) {
	return len(*i) != 0, nil
}

// Equals implements the Item interface, Buffers are only equal to
// themselves.
func (i *Buffer) Equals(s Item) bool {
	return i == s
}

// Array represents a list of stack items.
type Array struct {
	value []Item
}

// NewArray returns a new Array object.
func NewArray(items []Item) *Array {
	return &Array{
		value: items,
	}
}

// Value implements the Item interface.
func (i *Array) Value() any { return i.value }

// Type implements the Item interface.
func (i *Array) Type() Type { return ArrayT }

// Len returns the length of the Array.
func (i *Array) Len() int { return len(i.value) }

// Append adds an Item to the Array.
func (i *Array) Append(item Item) {
	i.value = append(i.value, item)
}

// TryBytes implements the Item interface.
func (i *Array) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Array to ByteString", ErrInvalidConversion)
}

// TryInteger implements the Item interface.
func (i *Array) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Array to Integer", ErrInvalidConversion)
}

// TryBool implements the Item interface.
func (i *Array) TryBool() (bool, error) { return true, nil }

// Equals implements the Item interface, Arrays are only equal to themselves.
func (i *Array) Equals(s Item) bool {
	return i == s
}

// Struct represents a struct on the stack.
type Struct struct {
	value []Item
}

// NewStruct returns a new Struct object.
func NewStruct(items []Item) *Struct {
	return &Struct{
		value: items,
	}
}

// Value implements the Item interface.
func (i *Struct) Value() any { return i.value }

// Type implements the Item interface.
func (i *Struct) Type() Type { return StructT }

// Len returns the length of the Struct.
func (i *Struct) Len() int { return len(i.value) }

// Append adds an Item to the Struct.
func (i *Struct) Append(item Item) {
	i.value = append(i.value, item)
}

// TryBytes implements the Item interface.
func (i *Struct) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Struct to ByteString", ErrInvalidConversion)
}

// TryInteger implements the Item interface.
func (i *Struct) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Struct to Integer", ErrInvalidConversion)
}

// TryBool implements the Item interface.
func (i *Struct) TryBool() (bool, error) { return true, nil }

// Equals implements the Item interface. Structs are compared element-wise.
func (i *Struct) Equals(s Item) bool {
	if i == s {
		return true
	} else if s == nil {
		return false
	}
	val, ok := s.(*Struct)
	if !ok || len(i.value) != len(val.value) {
		return false
	}
	for j := range i.value {
		if !i.value[j].Equals(val.value[j]) {
			return false
		}
	}
	return true
}

// MapElement is a key-value pair of Items.
type MapElement struct {
	Key   Item
	Value Item
}

// Map represents a Map on the stack.
type Map struct {
	value []MapElement
}

// NewMap returns a new Map object.
func NewMap() *Map {
	return &Map{
		value: make([]MapElement, 0),
	}
}

// Value implements the Item interface.
func (i *Map) Value() any { return i.value }

// Type implements the Item interface.
func (i *Map) Type() Type { return MapT }

// Len returns the length of the Map.
func (i *Map) Len() int { return len(i.value) }

// Index returns the index of the given key in Map or -1.
func (i *Map) Index(key Item) int {
	for k := range i.value {
		if i.value[k].Key.Equals(key) {
			return k
		}
	}
	return -1
}

// Add adds a key-value pair to the Map, replacing the old value if the key
// is already there.
func (i *Map) Add(key, value Item) {
	if !IsValidMapKey(key) {
		panic("wrong key type")
	}
	index := i.Index(key)
	if index >= 0 {
		i.value[index].Value = value
	} else {
		i.value = append(i.value, MapElement{key, value})
	}
}

// TryBytes implements the Item interface.
func (i *Map) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Map to ByteString", ErrInvalidConversion)
}

// TryInteger implements the Item interface.
func (i *Map) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Map to Integer", ErrInvalidConversion)
}

// TryBool implements the Item interface.
func (i *Map) TryBool() (bool, error) { return true, nil }

// Equals implements the Item interface, Maps are only equal to themselves.
func (i *Map) Equals(s Item) bool {
	return i == s
}

// IsValidMapKey checks whether it's possible to use the given Item as a Map
// key.
func IsValidMapKey(key Item) bool {
	switch key.(type) {
	case Bool, *BigInteger, *ByteArray:
		return true
	default:
		return false
	}
}

// Interop represents an interop data on the stack, it's an opaque reference
// to some node-side object (an iterator, usually).
type Interop struct {
	value any
}

// NewInterop returns a new Interop object.
func NewInterop(value any) *Interop {
	return &Interop{
		value: value,
	}
}

// Value implements the Item interface.
func (i *Interop) Value() any { return i.value }

// Type implements the Item interface.
func (i *Interop) Type() Type { return InteropT }

// TryBytes implements the Item interface.
func (i *Interop) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: InteropInterface to ByteString", ErrInvalidConversion)
}

// TryInteger implements the Item interface.
func (i *Interop) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: InteropInterface to Integer", ErrInvalidConversion)
}

// TryBool implements the Item interface.
func (i *Interop) TryBool() (bool, error) { return true, nil }

// Equals implements the Item interface.
func (i *Interop) Equals(s Item) bool {
	if i == s {
		return true
	} else if s == nil {
		return false
	}
	val, ok := s.(*Interop)
	return ok && i.value == val.value
}

// Pointer represents a VM-level instruction pointer.
type Pointer struct {
	pos int
}

// NewPointer returns a new Pointer on the specified position.
func NewPointer(pos int) *Pointer {
	return &Pointer{
		pos: pos,
	}
}

// Value implements the Item interface.
func (p *Pointer) Value() any { return p.pos }

// Type implements the Item interface.
func (p *Pointer) Type() Type { return PointerT }

// TryBytes implements the Item interface.
func (p *Pointer) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Pointer to ByteString", ErrInvalidConversion)
}

// TryInteger implements the Item interface.
func (p *Pointer) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Pointer to Integer", ErrInvalidConversion)
}

// TryBool implements the Item interface.
func (p *Pointer) TryBool() (bool, error) { return true, nil }

// Equals implements the Item interface.
func (p *Pointer) Equals(s Item) bool {
	if p == s {
		return true
	}
	ptr, ok := s.(*Pointer)
	return ok && p.pos == ptr.pos
}
