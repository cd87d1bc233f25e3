package smartcontract

import (
	"fmt"
	"math/big"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/smartcontract/callflag"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/halyard-dev/neokit/pkg/vm/emit"
	"github.com/halyard-dev/neokit/pkg/vm/opcode"
)

// MaxScriptLength is the maximum length of a script the builder produces.
// Larger scripts can't fit into a transaction anyway.
const MaxScriptLength = 65536

// Builder assists in creating contract invocation scripts. It's optimized
// for the typical and simple use cases of calling methods and pushing data,
// for anything more complex use the emit package directly.
type Builder struct {
	bw *io.BufBinWriter
}

// NewBuilder creates a new Builder instance.
func NewBuilder() *Builder {
	return &Builder{
		bw: io.NewBufBinWriter(),
	}
}

// PushInteger pushes the given integer with the most compact encoding
// possible (PUSHM1/PUSH0-16 or the smallest fitting PUSHINT form).
func (b *Builder) PushInteger(n *big.Int) *Builder {
	emit.BigInt(b.bw.BinWriter, n)
	return b
}

// PushBytes pushes the given bytes as a single PUSHDATA item.
func (b *Builder) PushBytes(data []byte) *Builder {
	emit.Bytes(b.bw.BinWriter, data)
	return b
}

// PushBool pushes the given boolean.
func (b *Builder) PushBool(v bool) *Builder {
	emit.Bool(b.bw.BinWriter, v)
	return b
}

// PushData pushes the given string as a byte string item.
func (b *Builder) PushData(s string) *Builder {
	emit.String(b.bw.BinWriter, s)
	return b
}

// PushNull pushes a Null item.
func (b *Builder) PushNull() *Builder {
	emit.Opcodes(b.bw.BinWriter, opcode.PUSHNULL)
	return b
}

// PushParam pushes the given contract parameter.
func (b *Builder) PushParam(p Parameter) *Builder {
	b.pushParam(p)
	return b
}

func (b *Builder) pushParam(p Parameter) {
	if b.bw.Err != nil {
		return
	}
	switch p.Type {
	case BoolType:
		v, ok := p.Value.(bool)
		if !ok {
			b.bw.Err = paramError(p)
			return
		}
		emit.Bool(b.bw.BinWriter, v)
	case IntegerType:
		switch v := p.Value.(type) {
		case int64:
			emit.Int(b.bw.BinWriter, v)
		case *big.Int:
			emit.BigInt(b.bw.BinWriter, v)
		default:
			b.bw.Err = paramError(p)
		}
	case ByteArrayType, SignatureType, PublicKeyType:
		v, ok := p.Value.([]byte)
		if !ok {
			b.bw.Err = paramError(p)
			return
		}
		emit.Bytes(b.bw.BinWriter, v)
	case StringType:
		v, ok := p.Value.(string)
		if !ok {
			b.bw.Err = paramError(p)
			return
		}
		emit.String(b.bw.BinWriter, v)
	case Hash160Type:
		v, ok := p.Value.(util.Uint160)
		if !ok {
			b.bw.Err = paramError(p)
			return
		}
		emit.Bytes(b.bw.BinWriter, v.BytesBE())
	case Hash256Type:
		v, ok := p.Value.(util.Uint256)
		if !ok {
			b.bw.Err = paramError(p)
			return
		}
		emit.Bytes(b.bw.BinWriter, v.BytesBE())
	case ArrayType:
		v, ok := p.Value.([]Parameter)
		if !ok {
			b.bw.Err = paramError(p)
			return
		}
		for i := len(v) - 1; i >= 0; i-- {
			b.pushParam(v[i])
		}
		emit.Int(b.bw.BinWriter, int64(len(v)))
		emit.Opcodes(b.bw.BinWriter, opcode.PACK)
	case MapType:
		v, ok := p.Value.([]ParameterPair)
		if !ok {
			b.bw.Err = paramError(p)
			return
		}
		for i := len(v) - 1; i >= 0; i-- {
			b.pushParam(v[i].Value)
			b.pushParam(v[i].Key)
		}
		emit.Int(b.bw.BinWriter, int64(len(v)))
		emit.Opcodes(b.bw.BinWriter, opcode.PACKMAP)
	case AnyType:
		if p.Value != nil {
			b.bw.Err = paramError(p)
			return
		}
		emit.Opcodes(b.bw.BinWriter, opcode.PUSHNULL)
	default:
		b.bw.Err = fmt.Errorf("%w: unsupported parameter type %s", clienterr.ErrInvalidArgument, p.Type)
	}
}

func paramError(p Parameter) error {
	return fmt.Errorf("%w: value of %T doesn't fit parameter type %s", clienterr.ErrInvalidArgument, p.Value, p.Type)
}

// PackArray packs the given number of items already on the stack into an
// array.
func (b *Builder) PackArray(n int) *Builder {
	emit.Int(b.bw.BinWriter, int64(n))
	emit.Opcodes(b.bw.BinWriter, opcode.PACK)
	return b
}

// OpCode emits the given opcodes as is.
func (b *Builder) OpCode(ops ...opcode.Opcode) *Builder {
	emit.Opcodes(b.bw.BinWriter, ops...)
	return b
}

// ContractCall emits a System.Contract.Call of the given method with the
// given parameters and call flags.
func (b *Builder) ContractCall(contract util.Uint160, method string, f callflag.CallFlag, params ...Parameter) *Builder {
	if b.bw.Err != nil {
		return b
	}
	if len(params) == 0 && f == callflag.NoneFlag {
		// Bare probe form, see emit.AppCall.
		emit.AppCall(b.bw.BinWriter, contract, method, f)
		return b
	}
	for i := len(params) - 1; i >= 0; i-- {
		b.pushParam(params[i])
	}
	emit.Int(b.bw.BinWriter, int64(len(params)))
	emit.Opcodes(b.bw.BinWriter, opcode.PACK)
	emit.Int(b.bw.BinWriter, int64(f))
	emit.String(b.bw.BinWriter, method)
	emit.Bytes(b.bw.BinWriter, contract.BytesBE())
	emit.Syscall(b.bw.BinWriter, emit.SystemContractCall)
	return b
}

// Script returns the accumulated script, checking the size limit. The
// builder is not usable after this call unless Reset.
func (b *Builder) Script() ([]byte, error) {
	if b.bw.Err != nil {
		return nil, b.bw.Err
	}
	if b.bw.Len() > MaxScriptLength {
		return nil, fmt.Errorf("%w: %d bytes with a %d limit", clienterr.ErrScriptTooLarge, b.bw.Len(), MaxScriptLength)
	}
	return b.bw.Bytes(), nil
}

// Len returns the current length of the script.
func (b *Builder) Len() int {
	return b.bw.Len()
}

// Reset resets the builder, making it ready to create a new script.
func (b *Builder) Reset() {
	b.bw.Reset()
}
