package emit

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/halyard-dev/neokit/pkg/encoding/bigint"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/smartcontract/callflag"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/halyard-dev/neokit/pkg/vm/opcode"
)

// SystemContractCall is the name of the interop used to call other contracts.
const SystemContractCall = "System.Contract.Call"

// Instruction emits a VM Instruction with data to the given buffer.
func Instruction(w *io.BinWriter, op opcode.Opcode, b []byte) {
	w.WriteB(byte(op))
	w.WriteBytes(b)
}

// Opcodes emits a single VM Instruction without arguments to the given
// buffer. It can emit multiple opcodes at once.
func Opcodes(w *io.BinWriter, ops ...opcode.Opcode) {
	for _, op := range ops {
		w.WriteB(byte(op))
	}
}

// Bool emits a bool type to the given buffer.
func Bool(w *io.BinWriter, ok bool) {
	if ok {
		Opcodes(w, opcode.PUSHT)
		return
	}
	Opcodes(w, opcode.PUSHF)
}

func padRight(s int, buf []byte) []byte {
	l := len(buf)
	buf = buf[:s]
	if buf[l-1]&0x80 != 0 {
		for i := l; i < s; i++ {
			buf[i] = 0xFF
		}
	}
	return buf
}

// Int emits an int type to the given buffer.
func Int(w *io.BinWriter, i int64) {
	if smallInt(w, i) {
		return
	}
	bigInt(w, big.NewInt(i))
}

// BigInt emits a big-integer type to the given buffer. The value must fit
// into 256 bits.
func BigInt(w *io.BinWriter, n *big.Int) {
	if n.IsInt64() && smallInt(w, n.Int64()) {
		return
	}
	bigInt(w, n)
}

// smallInt emits an integer using the one-byte PUSH forms if the value
// allows for that and returns whether it did.
func smallInt(w *io.BinWriter, i int64) bool {
	switch {
	case i == -1:
		Opcodes(w, opcode.PUSHM1)
	case i >= 0 && i <= 16:
		val := opcode.Opcode(int(opcode.PUSH0) + int(i))
		Opcodes(w, val)
	default:
		return false
	}
	return true
}

func bigInt(w *io.BinWriter, n *big.Int) {
	buf := bigint.ToPreallocatedBytes(n, make([]byte, 0, 32))
	// PUSHINT256 takes at most 32 bytes of two's-complement payload.
	if len(buf) > 32 {
		w.Err = fmt.Errorf("integer does not fit into 256 bits: %s", n)
		return
	}
	// The length is never 0 here, small values take the one-byte forms.
	padSize := byte(8 - bits.LeadingZeros8(byte(len(buf)-1)))
	Opcodes(w, opcode.PUSHINT8+opcode.Opcode(padSize))
	w.WriteBytes(padRight(1<<padSize, buf))
}

// Array emits an array of elements to the given buffer. The elements are
// pushed in reverse order followed by their count and PACK, so that the VM
// ends up with a proper array on the stack.
func Array(w *io.BinWriter, es ...any) {
	if len(es) == 0 {
		Opcodes(w, opcode.NEWARRAY0)
		return
	}
	for i := len(es) - 1; i >= 0; i-- {
		switch e := es[i].(type) {
		case int:
			Int(w, int64(e))
		case int64:
			Int(w, e)
		case *big.Int:
			BigInt(w, e)
		case string:
			String(w, e)
		case util.Uint160:
			Bytes(w, e.BytesBE())
		case util.Uint256:
			Bytes(w, e.BytesBE())
		case []byte:
			Bytes(w, e)
		case bool:
			Bool(w, e)
		default:
			if es[i] != nil {
				w.Err = fmt.Errorf("unsupported type: %T", e)
				return
			}
			Opcodes(w, opcode.PUSHNULL)
		}
	}
	Int(w, int64(len(es)))
	Opcodes(w, opcode.PACK)
}

// String emits a string to the given buffer.
func String(w *io.BinWriter, s string) {
	Bytes(w, []byte(s))
}

// Bytes emits a byte array to the given buffer, using the shortest of
// PUSHDATA1/2/4 that fits.
func Bytes(w *io.BinWriter, b []byte) {
	var n = len(b)

	switch {
	case n < 0x100:
		Instruction(w, opcode.PUSHDATA1, []byte{byte(n)})
	case n < 0x10000:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(n))
		Instruction(w, opcode.PUSHDATA2, buf)
	default:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(n))
		Instruction(w, opcode.PUSHDATA4, buf)
	}
	w.WriteBytes(b)
}

// SyscallID returns the 4-byte token the VM uses to identify the interop
// with the given name, the first four bytes of its SHA256 hash.
func SyscallID(name string) []byte {
	h := sha256.Sum256([]byte(name))
	return h[:4]
}

// Syscall emits the syscall instruction with the given interop name to the
// given buffer.
func Syscall(w *io.BinWriter, api string) {
	if w.Err != nil {
		return
	} else if len(api) == 0 {
		w.Err = errors.New("syscall api cannot be of length 0")
		return
	}
	Instruction(w, opcode.SYSCALL, SyscallID(api))
}

// AppCall emits a call to the given contract method with the arguments and
// call flags given. Argument values accepted are the same as for Array.
func AppCall(w *io.BinWriter, scriptHash util.Uint160, operation string, f callflag.CallFlag, args ...any) {
	// A call with no arguments and no flags is a bare method probe, the
	// argument array and the flags byte are omitted entirely.
	if len(args) != 0 || f != callflag.NoneFlag {
		Array(w, args...)
		Int(w, int64(f))
	}
	String(w, operation)
	Bytes(w, scriptHash.BytesBE())
	Syscall(w, SystemContractCall)
}
