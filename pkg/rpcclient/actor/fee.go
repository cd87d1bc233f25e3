package actor

import (
	"fmt"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/vm"
	"github.com/halyard-dev/neokit/pkg/vm/emit"
	"github.com/halyard-dev/neokit/pkg/vm/opcode"
)

// ECDSAVerifyPrice is the gas price (in datoshi) of a single signature
// verification.
const ECDSAVerifyPrice = 1 << 15

// opcodePrice returns the deterministic execution price of the given opcodes
// with the base execution factor applied. Only the opcodes occurring in
// standard verification scripts are priced, anything else is a sign of a
// non-standard witness.
func opcodePrice(base int64, opcodes ...opcode.Opcode) int64 {
	var result int64
	for _, op := range opcodes {
		var coefficient int64
		switch {
		case op <= opcode.PUSHINT256 || op == opcode.PUSHNULL ||
			(op >= opcode.PUSHM1 && op <= opcode.PUSH16):
			coefficient = 1 << 0
		case op == opcode.PUSHDATA1:
			coefficient = 1 << 3
		case op == opcode.PUSHDATA2:
			coefficient = 1 << 9
		case op == opcode.PUSHDATA4:
			coefficient = 1 << 12
		case op == opcode.SYSCALL || op == opcode.RET:
			coefficient = 0
		default:
			coefficient = 1 << 0
		}
		result += base * coefficient
	}
	return result
}

// calculateWitnessFee returns the verification cost and the predicted wire
// size of a witness over the given standard verification script. The size
// includes both the invocation and the verification script with their length
// prefixes.
func calculateWitnessFee(base int64, verificationScript []byte) (int64, int, error) {
	var (
		netFee int64
		size   int
	)
	switch {
	case vm.IsSignatureContract(verificationScript):
		// Invocation script is a single PUSHDATA1 with a 64-byte
		// signature plus the length prefix, 67 bytes on the wire.
		size = 67 + io.GetVarSize(verificationScript)
		netFee = opcodePrice(base, opcode.PUSHDATA1, opcode.PUSHDATA1) + base*ECDSAVerifyPrice
	default:
		m, pubs, ok := vm.ParseMultiSigContract(verificationScript)
		if !ok {
			return 0, 0, fmt.Errorf("%w: signer has a non-standard verification script", clienterr.ErrFeeComputation)
		}
		n := len(pubs)
		sizeInv := 66 * m
		size = io.GetVarSize(sizeInv) + sizeInv + io.GetVarSize(verificationScript)
		netFee = calculateMultisigFee(base, m) + calculateMultisigFee(base, n)
		netFee += base * ECDSAVerifyPrice * int64(n)
	}
	return netFee, size, nil
}

func calculateMultisigFee(base int64, n int) int64 {
	result := opcodePrice(base, opcode.PUSHDATA1) * int64(n)
	bw := io.NewBufBinWriter()
	emit.Int(bw.BinWriter, int64(n))
	// Coefficients of all the small push opcodes are equal, so pricing by
	// the first byte of the emitted push is correct.
	result += opcodePrice(base, opcode.Opcode(bw.Bytes()[0]))
	return result
}
