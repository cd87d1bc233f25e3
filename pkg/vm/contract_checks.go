/*
Package vm provides recognition helpers for standard verification scripts.

It doesn't execute anything, it only classifies scripts into signature and
multisignature contracts the way the N3 VM does, which is enough for witness
size and fee prediction on the client side.
*/
package vm

import (
	"encoding/binary"

	"github.com/halyard-dev/neokit/pkg/vm/emit"
	"github.com/halyard-dev/neokit/pkg/vm/opcode"
)

// MaxMultiSigKeys is the maximum number of keys allowed for a correct
// multisignature contract.
const MaxMultiSigKeys = 1024

var (
	checkSigID      = binary.LittleEndian.Uint32(emit.SyscallID("System.Crypto.CheckSig"))
	checkMultisigID = binary.LittleEndian.Uint32(emit.SyscallID("System.Crypto.CheckMultisig"))
)

// pushedInt decodes a small non-negative integer push at the given position
// and returns its value and the position right past the instruction. Only
// the forms used in verification scripts are recognized (PUSH1..PUSH16,
// PUSHINT8, PUSHINT16).
func pushedInt(script []byte, pos int) (int, int, bool) {
	if pos >= len(script) {
		return 0, 0, false
	}
	op := opcode.Opcode(script[pos])
	switch {
	case opcode.PUSH1 <= op && op <= opcode.PUSH16:
		return int(op - opcode.PUSH0), pos + 1, true
	case op == opcode.PUSHINT8 && pos+2 <= len(script):
		v := int(int8(script[pos+1]))
		if v < 1 {
			return 0, 0, false
		}
		return v, pos + 2, true
	case op == opcode.PUSHINT16 && pos+3 <= len(script):
		v := int(int16(binary.LittleEndian.Uint16(script[pos+1:])))
		if v < 1 {
			return 0, 0, false
		}
		return v, pos + 3, true
	}
	return 0, 0, false
}

// IsSignatureContract checks whether the passed script is a signature check
// contract.
func IsSignatureContract(script []byte) bool {
	_, ok := ParseSignatureContract(script)
	return ok
}

// ParseSignatureContract parses a simple signature contract and returns the
// serialized public key it checks against.
func ParseSignatureContract(script []byte) ([]byte, bool) {
	if len(script) != 40 {
		return nil, false
	}
	if script[0] != byte(opcode.PUSHDATA1) || script[1] != 33 ||
		script[35] != byte(opcode.SYSCALL) ||
		binary.LittleEndian.Uint32(script[36:]) != checkSigID {
		return nil, false
	}
	return script[2:35], true
}

// IsMultiSigContract checks whether the passed script is a multisignature
// contract.
func IsMultiSigContract(script []byte) bool {
	_, _, ok := ParseMultiSigContract(script)
	return ok
}

// ParseMultiSigContract returns the number of required signatures and the
// list of serialized public keys from the verification script of a
// multisignature contract.
func ParseMultiSigContract(script []byte) (int, [][]byte, bool) {
	nsigs, pos, ok := pushedInt(script, 0)
	if !ok {
		return 0, nil, false
	}
	var pubs [][]byte
	for pos+2 <= len(script) && script[pos] == byte(opcode.PUSHDATA1) && script[pos+1] == 33 {
		if pos+35 > len(script) || len(pubs) == MaxMultiSigKeys {
			return 0, nil, false
		}
		pubs = append(pubs, script[pos+2:pos+35])
		pos += 35
	}
	if len(pubs) < nsigs {
		return 0, nil, false
	}
	nkeys, pos, ok := pushedInt(script, pos)
	if !ok || nkeys != len(pubs) {
		return 0, nil, false
	}
	if pos+5 != len(script) || script[pos] != byte(opcode.SYSCALL) ||
		binary.LittleEndian.Uint32(script[pos+1:]) != checkMultisigID {
		return 0, nil, false
	}
	return nsigs, pubs, true
}

// IsStandardContract checks whether the passed script is a signature or
// multisignature contract.
func IsStandardContract(script []byte) bool {
	return IsSignatureContract(script) || IsMultiSigContract(script)
}
