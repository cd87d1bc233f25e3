package transaction

import (
	"encoding/base64"
	"encoding/json"

	"github.com/halyard-dev/neokit/pkg/crypto/hash"
	"github.com/halyard-dev/neokit/pkg/io"
	"github.com/halyard-dev/neokit/pkg/util"
)

// MaxInvocationScript is the maximum length of the invocation script (the
// limit allows for 16 multisignature witnesses of 11 signatures each).
const MaxInvocationScript = 1024

// MaxVerificationScript is the maximum length of the verification script.
const MaxVerificationScript = 1024

// Witness contains an invocation and verification script pair attached to a
// transaction signer.
type Witness struct {
	InvocationScript   []byte `json:"invocation"`
	VerificationScript []byte `json:"verification"`
}

// witnessAux is used for JSON I/O, scripts are base64-encoded there.
type witnessAux struct {
	InvocationScript   string `json:"invocation"`
	VerificationScript string `json:"verification"`
}

// EncodeBinary implements the Serializable interface.
func (w *Witness) EncodeBinary(bw *io.BinWriter) {
	bw.WriteVarBytes(w.InvocationScript)
	bw.WriteVarBytes(w.VerificationScript)
}

// DecodeBinary implements the Serializable interface.
func (w *Witness) DecodeBinary(br *io.BinReader) {
	w.InvocationScript = br.ReadVarBytes(MaxInvocationScript)
	w.VerificationScript = br.ReadVarBytes(MaxVerificationScript)
}

// MarshalJSON implements the json.Marshaler interface.
func (w Witness) MarshalJSON() ([]byte, error) {
	return json.Marshal(&witnessAux{
		InvocationScript:   base64.StdEncoding.EncodeToString(w.InvocationScript),
		VerificationScript: base64.StdEncoding.EncodeToString(w.VerificationScript),
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (w *Witness) UnmarshalJSON(data []byte) error {
	aux := new(witnessAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	inv, err := base64.StdEncoding.DecodeString(aux.InvocationScript)
	if err != nil {
		return err
	}
	ver, err := base64.StdEncoding.DecodeString(aux.VerificationScript)
	if err != nil {
		return err
	}
	w.InvocationScript = inv
	w.VerificationScript = ver
	return nil
}

// ScriptHash returns the hash of the verification script.
func (w Witness) ScriptHash() util.Uint160 {
	return hash.Hash160(w.VerificationScript)
}

// Copy creates a deep copy of the Witness.
func (w Witness) Copy() Witness {
	return Witness{
		InvocationScript:   bytesCopy(w.InvocationScript),
		VerificationScript: bytesCopy(w.VerificationScript),
	}
}

func bytesCopy(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
