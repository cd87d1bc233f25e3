package result

import (
	"encoding/json"

	"github.com/halyard-dev/neokit/pkg/util"
)

// ContractState is a result for the getcontractstate RPC call. NEF and
// manifest are kept mostly opaque, the SDK only needs the hash, the id and
// the entry script.
type ContractState struct {
	ID            int32           `json:"id"`
	UpdateCounter uint16          `json:"updatecounter"`
	Hash          util.Uint160    `json:"hash"`
	NEF           NEF             `json:"nef"`
	Manifest      json.RawMessage `json:"manifest"`
}

// NEF carries the executable part of the contract state.
type NEF struct {
	Magic    uint32 `json:"magic"`
	Compiler string `json:"compiler"`
	Script   []byte `json:"script"`
	Checksum uint32 `json:"checksum"`
}
