package result

import (
	"github.com/halyard-dev/neokit/pkg/transaction"
	"github.com/halyard-dev/neokit/pkg/util"
)

// Block is a result for the verbose getblock RPC call. The SDK doesn't
// process blocks itself, so the header is decoded from the verbose JSON
// form only.
type Block struct {
	Hash              util.Uint256              `json:"hash"`
	Size              int                       `json:"size"`
	Version           uint32                    `json:"version"`
	PreviousBlockHash util.Uint256              `json:"previousblockhash"`
	MerkleRoot        util.Uint256              `json:"merkleroot"`
	Time              uint64                    `json:"time"`
	Nonce             string                    `json:"nonce"`
	Index             uint32                    `json:"index"`
	Primary           byte                      `json:"primary"`
	NextConsensus     string                    `json:"nextconsensus"`
	Witnesses         []transaction.Witness     `json:"witnesses"`
	Tx                []transaction.Transaction `json:"tx"`
	Confirmations     uint32                    `json:"confirmations"`
	NextBlockHash     *util.Uint256             `json:"nextblockhash,omitempty"`
}
