package result

import (
	"encoding/json"

	"github.com/halyard-dev/neokit/pkg/transaction"
	"github.com/halyard-dev/neokit/pkg/util"
)

// TransactionOutputRaw is used as a wrapper to represent the
// getrawtransaction verbose output: a transaction plus some metadata about
// its place in the chain.
type TransactionOutputRaw struct {
	transaction.Transaction
	TransactionMetadata
}

// TransactionMetadata is an auxiliary struct for proper TransactionOutputRaw
// marshaling.
type TransactionMetadata struct {
	Blockhash     util.Uint256 `json:"blockhash,omitempty"`
	Confirmations int          `json:"confirmations,omitempty"`
	Timestamp     uint64       `json:"blocktime,omitempty"`
	VMState       string       `json:"vmstate,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface.
func (t TransactionOutputRaw) MarshalJSON() ([]byte, error) {
	output, err := json.Marshal(t.TransactionMetadata)
	if err != nil {
		return nil, err
	}
	txBytes, err := json.Marshal(&t.Transaction)
	if err != nil {
		return nil, err
	}

	// Merge the two JSON objects.
	if output[len(output)-2] != '{' {
		output[len(output)-1] = ','
	} else {
		output = output[:len(output)-1]
	}
	output = append(output, txBytes[1:]...)
	return output, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *TransactionOutputRaw) UnmarshalJSON(data []byte) error {
	err := json.Unmarshal(data, &t.TransactionMetadata)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &t.Transaction)
}
