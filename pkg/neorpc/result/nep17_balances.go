package result

import (
	"fmt"
	"strconv"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/encoding/fixedn"
	"github.com/halyard-dev/neokit/pkg/util"
)

// NEP17Balances is a result for the getnep17balances RPC call.
type NEP17Balances struct {
	Balances []NEP17Balance `json:"balance"`
	Address  string         `json:"address"`
}

// NEP17Balance represents the balance of a single NEP-17 asset.
type NEP17Balance struct {
	Asset       util.Uint160 `json:"assethash"`
	Amount      string       `json:"amount"`
	Decimals    int          `json:"decimals,string"`
	LastUpdated uint32       `json:"lastupdatedblock"`
	Name        string       `json:"name,omitempty"`
	Symbol      string       `json:"symbol,omitempty"`
}

// FormattedAmount converts the raw integer Amount into its decimal string
// form using the asset's Decimals ("10000000" with 8 decimals becomes "0.1").
func (b *NEP17Balance) FormattedAmount() (string, error) {
	v, err := strconv.ParseInt(b.Amount, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: bad amount: %v", clienterr.ErrInvalidFormat, err)
	}
	if b.Decimals == 8 {
		return fixedn.Fixed8(v).String(), nil
	}
	return fixedn.ToString(v, b.Decimals), nil
}
