package result

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/transaction"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/halyard-dev/neokit/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func TestInvokeMarshalJSON(t *testing.T) {
	sessionID := uuid.New()
	iteratorID := uuid.New()
	res := &Invoke{
		State:       "HALT",
		GasConsumed: 237626000,
		Script:      []byte{0x10},
		Stack: []stackitem.Item{
			stackitem.Make(1),
			stackitem.NewInterop(Iterator{ID: &iteratorID}),
		},
		Session: sessionID,
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)
	require.Contains(t, string(data), `"gasconsumed":"237626000"`)
	require.Contains(t, string(data), sessionID.String())
	require.Contains(t, string(data), `"interface":"IIterator"`)

	actual := new(Invoke)
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, res.State, actual.State)
	require.Equal(t, res.GasConsumed, actual.GasConsumed)
	require.Equal(t, res.Session, actual.Session)
	require.Len(t, actual.Stack, 2)
	require.Equal(t, stackitem.InteropT, actual.Stack[1].Type())
	iter, ok := actual.Stack[1].Value().(Iterator)
	require.True(t, ok)
	require.NotNil(t, iter.ID)
	require.Equal(t, iteratorID, *iter.ID)
}

func TestInvokeExpandedIterator(t *testing.T) {
	res := new(Invoke)
	require.NoError(t, json.Unmarshal([]byte(`{
		"state":"HALT","gasconsumed":"1","script":"EA==",
		"stack":[{"type":"InteropInterface","iterator":[{"type":"Integer","value":"7"}],"truncated":true}]}`), res))
	require.Len(t, res.Stack, 1)
	iter, ok := res.Stack[0].Value().(Iterator)
	require.True(t, ok)
	require.Nil(t, iter.ID)
	require.True(t, iter.Truncated)
	require.Len(t, iter.Values, 1)
	v, err := iter.Values[0].TryInteger()
	require.NoError(t, err)
	require.EqualValues(t, 7, v.Int64())
}

func TestInvokeExecutionError(t *testing.T) {
	res := &Invoke{State: "HALT"}
	require.NoError(t, res.ExecutionError())

	res = &Invoke{State: "FAULT", FaultException: "at instruction 5: oops"}
	err := res.ExecutionError()
	var failErr *clienterr.ExecutionFailedError
	require.ErrorAs(t, err, &failErr)
	require.Equal(t, "FAULT", failErr.State)
	require.Contains(t, failErr.Exception, "oops")
}

func TestApplicationLogUnmarshal(t *testing.T) {
	txid := util.Uint256{1, 2, 3}
	data := `{
		"txid": "0x` + txid.StringLE() + `",
		"executions": [{
			"trigger": "Application",
			"vmstate": "HALT",
			"gasconsumed": "997780",
			"stack": [{"type":"Boolean","value":true}],
			"notifications": [{
				"contract": "0xd2a4cff31913016155e38e474a2c06d08be276cf",
				"eventname": "Transfer",
				"state": {"type":"Array","value":[{"type":"Any"}]}
			}]
		}]
	}`
	l := new(ApplicationLog)
	require.NoError(t, json.Unmarshal([]byte(data), l))
	require.Equal(t, txid, l.Container)
	require.Len(t, l.Executions, 1)
	e := l.Executions[0]
	require.Equal(t, "Application", e.Trigger)
	require.Equal(t, "HALT", e.VMState)
	require.EqualValues(t, 997780, e.GasConsumed)
	require.Len(t, e.Stack, 1)
	require.Len(t, e.Events, 1)
	require.Equal(t, "Transfer", e.Events[0].Name)

	require.Error(t, json.Unmarshal([]byte(`{"executions":[]}`), l))

	t.Run("round trip", func(t *testing.T) {
		out, err := json.Marshal(l)
		require.NoError(t, err)
		back := new(ApplicationLog)
		require.NoError(t, json.Unmarshal(out, back))
		require.Equal(t, l, back)
	})
}

func TestTransactionOutputRawJSON(t *testing.T) {
	tx := transaction.New([]byte{0x51}, 100)
	tx.Nonce = 123
	tx.ValidUntilBlock = 1000
	tx.Signers = []transaction.Signer{{Account: util.Uint160{1}, Scopes: transaction.CalledByEntry}}
	tx.Scripts = []transaction.Witness{{InvocationScript: []byte{}, VerificationScript: []byte{}}}

	out := TransactionOutputRaw{
		Transaction: *tx,
		TransactionMetadata: TransactionMetadata{
			Blockhash:     util.Uint256{5, 6, 7},
			Confirmations: 10,
			Timestamp:     1616078164,
			VMState:       "HALT",
		},
	}
	data, err := json.Marshal(out)
	require.NoError(t, err)
	// One flat object with both transaction and metadata fields.
	require.Contains(t, string(data), `"confirmations":10`)
	require.Contains(t, string(data), `"validuntilblock":1000`)

	actual := new(TransactionOutputRaw)
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, out.TransactionMetadata, actual.TransactionMetadata)
	require.Equal(t, tx.Hash(), actual.Hash())
}

func TestVersionUnmarshal(t *testing.T) {
	data := `{
		"tcpport": 10333,
		"nonce": 1677922561,
		"useragent": "/NEO-GO:0.98.0/",
		"protocol": {
			"addressversion": 53,
			"network": 860833102,
			"msperblock": 15000,
			"maxtraceableblocks": 2102400,
			"maxvaliduntilblockincrement": 5760,
			"maxtransactionsperblock": 512,
			"memorypoolmaxtransactions": 50000,
			"validatorscount": 7,
			"initialgasdistribution": 5200000000000000
		}
	}`
	v := new(Version)
	require.NoError(t, json.Unmarshal([]byte(data), v))
	require.EqualValues(t, 10333, v.TCPPort)
	require.EqualValues(t, 860833102, v.Protocol.Network)
	require.EqualValues(t, 5760, v.Protocol.MaxValidUntilBlockIncrement)
	require.EqualValues(t, 7, v.Protocol.ValidatorsCount)
}

func TestNEP17BalancesUnmarshal(t *testing.T) {
	data := `{
		"address": "NjEQfanGEXihz85eTnacQuhqhNnA6LxpLp",
		"balance": [{
			"assethash": "0xd2a4cff31913016155e38e474a2c06d08be276cf",
			"amount": "10000000",
			"decimals": "8",
			"symbol": "GAS",
			"lastupdatedblock": 14
		}]
	}`
	b := new(NEP17Balances)
	require.NoError(t, json.Unmarshal([]byte(data), b))
	require.Len(t, b.Balances, 1)
	require.Equal(t, "10000000", b.Balances[0].Amount)
	require.Equal(t, 8, b.Balances[0].Decimals)
	require.EqualValues(t, 14, b.Balances[0].LastUpdated)
	require.Equal(t, "d2a4cff31913016155e38e474a2c06d08be276cf", b.Balances[0].Asset.StringLE())

	amount, err := b.Balances[0].FormattedAmount()
	require.NoError(t, err)
	require.Equal(t, "0.1", amount)
}

func TestNEP17BalanceFormattedAmount(t *testing.T) {
	cases := []struct {
		amount   string
		decimals int
		expected string
	}{
		{"10000000", 8, "0.1"},
		{"150000000", 8, "1.5"},
		{"-150000000", 8, "-1.5"},
		{"7", 0, "7"},
		{"1234", 2, "12.34"},
		{"1000", 3, "1"},
	}
	for _, tc := range cases {
		b := NEP17Balance{Amount: tc.amount, Decimals: tc.decimals}
		actual, err := b.FormattedAmount()
		require.NoError(t, err)
		require.Equal(t, tc.expected, actual)
	}

	b := NEP17Balance{Amount: "not-a-number", Decimals: 8}
	_, err := b.FormattedAmount()
	require.ErrorIs(t, err, clienterr.ErrInvalidFormat)
}

func TestContractStateUnmarshal(t *testing.T) {
	script := []byte{0x10, 0x41, 0x1a, 0xf7, 0x7b, 0x67}
	data := `{
		"id": -4,
		"updatecounter": 0,
		"hash": "0xda65b600f7124ce6c79950c1772a36403104f2be",
		"nef": {
			"magic": 860243278,
			"compiler": "neo-core-v3.0",
			"script": "` + base64.StdEncoding.EncodeToString(script) + `",
			"checksum": 3921333105
		},
		"manifest": {"name": "LedgerContract"}
	}`
	cs := new(ContractState)
	require.NoError(t, json.Unmarshal([]byte(data), cs))
	require.EqualValues(t, -4, cs.ID)
	require.Equal(t, script, cs.NEF.Script)
	require.Equal(t, "da65b600f7124ce6c79950c1772a36403104f2be", cs.Hash.StringLE())
	require.Contains(t, string(cs.Manifest), "LedgerContract")
}
