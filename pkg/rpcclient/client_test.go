package rpcclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/config/netmode"
	"github.com/halyard-dev/neokit/pkg/neorpc"
	"github.com/halyard-dev/neokit/pkg/transaction"
	"github.com/halyard-dev/neokit/pkg/util"
	"github.com/stretchr/testify/require"
)

const testVersionResponse = `{"jsonrpc":"2.0","id":1,"result":{
	"tcpport":10333,"nonce":1677922561,"useragent":"/NEO-GO:0.98.0/",
	"protocol":{"addressversion":53,"network":860833102,"msperblock":15000,
	"maxtraceableblocks":2102400,"maxvaliduntilblockincrement":5760,
	"maxtransactionsperblock":512,"memorypoolmaxtransactions":50000,
	"validatorscount":7,"initialgasdistribution":5200000000000000}}}`

// startTestServer runs an HTTP server answering each supported method with a
// canned reply (raw JSON-RPC response bodies, %d expanded to the request id).
func startTestServer(t *testing.T, replies map[string]string) (*httptest.Server, *atomic.Int64) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		req := new(neorpc.Request)
		require.NoError(t, json.NewDecoder(r.Body).Decode(req))
		resp, ok := replies[req.Method]
		if !ok {
			resp = `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"Method not found"}}`
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, resp, req.ID)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(t *testing.T, replies map[string]string) (*Client, *atomic.Int64) {
	srv, calls := startTestServer(t, replies)
	c, err := New(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, calls
}

func TestClientInit(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"getversion": testVersionResponse,
	})

	_, err := c.GetNetwork()
	require.ErrorIs(t, err, clienterr.ErrNotConnected)

	require.NoError(t, c.Init())
	m, err := c.GetNetwork()
	require.NoError(t, err)
	require.Equal(t, netmode.MainNet, m)
}

func TestClientMagicOverride(t *testing.T) {
	srv, _ := startTestServer(t, map[string]string{
		"getversion": testVersionResponse,
	})
	c, err := New(context.Background(), srv.URL, Options{Magic: netmode.PrivNet})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	require.NoError(t, c.Init())
	m, err := c.GetNetwork()
	require.NoError(t, err)
	require.Equal(t, netmode.PrivNet, m)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := new(neorpc.Request)
		require.NoError(t, json.NewDecoder(r.Body).Decode(req))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":42}`, req.ID)
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), srv.URL, Options{InitialBackoff: time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	h, err := c.GetBlockCount()
	require.NoError(t, err)
	require.Equal(t, uint32(42), h)
	require.EqualValues(t, 3, calls.Load())
}

func TestClientNoRetryOnRPCError(t *testing.T) {
	c, calls := newTestClient(t, map[string]string{
		"getrawtransaction": `{"jsonrpc":"2.0","id":%d,"error":{"code":-103,"message":"Unknown transaction"}}`,
	})

	_, err := c.GetRawTransaction(util.Uint256{1, 2, 3})
	require.ErrorIs(t, err, clienterr.ErrNotFound)
	var rpcErr *neorpc.Error
	require.ErrorAs(t, err, &rpcErr)
	require.EqualValues(t, neorpc.ErrUnknownTransactionCode, rpcErr.Code)
	require.EqualValues(t, 1, calls.Load())
}

func TestClientNoRetryOnBadRequest(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), srv.URL, Options{InitialBackoff: time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	_, err = c.GetBlockCount()
	require.ErrorIs(t, err, clienterr.ErrTransport)
	require.EqualValues(t, 1, calls.Load())
}

func TestClientContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	c, err := New(ctx, srv.URL, Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	_, err = c.GetBlockCount()
	require.ErrorIs(t, err, clienterr.ErrTimeout)
}

func TestClientContractStateCache(t *testing.T) {
	h, err := util.Uint160DecodeStringLE("cc5e4edd9f5f8dba8bb65734541df7a1c081c67b")
	require.NoError(t, err)
	c, calls := newTestClient(t, map[string]string{
		"getcontractstate": `{"jsonrpc":"2.0","id":%d,"result":{
			"id":-7,"updatecounter":0,
			"hash":"0xcc5e4edd9f5f8dba8bb65734541df7a1c081c67b",
			"nef":{"magic":860243278,"compiler":"neo-core-v3.0","script":"EEEa93tn","checksum":3443651689},
			"manifest":{"name":"PolicyContract"}}}`,
	})

	cs, err := c.GetContractStateByHash(h)
	require.NoError(t, err)
	require.Equal(t, h, cs.Hash)
	require.EqualValues(t, -7, cs.ID)

	cs2, err := c.GetContractStateByHash(h)
	require.NoError(t, err)
	require.Equal(t, cs, cs2)
	require.EqualValues(t, 1, calls.Load())

	c.InvalidateContractCache()
	_, err = c.GetContractStateByHash(h)
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
}

func TestClientSendRawTransaction(t *testing.T) {
	tx := transaction.New([]byte{0x51}, 0)
	tx.Signers = []transaction.Signer{{Scopes: transaction.CalledByEntry}}
	tx.Scripts = []transaction.Witness{{}}

	var gotParam string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := new(neorpc.Request)
		require.NoError(t, json.NewDecoder(r.Body).Decode(req))
		require.Equal(t, "sendrawtransaction", req.Method)
		require.Len(t, req.Params, 1)
		gotParam = req.Params[0].(string)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":{"hash":"0x%s"}}`, req.ID, tx.Hash().StringLE())
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	h, err := c.SendRawTransaction(tx)
	require.NoError(t, err)
	require.Equal(t, tx.Hash(), h)

	expected, err := tx.Bytes()
	require.NoError(t, err)
	require.Equal(t, base64.StdEncoding.EncodeToString(expected), gotParam)
}

func TestClientInvokeScriptSigners(t *testing.T) {
	acc := util.Uint160{1, 2, 3}
	var gotSigners []json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64            `json:"id"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Params, 2)
		require.NoError(t, json.Unmarshal(req.Params[1], &gotSigners))
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":{
			"state":"HALT","gasconsumed":"997780","script":"UQ==","stack":[{"type":"Integer","value":"1"}]}}`, req.ID)
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	res, err := c.InvokeScript([]byte{0x51}, []transaction.Signer{
		{Account: acc, Scopes: transaction.CalledByEntry},
	})
	require.NoError(t, err)
	require.NoError(t, res.ExecutionError())
	require.EqualValues(t, 997780, res.GasConsumed)
	require.Len(t, res.Stack, 1)

	require.Len(t, gotSigners, 1)
	var sw neorpc.SignerWithWitness
	require.NoError(t, json.Unmarshal(gotSigners[0], &sw))
	require.Equal(t, acc, sw.Account)
	require.Equal(t, transaction.CalledByEntry, sw.Scopes)
}

func TestClientInvokeFault(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"invokescript": `{"jsonrpc":"2.0","id":%d,"result":{
			"state":"FAULT","gasconsumed":"10","script":"UQ==","stack":[],
			"exception":"at instruction 0 (THROW): unhandled exception"}}`,
	})

	res, err := c.InvokeScript([]byte{0x51}, nil)
	require.NoError(t, err)
	err = res.ExecutionError()
	var failErr *clienterr.ExecutionFailedError
	require.ErrorAs(t, err, &failErr)
	require.Equal(t, "FAULT", failErr.State)
	require.Contains(t, failErr.Exception, "THROW")
}

func TestClientGetFeePerByte(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"invokefunction": `{"jsonrpc":"2.0","id":%d,"result":{
			"state":"HALT","gasconsumed":"30000","script":"","stack":[{"type":"Integer","value":"1000"}]}}`,
	})

	fee, err := c.GetFeePerByte()
	require.NoError(t, err)
	require.EqualValues(t, 1000, fee)
}

func TestClientBadEndpoint(t *testing.T) {
	_, err := New(context.Background(), ":://not a url", Options{})
	require.ErrorIs(t, err, clienterr.ErrInvalidArgument)
}

func TestClientPing(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"getblockcount": `{"jsonrpc":"2.0","id":%d,"result":100}`,
	})
	require.NoError(t, c.Ping())
}

func TestClientRequestIDsMonotonic(t *testing.T) {
	var ids []uint64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := new(neorpc.Request)
		require.NoError(t, json.NewDecoder(r.Body).Decode(req))
		ids = append(ids, req.ID)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":1}`, req.ID)
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	for range [3]struct{}{} {
		_, err := c.GetBlockCount()
		require.NoError(t, err)
	}
	require.Equal(t, []uint64{1, 2, 3}, ids)
}

func TestClientErrorNilResult(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"getblockcount": `{"jsonrpc":"2.0","id":%d}`,
	})
	_, err := c.GetBlockCount()
	require.ErrorIs(t, err, clienterr.ErrInternal)
	require.False(t, errors.Is(err, clienterr.ErrTransport))
}
