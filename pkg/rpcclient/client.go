/*
Package rpcclient implements an HTTP JSON-RPC 2.0 client for Neo nodes.

The base Client handles the request/response envelope, request identifiers,
timeouts and bounded retries for transport-level failures. Typed methods for
the supported RPC calls are built on top of it, and the invoker/actor/gas
subpackages provide progressively higher-level APIs for test invocations,
state-changing transactions and fee estimation.
*/
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	lru "github.com/hashicorp/golang-lru"
	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/config/netmode"
	"github.com/halyard-dev/neokit/pkg/neorpc"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout    = 4 * time.Second
	defaultRequestTimeout = 30 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second

	// contractCacheSize limits the number of contract states kept by the
	// client, see GetContractStateByHash.
	contractCacheSize = 256
)

// Client represents a JSON-RPC client for a remote Neo RPC node. It is safe
// for concurrent use.
type Client struct {
	cli      *http.Client
	endpoint *url.URL
	ctx      context.Context
	opts     Options
	log      *zap.Logger
	requestF func(*neorpc.Request) (*neorpc.Response, error)

	cacheLock sync.RWMutex
	cache     cache

	contracts *lru.Cache

	latestReqID atomic.Uint64
}

// Options defines options for the RPC client. All values are optional.
type Options struct {
	// DialTimeout limits TCP connection establishment, 4s by default.
	DialTimeout time.Duration
	// RequestTimeout limits a single RPC round-trip, 30s by default.
	RequestTimeout time.Duration
	// MaxConnsPerHost limits the total number of connections per host,
	// unlimited by default.
	MaxConnsPerHost int
	// MaxRetries is the number of retries performed on transport errors
	// and HTTP 5xx replies. RPC-level errors are never retried.
	MaxRetries uint64
	// InitialBackoff is the first retry delay, 200ms by default. Delays
	// grow exponentially and are capped by MaxBackoff (5s by default).
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Magic overrides the network magic reported by getversion when
	// non-zero.
	Magic netmode.Magic
	// Logger is used for retry/submission diagnostics, a nop logger by
	// default.
	Logger *zap.Logger
}

// cache stores the RPC-node-related information the client is bound to.
type cache struct {
	initDone                    bool
	network                     netmode.Magic
	maxValidUntilBlockIncrement uint32
	validatorsCount             byte
}

// New returns a new Client ready to use. Call Init before any method that
// needs the network magic (transaction signing helpers in particular).
func New(ctx context.Context, endpoint string, opts Options) (*Client, error) {
	cl := new(Client)
	if err := initClient(ctx, cl, endpoint, opts); err != nil {
		return nil, err
	}
	return cl, nil
}

func initClient(ctx context.Context, cl *Client, endpoint string, opts Options) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", clienterr.ErrInvalidArgument, err)
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cl.ctx = ctx
	cl.cli = &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: opts.DialTimeout,
			}).DialContext,
			MaxConnsPerHost: opts.MaxConnsPerHost,
		},
		Timeout: opts.RequestTimeout,
	}
	cl.endpoint = u
	cl.opts = opts
	cl.log = opts.Logger
	cl.requestF = cl.makeHTTPRequest
	cl.contracts, _ = lru.New(contractCacheSize)
	return nil
}

func (c *Client) getRequestID() uint64 {
	return c.latestReqID.Add(1)
}

// Init fetches the network parameters from the RPC node and caches them.
// The network magic is taken from the getversion reply unless Options.Magic
// overrides it. This method must be called before GetNetwork and before
// using the actor layer.
func (c *Client) Init() error {
	version, err := c.GetVersion()
	if err != nil {
		return fmt.Errorf("failed to get network parameters: %w", err)
	}

	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	c.cache.network = version.Protocol.Network
	if c.opts.Magic != 0 {
		c.cache.network = c.opts.Magic
	}
	c.cache.maxValidUntilBlockIncrement = version.Protocol.MaxValidUntilBlockIncrement
	c.cache.validatorsCount = version.Protocol.ValidatorsCount
	c.cache.initDone = true
	return nil
}

// GetNetwork returns the network magic the client is operating on. The
// client has to be initialized with Init first.
func (c *Client) GetNetwork() (netmode.Magic, error) {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()

	if !c.cache.initDone {
		return 0, clienterr.ErrNotConnected
	}
	return c.cache.network, nil
}

// Close closes unused underlying network connections.
func (c *Client) Close() {
	c.cli.CloseIdleConnections()
}

// httpError is a transient server-side failure worth retrying.
type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d/%s", e.code, http.StatusText(e.code))
}

func (c *Client) performRequest(method string, p []any, v any) error {
	if p == nil {
		p = []any{}
	}
	var r = neorpc.Request{
		JSONRPC: neorpc.JSONRPCVersion,
		Method:  method,
		Params:  p,
		ID:      c.getRequestID(),
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.opts.InitialBackoff
	exp.MaxInterval = c.opts.MaxBackoff
	b := backoff.WithContext(backoff.WithMaxRetries(exp, c.opts.MaxRetries), c.ctx)

	var raw *neorpc.Response
	err := backoff.RetryNotify(func() error {
		var err error
		raw, err = c.requestF(&r)
		if err == nil {
			return nil
		}
		var httpErr *httpError
		if errors.As(err, &httpErr) && httpErr.code < 500 {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, d time.Duration) {
		c.log.Debug("retrying RPC request",
			zap.String("method", method),
			zap.Duration("delay", d),
			zap.Error(err))
	})
	if err != nil {
		if c.ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", clienterr.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %w", clienterr.ErrTransport, err)
	}
	if raw.Error != nil {
		return raw.Error
	}
	if raw.Result == nil {
		return fmt.Errorf("%w: no result returned", clienterr.ErrInternal)
	}
	return json.Unmarshal(raw.Result, v)
}

func (c *Client) makeHTTPRequest(r *neorpc.Request) (*neorpc.Response, error) {
	var (
		buf = new(bytes.Buffer)
		raw = new(neorpc.Response)
	)

	if err := json.NewEncoder(buf).Encode(r); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, c.endpoint.String(), buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The node might send proper JSON anyway, so look there first and if
	// it parses, it has more relevant data than the HTTP error code.
	err = json.NewDecoder(resp.Body).Decode(raw)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &httpError{code: resp.StatusCode}
		}
		return nil, fmt.Errorf("JSON decoding: %w", err)
	}
	return raw, nil
}

// Ping attempts a trivial request to the endpoint and returns an error if
// the node can't be reached.
func (c *Client) Ping() error {
	var resp uint32
	return c.performRequest("getblockcount", nil, &resp)
}

// InvalidateContractCache drops all cached contract states, useful after
// contract updates.
func (c *Client) InvalidateContractCache() {
	c.contracts.Purge()
}
