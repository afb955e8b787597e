package mixer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/resilience"
)

// RPCConfig locates a Kodi JSON-RPC endpoint.
type RPCConfig struct {
	URL      string
	User     string
	Password string
	Timeout  time.Duration
}

// RPCError is an error object returned by the JSON-RPC server.
type RPCError struct {
	Method  string
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s: json-rpc error %d: %s", e.Method, e.Code, e.Message)
}

// ErrInvalidResponse is returned when the reply is not a JSON-RPC response.
var ErrInvalidResponse = errors.New("invalid json-rpc response")

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int64  `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPC calls Kodi's JSON-RPC API over HTTP. Once a few calls in a row have
// failed, further calls fail immediately until the breaker cooldown ends.
type RPC struct {
	url     string
	http    *resty.Client
	breaker *resilience.Breaker
	lastID  atomic.Int64
}

// NewRPC creates a client. Only connection failures are retried because
// volume changes are not idempotent.
func NewRPC(cfg RPCConfig) *RPC {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 50 * time.Millisecond
	retryClient.RetryWaitMax = 250 * time.Millisecond
	retryClient.Logger = nil
	retryClient.CheckRetry = retryConnectionErrors

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "RemoteBrowser/1.0")
	if cfg.User != "" {
		client.SetBasicAuth(cfg.User, cfg.Password)
	}

	return &RPC{
		url:  cfg.URL,
		http: client,
		breaker: resilience.New("kodi-jsonrpc", resilience.Settings{
			Failures: 3,
			Cooldown: 30 * time.Second,
		}),
	}
}

func retryConnectionErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return err != nil && resp == nil, nil
}

// Call invokes method and decodes its result into result, which may be nil.
func (r *RPC) Call(ctx context.Context, method string, params, result any) error {
	return r.breaker.Do(func() error {
		return r.call(ctx, method, params, result)
	})
}

func (r *RPC) call(ctx context.Context, method string, params, result any) error {
	var reply rpcResponse
	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: r.lastID.Add(1)}).
		SetResult(&reply).
		Post(r.url)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: unexpected status %s", method, resp.Status())
	}
	if reply.Error != nil {
		reply.Error.Method = method
		return reply.Error
	}
	if len(reply.Result) == 0 {
		return fmt.Errorf("%s: %w", method, ErrInvalidResponse)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(reply.Result, result); err != nil {
		return fmt.Errorf("%s: %w: %v", method, ErrInvalidResponse, err)
	}
	return nil
}
