// This file implements the JSON-RPC-backed ledger client used for account
// existence lookups during dispersal planning.
//
// RPC CLIENT ARCHITECTURE:
// The RPCClient wraps the Resty HTTP client with toolkit-specific behavior:
//   - Connection Management: Timeout configuration and bounded retry policy
//   - Request/Response Handling: JSON-RPC 2.0 envelopes with structured error parsing
//   - Observability: Request, response, and failure logging through internal/logging
//
// SUPPORTED READS:
//   - getAccountInfo: native account existence for SOL dispersals
//   - getTokenAccountsByOwner: associated token account existence for SPL mints
//
// Instruction building stays pure and local (see builder.go); the lookup is
// the only network traffic this repository ever generates.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agustinustheo/soltoolkit-sdk/internal/logging"
	"github.com/go-resty/resty/v2"
)

// RPCConfig holds connection tuning for the JSON-RPC lookup client.
// Defines the timeout and retry parameters applied to every lookup request.
type RPCConfig struct {
	Timeout          time.Duration // Per-request timeout
	RetryCount       int           // Retries on connection failure
	RetryWaitTime    time.Duration // Initial backoff between retries
	RetryMaxWaitTime time.Duration // Backoff ceiling between retries
}

// DefaultRPCConfig returns connection settings suitable for public RPC
// endpoints: generous timeout for congested nodes, small bounded retry for
// transient connection failures.
func DefaultRPCConfig() *RPCConfig {
	return &RPCConfig{
		Timeout:          30 * time.Second,
		RetryCount:       3,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
	}
}

// Validate checks RPC connection settings before a client is constructed.
func (c *RPCConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("rpc timeout must be positive, got %v", c.Timeout)
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("rpc retry count must be non-negative, got %d", c.RetryCount)
	}
	if c.RetryWaitTime < 0 || c.RetryMaxWaitTime < 0 {
		return fmt.Errorf("rpc retry wait times must be non-negative")
	}
	return nil
}

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// rpcErrorBody is the error object a JSON-RPC node returns on failed calls.
type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope. Result stays raw so each
// method can decode its own shape.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcErrorBody   `json:"error"`
}

// accountInfoResult is the result shape of getAccountInfo. Value is null
// when the account does not exist.
type accountInfoResult struct {
	Value json.RawMessage `json:"value"`
}

// tokenAccountsResult is the result shape of getTokenAccountsByOwner. An
// empty Value list means the owner holds no token account for the mint.
type tokenAccountsResult struct {
	Value []json.RawMessage `json:"value"`
}

// RPCClient implements the Client interface against a Solana JSON-RPC
// endpoint. Builders are inherited from the embedded pure Builder; only
// LookupAccount touches the network.
type RPCClient struct {
	*Builder

	client  *resty.Client
	baseURL string
}

// NewRPCClient creates a ledger client for the given RPC endpoint and mint.
// Pass an empty mint for native dispersals. A nil config uses defaults.
func NewRPCClient(baseURL string, mint Address, config *RPCConfig) (*RPCClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("rpc endpoint cannot be empty")
	}
	if config == nil {
		config = DefaultRPCConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rpc config: %w", err)
	}

	client := resty.New()

	// Route Resty's internal logging through our structured logging system
	client.SetLogger(logging.RestyLogger{})

	// Configure client with timeouts and headers
	client.
		SetTimeout(config.Timeout).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	// Add retry mechanism with custom retry conditions
	client.
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(config.RetryWaitTime).
		SetRetryMaxWaitTime(config.RetryMaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Only retry on connection errors, not HTTP errors
			return err != nil
		})

	// Custom request logging using structured logging
	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Making RPC request: %s %s", req.Method, req.URL)
		return nil
	})

	// Custom response logging using structured logging
	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("RPC response: %d %s (took %v)",
			resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})

	// Custom error logging using structured logging
	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("RPC request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &RPCClient{
		Builder: NewBuilder(mint),
		client:  client,
		baseURL: baseURL,
	}, nil
}

// call performs one JSON-RPC request and returns the decoded envelope.
// Surfaces transport failures, non-200 statuses, and node-side error objects
// as Go errors with enough context for the caller to retry the whole plan.
func (rc *RPCClient) call(ctx context.Context, method string, params []any) (*rpcResponse, error) {
	request := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	}

	var response rpcResponse
	resp, err := rc.client.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("")

	if err != nil {
		return nil, fmt.Errorf("failed to reach RPC endpoint %s: %w", rc.baseURL, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("RPC request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	if response.Error != nil {
		return nil, fmt.Errorf("RPC %s failed: %s (code %d)", method, response.Error.Message, response.Error.Code)
	}

	return &response, nil
}

// LookupAccount reports whether owner already holds the account needed to
// receive value for mint. Native dispersals (empty mint) check the system
// account via getAccountInfo; SPL dispersals check for any token account
// holding the mint via getTokenAccountsByOwner.
func (rc *RPCClient) LookupAccount(ctx context.Context, owner Address, mint Address) (bool, error) {
	if mint == "" {
		response, err := rc.call(ctx, "getAccountInfo", []any{
			owner.String(),
			map[string]any{"encoding": "base64"},
		})
		if err != nil {
			return false, err
		}

		var result accountInfoResult
		if err := json.Unmarshal(response.Result, &result); err != nil {
			return false, fmt.Errorf("failed to parse getAccountInfo result: %w", err)
		}

		// Null value means the account has never been funded
		return len(result.Value) > 0 && string(result.Value) != "null", nil
	}

	response, err := rc.call(ctx, "getTokenAccountsByOwner", []any{
		owner.String(),
		map[string]any{"mint": mint.String()},
		map[string]any{"encoding": "base64"},
	})
	if err != nil {
		return false, err
	}

	var result tokenAccountsResult
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return false, fmt.Errorf("failed to parse getTokenAccountsByOwner result: %w", err)
	}

	return len(result.Value) > 0, nil
}
