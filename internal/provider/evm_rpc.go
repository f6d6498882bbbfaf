package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const defaultEVMRPCURL = "https://cloudflare-eth.com"

// erc20BalanceOfSelector is the first four bytes of keccak256("balanceOf(address)").
const erc20BalanceOfSelector = "0x70a08231"

// EVMRPCClient queries an EVM JSON-RPC node for native and ERC-20 balances.
// Per-token calls go through a shared token-bucket limiter so a full token
// scan stays inside public-endpoint budgets.
type EVMRPCClient struct {
	client  *http.Client
	rpcURL  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewEVMRPCClient(tracer trace.Tracer, rpcURL string, callsPerMin int) *EVMRPCClient {
	rpcURL = strings.TrimSpace(rpcURL)
	if rpcURL == "" {
		rpcURL = defaultEVMRPCURL
	}
	if callsPerMin <= 0 {
		callsPerMin = 60
	}
	return &EVMRPCClient{
		client:  &http.Client{Timeout: 20 * time.Second},
		rpcURL:  strings.TrimRight(rpcURL, "/"),
		tracer:  tracer,
		limiter: NewRateLimiter(callsPerMin, time.Minute/time.Duration(callsPerMin)),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      int       `json:"id"`
	Result  string    `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GetBalance returns the native balance of an address in wei.
func (c *EVMRPCClient) GetBalance(ctx context.Context, addr string) (*big.Int, error) {
	ctx, span := c.tracer.Start(ctx, "evm-rpc.get-balance")
	defer span.End()

	return c.callForQuantity(ctx, "eth_getBalance", []any{addr, "latest"})
}

// ERC20BalanceOf returns the raw token balance of holder on the given
// contract via an eth_call of balanceOf(address).
func (c *EVMRPCClient) ERC20BalanceOf(ctx context.Context, contract, holder string) (*big.Int, error) {
	ctx, span := c.tracer.Start(ctx, "evm-rpc.erc20-balance-of")
	defer span.End()

	data, err := encodeBalanceOf(holder)
	if err != nil {
		return nil, err
	}
	params := []any{map[string]string{"to": contract, "data": data}, "latest"}
	return c.callForQuantity(ctx, "eth_call", params)
}

func (c *EVMRPCClient) callForQuantity(ctx context.Context, method string, params []any) (*big.Int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	raw, _ := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("evm rpc error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out rpcResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode rpc payload: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", out.Error.Code, out.Error.Message)
	}

	return parseHexQuantity(out.Result)
}

func parseHexQuantity(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty rpc result")
	}
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return big.NewInt(0), nil
	}
	n := new(big.Int)
	if _, ok := n.SetString(s, 16); !ok {
		return nil, fmt.Errorf("invalid hex quantity: %s", s)
	}
	return n, nil
}

func encodeBalanceOf(holder string) (string, error) {
	h := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(holder)), "0x")
	if len(h) != 40 {
		return "", fmt.Errorf("invalid holder address: %s", holder)
	}
	for _, r := range h {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return "", fmt.Errorf("invalid holder address: %s", holder)
		}
	}
	// selector + address left-padded to 32 bytes
	return erc20BalanceOfSelector + strings.Repeat("0", 24) + h, nil
}
