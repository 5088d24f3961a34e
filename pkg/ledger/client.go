// Package ledger is the JSON-RPC 2.0 client for the remote ledger node. It
// exposes exactly the three surfaces the gateway needs: the bulk
// program-account scan, point account lookups, and opaque transaction
// submission with confirmation.
package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"

	"blocksd/pkg/logger"
)

// Account is one raw ledger account: address, owning program and data bytes.
type Account struct {
	Address string
	Owner   string
	Data    []byte
}

// Client talks to a single RPC endpoint.
type Client struct {
	endpoint string
	hc       *fasthttp.Client
	timeout  time.Duration
	reqID    uint64
}

// New returns a client for the given endpoint. timeout bounds each RPC call;
// zero means 30s.
func New(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		hc:       &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		timeout:  timeout,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC exchange. HTTP 429 and the node's shed-load
// error code both map to ErrRateLimited so callers have a single signal to
// back off on.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      atomic.AddUint64(&c.reqID, 1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); rem < timeout {
			timeout = rem
		}
	}
	if err := c.hc.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("rpc %s: %w", method, err)
	}
	if resp.StatusCode() == fasthttp.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("rpc %s: http %d", method, resp.StatusCode())
	}

	var out rpcResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("rpc %s: bad response: %w", method, err)
	}
	if out.Error != nil {
		if out.Error.Code == rpcErrRateLimit {
			return nil, ErrRateLimited
		}
		return nil, &nodeError{method: method, code: out.Error.Code, message: out.Error.Message}
	}
	return out.Result, nil
}

// accountData is the node's base64 account envelope.
type accountData struct {
	Data  []string `json:"data"` // [payload, "base64"]
	Owner string   `json:"owner"`
}

func (a accountData) decode() ([]byte, error) {
	if len(a.Data) == 0 {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(a.Data[0])
}

// GetProgramAccounts returns every account owned by the program, in the
// order the node reports them. No byte filters are applied; classification
// happens client side.
func (c *Client) GetProgramAccounts(ctx context.Context, program string) ([]Account, error) {
	params := []any{program, map[string]any{"encoding": "base64"}}
	raw, err := c.call(ctx, "getProgramAccounts", params)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Pubkey  string      `json:"pubkey"`
		Account accountData `json:"account"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("getProgramAccounts: bad result: %w", err)
	}
	out := make([]Account, 0, len(rows))
	for _, r := range rows {
		data, err := r.Account.decode()
		if err != nil {
			// one undecodable row must not sink the scan
			logger.Warn("account_data_undecodable", "address", r.Pubkey, "err", err)
			continue
		}
		out = append(out, Account{Address: r.Pubkey, Owner: r.Account.Owner, Data: data})
	}
	return out, nil
}

// GetAccountInfo fetches one account by address. A null value from the node
// maps to ErrNotFound.
func (c *Client) GetAccountInfo(ctx context.Context, addr string) (*Account, error) {
	params := []any{addr, map[string]any{"encoding": "base64"}}
	raw, err := c.call(ctx, "getAccountInfo", params)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Value *accountData `json:"value"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("getAccountInfo: bad result: %w", err)
	}
	if envelope.Value == nil {
		return nil, ErrNotFound
	}
	data, err := envelope.Value.decode()
	if err != nil {
		return nil, fmt.Errorf("getAccountInfo: bad data: %w", err)
	}
	return &Account{Address: addr, Owner: envelope.Value.Owner, Data: data}, nil
}

// SendTransaction submits an opaque signed transaction. A node-side refusal
// comes back as *WriteRejectedError; it is never retried here.
func (c *Client) SendTransaction(ctx context.Context, signedTx []byte) (string, error) {
	params := []any{base64.StdEncoding.EncodeToString(signedTx), map[string]any{"encoding": "base64"}}
	raw, err := c.call(ctx, "sendTransaction", params)
	if err != nil {
		var ne *nodeError
		if errors.As(err, &ne) {
			return "", &WriteRejectedError{Code: ne.code, Message: ne.message}
		}
		return "", err
	}
	var sig string
	if err := json.Unmarshal(raw, &sig); err != nil {
		return "", fmt.Errorf("sendTransaction: bad result: %w", err)
	}
	return sig, nil
}

// ConfirmTransaction polls the signature status until the node reports it
// confirmed, the node rejects it, or ctx expires.
func (c *Client) ConfirmTransaction(ctx context.Context, sig string) error {
	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()
	for {
		raw, err := c.call(ctx, "getSignatureStatuses", []any{[]string{sig}})
		if err != nil {
			return err
		}
		var envelope struct {
			Value []*struct {
				ConfirmationStatus string    `json:"confirmationStatus"`
				Err                *rpcError `json:"err"`
			} `json:"value"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("getSignatureStatuses: bad result: %w", err)
		}
		if len(envelope.Value) > 0 && envelope.Value[0] != nil {
			st := envelope.Value[0]
			if st.Err != nil {
				return &WriteRejectedError{Code: st.Err.Code, Message: st.Err.Message}
			}
			if st.ConfirmationStatus == "confirmed" || st.ConfirmationStatus == "finalized" {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}
