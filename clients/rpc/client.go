// Package rpc implements an account.Provider on top of a Starknet JSON-RPC
// node.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/NethermindEth/juno-sdk/utils"
)

type request struct {
	Version string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      uint64 `json:"id"`
}

type response struct {
	Version string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      uint64          `json:"id"`
}

type Client struct {
	url       string
	client    *http.Client
	log       utils.SimpleLogger
	listener  EventListener
	userAgent string
	nextID    atomic.Uint64
}

func NewClient(url string) *Client {
	return &Client{
		url:      url,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      utils.NewNopZapLogger(),
		listener: &SelectiveListener{},
	}
}

func (c *Client) WithLogger(log utils.SimpleLogger) *Client {
	c.log = log
	return c
}

func (c *Client) WithListener(l EventListener) *Client {
	c.listener = l
	return c
}

func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.client = client
	return c
}

func (c *Client) WithUserAgent(ua string) *Client {
	c.userAgent = ua
	return c
}

// Call invokes method with params and decodes the result into result.
// Node side failures are returned as *Error.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	c.listener.OnNewRequest(method)
	start := time.Now()

	err := c.call(ctx, method, params, result)
	if err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			c.listener.OnRequestFailed(method, rpcErr)
		} else {
			c.listener.OnRequestFailed(method, err)
		}
		c.log.Debugw("RPC request failed", "method", method, "err", err)
		return err
	}

	c.listener.OnRequestHandled(method, time.Since(start))
	return nil
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	req := request{
		Version: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return err
	}

	var resp response
	if err = json.Unmarshal(data, &resp); err != nil {
		if httpResp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s: %s", httpResp.Status, data)
		}
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if resp.ID != req.ID {
		return fmt.Errorf("response id %d does not match request id %d", resp.ID, req.ID)
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(resp.Result, result)
}
