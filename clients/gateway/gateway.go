package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/NethermindEth/juno-sdk/account"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/NethermindEth/juno-sdk/utils"
	"github.com/NethermindEth/juno-sdk/validator"
	"go.uber.org/zap"
)

var _ account.Provider = (*Client)(nil)

type Backoff func(wait time.Duration) time.Duration

// Client talks to the sequencer: queries go to the feeder gateway and are
// retried, transactions go to the gateway and are sent once.
type Client struct {
	feederURL  string
	gatewayURL string
	client     *http.Client
	backoff    Backoff
	maxRetries int
	maxWait    time.Duration
	minWait    time.Duration
	log        utils.StructuredLogger
	userAgent  string
	apiKey     string
	listener   EventListener
	timeouts   atomic.Pointer[Timeouts]
}

func (c *Client) WithListener(l EventListener) *Client {
	c.listener = l
	return c
}

func (c *Client) WithBackoff(b Backoff) *Client {
	c.backoff = b
	return c
}

func (c *Client) WithMaxRetries(num int) *Client {
	c.maxRetries = num
	return c
}

func (c *Client) WithMinWait(d time.Duration) *Client {
	c.minWait = d
	return c
}

func (c *Client) WithLogger(log utils.StructuredLogger) *Client {
	c.log = log
	return c
}

func (c *Client) WithUserAgent(ua string) *Client {
	c.userAgent = ua
	return c
}

func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = key
	return c
}

func (c *Client) WithTimeouts(timeouts *Timeouts) *Client {
	c.timeouts.Store(timeouts)
	return c
}

func ExponentialBackoff(wait time.Duration) time.Duration {
	return wait * 2
}

func NopBackoff(d time.Duration) time.Duration {
	return 0
}

// NewClient expects the base URLs of the feeder gateway and the gateway,
// usually utils.Network.FeederURL and GatewayURL.
func NewClient(feederURL, gatewayURL string) *Client {
	defaultTimeouts, _ := NewTimeouts(DefaultTimeout)
	client := &Client{
		feederURL:  strings.TrimSuffix(feederURL, "/"),
		gatewayURL: strings.TrimSuffix(gatewayURL, "/"),
		client:     &http.Client{},
		backoff:    ExponentialBackoff,
		maxRetries: 5,
		maxWait:    4 * time.Second,
		minWait:    500 * time.Millisecond,
		log:        utils.NewNopZapLogger(),
		listener:   &SelectiveListener{},
	}
	client.timeouts.Store(defaultTimeouts)
	return client
}

func (c *Client) buildQueryString(endpoint string, args map[string]string) string {
	base, err := url.Parse(c.feederURL + "/" + endpoint)
	if err != nil {
		panic("Malformed feeder base URL")
	}

	params := url.Values{}
	for k, v := range args {
		params.Add(k, v)
	}
	base.RawQuery = params.Encode()
	return base.String()
}

func (c *Client) newRequest(ctx context.Context, method, reqURL string, body []byte) (*http.Request, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Throttling-Bypass", c.apiKey)
	}
	return req, nil
}

// query performs a feeder request, retrying transport failures, throttling
// and server errors with backoff. Starknet errors are returned immediately.
func (c *Client) query(ctx context.Context, method, queryURL string, body []byte) ([]byte, error) {
	var err error
	wait := time.Duration(0)
	for range c.maxRetries + 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
			var data []byte
			var retry bool
			data, retry, err = c.do(ctx, method, queryURL, body)
			if err == nil || !retry {
				return data, err
			}

			if wait < c.minWait {
				wait = c.minWait
			} else {
				wait = min(c.backoff(wait), c.maxWait)
			}
			c.log.Debug("Failed query to feeder, retrying...",
				zap.String("req", queryURL),
				zap.String("retryAfter", wait.String()),
				zap.Error(err),
				zap.String("newHTTPTimeout", c.timeouts.Load().Current().String()),
			)
		}
	}
	c.log.Warn("Giving up on feeder query", zap.String("req", queryURL), zap.Error(err))
	return nil, err
}

// do sends a single request and reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, method, reqURL string, body []byte) ([]byte, bool, error) {
	req, err := c.newRequest(ctx, method, reqURL, body)
	if err != nil {
		return nil, false, err
	}

	timeouts := c.timeouts.Load()
	httpClient := *c.client
	httpClient.Timeout = timeouts.Current()

	reqTimer := time.Now()
	res, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		timeouts.Increase()
		return nil, true, err
	}
	defer res.Body.Close()
	c.listener.OnResponse(req.URL.Path, res.StatusCode, time.Since(reqTimer))

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, true, err
	}

	switch {
	case res.StatusCode == http.StatusOK:
		timeouts.Decrease()
		return data, false, nil
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, true, errorFromResponse(res.StatusCode, data)
	case res.StatusCode >= http.StatusInternalServerError:
		timeouts.Increase()
		return nil, true, errorFromResponse(res.StatusCode, data)
	default:
		return nil, false, errorFromResponse(res.StatusCode, data)
	}
}

// send posts to the gateway exactly once. Transactions are not idempotent
// from the caller's point of view, so failures are never retried here.
func (c *Client) send(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	data, _, err := c.do(ctx, http.MethodPost, c.gatewayURL+"/"+endpoint, body)
	return data, err
}

func encodeTransaction(txn *starknet.BroadcastedTransaction) ([]byte, error) {
	if txn == nil {
		return nil, errors.New("nil transaction")
	}
	if err := validator.Validator().Struct(txn); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}
	return json.Marshal(txn)
}

func decode[T any](data []byte) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Client) Nonce(ctx context.Context, address *felt.Felt) (*felt.Felt, error) {
	queryURL := c.buildQueryString("get_nonce", map[string]string{
		"contractAddress": address.String(),
		"blockNumber":     "pending",
	})

	data, err := c.query(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, err
	}
	return decode[felt.Felt](data)
}

func (c *Client) EstimateFee(ctx context.Context, txn *starknet.BroadcastedTransaction) (*starknet.FeeEstimate, error) {
	body, err := encodeTransaction(txn)
	if err != nil {
		return nil, err
	}

	queryURL := c.buildQueryString("estimate_fee", map[string]string{"blockNumber": "pending"})
	data, err := c.query(ctx, http.MethodPost, queryURL, body)
	if err != nil {
		return nil, err
	}
	return decode[starknet.FeeEstimate](data)
}

func (c *Client) Simulate(ctx context.Context, txn *starknet.BroadcastedTransaction) (*starknet.SimulationResult, error) {
	body, err := encodeTransaction(txn)
	if err != nil {
		return nil, err
	}

	queryURL := c.buildQueryString("simulate_transaction", map[string]string{"blockNumber": "pending"})
	data, err := c.query(ctx, http.MethodPost, queryURL, body)
	if err != nil {
		return nil, err
	}
	return decode[starknet.SimulationResult](data)
}

func (c *Client) AddTransaction(ctx context.Context, txn *starknet.BroadcastedTransaction) (*starknet.AddTransactionResult, error) {
	body, err := encodeTransaction(txn)
	if err != nil {
		return nil, err
	}

	data, err := c.send(ctx, "add_transaction", body)
	if err != nil {
		return nil, err
	}
	result, err := decode[starknet.AddTransactionResult](data)
	if err != nil {
		return nil, err
	}
	c.log.Info("Transaction accepted by gateway",
		zap.String("code", string(result.Code)),
		zap.Stringer("hash", result.TransactionHash),
	)
	return result, nil
}
