package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NethermindEth/juno-sdk/account"
	"github.com/NethermindEth/juno-sdk/clients/gateway"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/NethermindEth/juno-sdk/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return gateway.NewClient(srv.URL+"/feeder_gateway", srv.URL+"/gateway").
		WithBackoff(gateway.NopBackoff).
		WithMinWait(0).
		WithMaxRetries(2)
}

func invokeTxn() *starknet.BroadcastedTransaction {
	return &starknet.BroadcastedTransaction{
		Type:          starknet.TxnInvoke,
		Version:       new(felt.Felt).SetUint64(1),
		SenderAddress: new(felt.Felt).SetUint64(0x101),
		MaxFee:        new(felt.Felt).SetUint64(0x1),
		Signature:     []*felt.Felt{new(felt.Felt).SetUint64(1), new(felt.Felt).SetUint64(2)},
		Nonce:         new(felt.Felt).SetUint64(1),
		CallData:      []*felt.Felt{},
	}
}

func TestNonce(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/feeder_gateway/get_nonce", r.URL.Path)
		assert.Equal(t, "0x101", r.URL.Query().Get("contractAddress"))
		assert.Equal(t, "pending", r.URL.Query().Get("blockNumber"))
		_, err := w.Write([]byte(`"0x2a"`))
		assert.NoError(t, err)
	})

	nonce, err := client.Nonce(context.Background(), new(felt.Felt).SetUint64(0x101))
	require.NoError(t, err)
	assert.Equal(t, new(felt.Felt).SetUint64(42), nonce)
}

func TestEstimateFee(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/feeder_gateway/estimate_fee", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "INVOKE_FUNCTION", body["type"])
		assert.Equal(t, "0x101", body["sender_address"])

		_, err := w.Write([]byte(`{"overall_fee": 1000, "gas_price": 10, "gas_usage": 100, "unit": "wei"}`))
		assert.NoError(t, err)
	})

	estimate, err := client.EstimateFee(context.Background(), invokeTxn())
	require.NoError(t, err)
	assert.Equal(t, new(felt.Felt).SetUint64(1000), estimate.OverallFee)
	assert.Equal(t, "wei", estimate.Unit)
}

func TestSimulate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feeder_gateway/simulate_transaction", r.URL.Path)
		_, err := w.Write([]byte(`{
			"trace": {
				"function_invocation": {"contract_address": "0x101", "calldata": [], "result": [], "internal_calls": [
					{"contract_address": "0x49d", "calldata": ["0x1"], "result": ["0x1"], "internal_calls": []}
				]},
				"signature": ["0x1", "0x2"]
			},
			"fee_estimation": {"overall_fee": "0x10", "gas_price": "0x1", "gas_usage": "0x10"}
		}`))
		assert.NoError(t, err)
	})

	result, err := client.Simulate(context.Background(), invokeTxn())
	require.NoError(t, err)
	require.NotNil(t, result.Trace.FunctionInvocation)
	assert.Len(t, result.Trace.FunctionInvocation.InternalCalls, 1)
	assert.Equal(t, new(felt.Felt).SetUint64(16), result.FeeEstimation.OverallFee)
}

func TestAddTransaction(t *testing.T) {
	var requests atomic.Int32
	hash := new(felt.Felt).SetBytes([]byte("random"))

	t.Run("accepted", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			assert.Equal(t, "/gateway/add_transaction", r.URL.Path)
			_, err := w.Write([]byte(`{"code": "TRANSACTION_RECEIVED", "transaction_hash": "` + hash.String() + `"}`))
			assert.NoError(t, err)
		})

		result, err := client.AddTransaction(context.Background(), invokeTxn())
		require.NoError(t, err)
		assert.Equal(t, starknet.TransactionReceived, result.Code)
		assert.Equal(t, hash, result.TransactionHash)
	})

	t.Run("invalid nonce is a typed error and is not retried", func(t *testing.T) {
		requests.Store(0)
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_, err := w.Write([]byte(`{"code": "StarknetErrorCode.INVALID_TRANSACTION_NONCE", "message": "Invalid transaction nonce. Expected: 2, got: 1."}`))
			assert.NoError(t, err)
		})

		_, err := client.AddTransaction(context.Background(), invokeTxn())
		var gwErr *gateway.Error
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, gateway.InvalidTransactionNonce, gwErr.Code)
		assert.ErrorIs(t, err, &gateway.Error{Code: gateway.InvalidTransactionNonce})
		assert.NotErrorIs(t, err, &gateway.Error{Code: gateway.InsufficientMaxFee})
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("server errors are not retried either", func(t *testing.T) {
		requests.Store(0)
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := client.AddTransaction(context.Background(), invokeTxn())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("invalid transaction is rejected locally", func(t *testing.T) {
		requests.Store(0)
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		})

		txn := invokeTxn()
		txn.Signature = nil
		_, err := client.AddTransaction(context.Background(), txn)
		require.ErrorContains(t, err, "invalid transaction")
		assert.Equal(t, int32(0), requests.Load())
	})
}

func TestQueryRetries(t *testing.T) {
	t.Run("succeeds after server errors", func(t *testing.T) {
		var requests atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if requests.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, err := w.Write([]byte(`"0x1"`))
			assert.NoError(t, err)
		})

		nonce, err := client.Nonce(context.Background(), new(felt.Felt))
		require.NoError(t, err)
		assert.True(t, nonce.IsOne())
		assert.Equal(t, int32(3), requests.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var requests atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.Nonce(context.Background(), new(felt.Felt))
		require.Error(t, err)
		assert.Equal(t, int32(3), requests.Load())
	})

	t.Run("starknet errors are final", func(t *testing.T) {
		var requests atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_, err := w.Write([]byte(`{"code": "StarknetErrorCode.UNINITIALIZED_CONTRACT", "message": "Requested contract address 0x0 is not deployed."}`))
			assert.NoError(t, err)
		})

		_, err := client.EstimateFee(context.Background(), invokeTxn())
		assert.ErrorIs(t, err, &gateway.Error{Code: gateway.UninitializedContract})
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("context cancellation", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}).WithMinWait(time.Hour)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := client.Nonce(ctx, new(felt.Felt))
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestEventListener(t *testing.T) {
	isCalled := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`"0x1"`))
		assert.NoError(t, err)
	}).WithListener(&gateway.SelectiveListener{
		OnResponseCb: func(urlPath string, status int, _ time.Duration) {
			isCalled = true
			require.Equal(t, 200, status)
			require.Equal(t, "/feeder_gateway/get_nonce", urlPath)
		},
	})

	_, err := client.Nonce(context.Background(), new(felt.Felt))
	require.NoError(t, err)
	require.True(t, isCalled)
}

func TestMetricsListener(t *testing.T) {
	registry := prometheus.NewRegistry()
	listener, err := gateway.NewMetricsListener(registry)
	require.NoError(t, err)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`"0x1"`))
		assert.NoError(t, err)
	}).WithListener(listener)

	_, err = client.Nonce(context.Background(), new(felt.Felt))
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(registry, "gateway_client_request_latency"))

	_, err = gateway.NewMetricsListener(registry)
	require.Error(t, err)
}

func TestAccountThroughGateway(t *testing.T) {
	var sent starknet.BroadcastedTransaction
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var resp string
		switch r.URL.Path {
		case "/feeder_gateway/get_nonce":
			resp = `"0x7"`
		case "/feeder_gateway/estimate_fee":
			resp = `{"overall_fee": "0x3e8", "gas_price": "0x1", "gas_usage": "0x3e8"}`
		case "/gateway/add_transaction":
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var raw struct {
				Nonce  *felt.Felt `json:"nonce"`
				MaxFee *felt.Felt `json:"max_fee"`
			}
			require.NoError(t, json.Unmarshal(body, &raw))
			sent.Nonce, sent.MaxFee = raw.Nonce, raw.MaxFee
			resp = `{"code": "TRANSACTION_RECEIVED", "transaction_hash": "0x1"}`
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, err := w.Write([]byte(resp))
		assert.NoError(t, err)
	})

	signer, err := account.NewLocalSigner(new(felt.Felt).SetUint64(0xbeef))
	require.NoError(t, err)
	acc := account.NewAccount(client, signer, new(felt.Felt).SetUint64(0x101), utils.Sepolia.ChainID())

	call := account.NewCall(new(felt.Felt).SetUint64(0x49d), "transfer", new(felt.Felt).SetUint64(0x105))
	result, err := acc.Execute([]account.Call{call}).Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, starknet.TransactionReceived, result.Code)
	assert.Equal(t, new(felt.Felt).SetUint64(7), sent.Nonce)
	assert.Equal(t, new(felt.Felt).SetUint64(1100), sent.MaxFee)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = acc.Execute([]account.Call{call}).Nonce(new(felt.Felt)).MaxFee(new(felt.Felt)).Send(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
