package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/NethermindEth/juno-sdk/account"
	"github.com/NethermindEth/juno-sdk/core"
	"github.com/NethermindEth/juno-sdk/core/crypto"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/db/pebble"
	"github.com/NethermindEth/juno-sdk/mocks"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/NethermindEth/juno-sdk/starknet/classcache"
	"github.com/NethermindEth/juno-sdk/utils"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const sierraClassJSON = `{
	"sierra_program": ["0x1", "0x2", "0xabc"],
	"contract_class_version": "0.1.0",
	"entry_points_by_type": {
		"CONSTRUCTOR": [],
		"EXTERNAL": [{"selector": "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e", "function_idx": 0}],
		"L1_HANDLER": []
	},
	"abi": "[]"
}`

const (
	transferSelector = "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e"
	testAddress      = "0x101"
	testPrivateKey   = "0x2dccce1da22003777062ee0870e9881b460a8b7eca276870f57c601f182136c"
)

// staticProvider hands out p and records the configuration it was built
// with.
func staticProvider(p account.Provider, captured **Config) ProviderFactory {
	return func(cfg *Config, _ *utils.ZapLogger, _ prometheus.Registerer) (account.Provider, error) {
		if captured != nil {
			*captured = cfg
		}
		return p, nil
	}
}

func execute(t *testing.T, newProvider ProviderFactory, args ...string) (string, error) {
	t.Helper()

	b := new(bytes.Buffer)
	cmd := NewCmd(newProvider)
	cmd.SetOut(b)
	cmd.SetErr(b)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return b.String(), err
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestConfigPrecedence(t *testing.T) {
	tests := map[string]struct {
		cfgFile   string
		env       map[string]string
		args      []string
		expected  Config
		expectErr bool
	}{
		"defaults": {
			expected: Config{
				Network:          utils.Mainnet,
				Provider:         gatewayProvider,
				GatewayTimeouts:  defaultGatewayTimeouts,
				LogLevel:         utils.WARN,
				CompressionLevel: gzip.BestCompression,
			},
		},
		"config file": {
			cfgFile: `network: sepolia
log-level: debug
compression-level: 5
address: "0x101"
`,
			expected: Config{
				Network:          utils.Sepolia,
				Provider:         gatewayProvider,
				GatewayTimeouts:  defaultGatewayTimeouts,
				Address:          testAddress,
				LogLevel:         utils.DEBUG,
				CompressionLevel: 5,
			},
		},
		"env over config file": {
			cfgFile: "network: sepolia\n",
			env: map[string]string{
				"STARKACCT_NETWORK":          "integration",
				"STARKACCT_GATEWAY_TIMEOUTS": "1s,2s",
				"STARKACCT_GATEWAY_API_KEY":  "secret",
			},
			expected: Config{
				Network:          utils.Integration,
				Provider:         gatewayProvider,
				GatewayTimeouts:  "1s,2s",
				GatewayAPIKey:    "secret",
				LogLevel:         utils.WARN,
				CompressionLevel: gzip.BestCompression,
			},
		},
		"flags over env": {
			env:  map[string]string{"STARKACCT_NETWORK": "integration"},
			args: []string{"--network", "sepolia-integration", "--provider", "rpc", "--rpc-url", "http://localhost:6060"},
			expected: Config{
				Network:          utils.SepoliaIntegration,
				Provider:         rpcProvider,
				GatewayTimeouts:  defaultGatewayTimeouts,
				RPCURL:           "http://localhost:6060",
				LogLevel:         utils.WARN,
				CompressionLevel: gzip.BestCompression,
			},
		},
		"unknown network": {
			args:      []string{"--network", "goerli"},
			expectErr: true,
		},
		"unknown provider": {
			args:      []string{"--provider", "ipc"},
			expectErr: true,
		},
		"rpc without url": {
			args:      []string{"--provider", "rpc"},
			expectErr: true,
		},
		"missing config file": {
			args:      []string{"--config", "does-not-exist.yaml"},
			expectErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			mockCtrl := gomock.NewController(t)
			provider := mocks.NewMockProvider(mockCtrl)
			provider.EXPECT().Nonce(gomock.Any(), gomock.Any()).Return(new(felt.Felt), nil).AnyTimes()

			args := append([]string{"nonce", "0x1"}, tc.args...)
			if tc.cfgFile != "" {
				args = append(args, "--config", writeFile(t, "config.yaml", tc.cfgFile))
			}

			var cfg *Config
			_, err := execute(t, staticProvider(provider, &cfg), args...)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, *cfg)
		})
	}
}

func TestNonce(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(mockCtrl)

	address := utils.HexToFelt(t, testAddress)
	provider.EXPECT().Nonce(gomock.Any(), address).Return(new(felt.Felt).SetUint64(7), nil).Times(2)

	out, err := execute(t, staticProvider(provider, nil), "nonce", "--address", testAddress)
	require.NoError(t, err)
	assert.Equal(t, "0x7\n", out)

	out, err = execute(t, staticProvider(provider, nil), "nonce", testAddress)
	require.NoError(t, err)
	assert.Equal(t, "0x7\n", out)

	_, err = execute(t, staticProvider(provider, nil), "nonce")
	require.ErrorIs(t, err, errNoAddress)
}

func TestInvoke(t *testing.T) {
	accountArgs := []string{"--address", testAddress, "--private-key", testPrivateKey}

	t.Run("dry run", func(t *testing.T) {
		mockCtrl := gomock.NewController(t)
		provider := mocks.NewMockProvider(mockCtrl)

		out, err := execute(t, staticProvider(provider, nil), "invoke", "--dry-run",
			"--call", "0x49d:transfer:0x105,1,0",
			"--call", "0x49e:0x1234")
		require.NoError(t, err)
		assert.Contains(t, out, transferSelector)
		assert.Contains(t, out, "0x105, 0x1, 0x0")
		assert.Contains(t, out, "0x1234")
	})

	t.Run("estimate", func(t *testing.T) {
		mockCtrl := gomock.NewController(t)
		provider := mocks.NewMockProvider(mockCtrl)
		provider.EXPECT().Nonce(gomock.Any(), gomock.Any()).Return(new(felt.Felt).SetUint64(3), nil)
		provider.EXPECT().EstimateFee(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, txn *starknet.BroadcastedTransaction) (*starknet.FeeEstimate, error) {
				assert.Equal(t, starknet.TxnInvoke, txn.Type)
				assert.True(t, txn.MaxFee.IsZero())
				return &starknet.FeeEstimate{
					OverallFee: new(felt.Felt).SetUint64(0x3e8),
					GasPrice:   new(felt.Felt).SetUint64(1),
					GasUsage:   new(felt.Felt).SetUint64(0x3e8),
					Unit:       "WEI",
				}, nil
			})

		args := append([]string{"invoke", "--mode", "estimate", "--call", "0x49d:transfer:0x105,1,0"}, accountArgs...)
		out, err := execute(t, staticProvider(provider, nil), args...)
		require.NoError(t, err)
		assert.Contains(t, out, "0x3e8")
		assert.Contains(t, out, "WEI")
	})

	t.Run("send", func(t *testing.T) {
		mockCtrl := gomock.NewController(t)
		provider := mocks.NewMockProvider(mockCtrl)
		provider.EXPECT().AddTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, txn *starknet.BroadcastedTransaction) (*starknet.AddTransactionResult, error) {
				assert.Equal(t, "0x10", txn.MaxFee.String())
				assert.Equal(t, "0x4", txn.Nonce.String())
				assert.Len(t, txn.Signature, 2)
				return &starknet.AddTransactionResult{
					Code:            starknet.TransactionReceived,
					TransactionHash: new(felt.Felt).SetUint64(0xabc),
				}, nil
			})

		args := append([]string{"invoke", "--call", "0x49d:transfer:0x105,1,0", "--max-fee", "0x10", "--nonce", "0x4"},
			accountArgs...)
		out, err := execute(t, staticProvider(provider, nil), args...)
		require.NoError(t, err)
		assert.Contains(t, out, string(starknet.TransactionReceived))
		assert.Contains(t, out, "0xabc")
	})

	t.Run("invalid input", func(t *testing.T) {
		mockCtrl := gomock.NewController(t)
		provider := mocks.NewMockProvider(mockCtrl)

		for name, args := range map[string][]string{
			"no calls":       {"invoke"},
			"bad call":       {"invoke", "--call", "0x49d"},
			"bad argument":   {"invoke", "--call", "0x49d:transfer:xyz"},
			"unknown mode":   {"invoke", "--call", "0x49d:transfer", "--mode", "broadcast"},
			"no private key": {"invoke", "--call", "0x49d:transfer", "--address", testAddress},
		} {
			t.Run(name, func(t *testing.T) {
				_, err := execute(t, staticProvider(provider, nil), args...)
				require.Error(t, err)
			})
		}
	})
}

func TestDeclare(t *testing.T) {
	classFile := writeFile(t, "class.json", sierraClassJSON)
	class, err := starknet.DecodeDeployedClass([]byte(sierraClassJSON))
	require.NoError(t, err)
	classHash, err := core.SierraClassHash(class.Sierra)
	require.NoError(t, err)

	t.Run("inspect", func(t *testing.T) {
		mockCtrl := gomock.NewController(t)
		provider := mocks.NewMockProvider(mockCtrl)

		out, err := execute(t, staticProvider(provider, nil), "declare", classFile, "--inspect")
		require.NoError(t, err)
		assert.Contains(t, out, "sierra")
		assert.Contains(t, out, "0.1.0")
		assert.Contains(t, out, classHash.String())
	})

	t.Run("send through class cache", func(t *testing.T) {
		mockCtrl := gomock.NewController(t)
		provider := mocks.NewMockProvider(mockCtrl)
		provider.EXPECT().AddTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, txn *starknet.BroadcastedTransaction) (*starknet.AddTransactionResult, error) {
				assert.Equal(t, starknet.TxnDeclare, txn.Type)
				require.NotNil(t, txn.ContractClass)
				assert.NotNil(t, txn.ContractClass.Sierra)
				return &starknet.AddTransactionResult{
					Code:            starknet.TransactionReceived,
					TransactionHash: new(felt.Felt).SetUint64(0xdef),
					ClassHash:       classHash,
				}, nil
			})

		cacheDir := t.TempDir()
		out, err := execute(t, staticProvider(provider, nil), "declare", classFile,
			"--compiled-class-hash", "0x1", "--max-fee", "0x1", "--nonce", "0x0",
			"--address", testAddress, "--private-key", testPrivateKey, "--cache-dir", cacheDir)
		require.NoError(t, err)
		assert.Contains(t, out, classHash.String())

		store, err := pebble.New(cacheDir)
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, store.Close()) })

		cached, ok := classcache.New(store, utils.NewNopZapLogger()).Get(classHash)
		require.True(t, ok)
		assert.NotNil(t, cached.Sierra)
	})

	t.Run("missing compiled class hash", func(t *testing.T) {
		mockCtrl := gomock.NewController(t)
		provider := mocks.NewMockProvider(mockCtrl)

		_, err := execute(t, staticProvider(provider, nil), "declare", classFile, "--max-fee", "0x1", "--nonce", "0x0",
			"--address", testAddress, "--private-key", testPrivateKey)
		require.ErrorIs(t, err, account.ErrMissingCompiledClassHash)
	})
}

func TestSelector(t *testing.T) {
	out, err := execute(t, nil, "selector", "transfer", "__default__")
	require.NoError(t, err)
	assert.Contains(t, out, transferSelector)
	assert.Contains(t, out, "__default__")
}

func TestSign(t *testing.T) {
	out, err := execute(t, nil, "sign", "0x1234", "--private-key", testPrivateKey)
	require.NoError(t, err)

	publicKey, err := crypto.PrivateToPublic(utils.HexToFelt(t, testPrivateKey))
	require.NoError(t, err)
	assert.Contains(t, out, publicKey.X().String())

	_, err = execute(t, nil, "sign", "0x1234")
	require.Error(t, err)
}

func TestMetricsFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feeder_gateway/get_nonce", r.URL.Path)
		_, err := w.Write([]byte(`"0x5"`))
		assert.NoError(t, err)
	}))
	t.Cleanup(srv.Close)

	metrics := filepath.Join(t.TempDir(), "starkacct.prom")
	out, err := execute(t, newProvider, "nonce", testAddress,
		"--feeder-url", srv.URL+"/feeder_gateway", "--metrics", metrics)
	require.NoError(t, err)
	assert.Equal(t, "0x5\n", out)

	written, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(written), "gateway_client_request_latency")
}

func TestGatewayAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Throttling-Bypass"))
		_, err := w.Write([]byte(`"0x5"`))
		assert.NoError(t, err)
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, newProvider, "nonce", testAddress,
		"--feeder-url", srv.URL+"/feeder_gateway", "--gateway-api-key", "secret")
	require.NoError(t, err)
	assert.Equal(t, "0x5\n", out)
}
