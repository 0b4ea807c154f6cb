package account_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/NethermindEth/juno-sdk/account"
	"github.com/NethermindEth/juno-sdk/core"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/mocks"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func sierraClass() *starknet.DeployedClass {
	return starknet.NewSierraDeployedClass(&starknet.SierraClass{
		Abi: `[{"type":"function","name":"increase_balance"}]`,
		EntryPoints: starknet.SierraEntryPoints{
			External: []starknet.SierraEntryPoint{{Index: 0, Selector: new(felt.Felt).SetUint64(0x362398)}},
		},
		Program: feltsOf(1, 2, 3, 4),
		Version: "0.1.0",
	})
}

func legacyClass() *starknet.DeployedClass {
	return starknet.NewLegacyDeployedClass(&starknet.LegacyClass{
		Program: json.RawMessage(`{"builtins":[],"data":["0x1"]}`),
	})
}

type mapCache struct {
	classes map[felt.Felt]*starknet.CompressedClass
	puts    int
}

func (c *mapCache) Get(classHash *felt.Felt) (*starknet.CompressedClass, bool) {
	class, ok := c.classes[*classHash]
	return class, ok
}

func (c *mapCache) Put(classHash *felt.Felt, class *starknet.CompressedClass) error {
	c.puts++
	c.classes[*classHash] = class
	return nil
}

func TestDeclareSierra(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(mockCtrl)
	signer := newSigner(t)
	acc := account.NewAccount(provider, signer, senderAddress, chainID)

	ctx := context.Background()
	class := sierraClass()
	compiledClassHash := new(felt.Felt).SetUint64(0xc0ffee)
	classHash, err := core.SierraClassHash(class.Sierra)
	require.NoError(t, err)

	nonce := new(felt.Felt).SetUint64(2)
	maxFee := new(felt.Felt).SetUint64(500)
	provider.EXPECT().Nonce(ctx, senderAddress).Return(nonce, nil)
	provider.EXPECT().AddTransaction(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, txn *starknet.BroadcastedTransaction) (*starknet.AddTransactionResult, error) {
			assert.Equal(t, starknet.TxnDeclare, txn.Type)
			assert.Equal(t, new(felt.Felt).SetUint64(2), txn.Version)
			assert.Equal(t, compiledClassHash, txn.CompiledClassHash)
			assert.Same(t, class, txn.Class)
			require.NotNil(t, txn.ContractClass)
			require.NotNil(t, txn.ContractClass.Sierra)

			program, err := starknet.DecompressSierraProgram(txn.ContractClass.Sierra.SierraProgram)
			require.NoError(t, err)
			assert.Equal(t, class.Sierra.Program, program)

			hash, err := core.TransactionHash(&core.DeclareTransaction{
				ClassHash:         classHash,
				SenderAddress:     senderAddress,
				MaxFee:            maxFee,
				Nonce:             nonce,
				Version:           core.NewTransactionVersion(2, false),
				CompiledClassHash: compiledClassHash,
			}, chainID)
			require.NoError(t, err)
			verifySignature(t, signer, hash, txn.Signature)

			return &starknet.AddTransactionResult{Code: starknet.TransactionReceived, ClassHash: classHash}, nil
		})

	result, err := acc.Declare(class, compiledClassHash).MaxFee(maxFee).Send(ctx)
	require.NoError(t, err)
	assert.Equal(t, classHash, result.ClassHash)

	t.Run("estimate uses query version", func(t *testing.T) {
		provider.EXPECT().Nonce(ctx, senderAddress).Return(nonce, nil)
		provider.EXPECT().EstimateFee(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, txn *starknet.BroadcastedTransaction) (*starknet.FeeEstimate, error) {
				version := core.TransactionVersion(*txn.Version)
				assert.True(t, version.HasQueryBit())
				assert.True(t, version.Is(2))
				assert.True(t, txn.MaxFee.IsZero())
				return &starknet.FeeEstimate{OverallFee: new(felt.Felt).SetUint64(7)}, nil
			})

		estimate, err := acc.Declare(class, compiledClassHash).EstimateFee(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), mustUint64(t, estimate.OverallFee))
	})

	t.Run("missing compiled class hash", func(t *testing.T) {
		_, err := acc.Declare(class, nil).Send(ctx)
		require.ErrorIs(t, err, account.ErrMissingCompiledClassHash)
	})
}

func TestDeclareLegacy(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(mockCtrl)
	acc := account.NewAccount(provider, newSigner(t), senderAddress, chainID)

	ctx := context.Background()
	class := legacyClass()

	t.Run("class hash must be supplied", func(t *testing.T) {
		_, err := acc.Declare(class, nil).Nonce(new(felt.Felt)).Simulate(ctx)
		require.ErrorIs(t, err, core.ErrLegacyClassHash)
	})

	t.Run("version 1 with override", func(t *testing.T) {
		classHash := new(felt.Felt).SetUint64(0xc1a55)
		provider.EXPECT().Simulate(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, txn *starknet.BroadcastedTransaction) (*starknet.SimulationResult, error) {
				version := core.TransactionVersion(*txn.Version)
				assert.True(t, version.Is(1))
				assert.Nil(t, txn.CompiledClassHash)
				require.NotNil(t, txn.ContractClass.Legacy)
				assert.Nil(t, txn.ContractClass.Legacy.Abi)

				program, err := starknet.DecompressProgram(txn.ContractClass.Legacy.Program)
				require.NoError(t, err)
				assert.JSONEq(t, string(class.Legacy.Program), string(program))
				return &starknet.SimulationResult{}, nil
			})

		_, err := acc.Declare(class, nil).ClassHash(classHash).Nonce(new(felt.Felt)).Simulate(ctx)
		require.NoError(t, err)
	})
}

func TestDeclareUsesClassCache(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(mockCtrl)
	cache := &mapCache{classes: make(map[felt.Felt]*starknet.CompressedClass)}
	acc := account.NewAccount(provider, newSigner(t), senderAddress, chainID, account.WithClassCache(cache))

	ctx := context.Background()
	class := sierraClass()
	compiled := new(felt.Felt).SetUint64(1)

	var sent []*starknet.CompressedClass
	provider.EXPECT().AddTransaction(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, txn *starknet.BroadcastedTransaction) (*starknet.AddTransactionResult, error) {
			sent = append(sent, txn.ContractClass)
			return &starknet.AddTransactionResult{}, nil
		}).Times(2)

	for range 2 {
		_, err := acc.Declare(class, compiled).Nonce(new(felt.Felt)).MaxFee(new(felt.Felt)).Send(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, cache.puts)
	require.Len(t, sent, 2)
	assert.Same(t, sent[0], sent[1])
}

func mustUint64(t *testing.T, f *felt.Felt) uint64 {
	t.Helper()
	v, err := f.Uint64()
	require.NoError(t, err)
	return v
}
