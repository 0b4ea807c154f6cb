package account

import (
	"context"

	"github.com/NethermindEth/juno-sdk/core"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/NethermindEth/juno-sdk/utils"
)

//go:generate mockgen -destination=../mocks/mock_provider.go -package=mocks github.com/NethermindEth/juno-sdk/account Provider
type Provider interface {
	Nonce(ctx context.Context, address *felt.Felt) (*felt.Felt, error)
	EstimateFee(ctx context.Context, txn *starknet.BroadcastedTransaction) (*starknet.FeeEstimate, error)
	Simulate(ctx context.Context, txn *starknet.BroadcastedTransaction) (*starknet.SimulationResult, error)
	AddTransaction(ctx context.Context, txn *starknet.BroadcastedTransaction) (*starknet.AddTransactionResult, error)
}

// Signer produces the signature an account contract validates. For Stark
// accounts that is exactly [r, s].
//
//go:generate mockgen -destination=../mocks/mock_signer.go -package=mocks github.com/NethermindEth/juno-sdk/account Signer
type Signer interface {
	Sign(ctx context.Context, hash *felt.Felt) ([]*felt.Felt, error)
}

type ClassHasher interface {
	ClassHash(class *starknet.DeployedClass) (*felt.Felt, error)
}

// ClassCache keeps compressed classes by class hash so that repeated
// declarations of the same class skip compression.
type ClassCache interface {
	Get(classHash *felt.Felt) (*starknet.CompressedClass, bool)
	Put(classHash *felt.Felt, class *starknet.CompressedClass) error
}

const defaultFeeMultiplier = 1.1

// Account sends transactions on behalf of one account contract. It holds no
// mutable state and may be shared between goroutines.
type Account struct {
	provider    Provider
	signer      Signer
	address     *felt.Felt
	chainID     *felt.Felt
	log         utils.SimpleLogger
	classHasher ClassHasher
	classCache  ClassCache
	compression starknet.CompressionConfig
}

type Option func(*Account)

func WithLogger(log utils.SimpleLogger) Option {
	return func(a *Account) {
		a.log = log
	}
}

func WithClassHasher(hasher ClassHasher) Option {
	return func(a *Account) {
		a.classHasher = hasher
	}
}

func WithClassCache(cache ClassCache) Option {
	return func(a *Account) {
		a.classCache = cache
	}
}

func WithCompression(cfg starknet.CompressionConfig) Option {
	return func(a *Account) {
		a.compression = cfg
	}
}

func NewAccount(provider Provider, signer Signer, address, chainID *felt.Felt, opts ...Option) *Account {
	a := &Account{
		provider:    provider,
		signer:      signer,
		address:     address,
		chainID:     chainID,
		log:         utils.NewNopZapLogger(),
		classHasher: core.SierraClassHasher{},
		compression: starknet.DefaultCompressionConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Account) Address() *felt.Felt {
	return a.address
}

func (a *Account) ChainID() *felt.Felt {
	return a.chainID
}

// Nonce returns the account's current nonce. It is never cached.
func (a *Account) Nonce(ctx context.Context) (*felt.Felt, error) {
	nonce, err := a.provider.Nonce(ctx, a.address)
	if err != nil {
		return nil, wrapNetwork("get nonce", err)
	}
	return nonce, nil
}
