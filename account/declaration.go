package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/juno-sdk/core"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
)

// Declaration is a declare transaction being built for a class. Sierra
// classes are declared with version 2, legacy classes with version 1.
type Declaration struct {
	account           *Account
	class             *starknet.DeployedClass
	compiledClassHash *felt.Felt
	classHash         *felt.Felt
	opts              txOptions
}

// Declare starts a declaration. compiledClassHash is ignored for legacy
// classes.
func (a *Account) Declare(class *starknet.DeployedClass, compiledClassHash *felt.Felt) *Declaration {
	return &Declaration{
		account:           a,
		class:             class,
		compiledClassHash: compiledClassHash,
		opts:              defaultTxOptions(),
	}
}

// ClassHash overrides the hash computed by the account's ClassHasher. Legacy
// classes need it.
func (d *Declaration) ClassHash(classHash *felt.Felt) *Declaration {
	d.classHash = classHash
	return d
}

func (d *Declaration) Nonce(nonce *felt.Felt) *Declaration {
	d.opts.nonce = nonce
	return d
}

func (d *Declaration) MaxFee(maxFee *felt.Felt) *Declaration {
	d.opts.maxFee = maxFee
	return d
}

func (d *Declaration) FeeEstimateMultiplier(multiplier float64) *Declaration {
	d.opts.feeMultiplier = multiplier
	return d
}

func (d *Declaration) Prepare(ctx context.Context) (*PreparedTransaction, error) {
	dr, err := d.draft()
	if err != nil {
		return nil, err
	}
	return d.account.prepare(ctx, dr, d.opts, false)
}

func (d *Declaration) EstimateFee(ctx context.Context) (*starknet.FeeEstimate, error) {
	dr, err := d.draft()
	if err != nil {
		return nil, err
	}
	return d.account.estimateFee(ctx, dr, d.opts)
}

func (d *Declaration) Simulate(ctx context.Context) (*starknet.SimulationResult, error) {
	dr, err := d.draft()
	if err != nil {
		return nil, err
	}
	return d.account.simulate(ctx, dr, d.opts)
}

func (d *Declaration) Send(ctx context.Context) (*starknet.AddTransactionResult, error) {
	dr, err := d.draft()
	if err != nil {
		return nil, err
	}
	return d.account.send(ctx, dr, d.opts)
}

func (d *Declaration) draft() (*declareDraft, error) {
	if d.class == nil {
		return nil, errors.New("no class to declare")
	}

	dr := &declareDraft{class: d.class}
	switch d.class.Kind {
	case starknet.SierraKind:
		if d.compiledClassHash == nil {
			return nil, ErrMissingCompiledClassHash
		}
		dr.version = 2
		dr.compiledClassHash = d.compiledClassHash
	case starknet.LegacyKind:
		dr.version = 1
	default:
		return nil, fmt.Errorf("cannot declare class of kind %s", d.class.Kind)
	}

	dr.classHash = d.classHash
	if dr.classHash == nil {
		var err error
		if dr.classHash, err = d.account.classHasher.ClassHash(d.class); err != nil {
			return nil, fmt.Errorf("class hash: %w", err)
		}
	}

	var err error
	if dr.compressed, err = d.account.compress(dr.classHash, d.class); err != nil {
		return nil, err
	}
	return dr, nil
}

// compress returns the compressed form of class, going through the class
// cache when one is configured.
func (a *Account) compress(classHash *felt.Felt, class *starknet.DeployedClass) (*starknet.CompressedClass, error) {
	if a.classCache != nil {
		if compressed, ok := a.classCache.Get(classHash); ok {
			return compressed, nil
		}
	}

	compressed, err := starknet.CompressClass(class, a.compression)
	if err != nil {
		return nil, err
	}

	if a.classCache != nil {
		if err = a.classCache.Put(classHash, compressed); err != nil {
			a.log.Warnw("Failed to cache compressed class", "classHash", classHash, "err", err)
		}
	}
	return compressed, nil
}

type declareDraft struct {
	class             *starknet.DeployedClass
	compressed        *starknet.CompressedClass
	classHash         *felt.Felt
	compiledClassHash *felt.Felt
	version           uint64
}

func (d *declareDraft) build(sender, nonce, maxFee *felt.Felt, query bool) core.Transaction {
	return &core.DeclareTransaction{
		ClassHash:         d.classHash,
		SenderAddress:     sender,
		MaxFee:            maxFee,
		Nonce:             nonce,
		Version:           core.NewTransactionVersion(d.version, query),
		CompiledClassHash: d.compiledClassHash,
	}
}

func (d *declareDraft) broadcast(txn core.Transaction) *starknet.BroadcastedTransaction {
	declare := txn.(*core.DeclareTransaction)
	return &starknet.BroadcastedTransaction{
		Type:              starknet.TxnDeclare,
		Version:           declare.Version.AsFelt(),
		SenderAddress:     declare.SenderAddress,
		MaxFee:            declare.MaxFee,
		Signature:         declare.TransactionSignature,
		Nonce:             declare.Nonce,
		CompiledClassHash: declare.CompiledClassHash,
		ContractClass:     d.compressed,
		Class:             d.class,
	}
}
