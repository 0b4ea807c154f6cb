package account

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/NethermindEth/juno-sdk/core"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
)

// draft is the part of a transaction that differs between invoke and
// declare. Everything else, from nonce to signature, is shared.
type draft interface {
	build(sender, nonce, maxFee *felt.Felt, query bool) core.Transaction
	broadcast(txn core.Transaction) *starknet.BroadcastedTransaction
}

// txOptions are the builder settings shared by executions and declarations.
type txOptions struct {
	nonce         *felt.Felt
	maxFee        *felt.Felt
	feeMultiplier float64
}

func defaultTxOptions() txOptions {
	return txOptions{feeMultiplier: defaultFeeMultiplier}
}

// PreparedTransaction is an unsigned transaction whose nonce, fee and hash
// are fixed.
type PreparedTransaction struct {
	account     *Account
	draft       draft
	transaction core.Transaction

	Hash   *felt.Felt
	Nonce  *felt.Felt
	MaxFee *felt.Felt
	Query  bool
}

// Sign asks the account's signer for a signature over the hash and returns
// the transaction ready to be broadcast.
func (p *PreparedTransaction) Sign(ctx context.Context) (*starknet.BroadcastedTransaction, error) {
	signature, err := p.account.signer.Sign(ctx, p.Hash)
	if err != nil {
		return nil, &SignatureError{Err: err}
	}
	if len(signature) != 2 {
		return nil, &SignatureError{Err: fmt.Errorf("expected 2 signature elements, got %d", len(signature))}
	}

	switch t := p.transaction.(type) {
	case *core.InvokeTransaction:
		t.TransactionSignature = signature
	case *core.DeclareTransaction:
		t.TransactionSignature = signature
	}
	return p.draft.broadcast(p.transaction), nil
}

func (a *Account) prepare(ctx context.Context, d draft, opts txOptions, query bool) (*PreparedTransaction, error) {
	nonce := opts.nonce
	if nonce == nil {
		var err error
		if nonce, err = a.Nonce(ctx); err != nil {
			return nil, err
		}
	}

	maxFee := new(felt.Felt)
	if !query {
		var err error
		if maxFee, err = a.resolveMaxFee(ctx, d, opts, nonce); err != nil {
			return nil, err
		}
	}

	txn := d.build(a.address, nonce, maxFee, query)
	hash, err := core.TransactionHash(txn, a.chainID)
	if err != nil {
		return nil, fmt.Errorf("transaction hash: %w", err)
	}
	a.log.Debugw("Prepared transaction", "hash", hash, "nonce", nonce, "maxFee", maxFee, "query", query)

	return &PreparedTransaction{
		account:     a,
		draft:       d,
		transaction: txn,
		Hash:        hash,
		Nonce:       nonce,
		MaxFee:      maxFee,
		Query:       query,
	}, nil
}

// signed runs the shared prepare and sign stage.
func (a *Account) signed(ctx context.Context, d draft, opts txOptions, query bool) (*starknet.BroadcastedTransaction, error) {
	prepared, err := a.prepare(ctx, d, opts, query)
	if err != nil {
		return nil, err
	}
	return prepared.Sign(ctx)
}

// resolveMaxFee returns the configured max fee, or a fresh estimate for the
// same nonce scaled by the fee multiplier.
func (a *Account) resolveMaxFee(ctx context.Context, d draft, opts txOptions, nonce *felt.Felt) (*felt.Felt, error) {
	if opts.maxFee != nil {
		return opts.maxFee, nil
	}
	if opts.feeMultiplier <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeeMultiplier, opts.feeMultiplier)
	}

	opts.nonce = nonce
	estimate, err := a.estimateFee(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	maxFee, err := scaleFee(estimate.OverallFee, opts.feeMultiplier)
	if err != nil {
		return nil, err
	}
	a.log.Debugw("Estimated max fee", "overallFee", estimate.OverallFee, "maxFee", maxFee)
	return maxFee, nil
}

func (a *Account) estimateFee(ctx context.Context, d draft, opts txOptions) (*starknet.FeeEstimate, error) {
	txn, err := a.signed(ctx, d, opts, true)
	if err != nil {
		return nil, err
	}
	estimate, err := a.provider.EstimateFee(ctx, txn)
	if err != nil {
		return nil, wrapNetwork("estimate fee", err)
	}
	return estimate, nil
}

func (a *Account) simulate(ctx context.Context, d draft, opts txOptions) (*starknet.SimulationResult, error) {
	txn, err := a.signed(ctx, d, opts, true)
	if err != nil {
		return nil, err
	}
	result, err := a.provider.Simulate(ctx, txn)
	if err != nil {
		return nil, wrapNetwork("simulate transaction", err)
	}
	return result, nil
}

func (a *Account) send(ctx context.Context, d draft, opts txOptions) (*starknet.AddTransactionResult, error) {
	txn, err := a.signed(ctx, d, opts, false)
	if err != nil {
		return nil, err
	}
	result, err := a.provider.AddTransaction(ctx, txn)
	if err != nil {
		return nil, wrapNetwork("add transaction", err)
	}
	a.log.Debugw("Transaction sent", "hash", result.TransactionHash, "code", result.Code)
	return result, nil
}

// scaleFee multiplies fee by the decimal value of multiplier, rounding down.
// Zero and other degenerate estimates pass through scaled as they are.
func scaleFee(fee *felt.Felt, multiplier float64) (*felt.Felt, error) {
	if fee == nil {
		return new(felt.Felt), nil
	}
	ratio, ok := new(big.Rat).SetString(strconv.FormatFloat(multiplier, 'g', -1, 64))
	if !ok || ratio.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeeMultiplier, multiplier)
	}

	scaled := new(big.Rat).SetInt(fee.BigInt(new(big.Int)))
	scaled.Mul(scaled, ratio)
	result := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	if result.Cmp(felt.Modulus()) >= 0 {
		return nil, fmt.Errorf("%w: %s x %v", ErrMaxFeeOverflow, fee, multiplier)
	}
	return new(felt.Felt).SetBigInt(result), nil
}
