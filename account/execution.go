package account

import (
	"context"

	"github.com/NethermindEth/juno-sdk/core"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
)

// Execution is an invoke transaction being built from a list of calls.
// Setters return the receiver so they can be chained; the terminal methods
// may be called any number of times and each fetches its own nonce unless
// one was set.
type Execution struct {
	account *Account
	calls   []Call
	opts    txOptions
}

func (a *Account) Execute(calls []Call) *Execution {
	return &Execution{
		account: a,
		calls:   append([]Call(nil), calls...),
		opts:    defaultTxOptions(),
	}
}

func (e *Execution) Nonce(nonce *felt.Felt) *Execution {
	e.opts.nonce = nonce
	return e
}

func (e *Execution) MaxFee(maxFee *felt.Felt) *Execution {
	e.opts.maxFee = maxFee
	return e
}

// FeeEstimateMultiplier scales the estimated fee when no max fee is set.
func (e *Execution) FeeEstimateMultiplier(multiplier float64) *Execution {
	e.opts.feeMultiplier = multiplier
	return e
}

func (e *Execution) Calls() []Call {
	return e.calls
}

// Prepare fixes nonce, max fee and hash without signing.
func (e *Execution) Prepare(ctx context.Context) (*PreparedTransaction, error) {
	d, err := e.draft()
	if err != nil {
		return nil, err
	}
	return e.account.prepare(ctx, d, e.opts, false)
}

func (e *Execution) EstimateFee(ctx context.Context) (*starknet.FeeEstimate, error) {
	d, err := e.draft()
	if err != nil {
		return nil, err
	}
	return e.account.estimateFee(ctx, d, e.opts)
}

func (e *Execution) Simulate(ctx context.Context) (*starknet.SimulationResult, error) {
	d, err := e.draft()
	if err != nil {
		return nil, err
	}
	return e.account.simulate(ctx, d, e.opts)
}

func (e *Execution) Send(ctx context.Context) (*starknet.AddTransactionResult, error) {
	d, err := e.draft()
	if err != nil {
		return nil, err
	}
	return e.account.send(ctx, d, e.opts)
}

func (e *Execution) draft() (*invokeDraft, error) {
	calldata, err := EncodeCalls(e.calls)
	if err != nil {
		return nil, err
	}
	return &invokeDraft{calldata: calldata}, nil
}

type invokeDraft struct {
	calldata []*felt.Felt
}

func (d *invokeDraft) build(sender, nonce, maxFee *felt.Felt, query bool) core.Transaction {
	return &core.InvokeTransaction{
		CallData:      d.calldata,
		MaxFee:        maxFee,
		Version:       core.NewTransactionVersion(1, query),
		Nonce:         nonce,
		SenderAddress: sender,
	}
}

func (d *invokeDraft) broadcast(txn core.Transaction) *starknet.BroadcastedTransaction {
	invoke := txn.(*core.InvokeTransaction)
	return &starknet.BroadcastedTransaction{
		Type:          starknet.TxnInvoke,
		Version:       invoke.Version.AsFelt(),
		SenderAddress: invoke.SenderAddress,
		MaxFee:        invoke.MaxFee,
		Signature:     invoke.TransactionSignature,
		Nonce:         invoke.Nonce,
		CallData:      invoke.CallData,
	}
}
