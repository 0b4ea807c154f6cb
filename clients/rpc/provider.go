package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/juno-sdk/account"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/NethermindEth/juno-sdk/validator"
)

var _ account.Provider = (*Client)(nil)

const pendingBlock = "pending"

// broadcastedTxn is the JSON-RPC shape of a broadcast transaction. Unlike the
// gateway, nodes take Sierra classes uncompressed.
type broadcastedTxn struct {
	Type              string       `json:"type"`
	Version           *felt.Felt   `json:"version"`
	SenderAddress     *felt.Felt   `json:"sender_address"`
	MaxFee            *felt.Felt   `json:"max_fee"`
	Signature         []*felt.Felt `json:"signature"`
	Nonce             *felt.Felt   `json:"nonce"`
	CallData          []*felt.Felt `json:"calldata,omitempty"`
	CompiledClassHash *felt.Felt   `json:"compiled_class_hash,omitempty"`
	ContractClass     any          `json:"contract_class,omitempty"`
}

func adaptTransaction(txn *starknet.BroadcastedTransaction) (*broadcastedTxn, error) {
	if txn == nil {
		return nil, errors.New("nil transaction")
	}
	if err := validator.Validator().Struct(txn); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}

	adapted := &broadcastedTxn{
		Version:           txn.Version,
		SenderAddress:     txn.SenderAddress,
		MaxFee:            txn.MaxFee,
		Signature:         txn.Signature,
		Nonce:             txn.Nonce,
		CallData:          txn.CallData,
		CompiledClassHash: txn.CompiledClassHash,
	}
	switch txn.Type {
	case starknet.TxnInvoke:
		adapted.Type = "INVOKE"
	case starknet.TxnDeclare:
		adapted.Type = "DECLARE"
		switch {
		case txn.ContractClass.Legacy != nil:
			adapted.ContractClass = txn.ContractClass.Legacy
		case txn.Class != nil && txn.Class.Sierra != nil:
			adapted.ContractClass = txn.Class.Sierra
		default:
			return nil, errors.New("declare transaction carries no Sierra class definition")
		}
	default:
		return nil, fmt.Errorf("unsupported transaction type %s", txn.Type)
	}
	return adapted, nil
}

type feeEstimate struct {
	GasConsumed *felt.Felt `json:"gas_consumed"`
	GasPrice    *felt.Felt `json:"gas_price"`
	OverallFee  *felt.Felt `json:"overall_fee"`
	Unit        string     `json:"unit,omitempty"`
}

func (f *feeEstimate) adapt() starknet.FeeEstimate {
	return starknet.FeeEstimate{
		OverallFee: f.OverallFee,
		GasPrice:   f.GasPrice,
		GasUsage:   f.GasConsumed,
		Unit:       f.Unit,
	}
}

type functionInvocation struct {
	ContractAddress    *felt.Felt                   `json:"contract_address"`
	EntryPointSelector *felt.Felt                   `json:"entry_point_selector"`
	Calldata           []*felt.Felt                 `json:"calldata"`
	CallerAddress      *felt.Felt                   `json:"caller_address"`
	ClassHash          *felt.Felt                   `json:"class_hash"`
	EntryPointType     string                       `json:"entry_point_type"`
	CallType           string                       `json:"call_type"`
	Result             []*felt.Felt                 `json:"result"`
	Calls              []functionInvocation         `json:"calls"`
	ExecutionResources *starknet.ExecutionResources `json:"execution_resources,omitempty"`
}

func (f *functionInvocation) adapt() *starknet.FunctionInvocation {
	if f == nil {
		return nil
	}
	internal := make([]starknet.FunctionInvocation, 0, len(f.Calls))
	for i := range f.Calls {
		internal = append(internal, *f.Calls[i].adapt())
	}
	return &starknet.FunctionInvocation{
		CallerAddress:      f.CallerAddress,
		ContractAddress:    f.ContractAddress,
		CallData:           f.Calldata,
		CallType:           f.CallType,
		ClassHash:          f.ClassHash,
		Selector:           f.EntryPointSelector,
		EntryPointType:     f.EntryPointType,
		Result:             f.Result,
		InternalCalls:      internal,
		ExecutionResources: f.ExecutionResources,
	}
}

// executeInvocation is either a function invocation or, for a reverted
// execution, only a revert reason.
type executeInvocation struct {
	functionInvocation
	RevertReason string `json:"revert_reason,omitempty"`
}

type transactionTrace struct {
	ValidateInvocation    *functionInvocation `json:"validate_invocation,omitempty"`
	ExecuteInvocation     *executeInvocation  `json:"execute_invocation,omitempty"`
	FeeTransferInvocation *functionInvocation `json:"fee_transfer_invocation,omitempty"`
}

type simulatedTransaction struct {
	Trace         transactionTrace `json:"transaction_trace"`
	FeeEstimation feeEstimate      `json:"fee_estimation"`
}

func (s *simulatedTransaction) adapt(signature []*felt.Felt) *starknet.SimulationResult {
	trace := starknet.TransactionTrace{
		ValidateInvocation:    s.Trace.ValidateInvocation.adapt(),
		FeeTransferInvocation: s.Trace.FeeTransferInvocation.adapt(),
		Signature:             signature,
	}
	if execute := s.Trace.ExecuteInvocation; execute != nil {
		if execute.ContractAddress != nil {
			trace.FunctionInvocation = execute.functionInvocation.adapt()
		}
		trace.RevertError = execute.RevertReason
	}
	return &starknet.SimulationResult{
		Trace:         trace,
		FeeEstimation: s.FeeEstimation.adapt(),
	}
}

type addTransactionResponse struct {
	TransactionHash *felt.Felt `json:"transaction_hash"`
	ClassHash       *felt.Felt `json:"class_hash,omitempty"`
	ContractAddress *felt.Felt `json:"contract_address,omitempty"`
}

func (c *Client) Nonce(ctx context.Context, address *felt.Felt) (*felt.Felt, error) {
	nonce := new(felt.Felt)
	err := c.Call(ctx, "starknet_getNonce", map[string]any{
		"block_id":         pendingBlock,
		"contract_address": address,
	}, nonce)
	if err != nil {
		return nil, err
	}
	return nonce, nil
}

func (c *Client) EstimateFee(ctx context.Context, txn *starknet.BroadcastedTransaction) (*starknet.FeeEstimate, error) {
	adapted, err := adaptTransaction(txn)
	if err != nil {
		return nil, err
	}

	var estimates []feeEstimate
	err = c.Call(ctx, "starknet_estimateFee", map[string]any{
		"request":          []*broadcastedTxn{adapted},
		"simulation_flags": []string{},
		"block_id":         pendingBlock,
	}, &estimates)
	if err != nil {
		return nil, err
	}
	if len(estimates) != 1 {
		return nil, fmt.Errorf("expected 1 fee estimate, got %d", len(estimates))
	}
	estimate := estimates[0].adapt()
	return &estimate, nil
}

func (c *Client) Simulate(ctx context.Context, txn *starknet.BroadcastedTransaction) (*starknet.SimulationResult, error) {
	adapted, err := adaptTransaction(txn)
	if err != nil {
		return nil, err
	}

	var simulated []simulatedTransaction
	err = c.Call(ctx, "starknet_simulateTransactions", map[string]any{
		"block_id":         pendingBlock,
		"transactions":     []*broadcastedTxn{adapted},
		"simulation_flags": []string{},
	}, &simulated)
	if err != nil {
		return nil, err
	}
	if len(simulated) != 1 {
		return nil, fmt.Errorf("expected 1 simulated transaction, got %d", len(simulated))
	}
	return simulated[0].adapt(txn.Signature), nil
}

func (c *Client) AddTransaction(ctx context.Context, txn *starknet.BroadcastedTransaction) (*starknet.AddTransactionResult, error) {
	adapted, err := adaptTransaction(txn)
	if err != nil {
		return nil, err
	}

	var method, param string
	switch txn.Type {
	case starknet.TxnDeclare:
		method, param = "starknet_addDeclareTransaction", "declare_transaction"
	default:
		method, param = "starknet_addInvokeTransaction", "invoke_transaction"
	}

	var resp addTransactionResponse
	if err = c.Call(ctx, method, map[string]any{param: adapted}, &resp); err != nil {
		return nil, err
	}
	return &starknet.AddTransactionResult{
		Code:            starknet.TransactionReceived,
		TransactionHash: resp.TransactionHash,
		ClassHash:       resp.ClassHash,
		Address:         resp.ContractAddress,
	}, nil
}
