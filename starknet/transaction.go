package starknet

import (
	"fmt"

	"github.com/NethermindEth/juno-sdk/core/felt"
)

type TransactionType uint8

const (
	Invalid TransactionType = iota
	TxnDeclare
	TxnInvoke
)

func (t TransactionType) String() string {
	switch t {
	case TxnDeclare:
		return "DECLARE"
	case TxnInvoke:
		return "INVOKE_FUNCTION"
	default:
		return "<unknown>"
	}
}

func (t TransactionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TransactionType) UnmarshalText(data []byte) error {
	switch str := string(data); str {
	case "DECLARE":
		*t = TxnDeclare
	case "INVOKE", "INVOKE_FUNCTION":
		*t = TxnInvoke
	default:
		return fmt.Errorf("unknown TransactionType %q", str)
	}
	return nil
}

// BroadcastedTransaction is a signed invoke or declare transaction in the
// shape the sequencer gateway accepts. Class keeps the uncompressed
// definition of a declare for providers that want it.
type BroadcastedTransaction struct {
	Type              TransactionType  `json:"type" validate:"required"`
	Version           *felt.Felt       `json:"version" validate:"required"`
	SenderAddress     *felt.Felt       `json:"sender_address" validate:"required"`
	MaxFee            *felt.Felt       `json:"max_fee" validate:"required"`
	Signature         []*felt.Felt     `json:"signature" validate:"required"`
	Nonce             *felt.Felt       `json:"nonce" validate:"required"`
	CallData          []*felt.Felt     `json:"calldata,omitempty"`
	CompiledClassHash *felt.Felt       `json:"compiled_class_hash,omitempty"`
	ContractClass     *CompressedClass `json:"contract_class,omitempty"`
	Class             *DeployedClass   `json:"-"`
}

type FeeEstimate struct {
	OverallFee *felt.Felt `json:"overall_fee"`
	GasPrice   *felt.Felt `json:"gas_price"`
	GasUsage   *felt.Felt `json:"gas_usage"`
	Unit       string     `json:"unit,omitempty"`
}

type FunctionInvocation struct {
	CallerAddress      *felt.Felt           `json:"caller_address"`
	ContractAddress    *felt.Felt           `json:"contract_address"`
	CallData           []*felt.Felt         `json:"calldata"`
	CallType           string               `json:"call_type,omitempty"`
	ClassHash          *felt.Felt           `json:"class_hash,omitempty"`
	Selector           *felt.Felt           `json:"selector,omitempty"`
	EntryPointType     string               `json:"entry_point_type,omitempty"`
	Result             []*felt.Felt         `json:"result"`
	InternalCalls      []FunctionInvocation `json:"internal_calls"`
	ExecutionResources *ExecutionResources  `json:"execution_resources,omitempty"`
}

type ExecutionResources struct {
	Steps                  uint64            `json:"n_steps"`
	BuiltinInstanceCounter map[string]uint64 `json:"builtin_instance_counter"`
	MemoryHoles            uint64            `json:"n_memory_holes"`
}

type TransactionTrace struct {
	ValidateInvocation    *FunctionInvocation `json:"validate_invocation,omitempty"`
	FunctionInvocation    *FunctionInvocation `json:"function_invocation,omitempty"`
	FeeTransferInvocation *FunctionInvocation `json:"fee_transfer_invocation,omitempty"`
	Signature             []*felt.Felt        `json:"signature"`
	RevertError           string              `json:"revert_error,omitempty"`
}

type SimulationResult struct {
	Trace         TransactionTrace `json:"trace"`
	FeeEstimation FeeEstimate      `json:"fee_estimation"`
}

type AddTransactionCode string

const TransactionReceived AddTransactionCode = "TRANSACTION_RECEIVED"

type AddTransactionResult struct {
	Code            AddTransactionCode `json:"code"`
	TransactionHash *felt.Felt         `json:"transaction_hash"`
	ClassHash       *felt.Felt         `json:"class_hash,omitempty"`
	Address         *felt.Felt         `json:"address,omitempty"`
}
