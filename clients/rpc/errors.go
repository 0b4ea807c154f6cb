package rpc

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC and Starknet error codes a provider may return.
const (
	InvalidJSON    = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603

	ContractNotFound           = 20
	BlockNotFound              = 24
	ClassHashNotFound          = 28
	TransactionExecutionError  = 41
	ClassAlreadyDeclared       = 51
	InvalidTransactionNonce    = 52
	InsufficientMaxFee         = 53
	InsufficientAccountBalance = 54
	ValidationFailure          = 55
	CompilationFailed          = 56
	DuplicateTx                = 59
	UnsupportedTxVersion       = 61
)

type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("%d %s: %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

// Is matches errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}
