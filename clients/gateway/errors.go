package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorCode string

var (
	InvalidContractClass            ErrorCode = "StarknetErrorCode.INVALID_CONTRACT_CLASS"
	UndeclaredClass                 ErrorCode = "StarknetErrorCode.UNDECLARED_CLASS"
	ClassAlreadyDeclared            ErrorCode = "StarknetErrorCode.CLASS_ALREADY_DECLARED"
	InsufficientMaxFee              ErrorCode = "StarknetErrorCode.INSUFFICIENT_MAX_FEE"
	InsufficientAccountBalance      ErrorCode = "StarknetErrorCode.INSUFFICIENT_ACCOUNT_BALANCE"
	ValidateFailure                 ErrorCode = "StarknetErrorCode.VALIDATE_FAILURE"
	ContractBytecodeSizeTooLarge    ErrorCode = "StarknetErrorCode.CONTRACT_BYTECODE_SIZE_TOO_LARGE"
	DuplicatedTransaction           ErrorCode = "StarknetErrorCode.DUPLICATED_TRANSACTION"
	InvalidTransactionNonce         ErrorCode = "StarknetErrorCode.INVALID_TRANSACTION_NONCE"
	CompilationFailed               ErrorCode = "StarknetErrorCode.COMPILATION_FAILED"
	InvalidCompiledClassHash        ErrorCode = "StarknetErrorCode.INVALID_COMPILED_CLASS_HASH"
	ContractClassObjectSizeTooLarge ErrorCode = "StarknetErrorCode.CONTRACT_CLASS_OBJECT_SIZE_TOO_LARGE"
	InvalidTransactionVersion       ErrorCode = "StarknetErrorCode.INVALID_TRANSACTION_VERSION"
	InvalidContractClassVersion     ErrorCode = "StarknetErrorCode.INVALID_CONTRACT_CLASS_VERSION"
	TransactionFailed               ErrorCode = "StarknetErrorCode.TRANSACTION_FAILED"
	UninitializedContract           ErrorCode = "StarknetErrorCode.UNINITIALIZED_CONTRACT"
	EntryPointNotFound              ErrorCode = "StarknetErrorCode.ENTRY_POINT_NOT_FOUND_IN_CONTRACT"
)

// Error is a Starknet error returned by the sequencer or the feeder gateway.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches errors by code, so errors.Is(err, &gateway.Error{Code: ...})
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// errorFromResponse turns a non-200 response body into an error, preferring
// a Starknet error when the body carries one.
func errorFromResponse(status int, body []byte) error {
	if len(body) > 0 {
		var gatewayError Error
		if err := json.Unmarshal(body, &gatewayError); err == nil && len(gatewayError.Code) != 0 {
			return &gatewayError
		}
		return fmt.Errorf("%d %s: %s", status, http.StatusText(status), body)
	}
	return fmt.Errorf("%d %s", status, http.StatusText(status))
}
