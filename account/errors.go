package account

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCompiledClassHash = errors.New("declaring a Sierra class requires a compiled class hash")
	ErrInvalidFeeMultiplier     = errors.New("fee estimate multiplier must be positive")
	ErrMaxFeeOverflow           = errors.New("scaled max fee does not fit in a felt")
)

// EncodingError reports a multicall that cannot be laid out or read back.
// CallIndex is -1 when the failure is not tied to a single call.
type EncodingError struct {
	CallIndex int
	Reason    string
}

func (e *EncodingError) Error() string {
	if e.CallIndex < 0 {
		return "encode calls: " + e.Reason
	}
	return fmt.Sprintf("encode call %d: %s", e.CallIndex, e.Reason)
}

// NetworkError wraps a failed provider call. The provider's error is kept
// unchanged.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// SignatureError reports a signer failure or a signature that is not a
// single (r, s) pair.
type SignatureError struct {
	Err error
}

func (e *SignatureError) Error() string {
	return "sign transaction: " + e.Err.Error()
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}

func wrapNetwork(op string, err error) error {
	if err == nil {
		return nil
	}
	return &NetworkError{Op: op, Err: err}
}
