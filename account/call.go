package account

import (
	"errors"
	"fmt"
	"math"

	"github.com/NethermindEth/juno-sdk/core/crypto"
	"github.com/NethermindEth/juno-sdk/core/felt"
)

// maxCalldataLen bounds every offset and length written into a multicall.
var maxCalldataLen uint64 = math.MaxUint32

// Call is a single contract invocation inside a multicall.
type Call struct {
	To       *felt.Felt
	Selector *felt.Felt
	Calldata []*felt.Felt
}

// NewCall builds a call to the named entry point of contract to.
func NewCall(to *felt.Felt, method string, calldata ...*felt.Felt) Call {
	// hashing into a keccak state never fails
	selector, _ := crypto.SelectorFromName(method)
	return Call{
		To:       to,
		Selector: selector,
		Calldata: calldata,
	}
}

// EncodeCalls lays calls out as the account's __execute__ expects:
//
//	[n, (to, selector, offset, len) * n, total, data...]
//
// where offset and len locate each call's arguments inside data.
func EncodeCalls(calls []Call) ([]*felt.Felt, error) {
	if uint64(len(calls)) > maxCalldataLen {
		return nil, &EncodingError{CallIndex: -1, Reason: fmt.Sprintf("%d calls exceed the multicall limit", len(calls))}
	}

	var total uint64
	for i, call := range calls {
		if call.To == nil || call.Selector == nil {
			return nil, &EncodingError{CallIndex: i, Reason: "missing target or selector"}
		}
		n := uint64(len(call.Calldata))
		if n > maxCalldataLen-total {
			return nil, &EncodingError{CallIndex: i, Reason: "calldata offset overflows"}
		}
		total += n
	}

	encoded := make([]*felt.Felt, 0, 2+4*len(calls)+int(total))
	encoded = append(encoded, new(felt.Felt).SetUint64(uint64(len(calls))))

	var offset uint64
	for _, call := range calls {
		n := uint64(len(call.Calldata))
		encoded = append(encoded,
			call.To,
			call.Selector,
			new(felt.Felt).SetUint64(offset),
			new(felt.Felt).SetUint64(n),
		)
		offset += n
	}

	encoded = append(encoded, new(felt.Felt).SetUint64(total))
	for _, call := range calls {
		encoded = append(encoded, call.Calldata...)
	}
	return encoded, nil
}

// DecodeCalls reverses EncodeCalls.
func DecodeCalls(calldata []*felt.Felt) ([]Call, error) {
	if len(calldata) == 0 {
		return nil, &EncodingError{CallIndex: -1, Reason: "empty calldata"}
	}

	n, err := boundedUint(calldata[0])
	if err != nil {
		return nil, &EncodingError{CallIndex: -1, Reason: "call count: " + err.Error()}
	}
	header := 1 + 4*n
	if header >= uint64(len(calldata)) {
		return nil, &EncodingError{CallIndex: -1, Reason: fmt.Sprintf("truncated header for %d calls", n)}
	}

	total, err := boundedUint(calldata[header])
	if err != nil {
		return nil, &EncodingError{CallIndex: -1, Reason: "data length: " + err.Error()}
	}
	data := calldata[header+1:]
	if uint64(len(data)) != total {
		return nil, &EncodingError{
			CallIndex: -1,
			Reason:    fmt.Sprintf("data length is %d but %d felts follow", total, len(data)),
		}
	}

	calls := make([]Call, 0, n)
	for i := range n {
		entry := calldata[1+4*i : 1+4*(i+1)]
		offset, err := boundedUint(entry[2])
		if err != nil {
			return nil, &EncodingError{CallIndex: int(i), Reason: "offset: " + err.Error()}
		}
		length, err := boundedUint(entry[3])
		if err != nil {
			return nil, &EncodingError{CallIndex: int(i), Reason: "length: " + err.Error()}
		}
		if offset+length > total {
			return nil, &EncodingError{CallIndex: int(i), Reason: "arguments out of range"}
		}
		calls = append(calls, Call{
			To:       entry[0],
			Selector: entry[1],
			Calldata: data[offset : offset+length],
		})
	}
	return calls, nil
}

func boundedUint(f *felt.Felt) (uint64, error) {
	if f == nil {
		return 0, errors.New("missing value")
	}
	v, err := f.Uint64()
	if err != nil || v > maxCalldataLen {
		return 0, fmt.Errorf("%s exceeds %d", f, maxCalldataLen)
	}
	return v, nil
}
