package validator

import (
	"bytes"
	"reflect"
	"sync"

	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

var declareV2 = new(felt.Felt).SetUint64(2)

// validateBroadcastedTransaction checks the fields that are only required
// for one transaction type.
func validateBroadcastedTransaction(sl validator.StructLevel) {
	txn, ok := sl.Current().Interface().(starknet.BroadcastedTransaction)
	if !ok {
		return
	}

	switch txn.Type {
	case starknet.TxnInvoke:
		if txn.CallData == nil {
			sl.ReportError(txn.CallData, "CallData", "calldata", "required_for_invoke", "")
		}
	case starknet.TxnDeclare:
		if txn.ContractClass == nil {
			sl.ReportError(txn.ContractClass, "ContractClass", "contract_class", "required_for_declare", "")
		}
		if txn.Version != nil && isVersion(txn.Version, declareV2) && txn.CompiledClassHash == nil {
			sl.ReportError(txn.CompiledClassHash, "CompiledClassHash", "compiled_class_hash", "required_for_declare_v2", "")
		}
	default:
		sl.ReportError(txn.Type, "Type", "type", "transaction_type", "")
	}
}

// isVersion compares the low 128 bits, so query versions match too.
func isVersion(version, want *felt.Felt) bool {
	b := version.Bytes()
	w := want.Bytes()
	return bytes.Equal(b[16:], w[16:])
}

// Validator returns a singleton that can be used to validate various objects
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()

		v.RegisterStructValidation(validateBroadcastedTransaction, starknet.BroadcastedTransaction{})

		// Register these types to use their string representation for validation
		// purposes
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			switch f := field.Interface().(type) {
			case felt.Felt:
				return f.String()
			case *felt.Felt:
				return f.String()
			}
			panic("not a felt")
		}, felt.Felt{}, &felt.Felt{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if t, ok := field.Interface().(starknet.TransactionType); ok {
				return t.String()
			}
			panic("not a TransactionType")
		}, starknet.TransactionType(0))
	})
	return v
}
