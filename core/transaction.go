package core

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"

	"github.com/NethermindEth/juno-sdk/core/crypto"
	"github.com/NethermindEth/juno-sdk/core/felt"
)

// queryBit is added to the version of transactions that are only estimated
// or simulated, so that their signature can never be replayed on chain.
var queryBit = new(felt.Felt).SetBigInt(new(big.Int).Lsh(big.NewInt(1), 128))

// TransactionVersion is the version field of a transaction, possibly carrying
// the query bit.
type TransactionVersion felt.Felt

func NewTransactionVersion(v uint64, query bool) *TransactionVersion {
	version := new(felt.Felt).SetUint64(v)
	if query {
		version.Add(version, queryBit)
	}
	return (*TransactionVersion)(version)
}

func (v *TransactionVersion) AsFelt() *felt.Felt {
	return (*felt.Felt)(v)
}

func (v *TransactionVersion) HasQueryBit() bool {
	return v.AsFelt().Cmp(queryBit) >= 0
}

// Is checks the version without taking the query bit into account.
func (v *TransactionVersion) Is(u64 uint64) bool {
	base := v.WithoutQueryBit()
	return base.AsFelt().Equal(new(felt.Felt).SetUint64(u64))
}

func (v *TransactionVersion) WithoutQueryBit() TransactionVersion {
	version := *v.AsFelt()
	if v.HasQueryBit() {
		version.Sub(&version, queryBit)
	}
	return TransactionVersion(version)
}

type Transaction interface {
	Signature() []*felt.Felt
	TxVersion() *TransactionVersion
}

var (
	_ Transaction = (*DeclareTransaction)(nil)
	_ Transaction = (*InvokeTransaction)(nil)
)

type InvokeTransaction struct {
	// The arguments that are passed to the validated and execute functions.
	CallData []*felt.Felt
	// Additional information given by the sender, used to validate the transaction.
	TransactionSignature []*felt.Felt
	// The maximum fee that the sender is willing to pay for the transaction
	MaxFee *felt.Felt
	// When the fields that comprise a transaction change,
	// either with the addition of a new field or the removal of an existing field,
	// then the transaction version increases.
	Version *TransactionVersion
	// The transaction nonce.
	Nonce *felt.Felt
	// The address of the sender of this transaction
	SenderAddress *felt.Felt
}

func (i *InvokeTransaction) Signature() []*felt.Felt {
	return i.TransactionSignature
}

func (i *InvokeTransaction) TxVersion() *TransactionVersion {
	return i.Version
}

type DeclareTransaction struct {
	// The class hash
	ClassHash *felt.Felt
	// The address of the account initiating the transaction.
	SenderAddress *felt.Felt
	// The maximum fee that the sender is willing to pay for the transaction.
	MaxFee *felt.Felt
	// Additional information given by the sender, used to validate the transaction.
	TransactionSignature []*felt.Felt
	// The transaction nonce.
	Nonce *felt.Felt
	// Version 1 declares legacy classes, version 2 declares Sierra classes.
	Version *TransactionVersion

	// Version 2 fields
	CompiledClassHash *felt.Felt
}

func (d *DeclareTransaction) Signature() []*felt.Felt {
	return d.TransactionSignature
}

func (d *DeclareTransaction) TxVersion() *TransactionVersion {
	return d.Version
}

var (
	invokeFelt  = new(felt.Felt).SetBytes([]byte("invoke"))
	declareFelt = new(felt.Felt).SetBytes([]byte("declare"))
)

// TransactionHash computes the hash that the account signs for transaction.
func TransactionHash(transaction Transaction, chainID *felt.Felt) (*felt.Felt, error) {
	switch t := transaction.(type) {
	case *InvokeTransaction:
		return invokeTransactionHash(t, chainID)
	case *DeclareTransaction:
		return declareTransactionHash(t, chainID)
	default:
		return nil, errors.New("unknown transaction")
	}
}

func errInvalidTransactionVersion(t Transaction, version *TransactionVersion) error {
	return fmt.Errorf("invalid Transaction (type: %v) version: %v", reflect.TypeOf(t), version.AsFelt().Text(felt.Base10))
}

func invokeTransactionHash(i *InvokeTransaction, chainID *felt.Felt) (*felt.Felt, error) {
	switch {
	case i.Version.Is(1):
		return crypto.PedersenArray(
			invokeFelt,
			i.Version.AsFelt(),
			i.SenderAddress,
			&felt.Zero,
			crypto.PedersenArray(i.CallData...),
			i.MaxFee,
			chainID,
			i.Nonce,
		), nil
	default:
		return nil, errInvalidTransactionVersion(i, i.Version)
	}
}

func declareTransactionHash(d *DeclareTransaction, chainID *felt.Felt) (*felt.Felt, error) {
	switch {
	case d.Version.Is(1):
		return crypto.PedersenArray(
			declareFelt,
			d.Version.AsFelt(),
			d.SenderAddress,
			&felt.Zero,
			crypto.PedersenArray(d.ClassHash),
			d.MaxFee,
			chainID,
			d.Nonce,
		), nil
	case d.Version.Is(2):
		if d.CompiledClassHash == nil {
			return nil, errors.New("declare v2 requires a compiled class hash")
		}
		return crypto.PedersenArray(
			declareFelt,
			d.Version.AsFelt(),
			d.SenderAddress,
			&felt.Zero,
			crypto.PedersenArray(d.ClassHash),
			d.MaxFee,
			chainID,
			d.Nonce,
			d.CompiledClassHash,
		), nil
	default:
		return nil, errInvalidTransactionVersion(d, d.Version)
	}
}
