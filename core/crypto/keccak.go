package crypto

import (
	"github.com/NethermindEth/juno-sdk/core/felt"
	"golang.org/x/crypto/sha3"
)

// Entry points that are addressed by a zero selector instead of the keccak of
// their name.
const (
	defaultEntryPoint   = "__default__"
	l1DefaultEntryPoint = "__l1_default__"
)

// StarknetKeccak implements [StarkNet keccak]
//
// [StarkNet keccak]: https://docs.starknet.io/documentation/develop/Hashing/hash-functions/#starknet_keccak
func StarknetKeccak(b []byte) (*felt.Felt, error) {
	h := sha3.NewLegacyKeccak256()
	if _, err := h.Write(b); err != nil {
		return nil, err
	}
	d := h.Sum(nil)
	// Remove the first 6 bits from the first byte
	d[0] &= 3
	return new(felt.Felt).SetBytes(d), nil
}

// SelectorFromName derives the entry point selector of a contract method.
func SelectorFromName(name string) (*felt.Felt, error) {
	if name == defaultEntryPoint || name == l1DefaultEntryPoint {
		return new(felt.Felt), nil
	}
	return StarknetKeccak([]byte(name))
}
