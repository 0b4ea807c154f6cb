package crypto

import (
	"github.com/NethermindEth/juno-sdk/core/felt"
	junocrypto "github.com/NethermindEth/juno/core/crypto"
	junofelt "github.com/NethermindEth/juno/core/felt"
)

// PoseidonArray implements [Poseidon array hashing] by delegating the Hades
// permutation to Juno's implementation.
//
// [Poseidon array hashing]: https://docs.starknet.io/architecture-and-concepts/cryptography/hash-functions/#poseidon_array_hash
func PoseidonArray(elems ...*felt.Felt) *felt.Felt {
	return fromJuno(junocrypto.PoseidonArray(toJuno(elems)...))
}

// Poseidon hashes a pair of felts.
func Poseidon(a, b *felt.Felt) *felt.Felt {
	conv := toJuno([]*felt.Felt{a, b})
	return fromJuno(junocrypto.Poseidon(conv[0], conv[1]))
}

func toJuno(elems []*felt.Felt) []*junofelt.Felt {
	res := make([]*junofelt.Felt, len(elems))
	for i, elem := range elems {
		b := elem.Bytes()
		res[i] = new(junofelt.Felt).SetBytes(b[:])
	}
	return res
}

func fromJuno(f *junofelt.Felt) *felt.Felt {
	b := f.Bytes()
	return new(felt.Felt).SetBytes(b[:])
}
