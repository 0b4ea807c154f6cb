package crypto

import "github.com/NethermindEth/juno-sdk/core/felt"

// Digest hashes a sequence of felts incrementally.
type Digest interface {
	Update(...*felt.Felt) Digest
	Finish() *felt.Felt
}
