package curve

import (
	"math/big"

	"github.com/NethermindEth/juno-sdk/core/felt"
)

// Parameters of the Stark curve y² = x³ + αx + β over the Stark prime field.
//
// See https://docs.starknet.io/architecture-and-concepts/cryptography/stark-curve/
var (
	Alpha = felt.One
	Beta  = mustFelt("0x6f21413efbe40de150e596d72f7a8c5609ad26c15c915c1f4cdfcb99cee9e89")

	// Order is the number of points in the group generated by Generator.
	Order, _ = new(big.Int).SetString("800000000000010ffffffffffffffffb781126dcae7b2321e66a241adc64d2f", 16)

	Generator = AffinePoint{
		X: *mustFelt("0x1ef15c18599971b7beced415a40f0c7deacfd9b0d1819e03d723d8bc943cfca"),
		Y: *mustFelt("0x5668060aa49730b7be4801df46ec62de53ecd11abe43a32873000c36e8dc1f"),
	}
)

var (
	two   = *new(felt.Felt).SetUint64(2)
	three = *new(felt.Felt).SetUint64(3)
)

func mustFelt(hex string) *felt.Felt {
	f, err := new(felt.Felt).SetString(hex)
	if err != nil {
		panic(err)
	}
	return f
}
