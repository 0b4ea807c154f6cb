package curve

import (
	"math/big"

	"github.com/NethermindEth/juno-sdk/core/felt"
)

// AffinePoint is a point on the Stark curve in affine coordinates. When
// Infinity is set the point is the group identity and X, Y are ignored.
type AffinePoint struct {
	X        felt.Felt
	Y        felt.Felt
	Infinity bool
}

// Identity returns the point at infinity.
func Identity() AffinePoint {
	return AffinePoint{Infinity: true}
}

// FromX returns the curve point with the given x coordinate. Of the two
// candidate y values the numerically smaller one is returned; callers that
// need the other one negate the result.
func FromX(x *felt.Felt) (AffinePoint, error) {
	ySquared := rhs(x)

	y, ok := new(felt.Felt).Sqrt(ySquared)
	if !ok {
		return AffinePoint{}, arithmeticError("from_x", ErrNotOnCurve)
	}
	if negY := new(felt.Felt).Neg(y); negY.Cmp(y) < 0 {
		y = negY
	}

	return AffinePoint{X: *x, Y: *y}, nil
}

// rhs computes x³ + αx + β.
func rhs(x *felt.Felt) *felt.Felt {
	res := new(felt.Felt).Square(x)
	res.Mul(res, x)
	alphaX := new(felt.Felt).Mul(&Alpha, x)
	res.Add(res, alphaX)
	return res.Add(res, Beta)
}

// IsOnCurve reports whether p satisfies the curve equation. The identity is
// considered on the curve.
func (p AffinePoint) IsOnCurve() bool {
	if p.Infinity {
		return true
	}
	return new(felt.Felt).Square(&p.Y).Equal(rhs(&p.X))
}

// Equal compares two points. All representations of the identity are equal.
func (p AffinePoint) Equal(q AffinePoint) bool {
	if p.Infinity || q.Infinity {
		return p.Infinity == q.Infinity
	}
	return p.X.Equal(&q.X) && p.Y.Equal(&q.Y)
}

// Negate returns -p. The identity is its own negation.
func (p AffinePoint) Negate() AffinePoint {
	if p.Infinity {
		return p
	}
	return AffinePoint{X: p.X, Y: *new(felt.Felt).Neg(&p.Y)}
}

// Double returns p + p.
func (p AffinePoint) Double() (AffinePoint, error) {
	if p.Infinity {
		return p, nil
	}

	// λ = (3x² + α) / 2y
	divisor := new(felt.Felt).Mul(&two, &p.Y)
	divisorInv, ok := new(felt.Felt).Inverse(divisor)
	if !ok {
		return AffinePoint{}, arithmeticError("double", ErrTwoTorsion)
	}
	dividend := new(felt.Felt).Square(&p.X)
	dividend.Mul(dividend, &three).Add(dividend, &Alpha)
	lambda := dividend.Mul(dividend, divisorInv)

	return p.withSlope(lambda, &p.X), nil
}

// Add returns p + q.
func (p AffinePoint) Add(q AffinePoint) (AffinePoint, error) {
	if p.Infinity {
		return q, nil
	}
	if q.Infinity {
		return p, nil
	}

	if p.X.Equal(&q.X) {
		if p.Y.Equal(&q.Y) {
			return p.Double()
		}
		// same x and a different y means q = -p
		return Identity(), nil
	}

	// λ = (y2 - y1) / (x2 - x1)
	divisor := new(felt.Felt).Sub(&q.X, &p.X)
	divisorInv, ok := new(felt.Felt).Inverse(divisor)
	if !ok {
		return AffinePoint{}, arithmeticError("add", ErrZeroDivisor)
	}
	lambda := new(felt.Felt).Sub(&q.Y, &p.Y)
	lambda.Mul(lambda, divisorInv)

	return p.withSlope(lambda, &q.X), nil
}

// withSlope finishes a chord or tangent computation: x3 = λ² - x1 - x2,
// y3 = λ(x1 - x3) - y1.
func (p AffinePoint) withSlope(lambda, otherX *felt.Felt) AffinePoint {
	x := new(felt.Felt).Square(lambda)
	x.Sub(x, &p.X).Sub(x, otherX)

	y := new(felt.Felt).Sub(&p.X, x)
	y.Mul(y, lambda).Sub(y, &p.Y)

	return AffinePoint{X: *x, Y: *y}
}

// Subtract returns p - q.
func (p AffinePoint) Subtract(q AffinePoint) (AffinePoint, error) {
	return p.Add(q.Negate())
}

// Multiply computes k·p with double-and-add, where bits holds k most
// significant bit first. Every bit costs one doubling and the loop never
// exits early, so the sequence of group operations only depends on len(bits)
// and on which bits are set.
func (p AffinePoint) Multiply(bits []bool) (AffinePoint, error) {
	product := Identity()
	var err error
	for _, bit := range bits {
		if product, err = product.Double(); err != nil {
			return AffinePoint{}, err
		}
		if bit {
			if product, err = product.Add(p); err != nil {
				return AffinePoint{}, err
			}
		}
	}
	return product, nil
}

// MultiplyScalar computes k·p for a non-negative k.
func (p AffinePoint) MultiplyScalar(k *big.Int) (AffinePoint, error) {
	return p.Multiply(Bits(k))
}

// Bits returns the binary expansion of a non-negative k, most significant bit
// first. Zero yields an empty slice.
func Bits(k *big.Int) []bool {
	n := k.BitLen()
	bits := make([]bool, n)
	for i := range n {
		bits[i] = k.Bit(n-1-i) == 1
	}
	return bits
}
