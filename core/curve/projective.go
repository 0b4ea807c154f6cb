package curve

import "github.com/NethermindEth/juno-sdk/core/felt"

// ProjectivePoint holds a point in homogeneous coordinates (X:Y:Z), which
// stands for the affine point (X/Z, Y/Z).
type ProjectivePoint struct {
	X        felt.Felt
	Y        felt.Felt
	Z        felt.Felt
	Infinity bool
}

// FromAffine lifts an affine point by setting Z to one.
func FromAffine(p AffinePoint) ProjectivePoint {
	if p.Infinity {
		return ProjectivePoint{Y: felt.One, Infinity: true}
	}
	return ProjectivePoint{X: p.X, Y: p.Y, Z: felt.One}
}

// ToAffine divides out Z.
func (p ProjectivePoint) ToAffine() (AffinePoint, error) {
	if p.Infinity {
		return Identity(), nil
	}
	zInv, ok := new(felt.Felt).Inverse(&p.Z)
	if !ok {
		return AffinePoint{}, arithmeticError("to_affine", ErrZeroDivisor)
	}
	return AffinePoint{
		X: *new(felt.Felt).Mul(&p.X, zInv),
		Y: *new(felt.Felt).Mul(&p.Y, zInv),
	}, nil
}
