package crypto

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/NethermindEth/juno-sdk/core/curve"
	"github.com/NethermindEth/juno-sdk/core/felt"
)

// Starknet only signs and verifies values below 2^251.
var ecdsaBound = new(big.Int).Lsh(big.NewInt(1), 251)

var (
	ErrMessageHashTooLarge = errors.New("message hash must be smaller than 2^251")
	ErrInvalidPrivateKey   = errors.New("private key must be in [1, curve order)")
)

// Signature is a Stark ECDSA signature.
type Signature struct {
	R felt.Felt
	S felt.Felt
}

// Felts returns the signature in the [r, s] layout transactions carry.
func (s *Signature) Felts() []*felt.Felt {
	return []*felt.Felt{new(felt.Felt).Set(&s.R), new(felt.Felt).Set(&s.S)}
}

// PublicKey is a Stark public key. Starknet identifies keys by the x
// coordinate alone; the point is recovered when needed.
type PublicKey struct {
	x felt.Felt
}

func NewPublicKey(x *felt.Felt) *PublicKey {
	return &PublicKey{x: *x}
}

// PrivateToPublic derives the public key of a private scalar.
func PrivateToPublic(privateKey *felt.Felt) (*PublicKey, error) {
	priv := privateKey.BigInt(new(big.Int))
	if !inRange(priv, curve.Order) {
		return nil, ErrInvalidPrivateKey
	}
	point, err := curve.Generator.MultiplyScalar(priv)
	if err != nil {
		return nil, err
	}
	return NewPublicKey(&point.X), nil
}

func (k *PublicKey) X() *felt.Felt {
	return new(felt.Felt).Set(&k.x)
}

// Verify checks sig against msgHash. Since only x is known both y candidates
// are tried.
func (k *PublicKey) Verify(sig *Signature, msgHash *felt.Felt) (bool, error) {
	z := msgHash.BigInt(new(big.Int))
	if z.Cmp(ecdsaBound) >= 0 {
		return false, ErrMessageHashTooLarge
	}

	r := sig.R.BigInt(new(big.Int))
	s := sig.S.BigInt(new(big.Int))
	if !inRange(r, ecdsaBound) || !inRange(s, curve.Order) {
		return false, nil
	}
	w := new(big.Int).ModInverse(s, curve.Order)
	if w == nil || !inRange(w, ecdsaBound) {
		return false, nil
	}

	q, err := curve.FromX(&k.x)
	if err != nil {
		return false, fmt.Errorf("not a valid public key: %w", err)
	}

	zG, err := curve.Generator.MultiplyScalar(z)
	if err != nil {
		return false, err
	}
	rQ, err := q.MultiplyScalar(r)
	if err != nil {
		return false, err
	}

	for _, combine := range []func(curve.AffinePoint) (curve.AffinePoint, error){zG.Add, zG.Subtract} {
		sum, err := combine(rQ)
		if err != nil {
			return false, err
		}
		wB, err := sum.MultiplyScalar(w)
		if err != nil {
			return false, err
		}
		if !wB.Infinity && wB.X.BigInt(new(big.Int)).Cmp(r) == 0 {
			return true, nil
		}
	}
	return false, nil
}

// Sign produces a deterministic signature of msgHash, deriving the nonce with
// RFC 6979.
func Sign(privateKey, msgHash *felt.Felt) (*Signature, error) {
	priv := privateKey.BigInt(new(big.Int))
	if !inRange(priv, curve.Order) {
		return nil, ErrInvalidPrivateKey
	}
	z := msgHash.BigInt(new(big.Int))
	if z.Cmp(ecdsaBound) >= 0 {
		return nil, ErrMessageHashTooLarge
	}

	nonces := newRFC6979(priv, z)
	for {
		sig, err := signWithK(priv, z, nonces.next())
		if errors.Is(err, errRetryNonce) {
			continue
		}
		return sig, err
	}
}

var errRetryNonce = errors.New("nonce produced an out of range signature")

func signWithK(priv, z, k *big.Int) (*Signature, error) {
	point, err := curve.Generator.MultiplyScalar(k)
	if err != nil {
		return nil, err
	}
	r := point.X.BigInt(new(big.Int))
	if !inRange(r, ecdsaBound) {
		return nil, errRetryNonce
	}

	// w = k / (z + r·priv), s = 1 / w
	sum := new(big.Int).Mul(r, priv)
	sum.Add(sum, z).Mod(sum, curve.Order)
	if sum.Sign() == 0 {
		return nil, errRetryNonce
	}
	w := new(big.Int).ModInverse(sum, curve.Order)
	w.Mul(w, k).Mod(w, curve.Order)
	if !inRange(w, ecdsaBound) {
		return nil, errRetryNonce
	}
	s := new(big.Int).ModInverse(w, curve.Order)

	var sig Signature
	sig.R.SetBigInt(r)
	sig.S.SetBigInt(s)
	return &sig, nil
}

// inRange reports whether 1 <= v < upper.
func inRange(v, upper *big.Int) bool {
	return v.Sign() > 0 && v.Cmp(upper) < 0
}
