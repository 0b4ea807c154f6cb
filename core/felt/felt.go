package felt

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/fxamacker/cbor/v2"
)

type Felt struct {
	val fp.Element
}

func NewFelt(element *fp.Element) *Felt {
	return &Felt{
		val: *element,
	}
}

const (
	Limbs = fp.Limbs // number of 64 bits words needed to represent a Element
	Bits  = fp.Bits  // number of bits needed to represent a Element
	Bytes = fp.Bytes // number of bytes needed to represent a Element
)

// Base16 and Base10 are the supported bases for Text.
const (
	Base16 = 16
	Base10 = 10
)

// shortStringMaxLen is the longest ASCII string that fits in a felt.
const shortStringMaxLen = 31

var (
	// Zero felt constant
	Zero = Felt{}
	// One felt constant
	One = *new(Felt).SetUint64(1)

	ErrShortStringTooLong = errors.New("short string exceeds 31 characters")
	ErrNotUint64          = errors.New("felt does not fit in uint64")
)

var bigIntPool = sync.Pool{
	New: func() interface{} {
		return new(big.Int)
	},
}

// Impl returns the underlying field element type
func (z *Felt) Impl() *fp.Element {
	return &z.val
}

// Modulus returns the prime of the field
func Modulus() *big.Int {
	return fp.Modulus()
}

// UnmarshalJSON accepts numbers and strings as input.
// See Element.SetString for valid prefixes (0x, 0b, ...).
// If there is an error, we try to explicitly unmarshal from hex before
// returning an error. This implementation is taken from [gnark-crypto].
//
// [gnark-crypto]: https://github.com/ConsenSys/gnark-crypto/blob/9fd0a7de2044f088a29cfac373da73d868230148/ecc/stark-curve/fp/element.go#L1028-L1056
func (z *Felt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) > fp.Bits*3 {
		return errors.New("value too large (max = Element.Bits * 3)")
	}

	// we accept numbers and strings, remove leading and trailing quotes if any
	if len(s) > 0 && s[0] == '"' {
		s = s[1:]
	}
	if len(s) > 0 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}

	// get temporary big int from the pool
	vv := bigIntPool.Get().(*big.Int)
	defer bigIntPool.Put(vv)

	if _, ok := vv.SetString(s, 0); !ok {
		if _, ok := vv.SetString(s, 16); !ok {
			return errors.New("can't parse into a big.Int: " + s)
		}
	}

	z.val.SetBigInt(vv)
	return nil
}

// MarshalJSON encodes the felt as a quoted 0x-prefixed hex string
func (z *Felt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + z.String() + `"`), nil
}

// MarshalCBOR encodes the felt as its big-endian byte representation
func (z *Felt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(z.Marshal())
}

func (z *Felt) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return err
	}
	z.SetBytes(b)
	return nil
}

// SetBytes forwards the call to underlying field element implementation
func (z *Felt) SetBytes(e []byte) *Felt {
	z.val.SetBytes(e)
	return z
}

// SetString forwards the call to underlying field element implementation
func (z *Felt) SetString(number string) (*Felt, error) {
	_, err := z.val.SetString(number)
	return z, err
}

// SetUint64 forwards the call to underlying field element implementation
func (z *Felt) SetUint64(v uint64) *Felt {
	z.val.SetUint64(v)
	return z
}

// SetBigInt sets z to v reduced modulo the field prime
func (z *Felt) SetBigInt(v *big.Int) *Felt {
	z.val.SetBigInt(v)
	return z
}

// SetRandom forwards the call to underlying field element implementation
func (z *Felt) SetRandom() (*Felt, error) {
	_, err := z.val.SetRandom()
	return z, err
}

// Set copies x into z
func (z *Felt) Set(x *Felt) *Felt {
	z.val.Set(&x.val)
	return z
}

// FromShortString encodes an ASCII string of at most 31 characters as a felt,
// the way Starknet encodes short strings such as chain ids.
func FromShortString(s string) (*Felt, error) {
	if len(s) > shortStringMaxLen {
		return nil, fmt.Errorf("%w: %q", ErrShortStringTooLong, s)
	}
	return new(Felt).SetBytes([]byte(s)), nil
}

// BigInt writes the regular representation of z into res and returns it
func (z *Felt) BigInt(res *big.Int) *big.Int {
	return z.val.BigInt(res)
}

// Uint64 returns the felt as an uint64 or an error if it does not fit
func (z *Felt) Uint64() (uint64, error) {
	if !z.val.IsUint64() {
		return 0, ErrNotUint64
	}
	return z.val.Uint64(), nil
}

// String returns the 0x-prefixed hex representation of z
func (z *Felt) String() string {
	return "0x" + z.val.Text(Base16)
}

// Text forwards the call to underlying field element implementation
func (z *Felt) Text(base int) string {
	return z.val.Text(base)
}

// Equal forwards the call to underlying field element implementation
func (z *Felt) Equal(x *Felt) bool {
	return z.val.Equal(&x.val)
}

// Marshal forwards the call to underlying field element implementation
func (z *Felt) Marshal() []byte {
	return z.val.Marshal()
}

// Bytes forwards the call to underlying field element implementation
func (z *Felt) Bytes() [32]byte {
	return z.val.Bytes()
}

// IsOne forwards the call to underlying field element implementation
func (z *Felt) IsOne() bool {
	return z.val.IsOne()
}

// IsZero forwards the call to underlying field element implementation
func (z *Felt) IsZero() bool {
	return z.val.IsZero()
}

// Add forwards the call to underlying field element implementation
func (z *Felt) Add(x, y *Felt) *Felt {
	z.val.Add(&x.val, &y.val)
	return z
}

// Sub forwards the call to underlying field element implementation
func (z *Felt) Sub(x, y *Felt) *Felt {
	z.val.Sub(&x.val, &y.val)
	return z
}

// Mul forwards the call to underlying field element implementation
func (z *Felt) Mul(x, y *Felt) *Felt {
	z.val.Mul(&x.val, &y.val)
	return z
}

// Square forwards the call to underlying field element implementation
func (z *Felt) Square(x *Felt) *Felt {
	z.val.Square(&x.val)
	return z
}

// Double forwards the call to underlying field element implementation
func (z *Felt) Double(x *Felt) *Felt {
	z.val.Double(&x.val)
	return z
}

// Neg forwards the call to underlying field element implementation
func (z *Felt) Neg(x *Felt) *Felt {
	z.val.Neg(&x.val)
	return z
}

// Inverse sets z to the multiplicative inverse of x. The field implementation
// maps zero to zero, so the bool reports whether x was invertible.
func (z *Felt) Inverse(x *Felt) (*Felt, bool) {
	if x.IsZero() {
		return z, false
	}
	z.val.Inverse(&x.val)
	return z, true
}

// Sqrt sets z to a square root of x. The bool is false, and z unchanged, when
// x is not a quadratic residue.
func (z *Felt) Sqrt(x *Felt) (*Felt, bool) {
	var root fp.Element
	if root.Sqrt(&x.val) == nil {
		return z, false
	}
	z.val = root
	return z, true
}

// Cmp forwards the call to underlying field element implementation
func (z *Felt) Cmp(x *Felt) int {
	return z.val.Cmp(&x.val)
}
