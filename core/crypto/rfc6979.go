package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
	"math/big"

	"github.com/NethermindEth/juno-sdk/core/curve"
)

// rfc6979 yields the deterministic nonces of RFC 6979 section 3.2 over the
// curve order, using HMAC-SHA256.
type rfc6979 struct {
	k, v []byte
	qlen int
	mac  func() hash.Hash
}

func newRFC6979(priv, msgHash *big.Int) *rfc6979 {
	g := &rfc6979{
		k:    make([]byte, sha256.Size),
		v:    make([]byte, sha256.Size),
		qlen: curve.Order.BitLen(),
	}
	for i := range g.v {
		g.v[i] = 0x01
	}

	x := g.int2octets(priv)
	h := g.bits2octets(g.int2octets(msgHash))

	g.k = g.hmac(g.v, []byte{0x00}, x, h)
	g.v = g.hmac(g.v)
	g.k = g.hmac(g.v, []byte{0x01}, x, h)
	g.v = g.hmac(g.v)
	return g
}

func (g *rfc6979) hmac(parts ...[]byte) []byte {
	m := hmac.New(sha256.New, g.k)
	for _, p := range parts {
		m.Write(p)
	}
	return m.Sum(nil)
}

func (g *rfc6979) rolen() int {
	return (g.qlen + 7) / 8
}

func (g *rfc6979) bits2int(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if excess := len(b)*8 - g.qlen; excess > 0 {
		v.Rsh(v, uint(excess))
	}
	return v
}

func (g *rfc6979) int2octets(v *big.Int) []byte {
	out := make([]byte, g.rolen())
	return v.FillBytes(out)
}

func (g *rfc6979) bits2octets(b []byte) []byte {
	z := g.bits2int(b)
	z.Mod(z, curve.Order)
	return g.int2octets(z)
}

// next returns the following candidate k in [1, order).
func (g *rfc6979) next() *big.Int {
	for {
		var t []byte
		for len(t) < g.rolen() {
			g.v = g.hmac(g.v)
			t = append(t, g.v...)
		}
		k := g.bits2int(t[:g.rolen()])

		// prepare the state for a following call, whether or not k is usable
		g.k = g.hmac(g.v, []byte{0x00})
		g.v = g.hmac(g.v)

		if inRange(k, curve.Order) {
			return k
		}
	}
}
