package crypto

import (
	"github.com/NethermindEth/juno-sdk/core/felt"
	pedersenhash "github.com/consensys/gnark-crypto/ecc/stark-curve/pedersen-hash"
	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pedersenCacheSize bounds the pair cache. Transaction hashing recomputes the
// same prefixes (tx type, version, sender) for every transaction of a session.
const pedersenCacheSize = 1 << 16

// PedersenArray implements [Pedersen array hashing].
//
// [Pedersen array hashing]: https://docs.starknet.io/documentation/develop/Hashing/hash-functions/#array_hashing
func PedersenArray(elems ...*felt.Felt) *felt.Felt {
	var digest PedersenDigest
	return digest.Update(elems...).Finish()
}

var lruPedersen, _ = lru.New(pedersenCacheSize)

var pedersenCache = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "crypto",
	Name:      "pedersen_cache",
	Help:      "Pedersen pair cache lookups by hit",
}, []string{"hit"})

type lruKey struct {
	x, y felt.Felt
}

// Pedersen implements the [Pedersen hash].
//
// [Pedersen hash]: https://docs.starknet.io/documentation/develop/Hashing/hash-functions/#pedersen_hash
func Pedersen(a, b *felt.Felt) *felt.Felt {
	key := lruKey{
		x: *a, y: *b,
	}

	if res, ok := lruPedersen.Get(key); ok {
		pedersenCache.WithLabelValues("true").Inc()
		cached := res.(felt.Felt)
		return &cached
	}

	hash := pedersenhash.Pedersen(a.Impl(), b.Impl())
	result := felt.NewFelt(&hash)
	lruPedersen.Add(key, *result)
	pedersenCache.WithLabelValues("false").Inc()
	return result
}

var _ Digest = (*PedersenDigest)(nil)

type PedersenDigest struct {
	digest felt.Felt
	count  uint64
}

func (d *PedersenDigest) Update(elems ...*felt.Felt) Digest {
	for idx := range elems {
		d.digest = *Pedersen(&d.digest, elems[idx])
	}
	d.count += uint64(len(elems))
	return d
}

func (d *PedersenDigest) Finish() *felt.Felt {
	d.digest = *Pedersen(&d.digest, new(felt.Felt).SetUint64(d.count))
	return new(felt.Felt).Set(&d.digest)
}
