// Package classcache keeps compressed contract classes keyed by class hash.
// Compression is deterministic, so a cached entry is byte-identical to what
// compressing the class again would produce.
package classcache

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/juno-sdk/account"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/db"
	"github.com/NethermindEth/juno-sdk/encoder"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/NethermindEth/juno-sdk/utils"
)

var _ account.ClassCache = (*Cache)(nil)

var keyPrefix = []byte("compressed_class/")

// record is the stored form of a compressed class.
type record struct {
	Kind   starknet.ClassKind
	Sierra *starknet.CompressedSierraClass
	Legacy *starknet.CompressedLegacyClass
}

type Cache struct {
	store db.KeyValueStore
	log   utils.SimpleLogger
}

func New(store db.KeyValueStore, log utils.SimpleLogger) *Cache {
	return &Cache{store: store, log: log}
}

func key(classHash *felt.Felt) []byte {
	hash := classHash.Bytes()
	return append(append([]byte{}, keyPrefix...), hash[:]...)
}

// Lookup returns the cached class, or db.ErrKeyNotFound.
func (c *Cache) Lookup(classHash *felt.Felt) (*starknet.CompressedClass, error) {
	var rec record
	err := c.store.Get(key(classHash), func(value []byte) error {
		return encoder.Unmarshal(value, &rec)
	})
	if err != nil {
		return nil, err
	}

	switch {
	case rec.Kind == starknet.SierraKind && rec.Sierra != nil:
		return &starknet.CompressedClass{Sierra: rec.Sierra}, nil
	case rec.Kind == starknet.LegacyKind && rec.Legacy != nil:
		return &starknet.CompressedClass{Legacy: rec.Legacy}, nil
	default:
		return nil, fmt.Errorf("corrupt cache entry for class %s", classHash)
	}
}

// Get reports a miss for absent and unreadable entries alike; the latter are
// logged.
func (c *Cache) Get(classHash *felt.Felt) (*starknet.CompressedClass, bool) {
	class, err := c.Lookup(classHash)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.log.Warnw("Failed to read cached class", "classHash", classHash, "err", err)
		}
		return nil, false
	}
	return class, true
}

func (c *Cache) Put(classHash *felt.Felt, class *starknet.CompressedClass) error {
	rec := record{Sierra: class.Sierra, Legacy: class.Legacy}
	switch {
	case class.Sierra != nil:
		rec.Kind = starknet.SierraKind
	case class.Legacy != nil:
		rec.Kind = starknet.LegacyKind
	default:
		return errors.New("empty compressed class")
	}

	value, err := encoder.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode class %s: %w", classHash, err)
	}
	return c.store.Put(key(classHash), value)
}
