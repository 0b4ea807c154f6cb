package core

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/juno-sdk/core/crypto"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/sourcegraph/conc"
)

const sierraVersionPrefix = "CONTRACT_CLASS_V"

// SierraClassHash computes the [class hash] of a Sierra class.
//
// [class hash]: https://docs.starknet.io/architecture-and-concepts/smart-contracts/class-hash/
func SierraClassHash(class *starknet.SierraClass) (*felt.Felt, error) {
	if _, err := ParseSierraVersion(class.Version); err != nil {
		return nil, err
	}
	version, err := felt.FromShortString(sierraVersionPrefix + class.Version)
	if err != nil {
		return nil, fmt.Errorf("contract class version %q: %w", class.Version, err)
	}

	var wg conc.WaitGroup
	var externalHash, l1HandlerHash, constructorHash, abiHash, programHash *felt.Felt
	var abiErr error
	wg.Go(func() { externalHash = entryPointsHash(class.EntryPoints.External) })
	wg.Go(func() { l1HandlerHash = entryPointsHash(class.EntryPoints.L1Handler) })
	wg.Go(func() { constructorHash = entryPointsHash(class.EntryPoints.Constructor) })
	wg.Go(func() { abiHash, abiErr = crypto.StarknetKeccak([]byte(class.Abi)) })
	wg.Go(func() { programHash = crypto.PoseidonArray(class.Program...) })
	wg.Wait()

	if abiErr != nil {
		return nil, abiErr
	}

	return crypto.PoseidonArray(
		version,
		externalHash,
		l1HandlerHash,
		constructorHash,
		abiHash,
		programHash,
	), nil
}

func entryPointsHash(entryPoints []starknet.SierraEntryPoint) *felt.Felt {
	elems := make([]*felt.Felt, 0, len(entryPoints)*2)
	for _, ep := range entryPoints {
		elems = append(elems, ep.Selector, new(felt.Felt).SetUint64(ep.Index))
	}
	return crypto.PoseidonArray(elems...)
}

// SierraClassHasher hashes Sierra classes. Legacy class hashes depend on the
// compiler's JSON formatting and must be supplied by the caller.
type SierraClassHasher struct{}

var ErrLegacyClassHash = errors.New("legacy class hash must be supplied explicitly")

func (SierraClassHasher) ClassHash(class *starknet.DeployedClass) (*felt.Felt, error) {
	if class.Kind != starknet.SierraKind {
		return nil, ErrLegacyClassHash
	}
	return SierraClassHash(class.Sierra)
}
