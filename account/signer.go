package account

import (
	"context"

	"github.com/NethermindEth/juno-sdk/core/crypto"
	"github.com/NethermindEth/juno-sdk/core/felt"
)

var _ Signer = (*LocalSigner)(nil)

// LocalSigner signs with a private key held in memory.
type LocalSigner struct {
	privateKey felt.Felt
	publicKey  *crypto.PublicKey
}

func NewLocalSigner(privateKey *felt.Felt) (*LocalSigner, error) {
	pub, err := crypto.PrivateToPublic(privateKey)
	if err != nil {
		return nil, err
	}
	return &LocalSigner{privateKey: *privateKey, publicKey: pub}, nil
}

func (s *LocalSigner) PublicKey() *crypto.PublicKey {
	return s.publicKey
}

func (s *LocalSigner) Sign(ctx context.Context, hash *felt.Felt) ([]*felt.Felt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(&s.privateKey, hash)
	if err != nil {
		return nil, err
	}
	return sig.Felts(), nil
}
