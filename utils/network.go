package utils

import (
	"encoding"
	"encoding/json"
	"errors"
	"strings"

	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/spf13/pflag"
)

var ErrUnknownNetwork = errors.New("unknown network (known: mainnet, sepolia, sepolia-integration, integration)")

type Network int

// The following are necessary for Cobra and Viper, respectively, to unmarshal network
// CLI/config parameters properly.
var (
	_ pflag.Value              = (*Network)(nil)
	_ encoding.TextUnmarshaler = (*Network)(nil)
)

const (
	Mainnet Network = iota + 1
	Sepolia
	SepoliaIntegration
	Integration
)

func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Sepolia:
		return "sepolia"
	case SepoliaIntegration:
		return "sepolia-integration"
	case Integration:
		return "integration"
	default:
		// Should not happen.
		panic(ErrUnknownNetwork)
	}
}

func (n *Network) MarshalJSON() ([]byte, error) {
	return json.RawMessage(`"` + n.String() + `"`), nil
}

func (n *Network) Set(s string) error {
	switch strings.ToLower(s) {
	case "mainnet":
		*n = Mainnet
	case "sepolia":
		*n = Sepolia
	case "sepolia-integration", "sepolia_integration":
		*n = SepoliaIntegration
	case "integration":
		*n = Integration
	default:
		return ErrUnknownNetwork
	}
	return nil
}

func (n *Network) Type() string {
	return "Network"
}

func (n *Network) UnmarshalText(text []byte) error {
	return n.Set(string(text))
}

// baseURL returns the base URL without endpoint
func (n Network) baseURL() string {
	switch n {
	case Mainnet:
		return "https://alpha-mainnet.starknet.io/"
	case Sepolia:
		return "https://alpha-sepolia.starknet.io/"
	case SepoliaIntegration:
		return "https://integration-sepolia.starknet.io/"
	case Integration:
		return "https://external.integration.starknet.io/"
	default:
		// Should not happen.
		panic(ErrUnknownNetwork)
	}
}

// FeederURL returns URL for read commands
func (n Network) FeederURL() string {
	return n.baseURL() + "feeder_gateway/"
}

// GatewayURL returns URL for write commands
func (n Network) GatewayURL() string {
	return n.baseURL() + "gateway/"
}

func (n Network) ChainIDString() string {
	switch n {
	case Mainnet:
		return "SN_MAIN"
	case Sepolia:
		return "SN_SEPOLIA"
	case SepoliaIntegration:
		return "SN_INTEGRATION_SEPOLIA"
	case Integration:
		return "SN_GOERLI"
	default:
		// Should not happen.
		panic(ErrUnknownNetwork)
	}
}

// ChainID is the short-string encoding of the chain id, as signed into
// transaction hashes.
func (n Network) ChainID() *felt.Felt {
	return new(felt.Felt).SetBytes([]byte(n.ChainIDString()))
}
