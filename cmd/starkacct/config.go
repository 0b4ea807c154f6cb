package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/NethermindEth/juno-sdk/utils"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configF           = "config"
	networkF          = "network"
	providerF         = "provider"
	gatewayURLF       = "gateway-url"
	feederURLF        = "feeder-url"
	gatewayTimeoutsF  = "gateway-timeouts"
	gatewayAPIKeyF    = "gateway-api-key"
	rpcURLF           = "rpc-url"
	addressF          = "address"
	privateKeyF       = "private-key"
	logLevelF         = "log-level"
	compressionLevelF = "compression-level"
	cacheDirF         = "cache-dir"
	metricsF          = "metrics"

	defaultConfig          = ""
	defaultProvider        = gatewayProvider
	defaultGatewayURL      = ""
	defaultFeederURL       = ""
	defaultGatewayTimeouts = "10s"
	defaultGatewayAPIKey   = ""
	defaultRPCURL          = ""
	defaultAddress         = ""
	defaultPrivateKey      = ""
	defaultCacheDir        = ""
	defaultMetrics         = ""

	configFlagUsage  = "The YAML configuration file."
	networkUsage     = "Options: mainnet, sepolia, sepolia-integration, integration."
	providerUsage    = "Where transactions are sent. Options: gateway, rpc."
	gatewayURLUsage  = "Gateway base URL. Defaults to the network's gateway."
	feederURLUsage   = "Feeder gateway base URL. Defaults to the network's feeder gateway."
	gatewayTimeouts  = "Comma separated HTTP timeouts for feeder queries. A single value grows on failures."
	gatewayAPIKey    = "API key sent to the feeder gateway and the gateway to bypass throttling."
	rpcURLUsage      = "JSON-RPC endpoint, required with --provider rpc."
	addressUsage     = "Address of the account contract."
	privateKeyUsage  = "Private key of the account signer. Prefer the STARKACCT_PRIVATE_KEY environment variable."
	logLevelUsage    = "Options: debug, info, warn, error."
	compressionUsage = "Gzip level used when compressing declared classes."
	cacheDirUsage    = "Directory of the compressed class cache. Disabled if empty."
	metricsUsage     = "Write client metrics in Prometheus text format to this file on exit."

	envPrefix = "STARKACCT"

	gatewayProvider = "gateway"
	rpcProvider     = "rpc"
)

var errNoAddress = errors.New("account address is required")

type Config struct {
	Network          utils.Network  `mapstructure:"network"`
	Provider         string         `mapstructure:"provider"`
	GatewayURL       string         `mapstructure:"gateway-url"`
	FeederURL        string         `mapstructure:"feeder-url"`
	GatewayTimeouts  string         `mapstructure:"gateway-timeouts"`
	GatewayAPIKey    string         `mapstructure:"gateway-api-key"`
	RPCURL           string         `mapstructure:"rpc-url"`
	Address          string         `mapstructure:"address"`
	PrivateKey       string         `mapstructure:"private-key"`
	LogLevel         utils.LogLevel `mapstructure:"log-level"`
	CompressionLevel int            `mapstructure:"compression-level"`
	CacheDir         string         `mapstructure:"cache-dir"`
	Metrics          string         `mapstructure:"metrics"`
}

func addConfigFlags(cmd *cobra.Command) {
	defaultNetwork := utils.Mainnet
	defaultLogLevel := utils.WARN

	flags := cmd.PersistentFlags()
	flags.String(configF, defaultConfig, configFlagUsage)
	flags.Var(&defaultNetwork, networkF, networkUsage)
	flags.String(providerF, defaultProvider, providerUsage)
	flags.String(gatewayURLF, defaultGatewayURL, gatewayURLUsage)
	flags.String(feederURLF, defaultFeederURL, feederURLUsage)
	flags.String(gatewayTimeoutsF, defaultGatewayTimeouts, gatewayTimeouts)
	flags.String(gatewayAPIKeyF, defaultGatewayAPIKey, gatewayAPIKey)
	flags.String(rpcURLF, defaultRPCURL, rpcURLUsage)
	flags.String(addressF, defaultAddress, addressUsage)
	flags.String(privateKeyF, defaultPrivateKey, privateKeyUsage)
	flags.Var(&defaultLogLevel, logLevelF, logLevelUsage)
	flags.Int(compressionLevelF, starknet.DefaultCompressionConfig().Level, compressionUsage)
	flags.String(cacheDirF, defaultCacheDir, cacheDirUsage)
	flags.String(metricsF, defaultMetrics, metricsUsage)
}

// loadConfig resolves the configuration with the precedence flags, then
// STARKACCT_* environment variables, then the config file, then defaults.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()

	cfgFile, err := cmd.Flags().GetString(configF)
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(cfgFile)
		if err = v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err = v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	cfg := new(Config)
	err = v.Unmarshal(cfg, viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc()))
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case gatewayProvider:
	case rpcProvider:
		if cfg.RPCURL == "" {
			return nil, fmt.Errorf("--%s is required with --%s %s", rpcURLF, providerF, rpcProvider)
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	return cfg, nil
}

func (c *Config) feederURL() string {
	if c.FeederURL != "" {
		return c.FeederURL
	}
	return c.Network.FeederURL()
}

func (c *Config) gatewayURL() string {
	if c.GatewayURL != "" {
		return c.GatewayURL
	}
	return c.Network.GatewayURL()
}

func (c *Config) address() (*felt.Felt, error) {
	if c.Address == "" {
		return nil, errNoAddress
	}
	return parseFelt(addressF, c.Address)
}

func (c *Config) compression() starknet.CompressionConfig {
	return starknet.CompressionConfig{Level: c.CompressionLevel}
}

func parseFelt(name, value string) (*felt.Felt, error) {
	f, err := new(felt.Felt).SetString(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}
