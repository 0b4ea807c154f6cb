package main

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/juno-sdk/account"
	"github.com/NethermindEth/juno-sdk/clients/gateway"
	"github.com/NethermindEth/juno-sdk/clients/rpc"
	"github.com/NethermindEth/juno-sdk/db"
	"github.com/NethermindEth/juno-sdk/db/pebble"
	"github.com/NethermindEth/juno-sdk/starknet/classcache"
	"github.com/NethermindEth/juno-sdk/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var Version string

const userAgentPrefix = "starkacct/"

// ProviderFactory builds the provider a command talks to. registerer is nil
// unless metrics are enabled.
type ProviderFactory func(cfg *Config, log *utils.ZapLogger, registerer prometheus.Registerer) (account.Provider, error)

func NewCmd(newProvider ProviderFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "starkacct",
		Short:         "Build, sign and send Starknet account transactions.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addConfigFlags(cmd)

	cmd.AddCommand(
		nonceCmd(newProvider),
		invokeCmd(newProvider),
		declareCmd(newProvider),
		selectorCmd(),
		signCmd(),
	)
	return cmd
}

func newProvider(cfg *Config, log *utils.ZapLogger, registerer prometheus.Registerer) (account.Provider, error) {
	userAgent := userAgentPrefix + Version

	if cfg.Provider == rpcProvider {
		client := rpc.NewClient(cfg.RPCURL).WithLogger(log).WithUserAgent(userAgent)
		if registerer != nil {
			listener, err := rpc.NewMetricsListener(registerer)
			if err != nil {
				return nil, err
			}
			client.WithListener(listener)
		}
		return client, nil
	}

	values, err := gateway.ParseTimeouts(cfg.GatewayTimeouts)
	if err != nil {
		return nil, err
	}
	timeouts, err := gateway.NewTimeouts(values...)
	if err != nil {
		return nil, err
	}

	client := gateway.NewClient(cfg.feederURL(), cfg.gatewayURL()).
		WithLogger(log).
		WithUserAgent(userAgent).
		WithAPIKey(cfg.GatewayAPIKey).
		WithTimeouts(timeouts)
	if registerer != nil {
		listener, err := gateway.NewMetricsListener(registerer)
		if err != nil {
			return nil, err
		}
		client.WithListener(listener)
	}
	return client, nil
}

// session holds what a command needs for one run and owns the resources
// opened for it.
type session struct {
	cfg      *Config
	log      *utils.ZapLogger
	provider account.Provider
	registry *prometheus.Registry
	store    *pebble.DB
	cache    *classcache.Cache
}

func newSession(cmd *cobra.Command, newProvider ProviderFactory) (s *session, err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := utils.NewZapLogger(cfg.LogLevel, false)
	if err != nil {
		return nil, err
	}

	s = &session{cfg: cfg, log: log}
	defer utils.RunAndWrapOnError(&err, s.close)

	var registerer prometheus.Registerer
	if cfg.Metrics != "" {
		s.registry = prometheus.NewRegistry()
		registerer = s.registry
	}

	if s.provider, err = newProvider(cfg, log, registerer); err != nil {
		return nil, err
	}

	if cfg.CacheDir != "" {
		if s.store, err = pebble.New(cfg.CacheDir, pebble.WithLogger(log.Named("pebble"))); err != nil {
			return nil, fmt.Errorf("open class cache: %w", err)
		}
		if registerer != nil {
			listener, err := db.NewMetricsListener(registerer)
			if err != nil {
				return nil, err
			}
			s.store.WithListener(listener)
		}
		s.cache = classcache.New(s.store, log.Named("classcache"))
	}
	return s, nil
}

func (s *session) account() (*account.Account, error) {
	address, err := s.cfg.address()
	if err != nil {
		return nil, err
	}
	signer, err := signerFromConfig(s.cfg)
	if err != nil {
		return nil, err
	}

	opts := []account.Option{
		account.WithLogger(s.log.Named("account")),
		account.WithCompression(s.cfg.compression()),
	}
	if s.cache != nil {
		opts = append(opts, account.WithClassCache(s.cache))
	}
	return account.NewAccount(s.provider, signer, address, s.cfg.Network.ChainID(), opts...), nil
}

func signerFromConfig(cfg *Config) (*account.LocalSigner, error) {
	if cfg.PrivateKey == "" {
		return nil, errors.New("private key is required")
	}
	privateKey, err := parseFelt(privateKeyF, cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	return account.NewLocalSigner(privateKey)
}

func (s *session) close() error {
	var errs []error
	if s.registry != nil {
		if err := prometheus.WriteToTextfile(s.cfg.Metrics, s.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}

// withSession runs fn with a fresh session and closes it afterwards.
func withSession(newProvider ProviderFactory, fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		s, err := newSession(cmd, newProvider)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := s.close(); closeErr != nil {
				err = errors.Join(err, closeErr)
			}
		}()
		return fn(cmd, args, s)
	}
}

func nonceCmd(newProvider ProviderFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "nonce [address]",
		Short: "Print the pending nonce of an account.",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(newProvider, func(cmd *cobra.Command, args []string, s *session) error {
			address, err := s.cfg.address()
			if len(args) == 1 {
				address, err = parseFelt("address", args[0])
			}
			if err != nil {
				return err
			}

			nonce, err := s.provider.Nonce(cmd.Context(), address)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), nonce)
			return err
		}),
	}
}
