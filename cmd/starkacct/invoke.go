package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NethermindEth/juno-sdk/account"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/spf13/cobra"
)

const (
	callF   = "call"
	dryRunF = "dry-run"
)

func invokeCmd(newProvider ProviderFactory) *cobra.Command {
	var (
		flags  txFlags
		calls  []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Execute calls from the account.",
		Long: `Execute one or more calls from the account as a single invoke transaction.

Calls are given as <to>:<function>[:<arg>,<arg>...], where function is either
an entry point name or a hex selector.`,
		Example: "starkacct invoke --call 0x49d3...:transfer:0x105,1,0 --mode estimate",
		Args:    cobra.NoArgs,
		RunE: withSession(newProvider, func(cmd *cobra.Command, _ []string, s *session) error {
			if err := flags.validate(); err != nil {
				return err
			}
			parsed, err := parseCalls(calls)
			if err != nil {
				return err
			}

			if dryRun {
				encoded, err := account.EncodeCalls(parsed)
				if err != nil {
					return err
				}
				decoded, err := account.DecodeCalls(encoded)
				if err != nil {
					return err
				}
				printCalls(cmd.OutOrStdout(), decoded)
				return nil
			}

			acc, err := s.account()
			if err != nil {
				return err
			}
			execution, err := applyTxFlags(cmd, acc.Execute(parsed), &flags)
			if err != nil {
				return err
			}
			return runPipeline(cmd, execution, flags.mode)
		}),
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVar(&calls, callF, nil, "Call to execute, may be repeated.")
	cmd.Flags().BoolVar(&dryRun, dryRunF, false, "Print the encoded multicall instead of sending it.")
	return cmd
}

func parseCalls(values []string) ([]account.Call, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("at least one --%s is required", callF)
	}
	calls := make([]account.Call, 0, len(values))
	for i, value := range values {
		call, err := parseCall(value)
		if err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
		calls = append(calls, call)
	}
	return calls, nil
}

func parseCall(value string) (account.Call, error) {
	parts := strings.SplitN(value, ":", 3)
	if len(parts) < 2 || parts[1] == "" {
		return account.Call{}, errors.New("expected <to>:<function>[:<args>]")
	}

	to, err := parseFelt("to", parts[0])
	if err != nil {
		return account.Call{}, err
	}

	var calldata []*felt.Felt
	if len(parts) == 3 && parts[2] != "" {
		for _, arg := range strings.Split(parts[2], ",") {
			f, err := parseFelt("argument", strings.TrimSpace(arg))
			if err != nil {
				return account.Call{}, err
			}
			calldata = append(calldata, f)
		}
	}

	if strings.HasPrefix(parts[1], "0x") {
		selector, err := parseFelt("selector", parts[1])
		if err != nil {
			return account.Call{}, err
		}
		return account.Call{To: to, Selector: selector, Calldata: calldata}, nil
	}
	return account.NewCall(to, parts[1], calldata...), nil
}
