package main

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/spf13/cobra"
)

const (
	nonceF         = "nonce"
	maxFeeF        = "max-fee"
	feeMultiplierF = "fee-multiplier"
	modeF          = "mode"

	modeEstimate = "estimate"
	modeSimulate = "simulate"
	modeSend     = "send"
)

// txFlags are the options shared by every command that builds a
// transaction.
type txFlags struct {
	nonce         string
	maxFee        string
	feeMultiplier float64
	mode          string
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nonce, nonceF, "", "Nonce to use instead of the account's pending nonce.")
	cmd.Flags().StringVar(&f.maxFee, maxFeeF, "", "Max fee. Estimated when unset.")
	cmd.Flags().Float64Var(&f.feeMultiplier, feeMultiplierF, 1.1, "Multiplier applied to the estimated fee.")
	cmd.Flags().StringVar(&f.mode, modeF, modeSend, "Options: estimate, simulate, send.")
}

func (f *txFlags) validate() error {
	switch f.mode {
	case modeEstimate, modeSimulate, modeSend:
		return nil
	default:
		return fmt.Errorf("unknown mode %q", f.mode)
	}
}

type txOptionSetter[T any] interface {
	Nonce(nonce *felt.Felt) T
	MaxFee(maxFee *felt.Felt) T
	FeeEstimateMultiplier(multiplier float64) T
}

func applyTxFlags[T txOptionSetter[T]](cmd *cobra.Command, tx T, f *txFlags) (T, error) {
	if f.nonce != "" {
		nonce, err := parseFelt(nonceF, f.nonce)
		if err != nil {
			return tx, err
		}
		tx = tx.Nonce(nonce)
	}
	if f.maxFee != "" {
		maxFee, err := parseFelt(maxFeeF, f.maxFee)
		if err != nil {
			return tx, err
		}
		tx = tx.MaxFee(maxFee)
	}
	if cmd.Flags().Changed(feeMultiplierF) {
		tx = tx.FeeEstimateMultiplier(f.feeMultiplier)
	}
	return tx, nil
}

type pipeline interface {
	EstimateFee(ctx context.Context) (*starknet.FeeEstimate, error)
	Simulate(ctx context.Context) (*starknet.SimulationResult, error)
	Send(ctx context.Context) (*starknet.AddTransactionResult, error)
}

func runPipeline(cmd *cobra.Command, p pipeline, mode string) error {
	out := cmd.OutOrStdout()
	switch mode {
	case modeEstimate:
		estimate, err := p.EstimateFee(cmd.Context())
		if err != nil {
			return err
		}
		printFeeEstimate(out, estimate)
	case modeSimulate:
		result, err := p.Simulate(cmd.Context())
		if err != nil {
			return err
		}
		return printSimulation(out, result)
	case modeSend:
		result, err := p.Send(cmd.Context())
		if err != nil {
			return err
		}
		printAddResult(out, result)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	return nil
}
