package main

import (
	"github.com/NethermindEth/juno-sdk/core/crypto"
	"github.com/spf13/cobra"
)

func selectorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selector <name>...",
		Short: "Print the entry point selector of each name.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := newTable(cmd.OutOrStdout(), "Name", "Selector")
			for _, name := range args {
				selector, err := crypto.SelectorFromName(name)
				if err != nil {
					return err
				}
				table.Append([]string{name, selector.String()})
			}
			table.Render()
			return nil
		},
	}
}

func signCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign <hash>",
		Short: "Sign a message hash with the configured private key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			signer, err := signerFromConfig(cfg)
			if err != nil {
				return err
			}
			hash, err := parseFelt("hash", args[0])
			if err != nil {
				return err
			}

			signature, err := signer.Sign(cmd.Context(), hash)
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout(), "Field", "Value")
			table.AppendBulk([][]string{
				{"Public key", feltString(signer.PublicKey().X())},
				{"r", feltString(signature[0])},
				{"s", feltString(signature[1])},
			})
			table.Render()
			return nil
		},
	}
}
