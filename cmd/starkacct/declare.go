package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/NethermindEth/juno-sdk/core"
	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/starknet"
	"github.com/spf13/cobra"
)

const (
	compiledClassHashF = "compiled-class-hash"
	classHashF         = "class-hash"
	inspectF           = "inspect"
)

func declareCmd(newProvider ProviderFactory) *cobra.Command {
	var (
		flags             txFlags
		compiledClassHash string
		classHash         string
		inspect           bool
	)

	cmd := &cobra.Command{
		Use:   "declare <class.json>",
		Short: "Declare a Sierra or legacy contract class.",
		Long: `Declare a contract class from its JSON definition.

Sierra classes need --compiled-class-hash. Legacy classes need --class-hash.`,
		Args: cobra.ExactArgs(1),
		RunE: withSession(newProvider, func(cmd *cobra.Command, args []string, s *session) error {
			if err := flags.validate(); err != nil {
				return err
			}
			class, err := readClass(args[0])
			if err != nil {
				return err
			}

			var hashOverride *felt.Felt
			if classHash != "" {
				if hashOverride, err = parseFelt(classHashF, classHash); err != nil {
					return err
				}
			}

			if inspect {
				return inspectClass(cmd, class, hashOverride, s.cfg.compression())
			}

			var compiled *felt.Felt
			if compiledClassHash != "" {
				if compiled, err = parseFelt(compiledClassHashF, compiledClassHash); err != nil {
					return err
				}
			}

			acc, err := s.account()
			if err != nil {
				return err
			}
			declaration := acc.Declare(class, compiled)
			if hashOverride != nil {
				declaration = declaration.ClassHash(hashOverride)
			}
			if declaration, err = applyTxFlags(cmd, declaration, &flags); err != nil {
				return err
			}
			return runPipeline(cmd, declaration, flags.mode)
		}),
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&compiledClassHash, compiledClassHashF, "", "Hash of the compiled (CASM) class.")
	cmd.Flags().StringVar(&classHash, classHashF, "", "Class hash, computed for Sierra classes when unset.")
	cmd.Flags().BoolVar(&inspect, inspectF, false, "Compress the class and print a summary instead of declaring it.")
	return cmd
}

func readClass(path string) (*starknet.DeployedClass, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return starknet.DecodeDeployedClass(data)
}

// inspectClass compresses the class the way a declaration would and checks
// the program survives decompression.
func inspectClass(cmd *cobra.Command, class *starknet.DeployedClass, classHash *felt.Felt,
	cfg starknet.CompressionConfig,
) error {
	if classHash == nil {
		var err error
		if classHash, err = (core.SierraClassHasher{}).ClassHash(class); err != nil && !errors.Is(err, core.ErrLegacyClassHash) {
			return err
		}
	}

	compressed, err := starknet.CompressClass(class, cfg)
	if err != nil {
		return err
	}

	var program, version string
	var entryPoints int
	switch class.Kind {
	case starknet.SierraKind:
		program = compressed.Sierra.SierraProgram
		version = class.Sierra.Version
		entryPoints = len(class.Sierra.EntryPoints.Constructor) + len(class.Sierra.EntryPoints.External) +
			len(class.Sierra.EntryPoints.L1Handler)
	case starknet.LegacyKind:
		program = compressed.Legacy.Program
		version = "0"
		entryPoints = len(class.Legacy.EntryPoints.Constructor) + len(class.Legacy.EntryPoints.External) +
			len(class.Legacy.EntryPoints.L1Handler)
	}

	raw, err := starknet.DecompressProgram(program)
	if err != nil {
		return fmt.Errorf("compressed program does not round trip: %w", err)
	}

	table := newTable(cmd.OutOrStdout(), "Field", "Value")
	table.AppendBulk([][]string{
		{"Kind", class.Kind.String()},
		{"Class hash", feltString(classHash)},
		{"Version", version},
		{"Entry points", strconv.Itoa(entryPoints)},
		{"Program bytes", strconv.Itoa(len(raw))},
		{"Compressed bytes", strconv.Itoa(len(program))},
	})
	table.Render()
	return nil
}
