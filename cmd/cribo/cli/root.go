// Package cli wires cribo's cobra command surface. Grounded on the
// teacher's internal/adapters/inbound/cli root command (newRootCmd with
// SilenceUsage/SilenceErrors, one subcommand-builder function per
// concern), adapted from a multi-subcommand tool to cribo's single bundle
// operation.
package cli

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cribo",
		Short:         "Bundle a Python package into a single source file",
		Long:          "cribo traces a Python entry point's imports and emits one self-contained module, inlining first-party code and leaving stdlib/third-party imports untouched.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newBundleCmd())
	return cmd
}

// NewRootCmdForTest exposes the root command to tests without exporting it
// as part of the package's normal entry point.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}
