// Package commands implements CLI command handlers for source-licenser.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/source-licenser/pkg/version"
)

// NewRootCommand creates the source-licenser command. The root command
// itself performs a run; version is its only subcommand.
func NewRootCommand() *cobra.Command {
	rc := &RunCommand{}

	cmd := &cobra.Command{
		Use:   "source-licenser [flags] <directory>",
		Short: "Add license headers, footers and files to a source tree",
		Long: `source-licenser walks a directory and applies the license actions configured
for each file pattern: header and footer comment blocks, package.json
properties and sibling LICENSE files.`,
		Args:          rc.validateArgs,
		RunE:          rc.run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rc.registerFlags(cmd)
	cmd.AddCommand(versionCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
