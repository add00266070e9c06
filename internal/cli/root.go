// Package cli implements hackitctl, the operator command line for a hackit
// deployment.
package cli

import (
	"hackit/internal/config"

	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute() error {
	return NewRoot().Execute()
}

// loadConfig is replaced in tests.
var loadConfig = config.LoadConfig

// NewRoot builds the hackitctl command tree.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "hackitctl",
		Short:         "Operate a hackit backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		SeedCmd(),
		StatsCmd(),
		DocstoreCmd(),
		FlagsCmd(),
		CatalogCmd(),
		OpenAPICmd(),
		RoleCmd(),
	)
	return root
}
