package cli

import (
	"fmt"
	"os"

	"hackit/internal/onboarding"

	"github.com/spf13/cobra"
)

func CatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Onboarding catalog tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [file]",
		Short: "Validate the embedded catalog or a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				c   *onboarding.Catalog
				err error
			)
			if len(args) == 1 {
				// #nosec G304: path comes from CLI args in an operator tool
				data, rerr := os.ReadFile(args[0])
				if rerr != nil {
					return rerr
				}
				c, err = onboarding.Parse(data)
			} else {
				c, err = onboarding.Load()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d languages, %d store types, %d starter items\n",
				len(c.Languages), len(c.StoreTypes), len(c.Inventory.Starter))
			return nil
		},
	})
	return cmd
}
