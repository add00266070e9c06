package cli

import (
	"encoding/json"
	"fmt"

	"hackit/internal/bootstrap"
	"hackit/internal/docstore"

	"github.com/spf13/cobra"
)

func DocstoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docstore",
		Short: "Inspect users/{uid} documents",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <uid>",
		Short: "Print one user document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipSchema: true})
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(ctx) }()

			store, err := docstore.New(ctx, cfg, rt.DB)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(ctx) }()

			doc, err := store.GetUser(ctx, args[0])
			if err != nil {
				return err
			}
			if doc == nil {
				return fmt.Errorf("users/%s not found", args[0])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	})
	return cmd
}
