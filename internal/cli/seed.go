package cli

import (
	"fmt"

	"hackit/internal/bootstrap"
	"hackit/internal/seed"

	"github.com/spf13/cobra"
)

func SeedCmd() *cobra.Command {
	var opts seed.Options
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the demo feed and optional fake posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.DryRun {
				report, err := seed.NewSeeder(nil, opts).Run()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "dry run: %s\n", report)
				return nil
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(ctx) }()

			report, err := seed.NewSeeder(rt.DB, opts).Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded: %s\n", report)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.FakePosts, "fake", 0, "Number of gofakeit posts to add")
	cmd.Flags().IntVar(&opts.FakeUsers, "fake-users", 0, "Number of fake authors")
	cmd.Flags().IntVar(&opts.MaxDays, "max-days", 30, "Spread fake posts over the past N days")
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "Delete existing data first")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report without writing")
	cmd.Flags().BoolVar(&opts.SkipBcrypt, "fast", false, "Skip bcrypt for fake users")
	return cmd
}
