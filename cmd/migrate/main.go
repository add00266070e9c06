// Command migrate runs schema operations for the backend.
package main

import (
	"fmt"
	"os"
	"strconv"

	"hackit/internal/config"
	"hackit/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func connect() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.Options{SkipReadReplica: true})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, db, nil
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the hackit database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			m, err := database.NewMigrator(db)
			if err != nil {
				return err
			}
			n, err := m.Up(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", n)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "auto",
		Short: "Run GORM AutoMigrate over the persistent models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			cfg.DBSchemaMode = database.SchemaModeAuto
			if err := database.ApplySchema(cmd.Context(), db, cfg); err != nil {
				return fmt.Errorf("auto schema apply failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "automigrations applied")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema policy and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			status, err := database.GetSchemaStatus(cmd.Context(), db, cfg)
			if err != nil {
				return fmt.Errorf("schema status failed: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
				status.Mode, status.Environment, status.SQL, status.Auto,
				len(status.AppliedVersions), len(status.PendingMigrations))
			for _, m := range status.PendingMigrations {
				fmt.Fprintf(out, "pending: %s\n", m)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down <version>",
		Short: "Roll back one applied migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			_, db, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			m, err := database.NewMigrator(db)
			if err != nil {
				return err
			}
			if err := m.Down(cmd.Context(), version); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back migration %d\n", version)
			return nil
		},
	})
	return root
}
