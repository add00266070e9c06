package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"text/tabwriter"

	"hackit/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// statQueries are run in order; each returns a single count.
var statQueries = []struct {
	label string
	sql   string
}{
	{"users", `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`},
	{"posts", `SELECT COUNT(*) FROM posts`},
	{"likes", `SELECT COUNT(*) FROM likes`},
	{"comments", `SELECT COUNT(*) FROM comments`},
	{"unread_notifications", `SELECT COUNT(*) FROM notifications WHERE read = false`},
	{"vendors", `SELECT COUNT(*) FROM vendor_profiles`},
}

func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print row counts from the primary Postgres database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dsn, err := postgresURL(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := pgxpool.New(ctx, dsn)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			counts, err := collectStats(ctx, pool)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, q := range statQueries {
				fmt.Fprintf(w, "%s\t%d\n", q.label, counts[q.label])
			}
			return w.Flush()
		},
	}
}

func collectStats(ctx context.Context, pool *pgxpool.Pool) (map[string]int64, error) {
	out := make(map[string]int64, len(statQueries))
	for _, q := range statQueries {
		var n int64
		if err := pool.QueryRow(ctx, q.sql).Scan(&n); err != nil {
			return nil, fmt.Errorf("%s: %w", q.label, err)
		}
		out[q.label] = n
	}
	return out, nil
}

// postgresURL builds a pgx connection URL from the DB_* settings.
func postgresURL(cfg *config.Config) (string, error) {
	if cfg.DBDriver != "" && cfg.DBDriver != "postgres" {
		return "", errors.New("stats requires DB_DRIVER=postgres")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:   net.JoinHostPort(cfg.DBHost, cfg.DBPort),
		Path:   "/" + cfg.DBName,
	}
	q := u.Query()
	if cfg.DBSSLMode != "" {
		q.Set("sslmode", cfg.DBSSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
