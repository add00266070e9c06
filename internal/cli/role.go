package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"hackit/internal/bootstrap"
	"hackit/internal/repository"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func RoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage account roles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <uid> <role>",
		Short: "Set the role of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *gorm.DB) error {
				return setRole(cmd.Context(), db, cmd.OutOrStdout(), args[0], args[1])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list <role>",
		Short: "List accounts holding a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *gorm.DB) error {
				return listRole(cmd.Context(), db, cmd.OutOrStdout(), args[0])
			})
		},
	})
	return cmd
}

func withDB(ctx context.Context, fn func(*gorm.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipSchema: true})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(ctx) }()
	return fn(rt.DB)
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func setRole(ctx context.Context, db *gorm.DB, out io.Writer, uid, role string) error {
	role = normalizeRole(role)
	if role == "" {
		return errors.New("role must not be empty")
	}
	user, changed, err := repository.NewUserRepository(db).SetRole(ctx, uid, role)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintf(out, "%s (%s) already has role %s\n", user.Email, user.ID, role)
		return nil
	}
	fmt.Fprintf(out, "✅ %s (%s) is now %s\n", user.Email, user.ID, role)
	return nil
}

func listRole(ctx context.Context, db *gorm.DB, out io.Writer, role string) error {
	role = normalizeRole(role)
	users, err := repository.NewUserRepository(db).ListByRole(ctx, role)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintf(out, "no accounts with role %s\n", role)
		return nil
	}
	for _, u := range users {
		fmt.Fprintf(out, "%s\t%s\t%s\n", u.ID, u.Email, u.Name)
	}
	return nil
}
