package cli

import (
	"fmt"
	"sort"

	"hackit/internal/featureflags"

	"github.com/spf13/cobra"
)

func FlagsCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Print the feature flag configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			m := featureflags.NewManager(cfg.FeatureFlags)
			raw := m.Raw()
			names := make([]string, 0, len(raw))
			for name := range raw {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				if userID == "" {
					fmt.Fprintf(out, "%s=%s\n", name, raw[name])
					continue
				}
				fmt.Fprintf(out, "%s=%s enabled=%t\n", name, raw[name], m.Enabled(name, userID))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Evaluate rollouts for this user ID")
	return cmd
}
