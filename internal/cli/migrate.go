package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/panel_api/internal/repository"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(*repository.Store) error {
				log.Info().Msg("migrations completed successfully")
				fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date.")
				return nil
			})
		},
	}
}
