package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GTDGit/panel_api/internal/cache"
	"github.com/GTDGit/panel_api/internal/repository"
	"github.com/GTDGit/panel_api/internal/service"
)

func newCompleteExpiredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete-expired",
		Short: "Complete ACTIVE tests whose duration has elapsed",
		Long: `Complete every ACTIVE test whose start date plus duration is in the past,
releasing testers and products that have no other active test.

Safe to run repeatedly, e.g. from cron:
  0 * * * * panelctl complete-expired`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *repository.Store) error {
				lifecycle := service.NewLifecycleService(store, cache.NewLocalLocker())
				ids, err := lifecycle.CompleteExpired(context.Background(), time.Now().UTC())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Completed %d test(s).\n", len(ids))
				for _, id := range ids {
					fmt.Fprintf(out, "  %s\n", id)
				}
				return nil
			})
		},
	}
}
