package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/panel_api/internal/config"
	"github.com/GTDGit/panel_api/internal/database"
	"github.com/GTDGit/panel_api/internal/repository"
)

// NewRootCmd builds the panelctl command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "panelctl",
		Short: "Maintenance tasks for the product testing panel",
		Long: `panelctl runs maintenance tasks against the panel database.

It reads the same environment (and .env file) as the API server, but only
the database settings are required.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newMigrateCmd(),
		newCompleteExpiredCmd(),
		newExportCmd(),
		newHashPasswordCmd(),
		newSecretCmd(),
	)
	return root
}

// Execute runs panelctl with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// withStore opens the configured database, executes fn, and closes it.
func withStore(fn func(*repository.Store) error) error {
	cfg, err := config.Read()
	if err != nil {
		return err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	db, err := database.Connect(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	return fn(repository.NewStore(db))
}

func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
