package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/GTDGit/panel_api/internal/repository"
	"github.com/GTDGit/panel_api/internal/service"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <test-id>",
		Short: "Export a test with its feedback as JSON",
		Long: `Export a test, its product, tester and all feedback entries as a JSON
document for offline analysis.

Examples:
  panelctl export 3f2a... > test.json
  panelctl export 3f2a... --output test.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *repository.Store) error {
				doc, err := service.NewExportService(store).Export(context.Background(), args[0])
				if err != nil {
					return err
				}

				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}
				return writeJSON(w, doc)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
