package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/importer"
	"github.com/conorfennell/knoldeck/internal/ui"
)

func newImportCmd(a *app) *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "import <deck> <dir-or-git-url>",
		Short: "Import Q:/A: markdown cards from a directory or git repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, cleanup, err := a.open()
			if err != nil {
				return err
			}
			defer cleanup()

			deck, err := resolveDeck(cmd.Context(), db, args[0])
			if err != nil {
				return err
			}
			report, err := importer.New(db, a.logger).Import(cmd.Context(), deck.ID, args[1], importer.Options{
				ReposDir: a.cfg.ReposDir,
				Prune:    prune,
				Progress: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading("Imported into "+deck.Name))
			fmt.Fprintln(out, ui.LabelValue("Parsed", report.Parsed))
			fmt.Fprintln(out, ui.LabelValue("Inserted", report.Inserted))
			fmt.Fprintln(out, ui.LabelValue("Unchanged", report.Existing))
			if prune {
				fmt.Fprintln(out, ui.LabelValue("Pruned", report.Pruned))
			}
			if len(report.Errors) > 0 {
				fmt.Fprintln(out, ui.Warn.Render(fmt.Sprintf("%d errors:", len(report.Errors))))
				for _, e := range report.Errors {
					fmt.Fprintln(out, "  - "+e.Error())
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "Delete cards no longer present in the source")
	return cmd
}
