package root

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/config"
	"github.com/conorfennell/knoldeck/internal/review"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/conorfennell/knoldeck/internal/ui"
)

const Version = "0.1.0"

// app carries the loaded configuration into every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// open opens the database and a review service over it.
func (a *app) open() (*storage.DB, *review.Service, func(), error) {
	db, err := storage.Open(a.cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	a.logger.Debug("Database opened", "path", a.cfg.DB)
	cleanup := func() {
		_ = db.Close()
	}
	return db, review.NewService(db, review.WithLogger(a.logger)), cleanup, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "knoldeck",
		Short:         "Spaced repetition flashcards",
		Long:          "knoldeck schedules flashcard reviews with the SM-2 algorithm and keeps every rating in a review log.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
			slog.SetDefault(a.logger)
			return nil
		},
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newDeckCmd(a),
		newCardCmd(a),
		newImportCmd(a),
		newStudyCmd(a),
		newReviewCmd(a),
		newDueCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err))
		os.Exit(1)
	}
}
