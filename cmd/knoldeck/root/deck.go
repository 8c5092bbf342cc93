package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/conorfennell/knoldeck/internal/ui"
)

// resolveDeck finds a deck by id, falling back to its name.
func resolveDeck(ctx context.Context, db *storage.DB, ref string) (*domain.Deck, error) {
	deck, err := db.GetDeck(ctx, ref)
	if err == nil {
		return deck, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	deck, err = db.FindDeckByName(ctx, ref)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, fmt.Errorf("deck %q: %w", ref, domain.ErrNotFound)
	}
	return deck, nil
}

func newDeckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}
	cmd.AddCommand(
		newDeckCreateCmd(a),
		newDeckListCmd(a),
		newDeckRenameCmd(a),
		newDeckDeleteCmd(a),
		newDeckStatsCmd(a),
	)
	return cmd
}

func newDeckCreateCmd(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, cleanup, err := a.open()
			if err != nil {
				return err
			}
			defer cleanup()

			deck, err := db.CreateDeck(cmd.Context(), storage.DeckInput{Name: args[0], Description: description})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("Created deck "+deck.Name))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("ID", deck.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Deck description")
	return cmd
}

func newDeckListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List decks with their due counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, reviews, cleanup, err := a.open()
			if err != nil {
				return err
			}
			defer cleanup()

			decks, err := db.ListDecks(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(decks) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No decks yet. Create one with: knoldeck deck create <name>"))
				return nil
			}
			now := reviews.Now()
			for _, d := range decks {
				due, err := reviews.DueCount(cmd.Context(), d.ID, now)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s  %s  %s\n", ui.Title.Render(d.Name), ui.Muted.Render(d.ID), ui.LabelValue("due", due))
			}
			return nil
		},
	}
}

func newDeckRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <deck> <new-name>",
		Short: "Rename a deck",
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
			updated, err := db.UpdateDeck(cmd.Context(), deck.ID, storage.DeckInput{Name: args[1], Description: deck.Description})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("Renamed deck to "+updated.Name))
			return nil
		},
	}
}

func newDeckDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <deck>",
		Short: "Delete a deck and its cards (review logs are kept)",
		Args:  cobra.ExactArgs(1),
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
			if err := db.DeleteDeck(cmd.Context(), deck.ID); err != nil {
				return err
			}
			a.logger.Info("Deck deleted", "deck_id", deck.ID)
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render("Deleted deck "+deck.Name))
			return nil
		},
	}
}

func newDeckStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <deck>",
		Short: "Show card counts for a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, reviews, cleanup, err := a.open()
			if err != nil {
				return err
			}
			defer cleanup()

			deck, err := resolveDeck(cmd.Context(), db, args[0])
			if err != nil {
				return err
			}
			stats, err := db.GetDeckStats(cmd.Context(), deck.ID, reviews.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(deck.Name))
			fmt.Fprintln(out, ui.LabelValue("Total", stats.Total))
			fmt.Fprintln(out, ui.LabelValue("Due", stats.Due))
			fmt.Fprintln(out, ui.LabelValue("New", stats.New))
			fmt.Fprintln(out, ui.LabelValue("Learned", stats.Learned))
			fmt.Fprintln(out, ui.LabelValue("Reviews", stats.Reviews))
			return nil
		},
	}
}
