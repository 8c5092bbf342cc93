package root

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/conorfennell/knoldeck/internal/ui"
)

func newCardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}
	cmd.AddCommand(
		newCardAddCmd(a),
		newCardListCmd(a),
		newCardEditCmd(a),
		newCardDeleteCmd(a),
		newCardHistoryCmd(a),
	)
	return cmd
}

func printCard(w io.Writer, c domain.Card, now time.Time) {
	fmt.Fprintf(w, "%s  %s\n", ui.Title.Render(c.Front), ui.Muted.Render(c.ID))
	fmt.Fprintf(w, "  %s  %s  %s  %s\n",
		ui.LabelValue("ease", fmt.Sprintf("%.2f", c.EaseFactor)),
		ui.LabelValue("interval", fmt.Sprintf("%dd", c.Interval)),
		ui.LabelValue("reps", c.Repetitions),
		ui.LabelValue("next", ui.NextReviewText(c.NextReview, now)),
	)
}

func newCardAddCmd(a *app) *cobra.Command {
	var in storage.CardInput

	cmd := &cobra.Command{
		Use:   "add <deck>",
		Short: "Add a card to a deck",
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
			card, err := db.CreateCard(cmd.Context(), deck.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("Added card to "+deck.Name))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("ID", card.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Front, "front", "f", "", "Question side")
	cmd.Flags().StringVarP(&in.Back, "back", "b", "", "Answer side")
	cmd.Flags().StringVarP(&in.Context, "context", "c", "", "Optional note shown with the answer")
	return cmd
}

func newCardListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <deck>",
		Short: "List the cards of a deck",
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
			cards, err := db.GetCardsByDeck(cmd.Context(), deck.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(deck.Name))
			if len(cards) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No cards."))
				return nil
			}
			now := reviews.Now()
			for _, c := range cards {
				printCard(out, c, now)
			}
			return nil
		},
	}
}

func newCardEditCmd(a *app) *cobra.Command {
	var in storage.CardInput

	cmd := &cobra.Command{
		Use:   "edit <card-id>",
		Short: "Edit a card's text, keeping its schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, cleanup, err := a.open()
			if err != nil {
				return err
			}
			defer cleanup()

			card, err := db.GetCard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("front") {
				in.Front = card.Front
			}
			if !cmd.Flags().Changed("back") {
				in.Back = card.Back
			}
			if !cmd.Flags().Changed("context") {
				in.Context = card.Context
			}
			if _, err := db.UpdateCardContent(cmd.Context(), card.ID, in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("Updated card "+card.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Front, "front", "f", "", "New question side")
	cmd.Flags().StringVarP(&in.Back, "back", "b", "", "New answer side")
	cmd.Flags().StringVarP(&in.Context, "context", "c", "", "New note")
	return cmd
}

func newCardDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card-id>",
		Short: "Delete a card (review logs are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, cleanup, err := a.open()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := db.DeleteCard(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render("Deleted card "+args[0]))
			return nil
		},
	}
}

func newCardHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <card-id>",
		Short: "Show the review log of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, reviews, cleanup, err := a.open()
			if err != nil {
				return err
			}
			defer cleanup()

			card, err := db.GetCard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			logs, err := db.ReviewLogsForCard(cmd.Context(), card.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printCard(out, *card, reviews.Now())
			if len(logs) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Not reviewed yet."))
				return nil
			}
			for _, l := range logs {
				fmt.Fprintf(out, "  %s  quality %s  ease %.2f  interval %dd\n",
					ui.Muted.Render(l.Timestamp.Local().Format(time.DateTime)),
					ui.QualityText(l.Quality),
					l.EaseFactor,
					l.Interval,
				)
			}
			return nil
		},
	}
}
