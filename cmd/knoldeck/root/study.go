package root

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/session"
	"github.com/conorfennell/knoldeck/internal/ui"
)

func newStudyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study <deck>",
		Short: "Study the due cards of a deck interactively",
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
			runner := session.NewRunner(reviews, cmd.InOrStdin(), cmd.OutOrStdout(), a.cfg.Session.Limit)
			_, err = runner.Run(cmd.Context(), deck)
			return err
		},
	}

	cmd.Flags().Int("session-limit", 0, "Maximum cards per session (0 = all due)")
	return cmd
}

func newReviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review <card-id> <quality>",
		Short: "Record a 0-5 rating for a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quality, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quality must be a number from 0 to 5: %q", args[1])
			}

			_, reviews, cleanup, err := a.open()
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := reviews.ReviewCard(cmd.Context(), args[0], quality)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.LabelValue("Quality", ui.QualityText(quality)))
			fmt.Fprintln(out, ui.LabelValue("Ease", fmt.Sprintf("%.2f", res.Card.EaseFactor)))
			fmt.Fprintln(out, ui.LabelValue("Interval", fmt.Sprintf("%d days", res.Card.Interval)))
			fmt.Fprintln(out, ui.LabelValue("Next review", ui.NextReviewText(res.Card.NextReview, res.Log.Timestamp)))
			return nil
		},
	}
}

func newDueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "due <deck>",
		Short: "List the cards due for review, earliest first",
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
			now := reviews.Now()
			due, err := reviews.GetCardsDueForReview(cmd.Context(), deck.ID, now)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.LabelValue(deck.Name+" due", len(due)))
			for _, c := range due {
				printCard(out, c, now)
			}
			return nil
		},
	}
}
