// Package session runs an interactive study session in the terminal.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/review"
	"github.com/conorfennell/knoldeck/internal/sm2"
	"github.com/conorfennell/knoldeck/internal/ui"
)

// Stats counts the outcomes of a session.
type Stats struct {
	Correct   int
	Incorrect int
	Skipped   int
	Remaining int // due cards not reached because the learner quit
}

// Reviewed is the number of cards that received a rating.
func (s Stats) Reviewed() int {
	return s.Correct + s.Incorrect
}

type action int

const (
	actionContinue action = iota
	actionSkip
	actionQuit
)

// Runner presents due cards one at a time and feeds ratings to the review
// service.
type Runner struct {
	svc   *review.Service
	in    *bufio.Scanner
	out   io.Writer
	limit int
}

// NewRunner creates a runner reading answers from in and writing to out.
// limit caps the number of cards per session; 0 means no limit.
func NewRunner(svc *review.Service, in io.Reader, out io.Writer, limit int) *Runner {
	return &Runner{
		svc:   svc,
		in:    bufio.NewScanner(in),
		out:   out,
		limit: limit,
	}
}

// Run studies the deck's due cards, earliest due first.
func (r *Runner) Run(ctx context.Context, deck *domain.Deck) (Stats, error) {
	var stats Stats

	cards, err := r.svc.GetCardsDueForReview(ctx, deck.ID, r.svc.Now())
	if err != nil {
		return stats, err
	}
	if r.limit > 0 && len(cards) > r.limit {
		cards = cards[:r.limit]
	}

	fmt.Fprintln(r.out, ui.Heading("Studying "+deck.Name))
	if len(cards) == 0 {
		fmt.Fprintln(r.out, ui.Good.Render("No cards due. All cards are up to date."))
		return stats, nil
	}
	fmt.Fprintln(r.out, ui.LabelValue("Due", len(cards)))

	for i, card := range cards {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		fmt.Fprintf(r.out, "\n%s\n", ui.Muted.Render(fmt.Sprintf("Card %d of %d", i+1, len(cards))))
		act, quality, err := r.study(ctx, card)
		if err != nil {
			return stats, err
		}

		switch act {
		case actionQuit:
			stats.Remaining = len(cards) - i
			r.summary(stats)
			return stats, nil
		case actionSkip:
			stats.Skipped++
			continue
		}

		res, err := r.svc.ReviewCard(ctx, card.ID, quality)
		if err != nil {
			return stats, err
		}
		if sm2.IsLapse(quality) {
			stats.Incorrect++
		} else {
			stats.Correct++
		}
		fmt.Fprintln(r.out, ui.LabelValue("Next review", ui.NextReviewText(res.Card.NextReview, res.Log.Timestamp)))
	}

	r.summary(stats)
	return stats, nil
}

// study shows one card and collects the learner's rating.
func (r *Runner) study(ctx context.Context, card domain.Card) (action, int, error) {
	fmt.Fprintln(r.out, ui.Front.Render(card.Front))

	line, ok := r.prompt("[enter] show answer  [s] skip  [q] quit")
	if !ok {
		return actionQuit, 0, nil
	}
	switch strings.ToLower(line) {
	case "q":
		return actionQuit, 0, nil
	case "s":
		return actionSkip, 0, nil
	}

	back := card.Back
	if card.Context != "" {
		back += "\n\n" + ui.Muted.Render(card.Context)
	}
	fmt.Fprintln(r.out, ui.Back.Render(back))

	for {
		if err := ctx.Err(); err != nil {
			return actionQuit, 0, err
		}
		line, ok := r.prompt(fmt.Sprintf("Rate: [a]gain=%d  [o]kay=%d  [e]asy=%d  or 0-5  [s] skip  [q] quit", sm2.Again, sm2.Okay, sm2.Easy))
		if !ok {
			return actionQuit, 0, nil
		}
		act, quality, valid := parseRating(line)
		if valid {
			return act, quality, nil
		}
		fmt.Fprintln(r.out, ui.Warn.Render("Please enter a rating from 0 to 5."))
	}
}

func (r *Runner) prompt(text string) (string, bool) {
	fmt.Fprint(r.out, ui.Key.Render(text)+" ")
	if !r.in.Scan() {
		fmt.Fprintln(r.out)
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

func parseRating(line string) (action, int, bool) {
	switch strings.ToLower(line) {
	case "a", "again":
		return actionContinue, sm2.Again, true
	case "o", "okay":
		return actionContinue, sm2.Okay, true
	case "e", "easy":
		return actionContinue, sm2.Easy, true
	case "s", "skip":
		return actionSkip, 0, true
	case "q", "quit":
		return actionQuit, 0, true
	}
	q, err := strconv.Atoi(line)
	if err != nil || q < sm2.MinQuality || q > sm2.MaxQuality {
		return actionContinue, 0, false
	}
	return actionContinue, q, true
}

func (r *Runner) summary(stats Stats) {
	fmt.Fprintf(r.out, "\n%s\n", ui.Heading("Session complete"))
	fmt.Fprintln(r.out, ui.LabelValue("Correct", ui.Good.Render(strconv.Itoa(stats.Correct))))
	fmt.Fprintln(r.out, ui.LabelValue("Incorrect", ui.Bad.Render(strconv.Itoa(stats.Incorrect))))
	fmt.Fprintln(r.out, ui.LabelValue("Skipped", stats.Skipped))
	if stats.Remaining > 0 {
		fmt.Fprintln(r.out, ui.LabelValue("Not reached", stats.Remaining))
	}
}
