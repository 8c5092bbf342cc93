package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/sm2"
	"github.com/conorfennell/knoldeck/internal/validate"
)

var (
	// ErrInvalidQuality is returned when a rating falls outside 0-5.
	ErrInvalidQuality = errors.New("invalid quality rating")

	// ErrConsistencyGap is returned when the card was updated but its review
	// log could not be written. Only stores without transactions can hit it.
	ErrConsistencyGap = errors.New("card updated without review log")
)

// Result is the outcome of reviewing a card.
type Result struct {
	Card domain.Card
	Log  domain.ReviewLog
}

// Service applies reviews to cards and answers due-set queries.
type Service struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
	locks  *keyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for review timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used for review events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a review service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
		locks:  newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReviewCard records a quality rating for a card: it computes the next
// scheduling state, writes it back and appends a review log entry.
// Reviews of the same card are serialized; different cards proceed
// concurrently.
func (s *Service) ReviewCard(ctx context.Context, cardID string, quality int) (*Result, error) {
	if err := validate.Var("quality", quality, fmt.Sprintf("min=%d,max=%d", sm2.MinQuality, sm2.MaxQuality)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuality, err)
	}

	unlock := s.locks.Lock(cardID)
	defer unlock()

	logger := s.logger.With("card_id", cardID, "quality", quality)
	now := s.now().Truncate(time.Millisecond)

	var res *Result
	var err error
	if tx, ok := s.store.(Transactor); ok {
		err = tx.InTx(ctx, func(store Store) error {
			res, err = apply(ctx, store, cardID, quality, now, true)
			return err
		})
		if err != nil {
			res = nil
		}
	} else {
		res, err = apply(ctx, s.store, cardID, quality, now, false)
		if errors.Is(err, ErrConsistencyGap) {
			logger.Error("Review log append failed after card update", "error", err)
		}
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Card reviewed",
		"deck_id", res.Card.DeckID,
		"ease_factor", res.Card.EaseFactor,
		"interval", res.Card.Interval,
		"repetitions", res.Card.Repetitions,
	)
	return res, nil
}

// apply runs one review against store. When atomic is false a failed log
// append leaves the card updated and is reported as ErrConsistencyGap.
func apply(ctx context.Context, store Store, cardID string, quality int, now time.Time, atomic bool) (*Result, error) {
	card, err := store.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load card %s: %w", cardID, err)
	}

	next := sm2.ComputeNextState(card.EaseFactor, quality, card.Interval, card.Repetitions)

	updated := *card
	updated.EaseFactor = next.EaseFactor
	updated.Interval = next.Interval
	updated.Repetitions = next.Repetitions
	updated.NextReview = sm2.NextReview(now, next.Interval)
	reviewedAt := now
	updated.LastReviewedAt = &reviewedAt

	if err := store.PutCard(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update card %s: %w", cardID, err)
	}

	log := domain.ReviewLog{
		ID:         uuid.NewString(),
		CardID:     cardID,
		DeckID:     card.DeckID,
		Quality:    quality,
		Timestamp:  now,
		EaseFactor: next.EaseFactor,
		Interval:   next.Interval,
	}
	if err := store.AppendReviewLog(ctx, &log); err != nil {
		if atomic {
			return nil, fmt.Errorf("failed to append review log for card %s: %w", cardID, err)
		}
		return nil, fmt.Errorf("%w: card %s: %w", ErrConsistencyGap, cardID, err)
	}

	return &Result{Card: updated, Log: log}, nil
}

// GetCardsDueForReview returns the deck's cards whose next review is at or
// before now, earliest first. Ties are ordered by card id.
func (s *Service) GetCardsDueForReview(ctx context.Context, deckID string, now time.Time) ([]domain.Card, error) {
	cards, err := s.store.GetCardsByDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards for deck %s: %w", deckID, err)
	}
	return DueCards(cards, now), nil
}

// DueCount returns how many cards of the deck are due at now.
func (s *Service) DueCount(ctx context.Context, deckID string, now time.Time) (int, error) {
	due, err := s.GetCardsDueForReview(ctx, deckID, now)
	if err != nil {
		return 0, err
	}
	return len(due), nil
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// DueCards filters cards to those due at now and orders them by next review
// time, then id.
func DueCards(cards []domain.Card, now time.Time) []domain.Card {
	due := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	slices.SortFunc(due, func(a, b domain.Card) int {
		if c := a.NextReview.Compare(b.NextReview); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return due
}
