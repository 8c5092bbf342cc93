package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced deck or card does not exist.
var ErrNotFound = errors.New("not found")

const (
	// InitialEaseFactor is the ease factor every new card starts with.
	InitialEaseFactor = 2.5
)

// Deck groups cards that are studied together.
type Deck struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Card represents a single front/back entry together with its scheduling state.
// EaseFactor, Interval, Repetitions, NextReview and LastReviewedAt are only ever
// changed by reviewing the card.
type Card struct {
	ID          string
	DeckID      string
	Front       string
	Back        string
	Context     string
	ContentHash string
	CreatedAt   time.Time

	EaseFactor     float64
	Interval       int // days
	Repetitions    int
	NextReview     time.Time
	LastReviewedAt *time.Time
}

// NewCard returns a card in its initial scheduling state, due immediately.
func NewCard(deckID, front, back string, now time.Time) Card {
	return Card{
		ID:          uuid.NewString(),
		DeckID:      deckID,
		Front:       front,
		Back:        back,
		CreatedAt:   now,
		EaseFactor:  InitialEaseFactor,
		Interval:    0,
		Repetitions: 0,
		NextReview:  now,
	}
}

// IsNew reports whether the card has never been reviewed.
func (c Card) IsNew() bool {
	return c.LastReviewedAt == nil
}

// IsDue reports whether the card should be shown at the given time.
func (c Card) IsDue(now time.Time) bool {
	return !c.NextReview.After(now)
}

// ReviewLog records a single review event for a card.
// Quality is the learner's 0-5 self assessment, EaseFactor and Interval are
// the values the card ended up with.
type ReviewLog struct {
	ID         string
	CardID     string
	DeckID     string
	Quality    int
	Timestamp  time.Time
	EaseFactor float64
	Interval   int
}
