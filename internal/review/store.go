package review

import (
	"context"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Store is the persistence the review service needs.
// GetCard must return an error wrapping domain.ErrNotFound for unknown ids.
type Store interface {
	GetCard(ctx context.Context, id string) (*domain.Card, error)
	PutCard(ctx context.Context, card *domain.Card) error
	AppendReviewLog(ctx context.Context, log *domain.ReviewLog) error
	GetCardsByDeck(ctx context.Context, deckID string) ([]domain.Card, error)
}

// Transactor is implemented by stores that can run several operations
// atomically. fn receives a Store bound to the transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(Store) error) error
}
