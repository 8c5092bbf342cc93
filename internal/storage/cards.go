package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/knol"
	"github.com/conorfennell/knoldeck/internal/validate"
)

// CardInput is the user-editable content of a card.
type CardInput struct {
	Front   string `json:"front" validate:"required,max=10000"`
	Back    string `json:"back" validate:"required,max=10000"`
	Context string `json:"context" validate:"max=10000"`
}

func (in CardInput) normalized() CardInput {
	return CardInput{
		Front:   strings.TrimSpace(in.Front),
		Back:    strings.TrimSpace(in.Back),
		Context: strings.TrimSpace(in.Context),
	}
}

const cardColumns = `id, deck_id, front, back, context, content_hash, created_at,
	ease_factor, interval_days, repetitions, next_review, last_reviewed_at`

// CreateCard adds a card to an existing deck in its initial scheduling state.
func (db *DB) CreateCard(ctx context.Context, deckID string, in CardInput) (*domain.Card, error) {
	in = in.normalized()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := db.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}

	card := domain.NewCard(deckID, in.Front, in.Back, db.timestamp())
	card.Context = in.Context
	card.ContentHash = knol.Hash(card)
	if err := db.InsertCard(ctx, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// InsertCard writes a fully populated card row.
func (db *DB) InsertCard(ctx context.Context, card *domain.Card) error {
	_, err := db.q.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		card.ID,
		card.DeckID,
		card.Front,
		card.Back,
		card.Context,
		card.ContentHash,
		toMillis(card.CreatedAt),
		card.EaseFactor,
		card.Interval,
		card.Repetitions,
		toMillis(card.NextReview),
		nullMillis(card.LastReviewedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
	}
	return nil
}

// GetCard retrieves a card by id.
func (db *DB) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	row := db.q.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find card %s: %w", id, err)
	}
	return card, nil
}

// FindCardByHash retrieves a deck's card by content hash, or nil if absent.
func (db *DB) FindCardByHash(ctx context.Context, deckID, hash string) (*domain.Card, error) {
	row := db.q.QueryRowContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards WHERE deck_id = ? AND content_hash = ?
		LIMIT 1
	`, deckID, hash)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to find card by hash %s: %w", hash, err)
	}
	return card, nil
}

// GetCardsByDeck retrieves every card of a deck in creation order.
func (db *DB) GetCardsByDeck(ctx context.Context, deckID string) ([]domain.Card, error) {
	rows, err := db.q.QueryContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards WHERE deck_id = ?
		ORDER BY created_at, id
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row for deck %s: %w", deckID, err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards for deck %s: %w", deckID, err)
	}
	return cards, nil
}

// PutCard writes a card's scheduling state. Content columns are left alone.
func (db *DB) PutCard(ctx context.Context, card *domain.Card) error {
	res, err := db.q.ExecContext(ctx, `
		UPDATE cards
		SET ease_factor = ?, interval_days = ?, repetitions = ?, next_review = ?, last_reviewed_at = ?
		WHERE id = ?
	`,
		card.EaseFactor,
		card.Interval,
		card.Repetitions,
		toMillis(card.NextReview),
		nullMillis(card.LastReviewedAt),
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card state for %s: %w", card.ID, err)
	}
	return expectRow(res, "card", card.ID)
}

// UpdateCardContent edits a card's text without touching its schedule.
func (db *DB) UpdateCardContent(ctx context.Context, id string, in CardInput) (*domain.Card, error) {
	in = in.normalized()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var updated *domain.Card
	err := db.WithTx(ctx, func(tx *DB) error {
		card, err := tx.GetCard(ctx, id)
		if err != nil {
			return err
		}
		card.Front, card.Back, card.Context = in.Front, in.Back, in.Context
		card.ContentHash = knol.Hash(*card)

		if _, err := tx.q.ExecContext(ctx, `
			UPDATE cards
			SET front = ?, back = ?, context = ?, content_hash = ?
			WHERE id = ?
		`, card.Front, card.Back, card.Context, card.ContentHash, id); err != nil {
			return fmt.Errorf("failed to update card content for %s: %w", id, err)
		}
		updated = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCard removes a card. Its review logs are kept.
func (db *DB) DeleteCard(ctx context.Context, id string) error {
	res, err := db.q.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	return expectRow(res, "card", id)
}

func scanCard(s scanner) (*domain.Card, error) {
	var c domain.Card
	var created, nextReview int64
	var lastReviewed sql.NullInt64
	if err := s.Scan(
		&c.ID,
		&c.DeckID,
		&c.Front,
		&c.Back,
		&c.Context,
		&c.ContentHash,
		&created,
		&c.EaseFactor,
		&c.Interval,
		&c.Repetitions,
		&nextReview,
		&lastReviewed,
	); err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(created)
	c.NextReview = fromMillis(nextReview)
	c.LastReviewedAt = fromNullMillis(lastReviewed)
	return &c, nil
}
