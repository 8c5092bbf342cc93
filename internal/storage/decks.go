package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/validate"
)

// DeckInput is the user-editable part of a deck.
type DeckInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

func (in DeckInput) normalized() DeckInput {
	return DeckInput{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
}

// CreateDeck inserts a new deck.
func (db *DB) CreateDeck(ctx context.Context, in DeckInput) (*domain.Deck, error) {
	in = in.normalized()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	now := db.timestamp()
	deck := domain.Deck{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := db.q.ExecContext(ctx, `
		INSERT INTO decks (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, deck.ID, deck.Name, deck.Description, toMillis(deck.CreatedAt), toMillis(deck.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert deck %q: %w", deck.Name, err)
	}
	return &deck, nil
}

// GetDeck retrieves a deck by id.
func (db *DB) GetDeck(ctx context.Context, id string) (*domain.Deck, error) {
	row := db.q.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM decks WHERE id = ?
	`, id)
	deck, err := scanDeck(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("deck %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find deck %s: %w", id, err)
	}
	return deck, nil
}

// FindDeckByName returns the first deck with the given name, or nil.
func (db *DB) FindDeckByName(ctx context.Context, name string) (*domain.Deck, error) {
	row := db.q.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM decks WHERE name = ?
		ORDER BY created_at, id
		LIMIT 1
	`, strings.TrimSpace(name))
	deck, err := scanDeck(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Deck not found
		}
		return nil, fmt.Errorf("failed to find deck by name %q: %w", name, err)
	}
	return deck, nil
}

// ListDecks returns all decks, oldest first.
func (db *DB) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	rows, err := db.q.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM decks
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []domain.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, *deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decks: %w", err)
	}
	return decks, nil
}

// UpdateDeck changes a deck's name and description.
func (db *DB) UpdateDeck(ctx context.Context, id string, in DeckInput) (*domain.Deck, error) {
	in = in.normalized()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	res, err := db.q.ExecContext(ctx, `
		UPDATE decks
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, in.Name, in.Description, toMillis(db.timestamp()), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update deck %s: %w", id, err)
	}
	if err := expectRow(res, "deck", id); err != nil {
		return nil, err
	}
	return db.GetDeck(ctx, id)
}

// DeleteDeck removes a deck and its cards. Review logs are kept.
func (db *DB) DeleteDeck(ctx context.Context, id string) error {
	return db.WithTx(ctx, func(tx *DB) error {
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM cards WHERE deck_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete cards of deck %s: %w", id, err)
		}
		res, err := tx.q.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete deck %s: %w", id, err)
		}
		return expectRow(res, "deck", id)
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeck(s scanner) (*domain.Deck, error) {
	var d domain.Deck
	var created, updated int64
	if err := s.Scan(&d.ID, &d.Name, &d.Description, &created, &updated); err != nil {
		return nil, err
	}
	d.CreatedAt = fromMillis(created)
	d.UpdatedAt = fromMillis(updated)
	return &d, nil
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}
