package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// AppendReviewLog inserts a review log entry. Entries are never updated.
func (db *DB) AppendReviewLog(ctx context.Context, log *domain.ReviewLog) error {
	_, err := db.q.ExecContext(ctx, `
		INSERT INTO review_logs (id, card_id, deck_id, quality, timestamp, ease_factor, interval_days)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		log.ID,
		log.CardID,
		log.DeckID,
		log.Quality,
		toMillis(log.Timestamp),
		log.EaseFactor,
		log.Interval,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review log for card %s: %w", log.CardID, err)
	}
	return nil
}

// ReviewLogsForCard returns a card's review history, oldest first.
func (db *DB) ReviewLogsForCard(ctx context.Context, cardID string) ([]domain.ReviewLog, error) {
	rows, err := db.q.QueryContext(ctx, `
		SELECT id, card_id, deck_id, quality, timestamp, ease_factor, interval_days
		FROM review_logs WHERE card_id = ?
		ORDER BY timestamp, id
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review logs for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var logs []domain.ReviewLog
	for rows.Next() {
		var l domain.ReviewLog
		var ts int64
		if err := rows.Scan(&l.ID, &l.CardID, &l.DeckID, &l.Quality, &ts, &l.EaseFactor, &l.Interval); err != nil {
			return nil, fmt.Errorf("failed to scan review log row for card %s: %w", cardID, err)
		}
		l.Timestamp = fromMillis(ts)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review logs for card %s: %w", cardID, err)
	}
	return logs, nil
}

// DeckStats summarizes a deck at a point in time.
type DeckStats struct {
	Total   int
	Due     int
	New     int
	Learned int // at least one passing review since the last lapse
	Reviews int // review log entries recorded for the deck
}

// GetDeckStats counts the deck's cards by scheduling status.
func (db *DB) GetDeckStats(ctx context.Context, deckID string, now time.Time) (DeckStats, error) {
	var s DeckStats
	row := db.q.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN next_review <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN last_reviewed_at IS NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN repetitions >= 1 THEN 1 ELSE 0 END), 0)
		FROM cards WHERE deck_id = ?
	`, toMillis(now), deckID)
	if err := row.Scan(&s.Total, &s.Due, &s.New, &s.Learned); err != nil {
		return DeckStats{}, fmt.Errorf("failed to count cards for deck %s: %w", deckID, err)
	}

	row = db.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_logs WHERE deck_id = ?`, deckID)
	if err := row.Scan(&s.Reviews); err != nil {
		return DeckStats{}, fmt.Errorf("failed to count review logs for deck %s: %w", deckID, err)
	}
	return s, nil
}
