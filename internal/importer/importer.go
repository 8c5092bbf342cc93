// Package importer reconciles markdown card files into a deck.
package importer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/gitsource"
	"github.com/conorfennell/knoldeck/internal/knol"
	"github.com/conorfennell/knoldeck/internal/parser"
	"github.com/conorfennell/knoldeck/internal/storage"
)

// Options controls an import run.
type Options struct {
	// ReposDir is where git sources are checked out.
	ReposDir string
	// Prune deletes cards of the deck whose content no longer appears in
	// the source. Their review logs are kept.
	Prune bool
	// Progress receives git clone/pull output. May be nil.
	Progress io.Writer
}

// Report summarizes an import run.
type Report struct {
	Parsed   int
	Inserted int
	Existing int
	Pruned   int
	Errors   []error
}

// Importer loads cards from a local directory or git repository.
type Importer struct {
	db     *storage.DB
	logger *slog.Logger
}

// New creates an Importer writing into db.
func New(db *storage.DB, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{db: db, logger: logger}
}

// Import syncs source into the deck. Git URLs are cloned or pulled into
// opts.ReposDir first.
func (im *Importer) Import(ctx context.Context, deckID, source string, opts Options) (*Report, error) {
	if _, err := im.db.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}

	dir := source
	if gitsource.IsURL(source) {
		localRepoPath, err := gitsource.LocalPath(opts.ReposDir, source)
		if err != nil {
			return nil, err
		}
		if err := gitsource.Sync(ctx, im.logger.With("deck_id", deckID), source, localRepoPath, opts.Progress); err != nil {
			return nil, err
		}
		dir = localRepoPath
	}

	im.logger.Info("Importing cards", "deck_id", deckID, "source", source, "path", dir)
	return im.reconcile(ctx, deckID, dir, opts.Prune)
}

func (im *Importer) reconcile(ctx context.Context, deckID, dir string, prune bool) (*Report, error) {
	report := &Report{}
	found := make(map[string]bool)

	err := im.db.WithTx(ctx, func(tx *storage.DB) error {
		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}

			fileCards, parseErr := parser.ParseFile(path)
			if parseErr != nil {
				report.Errors = append(report.Errors, fmt.Errorf("parsing %s: %w", path, parseErr))
			}
			for _, parsed := range fileCards {
				report.Parsed++
				if parsed.Back == "" {
					report.Errors = append(report.Errors, fmt.Errorf("%s: card %q has no answer", path, parsed.Front))
					continue
				}
				if err := im.upsert(ctx, tx, deckID, parsed, found, report); err != nil {
					return err
				}
			}
			return nil
		})
		if walkErr != nil {
			return fmt.Errorf("error walking directory %s: %w", dir, walkErr)
		}

		if prune {
			return im.prune(ctx, tx, deckID, found, report)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.logger.Info("Reconciliation complete",
		"deck_id", deckID,
		"path", dir,
		"parsed_cards", report.Parsed,
		"inserted", report.Inserted,
		"existing", report.Existing,
		"pruned", report.Pruned,
		"errors", len(report.Errors),
	)
	return report, nil
}

func (im *Importer) upsert(ctx context.Context, tx *storage.DB, deckID string, parsed domain.Card, found map[string]bool, report *Report) error {
	hash := knol.Hash(parsed)
	if found[hash] {
		report.Existing++
		return nil
	}
	found[hash] = true

	existing, err := tx.FindCardByHash(ctx, deckID, hash)
	if err != nil {
		return err
	}
	if existing != nil {
		report.Existing++
		return nil
	}

	card, err := tx.CreateCard(ctx, deckID, storage.CardInput{
		Front:   parsed.Front,
		Back:    parsed.Back,
		Context: parsed.Context,
	})
	if err != nil {
		report.Errors = append(report.Errors, fmt.Errorf("insert %q: %w", parsed.Front, err))
		return nil
	}
	im.logger.Debug("New card found, inserted", "card_id", card.ID, "hash", hash)
	report.Inserted++
	return nil
}

func (im *Importer) prune(ctx context.Context, tx *storage.DB, deckID string, found map[string]bool, report *Report) error {
	cards, err := tx.GetCardsByDeck(ctx, deckID)
	if err != nil {
		return err
	}
	for _, c := range cards {
		if found[c.ContentHash] {
			continue
		}
		im.logger.Info("Orphaned card, deleting", "card_id", c.ID, "hash", c.ContentHash)
		if err := tx.DeleteCard(ctx, c.ID); err != nil {
			return err
		}
		report.Pruned++
	}
	return nil
}
