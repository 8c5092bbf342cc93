package root

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/storage"
)

type cli struct {
	dbPath string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{dbPath: filepath.Join(t.TempDir(), "cli.db")}
}

func (c *cli) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", c.dbPath, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) cards(t *testing.T, deckName string) []domain.Card {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(c.dbPath)
	require.NoError(t, err)
	defer db.Close()

	deck, err := db.FindDeckByName(ctx, deckName)
	require.NoError(t, err)
	require.NotNil(t, deck)
	cards, err := db.GetCardsByDeck(ctx, deck.ID)
	require.NoError(t, err)
	return cards
}

func TestDeckCommands(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(t, "", "deck", "create", "Spanish", "-d", "verbs")
	require.NoError(t, err)
	assert.Contains(t, out, "Created deck Spanish")

	out, err = c.run(t, "", "deck", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Spanish")

	_, err = c.run(t, "", "deck", "rename", "Spanish", "Espanol")
	require.NoError(t, err)

	out, err = c.run(t, "", "deck", "stats", "Espanol")
	require.NoError(t, err)
	assert.Contains(t, out, "Total")

	_, err = c.run(t, "", "deck", "stats", "Spanish")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.run(t, "", "deck", "delete", "Espanol")
	require.NoError(t, err)

	out, err = c.run(t, "", "deck", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No decks yet")
}

func TestCardAndReviewCommands(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "", "deck", "create", "Geo")
	require.NoError(t, err)
	_, err = c.run(t, "", "card", "add", "Geo", "--front", "Capital of France", "--back", "Paris")
	require.NoError(t, err)

	_, err = c.run(t, "", "card", "add", "Geo", "--front", "Missing back")
	require.Error(t, err)

	cards := c.cards(t, "Geo")
	require.Len(t, cards, 1)
	id := cards[0].ID

	out, err := c.run(t, "", "due", "Geo")
	require.NoError(t, err)
	assert.Contains(t, out, "Capital of France")

	out, err = c.run(t, "", "review", id, "5")
	require.NoError(t, err)
	assert.Contains(t, out, "2.60")
	assert.Contains(t, out, "1 days")

	_, err = c.run(t, "", "review", id, "9")
	require.Error(t, err)
	_, err = c.run(t, "", "review", id, "great")
	require.Error(t, err)

	out, err = c.run(t, "", "card", "history", id)
	require.NoError(t, err)
	assert.Contains(t, out, "quality")

	_, err = c.run(t, "", "card", "edit", id, "--back", "Paris, France")
	require.NoError(t, err)
	cards = c.cards(t, "Geo")
	require.Len(t, cards, 1)
	assert.Equal(t, "Capital of France", cards[0].Front)
	assert.Equal(t, "Paris, France", cards[0].Back)
	assert.Equal(t, 1, cards[0].Repetitions, "editing keeps the schedule")

	_, err = c.run(t, "", "card", "delete", id)
	require.NoError(t, err)
	assert.Empty(t, c.cards(t, "Geo"))
}

func TestImportAndStudyCommands(t *testing.T) {
	c := newCLI(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cards.md"), []byte("Q: One\nA: 1\n\nQ: Two\nA: 2\n"), 0o644))

	_, err := c.run(t, "", "deck", "create", "Numbers")
	require.NoError(t, err)

	out, err := c.run(t, "", "import", "Numbers", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted")
	require.Len(t, c.cards(t, "Numbers"), 2)

	out, err = c.run(t, "\ne\n", "study", "Numbers", "--session-limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Card 1 of 1")
	assert.Contains(t, out, "Session complete")

	reviewed := 0
	for _, card := range c.cards(t, "Numbers") {
		if !card.IsNew() {
			reviewed++
		}
	}
	assert.Equal(t, 1, reviewed)
}
