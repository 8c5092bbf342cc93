package knol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conorfennell/knoldeck/internal/domain"
)

func TestNormalize(t *testing.T) {
	card := domain.Card{
		Front:   "  What is HTMX? \r\n",
		Back:    "A library for AJAX.",
		Context: "Web Development",
	}
	assert.Equal(t, "what is htmx?\na library for ajax.\nweb development", Normalize(card))
}

func TestHash(t *testing.T) {
	t.Run("matches sha256 of normalized content", func(t *testing.T) {
		card := domain.Card{Front: "Q", Back: "A", Context: "C"}
		// sha256("q\na\nc")
		assert.Equal(t, "eb2456c1ee4f36305069dd0f63a30e92d5443129f5e8fd9a5ec490fbc4d4d8a2", Hash(card))
	})

	t.Run("ignores scheduling fields", func(t *testing.T) {
		a := domain.Card{Front: "Test", EaseFactor: 2.5}
		b := domain.Card{Front: "Test", EaseFactor: 1.3, Interval: 9, Repetitions: 4}
		assert.Equal(t, Hash(a), Hash(b))
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		a := domain.Card{Front: "  what is go? ", Back: "A programming language."}
		b := domain.Card{Front: "What Is Go?", Back: "A programming language."}
		assert.Equal(t, Hash(a), Hash(b))
	})

	t.Run("field boundaries matter", func(t *testing.T) {
		a := domain.Card{Front: "ab", Back: "c"}
		b := domain.Card{Front: "a", Back: "bc"}
		assert.NotEqual(t, Hash(a), Hash(b))
	})

	t.Run("different cards have different hashes", func(t *testing.T) {
		assert.NotEqual(t, Hash(domain.Card{Front: "Card 1"}), Hash(domain.Card{Front: "Card 2"}))
	})
}
