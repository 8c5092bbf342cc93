package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expectedCards   int
		expectedFront   string
		expectedBack    string
		expectedContext string
	}{
		{
			name:          "Simple Q&A",
			input:         "Q: What is the capital of France?\nA: Paris",
			expectedCards: 1,
			expectedFront: "What is the capital of France?",
			expectedBack:  "Paris",
		},
		{
			name:            "Simple Q, A, and C",
			input:           "Q: What is 1+1?\nA: 2\nC: Basic arithmetic",
			expectedCards:   1,
			expectedFront:   "What is 1+1?",
			expectedBack:    "2",
			expectedContext: "Basic arithmetic",
		},
		{
			name: "Multiline Answer",
			input: `
Q: What are the primary colors?
A: Red
Blue
Yellow
`,
			expectedCards: 1,
			expectedFront: "What are the primary colors?",
			expectedBack:  "Red\nBlue\nYellow",
		},
		{
			name: "Two Cards",
			input: `
Q: First question
A: First answer

Q: Second question
A: Second answer
`,
			expectedCards: 2,
		},
		{
			name: "Card with all fields and multiline",
			input: `
Q: What is Go?
A: A statically typed, compiled programming language.
It was designed at Google.
C: Programming Languages
`,
			expectedCards:   1,
			expectedFront:   "What is Go?",
			expectedBack:    "A statically typed, compiled programming language.\nIt was designed at Google.",
			expectedContext: "Programming Languages",
		},
		{
			name:          "No cards, just text",
			input:         "This is a file with no questions.",
			expectedCards: 0,
		},
		{
			name:          "Prefixes with no space",
			input:         "Q:Question\nA:Answer",
			expectedCards: 1,
			expectedFront: "Question",
			expectedBack:  "Answer",
		},
		{
			name: "Separator ends a card",
			input: `Q: One
A: 1
---
stray notes between cards
Q: Two
A: 2`,
			expectedCards: 2,
		},
		{
			name:          "Question without answer",
			input:         "Q: Only a front",
			expectedCards: 1,
			expectedFront: "Only a front",
		},
		{
			name:          "Answer without question is dropped",
			input:         "A: orphan answer",
			expectedCards: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cards, err := Parse(strings.NewReader(tc.input))
			require.NoError(t, err)
			require.Len(t, cards, tc.expectedCards)

			if tc.expectedCards == 1 {
				card := cards[0]
				assert.Equal(t, tc.expectedFront, card.Front)
				assert.Equal(t, tc.expectedBack, card.Back)
				assert.Equal(t, tc.expectedContext, card.Context)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n\nQ: Ping?\nA: Pong\n\nQ: Foo?\nA: Bar\n"), 0o644))

	cards, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Ping?", cards[0].Front)
	assert.Equal(t, "Pong", cards[0].Back)
	assert.Equal(t, "Bar", cards[1].Back)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
}
