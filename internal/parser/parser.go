package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Card files are plain markdown. "Q:" starts a card's front, "A:" its back
// and "C:" an optional context; continuation lines extend the current field
// and "---" ends the card.
const (
	frontPrefix   = "Q:"
	backPrefix    = "A:"
	contextPrefix = "C:"
	separator     = "---"
)

type field int

const (
	seeking field = iota
	readingFront
	readingBack
	readingContext
)

// ParseFile reads a file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. Only the content
// fields of the returned cards are set.
func Parse(r io.Reader) ([]domain.Card, error) {
	p := &cardParser{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	p.finishCard() // the last card in the file has no separator

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.cards, nil
}

type cardParser struct {
	cards   []domain.Card
	current domain.Card
	block   []string
	state   field
}

func (p *cardParser) line(line string) {
	if line == separator {
		p.finishCard()
		return
	}

	next, content, ok := prefixed(line)
	if !ok {
		if p.state != seeking {
			p.block = append(p.block, line)
		}
		return
	}

	p.flush()
	if next == readingFront && p.state != seeking {
		// A new question always starts a new card.
		p.finishCard()
	}
	p.state = next
	p.block = append(p.block, content)
}

// flush stores the collected block in the field being read.
func (p *cardParser) flush() {
	if len(p.block) == 0 {
		return
	}
	content := strings.TrimRight(strings.Join(p.block, "\n"), "\n ")
	switch p.state {
	case readingFront:
		p.current.Front = content
	case readingBack:
		p.current.Back = content
	case readingContext:
		p.current.Context = content
	}
	p.block = nil
}

func (p *cardParser) finishCard() {
	p.flush()
	if p.current.Front != "" {
		p.cards = append(p.cards, p.current)
	}
	p.current = domain.Card{}
	p.state = seeking
}

func prefixed(line string) (field, string, bool) {
	for _, f := range []struct {
		prefix string
		state  field
	}{
		{frontPrefix, readingFront},
		{backPrefix, readingBack},
		{contextPrefix, readingContext},
	} {
		if rest, ok := strings.CutPrefix(line, f.prefix); ok {
			return f.state, strings.TrimPrefix(rest, " "), true
		}
	}
	return seeking, "", false
}
