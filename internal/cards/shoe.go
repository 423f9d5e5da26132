package cards

import (
	"errors"
	"math/rand/v2"
)

// DeckSize is the number of cards in one standard deck
const DeckSize = 52

// ErrShoeExhausted is returned by Draw when no cards remain
var ErrShoeExhausted = errors.New("shoe exhausted")

// Shoe holds one or more shuffled decks. Cards are drawn from the top and
// never returned; a depleted shoe is replaced, not refilled.
type Shoe struct {
	cards []Card
	next  int
	decks int
}

// NewShoe builds numDecks standard decks and shuffles them with rng
func NewShoe(rng *rand.Rand, numDecks int) *Shoe {
	if rng == nil {
		panic("rng is required for shoe creation")
	}
	if numDecks < 1 {
		panic("shoe needs at least one deck")
	}

	s := &Shoe{
		cards: make([]Card, 0, numDecks*DeckSize),
		decks: numDecks,
	}
	for range numDecks {
		for _, suit := range Suits {
			for rank := Two; rank <= Ace; rank++ {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}

	// Fisher-Yates
	for i := len(s.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
	return s
}

// NewStackedShoe returns an unshuffled shoe that deals the given cards in
// order, first card first. Used for deterministic tests and replays.
func NewStackedShoe(cards ...Card) *Shoe {
	stacked := make([]Card, len(cards))
	for i, c := range cards {
		stacked[i] = c.Flip(true)
	}
	return &Shoe{cards: stacked}
}

// Draw removes and returns the top card
func (s *Shoe) Draw() (Card, error) {
	if s.next >= len(s.cards) {
		return Card{}, ErrShoeExhausted
	}
	card := s.cards[s.next]
	s.next++
	return card, nil
}

// Remaining returns the number of cards left in the shoe
func (s *Shoe) Remaining() int {
	return len(s.cards) - s.next
}

// Size returns the number of cards the shoe was built with
func (s *Shoe) Size() int {
	return len(s.cards)
}

// Decks returns the number of decks the shoe was built from (0 for stacked shoes)
func (s *Shoe) Decks() int {
	return s.decks
}
