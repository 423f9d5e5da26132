package game

import (
	"strings"

	"github.com/lox/blackjack/internal/cards"
)

const (
	// BlackjackTotal is the best possible hand total
	BlackjackTotal = 21

	// aceDemotion is the difference between an Ace counted as 11 and as 1
	aceDemotion = 10
)

// Hand is an ordered set of cards with an incrementally maintained total.
// AddCard is the only place the total changes.
type Hand struct {
	cards    []cards.Card
	total    int
	softAces int // aces still counted as 11
}

// NewHand builds a hand by adding each card in order
func NewHand(cs ...cards.Card) *Hand {
	h := &Hand{}
	for _, c := range cs {
		h.AddCard(c)
	}
	return h
}

// AddCard appends a card and demotes aces from 11 to 1 while the hand
// would otherwise bust.
func (h *Hand) AddCard(c cards.Card) {
	h.cards = append(h.cards, c)
	h.total += c.Value()
	if c.IsAce() {
		h.softAces++
	}
	h.adjustForAces()
}

func (h *Hand) adjustForAces() {
	for h.total > BlackjackTotal && h.softAces > 0 {
		h.total -= aceDemotion
		h.softAces--
	}
}

// Total returns the best total of the hand
func (h *Hand) Total() int {
	return h.total
}

// IsSoft returns true if an Ace is currently counted as 11
func (h *Hand) IsSoft() bool {
	return h.softAces > 0
}

// IsBlackjack returns true for a two-card 21
func (h *Hand) IsBlackjack() bool {
	return len(h.cards) == 2 && h.total == BlackjackTotal
}

// IsBust returns true if the total exceeds 21
func (h *Hand) IsBust() bool {
	return h.total > BlackjackTotal
}

// IsPair returns true for exactly two cards of equal point value (K-Q counts)
func (h *Hand) IsPair() bool {
	return len(h.cards) == 2 && h.cards[0].Value() == h.cards[1].Value()
}

// Len returns the number of cards in the hand
func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a copy of the cards in the hand
func (h *Hand) Cards() []cards.Card {
	out := make([]cards.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Card returns the card at position i
func (h *Hand) Card(i int) cards.Card {
	return h.cards[i]
}

// reveal turns every card face up
func (h *Hand) reveal() {
	for i := range h.cards {
		h.cards[i].FaceUp = true
	}
}

// visibleTotal is the total a viewer can see: face-down cards are left out.
func (h *Hand) visibleTotal() int {
	shown := &Hand{}
	for _, c := range h.cards {
		if c.FaceUp {
			shown.AddCard(c)
		}
	}
	return shown.Total()
}

// split removes the second card and returns the two resulting one-card
// hands. Both are rebuilt through AddCard so the totals stay derived.
func (h *Hand) split() (*Hand, *Hand) {
	return NewHand(h.cards[0]), NewHand(h.cards[1])
}

// String returns the cards as they appear to a viewer
func (h *Hand) String() string {
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.Visible()
	}
	return strings.Join(parts, " ")
}
