package cards

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in shoe-building order
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Name returns the long name of the suit
func (s Suit) Name() string {
	switch s {
	case Hearts:
		return "Hearts"
	case Diamonds:
		return "Diamonds"
	case Clubs:
		return "Clubs"
	case Spades:
		return "Spades"
	default:
		return "Unknown"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card is a single playing card. The zero value is not a valid card.
type Card struct {
	Suit   Suit
	Rank   Rank
	FaceUp bool
}

// NewCard creates a new face-up card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, FaceUp: true}
}

// Value returns the blackjack point value of the card. Aces count 11 here;
// hands demote them to 1 as needed.
func (c Card) Value() int {
	switch {
	case c.Rank == Ace:
		return 11
	case c.Rank >= Ten:
		return 10
	default:
		return int(c.Rank)
	}
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// Flip returns a copy of the card with the given orientation
func (c Card) Flip(faceUp bool) Card {
	c.FaceUp = faceUp
	return c
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// String returns the string representation of a card (e.g., "A♠") regardless
// of orientation
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Visible returns the card as a viewer at the table would see it
func (c Card) Visible() string {
	if !c.FaceUp {
		return "??"
	}
	return c.String()
}

// MarshalJSON encodes the card without leaking a face-down rank or suit.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Visible())
}

// ParseCard parses strings like "A♠", "10h", "Td" or "kc" into a face-up card.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	runes := []rune(s)
	suitPart := string(runes[len(runes)-1])
	rankPart := strings.ToUpper(string(runes[:len(runes)-1]))

	var suit Suit
	switch strings.ToLower(suitPart) {
	case "h", "♥":
		suit = Hearts
	case "d", "♦":
		suit = Diamonds
	case "c", "♣":
		suit = Clubs
	case "s", "♠":
		suit = Spades
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}

	var rank Rank
	switch rankPart {
	case "A":
		rank = Ace
	case "K":
		rank = King
	case "Q":
		rank = Queen
	case "J":
		rank = Jack
	case "T", "10":
		rank = Ten
	default:
		if len(rankPart) != 1 || rankPart[0] < '2' || rankPart[0] > '9' {
			return Card{}, fmt.Errorf("invalid rank in card %q", s)
		}
		rank = Rank(rankPart[0] - '0')
	}

	return NewCard(suit, rank), nil
}

// MustParseCards parses each string with ParseCard and panics on failure.
// Intended for tests and fixtures.
func MustParseCards(strs ...string) []Card {
	out := make([]Card, 0, len(strs))
	for _, s := range strs {
		c, err := ParseCard(s)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}
