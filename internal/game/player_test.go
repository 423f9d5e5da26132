package game

import (
	"errors"
	"testing"

	"github.com/lox/blackjack/internal/cards"
)

func playerWithHand(chips, bet int, cs ...string) *Player {
	p := NewPlayer(0, "Alice", chips)
	p.Hands = []*PlayerHand{{Hand: *NewHand(cards.MustParseCards(cs...)...)}}
	if bet > 0 {
		if err := p.PlaceBet(bet, 0); err != nil {
			panic(err)
		}
	}
	return p
}

func TestPlaceBetDebitsChips(t *testing.T) {
	p := playerWithHand(1000, 0)

	if err := p.PlaceBet(50, 0); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if p.Chips != 950 {
		t.Errorf("chips = %d, want 950", p.Chips)
	}
	if p.Hands[0].Bet != 50 {
		t.Errorf("bet = %d, want 50", p.Hands[0].Bet)
	}

	// A second stake on the same hand adds to it, as a double does
	if err := p.PlaceBet(50, 0); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if p.Hands[0].Bet != 100 || p.Chips != 900 {
		t.Errorf("bet = %d chips = %d, want 100 and 900", p.Hands[0].Bet, p.Chips)
	}
}

func TestPlaceBetBeyondChipsDoesNotMutate(t *testing.T) {
	p := playerWithHand(100, 40)

	for i := 0; i < 3; i++ {
		err := p.PlaceBet(61, 0)
		if !errors.Is(err, ErrInsufficientChips) {
			t.Fatalf("expected ErrInsufficientChips, got %v", err)
		}
		if p.Chips != 60 || p.Hands[0].Bet != 40 {
			t.Fatalf("failed bet mutated state: chips=%d bet=%d", p.Chips, p.Hands[0].Bet)
		}
	}
}

func TestPlaceBetRejectsBadInput(t *testing.T) {
	p := playerWithHand(100, 0)

	if err := p.PlaceBet(0, 0); !errors.Is(err, ErrBetOutOfRange) {
		t.Errorf("zero bet: expected ErrBetOutOfRange, got %v", err)
	}
	if err := p.PlaceBet(10, 3); err == nil {
		t.Error("bet on missing hand should fail")
	}
	if p.Chips != 100 {
		t.Errorf("chips = %d, want 100", p.Chips)
	}
}

func TestSplitHandEights(t *testing.T) {
	p := playerWithHand(1000, 100, "8s", "8d")

	if err := p.SplitHand(); err != nil {
		t.Fatalf("SplitHand: %v", err)
	}

	if len(p.Hands) != 2 {
		t.Fatalf("expected 2 hands, got %d", len(p.Hands))
	}
	for i, h := range p.Hands {
		if h.Len() != 1 || h.Total() != 8 {
			t.Errorf("hand %d: %d cards total %d, want 1 card total 8", i, h.Len(), h.Total())
		}
		if h.Bet != 100 {
			t.Errorf("hand %d bet = %d, want 100", i, h.Bet)
		}
	}
	if p.TotalBet() != 200 {
		t.Errorf("TotalBet() = %d, want 200", p.TotalBet())
	}
	if p.Chips != 800 {
		t.Errorf("chips = %d, want 800", p.Chips)
	}
}

func TestSplitHandRejections(t *testing.T) {
	tests := []struct {
		name  string
		chips int
		cards []string
		want  error
	}{
		{"not a pair", 1000, []string{"8s", "9d"}, ErrIllegalSplit},
		{"three cards", 1000, []string{"4s", "4d", "4c"}, ErrIllegalSplit},
		{"short of chips", 150, []string{"8s", "8d"}, ErrInsufficientChips},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := playerWithHand(tt.chips, 100, tt.cards...)
			before := p.Hands[0].Cards()

			err := p.SplitHand()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(p.Hands) != 1 || p.Hands[0].Len() != len(before) {
				t.Errorf("failed split changed hands: %d hands", len(p.Hands))
			}
			if p.Chips != tt.chips-100 {
				t.Errorf("chips = %d, want %d", p.Chips, tt.chips-100)
			}
		})
	}
}

func TestSplitHandFinishedHand(t *testing.T) {
	p := playerWithHand(1000, 100, "8s", "8d")
	p.Hands[0].Status = HandStood

	if err := p.SplitHand(); !errors.Is(err, ErrIllegalSplit) {
		t.Errorf("expected ErrIllegalSplit, got %v", err)
	}
}

func TestHandLabel(t *testing.T) {
	p := playerWithHand(1000, 10, "8s", "8d")
	if got := p.handLabel(0); got != "Alice" {
		t.Errorf("single hand label = %q", got)
	}
	if err := p.SplitHand(); err != nil {
		t.Fatal(err)
	}
	if got := p.handLabel(1); got != "Alice Hand 2" {
		t.Errorf("split hand label = %q", got)
	}
}

func TestDealerShouldHit(t *testing.T) {
	tests := []struct {
		cards []string
		want  bool
	}{
		{[]string{"10s", "6d"}, true},
		{[]string{"10s", "7d"}, false},
		{[]string{"As", "6d"}, false},
		{[]string{"As", "5d"}, true},
		{[]string{"5s", "5d", "5c", "2h"}, false},
	}

	for _, tt := range tests {
		d := Dealer{Hand: *NewHand(cards.MustParseCards(tt.cards...)...)}
		if d.ShouldHit() != tt.want {
			t.Errorf("%v: ShouldHit() = %v, want %v", tt.cards, d.ShouldHit(), tt.want)
		}
	}
}
