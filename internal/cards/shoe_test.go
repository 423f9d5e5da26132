package cards

import (
	"errors"
	"testing"

	"github.com/lox/blackjack/internal/randutil"
)

type suitRank struct {
	suit Suit
	rank Rank
}

func countCards(t *testing.T, s *Shoe) map[suitRank]int {
	t.Helper()
	counts := make(map[suitRank]int)
	for s.Remaining() > 0 {
		c, err := s.Draw()
		if err != nil {
			t.Fatalf("draw: %v", err)
		}
		counts[suitRank{c.Suit, c.Rank}]++
	}
	return counts
}

func TestNewShoeSingleDeck(t *testing.T) {
	s := NewShoe(randutil.New(42), 1)
	if s.Remaining() != 52 {
		t.Fatalf("expected 52 cards, got %d", s.Remaining())
	}

	counts := countCards(t, s)
	if len(counts) != 52 {
		t.Errorf("expected 52 unique cards, got %d", len(counts))
	}
	for k, n := range counts {
		if n != 1 {
			t.Errorf("%s%s appears %d times", k.rank, k.suit, n)
		}
	}
}

func TestNewShoeSixDecks(t *testing.T) {
	s := NewShoe(randutil.New(7), 6)
	if s.Remaining() != 312 {
		t.Fatalf("expected 312 cards, got %d", s.Remaining())
	}
	if s.Decks() != 6 {
		t.Errorf("Decks() = %d, want 6", s.Decks())
	}

	counts := countCards(t, s)
	if len(counts) != 52 {
		t.Errorf("expected 52 distinct cards, got %d", len(counts))
	}
	for k, n := range counts {
		if n != 6 {
			t.Errorf("%s%s appears %d times, want 6", k.rank, k.suit, n)
		}
	}
}

func TestShoeDrawsFaceUp(t *testing.T) {
	s := NewShoe(randutil.New(1), 1)
	c, err := s.Draw()
	if err != nil {
		t.Fatal(err)
	}
	if !c.FaceUp {
		t.Error("cards should come out of the shoe face up")
	}
}

func TestShoeShuffleIsSeeded(t *testing.T) {
	a := NewShoe(randutil.New(99), 2)
	b := NewShoe(randutil.New(99), 2)
	c := NewShoe(randutil.New(100), 2)

	sameAsC := true
	for a.Remaining() > 0 {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		cc, _ := c.Draw()
		if ca != cb {
			t.Fatal("same seed produced different shoes")
		}
		if ca != cc {
			sameAsC = false
		}
	}
	if sameAsC {
		t.Error("different seeds produced identical shoes")
	}
}

func TestShoeExhausted(t *testing.T) {
	s := NewStackedShoe(MustParseCards("As", "Kd")...)

	for i := 0; i < 2; i++ {
		if _, err := s.Draw(); err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
	}
	if _, err := s.Draw(); !errors.Is(err, ErrShoeExhausted) {
		t.Errorf("expected ErrShoeExhausted, got %v", err)
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", s.Remaining())
	}
}

func TestStackedShoeOrder(t *testing.T) {
	want := MustParseCards("2h", "3d", "4c")
	want[1] = want[1].Flip(false)
	s := NewStackedShoe(want...)

	for i := range want {
		c, err := s.Draw()
		if err != nil {
			t.Fatal(err)
		}
		if c.Rank != want[i].Rank || c.Suit != want[i].Suit {
			t.Errorf("card %d = %s, want %s", i, c, want[i])
		}
		if !c.FaceUp {
			t.Errorf("card %d should be face up", i)
		}
	}
}
