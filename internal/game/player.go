package game

import "fmt"

// HandStatus tracks where a player hand is in its turn
type HandStatus int

const (
	HandActive HandStatus = iota
	HandStood
	HandBusted
	HandDoubled
	HandBlackjack
)

// String returns the string representation of a hand status
func (s HandStatus) String() string {
	switch s {
	case HandActive:
		return "active"
	case HandStood:
		return "stood"
	case HandBusted:
		return "busted"
	case HandDoubled:
		return "doubled"
	case HandBlackjack:
		return "blackjack"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name
func (s HandStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PlayerHand is one betting unit: the cards, the chips riding on them and
// whether the hand is still being played.
type PlayerHand struct {
	Hand
	Bet     int
	Status  HandStatus
	Doubled bool
}

// Done returns true once no further action can be taken on the hand
func (h *PlayerHand) Done() bool {
	return h.Status != HandActive
}

// Player is a seated player with a chip stack and the hands for the
// current round. A player with no hands is sitting the round out.
type Player struct {
	Seat    int
	Name    string
	Chips   int
	Hands   []*PlayerHand
	Current int
}

// NewPlayer creates a new player with the given stack
func NewPlayer(seat int, name string, chips int) *Player {
	return &Player{
		Seat:  seat,
		Name:  name,
		Chips: chips,
	}
}

// PlaceBet moves amount from the stack onto hands[handIndex]. It is used
// for the opening wager, for doubling down and for the stake on a split hand.
func (p *Player) PlaceBet(amount, handIndex int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: bet must be positive", ErrBetOutOfRange)
	}
	if handIndex < 0 || handIndex >= len(p.Hands) {
		return fmt.Errorf("%s has no hand %d", p.Name, handIndex+1)
	}
	if amount > p.Chips {
		return fmt.Errorf("%w: %s has $%d, needs $%d", ErrInsufficientChips, p.Name, p.Chips, amount)
	}

	p.Chips -= amount
	p.Hands[handIndex].Bet += amount
	return nil
}

// SplitHand divides the current two-card pair into two one-card hands and
// stakes the new hand with a bet equal to the original. The new hand is
// appended after the player's existing hands.
func (p *Player) SplitHand() error {
	h := p.CurrentHand()
	if h == nil || h.Done() {
		return fmt.Errorf("%w: no active hand", ErrIllegalSplit)
	}
	if !h.IsPair() {
		return fmt.Errorf("%w: only two cards of equal value can be split", ErrIllegalSplit)
	}
	if p.Chips < h.Bet {
		return fmt.Errorf("%w: %s has $%d, split needs $%d", ErrInsufficientChips, p.Name, p.Chips, h.Bet)
	}

	first, second := h.split()
	h.Hand = *first
	p.Hands = append(p.Hands, &PlayerHand{Hand: *second})
	if err := p.PlaceBet(h.Bet, len(p.Hands)-1); err != nil {
		panic(fmt.Sprintf("split stake rejected after chip check: %v", err))
	}
	return nil
}

// CurrentHand returns the hand being played, or nil if the player has none
func (p *Player) CurrentHand() *PlayerHand {
	if p.Current < 0 || p.Current >= len(p.Hands) {
		return nil
	}
	return p.Hands[p.Current]
}

// InRound returns true if the player has a stake in the current round
func (p *Player) InRound() bool {
	return len(p.Hands) > 0
}

// TotalBet returns the chips the player has riding across all hands
func (p *Player) TotalBet() int {
	total := 0
	for _, h := range p.Hands {
		total += h.Bet
	}
	return total
}

// handLabel names a hand for messages, numbering only split hands
func (p *Player) handLabel(i int) string {
	if len(p.Hands) > 1 {
		return fmt.Sprintf("%s Hand %d", p.Name, i+1)
	}
	return p.Name
}

func (p *Player) clearHands() {
	p.Hands = nil
	p.Current = 0
}

// Dealer holds the house hand. The second card is dealt face down and
// revealed when the dealer's turn begins.
type Dealer struct {
	Hand Hand
}

// ShouldHit returns true while the dealer total is below 17
func (d *Dealer) ShouldHit() bool {
	return d.Hand.Total() < DealerStandsOn
}

// HoleCardHidden returns true while any dealer card is face down
func (d *Dealer) HoleCardHidden() bool {
	for _, c := range d.Hand.cards {
		if !c.FaceUp {
			return true
		}
	}
	return false
}

func (d *Dealer) clear() {
	d.Hand = Hand{}
}
