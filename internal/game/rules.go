package game

import "fmt"

const (
	// MaxSeats is the most players a table seats
	MaxSeats = 6

	// DealerStandsOn is the total at which the dealer stops drawing, soft or hard
	DealerStandsOn = 17

	// cardsPerParticipant is the reshuffle reserve per hand in the round,
	// dealer included
	cardsPerParticipant = 10
)

// Rules configures a table. Bets are validated against MinBet, MaxBet and
// BetIncrement; doubling and splitting stake an amount equal to the
// existing bet and are bounded only by the player's chips.
type Rules struct {
	Decks         int
	StartingChips int
	MinBet        int
	MaxBet        int
	BetIncrement  int
}

// DefaultRules returns a six-deck table with $10-$500 bets in $10 steps
func DefaultRules() Rules {
	return Rules{
		Decks:         6,
		StartingChips: 1000,
		MinBet:        10,
		MaxBet:        500,
		BetIncrement:  10,
	}
}

// Validate checks the rules are internally consistent
func (r Rules) Validate() error {
	if r.Decks < 1 {
		return fmt.Errorf("decks must be at least 1, got %d", r.Decks)
	}
	if r.StartingChips < 0 {
		return fmt.Errorf("starting chips cannot be negative, got %d", r.StartingChips)
	}
	if r.MinBet < 1 {
		return fmt.Errorf("minimum bet must be positive, got %d", r.MinBet)
	}
	if r.MaxBet < r.MinBet {
		return fmt.Errorf("maximum bet %d is below minimum bet %d", r.MaxBet, r.MinBet)
	}
	if r.BetIncrement < 1 {
		return fmt.Errorf("bet increment must be positive, got %d", r.BetIncrement)
	}
	if r.MinBet%r.BetIncrement != 0 || r.MaxBet%r.BetIncrement != 0 {
		return fmt.Errorf("bet limits $%d-$%d must be multiples of the $%d increment", r.MinBet, r.MaxBet, r.BetIncrement)
	}
	return nil
}

// CheckBet validates a wager against the table limits
func (r Rules) CheckBet(amount int) error {
	if amount < r.MinBet || amount > r.MaxBet {
		return fmt.Errorf("%w: bet must be between $%d and $%d", ErrBetOutOfRange, r.MinBet, r.MaxBet)
	}
	if amount%r.BetIncrement != 0 {
		return fmt.Errorf("%w: bet must be a multiple of $%d", ErrBetOutOfRange, r.BetIncrement)
	}
	return nil
}

// reshuffleThreshold is the fewest cards the shoe may hold before a deal
// to the given number of player hands.
func reshuffleThreshold(hands int) int {
	return (hands + 1) * cardsPerParticipant
}
