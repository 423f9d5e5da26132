package game

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/cards"
)

// ShoeFactory builds a replacement shoe when the table reshuffles
type ShoeFactory func(rng *rand.Rand, decks int) *cards.Shoe

// TableOption configures a Table during creation.
type TableOption func(*tableConfig)

// tableConfig holds all configuration for creating a table.
type tableConfig struct {
	rules        Rules
	chipCounts   []int       // If nil, every seat starts with rules.StartingChips
	shoe         *cards.Shoe // If provided, dealt from first
	shoeFactory  ShoeFactory
	logger       *log.Logger
	eventBus     EventBus
	clock        quartz.Clock
	manualDealer bool
}

// WithRules sets the table rules. Default is DefaultRules().
func WithRules(rules Rules) TableOption {
	return func(c *tableConfig) {
		c.rules = rules
	}
}

// WithChips sets individual starting stacks for each seat.
// The length must match the number of players.
func WithChips(chipCounts []int) TableOption {
	return func(c *tableConfig) {
		c.chipCounts = chipCounts
	}
}

// WithShoe sets the shoe the table deals from. Unless WithShoeFactory is
// also given, the table never reshuffles and deals this shoe to the end.
func WithShoe(shoe *cards.Shoe) TableOption {
	return func(c *tableConfig) {
		c.shoe = shoe
	}
}

// WithShoeFactory sets how replacement shoes are built on reshuffle.
// Default is cards.NewShoe when no shoe was given.
func WithShoeFactory(factory ShoeFactory) TableOption {
	return func(c *tableConfig) {
		c.shoeFactory = factory
	}
}

// WithLogger sets the logger. Default discards output.
func WithLogger(logger *log.Logger) TableOption {
	return func(c *tableConfig) {
		c.logger = logger
	}
}

// WithEventBus sets the bus round events are published on.
func WithEventBus(bus EventBus) TableOption {
	return func(c *tableConfig) {
		c.eventBus = bus
	}
}

// WithClock sets the clock used for event timestamps and round IDs.
// Default is the real clock.
func WithClock(clock quartz.Clock) TableOption {
	return func(c *tableConfig) {
		c.clock = clock
	}
}

// WithManualDealer makes the dealer's turn step-wise: each Advance call
// draws at most one card, so a presentation layer can animate it. A round
// in which every hand is busted or a blackjack still settles immediately.
func WithManualDealer(manual bool) TableOption {
	return func(c *tableConfig) {
		c.manualDealer = manual
	}
}
