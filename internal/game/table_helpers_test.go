package game

import (
	"io"
	rand "math/rand/v2"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/cards"
	"github.com/lox/blackjack/internal/randutil"
)

// TestTableOption configures test table creation
type TestTableOption func(*testTableBuilder)

type testTableBuilder struct {
	seed    int64
	players []string
	deal    []string
	opts    []TableOption
}

// WithSeed sets the RNG seed for the table
func WithSeed(seed int64) TestTableOption {
	return func(b *testTableBuilder) { b.seed = seed }
}

// WithPlayers seats the named players
func WithPlayers(names ...string) TestTableOption {
	return func(b *testTableBuilder) { b.players = names }
}

// WithDeal stacks the shoe so the given cards come out in order. Cards
// follow the opening deal: each player, dealer up card, each player,
// dealer hole card, then hits.
func WithDeal(cs ...string) TestTableOption {
	return func(b *testTableBuilder) { b.deal = cs }
}

// WithTableOptions passes options through to NewTable
func WithTableOptions(opts ...TableOption) TestTableOption {
	return func(b *testTableBuilder) { b.opts = append(b.opts, opts...) }
}

// NewTestTable creates a table for testing with sensible defaults: one
// player named Alice, default rules, logs discarded.
func NewTestTable(t *testing.T, opts ...TestTableOption) *Table {
	t.Helper()

	builder := &testTableBuilder{
		seed:    42,
		players: []string{"Alice"},
	}
	for _, opt := range opts {
		opt(builder)
	}

	tableOpts := []TableOption{WithLogger(log.New(io.Discard))}
	if builder.deal != nil {
		tableOpts = append(tableOpts, WithShoe(cards.NewStackedShoe(cards.MustParseCards(builder.deal...)...)))
	}
	tableOpts = append(tableOpts, builder.opts...)

	table, err := NewTable(randutil.New(builder.seed), builder.players, tableOpts...)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func testRNG(seed int64) *rand.Rand {
	return randutil.New(seed)
}

// mustDo fails the test if a command is rejected
func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

// recorder collects published events
type recorder struct {
	events []GameEvent
}

func (r *recorder) OnEvent(event GameEvent) {
	r.events = append(r.events, event)
}

func (r *recorder) ofType(et EventType) []GameEvent {
	var out []GameEvent
	for _, e := range r.events {
		if e.EventType() == et {
			out = append(out, e)
		}
	}
	return out
}
