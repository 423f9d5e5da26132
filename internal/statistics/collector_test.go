package statistics

import (
	rand "math/rand/v2"
	"testing"
	"time"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
)

func TestCollectorFromEvents(t *testing.T) {
	c := NewCollector()
	now := time.Now()

	c.OnEvent(game.NewShuffleEvent("r1", 6, 312, now))
	c.OnEvent(game.NewRoundEndEvent("r1", 1, []game.HandResult{
		{Seat: 0, Player: "Alice", Bet: 10, Outcome: game.OutcomeWin, Payout: 20},
		{Seat: 1, Player: "Bob", Bet: 10, Outcome: game.OutcomeBust},
	}, 19, "", false, now))
	c.OnEvent(game.NewRoundEndEvent("r2", 2, []game.HandResult{
		{Seat: 0, Player: "Alice", Bet: 10, Outcome: game.OutcomeRefund, Payout: 10},
	}, 0, "", true, now))

	if c.Rounds() != 1 {
		t.Errorf("Expected 1 settled round, got %d", c.Rounds())
	}
	if c.Shuffles() != 1 {
		t.Errorf("Expected 1 shuffle, got %d", c.Shuffles())
	}
	if c.Overall().Hands != 2 || c.Overall().Net != 0 {
		t.Errorf("Overall: %d hands net %d", c.Overall().Hands, c.Overall().Net)
	}
	if got := c.Players(); len(got) != 2 || got[0] != "Alice" || got[1] != "Bob" {
		t.Errorf("Players() = %v", got)
	}
	if c.Player("Alice").Net != 10 || c.Player("Bob").Net != -10 {
		t.Error("per-player nets wrong")
	}
	if c.Player("Carol") != nil {
		t.Error("expected nil for unknown player")
	}
}

func TestCollectorOnTable(t *testing.T) {
	bus := game.NewEventBus()
	c := NewCollector()
	bus.Subscribe(c)

	table, err := game.NewTable(testRNG(), []string{"Alice", "Bob"}, game.WithEventBus(bus))
	if err != nil {
		t.Fatal(err)
	}

	for round := 0; round < 50; round++ {
		for table.Phase() == game.Betting {
			if err := table.Bet(10); err != nil {
				t.Fatal(err)
			}
		}
		for table.Phase() == game.PlayerTurn {
			if err := table.Stand(); err != nil {
				t.Fatal(err)
			}
		}
		if err := table.NewRound(); err != nil {
			t.Fatal(err)
		}
	}

	if c.Rounds() != 50 {
		t.Errorf("Expected 50 rounds, got %d", c.Rounds())
	}
	if err := c.Overall().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if c.Overall().Net != -table.HouseNet() {
		t.Errorf("player net %d does not mirror house net %d", c.Overall().Net, table.HouseNet())
	}
}

func testRNG() *rand.Rand {
	return randutil.New(11)
}
