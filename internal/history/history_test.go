package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/cards"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
)

func playRound(r *Recorder, id string, number int) {
	now := time.Now()
	r.OnEvent(game.NewRoundStartEvent(id, number, []string{"Alice"}, now))
	r.OnEvent(game.NewDealerActionEvent(id, game.DealerStand, cards.Card{}, 18, now))
	r.OnEvent(game.NewRoundEndEvent(id, number, []game.HandResult{
		{Player: "Alice", Label: "Alice", Bet: 10, Outcome: game.OutcomeWin, Payout: 20},
	}, 18, "Round Over", false, now))
}

func TestRecorderKeepsRounds(t *testing.T) {
	r := NewRecorder(10)
	playRound(r, "a", 1)
	playRound(r, "b", 2)

	rounds := r.Rounds()
	require.Len(t, rounds, 2)
	assert.Equal(t, "a", rounds[0].RoundID)
	assert.Equal(t, "b", rounds[1].RoundID)
	assert.Len(t, rounds[0].Lines, 3)
	assert.Equal(t, 18, rounds[0].DealerTotal)

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, 2, last.Number)
}

func TestRecorderIsBounded(t *testing.T) {
	r := NewRecorder(3)
	for i := 1; i <= 5; i++ {
		playRound(r, fmt.Sprintf("r%d", i), i)
	}

	assert.Equal(t, 3, r.Len())
	rounds := r.Rounds()
	assert.Equal(t, []int{3, 4, 5}, []int{rounds[0].Number, rounds[1].Number, rounds[2].Number})

	_, ok := r.Find("r1")
	assert.False(t, ok, "oldest round should have been dropped")
	rec, ok := r.Find("r4")
	require.True(t, ok)
	assert.Equal(t, 4, rec.Number)
}

func TestRecorderIgnoresEventsOutsideRound(t *testing.T) {
	r := NewRecorder(0)
	r.OnEvent(game.NewShuffleEvent("", 6, 312, time.Now()))

	_, ok := r.Last()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRecorderOnTable(t *testing.T) {
	bus := game.NewEventBus()
	r := NewRecorder(5)
	bus.Subscribe(r)

	shoe := cards.NewStackedShoe(cards.MustParseCards("10s", "10h", "8d", "6c", "5h")...)
	table, err := game.NewTable(randutil.New(1), []string{"Alice"},
		game.WithShoe(shoe), game.WithEventBus(bus))
	require.NoError(t, err)

	require.NoError(t, table.Bet(10))
	require.NoError(t, table.Stand())

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, table.RoundID(), last.RoundID)
	assert.False(t, last.Abandoned)
	require.Len(t, last.Results, 1)
	assert.Equal(t, game.OutcomeLose, last.Results[0].Outcome)
	assert.Contains(t, last.Lines[0], "Round #1")
	assert.Contains(t, last.Summary, "Alice: Loses $10")
}
