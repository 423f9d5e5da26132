package game

import (
	"strings"
	"testing"

	"github.com/lox/blackjack/internal/cards"
)

func TestSettle(t *testing.T) {
	tests := []struct {
		name    string
		player  []string
		dealer  []string
		outcome Outcome
		payout  int
	}{
		{"blackjack beats 20", []string{"As", "Kd"}, []string{"10h", "Qc"}, OutcomeBlackjack, 250},
		{"blackjack beats three card 21", []string{"As", "Kd"}, []string{"7h", "7c", "7d"}, OutcomeBlackjack, 250},
		{"both blackjack push", []string{"As", "Kd"}, []string{"Ah", "Jc"}, OutcomePush, 100},
		{"dealer blackjack beats 21", []string{"7s", "7d", "7c"}, []string{"Ah", "Jc"}, OutcomeLose, 0},
		{"bust loses to dealer bust", []string{"Ks", "Qd", "5c"}, []string{"10h", "6c", "9d"}, OutcomeBust, 0},
		{"dealer busts", []string{"10s", "2d"}, []string{"10h", "6c", "9d"}, OutcomeWin, 200},
		{"higher total wins", []string{"10s", "9d"}, []string{"10h", "8c"}, OutcomeWin, 200},
		{"lower total loses", []string{"10s", "7d"}, []string{"10h", "8c"}, OutcomeLose, 0},
		{"equal totals push", []string{"10s", "8d"}, []string{"10h", "8c"}, OutcomePush, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := NewHand(cards.MustParseCards(tt.player...)...)
			dealer := NewHand(cards.MustParseCards(tt.dealer...)...)

			outcome, payout := Settle(player, 100, dealer)
			if outcome != tt.outcome {
				t.Errorf("outcome = %s, want %s", outcome, tt.outcome)
			}
			if payout != tt.payout {
				t.Errorf("payout = %d, want %d", payout, tt.payout)
			}
		})
	}
}

func TestBlackjackPayoutRoundsDown(t *testing.T) {
	tests := []struct{ bet, want int }{
		{50, 125},
		{10, 25},
		{15, 37},
		{500, 1250},
	}
	for _, tt := range tests {
		if got := BlackjackPayout(tt.bet); got != tt.want {
			t.Errorf("BlackjackPayout(%d) = %d, want %d", tt.bet, got, tt.want)
		}
	}
}

func TestSettlePlayersSplitHandsIndependently(t *testing.T) {
	p := NewPlayer(0, "Alice", 800)
	p.Hands = []*PlayerHand{
		{Hand: *NewHand(cards.MustParseCards("8s", "Kd")...), Bet: 100, Status: HandStood},
		{Hand: *NewHand(cards.MustParseCards("8d", "Jc")...), Bet: 100, Status: HandStood},
	}
	dealer := NewHand(cards.MustParseCards("10h", "7c")...)

	results := settlePlayers([]*Player{p}, dealer)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Outcome != OutcomeWin || results[1].Outcome != OutcomeWin {
		t.Errorf("outcomes = %s, %s", results[0].Outcome, results[1].Outcome)
	}
	if p.Chips != 1200 {
		t.Errorf("chips = %d, want 1200", p.Chips)
	}

	dealer = NewHand(cards.MustParseCards("10h", "8c")...)
	p = NewPlayer(0, "Alice", 800)
	p.Hands = []*PlayerHand{
		{Hand: *NewHand(cards.MustParseCards("8s", "Kd")...), Bet: 100},
		{Hand: *NewHand(cards.MustParseCards("8d", "9c")...), Bet: 100},
	}
	results = settlePlayers([]*Player{p}, dealer)
	if results[0].Outcome != OutcomePush || results[1].Outcome != OutcomeLose {
		t.Errorf("outcomes = %s, %s, want push and lose", results[0].Outcome, results[1].Outcome)
	}
	if p.Chips != 900 {
		t.Errorf("chips = %d, want 900", p.Chips)
	}
	if results[1].Net() != -100 {
		t.Errorf("Net() = %d, want -100", results[1].Net())
	}
}

func TestSummarize(t *testing.T) {
	alice := NewPlayer(0, "Alice", 1075)
	bob := NewPlayer(1, "Bob", 980)
	results := []HandResult{
		{Seat: 0, Label: "Alice", Bet: 50, Outcome: OutcomeBlackjack, Payout: 125},
		{Seat: 1, Label: "Bob", Bet: 20, Outcome: OutcomeBust},
	}

	got := summarize("Round Over", []*Player{alice, bob}, results)
	want := "Round Over: Alice: Blackjack! Wins $75. Alice Chips: $1075 | Bob: Bust! Loses $20. Bob Chips: $980"
	if got != want {
		t.Errorf("summary =\n%q\nwant\n%q", got, want)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		result HandResult
		want   string
	}{
		{HandResult{Label: "Bob", Bet: 20, Outcome: OutcomeWin, Payout: 40, DealerBust: true}, "Wins $20 (Dealer Busts)"},
		{HandResult{Label: "Bob", Bet: 20, Outcome: OutcomeLose, DealerBlackjack: true}, "Loses $20 (Dealer Blackjack)"},
		{HandResult{Label: "Bob", Bet: 20, Outcome: OutcomePush, Payout: 20, DealerBlackjack: true}, "Push (Both Blackjack)"},
		{HandResult{Label: "Bob Hand 2", Bet: 20, Outcome: OutcomeRefund, Payout: 20}, "Bob Hand 2: Refunded $20"},
	}
	for _, tt := range tests {
		if got := tt.result.Describe(); !strings.HasSuffix(got, tt.want) {
			t.Errorf("Describe() = %q, want suffix %q", got, tt.want)
		}
	}
}
