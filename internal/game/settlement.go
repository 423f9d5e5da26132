package game

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/cards"
)

// Outcome is how a single hand resolved against the dealer
type Outcome int

const (
	OutcomeLose Outcome = iota
	OutcomeBust
	OutcomePush
	OutcomeWin
	OutcomeBlackjack
	OutcomeRefund // round abandoned before settlement
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeLose:
		return "lose"
	case OutcomeBust:
		return "bust"
	case OutcomePush:
		return "push"
	case OutcomeWin:
		return "win"
	case OutcomeBlackjack:
		return "blackjack"
	case OutcomeRefund:
		return "refund"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// HandResult is the settlement of one player hand
type HandResult struct {
	Seat            int          `json:"seat"`
	Player          string       `json:"player"`
	HandIndex       int          `json:"hand_index"`
	Label           string       `json:"label"`
	Cards           []cards.Card `json:"cards"`
	Total           int          `json:"total"`
	Bet             int          `json:"bet"`
	Outcome         Outcome      `json:"outcome"`
	Payout          int          `json:"payout"` // chips returned to the player, stake included
	Doubled         bool         `json:"doubled,omitempty"`
	Split           bool         `json:"split,omitempty"`
	DealerBlackjack bool         `json:"dealer_blackjack,omitempty"`
	DealerBust      bool         `json:"dealer_bust,omitempty"`
}

// Net returns the chips won (positive) or lost (negative) on the hand
func (r HandResult) Net() int {
	return r.Payout - r.Bet
}

// Describe renders the result the way the table announces it
func (r HandResult) Describe() string {
	switch r.Outcome {
	case OutcomeBlackjack:
		return fmt.Sprintf("%s: Blackjack! Wins $%d", r.Label, r.Net())
	case OutcomeBust:
		return fmt.Sprintf("%s: Bust! Loses $%d", r.Label, r.Bet)
	case OutcomePush:
		if r.DealerBlackjack {
			return fmt.Sprintf("%s: Push (Both Blackjack)", r.Label)
		}
		return fmt.Sprintf("%s: Push", r.Label)
	case OutcomeWin:
		if r.DealerBust {
			return fmt.Sprintf("%s: Wins $%d (Dealer Busts)", r.Label, r.Net())
		}
		return fmt.Sprintf("%s: Wins $%d", r.Label, r.Net())
	case OutcomeLose:
		if r.DealerBlackjack {
			return fmt.Sprintf("%s: Loses $%d (Dealer Blackjack)", r.Label, r.Bet)
		}
		return fmt.Sprintf("%s: Loses $%d", r.Label, r.Bet)
	case OutcomeRefund:
		return fmt.Sprintf("%s: Refunded $%d", r.Label, r.Payout)
	default:
		return r.Label
	}
}

// BlackjackPayout is the total returned on a winning natural: stake plus
// 3:2, rounded down to whole chips.
func BlackjackPayout(bet int) int {
	return bet * 5 / 2
}

// Settle resolves one hand against the dealer's final hand and returns the
// outcome and the chips to pay back (0 for a loss).
func Settle(hand *Hand, bet int, dealer *Hand) (Outcome, int) {
	playerBJ := hand.IsBlackjack()
	dealerBJ := dealer.IsBlackjack()

	switch {
	case playerBJ && dealerBJ:
		return OutcomePush, bet
	case playerBJ:
		return OutcomeBlackjack, BlackjackPayout(bet)
	case hand.IsBust():
		return OutcomeBust, 0
	case dealerBJ:
		return OutcomeLose, 0
	case dealer.IsBust():
		return OutcomeWin, bet * 2
	case hand.Total() > dealer.Total():
		return OutcomeWin, bet * 2
	case hand.Total() < dealer.Total():
		return OutcomeLose, 0
	default:
		return OutcomePush, bet
	}
}

// settlePlayers resolves every hand, credits payouts and returns the
// per-hand results in seat order.
func settlePlayers(players []*Player, dealer *Hand) []HandResult {
	var results []HandResult
	for _, p := range players {
		for i, h := range p.Hands {
			outcome, payout := Settle(&h.Hand, h.Bet, dealer)
			p.Chips += payout
			results = append(results, HandResult{
				Seat:            p.Seat,
				Player:          p.Name,
				HandIndex:       i,
				Label:           p.handLabel(i),
				Cards:           h.Cards(),
				Total:           h.Total(),
				Bet:             h.Bet,
				Outcome:         outcome,
				Payout:          payout,
				Doubled:         h.Doubled,
				Split:           len(p.Hands) > 1,
				DealerBlackjack: dealer.IsBlackjack(),
				DealerBust:      dealer.IsBust(),
			})
		}
	}
	return results
}

// summarize composes the advisory end-of-round message: each player's
// hands followed by their chip count.
func summarize(prefix string, players []*Player, results []HandResult) string {
	var parts []string
	for _, p := range players {
		var lines []string
		for _, r := range results {
			if r.Seat == p.Seat {
				lines = append(lines, r.Describe())
			}
		}
		if len(lines) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s. %s Chips: $%d", strings.Join(lines, ". "), p.Name, p.Chips))
	}

	if len(parts) == 0 {
		return prefix + ". No bets resolved."
	}
	return prefix + ": " + strings.Join(parts, " | ")
}
