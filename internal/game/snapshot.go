package game

import "github.com/lox/blackjack/internal/cards"

// Snapshot is a read-only view of the table for presentation layers. The
// dealer's hole card is hidden until the dealer's turn, and its value is
// left out of the dealer total shown.
type Snapshot struct {
	RoundID       string       `json:"round_id,omitempty"`
	Round         int          `json:"round"`
	Phase         Phase        `json:"phase"`
	Message       string       `json:"message"`
	Dealer        DealerView   `json:"dealer"`
	Players       []PlayerView `json:"players"`
	CurrentPlayer int          `json:"current_player"` // -1 when no seat is acting
	CurrentHand   int          `json:"current_hand"`
	ShoeRemaining int          `json:"shoe_remaining"`
	Results       []HandResult `json:"results,omitempty"`
	LegalActions  []Action     `json:"legal_actions"`
}

// DealerView is the dealer's hand as a player sees it
type DealerView struct {
	Cards          []cards.Card `json:"cards"`
	Total          int          `json:"total"`
	HoleCardHidden bool         `json:"hole_card_hidden"`
}

// PlayerView is one seat's stack and hands
type PlayerView struct {
	Seat       int        `json:"seat"`
	Name       string     `json:"name"`
	Chips      int        `json:"chips"`
	Hands      []HandView `json:"hands"`
	SittingOut bool       `json:"sitting_out"`
}

// HandView is one player hand and the bet riding on it
type HandView struct {
	Cards  []cards.Card `json:"cards"`
	Total  int          `json:"total"`
	Soft   bool         `json:"soft"`
	Bet    int          `json:"bet"`
	Status HandStatus   `json:"status"`
}

// Bets returns the bet on each hand, in hand order
func (pv PlayerView) Bets() []int {
	bets := make([]int, len(pv.Hands))
	for i, h := range pv.Hands {
		bets[i] = h.Bet
	}
	return bets
}

// Snapshot captures the table state after the last command
func (t *Table) Snapshot() Snapshot {
	s := Snapshot{
		RoundID:       t.roundID,
		Round:         t.round,
		Phase:         t.phase,
		Message:       t.message,
		CurrentPlayer: -1,
		ShoeRemaining: t.shoe.Remaining(),
		LegalActions:  t.LegalActions(),
		Dealer: DealerView{
			Cards:          t.dealer.Hand.Cards(),
			Total:          t.dealer.Hand.visibleTotal(),
			HoleCardHidden: t.dealer.HoleCardHidden(),
		},
	}

	if t.results != nil {
		s.Results = make([]HandResult, len(t.results))
		copy(s.Results, t.results)
	}

	switch t.phase {
	case Betting:
		s.CurrentPlayer = t.current
	case PlayerTurn:
		s.CurrentPlayer = t.current
		s.CurrentHand = t.players[t.current].Current
	}

	roundLive := t.roundStarted()
	for _, p := range t.players {
		pv := PlayerView{
			Seat:  p.Seat,
			Name:  p.Name,
			Chips: p.Chips,
			Hands: make([]HandView, 0, len(p.Hands)),
		}
		for _, h := range p.Hands {
			pv.Hands = append(pv.Hands, HandView{
				Cards:  h.Cards(),
				Total:  h.Total(),
				Soft:   h.IsSoft(),
				Bet:    h.Bet,
				Status: h.Status,
			})
		}
		// A seat that cannot cover the minimum, or that was passed over
		// once the deal began, sits the round out.
		pv.SittingOut = !p.InRound() && (p.Chips < t.rules.MinBet || (roundLive && t.phase != Betting))
		s.Players = append(s.Players, pv)
	}

	return s
}
