package game

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/cards"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	ShowRoundIDs bool   // Prefix lines with the round ID (for logs)
	ShowChips    bool   // Include chip stacks after bets (for the TUI)
	Perspective  string // Player name rendered as "You"
}

// EventFormatter provides centralized formatting for all table events
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format renders any table event as a single line
func (ef *EventFormatter) Format(event GameEvent) string {
	var line string
	switch e := event.(type) {
	case RoundStartEvent:
		line = ef.FormatRoundStart(e)
	case ShuffleEvent:
		line = ef.FormatShuffle(e)
	case BetEvent:
		line = ef.FormatBet(e)
	case PlayerActionEvent:
		line = ef.FormatPlayerAction(e)
	case DealerActionEvent:
		line = ef.FormatDealerAction(e)
	case RoundEndEvent:
		line = ef.FormatRoundEnd(e)
	default:
		line = string(event.EventType())
	}

	if ef.opts.ShowRoundIDs && event.Round() != "" {
		return fmt.Sprintf("[%s] %s", event.Round(), line)
	}
	return line
}

// FormatRoundStart formats the opening of a round
func (ef *EventFormatter) FormatRoundStart(event RoundStartEvent) string {
	names := make([]string, len(event.Players))
	for i, n := range event.Players {
		names[i] = ef.name(n)
	}
	return fmt.Sprintf("=== Round #%d: %s ===", event.Number, strings.Join(names, ", "))
}

// FormatShuffle formats a reshuffle
func (ef *EventFormatter) FormatShuffle(event ShuffleEvent) string {
	return fmt.Sprintf("*** Shoe reshuffled: %d decks, %d cards ***", event.Decks, event.Cards)
}

// FormatBet formats chips moving onto a hand
func (ef *EventFormatter) FormatBet(event BetEvent) string {
	var text string
	switch event.Kind {
	case BetDouble:
		text = fmt.Sprintf("%s: doubles down for $%d", ef.name(event.Player), event.Amount)
	case BetSplit:
		text = fmt.Sprintf("%s: splits, $%d on hand %d", ef.name(event.Player), event.Amount, event.HandIndex+1)
	default:
		text = fmt.Sprintf("%s: bets $%d", ef.name(event.Player), event.Amount)
	}
	if ef.opts.ShowChips {
		text += fmt.Sprintf(" (stack: $%d)", event.ChipsAfter)
	}
	return text
}

// FormatPlayerAction formats a player decision and the cards it drew
func (ef *EventFormatter) FormatPlayerAction(event PlayerActionEvent) string {
	who := ef.name(event.Player)
	drawn := ef.formatCards(event.Cards)

	switch {
	case event.Status == HandBlackjack && event.Action == ActionStand:
		return fmt.Sprintf("%s: Blackjack!", who)
	case event.Action == ActionSplit:
		return fmt.Sprintf("%s: splits and receives %s", who, drawn)
	case event.Action == ActionStand:
		return fmt.Sprintf("%s: stands on %d", who, event.Total)
	case event.Status == HandBusted:
		return fmt.Sprintf("%s: %s draws %s, busts with %d", who, event.Action, drawn, event.Total)
	case event.Action == ActionDouble:
		return fmt.Sprintf("%s: doubles, draws %s for %d", who, drawn, event.Total)
	default:
		return fmt.Sprintf("%s: hits, draws %s for %d", who, drawn, event.Total)
	}
}

// FormatDealerAction formats one step of the dealer's turn
func (ef *EventFormatter) FormatDealerAction(event DealerActionEvent) string {
	switch event.Move {
	case DealerReveal:
		return fmt.Sprintf("Dealer: reveals %s (%d)", event.Card, event.Total)
	case DealerDraw:
		return fmt.Sprintf("Dealer: draws %s (%d)", event.Card, event.Total)
	case DealerBust:
		return fmt.Sprintf("Dealer: busts with %d", event.Total)
	default:
		return fmt.Sprintf("Dealer: stands on %d", event.Total)
	}
}

// FormatRoundEnd formats the settlement of a round, one line per hand
func (ef *EventFormatter) FormatRoundEnd(event RoundEndEvent) string {
	var sb strings.Builder
	if event.Abandoned {
		fmt.Fprintf(&sb, "=== Round #%d abandoned, bets refunded ===", event.Number)
	} else {
		fmt.Fprintf(&sb, "=== Round #%d over, dealer %d ===", event.Number, event.DealerTotal)
	}
	for _, r := range event.Results {
		sb.WriteString("\n  ")
		sb.WriteString(r.Describe())
	}
	return sb.String()
}

func (ef *EventFormatter) name(player string) string {
	if ef.opts.Perspective != "" && player == ef.opts.Perspective {
		return "You"
	}
	return player
}

func (ef *EventFormatter) formatCards(cs []cards.Card) string {
	if len(cs) == 0 {
		return "-"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.Visible()
	}
	return strings.Join(parts, " ")
}
