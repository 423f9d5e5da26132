package game

import (
	"time"

	"github.com/lox/blackjack/internal/cards"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for round events
const (
	EventTypeRoundStart   EventType = "round_start"
	EventTypeShuffle      EventType = "shuffle"
	EventTypeBet          EventType = "bet"
	EventTypePlayerAction EventType = "player_action"
	EventTypeDealerAction EventType = "dealer_action"
	EventTypeRoundEnd     EventType = "round_end"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything that happens at the table
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
	Round() string
}

// RoundStartEvent is published when the first bet of a round opens it
type RoundStartEvent struct {
	RoundID   string
	Number    int
	Players   []string
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }
func (e RoundStartEvent) Round() string        { return e.RoundID }

// NewRoundStartEvent creates a new round start event
func NewRoundStartEvent(roundID string, number int, players []string, at time.Time) RoundStartEvent {
	return RoundStartEvent{RoundID: roundID, Number: number, Players: players, timestamp: at}
}

// ShuffleEvent is published when the shoe is replaced before a deal
type ShuffleEvent struct {
	RoundID   string
	Decks     int
	Cards     int
	timestamp time.Time
}

func (e ShuffleEvent) EventType() EventType { return EventTypeShuffle }
func (e ShuffleEvent) Timestamp() time.Time { return e.timestamp }
func (e ShuffleEvent) Round() string        { return e.RoundID }

// NewShuffleEvent creates a new shuffle event
func NewShuffleEvent(roundID string, decks, cardCount int, at time.Time) ShuffleEvent {
	return ShuffleEvent{RoundID: roundID, Decks: decks, Cards: cardCount, timestamp: at}
}

// BetKind distinguishes why chips moved onto a hand
type BetKind string

const (
	BetWager  BetKind = "wager"
	BetDouble BetKind = "double"
	BetSplit  BetKind = "split"
)

// BetEvent is published when chips move from a stack onto a hand
type BetEvent struct {
	RoundID    string
	Seat       int
	Player     string
	HandIndex  int
	Kind       BetKind
	Amount     int
	ChipsAfter int
	timestamp  time.Time
}

func (e BetEvent) EventType() EventType { return EventTypeBet }
func (e BetEvent) Timestamp() time.Time { return e.timestamp }
func (e BetEvent) Round() string        { return e.RoundID }

// NewBetEvent creates a new bet event
func NewBetEvent(roundID string, p *Player, handIndex int, kind BetKind, amount int, at time.Time) BetEvent {
	return BetEvent{
		RoundID:    roundID,
		Seat:       p.Seat,
		Player:     p.Name,
		HandIndex:  handIndex,
		Kind:       kind,
		Amount:     amount,
		ChipsAfter: p.Chips,
		timestamp:  at,
	}
}

// PlayerActionEvent is published after a player's hit, stand, double or
// split, and when a dealt blackjack skips a turn.
type PlayerActionEvent struct {
	RoundID   string
	Seat      int
	Player    string
	HandIndex int
	Action    Action
	Cards     []cards.Card // cards drawn by the action, if any
	Total     int
	Status    HandStatus
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }
func (e PlayerActionEvent) Round() string        { return e.RoundID }

// NewPlayerActionEvent creates a new player action event
func NewPlayerActionEvent(roundID string, p *Player, handIndex int, action Action, drawn []cards.Card, at time.Time) PlayerActionEvent {
	h := p.Hands[handIndex]
	return PlayerActionEvent{
		RoundID:   roundID,
		Seat:      p.Seat,
		Player:    p.Name,
		HandIndex: handIndex,
		Action:    action,
		Cards:     drawn,
		Total:     h.Total(),
		Status:    h.Status,
		timestamp: at,
	}
}

// DealerMove is what the dealer did
type DealerMove string

const (
	DealerReveal DealerMove = "reveal"
	DealerDraw   DealerMove = "draw"
	DealerStand  DealerMove = "stand"
	DealerBust   DealerMove = "bust"
)

// DealerActionEvent is published for each step of the dealer's turn
type DealerActionEvent struct {
	RoundID   string
	Move      DealerMove
	Card      cards.Card
	Total     int
	timestamp time.Time
}

func (e DealerActionEvent) EventType() EventType { return EventTypeDealerAction }
func (e DealerActionEvent) Timestamp() time.Time { return e.timestamp }
func (e DealerActionEvent) Round() string        { return e.RoundID }

// NewDealerActionEvent creates a new dealer action event
func NewDealerActionEvent(roundID string, move DealerMove, card cards.Card, total int, at time.Time) DealerActionEvent {
	return DealerActionEvent{RoundID: roundID, Move: move, Card: card, Total: total, timestamp: at}
}

// RoundEndEvent is published once a round is settled or abandoned
type RoundEndEvent struct {
	RoundID     string
	Number      int
	Results     []HandResult
	DealerTotal int
	Summary     string
	Abandoned   bool
	timestamp   time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }
func (e RoundEndEvent) Round() string        { return e.RoundID }

// NewRoundEndEvent creates a new round end event
func NewRoundEndEvent(roundID string, number int, results []HandResult, dealerTotal int, summary string, abandoned bool, at time.Time) RoundEndEvent {
	out := make([]HandResult, len(results))
	copy(out, results)
	return RoundEndEvent{
		RoundID:     roundID,
		Number:      number,
		Results:     out,
		DealerTotal: dealerTotal,
		Summary:     summary,
		Abandoned:   abandoned,
		timestamp:   at,
	}
}

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventSubscriberFunc adapts a function to an EventSubscriber
type EventSubscriberFunc func(event GameEvent)

// OnEvent calls f(event)
func (f EventSubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a synchronous in-memory event bus. Subscribers run on
// the publishing goroutine and must not call back into the table.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events. Function
// subscribers cannot be compared and must be wrapped in a pointer type to
// be removable.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
