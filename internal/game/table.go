package game

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/cards"
	"github.com/lox/blackjack/internal/roundid"
)

// Table is the round engine: it owns the shoe, the dealer and the seated
// players and moves a round through betting, player turns, the dealer's
// turn and settlement. Every command runs to completion before returning
// and a Table is not safe for concurrent use.
type Table struct {
	rules   Rules
	rng     *rand.Rand
	shoe    *cards.Shoe
	factory ShoeFactory

	players []*Player
	dealer  Dealer

	phase   Phase
	current int // seat to bet in Betting, seat to act in PlayerTurn
	message string
	results []HandResult

	roundID string
	round   int

	startingTotal int
	houseNet      int // chips taken by the house less chips paid out

	manualDealer bool

	ids      *roundid.Generator
	clock    quartz.Clock
	eventBus EventBus
	logger   *log.Logger
}

// NewTable seats one player per name and opens betting on the first round.
// The RNG is required and drives every shuffle, so a seeded RNG replays
// the same shoes.
//
//	rng := randutil.New(42)
//	t, err := NewTable(rng, []string{"Alice", "Bob"},
//	    WithRules(DefaultRules()),
//	    WithLogger(logger))
func NewTable(rng *rand.Rand, names []string, opts ...TableOption) (*Table, error) {
	if rng == nil {
		panic("rng is required for table creation")
	}

	cfg := &tableConfig{rules: DefaultRules()}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.rules.Validate(); err != nil {
		return nil, err
	}
	if len(names) < 1 || len(names) > MaxSeats {
		return nil, fmt.Errorf("table seats 1 to %d players, got %d", MaxSeats, len(names))
	}
	if cfg.chipCounts != nil && len(cfg.chipCounts) != len(names) {
		return nil, fmt.Errorf("chip counts must match number of players: %d != %d", len(cfg.chipCounts), len(names))
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	if cfg.clock == nil {
		cfg.clock = quartz.NewReal()
	}
	if cfg.eventBus == nil {
		cfg.eventBus = NewEventBus()
	}
	if cfg.shoe == nil && cfg.shoeFactory == nil {
		cfg.shoeFactory = cards.NewShoe
	}

	t := &Table{
		rules:        cfg.rules,
		rng:          rng,
		shoe:         cfg.shoe,
		factory:      cfg.shoeFactory,
		manualDealer: cfg.manualDealer,
		ids:          roundid.NewGenerator(cfg.clock, rng),
		clock:        cfg.clock,
		eventBus:     cfg.eventBus,
		logger:       cfg.logger.WithPrefix("table"),
	}
	if t.shoe == nil {
		t.shoe = t.factory(rng, t.rules.Decks)
	}

	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("seat %d has no player name", i+1)
		}
		chips := cfg.rules.StartingChips
		if cfg.chipCounts != nil {
			chips = cfg.chipCounts[i]
		}
		if chips < 0 {
			return nil, fmt.Errorf("%s cannot start with negative chips", name)
		}
		t.players = append(t.players, NewPlayer(i, name, chips))
		t.startingTotal += chips
	}

	t.openBetting()
	t.logger.Debug("Table created", "players", len(names), "decks", t.shoe.Decks(), "shoe", t.shoe.Remaining())
	return t, nil
}

// Rules returns the table rules
func (t *Table) Rules() Rules { return t.rules }

// Phase returns the current phase of the round
func (t *Table) Phase() Phase { return t.phase }

// Message returns the last human-readable status message
func (t *Table) Message() string { return t.message }

// RoundID returns the ID of the round in progress or last played
func (t *Table) RoundID() string { return t.roundID }

// Bet places a wager for the seat whose turn it is to bet
func (t *Table) Bet(amount int) error {
	return t.PlaceBet(t.current, amount)
}

// PlaceBet accepts the opening wager for a seat. Seats bet in order,
// skipping players who cannot cover the minimum. Once every eligible seat
// has bet the cards are dealt.
func (t *Table) PlaceBet(seat, amount int) error {
	if err := t.checkPhase(ActionBet); err != nil {
		return t.reject(err)
	}
	if t.current < 0 {
		return t.reject(fmt.Errorf("%w: minimum bet is $%d", ErrNoActivePlayers, t.rules.MinBet))
	}
	if seat != t.current {
		return t.reject(fmt.Errorf("%w: waiting for %s to bet", ErrOutOfTurn, t.players[t.current].Name))
	}
	if err := t.rules.CheckBet(amount); err != nil {
		return t.reject(err)
	}

	p := t.players[seat]
	if amount > p.Chips {
		return t.reject(fmt.Errorf("%w: %s has $%d, cannot bet $%d", ErrInsufficientChips, p.Name, p.Chips, amount))
	}

	if !t.roundStarted() {
		t.startRound()
	}

	p.Hands = []*PlayerHand{{}}
	if err := p.PlaceBet(amount, 0); err != nil {
		panic(fmt.Sprintf("wager rejected after chip check: %v", err))
	}
	t.houseNet += amount
	t.publish(NewBetEvent(t.roundID, p, 0, BetWager, amount, t.clock.Now()))
	t.logger.Debug("Bet placed", "round", t.round, "player", p.Name, "amount", amount, "chips", p.Chips)

	t.current = t.nextBettor(seat + 1)
	if t.current >= 0 {
		t.message = fmt.Sprintf("%s bets $%d. %s to bet.", p.Name, amount, t.players[t.current].Name)
		return nil
	}

	t.deal()
	return nil
}

// Hit draws a card into the current hand. A bust ends the hand.
func (t *Table) Hit() error {
	if err := t.checkPhase(ActionHit); err != nil {
		return t.reject(err)
	}

	p, h := t.actor()
	c := t.draw(true)
	h.AddCard(c)

	if h.IsBust() {
		h.Status = HandBusted
		t.message = fmt.Sprintf("%s draws %s and busts with %d.", p.handLabel(p.Current), c, h.Total())
	} else {
		t.message = fmt.Sprintf("%s draws %s: %d.", p.handLabel(p.Current), c, h.Total())
	}
	t.publish(NewPlayerActionEvent(t.roundID, p, p.Current, ActionHit, []cards.Card{c}, t.clock.Now()))

	if h.Done() {
		t.advanceHand()
	}
	return nil
}

// Stand ends the current hand
func (t *Table) Stand() error {
	if err := t.checkPhase(ActionStand); err != nil {
		return t.reject(err)
	}

	p, h := t.actor()
	h.Status = HandStood
	t.message = fmt.Sprintf("%s stands on %d.", p.handLabel(p.Current), h.Total())
	t.publish(NewPlayerActionEvent(t.roundID, p, p.Current, ActionStand, nil, t.clock.Now()))

	t.advanceHand()
	return nil
}

// DoubleDown doubles the bet on a two-card hand, draws exactly one card
// and ends the hand.
func (t *Table) DoubleDown() error {
	if err := t.checkPhase(ActionDouble); err != nil {
		return t.reject(err)
	}

	p, h := t.actor()
	if h.Len() != 2 {
		return t.reject(fmt.Errorf("%w: only a two-card hand can be doubled", ErrIllegalDouble))
	}
	amount := h.Bet
	if err := p.PlaceBet(amount, p.Current); err != nil {
		return t.reject(err)
	}
	t.houseNet += amount
	h.Doubled = true
	t.publish(NewBetEvent(t.roundID, p, p.Current, BetDouble, amount, t.clock.Now()))

	c := t.draw(true)
	h.AddCard(c)
	if h.IsBust() {
		h.Status = HandBusted
		t.message = fmt.Sprintf("%s doubles to $%d, draws %s and busts with %d.", p.handLabel(p.Current), h.Bet, c, h.Total())
	} else {
		h.Status = HandDoubled
		t.message = fmt.Sprintf("%s doubles to $%d and draws %s: %d.", p.handLabel(p.Current), h.Bet, c, h.Total())
	}
	t.publish(NewPlayerActionEvent(t.roundID, p, p.Current, ActionDouble, []cards.Card{c}, t.clock.Now()))

	t.advanceHand()
	return nil
}

// Split divides the current pair into two hands, stakes the second with
// an equal bet and deals one card to each. Play continues on the first.
func (t *Table) Split() error {
	if err := t.checkPhase(ActionSplit); err != nil {
		return t.reject(err)
	}

	p, h := t.actor()
	if err := p.SplitHand(); err != nil {
		return t.reject(err)
	}
	added := len(p.Hands) - 1
	t.houseNet += h.Bet
	t.publish(NewBetEvent(t.roundID, p, added, BetSplit, h.Bet, t.clock.Now()))

	first := t.draw(true)
	h.AddCard(first)
	second := t.draw(true)
	p.Hands[added].AddCard(second)

	// Two cards totalling 21 after a split pay 3:2 and take no further action.
	for _, sh := range []*PlayerHand{h, p.Hands[added]} {
		if sh.IsBlackjack() {
			sh.Status = HandBlackjack
		}
	}

	t.message = fmt.Sprintf("%s splits: %s (%d) and %s (%d).",
		p.Name, h.String(), h.Total(), p.Hands[added].String(), p.Hands[added].Total())
	t.publish(NewPlayerActionEvent(t.roundID, p, p.Current, ActionSplit, []cards.Card{first, second}, t.clock.Now()))

	if h.Done() {
		t.advanceHand()
	}
	return nil
}

// Advance plays one step of the dealer's turn when the table was created
// WithManualDealer: a card is drawn while the dealer must hit, and the
// round is settled once the dealer stands or busts.
func (t *Table) Advance() error {
	if err := t.checkPhase(ActionAdvance); err != nil {
		return t.reject(err)
	}
	if t.dealerStep() {
		t.settle()
	}
	return nil
}

// NewRound clears the table for the next round of betting. Chip stacks
// carry over. Calling it mid-round abandons the round and refunds every
// unsettled bet. When no player can cover the minimum bet the table is
// still reset, and ErrNoActivePlayers is returned.
func (t *Table) NewRound() error {
	if t.phase != GameOver && t.roundStarted() {
		t.abandon()
	}

	for _, p := range t.players {
		p.clearHands()
	}
	t.dealer.clear()
	t.results = nil
	t.setPhase(Betting)
	t.openBetting()
	if t.current < 0 {
		return fmt.Errorf("%w: minimum bet is $%d", ErrNoActivePlayers, t.rules.MinBet)
	}
	return nil
}

// ValidateChipConservation checks that chips held by players plus the
// house's net take equals the chips the table started with.
func (t *Table) ValidateChipConservation() error {
	actual := t.houseNet
	for _, p := range t.players {
		actual += p.Chips
	}
	if actual != t.startingTotal {
		return fmt.Errorf("chip conservation violation: expected %d total chips, but found %d (difference: %d)",
			t.startingTotal, actual, actual-t.startingTotal)
	}
	return nil
}

// HouseNet returns the chips the house has won (negative if it has lost)
// across settled rounds, plus any bets currently on the table.
func (t *Table) HouseNet() int { return t.houseNet }

// LegalActions lists the commands that would currently be accepted
func (t *Table) LegalActions() []Action {
	var actions []Action
	switch t.phase {
	case Betting:
		if t.current >= 0 {
			actions = append(actions, ActionBet)
		}
	case PlayerTurn:
		p, h := t.actor()
		actions = append(actions, ActionHit, ActionStand)
		if h.Len() == 2 && p.Chips >= h.Bet {
			actions = append(actions, ActionDouble)
		}
		if h.IsPair() && p.Chips >= h.Bet {
			actions = append(actions, ActionSplit)
		}
	case DealerTurn:
		actions = append(actions, ActionAdvance)
	}
	return append(actions, ActionNewRound)
}

func (t *Table) checkPhase(a Action) error {
	if !a.allowedIn(t.phase) {
		return fmt.Errorf("%w: cannot %s during %s", ErrInvalidPhase, a, t.phase)
	}
	return nil
}

// reject records a rule violation as the table message
func (t *Table) reject(err error) error {
	t.message = err.Error()
	t.logger.Debug("Command rejected", "phase", t.phase, "error", err)
	return err
}

func (t *Table) setPhase(to Phase) {
	if !CanTransition(t.phase, to) {
		panic(fmt.Sprintf("invalid phase transition %s -> %s", t.phase, to))
	}
	t.phase = to
}

func (t *Table) publish(event GameEvent) {
	t.eventBus.Publish(event)
}

// actor returns the player and hand whose turn it is
func (t *Table) actor() (*Player, *PlayerHand) {
	p := t.players[t.current]
	return p, p.CurrentHand()
}

func (t *Table) roundStarted() bool {
	for _, p := range t.players {
		if p.InRound() {
			return true
		}
	}
	return false
}

// inRound returns the players with a stake in the round, in seat order
func (t *Table) inRound() []*Player {
	var out []*Player
	for _, p := range t.players {
		if p.InRound() {
			out = append(out, p)
		}
	}
	return out
}

// nextBettor returns the first seat at or after from that has not bet and
// can cover the minimum, or -1.
func (t *Table) nextBettor(from int) int {
	for i := from; i < len(t.players); i++ {
		p := t.players[i]
		if !p.InRound() && p.Chips >= t.rules.MinBet {
			return i
		}
	}
	return -1
}

func (t *Table) openBetting() {
	t.current = t.nextBettor(0)
	if t.current < 0 {
		t.message = fmt.Sprintf("No player can cover the $%d minimum bet.", t.rules.MinBet)
		return
	}
	t.message = fmt.Sprintf("Place your bets. %s to bet ($%d-$%d).", t.players[t.current].Name, t.rules.MinBet, t.rules.MaxBet)
}

func (t *Table) startRound() {
	t.round++
	t.roundID = t.ids.Generate()

	var names []string
	for i := t.current; i >= 0; i = t.nextBettor(i + 1) {
		names = append(names, t.players[i].Name)
	}
	t.publish(NewRoundStartEvent(t.roundID, t.round, names, t.clock.Now()))
	t.logger.Info("Round started", "round", t.round, "id", t.roundID, "players", len(names))
}

// draw takes the next card from the shoe. Running out mid-round means the
// reshuffle threshold is wrong, which is a programming error.
func (t *Table) draw(faceUp bool) cards.Card {
	c, err := t.shoe.Draw()
	if err != nil {
		if errors.Is(err, cards.ErrShoeExhausted) {
			panic(fmt.Sprintf("shoe exhausted during round %d", t.round))
		}
		panic(err)
	}
	return c.Flip(faceUp)
}

func (t *Table) reshuffleIfNeeded(hands int) {
	if t.factory == nil || t.shoe.Remaining() >= reshuffleThreshold(hands) {
		return
	}
	left := t.shoe.Remaining()
	t.shoe = t.factory(t.rng, t.rules.Decks)
	t.publish(NewShuffleEvent(t.roundID, t.shoe.Decks(), t.shoe.Remaining(), t.clock.Now()))
	t.logger.Info("Shoe reshuffled", "round", t.round, "remaining", left, "cards", t.shoe.Remaining())
}

// deal runs the opening deal: a card to each player, the dealer's up
// card, a second card to each player, then the dealer's hole card face
// down.
func (t *Table) deal() {
	players := t.inRound()
	t.reshuffleIfNeeded(len(players))

	for _, p := range players {
		p.Hands[0].AddCard(t.draw(true))
	}
	t.dealer.Hand.AddCard(t.draw(true))
	for _, p := range players {
		p.Hands[0].AddCard(t.draw(true))
	}
	t.dealer.Hand.AddCard(t.draw(false))

	for _, p := range players {
		if h := p.Hands[0]; h.IsBlackjack() {
			h.Status = HandBlackjack
			t.publish(NewPlayerActionEvent(t.roundID, p, 0, ActionStand, nil, t.clock.Now()))
		}
	}
	t.logger.Debug("Cards dealt", "round", t.round, "dealer_up", t.dealer.Hand.Card(0), "shoe", t.shoe.Remaining())

	if t.advancePlayer(0) {
		t.setPhase(PlayerTurn)
		return
	}
	t.startDealerTurn()
}

// advanceHand moves to the current player's next unplayed hand, dealing
// the second card to a freshly split hand, or on to the next player.
func (t *Table) advanceHand() {
	p := t.players[t.current]
	for i := p.Current + 1; i < len(p.Hands); i++ {
		h := p.Hands[i]
		if h.Done() {
			continue
		}
		p.Current = i
		if h.Len() == 1 {
			h.AddCard(t.draw(true))
			if h.IsBlackjack() {
				h.Status = HandBlackjack
				continue
			}
		}
		t.message = fmt.Sprintf("%s to act on %d.", p.handLabel(i), h.Total())
		return
	}

	if !t.advancePlayer(t.current + 1) {
		t.startDealerTurn()
	}
}

// advancePlayer finds the first seat at or after from with a hand still
// to play. Players whose hands are all finished, such as a dealt
// blackjack, are passed over.
func (t *Table) advancePlayer(from int) bool {
	for i := from; i < len(t.players); i++ {
		p := t.players[i]
		for j, h := range p.Hands {
			if h.Done() {
				continue
			}
			t.current = i
			p.Current = j
			t.message = fmt.Sprintf("%s's turn: %s (%d). Dealer shows %s.",
				p.Name, h.String(), h.Total(), t.dealer.Hand.Card(0))
			return true
		}
	}
	t.current = -1
	return false
}

// allResolved reports whether every player hand is already decided
// without the dealer drawing: busted or a blackjack.
func (t *Table) allResolved() bool {
	for _, p := range t.players {
		for _, h := range p.Hands {
			if h.Status != HandBusted && h.Status != HandBlackjack {
				return false
			}
		}
	}
	return true
}

func (t *Table) startDealerTurn() {
	t.setPhase(DealerTurn)
	t.current = -1

	t.dealer.Hand.reveal()
	hole := t.dealer.Hand.Card(1)
	t.publish(NewDealerActionEvent(t.roundID, DealerReveal, hole, t.dealer.Hand.Total(), t.clock.Now()))
	t.message = fmt.Sprintf("Dealer reveals %s: %d.", hole, t.dealer.Hand.Total())

	if t.manualDealer && !t.allResolved() {
		return
	}
	for !t.dealerStep() {
	}
	t.settle()
}

// dealerStep draws one card if the dealer must hit and reports whether
// the dealer is finished.
func (t *Table) dealerStep() bool {
	if t.allResolved() || !t.dealer.ShouldHit() {
		move := DealerStand
		if t.dealer.Hand.IsBust() {
			move = DealerBust
		}
		t.publish(NewDealerActionEvent(t.roundID, move, cards.Card{}, t.dealer.Hand.Total(), t.clock.Now()))
		return true
	}

	c := t.draw(true)
	t.dealer.Hand.AddCard(c)
	t.publish(NewDealerActionEvent(t.roundID, DealerDraw, c, t.dealer.Hand.Total(), t.clock.Now()))
	t.message = fmt.Sprintf("Dealer draws %s: %d.", c, t.dealer.Hand.Total())
	return false
}

func (t *Table) settle() {
	players := t.inRound()
	t.results = settlePlayers(players, &t.dealer.Hand)
	for _, r := range t.results {
		t.houseNet -= r.Payout
	}

	t.message = summarize("Round Over", players, t.results)
	t.setPhase(GameOver)
	t.publish(NewRoundEndEvent(t.roundID, t.round, t.results, t.dealer.Hand.Total(), t.message, false, t.clock.Now()))
	t.logger.Info("Round settled", "round", t.round, "dealer", t.dealer.Hand.Total(), "hands", len(t.results), "house_net", t.houseNet)

	if err := t.ValidateChipConservation(); err != nil {
		t.logger.Error("Chip conservation failed", "round", t.round, "error", err)
	}
}

// abandon refunds every bet of an unsettled round
func (t *Table) abandon() {
	players := t.inRound()
	var results []HandResult
	for _, p := range players {
		for i, h := range p.Hands {
			p.Chips += h.Bet
			t.houseNet -= h.Bet
			results = append(results, HandResult{
				Seat:      p.Seat,
				Player:    p.Name,
				HandIndex: i,
				Label:     p.handLabel(i),
				Cards:     h.Cards(),
				Total:     h.Total(),
				Bet:       h.Bet,
				Outcome:   OutcomeRefund,
				Payout:    h.Bet,
				Doubled:   h.Doubled,
				Split:     len(p.Hands) > 1,
			})
		}
	}

	summary := summarize("Round abandoned", players, results)
	t.publish(NewRoundEndEvent(t.roundID, t.round, results, t.dealer.Hand.visibleTotal(), summary, true, t.clock.Now()))
	t.logger.Warn("Round abandoned", "round", t.round, "phase", t.phase, "refunded", len(results))
}
