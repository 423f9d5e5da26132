// Package game implements the blackjack round engine.
//
// The main type is Table, which owns the shoe, the dealer and up to six
// seated players, and moves each round through BETTING, PLAYER_TURN,
// DEALER_TURN and GAME_OVER. Chip stacks persist from round to round.
//
// # Basic Usage
//
//	t, err := game.NewTable(randutil.New(42), []string{"Alice", "Bob"})
//	if err != nil {
//	    return err
//	}
//	_ = t.Bet(50)  // Alice
//	_ = t.Bet(20)  // Bob; cards are dealt
//	_ = t.Hit()    // Alice's hand
//	_ = t.Stand()
//	_ = t.Stand()  // Bob; the dealer plays and the round settles
//	fmt.Println(t.Snapshot().Message)
//	_ = t.NewRound()
//
// Commands return nil on success. Rule violations such as betting more
// than a stack, hitting during BETTING or splitting a non-pair return an
// error wrapping one of the Err* sentinels, leave the table unchanged and
// set Message to the reason.
//
// # Deterministic Testing
//
// The RNG passed to NewTable drives every shuffle. For full control over
// the cards, deal from a stacked shoe:
//
//	shoe := cards.NewStackedShoe(cards.MustParseCards("As", "9h", "Kd", "7c")...)
//	t, _ := game.NewTable(rng, []string{"Alice"}, game.WithShoe(shoe))
//
// # Architecture
//
// Table delegates to smaller pieces:
//   - Hand: cards with an incrementally maintained, ace-adjusted total
//   - Player and PlayerHand: stacks, bets and split hands
//   - Settle: resolves one hand against the dealer
//   - EventBus: publishes round events to statistics, history and observers
package game
