package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/cards"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Sessions int   // Independent tables to play
	Rounds   int   // Rounds per table
	Seats    int   // Players per table
	Seed     int64 // Session i is seeded with Seed+i
	Rules    game.Rules
	Workers  int // Sessions played at once; 0 means GOMAXPROCS
	Logger   *log.Logger
}

// SessionResult summarizes one simulated table
type SessionResult struct {
	Seed       int64 `json:"seed"`
	Rounds     int   `json:"rounds"` // Rounds actually settled
	Shuffles   int   `json:"shuffles"`
	HouseNet   int   `json:"house_net"`
	FinalChips []int `json:"final_chips"`
	Stopped    bool  `json:"stopped"` // Ended early because no seat could cover the minimum
}

// Result is the outcome of a simulation run
type Result struct {
	Stats    *statistics.Statistics
	Sessions []SessionResult
}

// HouseNet returns the house's take across every session
func (r *Result) HouseNet() int {
	total := 0
	for _, s := range r.Sessions {
		total += s.HouseNet
	}
	return total
}

// Simulator plays blackjack sessions headlessly with a fixed policy
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Seats <= 0 {
		config.Seats = 1
	}
	return &Simulator{config: config}
}

// Run plays the configured sessions
func Run(ctx context.Context, config Config) (*Result, error) {
	return New(config).Run(ctx)
}

// Run plays every session, spreading them across workers, and merges the
// statistics in session order.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.Sessions <= 0 || s.config.Rounds <= 0 {
		return nil, fmt.Errorf("sessions and rounds must be positive, got %d and %d", s.config.Sessions, s.config.Rounds)
	}
	if s.config.Seats > game.MaxSeats {
		return nil, fmt.Errorf("at most %d seats, got %d", game.MaxSeats, s.config.Seats)
	}
	if err := s.config.Rules.Validate(); err != nil {
		return nil, err
	}

	sessions := make([]SessionResult, s.config.Sessions)
	stats := make([]*statistics.Statistics, s.config.Sessions)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := 0; i < s.config.Sessions; i++ {
		seed := s.config.Seed + int64(i)
		g.Go(func() error {
			res, st, err := s.playSession(ctx, seed)
			if err != nil {
				return fmt.Errorf("session %d (seed %d): %w", i, seed, err)
			}
			sessions[i] = res
			stats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &statistics.Statistics{}
	for _, st := range stats {
		total.Merge(st)
	}
	if total.Hands > 0 {
		if err := total.Validate(); err != nil {
			return nil, fmt.Errorf("statistics validation failed: %w", err)
		}
	}

	s.config.Logger.Info("Simulation complete",
		"sessions", s.config.Sessions, "hands", total.Hands, "house_edge", fmt.Sprintf("%.4f", total.HouseEdge()))
	return &Result{Stats: total, Sessions: sessions}, nil
}

// playSession plays one table until its rounds are done or nobody can bet
func (s *Simulator) playSession(ctx context.Context, seed int64) (SessionResult, *statistics.Statistics, error) {
	names := make([]string, s.config.Seats)
	for i := range names {
		names[i] = fmt.Sprintf("Seat %d", i+1)
	}

	bus := game.NewEventBus()
	collector := statistics.NewCollector()
	bus.Subscribe(collector)

	logger := s.config.Logger.With("seed", seed)
	table, err := game.NewTable(randutil.New(seed), names,
		game.WithRules(s.config.Rules),
		game.WithEventBus(bus),
		game.WithLogger(logger))
	if err != nil {
		return SessionResult{}, nil, err
	}

	res := SessionResult{Seed: seed}
	for round := 0; round < s.config.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return SessionResult{}, nil, err
		}

		ok, err := playRound(table)
		if err != nil {
			return SessionResult{}, nil, fmt.Errorf("round %d: %w", round+1, err)
		}
		if !ok {
			res.Stopped = true
			logger.Debug("No seat can cover the minimum bet", "round", round+1)
			break
		}
		if err := table.ValidateChipConservation(); err != nil {
			return SessionResult{}, nil, err
		}
		if err := table.NewRound(); err != nil {
			if !errors.Is(err, game.ErrNoActivePlayers) {
				return SessionResult{}, nil, err
			}
			res.Stopped = true
			logger.Debug("No seat can cover the minimum bet", "round", round+1)
			break
		}
	}

	res.Rounds = collector.Rounds()
	res.Shuffles = collector.Shuffles()
	res.HouseNet = table.HouseNet()
	for _, p := range table.Snapshot().Players {
		res.FinalChips = append(res.FinalChips, p.Chips)
	}
	return res, collector.Overall(), nil
}

// playRound bets the minimum for every eligible seat and plays each hand
// with Decide. It returns false if nobody could bet.
func playRound(table *game.Table) (bool, error) {
	minBet := table.Rules().MinBet
	for table.Phase() == game.Betting {
		if err := table.Bet(minBet); err != nil {
			if errors.Is(err, game.ErrNoActivePlayers) {
				return false, nil
			}
			return false, err
		}
	}

	for table.Phase() == game.PlayerTurn {
		snap := table.Snapshot()
		hand := snap.Players[snap.CurrentPlayer].Hands[snap.CurrentHand]
		action := Decide(hand, snap.LegalActions)

		var err error
		switch action {
		case game.ActionSplit:
			err = table.Split()
		case game.ActionDouble:
			err = table.DoubleDown()
		case game.ActionHit:
			err = table.Hit()
		default:
			err = table.Stand()
		}
		if err != nil {
			return false, fmt.Errorf("%s rejected: %w", action, err)
		}
	}

	for table.Phase() == game.DealerTurn {
		if err := table.Advance(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Decide is the house-mimic policy: split aces and eights, double a hard
// 10 or 11, otherwise draw to 17 like the dealer.
func Decide(hand game.HandView, legal []game.Action) game.Action {
	can := func(a game.Action) bool {
		for _, l := range legal {
			if l == a {
				return true
			}
		}
		return false
	}

	if can(game.ActionSplit) && len(hand.Cards) == 2 {
		if r := hand.Cards[0].Rank; r == cards.Ace || r == cards.Eight {
			return game.ActionSplit
		}
	}
	if can(game.ActionDouble) && !hand.Soft && (hand.Total == 10 || hand.Total == 11) {
		return game.ActionDouble
	}
	if hand.Total < game.DealerStandsOn {
		return game.ActionHit
	}
	return game.ActionStand
}
