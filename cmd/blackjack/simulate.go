package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/fileutil"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/simulator"
	"github.com/lox/blackjack/internal/statistics"
)

// SimulateCmd plays many headless sessions with a fixed policy
type SimulateCmd struct {
	Config   string `short:"c" default:"blackjack.hcl" help:"Path to HCL config file for table rules"`
	Sessions int    `default:"100" help:"Independent tables to play"`
	Rounds   int    `default:"1000" help:"Rounds per table"`
	Seats    int    `default:"1" help:"Players per table"`
	Seed     int64  `default:"0" help:"RNG seed (0 for random)"`
	Workers  int    `default:"0" help:"Tables played at once (0 = GOMAXPROCS)"`
	Out      string `short:"o" help:"Also write the results as JSON to this file"`
	Verbose  bool   `short:"V" help:"Verbose logging"`
}

// simulationReport is the JSON form of a simulation run
type simulationReport struct {
	Seed      int64                     `json:"seed"`
	Elapsed   string                    `json:"elapsed"`
	Hands     int                       `json:"hands"`
	Mean      float64                   `json:"mean_units"`
	StdError  float64                   `json:"std_error"`
	HouseEdge float64                   `json:"house_edge"`
	Wagered   int                       `json:"wagered"`
	HouseNet  int                       `json:"house_net"`
	Sessions  []simulator.SessionResult `json:"sessions"`
}

func (c *SimulateCmd) Run() error {
	cfg, err := config.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := "warn"
	if c.Verbose {
		level = "debug"
	}
	logger, _, err := setupLogger(level, "")
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = randutil.Seed(quartz.NewReal())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting simulation: %d sessions x %d rounds, %d seat(s) (seed: %d)\n",
		c.Sessions, c.Rounds, c.Seats, seed)

	start := time.Now()
	result, err := simulator.Run(ctx, simulator.Config{
		Sessions: c.Sessions,
		Rounds:   c.Rounds,
		Seats:    c.Seats,
		Seed:     seed,
		Rules:    cfg.Rules(),
		Workers:  c.Workers,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printSimulationResults(result, elapsed)

	if c.Out != "" {
		report := simulationReport{
			Seed:      seed,
			Elapsed:   elapsed.String(),
			Hands:     result.Stats.Hands,
			Mean:      result.Stats.Mean(),
			StdError:  result.Stats.StdError(),
			HouseEdge: result.Stats.HouseEdge(),
			Wagered:   result.Stats.Wagered,
			HouseNet:  result.HouseNet(),
			Sessions:  result.Sessions,
		}
		if err := fileutil.WriteJSON(c.Out, report); err != nil {
			return err
		}
		fmt.Printf("\nWrote %s\n", c.Out)
	}
	return nil
}

func printSimulationResults(result *simulator.Result, elapsed time.Duration) {
	st := result.Stats

	rounds, shuffles, stopped := 0, 0, 0
	for _, s := range result.Sessions {
		rounds += s.Rounds
		shuffles += s.Shuffles
		if s.Stopped {
			stopped++
		}
	}

	fmt.Printf("\n=== %d HANDS COMPLETED ===\n", st.Hands)
	if elapsed > 0 {
		fmt.Printf("Performance: %.0f rounds/sec\n", float64(rounds)/elapsed.Seconds())
	}
	fmt.Printf("Rounds: %d, shuffles: %d, sessions out of chips: %d\n", rounds, shuffles, stopped)
	if st.Hands == 0 {
		return
	}

	low, high := st.ConfidenceInterval95()
	fmt.Printf("Results: %.4f units/hand ± %.4f SE\n", st.Mean(), st.StdError())
	fmt.Printf("95%% CI: [%.4f, %.4f] units/hand\n", low, high)
	fmt.Printf("House edge: %.2f%% of chips wagered\n", st.HouseEdge()*100)
	fmt.Printf("Chips wagered: %d, player net: %+d, house net: %+d\n", st.Wagered, st.Net, result.HouseNet())

	fmt.Printf("\n=== OUTCOMES ===\n")
	printOutcome("Blackjacks", st.Blackjacks, st.Hands)
	printOutcome("Wins", st.Wins, st.Hands)
	printOutcome("Pushes", st.Pushes, st.Hands)
	printOutcome("Losses", st.Losses, st.Hands)
	printOutcome("Busts", st.Busts, st.Hands)
	printOutcome("Doubles", st.Doubles, st.Hands)
	printOutcome("Split hands", st.SplitHands, st.Hands)

	printSeats(st)
}

func printOutcome(label string, n, hands int) {
	fmt.Printf("  %-12s %8d (%5.2f%%)\n", label, n, 100*float64(n)/float64(hands))
}

func printSeats(st *statistics.Statistics) {
	fmt.Printf("\n=== BY SEAT ===\n")
	for i, seat := range st.SeatResults {
		if seat.Hands == 0 {
			continue
		}
		fmt.Printf("  Seat %d: %d hands, %.4f units/hand\n", i+1, seat.Hands, st.SeatMean(i))
	}
}
