package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/observe"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd runs an interactive table
type PlayCmd struct {
	Config       string   `short:"c" default:"blackjack.hcl" help:"Path to HCL config file (defaults apply if missing)"`
	Players      []string `short:"p" help:"Seated player names, overriding the config"`
	Seed         *int64   `help:"Deterministic RNG seed (optional)"`
	LogLevel     string   `help:"Log level, overriding the config"`
	LogFile      string   `help:"Log file, overriding the config"`
	Observe      string   `help:"Serve a read-only websocket feed on this address"`
	ManualDealer bool     `help:"Step through the dealer's turn one card at a time"`
	NoColor      bool     `help:"Disable colours"`
}

func (c *PlayCmd) Run() error {
	cfg, err := config.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	c.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closer, err := setupLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	if c.NoColor {
		tui.DisableColor()
	}

	clock := quartz.NewReal()
	seed := randutil.Seed(clock)
	if c.Seed != nil {
		seed = *c.Seed
	}
	logger.Info("Starting table", "seed", seed, "players", cfg.PlayerNames(), "config", c.Config)

	bus := game.NewEventBus()
	recorder := history.NewRecorder(0)
	collector := statistics.NewCollector()
	bus.Subscribe(recorder)
	bus.Subscribe(collector)
	bus.Subscribe(eventLogger(logger))

	opts := append(cfg.TableOptions(),
		game.WithEventBus(bus),
		game.WithLogger(logger),
		game.WithClock(clock))
	table, err := game.NewTable(randutil.New(seed), cfg.PlayerNames(), opts...)
	if err != nil {
		return err
	}

	model := tui.NewTUIModel(table, logger)
	bus.Subscribe(model)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	if addr := cfg.Observer.Address; addr != "" {
		hub := observe.NewHub(
			observe.WithSnapshots(table.Snapshot),
			observe.WithHistory(recorder),
			observe.WithClock(clock),
			observe.WithLogger(logger))
		bus.Subscribe(hub)
		g.Go(func() error { return hub.Serve(ctx, addr) })
	}
	g.Go(func() error {
		// Leaving the table stops the observer too
		defer cancel()
		return tui.Run(ctx, model)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	printSessionSummary(table, collector)
	return nil
}

func (c *PlayCmd) applyOverrides(cfg *config.Config) {
	if len(c.Players) > 0 {
		cfg.SetPlayers(c.Players)
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.Log.File = c.LogFile
	}
	if c.Observe != "" {
		cfg.Observer.Address = c.Observe
	}
	if c.ManualDealer {
		cfg.Table.ManualDealer = true
	}
}

// eventLogger writes every table event to the log with its round ID
func eventLogger(logger *log.Logger) game.EventSubscriber {
	formatter := game.NewEventFormatter(game.FormattingOptions{ShowRoundIDs: true, ShowChips: true})
	events := logger.WithPrefix("events")
	return game.EventSubscriberFunc(func(event game.GameEvent) {
		events.Debug(formatter.Format(event), "type", event.EventType())
	})
}

func printSessionSummary(table *game.Table, collector *statistics.Collector) {
	snap := table.Snapshot()
	fmt.Printf("Rounds played: %d\n", collector.Rounds())
	for _, p := range snap.Players {
		line := fmt.Sprintf("%s: $%d", p.Name, p.Chips)
		if st := collector.Player(p.Name); st != nil && st.Hands > 0 {
			line += fmt.Sprintf(" (%d hands, net %+d, %d blackjacks)", st.Hands, st.Net, st.Blackjacks)
		}
		fmt.Println(line)
	}
}
