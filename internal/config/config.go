// Package config loads blackjack session configuration from HCL files.
//
//	table {
//	  decks          = 6
//	  starting_chips = 1000
//	  min_bet        = 10
//	  max_bet        = 500
//	  bet_increment  = 10
//	}
//
//	player "Alice" {}
//	player "Bob" { chips = 500 }
//
//	log {
//	  level = "debug"
//	  file  = "blackjack.log"
//	}
//
//	observer {
//	  address = "localhost:8181"
//	}
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjack/internal/game"
)

const (
	DefaultLogLevel = "info"
	DefaultLogFile  = "blackjack.log"
	DefaultPlayer   = "Player"
)

// Config represents a complete session configuration
type Config struct {
	Table    *TableSettings    `hcl:"table,block"`
	Players  []PlayerConfig    `hcl:"player,block"`
	Log      *LogSettings      `hcl:"log,block"`
	Observer *ObserverSettings `hcl:"observer,block"`
}

// TableSettings contains the table rules
type TableSettings struct {
	Decks         int  `hcl:"decks,optional"`
	StartingChips int  `hcl:"starting_chips,optional"`
	MinBet        int  `hcl:"min_bet,optional"`
	MaxBet        int  `hcl:"max_bet,optional"`
	BetIncrement  int  `hcl:"bet_increment,optional"`
	ManualDealer  bool `hcl:"manual_dealer,optional"`
}

// PlayerConfig seats a player, optionally with their own stack
type PlayerConfig struct {
	Name  string `hcl:"name,label"`
	Chips *int   `hcl:"chips,optional"`
}

// LogSettings controls where logs go and how much is written
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// ObserverSettings enables the read-only websocket feed
type ObserverSettings struct {
	Address string `hcl:"address,optional"`
}

// DefaultConfig returns a single-seat table with the default rules
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults.
func LoadConfig(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(src, filename)
}

// ParseConfig decodes HCL source and fills in defaults for omitted values
func ParseConfig(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := game.DefaultRules()
	if c.Table == nil {
		c.Table = &TableSettings{}
	}
	if c.Table.Decks == 0 {
		c.Table.Decks = defaults.Decks
	}
	if c.Table.StartingChips == 0 {
		c.Table.StartingChips = defaults.StartingChips
	}
	if c.Table.MinBet == 0 {
		c.Table.MinBet = defaults.MinBet
	}
	if c.Table.MaxBet == 0 {
		c.Table.MaxBet = defaults.MaxBet
	}
	if c.Table.BetIncrement == 0 {
		c.Table.BetIncrement = defaults.BetIncrement
	}

	if len(c.Players) == 0 {
		c.Players = []PlayerConfig{{Name: DefaultPlayer}}
	}

	if c.Log == nil {
		c.Log = &LogSettings{}
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}

	if c.Observer == nil {
		c.Observer = &ObserverSettings{}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Rules().Validate(); err != nil {
		return err
	}
	if len(c.Players) > game.MaxSeats {
		return fmt.Errorf("at most %d players can be seated, got %d", game.MaxSeats, len(c.Players))
	}

	seen := make(map[string]bool)
	for _, p := range c.Players {
		if p.Name == "" {
			return fmt.Errorf("player name cannot be empty")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate player name: %s", p.Name)
		}
		seen[p.Name] = true
		if p.Chips != nil && *p.Chips < 0 {
			return fmt.Errorf("player %s: chips cannot be negative", p.Name)
		}
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return nil
}

// Rules converts the table settings to engine rules
func (c *Config) Rules() game.Rules {
	return game.Rules{
		Decks:         c.Table.Decks,
		StartingChips: c.Table.StartingChips,
		MinBet:        c.Table.MinBet,
		MaxBet:        c.Table.MaxBet,
		BetIncrement:  c.Table.BetIncrement,
	}
}

// PlayerNames returns the seated players in seat order
func (c *Config) PlayerNames() []string {
	names := make([]string, len(c.Players))
	for i, p := range c.Players {
		names[i] = p.Name
	}
	return names
}

// Chips returns each seat's starting stack
func (c *Config) Chips() []int {
	chips := make([]int, len(c.Players))
	for i, p := range c.Players {
		chips[i] = c.Table.StartingChips
		if p.Chips != nil {
			chips[i] = *p.Chips
		}
	}
	return chips
}

// SetPlayers replaces the seated players, keeping any per-player stacks
// for names that were already configured.
func (c *Config) SetPlayers(names []string) {
	existing := make(map[string]*int)
	for _, p := range c.Players {
		existing[p.Name] = p.Chips
	}
	players := make([]PlayerConfig, len(names))
	for i, n := range names {
		players[i] = PlayerConfig{Name: n, Chips: existing[n]}
	}
	c.Players = players
}

// TableOptions returns the engine options these settings imply
func (c *Config) TableOptions() []game.TableOption {
	return []game.TableOption{
		game.WithRules(c.Rules()),
		game.WithChips(c.Chips()),
		game.WithManualDealer(c.Table.ManualDealer),
	}
}
