package main

import (
	"fmt"

	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"withargs" help:"Play at a local table in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Auto-play many sessions and report house edge"`
	Ver      VersionCmd       `cmd:"" name:"version" help:"Print the version"`
}

// VersionCmd prints the build version
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println("blackjack", version)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Turn-based blackjack for the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
