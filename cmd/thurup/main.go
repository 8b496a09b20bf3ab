package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the game server"`
	Bots    BotsCmd          `cmd:"" help:"Connect bot players to a running game"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("thurup"),
		kong.Description("Server-authoritative 28/56 trick-taking card game"),
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
