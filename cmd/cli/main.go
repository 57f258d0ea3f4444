package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/patrol/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Login      commands.LoginCmd      `cmd:"" help:"Exchange credentials for a token"`
		Whoami     commands.WhoamiCmd     `cmd:"" help:"Show the caller behind the token"`
		Token      commands.TokenCmd      `cmd:"" help:"Mint a token with the signing secret"`
		Assignment commands.AssignmentCmd `cmd:"" help:"Show the guard's route and run state"`
		Start      commands.StartCmd      `cmd:"" help:"Start a route run"`
		Scan       commands.ScanCmd       `cmd:"" help:"Record a checkpoint scan"`
		EndShift   commands.EndShiftCmd   `cmd:"" help:"Close the active run"`
		Report     commands.ReportCmd     `cmd:"" help:"Show a guard's daily report"`
		Route      commands.RouteCmd      `cmd:"" help:"Manage routes"`
		Freeze     commands.FreezeCmd     `cmd:"" help:"Freeze a tenant"`
		Unfreeze   commands.UnfreezeCmd   `cmd:"" help:"Unfreeze a tenant"`
		Debug      bool                   `help:"Enable debug mode."`
		Version    kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("patrol"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Out: os.Stdout})
	cmd.FatalIfErrorf(err)
}
