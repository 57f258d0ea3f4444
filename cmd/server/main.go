package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/patrol/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Version kong.VersionFlag
		Serve   commands.ServeCmd   `cmd:"" default:"withargs" help:"Start the patrol API server"`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply the PostgreSQL schema migrations"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("patrol-server"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
