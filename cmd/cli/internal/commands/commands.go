package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/wolfeidau/patrol/internal/client"
)

type Globals struct {
	Debug   bool
	Version string
	Out     io.Writer
}

func (g *Globals) printf(format string, args ...any) {
	fmt.Fprintf(g.Out, format, args...)
}

// ClientFlags configure access to the patrol API.
type ClientFlags struct {
	Server   string        `help:"Server URL" default:"http://localhost:8080" env:"PATROL_SERVER"`
	Token    string        `help:"Bearer token, see the login command" env:"PATROL_TOKEN"`
	Timeout  time.Duration `help:"Request timeout" default:"30s"`
	MaxTries uint          `help:"Attempts for requests the server asks to retry" default:"5"`
}

func (f *ClientFlags) client() *client.Client {
	cfg := client.DefaultConfig()
	cfg.ServerURL = f.Server
	cfg.Token = f.Token
	cfg.Timeout = f.Timeout
	cfg.MaxTries = f.MaxTries
	return client.New(cfg)
}

func parseID(name, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return id, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.DateTime)
}
