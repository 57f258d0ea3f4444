package commands

import (
	"context"
	"fmt"
)

type LoginCmd struct {
	ClientFlags `embed:""`

	Username string `help:"Account username" required:""`
	Password string `help:"Account password" required:"" env:"PATROL_PASSWORD"`
}

// Run prints the issued token so it can be exported as PATROL_TOKEN.
func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	resp, err := l.client().Token(ctx, l.Username, l.Password)
	if err != nil {
		return fmt.Errorf("failed to login: %w", err)
	}

	globals.printf("%s\n", resp.Token)
	return nil
}

type WhoamiCmd struct {
	ClientFlags `embed:""`
}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	resp, err := w.client().CheckRole(ctx)
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}

	globals.printf("Account: %s (%s)\n", resp.Username, resp.AccountID)
	globals.printf("Role:    %s\n", resp.Role)
	if resp.TenantID != nil {
		globals.printf("Tenant:  %s\n", resp.TenantID)
	}
	return nil
}
