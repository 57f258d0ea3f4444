package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfeidau/patrol/internal/auth"
	"github.com/wolfeidau/patrol/internal/models"
)

// TokenCmd mints a token offline with the server's signing secret.
type TokenCmd struct {
	Account string        `help:"Account ID" required:""`
	Role    string        `help:"Role of the account" required:"" enum:"superadmin,admin,client,guard"`
	Tenant  string        `help:"Tenant ID, required for tenant scoped roles"`
	TTL     time.Duration `help:"Token lifetime" default:"1h"`
	Secret  string        `help:"Token signing secret" required:"" env:"PATROL_TOKEN_SECRET"`
}

func (t *TokenCmd) Run(ctx context.Context, globals *Globals) error {
	accountID, err := parseID("account", t.Account)
	if err != nil {
		return err
	}

	kind, err := models.ParseRoleKind(t.Role)
	if err != nil {
		return err
	}

	role := models.Role{Kind: kind}
	if role.Scoped() {
		if t.Tenant == "" {
			return fmt.Errorf("--tenant is required for %s tokens", t.Role)
		}
		role.TenantID, err = parseID("tenant", t.Tenant)
		if err != nil {
			return err
		}
	}

	issuer, err := auth.NewTokenIssuer(t.Secret, t.TTL)
	if err != nil {
		return err
	}

	token, _, err := issuer.Issue(models.Caller{AccountID: accountID, Role: role})
	if err != nil {
		return err
	}

	globals.printf("%s\n", token)
	return nil
}
