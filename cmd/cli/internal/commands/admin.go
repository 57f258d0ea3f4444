package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/patrol/internal/routefile"
	"github.com/wolfeidau/patrol/internal/server"
)

type RouteCmd struct {
	Import RouteImportCmd `cmd:"" help:"Create a route from a YAML definition"`
}

type RouteImportCmd struct {
	ClientFlags `embed:""`

	File   string `arg:"" help:"Route definition file" type:"existingfile"`
	Tenant string `help:"Tenant that owns the route" required:""`
}

func (r *RouteImportCmd) Run(ctx context.Context, globals *Globals) error {
	tenantID, err := parseID("tenant", r.Tenant)
	if err != nil {
		return err
	}

	def, err := routefile.Load(r.File)
	if err != nil {
		return err
	}

	req := server.CreateRouteRequest{TenantID: tenantID, Name: def.Name}
	for _, cp := range def.Checkpoints {
		req.Checkpoints = append(req.Checkpoints, server.CheckpointRequest{Name: cp.Name, Code: cp.Code, Order: cp.Order})
	}

	route, err := r.client().CreateRoute(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}

	globals.printf("Route %s created with %d checkpoints\n", route.RouteID, len(route.Checkpoints))
	return nil
}

type FreezeCmd struct {
	ClientFlags `embed:""`

	Tenant string `arg:"" help:"Tenant ID"`
}

func (f *FreezeCmd) Run(ctx context.Context, globals *Globals) error {
	tenantID, err := parseID("tenant", f.Tenant)
	if err != nil {
		return err
	}

	tenant, err := f.client().FreezeTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to freeze tenant: %w", err)
	}

	globals.printf("Tenant %s frozen\n", tenant.Name)
	return nil
}

type UnfreezeCmd struct {
	ClientFlags `embed:""`

	Tenant string `arg:"" help:"Tenant ID"`
}

func (u *UnfreezeCmd) Run(ctx context.Context, globals *Globals) error {
	tenantID, err := parseID("tenant", u.Tenant)
	if err != nil {
		return err
	}

	tenant, err := u.client().UnfreezeTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to unfreeze tenant: %w", err)
	}

	globals.printf("Tenant %s active\n", tenant.Name)
	return nil
}
