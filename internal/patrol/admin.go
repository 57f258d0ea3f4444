package patrol

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// AccountInput describes a new account.
type AccountInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string

	// TenantID selects the tenant when a superadmin creates the account. Tenant scoped
	// callers always create accounts in their own tenant.
	TenantID *uuid.UUID
}

// AccountUpdate changes the mutable fields of an account. Nil fields are left alone.
type AccountUpdate struct {
	Username  *string
	Password  *string
	FirstName *string
	LastName  *string
}

// TenantInput describes a new tenant and its client login.
type TenantInput struct {
	Name   string
	Client AccountInput
}

// CheckpointInput describes one checkpoint of a new route.
type CheckpointInput struct {
	Name  string
	Code  string
	Order int
}

// RouteInput describes a new route.
type RouteInput struct {
	TenantID    uuid.UUID
	Name        string
	Checkpoints []CheckpointInput
}

// Login checks a username and password and returns the caller identity to sign.
// Unknown usernames and wrong passwords are indistinguishable.
func (s *Service) Login(ctx context.Context, username, password string) (models.Caller, error) {
	var caller models.Caller
	err := s.store.InReadTx(ctx, func(ctx context.Context, tx store.Tx) error {
		account, err := tx.GetAccountByUsername(ctx, username)
		if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
			return translate(err)
		}

		if account == nil || !checkPassword(password, account.PasswordHash) {
			return newError(KindDenied, "invalid credentials")
		}

		caller = models.CallerFor(account)

		// Frozen tenants can't obtain new credentials either
		return Authorize(ctx, tx, caller, CapRoleCheck, nil)
	})
	if err != nil {
		return models.Caller{}, translate(err)
	}

	zerolog.Ctx(ctx).Info().
		Str("account_id", caller.AccountID.String()).
		Str("role", string(caller.Role.Kind)).
		Msg("Login succeeded")

	return caller, nil
}

// SeedSuperadmin creates the superadmin account unless the username is taken.
// Returns true when the account was created.
func (s *Service) SeedSuperadmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, newError(KindInvalid, "username and password are required")
	}

	hash, err := hashPassword(password, s.passwordCost)
	if err != nil {
		return false, translate(err)
	}

	created := false
	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.GetAccountByUsername(ctx, username)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrAccountNotFound) {
			return translate(err)
		}

		now := s.now()
		created = true
		return translate(tx.CreateAccount(ctx, &models.Account{
			AccountID:    uuid.Must(uuid.NewV7()),
			Username:     username,
			PasswordHash: hash,
			IsSuperadmin: true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}))
	})
	if err != nil {
		return false, translate(err)
	}

	return created, nil
}

// CreateTenant creates a tenant together with its client login.
func (s *Service) CreateTenant(ctx context.Context, caller models.Caller, in TenantInput) (*models.Tenant, *models.Account, error) {
	ctx, span := s.start(ctx, "CreateTenant", caller)
	defer span.End()

	if strings.TrimSpace(in.Name) == "" {
		return nil, nil, s.fail(ctx, span, newError(KindInvalid, "tenant name is required"))
	}

	now := s.now()
	tenant := &models.Tenant{
		TenantID:  uuid.Must(uuid.NewV7()),
		Name:      in.Name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	client, err := s.newAccount(in.Client, tenant.TenantID, now)
	if err != nil {
		return nil, nil, s.fail(ctx, span, err)
	}
	client.IsClient = true

	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapTenantsManage, nil); err != nil {
			return err
		}
		if err := tx.CreateTenant(ctx, tenant); err != nil {
			return translate(err)
		}
		return translate(tx.CreateAccount(ctx, client))
	})
	if err != nil {
		return nil, nil, s.fail(ctx, span, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("tenant_id", tenant.TenantID.String()).
		Str("client", client.Username).
		Msg("Tenant created")

	return tenant, client, nil
}

// GetTenant returns a tenant.
func (s *Service) GetTenant(ctx context.Context, caller models.Caller, tenantID uuid.UUID) (*models.Tenant, error) {
	ctx, span := s.start(ctx, "GetTenant", caller)
	defer span.End()

	var tenant *models.Tenant
	err := s.store.InReadTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapTenantsManage, &tenantID); err != nil {
			return err
		}

		var err error
		tenant, err = tx.GetTenant(ctx, tenantID)
		return translate(err)
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	return tenant, nil
}

// UpdateTenant renames a tenant.
func (s *Service) UpdateTenant(ctx context.Context, caller models.Caller, tenantID uuid.UUID, name string) (*models.Tenant, error) {
	ctx, span := s.start(ctx, "UpdateTenant", caller)
	defer span.End()

	if strings.TrimSpace(name) == "" {
		return nil, s.fail(ctx, span, newError(KindInvalid, "tenant name is required"))
	}

	var tenant *models.Tenant
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapTenantsManage, &tenantID); err != nil {
			return err
		}

		var err error
		if tenant, err = tx.GetTenant(ctx, tenantID); err != nil {
			return translate(err)
		}

		tenant.Name = name
		return translate(tx.UpdateTenant(ctx, tenant))
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	return tenant, nil
}

// DeleteTenant deletes a tenant with its routes, accounts and all patrol history.
func (s *Service) DeleteTenant(ctx context.Context, caller models.Caller, tenantID uuid.UUID) error {
	ctx, span := s.start(ctx, "DeleteTenant", caller)
	defer span.End()

	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapTenantsManage, &tenantID); err != nil {
			return err
		}
		return translate(tx.DeleteTenant(ctx, tenantID))
	})
	if err != nil {
		return s.fail(ctx, span, err)
	}

	zerolog.Ctx(ctx).Info().Str("tenant_id", tenantID.String()).Msg("Tenant deleted")
	return nil
}

// ListTenants returns all tenants.
func (s *Service) ListTenants(ctx context.Context, caller models.Caller) ([]*models.Tenant, error) {
	ctx, span := s.start(ctx, "ListTenants", caller)
	defer span.End()

	var tenants []*models.Tenant
	err := s.store.InReadTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapTenantsManage, nil); err != nil {
			return err
		}

		var err error
		tenants, err = tx.ListTenants(ctx)
		return translate(err)
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	return tenants, nil
}

// CreateRoute creates a route whose checkpoint orders form the dense sequence 1..N.
func (s *Service) CreateRoute(ctx context.Context, caller models.Caller, in RouteInput) (*models.Route, error) {
	ctx, span := s.start(ctx, "CreateRoute", caller)
	defer span.End()

	if strings.TrimSpace(in.Name) == "" {
		return nil, s.fail(ctx, span, newError(KindInvalid, "route name is required"))
	}

	route := &models.Route{
		RouteID:   uuid.Must(uuid.NewV7()),
		TenantID:  in.TenantID,
		Name:      in.Name,
		CreatedAt: s.now(),
	}
	for _, cp := range in.Checkpoints {
		route.Checkpoints = append(route.Checkpoints, models.Checkpoint{
			CheckpointID: uuid.Must(uuid.NewV7()),
			RouteID:      route.RouteID,
			Name:         cp.Name,
			Code:         cp.Code,
			Order:        cp.Order,
		})
	}

	if err := ValidateCheckpoints(route.Checkpoints); err != nil {
		return nil, s.fail(ctx, span, err)
	}

	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapRoutesCreate, &in.TenantID); err != nil {
			return err
		}
		return translate(tx.CreateRoute(ctx, route))
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	// Callers see checkpoints in patrol order
	slices.SortFunc(route.Checkpoints, func(a, b models.Checkpoint) int {
		return cmp.Compare(a.Order, b.Order)
	})

	zerolog.Ctx(ctx).Info().
		Str("route_id", route.RouteID.String()).
		Str("tenant_id", route.TenantID.String()).
		Int("checkpoints", len(route.Checkpoints)).
		Msg("Route created")

	return route, nil
}

// ListRoutes returns the routes visible to the caller: all routes for superadmins,
// the caller's tenant otherwise.
func (s *Service) ListRoutes(ctx context.Context, caller models.Caller) ([]*models.Route, error) {
	ctx, span := s.start(ctx, "ListRoutes", caller)
	defer span.End()

	var routes []*models.Route
	err := s.store.InReadTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapRoutesList, nil); err != nil {
			return err
		}

		var err error
		routes, err = tx.ListRoutes(ctx, scopeOf(caller))
		return translate(err)
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	return routes, nil
}

// CreateGuard creates a guard account in the caller's tenant.
func (s *Service) CreateGuard(ctx context.Context, caller models.Caller, in AccountInput) (*models.Account, error) {
	return s.createAccount(ctx, caller, in, CapGuardsManage, models.RoleGuard)
}

// UpdateGuard changes a guard's names, username or password.
func (s *Service) UpdateGuard(ctx context.Context, caller models.Caller, guardID uuid.UUID, in AccountUpdate) (*models.Account, error) {
	return s.updateAccount(ctx, caller, guardID, in, CapGuardsUpdate, models.RoleGuard)
}

// DeleteGuard deletes a guard with its assignment and patrol history.
func (s *Service) DeleteGuard(ctx context.Context, caller models.Caller, guardID uuid.UUID) error {
	return s.deleteAccount(ctx, caller, guardID, CapGuardsManage, models.RoleGuard)
}

// ListGuards returns guards. Superadmins see every tenant unless tenantID is set,
// scoped callers always see their own tenant.
func (s *Service) ListGuards(ctx context.Context, caller models.Caller, tenantID *uuid.UUID) ([]*models.Account, error) {
	return s.listAccounts(ctx, caller, tenantID, CapGuardsUpdate, models.RoleGuard)
}

// CreateAdmin creates a tenant admin. Superadmins pick the tenant with in.TenantID.
func (s *Service) CreateAdmin(ctx context.Context, caller models.Caller, in AccountInput) (*models.Account, error) {
	return s.createAccount(ctx, caller, in, CapAdminsManage, models.RoleAdmin)
}

// UpdateAdmin changes an admin's names, username or password.
func (s *Service) UpdateAdmin(ctx context.Context, caller models.Caller, adminID uuid.UUID, in AccountUpdate) (*models.Account, error) {
	return s.updateAccount(ctx, caller, adminID, in, CapAdminsManage, models.RoleAdmin)
}

// DeleteAdmin deletes an admin account.
func (s *Service) DeleteAdmin(ctx context.Context, caller models.Caller, adminID uuid.UUID) error {
	return s.deleteAccount(ctx, caller, adminID, CapAdminsManage, models.RoleAdmin)
}

// ListAdmins returns admins, scoped like ListGuards.
func (s *Service) ListAdmins(ctx context.Context, caller models.Caller, tenantID *uuid.UUID) ([]*models.Account, error) {
	return s.listAccounts(ctx, caller, tenantID, CapAdminsManage, models.RoleAdmin)
}

func (s *Service) createAccount(ctx context.Context, caller models.Caller, in AccountInput, capability Capability, kind models.RoleKind) (*models.Account, error) {
	ctx, span := s.start(ctx, "CreateAccount", caller)
	defer span.End()
	span.SetAttributes(attribute.String("account.role", string(kind)))

	tenantID := caller.Role.TenantID
	if !caller.Role.Scoped() {
		if in.TenantID == nil {
			return nil, s.fail(ctx, span, newError(KindInvalid, "tenant is required"))
		}
		tenantID = *in.TenantID
	}

	account, err := s.newAccount(in, tenantID, s.now())
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}
	account.IsAdmin = kind == models.RoleAdmin

	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, capability, &tenantID); err != nil {
			return err
		}
		return translate(tx.CreateAccount(ctx, account))
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("account_id", account.AccountID.String()).
		Str("role", string(kind)).
		Str("tenant_id", tenantID.String()).
		Msg("Account created")

	return account, nil
}

func (s *Service) updateAccount(ctx context.Context, caller models.Caller, accountID uuid.UUID, in AccountUpdate, capability Capability, kind models.RoleKind) (*models.Account, error) {
	ctx, span := s.start(ctx, "UpdateAccount", caller)
	defer span.End()

	var hash *string
	if in.Password != nil {
		if *in.Password == "" {
			return nil, s.fail(ctx, span, newError(KindInvalid, "password can't be empty"))
		}
		h, err := hashPassword(*in.Password, s.passwordCost)
		if err != nil {
			return nil, s.fail(ctx, span, err)
		}
		hash = &h
	}
	if in.Username != nil && strings.TrimSpace(*in.Username) == "" {
		return nil, s.fail(ctx, span, newError(KindInvalid, "username can't be empty"))
	}

	var account *models.Account
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		account, err = authorizeAccountTarget(ctx, tx, caller, capability, accountID, kind)
		if err != nil {
			return err
		}

		applyUpdate(account, in, hash)
		return translate(tx.UpdateAccount(ctx, account))
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	return account, nil
}

func applyUpdate(account *models.Account, in AccountUpdate, hash *string) {
	if in.Username != nil {
		account.Username = *in.Username
	}
	if in.FirstName != nil {
		account.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		account.LastName = *in.LastName
	}
	if hash != nil {
		account.PasswordHash = *hash
	}
}

func (s *Service) deleteAccount(ctx context.Context, caller models.Caller, accountID uuid.UUID, capability Capability, kind models.RoleKind) error {
	ctx, span := s.start(ctx, "DeleteAccount", caller)
	defer span.End()

	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := authorizeAccountTarget(ctx, tx, caller, capability, accountID, kind); err != nil {
			return err
		}
		return translate(tx.DeleteAccount(ctx, accountID))
	})
	if err != nil {
		return s.fail(ctx, span, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("account_id", accountID.String()).
		Str("role", string(kind)).
		Msg("Account deleted")

	return nil
}

func (s *Service) listAccounts(ctx context.Context, caller models.Caller, tenantID *uuid.UUID, capability Capability, kind models.RoleKind) ([]*models.Account, error) {
	ctx, span := s.start(ctx, "ListAccounts", caller)
	defer span.End()

	filter := store.AccountFilter{Kind: kind, TenantID: tenantID}
	if caller.Role.Scoped() {
		filter.TenantID = scopeOf(caller)
	}

	var accounts []*models.Account
	err := s.store.InReadTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, capability, filter.TenantID); err != nil {
			return err
		}

		var err error
		accounts, err = tx.ListAccounts(ctx, filter)
		return translate(err)
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	return accounts, nil
}

func (s *Service) newAccount(in AccountInput, tenantID uuid.UUID, now time.Time) (*models.Account, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, newError(KindInvalid, "username is required")
	}
	if in.Password == "" {
		return nil, newError(KindInvalid, "password is required")
	}

	hash, err := hashPassword(in.Password, s.passwordCost)
	if err != nil {
		return nil, translate(err)
	}

	return &models.Account{
		AccountID:    uuid.Must(uuid.NewV7()),
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		TenantID:     &tenantID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// scopeOf returns the tenant filter of a caller, nil for superadmins.
func scopeOf(caller models.Caller) *uuid.UUID {
	if !caller.Role.Scoped() {
		return nil
	}
	id := caller.Role.TenantID
	return &id
}
