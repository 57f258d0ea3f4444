package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/patrol"
)

// pathID parses the {id} path value, writing a 400 when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondErrorWithCode(w, http.StatusBadRequest, ErrCodeValidation, "id must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// queryTenant parses the optional tenant_id query parameter.
func queryTenant(w http.ResponseWriter, r *http.Request) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get("tenant_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondErrorWithCode(w, http.StatusBadRequest, ErrCodeValidation, "tenant_id must be a UUID", nil)
		return nil, false
	}
	return &id, true
}

// GET /api/routes
func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	routes, err := s.svc.ListRoutes(r.Context(), caller)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, mapSlice(routes, toRoute))
}

// POST /api/routes
func (s *Server) handleCreateRoute(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	var req CreateRouteRequest
	if !s.decode(w, r, &req) {
		return
	}

	route, err := s.svc.CreateRoute(r.Context(), caller, req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toRoute(route))
}

type (
	listAccountsFunc  func(ctx context.Context, caller models.Caller, tenantID *uuid.UUID) ([]*models.Account, error)
	createAccountFunc func(ctx context.Context, caller models.Caller, in patrol.AccountInput) (*models.Account, error)
	updateAccountFunc func(ctx context.Context, caller models.Caller, id uuid.UUID, in patrol.AccountUpdate) (*models.Account, error)
	deleteAccountFunc func(ctx context.Context, caller models.Caller, id uuid.UUID) error
)

// GET /api/guards, GET /api/admins
func (s *Server) handleListAccounts(list listAccountsFunc) callerHandler {
	return func(w http.ResponseWriter, r *http.Request, caller models.Caller) {
		tenantID, ok := queryTenant(w, r)
		if !ok {
			return
		}

		accounts, err := list(r.Context(), caller, tenantID)
		if err != nil {
			respondError(w, r, err)
			return
		}

		respondJSON(w, http.StatusOK, mapSlice(accounts, toAccount))
	}
}

// POST /api/guards, POST /api/admins
func (s *Server) handleCreateAccount(create createAccountFunc) callerHandler {
	return func(w http.ResponseWriter, r *http.Request, caller models.Caller) {
		var req CreateAccountRequest
		if !s.decode(w, r, &req) {
			return
		}

		account, err := create(r.Context(), caller, req.input())
		if err != nil {
			respondError(w, r, err)
			return
		}

		respondJSON(w, http.StatusCreated, toAccount(account))
	}
}

// PATCH /api/guards/{id}, PATCH /api/admins/{id}
func (s *Server) handleUpdateAccount(update updateAccountFunc) callerHandler {
	return func(w http.ResponseWriter, r *http.Request, caller models.Caller) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req UpdateAccountRequest
		if !s.decode(w, r, &req) {
			return
		}

		account, err := update(r.Context(), caller, id, req.update())
		if err != nil {
			respondError(w, r, err)
			return
		}

		respondJSON(w, http.StatusOK, toAccount(account))
	}
}

// DELETE /api/guards/{id}, DELETE /api/admins/{id}
func (s *Server) handleDeleteAccount(del deleteAccountFunc) callerHandler {
	return func(w http.ResponseWriter, r *http.Request, caller models.Caller) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := del(r.Context(), caller, id); err != nil {
			respondError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/tenants
func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	tenants, err := s.svc.ListTenants(r.Context(), caller)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, mapSlice(tenants, toTenant))
}

// POST /api/tenants
func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	var req CreateTenantRequest
	if !s.decode(w, r, &req) {
		return
	}

	tenant, client, err := s.svc.CreateTenant(r.Context(), caller, patrol.TenantInput{Name: req.Name, Client: req.Client.input()})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, CreateTenantResponse{Tenant: toTenant(tenant), Client: toAccount(client)})
}

// GET /api/tenants/{id}
func (s *Server) handleGetTenant(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tenant, err := s.svc.GetTenant(r.Context(), caller, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTenant(tenant))
}

// PATCH /api/tenants/{id}
func (s *Server) handleUpdateTenant(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateTenantRequest
	if !s.decode(w, r, &req) {
		return
	}

	tenant, err := s.svc.UpdateTenant(r.Context(), caller, id, req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTenant(tenant))
}

// DELETE /api/tenants/{id}
func (s *Server) handleDeleteTenant(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.svc.DeleteTenant(r.Context(), caller, id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/tenants/{id}/freeze
func (s *Server) handleFreezeTenant(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tenant, err := s.svc.FreezeTenant(r.Context(), caller, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTenant(tenant))
}

// POST /api/tenants/{id}/unfreeze
func (s *Server) handleUnfreezeTenant(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tenant, err := s.svc.UnfreezeTenant(r.Context(), caller, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTenant(tenant))
}
