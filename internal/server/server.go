package server

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/patrol/internal/auth"
	httpmiddleware "github.com/wolfeidau/patrol/internal/http"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/patrol"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server exposes the patrol service as a JSON API.
type Server struct {
	svc      *patrol.Service
	issuer   *auth.TokenIssuer
	verifier *auth.TokenVerifier
	validate *validator.Validate
}

// NewServer creates a new server for the service.
func NewServer(svc *patrol.Service, issuer *auth.TokenIssuer, verifier *auth.TokenVerifier) *Server {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Server{
		svc:      svc,
		issuer:   issuer,
		verifier: verifier,
		validate: validate,
	}
}

// HandlerOptions configures the middleware around the API.
type HandlerOptions struct {
	CORSOrigins []string
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler(log zerolog.Logger, opts HandlerOptions) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/token", s.handleToken)
	mux.HandleFunc("GET /api/check-role", s.withCaller(s.handleCheckRole))

	// Guard operations
	mux.HandleFunc("GET /api/assignment", s.withCaller(s.handleGetAssignment))
	mux.HandleFunc("POST /api/start-run", s.withCaller(s.handleStartRun))
	mux.HandleFunc("POST /api/scan", s.withCaller(s.handleScan))
	mux.HandleFunc("POST /api/end-shift", s.withCaller(s.handleEndShift))
	mux.HandleFunc("POST /api/incidents", s.withCaller(s.handleIncident))
	mux.HandleFunc("POST /api/occurrences", s.withCaller(s.handleOccurrence))

	// Tenant administration
	mux.HandleFunc("GET /api/daily-report", s.withCaller(s.handleDailyReport))
	mux.HandleFunc("POST /api/assign-guard", s.withCaller(s.handleAssignGuard))
	mux.HandleFunc("GET /api/routes", s.withCaller(s.handleListRoutes))
	mux.HandleFunc("POST /api/routes", s.withCaller(s.handleCreateRoute))
	mux.HandleFunc("GET /api/guards", s.withCaller(s.handleListAccounts(s.svc.ListGuards)))
	mux.HandleFunc("POST /api/guards", s.withCaller(s.handleCreateAccount(s.svc.CreateGuard)))
	mux.HandleFunc("PATCH /api/guards/{id}", s.withCaller(s.handleUpdateAccount(s.svc.UpdateGuard)))
	mux.HandleFunc("DELETE /api/guards/{id}", s.withCaller(s.handleDeleteAccount(s.svc.DeleteGuard)))
	mux.HandleFunc("GET /api/admins", s.withCaller(s.handleListAccounts(s.svc.ListAdmins)))
	mux.HandleFunc("POST /api/admins", s.withCaller(s.handleCreateAccount(s.svc.CreateAdmin)))
	mux.HandleFunc("PATCH /api/admins/{id}", s.withCaller(s.handleUpdateAccount(s.svc.UpdateAdmin)))
	mux.HandleFunc("DELETE /api/admins/{id}", s.withCaller(s.handleDeleteAccount(s.svc.DeleteAdmin)))

	// Superadmin
	mux.HandleFunc("GET /api/tenants", s.withCaller(s.handleListTenants))
	mux.HandleFunc("POST /api/tenants", s.withCaller(s.handleCreateTenant))
	mux.HandleFunc("GET /api/tenants/{id}", s.withCaller(s.handleGetTenant))
	mux.HandleFunc("PATCH /api/tenants/{id}", s.withCaller(s.handleUpdateTenant))
	mux.HandleFunc("DELETE /api/tenants/{id}", s.withCaller(s.handleDeleteTenant))
	mux.HandleFunc("POST /api/tenants/{id}/freeze", s.withCaller(s.handleFreezeTenant))
	mux.HandleFunc("POST /api/tenants/{id}/unfreeze", s.withCaller(s.handleUnfreezeTenant))

	var handler http.Handler = mux
	handler = s.verifier.Middleware("/health", "/api/token")(handler)
	handler = cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", httpmiddleware.RequestIDHeader},
	}).Handler(handler)
	handler = httpmiddleware.RequestLogger(log)(handler)

	return handler
}

type callerHandler func(w http.ResponseWriter, r *http.Request, caller models.Caller)

// withCaller hands the authenticated caller to h.
func (s *Server) withCaller(h callerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.CallerFromContext(r.Context())
		if !ok {
			respondErrorWithCode(w, http.StatusUnauthorized, ErrCodeUnauthenticated, "missing caller", nil)
			return
		}
		h(w, r, caller)
	}
}

// decode reads and validates a JSON body into dst. It writes the error response and
// returns false when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondErrorWithCode(w, http.StatusBadRequest, ErrCodeInvalidPayload, "invalid JSON payload", nil)
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		respondValidationError(w, err)
		return false
	}

	return true
}
