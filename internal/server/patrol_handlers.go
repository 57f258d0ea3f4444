package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/patrol"
)

// POST /api/token
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !s.decode(w, r, &req) {
		return
	}

	caller, err := s.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, patrol.ErrDenied) {
			respondErrorWithCode(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid credentials", nil)
			return
		}
		respondError(w, r, err)
		return
	}

	token, expires, err := s.issuer.Issue(caller)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: expires, Role: string(caller.Role.Kind)})
}

// GET /api/check-role
func (s *Server) handleCheckRole(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	info, err := s.svc.CheckRole(r.Context(), caller)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, RoleResponse{
		AccountID: info.AccountID,
		Username:  info.Username,
		Role:      string(info.Role),
		TenantID:  info.TenantID,
	})
}

// GET /api/assignment
func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	view, err := s.svc.GetAssignment(r.Context(), caller)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toAssignmentView(view))
}

// POST /api/start-run
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	run, err := s.svc.StartRun(r.Context(), caller)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toRun(run))
}

// POST /api/scan
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	var req ScanRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.svc.ScanCheckpoint(r.Context(), caller, req.Code)
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if out.Created {
		status = http.StatusCreated
	}
	respondJSON(w, status, toScanOutcome(out))
}

// POST /api/end-shift
func (s *Server) handleEndShift(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	run, err := s.svc.EndShift(r.Context(), caller)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var resp EndShiftResponse
	if run != nil {
		rr := toRun(run)
		resp.Run = &rr
	}
	respondJSON(w, http.StatusOK, resp)
}

// POST /api/incidents
func (s *Server) handleIncident(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	var req IncidentRequest
	if !s.decode(w, r, &req) {
		return
	}

	incident, err := s.svc.ReportIncident(r.Context(), caller, req.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toIncident(incident))
}

// POST /api/occurrences
func (s *Server) handleOccurrence(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	var req OccurrenceRequest
	if !s.decode(w, r, &req) {
		return
	}

	occurrence, err := s.svc.ReportOccurrence(r.Context(), caller, req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOccurrence(occurrence))
}

// GET /api/daily-report?guard_id=...&date=YYYY-MM-DD
func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	guardID, err := uuid.Parse(r.URL.Query().Get("guard_id"))
	if err != nil {
		respondErrorWithCode(w, http.StatusBadRequest, ErrCodeValidation, "guard_id must be a UUID", nil)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.svc.Today()
	}

	report, err := s.svc.DailyReport(r.Context(), caller, guardID, date)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toReport(report))
}

// POST /api/assign-guard
func (s *Server) handleAssignGuard(w http.ResponseWriter, r *http.Request, caller models.Caller) {
	var req AssignGuardRequest
	if !s.decode(w, r, &req) {
		return
	}

	assignment, created, err := s.svc.AssignGuard(r.Context(), caller, req.GuardID, req.RouteID, req.Shift)
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, AssignGuardResponse{AssignmentResponse: toAssignment(assignment), Created: created})
}
