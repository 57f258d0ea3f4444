package server

import (
	"time"

	"github.com/google/uuid"

	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/patrol"
)

// Requests

type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ScanRequest struct {
	Code string `json:"code" validate:"required,max=128"`
}

type IncidentRequest struct {
	Description string `json:"description" validate:"required,max=4000"`
}

type OccurrenceRequest struct {
	Type           string `json:"type" validate:"required,oneof=person car"`
	Name           string `json:"name" validate:"max=200"`
	DNI            string `json:"dni" validate:"max=32"`
	Motive         string `json:"motive" validate:"max=1000"`
	Observation    string `json:"observation" validate:"max=4000"`
	RemissionGuide string `json:"remission_guide" validate:"max=64"`
	Bill           string `json:"bill" validate:"max=64"`
	DriverName     string `json:"driver_name" validate:"max=200"`
	CarPlate       string `json:"car_plate" validate:"required_if=Type car,max=16"`
}

type AssignGuardRequest struct {
	GuardID uuid.UUID `json:"guard_id" validate:"required"`
	RouteID uuid.UUID `json:"route_id" validate:"required"`
	Shift   string    `json:"shift" validate:"required,oneof=day night weekend"`
}

type CheckpointRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Code  string `json:"code" validate:"required,max=128"`
	Order int    `json:"order" validate:"required,min=1"`
}

type CreateRouteRequest struct {
	TenantID    uuid.UUID           `json:"tenant_id" validate:"required"`
	Name        string              `json:"name" validate:"required,max=200"`
	Checkpoints []CheckpointRequest `json:"checkpoints" validate:"required,min=1,dive"`
}

type CreateAccountRequest struct {
	Username  string     `json:"username" validate:"required,max=150"`
	Password  string     `json:"password" validate:"required,min=6"`
	FirstName string     `json:"first_name" validate:"max=150"`
	LastName  string     `json:"last_name" validate:"max=150"`
	TenantID  *uuid.UUID `json:"tenant_id,omitempty"`
}

type UpdateAccountRequest struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,max=150"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
}

type CreateTenantRequest struct {
	Name   string               `json:"name" validate:"required,max=200"`
	Client CreateAccountRequest `json:"client"`
}

type UpdateTenantRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

func (r CreateAccountRequest) input() patrol.AccountInput {
	return patrol.AccountInput{
		Username:  r.Username,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		TenantID:  r.TenantID,
	}
}

func (r UpdateAccountRequest) update() patrol.AccountUpdate {
	return patrol.AccountUpdate{
		Username:  r.Username,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

func (r CreateRouteRequest) input() patrol.RouteInput {
	in := patrol.RouteInput{TenantID: r.TenantID, Name: r.Name}
	for _, cp := range r.Checkpoints {
		in.Checkpoints = append(in.Checkpoints, patrol.CheckpointInput{Name: cp.Name, Code: cp.Code, Order: cp.Order})
	}
	return in
}

func (r OccurrenceRequest) input() patrol.OccurrenceInput {
	return patrol.OccurrenceInput{
		Type:           r.Type,
		Name:           r.Name,
		DNI:            r.DNI,
		Motive:         r.Motive,
		Observation:    r.Observation,
		RemissionGuide: r.RemissionGuide,
		Bill:           r.Bill,
		DriverName:     r.DriverName,
		CarPlate:       r.CarPlate,
	}
}

// Responses

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
}

type RoleResponse struct {
	AccountID uuid.UUID  `json:"account_id"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	TenantID  *uuid.UUID `json:"tenant_id,omitempty"`
}

type TenantResponse struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateTenantResponse struct {
	Tenant TenantResponse  `json:"tenant"`
	Client AccountResponse `json:"client"`
}

type AccountResponse struct {
	AccountID uuid.UUID  `json:"account_id"`
	Username  string     `json:"username"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Role      string     `json:"role"`
	TenantID  *uuid.UUID `json:"tenant_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type CheckpointResponse struct {
	CheckpointID uuid.UUID `json:"checkpoint_id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Order        int       `json:"order"`
}

type RouteResponse struct {
	RouteID     uuid.UUID            `json:"route_id"`
	TenantID    uuid.UUID            `json:"tenant_id"`
	Name        string               `json:"name"`
	Checkpoints []CheckpointResponse `json:"checkpoints"`
}

type AssignmentResponse struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	GuardID      uuid.UUID `json:"guard_id"`
	RouteID      uuid.UUID `json:"route_id"`
	Shift        string    `json:"shift"`
}

type AssignGuardResponse struct {
	AssignmentResponse
	Created bool `json:"created"`
}

type RunResponse struct {
	RunID     uuid.UUID  `json:"run_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Completed bool       `json:"completed"`
	State     string     `json:"state"`
}

type ScanResponse struct {
	ScanID          uuid.UUID `json:"scan_id"`
	CheckpointID    uuid.UUID `json:"checkpoint_id"`
	CheckpointName  string    `json:"checkpoint_name"`
	CheckpointCode  string    `json:"checkpoint_code"`
	CheckpointOrder int       `json:"checkpoint_order"`
	ScannedAt       time.Time `json:"scanned_at"`
}

type ScanOutcomeResponse struct {
	Scan         ScanResponse `json:"scan"`
	Created      bool         `json:"created"`
	Run          RunResponse  `json:"run"`
	Completed    bool         `json:"completed"`
	NextExpected int          `json:"next_expected,omitempty"`
	Total        int          `json:"total"`
}

type AssignmentViewResponse struct {
	Assignment   AssignmentResponse `json:"assignment"`
	Route        RouteResponse      `json:"route"`
	State        string             `json:"state"`
	Run          *RunResponse       `json:"run,omitempty"`
	LastScan     *ScanResponse      `json:"last_scan,omitempty"`
	NextExpected int                `json:"next_expected,omitempty"`
}

type EndShiftResponse struct {
	Run *RunResponse `json:"run"`
}

type IncidentResponse struct {
	IncidentID  uuid.UUID `json:"incident_id"`
	RunID       uuid.UUID `json:"run_id"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type OccurrenceResponse struct {
	OccurrenceID   uuid.UUID `json:"occurrence_id"`
	RunID          uuid.UUID `json:"run_id"`
	Type           string    `json:"type"`
	Name           string    `json:"name,omitempty"`
	DNI            string    `json:"dni,omitempty"`
	Motive         string    `json:"motive,omitempty"`
	Observation    string    `json:"observation,omitempty"`
	RemissionGuide string    `json:"remission_guide,omitempty"`
	Bill           string    `json:"bill,omitempty"`
	DriverName     string    `json:"driver_name,omitempty"`
	CarPlate       string    `json:"car_plate,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type RunReportResponse struct {
	Run         RunResponse          `json:"run"`
	Scans       []ScanResponse       `json:"scans"`
	Incidents   []IncidentResponse   `json:"incidents"`
	Occurrences []OccurrenceResponse `json:"occurrences"`
}

type ReportResponse struct {
	GuardID       string              `json:"guard_id"`
	GuardUsername string              `json:"guard_username"`
	Date          string              `json:"date"`
	Runs          []RunReportResponse `json:"runs"`
}

func toTenant(t *models.Tenant) TenantResponse {
	return TenantResponse{
		TenantID:  t.TenantID,
		Name:      t.Name,
		Active:    t.Active,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func toAccount(a *models.Account) AccountResponse {
	return AccountResponse{
		AccountID: a.AccountID,
		Username:  a.Username,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      string(a.Role().Kind),
		TenantID:  a.TenantID,
		CreatedAt: a.CreatedAt,
	}
}

func toRoute(r *models.Route) RouteResponse {
	resp := RouteResponse{
		RouteID:     r.RouteID,
		TenantID:    r.TenantID,
		Name:        r.Name,
		Checkpoints: make([]CheckpointResponse, 0, len(r.Checkpoints)),
	}
	for _, cp := range r.Checkpoints {
		resp.Checkpoints = append(resp.Checkpoints, CheckpointResponse{
			CheckpointID: cp.CheckpointID,
			Name:         cp.Name,
			Code:         cp.Code,
			Order:        cp.Order,
		})
	}
	return resp
}

func toAssignment(a *models.GuardAssignment) AssignmentResponse {
	return AssignmentResponse{
		AssignmentID: a.AssignmentID,
		GuardID:      a.GuardID,
		RouteID:      a.RouteID,
		Shift:        string(a.Shift),
	}
}

func toRun(r *models.RouteRun) RunResponse {
	return RunResponse{
		RunID:     r.RunID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Completed: r.Completed,
		State:     string(r.State()),
	}
}

func toScan(s *models.CheckpointScan) ScanResponse {
	return ScanResponse{
		ScanID:          s.ScanID,
		CheckpointID:    s.CheckpointID,
		CheckpointName:  s.CheckpointName,
		CheckpointCode:  s.CheckpointCode,
		CheckpointOrder: s.CheckpointOrder,
		ScannedAt:       s.ScannedAt,
	}
}

func toIncident(i *models.Incident) IncidentResponse {
	return IncidentResponse{
		IncidentID:  i.IncidentID,
		RunID:       i.RunID,
		Description: i.Description,
		Timestamp:   i.Timestamp,
	}
}

func toOccurrence(o *models.Occurrence) OccurrenceResponse {
	return OccurrenceResponse{
		OccurrenceID:   o.OccurrenceID,
		RunID:          o.RunID,
		Type:           string(o.Type),
		Name:           o.Name,
		DNI:            o.DNI,
		Motive:         o.Motive,
		Observation:    o.Observation,
		RemissionGuide: o.RemissionGuide,
		Bill:           o.Bill,
		DriverName:     o.DriverName,
		CarPlate:       o.CarPlate,
		Timestamp:      o.Timestamp,
	}
}

func toScanOutcome(out *patrol.ScanOutcome) ScanOutcomeResponse {
	return ScanOutcomeResponse{
		Scan:         toScan(out.Scan),
		Created:      out.Created,
		Run:          toRun(out.Run),
		Completed:    out.Completed,
		NextExpected: out.NextExpected,
		Total:        out.Total,
	}
}

func toAssignmentView(v *patrol.AssignmentView) AssignmentViewResponse {
	resp := AssignmentViewResponse{
		Assignment:   toAssignment(v.Assignment),
		Route:        toRoute(v.Route),
		State:        string(v.State),
		NextExpected: v.NextExpected,
	}
	if v.Run != nil {
		run := toRun(v.Run)
		resp.Run = &run
	}
	if v.LastScan != nil {
		scan := toScan(v.LastScan)
		resp.LastScan = &scan
	}
	return resp
}

func toReport(r *patrol.Report) ReportResponse {
	resp := ReportResponse{
		GuardID:       r.GuardID,
		GuardUsername: r.GuardUsername,
		Date:          r.Date,
		Runs:          make([]RunReportResponse, 0, len(r.Runs)),
	}
	for _, rr := range r.Runs {
		run := RunReportResponse{
			Run:         toRun(rr.Run),
			Scans:       mapSlice(rr.Scans, toScan),
			Incidents:   mapSlice(rr.Incidents, toIncident),
			Occurrences: mapSlice(rr.Occurrences, toOccurrence),
		}
		resp.Runs = append(resp.Runs, run)
	}
	return resp
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
