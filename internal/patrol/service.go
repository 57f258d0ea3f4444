package patrol

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
	"github.com/wolfeidau/patrol/internal/telemetry"
)

// Service exposes the inbound patrol operations. Every operation takes the
// pre-authenticated caller and runs as exactly one store transaction.
type Service struct {
	store        store.Store
	now          func() time.Time
	loc          *time.Location
	passwordCost int
	metrics      *telemetry.Metrics
	tracer       trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that defines calendar days in daily reports.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithPasswordCost sets the bcrypt cost of new password hashes.
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.passwordCost = cost }
}

// NewService creates a patrol service backed by st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:        st,
		now:          time.Now,
		loc:          time.UTC,
		passwordCost: bcrypt.DefaultCost,
		metrics:      telemetry.GetMetrics(),
		tracer:       telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current date in the report time zone, formatted for DailyReport.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// ScanOutcome is the result of ScanCheckpoint.
type ScanOutcome struct {
	ScanResult

	Run *models.RouteRun

	// Completed is true when this scan completed the run.
	Completed bool

	// NextExpected is the order of the next checkpoint, zero once the run is completed.
	NextExpected int
	Total        int
}

// AssignmentView is a guard's assignment with the state of its current run.
type AssignmentView struct {
	Assignment *models.GuardAssignment
	Route      *models.Route

	// Run is the active run, or the last completed run when none is active.
	Run      *models.RouteRun
	State    models.RunState
	LastScan *models.CheckpointScan

	// NextExpected is set while a run is active.
	NextExpected int
}

// RoleInfo describes the caller, for clients deciding which screens to show.
type RoleInfo struct {
	AccountID uuid.UUID
	Username  string
	Role      models.RoleKind
	TenantID  *uuid.UUID
}

// OccurrenceInput describes a person or vehicle entering the site.
type OccurrenceInput struct {
	Type           string
	Name           string
	DNI            string
	Motive         string
	Observation    string
	RemissionGuide string
	Bill           string
	DriverName     string
	CarPlate       string
}

// StartRun opens a new run on the caller's assignment.
func (s *Service) StartRun(ctx context.Context, caller models.Caller) (*models.RouteRun, error) {
	ctx, span := s.start(ctx, "StartRun", caller)
	defer span.End()

	var run *models.RouteRun
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapPatrolOperate, nil); err != nil {
			return err
		}

		assignment, err := LockAssignment(ctx, tx, caller.AccountID)
		if err != nil {
			return err
		}

		run, err = StartRun(ctx, tx, assignment, s.now())
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	s.metrics.RunsStartedTotal.Add(ctx, 1)
	zerolog.Ctx(ctx).Info().
		Str("run_id", run.RunID.String()).
		Str("guard_id", caller.AccountID.String()).
		Msg("Run started")

	return run, nil
}

// ScanCheckpoint validates and records a scan of code in the caller's active run, and
// completes the run when the scan was the last checkpoint. Validation, insert and
// completion commit together or not at all.
func (s *Service) ScanCheckpoint(ctx context.Context, caller models.Caller, code string) (*ScanOutcome, error) {
	ctx, span := s.start(ctx, "ScanCheckpoint", caller)
	defer span.End()
	span.SetAttributes(attribute.String("checkpoint.code", code))

	var out *ScanOutcome
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapPatrolOperate, nil); err != nil {
			return err
		}

		assignment, err := LockAssignment(ctx, tx, caller.AccountID)
		if err != nil {
			return err
		}

		route, err := tx.GetRoute(ctx, assignment.RouteID)
		if err != nil {
			return translate(err)
		}

		run, err := activeRun(ctx, tx, assignment.AssignmentID)
		if err != nil {
			return err
		}
		if run == nil {
			out, err = s.replayFinalScan(ctx, tx, assignment, route, code)
			return err
		}

		scans, err := tx.ListScans(ctx, run.RunID)
		if err != nil {
			return translate(err)
		}

		cp, err := ValidateScan(route, scans, code)
		if err != nil {
			return err
		}

		now := s.now()
		result, err := RecordScan(ctx, tx, run, cp, now)
		if err != nil {
			return err
		}

		out = &ScanOutcome{ScanResult: *result, Run: run, Total: len(route.Checkpoints)}

		if result.Created {
			if out.Completed, err = CompleteIfDone(ctx, tx, run, route, now); err != nil {
				return err
			}
			scans = append(scans, result.Scan)
		}

		if !run.Completed {
			out.NextExpected = NextExpectedOrder(scans)
		}

		return nil
	})
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) && (pe.Kind == KindWrongOrder || pe.Kind == KindUnknownCode || pe.Kind == KindNoActiveRun) {
			s.metrics.RecordRejection(ctx, s.metrics.SequenceRejections, string(pe.Kind))
		}
		return nil, s.fail(ctx, span, err)
	}

	logger := zerolog.Ctx(ctx)
	switch {
	case !out.Created:
		s.metrics.ScansDuplicateTotal.Add(ctx, 1)
		logger.Debug().Str("run_id", out.Run.RunID.String()).Str("code", code).Msg("Checkpoint already scanned")
	default:
		s.metrics.ScansRecordedTotal.Add(ctx, 1)
		logger.Info().Str("run_id", out.Run.RunID.String()).Str("code", code).Int("order", out.Scan.CheckpointOrder).Msg("Checkpoint scanned")
	}

	if out.Completed {
		s.metrics.RecordRunCompleted(ctx, telemetry.ReasonAllScanned, out.Run.EndTime.Sub(out.Run.StartTime).Seconds())
		logger.Info().Str("run_id", out.Run.RunID.String()).Msg("Run completed")
	}

	return out, nil
}

// replayFinalScan answers a retried scan that arrives after its run was completed.
// Only a checkpoint already recorded in the last completed run gets the original
// scan back, everything else is KindNoActiveRun.
func (s *Service) replayFinalScan(ctx context.Context, tx store.Tx, assignment *models.GuardAssignment, route *models.Route, code string) (*ScanOutcome, error) {
	noRun := newError(KindNoActiveRun, "no active run, start a run first")

	cp, ok := route.CheckpointByCode(code)
	if !ok {
		return nil, noRun
	}

	last, err := tx.GetLastCompletedRun(ctx, assignment.AssignmentID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return nil, noRun
		}
		return nil, translate(err)
	}

	scan, err := tx.GetScan(ctx, last.RunID, cp.CheckpointID)
	if err != nil {
		if errors.Is(err, store.ErrScanNotFound) {
			return nil, noRun
		}
		return nil, translate(err)
	}

	return &ScanOutcome{
		ScanResult: ScanResult{Scan: scan},
		Run:        last,
		Total:      len(route.Checkpoints),
	}, nil
}

// EndShift completes the caller's active run. Returns a nil run when no run is active.
func (s *Service) EndShift(ctx context.Context, caller models.Caller) (*models.RouteRun, error) {
	ctx, span := s.start(ctx, "EndShift", caller)
	defer span.End()

	var run *models.RouteRun
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapPatrolOperate, nil); err != nil {
			return err
		}

		assignment, err := LockAssignment(ctx, tx, caller.AccountID)
		if err != nil {
			return err
		}

		run, err = EndShift(ctx, tx, assignment, s.now())
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	if run != nil {
		s.metrics.RecordRunCompleted(ctx, telemetry.ReasonEndShift, run.EndTime.Sub(run.StartTime).Seconds())
		zerolog.Ctx(ctx).Info().Str("run_id", run.RunID.String()).Msg("Shift ended")
	}

	return run, nil
}

// GetAssignment returns the caller's assignment, route and current run.
func (s *Service) GetAssignment(ctx context.Context, caller models.Caller) (*AssignmentView, error) {
	ctx, span := s.start(ctx, "GetAssignment", caller)
	defer span.End()

	var view *AssignmentView
	err := s.store.InReadTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapPatrolOperate, nil); err != nil {
			return err
		}

		assignment, err := ResolveAssignment(ctx, tx, caller.AccountID)
		if err != nil {
			return err
		}

		route, err := tx.GetRoute(ctx, assignment.RouteID)
		if err != nil {
			return translate(err)
		}

		view = &AssignmentView{Assignment: assignment, Route: route, State: models.RunStateNone}

		run, err := activeRun(ctx, tx, assignment.AssignmentID)
		if err != nil {
			return err
		}
		if run == nil {
			run, err = tx.GetLastCompletedRun(ctx, assignment.AssignmentID)
			if errors.Is(err, store.ErrRunNotFound) {
				return nil
			}
			if err != nil {
				return translate(err)
			}
		}

		scans, err := tx.ListScans(ctx, run.RunID)
		if err != nil {
			return translate(err)
		}

		view.Run = run
		view.State = run.State()
		if len(scans) > 0 {
			view.LastScan = scans[len(scans)-1]
		}
		if !run.Completed {
			view.NextExpected = NextExpectedOrder(scans)
		}

		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	return view, nil
}

// ReportIncident appends an incident to the caller's active run.
func (s *Service) ReportIncident(ctx context.Context, caller models.Caller, description string) (*models.Incident, error) {
	ctx, span := s.start(ctx, "ReportIncident", caller)
	defer span.End()

	if description == "" {
		return nil, s.fail(ctx, span, newError(KindInvalid, "description is required"))
	}

	var incident *models.Incident
	err := s.withActiveRun(ctx, caller, func(ctx context.Context, tx store.Tx, run *models.RouteRun) error {
		incident = &models.Incident{
			IncidentID:  uuid.Must(uuid.NewV7()),
			GuardID:     caller.AccountID,
			RunID:       run.RunID,
			Description: description,
			Timestamp:   s.now(),
		}
		return translate(tx.CreateIncident(ctx, incident))
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	s.metrics.IncidentsTotal.Add(ctx, 1)
	return incident, nil
}

// ReportOccurrence appends an occurrence to the caller's active run.
func (s *Service) ReportOccurrence(ctx context.Context, caller models.Caller, in OccurrenceInput) (*models.Occurrence, error) {
	ctx, span := s.start(ctx, "ReportOccurrence", caller)
	defer span.End()

	typ, err := models.ParseOccurrenceType(in.Type)
	if err != nil {
		return nil, s.fail(ctx, span, &Error{Kind: KindInvalid, Message: err.Error()})
	}
	if typ == models.OccurrenceCar && in.CarPlate == "" {
		return nil, s.fail(ctx, span, newError(KindInvalid, "car occurrences need a plate"))
	}

	var occurrence *models.Occurrence
	err = s.withActiveRun(ctx, caller, func(ctx context.Context, tx store.Tx, run *models.RouteRun) error {
		occurrence = &models.Occurrence{
			OccurrenceID:   uuid.Must(uuid.NewV7()),
			RunID:          run.RunID,
			Type:           typ,
			Name:           in.Name,
			DNI:            in.DNI,
			Motive:         in.Motive,
			Observation:    in.Observation,
			RemissionGuide: in.RemissionGuide,
			Bill:           in.Bill,
			DriverName:     in.DriverName,
			CarPlate:       in.CarPlate,
			Timestamp:      s.now(),
		}
		return translate(tx.CreateOccurrence(ctx, occurrence))
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	s.metrics.OccurrencesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(typ))))
	return occurrence, nil
}

func (s *Service) withActiveRun(ctx context.Context, caller models.Caller, fn func(ctx context.Context, tx store.Tx, run *models.RouteRun) error) error {
	return s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapPatrolOperate, nil); err != nil {
			return err
		}

		assignment, err := LockAssignment(ctx, tx, caller.AccountID)
		if err != nil {
			return err
		}

		run, err := activeRun(ctx, tx, assignment.AssignmentID)
		if err != nil {
			return err
		}
		if run == nil {
			return newError(KindNoActiveRun, "no active run")
		}

		return fn(ctx, tx, run)
	})
}

// DailyReport returns the runs of a guard on date, a YYYY-MM-DD calendar day in the
// service's report time zone.
func (s *Service) DailyReport(ctx context.Context, caller models.Caller, guardID uuid.UUID, date string) (*Report, error) {
	ctx, span := s.start(ctx, "DailyReport", caller)
	defer span.End()

	day, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return nil, s.fail(ctx, span, newError(KindInvalid, "date must be formatted as %s", DateLayout))
	}

	var report *Report
	err = s.store.InReadTx(ctx, func(ctx context.Context, tx store.Tx) error {
		guard, err := authorizeAccountTarget(ctx, tx, caller, CapReportsRead, guardID, models.RoleGuard)
		if err != nil {
			return err
		}

		report, err = DailyReport(ctx, tx, guard, day, s.loc)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	return report, nil
}

// FreezeTenant deactivates a tenant. All operations of its accounts are denied until
// it is unfrozen. Freezing a frozen tenant succeeds.
func (s *Service) FreezeTenant(ctx context.Context, caller models.Caller, tenantID uuid.UUID) (*models.Tenant, error) {
	return s.setTenantActive(ctx, caller, tenantID, false)
}

// UnfreezeTenant reactivates a tenant.
func (s *Service) UnfreezeTenant(ctx context.Context, caller models.Caller, tenantID uuid.UUID) (*models.Tenant, error) {
	return s.setTenantActive(ctx, caller, tenantID, true)
}

func (s *Service) setTenantActive(ctx context.Context, caller models.Caller, tenantID uuid.UUID, active bool) (*models.Tenant, error) {
	ctx, span := s.start(ctx, "SetTenantActive", caller)
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", tenantID.String()), attribute.Bool("tenant.active", active))

	var tenant *models.Tenant
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapTenantsFreeze, &tenantID); err != nil {
			return err
		}

		var err error
		tenant, err = tx.GetTenant(ctx, tenantID)
		if err != nil {
			return translate(err)
		}

		if tenant.Active == active {
			return nil
		}

		tenant.Active = active
		return translate(tx.UpdateTenant(ctx, tenant))
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("tenant_id", tenantID.String()).
		Bool("active", active).
		Msg("Tenant freeze state changed")

	return tenant, nil
}

// AssignGuard binds a guard to a route of the same tenant, replacing any previous
// assignment. A guard can't be moved to another route while a run is active.
// Returns true when the guard had no assignment before.
func (s *Service) AssignGuard(ctx context.Context, caller models.Caller, guardID, routeID uuid.UUID, shift string) (*models.GuardAssignment, bool, error) {
	ctx, span := s.start(ctx, "AssignGuard", caller)
	defer span.End()

	sh, err := models.ParseShift(shift)
	if err != nil {
		return nil, false, s.fail(ctx, span, &Error{Kind: KindInvalid, Message: err.Error()})
	}

	var (
		assignment *models.GuardAssignment
		created    bool
	)
	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		guard, err := authorizeAccountTarget(ctx, tx, caller, CapGuardsManage, guardID, models.RoleGuard)
		if err != nil {
			return err
		}

		route, err := tx.GetRoute(ctx, routeID)
		if err != nil {
			return translate(err)
		}
		if guard.TenantID == nil || route.TenantID != *guard.TenantID {
			return newError(KindDenied, "guard and route belong to different tenants")
		}

		current, err := tx.LockAssignmentByGuard(ctx, guardID)
		switch {
		case errors.Is(err, store.ErrAssignmentNotFound):
		case err != nil:
			return translate(err)
		case current.RouteID != routeID:
			run, err := activeRun(ctx, tx, current.AssignmentID)
			if err != nil {
				return err
			}
			if run != nil {
				return newError(KindConflict, "guard has an active run on another route")
			}
		}

		assignment = &models.GuardAssignment{GuardID: guardID, RouteID: routeID, Shift: sh}
		created, err = tx.UpsertAssignment(ctx, assignment)
		return translate(err)
	})
	if err != nil {
		return nil, false, s.fail(ctx, span, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("guard_id", guardID.String()).
		Str("route_id", routeID.String()).
		Str("shift", string(sh)).
		Bool("created", created).
		Msg("Guard assigned")

	return assignment, created, nil
}

// CheckRole describes the caller.
func (s *Service) CheckRole(ctx context.Context, caller models.Caller) (*RoleInfo, error) {
	ctx, span := s.start(ctx, "CheckRole", caller)
	defer span.End()

	var info *RoleInfo
	err := s.store.InReadTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := Authorize(ctx, tx, caller, CapRoleCheck, nil); err != nil {
			return err
		}

		account, err := tx.GetAccount(ctx, caller.AccountID)
		if err != nil {
			return translate(err)
		}

		info = &RoleInfo{
			AccountID: account.AccountID,
			Username:  account.Username,
			Role:      caller.Role.Kind,
			TenantID:  account.TenantID,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	return info, nil
}

func (s *Service) start(ctx context.Context, op string, caller models.Caller) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "patrol."+op, trace.WithAttributes(
		attribute.String("caller.id", caller.AccountID.String()),
		attribute.String("caller.role", string(caller.Role.Kind)),
	))

	logger := zerolog.Ctx(ctx).With().Str("op", op).Logger()
	return logger.WithContext(ctx), span
}

// fail translates err, records it on the span and counts denials.
func (s *Service) fail(ctx context.Context, span trace.Span, err error) error {
	err = translate(err)
	kind := KindOf(err)

	span.SetAttributes(attribute.String("error.kind", string(kind)))
	span.SetStatus(codes.Error, string(kind))

	logger := zerolog.Ctx(ctx)
	switch kind {
	case KindDenied, KindTenantFrozen:
		s.metrics.RecordRejection(ctx, s.metrics.DeniedTotal, string(kind))
		logger.Warn().Err(err).Msg("Operation denied")
	case KindInternal, KindTransient:
		span.RecordError(err)
		logger.Error().Err(err).Msg("Operation failed")
	default:
		logger.Debug().Err(err).Msg("Operation rejected")
	}

	return err
}
