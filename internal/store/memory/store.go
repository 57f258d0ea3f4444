package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
//
// Transactions are serialized by a single writer lock. Each transaction works on a
// copy of the data which replaces the committed data only when the unit of work
// returns without error.
type Store struct {
	mu   sync.RWMutex
	data *state
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{data: newState()}
}

// InTx runs fn with exclusive access to a staged copy of the data.
func (s *Store) InTx(ctx context.Context, fn store.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	if err := fn(ctx, &tx{state: staged}); err != nil {
		return err
	}

	s.data = staged
	return nil
}

// InReadTx runs fn against a snapshot of the committed data. Writes are discarded.
func (s *Store) InReadTx(ctx context.Context, fn store.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	return fn(ctx, &tx{state: snapshot})
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

type state struct {
	tenants     map[uuid.UUID]*models.Tenant          // tenant_id -> Tenant
	accounts    map[uuid.UUID]*models.Account         // account_id -> Account
	routes      map[uuid.UUID]*models.Route           // route_id -> Route (with checkpoints)
	assignments map[uuid.UUID]*models.GuardAssignment // guard_id -> GuardAssignment
	runs        map[uuid.UUID]*models.RouteRun        // run_id -> RouteRun
	scans       map[uuid.UUID]*models.CheckpointScan  // scan_id -> CheckpointScan
	incidents   map[uuid.UUID]*models.Incident        // incident_id -> Incident
	occurrences map[uuid.UUID]*models.Occurrence      // occurrence_id -> Occurrence
}

func newState() *state {
	return &state{
		tenants:     make(map[uuid.UUID]*models.Tenant),
		accounts:    make(map[uuid.UUID]*models.Account),
		routes:      make(map[uuid.UUID]*models.Route),
		assignments: make(map[uuid.UUID]*models.GuardAssignment),
		runs:        make(map[uuid.UUID]*models.RouteRun),
		scans:       make(map[uuid.UUID]*models.CheckpointScan),
		incidents:   make(map[uuid.UUID]*models.Incident),
		occurrences: make(map[uuid.UUID]*models.Occurrence),
	}
}

func (st *state) clone() *state {
	return &state{
		tenants:     cloneMap(st.tenants, cloneValue[models.Tenant]),
		accounts:    cloneMap(st.accounts, cloneValue[models.Account]),
		routes:      cloneMap(st.routes, cloneRoute),
		assignments: cloneMap(st.assignments, cloneValue[models.GuardAssignment]),
		runs:        cloneMap(st.runs, cloneValue[models.RouteRun]),
		scans:       cloneMap(st.scans, cloneValue[models.CheckpointScan]),
		incidents:   cloneMap(st.incidents, cloneValue[models.Incident]),
		occurrences: cloneMap(st.occurrences, cloneValue[models.Occurrence]),
	}
}

func cloneMap[V any](m map[uuid.UUID]*V, cp func(*V) *V) map[uuid.UUID]*V {
	out := make(map[uuid.UUID]*V, len(m))
	for k, v := range m {
		out[k] = cp(v)
	}
	return out
}

func cloneValue[V any](v *V) *V {
	c := *v
	return &c
}

func cloneRoute(r *models.Route) *models.Route {
	c := *r
	c.Checkpoints = append([]models.Checkpoint(nil), r.Checkpoints...)
	return &c
}

// Ownership rules: tenant -> routes, accounts; route -> checkpoints, assignments;
// guard account -> assignment, incidents; assignment -> runs;
// run -> scans, incidents, occurrences.

func (st *state) deleteTenant(tenantID uuid.UUID) {
	for id, route := range st.routes {
		if route.TenantID == tenantID {
			st.deleteRoute(id)
		}
	}
	for id, account := range st.accounts {
		if account.TenantID != nil && *account.TenantID == tenantID {
			st.deleteAccount(id)
		}
	}
	delete(st.tenants, tenantID)
}

func (st *state) deleteRoute(routeID uuid.UUID) {
	for guardID, assignment := range st.assignments {
		if assignment.RouteID == routeID {
			st.deleteAssignment(guardID)
		}
	}
	if route, ok := st.routes[routeID]; ok {
		for id, scan := range st.scans {
			if _, owned := route.CheckpointByID(scan.CheckpointID); owned {
				delete(st.scans, id)
			}
		}
	}
	delete(st.routes, routeID)
}

func (st *state) deleteAccount(accountID uuid.UUID) {
	st.deleteAssignment(accountID)
	for id, incident := range st.incidents {
		if incident.GuardID == accountID {
			delete(st.incidents, id)
		}
	}
	delete(st.accounts, accountID)
}

func (st *state) deleteAssignment(guardID uuid.UUID) {
	assignment, ok := st.assignments[guardID]
	if !ok {
		return
	}
	for id, run := range st.runs {
		if run.AssignmentID == assignment.AssignmentID {
			st.deleteRun(id)
		}
	}
	delete(st.assignments, guardID)
}

func (st *state) deleteRun(runID uuid.UUID) {
	for id, scan := range st.scans {
		if scan.RunID == runID {
			delete(st.scans, id)
		}
	}
	for id, incident := range st.incidents {
		if incident.RunID == runID {
			delete(st.incidents, id)
		}
	}
	for id, occurrence := range st.occurrences {
		if occurrence.RunID == runID {
			delete(st.occurrences, id)
		}
	}
	delete(st.runs, runID)
}

// tx implements store.Tx on top of a staged state.
type tx struct {
	*state
}

var _ store.Tx = (*tx)(nil)
