package patrol

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfeidau/patrol/internal/store"
)

// Kind classifies a patrol error. Callers switch on the kind, never on the message.
type Kind string

const (
	// Authorization
	KindDenied       Kind = "denied"
	KindTenantFrozen Kind = "tenant_frozen"

	KindNotFound Kind = "not_found"

	// Sequence violations and validation
	KindWrongOrder  Kind = "wrong_order"
	KindUnknownCode Kind = "unknown_code"
	KindNoActiveRun Kind = "no_active_run"
	KindInvalid     Kind = "invalid"

	// Conflicts
	KindAlreadyActive Kind = "already_active"
	KindConflict      Kind = "conflict"

	// KindTransient is the only kind a caller may retry automatically.
	KindTransient Kind = "transient"

	KindInternal Kind = "internal"
)

// Error is returned by every patrol operation that fails.
type Error struct {
	Kind    Kind
	Message string

	// Expected and Got are set for KindWrongOrder.
	Expected int
	Got      int

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, patrol.ErrWrongOrder) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrDenied        = &Error{Kind: KindDenied}
	ErrTenantFrozen  = &Error{Kind: KindTenantFrozen}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrWrongOrder    = &Error{Kind: KindWrongOrder}
	ErrUnknownCode   = &Error{Kind: KindUnknownCode}
	ErrNoActiveRun   = &Error{Kind: KindNoActiveRun}
	ErrInvalid       = &Error{Kind: KindInvalid}
	ErrAlreadyActive = &Error{Kind: KindAlreadyActive}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrTransient     = &Error{Kind: KindTransient}
	ErrInternal      = &Error{Kind: KindInternal}
)

// KindOf returns the kind of err, KindInternal for errors that are not *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrongOrder(expected, got int) *Error {
	return &Error{
		Kind:     KindWrongOrder,
		Message:  fmt.Sprintf("expected checkpoint %d, got %d", expected, got),
		Expected: expected,
		Got:      got,
	}
}

// translate maps store and context failures into patrol errors.
// Errors that are already *Error pass through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var pe *Error
	if errors.As(err, &pe) {
		return err
	}

	kind, msg := KindInternal, "internal error"
	switch {
	case errors.Is(err, store.ErrTransient), errors.Is(err, context.DeadlineExceeded):
		kind, msg = KindTransient, "temporary store failure"
	case errors.Is(err, context.Canceled):
		kind, msg = KindTransient, "request canceled"
	case errors.Is(err, store.ErrRunAlreadyActive):
		kind, msg = KindAlreadyActive, "a run is already active"
	case errors.Is(err, store.ErrTenantNotFound):
		kind, msg = KindNotFound, "tenant not found"
	case errors.Is(err, store.ErrAccountNotFound):
		kind, msg = KindNotFound, "account not found"
	case errors.Is(err, store.ErrRouteNotFound):
		kind, msg = KindNotFound, "route not found"
	case errors.Is(err, store.ErrAssignmentNotFound):
		kind, msg = KindNotFound, "assignment not found"
	case errors.Is(err, store.ErrRunNotFound), errors.Is(err, store.ErrScanNotFound):
		kind, msg = KindNotFound, "run not found"
	case errors.Is(err, store.ErrTenantAlreadyExists):
		kind, msg = KindConflict, "tenant already exists"
	case errors.Is(err, store.ErrAccountAlreadyExists):
		kind, msg = KindConflict, "username already taken"
	case errors.Is(err, store.ErrClientAlreadyExists):
		kind, msg = KindConflict, "tenant already has a client account"
	case errors.Is(err, store.ErrCheckpointCodeExists):
		kind, msg = KindConflict, "checkpoint code already in use"
	case errors.Is(err, store.ErrCheckpointOrderExists):
		kind, msg = KindInvalid, "duplicate checkpoint order"
	case errors.Is(err, store.ErrScanAlreadyExists):
		kind, msg = KindConflict, "checkpoint already scanned"
	}

	return &Error{Kind: kind, Message: msg, Err: err}
}
