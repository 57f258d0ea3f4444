package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents an organizational unit (a security company's customer) in the system.
// Each tenant owns routes and the admin, client and guard accounts working them.
type Tenant struct {
	TenantID  uuid.UUID // UUIDv7
	Name      string
	Active    bool // false while the tenant is frozen
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFrozen returns true if the tenant has been frozen by a superadmin.
func (t *Tenant) IsFrozen() bool {
	return !t.Active
}
