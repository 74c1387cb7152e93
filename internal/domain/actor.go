package domain

import "github.com/google/uuid"

// Actor is the authenticated caller of an operation, resolved from the
// request context by the API layer.
type Actor struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     Role
}

// IsCitizen reports whether the actor acts as a citizen.
func (a Actor) IsCitizen() bool { return !a.Role.IsStaff() }
