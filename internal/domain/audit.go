package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// History actions recorded against a ticket.
const (
	AuditTicketCreated  = "ticket.created"
	AuditTicketStatus   = "ticket.status_changed"
	AuditTicketAssigned = "ticket.assigned"
	AuditTicketComment  = "ticket.commented"
)

// AuditEntry is one line of a ticket's history. ActorName is filled on
// reads from the acting profile and is empty for deleted profiles.
type AuditEntry struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	TenantID   uuid.UUID      `json:"tenant_id" db:"tenant_id"`
	ActorID    uuid.UUID      `json:"actor_id" db:"actor_id"`
	ActorName  string         `json:"actor_name,omitempty" db:"actor_name"`
	Action     string         `json:"action" db:"action"`
	Resource   string         `json:"resource" db:"resource"`
	ResourceID uuid.UUID      `json:"resource_id" db:"resource_id"`
	Details    map[string]any `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

type AuditRepository interface {
	Record(ctx context.Context, entry *AuditEntry) error
	// ListByResource returns the history of one resource, oldest first.
	ListByResource(ctx context.Context, tenantID uuid.UUID, resource string, resourceID uuid.UUID) ([]*AuditEntry, error)
}
