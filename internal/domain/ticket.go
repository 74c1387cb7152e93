package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketStatusNew         TicketStatus = "new"
	TicketStatusUnderReview TicketStatus = "under_review"
	TicketStatusInProgress  TicketStatus = "in_progress"
	TicketStatusResolved    TicketStatus = "resolved"
	TicketStatusClosed      TicketStatus = "closed"
	TicketStatusCancelled   TicketStatus = "cancelled"
)

// TicketStatuses lists every persisted status.
var TicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusUnderReview,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusCancelled,
}

// BoardStatuses are the statuses shown as kanban columns, in column order.
var BoardStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusUnderReview,
	TicketStatusInProgress,
	TicketStatusResolved,
}

// ticketTransitions is the single source of legal status changes.
// The four board statuses move freely between each other; closed is only
// reached from resolved; closed and cancelled are terminal.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusNew:         {TicketStatusUnderReview, TicketStatusInProgress, TicketStatusResolved, TicketStatusCancelled},
	TicketStatusUnderReview: {TicketStatusNew, TicketStatusInProgress, TicketStatusResolved, TicketStatusCancelled},
	TicketStatusInProgress:  {TicketStatusNew, TicketStatusUnderReview, TicketStatusResolved, TicketStatusCancelled},
	TicketStatusResolved:    {TicketStatusNew, TicketStatusUnderReview, TicketStatusInProgress, TicketStatusClosed, TicketStatusCancelled},
	TicketStatusClosed:      nil,
	TicketStatusCancelled:   nil,
}

// Valid reports whether s is one of the six persisted statuses.
func (s TicketStatus) Valid() bool {
	_, ok := ticketTransitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s TicketStatus) Terminal() bool {
	return s.Valid() && len(ticketTransitions[s]) == 0
}

// CanTransitionTo checks the transition table. Staying on the same status
// is not a transition and reports false; callers treat it as a no-op.
func (s TicketStatus) CanTransitionTo(to TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s.
func (s TicketStatus) AllowedTransitions() []TicketStatus {
	out := make([]TicketStatus, len(ticketTransitions[s]))
	copy(out, ticketTransitions[s])
	return out
}

var ticketStatusLabels = map[TicketStatus]string{
	TicketStatusNew:         "Novo",
	TicketStatusUnderReview: "Em análise",
	TicketStatusInProgress:  "Em andamento",
	TicketStatusResolved:    "Resolvido",
	TicketStatusClosed:      "Fechado",
	TicketStatusCancelled:   "Cancelado",
}

// Label is the display name shown to citizens and staff.
func (s TicketStatus) Label() string {
	if l, ok := ticketStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	default:
		return false
	}
}

// Location is the structured address of a ticket. Every field is optional.
type Location struct {
	Street       string `json:"street,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

type Ticket struct {
	ID          uuid.UUID      `json:"id"`
	TenantID    uuid.UUID      `json:"tenant_id"`
	ReporterID  uuid.UUID      `json:"reporter_id"`
	Number      int64          `json:"number"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	CategoryID  *uuid.UUID     `json:"category_id,omitempty"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority"`
	Location    Location       `json:"location"`
	Photos      []string       `json:"photos"`
	AssigneeID  *uuid.UUID     `json:"assignee_id,omitempty"`
	// ResolvedAt and ClosedAt are persisted columns but status changes do
	// not stamp them.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Validate normalizes and checks the fields of a new ticket.
func (t *Ticket) Validate() error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return Invalid("title", "required", "title is required")
	}
	if len(t.Title) > 200 {
		return Invalid("title", "too_long", "title must be at most 200 characters")
	}
	if strings.TrimSpace(t.Description) == "" {
		return Invalid("description", "required", "description is required")
	}
	if t.Priority == "" {
		t.Priority = TicketPriorityMedium
	}
	if !t.Priority.Valid() {
		return Invalid("priority", "invalid_priority", "unknown priority "+string(t.Priority))
	}
	if t.Photos == nil {
		t.Photos = []string{}
	}
	return nil
}

// TicketView is a ticket joined with its reporter, assignee and category.
type TicketView struct {
	Ticket
	Reporter *ProfileSummary  `json:"reporter,omitempty"`
	Assignee *ProfileSummary  `json:"assignee,omitempty"`
	Category *CategorySummary `json:"category,omitempty"`
}

// Ticket sort keys accepted by the query service.
const (
	TicketSortCreatedAt = "created_at"
	TicketSortUpdatedAt = "updated_at"
	TicketSortNumber    = "number"
	TicketSortPriority  = "priority"
	TicketSortStatus    = "status"
)

// TicketFilter narrows a tenant's tickets. TenantID is mandatory.
type TicketFilter struct {
	TenantID    uuid.UUID
	Statuses    []TicketStatus
	ReporterID  *uuid.UUID
	CategoryID  *uuid.UUID
	AssigneeID  *uuid.UUID
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Sort        string
	Descending  bool
	Limit       int
	Offset      int
}

type TicketRepository interface {
	Create(ctx context.Context, t *Ticket) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*TicketView, error)
	List(ctx context.Context, f TicketFilter) ([]*TicketView, error)
	Count(ctx context.Context, f TicketFilter) (int64, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status TicketStatus) error
	UpdateAssignee(ctx context.Context, tenantID, id uuid.UUID, assigneeID *uuid.UUID) error
	AddPhotos(ctx context.Context, tenantID, id uuid.UUID, paths []string) error
	// NextNumber returns the next sequential ticket number of a tenant.
	NextNumber(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
