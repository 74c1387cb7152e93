package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTicketStatus   NotificationType = "ticket_status"
	NotificationTicketComment  NotificationType = "ticket_comment"
	NotificationTicketAssigned NotificationType = "ticket_assigned"
	NotificationBroadcast      NotificationType = "broadcast"
	NotificationEvent          NotificationType = "event"
	NotificationSystem         NotificationType = "system"
)

type Notification struct {
	ID          uuid.UUID        `json:"id"`
	TenantID    uuid.UUID        `json:"tenant_id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	SenderID    *uuid.UUID       `json:"sender_id,omitempty"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Type        NotificationType `json:"type"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
	ReadAt      *time.Time       `json:"read_at,omitempty"` // nil = unread
	CreatedAt   time.Time        `json:"created_at"`
}

func (n *Notification) Unread() bool { return n.ReadAt == nil }

// Audience selects whose notifications a viewer lists.
type Audience string

const (
	AudienceSelf     Audience = "self"
	AudienceTenant   Audience = "tenant"
	AudienceCitizens Audience = "citizens"
)

func (a Audience) Valid() bool {
	return a == AudienceSelf || a == AudienceTenant || a == AudienceCitizens
}

type ReadState string

const (
	ReadStateAll    ReadState = "all"
	ReadStateUnread ReadState = "unread"
	ReadStateRead   ReadState = "read"
)

func (r ReadState) Valid() bool {
	return r == ReadStateAll || r == ReadStateUnread || r == ReadStateRead
}

type NotificationFilter struct {
	TenantID  uuid.UUID
	ViewerID  uuid.UUID
	Audience  Audience
	ReadState ReadState
	Ascending bool
	Limit     int
	Offset    int
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	// CreateBulk inserts one notification per recipient in a single statement.
	CreateBulk(ctx context.Context, template *Notification, recipients []uuid.UUID) ([]*Notification, error)
	List(ctx context.Context, f NotificationFilter) ([]*Notification, error)
	ListUnread(ctx context.Context, tenantID, recipientID uuid.UUID) ([]*Notification, error)
	MarkRead(ctx context.Context, tenantID, recipientID, id uuid.UUID) (*Notification, error)
	MarkUnread(ctx context.Context, tenantID, recipientID, id uuid.UUID) (*Notification, error)
	// MarkAllRead stamps every unread notification of the recipient and
	// returns the IDs the update actually touched.
	MarkAllRead(ctx context.Context, tenantID, recipientID uuid.UUID) ([]uuid.UUID, error)
	// CitizenRecipients lists active citizens of the tenant, minus exclude.
	CitizenRecipients(ctx context.Context, tenantID, exclude uuid.UUID) ([]uuid.UUID, error)
}
