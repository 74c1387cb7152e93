package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID       uuid.UUID `json:"id"`
	TicketID uuid.UUID `json:"ticket_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	AuthorID uuid.UUID `json:"author_id"`
	Message  string    `json:"message"`
	// Public comments are visible to the reporter; internal ones only to staff.
	Public      bool            `json:"public"`
	Attachments []string        `json:"attachments"`
	Author      *ProfileSummary `json:"author,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (c *Comment) Validate() error {
	c.Message = strings.TrimSpace(c.Message)
	if c.Message == "" {
		return Invalid("message", "required", "message is required")
	}
	if c.Attachments == nil {
		c.Attachments = []string{}
	}
	return nil
}

// VisibleTo reports whether the actor may read the comment.
func (c *Comment) VisibleTo(a Actor) bool {
	return c.Public || a.Role.CanReadInternalComments() || c.AuthorID == a.UserID
}

type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	ListByTicket(ctx context.Context, tenantID, ticketID uuid.UUID) ([]*Comment, error)
}
