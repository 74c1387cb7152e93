package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is an entry of an office's public agenda.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	BannerPath  string     `json:"banner_path,omitempty"`
	Published   bool       `json:"published"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (e *Event) Validate() error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return Invalid("title", "required", "title is required")
	}
	if e.StartsAt.IsZero() {
		return Invalid("starts_at", "required", "start time is required")
	}
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		return Invalid("ends_at", "ends_before_start", "event cannot end before it starts")
	}
	return nil
}

type EventFilter struct {
	TenantID      uuid.UUID
	PublishedOnly bool
	From          *time.Time
	Limit         int
	Offset        int
}

type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Event, error)
	List(ctx context.Context, f EventFilter) ([]*Event, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
