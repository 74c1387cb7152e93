package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Profile is a user of the system. The tenant is nullable: citizens may
// sign up before being linked to an office.
type Profile struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     *uuid.UUID `json:"tenant_id,omitempty"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // argon2id
	Name         string     `json:"name"`
	AvatarPath   string     `json:"avatar_path,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BelongsTo reports whether the profile is linked to tenantID.
func (p *Profile) BelongsTo(tenantID uuid.UUID) bool {
	return p.TenantID != nil && *p.TenantID == tenantID
}

// ProfileSummary is the joined view of a profile embedded in other rows.
type ProfileSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	AvatarPath string    `json:"avatar_path,omitempty"`
}

type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	UpdateRole(ctx context.Context, tenantID, id uuid.UUID, role Role) error
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, role Role) ([]*Profile, error)
}
