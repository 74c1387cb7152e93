package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields a category form may submit.
func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return Invalid("name", "required", "name is required")
	}
	if c.Color != "" && !ValidHexColor(c.Color) {
		return Invalid("color", "invalid_color", "color must be a hex value")
	}
	return nil
}

// CategorySummary is the joined view of a category embedded in tickets.
type CategorySummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Icon  string    `json:"icon"`
}

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)
	List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*Category, error)
	Update(ctx context.Context, c *Category) error
	// Delete fails with ErrInUse while any ticket references the category.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
