package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/gabinete/internal/domain"
)

type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, tenant_id, name, color, icon, sort_order, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.TenantID, c.Name, c.Color, c.Icon, c.SortOrder, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("categoryRepo.Create: %w", err)
	}

	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Category, error) {
	var c domain.Category

	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, name, color, icon, sort_order, active, created_at, updated_at
		 FROM categories WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	).Scan(&c.ID, &c.TenantID, &c.Name, &c.Color, &c.Icon, &c.SortOrder, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("categoryRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("categoryRepo.GetByID: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, name, color, icon, sort_order, active, created_at, updated_at
		 FROM categories WHERE tenant_id = $1 AND (NOT $2 OR active)
		 ORDER BY sort_order, name
		 LIMIT 1000`,
		tenantID, activeOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("categoryRepo.List: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Color, &c.Icon, &c.SortOrder, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("categoryRepo.List: scan: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("categoryRepo.List: rows: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $3, color = $4, icon = $5, sort_order = $6, active = $7, updated_at = now()
		 WHERE tenant_id = $1 AND id = $2`,
		c.TenantID, c.ID, c.Name, c.Color, c.Icon, c.SortOrder, c.Active,
	)
	if err != nil {
		return fmt.Errorf("categoryRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("categoryRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM categories WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("categoryRepo.Delete: %w", domain.ErrInUse)
	}
	if err != nil {
		return fmt.Errorf("categoryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("categoryRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
