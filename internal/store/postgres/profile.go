package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/gabinete/internal/domain"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `id, tenant_id, email, password_hash, name, avatar_path, phone, role, active, created_at, updated_at`

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, tenant_id, email, password_hash, name, avatar_path, phone, role, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.TenantID, strings.ToLower(p.Email), p.PasswordHash, p.Name,
		p.AvatarPath, p.Phone, p.Role, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.Create: %w", err)
	}

	return nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profileRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("profileRepo.GetByID: %w", err)
	}

	return p, nil
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = $1`,
		strings.ToLower(email),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profileRepo.GetByEmail: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("profileRepo.GetByEmail: %w", err)
	}

	return p, nil
}

// Update saves the self-editable fields of a profile.
func (r *ProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET name = $2, avatar_path = $3, phone = $4, updated_at = now()
		 WHERE id = $1`,
		p.ID, p.Name, p.AvatarPath, p.Phone,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profileRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ProfileRepo) UpdateRole(ctx context.Context, tenantID, id uuid.UUID, role domain.Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET role = $3, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, role,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.UpdateRole: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profileRepo.UpdateRole: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ProfileRepo) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET active = false, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.Deactivate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profileRepo.Deactivate: %w", domain.ErrNotFound)
	}

	return nil
}

// ListByTenant lists the tenant's profiles, optionally narrowed to one role.
func (r *ProfileRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, role domain.Role) ([]*domain.Profile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles
		 WHERE tenant_id = $1 AND ($2 = '' OR role = $2)
		 ORDER BY name
		 LIMIT 1000`,
		tenantID, string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("profileRepo.ListByTenant: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("profileRepo.ListByTenant: scan: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profileRepo.ListByTenant: rows: %w", err)
	}

	return profiles, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(
		&p.ID, &p.TenantID, &p.Email, &p.PasswordHash, &p.Name,
		&p.AvatarPath, &p.Phone, &p.Role, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
