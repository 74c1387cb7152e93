package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/gabinete/internal/domain"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

const eventColumns = `id, tenant_id, title, description, location, starts_at, ends_at, banner_path, published, created_by, created_at, updated_at`

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.TenantID, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt,
		e.BannerPath, e.Published, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("eventRepo.Create: %w", err)
	}

	return nil
}

func (r *EventRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("eventRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("eventRepo.GetByID: %w", err)
	}

	return e, nil
}

// List returns events in start order. From drops events that ended (or,
// without an end, started) before it.
func (r *EventRepo) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		 WHERE tenant_id = $1 AND (NOT $2 OR published)
		   AND ($3::timestamptz IS NULL OR COALESCE(ends_at, starts_at) >= $3)
		 ORDER BY starts_at`
	args := []any{f.TenantID, f.PublishedOnly, f.From}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("eventRepo.List: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("eventRepo.List: scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventRepo.List: rows: %w", err)
	}

	return events, nil
}

func (r *EventRepo) Update(ctx context.Context, e *domain.Event) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events
		 SET title = $3, description = $4, location = $5, starts_at = $6, ends_at = $7,
		     banner_path = $8, published = $9, updated_at = now()
		 WHERE tenant_id = $1 AND id = $2`,
		e.TenantID, e.ID, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt,
		e.BannerPath, e.Published,
	)
	if err != nil {
		return fmt.Errorf("eventRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("eventRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *EventRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM events WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("eventRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("eventRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(
		&e.ID, &e.TenantID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt,
		&e.BannerPath, &e.Published, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}
