package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/gabinete/internal/domain"
)

// historyLimit caps a single history read.
const historyLimit = 500

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Record(ctx context.Context, entry *domain.AuditEntry) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_log (id, tenant_id, actor_id, action, resource, resource_id, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.TenantID, entry.ActorID, entry.Action,
		entry.Resource, entry.ResourceID, details, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("auditRepo.Record: %w", err)
	}
	return nil
}

func (r *AuditRepo) ListByResource(ctx context.Context, tenantID uuid.UUID, resource string, resourceID uuid.UUID) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.tenant_id, a.actor_id, COALESCE(p.name, '') AS actor_name,
		        a.action, a.resource, a.resource_id, a.details, a.created_at
		 FROM audit_log a
		 LEFT JOIN profiles p ON p.id = a.actor_id
		 WHERE a.tenant_id = $1 AND a.resource = $2 AND a.resource_id = $3
		 ORDER BY a.created_at, a.id
		 LIMIT $4`,
		tenantID, resource, resourceID, historyLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListByResource: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[domain.AuditEntry])
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListByResource: collect: %w", err)
	}
	return entries, nil
}
