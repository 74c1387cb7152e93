package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/gabinete/internal/domain"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

func (r *CommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ticket_comments (id, ticket_id, tenant_id, author_id, message, public, attachments, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.TicketID, c.TenantID, c.AuthorID, c.Message, c.Public, c.Attachments, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("commentRepo.Create: %w", err)
	}

	return nil
}

// ListByTicket returns every comment of the ticket, oldest first, with the
// author summary joined in. Visibility is filtered by the caller.
func (r *CommentRepo) ListByTicket(ctx context.Context, tenantID, ticketID uuid.UUID) ([]*domain.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.ticket_id, c.tenant_id, c.author_id, c.message, c.public, c.attachments,
		        c.created_at, c.updated_at, p.name, p.avatar_path
		 FROM ticket_comments c
		 JOIN profiles p ON p.id = c.author_id
		 WHERE c.tenant_id = $1 AND c.ticket_id = $2
		 ORDER BY c.created_at
		 LIMIT 1000`,
		tenantID, ticketID,
	)
	if err != nil {
		return nil, fmt.Errorf("commentRepo.ListByTicket: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		author := domain.ProfileSummary{}
		if err := rows.Scan(
			&c.ID, &c.TicketID, &c.TenantID, &c.AuthorID, &c.Message, &c.Public, &c.Attachments,
			&c.CreatedAt, &c.UpdatedAt, &author.Name, &author.AvatarPath,
		); err != nil {
			return nil, fmt.Errorf("commentRepo.ListByTicket: scan: %w", err)
		}
		author.ID = c.AuthorID
		c.Author = &author
		if c.Attachments == nil {
			c.Attachments = []string{}
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("commentRepo.ListByTicket: rows: %w", err)
	}

	return comments, nil
}
