package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/gabinete/internal/domain"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

const notificationColumns = `id, tenant_id, recipient_id, sender_id, title, message, type, metadata, read_at, created_at`

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	metadata, err := marshalMetadata(n.Metadata)
	if err != nil {
		return fmt.Errorf("notificationRepo.Create: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO notifications (id, tenant_id, recipient_id, sender_id, title, message, type, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.TenantID, n.RecipientID, n.SenderID, n.Title, n.Message, n.Type, metadata, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("notificationRepo.Create: %w", err)
	}

	return nil
}

// CreateBulk fans the template out to every recipient with one INSERT.
func (r *NotificationRepo) CreateBulk(ctx context.Context, template *domain.Notification, recipients []uuid.UUID) ([]*domain.Notification, error) {
	if len(recipients) == 0 {
		return nil, nil
	}

	metadata, err := marshalMetadata(template.Metadata)
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.CreateBulk: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`INSERT INTO notifications (tenant_id, recipient_id, sender_id, title, message, type, metadata)
		 SELECT $1, rcpt, $2, $3, $4, $5, $6 FROM unnest($7::uuid[]) AS rcpt
		 RETURNING `+notificationColumns,
		template.TenantID, template.SenderID, template.Title, template.Message, template.Type, metadata, recipients,
	)
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.CreateBulk: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows, "notificationRepo.CreateBulk")
}

func (r *NotificationRepo) List(ctx context.Context, f domain.NotificationFilter) ([]*domain.Notification, error) {
	where, args := buildNotificationWhere(f)

	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications ` + where + ` ORDER BY created_at ` + order
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
		return nil, fmt.Errorf("notificationRepo.List: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows, "notificationRepo.List")
}

func (r *NotificationRepo) ListUnread(ctx context.Context, tenantID, recipientID uuid.UUID) ([]*domain.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE tenant_id = $1 AND recipient_id = $2 AND read_at IS NULL
		 ORDER BY created_at DESC
		 LIMIT 1000`,
		tenantID, recipientID,
	)
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.ListUnread: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows, "notificationRepo.ListUnread")
}

// MarkRead stamps read_at once; reading an already read notification keeps
// the original timestamp.
func (r *NotificationRepo) MarkRead(ctx context.Context, tenantID, recipientID, id uuid.UUID) (*domain.Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx,
		`UPDATE notifications SET read_at = COALESCE(read_at, now())
		 WHERE tenant_id = $1 AND recipient_id = $2 AND id = $3
		 RETURNING `+notificationColumns,
		tenantID, recipientID, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("notificationRepo.MarkRead: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.MarkRead: %w", err)
	}

	return n, nil
}

func (r *NotificationRepo) MarkUnread(ctx context.Context, tenantID, recipientID, id uuid.UUID) (*domain.Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx,
		`UPDATE notifications SET read_at = NULL
		 WHERE tenant_id = $1 AND recipient_id = $2 AND id = $3
		 RETURNING `+notificationColumns,
		tenantID, recipientID, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("notificationRepo.MarkUnread: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.MarkUnread: %w", err)
	}

	return n, nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, tenantID, recipientID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE notifications SET read_at = now()
		 WHERE tenant_id = $1 AND recipient_id = $2 AND read_at IS NULL
		 RETURNING id`,
		tenantID, recipientID,
	)
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.MarkAllRead: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.MarkAllRead: %w", err)
	}

	return ids, nil
}

func (r *NotificationRepo) CitizenRecipients(ctx context.Context, tenantID, exclude uuid.UUID) ([]uuid.UUID, error) {
	ids, err := r.collectIDs(ctx, `SELECT tenant_citizen_ids($1, $2)`, tenantID, exclude)
	if isUndefinedFunction(err) {
		ids, err = r.collectIDs(ctx,
			`SELECT id FROM profiles
			 WHERE tenant_id = $1 AND role = 'citizen' AND active AND id <> $2`,
			tenantID, exclude,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.CitizenRecipients: %w", err)
	}

	return ids, nil
}

func (r *NotificationRepo) collectIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func buildNotificationWhere(f domain.NotificationFilter) (string, []any) {
	clauses := []string{"tenant_id = $1"}
	args := []any{f.TenantID}

	switch f.Audience {
	case domain.AudienceTenant:
	case domain.AudienceCitizens:
		clauses = append(clauses, "recipient_id IN (SELECT id FROM profiles WHERE tenant_id = $1 AND role = 'citizen')")
	default:
		args = append(args, f.ViewerID)
		clauses = append(clauses, "recipient_id = $"+strconv.Itoa(len(args)))
	}

	switch f.ReadState {
	case domain.ReadStateUnread:
		clauses = append(clauses, "read_at IS NULL")
	case domain.ReadStateRead:
		clauses = append(clauses, "read_at IS NOT NULL")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return b, nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var metadata []byte

	if err := row.Scan(
		&n.ID, &n.TenantID, &n.RecipientID, &n.SenderID, &n.Title, &n.Message,
		&n.Type, &metadata, &n.ReadAt, &n.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}

	return &n, nil
}

func scanNotifications(rows pgx.Rows, caller string) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return out, nil
}
