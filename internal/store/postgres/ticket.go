package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/gabinete/internal/domain"
)

// likeEscaper quotes LIKE wildcards so search text matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type TicketRepo struct {
	pool *pgxpool.Pool
}

func NewTicketRepo(pool *pgxpool.Pool) *TicketRepo {
	return &TicketRepo{pool: pool}
}

// ticketSelect joins each ticket with the summaries of its reporter,
// assignee and category.
const ticketSelect = `SELECT t.id, t.tenant_id, t.reporter_id, t.number, t.title, t.description,
       t.category_id, t.status, t.priority,
       t.street, t.complement, t.neighborhood, t.city, t.state, t.postal_code,
       t.photos, t.assignee_id, t.resolved_at, t.closed_at, t.created_at, t.updated_at,
       r.id, r.name, r.avatar_path,
       a.id, a.name, a.avatar_path,
       c.id, c.name, c.color, c.icon
FROM tickets t
LEFT JOIN profiles r ON r.id = t.reporter_id
LEFT JOIN profiles a ON a.id = t.assignee_id
LEFT JOIN categories c ON c.id = t.category_id`

func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tickets (id, tenant_id, reporter_id, number, title, description, category_id, status, priority,
		                      street, complement, neighborhood, city, state, postal_code, photos, assignee_id,
		                      created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		t.ID, t.TenantID, t.ReporterID, t.Number, t.Title, t.Description, t.CategoryID, t.Status, t.Priority,
		t.Location.Street, t.Location.Complement, t.Location.Neighborhood, t.Location.City,
		t.Location.State, t.Location.PostalCode, t.Photos, t.AssigneeID,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ticketRepo.Create: %w", err)
	}

	return nil
}

func (r *TicketRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.TicketView, error) {
	v, err := scanTicketView(r.pool.QueryRow(ctx,
		ticketSelect+` WHERE t.tenant_id = $1 AND t.id = $2`,
		tenantID, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ticketRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ticketRepo.GetByID: %w", err)
	}

	return v, nil
}

func (r *TicketRepo) List(ctx context.Context, f domain.TicketFilter) ([]*domain.TicketView, error) {
	where, args := buildTicketWhere(f)

	query := ticketSelect + " " + where + " ORDER BY " + ticketOrderBy(f.Sort, f.Descending)
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
		return nil, fmt.Errorf("ticketRepo.List: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.TicketView
	for rows.Next() {
		v, err := scanTicketView(rows)
		if err != nil {
			return nil, fmt.Errorf("ticketRepo.List: scan: %w", err)
		}
		tickets = append(tickets, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ticketRepo.List: rows: %w", err)
	}

	return tickets, nil
}

// Count returns how many tickets match f, ignoring its paging.
func (r *TicketRepo) Count(ctx context.Context, f domain.TicketFilter) (int64, error) {
	where, args := buildTicketWhere(f)

	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tickets t `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("ticketRepo.Count: %w", err)
	}

	return n, nil
}

func (r *TicketRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.TicketStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tickets SET status = $3, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, status,
	)
	if err != nil {
		return fmt.Errorf("ticketRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticketRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TicketRepo) UpdateAssignee(ctx context.Context, tenantID, id uuid.UUID, assigneeID *uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tickets SET assignee_id = $3, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, assigneeID,
	)
	if err != nil {
		return fmt.Errorf("ticketRepo.UpdateAssignee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticketRepo.UpdateAssignee: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TicketRepo) AddPhotos(ctx context.Context, tenantID, id uuid.UUID, paths []string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tickets SET photos = photos || $3::text[], updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, paths,
	)
	if err != nil {
		return fmt.Errorf("ticketRepo.AddPhotos: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticketRepo.AddPhotos: %w", domain.ErrNotFound)
	}

	return nil
}

// NextNumber draws from the tenant counter function. Databases without the
// function fall back to max+1; the unique (tenant_id, number) constraint
// rejects the rare collision that fallback allows.
func (r *TicketRepo) NextNumber(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64

	err := r.pool.QueryRow(ctx, `SELECT next_ticket_number($1)`, tenantID).Scan(&n)
	if isUndefinedFunction(err) {
		err = r.pool.QueryRow(ctx,
			`SELECT COALESCE(MAX(number), 0) + 1 FROM tickets WHERE tenant_id = $1`,
			tenantID,
		).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("ticketRepo.NextNumber: %w", err)
	}

	return n, nil
}

// buildTicketWhere renders the filter as a WHERE clause with positional
// arguments. The tenant predicate is always first.
func buildTicketWhere(f domain.TicketFilter) (string, []any) {
	clauses := []string{"t.tenant_id = $1"}
	args := []any{f.TenantID}

	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		clauses = append(clauses, "t.status = ANY("+next(statuses)+")")
	}
	if f.ReporterID != nil {
		clauses = append(clauses, "t.reporter_id = "+next(*f.ReporterID))
	}
	if f.CategoryID != nil {
		clauses = append(clauses, "t.category_id = "+next(*f.CategoryID))
	}
	if f.AssigneeID != nil {
		clauses = append(clauses, "t.assignee_id = "+next(*f.AssigneeID))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := next("%" + likeEscaper.Replace(s) + "%")
		clauses = append(clauses, "(t.title ILIKE "+p+" OR t.description ILIKE "+p+")")
	}
	if f.CreatedFrom != nil {
		clauses = append(clauses, "t.created_at >= "+next(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		clauses = append(clauses, "t.created_at <= "+next(*f.CreatedTo))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// ticketOrderBy maps a sort key to its ORDER BY expression. Unknown keys
// sort by creation time. Ties break on the ticket number.
func ticketOrderBy(sort string, desc bool) string {
	var expr string
	switch sort {
	case domain.TicketSortUpdatedAt:
		expr = "t.updated_at"
	case domain.TicketSortNumber:
		expr = "t.number"
	case domain.TicketSortPriority:
		expr = "CASE t.priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"
	case domain.TicketSortStatus:
		expr = "t.status"
	default:
		expr = "t.created_at"
	}

	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	if expr == "t.number" {
		return expr + " " + dir
	}
	return expr + " " + dir + ", t.number " + dir
}

func scanTicketView(row pgx.Row) (*domain.TicketView, error) {
	var v domain.TicketView
	var (
		reporterID, assigneeID, categoryID        *uuid.UUID
		reporterName, reporterAvatar              *string
		assigneeName, assigneeAvatar              *string
		categoryName, categoryColor, categoryIcon *string
	)

	t := &v.Ticket
	if err := row.Scan(
		&t.ID, &t.TenantID, &t.ReporterID, &t.Number, &t.Title, &t.Description,
		&t.CategoryID, &t.Status, &t.Priority,
		&t.Location.Street, &t.Location.Complement, &t.Location.Neighborhood,
		&t.Location.City, &t.Location.State, &t.Location.PostalCode,
		&t.Photos, &t.AssigneeID, &t.ResolvedAt, &t.ClosedAt, &t.CreatedAt, &t.UpdatedAt,
		&reporterID, &reporterName, &reporterAvatar,
		&assigneeID, &assigneeName, &assigneeAvatar,
		&categoryID, &categoryName, &categoryColor, &categoryIcon,
	); err != nil {
		return nil, err
	}

	v.Reporter = profileSummary(reporterID, reporterName, reporterAvatar)
	v.Assignee = profileSummary(assigneeID, assigneeName, assigneeAvatar)
	if categoryID != nil {
		v.Category = &domain.CategorySummary{
			ID:    *categoryID,
			Name:  deref(categoryName),
			Color: deref(categoryColor),
			Icon:  deref(categoryIcon),
		}
	}
	if t.Photos == nil {
		t.Photos = []string{}
	}

	return &v, nil
}

func profileSummary(id *uuid.UUID, name, avatar *string) *domain.ProfileSummary {
	if id == nil {
		return nil
	}
	return &domain.ProfileSummary{ID: *id, Name: deref(name), AvatarPath: deref(avatar)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
