// Package ticket holds the ticket query, lifecycle and filing services.
package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/gabinete/internal/domain"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
	// BoardLimit caps the tickets loaded per board refresh.
	BoardLimit = 500
)

// Filter is the caller-facing query. Tenant and, for citizens, reporter
// scope come from the actor and cannot be set here.
type Filter struct {
	Statuses    []domain.TicketStatus
	ReporterID  *uuid.UUID
	CategoryID  *uuid.UUID
	AssigneeID  *uuid.UUID
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Sort        string // created_at (default), updated_at, number, priority, status
	Order       string // asc or desc (default)
	Limit       int
	Offset      int
}

type Page struct {
	Items  []*domain.TicketView `json:"items"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// Query is the ticket read path.
type Query struct {
	tickets domain.TicketRepository
}

func NewQuery(tickets domain.TicketRepository) *Query {
	return &Query{tickets: tickets}
}

// List returns one page of the actor's visible tickets.
func (q *Query) List(ctx context.Context, actor domain.Actor, f Filter) (*Page, error) {
	return q.list(ctx, actor, f, MaxLimit)
}

func (q *Query) list(ctx context.Context, actor domain.Actor, f Filter, maxLimit int) (*Page, error) {
	tf, err := q.scope(actor, f, maxLimit)
	if err != nil {
		return nil, fmt.Errorf("ticket.Query.List: %w", err)
	}

	items, err := q.tickets.List(ctx, tf)
	if err != nil {
		return nil, fmt.Errorf("ticket.Query.List: %w", err)
	}
	total, err := q.tickets.Count(ctx, tf)
	if err != nil {
		return nil, fmt.Errorf("ticket.Query.List: count: %w", err)
	}

	return &Page{
		Items:  sameTenant(actor.TenantID, items),
		Total:  total,
		Limit:  tf.Limit,
		Offset: tf.Offset,
	}, nil
}

// Get loads one ticket. Citizens only see tickets they reported; any other
// ticket is reported as missing.
func (q *Query) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.TicketView, error) {
	t, err := q.tickets.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, fmt.Errorf("ticket.Query.Get: %w", err)
	}
	if t.TenantID != actor.TenantID {
		return nil, fmt.Errorf("ticket.Query.Get: %w", domain.ErrNotFound)
	}
	if !actor.Role.CanReadAllTickets() && t.ReporterID != actor.UserID {
		return nil, fmt.Errorf("ticket.Query.Get: %w", domain.ErrNotFound)
	}

	return t, nil
}

// Board loads the four board columns keyed by status.
func (q *Query) Board(ctx context.Context, actor domain.Actor) (map[domain.TicketStatus][]*domain.TicketView, error) {
	page, err := q.list(ctx, actor, Filter{
		Statuses: domain.BoardStatuses,
		Sort:     domain.TicketSortNumber,
		Order:    "asc",
		Limit:    BoardLimit,
	}, BoardLimit)
	if err != nil {
		return nil, fmt.Errorf("ticket.Query.Board: %w", err)
	}

	columns := make(map[domain.TicketStatus][]*domain.TicketView, len(domain.BoardStatuses))
	for _, s := range domain.BoardStatuses {
		columns[s] = []*domain.TicketView{}
	}
	for _, t := range page.Items {
		columns[t.Status] = append(columns[t.Status], t)
	}

	return columns, nil
}

// scope validates f and turns it into a repository filter bound to the
// actor's tenant.
func (q *Query) scope(actor domain.Actor, f Filter, maxLimit int) (domain.TicketFilter, error) {
	if actor.TenantID == uuid.Nil {
		return domain.TicketFilter{}, fmt.Errorf("missing tenant: %w", domain.ErrForbidden)
	}

	for _, s := range f.Statuses {
		if !s.Valid() {
			return domain.TicketFilter{}, domain.Invalid("status", "invalid_status", "unknown status "+string(s))
		}
	}

	switch f.Sort {
	case "":
		f.Sort = domain.TicketSortCreatedAt
	case domain.TicketSortCreatedAt, domain.TicketSortUpdatedAt, domain.TicketSortNumber,
		domain.TicketSortPriority, domain.TicketSortStatus:
	default:
		return domain.TicketFilter{}, domain.Invalid("sort", "invalid_sort", "unknown sort key "+f.Sort)
	}

	var desc bool
	switch f.Order {
	case "", "desc":
		desc = true
	case "asc":
	default:
		return domain.TicketFilter{}, domain.Invalid("order", "invalid_order", "order must be asc or desc")
	}

	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedTo.Before(*f.CreatedFrom) {
		return domain.TicketFilter{}, domain.Invalid("created_to", "invalid_range", "created_to precedes created_from")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	tf := domain.TicketFilter{
		TenantID:    actor.TenantID,
		Statuses:    f.Statuses,
		ReporterID:  f.ReporterID,
		CategoryID:  f.CategoryID,
		AssigneeID:  f.AssigneeID,
		Search:      f.Search,
		CreatedFrom: f.CreatedFrom,
		CreatedTo:   f.CreatedTo,
		Sort:        f.Sort,
		Descending:  desc,
		Limit:       limit,
		Offset:      offset,
	}
	if !actor.Role.CanReadAllTickets() {
		self := actor.UserID
		tf.ReporterID = &self
	}

	return tf, nil
}

// sameTenant drops rows from any other tenant. The repository already
// filters by tenant; a hit here means a broken query.
func sameTenant(tenantID uuid.UUID, items []*domain.TicketView) []*domain.TicketView {
	out := items[:0:0]
	for _, t := range items {
		if t.TenantID != tenantID {
			log.Error().
				Str("tenant_id", tenantID.String()).
				Str("ticket_id", t.ID.String()).
				Msg("ticket: cross-tenant row dropped")
			continue
		}
		out = append(out, t)
	}
	if out == nil {
		out = []*domain.TicketView{}
	}
	return out
}
