package ticket

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/events"
	"github.com/gosuda/gabinete/internal/storage"
)

// NewTicket is the filing form.
type NewTicket struct {
	Title       string
	Description string
	CategoryID  *uuid.UUID
	Priority    domain.TicketPriority
	Location    domain.Location
	Photos      []string
	// ReporterID lets staff file on behalf of a citizen. Ignored for citizens.
	ReporterID *uuid.UUID
}

// NewComment is the comment form.
type NewComment struct {
	Message     string
	Public      bool
	Attachments []string
}

// Service files tickets and manages their comments, photos and history.
type Service struct {
	query      *Query
	tickets    domain.TicketRepository
	comments   domain.CommentRepository
	categories domain.CategoryRepository
	profiles   domain.ProfileRepository
	fx         Effects
}

func NewService(
	query *Query,
	tickets domain.TicketRepository,
	comments domain.CommentRepository,
	categories domain.CategoryRepository,
	profiles domain.ProfileRepository,
	fx Effects,
) *Service {
	return &Service{
		query:      query,
		tickets:    tickets,
		comments:   comments,
		categories: categories,
		profiles:   profiles,
		fx:         fx,
	}
}

// Create files a new ticket in status new with the next tenant number.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in NewTicket) (*domain.TicketView, error) {
	if actor.TenantID == uuid.Nil {
		return nil, fmt.Errorf("ticket.Service.Create: missing tenant: %w", domain.ErrForbidden)
	}

	reporterID := actor.UserID
	if in.ReporterID != nil && *in.ReporterID != actor.UserID {
		if actor.IsCitizen() {
			return nil, fmt.Errorf("ticket.Service.Create: file on behalf: %w", domain.ErrForbidden)
		}
		reporter, err := s.profiles.GetByID(ctx, *in.ReporterID)
		if err != nil {
			return nil, fmt.Errorf("ticket.Service.Create: reporter: %w", err)
		}
		if !reporter.BelongsTo(actor.TenantID) || !reporter.Active {
			return nil, fmt.Errorf("ticket.Service.Create: %w",
				domain.Invalid("reporter_id", "invalid_reporter", "reporter must be an active member of this office"))
		}
		reporterID = reporter.ID
	}

	if in.CategoryID != nil {
		c, err := s.categories.GetByID(ctx, actor.TenantID, *in.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("ticket.Service.Create: category: %w", err)
		}
		if !c.Active {
			return nil, fmt.Errorf("ticket.Service.Create: %w",
				domain.Invalid("category_id", "inactive_category", "category is not active"))
		}
	}
	if err := storage.CheckTenantPaths(actor.TenantID, in.Photos); err != nil {
		return nil, fmt.Errorf("ticket.Service.Create: %w", domain.Invalid("photos", "invalid_path", err.Error()))
	}

	now := time.Now().UTC()
	t := &domain.Ticket{
		ID:          uuid.New(),
		TenantID:    actor.TenantID,
		ReporterID:  reporterID,
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Status:      domain.TicketStatusNew,
		Priority:    in.Priority,
		Location:    in.Location,
		Photos:      in.Photos,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("ticket.Service.Create: %w", err)
	}

	number, err := s.tickets.NextNumber(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("ticket.Service.Create: number: %w", err)
	}
	t.Number = number

	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("ticket.Service.Create: %w", err)
	}

	view, err := s.tickets.GetByID(ctx, actor.TenantID, t.ID)
	if err != nil {
		view = &domain.TicketView{Ticket: *t}
	}

	s.fx.record(ctx, actor, domain.AuditTicketCreated, t.ID, map[string]any{"number": t.Number})
	s.fx.board(ctx, actor.TenantID, BoardEvent{Type: events.TicketCreated, TicketID: t.ID, Number: t.Number, Status: t.Status})
	s.fx.emit(ctx, events.TicketEvent{
		Type:     events.TicketCreated,
		TenantID: t.TenantID,
		TicketID: t.ID,
		Number:   t.Number,
		ActorID:  actor.UserID,
		Status:   t.Status,
	})
	s.fx.alertCreated(ctx, view)

	return view, nil
}

// AddComment posts a comment on a ticket the actor can see. Only staff may
// post internal comments.
func (s *Service) AddComment(ctx context.Context, actor domain.Actor, ticketID uuid.UUID, in NewComment) (*domain.Comment, error) {
	t, err := s.query.Get(ctx, actor, ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket.Service.AddComment: %w", err)
	}
	if !in.Public && !actor.Role.CanWriteInternalComments() {
		return nil, fmt.Errorf("ticket.Service.AddComment: internal comment: %w", domain.ErrForbidden)
	}
	if err := storage.CheckTenantPaths(actor.TenantID, in.Attachments); err != nil {
		return nil, fmt.Errorf("ticket.Service.AddComment: %w", domain.Invalid("attachments", "invalid_path", err.Error()))
	}

	now := time.Now().UTC()
	c := &domain.Comment{
		ID:          uuid.New(),
		TicketID:    t.ID,
		TenantID:    actor.TenantID,
		AuthorID:    actor.UserID,
		Message:     in.Message,
		Public:      in.Public,
		Attachments: in.Attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("ticket.Service.AddComment: %w", err)
	}

	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("ticket.Service.AddComment: %w", err)
	}

	s.fx.record(ctx, actor, domain.AuditTicketComment, t.ID, map[string]any{"comment_id": c.ID.String(), "public": c.Public})

	title := fmt.Sprintf("Novo comentário no chamado #%d", t.Number)
	switch {
	case c.Public && t.ReporterID != actor.UserID:
		s.fx.notify(ctx, ticketNotification(t, domain.NotificationTicketComment, t.ReporterID, actor.UserID, title, excerpt(c.Message)))
	case t.ReporterID == actor.UserID && t.AssigneeID != nil:
		s.fx.notify(ctx, ticketNotification(t, domain.NotificationTicketComment, *t.AssigneeID, actor.UserID, title, excerpt(c.Message)))
	}

	return c, nil
}

// ListComments returns the comments of a ticket the actor may read.
func (s *Service) ListComments(ctx context.Context, actor domain.Actor, ticketID uuid.UUID) ([]*domain.Comment, error) {
	t, err := s.query.Get(ctx, actor, ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket.Service.ListComments: %w", err)
	}

	all, err := s.comments.ListByTicket(ctx, actor.TenantID, t.ID)
	if err != nil {
		return nil, fmt.Errorf("ticket.Service.ListComments: %w", err)
	}

	visible := make([]*domain.Comment, 0, len(all))
	for _, c := range all {
		if c.VisibleTo(actor) {
			visible = append(visible, c)
		}
	}

	return visible, nil
}

// AddPhotos appends uploaded photo paths. The reporter and staff may add.
func (s *Service) AddPhotos(ctx context.Context, actor domain.Actor, ticketID uuid.UUID, paths []string) (*domain.TicketView, error) {
	t, err := s.query.Get(ctx, actor, ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket.Service.AddPhotos: %w", err)
	}
	if len(paths) == 0 {
		return t, nil
	}
	if err := storage.CheckTenantPaths(actor.TenantID, paths); err != nil {
		return nil, fmt.Errorf("ticket.Service.AddPhotos: %w", domain.Invalid("paths", "invalid_path", err.Error()))
	}

	if err := s.tickets.AddPhotos(ctx, actor.TenantID, t.ID, paths); err != nil {
		return nil, fmt.Errorf("ticket.Service.AddPhotos: %w", err)
	}

	t.Photos = append(t.Photos, paths...)
	return t, nil
}

// History returns the audit trail of a ticket. Staff only.
func (s *Service) History(ctx context.Context, actor domain.Actor, ticketID uuid.UUID) ([]*domain.AuditEntry, error) {
	if !actor.Role.IsStaff() {
		return nil, fmt.Errorf("ticket.Service.History: %w", domain.ErrForbidden)
	}
	if s.fx.Audit == nil {
		return []*domain.AuditEntry{}, nil
	}

	t, err := s.query.Get(ctx, actor, ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket.Service.History: %w", err)
	}

	entries, err := s.fx.Audit.ListByResource(ctx, actor.TenantID, "ticket", t.ID)
	if err != nil {
		return nil, fmt.Errorf("ticket.Service.History: %w", err)
	}

	return entries, nil
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= 140 {
		return s
	}
	return string(r[:137]) + "..."
}
