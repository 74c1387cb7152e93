package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/events"
)

// Lifecycle moves tickets through the status workflow and manages
// assignment. Every status change goes through ChangeStatus.
type Lifecycle struct {
	tickets  domain.TicketRepository
	profiles domain.ProfileRepository
	fx       Effects
}

func NewLifecycle(tickets domain.TicketRepository, profiles domain.ProfileRepository, fx Effects) *Lifecycle {
	return &Lifecycle{tickets: tickets, profiles: profiles, fx: fx}
}

// ChangeStatus moves a ticket to status to. Moving to the current status
// returns the ticket untouched without writing.
func (l *Lifecycle) ChangeStatus(ctx context.Context, actor domain.Actor, ticketID uuid.UUID, to domain.TicketStatus) (*domain.TicketView, error) {
	if !actor.Role.CanChangeStatus() {
		return nil, fmt.Errorf("ticket.Lifecycle.ChangeStatus: %w", domain.ErrForbidden)
	}
	if !to.Valid() {
		return nil, fmt.Errorf("ticket.Lifecycle.ChangeStatus: %w",
			domain.Invalid("status", "invalid_status", "unknown status "+string(to)))
	}

	t, err := l.tickets.GetByID(ctx, actor.TenantID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket.Lifecycle.ChangeStatus: %w", err)
	}

	from := t.Status
	if from == to {
		log.Debug().Str("ticket_id", ticketID.String()).Str("status", string(to)).Msg("ticket: status unchanged")
		return t, nil
	}
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("ticket.Lifecycle.ChangeStatus: %s -> %s: %w", from, to, domain.ErrInvalidTransition)
	}

	if err := l.tickets.UpdateStatus(ctx, actor.TenantID, ticketID, to); err != nil {
		return nil, fmt.Errorf("ticket.Lifecycle.ChangeStatus: %w", err)
	}

	t.Status = to
	t.UpdatedAt = time.Now().UTC()

	l.fx.record(ctx, actor, domain.AuditTicketStatus, t.ID, map[string]any{"from": from, "to": to})
	l.fx.board(ctx, actor.TenantID, BoardEvent{Type: events.TicketStatusChanged, TicketID: t.ID, Number: t.Number, Status: to, AssigneeID: t.AssigneeID})
	l.fx.emit(ctx, events.TicketEvent{
		Type:       events.TicketStatusChanged,
		TenantID:   t.TenantID,
		TicketID:   t.ID,
		Number:     t.Number,
		ActorID:    actor.UserID,
		From:       from,
		Status:     to,
		AssigneeID: t.AssigneeID,
	})
	if t.ReporterID != actor.UserID {
		l.fx.notify(ctx, ticketNotification(t, domain.NotificationTicketStatus, t.ReporterID, actor.UserID,
			fmt.Sprintf("Chamado #%d atualizado", t.Number),
			fmt.Sprintf("O status do seu chamado \"%s\" mudou para %s.", t.Title, to.Label()),
		))
	}

	return t, nil
}

// Assign sets the ticket's assignee. The assignee must be an active staff
// member of the same office.
func (l *Lifecycle) Assign(ctx context.Context, actor domain.Actor, ticketID, assigneeID uuid.UUID) (*domain.TicketView, error) {
	if !actor.Role.CanAssign() {
		return nil, fmt.Errorf("ticket.Lifecycle.Assign: %w", domain.ErrForbidden)
	}

	t, err := l.tickets.GetByID(ctx, actor.TenantID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket.Lifecycle.Assign: %w", err)
	}

	assignee, err := l.profiles.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("ticket.Lifecycle.Assign: assignee: %w", err)
	}
	if !assignee.BelongsTo(actor.TenantID) || !assignee.Active || !assignee.Role.IsStaff() {
		return nil, fmt.Errorf("ticket.Lifecycle.Assign: %w",
			domain.Invalid("assignee_id", "invalid_assignee", "assignee must be active staff of this office"))
	}

	if err := l.tickets.UpdateAssignee(ctx, actor.TenantID, ticketID, &assigneeID); err != nil {
		return nil, fmt.Errorf("ticket.Lifecycle.Assign: %w", err)
	}

	t.AssigneeID = &assigneeID
	t.Assignee = &domain.ProfileSummary{ID: assignee.ID, Name: assignee.Name, AvatarPath: assignee.AvatarPath}
	t.UpdatedAt = time.Now().UTC()

	l.fx.record(ctx, actor, domain.AuditTicketAssigned, t.ID, map[string]any{"assignee_id": assigneeID.String()})
	l.fx.board(ctx, actor.TenantID, BoardEvent{Type: events.TicketAssigned, TicketID: t.ID, Number: t.Number, Status: t.Status, AssigneeID: t.AssigneeID})
	l.fx.emit(ctx, events.TicketEvent{
		Type:       events.TicketAssigned,
		TenantID:   t.TenantID,
		TicketID:   t.ID,
		Number:     t.Number,
		ActorID:    actor.UserID,
		Status:     t.Status,
		AssigneeID: t.AssigneeID,
	})
	if assigneeID != actor.UserID {
		l.fx.notify(ctx, ticketNotification(t, domain.NotificationTicketAssigned, assigneeID, actor.UserID,
			fmt.Sprintf("Chamado #%d atribuído a você", t.Number),
			t.Title,
		))
	}

	return t, nil
}

// AssignToSelf assigns the ticket to the acting staff member.
func (l *Lifecycle) AssignToSelf(ctx context.Context, actor domain.Actor, ticketID uuid.UUID) (*domain.TicketView, error) {
	return l.Assign(ctx, actor, ticketID, actor.UserID)
}

// Unassign clears the assignee.
func (l *Lifecycle) Unassign(ctx context.Context, actor domain.Actor, ticketID uuid.UUID) (*domain.TicketView, error) {
	if !actor.Role.CanAssign() {
		return nil, fmt.Errorf("ticket.Lifecycle.Unassign: %w", domain.ErrForbidden)
	}

	t, err := l.tickets.GetByID(ctx, actor.TenantID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket.Lifecycle.Unassign: %w", err)
	}
	if t.AssigneeID == nil {
		return t, nil
	}

	if err := l.tickets.UpdateAssignee(ctx, actor.TenantID, ticketID, nil); err != nil {
		return nil, fmt.Errorf("ticket.Lifecycle.Unassign: %w", err)
	}

	previous := *t.AssigneeID
	t.AssigneeID = nil
	t.Assignee = nil
	t.UpdatedAt = time.Now().UTC()

	l.fx.record(ctx, actor, domain.AuditTicketAssigned, t.ID, map[string]any{"unassigned": previous.String()})
	l.fx.board(ctx, actor.TenantID, BoardEvent{Type: events.TicketAssigned, TicketID: t.ID, Number: t.Number, Status: t.Status})
	l.fx.emit(ctx, events.TicketEvent{
		Type:     events.TicketAssigned,
		TenantID: t.TenantID,
		TicketID: t.ID,
		Number:   t.Number,
		ActorID:  actor.UserID,
		Status:   t.Status,
	})

	return t, nil
}
