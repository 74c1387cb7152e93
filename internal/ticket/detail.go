package ticket

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/optimistic"
)

// StatusAssigner is the write side a Detail drives.
type StatusAssigner interface {
	ChangeStatus(ctx context.Context, actor domain.Actor, ticketID uuid.UUID, to domain.TicketStatus) (*domain.TicketView, error)
	Assign(ctx context.Context, actor domain.Actor, ticketID, assigneeID uuid.UUID) (*domain.TicketView, error)
	Unassign(ctx context.Context, actor domain.Actor, ticketID uuid.UUID) (*domain.TicketView, error)
}

const (
	fieldStatus   = "status"
	fieldAssignee = "assignee"
)

// Detail is the view state of one open ticket. Status and assignee edits
// show immediately and roll back when the write fails. One edit per field
// may be in flight.
type Detail struct {
	actor   domain.Actor
	writer  StatusAssigner
	view    *optimistic.Value[domain.TicketView]
	pending *optimistic.Pending[string]
}

func NewDetail(writer StatusAssigner, actor domain.Actor, t *domain.TicketView) *Detail {
	return &Detail{
		actor:   actor,
		writer:  writer,
		view:    optimistic.NewValue(*t),
		pending: optimistic.NewPending[string](),
	}
}

// View returns the ticket as currently displayed.
func (d *Detail) View() domain.TicketView {
	return d.view.Get()
}

// SetStatus changes the status optimistically.
func (d *Detail) SetStatus(ctx context.Context, to domain.TicketStatus) (domain.TicketView, error) {
	done, err := d.pending.Begin(fieldStatus)
	if err != nil {
		return d.View(), fmt.Errorf("ticket.Detail.SetStatus: %w", err)
	}
	defer done()

	next := d.View()
	next.Status = to

	v, err := d.view.Apply(ctx, next, func(ctx context.Context) (domain.TicketView, error) {
		t, err := d.writer.ChangeStatus(ctx, d.actor, next.ID, to)
		if err != nil {
			return domain.TicketView{}, err
		}
		return *t, nil
	})
	if err != nil {
		return v, fmt.Errorf("ticket.Detail.SetStatus: %w", err)
	}
	return v, nil
}

// SetAssignee assigns, or with nil unassigns, optimistically.
func (d *Detail) SetAssignee(ctx context.Context, assigneeID *uuid.UUID) (domain.TicketView, error) {
	done, err := d.pending.Begin(fieldAssignee)
	if err != nil {
		return d.View(), fmt.Errorf("ticket.Detail.SetAssignee: %w", err)
	}
	defer done()

	next := d.View()
	next.AssigneeID = assigneeID
	next.Assignee = nil

	v, err := d.view.Apply(ctx, next, func(ctx context.Context) (domain.TicketView, error) {
		var (
			t   *domain.TicketView
			err error
		)
		if assigneeID == nil {
			t, err = d.writer.Unassign(ctx, d.actor, next.ID)
		} else {
			t, err = d.writer.Assign(ctx, d.actor, next.ID, *assigneeID)
		}
		if err != nil {
			return domain.TicketView{}, err
		}
		return *t, nil
	})
	if err != nil {
		return v, fmt.Errorf("ticket.Detail.SetAssignee: %w", err)
	}
	return v, nil
}
