// Package kanban keeps the column state of a ticket board and reconciles
// drag-and-drop moves with the lifecycle service.
package kanban

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/gabinete/internal/domain"
)

var (
	// ErrDragDisabled is returned when the actor may not move cards.
	ErrDragDisabled = errors.New("kanban: drag disabled for this role")
	// ErrNotOnBoard is returned when the dragged ticket is in no column.
	ErrNotOnBoard = errors.New("kanban: ticket not on board")
	// ErrNoDrag is returned by DragOver and DragEnd without a DragStart.
	ErrNoDrag = errors.New("kanban: no drag in progress")
)

// Loader fetches the board columns keyed by status.
type Loader interface {
	Board(ctx context.Context, actor domain.Actor) (map[domain.TicketStatus][]*domain.TicketView, error)
}

// StatusChanger persists a status change.
type StatusChanger interface {
	ChangeStatus(ctx context.Context, actor domain.Actor, ticketID uuid.UUID, to domain.TicketStatus) (*domain.TicketView, error)
}

// Target is where a card is dropped: a column, or another card whose
// column is used.
type Target struct {
	Column   domain.TicketStatus `json:"column,omitempty"`
	TicketID uuid.UUID           `json:"over_ticket_id,omitempty"`
}

type drag struct {
	actor    domain.Actor
	ticketID uuid.UUID
	source   domain.TicketStatus
	target   domain.TicketStatus // empty until DragOver resolves one
}

// Board is the column state of one viewer's board.
type Board struct {
	loader  Loader
	changer StatusChanger

	mu      sync.Mutex
	viewer  domain.Actor
	columns map[domain.TicketStatus][]*domain.TicketView
	active  *drag
}

func NewBoard(loader Loader, changer StatusChanger) *Board {
	return &Board{
		loader:  loader,
		changer: changer,
		columns: emptyColumns(),
	}
}

func emptyColumns() map[domain.TicketStatus][]*domain.TicketView {
	cols := make(map[domain.TicketStatus][]*domain.TicketView, len(domain.BoardStatuses))
	for _, s := range domain.BoardStatuses {
		cols[s] = []*domain.TicketView{}
	}
	return cols
}

// Load rebuilds every column from the loader.
func (b *Board) Load(ctx context.Context, viewer domain.Actor) error {
	loaded, err := b.loader.Board(ctx, viewer)
	if err != nil {
		return fmt.Errorf("kanban.Board.Load: %w", err)
	}

	cols := emptyColumns()
	for _, s := range domain.BoardStatuses {
		cols[s] = append(cols[s], loaded[s]...)
	}

	b.mu.Lock()
	b.viewer = viewer
	b.columns = cols
	b.mu.Unlock()
	return nil
}

// Columns returns a snapshot of the board in column order.
func (b *Board) Columns() map[domain.TicketStatus][]domain.TicketView {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[domain.TicketStatus][]domain.TicketView, len(b.columns))
	for s, col := range b.columns {
		items := make([]domain.TicketView, len(col))
		for i, t := range col {
			items[i] = *t
		}
		out[s] = items
	}
	return out
}

// DragStart picks up a card.
func (b *Board) DragStart(actor domain.Actor, ticketID uuid.UUID) error {
	if !actor.Role.CanDragKanban() {
		return ErrDragDisabled
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	source, ok := b.locate(ticketID)
	if !ok {
		return fmt.Errorf("kanban.Board.DragStart: %s: %w", ticketID, ErrNotOnBoard)
	}
	b.active = &drag{actor: actor, ticketID: ticketID, source: source}
	return nil
}

// DragOver sets the drop target. A card target resolves to the column
// holding that card; an unresolvable target clears it.
func (b *Board) DragOver(target Target) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active == nil {
		return ErrNoDrag
	}
	b.active.target = b.resolve(target)
	return nil
}

// DragEnd drops the card. Dropping nowhere or on the source column does
// nothing. Otherwise the card moves locally and the status change is
// persisted; when that fails every column is reloaded and the error is
// returned.
func (b *Board) DragEnd(ctx context.Context) (*domain.TicketView, error) {
	b.mu.Lock()
	d := b.active
	b.active = nil
	if d == nil {
		b.mu.Unlock()
		return nil, ErrNoDrag
	}
	if d.target == "" {
		b.mu.Unlock()
		return nil, nil
	}
	if d.target == d.source {
		b.mu.Unlock()
		log.Debug().Str("ticket_id", d.ticketID.String()).Str("column", string(d.source)).Msg("kanban: dropped on source column")
		return nil, nil
	}
	moved := b.move(d.ticketID, d.source, d.target)
	viewer := b.viewer
	b.mu.Unlock()

	if moved == nil {
		return nil, fmt.Errorf("kanban.Board.DragEnd: %s: %w", d.ticketID, ErrNotOnBoard)
	}

	t, err := b.changer.ChangeStatus(ctx, d.actor, d.ticketID, d.target)
	if err != nil {
		log.Warn().Err(err).
			Str("ticket_id", d.ticketID.String()).
			Str("from", string(d.source)).
			Str("to", string(d.target)).
			Msg("kanban: status change failed, reloading board")
		if viewer.TenantID == uuid.Nil {
			viewer = d.actor
		}
		if rerr := b.Load(ctx, viewer); rerr != nil {
			log.Error().Err(rerr).Msg("kanban: reload after failed move")
		}
		return nil, fmt.Errorf("kanban.Board.DragEnd: %w", err)
	}

	b.mu.Lock()
	b.replace(d.target, t)
	b.mu.Unlock()

	return t, nil
}

// Move performs a whole drag in one call.
func (b *Board) Move(ctx context.Context, actor domain.Actor, ticketID uuid.UUID, target Target) (*domain.TicketView, error) {
	if err := b.DragStart(actor, ticketID); err != nil {
		return nil, err
	}
	if err := b.DragOver(target); err != nil {
		return nil, err
	}
	return b.DragEnd(ctx)
}

// locate scans the columns in board order; the last match wins.
func (b *Board) locate(ticketID uuid.UUID) (domain.TicketStatus, bool) {
	var (
		found domain.TicketStatus
		ok    bool
	)
	for _, s := range domain.BoardStatuses {
		for _, t := range b.columns[s] {
			if t.ID == ticketID {
				found, ok = s, true
			}
		}
	}
	return found, ok
}

func (b *Board) resolve(target Target) domain.TicketStatus {
	if target.Column != "" {
		if _, ok := b.columns[target.Column]; ok {
			return target.Column
		}
		return ""
	}
	if target.TicketID != uuid.Nil {
		if s, ok := b.locate(target.TicketID); ok {
			return s
		}
	}
	return ""
}

func (b *Board) move(ticketID uuid.UUID, from, to domain.TicketStatus) *domain.TicketView {
	src := b.columns[from]
	for i, t := range src {
		if t.ID != ticketID {
			continue
		}
		b.columns[from] = append(src[:i:i], src[i+1:]...)
		cp := *t
		cp.Status = to
		b.columns[to] = append(b.columns[to], &cp)
		return &cp
	}
	return nil
}

// replace swaps in the persisted row for the card in column s.
func (b *Board) replace(s domain.TicketStatus, t *domain.TicketView) {
	col := b.columns[s]
	for i := range col {
		if col[i].ID == t.ID {
			cp := *t
			cp.Status = s
			col[i] = &cp
			return
		}
	}
}
