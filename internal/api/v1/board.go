package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/kanban"
)

type BoardColumn struct {
	Status  domain.TicketStatus `json:"status"`
	Label   string              `json:"label"`
	Tickets []domain.TicketView `json:"tickets"`
}

type Board struct {
	Columns []BoardColumn `json:"columns"`
}

type GetBoardInput struct{}

type GetBoardOutput struct {
	Body *Board
}

type MoveCardInput struct {
	Body struct {
		TicketID     uuid.UUID           `json:"ticket_id" doc:"Dragged ticket"`
		Column       domain.TicketStatus `json:"column,omitempty" enum:"new,under_review,in_progress,resolved" doc:"Dropped on this column"`
		OverTicketID *uuid.UUID          `json:"over_ticket_id,omitempty" doc:"Dropped on this card"`
	}
}

type MoveCardOutput struct {
	Body struct {
		// Ticket is null when the drop changed nothing.
		Ticket  *domain.TicketView `json:"ticket"`
		Columns []BoardColumn      `json:"columns"`
	}
}

func boardColumns(b *kanban.Board) []BoardColumn {
	cols := b.Columns()
	out := make([]BoardColumn, 0, len(domain.BoardStatuses))
	for _, s := range domain.BoardStatuses {
		out = append(out, BoardColumn{Status: s, Label: s.Label(), Tickets: cols[s]})
	}
	return out
}

func RegisterBoardRoutes(api huma.API, tickets Tickets) {
	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/board",
		Summary:     "Get the office's kanban board",
		Tags:        []string{"Board"},
	}, func(ctx context.Context, _ *GetBoardInput) (*GetBoardOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		board := kanban.NewBoard(tickets.Query, tickets.Lifecycle)
		if err := board.Load(ctx, actor); err != nil {
			return nil, problem(ctx, err, "board.get")
		}
		return &GetBoardOutput{Body: &Board{Columns: boardColumns(board)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-board-card",
		Method:      http.MethodPost,
		Path:        "/board/moves",
		Summary:     "Drop a card on a column or on another card",
		Tags:        []string{"Board"},
	}, func(ctx context.Context, input *MoveCardInput) (*MoveCardOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		board := kanban.NewBoard(tickets.Query, tickets.Lifecycle)
		if err := board.Load(ctx, actor); err != nil {
			return nil, problem(ctx, err, "board.move")
		}

		target := kanban.Target{Column: input.Body.Column}
		if input.Body.OverTicketID != nil {
			target.TicketID = *input.Body.OverTicketID
		}

		moved, err := board.Move(ctx, actor, input.Body.TicketID, target)
		switch {
		case errors.Is(err, kanban.ErrDragDisabled):
			return nil, huma.Error403Forbidden("your role cannot move cards")
		case errors.Is(err, kanban.ErrNotOnBoard):
			return nil, huma.Error404NotFound("ticket is not on the board")
		case err != nil:
			return nil, problem(ctx, err, "board.move")
		}

		out := &MoveCardOutput{}
		out.Body.Ticket = moved
		out.Body.Columns = boardColumns(board)
		return out, nil
	})
}
