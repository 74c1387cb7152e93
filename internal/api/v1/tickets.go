package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/ticket"
)

type ListTicketsInput struct {
	Status      []string `query:"status" doc:"Comma-separated statuses"`
	ReporterID  string   `query:"reporter_id" format:"uuid" doc:"Only tickets filed by this profile"`
	CategoryID  string   `query:"category_id" format:"uuid" doc:"Only tickets in this category"`
	AssigneeID  string   `query:"assignee_id" format:"uuid" doc:"Only tickets assigned to this profile"`
	Search      string   `query:"q" maxLength:"200" doc:"Matches title, description and number"`
	CreatedFrom string   `query:"created_from" format:"date-time" doc:"Created at or after"`
	CreatedTo   string   `query:"created_to" format:"date-time" doc:"Created at or before"`
	Sort        string   `query:"sort" enum:"created_at,updated_at,number,priority,status" doc:"Sort key"`
	Order       string   `query:"order" enum:"asc,desc" doc:"Sort direction"`
	Limit       int      `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Max results"`
	Offset      int      `query:"offset" minimum:"0" default:"0" doc:"Offset for pagination"`
}

type ListTicketsOutput struct {
	Body *ticket.Page
}

type CreateTicketInput struct {
	Body struct {
		Title       string                `json:"title" minLength:"1" maxLength:"200" doc:"Short summary"`
		Description string                `json:"description" minLength:"1" doc:"What happened"`
		CategoryID  *uuid.UUID            `json:"category_id,omitempty" doc:"Category ID"`
		Priority    domain.TicketPriority `json:"priority,omitempty" enum:"low,medium,high,urgent" doc:"Priority (default medium)"`
		Location    domain.Location       `json:"location,omitempty" doc:"Address"`
		Photos      []string              `json:"photos,omitempty" doc:"Object paths of uploaded photos"`
		ReporterID  *uuid.UUID            `json:"reporter_id,omitempty" doc:"Staff only: file on behalf of this citizen"`
	}
}

type TicketOutput struct {
	Body *domain.TicketView
}

type TicketIDInput struct {
	ID uuid.UUID `path:"id" doc:"Ticket ID"`
}

type ChangeStatusInput struct {
	ID   uuid.UUID `path:"id" doc:"Ticket ID"`
	Body struct {
		Status domain.TicketStatus `json:"status" enum:"new,under_review,in_progress,resolved,closed,cancelled" doc:"Target status"`
	}
}

type AssignInput struct {
	ID   uuid.UUID `path:"id" doc:"Ticket ID"`
	Body struct {
		AssigneeID uuid.UUID `json:"assignee_id" doc:"Staff profile ID"`
	}
}

type AddPhotosInput struct {
	ID   uuid.UUID `path:"id" doc:"Ticket ID"`
	Body struct {
		Paths []string `json:"paths" minItems:"1" doc:"Object paths of uploaded photos"`
	}
}

type ListCommentsOutput struct {
	Body []*domain.Comment
}

type AddCommentInput struct {
	ID   uuid.UUID `path:"id" doc:"Ticket ID"`
	Body struct {
		Message     string   `json:"message" minLength:"1" maxLength:"5000" doc:"Comment text"`
		Public      *bool    `json:"public,omitempty" doc:"Visible to the reporter (default true)"`
		Attachments []string `json:"attachments,omitempty" doc:"Object paths of attachments"`
	}
}

type CommentOutput struct {
	Body *domain.Comment
}

type HistoryOutput struct {
	Body []*domain.AuditEntry
}

// parseOptionalUUID parses a query value; empty means unset.
func parseOptionalUUID(field, s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, domain.Invalid(field, "invalid_uuid", field+" must be a UUID")
	}
	return &id, nil
}

func parseOptionalTime(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.Invalid(field, "invalid_time", field+" must be an RFC 3339 timestamp")
	}
	return &ts, nil
}

func (in *ListTicketsInput) filter() (ticket.Filter, error) {
	f := ticket.Filter{
		Search: in.Search,
		Sort:   in.Sort,
		Order:  in.Order,
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	for _, s := range in.Status {
		if s != "" {
			f.Statuses = append(f.Statuses, domain.TicketStatus(s))
		}
	}

	var err error
	if f.ReporterID, err = parseOptionalUUID("reporter_id", in.ReporterID); err != nil {
		return f, err
	}
	if f.CategoryID, err = parseOptionalUUID("category_id", in.CategoryID); err != nil {
		return f, err
	}
	if f.AssigneeID, err = parseOptionalUUID("assignee_id", in.AssigneeID); err != nil {
		return f, err
	}
	if f.CreatedFrom, err = parseOptionalTime("created_from", in.CreatedFrom); err != nil {
		return f, err
	}
	if f.CreatedTo, err = parseOptionalTime("created_to", in.CreatedTo); err != nil {
		return f, err
	}
	return f, nil
}

func RegisterTicketRoutes(api huma.API, tickets Tickets) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tickets",
		Method:      http.MethodGet,
		Path:        "/tickets",
		Summary:     "List visible tickets",
		Description: "Citizens see only the tickets they filed; staff see the whole office.",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *ListTicketsInput) (*ListTicketsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		f, err := input.filter()
		if err != nil {
			return nil, problem(ctx, err, "tickets.list")
		}

		page, err := tickets.Query.List(ctx, actor, f)
		if err != nil {
			return nil, problem(ctx, err, "tickets.list")
		}
		return &ListTicketsOutput{Body: page}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-ticket",
		Method:      http.MethodPost,
		Path:        "/tickets",
		Summary:     "File a ticket",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *CreateTicketInput) (*TicketOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		t, err := tickets.Service.Create(ctx, actor, ticket.NewTicket{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			CategoryID:  input.Body.CategoryID,
			Priority:    input.Body.Priority,
			Location:    input.Body.Location,
			Photos:      input.Body.Photos,
			ReporterID:  input.Body.ReporterID,
		})
		if err != nil {
			return nil, problem(ctx, err, "tickets.create")
		}
		return &TicketOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-ticket",
		Method:      http.MethodGet,
		Path:        "/tickets/{id}",
		Summary:     "Get a ticket",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *TicketIDInput) (*TicketOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		t, err := tickets.Query.Get(ctx, actor, input.ID)
		if err != nil {
			return nil, problem(ctx, err, "tickets.get")
		}
		return &TicketOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-ticket-status",
		Method:      http.MethodPatch,
		Path:        "/tickets/{id}/status",
		Summary:     "Move a ticket to another status",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *ChangeStatusInput) (*TicketOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		t, err := tickets.Lifecycle.ChangeStatus(ctx, actor, input.ID, input.Body.Status)
		if err != nil {
			return nil, problem(ctx, err, "tickets.status")
		}
		return &TicketOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-ticket",
		Method:      http.MethodPut,
		Path:        "/tickets/{id}/assignee",
		Summary:     "Assign a ticket to a staff member",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *AssignInput) (*TicketOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		t, err := tickets.Lifecycle.Assign(ctx, actor, input.ID, input.Body.AssigneeID)
		if err != nil {
			return nil, problem(ctx, err, "tickets.assign")
		}
		return &TicketOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-ticket-to-self",
		Method:      http.MethodPost,
		Path:        "/tickets/{id}/assignee/self",
		Summary:     "Take a ticket",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *TicketIDInput) (*TicketOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		t, err := tickets.Lifecycle.AssignToSelf(ctx, actor, input.ID)
		if err != nil {
			return nil, problem(ctx, err, "tickets.assign_self")
		}
		return &TicketOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "unassign-ticket",
		Method:      http.MethodDelete,
		Path:        "/tickets/{id}/assignee",
		Summary:     "Clear a ticket's assignee",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *TicketIDInput) (*TicketOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		t, err := tickets.Lifecycle.Unassign(ctx, actor, input.ID)
		if err != nil {
			return nil, problem(ctx, err, "tickets.unassign")
		}
		return &TicketOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-ticket-photos",
		Method:      http.MethodPost,
		Path:        "/tickets/{id}/photos",
		Summary:     "Attach uploaded photos to a ticket",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *AddPhotosInput) (*TicketOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		t, err := tickets.Service.AddPhotos(ctx, actor, input.ID, input.Body.Paths)
		if err != nil {
			return nil, problem(ctx, err, "tickets.photos")
		}
		return &TicketOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-ticket-comments",
		Method:      http.MethodGet,
		Path:        "/tickets/{id}/comments",
		Summary:     "List the comments the caller may read",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *TicketIDInput) (*ListCommentsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		comments, err := tickets.Service.ListComments(ctx, actor, input.ID)
		if err != nil {
			return nil, problem(ctx, err, "tickets.comments")
		}
		if comments == nil {
			comments = []*domain.Comment{}
		}
		return &ListCommentsOutput{Body: comments}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-ticket-comment",
		Method:      http.MethodPost,
		Path:        "/tickets/{id}/comments",
		Summary:     "Comment on a ticket",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *AddCommentInput) (*CommentOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		c, err := tickets.Service.AddComment(ctx, actor, input.ID, ticket.NewComment{
			Message:     input.Body.Message,
			Public:      input.Body.Public == nil || *input.Body.Public,
			Attachments: input.Body.Attachments,
		})
		if err != nil {
			return nil, problem(ctx, err, "tickets.comment")
		}
		return &CommentOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-ticket-history",
		Method:      http.MethodGet,
		Path:        "/tickets/{id}/history",
		Summary:     "List a ticket's audit trail",
		Tags:        []string{"Tickets"},
	}, func(ctx context.Context, input *TicketIDInput) (*HistoryOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		entries, err := tickets.Service.History(ctx, actor, input.ID)
		if err != nil {
			return nil, problem(ctx, err, "tickets.history")
		}
		if entries == nil {
			entries = []*domain.AuditEntry{}
		}
		return &HistoryOutput{Body: entries}, nil
	})
}
