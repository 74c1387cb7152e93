package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
)

type EventBody struct {
	Title       string     `json:"title" minLength:"1" maxLength:"200" doc:"Event title"`
	Description string     `json:"description,omitempty" doc:"Event description"`
	Location    string     `json:"location,omitempty" maxLength:"255" doc:"Where it happens"`
	StartsAt    time.Time  `json:"starts_at" doc:"Start time"`
	EndsAt      *time.Time `json:"ends_at,omitempty" doc:"End time"`
	BannerPath  string     `json:"banner_path,omitempty" doc:"Object path of the banner"`
	Published   bool       `json:"published,omitempty" doc:"Visible to citizens"`
}

type ListEventsInput struct {
	Upcoming bool `query:"upcoming" doc:"Drop events that already ended"`
	Limit    int  `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Max results"`
	Offset   int  `query:"offset" minimum:"0" default:"0" doc:"Offset for pagination"`
}

type CreateEventInput struct {
	Body EventBody
}

type UpdateEventInput struct {
	ID   uuid.UUID `path:"id" doc:"Event ID"`
	Body EventBody
}

type EventOutput struct {
	Body *domain.Event
}

type DeleteEventInput struct {
	ID uuid.UUID `path:"id" doc:"Event ID"`
}

type DeleteEventOutput struct{}

func (b EventBody) apply(e *domain.Event) {
	e.Title = b.Title
	e.Description = b.Description
	e.Location = b.Location
	e.StartsAt = b.StartsAt
	e.EndsAt = b.EndsAt
	e.BannerPath = b.BannerPath
	e.Published = b.Published
}

func eventManager(ctx context.Context) (domain.Actor, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return actor, err
	}
	if !actor.Role.CanManageEvents() {
		return actor, huma.Error403Forbidden("staff role required")
	}
	return actor, nil
}

func RegisterEventRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "List the office's events",
		Tags:        []string{"Events"},
	}, func(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		f := domain.EventFilter{
			TenantID:      actor.TenantID,
			PublishedOnly: !actor.Role.CanSeeUnpublishedEvents(),
			Limit:         input.Limit,
			Offset:        input.Offset,
		}
		if input.Upcoming {
			now := time.Now().UTC()
			f.From = &now
		}

		events, err := store.Events().List(ctx, f)
		if err != nil {
			return nil, problem(ctx, err, "events.list")
		}
		if events == nil {
			events = []*domain.Event{}
		}
		return &ListEventsOutput{Body: events}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-event",
		Method:      http.MethodPost,
		Path:        "/events",
		Summary:     "Create an agenda event",
		Tags:        []string{"Events"},
	}, func(ctx context.Context, input *CreateEventInput) (*EventOutput, error) {
		actor, err := eventManager(ctx)
		if err != nil {
			return nil, err
		}
		if err := checkObjectPath(actor, "banner_path", input.Body.BannerPath); err != nil {
			return nil, problem(ctx, err, "events.create")
		}

		now := time.Now().UTC()
		e := &domain.Event{ID: uuid.New(), TenantID: actor.TenantID, CreatedBy: actor.UserID, CreatedAt: now, UpdatedAt: now}
		input.Body.apply(e)
		if err := e.Validate(); err != nil {
			return nil, problem(ctx, err, "events.create")
		}

		if err := store.Events().Create(ctx, e); err != nil {
			return nil, problem(ctx, err, "events.create")
		}
		return &EventOutput{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-event",
		Method:      http.MethodPut,
		Path:        "/events/{id}",
		Summary:     "Update an agenda event",
		Tags:        []string{"Events"},
	}, func(ctx context.Context, input *UpdateEventInput) (*EventOutput, error) {
		actor, err := eventManager(ctx)
		if err != nil {
			return nil, err
		}
		if err := checkObjectPath(actor, "banner_path", input.Body.BannerPath); err != nil {
			return nil, problem(ctx, err, "events.update")
		}

		e, err := store.Events().GetByID(ctx, actor.TenantID, input.ID)
		if err != nil {
			return nil, problem(ctx, err, "events.update")
		}
		input.Body.apply(e)
		if err := e.Validate(); err != nil {
			return nil, problem(ctx, err, "events.update")
		}
		e.UpdatedAt = time.Now().UTC()

		if err := store.Events().Update(ctx, e); err != nil {
			return nil, problem(ctx, err, "events.update")
		}
		return &EventOutput{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-event",
		Method:        http.MethodDelete,
		Path:          "/events/{id}",
		Summary:       "Delete an agenda event",
		Tags:          []string{"Events"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteEventInput) (*DeleteEventOutput, error) {
		actor, err := eventManager(ctx)
		if err != nil {
			return nil, err
		}

		if err := store.Events().Delete(ctx, actor.TenantID, input.ID); err != nil {
			return nil, problem(ctx, err, "events.delete")
		}
		return &DeleteEventOutput{}, nil
	})
}
