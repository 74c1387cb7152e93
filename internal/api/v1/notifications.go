package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/notify"
	"github.com/gosuda/gabinete/internal/optimistic"
)

type ListNotificationsInput struct {
	Audience string `query:"audience" enum:"self,tenant,citizens" doc:"Whose notifications (default self)"`
	Read     string `query:"read" enum:"all,unread,read" doc:"Read state (default all)"`
	Order    string `query:"order" enum:"asc,desc" doc:"Creation order (default desc)"`
	Limit    int    `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Max results"`
	Offset   int    `query:"offset" minimum:"0" default:"0" doc:"Offset for pagination"`
}

type ListNotificationsOutput struct {
	Body []*domain.Notification
}

type UnreadNotificationsInput struct {
	Audience string `query:"audience" enum:"self,tenant,citizens" doc:"Whose notifications (default self)"`
}

type UnreadNotificationsOutput struct {
	Body struct {
		Items []*domain.Notification `json:"items"`
		Count int                    `json:"count"`
	}
}

type NotificationIDInput struct {
	ID uuid.UUID `path:"id" doc:"Notification ID"`
}

type NotificationOutput struct {
	Body *domain.Notification
}

type ReadAllInput struct{}

type ReadAllOutput struct {
	Body struct {
		UpdatedIDs []uuid.UUID `json:"updated_ids"`
		// Remaining is the unread count left after the update.
		Remaining int `json:"remaining"`
	}
}

type BroadcastInput struct {
	Body struct {
		Title    string         `json:"title" minLength:"1" maxLength:"200" doc:"Headline"`
		Message  string         `json:"message" minLength:"1" maxLength:"5000" doc:"Message body"`
		Metadata map[string]any `json:"metadata,omitempty" doc:"Free-form data for the client"`
	}
}

type BroadcastOutput struct {
	Body struct {
		Sent int `json:"sent"`
	}
}

func RegisterNotificationRoutes(api huma.API, svc NotificationService) {
	marking := optimistic.NewPending[uuid.UUID]()

	huma.Register(api, huma.Operation{
		OperationID: "list-notifications",
		Method:      http.MethodGet,
		Path:        "/notifications",
		Summary:     "List notifications",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *ListNotificationsInput) (*ListNotificationsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		items, err := svc.List(ctx, actor, notify.ListFilter{
			Audience:  domain.Audience(input.Audience),
			ReadState: domain.ReadState(input.Read),
			Order:     input.Order,
			Limit:     input.Limit,
			Offset:    input.Offset,
		})
		if err != nil {
			return nil, problem(ctx, err, "notifications.list")
		}
		if items == nil {
			items = []*domain.Notification{}
		}
		return &ListNotificationsOutput{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "unread-notifications",
		Method:      http.MethodGet,
		Path:        "/notifications/unread",
		Summary:     "Unread notifications and their count",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *UnreadNotificationsInput) (*UnreadNotificationsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		inbox := notify.NewInbox(svc, actor, domain.Audience(input.Audience))
		if err := inbox.Refresh(ctx); err != nil {
			return nil, problem(ctx, err, "notifications.unread")
		}

		out := &UnreadNotificationsOutput{}
		out.Body.Items = inbox.Items()
		out.Body.Count = inbox.Count()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mark-notification-read",
		Method:      http.MethodPost,
		Path:        "/notifications/{id}/read",
		Summary:     "Mark a notification as read",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *NotificationIDInput) (*NotificationOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		inbox := notify.NewInbox(svc, actor, domain.AudienceSelf, notify.WithInFlight(marking))
		n, err := inbox.MarkRead(ctx, input.ID)
		if errors.Is(err, optimistic.ErrInFlight) {
			return nil, huma.Error409Conflict("notification is already being marked as read")
		}
		if err != nil {
			return nil, problem(ctx, err, "notifications.read")
		}
		return &NotificationOutput{Body: n}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mark-notification-unread",
		Method:      http.MethodDelete,
		Path:        "/notifications/{id}/read",
		Summary:     "Mark a notification as unread",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *NotificationIDInput) (*NotificationOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		n, err := svc.MarkUnread(ctx, actor, input.ID)
		if err != nil {
			return nil, problem(ctx, err, "notifications.unread")
		}
		return &NotificationOutput{Body: n}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mark-all-notifications-read",
		Method:      http.MethodPost,
		Path:        "/notifications/read-all",
		Summary:     "Mark every unread notification as read",
		Description: "Only the notifications the update reports are removed from the unread set.",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, _ *ReadAllInput) (*ReadAllOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		inbox := notify.NewInbox(svc, actor, domain.AudienceSelf)
		if err := inbox.Refresh(ctx); err != nil {
			return nil, problem(ctx, err, "notifications.read_all")
		}

		ids, err := inbox.MarkAllRead(ctx)
		if err != nil {
			return nil, problem(ctx, err, "notifications.read_all")
		}

		out := &ReadAllOutput{}
		out.Body.UpdatedIDs = ids
		out.Body.Remaining = inbox.Count()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "broadcast-notification",
		Method:      http.MethodPost,
		Path:        "/notifications/broadcast",
		Summary:     "Send a message to every citizen of the office",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *BroadcastInput) (*BroadcastOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		sent, err := svc.Broadcast(ctx, actor, notify.Broadcast{
			Title:    input.Body.Title,
			Message:  input.Body.Message,
			Metadata: input.Body.Metadata,
		})
		if err != nil {
			return nil, problem(ctx, err, "notifications.broadcast")
		}

		out := &BroadcastOutput{}
		out.Body.Sent = len(sent)
		return out, nil
	})
}
