package ticket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/events"
	redisstore "github.com/gosuda/gabinete/internal/store/redis"
)

// Publisher fans realtime payloads out to websocket subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// EventPublisher emits ticket lifecycle events to the event stream.
type EventPublisher interface {
	Publish(ctx context.Context, e events.TicketEvent)
}

// Notifier stores an in-app notification and pushes it to the recipient.
type Notifier interface {
	Send(ctx context.Context, n *domain.Notification) error
}

// Alerter posts office alerts to the staff chat.
type Alerter interface {
	TicketCreated(ctx context.Context, t *domain.TicketView)
}

// BoardEvent is the realtime payload on a tenant's board channel.
type BoardEvent struct {
	Type       string              `json:"type"`
	TicketID   uuid.UUID           `json:"ticket_id"`
	Number     int64               `json:"number"`
	Status     domain.TicketStatus `json:"status"`
	AssigneeID *uuid.UUID          `json:"assignee_id,omitempty"`
}

// Effects are the side effects of ticket mutations. Every field is
// optional. Failures are logged and never fail the mutation.
type Effects struct {
	Audit    domain.AuditRepository
	Realtime Publisher
	Events   EventPublisher
	Notifier Notifier
	Alerts   Alerter
}

func (fx Effects) record(ctx context.Context, actor domain.Actor, action string, ticketID uuid.UUID, details map[string]any) {
	if fx.Audit == nil {
		return
	}
	err := fx.Audit.Record(ctx, &domain.AuditEntry{
		ID:         uuid.New(),
		TenantID:   actor.TenantID,
		ActorID:    actor.UserID,
		Action:     action,
		Resource:   "ticket",
		ResourceID: ticketID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Str("action", action).Str("ticket_id", ticketID.String()).Msg("ticket: audit record failed")
	}
}

func (fx Effects) board(ctx context.Context, tenantID uuid.UUID, ev BoardEvent) {
	if fx.Realtime == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("ticket: marshal board event")
		return
	}
	if err := fx.Realtime.Publish(ctx, redisstore.BoardChannel(tenantID), payload); err != nil {
		log.Warn().Err(err).
			Str("tenant_id", tenantID.String()).
			Str("ticket_id", ev.TicketID.String()).
			Msg("ticket: board publish failed")
	}
}

func (fx Effects) emit(ctx context.Context, ev events.TicketEvent) {
	if fx.Events == nil {
		return
	}
	fx.Events.Publish(ctx, ev)
}

func (fx Effects) notify(ctx context.Context, n *domain.Notification) {
	if fx.Notifier == nil {
		return
	}
	if err := fx.Notifier.Send(ctx, n); err != nil {
		log.Warn().Err(err).
			Str("type", string(n.Type)).
			Str("recipient_id", n.RecipientID.String()).
			Msg("ticket: notification failed")
	}
}

func (fx Effects) alertCreated(ctx context.Context, t *domain.TicketView) {
	if fx.Alerts == nil {
		return
	}
	fx.Alerts.TicketCreated(ctx, t)
}

func ticketNotification(t *domain.TicketView, typ domain.NotificationType, recipient, sender uuid.UUID, title, message string) *domain.Notification {
	return &domain.Notification{
		ID:          uuid.New(),
		TenantID:    t.TenantID,
		RecipientID: recipient,
		SenderID:    &sender,
		Title:       title,
		Message:     message,
		Type:        typ,
		Metadata: map[string]any{
			"ticket_id":     t.ID.String(),
			"ticket_number": t.Number,
		},
		CreatedAt: time.Now().UTC(),
	}
}
