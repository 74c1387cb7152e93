// Package events publishes ticket lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/gosuda/gabinete/internal/domain"
)

const (
	TicketCreated       = "ticket.created"
	TicketStatusChanged = "ticket.status_changed"
	TicketAssigned      = "ticket.assigned"
)

// TicketEvent is the JSON body of every message on the ticket topic.
type TicketEvent struct {
	Type       string              `json:"type"`
	TenantID   uuid.UUID           `json:"tenant_id"`
	TicketID   uuid.UUID           `json:"ticket_id"`
	Number     int64               `json:"number"`
	ActorID    uuid.UUID           `json:"actor_id"`
	From       domain.TicketStatus `json:"from,omitempty"`
	Status     domain.TicketStatus `json:"status"`
	AssigneeID *uuid.UUID          `json:"assignee_id,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes ticket events. Without brokers every method is a no-op.
type Producer struct {
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish sends the event keyed by ticket so one ticket's events stay
// ordered within a partition. Failures are logged and dropped.
func (p *Producer) Publish(ctx context.Context, e TicketEvent) {
	if p.writer == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("type", e.Type).Msg("events: marshal ticket event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(e.TicketID.String()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "tenant_id", Value: []byte(e.TenantID.String())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Warn().Err(err).
			Str("type", e.Type).
			Str("ticket_id", e.TicketID.String()).
			Msg("events: write ticket event")
	}
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
