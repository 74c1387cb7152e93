package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/messenger"
)

// OfficeAlerts posts staff-facing alerts to every registered chat target.
// Delivery is best effort.
type OfficeAlerts struct {
	targets *Registry
}

func NewOfficeAlerts(targets *Registry) *OfficeAlerts {
	return &OfficeAlerts{targets: targets}
}

// TicketCreated announces a newly filed ticket.
func (a *OfficeAlerts) TicketCreated(ctx context.Context, t *domain.TicketView) {
	alert := messenger.Alert{
		Title: fmt.Sprintf("Novo chamado #%d", t.Number),
		Body:  t.Title,
		Fields: []messenger.AlertField{
			{Label: "Prioridade", Value: string(t.Priority)},
		},
	}
	if t.Priority == domain.TicketPriorityUrgent {
		alert.Severity = messenger.SeverityUrgent
	}
	if t.Category != nil {
		alert.Fields = append(alert.Fields, messenger.AlertField{Label: "Categoria", Value: t.Category.Name})
	}
	if t.Reporter != nil {
		alert.Fields = append(alert.Fields, messenger.AlertField{Label: "Cidadão", Value: t.Reporter.Name})
	}
	if loc := t.Location.Neighborhood; loc != "" {
		alert.Fields = append(alert.Fields, messenger.AlertField{Label: "Bairro", Value: loc})
	}

	for _, target := range a.targets.Targets() {
		if _, err := target.Messenger.SendAlert(ctx, target.Channel, alert); err != nil {
			log.Warn().Err(err).
				Str("platform", target.Messenger.Platform()).
				Str("ticket_id", t.ID.String()).
				Msg("notify: ticket alert failed")
		}
	}
}

// BroadcastSent reports a citizen broadcast to the staff channel.
func (a *OfficeAlerts) BroadcastSent(ctx context.Context, title string, recipients int) {
	text := fmt.Sprintf("Comunicado \"%s\" enviado para %d cidadãos.", title, recipients)
	for _, target := range a.targets.Targets() {
		if _, err := target.Messenger.SendMessage(ctx, target.Channel, text); err != nil {
			log.Warn().Err(err).
				Str("platform", target.Messenger.Platform()).
				Msg("notify: broadcast alert failed")
		}
	}
}
