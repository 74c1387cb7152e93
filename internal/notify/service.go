// Package notify stores in-app notifications, tracks their read state and
// relays office alerts to the staff chat.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/gabinete/internal/domain"
	redisstore "github.com/gosuda/gabinete/internal/store/redis"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Realtime event types on a recipient's notification channel.
const (
	EventCreated = "notification.created"
	EventRead    = "notification.read"
	EventUnread  = "notification.unread"
	EventReadAll = "notification.read_all"
)

// Publisher fans realtime payloads out to websocket subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// BroadcastAlerter is told when a broadcast went out.
type BroadcastAlerter interface {
	BroadcastSent(ctx context.Context, title string, recipients int)
}

// Event is the realtime payload on a recipient's channel.
type Event struct {
	Type         string               `json:"type"`
	Notification *domain.Notification `json:"notification,omitempty"`
	IDs          []uuid.UUID          `json:"ids,omitempty"`
}

// ListFilter is the notifications view filter.
type ListFilter struct {
	Audience  domain.Audience
	ReadState domain.ReadState
	Order     string // asc|desc, default desc
	Limit     int
	Offset    int
}

// Broadcast is a manual message from staff to every citizen of the office.
type Broadcast struct {
	Title    string
	Message  string
	Metadata map[string]any
}

type Service struct {
	repo     domain.NotificationRepository
	realtime Publisher
	alerts   BroadcastAlerter
}

// NewService wires the repository with optional realtime and alert sinks.
func NewService(repo domain.NotificationRepository, realtime Publisher, alerts BroadcastAlerter) *Service {
	return &Service{repo: repo, realtime: realtime, alerts: alerts}
}

// Send stores a notification and pushes it to the recipient.
func (s *Service) Send(ctx context.Context, n *domain.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Type == "" {
		n.Type = domain.NotificationSystem
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("notify.Service.Send: %w", err)
	}

	ev := Event{Type: EventCreated, Notification: n}
	s.push(ctx, n.RecipientID, ev)
	s.pushTenant(ctx, n.TenantID, ev)
	return nil
}

// Broadcast sends one notification to every active citizen of the actor's
// office except the actor, in a single insert. It returns the created rows.
func (s *Service) Broadcast(ctx context.Context, actor domain.Actor, in Broadcast) ([]*domain.Notification, error) {
	if !actor.Role.CanSendBroadcast() {
		return nil, fmt.Errorf("notify.Service.Broadcast: %w", domain.ErrForbidden)
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if in.Title == "" {
		return nil, fmt.Errorf("notify.Service.Broadcast: %w", domain.Invalid("title", "required", "title is required"))
	}
	if in.Message == "" {
		return nil, fmt.Errorf("notify.Service.Broadcast: %w", domain.Invalid("message", "required", "message is required"))
	}

	recipients, err := s.repo.CitizenRecipients(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("notify.Service.Broadcast: recipients: %w", err)
	}
	if len(recipients) == 0 {
		return []*domain.Notification{}, nil
	}

	sender := actor.UserID
	created, err := s.repo.CreateBulk(ctx, &domain.Notification{
		TenantID: actor.TenantID,
		SenderID: &sender,
		Title:    in.Title,
		Message:  in.Message,
		Type:     domain.NotificationBroadcast,
		Metadata: in.Metadata,
	}, recipients)
	if err != nil {
		return nil, fmt.Errorf("notify.Service.Broadcast: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(created))
	for _, n := range created {
		s.push(ctx, n.RecipientID, Event{Type: EventCreated, Notification: n})
		ids = append(ids, n.ID)
	}
	s.pushTenant(ctx, actor.TenantID, Event{Type: EventCreated, IDs: ids})
	if s.alerts != nil {
		s.alerts.BroadcastSent(ctx, in.Title, len(created))
	}

	log.Info().
		Str("tenant_id", actor.TenantID.String()).
		Int("recipients", len(created)).
		Msg("notify: broadcast sent")

	return created, nil
}

// List returns the notifications the actor may see under f.
func (s *Service) List(ctx context.Context, actor domain.Actor, f ListFilter) ([]*domain.Notification, error) {
	rf, err := scope(actor, f)
	if err != nil {
		return nil, fmt.Errorf("notify.Service.List: %w", err)
	}

	items, err := s.repo.List(ctx, rf)
	if err != nil {
		return nil, fmt.Errorf("notify.Service.List: %w", err)
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	return items, nil
}

// Unread returns the actor's own unread notifications, newest first.
func (s *Service) Unread(ctx context.Context, actor domain.Actor) ([]*domain.Notification, error) {
	items, err := s.repo.ListUnread(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("notify.Service.Unread: %w", err)
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	return items, nil
}

// MarkRead stamps one of the actor's notifications as read. Marking an
// already read notification keeps its original timestamp.
func (s *Service) MarkRead(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Notification, error) {
	n, err := s.repo.MarkRead(ctx, actor.TenantID, actor.UserID, id)
	if err != nil {
		return nil, fmt.Errorf("notify.Service.MarkRead: %w", err)
	}
	s.push(ctx, actor.UserID, Event{Type: EventRead, IDs: []uuid.UUID{id}})
	return n, nil
}

// MarkUnread clears the read timestamp of one of the actor's notifications.
func (s *Service) MarkUnread(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Notification, error) {
	n, err := s.repo.MarkUnread(ctx, actor.TenantID, actor.UserID, id)
	if err != nil {
		return nil, fmt.Errorf("notify.Service.MarkUnread: %w", err)
	}
	s.push(ctx, actor.UserID, Event{Type: EventUnread, Notification: n})
	return n, nil
}

// MarkAllRead stamps every unread notification of the actor in one update
// and returns the IDs that update touched.
func (s *Service) MarkAllRead(ctx context.Context, actor domain.Actor) ([]uuid.UUID, error) {
	ids, err := s.repo.MarkAllRead(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("notify.Service.MarkAllRead: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	if len(ids) > 0 {
		s.push(ctx, actor.UserID, Event{Type: EventReadAll, IDs: ids})
	}
	return ids, nil
}

func (s *Service) push(ctx context.Context, recipient uuid.UUID, ev Event) {
	s.publish(ctx, redisstore.NotificationChannel(recipient), ev)
}

// pushTenant feeds staff watching the tenant-wide notification stream.
func (s *Service) pushTenant(ctx context.Context, tenantID uuid.UUID, ev Event) {
	s.publish(ctx, redisstore.TenantChannel(tenantID), ev)
}

func (s *Service) publish(ctx context.Context, channel string, ev Event) {
	if s.realtime == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("notify: marshal event")
		return
	}
	if err := s.realtime.Publish(ctx, channel, payload); err != nil {
		log.Warn().Err(err).
			Str("channel", channel).
			Str("type", ev.Type).
			Msg("notify: realtime publish failed")
	}
}

func scope(actor domain.Actor, f ListFilter) (domain.NotificationFilter, error) {
	if actor.TenantID == uuid.Nil {
		return domain.NotificationFilter{}, fmt.Errorf("missing tenant: %w", domain.ErrForbidden)
	}

	rf := domain.NotificationFilter{
		TenantID:  actor.TenantID,
		ViewerID:  actor.UserID,
		Audience:  f.Audience,
		ReadState: f.ReadState,
		Limit:     f.Limit,
		Offset:    f.Offset,
	}

	if rf.Audience == "" {
		rf.Audience = domain.AudienceSelf
	}
	if !rf.Audience.Valid() {
		return rf, domain.Invalid("audience", "invalid_audience", "unknown audience "+string(rf.Audience))
	}
	if rf.Audience != domain.AudienceSelf && !actor.Role.CanViewTenantNotifications() {
		return rf, fmt.Errorf("audience %s: %w", rf.Audience, domain.ErrForbidden)
	}

	if rf.ReadState == "" {
		rf.ReadState = domain.ReadStateAll
	}
	if !rf.ReadState.Valid() {
		return rf, domain.Invalid("read", "invalid_read_state", "unknown read state "+string(rf.ReadState))
	}

	switch strings.ToLower(f.Order) {
	case "", "desc":
	case "asc":
		rf.Ascending = true
	default:
		return rf, domain.Invalid("order", "invalid_order", "order must be asc or desc")
	}

	if rf.Limit <= 0 {
		rf.Limit = DefaultLimit
	}
	if rf.Limit > MaxLimit {
		rf.Limit = MaxLimit
	}
	if rf.Offset < 0 {
		rf.Offset = 0
	}

	return rf, nil
}
