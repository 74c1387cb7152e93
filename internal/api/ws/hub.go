package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/server/middleware"
	redisstore "github.com/gosuda/gabinete/internal/store/redis"
)

// Subscriber is the pub/sub side the hub relays from.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub manages WebSocket connections backed by Redis pub/sub. Every stream
// is server to client; frames sent by the client are discarded.
type Hub struct {
	pubsub Subscriber
}

// NewHub creates a new WebSocket hub.
func NewHub(pubsub Subscriber) *Hub {
	return &Hub{pubsub: pubsub}
}

// ServeBoard streams kanban changes of the caller's office to staff.
// Subscribes to Redis channel "board:<tenantID>".
func (h *Hub) ServeBoard(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !actor.Role.CanReadAllTickets() {
		http.Error(w, "staff role required", http.StatusForbidden)
		return
	}

	h.stream(w, r, redisstore.BoardChannel(actor.TenantID))
}

// ServeNotifications streams notification events. The default audience is
// the caller's own inbox; ?audience=tenant follows the whole office and
// needs a role that can view it.
func (h *Hub) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	channel := redisstore.NotificationChannel(actor.UserID)
	switch domain.Audience(r.URL.Query().Get("audience")) {
	case "", domain.AudienceSelf:
	case domain.AudienceTenant:
		if !actor.Role.CanViewTenantNotifications() {
			http.Error(w, "staff role required", http.StatusForbidden)
			return
		}
		channel = redisstore.TenantChannel(actor.TenantID)
	default:
		http.Error(w, "unknown audience", http.StatusBadRequest)
		return
	}

	h.stream(w, r, channel)
}

// ServePreferences streams the caller's preference changes so every open
// session stays in sync.
func (h *Hub) ServePreferences(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	h.stream(w, r, redisstore.PreferencesChannel(actor.UserID))
}

func (h *Hub) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return actor, false
	}
	if actor.TenantID == uuid.Nil {
		http.Error(w, "missing tenant", http.StatusBadRequest)
		return actor, false
	}
	return actor, true
}

func (h *Hub) stream(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// CloseRead answers control frames and cancels ctx once the peer leaves.
	ctx := conn.CloseRead(r.Context())

	messages, cleanup, err := h.pubsub.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Str("channel", channel).Msg("websocket write")
				return
			}
		}
	}
}
