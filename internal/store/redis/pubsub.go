package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PubSub wraps a Redis client for channel messaging and small key-value state.
type PubSub struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection before returning.
func New(ctx context.Context, addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &PubSub{client: client}, nil
}

func (ps *PubSub) Close() error {
	if err := ps.client.Close(); err != nil {
		return fmt.Errorf("redis.PubSub.Close: %w", err)
	}
	return nil
}

func (ps *PubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ps.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.Publish: %w", err)
	}
	return nil
}

// subscriberBuffer bounds the messages queued for one subscriber. A
// websocket that falls further behind loses the oldest-pending events and
// is expected to reload.
const subscriberBuffer = 64

// Subscribe delivers the payloads published on channel until ctx ends or
// the returned cleanup runs. Delivery never blocks the Redis reader: when
// the subscriber's buffer is full the message is dropped and logged.
func (ps *PubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	sub := ps.client.Subscribe(ctx, channel)

	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.PubSub.Subscribe: receive confirmation: %w", err)
	}

	out := make(chan []byte, subscriberBuffer)
	msgs := sub.Channel(redis.WithChannelSize(subscriberBuffer))

	go func() {
		defer close(out)
		dropped := 0
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					dropped++
					log.Warn().Str("channel", channel).Int("dropped", dropped).Msg("slow subscriber, dropping message")
				}
			}
		}
	}()

	var once sync.Once
	cleanup := func() {
		once.Do(func() { _ = sub.Close() })
	}

	return out, cleanup, nil
}

// Ping checks the connection for readiness probes.
func (ps *PubSub) Ping(ctx context.Context) error {
	if err := ps.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.Ping: %w", err)
	}
	return nil
}

// BoardChannel returns the Redis channel name for a tenant's kanban board.
func BoardChannel(tenantID uuid.UUID) string {
	return "board:" + tenantID.String()
}

// NotificationChannel returns the Redis channel name for one recipient's
// notification events.
func NotificationChannel(userID uuid.UUID) string {
	return "notifications:" + userID.String()
}

// PreferencesChannel returns the Redis channel name for one user's
// preference changes. The preference hash shares the name.
func PreferencesChannel(userID uuid.UUID) string {
	return "prefs:" + userID.String()
}

// TenantChannel returns the Redis channel name for tenant-wide events.
func TenantChannel(tenantID uuid.UUID) string {
	return "tenant:" + tenantID.String()
}
