package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// GetPreferences returns every stored preference flag of a user.
func (ps *PubSub) GetPreferences(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	raw, err := ps.client.HGetAll(ctx, PreferencesChannel(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis.PubSub.GetPreferences: %w", err)
	}

	prefs := make(map[string]bool, len(raw))
	for k, v := range raw {
		b, err := strconv.ParseBool(v)
		if err != nil {
			continue
		}
		prefs[k] = b
	}

	return prefs, nil
}

// SetPreference stores one flag.
func (ps *PubSub) SetPreference(ctx context.Context, userID uuid.UUID, key string, value bool) error {
	if err := ps.client.HSet(ctx, PreferencesChannel(userID), key, strconv.FormatBool(value)).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.SetPreference: %w", err)
	}
	return nil
}
