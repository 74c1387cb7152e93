// Package prefs keeps per-user UI preference flags and announces every
// change so other open sessions of the same user follow along.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/gabinete/internal/domain"
	redisstore "github.com/gosuda/gabinete/internal/store/redis"
)

// SidebarCollapsed is the flag behind the collapsible navigation sidebar.
const SidebarCollapsed = "sidebar_collapsed"

// Defaults apply to flags the user never set.
var Defaults = map[string]bool{ //nolint:gochecknoglobals // read-only table
	SidebarCollapsed: false,
}

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// Backend persists flags and carries change messages.
type Backend interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (map[string]bool, error)
	SetPreference(ctx context.Context, userID uuid.UUID, key string, value bool) error
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Change is published on the user's preference channel.
type Change struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

type Store struct {
	backend Backend
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Get returns the user's flags merged over the defaults.
func (s *Store) Get(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	stored, err := s.backend.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("prefs.Store.Get: %w", err)
	}

	out := make(map[string]bool, len(Defaults)+len(stored))
	for k, v := range Defaults {
		out[k] = v
	}
	for k, v := range stored {
		out[k] = v
	}
	return out, nil
}

// Set stores one flag and announces it.
func (s *Store) Set(ctx context.Context, userID uuid.UUID, key string, value bool) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("prefs.Store.Set: %w", domain.Invalid("key", "invalid_key", "unknown preference key"))
	}
	if err := s.backend.SetPreference(ctx, userID, key, value); err != nil {
		return fmt.Errorf("prefs.Store.Set: %w", err)
	}

	payload, err := json.Marshal(Change{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("prefs.Store.Set: marshal: %w", err)
	}
	if err := s.backend.Publish(ctx, redisstore.PreferencesChannel(userID), payload); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Str("key", key).Msg("prefs: publish failed")
	}
	return nil
}

// Toggle flips one flag and returns its new value.
func (s *Store) Toggle(ctx context.Context, userID uuid.UUID, key string) (bool, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("prefs.Store.Toggle: %w", err)
	}

	next := !current[key]
	if err := s.Set(ctx, userID, key, next); err != nil {
		return false, fmt.Errorf("prefs.Store.Toggle: %w", err)
	}
	return next, nil
}
