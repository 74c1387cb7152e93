package prefs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/prefs"
	redisstore "github.com/gosuda/gabinete/internal/store/redis"
)

type published struct {
	channel string
	payload []byte
}

// memBackend is an in-memory stand-in for the Redis hash and channel.
type memBackend struct {
	flags      map[uuid.UUID]map[string]bool
	published  []published
	getErr     error
	publishErr error
}

func newMemBackend() *memBackend {
	return &memBackend{flags: map[uuid.UUID]map[string]bool{}}
}

func (m *memBackend) GetPreferences(_ context.Context, userID uuid.UUID) (map[string]bool, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := map[string]bool{}
	for k, v := range m.flags[userID] {
		out[k] = v
	}
	return out, nil
}

func (m *memBackend) SetPreference(_ context.Context, userID uuid.UUID, key string, value bool) error {
	if m.flags[userID] == nil {
		m.flags[userID] = map[string]bool{}
	}
	m.flags[userID][key] = value
	return nil
}

func (m *memBackend) Publish(_ context.Context, channel string, payload []byte) error {
	m.published = append(m.published, published{channel: channel, payload: payload})
	return m.publishErr
}

func TestStore_GetMergesDefaults(t *testing.T) {
	t.Parallel()

	b := newMemBackend()
	user := uuid.New()
	b.flags[user] = map[string]bool{"dense_tables": true}

	got, err := prefs.NewStore(b).Get(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{prefs.SidebarCollapsed: false, "dense_tables": true}, got)
}

func TestStore_ToggleFlipsAndAnnounces(t *testing.T) {
	t.Parallel()

	b := newMemBackend()
	s := prefs.NewStore(b)
	user := uuid.New()

	v, err := s.Toggle(context.Background(), user, prefs.SidebarCollapsed)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = s.Toggle(context.Background(), user, prefs.SidebarCollapsed)
	require.NoError(t, err)
	assert.False(t, v)

	require.Len(t, b.published, 2)
	assert.Equal(t, redisstore.PreferencesChannel(user), b.published[0].channel)

	var c prefs.Change
	require.NoError(t, json.Unmarshal(b.published[0].payload, &c))
	assert.Equal(t, prefs.Change{Key: prefs.SidebarCollapsed, Value: true}, c)
}

func TestStore_SetRejectsBadKey(t *testing.T) {
	t.Parallel()

	b := newMemBackend()
	err := prefs.NewStore(b).Set(context.Background(), uuid.New(), "Bad Key!", true)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, b.published)
}

func TestStore_PublishFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	b := newMemBackend()
	b.publishErr = errors.New("redis gone")
	user := uuid.New()

	require.NoError(t, prefs.NewStore(b).Set(context.Background(), user, prefs.SidebarCollapsed, true))
	assert.True(t, b.flags[user][prefs.SidebarCollapsed])
}

func TestStore_ToggleReadError(t *testing.T) {
	t.Parallel()

	b := newMemBackend()
	b.getErr = errors.New("redis gone")

	_, err := prefs.NewStore(b).Toggle(context.Background(), uuid.New(), prefs.SidebarCollapsed)
	require.Error(t, err)
	assert.Empty(t, b.published)
}
